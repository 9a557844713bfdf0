package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"eclinic/cmd/internal/integration/aws/cognito"
	"eclinic/cmd/internal/utils"
	"eclinic/cmd/internal/utils/apierror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// ErrInvalidToken is returned by resolvers for tokens that must be refused.
var ErrInvalidToken = errors.New("invalid bearer token")

type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*utils.TokenData, error)
}

// Authenticate stores the caller resolved from the bearer token under
// utils.TokenDataKey. Requests without an Authorization header pass through
// anonymously; a header that cannot be resolved is rejected with 401.
func Authenticate(resolver TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			data, err := resolver.Resolve(c.Request().Context(), strings.TrimSpace(token))
			if errors.Is(err, ErrInvalidToken) {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}
			if err != nil {
				log.Errorf("failed to resolve bearer token: %v", err)
				return c.JSON(http.StatusInternalServerError, apierror.InternalServerError)
			}

			c.Set(utils.TokenDataKey, data)
			return next(c)
		}
	}
}

// JWTResolver accepts HS256 tokens whose claims carry "sub" and "role".
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (r *JWTResolver) Resolve(_ context.Context, token string) (*utils.TokenData, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	role, _ := claims["role"].(string)
	return &utils.TokenData{Sub: sub, Role: role}, nil
}

// CognitoResolver validates access tokens against the user pool.
type CognitoResolver struct {
	client cognito.CognitoInterface
}

func NewCognitoResolver(client cognito.CognitoInterface) *CognitoResolver {
	return &CognitoResolver{client: client}
}

func (r *CognitoResolver) Resolve(ctx context.Context, token string) (*utils.TokenData, error) {
	identity, err := r.client.GetUser(ctx, token)
	if errors.Is(err, cognito.ErrNotAuthorized) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err != nil {
		return nil, err
	}
	return &utils.TokenData{Sub: identity.Sub, Role: identity.Role}, nil
}
