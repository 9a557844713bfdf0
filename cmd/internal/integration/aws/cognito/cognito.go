package cognito

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/smithy-go"
)

// RoleAttribute is the custom user pool attribute carrying the caller role.
const RoleAttribute = "custom:role"

// ErrNotAuthorized means Cognito rejected the access token.
var ErrNotAuthorized = errors.New("cognito: access token rejected")

type Identity struct {
	Sub  string
	Role string
}

type CognitoInterface interface {
	GetUser(ctx context.Context, accessToken string) (*Identity, error)
}

type userAPI interface {
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
}

type CognitoClient struct {
	client userAPI
}

// InitCognitoClient builds a client from the default AWS credential chain.
func InitCognitoClient(ctx context.Context, region string) (*CognitoClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &CognitoClient{client: cognitoidentityprovider.NewFromConfig(cfg)}, nil
}

func NewCognitoClient(client userAPI) *CognitoClient {
	return &CognitoClient{client: client}
}

// GetUser resolves an access token to the user's sub and role.
func (c *CognitoClient) GetUser(ctx context.Context, accessToken string) (*Identity, error) {
	out, err := c.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "NotAuthorizedException", "UserNotFoundException":
				return nil, ErrNotAuthorized
			}
		}
		return nil, err
	}

	identity := &Identity{Sub: aws.ToString(out.Username)}
	for _, attr := range out.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "sub":
			identity.Sub = aws.ToString(attr.Value)
		case RoleAttribute:
			identity.Role = aws.ToString(attr.Value)
		}
	}
	return identity, nil
}
