package utils

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// TokenDataKey is the echo context key the auth middleware stores caller data under.
const TokenDataKey = "token_data"

var ErrNoTokenData = errors.New("no authenticated caller in context")

type TokenData struct {
	Sub  string
	Role string
}

func ParseTokenDataCtx(c echo.Context) (*TokenData, error) {
	data, ok := c.Get(TokenDataKey).(*TokenData)
	if !ok || data == nil || data.Sub == "" {
		return nil, ErrNoTokenData
	}
	return data, nil
}
