package api

import (
	"strings"

	"github.com/google/uuid"

	"asyncrest/rest"
)

// TokenAuthenticator resolves "Authorization: Token <token>" headers against
// a static token→username map. A missing header leaves the request
// unclaimed; an unknown token fails authentication outright.
type TokenAuthenticator struct {
	Tokens map[string]string
}

func (a *TokenAuthenticator) Authenticate(c *rest.Context) (*rest.User, error) {
	header := c.Header("Authorization")
	if header == "" {
		return nil, nil
	}

	const prefix = "Token "
	if !strings.HasPrefix(header, prefix) {
		return nil, nil
	}

	username, ok := a.Tokens[strings.TrimPrefix(header, prefix)]
	if !ok {
		return nil, rest.ErrAuthenticationFailed
	}

	return &rest.User{
		ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(username)),
		Username: username,
	}, nil
}
