// Package identity issues signed, time-bounded bearer tokens for
// authenticated credentials. JWTIssuer signs tokens locally with HS256;
// CognitoIssuer asks an Amazon Cognito identity pool for an OpenID token.
package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Issuer mints a bearer token for a stable subject, the credential email.
type Issuer interface {
	Issue(ctx context.Context, subject string) (string, error)
}
