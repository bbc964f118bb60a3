package identity

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
)

// CognitoAPI is the subset of *cognitoidentity.Client used here.
type CognitoAPI interface {
	GetOpenIdTokenForDeveloperIdentity(ctx context.Context, in *cognitoidentity.GetOpenIdTokenForDeveloperIdentityInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetOpenIdTokenForDeveloperIdentityOutput, error)
}

// CognitoIssuer obtains OpenID tokens for developer-authenticated
// identities, using the email as the developer user identifier.
type CognitoIssuer struct {
	client        CognitoAPI
	poolID        string
	providerName  string
	tokenDuration int64
}

// DefaultCognitoTokenDuration is the token lifetime requested, in seconds.
const DefaultCognitoTokenDuration = 3600

func NewCognitoIssuer(client CognitoAPI, poolID, providerName string, tokenDurationSeconds int64) *CognitoIssuer {
	if tokenDurationSeconds <= 0 {
		tokenDurationSeconds = DefaultCognitoTokenDuration
	}
	return &CognitoIssuer{
		client:        client,
		poolID:        poolID,
		providerName:  providerName,
		tokenDuration: tokenDurationSeconds,
	}
}

func (c *CognitoIssuer) Issue(ctx context.Context, subject string) (string, error) {
	out, err := c.client.GetOpenIdTokenForDeveloperIdentity(ctx, &cognitoidentity.GetOpenIdTokenForDeveloperIdentityInput{
		IdentityPoolId: aws.String(c.poolID),
		Logins:         map[string]string{c.providerName: subject},
		TokenDuration:  aws.Int64(c.tokenDuration),
	})
	if err != nil {
		return "", err
	}

	token := aws.ToString(out.Token)
	if token == "" {
		return "", errors.New("cognito returned an empty token")
	}
	return token, nil
}
