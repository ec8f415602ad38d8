// Package cognito logs into an AWS Cognito user pool with the
// USER_PASSWORD_AUTH flow and hands out the resulting ID token.
package cognito

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ciptypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/projecteru2/core/log"

	"github.com/projecteru2/dsfetch/types"
)

const (
	// DefaultRegion is where the nuScenes user pool lives.
	DefaultRegion = "us-east-1"

	requestTimeout = 30 * time.Second
)

// Client is an Authenticator backed by Cognito InitiateAuth.
type Client struct {
	clientID string
	username string
	password string
	idp      *cip.Client
}

// Options configures a Client. Endpoint overrides the regional Cognito
// endpoint; Region defaults to DefaultRegion.
type Options struct {
	Region     string
	Endpoint   string
	ClientID   string
	Username   string
	Password   string
	HTTPClient *http.Client
}

// New creates a Client. Missing credentials surface on the first Token call.
func New(opts Options) *Client {
	if opts.Region == "" {
		opts.Region = DefaultRegion
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: requestTimeout}
	}
	idpOpts := cip.Options{
		Region: opts.Region,
		// InitiateAuth with USER_PASSWORD_AUTH is an unsigned call.
		Credentials:      aws.AnonymousCredentials{},
		HTTPClient:       opts.HTTPClient,
		RetryMaxAttempts: 1,
	}
	if opts.Endpoint != "" {
		idpOpts.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return &Client{
		clientID: opts.ClientID,
		username: opts.Username,
		password: opts.Password,
		idp:      cip.New(idpOpts),
	}
}

// Token performs one InitiateAuth call and returns AuthenticationResult.IdToken.
func (c *Client) Token(ctx context.Context) (string, error) {
	logger := log.WithFunc("cognito.Token")

	if c.username == "" || c.password == "" {
		return "", fmt.Errorf("%w: email and password are required", types.ErrAuthentication)
	}
	if c.clientID == "" {
		return "", fmt.Errorf("%w: client id is required", types.ErrAuthentication)
	}

	out, err := c.idp.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: ciptypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME": c.username,
			"PASSWORD": c.password,
		},
		ClientMetadata: map[string]string{},
	})
	if err != nil {
		return "", fmt.Errorf("%w: InitiateAuth: %s", types.ErrAuthentication, describe(err))
	}

	res := out.AuthenticationResult
	if res == nil || aws.ToString(res.IdToken) == "" {
		if out.ChallengeName != "" {
			return "", fmt.Errorf("%w: unsupported challenge %s", types.ErrAuthentication, out.ChallengeName)
		}
		return "", fmt.Errorf("%w: response carries no id token", types.ErrAuthentication)
	}

	logger.Infof(ctx, "logged in as %s (token valid for %ds)", c.username, res.ExpiresIn)
	return aws.ToString(res.IdToken), nil
}

// describe renders a service error as "Code: message", e.g.
// NotAuthorizedException: Incorrect username or password.
func describe(err error) string {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	if msg := apiErr.ErrorMessage(); msg != "" {
		return apiErr.ErrorCode() + ": " + msg
	}
	return apiErr.ErrorCode()
}
