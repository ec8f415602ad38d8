// Package auth obtains bearer tokens for datasets behind a login.
package auth

import "context"

// Authenticator returns a bearer token. Every failure wraps types.ErrAuthentication.
type Authenticator interface {
	Token(ctx context.Context) (string, error)
}

// Func adapts a plain function to Authenticator.
type Func func(ctx context.Context) (string, error)

func (f Func) Token(ctx context.Context) (string, error) { return f(ctx) }
