// Package resolve turns a manifest locator into a fetchable URL right
// before the entry is fetched.
package resolve

import (
	"context"

	"github.com/projecteru2/dsfetch/types"
)

// Resolver produces the download locator of entry. token is the bearer
// token of the manifest's authenticator, empty when there is none.
// Every failure wraps types.ErrURLResolution.
type Resolver interface {
	Resolve(ctx context.Context, token string, entry types.Entry) (string, error)
}

// Static returns the entry locator unchanged.
type Static struct{}

func (Static) Resolve(_ context.Context, _ string, entry types.Entry) (string, error) {
	return entry.Locator, nil
}
