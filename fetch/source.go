package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/projecteru2/dsfetch/types"
	"github.com/projecteru2/dsfetch/version"
)

// Source opens a streaming read of the payload behind a locator.
// size is the declared length, or -1 when unknown.
type Source interface {
	Schemes() []string
	Open(ctx context.Context, locator string) (body io.ReadCloser, size int64, err error)
}

// HTTPSource fetches http:// and https:// locators with a plain GET.
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource returns an HTTPSource using client, or a client without
// an overall timeout (dataset archives take hours) when client is nil.
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				// Payload bytes must reach the digest exactly as served.
				DisableCompression: true,
				Proxy:              http.ProxyFromEnvironment,
			},
		}
	}
	return &HTTPSource{client: client}
}

func (s *HTTPSource) Schemes() []string { return []string{"http", "https"} }

// Open issues the GET. Connection errors and non-2xx statuses wrap types.ErrNetwork.
func (s *HTTPSource) Open(ctx context.Context, locator string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: HTTP GET %s: %w", types.ErrNetwork, Redact(locator), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close() //nolint:errcheck,gosec
		return nil, 0, fmt.Errorf("%w: HTTP GET %s: status %s", types.ErrNetwork, Redact(locator), resp.Status)
	}
	return resp.Body, resp.ContentLength, nil
}

// Redact drops the query string and credentials of a locator so signed
// download URLs never end up in logs.
func Redact(locator string) string {
	u, err := url.Parse(locator)
	if err != nil {
		return "<invalid locator>"
	}
	u.User = nil
	if u.RawQuery != "" {
		u.RawQuery = "..."
	}
	u.Fragment = ""
	return u.String()
}
