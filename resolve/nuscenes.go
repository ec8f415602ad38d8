package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/dsfetch/types"
	"github.com/projecteru2/dsfetch/version"
)

const (
	nuScenesProject  = "nuScenes"
	nuScenesRelease  = "v1.0"
	resolveTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
)

// NuScenes asks the nuScenes archive API for a signed download URL.
// The entry locator is the bare archive file name.
type NuScenes struct {
	base   string
	region string
	client *http.Client
}

// NewNuScenes creates a resolver for apiBase and region ("us" or "asia").
func NewNuScenes(apiBase, region string, client *http.Client) *NuScenes {
	if client == nil {
		client = &http.Client{Timeout: resolveTimeout}
	}
	return &NuScenes{base: strings.TrimRight(apiBase, "/"), region: region, client: client}
}

// Endpoint returns the API URL queried for archive.
func (n *NuScenes) Endpoint(archive string) string {
	q := url.Values{}
	q.Set("region", n.region)
	q.Set("project", nuScenesProject)
	return fmt.Sprintf("%s/v1/archives/%s/%s?%s", n.base, nuScenesRelease, url.PathEscape(archive), q.Encode())
}

func (n *NuScenes) Resolve(ctx context.Context, token string, entry types.Entry) (string, error) {
	logger := log.WithFunc("resolve.NuScenes")

	archive := entry.Locator
	if archive == "" || strings.Contains(archive, "/") {
		return "", fmt.Errorf("%w: %s: locator %q is not an archive name", types.ErrURLResolution, entry.Name, archive)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.Endpoint(archive), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", types.ErrURLResolution, entry.Name, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", types.ErrURLResolution, entry.Name, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: status %s", types.ErrURLResolution, entry.Name, resp.Status)
	}
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %s: decode response: %w", types.ErrURLResolution, entry.Name, err)
	}
	if body.URL == "" {
		return "", fmt.Errorf("%w: %s: response has no url", types.ErrURLResolution, entry.Name)
	}
	u, err := url.Parse(body.URL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return "", fmt.Errorf("%w: %s: unusable url in response", types.ErrURLResolution, entry.Name)
	}

	logger.Infof(ctx, "resolved %s in region %s", archive, n.region)
	return body.URL, nil
}
