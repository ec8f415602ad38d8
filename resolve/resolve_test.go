package resolve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/dsfetch/types"
)

func TestStatic(t *testing.T) {
	loc, err := Static{}.Resolve(context.Background(), "", types.Entry{Locator: "https://example.com/a.zip"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.zip", loc)
}

func TestNuScenesEndpoint(t *testing.T) {
	n := NewNuScenes("https://api.example.com/", "asia", nil)
	assert.Equal(t,
		"https://api.example.com/v1/archives/v1.0/v1.0-test_meta.tgz?project=nuScenes&region=asia",
		n.Endpoint("v1.0-test_meta.tgz"))
}

func TestNuScenesResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/archives/v1.0/v1.0-trainval01_blobs.tgz", r.URL.Path)
		assert.Equal(t, "us", r.URL.Query().Get("region"))
		assert.Equal(t, "nuScenes", r.URL.Query().Get("project"))
		_, _ = w.Write([]byte(`{"url":"https://signed.example.com/v1.0-trainval01_blobs.tgz?sig=1"}`))
	}))
	t.Cleanup(srv.Close)

	loc, err := NewNuScenes(srv.URL, "us", nil).Resolve(context.Background(), "tok",
		types.Entry{Name: "trainval01_blobs", Locator: "v1.0-trainval01_blobs.tgz"})

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example.com/v1.0-trainval01_blobs.tgz?sig=1", loc)
}

func TestNuScenesResolveFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
		"json":   func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`not json`)) },
		"empty":  func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"url":""}`)) },
		"scheme": func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"url":"file:///etc/passwd"}`)) },
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			t.Cleanup(srv.Close)

			_, err := NewNuScenes(srv.URL, "asia", nil).Resolve(context.Background(), "tok",
				types.Entry{Name: "meta", Locator: "v1.0-test_meta.tgz"})

			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrURLResolution))
			assert.Equal(t, "UrlResolutionFailure", types.FailureKind(err))
		})
	}
}

func TestNuScenesRejectsPathLocator(t *testing.T) {
	_, err := NewNuScenes("https://api.invalid", "asia", nil).Resolve(context.Background(), "tok",
		types.Entry{Name: "x", Locator: "https://elsewhere/x.tgz"})
	assert.True(t, errors.Is(err, types.ErrURLResolution))
}
