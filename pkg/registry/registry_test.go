package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRepoFromURL(t *testing.T) {
	host, repo, err := RepoFromURL("https://ghcr.io/v2/homebrew/core/tree/blobs/sha256:abcd1234")
	require.NoError(t, err)
	require.Equal(t, "ghcr.io", host)
	require.Equal(t, "homebrew/core/tree", repo)
}

func TestRepoFromURLWithoutV2SegmentIsError(t *testing.T) {
	_, _, err := RepoFromURL("https://example.com/not-a-registry-url")
	require.Error(t, err)
}

func TestIsRegistryHost(t *testing.T) {
	require.True(t, IsRegistryHost("https://ghcr.io/v2/x/blobs/sha256:aaa", "ghcr.io"))
	require.False(t, IsRegistryHost("https://example.com/file.tar.gz", "ghcr.io"))
}

func TestTokenFetchesAndCaches(t *testing.T) {
	var requests int
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.Equal(t, "repository:homebrew/core/tree:pull", r.URL.Query().Get("scope"))
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	}))
	defer srv.Close()

	c := NewTokenClientWithHTTPClient(srv.Client())
	host := srv.Listener.Addr().String()

	tok, err := c.Token(context.Background(), host, "homebrew/core/tree")
	require.NoError(t, err)
	require.Equal(t, "tok-123", tok)

	// Second call for the same (host, repo) must not hit the network again.
	tok2, err := c.Token(context.Background(), host, "homebrew/core/tree")
	require.NoError(t, err)
	require.Equal(t, "tok-123", tok2)
	require.Equal(t, 1, requests)
}

func TestTokenRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewTokenClientWithHTTPClient(srv.Client())
	_, err := c.Token(context.Background(), srv.Listener.Addr().String(), "homebrew/core/tree")
	require.Error(t, err)
}
