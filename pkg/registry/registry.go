// Package registry resolves anonymous bearer tokens from a container
// registry, splitting the token exchange out of the bottle transport's
// streaming/verify/extract concerns (spec.md §4.5 step 1, supplemented per
// SPEC_FULL.md §5 pkg/registry).
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pingcap/errors"

	"github.com/plyght/wax/pkg/waxerr"
)

// DefaultHost is the container-registry host wax's bottle URLs are
// expected to live on.
const DefaultHost = "ghcr.io"

// TokenClient acquires and, for the lifetime of one instance only, caches
// anonymous pull tokens per (host, repository). Never persisted to disk.
type TokenClient struct {
	httpClient *http.Client
	mu         sync.Mutex
	cache      map[string]string
}

// NewTokenClient builds a TokenClient with a 30s default timeout
// (spec.md §5 "default 30-second initial-response timeout").
func NewTokenClient() *TokenClient {
	return &TokenClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      make(map[string]string),
	}
}

// NewTokenClientWithHTTPClient builds a TokenClient against a caller-
// supplied http.Client, e.g. in tests against an httptest.Server.
func NewTokenClientWithHTTPClient(hc *http.Client) *TokenClient {
	return &TokenClient{httpClient: hc, cache: make(map[string]string)}
}

// RepoFromURL derives a registry repository path from a blob URL, e.g.
// https://ghcr.io/v2/homebrew/core/tree/blobs/sha256:... -> homebrew/core/tree.
func RepoFromURL(rawURL string) (host, repo string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", errors.Trace(err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// Expected shape: v2/<repo...>/blobs/sha256:<digest>
	idx := -1
	for i, p := range parts {
		if p == "v2" {
			idx = i
			break
		}
	}
	if idx == -1 || idx+1 >= len(parts) {
		return "", "", waxerr.Install("could not derive registry repository from url %s", rawURL)
	}
	end := len(parts)
	for i := idx + 1; i < len(parts); i++ {
		if parts[i] == "blobs" || parts[i] == "manifests" {
			end = i
			break
		}
	}
	return u.Host, strings.Join(parts[idx+1:end], "/"), nil
}

// Token returns a bearer token scoped "repository:<repo>:pull" for host,
// reusing a token already fetched for the same (host, repo) pair within
// this TokenClient's lifetime.
func (c *TokenClient) Token(ctx context.Context, host, repo string) (string, error) {
	key := host + "|" + repo
	c.mu.Lock()
	if tok, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	tokenURL := fmt.Sprintf("https://%s/token?scope=repository:%s:pull", host, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL, nil)
	if err != nil {
		return "", errors.Trace(err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", waxerr.Http("token request to %s failed: %v", host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", waxerr.Http("token request to %s returned %d: %s", host, resp.StatusCode, string(body))
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", waxerr.Json("%v", err)
	}
	if payload.Token == "" {
		return "", waxerr.Install("empty token returned by %s", host)
	}

	c.mu.Lock()
	c.cache[key] = payload.Token
	c.mu.Unlock()
	return payload.Token, nil
}

// IsRegistryHost reports whether rawURL's host matches the container
// registry this TokenClient talks to.
func IsRegistryHost(rawURL, host string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Host == host
}
