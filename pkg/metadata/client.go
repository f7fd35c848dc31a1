// Package metadata implements wax's formula/cask index client and on-disk
// cache (spec.md C3): conditional GET against formulae.brew.sh, atomic
// cache replacement, and offline reads.
package metadata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pingcap/errors"

	"github.com/plyght/wax/pkg/logging"
	"github.com/plyght/wax/pkg/waxerr"
)

const (
	defaultBaseURL = "https://formulae.brew.sh"

	formulaeFile         = "formulae.json"
	casksFile             = "casks.json"
	formulaeValidatorsKey = "formulae"
	casksValidatorsKey    = "casks"
	validatorsFile        = "metadata.json"
)

// Client fetches and caches the formula and cask indices.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cacheDir   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client, e.g. in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the endpoint host, e.g. in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithCacheDir overrides the cache directory, e.g. in tests.
func WithCacheDir(dir string) Option {
	return func(c *Client) { c.cacheDir = dir }
}

// NewClient builds a Client with the platform-appropriate cache directory
// unless overridden by WithCacheDir.
func NewClient(opts ...Option) (*Client, error) {
	dir, err := CacheDir()
	if err != nil {
		return nil, errors.Trace(err)
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		cacheDir:   dir,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// UpdateResult reports the outcome of one Update call.
type UpdateResult struct {
	FormulaCount       int
	CaskCount          int
	FormulaNotModified bool
	CaskNotModified    bool
}

// allValidators is the on-disk shape of metadata.json: one Validators
// record per endpoint, keyed by endpoint name.
type allValidators map[string]Validators

// Update refreshes the formula and cask indices with conditional GET,
// replacing the on-disk cache atomically on a 200 and touching only the
// fetched-at timestamp on a 304 (spec.md §4.3 steps 1-5).
func (c *Client) Update(ctx context.Context) (*UpdateResult, error) {
	if err := ensureDir(c.cacheDir); err != nil {
		return nil, err
	}

	validators, err := c.loadValidators()
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{}

	formulaCount, notModified, err := c.updateEndpoint(ctx, "/api/formula.json", formulaeFile, formulaeValidatorsKey, validators)
	if err != nil {
		return nil, err
	}
	result.FormulaCount = formulaCount
	result.FormulaNotModified = notModified

	caskCount, notModified, err := c.updateEndpoint(ctx, "/api/cask.json", casksFile, casksValidatorsKey, validators)
	if err != nil {
		return nil, err
	}
	result.CaskCount = caskCount
	result.CaskNotModified = notModified

	if err := c.saveValidators(validators); err != nil {
		return nil, err
	}
	return result, nil
}

// updateEndpoint performs the conditional-GET dance for one endpoint and
// returns the number of records now cached and whether the fetch was a
// no-op 304.
func (c *Client) updateEndpoint(ctx context.Context, path, cacheFile, key string, validators allValidators) (int, bool, error) {
	v := validators[key]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, false, errors.Trace(err)
	}
	req.Header.Set("Accept-Encoding", "gzip")
	if v.ETag != "" {
		req.Header.Set("If-None-Match", v.ETag)
	}
	if v.LastModified != "" {
		req.Header.Set("If-Modified-Since", v.LastModified)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, false, waxerr.Http("%v", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		v.FetchedAt = time.Now().Unix()
		validators[key] = v
		count, err := c.countCached(cacheFile)
		if err != nil {
			return 0, true, err
		}
		logging.Verbose("metadata: %s not modified (304)", path)
		return count, true, nil
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, false, errors.Trace(err)
		}
		count, err := countRecords(body)
		if err != nil {
			return 0, false, waxerr.Json("%v", err)
		}
		if err := c.atomicWrite(cacheFile, body); err != nil {
			return 0, false, err
		}
		validators[key] = Validators{
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			FetchedAt:    time.Now().Unix(),
			Size:         int64(len(body)),
		}
		logging.Verbose("metadata: %s fetched %d records", path, count)
		return count, false, nil
	default:
		return 0, false, waxerr.Http("unexpected status %d fetching %s", resp.StatusCode, path)
	}
}

func countRecords(body []byte) (int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, err
	}
	return len(raw), nil
}

func (c *Client) countCached(cacheFile string) (int, error) {
	data, err := os.ReadFile(filepath.Join(c.cacheDir, cacheFile))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, waxerr.Cache("not initialized")
		}
		return 0, errors.Trace(err)
	}
	return countRecords(data)
}

// atomicWrite writes to a temp file in the cache directory then renames it
// into place, so a crash mid-write never leaves a truncated cache file
// (grounded on the teacher's write-then-rename profile pattern, adapted
// from os.WriteFile + os.Rename).
func (c *Client) atomicWrite(name string, data []byte) error {
	target := filepath.Join(c.cacheDir, name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Trace(err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (c *Client) loadValidators() (allValidators, error) {
	path := filepath.Join(c.cacheDir, validatorsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return allValidators{}, nil
		}
		return nil, errors.Trace(err)
	}
	var v allValidators
	if err := json.Unmarshal(data, &v); err != nil {
		return allValidators{}, nil
	}
	return v, nil
}

func (c *Client) saveValidators(v allValidators) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}
	return c.atomicWrite(validatorsFile, data)
}

// LoadFormulae deserializes the cached formula index. Returns
// waxerr.Cache("not initialized") if Update has never run successfully.
func (c *Client) LoadFormulae() ([]*Formula, error) {
	var formulae []*Formula
	if err := c.loadCached(formulaeFile, &formulae); err != nil {
		return nil, err
	}
	return formulae, nil
}

// LoadCasks deserializes the cached cask index.
func (c *Client) LoadCasks() ([]*Cask, error) {
	var casks []*Cask
	if err := c.loadCached(casksFile, &casks); err != nil {
		return nil, err
	}
	return casks, nil
}

func (c *Client) loadCached(name string, out interface{}) error {
	path := filepath.Join(c.cacheDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return waxerr.Cache("not initialized")
		}
		return errors.Trace(err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return waxerr.Json("%v", err)
	}
	return nil
}
