package metadata

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pingcap/errors"
)

// Validators is the per-endpoint cache metadata used to emit conditional
// GET requests: ETag, Last-Modified, the time of the last successful fetch,
// and the body size observed at that time.
type Validators struct {
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	FetchedAt    int64  `json:"fetched_at"`
	Size         int64  `json:"size"`
}

const fallbackCacheDir = ".wax/cache"

// CacheDir resolves wax's cache directory: macOS user cache dir, Linux XDG
// cache dir, or ~/.wax/cache as a last resort, grounded on adrg/xdg's
// per-platform resolution (arthur-debert-dodot/pkg/paths/paths.go).
func CacheDir() (string, error) {
	if dir, err := xdg.CacheFile(filepath.Join("wax", ".keep")); err == nil {
		return filepath.Dir(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Annotatef(err, "could not resolve a home directory for the wax cache")
	}
	return filepath.Join(home, fallbackCacheDir), nil
}

// LogDir returns the rotated-log subdirectory of the cache directory.
func LogDir() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

func ensureDir(dir string) error {
	return errors.Trace(os.MkdirAll(dir, 0o755))
}
