// Package platform detects the host operating system, CPU architecture,
// and bottle-platform tag, and locates the Homebrew-compatible prefix.
// All functions are pure modulo two subprocess calls (`sw_vers` for the
// macOS OS version, `brew --prefix` for the prefix) and the directory
// checks of the prefix fallbacks; results are memoized for the lifetime of the process
// rather than stored in a mutable global, per the no-mutable-singletons
// rule (spec.md §9).
package platform

import (
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/pingcap/errors"

	"github.com/plyght/wax/pkg/waxerr"
)

// AllTag is the bottle-descriptor sentinel meaning "works on every platform".
const AllTag = "all"

// macOSCodenames maps a macOS major version to the named tag the upstream
// Homebrew bottle scheme uses.
var macOSCodenames = map[int]string{
	14: "sonoma",
	13: "ventura",
	12: "monterey",
	11: "big_sur",
}

var (
	detectOnce sync.Once
	detected   string
	detectErr  error
)

// Detect returns the bottle-platform tag for the current host, e.g.
// "arm64_sonoma", "x86_64_linux", or "aarch64_linux". The result is computed
// once per process and memoized.
func Detect() (string, error) {
	detectOnce.Do(func() {
		detected, detectErr = detect()
	})
	return detected, detectErr
}

func detect() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		major, err := macOSMajorVersion()
		if err != nil {
			return "", errors.Trace(err)
		}
		codename, ok := macOSCodenames[major]
		if !ok {
			return "", waxerr.PlatformNotSupported("macOS " + strconv.Itoa(major))
		}
		arch := "x86_64"
		if runtime.GOARCH == "arm64" {
			arch = "arm64"
		}
		if arch == "arm64" {
			return "arm64_" + codename, nil
		}
		return codename, nil
	case "linux":
		switch runtime.GOARCH {
		case "arm64":
			return "aarch64_linux", nil
		default:
			return "x86_64_linux", nil
		}
	default:
		return "", waxerr.PlatformNotSupported(runtime.GOOS)
	}
}

// macOSMajorVersion shells out to `sw_vers -productVersion` and parses the
// major version component, grounded on the teacher's subprocess-probe
// idiom for `brew --prefix` (pkg/repository/v1_repository.go family).
func macOSMajorVersion() (int, error) {
	out, err := exec.Command("sw_vers", "-productVersion").Output()
	if err != nil {
		return 0, errors.Annotatef(err, "sw_vers -productVersion failed")
	}
	version := strings.TrimSpace(string(out))
	parts := strings.SplitN(version, ".", 2)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.Annotatef(err, "could not parse macOS version %q", version)
	}
	return major, nil
}

var (
	prefixOnce sync.Once
	prefix     string
	prefixErr  error
)

// HomebrewPrefix returns the Homebrew-compatible install prefix, trying
// `brew --prefix` first and falling back to the well-known per-platform
// defaults. Returns waxerr.HomebrewNotFound only if none of those exist.
func HomebrewPrefix() (string, error) {
	prefixOnce.Do(func() {
		prefix, prefixErr = homebrewPrefix()
	})
	return prefix, prefixErr
}

func homebrewPrefix() (string, error) {
	if out, err := exec.Command("brew", "--prefix").Output(); err == nil {
		if p := strings.TrimSpace(string(out)); p != "" {
			return p, nil
		}
	}

	for _, candidate := range fallbackPrefixes() {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", waxerr.HomebrewNotFound()
}

func fallbackPrefixes() []string {
	switch runtime.GOOS {
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return []string{"/opt/homebrew"}
		}
		return []string{"/usr/local"}
	case "linux":
		return []string{"/home/linuxbrew/.linuxbrew"}
	default:
		return nil
	}
}

// BottleFile is the concrete {url, sha256} pair for one platform tag.
type BottleFile struct {
	URL    string
	SHA256 string
}

// BottleDescriptor maps a platform tag (or the AllTag sentinel) to its file.
type BottleDescriptor struct {
	Files map[string]BottleFile
}

// BottleTagFor returns the concrete bottle file for the host's platform
// tag, falling back to the AllTag sentinel, or waxerr.BottleNotAvailable.
func BottleTagFor(desc *BottleDescriptor) (*BottleFile, error) {
	tag, err := Detect()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return bottleTagFor(desc, tag)
}

func bottleTagFor(desc *BottleDescriptor, tag string) (*BottleFile, error) {
	if desc == nil {
		return nil, waxerr.BottleNotAvailable(tag)
	}
	if f, ok := desc.Files[tag]; ok {
		return &f, nil
	}
	if f, ok := desc.Files[AllTag]; ok {
		return &f, nil
	}
	return nil, waxerr.BottleNotAvailable(tag)
}
