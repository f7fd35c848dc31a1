package installer

import (
	"strings"

	"golang.org/x/mod/semver"
)

// versionEqual reports whether two Homebrew formula version strings name
// the same version. Exact string equality is tried first since most
// formula versions round-trip byte-for-byte; when they differ, both sides
// are coerced to SemVer (teacher's utils.FmtVer "v"-prefix pattern) and
// compared numerically so "2.2.1" and "v2.2.1" don't read as an upgrade
// when they're the same release. Versions that still aren't valid SemVer
// after prefixing (Homebrew revisions like "1.2.3_1", four-part versions
// like "2.2.1.0") fall back to the exact-match result.
func versionEqual(a, b string) bool {
	if a == b {
		return true
	}
	va, oka := normalizeSemver(a)
	vb, okb := normalizeSemver(b)
	if oka && okb {
		return semver.Compare(va, vb) == 0
	}
	return false
}

func normalizeSemver(v string) (string, bool) {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v, semver.IsValid(v)
}
