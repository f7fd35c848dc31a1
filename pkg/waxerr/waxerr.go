// Package waxerr defines the closed set of failure kinds that wax's core
// uses for the failures it classifies, so callers can render a kind label
// and a cause without further lookup. Not every error is classified:
// filesystem and other OS-level errors are returned wrapped with
// pingcap/errors and carry no kind (TypeOf returns nil for them).
package waxerr

import (
	"fmt"

	"github.com/joomcode/errorx"
)

// Namespace is the root errorx namespace for all wax errors.
var Namespace = errorx.NewNamespace("wax")

// ErrPropSuggestion carries a user-facing remediation suggestion.
var ErrPropSuggestion = errorx.RegisterProperty("suggestion")

// ErrPropExpected and ErrPropActual carry the two sides of a checksum mismatch.
var (
	ErrPropExpected = errorx.RegisterProperty("expected")
	ErrPropActual   = errorx.RegisterProperty("actual")
	ErrPropPath     = errorx.RegisterProperty("path")
	ErrPropFeature  = errorx.RegisterProperty("feature")
)

// Kinds, one errorx.Type per spec.md §4.1 taxonomy entry.
var (
	ErrHttp              = Namespace.NewType("http")
	ErrJson              = Namespace.NewType("json")
	Io                   = Namespace.NewType("io")
	ErrFormulaNotFound   = Namespace.NewType("formula_not_found")
	ErrCaskNotFound      = Namespace.NewType("cask_not_found")
	ErrCache             = Namespace.NewType("cache")
	ErrHomebrewNotFound  = Namespace.NewType("homebrew_not_found")
	ErrChecksumMismatch  = Namespace.NewType("checksum_mismatch")
	ErrBottleUnavailable = Namespace.NewType("bottle_not_available")
	ErrDependencyCycle   = Namespace.NewType("dependency_cycle")
	ErrInstall           = Namespace.NewType("install")
	ErrNotInstalled      = Namespace.NewType("not_installed")
	ErrLockfile          = Namespace.NewType("lockfile")
	ErrPlatformUnsupport = Namespace.NewType("platform_not_supported")
	ErrBuild             = Namespace.NewType("build")
	ErrParse             = Namespace.NewType("parse")
	ErrTap               = Namespace.NewType("tap")
)

// FormulaNotFound builds a FormulaNotFound(name) error.
func FormulaNotFound(name string) error {
	return ErrFormulaNotFound.New("formula %q not found", name)
}

// CaskNotFound builds a CaskNotFound(name) error.
func CaskNotFound(name string) error {
	return ErrCaskNotFound.New("cask %q not found", name)
}

// Cache builds a Cache(msg) error.
func Cache(format string, args ...interface{}) error {
	return ErrCache.New(format, args...)
}

// Http builds an Http(msg) error.
func Http(format string, args ...interface{}) error {
	return ErrHttp.New(format, args...)
}

// Json builds a Json(msg) error.
func Json(format string, args ...interface{}) error {
	return ErrJson.New(format, args...)
}

// HomebrewNotFound builds a HomebrewNotFound error.
func HomebrewNotFound() error {
	return ErrHomebrewNotFound.New("no homebrew-compatible prefix found on this host")
}

// ChecksumMismatch builds a ChecksumMismatch{expected, actual} error.
func ChecksumMismatch(expected, actual string) error {
	return ErrChecksumMismatch.New("checksum mismatch, expected %s, got %s", expected, actual).
		WithProperty(ErrPropExpected, expected).
		WithProperty(ErrPropActual, actual).
		WithProperty(ErrPropSuggestion, "retry or clear the download cache")
}

// BottleNotAvailable builds a BottleNotAvailable(platformTag) error.
func BottleNotAvailable(platformTag string) error {
	return ErrBottleUnavailable.New("no bottle available for platform %q", platformTag)
}

// DependencyCycle builds a DependencyCycle(path) error.
func DependencyCycle(path []string) error {
	return ErrDependencyCycle.New("dependency cycle: %s", formatCycle(path)).
		WithProperty(ErrPropPath, path)
}

func formatCycle(path []string) string {
	out := ""
	for i, name := range path {
		if i > 0 {
			out += " → "
		}
		out += name
	}
	return out
}

// Install builds an Install(msg) error.
func Install(format string, args ...interface{}) error {
	return ErrInstall.New(format, args...)
}

// NotInstalled builds a NotInstalled(name) error.
func NotInstalled(name string) error {
	return ErrNotInstalled.New("%q is not installed", name).WithProperty(ErrPropPath, name)
}

// Lockfile builds a Lockfile(msg) error.
func Lockfile(format string, args ...interface{}) error {
	return ErrLockfile.New(format, args...)
}

// PlatformNotSupported builds a PlatformNotSupported(feature) error.
func PlatformNotSupported(feature string) error {
	return ErrPlatformUnsupport.New("%s is not supported on this platform", feature).
		WithProperty(ErrPropFeature, feature)
}

// Build builds a Build(msg) error.
func Build(format string, args ...interface{}) error {
	return ErrBuild.New(format, args...)
}

// Parse builds a Parse(msg) error.
func Parse(format string, args ...interface{}) error {
	return ErrParse.New(format, args...)
}

// Tap builds a Tap(msg) error.
func Tap(format string, args ...interface{}) error {
	return ErrTap.New(format, args...)
}

// Render formats an error for CLI display: a short kind label, the one-line
// cause, and any attached suggestion. Progress output must be torn down by
// the caller before calling Render (spec.md §7).
func Render(err error) string {
	if err == nil {
		return ""
	}
	label := "error"
	if t := TypeOf(err); t != nil {
		label = t.String()
	}
	msg := fmt.Sprintf("[%s] %s", label, err.Error())
	if suggestion, ok := errorx.ExtractProperty(err, ErrPropSuggestion); ok {
		msg = fmt.Sprintf("%s (%v)", msg, suggestion)
	}
	return msg
}

// Is reports whether err is of the given errorx kind, checking the whole
// wrap chain the way errorx.IsOfType does.
func Is(err error, kind *errorx.Type) bool {
	return errorx.IsOfType(err, kind)
}

// TypeOf returns err's errorx type, or nil if err was not built from this
// taxonomy (e.g. a cobra argument/flag error).
func TypeOf(err error) *errorx.Type {
	if e := errorx.Cast(err); e != nil {
		return e.Type()
	}
	return nil
}
