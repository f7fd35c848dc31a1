package waxerr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormulaNotFoundIsDetectable(t *testing.T) {
	err := FormulaNotFound("nginx")
	require.True(t, Is(err, ErrFormulaNotFound))
	require.False(t, Is(err, ErrCaskNotFound))
}

func TestChecksumMismatchCarriesProperties(t *testing.T) {
	err := ChecksumMismatch("aaaa", "bbbb")
	require.Contains(t, Render(err), "aaaa")
	require.Contains(t, Render(err), "bbbb")
	require.Contains(t, Render(err), "retry or clear the download cache")
}

func TestDependencyCycleFormatsPath(t *testing.T) {
	err := DependencyCycle([]string{"a", "b", "c", "a"})
	require.Contains(t, err.Error(), "a → b → c → a")
}

func TestRenderNilIsEmpty(t *testing.T) {
	require.Equal(t, "", Render(nil))
}

func TestTypeOfDistinguishesForeignErrors(t *testing.T) {
	require.Nil(t, TypeOf(nil))
	require.NotNil(t, TypeOf(NotInstalled("tree")))
}

func TestHttpAndJsonBuildUsableErrors(t *testing.T) {
	httpErr := Http("request to %s failed", "example.com")
	require.True(t, Is(httpErr, ErrHttp))
	require.Contains(t, httpErr.Error(), "example.com")

	jsonErr := Json("%v", "unexpected end of JSON input")
	require.True(t, Is(jsonErr, ErrJson))
	require.Contains(t, jsonErr.Error(), "unexpected end of JSON input")
}
