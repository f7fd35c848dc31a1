package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBottleTagForPrefersHostTag(t *testing.T) {
	desc := &BottleDescriptor{Files: map[string]BottleFile{
		"arm64_sonoma": {URL: "https://example.com/a", SHA256: "aaa"},
		AllTag:         {URL: "https://example.com/all", SHA256: "bbb"},
	}}
	f, err := bottleTagFor(desc, "arm64_sonoma")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/a", f.URL)
}

func TestBottleTagForFallsBackToAllSentinel(t *testing.T) {
	desc := &BottleDescriptor{Files: map[string]BottleFile{
		AllTag: {URL: "https://example.com/all", SHA256: "bbb"},
	}}
	f, err := bottleTagFor(desc, "x86_64_linux")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/all", f.URL)
}

func TestBottleTagForMissingIsBottleNotAvailable(t *testing.T) {
	desc := &BottleDescriptor{Files: map[string]BottleFile{
		"arm64_sonoma": {URL: "https://example.com/a", SHA256: "aaa"},
	}}
	_, err := bottleTagFor(desc, "x86_64_linux")
	require.Error(t, err)
}

func TestBottleTagForNilDescriptor(t *testing.T) {
	_, err := bottleTagFor(nil, "x86_64_linux")
	require.Error(t, err)
}
