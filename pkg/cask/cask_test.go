package cask

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plyght/wax/pkg/metadata"
	"github.com/plyght/wax/pkg/state"
)

type fakeArtifact struct {
	record state.InstalledPackage
	err    error
}

func (f fakeArtifact) Apply(c *metadata.Cask) (state.InstalledPackage, error) {
	return f.record, f.err
}

func TestInstallRejectedOffDarwin(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("only exercises the non-darwin gate")
	}
	store := state.NewCaskStore(t.TempDir())
	_, err := Install(&metadata.Cask{Name: []string{"firefox"}}, fakeArtifact{}, store)
	require.Error(t, err)
}

func TestUninstallRejectedOffDarwin(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("only exercises the non-darwin gate")
	}
	store := state.NewCaskStore(t.TempDir())
	_, err := Uninstall("firefox", store)
	require.Error(t, err)
}
