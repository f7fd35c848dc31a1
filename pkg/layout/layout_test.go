package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectRejectsBothFlags(t *testing.T) {
	_, err := Select(true, true)
	require.Error(t, err)
}

func TestSelectUser(t *testing.T) {
	l, err := Select(true, false)
	require.NoError(t, err)
	require.Equal(t, User, l.Mode)
	require.Contains(t, l.Prefix(), filepath.Join(".local", "wax"))
}

func TestPathDerivationsArePureFunctionsOfPrefix(t *testing.T) {
	l := &Layout{Mode: User, prefix: "/tmp/wax-test-prefix"}
	require.Equal(t, "/tmp/wax-test-prefix/Cellar", l.CellarPath())
	require.Equal(t, "/tmp/wax-test-prefix/Cellar/tree/2.2.1", l.CellarVersionPath("tree", "2.2.1"))
	require.Equal(t, "/tmp/wax-test-prefix/bin", l.BinPath())
	require.Equal(t, "/tmp/wax-test-prefix/lib", l.LibPath())
	require.Equal(t, "/tmp/wax-test-prefix/include", l.IncludePath())
	require.Equal(t, "/tmp/wax-test-prefix/share", l.SharePath())
	require.Equal(t, "/tmp/wax-test-prefix/etc", l.EtcPath())
	require.Equal(t, "/tmp/wax-test-prefix/sbin", l.SbinPath())
}

func TestValidateRejectsPrefixUnderARegularFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	l := &Layout{Mode: Global, prefix: filepath.Join(blocker, "nested", "prefix")}
	require.Error(t, l.Validate())
}

func TestValidateAcceptsWritableTempDir(t *testing.T) {
	dir := t.TempDir()
	l := &Layout{Mode: User, prefix: filepath.Join(dir, "prefix")}
	require.NoError(t, l.Validate())
}

func TestSubdirsReturnsACopy(t *testing.T) {
	a := Subdirs()
	a[0] = "mutated"
	b := Subdirs()
	require.NotEqual(t, a[0], b[0])
}
