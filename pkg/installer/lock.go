package installer

import (
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pingcap/errors"

	"github.com/plyght/wax/pkg/layout"
	"github.com/plyght/wax/pkg/waxerr"
)

const lockFileName = ".wax.lock"

// prefixLock wraps an advisory file lock that Install takes before its
// download phase and holds until its application phase ends, so two wax
// invocations against the same prefix never
// interleave Cellar moves or symlink writes (spec.md §9 open question on
// concurrent invocations).
type prefixLock struct {
	fl *flock.Flock
}

func acquirePrefixLock(l *layout.Layout) (*prefixLock, error) {
	fl := flock.New(filepath.Join(l.Prefix(), lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !locked {
		return nil, waxerr.Install("another wax invocation is applying changes to %s", l.Prefix())
	}
	return &prefixLock{fl: fl}, nil
}

func (p *prefixLock) release() {
	_ = p.fl.Unlock()
}
