package v1manifest

import (
	"github.com/pingcap-incubator/tiup/pkg/repository/v0manifest"
)

type (
	// Version represents a version string, like: v3.1.2
	Version = v0manifest.Version
)
