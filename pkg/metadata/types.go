package metadata

import "github.com/plyght/wax/pkg/platform"

// Formula is an immutable record describing one installable package.
type Formula struct {
	Name        string
	FullName    string
	Tap         string
	Description string
	Homepage    string
	Version     string
	RuntimeDeps []string
	BuildDeps   []string
	Bottle      *platform.BottleDescriptor
}

// Cask is an immutable record describing one installable GUI application.
type Cask struct {
	Token       string   `json:"token"`
	FullToken   string   `json:"full_token"`
	Tap         string   `json:"tap,omitempty"`
	Name        []string `json:"name,omitempty"`
	Description string   `json:"desc,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
	Version     string   `json:"version"`
}

// bottleJSONStable mirrors one entry of formulae.brew.sh's
// `bottle.stable.files` map: {url, sha256} keyed by platform tag.
type bottleJSONStable struct {
	URL    string `json:"url"`
	SHA256 string `json:"sha256"`
}

// BottledFor reports whether the formula is bottled for the host, i.e. the
// descriptor exists and contains either the host tag or the "all" sentinel.
func (f *Formula) BottledFor(tag string) bool {
	if f.Bottle == nil {
		return false
	}
	if _, ok := f.Bottle.Files[tag]; ok {
		return true
	}
	_, ok := f.Bottle.Files[platform.AllTag]
	return ok
}

// QualifiedName returns "user/repo/name" when the formula belongs to a tap,
// else the bare canonical name.
func (f *Formula) QualifiedName() string {
	if f.Tap == "" {
		return f.Name
	}
	return f.Tap + "/" + f.Name
}
