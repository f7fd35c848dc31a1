package metadata

import (
	"encoding/json"

	"github.com/plyght/wax/pkg/platform"
)

// formulaWire is the on-the-wire shape of one formulae.brew.sh entry; only
// the fields wax's core cares about are named, the rest fall through.
type formulaWire struct {
	Name         string   `json:"name"`
	FullName     string   `json:"full_name"`
	Tap          string   `json:"tap,omitempty"`
	Desc         string   `json:"desc,omitempty"`
	Homepage     string   `json:"homepage,omitempty"`
	VersionsWire struct {
		Stable string `json:"stable"`
	} `json:"versions"`
	Dependencies      []string `json:"dependencies,omitempty"`
	BuildDependencies []string `json:"build_dependencies,omitempty"`
	Bottle            struct {
		Stable struct {
			Files map[string]bottleJSONStable `json:"files"`
		} `json:"stable"`
	} `json:"bottle"`
}

// UnmarshalJSON adapts the upstream formula schema into wax's Formula,
// lifting the nested bottle.stable.files map into a platform.BottleDescriptor.
func (f *Formula) UnmarshalJSON(data []byte) error {
	var wire formulaWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	f.Name = wire.Name
	f.FullName = wire.FullName
	f.Tap = wire.Tap
	f.Description = wire.Desc
	f.Homepage = wire.Homepage
	f.Version = wire.VersionsWire.Stable
	f.RuntimeDeps = wire.Dependencies
	f.BuildDeps = wire.BuildDependencies

	if len(wire.Bottle.Stable.Files) > 0 {
		desc := &platform.BottleDescriptor{Files: make(map[string]platform.BottleFile, len(wire.Bottle.Stable.Files))}
		for tag, file := range wire.Bottle.Stable.Files {
			desc.Files[tag] = platform.BottleFile{URL: file.URL, SHA256: file.SHA256}
		}
		f.Bottle = desc
	}
	return nil
}

// MarshalJSON re-emits the same wire shape, so the on-disk cache round-trips.
func (f *Formula) MarshalJSON() ([]byte, error) {
	wire := formulaWire{
		Name:              f.Name,
		FullName:          f.FullName,
		Tap:               f.Tap,
		Desc:              f.Description,
		Homepage:          f.Homepage,
		Dependencies:      f.RuntimeDeps,
		BuildDependencies: f.BuildDeps,
	}
	wire.VersionsWire.Stable = f.Version
	if f.Bottle != nil {
		wire.Bottle.Stable.Files = make(map[string]bottleJSONStable, len(f.Bottle.Files))
		for tag, file := range f.Bottle.Files {
			wire.Bottle.Stable.Files[tag] = bottleJSONStable{URL: file.URL, SHA256: file.SHA256}
		}
	}
	return json.Marshal(wire)
}
