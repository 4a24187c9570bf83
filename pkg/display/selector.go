package display

import (
	"fmt"

	"github.com/ensoft/marple/pkg/datafile"
	"github.com/ensoft/marple/pkg/record"
)

// IncompatibleVisualizerError reports a resolved visualizer that cannot
// render the section's record variant. Selection never substitutes another
// visualizer silently.
type IncompatibleVisualizerError struct {
	Index      int
	Interface  string
	Visualizer Visualizer
	Datatype   record.Datatype
}

func (e *IncompatibleVisualizerError) Error() string {
	return fmt.Sprintf("section %d (interface %q): visualizer %q cannot render %s data",
		e.Index, e.Interface, e.Visualizer, e.Datatype)
}

// Overrides holds the user's per-datatype-family visualizer choices, at most
// one per family.
type Overrides map[record.Datatype]Visualizer

// Assignment binds one section to the visualizer that will render it.
type Assignment struct {
	Index      int
	Interface  string
	Datatype   record.Datatype
	Visualizer Visualizer
}

// Resolve decides the visualizer for one section:
//
//  1. a user override for the section's datatype family, if any;
//  2. else the configured default for the section's interface, if any;
//  3. else the hard-coded per-datatype fallback.
//
// A resolved visualizer incompatible with the datatype fails with
// *IncompatibleVisualizerError. Resolve is pure: identical inputs always
// produce the identical assignment.
func Resolve(info datafile.Info, overrides Overrides, defaults map[string]Visualizer) (Assignment, error) {
	resolved := Fallback(info.Datatype)
	if v, ok := defaults[info.Interface]; ok {
		resolved = v
	}
	if v, ok := overrides[info.Datatype]; ok {
		resolved = v
	}

	if !resolved.Compatible(info.Datatype) {
		return Assignment{}, &IncompatibleVisualizerError{
			Index:      info.Index,
			Interface:  info.Interface,
			Visualizer: resolved,
			Datatype:   info.Datatype,
		}
	}
	return Assignment{
		Index:      info.Index,
		Interface:  info.Interface,
		Datatype:   info.Datatype,
		Visualizer: resolved,
	}, nil
}

// Select resolves every listed section. It fails on the first section whose
// resolution fails; callers wanting per-section isolation use Resolve
// directly.
func Select(infos []datafile.Info, overrides Overrides, defaults map[string]Visualizer) ([]Assignment, error) {
	assignments := make([]Assignment, len(infos))
	for i, info := range infos {
		a, err := Resolve(info, overrides, defaults)
		if err != nil {
			return nil, err
		}
		assignments[i] = a
	}
	return assignments, nil
}

// ValidateDefaults checks a configured interface-to-visualizer mapping
// against the known visualizer set, so a bad configuration is caught at
// startup, before any file is processed.
func ValidateDefaults(defaults map[string]Visualizer) error {
	for iface, v := range defaults {
		if !v.Known() {
			return fmt.Errorf("display: interface %q configured with unknown visualizer %q", iface, v)
		}
	}
	return nil
}
