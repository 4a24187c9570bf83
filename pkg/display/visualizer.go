// Package display implements the display-selection engine: it decides, per
// section of a data file, which visualizer renders it, from user overrides,
// configured per-interface defaults and the fixed per-datatype fallbacks.
package display

import "github.com/ensoft/marple/pkg/record"

// Visualizer names a rendering backend. The renderers themselves are
// external; this package only decides and validates the assignment.
type Visualizer string

const (
	Flamegraph Visualizer = "flamegraph"
	Treemap    Visualizer = "treemap"
	Heatmap    Visualizer = "heatmap"
	Stackplot  Visualizer = "stackplot"
	G2         Visualizer = "g2"
	Eventplot  Visualizer = "eventplot"
)

// compatibility is the closed variant-to-visualizer matrix. Order matters:
// the first entry per datatype is the hard-coded fallback.
var compatibility = map[record.Datatype][]Visualizer{
	record.DatatypeStack: {Flamegraph, Treemap},
	record.DatatypePoint: {Heatmap, Stackplot},
	record.DatatypeEvent: {G2, Eventplot},
}

// Known reports whether v is a recognized visualizer name.
func (v Visualizer) Known() bool {
	for _, options := range compatibility {
		for _, option := range options {
			if option == v {
				return true
			}
		}
	}
	return false
}

// Compatible reports whether v can render the given record variant.
func (v Visualizer) Compatible(dt record.Datatype) bool {
	for _, option := range compatibility[dt] {
		if option == v {
			return true
		}
	}
	return false
}

// Options returns the visualizers able to render the given variant.
func Options(dt record.Datatype) []Visualizer {
	options := compatibility[dt]
	out := make([]Visualizer, len(options))
	copy(out, options)
	return out
}

// Fallback returns the designated default visualizer for a variant.
func Fallback(dt record.Datatype) Visualizer {
	return compatibility[dt][0]
}
