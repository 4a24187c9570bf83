// Package aggregate implements the pre-render transforms applied to sections
// before a visualizer consumes them: top-N-plus-other bucketing, category
// padding for stacked series, and event-timeline merging across sections.
//
// Every transform is pure: sections are never mutated, and re-running a
// transform on its own output with the same parameters reproduces it.
package aggregate

import (
	"fmt"

	"github.com/ensoft/marple/pkg/record"
)

// IncompatibleAggregationError reports an aggregation applied to a section
// holding the wrong record variant, or a mix of variants.
type IncompatibleAggregationError struct {
	Index     int
	Interface string
	Want      record.Datatype
	Got       record.Datatype
}

func (e *IncompatibleAggregationError) Error() string {
	return fmt.Sprintf("section %d (interface %q): cannot aggregate %s data as %s",
		e.Index, e.Interface, e.Got, e.Want)
}
