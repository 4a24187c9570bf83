package aggregate

import (
	"sort"

	"github.com/ensoft/marple/pkg/datafile"
	"github.com/ensoft/marple/pkg/record"
)

// OtherLabel names the synthetic group holding everything outside the top N.
const OtherLabel = "other"

// Group is one aggregated bucket: a label and its summed weight.
type Group struct {
	Label  string
	Weight float64
}

// TopN groups a stack or point section by label, keeps the k heaviest groups
// and sums the rest into a single "other" group. Weight ties break by
// first-seen order, so the result is reproducible on identical input. The
// total weight of the output always equals the total weight of the section.
func TopN(s *datafile.Section, k int) ([]Group, error) {
	switch s.Header.Datatype {
	case record.DatatypeStack, record.DatatypePoint:
	default:
		return nil, &IncompatibleAggregationError{
			Index:     s.Index,
			Interface: s.Header.Interface,
			Want:      record.DatatypeStack,
			Got:       s.Header.Datatype,
		}
	}

	groups := make([]Group, 0)
	position := make(map[string]int)
	for _, r := range s.Records {
		label := record.Label(r)
		if i, seen := position[label]; seen {
			groups[i].Weight += record.Weight(r)
			continue
		}
		position[label] = len(groups)
		groups = append(groups, Group{Label: label, Weight: record.Weight(r)})
	}
	return TopGroups(groups, k), nil
}

// TopGroups applies the top-N-plus-other rule to already-grouped data. An
// existing "other" group stays the other bucket: it never competes for a
// top-N slot and is never re-split, which makes the transform idempotent.
func TopGroups(groups []Group, k int) []Group {
	if k < 0 {
		k = 0
	}

	other := Group{Label: OtherLabel}
	hasOther := false
	sorted := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Label == OtherLabel {
			other.Weight += g.Weight
			hasOther = true
			continue
		}
		sorted = append(sorted, g)
	}

	// Stable sort: equal weights keep their input order.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})

	if len(sorted) > k {
		for _, g := range sorted[k:] {
			other.Weight += g.Weight
		}
		sorted = sorted[:k:k]
		hasOther = true
	}
	if hasOther {
		sorted = append(sorted, other)
	}
	return sorted
}
