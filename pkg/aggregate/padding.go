package aggregate

import (
	"sort"

	"github.com/ensoft/marple/pkg/datafile"
	"github.com/ensoft/marple/pkg/record"
)

// Stacked is a point section reshaped for stacked rendering: every x bucket
// carries a value for every category, in one fixed category order.
type Stacked struct {
	// Xs are the bucket coordinates, ascending.
	Xs []float64

	// Categories in stacking order, bottom of the stack first. The
	// permutation is first-seen order over the section's records and is the
	// same for every bucket.
	Categories []string

	// Values[i][j] is the value of Categories[i] at Xs[j]. Buckets missing a
	// category carry an explicit zero.
	Values [][]float64
}

// Legend returns the categories in legend order, which is the reverse of the
// stacking order: the topmost band comes first.
func (s *Stacked) Legend() []string {
	legend := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		legend[len(legend)-1-i] = c
	}
	return legend
}

// PadCategories buckets a point section by x and pads every bucket with
// zero-valued entries for the categories it is missing, so all buckets carry
// the identical category set (the union across buckets). Repeated values of
// one category inside a bucket are summed.
func PadCategories(s *datafile.Section) (*Stacked, error) {
	if s.Header.Datatype != record.DatatypePoint {
		return nil, &IncompatibleAggregationError{
			Index:     s.Index,
			Interface: s.Header.Interface,
			Want:      record.DatatypePoint,
			Got:       s.Header.Datatype,
		}
	}

	buckets := make(map[float64]map[string]float64)
	var xs []float64
	var categories []string
	seen := make(map[string]bool)

	for _, r := range s.Records {
		p := r.(record.Point)
		bucket, ok := buckets[p.X]
		if !ok {
			bucket = make(map[string]float64)
			buckets[p.X] = bucket
			xs = append(xs, p.X)
		}
		bucket[p.Info] += p.Y
		if !seen[p.Info] {
			seen[p.Info] = true
			categories = append(categories, p.Info)
		}
	}
	sort.Float64s(xs)

	values := make([][]float64, len(categories))
	for i, category := range categories {
		row := make([]float64, len(xs))
		for j, x := range xs {
			row[j] = buckets[x][category] // zero when absent
		}
		values[i] = row
	}

	return &Stacked{Xs: xs, Categories: categories, Values: values}, nil
}
