package emit

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/pprof/profile"

	"github.com/ensoft/marple/pkg/aggregate"
	"github.com/ensoft/marple/pkg/datafile"
	"github.com/ensoft/marple/pkg/record"
)

// writeFlamegraph emits the section as collapsed stacks ("frame;frame value"
// lines, the input format of flamegraph generators) plus a gzipped pprof
// export of the same data for pprof-based tooling.
func writeFlamegraph(s *datafile.Section, base string, p Params) (string, error) {
	groups, err := stackGroups(s, p)
	if err != nil {
		return "", err
	}

	collapsed := base + ".collapsed"
	err = writeFile(collapsed, func(f *os.File) error {
		for _, g := range groups {
			if _, err := fmt.Fprintf(f, "%s %s\n", g.Label, formatWeight(g.Weight)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	prof := groupsToPProf(groups, s.Header.Interface)
	err = writeFile(base+".pb.gz", func(f *os.File) error {
		return prof.Write(f)
	})
	if err != nil {
		return "", err
	}
	return collapsed, nil
}

// stackGroups prepares the section's stacks for emission: top-N-plus-other
// groups, or one group per record in collected order when aggregation is
// disabled.
func stackGroups(s *datafile.Section, p Params) ([]aggregate.Group, error) {
	if !p.Raw {
		return aggregate.TopN(s, p.TopN)
	}
	groups := make([]aggregate.Group, s.Len())
	for i, r := range s.Records {
		groups[i] = aggregate.Group{Label: record.Label(r), Weight: record.Weight(r)}
	}
	return groups, nil
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// groupsToPProf converts aggregated stack groups into a pprof profile, one
// sample per group, one synthetic location per distinct frame.
func groupsToPProf(groups []aggregate.Group, iface string) *profile.Profile {
	prof := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: iface, Unit: "count"}},
		Sample:     make([]*profile.Sample, len(groups)),
	}

	locations := make(map[string]*profile.Location)
	for i, g := range groups {
		sample := &profile.Sample{Value: []int64{int64(g.Weight)}}
		for _, frame := range strings.Split(g.Label, ";") {
			loc, found := locations[frame]
			if !found {
				fn := &profile.Function{
					ID:   1 + uint64(len(prof.Function)),
					Name: frame,
				}
				loc = &profile.Location{
					ID:   1 + uint64(len(prof.Location)),
					Line: []profile.Line{{Function: fn}},
				}
				locations[frame] = loc
				prof.Function = append(prof.Function, fn)
				prof.Location = append(prof.Location, loc)
			}
			sample.Location = append(sample.Location, loc)
		}
		// pprof stacks are leaf first, collapsed stacks root first.
		for l, r := 0, len(sample.Location)-1; l < r; l, r = l+1, r-1 {
			sample.Location[l], sample.Location[r] = sample.Location[r], sample.Location[l]
		}
		prof.Sample[i] = sample
	}
	return prof
}
