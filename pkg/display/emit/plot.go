package emit

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ensoft/marple/pkg/aggregate"
	"github.com/ensoft/marple/pkg/datafile"
	"github.com/ensoft/marple/pkg/record"
)

// writeHeatmap emits the section's raw x,y pairs; heatmap density binning is
// the renderer's job.
func writeHeatmap(s *datafile.Section, base string) (string, error) {
	path := base + ".heatmap.csv"
	err := writeFile(path, func(f *os.File) error {
		if _, err := fmt.Fprintln(f, "x,y"); err != nil {
			return err
		}
		for _, r := range s.Records {
			p, ok := r.(record.Point)
			if !ok {
				return fmt.Errorf("heatmap needs point data, got %s", r.Datatype())
			}
			if _, err := fmt.Fprintf(f, "%s,%s\n", formatWeight(p.X), formatWeight(p.Y)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// writeStackplot emits a stacked series: the top-N categories of the section
// plus "other", zero-padded so every x bucket carries every category. The
// CSV column order is the stacking order, bottom band first.
func writeStackplot(s *datafile.Section, base string, p Params) (string, error) {
	folded := s
	if !p.Raw {
		var err error
		folded, err = foldMinorCategories(s, p.TopN)
		if err != nil {
			return "", err
		}
	}
	stacked, err := aggregate.PadCategories(folded)
	if err != nil {
		return "", err
	}

	path := base + ".stackplot.csv"
	err = writeFile(path, func(f *os.File) error {
		if _, err := fmt.Fprintf(f, "x,%s\n", strings.Join(stacked.Categories, ",")); err != nil {
			return err
		}
		for j, x := range stacked.Xs {
			row := make([]string, 0, len(stacked.Categories)+1)
			row = append(row, formatWeight(x))
			for i := range stacked.Categories {
				row = append(row, formatWeight(stacked.Values[i][j]))
			}
			if _, err := fmt.Fprintln(f, strings.Join(row, ",")); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// foldMinorCategories rewrites every point whose label is outside the
// section's top-N into the "other" category. The section itself is never
// modified.
func foldMinorCategories(s *datafile.Section, k int) (*datafile.Section, error) {
	groups, err := aggregate.TopN(s, k)
	if err != nil {
		return nil, err
	}
	keep := make(map[string]bool, len(groups))
	for _, g := range groups {
		if g.Label != aggregate.OtherLabel {
			keep[g.Label] = true
		}
	}

	folded := &datafile.Section{Header: s.Header, Index: s.Index, Size: s.Size}
	folded.Records = make([]record.Record, s.Len())
	for i, r := range s.Records {
		pt := r.(record.Point)
		if !keep[pt.Info] {
			pt.Info = aggregate.OtherLabel
		}
		folded.Records[i] = pt
	}
	return folded, nil
}

type timelineJSON struct {
	Tracks []timelineTrack `json:"tracks"`
	Events []timelineEvent `json:"events"`
}

type timelineTrack struct {
	Name string `json:"name"`
	Lane int    `json:"lane"`
}

type timelineEvent struct {
	Time       int64  `json:"time"`
	Track      string `json:"track"`
	Datum      string `json:"datum"`
	Connection string `json:"connection,omitempty"`
	Interface  string `json:"interface"`
}

// writeTimeline emits a merged event timeline as JSON: lanes in first-seen
// order, events with their original times, standalone events as markers and
// connected events carrying the partner lane.
func writeTimeline(tl *aggregate.Timeline, base string) (string, error) {
	out := timelineJSON{
		Tracks: make([]timelineTrack, len(tl.Tracks)),
		Events: make([]timelineEvent, len(tl.Events)),
	}
	for i, track := range tl.Tracks {
		out.Tracks[i] = timelineTrack{Name: track, Lane: i}
	}
	for i, ev := range tl.Events {
		out.Events[i] = timelineEvent(ev)
	}

	path := base + ".timeline.json"
	err := writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
