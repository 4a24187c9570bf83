package aggregate

import (
	"sort"

	"github.com/ensoft/marple/pkg/datafile"
	"github.com/ensoft/marple/pkg/record"
)

// TimelineEvent is one event on a merged timeline. Interface names the
// section that contributed it. Connection, when non-empty, is the track of
// the paired event so a renderer can draw the connecting line; standalone
// events keep point markers only.
type TimelineEvent struct {
	Time       int64
	Track      string
	Datum      string
	Connection string
	Interface  string
}

// Timeline is the result of merging one or more event sections.
type Timeline struct {
	// Tracks are the distinct lanes, in first-seen order across the merged
	// sections.
	Tracks []string

	// Events sorted by time; events with equal timestamps keep section
	// order.
	Events []TimelineEvent
}

// MergeEvents merges event sections into a single timeline keyed by track.
// Original times, tracks and connection references are preserved. A section
// of any other variant is rejected with *IncompatibleAggregationError.
func MergeEvents(sections ...*datafile.Section) (*Timeline, error) {
	tl := &Timeline{}
	seen := make(map[string]bool)
	track := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			tl.Tracks = append(tl.Tracks, name)
		}
	}

	for _, s := range sections {
		if s.Header.Datatype != record.DatatypeEvent {
			return nil, &IncompatibleAggregationError{
				Index:     s.Index,
				Interface: s.Header.Interface,
				Want:      record.DatatypeEvent,
				Got:       s.Header.Datatype,
			}
		}
		for _, r := range s.Records {
			ev := r.(record.Event)
			track(ev.Track)
			track(ev.Connection)
			tl.Events = append(tl.Events, TimelineEvent{
				Time:       ev.Time,
				Track:      ev.Track,
				Datum:      ev.Datum,
				Connection: ev.Connection,
				Interface:  s.Header.Interface,
			})
		}
	}

	sort.SliceStable(tl.Events, func(i, j int) bool {
		return tl.Events[i].Time < tl.Events[j].Time
	})
	return tl, nil
}
