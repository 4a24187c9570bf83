package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensoft/marple/pkg/aggregate"
	"github.com/ensoft/marple/pkg/datafile"
	"github.com/ensoft/marple/pkg/record"
)

func section(dt record.Datatype, iface string, recs ...record.Record) *datafile.Section {
	return &datafile.Section{
		Header:  datafile.Header{Interface: iface, Datatype: dt},
		Records: recs,
	}
}

func TestTopNStacks(t *testing.T) {
	s := section(record.DatatypeStack, "mallocstacks",
		record.Stack{Weight: 3, Frames: []string{"a", "b"}},
		record.Stack{Weight: 1, Frames: []string{"a", "c"}},
		record.Stack{Weight: 2, Frames: []string{"a", "d"}},
	)

	groups, err := aggregate.TopN(s, 2)
	require.NoError(t, err)
	require.Equal(t, []aggregate.Group{
		{Label: "a;b", Weight: 3},
		{Label: "a;d", Weight: 2},
		{Label: "other", Weight: 1},
	}, groups)
}

func TestTopNPreservesTotalWeight(t *testing.T) {
	s := section(record.DatatypePoint, "memtime",
		record.Point{X: 0, Y: 5, Info: "a"},
		record.Point{X: 1, Y: 7, Info: "b"},
		record.Point{X: 2, Y: 7, Info: "c"},
		record.Point{X: 3, Y: 2, Info: "a"},
		record.Point{X: 4, Y: 1, Info: "d"},
	)
	total := 5.0 + 7 + 7 + 2 + 1

	for k := 0; k <= 5; k++ {
		groups, err := aggregate.TopN(s, k)
		require.NoError(t, err)
		require.LessOrEqual(t, len(groups), k+1)

		sum := 0.0
		for _, g := range groups {
			sum += g.Weight
		}
		require.Equal(t, total, sum, "k=%d", k)
	}
}

func TestTopNTieBreakIsFirstSeen(t *testing.T) {
	s := section(record.DatatypeStack, "mallocstacks",
		record.Stack{Weight: 7, Frames: []string{"b"}},
		record.Stack{Weight: 7, Frames: []string{"a"}},
		record.Stack{Weight: 7, Frames: []string{"c"}},
	)

	groups, err := aggregate.TopN(s, 2)
	require.NoError(t, err)
	require.Equal(t, "b", groups[0].Label)
	require.Equal(t, "a", groups[1].Label)
	require.Equal(t, "other", groups[2].Label)
}

func TestTopGroupsIdempotent(t *testing.T) {
	groups := []aggregate.Group{
		{Label: "a;b", Weight: 3},
		{Label: "a;c", Weight: 1},
		{Label: "a;d", Weight: 2},
	}

	once := aggregate.TopGroups(groups, 2)
	twice := aggregate.TopGroups(once, 2)
	require.Equal(t, once, twice)

	// A heavy other bucket never competes for a top-N slot.
	heavy := aggregate.TopGroups([]aggregate.Group{
		{Label: "other", Weight: 10},
		{Label: "a", Weight: 1},
	}, 1)
	require.Equal(t, []aggregate.Group{
		{Label: "a", Weight: 1},
		{Label: "other", Weight: 10},
	}, heavy)
	require.Equal(t, heavy, aggregate.TopGroups(heavy, 1))
}

func TestTopNRejectsEvents(t *testing.T) {
	s := section(record.DatatypeEvent, "cpusched",
		record.Event{Time: 1, Track: "p1", Datum: "switch"})

	_, err := aggregate.TopN(s, 3)
	var aerr *aggregate.IncompatibleAggregationError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, record.DatatypeEvent, aerr.Got)
}

func TestPadCategories(t *testing.T) {
	s := section(record.DatatypePoint, "memtime",
		record.Point{X: 0, Y: 1, Info: "a"},
		record.Point{X: 0, Y: 2, Info: "b"},
		record.Point{X: 1, Y: 3, Info: "b"},
		record.Point{X: 2, Y: 4, Info: "c"},
		record.Point{X: 2, Y: 5, Info: "a"},
	)

	stacked, err := aggregate.PadCategories(s)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 2}, stacked.Xs)
	require.Equal(t, []string{"a", "b", "c"}, stacked.Categories)
	require.Equal(t, [][]float64{
		{1, 0, 5},
		{2, 3, 0},
		{0, 0, 4},
	}, stacked.Values)
	require.Equal(t, []string{"c", "b", "a"}, stacked.Legend())

	// Identical category set at every bucket: 3 buckets x 3 categories, with
	// 5 original entries, means exactly 4 injected zeros.
	zeros := 0
	for _, row := range stacked.Values {
		require.Len(t, row, len(stacked.Xs))
		for _, v := range row {
			if v == 0 {
				zeros++
			}
		}
	}
	require.Equal(t, 4, zeros)
}

func TestPadCategoriesSumsDuplicateLabels(t *testing.T) {
	s := section(record.DatatypePoint, "memtime",
		record.Point{X: 1, Y: 2, Info: "a"},
		record.Point{X: 1, Y: 3, Info: "a"},
	)

	stacked, err := aggregate.PadCategories(s)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{5}}, stacked.Values)
}

func TestMergeEvents(t *testing.T) {
	standalone := section(record.DatatypeEvent, "cpusched",
		record.Event{Time: 5, Track: "p1", Datum: "switch"},
		record.Event{Time: 1, Track: "p2", Datum: "wake"},
		record.Event{Time: 9, Track: "p1", Datum: "switch"},
		record.Event{Time: 3, Track: "p3", Datum: "wake"},
		record.Event{Time: 7, Track: "p2", Datum: "switch"},
	)
	connected := section(record.DatatypeEvent, "ipc",
		record.Event{Time: 2, Track: "p1", Datum: "send", Connection: "p2"},
		record.Event{Time: 4, Track: "p2", Datum: "send", Connection: "p3"},
		record.Event{Time: 6, Track: "p3", Datum: "send", Connection: "p1"},
	)

	tl, err := aggregate.MergeEvents(standalone, connected)
	require.NoError(t, err)
	require.Len(t, tl.Events, 8)
	require.Equal(t, []string{"p1", "p2", "p3"}, tl.Tracks)

	times := make([]int64, len(tl.Events))
	for i, ev := range tl.Events {
		times[i] = ev.Time
	}
	require.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 9}, times)

	for _, ev := range tl.Events {
		switch ev.Interface {
		case "cpusched":
			require.Empty(t, ev.Connection)
		case "ipc":
			require.NotEmpty(t, ev.Connection)
		default:
			t.Fatalf("unexpected interface %q", ev.Interface)
		}
	}
}

func TestMergeEventsRejectsOtherVariants(t *testing.T) {
	events := section(record.DatatypeEvent, "cpusched",
		record.Event{Time: 1, Track: "p1", Datum: "switch"})
	stacks := section(record.DatatypeStack, "mallocstacks",
		record.Stack{Weight: 1, Frames: []string{"x"}})

	_, err := aggregate.MergeEvents(events, stacks)
	var aerr *aggregate.IncompatibleAggregationError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, "mallocstacks", aerr.Interface)
	require.Equal(t, record.DatatypeStack, aerr.Got)
}
