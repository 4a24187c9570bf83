package record_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensoft/marple/pkg/record"
)

func TestRoundTrip(t *testing.T) {
	for i, test := range []struct {
		rec      record.Record
		expected string
	}{{
		rec:      record.Point{X: 0.5, Y: 13107200, Info: "python3"},
		expected: "0.5,1.31072e+07,python3",
	}, {
		rec:      record.Point{X: 1, Y: -2, Info: ""},
		expected: "1,-2,",
	}, {
		rec:      record.Event{Time: 683112, Track: "pid 1202", Datum: "sched_switch"},
		expected: "683112,pid 1202,sched_switch",
	}, {
		rec:      record.Event{Time: 12, Track: "client", Datum: "tcp_accept", Connection: "server"},
		expected: "12,client,tcp_accept,server",
	}, {
		rec:      record.Stack{Weight: 42, Frames: []string{"printf", "malloc", "memcpy"}},
		expected: "42#printf;malloc;memcpy",
	}, {
		rec:      record.Stack{Weight: 1, Frames: []string{"swapper"}},
		expected: "1#swapper",
	}} {
		t.Run(fmt.Sprintf("%s/%d", test.rec.Datatype(), i), func(t *testing.T) {
			line, err := test.rec.Encode()
			require.NoError(t, err)
			require.Equal(t, test.expected, line)

			decoded, err := record.Decode(test.rec.Datatype(), line)
			require.NoError(t, err)
			require.Equal(t, test.rec, decoded)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, test := range []struct {
		dt   record.Datatype
		line string
	}{
		{record.DatatypePoint, "1,2"},
		{record.DatatypePoint, "1,2,a,b"},
		{record.DatatypePoint, "one,2,a"},
		{record.DatatypePoint, "1,two,a"},
		{record.DatatypeEvent, "12,pid1"},
		{record.DatatypeEvent, "noon,pid1,wake"},
		{record.DatatypeEvent, "12,pid1,wake,"},
		{record.DatatypeStack, "42"},
		{record.DatatypeStack, "heavy#a;b"},
		{record.DatatypeStack, "1#"},
		{record.DatatypeStack, "1#a;;b"},
	} {
		t.Run(test.line, func(t *testing.T) {
			_, err := record.Decode(test.dt, test.line)
			require.Error(t, err)

			var merr *record.MalformedRecordError
			require.ErrorAs(t, err, &merr)
			require.Equal(t, test.line, merr.Line)
			require.Equal(t, test.dt, merr.Datatype)
		})
	}
}

func TestEncodeRejectsInvalidFields(t *testing.T) {
	for _, rec := range []record.Record{
		record.Point{Info: "a,b"},
		record.Event{Track: "x,y", Datum: "d"},
		record.Event{Track: "t", Datum: "d\n"},
		record.Stack{Frames: []string{"f#g"}},
		record.Stack{Frames: []string{"f;g"}},
		// Edge whitespace would not survive the decode-side line trim.
		record.Point{X: 1, Y: 2, Info: "python3 "},
		record.Event{Time: 1, Track: " pid1", Datum: "wake"},
		record.Event{Time: 1, Track: "t", Datum: "d", Connection: "server\t"},
		// A stack line always carries at least one non-empty frame.
		record.Stack{Weight: 1},
		record.Stack{Weight: 1, Frames: []string{"a", ""}},
	} {
		_, err := rec.Encode()
		require.Error(t, err, "record %#v must not encode", rec)
	}
}

// Interior whitespace is not a delimiter and must survive the round trip.
func TestRoundTripInteriorWhitespace(t *testing.T) {
	rec := record.Event{Time: 9, Track: "pid 7", Datum: "iface eth0 up"}
	line, err := rec.Encode()
	require.NoError(t, err)

	decoded, err := record.Decode(record.DatatypeEvent, line)
	require.NoError(t, err)
	require.Equal(t, rec, decoded)
}

func TestDecodeTolerantToWhitespace(t *testing.T) {
	rec, err := record.Decode(record.DatatypeStack, " 3#a;b\n")
	require.NoError(t, err)
	require.Equal(t, record.Stack{Weight: 3, Frames: []string{"a", "b"}}, rec)
}
