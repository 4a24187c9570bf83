// Package record defines the standardized record variants exchanged between
// collection and display: 2-D point samples, timeline events, and weighted
// call stacks. Each variant has a canonical single-line text encoding; the
// encode/decode pair is lossless for every valid record.
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Datatype names a record variant as it appears in section headers.
type Datatype string

const (
	DatatypePoint Datatype = "point"
	DatatypeEvent Datatype = "event"
	DatatypeStack Datatype = "stack"
)

// Known reports whether dt is one of the three supported variants.
func (dt Datatype) Known() bool {
	switch dt {
	case DatatypePoint, DatatypeEvent, DatatypeStack:
		return true
	}
	return false
}

const (
	fieldSep = ","
	stackSep = "#"
	frameSep = ";"
)

// Record is the closed set of sample variants. Adding a variant means adding
// a concrete type here and extending every switch over Datatype.
type Record interface {
	Datatype() Datatype

	// Encode renders the record as its canonical single line, without a
	// trailing newline. It fails if a free-text field contains a delimiter
	// or leading/trailing whitespace that would corrupt the line structure
	// or be lost on decode.
	Encode() (string, error)

	sealed()
}

// Point is a single 2-D datapoint, e.g. memory usage at a point in time.
type Point struct {
	X    float64
	Y    float64
	Info string
}

// Event is a single timeline event. Track is the lane the event belongs to
// (a PID, a comm, an event kind). Connection, when non-empty, names the track
// of the paired event so renderers can draw a connecting line; standalone
// events leave it empty.
type Event struct {
	Time       int64
	Track      string
	Datum      string
	Connection string
}

// Stack is a weighted call stack. Frames are ordered root to leaf: the first
// frame is the outermost caller, matching the collapsed-stack convention.
type Stack struct {
	Weight int64
	Frames []string
}

func (Point) Datatype() Datatype { return DatatypePoint }
func (Event) Datatype() Datatype { return DatatypeEvent }
func (Stack) Datatype() Datatype { return DatatypeStack }

func (Point) sealed() {}
func (Event) sealed() {}
func (Stack) sealed() {}

func (p Point) Encode() (string, error) {
	if err := checkField("info", p.Info, fieldSep); err != nil {
		return "", err
	}
	return strings.Join([]string{
		strconv.FormatFloat(p.X, 'g', -1, 64),
		strconv.FormatFloat(p.Y, 'g', -1, 64),
		p.Info,
	}, fieldSep), nil
}

func (e Event) Encode() (string, error) {
	for name, value := range map[string]string{
		"track":      e.Track,
		"datum":      e.Datum,
		"connection": e.Connection,
	} {
		if err := checkField(name, value, fieldSep); err != nil {
			return "", err
		}
	}
	fields := []string{strconv.FormatInt(e.Time, 10), e.Track, e.Datum}
	if e.Connection != "" {
		fields = append(fields, e.Connection)
	}
	return strings.Join(fields, fieldSep), nil
}

func (s Stack) Encode() (string, error) {
	if len(s.Frames) == 0 {
		return "", fmt.Errorf("record: stack has no frames")
	}
	for _, frame := range s.Frames {
		if frame == "" {
			return "", fmt.Errorf("record: stack contains an empty frame")
		}
		if err := checkField("frame", frame, stackSep, frameSep); err != nil {
			return "", err
		}
	}
	return strconv.FormatInt(s.Weight, 10) + stackSep + strings.Join(s.Frames, frameSep), nil
}

func checkField(name, value string, seps ...string) error {
	for _, sep := range append(seps, "\n") {
		if strings.Contains(value, sep) {
			return fmt.Errorf("record: %s field %q contains reserved %q", name, value, sep)
		}
	}
	// Decode trims surrounding whitespace from the line, so edge whitespace
	// in a field would not survive the round trip.
	if value != strings.TrimSpace(value) {
		return fmt.Errorf("record: %s field %q has leading or trailing whitespace", name, value)
	}
	return nil
}

// Decode parses one canonical record line of the given variant. The line may
// carry surrounding whitespace. A line that does not match the variant's
// encoding fails with *MalformedRecordError; no partial record is returned.
func Decode(dt Datatype, line string) (Record, error) {
	line = strings.TrimSpace(line)
	switch dt {
	case DatatypePoint:
		return decodePoint(line)
	case DatatypeEvent:
		return decodeEvent(line)
	case DatatypeStack:
		return decodeStack(line)
	}
	return nil, fmt.Errorf("record: unknown datatype %q", dt)
}

func decodePoint(line string) (Record, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 3 {
		return nil, malformed(DatatypePoint, line, "want 3 comma-separated fields, got %d", len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil, malformed(DatatypePoint, line, "bad x value %q", fields[0])
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil, malformed(DatatypePoint, line, "bad y value %q", fields[1])
	}
	return Point{X: x, Y: y, Info: fields[2]}, nil
}

func decodeEvent(line string) (Record, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 3 && len(fields) != 4 {
		return nil, malformed(DatatypeEvent, line, "want 3 or 4 comma-separated fields, got %d", len(fields))
	}
	time, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, malformed(DatatypeEvent, line, "bad timestamp %q", fields[0])
	}
	ev := Event{Time: time, Track: fields[1], Datum: fields[2]}
	if len(fields) == 4 {
		if fields[3] == "" {
			return nil, malformed(DatatypeEvent, line, "empty connection reference")
		}
		ev.Connection = fields[3]
	}
	return ev, nil
}

func decodeStack(line string) (Record, error) {
	weight, frames, found := strings.Cut(line, stackSep)
	if !found {
		return nil, malformed(DatatypeStack, line, "missing %q separator", stackSep)
	}
	w, err := strconv.ParseInt(weight, 10, 64)
	if err != nil {
		return nil, malformed(DatatypeStack, line, "bad weight %q", weight)
	}
	split := strings.Split(frames, frameSep)
	for _, frame := range split {
		if frame == "" {
			return nil, malformed(DatatypeStack, line, "empty frame")
		}
	}
	return Stack{Weight: w, Frames: split}, nil
}

// Label is the grouping key used by aggregation: the info field for points,
// the track for events, and the ';'-joined frames for stacks.
func Label(r Record) string {
	switch r := r.(type) {
	case Point:
		return r.Info
	case Event:
		return r.Track
	case Stack:
		return strings.Join(r.Frames, frameSep)
	}
	return ""
}

// Weight is the numeric significance used by aggregation: y for points,
// the stack weight for stacks, and 1 for events.
func Weight(r Record) float64 {
	switch r := r.(type) {
	case Point:
		return r.Y
	case Stack:
		return float64(r.Weight)
	}
	return 1
}
