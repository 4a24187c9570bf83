// Package datafile implements the on-disk interchange format between
// collection and display: an ordered sequence of sections, each one
// self-describing JSON header line followed by one canonical record line per
// record and a blank separator line.
//
// Files are written once by a single exclusive owner and read wholesale
// afterwards. Concurrent collection and display against the same in-progress
// file is undefined behavior.
package datafile

import (
	"encoding/json"
	"fmt"

	"github.com/ensoft/marple/pkg/record"
)

const (
	keyStart     = "start"
	keyEnd       = "end"
	keyInterface = "interface"
	keyDatatype  = "datatype"
)

// Header describes one section. Start and End bound the collection run in
// unix seconds. Interface names the backend that produced the data and is
// used to pick a default visualizer. Extra carries every unrecognized header
// key verbatim; the core never interprets those. Extra values are JSON-typed:
// a numeric value reads back as float64 regardless of the Go type it was
// written with, though the file bytes round-trip unchanged.
type Header struct {
	Start     int64
	End       int64
	Interface string
	Datatype  record.Datatype
	Extra     map[string]any
}

// Encode renders the header as its single JSON line, without a trailing
// newline. Keys are emitted in sorted order so output is reproducible.
func (h *Header) Encode() (string, error) {
	if !h.Datatype.Known() {
		return "", fmt.Errorf("datafile: cannot encode header with datatype %q", h.Datatype)
	}
	fields := make(map[string]any, len(h.Extra)+4)
	for k, v := range h.Extra {
		fields[k] = v
	}
	fields[keyStart] = h.Start
	fields[keyEnd] = h.End
	fields[keyInterface] = h.Interface
	fields[keyDatatype] = string(h.Datatype)

	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("datafile: encode header: %w", err)
	}
	return string(raw), nil
}

// DecodeHeader parses one JSON header line. A datatype outside the known
// variants fails immediately with *UnknownDatatypeError, before any record
// of the section is touched.
func DecodeHeader(line string) (*Header, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return nil, fmt.Errorf("datafile: malformed header line %q: %w", line, err)
	}

	h := &Header{}
	h.Start = toInt64(fields[keyStart])
	h.End = toInt64(fields[keyEnd])
	h.Interface, _ = fields[keyInterface].(string)

	dt, _ := fields[keyDatatype].(string)
	h.Datatype = record.Datatype(dt)
	if !h.Datatype.Known() {
		return nil, &UnknownDatatypeError{Value: dt, Interface: h.Interface}
	}

	for _, k := range []string{keyStart, keyEnd, keyInterface, keyDatatype} {
		delete(fields, k)
	}
	if len(fields) > 0 {
		h.Extra = fields
	}
	return h, nil
}

func toInt64(v any) int64 {
	switch v := v.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	}
	return 0
}
