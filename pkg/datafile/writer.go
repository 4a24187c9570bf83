package datafile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ensoft/marple/pkg/record"
)

// Writer appends sections to a data file strictly in the order they are
// produced. It assumes exclusive ownership of the underlying writer for the
// whole collection run; no locking is performed.
type Writer struct {
	w    *bufio.Writer
	open bool
	next int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Begin opens a new section with the given header. Records are handed to the
// returned SectionWriter one by one, in emission order, and the section is
// terminated explicitly with Close. The section is held in memory until
// Close so that a backend failing early never leaves a half-written section
// in the file.
func (w *Writer) Begin(h Header) (*SectionWriter, error) {
	if w.open {
		return nil, fmt.Errorf("datafile: section %d still open", w.next-1)
	}
	header, err := h.Encode()
	if err != nil {
		return nil, err
	}
	w.open = true
	sw := &SectionWriter{w: w, datatype: h.Datatype, index: w.next, lines: []string{header}}
	w.next++
	return sw, nil
}

// WriteSection writes a complete section: header, records in order, blank
// separator line.
func (w *Writer) WriteSection(s *Section) error {
	sw, err := w.Begin(s.Header)
	if err != nil {
		return err
	}
	for _, r := range s.Records {
		if err := sw.Write(r); err != nil {
			return err
		}
	}
	return sw.Close()
}

// Flush flushes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.open {
		return fmt.Errorf("datafile: flush with open section")
	}
	return w.w.Flush()
}

// SectionWriter streams the records of one section.
type SectionWriter struct {
	w        *Writer
	datatype record.Datatype
	index    int
	lines    []string
	closed   bool
}

func (sw *SectionWriter) Write(r record.Record) error {
	if sw.closed {
		return fmt.Errorf("datafile: section %d already closed", sw.index)
	}
	if r.Datatype() != sw.datatype {
		return fmt.Errorf("datafile: section %d declares datatype %s, got %s record",
			sw.index, sw.datatype, r.Datatype())
	}
	line, err := r.Encode()
	if err != nil {
		return fmt.Errorf("datafile: section %d: %w", sw.index, err)
	}
	sw.lines = append(sw.lines, line)
	return nil
}

// Close flushes the section to the file, terminated by its blank separator
// line. Closing a section that received no records writes nothing: an empty
// section would read back as truncated, so an early-terminated backend that
// produced no data leaves no trace in the file.
func (sw *SectionWriter) Close() error {
	if sw.closed {
		return nil
	}
	sw.closed = true
	sw.w.open = false
	if len(sw.lines) == 1 {
		sw.w.next--
		return nil
	}
	for _, line := range sw.lines {
		if _, err := sw.w.w.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("datafile: write section %d: %w", sw.index, err)
		}
	}
	if _, err := sw.w.w.WriteString("\n"); err != nil {
		return fmt.Errorf("datafile: write separator: %w", err)
	}
	return nil
}
