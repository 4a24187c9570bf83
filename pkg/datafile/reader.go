package datafile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ensoft/marple/pkg/record"
)

// Reader decodes a data file section by section. Any decode error aborts the
// whole load: a corrupt file fails loudly instead of rendering a subset.
type Reader struct {
	s      *bufio.Scanner
	legacy *Header
	index  int
	eof    bool
	first  bool
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithLegacyHeader supplies the implicit header for legacy single-section
// files that carry no header line. Without it, such files fail to load.
func WithLegacyHeader(h Header) ReaderOption {
	return func(r *Reader) { r.legacy = &h }
}

func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{s: bufio.NewScanner(r), first: true}
	reader.s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Next returns the following section, or io.EOF after the last one.
// Consuming a section buffers only that section's lines.
func (r *Reader) Next() (*Section, error) {
	if r.eof {
		return nil, io.EOF
	}

	// Skip separator and trailing blank lines.
	line, size, ok := r.scanNonBlank()
	if !ok {
		r.eof = true
		return nil, io.EOF
	}

	if r.first && r.legacy != nil && !isHeaderLine(line) {
		return r.readLegacy(line, size)
	}
	r.first = false

	if !isHeaderLine(line) {
		return nil, &TruncatedFileError{Index: r.index, Reason: fmt.Sprintf("record line %q with no preceding header", line)}
	}
	header, err := DecodeHeader(line)
	if err != nil {
		var unknown *UnknownDatatypeError
		if errors.As(err, &unknown) {
			unknown.Index = r.index
		}
		return nil, err
	}

	section := &Section{Header: *header, Index: r.index, Size: size}
	for r.s.Scan() {
		line := r.s.Text()
		if line == "" {
			break
		}
		section.Size += int64(len(line)) + 1
		rec, err := record.Decode(header.Datatype, line)
		if err != nil {
			return nil, fmt.Errorf("section %d (interface %q): %w", r.index, header.Interface, err)
		}
		section.Records = append(section.Records, rec)
	}
	if err := r.s.Err(); err != nil {
		return nil, fmt.Errorf("datafile: read: %w", err)
	}
	if section.Len() == 0 {
		return nil, &TruncatedFileError{Index: r.index, Reason: "header with no records"}
	}
	r.index++
	return section, nil
}

func (r *Reader) readLegacy(line string, size int64) (*Section, error) {
	r.first = false
	section := &Section{Header: *r.legacy, Size: size}
	for {
		rec, err := record.Decode(r.legacy.Datatype, line)
		if err != nil {
			return nil, fmt.Errorf("section 0 (interface %q): %w", r.legacy.Interface, err)
		}
		section.Records = append(section.Records, rec)

		if !r.s.Scan() {
			break
		}
		line = r.s.Text()
		if line == "" {
			break
		}
		section.Size += int64(len(line)) + 1
	}
	if err := r.s.Err(); err != nil {
		return nil, fmt.Errorf("datafile: read: %w", err)
	}
	r.eof = true
	r.index++
	return section, nil
}

func (r *Reader) scanNonBlank() (string, int64, bool) {
	for r.s.Scan() {
		line := r.s.Text()
		if line != "" {
			return line, int64(len(line)) + 1, true
		}
	}
	return "", 0, false
}

// ReadAll materializes every remaining section. A file with no sections at
// all is rejected: the interchange contract requires at least one.
func (r *Reader) ReadAll() (*File, error) {
	f := &File{}
	for {
		section, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		f.Sections = append(f.Sections, section)
	}
	if len(f.Sections) == 0 {
		return nil, &TruncatedFileError{Index: 0, Reason: "file contains no sections"}
	}
	return f, nil
}

// ReadFile loads a whole data file from disk.
func ReadFile(path string, opts ...ReaderOption) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("datafile: %w", err)
	}
	defer file.Close()
	return NewReader(file, opts...).ReadAll()
}
