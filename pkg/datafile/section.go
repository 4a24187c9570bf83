package datafile

import (
	"github.com/ensoft/marple/pkg/record"
)

// Section is a header plus the ordered records it describes. Every record
// matches the variant declared by the header.
type Section struct {
	Header  Header
	Records []record.Record

	// Index is the section's zero-based position in its file, set by the
	// reader. Sections constructed by hand keep the zero value.
	Index int

	// Size is the section's encoded byte length, set by the reader.
	Size int64
}

func (s *Section) Len() int { return len(s.Records) }

// Info is one row of a file listing.
type Info struct {
	Index     int
	Interface string
	Datatype  record.Datatype
	Records   int
	Size      int64
}

// File is a fully materialized data file: its sections in file order, which
// is also the default render order.
type File struct {
	Sections []*Section
}

// List returns one Info per section, in file order.
func (f *File) List() []Info {
	infos := make([]Info, len(f.Sections))
	for i, s := range f.Sections {
		infos[i] = Info{
			Index:     s.Index,
			Interface: s.Header.Interface,
			Datatype:  s.Header.Datatype,
			Records:   s.Len(),
			Size:      s.Size,
		}
	}
	return infos
}

// SelectIndices returns the sections at the given indices, in file order.
func (f *File) SelectIndices(indices []int) ([]*Section, error) {
	want := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(f.Sections) {
			return nil, &SectionNotFoundError{Index: idx}
		}
		want[idx] = true
	}
	var out []*Section
	for i, s := range f.Sections {
		if want[i] {
			out = append(out, s)
		}
	}
	return out, nil
}

// SelectInterfaces returns the sections produced by the named interfaces, in
// file order. Every requested name must match at least one section.
func (f *File) SelectInterfaces(names ...string) ([]*Section, error) {
	matched := make(map[string]bool, len(names))
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}
	var out []*Section
	for _, s := range f.Sections {
		if want[s.Header.Interface] {
			matched[s.Header.Interface] = true
			out = append(out, s)
		}
	}
	for _, name := range names {
		if !matched[name] {
			return nil, &SectionNotFoundError{Index: -1, Interface: name}
		}
	}
	return out, nil
}

// Interfaces returns the distinct interface names present in the file, in
// first-seen order.
func (f *File) Interfaces() []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range f.Sections {
		if !seen[s.Header.Interface] {
			seen[s.Header.Interface] = true
			names = append(names, s.Header.Interface)
		}
	}
	return names
}
