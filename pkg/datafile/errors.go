package datafile

import (
	"fmt"
	"strings"
)

// UnknownDatatypeError reports a section header whose datatype is not one of
// the supported record variants.
type UnknownDatatypeError struct {
	Index     int
	Interface string
	Value     string
}

func (e *UnknownDatatypeError) Error() string {
	return fmt.Sprintf("section %d (interface %q): unrecognized datatype %q",
		e.Index, e.Interface, e.Value)
}

// TruncatedFileError reports a data file whose trailing section is
// incomplete: a header with no records, or record lines with no preceding
// header.
type TruncatedFileError struct {
	Index  int
	Reason string
}

func (e *TruncatedFileError) Error() string {
	return fmt.Sprintf("truncated data file at section %d: %s", e.Index, e.Reason)
}

// SectionNotFoundError reports a selection by index or interface name that
// matched no section in the file.
type SectionNotFoundError struct {
	Index     int // -1 when selecting by interface
	Interface string
}

func (e *SectionNotFoundError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("no section with index %d", e.Index)
	}
	return fmt.Sprintf("no section with interface %q", e.Interface)
}

func isHeaderLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "{")
}
