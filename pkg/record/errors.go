package record

import "fmt"

// MalformedRecordError reports a record line that does not match its
// variant's canonical encoding. The offending line is carried verbatim.
type MalformedRecordError struct {
	Datatype Datatype
	Line     string
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record %q: %s", e.Datatype, e.Line, e.Reason)
}

func malformed(dt Datatype, line, format string, args ...any) error {
	return &MalformedRecordError{
		Datatype: dt,
		Line:     line,
		Reason:   fmt.Sprintf(format, args...),
	}
}
