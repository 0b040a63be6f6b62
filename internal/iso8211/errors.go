package iso8211

import (
	"fmt"
)

// FormatError indicates a leader, directory or field that cannot be read as ISO 8211.
//
// ISO 8211 has no record-level resynchronization marker, so a FormatError
// always ends the read of the whole file.
type FormatError struct {
	Offset int64 // File offset of the offending byte
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported or corrupted exchange file at offset %d: %s", e.Offset, e.Reason)
}
