package parser

import (
	"errors"
	"fmt"

	"github.com/beetlebugorg/s57topo/internal/iso8211"
)

// ErrorKind classifies a decode failure.
type ErrorKind int

const (
	// KindFormat: corrupt or unsupported leader, directory, field or subfield
	KindFormat ErrorKind = iota + 1
	// KindOutOfOrder: "0001" record sequence violation
	KindOutOfOrder
	// KindIO: the input stream failed
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindFormat:
		return "format error"
	case KindOutOfOrder:
		return "out of order"
	case KindIO:
		return "i/o error"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is matching against *DecodeError.
var (
	ErrFormat     = errors.New("s57: unsupported or corrupted exchange file")
	ErrOutOfOrder = errors.New("s57: record sequence out of order")
	ErrIO         = errors.New("s57: input stream failure")
)

// DecodeError is the only error type returned by Decode. Every kind means the
// file cannot be charted; no partial map is returned with it.
type DecodeError struct {
	Kind   ErrorKind
	Tag    string // Field tag, empty for leader and directory errors
	Offset int64  // File offset of the offending byte or record
	Record int    // Data record ordinal (1-based); 0 for the DDR and for leader or directory errors
	Err    error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.String()
	if e.Tag != "" {
		msg = fmt.Sprintf("%s in field %s", msg, e.Tag)
	}
	msg = fmt.Sprintf("%s at offset %d (record %d)", msg, e.Offset, e.Record)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrFormat:
		return e.Kind == KindFormat
	case ErrOutOfOrder:
		return e.Kind == KindOutOfOrder
	case ErrIO:
		return e.Kind == KindIO
	}
	return false
}

func formatErrorf(tag string, offset int64, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: KindFormat, Tag: tag, Offset: offset, Err: fmt.Errorf(format, args...)}
}

// classify converts reader errors into a DecodeError.
func classify(err error, record int) *DecodeError {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		if decodeErr.Record == 0 {
			decodeErr.Record = record
		}
		return decodeErr
	}
	var formatErr *iso8211.FormatError
	if errors.As(err, &formatErr) {
		return &DecodeError{Kind: KindFormat, Offset: formatErr.Offset, Record: record, Err: formatErr}
	}
	return &DecodeError{Kind: KindIO, Record: record, Err: err}
}

// ErrInvalidCoordinate indicates coordinate out of valid bounds
type ErrInvalidCoordinate struct {
	Lat, Lon float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lat=%f lon=%f (lat must be ±90, lon must be ±180)",
		e.Lat, e.Lon)
}

// WarningKind classifies a non-fatal finding of the final consistency pass.
type WarningKind int

const (
	WarnUnresolvedSpatial  WarningKind = iota + 1 // FSPT target is not a decoded node, edge or sounding group
	WarnUnresolvedFeature                         // FFPT target is not a decoded feature
	WarnUnresolvedBoundary                        // VRPT target is not a decoded node or edge
	WarnDegenerateEdge                            // Edge with fewer than two nodes
	WarnCountMismatch                             // DSSI declared count differs from decoded records
)

func (k WarningKind) String() string {
	switch k {
	case WarnUnresolvedSpatial:
		return "unresolved spatial reference"
	case WarnUnresolvedFeature:
		return "unresolved feature reference"
	case WarnUnresolvedBoundary:
		return "unresolved boundary reference"
	case WarnDegenerateEdge:
		return "degenerate edge"
	case WarnCountMismatch:
		return "record count mismatch"
	default:
		return "warning"
	}
}

// Warning is reported alongside a successful decode. Exchange sets may
// reference objects outside a subset extract, so none of these are fatal.
type Warning struct {
	Kind    WarningKind
	Feature LongName // Referencing feature, zero for edge and count warnings
	Source  Key      // Referencing edge for boundary and degenerate edge warnings
	Target  uint64   // Unresolved key or long name
	Detail  string
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnUnresolvedSpatial:
		return fmt.Sprintf("%s: feature %s -> %s", w.Kind, w.Feature, Key(w.Target))
	case WarnUnresolvedFeature:
		return fmt.Sprintf("%s: feature %s -> %s", w.Kind, w.Feature, LongName(w.Target))
	case WarnUnresolvedBoundary:
		return fmt.Sprintf("%s: edge %s -> %s", w.Kind, w.Source, Key(w.Target))
	case WarnDegenerateEdge:
		return fmt.Sprintf("%s: edge %s: %s", w.Kind, w.Source, w.Detail)
	default:
		return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
	}
}
