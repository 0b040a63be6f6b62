// Package iso8211 adapts github.com/beetlebugorg/iso8211 to the record model
// used by the S-57 decoder: records in file order with their file offsets,
// typed format errors, a record length limit and the DDR field descriptions.
//
// It does not interpret field contents. S-57 semantics live in the parser package.
//
// References:
//   - ISO/IEC 8211:1994 §6.1 (leader), §6.2 (directory)
//   - S-57 Part 3 §7.2 (31Main.pdf p3.32): ISO 8211 implementation notes
package iso8211

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	iso "github.com/beetlebugorg/iso8211/pkg/iso8211"
)

// LeaderLength is the fixed size of every record leader.
const LeaderLength = 24

// Control characters.
const (
	FieldTerminator = 0x1e
	UnitTerminator  = 0x1f
)

// Leader identifiers (leader byte 6).
const (
	IdentifierDDR     = 'L' // Data Descriptive Record
	IdentifierDR      = 'D' // Data Record
	IdentifierDRReuse = 'R' // Data Record, leader and directory reused
)

// MaxRecordLength is the largest length a five-digit leader can declare.
const MaxRecordLength = 99999

// Leader is a decoded record leader.
type Leader = iso.Leader

// DirEntry is one (tag, length, position) triple of a record directory.
//
// Position is relative to the start of the field area. Length includes the
// trailing field terminator.
type DirEntry struct {
	Tag      string
	Length   int
	Position int
}

// Record is one leader-delimited record with its directory in file order.
type Record struct {
	Offset  int64 // File offset of the leader
	Leader  *Leader
	Entries []DirEntry

	fields map[string][]byte // Data records, terminator excluded
	area   []byte            // DDR field area
}

// IsDDR reports whether the record is the Data Descriptive Record.
func (r *Record) IsDDR() bool {
	return r.Leader.LeaderIdentifier == IdentifierDDR
}

// Field returns the bytes of a directory entry without its field terminator.
func (r *Record) Field(e DirEntry) []byte {
	if r.area == nil {
		return r.fields[e.Tag]
	}
	data := r.area[e.Position : e.Position+e.Length]
	if n := len(data); n > 0 && data[n-1] == FieldTerminator {
		data = data[:n-1]
	}
	return data
}

// FieldOffset is the file offset of the first byte of a field.
func (r *Record) FieldOffset(e DirEntry) int64 {
	return r.Offset + int64(r.Leader.FieldAreaStart+e.Position)
}

// Lookup returns the first directory entry with the given tag.
func (r *Record) Lookup(tag string) (DirEntry, bool) {
	for _, e := range r.Entries {
		if e.Tag == tag {
			return e, true
		}
	}
	return DirEntry{}, false
}

// Reader returns the records of an exchange file in file order. The whole
// stream is parsed by the first call to Next.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src       *source
	maxLength int
	loaded    bool
	records   []*Record
	offset    int64
}

// NewReader creates a record reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		src:       &source{r: r},
		maxLength: MaxRecordLength,
	}
}

// SetMaxRecordLength rejects records declaring more than n bytes.
// Values <= 0 restore the leader maximum.
func (r *Reader) SetMaxRecordLength(n int) {
	if n <= 0 || n > MaxRecordLength {
		n = MaxRecordLength
	}
	r.maxLength = n
}

// Offset is the file offset following the last record returned.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Next returns the next record. It returns io.EOF after the last record or
// for an empty stream. A stream that does not parse is a FormatError; a read
// failure of the underlying reader is returned wrapped.
func (r *Reader) Next() (*Record, error) {
	if !r.loaded {
		r.loaded = true
		if err := r.load(); err != nil {
			return nil, err
		}
	}
	if len(r.records) == 0 {
		return nil, io.EOF
	}
	rec := r.records[0]
	r.records = r.records[1:]
	r.offset = rec.Offset + int64(rec.Leader.RecordLength)
	return rec, nil
}

func (r *Reader) load() error {
	file, err := parse(r.src)
	if err != nil {
		if r.src.err != nil {
			return fmt.Errorf("read exchange file at offset %d: %w", r.src.buf.Len(), r.src.err)
		}
		if r.src.buf.Len() == 0 && errors.Is(err, io.EOF) {
			return nil
		}
		return r.src.formatError(err)
	}

	ddr := &Record{
		Leader:  file.DDR.Leader,
		Entries: entries(file.DDR.Directory),
		area:    file.DDR.FieldArea,
	}
	for _, e := range ddr.Entries {
		if e.Position < 0 || e.Length < 1 || e.Position+e.Length > len(ddr.area) {
			return &FormatError{
				Offset: ddr.FieldOffset(e),
				Reason: fmt.Sprintf("field description %s [%d:+%d] beyond field area of %d bytes", e.Tag, e.Position, e.Length, len(ddr.area)),
			}
		}
	}
	records := []*Record{ddr}

	offset := int64(ddr.Leader.RecordLength)
	for _, dr := range file.Records {
		rec := &Record{
			Offset:  offset,
			Leader:  dr.Leader,
			Entries: entries(dr.Directory),
			fields:  dr.Fields,
		}
		if len(dr.Fields) != len(rec.Entries) {
			return &FormatError{Offset: offset + LeaderLength, Reason: "field tag repeated within one record"}
		}
		records = append(records, rec)
		offset += int64(dr.Leader.RecordLength)
	}

	for _, rec := range records {
		if rec.Leader.RecordLength > r.maxLength {
			return &FormatError{Offset: rec.Offset, Reason: fmt.Sprintf("record length %d exceeds limit %d", rec.Leader.RecordLength, r.maxLength)}
		}
	}
	r.records = records
	return nil
}

// parse runs the library parser. Directory values the library does not
// range-check (negative lengths, a base address inside the leader) make it
// index out of range; those are reported as malformed input.
func parse(src *source) (file *iso.ISO8211File, err error) {
	defer func() {
		if v := recover(); v != nil {
			file = nil
			err = &FormatError{Offset: int64(src.buf.Len()), Reason: fmt.Sprintf("malformed record structure: %v", v)}
		}
	}()
	return iso.NewParser(src).Parse()
}

func entries(dir []*iso.DirectoryEntry) []DirEntry {
	out := make([]DirEntry, len(dir))
	for i, e := range dir {
		out[i] = DirEntry{Tag: e.Tag, Length: e.Length, Position: e.Position}
	}
	return out
}

// source keeps the bytes handed to the parser so that failures can be
// located, and separates read failures from malformed content.
type source struct {
	r   io.Reader
	buf bytes.Buffer
	err error // First read failure other than io.EOF
}

func (s *source) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.buf.Write(p[:n])
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}

// formatError converts a library parse failure into a FormatError at the
// offset the library reports, or at the end of the consumed input.
func (s *source) formatError(err error) *FormatError {
	var formatErr *FormatError
	if errors.As(err, &formatErr) {
		return formatErr
	}

	offset := int64(s.buf.Len())
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return &FormatError{Offset: offset, Reason: fmt.Sprintf("truncated record: %v", err)}
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		parseErr, ok := e.(*iso.ParseError)
		if !ok {
			continue
		}
		offset = parseErr.Offset
		if parseErr.Context == "leader validation" {
			return s.leaderError(parseErr)
		}
	}
	return &FormatError{Offset: offset, Reason: err.Error()}
}

func (s *source) leaderError(parseErr *iso.ParseError) *FormatError {
	id := parseErr.Offset + 6
	if data := s.buf.Bytes(); id >= 0 && id < int64(len(data)) && data[id] == IdentifierDRReuse {
		return &FormatError{Offset: id, Reason: "leader identifier 'R' (leader and directory reuse) is not supported"}
	}
	return &FormatError{Offset: parseErr.Offset, Reason: parseErr.Err.Error()}
}
