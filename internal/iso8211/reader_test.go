package iso8211_test

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/beetlebugorg/s57topo/internal/iso8211"
	"github.com/beetlebugorg/s57topo/internal/iso8211/iso8211test"
)

func TestReaderLeader(t *testing.T) {
	data := iso8211test.NewBuilder().Bytes()
	rec, err := iso8211.NewReader(bytes.NewReader(data)).Next()
	if err != nil {
		t.Fatalf("Reading DDR failed: %v", err)
	}
	leader := rec.Leader

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"RecordLength", leader.RecordLength, len(data)},
		{"InterchangeLevel", leader.InterchangeLevel, byte('3')},
		{"LeaderIdentifier", leader.LeaderIdentifier, byte(iso8211.IdentifierDDR)},
		{"IsDDR", rec.IsDDR(), true},
		{"FieldControlLength", leader.FieldControlLength, 9},
		{"SizeOfFieldLength", leader.SizeOfFieldLength, 4},
		{"SizeOfFieldPosition", leader.SizeOfFieldPosition, 5},
		{"SizeOfFieldTag", leader.SizeOfFieldTag, 4},
		{"Entries", len(rec.Entries), len(iso8211test.S57Descriptions)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s: got %v, expected %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestReaderRecords(t *testing.T) {
	data := iso8211test.NewBuilder().
		Record(iso8211test.Field{Tag: "DSPM", Data: []byte{20, 1, 0, 0, 0}}).
		Record(iso8211test.Field{Tag: "FRID", Data: []byte{100}}, iso8211test.Field{Tag: "FOID", Data: []byte{1, 2}}).
		Bytes()

	r := iso8211.NewReader(bytes.NewReader(data))

	ddr, err := r.Next()
	if err != nil {
		t.Fatalf("Reading DDR failed: %v", err)
	}
	if !ddr.IsDDR() {
		t.Fatalf("Expected DDR leader, got %q", ddr.Leader.LeaderIdentifier)
	}

	first, err := r.Next()
	if err != nil {
		t.Fatalf("Reading first DR failed: %v", err)
	}
	if first.IsDDR() {
		t.Error("Expected data record leader")
	}
	if len(first.Entries) != 2 {
		t.Fatalf("Expected 2 directory entries, got %d", len(first.Entries))
	}
	if first.Entries[0].Tag != "0001" || first.Entries[1].Tag != "DSPM" {
		t.Errorf("Unexpected tags %q, %q", first.Entries[0].Tag, first.Entries[1].Tag)
	}
	field := first.Field(first.Entries[1])
	if !bytes.Equal(field, []byte{20, 1, 0, 0, 0}) {
		t.Errorf("Unexpected DSPM bytes % x", field)
	}
	if got := data[first.FieldOffset(first.Entries[1])]; got != 20 {
		t.Errorf("FieldOffset points at 0x%02x, expected 0x14", got)
	}

	second, err := r.Next()
	if err != nil {
		t.Fatalf("Reading second DR failed: %v", err)
	}
	if _, ok := second.Lookup("FOID"); !ok {
		t.Error("Expected FOID entry in second record")
	}
	if second.Offset != first.Offset+int64(first.Leader.RecordLength) {
		t.Errorf("Expected records to be contiguous, got offsets %d and %d", first.Offset, second.Offset)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Expected io.EOF at end of stream, got %v", err)
	}
	if r.Offset() != int64(len(data)) {
		t.Errorf("Expected offset %d at end, got %d", len(data), r.Offset())
	}
}

func TestReaderEmpty(t *testing.T) {
	if _, err := iso8211.NewReader(bytes.NewReader(nil)).Next(); err != io.EOF {
		t.Errorf("Expected io.EOF for empty stream, got %v", err)
	}
}

// malformed returns a one-record file and the offset of its data record.
func malformed() ([]byte, int) {
	ddr := iso8211test.DDR(iso8211test.S57Descriptions...)
	data := iso8211test.NewBuilder().
		Record(iso8211test.Field{Tag: "DSPM", Data: []byte{20, 1, 0, 0, 0}}).
		Bytes()
	return data, len(ddr)
}

func TestReaderMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b []byte, dr int) []byte
	}{
		{"non-numeric length", func(b []byte, dr int) []byte {
			b[dr+2] = 'X'
			return b
		}},
		{"unknown identifier", func(b []byte, dr int) []byte {
			b[dr+6] = 'Z'
			return b
		}},
		{"non-numeric entry map", func(b []byte, dr int) []byte {
			b[dr+23] = 'x'
			return b
		}},
		{"base address inside leader", func(b []byte, dr int) []byte {
			copy(b[dr+12:], "00024")
			return b
		}},
		{"base address beyond record", func(b []byte, dr int) []byte {
			copy(b[dr+12:], "99999")
			return b
		}},
		{"negative field length", func(b []byte, dr int) []byte {
			copy(b[dr+iso8211.LeaderLength+4:], "-001")
			return b
		}},
		{"unterminated directory", func(b []byte, dr int) []byte {
			base, _ := strconv.Atoi(string(b[dr+12 : dr+17]))
			b[dr+base-1] = '0'
			return b
		}},
		{"data record first", func(b []byte, dr int) []byte {
			return b[dr:]
		}},
		{"compressed input", func(b []byte, dr int) []byte {
			return append([]byte("\x1f\x8b\x08\x00\x00\x00\x00\x00\x00\x03"), b...)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, dr := malformed()
			data = tt.mutate(data, dr)

			_, err := iso8211.NewReader(bytes.NewReader(data)).Next()
			var formatErr *iso8211.FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("Expected FormatError, got %v", err)
			}
		})
	}
}

func TestReaderRejectsLeaderReuse(t *testing.T) {
	data, dr := malformed()
	data[dr+6] = iso8211.IdentifierDRReuse

	_, err := iso8211.NewReader(bytes.NewReader(data)).Next()
	var formatErr *iso8211.FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Expected FormatError, got %v", err)
	}
	if formatErr.Offset != int64(dr+6) {
		t.Errorf("Expected offset %d of the leader identifier, got %d", dr+6, formatErr.Offset)
	}
	if !strings.Contains(formatErr.Reason, "not supported") {
		t.Errorf("Expected unsupported reuse reason, got %q", formatErr.Reason)
	}
}

func TestReaderRepeatedTag(t *testing.T) {
	data := iso8211test.NewBuilder().
		Record(iso8211test.Field{Tag: "ATTF", Data: []byte{1, 0}}, iso8211test.Field{Tag: "ATTF", Data: []byte{2, 0}}).
		Bytes()

	_, err := iso8211.NewReader(bytes.NewReader(data)).Next()
	var formatErr *iso8211.FormatError
	if !errors.As(err, &formatErr) {
		t.Errorf("Expected FormatError for repeated tag, got %v", err)
	}
}

func TestReaderTruncated(t *testing.T) {
	data := iso8211test.NewBuilder().
		Record(iso8211test.Field{Tag: "DSPM", Data: []byte{20, 1, 0, 0, 0}}).
		Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"inside leader", append(append([]byte{}, data...), "00050"...)},
		{"inside body", data[:len(data)-5]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := iso8211.NewReader(bytes.NewReader(tt.data))
			var err error
			for err == nil {
				_, err = r.Next()
			}
			var formatErr *iso8211.FormatError
			if !errors.As(err, &formatErr) {
				t.Errorf("Expected FormatError for truncated stream, got %v", err)
			}
		})
	}
}

func TestReaderReadError(t *testing.T) {
	errBoom := errors.New("boom")
	ddr := iso8211test.DDR(iso8211test.S57Descriptions...)
	r := iso8211.NewReader(io.MultiReader(bytes.NewReader(ddr), iotest.ErrReader(errBoom)))

	_, err := r.Next()
	if !errors.Is(err, errBoom) {
		t.Fatalf("Expected wrapped read error, got %v", err)
	}
	var formatErr *iso8211.FormatError
	if errors.As(err, &formatErr) {
		t.Errorf("Read failure reported as FormatError: %v", err)
	}
}

func TestReaderMaxRecordLength(t *testing.T) {
	data := iso8211test.NewBuilder().Bytes()
	r := iso8211.NewReader(bytes.NewReader(data))
	r.SetMaxRecordLength(30)

	_, err := r.Next()
	var formatErr *iso8211.FormatError
	if !errors.As(err, &formatErr) {
		t.Errorf("Expected FormatError for oversized record, got %v", err)
	}
}
