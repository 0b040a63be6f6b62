package parser

import (
	"bytes"
	"testing"

	"github.com/beetlebugorg/s57topo/internal/iso8211"
	"github.com/beetlebugorg/s57topo/internal/iso8211/iso8211test"
)

// recordWith reads back a single data record holding fields.
func recordWith(t *testing.T, fields ...iso8211test.Field) *iso8211.Record {
	t.Helper()
	data := iso8211test.NewBuilder().Raw(iso8211test.DataRecord(fields...)).Bytes()
	r := iso8211.NewReader(bytes.NewReader(data))
	if _, err := r.Next(); err != nil {
		t.Fatalf("Reading DDR failed: %v", err)
	}
	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Reading record failed: %v", err)
	}
	return rec
}

func cursorFor(t *testing.T, field iso8211test.Field, l *layout) *cursor {
	t.Helper()
	rec := recordWith(t, field)
	c := &cursor{}
	c.position(rec, rec.Entries[0], l)
	return c
}

func TestCursorFixedFields(t *testing.T) {
	c := cursorFor(t, vridField(CategoryEdge, 4242), layouts["VRID"])

	expected := []struct {
		name  string
		value uint64
	}{
		{"RCNM", CategoryEdge},
		{"RCID", 4242},
		{"RVER", 1},
		{"RUIN", 1},
	}
	for _, e := range expected {
		v, err := c.next(e.name)
		if err != nil {
			t.Fatalf("next(%s) failed: %v", e.name, err)
		}
		if v.Uint() != e.value {
			t.Errorf("%s: expected %d, got %d", e.name, e.value, v.Uint())
		}
	}
	if c.hasMore() {
		t.Error("Expected cursor at end of field")
	}
}

func TestCursorSignedCoordinates(t *testing.T) {
	c := cursorFor(t, sg2dField([2]int32{-5, 1_000_000}, [2]int32{-2147483648, 2147483647}), layouts["SG2D"])

	var got []int64
	for c.hasMore() {
		for _, name := range []string{"YCOO", "XCOO"} {
			v, err := c.next(name)
			if err != nil {
				t.Fatalf("next(%s) failed: %v", name, err)
			}
			got = append(got, v.Int())
		}
	}
	expected := []int64{-5, 1_000_000, -2147483648, 2147483647}
	if len(got) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("value %d: expected %d, got %d", i, expected[i], got[i])
		}
	}
}

func TestCursorDelimitedStrings(t *testing.T) {
	c := cursorFor(t, attfField("ATTF", attr{116, "Harbour"}, attr{87, ""}, attr{88, "12.5"}), layouts["ATTF"])

	var got []string
	for c.hasMore() {
		if _, err := c.next("ATTL"); err != nil {
			t.Fatalf("next(ATTL) failed: %v", err)
		}
		v, err := c.next("ATVL")
		if err != nil {
			t.Fatalf("next(ATVL) failed: %v", err)
		}
		got = append(got, string(v.Bytes()))
	}
	if len(got) != 3 || got[0] != "Harbour" || got[1] != "" || got[2] != "12.5" {
		t.Errorf("Unexpected values %q", got)
	}
}

func TestCursorLastStringEndsAtField(t *testing.T) {
	// COMT without its unit terminator ends at the field terminator.
	var b fieldBuf
	b.u8(20).u32(1).u8(2).u8(17).u8(23).u32(50000)
	b.u8(1).u8(1).u8(1).u8(1).u32(10).u32(1)
	b.WriteString("no terminator")
	c := cursorFor(t, b.field("DSPM"), layouts["DSPM"])

	for _, name := range []string{"RCNM", "RCID", "HDAT", "VDAT", "SDAT", "CSCL", "DUNI", "HUNI", "PUNI", "COUN", "COMF", "SOMF"} {
		if _, err := c.next(name); err != nil {
			t.Fatalf("next(%s) failed: %v", name, err)
		}
	}
	v, err := c.next("COMT")
	if err != nil {
		t.Fatalf("next(COMT) failed: %v", err)
	}
	if string(v.Bytes()) != "no terminator" {
		t.Errorf("Expected comment %q, got %q", "no terminator", v.Bytes())
	}
}

func TestCursorWideStrings(t *testing.T) {
	var b fieldBuf
	b.u16(301)
	b.Write([]byte{0xC6, 0x00, 'r', 0x00, 0xF8, 0x00})
	b.Write([]byte{iso8211.UnitTerminator, 0x00})
	c := cursorFor(t, b.field("NATF"), layouts["NATF"])
	c.setWide()

	if _, err := c.next("ATTL"); err != nil {
		t.Fatalf("next(ATTL) failed: %v", err)
	}
	v, err := c.next("ATVL")
	if err != nil {
		t.Fatalf("next(ATVL) failed: %v", err)
	}
	if len(v.Bytes()) != 6 {
		t.Errorf("Expected 6 bytes of UCS-2, got %d", len(v.Bytes()))
	}
	if c.hasMore() {
		t.Error("Expected two-byte terminator to be consumed")
	}
}

func TestCursorASCIIInteger(t *testing.T) {
	l := &layout{tag: "0001", subfields: []subfieldDef{{"RCID", kindASCIIInt, 5}}}
	c := cursorFor(t, iso8211test.Field{Tag: "0001", Data: []byte("00042")}, l)

	v, err := c.next("RCID")
	if err != nil {
		t.Fatalf("next(RCID) failed: %v", err)
	}
	if v.Uint() != 42 {
		t.Errorf("Expected 42, got %d", v.Uint())
	}

	c = cursorFor(t, iso8211test.Field{Tag: "0001", Data: []byte("00x42")}, l)
	if _, err := c.next("RCID"); err == nil {
		t.Error("Expected error for non-numeric value")
	}
}

func TestRecordIDLayout(t *testing.T) {
	tests := []struct {
		name    string
		formats string
		kind    subfieldKind
		width   int
	}{
		{"binary width 1", "(b11)", kindUnsigned, 1},
		{"binary width 4", "(b14)", kindUnsigned, 4},
		{"ascii", "(I(5))", kindASCIIInt, 5},
		{"unparsable falls back", "(Q)", kindUnsigned, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			descs := withRecordIDFormat(tt.formats)
			rec, err := iso8211.NewReader(bytes.NewReader(iso8211test.DDR(descs...))).Next()
			if err != nil {
				t.Fatalf("Reading DDR failed: %v", err)
			}
			ddr, err := iso8211.ParseDDR(rec)
			if err != nil {
				t.Fatalf("ParseDDR failed: %v", err)
			}
			def := recordIDLayout(ddr).subfields[0]
			if def.kind != tt.kind || def.width != tt.width {
				t.Errorf("Expected kind %d width %d, got kind %d width %d", tt.kind, tt.width, def.kind, def.width)
			}
		})
	}

	if def := recordIDLayout(nil).subfields[0]; def.kind != kindUnsigned || def.width != 2 {
		t.Errorf("Expected b12 default without DDR, got %+v", def)
	}
}

// withRecordIDFormat copies the S-57 descriptions with a different "0001" format.
func withRecordIDFormat(formats string) []iso8211test.Description {
	descs := append([]iso8211test.Description(nil), iso8211test.S57Descriptions...)
	for i := range descs {
		if descs[i].Tag == "0001" {
			descs[i].Formats = formats
		}
	}
	return descs
}
