// Package iso8211test assembles ISO 8211 exchange files in memory for tests.
package iso8211test

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/beetlebugorg/s57topo/internal/iso8211"
)

// Entry map used for every record the builder writes.
const (
	sizeOfLength   = 4
	sizeOfPosition = 5
	sizeOfTag      = 4
)

// Field is one field of a record. Data excludes the field terminator.
type Field struct {
	Tag  string
	Data []byte
}

// Description is one DDR field description.
type Description struct {
	Tag      string
	Controls string // 9 characters
	Name     string
	Labels   string
	Formats  string
}

// S57Descriptions are the DDR entries of a binary S-57 ENC exchange file.
var S57Descriptions = []Description{
	{"0000", "0000;&   ", "S57TEST", "", ""},
	{"0001", "0100;&   ", "ISO 8211 Record Identifier", "", "(b12)"},
	{"DSID", "1600;&   ", "Data set identification field", "RCNM!RCID!EXPP!INTU!DSNM!EDTN!UPDN!UADT!ISDT!STED!PRSP!PSDN!PRED!PROF!AGEN!COMT", "(b11,b14,2b11,3A,2A(8),R(4),b11,2A,b11,b12,A)"},
	{"DSSI", "1600;&   ", "Data set structure information field", "DSTR!AALL!NALL!NOMR!NOCR!NOGR!NOLR!NOIN!NOCN!NOED!NOFA", "(3b11,8b14)"},
	{"DSPM", "1600;&   ", "Data set parameter field", "RCNM!RCID!HDAT!VDAT!SDAT!CSCL!DUNI!HUNI!PUNI!COUN!COMF!SOMF!COMT", "(b11,b14,3b11,b14,4b11,2b14,A)"},
	{"FRID", "1600;&   ", "Feature record identifier field", "RCNM!RCID!PRIM!GRUP!OBJL!RVER!RUIN", "(b11,b14,2b11,2b12,b11)"},
	{"FOID", "1600;&   ", "Feature object identifier field", "AGEN!FIDN!FIDS", "(b12,b14,b12)"},
	{"ATTF", "2600;&   ", "Feature record attribute field", "*ATTL!ATVL", "(b12,A)"},
	{"NATF", "2600;&   ", "Feature record national attribute field", "*ATTL!ATVL", "(b12,A)"},
	{"FFPT", "2600;&   ", "Feature record to feature object pointer field", "*LNAM!RIND!COMT", "(B(64),b11,A)"},
	{"FSPT", "2600;&   ", "Feature record to spatial record pointer field", "*NAME!ORNT!USAG!MASK", "(B(40),3b11)"},
	{"VRID", "1600;&   ", "Vector record identifier field", "RCNM!RCID!RVER!RUIN", "(b11,b14,b12,b11)"},
	{"VRPT", "2600;&   ", "Vector record pointer field", "*NAME!ORNT!USAG!TOPI!MASK", "(B(40),4b11)"},
	{"SG2D", "2200;&   ", "2-D coordinate field", "*YCOO!XCOO", "(2b24)"},
	{"SG3D", "2200;&   ", "3-D coordinate (sounding array) field", "*YCOO!XCOO!VE3D", "(3b24)"},
}

// Builder accumulates the records of one exchange file.
type Builder struct {
	descs   []Description
	records [][]byte
	next    int
}

// NewBuilder starts a file whose DDR carries descs, or S57Descriptions when none are given.
func NewBuilder(descs ...Description) *Builder {
	if len(descs) == 0 {
		descs = S57Descriptions
	}
	return &Builder{descs: descs, next: 1}
}

// Record appends a data record numbered with the next sequence number.
func (b *Builder) Record(fields ...Field) *Builder {
	b.RecordWithID(b.next, fields...)
	return b
}

// RecordWithID appends a data record with an explicit "0001" value. The
// following Record call continues from id+1.
func (b *Builder) RecordWithID(id int, fields ...Field) *Builder {
	seq := make([]byte, 2)
	binary.LittleEndian.PutUint16(seq, uint16(id))
	all := append([]Field{{Tag: "0001", Data: seq}}, fields...)
	b.records = append(b.records, DataRecord(all...))
	b.next = id + 1
	return b
}

// Raw appends pre-encoded record bytes.
func (b *Builder) Raw(record []byte) *Builder {
	b.records = append(b.records, record)
	return b
}

// Bytes returns the complete file.
func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	buf.Write(DDR(b.descs...))
	for _, r := range b.records {
		buf.Write(r)
	}
	return buf.Bytes()
}

// DDR encodes a Data Descriptive Record.
func DDR(descs ...Description) []byte {
	fields := make([]Field, 0, len(descs))
	for _, d := range descs {
		var data bytes.Buffer
		data.WriteString(d.Controls)
		data.WriteString(d.Name)
		if d.Labels != "" || d.Formats != "" {
			data.WriteByte(iso8211.UnitTerminator)
			data.WriteString(d.Labels)
			data.WriteByte(iso8211.UnitTerminator)
			data.WriteString(d.Formats)
		}
		fields = append(fields, Field{Tag: d.Tag, Data: data.Bytes()})
	}
	return encode("3LE1 09", " ! ", fields)
}

// DataRecord encodes a Data Record.
func DataRecord(fields ...Field) []byte {
	return encode(" D     ", "   ", fields)
}

// encode writes leader, directory and field area. head is leader bytes 5-11;
// charset is bytes 17-19.
func encode(head, charset string, fields []Field) []byte {
	var dir, area bytes.Buffer
	for _, f := range fields {
		length := len(f.Data) + 1
		fmt.Fprintf(&dir, "%-*s%0*d%0*d", sizeOfTag, f.Tag, sizeOfLength, length, sizeOfPosition, area.Len())
		area.Write(f.Data)
		area.WriteByte(iso8211.FieldTerminator)
	}
	dir.WriteByte(iso8211.FieldTerminator)

	base := iso8211.LeaderLength + dir.Len()
	total := base + area.Len()

	var rec bytes.Buffer
	fmt.Fprintf(&rec, "%05d%s%05d%s%d%d0%d", total, head, base, charset, sizeOfLength, sizeOfPosition, sizeOfTag)
	rec.Write(dir.Bytes())
	rec.Write(area.Bytes())
	return rec.Bytes()
}
