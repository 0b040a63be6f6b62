package s57

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/beetlebugorg/s57topo/internal/iso8211"
	"github.com/beetlebugorg/s57topo/internal/iso8211/iso8211test"
)

type fieldBuf struct{ bytes.Buffer }

func (b *fieldBuf) u8(v uint8) *fieldBuf { b.WriteByte(v); return b }

func (b *fieldBuf) u16(v uint16) *fieldBuf {
	binary.Write(&b.Buffer, binary.LittleEndian, v)
	return b
}

func (b *fieldBuf) u32(v uint32) *fieldBuf {
	binary.Write(&b.Buffer, binary.LittleEndian, v)
	return b
}

func (b *fieldBuf) i32(v int32) *fieldBuf {
	binary.Write(&b.Buffer, binary.LittleEndian, v)
	return b
}

func (b *fieldBuf) str(s string) *fieldBuf {
	b.WriteString(s)
	b.WriteByte(iso8211.UnitTerminator)
	return b
}

func (b *fieldBuf) field(tag string) iso8211test.Field {
	return iso8211test.Field{Tag: tag, Data: b.Bytes()}
}

const comf = 10000000

// testCell describes a one-degree square DEPARE with its south-west corner
// at (lat, lon), two soundings inside it and a feature without geometry.
type testCell struct {
	name    string
	intu    uint8
	edition string
	update  string
	scale   uint32
	lat     int32
	lon     int32
}

func (c testCell) bytes() []byte {
	lat, lon := c.lat*comf, c.lon*comf

	var dsid fieldBuf
	dsid.u8(10).u32(1).u8(1).u8(c.intu)
	dsid.str(c.name).str(c.edition).str(c.update)
	dsid.WriteString("20240101")
	dsid.WriteString("20240115")
	dsid.WriteString("03.1")
	dsid.u8(1).str("").str("2.0").u8(1).u16(550).str("")

	var dspm fieldBuf
	dspm.u8(20).u32(1).u8(2).u8(17).u8(23).u32(c.scale)
	dspm.u8(1).u8(1).u8(1).u8(1).u32(comf).u32(10).str("")

	node := func(rcnm uint8, rcid uint32) iso8211test.Field {
		var b fieldBuf
		b.u8(rcnm).u32(rcid).u16(1).u8(1)
		return b.field("VRID")
	}
	sg2d := func(y, x int32) iso8211test.Field {
		var b fieldBuf
		b.i32(y).i32(x)
		return b.field("SG2D")
	}
	vrpt := func(begin, end uint32) iso8211test.Field {
		var b fieldBuf
		b.u8(CategoryConnectedNode).u32(begin).u8(255).u8(255).u8(TopologyBegin).u8(255)
		b.u8(CategoryConnectedNode).u32(end).u8(255).u8(255).u8(TopologyEnd).u8(255)
		return b.field("VRPT")
	}
	frid := func(rcid uint32, prim uint8, objl uint16) iso8211test.Field {
		var b fieldBuf
		b.u8(100).u32(rcid).u8(prim).u8(2).u16(objl).u16(1).u8(1)
		return b.field("FRID")
	}
	foid := func(fidn uint32) iso8211test.Field {
		var b fieldBuf
		b.u16(550).u32(fidn).u16(1)
		return b.field("FOID")
	}
	fspt := func(rcnm uint8, rcids ...uint32) iso8211test.Field {
		var b fieldBuf
		for _, id := range rcids {
			b.u8(rcnm).u32(id).u8(OrientationForward).u8(1).u8(255)
		}
		return b.field("FSPT")
	}

	var attf fieldBuf
	attf.u16(87).str("5").u16(88).str("10")
	var natf fieldBuf
	natf.u16(301).str("Havn")
	var sg3d fieldBuf
	sg3d.i32(lat + comf/4).i32(lon + comf/4).i32(125)
	sg3d.i32(lat + comf/2).i32(lon + comf/2).i32(30)

	return iso8211test.NewBuilder().
		Record(dsid.field("DSID"), dspm.field("DSPM")).
		Record(node(CategoryConnectedNode, 1), sg2d(lat, lon)).
		Record(node(CategoryConnectedNode, 2), sg2d(lat+comf, lon+comf)).
		Record(node(CategoryEdge, 10), vrpt(1, 2), sg2d(lat, lon+comf)).
		Record(node(CategoryEdge, 11), vrpt(2, 1), sg2d(lat+comf, lon)).
		Record(node(CategoryIsolatedNode, 3), sg3d.field("SG3D")).
		Record(frid(1, 3, 42), foid(1), attf.field("ATTF"), natf.field("NATF"), fspt(CategoryEdge, 10, 11)).
		Record(frid(2, 1, 129), foid(2), fspt(CategoryIsolatedNode, 3)).
		Record(frid(3, 255, 302), foid(3)).
		Bytes()
}

var harbourCell = testCell{name: "US5TEST1", intu: 5, edition: "3", update: "0", scale: 20000, lat: 10, lon: 20}

// writeCell writes c to dir/name, creating parent directories.
func writeCell(t *testing.T, dir, name string, c testCell) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, c.bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func mustDecode(t *testing.T, c testCell) *Chart {
	t.Helper()
	chart, err := Decode(bytes.NewReader(c.bytes()), DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return chart
}
