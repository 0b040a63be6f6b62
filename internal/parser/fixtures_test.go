package parser

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/beetlebugorg/s57topo/internal/iso8211"
	"github.com/beetlebugorg/s57topo/internal/iso8211/iso8211test"
)

// Field encoders for hand-built exchange files. Binary layouts follow
// S-57 Part 3 §7 (31Main.pdf p3.31-3.58).

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

// str writes a unit-terminated string.
func (b *fieldBuf) str(s string) *fieldBuf {
	b.WriteString(s)
	b.WriteByte(iso8211.UnitTerminator)
	return b
}

func (b *fieldBuf) field(tag string) iso8211test.Field {
	return iso8211test.Field{Tag: tag, Data: b.Bytes()}
}

func dsidField(name string) iso8211test.Field {
	var b fieldBuf
	b.u8(10).u32(1).u8(1).u8(5)
	b.str(name).str("3").str("0")
	b.WriteString("20240101")
	b.WriteString("20240115")
	b.WriteString("03.1")
	b.u8(1).str("").str("2.0").u8(1).u16(550).str("test cell")
	return b.field("DSID")
}

type dssiCounts struct {
	aall, nall                      uint8
	meta, carto, geo, coll          uint32
	isolated, connected, edge, face uint32
}

func dssiField(c dssiCounts) iso8211test.Field {
	var b fieldBuf
	b.u8(2).u8(c.aall).u8(c.nall)
	b.u32(c.meta).u32(c.carto).u32(c.geo).u32(c.coll)
	b.u32(c.isolated).u32(c.connected).u32(c.edge).u32(c.face)
	return b.field("DSSI")
}

func dspmField(comf, somf uint32, coun uint8) iso8211test.Field {
	var b fieldBuf
	b.u8(20).u32(1).u8(2).u8(17).u8(23).u32(50000)
	b.u8(1).u8(1).u8(1).u8(coun).u32(comf).u32(somf).str("")
	return b.field("DSPM")
}

func fridField(rcid uint32, prim uint8, objl uint16) iso8211test.Field {
	var b fieldBuf
	b.u8(100).u32(rcid).u8(prim).u8(2).u16(objl).u16(1).u8(1)
	return b.field("FRID")
}

func foidField(agen uint16, fidn uint32, fids uint16) iso8211test.Field {
	var b fieldBuf
	b.u16(agen).u32(fidn).u16(fids)
	return b.field("FOID")
}

type attr struct {
	code  uint16
	value string
}

func attfField(tag string, attrs ...attr) iso8211test.Field {
	var b fieldBuf
	for _, a := range attrs {
		b.u16(a.code).str(a.value)
	}
	return b.field(tag)
}

func ffptField(refs ...FeatureRef) iso8211test.Field {
	var b fieldBuf
	for _, r := range refs {
		b.u16(r.Target.Agency()).u32(r.Target.FIDN()).u16(r.Target.FIDS())
		b.u8(r.Relation).str(r.Comment)
	}
	return b.field("FFPT")
}

func fsptField(refs ...SpatialRef) iso8211test.Field {
	var b fieldBuf
	for _, r := range refs {
		b.u8(uint8(r.Target.Category())).u32(r.Target.RecordID())
		b.u8(r.Orientation).u8(r.Usage).u8(r.Mask)
	}
	return b.field("FSPT")
}

func vridField(rcnm uint8, rcid uint32) iso8211test.Field {
	var b fieldBuf
	b.u8(rcnm).u32(rcid).u16(1).u8(1)
	return b.field("VRID")
}

func vrptField(refs ...BoundaryRef) iso8211test.Field {
	var b fieldBuf
	for _, r := range refs {
		b.u8(uint8(r.Target.Category())).u32(r.Target.RecordID())
		b.u8(r.Orientation).u8(r.Usage).u8(r.Topology).u8(r.Mask)
	}
	return b.field("VRPT")
}

// sg2dField takes raw (y, x) pairs.
func sg2dField(pairs ...[2]int32) iso8211test.Field {
	var b fieldBuf
	for _, p := range pairs {
		b.i32(p[0]).i32(p[1])
	}
	return b.field("SG2D")
}

// sg3dField takes raw (y, x, depth) triples.
func sg3dField(triples ...[3]int32) iso8211test.Field {
	var b fieldBuf
	for _, p := range triples {
		b.i32(p[0]).i32(p[1]).i32(p[2])
	}
	return b.field("SG3D")
}

func spatial(rcnm uint8, rcid uint32) SpatialRef {
	return SpatialRef{Target: VectorKey(rcnm, rcid), Orientation: OrientationForward, Usage: 1, Mask: 255}
}

func boundary(rcnm uint8, rcid uint32, topi uint8) BoundaryRef {
	return BoundaryRef{Target: VectorKey(rcnm, rcid), Orientation: 255, Usage: 255, Topology: topi, Mask: 255}
}

// squareChart is a one-degree square area at (10..11 N, 20..21 E) made of
// two edges between connected nodes 1 and 2, with COMF=10000000.
//
//	VC1 (10,20) --VE10 via (10,21)--> VC2 (11,21) --VE11 via (11,20)--> VC1
func squareChart() *iso8211test.Builder {
	const c = 10000000
	return iso8211test.NewBuilder().
		Record(dsidField("SQUARE"), dspmField(c, 10, CoordinatesLatLon)).
		Record(vridField(CategoryConnectedNode, 1), sg2dField([2]int32{10 * c, 20 * c})).
		Record(vridField(CategoryConnectedNode, 2), sg2dField([2]int32{11 * c, 21 * c})).
		Record(vridField(CategoryEdge, 10),
			vrptField(boundary(CategoryConnectedNode, 1, TopologyBegin), boundary(CategoryConnectedNode, 2, TopologyEnd)),
			sg2dField([2]int32{10 * c, 21 * c})).
		Record(vridField(CategoryEdge, 11),
			vrptField(boundary(CategoryConnectedNode, 2, TopologyBegin), boundary(CategoryConnectedNode, 1, TopologyEnd)),
			sg2dField([2]int32{11 * c, 20 * c})).
		Record(fridField(1, 3, 42), foidField(550, 1, 1), attfField("ATTF", attr{87, "5"}, attr{88, "10"}),
			fsptField(spatial(CategoryEdge, 10), spatial(CategoryEdge, 11))).
		Record(fridField(2, 2, 30), foidField(550, 2, 1),
			fsptField(SpatialRef{Target: VectorKey(CategoryEdge, 10), Orientation: OrientationReverse, Usage: 255, Mask: 255}))
}

func mustDecode(t *testing.T, data []byte, opts DecodeOptions) *Chart {
	t.Helper()
	chart, err := Decode(bytes.NewReader(data), opts)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return chart
}
