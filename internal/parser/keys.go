package parser

import (
	"encoding/binary"
	"fmt"
)

// Record categories (RCNM) of vector records.
// S-57 Part 3 §2.2.1, table 2.2 (31Main.pdf p3.8)
const (
	CategoryIsolatedNode  = 110 // VI
	CategoryConnectedNode = 120 // VC
	CategoryEdge          = 130 // VE
	CategoryFace          = 140 // VF
)

// seqBits is reserved below the (RCNM, RCID) pair for the in-record
// sequence number of synthetic nodes.
const seqBits = 16

const maxSeq = 1<<seqBits - 1

// Key identifies a node or an edge.
//
// Layout: ((RCNM << 32) | RCID) << 16 | seq. Named nodes and edges carry
// seq 0; synthetic nodes of a vector record carry 1, 2, ... in encounter order.
type Key uint64

// VectorKey builds the key of a named vector record.
func VectorKey(rcnm uint8, rcid uint32) Key {
	return Key(uint64(rcnm)<<32|uint64(rcid)) << seqBits
}

// nameKey decodes a B(40) NAME subfield (RCNM b11 + RCID b14) of FSPT or VRPT.
func nameKey(b []byte) Key {
	return VectorKey(b[0], binary.LittleEndian.Uint32(b[1:5]))
}

// Category is the RCNM of the record the key belongs to.
func (k Key) Category() int {
	return int(k >> (32 + seqBits))
}

// RecordID is the RCID of the record the key belongs to.
func (k Key) RecordID() uint32 {
	return uint32(k >> seqBits)
}

// Seq is the synthetic sequence number, 0 for named records.
func (k Key) Seq() int {
	return int(k & maxSeq)
}

// Record clears the sequence number, yielding the owning record's key.
func (k Key) Record() Key {
	return k &^ maxSeq
}

// WithSeq sets the sequence number.
func (k Key) WithSeq(seq int) Key {
	return k.Record() | Key(seq&maxSeq)
}

func (k Key) String() string {
	var prefix string
	switch k.Category() {
	case CategoryIsolatedNode:
		prefix = "VI"
	case CategoryConnectedNode:
		prefix = "VC"
	case CategoryEdge:
		prefix = "VE"
	case CategoryFace:
		prefix = "VF"
	default:
		prefix = fmt.Sprintf("RCNM%d", k.Category())
	}
	if seq := k.Seq(); seq != 0 {
		return fmt.Sprintf("%s/%d#%d", prefix, k.RecordID(), seq)
	}
	return fmt.Sprintf("%s/%d", prefix, k.RecordID())
}

// LongName (LNAM) identifies a feature: AGEN << 48 | FIDN << 16 | FIDS.
// S-57 Part 3 §4.3 (31Main.pdf p3.22)
type LongName uint64

// NewLongName packs the FOID subfields.
func NewLongName(agen uint16, fidn uint32, fids uint16) LongName {
	return LongName(uint64(agen)<<48 | uint64(fidn)<<16 | uint64(fids))
}

// longName decodes a B(64) LNAM subfield of FFPT.
func longName(b []byte) LongName {
	return NewLongName(
		binary.LittleEndian.Uint16(b[0:2]),
		binary.LittleEndian.Uint32(b[2:6]),
		binary.LittleEndian.Uint16(b[6:8]),
	)
}

// Agency is the producing agency code (AGEN).
func (n LongName) Agency() uint16 { return uint16(n >> 48) }

// FIDN is the feature identification number.
func (n LongName) FIDN() uint32 { return uint32(n >> 16) }

// FIDS is the feature identification subdivision.
func (n LongName) FIDS() uint16 { return uint16(n) }

func (n LongName) String() string {
	return fmt.Sprintf("%d:%d:%d", n.Agency(), n.FIDN(), n.FIDS())
}
