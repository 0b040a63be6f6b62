package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beetlebugorg/s57topo/internal/iso8211"
)

// cursor decodes the subfields of one field according to its layout.
//
// The cursor is bound to the field's byte range, trailing field terminator
// excluded. Reading past that range means a layout and the dispatcher
// disagree: it panics in s57debug builds and reports a FormatError otherwise.
type cursor struct {
	data   []byte
	pos    int
	base   int64 // File offset of data[0]
	layout *layout
	idx    int  // Next subfield in layout
	wide   bool // Lexical level 2: unit terminator is two bytes
}

// subfieldValue is one decoded subfield.
type subfieldValue struct {
	u   uint64
	i   int64
	raw []byte
}

func (v subfieldValue) Uint() uint64  { return v.u }
func (v subfieldValue) Int() int64    { return v.i }
func (v subfieldValue) Bytes() []byte { return v.raw }

// position binds the cursor to the field e of rec.
func (c *cursor) position(rec *iso8211.Record, e iso8211.DirEntry, l *layout) {
	c.data = rec.Field(e)
	c.pos = 0
	c.base = rec.FieldOffset(e)
	c.layout = l
	c.idx = 0
	c.wide = false
}

// setWide switches delimited subfields to two-byte terminators and drops a
// two-byte field terminator.
func (c *cursor) setWide() {
	c.wide = true
	if n := len(c.data); n >= 2 && c.data[n-2] == iso8211.FieldTerminator && c.data[n-1] == 0 {
		c.data = c.data[:n-2]
	}
}

// hasMore reports whether unread bytes remain, i.e. another repeating group follows.
func (c *cursor) hasMore() bool {
	return c.pos < len(c.data)
}

// offset is the file offset of the next unread byte.
func (c *cursor) offset() int64 {
	return c.base + int64(c.pos)
}

// next decodes the subfield called name, which must be the next one in the layout.
func (c *cursor) next(name string) (subfieldValue, error) {
	var v subfieldValue

	if c.idx >= len(c.layout.subfields) {
		if !c.layout.repeating {
			return v, c.fault("subfield %s requested after last subfield", name)
		}
		c.idx = 0
	}
	def := c.layout.subfields[c.idx]
	if def.name != name {
		return v, c.fault("subfield %s requested, layout expects %s", name, def.name)
	}
	c.idx++

	switch def.kind {
	case kindUnsigned, kindSigned:
		b, err := c.take(def)
		if err != nil {
			return v, err
		}
		for i := len(b) - 1; i >= 0; i-- {
			v.u = v.u<<8 | uint64(b[i])
		}
		v.i = int64(v.u)
		if def.kind == kindSigned && def.width < 8 {
			shift := 64 - 8*uint(def.width)
			v.i = int64(v.u<<shift) >> shift
		}
		v.raw = b

	case kindASCIIInt:
		b, err := c.take(def)
		if err != nil {
			return v, err
		}
		s := strings.TrimSpace(string(b))
		if s != "" {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return v, formatErrorf(c.layout.tag, c.offset()-int64(def.width), "subfield %s: non-numeric value %q", name, s)
			}
			v.i = n
			v.u = uint64(n)
		}
		v.raw = b

	case kindFixedString, kindBits:
		b, err := c.take(def)
		if err != nil {
			return v, err
		}
		v.raw = b

	case kindString:
		b, err := c.delimited(def)
		if err != nil {
			return v, err
		}
		v.raw = b
	}

	return v, nil
}

// take consumes a fixed-width subfield.
func (c *cursor) take(def subfieldDef) ([]byte, error) {
	if c.pos+def.width > len(c.data) {
		return nil, c.fault("subfield %s needs %d bytes, %d left", def.name, def.width, len(c.data)-c.pos)
	}
	b := c.data[c.pos : c.pos+def.width]
	c.pos += def.width
	return b, nil
}

// delimited consumes a unit-terminated subfield and its terminator. The end
// of the field also terminates the last subfield.
func (c *cursor) delimited(def subfieldDef) ([]byte, error) {
	if c.pos >= len(c.data) {
		return nil, c.fault("subfield %s starts at end of field", def.name)
	}
	start := c.pos

	if c.wide {
		for c.pos+1 < len(c.data) {
			if c.data[c.pos+1] == 0 && (c.data[c.pos] == iso8211.UnitTerminator || c.data[c.pos] == iso8211.FieldTerminator) {
				b := c.data[start:c.pos]
				c.pos += 2
				return b, nil
			}
			c.pos += 2
		}
		b := c.data[start:c.pos]
		c.pos = len(c.data)
		return b, nil
	}

	for c.pos < len(c.data) {
		if c.data[c.pos] == iso8211.UnitTerminator {
			b := c.data[start:c.pos]
			c.pos++
			return b, nil
		}
		c.pos++
	}
	return c.data[start:c.pos], nil
}

// fault reports a cursor/layout disagreement.
func (c *cursor) fault(format string, args ...interface{}) error {
	err := formatErrorf(c.layout.tag, c.offset(), format, args...)
	if debugAsserts {
		panic(fmt.Sprintf("s57 cursor: %v", err))
	}
	return err
}
