package parser

import (
	"github.com/beetlebugorg/s57topo/internal/iso8211"
)

type subfieldKind int

const (
	kindUnsigned    subfieldKind = iota // b1n, little endian
	kindSigned                          // b2n, little endian two's complement
	kindASCIIInt                        // I(n)
	kindFixedString                     // A(n), R(n)
	kindString                          // A, unit terminated
	kindBits                            // B(n) bit string, n/8 bytes
)

type subfieldDef struct {
	name  string
	kind  subfieldKind
	width int
}

// layout is the static subfield structure of one field tag. Repeating
// layouts describe one group; the cursor wraps around after the last subfield.
type layout struct {
	tag       string
	subfields []subfieldDef
	repeating bool
}

func b1(name string, width int) subfieldDef    { return subfieldDef{name, kindUnsigned, width} }
func b2(name string, width int) subfieldDef    { return subfieldDef{name, kindSigned, width} }
func str(name string) subfieldDef              { return subfieldDef{name, kindString, 0} }
func fixed(name string, width int) subfieldDef { return subfieldDef{name, kindFixedString, width} }
func bits(name string, n int) subfieldDef      { return subfieldDef{name, kindBits, n / 8} }

// Binary implementation of the S-57 Edition 3.1 field structure.
// S-57 Part 3 §7 (31Main.pdf p3.31-3.58)
var layouts = map[string]*layout{
	// §7.3.1.1 Data set identification field
	"DSID": {tag: "DSID", subfields: []subfieldDef{
		b1("RCNM", 1), b1("RCID", 4), b1("EXPP", 1), b1("INTU", 1),
		str("DSNM"), str("EDTN"), str("UPDN"), fixed("UADT", 8), fixed("ISDT", 8), fixed("STED", 4),
		b1("PRSP", 1), str("PSDN"), str("PRED"), b1("PROF", 1), b1("AGEN", 2), str("COMT"),
	}},
	// §7.3.1.2 Data set structure information field
	"DSSI": {tag: "DSSI", subfields: []subfieldDef{
		b1("DSTR", 1), b1("AALL", 1), b1("NALL", 1),
		b1("NOMR", 4), b1("NOCR", 4), b1("NOGR", 4), b1("NOLR", 4),
		b1("NOIN", 4), b1("NOCN", 4), b1("NOED", 4), b1("NOFA", 4),
	}},
	// §7.3.2.1 Data set parameter field
	"DSPM": {tag: "DSPM", subfields: []subfieldDef{
		b1("RCNM", 1), b1("RCID", 4), b1("HDAT", 1), b1("VDAT", 1), b1("SDAT", 1), b1("CSCL", 4),
		b1("DUNI", 1), b1("HUNI", 1), b1("PUNI", 1), b1("COUN", 1), b1("COMF", 4), b1("SOMF", 4), str("COMT"),
	}},
	// §7.6.1 Feature record identifier field
	"FRID": {tag: "FRID", subfields: []subfieldDef{
		b1("RCNM", 1), b1("RCID", 4), b1("PRIM", 1), b1("GRUP", 1), b1("OBJL", 2), b1("RVER", 2), b1("RUIN", 1),
	}},
	// §7.6.2 Feature object identifier field
	"FOID": {tag: "FOID", subfields: []subfieldDef{
		b1("AGEN", 2), b1("FIDN", 4), b1("FIDS", 2),
	}},
	// §7.6.3 Feature record attribute field
	"ATTF": {tag: "ATTF", repeating: true, subfields: []subfieldDef{
		b1("ATTL", 2), str("ATVL"),
	}},
	// §7.6.4 Feature record national attribute field
	"NATF": {tag: "NATF", repeating: true, subfields: []subfieldDef{
		b1("ATTL", 2), str("ATVL"),
	}},
	// §7.6.6 Feature record to feature object pointer field
	"FFPT": {tag: "FFPT", repeating: true, subfields: []subfieldDef{
		bits("LNAM", 64), b1("RIND", 1), str("COMT"),
	}},
	// §7.6.8 Feature record to spatial record pointer field
	"FSPT": {tag: "FSPT", repeating: true, subfields: []subfieldDef{
		bits("NAME", 40), b1("ORNT", 1), b1("USAG", 1), b1("MASK", 1),
	}},
	// §7.7.1.1 Vector record identifier field
	"VRID": {tag: "VRID", subfields: []subfieldDef{
		b1("RCNM", 1), b1("RCID", 4), b1("RVER", 2), b1("RUIN", 1),
	}},
	// §7.7.1.4 Vector record pointer field
	"VRPT": {tag: "VRPT", repeating: true, subfields: []subfieldDef{
		bits("NAME", 40), b1("ORNT", 1), b1("USAG", 1), b1("TOPI", 1), b1("MASK", 1),
	}},
	// §7.7.1.6 2-D coordinate field
	"SG2D": {tag: "SG2D", repeating: true, subfields: []subfieldDef{
		b2("YCOO", 4), b2("XCOO", 4),
	}},
	// §7.7.1.7 3-D coordinate (sounding array) field
	"SG3D": {tag: "SG3D", repeating: true, subfields: []subfieldDef{
		b2("YCOO", 4), b2("XCOO", 4), b2("VE3D", 4),
	}},
}

// recordIDLayout derives the "0001" layout from the DDR format controls,
// falling back to b12 when the DDR does not describe the field.
func recordIDLayout(ddr *iso8211.DDR) *layout {
	def := b1("RCID", 2)
	if ddr != nil {
		if desc, ok := ddr.Field("0001"); ok && len(desc.Formats) == 1 {
			switch f := desc.Formats[0]; {
			case f.Type == 'b' && f.Binary == '2':
				def = b2("RCID", f.Width)
			case f.Type == 'b':
				def = b1("RCID", f.Width)
			case f.Type == 'I' && f.Width > 0:
				def = subfieldDef{"RCID", kindASCIIInt, f.Width}
			}
		}
	}
	return &layout{tag: "0001", subfields: []subfieldDef{def}}
}
