package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Metadata is the data set identification field (DSID).
//
// Reference: S-57 Part 3 §7.3.1.1 (31Main.pdf p3.34-3.35, table 7.4)
type Metadata struct {
	RecordID               uint32
	ExchangePurposeCode    uint8  // EXPP: 1=new, 2=revision
	IntendedUsage          uint8  // INTU: 1=overview ... 6=berthing
	DatasetName            string // DSNM, the cell name, e.g. "US5MA22M"
	Edition                string // EDTN
	UpdateNumber           string // UPDN
	UpdateDate             string // UADT, YYYYMMDD
	IssueDate              string // ISDT, YYYYMMDD
	S57Edition             string // STED, e.g. "03.1"
	ProductSpecCode        uint8  // PRSP: 1=ENC, 2=ODD
	ProductSpecDesc        string // PSDN
	ProductSpecEdition     string // PRED
	ApplicationProfileCode uint8  // PROF: 1=EN, 2=ER, 3=DD
	ProducingAgency        uint16 // AGEN
	Comment                string // COMT
}

// ExchangePurpose returns "New" or "Revision".
func (m *Metadata) ExchangePurpose() string {
	switch m.ExchangePurposeCode {
	case 1:
		return "New"
	case 2:
		return "Revision"
	default:
		return "Unknown"
	}
}

// ProductSpecification returns "ENC" or "ODD".
func (m *Metadata) ProductSpecification() string {
	switch m.ProductSpecCode {
	case 1:
		return "ENC"
	case 2:
		return "ODD"
	default:
		return "Unknown"
	}
}

// ApplicationProfile returns the profile name.
func (m *Metadata) ApplicationProfile() string {
	switch m.ApplicationProfileCode {
	case 1:
		return "ENC New"
	case 2:
		return "ENC Revision"
	case 3:
		return "IHO Data Dictionary"
	default:
		return "Unknown"
	}
}

// DatasetStructure is the data set structure information field (DSSI).
// S-57 Part 3 §7.3.1.2 (31Main.pdf p3.36)
type DatasetStructure struct {
	DataStructure  uint8 // DSTR: 1=cartographic spaghetti, 2=chain-node, 3=planar graph, 4=full topology
	AttributeLevel uint8 // AALL, lexical level of ATTF
	NationalLevel  uint8 // NALL, lexical level of NATF

	MetaRecords          uint32 // NOMR
	CartographicRecords  uint32 // NOCR
	GeoRecords           uint32 // NOGR
	CollectionRecords    uint32 // NOLR
	IsolatedNodeRecords  uint32 // NOIN
	ConnectedNodeRecords uint32 // NOCN
	EdgeRecords          uint32 // NOED
	FaceRecords          uint32 // NOFA
}

// FeatureRecords is the declared total of feature records.
func (d *DatasetStructure) FeatureRecords() uint32 {
	return d.MetaRecords + d.CartographicRecords + d.GeoRecords + d.CollectionRecords
}

// DatasetParams is the data set parameter field (DSPM).
// S-57 Part 3 §7.3.2.1 (31Main.pdf p3.37)
type DatasetParams struct {
	RecordID         uint32
	HorizontalDatum  uint8  // HDAT: 2=WGS-84
	VerticalDatum    uint8  // VDAT
	SoundingDatum    uint8  // SDAT
	CompilationScale uint32 // CSCL, scale denominator
	DepthUnits       uint8  // DUNI: 1=metres
	HeightUnits      uint8  // HUNI: 1=metres
	PositionUnits    uint8  // PUNI: 1=metres
	CoordinateUnits  uint8  // COUN: 1=lat/lon, 2=eastings/northings
	COMF             decimal.Decimal
	SOMF             decimal.Decimal
	Comment          string
}

// Coordinate units of DSPM COUN.
const (
	CoordinatesLatLon    = 1
	CoordinatesEastNorth = 2
)

// defaultDatasetParams is used when a file has no DSPM: unit scaling.
func defaultDatasetParams() DatasetParams {
	return DatasetParams{
		COMF: decimal.NewFromInt(1),
		SOMF: decimal.NewFromInt(1),
	}
}

// scale divides a raw coordinate or sounding by its multiplication factor.
func scale(raw int64, factor decimal.Decimal) float64 {
	f, _ := decimal.NewFromInt(raw).Div(factor).Float64()
	return f
}

// fixedText strips the padding of an A(n) subfield.
func fixedText(b []byte) string {
	return strings.TrimRight(string(b), "\x00 ")
}
