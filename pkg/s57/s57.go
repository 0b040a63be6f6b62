// Package s57 decodes IHO S-57 ENC exchange files into a chart topology map.
//
// A decoded Chart holds the vector topology of one file (nodes, edges,
// features and the references between them) together with the dataset
// metadata. Coordinates are scaled to degrees; nothing is projected or
// rendered.
//
//	chart, err := s57.DecodeFile("US5MA22M.000", s57.DefaultDecodeOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range chart.Features() {
//	    fmt.Println(f.Name, f.ClassName())
//	}
package s57

import (
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/s57topo/internal/iso8211"
	"github.com/beetlebugorg/s57topo/internal/parser"
)

// Topology map types.
type (
	Map         = parser.Map
	Node        = parser.Node
	Edge        = parser.Edge
	Feature     = parser.Feature
	Key         = parser.Key
	LongName    = parser.LongName
	NodeFlag    = parser.NodeFlag
	Primitive   = parser.Primitive
	SpatialRef  = parser.SpatialRef
	FeatureRef  = parser.FeatureRef
	BoundaryRef = parser.BoundaryRef
	Geometry    = parser.Geometry
	Metadata    = parser.Metadata
	Warning     = parser.Warning
	WarningKind = parser.WarningKind

	DatasetStructure = parser.DatasetStructure
	DatasetParams    = parser.DatasetParams
)

// DDR types.
type (
	DDR              = iso8211.DDR
	FieldDescription = iso8211.FieldDescription
	Format           = iso8211.Format
)

// Errors returned by Decode. Every error is a *DecodeError; match the kind
// with errors.Is against the sentinels.
type (
	DecodeError = parser.DecodeError
	ErrorKind   = parser.ErrorKind
)

var (
	ErrFormat     = parser.ErrFormat
	ErrOutOfOrder = parser.ErrOutOfOrder
	ErrIO         = parser.ErrIO
)

const (
	FlagAnonymous = parser.FlagAnonymous
	FlagIsolated  = parser.FlagIsolated
	FlagConnected = parser.FlagConnected

	PrimNone  = parser.PrimNone
	PrimPoint = parser.PrimPoint
	PrimLine  = parser.PrimLine
	PrimArea  = parser.PrimArea

	WarnUnresolvedSpatial  = parser.WarnUnresolvedSpatial
	WarnUnresolvedFeature  = parser.WarnUnresolvedFeature
	WarnUnresolvedBoundary = parser.WarnUnresolvedBoundary
	WarnDegenerateEdge     = parser.WarnDegenerateEdge
	WarnCountMismatch      = parser.WarnCountMismatch
)

// Vector record categories (RCNM).
const (
	CategoryIsolatedNode  = parser.CategoryIsolatedNode
	CategoryConnectedNode = parser.CategoryConnectedNode
	CategoryEdge          = parser.CategoryEdge
	CategoryFace          = parser.CategoryFace
)

// Orientation and topology indicators of FSPT and VRPT pointers.
const (
	OrientationForward = parser.OrientationForward
	OrientationReverse = parser.OrientationReverse
	OrientationNull    = parser.OrientationNull

	TopologyBegin = parser.TopologyBegin
	TopologyEnd   = parser.TopologyEnd
)

// VectorKey builds the key of a named vector record.
func VectorKey(rcnm uint8, rcid uint32) Key {
	return parser.VectorKey(rcnm, rcid)
}

// NewLongName builds a feature long name from its FOID subfields.
func NewLongName(agen uint16, fidn uint32, fids uint16) LongName {
	return parser.NewLongName(agen, fidn, fids)
}

// ObjectClassName converts an OBJL code to its acronym, e.g. 42 -> "DEPARE".
func ObjectClassName(code uint16) string {
	return parser.ObjectClassName(code)
}

// AttributeName converts an ATTL code to its acronym, e.g. 116 -> "OBJNAM".
func AttributeName(code uint16) string {
	return parser.AttributeName(code)
}

// Chart is one decoded exchange file.
//
// A Chart is read-only after decode and safe for concurrent readers.
type Chart struct {
	internal *parser.Chart
	path     string
}

func newChart(c *parser.Chart, path string) *Chart {
	return &Chart{internal: c, path: path}
}

// Path is the file the chart was decoded from, empty for Decode.
func (c *Chart) Path() string { return c.path }

// Map returns the topology map.
func (c *Chart) Map() *Map { return c.internal.Map }

// Metadata returns the DSID values.
func (c *Chart) Metadata() Metadata { return c.internal.Metadata }

// Structure returns the DSSI values.
func (c *Chart) Structure() DatasetStructure { return c.internal.Structure }

// Params returns the DSPM values.
func (c *Chart) Params() DatasetParams { return c.internal.Params }

// DDR returns the field descriptions of the file.
func (c *Chart) DDR() *DDR { return c.internal.DDR }

// Warnings returns the findings of the final consistency pass.
func (c *Chart) Warnings() []Warning { return c.internal.Warnings }

// Records is the number of data records read.
func (c *Chart) Records() int { return c.internal.Records }

// DatasetName returns the cell name, e.g. "US5MA22M".
func (c *Chart) DatasetName() string { return c.internal.DatasetName() }

// Edition returns the edition number.
func (c *Chart) Edition() string { return c.internal.Edition() }

// UpdateNumber returns the update number. "0" is a base cell.
func (c *Chart) UpdateNumber() string { return c.internal.UpdateNumber() }

// UpdateDate returns the update application date, YYYYMMDD.
func (c *Chart) UpdateDate() string { return c.internal.Metadata.UpdateDate }

// IssueDate returns the issue date, YYYYMMDD.
func (c *Chart) IssueDate() string { return c.internal.Metadata.IssueDate }

// S57Edition returns the edition of the standard, e.g. "03.1".
func (c *Chart) S57Edition() string { return c.internal.Metadata.S57Edition }

// ProducingAgency returns the agency code, e.g. 550 for NOAA.
func (c *Chart) ProducingAgency() int { return int(c.internal.Metadata.ProducingAgency) }

// Comment returns the DSID comment.
func (c *Chart) Comment() string { return c.internal.Metadata.Comment }

// ExchangePurpose returns "New" or "Revision".
func (c *Chart) ExchangePurpose() string { return c.internal.Metadata.ExchangePurpose() }

// ProductSpecification returns "ENC" or "ODD".
func (c *Chart) ProductSpecification() string { return c.internal.Metadata.ProductSpecification() }

// ApplicationProfile returns the application profile name.
func (c *Chart) ApplicationProfile() string { return c.internal.Metadata.ApplicationProfile() }

// UsageBand returns the intended usage band.
func (c *Chart) UsageBand() UsageBand { return UsageBand(c.internal.IntendedUsage()) }

// CoordinateUnits returns the DSPM coordinate units.
func (c *Chart) CoordinateUnits() CoordinateUnits {
	return CoordinateUnits(c.internal.CoordinateUnits())
}

// HorizontalDatum returns the HDAT code; 2 is WGS-84.
func (c *Chart) HorizontalDatum() int { return c.internal.HorizontalDatum() }

// CompilationScale returns the scale denominator, 0 if unspecified.
func (c *Chart) CompilationScale() int { return int(c.internal.CompilationScale()) }

// Nodes returns every node in creation order.
func (c *Chart) Nodes() []*Node { return c.internal.Map.Nodes() }

// Edges returns every edge and face record in creation order.
func (c *Chart) Edges() []*Edge { return c.internal.Map.Edges() }

// Features returns every feature in commit order.
func (c *Chart) Features() []*Feature { return c.internal.Map.Features() }

// FeatureCount returns the number of features.
func (c *Chart) FeatureCount() int { return len(c.internal.Map.Features()) }

// Geometry resolves the spatial references of a feature.
func (c *Chart) Geometry(f *Feature) Geometry { return c.internal.Map.Geometry(f) }

// Bounds returns the extent of every decoded coordinate. The bound is
// empty when the file has no coordinates.
func (c *Chart) Bounds() orb.Bound { return toBound(c.internal.Map.Bounds()) }

// NodesWithin returns the nodes inside b, in creation order.
func (c *Chart) NodesWithin(b orb.Bound) []*Node {
	return c.internal.Map.NodesWithin(fromBound(b))
}

// FeaturesWithin returns the features whose geometry intersects b, in commit order.
func (c *Chart) FeaturesWithin(b orb.Bound) []*Feature {
	return c.internal.Map.FeaturesWithin(fromBound(b))
}

// CoordinateUnits indicates how coordinates are encoded in the chart.
//
// S-57 §7.3.2.1: COUN field in DSPM record defines coordinate units.
type CoordinateUnits int

const (
	// CoordinateUnitsUnknown: no DSPM in the file. Treated as lat/lon.
	CoordinateUnitsUnknown CoordinateUnits = 0

	// CoordinateUnitsLatLon: latitude/longitude, the usual ENC encoding.
	CoordinateUnitsLatLon CoordinateUnits = parser.CoordinatesLatLon

	// CoordinateUnitsEastNorth: projected easting/northing. Coordinates are
	// scaled but not range checked.
	CoordinateUnitsEastNorth CoordinateUnits = parser.CoordinatesEastNorth
)

// String returns a human-readable name for the coordinate units.
func (c CoordinateUnits) String() string {
	switch c {
	case CoordinateUnitsLatLon:
		return "Latitude/Longitude"
	case CoordinateUnitsEastNorth:
		return "Easting/Northing"
	default:
		return "Unknown"
	}
}

// UsageBand is the ENC navigational purpose (DSID INTU).
//
// Reference: S-57 Part 3 §7.3.1.1 (INTU field) and S-52 Section 3.4
type UsageBand int

const (
	UsageBandUnknown  UsageBand = 0
	UsageBandOverview UsageBand = 1 // >= 1:1,500,000
	UsageBandGeneral  UsageBand = 2 // 1:350,000 - 1:1,500,000
	UsageBandCoastal  UsageBand = 3 // 1:90,000 - 1:350,000
	UsageBandApproach UsageBand = 4 // 1:22,000 - 1:90,000
	UsageBandHarbour  UsageBand = 5 // 1:4,000 - 1:22,000
	UsageBandBerthing UsageBand = 6 // <= 1:4,000
)

// String returns the human-readable name of the usage band.
func (ub UsageBand) String() string {
	switch ub {
	case UsageBandOverview:
		return "Overview"
	case UsageBandGeneral:
		return "General"
	case UsageBandCoastal:
		return "Coastal"
	case UsageBandApproach:
		return "Approach"
	case UsageBandHarbour:
		return "Harbour"
	case UsageBandBerthing:
		return "Berthing"
	default:
		return "Unknown"
	}
}

// ScaleRange returns the recommended scale denominators (min, max) for the
// band. Open-ended ranges return 0 for the open side.
func (ub UsageBand) ScaleRange() (min, max int) {
	switch ub {
	case UsageBandOverview:
		return 1500000, 0
	case UsageBandGeneral:
		return 350000, 1500000
	case UsageBandCoastal:
		return 90000, 350000
	case UsageBandApproach:
		return 22000, 90000
	case UsageBandHarbour:
		return 4000, 22000
	case UsageBandBerthing:
		return 0, 4000
	default:
		return 0, 0
	}
}
