package parser

import "github.com/beetlebugorg/s57topo/internal/iso8211"

// Chart is the result of decoding one exchange file.
//
// Reference: S-57 Part 3 §7 (31Main.pdf p3.31): Structure implementation
// showing how datasets are composed of metadata and feature records.
type Chart struct {
	Map       *Map
	Metadata  Metadata
	Structure DatasetStructure
	Params    DatasetParams
	DDR       *iso8211.DDR
	Warnings  []Warning
	Records   int // Data records read, DDR excluded
}

// DatasetName returns the chart's dataset name (cell identifier).
func (c *Chart) DatasetName() string {
	return c.Metadata.DatasetName
}

// Edition returns the chart's edition number.
func (c *Chart) Edition() string {
	return c.Metadata.Edition
}

// UpdateNumber returns the chart's update number.
func (c *Chart) UpdateNumber() string {
	return c.Metadata.UpdateNumber
}

// IntendedUsage returns the intended usage (navigational purpose) code.
//
// Values per S-57 specification:
//
//	1 = Overview, 2 = General, 3 = Coastal, 4 = Approach, 5 = Harbour, 6 = Berthing
func (c *Chart) IntendedUsage() int {
	return int(c.Metadata.IntendedUsage)
}

// CoordinateUnits returns the coordinate units from the DSPM record.
// S-57 §7.3.2.1 COUN field: 1=lat/lon, 2=eastings/northings.
func (c *Chart) CoordinateUnits() int {
	return int(c.Params.CoordinateUnits)
}

// HorizontalDatum returns the horizontal datum code from the DSPM record.
// S-57 §7.3.2.1 HDAT field: 2=WGS-84 (most common).
func (c *Chart) HorizontalDatum() int {
	return int(c.Params.HorizontalDatum)
}

// CompilationScale returns the compilation scale from the DSPM record.
// S-57 §7.3.2.1 CSCL field: scale denominator (e.g., 50000 for 1:50,000).
func (c *Chart) CompilationScale() uint32 {
	return c.Params.CompilationScale
}
