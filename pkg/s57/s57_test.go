package s57

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
)

func TestDecodeChart(t *testing.T) {
	chart := mustDecode(t, harbourCell)

	if chart.Path() != "" {
		t.Errorf("Expected empty path for Decode, got %q", chart.Path())
	}
	if chart.DatasetName() != "US5TEST1" {
		t.Errorf("DatasetName = %q", chart.DatasetName())
	}
	if chart.Edition() != "3" || chart.UpdateNumber() != "0" {
		t.Errorf("Edition/UpdateNumber = %q/%q", chart.Edition(), chart.UpdateNumber())
	}
	if chart.UpdateDate() != "20240101" || chart.IssueDate() != "20240115" {
		t.Errorf("dates = %q/%q", chart.UpdateDate(), chart.IssueDate())
	}
	if chart.S57Edition() != "03.1" {
		t.Errorf("S57Edition = %q", chart.S57Edition())
	}
	if chart.ProducingAgency() != 550 {
		t.Errorf("ProducingAgency = %d", chart.ProducingAgency())
	}
	if chart.ExchangePurpose() != "New" {
		t.Errorf("ExchangePurpose = %q", chart.ExchangePurpose())
	}
	if chart.ProductSpecification() != "ENC" {
		t.Errorf("ProductSpecification = %q", chart.ProductSpecification())
	}
	if chart.ApplicationProfile() != "ENC New" {
		t.Errorf("ApplicationProfile = %q", chart.ApplicationProfile())
	}
	if chart.UsageBand() != UsageBandHarbour {
		t.Errorf("UsageBand = %v", chart.UsageBand())
	}
	if chart.CoordinateUnits() != CoordinateUnitsLatLon {
		t.Errorf("CoordinateUnits = %v", chart.CoordinateUnits())
	}
	if chart.HorizontalDatum() != 2 {
		t.Errorf("HorizontalDatum = %d", chart.HorizontalDatum())
	}
	if chart.CompilationScale() != 20000 {
		t.Errorf("CompilationScale = %d", chart.CompilationScale())
	}
	if chart.Records() != 9 {
		t.Errorf("Records = %d, want 9", chart.Records())
	}
	if len(chart.Warnings()) != 0 {
		t.Errorf("Unexpected warnings: %v", chart.Warnings())
	}
	if chart.DDR() == nil {
		t.Error("Expected DDR")
	}
}

func TestChartTopology(t *testing.T) {
	chart := mustDecode(t, harbourCell)

	if chart.FeatureCount() != 3 {
		t.Fatalf("FeatureCount = %d, want 3", chart.FeatureCount())
	}
	// 2 connected, 2 edge vertices, 2 soundings
	if n := len(chart.Nodes()); n != 6 {
		t.Errorf("len(Nodes) = %d, want 6", n)
	}
	if n := len(chart.Edges()); n != 2 {
		t.Errorf("len(Edges) = %d, want 2", n)
	}

	area := chart.Features()[0]
	if area.Name != NewLongName(550, 1, 1) {
		t.Errorf("Name = %s", area.Name)
	}
	if area.ClassName() != "DEPARE" || area.Primitive != PrimArea {
		t.Errorf("area = %s %s", area.ClassName(), area.Primitive)
	}
	if area.Attributes[87] != "5" || area.Attributes[88] != "10" {
		t.Errorf("Attributes = %v", area.Attributes)
	}
	if area.NationalAttributes[301] != "Havn" {
		t.Errorf("NationalAttributes = %v", area.NationalAttributes)
	}

	g := chart.Geometry(area)
	if len(g.Rings) != 1 || len(g.Rings[0]) != 5 {
		t.Fatalf("Expected one closed ring of 5 nodes, got %v", g.Rings)
	}
	if g.Rings[0][0].Key != VectorKey(CategoryConnectedNode, 1) {
		t.Errorf("ring starts at %s", g.Rings[0][0].Key)
	}

	soundings := chart.Geometry(chart.Features()[1])
	if len(soundings.Points) != 2 {
		t.Fatalf("Expected 2 soundings, got %d", len(soundings.Points))
	}
	if math.Abs(soundings.Points[0].Depth-12.5) > 1e-9 || math.Abs(soundings.Points[1].Depth-3) > 1e-9 {
		t.Errorf("depths = %f, %f", soundings.Points[0].Depth, soundings.Points[1].Depth)
	}
	if soundings.Points[0].Flag != FlagIsolated {
		t.Errorf("sounding flag = %s", soundings.Points[0].Flag)
	}

	if g := chart.Geometry(chart.Features()[2]); !g.IsEmpty() {
		t.Errorf("Expected no geometry for NOSP feature, got %+v", g)
	}
}

func TestChartBounds(t *testing.T) {
	chart := mustDecode(t, harbourCell)

	want := orb.Bound{Min: orb.Point{20, 10}, Max: orb.Point{21, 11}}
	got := chart.Bounds()
	for i := 0; i < 2; i++ {
		if math.Abs(got.Min[i]-want.Min[i]) > 1e-9 || math.Abs(got.Max[i]-want.Max[i]) > 1e-9 {
			t.Fatalf("Bounds = %v, want %v", got, want)
		}
	}

	if p := NodePoint(chart.Nodes()[0]); p.Lon() != 20 || p.Lat() != 10 {
		t.Errorf("NodePoint = %v, want [20 10]", p)
	}
}

func TestChartWithin(t *testing.T) {
	chart := mustDecode(t, harbourCell)

	// South-west quarter holds VC1 and the first sounding.
	sw := orb.Bound{Min: orb.Point{19.9, 9.9}, Max: orb.Point{20.3, 10.3}}
	nodes := chart.NodesWithin(sw)
	if len(nodes) != 2 {
		t.Fatalf("NodesWithin = %d nodes, want 2", len(nodes))
	}
	if nodes[0].Key != VectorKey(CategoryConnectedNode, 1) {
		t.Errorf("first node = %s, want VC1", nodes[0].Key)
	}
	if !nodes[1].HasDepth {
		t.Errorf("second node should be a sounding")
	}

	features := chart.FeaturesWithin(sw)
	if len(features) != 2 {
		t.Fatalf("FeaturesWithin = %d, want 2", len(features))
	}
	if features[0].ClassName() != "DEPARE" || features[1].ClassName() != "SOUNDG" {
		t.Errorf("FeaturesWithin = %s, %s", features[0].ClassName(), features[1].ClassName())
	}

	far := orb.Bound{Min: orb.Point{-80, 40}, Max: orb.Point{-70, 45}}
	if n := chart.NodesWithin(far); len(n) != 0 {
		t.Errorf("Expected no nodes far away, got %d", len(n))
	}
	if n := chart.NodesWithin(emptyBound); len(n) != 0 {
		t.Errorf("Expected no nodes in empty bound, got %d", len(n))
	}
}

func TestDecodeFile(t *testing.T) {
	path := writeCell(t, t.TempDir(), "US5TEST1.000", harbourCell)

	chart, err := DecodeFile(path, DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if chart.Path() != path {
		t.Errorf("Path = %q, want %q", chart.Path(), path)
	}

	parsed, err := NewParser().Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.FeatureCount() != chart.FeatureCount() {
		t.Errorf("Parse and DecodeFile disagree: %d vs %d", parsed.FeatureCount(), chart.FeatureCount())
	}
}

func TestDecodeErrorKinds(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.000"), DefaultDecodeOptions())
	if !errors.Is(err, ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}

	data := harbourCell.bytes()
	_, err = Decode(bytes.NewReader(data[:len(data)-7]), DefaultDecodeOptions())
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected *DecodeError, got %T %v", err, err)
	}
}

func TestUsageBand(t *testing.T) {
	tests := []struct {
		band     UsageBand
		name     string
		min, max int
	}{
		{UsageBandOverview, "Overview", 1500000, 0},
		{UsageBandGeneral, "General", 350000, 1500000},
		{UsageBandCoastal, "Coastal", 90000, 350000},
		{UsageBandApproach, "Approach", 22000, 90000},
		{UsageBandHarbour, "Harbour", 4000, 22000},
		{UsageBandBerthing, "Berthing", 0, 4000},
		{UsageBandUnknown, "Unknown", 0, 0},
		{UsageBand(9), "Unknown", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.band.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			min, max := tt.band.ScaleRange()
			if min != tt.min || max != tt.max {
				t.Errorf("ScaleRange() = (%d, %d), want (%d, %d)", min, max, tt.min, tt.max)
			}
		})
	}
}

func TestCoordinateUnitsString(t *testing.T) {
	tests := map[CoordinateUnits]string{
		CoordinateUnitsUnknown:   "Unknown",
		CoordinateUnitsLatLon:    "Latitude/Longitude",
		CoordinateUnitsEastNorth: "Easting/Northing",
	}
	for units, want := range tests {
		if got := units.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(units), got, want)
		}
	}
}

func TestNames(t *testing.T) {
	if got := ObjectClassName(42); got != "DEPARE" {
		t.Errorf("ObjectClassName(42) = %q", got)
	}
	if got := AttributeName(116); got != "OBJNAM" {
		t.Errorf("AttributeName(116) = %q", got)
	}
	if got := AttributeName(9999); got != "ATTR_9999" {
		t.Errorf("AttributeName(9999) = %q", got)
	}
}
