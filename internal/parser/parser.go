package parser

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/beetlebugorg/s57topo/internal/iso8211"
)

// Parser decodes S-57 ENC exchange files into a topology map.
//
// S-57 defines an "exchange set" as a collection of files for transferring hydrographic data.
// Each file contains records (metadata, features, spatial data) structured per ISO 8211.
// This parser reads the ISO 8211 structure and interprets it according to S-57 semantics.
//
// References:
//   - S-57 Part 1 (31Main.pdf p1.1): Definition of "exchange set"
//   - S-57 Part 3 §7 (31Main.pdf p3.31): Complete record and field structure specification
type Parser interface {
	// Parse decodes the file at filename with default options.
	Parse(filename string) (*Chart, error)

	// ParseWithOptions decodes the file at filename.
	ParseWithOptions(filename string, opts DecodeOptions) (*Chart, error)

	// Decode decodes one exchange file from r. The caller owns r.
	Decode(r io.Reader, opts DecodeOptions) (*Chart, error)
}

// DecodeOptions configures decoding.
type DecodeOptions struct {
	// SpatialIndex builds the R-tree used by NodesWithin and FeaturesWithin.
	// Default: true
	SpatialIndex bool `yaml:"spatial_index"`

	// MaxRecordLength rejects records declaring a larger length.
	// 0 means the leader maximum of 99999 bytes.
	MaxRecordLength int `yaml:"max_record_length"`

	// CheckCounts compares the DSSI record counts with the decoded records
	// and reports mismatches as warnings.
	// Default: true
	CheckCounts bool `yaml:"check_counts"`

	// ValidateCoordinates rejects lat/lon coordinates outside ±90/±180.
	// Files with COUN=2 (eastings/northings) are never checked.
	// Default: true
	ValidateCoordinates bool `yaml:"validate_coordinates"`
}

// DefaultDecodeOptions returns decode options with defaults.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		SpatialIndex:        true,
		MaxRecordLength:     0,
		CheckCounts:         true,
		ValidateCoordinates: true,
	}
}

// defaultParser implements the Parser interface
type defaultParser struct{}

// NewParser creates a new S-57 parser
func NewParser() Parser {
	return &defaultParser{}
}

func (p *defaultParser) Parse(filename string) (*Chart, error) {
	return DecodeFile(filename, DefaultDecodeOptions())
}

func (p *defaultParser) ParseWithOptions(filename string, opts DecodeOptions) (*Chart, error) {
	return DecodeFile(filename, opts)
}

func (p *defaultParser) Decode(r io.Reader, opts DecodeOptions) (*Chart, error) {
	return Decode(r, opts)
}

// DecodeFile opens, decodes and closes one exchange file. The file is closed
// on every path.
func DecodeFile(filename string, opts DecodeOptions) (*Chart, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &DecodeError{Kind: KindIO, Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer f.Close()

	chart, err := Decode(f, opts)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("decoded %s: %d nodes, %d edges, %d features, %d warnings",
		filename, len(chart.Map.nodeOrder), len(chart.Map.edgeOrder), len(chart.Map.featureOrder), len(chart.Warnings))
	return chart, nil
}

// Decode reads one exchange file from r in a single sequential pass.
//
// Any error is a *DecodeError and no chart is returned with it: ISO 8211 has
// no resynchronization point, so one bad record makes the whole file unusable.
func Decode(r io.Reader, opts DecodeOptions) (*Chart, error) {
	reader := iso8211.NewReader(r)
	reader.SetMaxRecordLength(opts.MaxRecordLength)

	first, err := reader.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, formatErrorf("", 0, "empty exchange file")
		}
		return nil, classify(err, 0)
	}
	ddr, err := iso8211.ParseDDR(first)
	if err != nil {
		return nil, classify(err, 0)
	}

	s := newSession(ddr, opts)
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, classify(err, s.records+1)
		}
		if err := s.record(rec); err != nil {
			return nil, classify(err, s.records)
		}
	}

	return s.endFile(), nil
}
