package s57

import (
	"io"

	"github.com/beetlebugorg/s57topo/internal/parser"
)

// Parser decodes S-57 exchange files.
//
// Create a parser with NewParser and use Parse or ParseWithOptions to read charts.
type Parser interface {
	// Parse decodes a file with default options.
	Parse(filename string) (*Chart, error)

	// ParseWithOptions decodes a file with custom options.
	ParseWithOptions(filename string, opts DecodeOptions) (*Chart, error)

	// Decode reads one exchange file from r.
	Decode(r io.Reader, opts DecodeOptions) (*Chart, error)
}

// NewParser creates a new S-57 parser with default settings.
//
// Example:
//
//	parser := s57.NewParser()
//	chart, err := parser.Parse("US5MA22M.000")
func NewParser() Parser {
	return &parserWrapper{
		internal: parser.NewParser(),
	}
}

// parserWrapper wraps the internal parser and converts types
type parserWrapper struct {
	internal parser.Parser
}

func (p *parserWrapper) Parse(filename string) (*Chart, error) {
	return p.ParseWithOptions(filename, DefaultDecodeOptions())
}

func (p *parserWrapper) ParseWithOptions(filename string, opts DecodeOptions) (*Chart, error) {
	internalChart, err := p.internal.ParseWithOptions(filename, opts)
	if err != nil {
		return nil, err
	}
	return newChart(internalChart, filename), nil
}

func (p *parserWrapper) Decode(r io.Reader, opts DecodeOptions) (*Chart, error) {
	internalChart, err := p.internal.Decode(r, opts)
	if err != nil {
		return nil, err
	}
	return newChart(internalChart, ""), nil
}

// Decode reads one exchange file from r in a single pass. Any error is a
// *DecodeError and no chart is returned with it.
func Decode(r io.Reader, opts DecodeOptions) (*Chart, error) {
	return NewParser().Decode(r, opts)
}

// DecodeFile opens, decodes and closes one exchange file.
func DecodeFile(filename string, opts DecodeOptions) (*Chart, error) {
	return NewParser().ParseWithOptions(filename, opts)
}
