package s57

import (
	"io"
	"runtime"

	"github.com/beetlebugorg/s57topo/internal/parser"
)

// DecodeOptions configures one decode.
type DecodeOptions = parser.DecodeOptions

// DefaultDecodeOptions returns default options: spatial index built, record
// counts checked, coordinates validated.
func DefaultDecodeOptions() DecodeOptions {
	return parser.DefaultDecodeOptions()
}

// LoadOptions controls DecodeFiles.
type LoadOptions struct {
	// Decode is applied to every file.
	Decode DecodeOptions `yaml:"decode"`

	// Parallel enables concurrent decoding. Each file is decoded by one
	// worker with its own session and map.
	Parallel bool `yaml:"parallel"`

	// Workers is the number of worker goroutines. 0 means runtime.NumCPU().
	// Only used when Parallel is true.
	Workers int `yaml:"workers"`

	// SkipErrors continues past files that fail to decode and collects their
	// errors. When false the first error stops loading.
	SkipErrors bool `yaml:"skip_errors"`

	// Progress is called after each file with (processed, total).
	Progress func(loaded, total int) `yaml:"-"`

	// ErrorLog receives one line per failed file.
	ErrorLog io.Writer `yaml:"-"`
}

// DefaultLoadOptions returns load options with sensible defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Decode:     DefaultDecodeOptions(),
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
	}
}
