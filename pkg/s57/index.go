package s57

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// ChartIndex provides spatial queries over the extents of many decoded charts.
//
// Example:
//
//	idx, errs := s57.IndexDir("/data/ENC_ROOT", s57.DefaultLoadOptions())
//	for _, e := range idx.Query(viewport, s57.QueryOptions{}) {
//	    fmt.Println(e.Name, e.CompilationScale)
//	}
type ChartIndex struct {
	charts []ChartEntry
	rtree  *rtreego.Rtree
}

// ChartEntry is the indexed metadata of one chart.
type ChartEntry struct {
	Path             string
	Name             string
	GeoBounds        orb.Bound
	CompilationScale int // Scale denominator, e.g. 50000
	Edition          int
	UpdateNumber     int
	UsageBand        UsageBand
}

// Bounds implements rtreego.Spatial.
func (e ChartEntry) Bounds() rtreego.Rect {
	return boundRect(e.GeoBounds)
}

// Minimum R-tree extent in degrees (~11 meters at the equator).
const epsilon = 0.0001

// boundRect converts a bound to an R-tree rectangle. Degenerate extents are
// padded to the minimum size the R-tree accepts.
func boundRect(b orb.Bound) rtreego.Rect {
	lonLength := b.Max.Lon() - b.Min.Lon()
	latLength := b.Max.Lat() - b.Min.Lat()
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.Min.Lon(), b.Min.Lat()}, []float64{lonLength, latLength})
	return rect
}

// QueryOptions filters Query results.
type QueryOptions struct {
	// MinScale keeps charts at this scale or larger (denominator <= MinScale).
	MinScale int

	// MaxScale keeps charts at this scale or smaller (denominator >= MaxScale).
	MaxScale int

	// UsageBands keeps only charts of these bands when non-empty.
	UsageBands []UsageBand
}

func (o QueryOptions) match(e ChartEntry) bool {
	if o.MinScale > 0 && e.CompilationScale > o.MinScale {
		return false
	}
	if o.MaxScale > 0 && e.CompilationScale < o.MaxScale {
		return false
	}
	if len(o.UsageBands) == 0 {
		return true
	}
	for _, band := range o.UsageBands {
		if e.UsageBand == band {
			return true
		}
	}
	return false
}

// BuildIndex indexes decoded charts. Charts without coordinates are listed
// by All but never returned by Query.
func BuildIndex(charts []*Chart) *ChartIndex {
	entries := make([]ChartEntry, len(charts))

	// Create R-tree (2D, min=25 children, max=50 children)
	rtree := rtreego.NewTree(2, 25, 50)

	for i, c := range charts {
		entries[i] = ChartEntry{
			Path:             c.Path(),
			Name:             c.DatasetName(),
			GeoBounds:        c.Bounds(),
			CompilationScale: c.CompilationScale(),
			Edition:          atoi(c.Edition()),
			UpdateNumber:     atoi(c.UpdateNumber()),
			UsageBand:        c.UsageBand(),
		}
		if !entries[i].GeoBounds.IsEmpty() {
			rtree.Insert(entries[i])
		}
	}

	return &ChartIndex{charts: entries, rtree: rtree}
}

// IndexDir decodes every base cell below root and indexes the charts that
// decode. Per-file errors are returned alongside the index.
func IndexDir(root string, opts LoadOptions) (*ChartIndex, []error) {
	paths, err := DiscoverCharts(root)
	if err != nil {
		return nil, []error{err}
	}
	if len(paths) == 0 {
		return nil, []error{fmt.Errorf("no charts found in %s", root)}
	}

	charts, errs := DecodeFiles(paths, opts)
	if len(charts) == 0 {
		return nil, append(errs, fmt.Errorf("no charts could be decoded (%d errors)", len(errs)))
	}
	return BuildIndex(charts), errs
}

// Query returns the charts intersecting b, sorted by priority.
//
// Priority ordering (per S-52 Section 10.3.5):
//  1. Scale: Larger scale (smaller denominator) has priority
//  2. Edition: Higher edition number has priority
//  3. Update: Higher update number has priority
func (idx *ChartIndex) Query(b orb.Bound, opts QueryOptions) []ChartEntry {
	if b.IsEmpty() {
		return nil
	}

	// Charts that only touch b are candidates too; the R-tree skips them
	// unless the query is padded.
	var result []ChartEntry
	for _, spatial := range idx.rtree.SearchIntersect(boundRect(b.Pad(epsilon))) {
		entry := spatial.(ChartEntry)
		if entry.GeoBounds.Intersects(b) && opts.match(entry) {
			result = append(result, entry)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CompilationScale != result[j].CompilationScale {
			return result[i].CompilationScale < result[j].CompilationScale
		}
		if result[i].Edition != result[j].Edition {
			return result[i].Edition > result[j].Edition
		}
		if result[i].UpdateNumber != result[j].UpdateNumber {
			return result[i].UpdateNumber > result[j].UpdateNumber
		}
		return result[i].Name < result[j].Name
	})

	return result
}

// Count returns the total number of charts in the index.
func (idx *ChartIndex) Count() int {
	return len(idx.charts)
}

// Bounds returns the union of all chart bounds in the index.
func (idx *ChartIndex) Bounds() orb.Bound {
	bounds := emptyBound
	for _, e := range idx.charts {
		if e.GeoBounds.IsEmpty() {
			continue
		}
		if bounds.IsEmpty() {
			bounds = e.GeoBounds
			continue
		}
		bounds = bounds.Union(e.GeoBounds)
	}
	return bounds
}

// All returns all chart entries in the index.
func (idx *ChartIndex) All() []ChartEntry {
	return idx.charts
}

// DiscoverCharts finds base cells (.000 files) below root, in lexical order.
func DiscoverCharts(root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".000") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	return paths, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
