package parser

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

// spatialIndex provides O(log n) bounding box queries over nodes and
// feature geometry. Rectangles are in degrees, [lon, lat].
type spatialIndex struct {
	nodes    *rtreego.Rtree
	features *rtreego.Rtree
}

// For point features (zero-area), use small epsilon (~11 meters at equator).
// R-tree requires non-zero dimensions.
const epsilon = 0.0001

type indexedNode struct {
	node  *Node
	order int
}

// Bounds implements rtreego.Spatial.
func (n *indexedNode) Bounds() rtreego.Rect {
	return rtreego.Point{n.node.Lon, n.node.Lat}.ToRect(epsilon / 2)
}

type indexedFeature struct {
	feature *Feature
	bounds  Bounds // Radians
	order   int
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return degreeRect(f.bounds)
}

func degreeRect(b Bounds) rtreego.Rect {
	minLat, minLon, maxLat, maxLon := b.Degrees()
	lonLength := maxLon - minLon
	latLength := maxLat - minLat
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{minLon, minLat}, []float64{lonLength, latLength})
	return rect
}

// searchRect pads a query box by epsilon on every side. The R-tree does not
// report rectangles that only touch, so candidates are filtered exactly.
func searchRect(b Bounds) rtreego.Rect {
	minLat, minLon, maxLat, maxLon := b.Degrees()
	rect, _ := rtreego.NewRect(
		rtreego.Point{minLon - epsilon, minLat - epsilon},
		[]float64{maxLon - minLon + 2*epsilon, maxLat - minLat + 2*epsilon},
	)
	return rect
}

// BuildIndex creates the R-tree over all nodes and all features with a
// non-empty geometry. It is called by Decode when SpatialIndex is set.
func (m *Map) BuildIndex() {
	// Create R-tree (2D, min=25 children, max=50 children)
	idx := &spatialIndex{
		nodes:    rtreego.NewTree(2, 25, 50),
		features: rtreego.NewTree(2, 25, 50),
	}
	for i, k := range m.nodeOrder {
		idx.nodes.Insert(&indexedNode{node: m.nodes[k], order: i})
	}
	for i, name := range m.featureOrder {
		f := m.features[name]
		g := m.Geometry(f)
		if g.IsEmpty() {
			continue
		}
		idx.features.Insert(&indexedFeature{feature: f, bounds: g.Bounds(), order: i})
	}
	m.index = idx
}

// NodesWithin returns the nodes inside b (radians), in creation order.
func (m *Map) NodesWithin(b Bounds) []*Node {
	if b.IsEmpty() {
		return nil
	}
	if m.index == nil {
		return m.nodesWithinLinear(b)
	}

	hits := m.index.nodes.SearchIntersect(searchRect(b))
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].(*indexedNode).order < hits[j].(*indexedNode).order
	})
	result := make([]*Node, 0, len(hits))
	for _, h := range hits {
		n := h.(*indexedNode).node
		// The R-tree is padded by epsilon; keep exact containment.
		if b.Contains(radians(n.Lat), radians(n.Lon)) {
			result = append(result, n)
		}
	}
	return result
}

func (m *Map) nodesWithinLinear(b Bounds) []*Node {
	var result []*Node
	for _, k := range m.nodeOrder {
		n := m.nodes[k]
		if b.Contains(radians(n.Lat), radians(n.Lon)) {
			result = append(result, n)
		}
	}
	return result
}

// FeaturesWithin returns the features whose geometry bounds intersect b
// (radians), in commit order.
func (m *Map) FeaturesWithin(b Bounds) []*Feature {
	if b.IsEmpty() {
		return nil
	}
	if m.index == nil {
		return m.featuresWithinLinear(b)
	}

	hits := m.index.features.SearchIntersect(searchRect(b))
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].(*indexedFeature).order < hits[j].(*indexedFeature).order
	})
	result := make([]*Feature, 0, len(hits))
	for _, h := range hits {
		f := h.(*indexedFeature)
		if b.Intersects(f.bounds) {
			result = append(result, f.feature)
		}
	}
	return result
}

func (m *Map) featuresWithinLinear(b Bounds) []*Feature {
	var result []*Feature
	for _, name := range m.featureOrder {
		f := m.features[name]
		if g := m.Geometry(f); !g.IsEmpty() && b.Intersects(g.Bounds()) {
			result = append(result, f)
		}
	}
	return result
}
