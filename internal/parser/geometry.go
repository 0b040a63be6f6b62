package parser

// Geometry is the resolved shape of a feature. Only the part matching the
// feature's primitive is set.
type Geometry struct {
	Primitive Primitive
	Points    []*Node   // POINT: one node, or every sounding of a 3-D record
	Lines     [][]*Node // LINE: one entry per connected chain
	Rings     [][]*Node // AREA: closed rings, exterior first as referenced
}

// IsEmpty reports whether no node was resolved.
func (g Geometry) IsEmpty() bool {
	return len(g.Points) == 0 && len(g.Lines) == 0 && len(g.Rings) == 0
}

// Bounds is the extent of the resolved nodes in radians.
func (g Geometry) Bounds() Bounds {
	b := EmptyBounds()
	add := func(nodes []*Node) {
		for _, n := range nodes {
			b.Extend(radians(n.Lat), radians(n.Lon))
		}
	}
	add(g.Points)
	for _, l := range g.Lines {
		add(l)
	}
	for _, r := range g.Rings {
		add(r)
	}
	return b
}

// Geometry resolves the FSPT references of a feature against the map.
// Unresolved references are skipped; EndFile reports them as warnings.
//
// S-57 §4.7.3 (31Main.pdf): vector records making up an area boundary are
// referenced sequentially, so chains are joined in FSPT order.
func (m *Map) Geometry(f *Feature) Geometry {
	g := Geometry{Primitive: f.Primitive}
	switch f.Primitive {
	case PrimPoint:
		for _, ref := range f.SpatialRefs {
			g.Points = append(g.Points, m.points(ref.Target)...)
		}
	case PrimLine:
		g.Lines = joinChains(m.chains(f.SpatialRefs), false)
	case PrimArea:
		g.Rings = joinChains(m.chains(f.SpatialRefs), true)
	}
	return g
}

// points resolves a point reference: a named node, a sounding group, or
// the nodes of an edge.
func (m *Map) points(k Key) []*Node {
	if n, ok := m.nodes[k]; ok {
		return []*Node{n}
	}
	if group, ok := m.groups[k]; ok {
		out := make([]*Node, 0, len(group))
		for _, gk := range group {
			out = append(out, m.nodes[gk])
		}
		return out
	}
	if e, ok := m.edges[k]; ok {
		return m.orientedChain(e, OrientationForward)
	}
	return nil
}
