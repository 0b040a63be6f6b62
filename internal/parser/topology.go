package parser

// topology.go - joins edge chains into lines and polygon rings

// orientedChain expands an edge into its node sequence as one reference
// traverses it. The edge itself is never modified.
func (m *Map) orientedChain(e *Edge, orientation uint8) []*Node {
	keys := e.Nodes()
	chain := make([]*Node, 0, len(keys))
	for _, k := range keys {
		if n, ok := m.nodes[k]; ok {
			chain = append(chain, n)
		}
	}
	if orientation == OrientationReverse {
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
	}
	return chain
}

// chains resolves FSPT refs to oriented chains. Face records contribute the
// edges of their own VRPT pointers with the face's orientation; a reversed
// reference walks those pointers backwards with each orientation flipped.
func (m *Map) chains(refs []SpatialRef) [][]*Node {
	var out [][]*Node
	for _, ref := range refs {
		e, ok := m.edges[ref.Target]
		if !ok {
			continue
		}
		if ref.Target.Category() != CategoryFace {
			if c := m.orientedChain(e, ref.Orientation); len(c) > 0 {
				out = append(out, c)
			}
			continue
		}
		n := len(e.Boundary)
		for i := range e.Boundary {
			b, orientation := e.Boundary[i], e.Boundary[i].Orientation
			if ref.Orientation == OrientationReverse {
				b = e.Boundary[n-1-i]
				orientation = flip(b.Orientation)
			}
			if edge, ok := m.edges[b.Target]; ok {
				if c := m.orientedChain(edge, orientation); len(c) > 0 {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func flip(orientation uint8) uint8 {
	if orientation == OrientationReverse {
		return OrientationForward
	}
	return OrientationReverse
}

// joinChains concatenates consecutive chains that share a join node, dropping
// the duplicated node. A chain that does not continue the current one starts
// a new part. With rings set, a closed part is finished before the next chain
// and every part is closed; parts with fewer than three nodes are dropped.
func joinChains(chains [][]*Node, rings bool) [][]*Node {
	var (
		parts   [][]*Node
		current []*Node
	)
	flush := func() {
		if part := finishPart(current, rings); part != nil {
			parts = append(parts, part)
		}
		current = nil
	}

	for _, chain := range chains {
		if len(current) > 0 && rings && isClosed(current) {
			flush()
		}
		if len(current) > 0 && current[len(current)-1].Key == chain[0].Key {
			current = append(current, chain[1:]...)
			continue
		}
		flush()
		current = append([]*Node(nil), chain...)
	}
	flush()
	return parts
}

func finishPart(part []*Node, ring bool) []*Node {
	if !ring {
		if len(part) < 2 {
			return nil
		}
		return part
	}
	distinct := len(part)
	if isClosed(part) {
		distinct--
	}
	if distinct < 3 {
		return nil
	}
	if !isClosed(part) {
		part = append(part, part[0])
	}
	return part
}

// isClosed checks if a ring is properly closed
func isClosed(part []*Node) bool {
	if len(part) < 3 {
		return false
	}
	return part[0].Key == part[len(part)-1].Key
}
