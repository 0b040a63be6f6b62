package parser

import (
	"fmt"
	"strings"
)

// NodeFlag is the identity class of a node.
type NodeFlag int

const (
	FlagAnonymous NodeFlag = iota // Geometry point of an edge-class record
	FlagIsolated                  // RCNM 110
	FlagConnected                 // RCNM 120
)

func (f NodeFlag) String() string {
	switch f {
	case FlagIsolated:
		return "ISOL"
	case FlagConnected:
		return "CONN"
	default:
		return "ANON"
	}
}

// flagForCategory maps a vector record category to the flag of its nodes.
func flagForCategory(rcnm int) NodeFlag {
	switch rcnm {
	case CategoryIsolatedNode:
		return FlagIsolated
	case CategoryConnectedNode:
		return FlagConnected
	default:
		return FlagAnonymous
	}
}

// Node is a decoded position. Nodes never change after creation.
type Node struct {
	Key      Key
	Lat, Lon float64 // Degrees, after COMF scaling
	Depth    float64 // After SOMF scaling, valid when HasDepth
	HasDepth bool
	Flag     NodeFlag
}

// Primitive is the geometric primitive of a feature (FRID PRIM).
type Primitive int

const (
	PrimNone Primitive = iota
	PrimPoint
	PrimLine
	PrimArea
)

// PrimitiveFromCode decodes PRIM: 1=point, 2=line, 3=area, anything else
// has no specific geometry.
// S-57 Part 3 §7.6.1 (31Main.pdf p3.48)
func PrimitiveFromCode(code uint64) Primitive {
	switch code {
	case 1:
		return PrimPoint
	case 2:
		return PrimLine
	case 3:
		return PrimArea
	default:
		return PrimNone
	}
}

func (p Primitive) String() string {
	switch p {
	case PrimPoint:
		return "POINT"
	case PrimLine:
		return "LINE"
	case PrimArea:
		return "AREA"
	default:
		return "NOSP"
	}
}

// Orientation values of FSPT and VRPT ORNT.
const (
	OrientationForward = 1
	OrientationReverse = 2
	OrientationNull    = 255
)

// Topology indicator values of VRPT TOPI.
const (
	TopologyBegin = 1
	TopologyEnd   = 2
)

// BoundaryRef is one VRPT pointer of an edge or face record.
type BoundaryRef struct {
	Target      Key
	Orientation uint8
	Usage       uint8
	Topology    uint8
	Mask        uint8
}

// Edge is an edge-class vector record: its own anonymous vertices plus the
// boundary nodes contributed by VRPT. Faces are stored as edges whose
// boundary refs point at other edges.
type Edge struct {
	Key               Key
	Vertices          []Key // Synthetic nodes in encounter order
	Boundary          []BoundaryRef
	RecordVersion     uint16
	UpdateInstruction uint8
}

// Begin is the beginning connected node: the TOPI=1 pointer, else the first
// node pointer.
func (e *Edge) Begin() (Key, bool) {
	return e.boundaryNode(TopologyBegin, 0)
}

// End is the end connected node: the TOPI=2 pointer, else the second node pointer.
// A closed edge has the same node at both ends.
func (e *Edge) End() (Key, bool) {
	return e.boundaryNode(TopologyEnd, 1)
}

func (e *Edge) boundaryNode(topi uint8, position int) (Key, bool) {
	var nodes []Key
	for _, b := range e.Boundary {
		switch b.Target.Category() {
		case CategoryIsolatedNode, CategoryConnectedNode:
		default:
			continue
		}
		if b.Topology == topi {
			return b.Target, true
		}
		nodes = append(nodes, b.Target)
	}
	if position < len(nodes) {
		return nodes[position], true
	}
	return 0, false
}

// Nodes is the canonical node sequence: begin node, vertices, end node.
func (e *Edge) Nodes() []Key {
	keys := make([]Key, 0, len(e.Vertices)+2)
	if k, ok := e.Begin(); ok {
		keys = append(keys, k)
	}
	keys = append(keys, e.Vertices...)
	if k, ok := e.End(); ok {
		keys = append(keys, k)
	}
	return keys
}

// SpatialRef is one FSPT pointer. Orientation and usage belong to the
// reference, so the same edge can be traversed differently by each feature.
type SpatialRef struct {
	Target      Key
	Orientation uint8
	Usage       uint8
	Mask        uint8
}

// FeatureRef is one FFPT pointer.
type FeatureRef struct {
	Target   LongName
	Relation uint8 // RIND: 1=master, 2=slave, 3=peer
	Comment  string
}

// Feature is a feature record.
type Feature struct {
	Name              LongName
	RecordID          uint32
	Primitive         Primitive
	Group             uint8
	ObjectClass       uint16
	RecordVersion     uint16
	UpdateInstruction uint8

	Attributes         map[uint16]string
	NationalAttributes map[uint16]string
	FeatureRefs        []FeatureRef
	SpatialRefs        []SpatialRef

	named bool
}

// AddAttribute stores an ATTF value. Values that are empty after trimming
// are dropped; a repeated code replaces the earlier value.
func (f *Feature) AddAttribute(code uint16, value string) bool {
	return addAttribute(&f.Attributes, code, value)
}

// AddNationalAttribute stores a NATF value with the same rules as AddAttribute.
func (f *Feature) AddNationalAttribute(code uint16, value string) bool {
	return addAttribute(&f.NationalAttributes, code, value)
}

func addAttribute(attrs *map[uint16]string, code uint16, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if *attrs == nil {
		*attrs = make(map[uint16]string)
	}
	(*attrs)[code] = value
	return true
}

// AddFeatureRef appends an FFPT pointer.
func (f *Feature) AddFeatureRef(ref FeatureRef) {
	f.FeatureRefs = append(f.FeatureRefs, ref)
}

// AddSpatialRef appends an FSPT pointer.
func (f *Feature) AddSpatialRef(ref SpatialRef) {
	f.SpatialRefs = append(f.SpatialRefs, ref)
}

// ClassName is the object class acronym, e.g. "DEPARE".
func (f *Feature) ClassName() string {
	return ObjectClassName(f.ObjectClass)
}

// Map is the topology store of one decoded file.
//
// A Map is a pure accumulator: the caller decides which feature or vector
// record is current. It is not safe for concurrent mutation.
type Map struct {
	nodes     map[Key]*Node
	nodeOrder []Key

	edges     map[Key]*Edge
	edgeOrder []Key

	features     map[LongName]*Feature
	featureOrder []LongName

	groups map[Key][]Key // Sounding nodes per SG3D record

	bounds Bounds
	index  *spatialIndex
}

// NewMap creates an empty map with empty bounds.
func NewMap() *Map {
	return &Map{
		nodes:    make(map[Key]*Node),
		edges:    make(map[Key]*Edge),
		features: make(map[LongName]*Feature),
		groups:   make(map[Key][]Key),
		bounds:   EmptyBounds(),
	}
}

// NewFeature opens a feature. It is not indexed until EndFeature.
func (m *Map) NewFeature(rcid uint32, prim Primitive, objl uint16) *Feature {
	return &Feature{RecordID: rcid, Primitive: prim, ObjectClass: objl}
}

// NameFeature assigns the FOID long name of an open feature.
func (m *Map) NameFeature(f *Feature, name LongName) error {
	if f.named {
		return fmt.Errorf("feature %s named twice", f.Name)
	}
	if _, exists := m.features[name]; exists {
		return fmt.Errorf("duplicate feature %s", name)
	}
	f.Name = name
	f.named = true
	return nil
}

// EndFeature commits a named feature to the index.
func (m *Map) EndFeature(f *Feature) error {
	if !f.named {
		return fmt.Errorf("feature record %d has no FOID", f.RecordID)
	}
	if _, exists := m.features[f.Name]; exists {
		return fmt.Errorf("duplicate feature %s", f.Name)
	}
	m.features[f.Name] = f
	m.featureOrder = append(m.featureOrder, f.Name)
	return nil
}

// NewEdge creates an edge-class record.
func (m *Map) NewEdge(key Key) (*Edge, error) {
	if _, exists := m.edges[key]; exists {
		return nil, fmt.Errorf("duplicate vector record %s", key)
	}
	e := &Edge{Key: key}
	m.edges[key] = e
	m.edgeOrder = append(m.edgeOrder, key)
	return e, nil
}

// AddConn attaches a VRPT boundary reference to an edge.
func (m *Map) AddConn(e *Edge, ref BoundaryRef) {
	e.Boundary = append(e.Boundary, ref)
}

// NewNode creates a 2-D node and widens the bounds.
func (m *Map) NewNode(key Key, lat, lon float64, flag NodeFlag) (*Node, error) {
	return m.addNode(&Node{Key: key, Lat: lat, Lon: lon, Flag: flag})
}

// NewSounding creates a 3-D node, groups it under its record, and widens the bounds.
func (m *Map) NewSounding(key Key, lat, lon, depth float64, flag NodeFlag) (*Node, error) {
	n, err := m.addNode(&Node{Key: key, Lat: lat, Lon: lon, Depth: depth, HasDepth: true, Flag: flag})
	if err != nil {
		return nil, err
	}
	rec := key.Record()
	m.groups[rec] = append(m.groups[rec], key)
	return n, nil
}

func (m *Map) addNode(n *Node) (*Node, error) {
	if _, exists := m.nodes[n.Key]; exists {
		return nil, fmt.Errorf("duplicate node %s", n.Key)
	}
	m.nodes[n.Key] = n
	m.nodeOrder = append(m.nodeOrder, n.Key)
	m.bounds.Extend(radians(n.Lat), radians(n.Lon))
	return n, nil
}

// EndFile checks that every reference resolves and every edge has two
// or more nodes. Findings are returned as warnings.
func (m *Map) EndFile() []Warning {
	var warnings []Warning

	for _, name := range m.featureOrder {
		f := m.features[name]
		for _, ref := range f.SpatialRefs {
			if !m.resolves(ref.Target) {
				warnings = append(warnings, Warning{Kind: WarnUnresolvedSpatial, Feature: f.Name, Target: uint64(ref.Target)})
			}
		}
		for _, ref := range f.FeatureRefs {
			if _, ok := m.features[ref.Target]; !ok {
				warnings = append(warnings, Warning{Kind: WarnUnresolvedFeature, Feature: f.Name, Target: uint64(ref.Target)})
			}
		}
	}

	for _, key := range m.edgeOrder {
		e := m.edges[key]
		for _, b := range e.Boundary {
			_, isNode := m.nodes[b.Target]
			_, isEdge := m.edges[b.Target]
			if !isNode && !isEdge {
				warnings = append(warnings, Warning{Kind: WarnUnresolvedBoundary, Source: e.Key, Target: uint64(b.Target)})
			}
		}
		if key.Category() == CategoryEdge {
			if n := len(e.Nodes()); n < 2 {
				warnings = append(warnings, Warning{Kind: WarnDegenerateEdge, Source: e.Key, Detail: fmt.Sprintf("%d node(s)", n)})
			}
		}
	}

	return warnings
}

func (m *Map) resolves(k Key) bool {
	if _, ok := m.nodes[k]; ok {
		return true
	}
	if _, ok := m.edges[k]; ok {
		return true
	}
	_, ok := m.groups[k]
	return ok
}

// Node looks up a node.
func (m *Map) Node(k Key) (*Node, bool) {
	n, ok := m.nodes[k]
	return n, ok
}

// Edge looks up an edge or face record.
func (m *Map) Edge(k Key) (*Edge, bool) {
	e, ok := m.edges[k]
	return e, ok
}

// Feature looks up a committed feature.
func (m *Map) Feature(name LongName) (*Feature, bool) {
	f, ok := m.features[name]
	return f, ok
}

// Nodes returns all nodes in creation order.
func (m *Map) Nodes() []*Node {
	out := make([]*Node, len(m.nodeOrder))
	for i, k := range m.nodeOrder {
		out[i] = m.nodes[k]
	}
	return out
}

// Edges returns all edge-class records in creation order.
func (m *Map) Edges() []*Edge {
	out := make([]*Edge, len(m.edgeOrder))
	for i, k := range m.edgeOrder {
		out[i] = m.edges[k]
	}
	return out
}

// Features returns all committed features in commit order.
func (m *Map) Features() []*Feature {
	out := make([]*Feature, len(m.featureOrder))
	for i, name := range m.featureOrder {
		out[i] = m.features[name]
	}
	return out
}

// Group returns the sounding nodes of a 3-D vector record.
func (m *Map) Group(record Key) []Key {
	return m.groups[record.Record()]
}

// Bounds returns the extent of all decoded coordinates in radians.
func (m *Map) Bounds() Bounds {
	return m.bounds
}
