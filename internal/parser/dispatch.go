package parser

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/shopspring/decimal"

	"github.com/beetlebugorg/s57topo/internal/iso8211"
)

// recordState is the open primitive of the record being dispatched.
type recordState int

const (
	stateNone recordState = iota
	stateFeature
	stateVector
)

// vectorRecord is the context of an open VRID record.
type vectorRecord struct {
	key   Key
	flag  NodeFlag
	edge  *Edge // nil for node records
	pairs int   // SG2D pairs of a named node record
	seq   int   // Last synthetic node sequence number
}

// session owns all per-file state: scaling factors, the record sequence
// counter and the map being built. Sessions are never shared.
type session struct {
	m    *Map
	opts DecodeOptions
	ddr  *iso8211.DDR

	meta      Metadata
	structure DatasetStructure
	params    DatasetParams
	haveDSSI  bool

	seqLayout *layout
	seqModulo uint64 // 0 when sequence numbers do not wrap
	lastSeq   uint64
	haveSeq   bool

	records int
	vectors map[int]uint32 // VRID records per category

	state   recordState
	feature *Feature
	vector  vectorRecord
	cur     cursor
}

func newSession(ddr *iso8211.DDR, opts DecodeOptions) *session {
	s := &session{
		m:         NewMap(),
		opts:      opts,
		ddr:       ddr,
		params:    defaultDatasetParams(),
		seqLayout: recordIDLayout(ddr),
		vectors:   make(map[int]uint32),
	}
	if def := s.seqLayout.subfields[0]; def.kind == kindUnsigned && def.width < 8 {
		s.seqModulo = 1 << (8 * uint(def.width))
	}
	return s
}

// record dispatches every field of one data record. The "0001" sequence
// field is checked before any other field so that an out-of-order record
// leaves the map untouched.
func (s *session) record(rec *iso8211.Record) error {
	s.records++

	if e, ok := rec.Lookup("0001"); ok {
		if err := s.sequence(rec, e); err != nil {
			return err
		}
	}

	s.state = stateNone
	s.feature = nil
	s.vector = vectorRecord{}

	glog.V(1).Infof("record %d at offset %d: %d fields", s.records, rec.Offset, len(rec.Entries))
	for _, e := range rec.Entries {
		if e.Tag == "0001" {
			continue
		}
		if err := s.field(rec, e); err != nil {
			return err
		}
	}

	// Commit at the record boundary, after every field of the record.
	if s.state == stateFeature {
		if err := s.m.EndFeature(s.feature); err != nil {
			return formatErrorf("FRID", rec.Offset, "%v", err)
		}
	}
	s.state = stateNone
	return nil
}

func (s *session) sequence(rec *iso8211.Record, e iso8211.DirEntry) error {
	s.cur.position(rec, e, s.seqLayout)
	v, err := s.cur.next("RCID")
	if err != nil {
		return err
	}
	seq := v.Uint()
	if s.haveSeq {
		want := s.lastSeq + 1
		if s.seqModulo != 0 {
			want %= s.seqModulo
		}
		if seq != want {
			return &DecodeError{
				Kind:   KindOutOfOrder,
				Tag:    "0001",
				Offset: rec.FieldOffset(e),
				Err:    fmt.Errorf("record number %d, expected %d", seq, want),
			}
		}
	}
	s.lastSeq = seq
	s.haveSeq = true
	return nil
}

func (s *session) field(rec *iso8211.Record, e iso8211.DirEntry) error {
	l, known := layouts[e.Tag]
	if !known {
		glog.V(2).Infof("record %d: skipping field %s", s.records, e.Tag)
		return nil
	}
	glog.V(2).Infof("record %d: field %s (%d bytes)", s.records, e.Tag, e.Length)

	s.cur.position(rec, e, l)
	switch e.Tag {
	case "DSID":
		return s.dsid()
	case "DSSI":
		return s.dssi()
	case "DSPM":
		return s.dspm()
	case "FRID":
		return s.frid()
	case "FOID":
		return s.foid()
	case "ATTF":
		return s.attf(false)
	case "NATF":
		return s.attf(true)
	case "FFPT":
		return s.ffpt()
	case "FSPT":
		return s.fspt()
	case "VRID":
		return s.vrid()
	case "VRPT":
		return s.vrpt()
	case "SG2D":
		return s.sg2d()
	case "SG3D":
		return s.sg3d()
	}
	return nil
}

// fields decodes consecutive subfields of the current group.
func (s *session) fields(names ...string) ([]subfieldValue, error) {
	vals := make([]subfieldValue, len(names))
	for i, name := range names {
		v, err := s.cur.next(name)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (s *session) errorf(format string, args ...interface{}) error {
	return formatErrorf(s.cur.layout.tag, s.cur.base, format, args...)
}

func (s *session) requireFeature() error {
	if s.state != stateFeature {
		return s.errorf("field outside a feature record")
	}
	return nil
}

func (s *session) requireVector() error {
	if s.state != stateVector {
		return s.errorf("field outside a vector record")
	}
	return nil
}

func (s *session) dsid() error {
	v, err := s.fields("RCNM", "RCID", "EXPP", "INTU", "DSNM", "EDTN", "UPDN", "UADT", "ISDT", "STED",
		"PRSP", "PSDN", "PRED", "PROF", "AGEN", "COMT")
	if err != nil {
		return err
	}
	s.meta = Metadata{
		RecordID:               uint32(v[1].Uint()),
		ExchangePurposeCode:    uint8(v[2].Uint()),
		IntendedUsage:          uint8(v[3].Uint()),
		DatasetName:            string(v[4].Bytes()),
		Edition:                string(v[5].Bytes()),
		UpdateNumber:           string(v[6].Bytes()),
		UpdateDate:             fixedText(v[7].Bytes()),
		IssueDate:              fixedText(v[8].Bytes()),
		S57Edition:             fixedText(v[9].Bytes()),
		ProductSpecCode:        uint8(v[10].Uint()),
		ProductSpecDesc:        string(v[11].Bytes()),
		ProductSpecEdition:     string(v[12].Bytes()),
		ApplicationProfileCode: uint8(v[13].Uint()),
		ProducingAgency:        uint16(v[14].Uint()),
		Comment:                string(v[15].Bytes()),
	}
	return nil
}

// dssi is consumed in full even though only AALL and NALL affect decoding.
func (s *session) dssi() error {
	v, err := s.fields("DSTR", "AALL", "NALL", "NOMR", "NOCR", "NOGR", "NOLR", "NOIN", "NOCN", "NOED", "NOFA")
	if err != nil {
		return err
	}
	s.structure = DatasetStructure{
		DataStructure:        uint8(v[0].Uint()),
		AttributeLevel:       uint8(v[1].Uint()),
		NationalLevel:        uint8(v[2].Uint()),
		MetaRecords:          uint32(v[3].Uint()),
		CartographicRecords:  uint32(v[4].Uint()),
		GeoRecords:           uint32(v[5].Uint()),
		CollectionRecords:    uint32(v[6].Uint()),
		IsolatedNodeRecords:  uint32(v[7].Uint()),
		ConnectedNodeRecords: uint32(v[8].Uint()),
		EdgeRecords:          uint32(v[9].Uint()),
		FaceRecords:          uint32(v[10].Uint()),
	}
	s.haveDSSI = true
	if s.structure.AttributeLevel > LexicalUCS2 || s.structure.NationalLevel > LexicalUCS2 {
		return s.errorf("unsupported lexical level AALL=%d NALL=%d", s.structure.AttributeLevel, s.structure.NationalLevel)
	}
	return nil
}

func (s *session) dspm() error {
	v, err := s.fields("RCNM", "RCID", "HDAT", "VDAT", "SDAT", "CSCL", "DUNI", "HUNI", "PUNI", "COUN", "COMF", "SOMF", "COMT")
	if err != nil {
		return err
	}
	comf, somf := v[10].Uint(), v[11].Uint()
	if comf == 0 || somf == 0 {
		return s.errorf("zero multiplication factor COMF=%d SOMF=%d", comf, somf)
	}
	s.params = DatasetParams{
		RecordID:         uint32(v[1].Uint()),
		HorizontalDatum:  uint8(v[2].Uint()),
		VerticalDatum:    uint8(v[3].Uint()),
		SoundingDatum:    uint8(v[4].Uint()),
		CompilationScale: uint32(v[5].Uint()),
		DepthUnits:       uint8(v[6].Uint()),
		HeightUnits:      uint8(v[7].Uint()),
		PositionUnits:    uint8(v[8].Uint()),
		CoordinateUnits:  uint8(v[9].Uint()),
		COMF:             decimal.NewFromInt(int64(comf)),
		SOMF:             decimal.NewFromInt(int64(somf)),
		Comment:          string(v[12].Bytes()),
	}
	return nil
}

func (s *session) frid() error {
	if s.state != stateNone {
		return s.errorf("second record identifier in one record")
	}
	v, err := s.fields("RCNM", "RCID", "PRIM", "GRUP", "OBJL", "RVER", "RUIN")
	if err != nil {
		return err
	}
	f := s.m.NewFeature(uint32(v[1].Uint()), PrimitiveFromCode(v[2].Uint()), uint16(v[4].Uint()))
	f.Group = uint8(v[3].Uint())
	f.RecordVersion = uint16(v[5].Uint())
	f.UpdateInstruction = uint8(v[6].Uint())
	s.feature = f
	s.state = stateFeature
	return nil
}

func (s *session) foid() error {
	if err := s.requireFeature(); err != nil {
		return err
	}
	v, err := s.fields("AGEN", "FIDN", "FIDS")
	if err != nil {
		return err
	}
	name := NewLongName(uint16(v[0].Uint()), uint32(v[1].Uint()), uint16(v[2].Uint()))
	if err := s.m.NameFeature(s.feature, name); err != nil {
		return s.errorf("%v", err)
	}
	return nil
}

// attf decodes ATTF, or NATF when national is set.
func (s *session) attf(national bool) error {
	if err := s.requireFeature(); err != nil {
		return err
	}
	level := s.structure.AttributeLevel
	if national {
		level = s.structure.NationalLevel
		if level == LexicalUCS2 {
			s.cur.setWide()
		}
	}
	for s.cur.hasMore() {
		v, err := s.fields("ATTL", "ATVL")
		if err != nil {
			return err
		}
		value, err := decodeText(v[1].Bytes(), level)
		if err != nil {
			return s.errorf("attribute %d: %v", v[0].Uint(), err)
		}
		code := uint16(v[0].Uint())
		if national {
			s.feature.AddNationalAttribute(code, value)
		} else {
			s.feature.AddAttribute(code, value)
		}
	}
	return nil
}

func (s *session) ffpt() error {
	if err := s.requireFeature(); err != nil {
		return err
	}
	for s.cur.hasMore() {
		v, err := s.fields("LNAM", "RIND", "COMT")
		if err != nil {
			return err
		}
		comment, err := decodeText(v[2].Bytes(), s.structure.AttributeLevel)
		if err != nil {
			return s.errorf("comment: %v", err)
		}
		s.feature.AddFeatureRef(FeatureRef{
			Target:   longName(v[0].Bytes()),
			Relation: uint8(v[1].Uint()),
			Comment:  comment,
		})
	}
	return nil
}

func (s *session) fspt() error {
	if err := s.requireFeature(); err != nil {
		return err
	}
	for s.cur.hasMore() {
		v, err := s.fields("NAME", "ORNT", "USAG", "MASK")
		if err != nil {
			return err
		}
		s.feature.AddSpatialRef(SpatialRef{
			Target:      nameKey(v[0].Bytes()),
			Orientation: uint8(v[1].Uint()),
			Usage:       uint8(v[2].Uint()),
			Mask:        uint8(v[3].Uint()),
		})
	}
	return nil
}

func (s *session) vrid() error {
	if s.state != stateNone {
		return s.errorf("second record identifier in one record")
	}
	v, err := s.fields("RCNM", "RCID", "RVER", "RUIN")
	if err != nil {
		return err
	}
	rcnm := uint8(v[0].Uint())
	key := VectorKey(rcnm, uint32(v[1].Uint()))
	s.vector = vectorRecord{key: key, flag: flagForCategory(int(rcnm))}
	s.vectors[int(rcnm)]++

	if s.vector.flag == FlagAnonymous {
		e, err := s.m.NewEdge(key)
		if err != nil {
			return s.errorf("%v", err)
		}
		e.RecordVersion = uint16(v[2].Uint())
		e.UpdateInstruction = uint8(v[3].Uint())
		s.vector.edge = e
	}
	s.state = stateVector
	return nil
}

func (s *session) vrpt() error {
	if err := s.requireVector(); err != nil {
		return err
	}
	if s.vector.edge == nil {
		return s.errorf("pointer field in node record %s", s.vector.key)
	}
	for s.cur.hasMore() {
		v, err := s.fields("NAME", "ORNT", "USAG", "TOPI", "MASK")
		if err != nil {
			return err
		}
		s.m.AddConn(s.vector.edge, BoundaryRef{
			Target:      nameKey(v[0].Bytes()),
			Orientation: uint8(v[1].Uint()),
			Usage:       uint8(v[2].Uint()),
			Topology:    uint8(v[3].Uint()),
			Mask:        uint8(v[4].Uint()),
		})
	}
	return nil
}

func (s *session) sg2d() error {
	if err := s.requireVector(); err != nil {
		return err
	}
	for s.cur.hasMore() {
		at := s.cur.offset()
		v, err := s.fields("YCOO", "XCOO")
		if err != nil {
			return err
		}
		lat, lon := scale(v[0].Int(), s.params.COMF), scale(v[1].Int(), s.params.COMF)
		if err := s.checkCoordinate(lat, lon, at); err != nil {
			return err
		}

		if s.vector.edge == nil {
			s.vector.pairs++
			if s.vector.pairs > 1 {
				return formatErrorf("SG2D", at, "node record %s has more than one coordinate", s.vector.key)
			}
			if _, err := s.m.NewNode(s.vector.key, lat, lon, s.vector.flag); err != nil {
				return formatErrorf("SG2D", at, "%v", err)
			}
			continue
		}

		key, err := s.nextSynthetic(at)
		if err != nil {
			return err
		}
		if _, err := s.m.NewNode(key, lat, lon, FlagAnonymous); err != nil {
			return formatErrorf("SG2D", at, "%v", err)
		}
		s.vector.edge.Vertices = append(s.vector.edge.Vertices, key)
	}
	return nil
}

// sg3d always creates synthetic nodes; sounding records are never named.
func (s *session) sg3d() error {
	if err := s.requireVector(); err != nil {
		return err
	}
	for s.cur.hasMore() {
		at := s.cur.offset()
		v, err := s.fields("YCOO", "XCOO", "VE3D")
		if err != nil {
			return err
		}
		lat, lon := scale(v[0].Int(), s.params.COMF), scale(v[1].Int(), s.params.COMF)
		depth := scale(v[2].Int(), s.params.SOMF)
		if err := s.checkCoordinate(lat, lon, at); err != nil {
			return err
		}

		key, err := s.nextSynthetic(at)
		if err != nil {
			return err
		}
		if _, err := s.m.NewSounding(key, lat, lon, depth, s.vector.flag); err != nil {
			return formatErrorf("SG3D", at, "%v", err)
		}
		if s.vector.edge != nil {
			s.vector.edge.Vertices = append(s.vector.edge.Vertices, key)
		}
	}
	return nil
}

func (s *session) nextSynthetic(at int64) (Key, error) {
	if s.vector.seq == maxSeq {
		return 0, formatErrorf(s.cur.layout.tag, at, "vector record %s has more than %d coordinates", s.vector.key, maxSeq)
	}
	s.vector.seq++
	return s.vector.key.WithSeq(s.vector.seq), nil
}

func (s *session) checkCoordinate(lat, lon float64, at int64) error {
	if !s.opts.ValidateCoordinates || s.params.CoordinateUnits == CoordinatesEastNorth {
		return nil
	}
	if err := ValidateCoordinate(lat, lon); err != nil {
		return &DecodeError{Kind: KindFormat, Tag: s.cur.layout.tag, Offset: at, Err: err}
	}
	return nil
}

// endFile runs the consistency pass and assembles the chart.
func (s *session) endFile() *Chart {
	warnings := s.m.EndFile()
	if s.opts.CheckCounts && s.haveDSSI {
		warnings = append(warnings, s.countWarnings()...)
	}
	for _, w := range warnings {
		glog.Warningf("%s: %s", s.meta.DatasetName, w)
	}
	if s.opts.SpatialIndex {
		s.m.BuildIndex()
	}
	return &Chart{
		Map:       s.m,
		Metadata:  s.meta,
		Structure: s.structure,
		Params:    s.params,
		DDR:       s.ddr,
		Warnings:  warnings,
		Records:   s.records,
	}
}

func (s *session) countWarnings() []Warning {
	var warnings []Warning
	check := func(name string, declared, decoded uint32) {
		if declared != decoded {
			warnings = append(warnings, Warning{
				Kind:   WarnCountMismatch,
				Detail: fmt.Sprintf("%s declares %d, decoded %d", name, declared, decoded),
			})
		}
	}
	d := s.structure
	check("NOIN", d.IsolatedNodeRecords, s.vectors[CategoryIsolatedNode])
	check("NOCN", d.ConnectedNodeRecords, s.vectors[CategoryConnectedNode])
	check("NOED", d.EdgeRecords, s.vectors[CategoryEdge])
	check("NOFA", d.FaceRecords, s.vectors[CategoryFace])
	check("NOMR+NOCR+NOGR+NOLR", d.FeatureRecords(), uint32(len(s.m.featureOrder)))
	return warnings
}
