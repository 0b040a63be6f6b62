package s57

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// OrbGeometry converts a resolved geometry to orb types, [lon, lat]:
// Point or MultiPoint for POINT, LineString or MultiLineString for LINE,
// Polygon for AREA. Rings after the first are holes. Empty geometry is nil.
func OrbGeometry(g Geometry) orb.Geometry {
	switch {
	case len(g.Points) == 1:
		return NodePoint(g.Points[0])
	case len(g.Points) > 1:
		mp := make(orb.MultiPoint, len(g.Points))
		for i, n := range g.Points {
			mp[i] = NodePoint(n)
		}
		return mp
	case len(g.Lines) == 1:
		return lineString(g.Lines[0])
	case len(g.Lines) > 1:
		mls := make(orb.MultiLineString, len(g.Lines))
		for i, l := range g.Lines {
			mls[i] = lineString(l)
		}
		return mls
	case len(g.Rings) > 0:
		poly := make(orb.Polygon, len(g.Rings))
		for i, r := range g.Rings {
			poly[i] = orb.Ring(lineString(r))
		}
		return poly
	}
	return nil
}

func lineString(nodes []*Node) orb.LineString {
	ls := make(orb.LineString, len(nodes))
	for i, n := range nodes {
		ls[i] = NodePoint(n)
	}
	return ls
}

// FeatureCollection exports every feature with a resolvable geometry.
// Features without one (NOSP primitives, unresolved references) are left out.
//
// Properties: "LNAM", "OBJL", "CLASS", "PRIM", one entry per ATTF and NATF
// value keyed by attribute acronym, and "DEPTHS" for sounding groups.
func (c *Chart) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range c.Features() {
		g := c.Geometry(f)
		geom := OrbGeometry(g)
		if geom == nil {
			continue
		}

		feature := geojson.NewFeature(geom)
		feature.ID = f.Name.String()
		feature.Properties["LNAM"] = f.Name.String()
		feature.Properties["OBJL"] = int(f.ObjectClass)
		feature.Properties["CLASS"] = f.ClassName()
		feature.Properties["PRIM"] = f.Primitive.String()
		for code, value := range f.Attributes {
			feature.Properties[AttributeName(code)] = value
		}
		for code, value := range f.NationalAttributes {
			feature.Properties[AttributeName(code)] = value
		}

		// Sounding depths travel as a property; orb points are 2-D.
		var depths []float64
		for _, n := range g.Points {
			if n.HasDepth {
				depths = append(depths, n.Depth)
			}
		}
		if len(depths) > 0 {
			feature.Properties["DEPTHS"] = depths
		}

		fc.Append(feature)
	}
	return fc
}
