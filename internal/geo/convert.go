package geo

import "github.com/paulmach/orb"

// Polygon is a surface ring with an optional hole ring.
// A nil Hole means the polygon has no hole.
type Polygon struct {
	Surface Line `json:"surface" yaml:"surface"`
	Hole    Line `json:"hole,omitempty" yaml:"hole,omitempty"`
}

// MultiPolygon is an ordered collection of polygons.
type MultiPolygon []Polygon

// Empty reports whether mp has nothing to draw.
func (mp MultiPolygon) Empty() bool {
	return len(mp) == 0 || len(mp[0].Surface) == 0
}

// PointToGeo relabels an [x, y] tuple as longitude/latitude.
func PointToGeo(p orb.Point) Point {
	return Point{Longitude: p[0], Latitude: p[1]}
}

// GeoToPoint is the inverse of PointToGeo.
func GeoToPoint(p Point) orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// MultiPointToGeo converts tuples to geo points, preserving order.
func MultiPointToGeo(points []orb.Point) Line {
	if points == nil {
		return nil
	}

	out := make(Line, len(points))
	for i, p := range points {
		out[i] = PointToGeo(p)
	}

	return out
}

// MultiGeoToPoint converts geo points to tuples, preserving order.
func MultiGeoToPoint(line Line) []orb.Point {
	if line == nil {
		return nil
	}

	out := make([]orb.Point, len(line))
	for i, p := range line {
		out[i] = GeoToPoint(p)
	}

	return out
}

// MultiLineToGeo converts every segment of a tuple multiline.
func MultiLineToGeo(ml orb.MultiLineString) MultiLine {
	if ml == nil {
		return nil
	}

	out := make(MultiLine, len(ml))
	for i, ls := range ml {
		out[i] = MultiPointToGeo(ls)
	}

	return out
}

// MultiGeoLineToMultiLine converts every segment of a geo multiline.
func MultiGeoLineToMultiLine(ml MultiLine) orb.MultiLineString {
	if ml == nil {
		return nil
	}

	out := make(orb.MultiLineString, len(ml))
	for i, line := range ml {
		out[i] = orb.LineString(MultiGeoToPoint(line))
	}

	return out
}

// MultiPolygonToGeo converts tuple polygons. Ring 0 becomes the surface,
// ring 1 (if present) the hole. Further rings are ignored.
func MultiPolygonToGeo(mp orb.MultiPolygon) MultiPolygon {
	if mp == nil {
		return nil
	}

	out := make(MultiPolygon, len(mp))
	for i, polygon := range mp {
		var p Polygon
		if len(polygon) > 0 {
			p.Surface = MultiPointToGeo(polygon[0])
		}
		if len(polygon) > 1 {
			p.Hole = MultiPointToGeo(polygon[1])
		}
		out[i] = p
	}

	return out
}

// MultiGeoPolygonToMultiPolygon converts geo polygons to tuples.
// A polygon without a hole yields a single-ring entry.
func MultiGeoPolygonToMultiPolygon(mp MultiPolygon) orb.MultiPolygon {
	if mp == nil {
		return nil
	}

	out := make(orb.MultiPolygon, len(mp))
	for i, p := range mp {
		rings := orb.Polygon{orb.Ring(MultiGeoToPoint(p.Surface))}
		if p.Hole != nil {
			rings = append(rings, orb.Ring(MultiGeoToPoint(p.Hole)))
		}
		out[i] = rings
	}

	return out
}

// LineBound returns the lon/lat bounding box of every point in ml.
func LineBound(ml MultiLine) orb.Bound {
	return MultiGeoLineToMultiLine(ml).Bound()
}

// Bound returns the lon/lat bounding box of every ring in mp.
func Bound(mp MultiPolygon) orb.Bound {
	return MultiGeoPolygonToMultiPolygon(mp).Bound()
}

// NormalizeGeometry returns a copy of g with every coordinate normalized.
// Bounds and unknown geometries are returned as is.
func NormalizeGeometry(g orb.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}

	g = orb.Clone(g)
	switch v := g.(type) {
	case orb.Point:
		return GeoToPoint(Normalize(PointToGeo(v)))
	case orb.MultiPoint:
		normalizeTuples(v)
	case orb.LineString:
		normalizeTuples(v)
	case orb.Ring:
		normalizeTuples(v)
	case orb.MultiLineString:
		for _, ls := range v {
			normalizeTuples(ls)
		}
	case orb.Polygon:
		for _, r := range v {
			normalizeTuples(r)
		}
	case orb.MultiPolygon:
		for _, polygon := range v {
			for _, r := range polygon {
				normalizeTuples(r)
			}
		}
	case orb.Collection:
		for i, child := range v {
			v[i] = NormalizeGeometry(child)
		}
	}

	return g
}

func normalizeTuples(points []orb.Point) {
	for i, p := range points {
		points[i] = GeoToPoint(Normalize(PointToGeo(p)))
	}
}
