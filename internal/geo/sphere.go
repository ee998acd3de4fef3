package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

const (
	// CircleStep is the bearing step, in degrees, between circle vertices.
	CircleStep = 10.0

	// BackgroundEdgeStep is the longitude step along top and bottom edges
	// of a background patch.
	BackgroundEdgeStep = 5.0

	// BackgroundMaxPatch limits patch width and side sampling in degrees.
	BackgroundMaxPatch = 90.0

	// boundaryNudge moves exact pole/antimeridian values inward.
	boundaryNudge = 0.0001
)

func toS2(p Point) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(p.Latitude, p.Longitude))
}

func fromS2(p s2.Point) Point {
	ll := s2.LatLngFromPoint(p)
	return Point{Longitude: ll.Lng.Degrees(), Latitude: ll.Lat.Degrees()}
}

// Distance returns the great-circle distance between a and b in degrees.
func Distance(a, b Point) float64 {
	return toS2(a).Distance(toS2(b)).Degrees()
}

// Interpolate returns the point at fraction t along the great circle
// from a to b.
func Interpolate(a, b Point, t float64) Point {
	switch t {
	case 0:
		return a
	case 1:
		return b
	}

	return fromS2(s2.Interpolate(t, toS2(a), toS2(b)))
}

// Circle returns a geodesic circle of the given angular radius in degrees
// centered at longitude/latitude. The ring is closed.
func Circle(longitude, latitude, radius float64) MultiPolygon {
	center := orb.Point{longitude, latitude}
	distance := radius * degToRad * orb.EarthRadius

	steps := int(math.Ceil(360 / CircleStep))
	ring := make(Line, 0, steps+1)
	for i := 0; i < steps; i++ {
		p := orbgeo.PointAtBearingAndDistance(center, float64(i)*CircleStep, distance)
		ring = append(ring, Normalize(PointToGeo(p)))
	}
	ring = append(ring, ring[0])

	return MultiPolygon{{Surface: ring}}
}

// Background tiles the north/east/south/west box with polygon patches
// no wider than BackgroundMaxPatch degrees of longitude. Exact ±180 and
// ±90 bounds are nudged inward to keep projections away from singularities.
// The box is first clamped to the globe; a NaN bound yields no patches.
func Background(north, east, south, west float64) MultiPolygon {
	if math.IsNaN(north) || math.IsNaN(east) || math.IsNaN(south) || math.IsNaN(west) {
		return MultiPolygon{}
	}
	north, south = clamp(north, -90, 90), clamp(south, -90, 90)
	east, west = clamp(east, -180, 180), clamp(west, -180, 180)

	if west == -180 {
		west = -180 + boundaryNudge
	}
	if south == -90 {
		south = -90 + boundaryNudge
	}
	if north == 90 {
		north = 90 - boundaryNudge
	}
	if east == 180 {
		east = 180 - boundaryNudge
	}

	width := east - west
	height := north - south
	if width <= 0 || height <= 0 {
		return MultiPolygon{}
	}

	columns := int(math.Ceil(width / BackgroundMaxPatch))
	stepLong := width / float64(columns)
	rows := int(math.Ceil(height / BackgroundMaxPatch))
	stepLat := height / float64(rows)

	out := make(MultiPolygon, 0, columns)
	for c := 0; c < columns; c++ {
		left := west + float64(c)*stepLong
		right := west + float64(c+1)*stepLong
		if c == columns-1 {
			right = east
		}

		var ring Line
		// top edge, west to east
		for ll := left; ll < right; ll += BackgroundEdgeStep {
			ring = appendDistinct(ring, Point{Longitude: ll, Latitude: north})
		}
		ring = appendDistinct(ring, Point{Longitude: right, Latitude: north})

		// east side, north to south
		for r := 1; r < rows; r++ {
			ring = appendDistinct(ring, Point{Longitude: right, Latitude: north - float64(r)*stepLat})
		}
		ring = appendDistinct(ring, Point{Longitude: right, Latitude: south})

		// bottom edge, east to west
		for ll := right - BackgroundEdgeStep; ll > left; ll -= BackgroundEdgeStep {
			ring = appendDistinct(ring, Point{Longitude: ll, Latitude: south})
		}
		ring = appendDistinct(ring, Point{Longitude: left, Latitude: south})

		// west side, south to north
		for r := 1; r < rows; r++ {
			ring = appendDistinct(ring, Point{Longitude: left, Latitude: south + float64(r)*stepLat})
		}
		ring = append(ring, ring[0])

		out = append(out, Polygon{Surface: ring})
	}

	return out
}

func appendDistinct(line Line, p Point) Line {
	if n := len(line); n > 0 && line[n-1] == p {
		return line
	}
	return append(line, p)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
