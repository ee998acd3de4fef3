// Package geo handles geographic points, coordinate conversions and
// spherical helper shapes used by map objects.
package geo

import "math"

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Point is a geographic point in degrees.
type Point struct {
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
}

// Line is a single ordered segment of geo points.
type Line []Point

// MultiLine is an ordered collection of line segments.
type MultiLine []Line

// WrapAngleTo180 folds any angle into (-180, 180].
func WrapAngleTo180(angle float64) float64 {
	// math.Mod keeps the sign of the dividend, which is enough here:
	// the two corrections below bring negative remainders into range.
	angle = math.Mod(angle, 360)
	if angle > 180 {
		angle -= 360
	}
	if angle < -180 {
		angle += 360
	}

	return angle
}

// Normalize brings p into canonical ranges.
//
// Latitude is folded through asin(sin(lat)). A latitude that wraps past
// a pole puts the point on the other side of the globe, so its longitude
// is flipped by 180 degrees.
func Normalize(p Point) Point {
	wrappedLatitude := WrapAngleTo180(p.Latitude)

	// asin(sin(x)) == x on [-90, 90]; skip the round trip to keep
	// in-range values exact.
	latitude := p.Latitude
	if latitude < -90 || latitude > 90 {
		latitude = math.Asin(math.Sin(latitude*degToRad)) * radToDeg
	}

	longitude := p.Longitude
	if math.Abs(wrappedLatitude) > 90 {
		longitude += 180
	}

	return Point{
		Longitude: WrapAngleTo180(longitude),
		Latitude:  latitude,
	}
}

// NormalizeLine returns a copy of line with every point normalized.
func NormalizeLine(line Line) Line {
	if line == nil {
		return nil
	}

	out := make(Line, len(line))
	for i, p := range line {
		out[i] = Normalize(p)
	}

	return out
}

// NormalizeMultiLine returns a copy of ml with every point of every
// segment normalized. Segment and point order is preserved.
func NormalizeMultiLine(ml MultiLine) MultiLine {
	if ml == nil {
		return nil
	}

	out := make(MultiLine, len(ml))
	for i, segment := range ml {
		out[i] = NormalizeLine(segment)
	}

	return out
}

// Empty reports whether ml has nothing to draw.
func (ml MultiLine) Empty() bool {
	return len(ml) == 0 || len(ml[0]) == 0
}
