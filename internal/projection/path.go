package projection

import (
	"math"
	"strconv"
	"strings"

	"github.com/woozymasta/geomap/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Path returns SVG path data for the feature geometry.
// A nil feature or unsupported geometry yields an empty string.
func (p *Projector) Path(f *geojson.Feature) string {
	if f == nil || f.Geometry == nil {
		return ""
	}

	var sb strings.Builder
	p.writeGeometry(&sb, f.Geometry)

	return sb.String()
}

func (p *Projector) writeGeometry(sb *strings.Builder, g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		p.writePoint(sb, geo.PointToGeo(g))
	case orb.MultiPoint:
		for _, pt := range g {
			p.writePoint(sb, geo.PointToGeo(pt))
		}
	case orb.LineString:
		p.writeLine(sb, geo.MultiPointToGeo(g), false)
	case orb.MultiLineString:
		for _, ls := range g {
			p.writeLine(sb, geo.MultiPointToGeo(ls), false)
		}
	case orb.Ring:
		p.writeLine(sb, geo.MultiPointToGeo(g), true)
	case orb.Polygon:
		for _, ring := range g {
			p.writeLine(sb, geo.MultiPointToGeo(ring), true)
		}
	case orb.MultiPolygon:
		for _, polygon := range g {
			for _, ring := range polygon {
				p.writeLine(sb, geo.MultiPointToGeo(ring), true)
			}
		}
	case orb.Collection:
		for _, child := range g {
			p.writeGeometry(sb, child)
		}
	}
}

// writePoint draws a circle of PointRadius pixels around the point.
func (p *Projector) writePoint(sb *strings.Builder, pt geo.Point) {
	px := p.Convert(geo.Normalize(pt))
	r := FormatNumber(PointRadius)
	d := FormatNumber(2 * PointRadius)

	sb.WriteByte('M')
	writePixel(sb, Pixel{X: px.X, Y: px.Y})
	sb.WriteString("m0," + r)
	sb.WriteString("a" + r + "," + r + " 0 1,1 0,-" + d)
	sb.WriteString("a" + r + "," + r + " 0 1,1 0," + d)
	sb.WriteByte('Z')
}

// writeLine draws a line or ring. Lines are split where they cross the
// antimeridian, rings are closed with Z.
func (p *Projector) writeLine(sb *strings.Builder, line geo.Line, closed bool) {
	if len(line) == 0 {
		return
	}

	for _, part := range p.project(line, !closed) {
		for i, px := range part {
			if i == 0 {
				sb.WriteByte('M')
			} else {
				sb.WriteByte('L')
			}
			writePixel(sb, px)
		}
		if closed {
			sb.WriteByte('Z')
		}
	}
}

// Project resamples line along great circles and converts it to pixel
// runs, starting a new run wherever the line crosses the antimeridian.
// Runs shorter than two pixels are dropped.
func (p *Projector) Project(line geo.Line) [][]Pixel {
	if len(line) == 0 {
		return nil
	}

	var runs [][]Pixel
	for _, part := range p.project(line, true) {
		if len(part) > 1 {
			runs = append(runs, part)
		}
	}
	return runs
}

// project resamples line along great circles and converts it to pixels.
// With split set, the result is cut into separate parts wherever two
// consecutive points lie on opposite sides of the antimeridian.
func (p *Projector) project(line geo.Line, split bool) [][]Pixel {
	points := p.resample(line)

	var parts [][]Pixel
	var current []Pixel
	for i, pt := range points {
		if split && i > 0 && math.Abs(pt.Longitude-points[i-1].Longitude) > 180 {
			parts = append(parts, current)
			current = nil
		}
		current = append(current, p.Convert(pt))
	}

	return append(parts, current)
}

// resample normalizes line and inserts great-circle points into every
// segment whose angular length reaches the precision threshold.
func (p *Projector) resample(line geo.Line) geo.Line {
	line = geo.NormalizeLine(line)

	out := make(geo.Line, 0, len(line))
	out = append(out, line[0])
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]

		d := geo.Distance(a, b)
		if d < p.precision || d <= p.sampleStep {
			out = append(out, b)
			continue
		}

		n := int(math.Ceil(d / p.sampleStep))
		for k := 1; k < n; k++ {
			out = append(out, geo.Interpolate(a, b, float64(k)/float64(n)))
		}
		out = append(out, b)
	}

	return out
}

func writePixel(sb *strings.Builder, px Pixel) {
	sb.WriteString(FormatNumber(px.X))
	sb.WriteByte(',')
	sb.WriteString(FormatNumber(px.Y))
}

// FormatNumber formats an SVG coordinate rounded to three decimals without
// trailing zeros.
func FormatNumber(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		// avoid "-0"
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
