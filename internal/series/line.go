package series

import (
	"github.com/woozymasta/geomap/internal/geo"
	"github.com/woozymasta/geomap/internal/projection"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Line is a line-like map object.
//
// With ShortestDistance set the line follows great circles and its path is
// generated by the projection. Otherwise every point is projected on its
// own and joined with straight pixel segments.
type Line struct {
	base

	// ShortestDistance selects geodesic rendering.
	ShortestDistance bool

	// Precision is the angular distance in degrees below which a geodesic
	// segment is drawn straight. It applies to this line only; the
	// projection's own precision is restored after the path is built.
	Precision float64

	// ImagesToConnect builds the line from image positions when the line
	// has no coordinates of its own.
	ImagesToConnect []*Image

	multiGeoLine geo.MultiLine

	projection projection.Projection
	path       string
	polyline   Polyline
}

// NewLine returns a planar line with the default precision.
func NewLine(id string) *Line {
	return &Line{
		base:      base{ID: id},
		Precision: projection.DefaultPrecision,
	}
}

// SetMultiGeoLine normalizes and assigns the line coordinates.
func (l *Line) SetMultiGeoLine(ml geo.MultiLine) {
	l.multiGeoLine = geo.NormalizeMultiLine(ml)
}

// SetMultiLine assigns the coordinates from [x, y] tuples.
func (l *Line) SetMultiLine(ml orb.MultiLineString) {
	l.SetMultiGeoLine(geo.MultiLineToGeo(ml))
}

// MultiGeoLine returns the line coordinates, falling back to the
// connected images.
func (l *Line) MultiGeoLine() geo.MultiLine {
	if !l.multiGeoLine.Empty() || len(l.ImagesToConnect) == 0 {
		return l.multiGeoLine
	}

	segment := make(geo.Line, 0, len(l.ImagesToConnect))
	for _, img := range l.ImagesToConnect {
		if img == nil {
			continue
		}
		if p, ok := img.GeoPoint(); ok {
			segment = append(segment, p)
		}
	}
	if len(segment) == 0 {
		return nil
	}

	return geo.MultiLine{segment}
}

// MultiLine returns the line coordinates as [lon, lat] tuples.
func (l *Line) MultiLine() orb.MultiLineString {
	return geo.MultiGeoLineToMultiLine(l.MultiGeoLine())
}

// Feature returns a MultiLineString feature, or nil without coordinates.
func (l *Line) Feature() *geojson.Feature {
	ml := l.MultiGeoLine()
	if ml.Empty() {
		return nil
	}
	return l.newFeature(geojson.NewFeature(geo.MultiGeoLineToMultiLine(ml)))
}

// Validate recomputes the pixel geometry of the line.
func (l *Line) Validate(p projection.Projection) {
	l.projection = p
	l.path = ""
	l.polyline = nil

	ml := l.MultiGeoLine()
	if ml.Empty() {
		return
	}

	if l.ShortestDistance {
		prev := p.Precision()
		p.SetPrecision(l.Precision)
		l.path = p.Path(l.Feature())
		p.SetPrecision(prev)
		return
	}

	l.polyline = make(Polyline, len(ml))
	for i, segment := range ml {
		pixels := make([]projection.Pixel, len(segment))
		for j, pt := range segment {
			pixels[j] = p.Convert(pt)
		}
		l.polyline[i] = pixels
	}
	l.path = l.polyline.Path()
}

// Path returns the SVG path data from the last Validate.
func (l *Line) Path() string {
	return l.path
}

// Polyline returns the planar pixel geometry from the last Validate.
// It is nil for geodesic lines.
func (l *Line) Polyline() Polyline {
	return l.polyline
}

// PositionToPoint returns the pixel and tangent angle at a fraction of the
// line length. Geodesic lines measure arc length, planar lines pixel
// length. Without coordinates or before Validate the zero position is
// returned.
func (l *Line) PositionToPoint(position float64) projection.Position {
	ml := l.MultiGeoLine()
	if ml.Empty() || l.projection == nil {
		return projection.Position{}
	}

	if l.ShortestDistance {
		return l.projection.PositionToPoint(ml, position)
	}

	return l.polyline.PositionToPoint(position)
}
