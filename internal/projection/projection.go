// Package projection converts geographic points to pixels and builds
// SVG path data for GeoJSON features.
package projection

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/woozymasta/geomap/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi

	// DefaultPrecision is the angular threshold, in degrees, below which a
	// segment is drawn straight instead of following the great circle.
	DefaultPrecision = 0.1

	// DefaultSampleStep is the great-circle sampling step in degrees.
	DefaultSampleStep = 1.0

	// PointRadius is the radius in pixels of a rendered Point feature.
	PointRadius = 4.5

	defaultScale = 150.0
	defaultTX    = 480.0
	defaultTY    = 250.0
)

// ErrUnknownProjection is returned by New for an unsupported kind.
var ErrUnknownProjection = errors.New("unknown projection")

// Kind names a supported projection.
type Kind string

// Supported projections.
const (
	Mercator        Kind = "mercator"
	Miller          Kind = "miller"
	Equirectangular Kind = "equirectangular"
)

// Pixel is a projected screen coordinate.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position is a point along a line with the tangent angle in degrees.
type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// Projection is what map objects need from a map projection.
type Projection interface {
	Convert(p geo.Point) Pixel
	Invert(px Pixel) geo.Point
	Path(f *geojson.Feature) string
	Project(line geo.Line) [][]Pixel
	SetPrecision(precision float64)
	Precision() float64
	PositionToPoint(ml geo.MultiLine, position float64) Position
}

// Projector is a cylindrical projection with scale and translate.
type Projector struct {
	raw        rawProjection
	kind       Kind
	scale      float64
	tx, ty     float64
	precision  float64
	sampleStep float64
}

// New returns a projector of the given kind with default scale,
// translate and precision.
func New(kind Kind) (*Projector, error) {
	var raw rawProjection
	switch Kind(strings.ToLower(string(kind))) {
	case Mercator, "":
		raw, kind = mercator{}, Mercator
	case Miller:
		raw, kind = miller{}, Miller
	case Equirectangular:
		raw, kind = equirectangular{}, Equirectangular
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProjection, kind)
	}

	return &Projector{
		raw:        raw,
		kind:       kind,
		scale:      defaultScale,
		tx:         defaultTX,
		ty:         defaultTY,
		precision:  DefaultPrecision,
		sampleStep: DefaultSampleStep,
	}, nil
}

// Kind returns the projection kind.
func (p *Projector) Kind() Kind { return p.kind }

// Scale returns the pixel scale of one unit of the raw projection.
func (p *Projector) Scale() float64 { return p.scale }

// SetScale sets the pixel scale.
func (p *Projector) SetScale(scale float64) { p.scale = scale }

// Translate returns the pixel position of the projection origin.
func (p *Projector) Translate() (x, y float64) { return p.tx, p.ty }

// SetTranslate sets the pixel position of the projection origin.
func (p *Projector) SetTranslate(x, y float64) { p.tx, p.ty = x, y }

// Precision returns the straight-segment threshold in degrees.
func (p *Projector) Precision() float64 { return p.precision }

// SetPrecision sets the straight-segment threshold in degrees.
func (p *Projector) SetPrecision(precision float64) { p.precision = precision }

// SetSampleStep sets the great-circle sampling step in degrees.
// Non-positive values are ignored.
func (p *Projector) SetSampleStep(step float64) {
	if step > 0 {
		p.sampleStep = step
	}
}

// Convert projects a geo point to pixels.
func (p *Projector) Convert(pt geo.Point) Pixel {
	x, y := p.raw.forward(pt.Longitude*degToRad, pt.Latitude*degToRad)
	return Pixel{X: p.tx + p.scale*x, Y: p.ty - p.scale*y}
}

// Invert maps a pixel back to a geo point.
func (p *Projector) Invert(px Pixel) geo.Point {
	lambda, phi := p.raw.inverse((px.X-p.tx)/p.scale, (p.ty-px.Y)/p.scale)
	return geo.Point{Longitude: lambda * radToDeg, Latitude: phi * radToDeg}
}

// Fit sets scale and translate so that bound fills width x height,
// centered. An empty or degenerate bound leaves the projector unchanged.
func (p *Projector) Fit(bound orb.Bound, width, height float64) {
	if bound.IsEmpty() || width <= 0 || height <= 0 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range boundOutline(bound) {
		x, y := p.raw.forward(pt.Longitude*degToRad, pt.Latitude*degToRad)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	dx, dy := maxX-minX, maxY-minY
	if dx <= 0 && dy <= 0 {
		return
	}

	scale := math.Inf(1)
	if dx > 0 {
		scale = width / dx
	}
	if dy > 0 {
		scale = math.Min(scale, height/dy)
	}

	p.scale = scale
	p.tx = width/2 - scale*(minX+maxX)/2
	p.ty = height/2 + scale*(minY+maxY)/2
}

// boundOutline samples the edges of a lon/lat box every 5 degrees.
func boundOutline(b orb.Bound) geo.Line {
	const step = 5.0

	var out geo.Line
	for lon := b.Min.Lon(); lon < b.Max.Lon(); lon += step {
		out = append(out,
			geo.Point{Longitude: lon, Latitude: b.Min.Lat()},
			geo.Point{Longitude: lon, Latitude: b.Max.Lat()})
	}
	for lat := b.Min.Lat(); lat < b.Max.Lat(); lat += step {
		out = append(out,
			geo.Point{Longitude: b.Min.Lon(), Latitude: lat},
			geo.Point{Longitude: b.Max.Lon(), Latitude: lat})
	}

	return append(out,
		geo.Point{Longitude: b.Min.Lon(), Latitude: b.Min.Lat()},
		geo.Point{Longitude: b.Max.Lon(), Latitude: b.Max.Lat()})
}
