package series

import (
	"github.com/woozymasta/geomap/internal/geo"
	"github.com/woozymasta/geomap/internal/projection"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Polygon is a polygon-like map object such as a country.
type Polygon struct {
	base

	multiGeoPolygon geo.MultiPolygon
	path            string
}

// NewPolygon returns an empty polygon.
func NewPolygon(id string) *Polygon {
	return &Polygon{base: base{ID: id}}
}

// SetMultiGeoPolygon normalizes and assigns the polygon coordinates.
func (p *Polygon) SetMultiGeoPolygon(mp geo.MultiPolygon) {
	if mp == nil {
		p.multiGeoPolygon = nil
		return
	}

	out := make(geo.MultiPolygon, len(mp))
	for i, polygon := range mp {
		out[i] = geo.Polygon{
			Surface: geo.NormalizeLine(polygon.Surface),
			Hole:    geo.NormalizeLine(polygon.Hole),
		}
	}
	p.multiGeoPolygon = out
}

// SetMultiPolygon assigns the coordinates from [x, y] tuples.
func (p *Polygon) SetMultiPolygon(mp orb.MultiPolygon) {
	p.SetMultiGeoPolygon(geo.MultiPolygonToGeo(mp))
}

// MultiGeoPolygon returns the polygon coordinates.
func (p *Polygon) MultiGeoPolygon() geo.MultiPolygon {
	return p.multiGeoPolygon
}

// MultiPolygon returns the polygon coordinates as [lon, lat] tuples.
func (p *Polygon) MultiPolygon() orb.MultiPolygon {
	return geo.MultiGeoPolygonToMultiPolygon(p.multiGeoPolygon)
}

// Feature returns a MultiPolygon feature, or nil without coordinates.
func (p *Polygon) Feature() *geojson.Feature {
	if p.multiGeoPolygon.Empty() {
		return nil
	}
	return p.newFeature(geojson.NewFeature(p.MultiPolygon()))
}

// Validate regenerates the SVG path of the polygon.
func (p *Polygon) Validate(proj projection.Projection) {
	p.path = proj.Path(p.Feature())
}

// Path returns the SVG path data from the last Validate.
func (p *Polygon) Path() string {
	return p.path
}
