package projection

import (
	"testing"

	"github.com/woozymasta/geomap/internal/geo"

	"github.com/stretchr/testify/assert"
)

func TestPositionToPointEndpoints(t *testing.T) {
	p := newProjector(t, Equirectangular)
	ml := geo.MultiLine{{{Longitude: 0, Latitude: 0}, {Longitude: 40, Latitude: 0}}}

	start := p.PositionToPoint(ml, 0)
	end := p.PositionToPoint(ml, 1)
	mid := p.PositionToPoint(ml, 0.5)

	assert.InDelta(t, p.Convert(geo.Point{}).X, start.X, 1e-6)
	assert.InDelta(t, p.Convert(geo.Point{Longitude: 40}).X, end.X, 1e-6)
	assert.InDelta(t, p.Convert(geo.Point{Longitude: 20}).X, mid.X, 1e-6)
	assert.InDelta(t, p.Convert(geo.Point{}).Y, mid.Y, 1e-6)
	assert.InDelta(t, 0, mid.Angle, 1e-6, "eastward along the equator")
}

func TestPositionToPointClamps(t *testing.T) {
	p := newProjector(t, Mercator)
	ml := geo.MultiLine{{{Longitude: 0, Latitude: 0}, {Longitude: 0, Latitude: 30}}}

	assert.Equal(t, p.PositionToPoint(ml, 0), p.PositionToPoint(ml, -2))
	assert.Equal(t, p.PositionToPoint(ml, 1), p.PositionToPoint(ml, 7))

	// northward is up on screen
	assert.InDelta(t, -90, p.PositionToPoint(ml, 0.5).Angle, 1e-6)
}

func TestPositionToPointMultipleSegments(t *testing.T) {
	p := newProjector(t, Equirectangular)
	ml := geo.MultiLine{
		{{Longitude: 0, Latitude: 0}, {Longitude: 10, Latitude: 0}},
		{{Longitude: 50, Latitude: 0}, {Longitude: 60, Latitude: 0}},
	}

	// half of the total length ends the first segment
	got := p.PositionToPoint(ml, 0.75)
	assert.InDelta(t, p.Convert(geo.Point{Longitude: 55}).X, got.X, 1e-6)
}

func TestPositionToPointEmpty(t *testing.T) {
	p := newProjector(t, Mercator)

	assert.Equal(t, Position{}, p.PositionToPoint(nil, 0.5))
	assert.Equal(t, Position{}, p.PositionToPoint(geo.MultiLine{{}}, 0.5))
}

func TestPositionToPointSinglePoint(t *testing.T) {
	p := newProjector(t, Mercator)
	pt := geo.Point{Longitude: 10, Latitude: 10}

	got := p.PositionToPoint(geo.MultiLine{{pt}}, 0.3)
	px := p.Convert(pt)
	assert.InDelta(t, px.X, got.X, 1e-9)
	assert.InDelta(t, px.Y, got.Y, 1e-9)
	assert.Zero(t, got.Angle)
}
