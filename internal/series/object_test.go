package series

import (
	"testing"

	"github.com/woozymasta/geomap/internal/geo"
	"github.com/woozymasta/geomap/internal/projection"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjector(t *testing.T, kind projection.Kind) *projection.Projector {
	t.Helper()
	p, err := projection.New(kind)
	require.NoError(t, err)
	return p
}

func TestImageFeature(t *testing.T) {
	img := NewImage("berlin", geo.Point{Longitude: 13.4, Latitude: 52.5})

	f := Feature(img)
	require.NotNil(t, f)
	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "berlin", f.ID)
	assert.Equal(t, orb.Point{13.4, 52.5}, f.Geometry)

	assert.Nil(t, Feature(&Image{}))
	assert.Nil(t, Feature(nil))
}

func TestImageNormalizesOnAssignment(t *testing.T) {
	img := &Image{}
	img.SetPoint(orb.Point{10, 100})

	p, ok := img.GeoPoint()
	require.True(t, ok)
	assert.InDelta(t, -170, p.Longitude, 1e-9)
	assert.InDelta(t, 80, p.Latitude, 1e-9)
}

func TestImageValidate(t *testing.T) {
	proj := newProjector(t, projection.Mercator)
	img := NewImage("", geo.Point{Longitude: 20, Latitude: 10})

	img.Validate(proj)
	assert.Equal(t, proj.Convert(geo.Point{Longitude: 20, Latitude: 10}), img.Pixel())
}

func TestLineFeatureEmptiness(t *testing.T) {
	l := NewLine("empty")
	assert.Nil(t, l.Feature())

	l.SetMultiLine(orb.MultiLineString{})
	assert.Nil(t, l.Feature())

	l.SetMultiLine(orb.MultiLineString{{}})
	assert.Nil(t, l.Feature())

	l.SetMultiLine(orb.MultiLineString{{{0, 0}, {10, 10}}})
	f := l.Feature()
	require.NotNil(t, f)
	assert.Equal(t, "MultiLineString", f.Geometry.GeoJSONType())
	assert.Equal(t, orb.MultiLineString{{{0, 0}, {10, 10}}}, f.Geometry)
}

func TestLineNormalizesOnAssignment(t *testing.T) {
	l := NewLine("")
	l.SetMultiGeoLine(geo.MultiLine{{{Longitude: 200, Latitude: 0}, {Longitude: 10, Latitude: 100}}})

	ml := l.MultiGeoLine()
	assert.InDelta(t, -160, ml[0][0].Longitude, 1e-9)
	assert.InDelta(t, -170, ml[0][1].Longitude, 1e-9)
	assert.InDelta(t, 80, ml[0][1].Latitude, 1e-9)
}

func TestPolygonFeatureEmptiness(t *testing.T) {
	p := NewPolygon("empty")
	assert.Nil(t, p.Feature())

	p.SetMultiPolygon(orb.MultiPolygon{{{}}})
	assert.Nil(t, p.Feature())

	ring := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 0}}
	p.SetMultiPolygon(orb.MultiPolygon{{ring}})
	f := p.Feature()
	require.NotNil(t, f)
	assert.Equal(t, "MultiPolygon", f.Geometry.GeoJSONType())
	assert.Equal(t, orb.MultiPolygon{{ring}}, f.Geometry)
}

func TestPolygonValidate(t *testing.T) {
	proj := newProjector(t, projection.Miller)
	p := NewPolygon("")
	p.SetMultiPolygon(orb.MultiPolygon{{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}}})

	p.Validate(proj)
	assert.NotEmpty(t, p.Path())
	assert.Equal(t, proj.Path(p.Feature()), p.Path())

	empty := NewPolygon("")
	empty.Validate(proj)
	assert.Empty(t, empty.Path())
}

func TestFeaturePropertiesCopied(t *testing.T) {
	img := NewImage("x", geo.Point{})
	img.Properties = map[string]interface{}{"name": "Null Island"}

	f := img.Feature()
	assert.Equal(t, "Null Island", f.Properties["name"])

	// features are rebuilt, never shared
	f.Properties["name"] = "changed"
	assert.Equal(t, "Null Island", img.Feature().Properties["name"])
}
