package series

import (
	"testing"

	"github.com/woozymasta/geomap/internal/geo"
	"github.com/woozymasta/geomap/internal/projection"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const worldGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "AA", "properties": {"name": "Square"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}},
    {"type": "Feature", "id": "BB", "properties": {"name": "Islands"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[20,20],[30,20],[30,30],[20,20]]],
        [[[40,40],[50,40],[50,50],[40,40]], [[42,42],[44,42],[44,44],[42,42]]]
     ]}},
    {"type": "Feature", "id": "CC", "properties": {},
     "geometry": {"type": "LineString", "coordinates": [[0,0],[5,5]]}},
    {"type": "Feature", "properties": {"id": "DD"},
     "geometry": {"type": "Point", "coordinates": [1,2]}}
  ]
}`

func loadFixture(t *testing.T) *geojson.FeatureCollection {
	t.Helper()
	fc, err := geojson.UnmarshalFeatureCollection([]byte(worldGeoJSON))
	require.NoError(t, err)
	return fc
}

func TestPolygonSeriesLoadGeoJSON(t *testing.T) {
	s := NewPolygonSeries("countries")
	s.LoadGeoJSON(loadFixture(t))

	require.Equal(t, 2, s.Len(), "line and point features are skipped")

	bb, ok := s.Polygon("BB")
	require.True(t, ok)
	mp := bb.MultiGeoPolygon()
	require.Len(t, mp, 2)
	assert.Nil(t, mp[0].Hole)
	assert.NotNil(t, mp[1].Hole)
	assert.Equal(t, "Islands", bb.Properties["name"])

	b := s.Bound()
	assert.Equal(t, orb.Point{0, 0}, b.Min)
	assert.Equal(t, orb.Point{50, 50}, b.Max)
}

func TestPolygonSeriesFilter(t *testing.T) {
	s := NewPolygonSeries("countries")
	s.Filter = Filter{Exclude: []string{"AA"}}
	s.LoadGeoJSON(loadFixture(t))
	assert.Equal(t, 1, s.Len())

	s = NewPolygonSeries("countries")
	s.Filter = Filter{Include: []string{"AA"}}
	s.LoadGeoJSON(loadFixture(t))
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "AA", s.Polygons[0].ID)
}

func TestLineAndImageSeriesLoadGeoJSON(t *testing.T) {
	lines := NewLineSeries("routes")
	lines.LoadGeoJSON(loadFixture(t))
	require.Equal(t, 1, lines.Len())
	assert.Equal(t, orb.MultiLineString{{{0, 0}, {5, 5}}}, lines.Lines[0].MultiLine())

	images := NewImageSeries("cities")
	images.LoadGeoJSON(loadFixture(t))
	require.Equal(t, 1, images.Len())
	img, ok := images.Image("DD")
	require.True(t, ok)
	p, _ := img.GeoPoint()
	assert.Equal(t, geo.Point{Longitude: 1, Latitude: 2}, p)
}

func TestImageSeriesBind(t *testing.T) {
	s := NewImageSeries("cities")
	err := s.Bind([]map[string]interface{}{
		{"id": "a", "point": []interface{}{12.5, -45.2}, "title": "A"},
		{"id": "b", "geoPoint": map[string]interface{}{"longitude": 3, "latitude": "4"}},
		{"id": "c", "multiPoint": []interface{}{
			[]interface{}{1, 1},
			[]interface{}{2, 2},
		}},
		{"id": "d", "multiGeoPoint": []interface{}{
			map[string]interface{}{"longitude": 5, "latitude": 5},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())

	a, ok := s.Image("a")
	require.True(t, ok)
	p, _ := a.GeoPoint()
	assert.Equal(t, geo.Point{Longitude: 12.5, Latitude: -45.2}, p)
	assert.Equal(t, "A", a.Properties["title"])
	assert.NotContains(t, a.Properties, "point")

	b, _ := s.Image("b")
	p, _ = b.GeoPoint()
	assert.Equal(t, geo.Point{Longitude: 3, Latitude: 4}, p)
}

func TestImageSeriesBindMergesByID(t *testing.T) {
	s := NewImageSeries("cities")
	s.LoadGeoJSON(loadFixture(t))

	require.NoError(t, s.Bind([]map[string]interface{}{{"id": "DD", "value": 7}}))
	assert.Equal(t, 1, s.Len())

	img, _ := s.Image("DD")
	assert.Equal(t, 7, img.Properties["value"])
	p, _ := img.GeoPoint()
	assert.Equal(t, geo.Point{Longitude: 1, Latitude: 2}, p)
}

func TestLineSeriesBind(t *testing.T) {
	s := NewLineSeries("routes")
	s.ShortestDistance = true
	err := s.Bind([]map[string]interface{}{
		{"id": "l1", "line": []interface{}{[]interface{}{0, 0}, []interface{}{10, 10}}},
		{"id": "l2", "multiLine": []interface{}{
			[]interface{}{[]interface{}{0, 0}, []interface{}{1, 1}},
			[]interface{}{[]interface{}{2, 2}, []interface{}{3, 3}},
		}},
		{"id": "l3", "geoLine": []interface{}{
			map[string]interface{}{"longitude": 0, "latitude": 0},
			map[string]interface{}{"longitude": 190, "latitude": 0},
		}},
		{"id": "l4", "multiGeoLine": []interface{}{
			[]interface{}{
				map[string]interface{}{"longitude": 1, "latitude": 1},
				map[string]interface{}{"longitude": 2, "latitude": 2},
			},
		}},
	})
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())

	for _, l := range s.Lines {
		assert.True(t, l.ShortestDistance)
		assert.NotNil(t, l.Feature(), l.ID)
	}

	l2, _ := s.Line("l2")
	assert.Len(t, l2.MultiGeoLine(), 2)

	l3, _ := s.Line("l3")
	assert.InDelta(t, -170, l3.MultiGeoLine()[0][1].Longitude, 1e-9)
}

func TestLineSeriesConnect(t *testing.T) {
	images := NewImageSeries("cities")
	require.NoError(t, images.Bind([]map[string]interface{}{
		{"id": "a", "point": []interface{}{0, 0}},
		{"id": "b", "point": []interface{}{20, 20}},
	}))

	lines := NewLineSeries("links")
	require.NoError(t, lines.Connect("ab", images, "a", "b"))

	l, ok := lines.Line("ab")
	require.True(t, ok)
	assert.Equal(t, orb.MultiLineString{{{0, 0}, {20, 20}}}, l.MultiLine())

	assert.Error(t, lines.Connect("ax", images, "a", "missing"))
}

func TestPolygonSeriesBind(t *testing.T) {
	surface := []interface{}{
		[]interface{}{0, 0}, []interface{}{4, 0}, []interface{}{4, 4}, []interface{}{0, 0},
	}
	hole := []interface{}{
		[]interface{}{1, 1}, []interface{}{2, 1}, []interface{}{2, 2}, []interface{}{1, 1},
	}

	s := NewPolygonSeries("areas")
	err := s.Bind([]map[string]interface{}{
		{"id": "p1", "polygon": []interface{}{surface}},
		{"id": "p2", "multiPolygon": []interface{}{[]interface{}{surface, hole}}},
		{"id": "p3", "geoPolygon": []interface{}{[]interface{}{
			map[string]interface{}{"longitude": 0, "latitude": 0},
			map[string]interface{}{"longitude": 1, "latitude": 0},
			map[string]interface{}{"longitude": 0, "latitude": 0},
		}}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	p1, _ := s.Polygon("p1")
	assert.Nil(t, p1.MultiGeoPolygon()[0].Hole)

	p2, _ := s.Polygon("p2")
	assert.Len(t, p2.MultiPolygon()[0], 2)

	p3, _ := s.Polygon("p3")
	assert.Len(t, p3.MultiGeoPolygon()[0].Surface, 3)
}

func TestBindInvalidRow(t *testing.T) {
	s := NewImageSeries("cities")
	err := s.Bind([]map[string]interface{}{{"point": []interface{}{1}}})
	assert.Error(t, err)

	err = s.Bind([]map[string]interface{}{{"point": "not a point"}})
	assert.Error(t, err)
}

func TestBindTypedRows(t *testing.T) {
	images := NewImageSeries("cities")
	require.NoError(t, images.Bind([]map[string]interface{}{
		{"id": "a", "point": []float64{1, 2}},
		{"id": "b", "point": orb.Point{3, 4}},
		{"id": "c", "point": [2]float64{5, 6}},
		{"id": "d", "geoPoint": geo.Point{Longitude: 7, Latitude: 8}},
		{"id": "e", "multiPoint": [][]float64{{9, 10}}},
	}))

	for id, want := range map[string]geo.Point{
		"a": {Longitude: 1, Latitude: 2},
		"b": {Longitude: 3, Latitude: 4},
		"c": {Longitude: 5, Latitude: 6},
		"d": {Longitude: 7, Latitude: 8},
		"e": {Longitude: 9, Latitude: 10},
	} {
		img, ok := images.Image(id)
		require.True(t, ok, id)
		p, _ := img.GeoPoint()
		assert.Equal(t, want, p, id)
	}

	lines := NewLineSeries("routes")
	require.NoError(t, lines.Bind([]map[string]interface{}{
		{"id": "l1", "line": orb.LineString{{0, 0}, {1, 1}}},
		{"id": "l2", "line": [][]float64{{2, 2}, {3, 3}}},
		{"id": "l3", "geoLine": geo.Line{{Longitude: 4, Latitude: 4}, {Longitude: 5, Latitude: 5}}},
		{"id": "l4", "multiLine": [][][]float64{{{6, 6}, {7, 7}}}},
	}))

	l1, _ := lines.Line("l1")
	assert.Equal(t, orb.MultiLineString{{{0, 0}, {1, 1}}}, l1.MultiLine())
	l2, _ := lines.Line("l2")
	assert.Equal(t, orb.MultiLineString{{{2, 2}, {3, 3}}}, l2.MultiLine())
	l3, _ := lines.Line("l3")
	assert.Equal(t, geo.MultiLine{{{Longitude: 4, Latitude: 4}, {Longitude: 5, Latitude: 5}}}, l3.MultiGeoLine())
	l4, _ := lines.Line("l4")
	assert.Equal(t, orb.MultiLineString{{{6, 6}, {7, 7}}}, l4.MultiLine())

	polygons := NewPolygonSeries("areas")
	require.NoError(t, polygons.Bind([]map[string]interface{}{
		{"id": "p1", "polygon": orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 0}}}},
		{"id": "p2", "geoPolygon": geo.Polygon{Surface: geo.Line{
			{Longitude: 0, Latitude: 0}, {Longitude: 1, Latitude: 0}, {Longitude: 0, Latitude: 0},
		}}},
	}))

	p1, _ := polygons.Polygon("p1")
	require.Len(t, p1.MultiPolygon(), 1)
	assert.Len(t, p1.MultiPolygon()[0][0], 4)
	p2, _ := polygons.Polygon("p2")
	assert.Len(t, p2.MultiGeoPolygon()[0].Surface, 3)
}

func TestBindGeoPointMissingCoordinate(t *testing.T) {
	s := NewImageSeries("cities")
	err := s.Bind([]map[string]interface{}{
		{"id": "a", "geoPoint": map[string]interface{}{"longitude": 3}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")

	err = s.Bind([]map[string]interface{}{
		{"id": "b", "geoPoint": map[string]interface{}{"latitude": 3, "longitude": nil}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitude")

	err = s.Bind([]map[string]interface{}{{"point": []float64{1}}})
	assert.Error(t, err)
}

func TestCustomDataFields(t *testing.T) {
	s := NewImageSeries("cities")
	s.Fields = DataFields{ID: "code", Point: "coords"}

	require.NoError(t, s.Bind([]map[string]interface{}{
		{"code": "x", "coords": []interface{}{1, 2}},
	}))

	img, ok := s.Image("x")
	require.True(t, ok)
	p, _ := img.GeoPoint()
	assert.Equal(t, geo.Point{Longitude: 1, Latitude: 2}, p)
}

func TestSeriesValidateAndFeatures(t *testing.T) {
	proj, err := projection.New(projection.Mercator)
	require.NoError(t, err)

	s := NewPolygonSeries("countries")
	s.LoadGeoJSON(loadFixture(t))
	s.Polygons = append(s.Polygons, NewPolygon("empty"))

	s.Validate(proj)
	for _, p := range s.Polygons[:2] {
		assert.NotEmpty(t, p.Path())
	}

	fc := s.Features()
	assert.Len(t, fc.Features, 2, "objects without coordinates produce no feature")
}

func TestFilterAndFeatureID(t *testing.T) {
	f := Filter{Include: []string{"a", "b"}, Exclude: []string{"b"}}
	assert.True(t, f.Allows("a"))
	assert.False(t, f.Allows("b"), "exclude wins")
	assert.False(t, f.Allows("c"))
	assert.True(t, Filter{}.Allows("anything"))

	withID := geojson.NewFeature(orb.Point{0, 0})
	withID.ID = 7
	assert.Equal(t, "7", FeatureID(withID))

	withProp := geojson.NewFeature(orb.Point{0, 0})
	withProp.Properties["id"] = "x"
	assert.Equal(t, "x", FeatureID(withProp))

	assert.Empty(t, FeatureID(geojson.NewFeature(orb.Point{0, 0})))
}
