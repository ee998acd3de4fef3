package geo

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointToGeo(t *testing.T) {
	got := PointToGeo(orb.Point{12.5, -45.2})
	assert.Equal(t, Point{Longitude: 12.5, Latitude: -45.2}, got)
	assert.Equal(t, orb.Point{12.5, -45.2}, GeoToPoint(got))
}

func TestMultiLineToGeo(t *testing.T) {
	got := MultiLineToGeo(orb.MultiLineString{{{0, 0}, {10, 10}}})

	assert.Equal(t, MultiLine{{
		{Longitude: 0, Latitude: 0},
		{Longitude: 10, Latitude: 10},
	}}, got)
}

func TestMultiPointOrder(t *testing.T) {
	input := []orb.Point{{3, 1}, {1, 2}, {2, 3}}
	got := MultiPointToGeo(input)

	require.Len(t, got, 3)
	for i, p := range input {
		assert.Equal(t, p[0], got[i].Longitude)
		assert.Equal(t, p[1], got[i].Latitude)
	}
	assert.Equal(t, input, MultiGeoToPoint(got))
}

func TestMultiPolygonSurfaceOnly(t *testing.T) {
	surface := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 0}}
	got := MultiPolygonToGeo(orb.MultiPolygon{{surface}})

	require.Len(t, got, 1)
	assert.Len(t, got[0].Surface, 4)
	assert.Nil(t, got[0].Hole)

	back := MultiGeoPolygonToMultiPolygon(got)
	require.Len(t, back, 1)
	assert.Len(t, back[0], 1, "a polygon without a hole converts to a single ring")
}

func TestMultiPolygonWithHole(t *testing.T) {
	input := orb.MultiPolygon{{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{1, 1}, {1, 2}, {2, 2}, {2, 1}, {1, 1}},
	}}

	got := MultiPolygonToGeo(input)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Hole)
	assert.Equal(t, Point{Longitude: 1, Latitude: 2}, got[0].Hole[1])
	assert.Equal(t, input, MultiGeoPolygonToMultiPolygon(got))
}

func randomRing(rng *rand.Rand) orb.Ring {
	n := 3 + rng.Intn(8)
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		ring = append(ring, orb.Point{rng.Float64()*360 - 180, rng.Float64()*180 - 90})
	}
	return append(ring, ring[0])
}

func TestMultiPolygonRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		mp := make(orb.MultiPolygon, 1+rng.Intn(4))
		for j := range mp {
			mp[j] = orb.Polygon{randomRing(rng)}
			if rng.Intn(2) == 0 {
				mp[j] = append(mp[j], randomRing(rng))
			}
		}

		require.Equal(t, mp, MultiGeoPolygonToMultiPolygon(MultiPolygonToGeo(mp)))

		geoMP := MultiPolygonToGeo(mp)
		require.Equal(t, geoMP, MultiPolygonToGeo(MultiGeoPolygonToMultiPolygon(geoMP)))
	}
}

func TestMultiLineRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 100; i++ {
		ml := make(orb.MultiLineString, 1+rng.Intn(3))
		for j := range ml {
			ml[j] = orb.LineString(randomRing(rng))
		}

		require.Equal(t, ml, MultiGeoLineToMultiLine(MultiLineToGeo(ml)))
	}
}

func TestNilInputs(t *testing.T) {
	assert.Nil(t, MultiPointToGeo(nil))
	assert.Nil(t, MultiLineToGeo(nil))
	assert.Nil(t, MultiPolygonToGeo(nil))
	assert.Nil(t, MultiGeoPolygonToMultiPolygon(nil))
	assert.True(t, MultiPolygon(nil).Empty())
	assert.True(t, MultiPolygon{{}}.Empty())
}

func TestBound(t *testing.T) {
	mp := MultiPolygonToGeo(orb.MultiPolygon{{{{-10, -5}, {20, -5}, {20, 15}, {-10, -5}}}})
	b := Bound(mp)

	assert.Equal(t, orb.Point{-10, -5}, b.Min)
	assert.Equal(t, orb.Point{20, 15}, b.Max)

	lb := LineBound(MultiLine{{{Longitude: 1, Latitude: 2}, {Longitude: -3, Latitude: 4}}})
	assert.Equal(t, orb.Point{-3, 2}, lb.Min)
	assert.Equal(t, orb.Point{1, 4}, lb.Max)
}

func TestNormalizeGeometry(t *testing.T) {
	tests := []struct {
		name string
		in   orb.Geometry
		want orb.Geometry
	}{
		{"Point", orb.Point{190, 0}, orb.Point{-170, 0}},
		{"LineString", orb.LineString{{0, 0}, {370, 10}}, orb.LineString{{0, 0}, {10, 10}}},
		{"Polygon", orb.Polygon{{{-190, 0}, {0, 0}, {0, 10}, {-190, 0}}}, orb.Polygon{{{170, 0}, {0, 0}, {0, 10}, {170, 0}}}},
		{"MultiPolygon", orb.MultiPolygon{{{{540, 0}, {0, 0}, {540, 0}}}}, orb.MultiPolygon{{{{180, 0}, {0, 0}, {180, 0}}}}},
		{"Collection", orb.Collection{orb.Point{-370, 5}}, orb.Collection{orb.Point{-10, 5}}},
		{"Nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeGeometry(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.True(t, orb.Equal(tt.want, got), "got %v", got)
		})
	}
}

func TestNormalizeGeometryCopies(t *testing.T) {
	in := orb.LineString{{200, 0}}
	out := NormalizeGeometry(in)

	assert.Equal(t, orb.LineString{{200, 0}}, in)
	assert.Equal(t, orb.LineString{{-160, 0}}, out)
}
