package main

import (
	"strings"
	"testing"

	"github.com/woozymasta/geomap/internal/series"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sample = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":"a","properties":{"name":"A"},"geometry":{"type":"Point","coordinates":[190,10]}},
 {"type":"Feature","id":"b","properties":{},"geometry":{"type":"LineString","coordinates":[[0,0],[370,5]]}}
]}`

func load(t *testing.T) *geojson.FeatureCollection {
	t.Helper()
	fc, err := geojson.UnmarshalFeatureCollection([]byte(sample))
	require.NoError(t, err)
	return fc
}

func TestNormalize(t *testing.T) {
	in := load(t)
	out := normalize(in, series.Filter{})

	require.Len(t, out.Features, 2)
	assert.Equal(t, orb.Point{-170, 10}, out.Features[0].Geometry)
	assert.Equal(t, "a", out.Features[0].ID)
	assert.Equal(t, "A", out.Features[0].Properties["name"])
	assert.Equal(t, orb.LineString{{0, 0}, {10, 5}}, out.Features[1].Geometry)

	assert.Equal(t, orb.Point{190, 10}, in.Features[0].Geometry, "input is untouched")

	out = normalize(in, series.Filter{Exclude: []string{"a"}})
	require.Len(t, out.Features, 1)
	assert.Equal(t, "b", out.Features[0].ID)
}

func TestEncode(t *testing.T) {
	fc := normalize(load(t), series.Filter{})

	data, err := encode(fc, "wkt")
	require.NoError(t, err)
	assert.Equal(t, []string{"POINT(-170 10)", "LINESTRING(0 0,10 5)"}, strings.Split(string(data), "\n"))

	data, err = encode(fc, "yaml")
	require.NoError(t, err)
	var tree map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &tree))
	assert.Equal(t, "FeatureCollection", tree["type"])

	data, err = encode(fc, "json")
	require.NoError(t, err)
	back, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, back.Features, 2)
}
