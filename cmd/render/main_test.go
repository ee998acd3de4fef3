package main

import (
	"testing"

	"github.com/woozymasta/geomap/internal/config"
	"github.com/woozymasta/geomap/internal/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitLayers(t *testing.T) {
	cfg, err := config.Parse([]byte(`
layers:
  - {name: a, kind: polygon}
  - {name: b, kind: line}
  - {name: c, kind: image}
`))
	require.NoError(t, err)

	all := []series.Series{
		series.NewPolygonSeries("a"),
		series.NewLineSeries("b"),
		series.NewImageSeries("c"),
	}

	gotCfg, got := limitLayers(cfg, all, nil)
	assert.Same(t, cfg, gotCfg)
	assert.Len(t, got, 3)

	gotCfg, got = limitLayers(cfg, all, []string{"c", "a", "missing"})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name())
	assert.Equal(t, "c", got[1].Name())
	require.Len(t, gotCfg.Layers, 2)
	assert.Equal(t, "a", gotCfg.Layers[0].Name)
	assert.Len(t, cfg.Layers, 3, "original config is untouched")
}
