package render

import (
	"github.com/woozymasta/geomap/internal/config"
	"github.com/woozymasta/geomap/internal/geo"
	"github.com/woozymasta/geomap/internal/projection"
	"github.com/woozymasta/geomap/internal/series"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Projector builds the configured projection. Unless fitting is disabled
// it is fitted to the combined bound of all series, or to the background
// box when one is enabled.
func Projector(cfg *config.Config, all []series.Series) (*projection.Projector, error) {
	p, err := projection.New(cfg.Projection.Type)
	if err != nil {
		return nil, err
	}

	if cfg.Projection.Precision > 0 {
		p.SetPrecision(cfg.Projection.Precision)
	}
	if cfg.Projection.SampleStep > 0 {
		p.SetSampleStep(cfg.Projection.SampleStep)
	}
	if cfg.Projection.NoFit {
		return p, nil
	}

	if bound, ok := fitBound(cfg, all); ok {
		p.Fit(bound, cfg.Projection.Width, cfg.Projection.Height)
	}

	return p, nil
}

func fitBound(cfg *config.Config, all []series.Series) (orb.Bound, bool) {
	if bg := cfg.Background; bg.Enabled {
		return orb.Bound{
			Min: orb.Point{bg.West, bg.South},
			Max: orb.Point{bg.East, bg.North},
		}, true
	}

	var bound orb.Bound
	found := false
	for _, s := range all {
		if s.Len() == 0 || len(s.Features().Features) == 0 {
			continue
		}
		b := s.Bound()
		if !found {
			bound, found = b, true
			continue
		}
		bound = bound.Union(b)
	}

	return bound, found
}

// BackgroundPatches returns the configured background, or nil when disabled.
func BackgroundPatches(bg config.Background) geo.MultiPolygon {
	if !bg.Enabled {
		return nil
	}
	return geo.Background(bg.North, bg.East, bg.South, bg.West)
}

// BackgroundLayer renders background patches as a single path.
func BackgroundLayer(mp geo.MultiPolygon, p projection.Projection) Layer {
	layer := Layer{Name: "background", Class: "background"}
	if mp.Empty() {
		return layer
	}

	d := p.Path(geojson.NewFeature(geo.MultiGeoPolygonToMultiPolygon(mp)))
	if d != "" {
		layer.Paths = []string{d}
	}
	return layer
}

// Document renders the configured background and every series into a
// minified SVG document.
func Document(cfg *config.Config, all []series.Series) ([]byte, error) {
	p, err := Projector(cfg, all)
	if err != nil {
		return nil, err
	}

	layers := make([]Layer, 0, len(all)+1)
	if bg := BackgroundPatches(cfg.Background); bg != nil {
		layers = append(layers, BackgroundLayer(bg, p))
	}
	for _, s := range all {
		layers = append(layers, Paths(s, p))
	}

	return SVG(cfg.Projection.Width, cfg.Projection.Height, cfg.Attribution, layers)
}

// Raster draws the configured background and every series onto a canvas
// sized by the projection config.
func Raster(cfg *config.Config, all []series.Series) (*Canvas, error) {
	p, err := Projector(cfg, all)
	if err != nil {
		return nil, err
	}

	c := NewCanvas(int(cfg.Projection.Width), int(cfg.Projection.Height), p)
	if bg := BackgroundPatches(cfg.Background); bg != nil {
		c.Background(bg)
	}
	for _, s := range all {
		s.Validate(p)
		c.Series(s)
	}

	return c, nil
}
