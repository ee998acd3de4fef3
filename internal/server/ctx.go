package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/woozymasta/geomap/internal/config"
	"github.com/woozymasta/geomap/internal/loader"
	"github.com/woozymasta/geomap/internal/metrics"
	"github.com/woozymasta/geomap/internal/projection"
	"github.com/woozymasta/geomap/internal/render"
	"github.com/woozymasta/geomap/internal/series"

	"github.com/rs/zerolog/log"
)

// ErrLayerNotFound is returned for an unknown layer name.
var ErrLayerNotFound = errors.New("layer not found")

// LayerInfo describes a served layer.
type LayerInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Objects int    `json:"objects"`
}

type snapshot struct {
	info    LayerInfo
	series  series.Series
	geojson []byte
	svg     []byte
}

// ServerContext holds dependencies for request handlers. Everything is
// built once by NewServerContext and only read afterwards.
type ServerContext struct {
	Config    *config.Config
	Projector *projection.Projector

	layers  map[string]*snapshot
	order   []LayerInfo
	mapSVG  []byte
	mapWebP []byte
}

// NewServerContext loads every configured layer, fits the projection and
// renders the documents served by the API.
func NewServerContext(ctx context.Context, cfg *config.Config, l *loader.Loader) (*ServerContext, error) {
	log.Info().Int("config_layers_count", len(cfg.Layers)).Msg("Initializing server context")

	all, err := l.LoadAll(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load layers: %w", err)
	}

	return newServerContext(cfg, all)
}

func newServerContext(cfg *config.Config, all []series.Series) (*ServerContext, error) {
	p, err := render.Projector(cfg, all)
	if err != nil {
		return nil, err
	}

	s := &ServerContext{
		Config:    cfg,
		Projector: p,
		layers:    make(map[string]*snapshot, len(all)),
	}

	start := time.Now()
	svgLayers := make([]render.Layer, 0, len(all)+1)
	if bg := render.BackgroundPatches(cfg.Background); bg != nil {
		svgLayers = append(svgLayers, render.BackgroundLayer(bg, p))
	}

	for i, ser := range all {
		info := LayerInfo{Name: ser.Name(), Kind: cfg.Layers[i].Kind, Objects: ser.Len()}

		layer := render.Paths(ser, p)
		svgLayers = append(svgLayers, layer)

		doc, err := render.SVG(cfg.Projection.Width, cfg.Projection.Height, cfg.Attribution, []render.Layer{layer})
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", info.Name, err)
		}

		features, err := json.Marshal(ser.Features())
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", info.Name, err)
		}

		s.layers[info.Name] = &snapshot{info: info, series: ser, geojson: features, svg: doc}
		s.order = append(s.order, info)

		log.Debug().
			Str("layer", info.Name).
			Str("kind", info.Kind).
			Int("objects", info.Objects).
			Msg("Layer validated and added to context")
	}

	if s.mapSVG, err = render.SVG(cfg.Projection.Width, cfg.Projection.Height, cfg.Attribution, svgLayers); err != nil {
		return nil, err
	}
	metrics.ObserveRender("svg", start)

	start = time.Now()
	canvas, err := render.Raster(cfg, all)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := canvas.EncodeWebP(&buf, render.TileQuality); err != nil {
		return nil, fmt.Errorf("encode map webp: %w", err)
	}
	s.mapWebP = buf.Bytes()
	metrics.ObserveRender("webp", start)

	sort.SliceStable(s.order, func(i, j int) bool { return s.order[i].Name < s.order[j].Name })

	log.Info().
		Int("layers_count", len(s.order)).
		Str("projection", string(p.Kind())).
		Msg("Server context initialized successfully")

	return s, nil
}

// Layers returns the served layers sorted by name.
func (s *ServerContext) Layers() []LayerInfo {
	return s.order
}

func (s *ServerContext) layer(name string) (*snapshot, error) {
	snap, ok := s.layers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, name)
	}
	return snap, nil
}
