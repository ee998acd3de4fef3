// Package loader reads layer data (GeoJSON files, URLs, inline config
// and data rows) and builds map series from it.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/woozymasta/geomap/internal/config"
	"github.com/woozymasta/geomap/internal/metrics"
	"github.com/woozymasta/geomap/internal/series"

	"github.com/cenkalti/backoff/v4"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// Loader fetches layer sources.
type Loader struct {
	Client *http.Client

	// BaseDir resolves relative file sources.
	BaseDir string

	// MaxElapsed bounds retries of remote sources.
	MaxElapsed time.Duration
}

// New returns a loader using client for remote sources.
func New(client *http.Client, baseDir string) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Loader{Client: client, BaseDir: baseDir, MaxElapsed: 30 * time.Second}
}

// LoadAll builds one series per configured layer, in config order.
// Line connections are resolved after every layer is loaded.
func (l *Loader) LoadAll(ctx context.Context, cfg *config.Config) ([]series.Series, error) {
	out := make([]series.Series, 0, len(cfg.Layers))
	images := make(map[string]*series.ImageSeries)

	for _, layer := range cfg.Layers {
		s, err := l.Load(ctx, layer)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", layer.Name, err)
		}
		if is, ok := s.(*series.ImageSeries); ok {
			images[layer.Name] = is
		}
		out = append(out, s)
	}

	for i, layer := range cfg.Layers {
		ls, ok := out[i].(*series.LineSeries)
		if !ok {
			continue
		}
		for _, conn := range layer.Connect {
			if err := ls.Connect(conn.ID, images[conn.Layer], conn.Images...); err != nil {
				return nil, fmt.Errorf("layer %q: %w", layer.Name, err)
			}
		}
	}

	return out, nil
}

// Load builds the series of a single layer. Connections are not resolved.
func (l *Loader) Load(ctx context.Context, layer config.Layer) (series.Series, error) {
	var fc *geojson.FeatureCollection
	var err error

	// Inline Data Priority
	if layer.GeoJSONInline != nil {
		log.Debug().
			Str("layer", layer.Name).
			Msg("Using inline GeoJSON from config")
		fc, err = inlineGeoJSON(layer.GeoJSONInline)
	} else if layer.Source != "" {
		log.Info().
			Str("layer", layer.Name).
			Str("source", layer.Source).
			Msg("Loading layer source")
		fc, err = l.FetchGeoJSON(ctx, layer.Source)
	}
	if err != nil {
		return nil, err
	}

	fields := layer.Fields.WithDefaults()

	var s series.Series
	switch layer.Kind {
	case config.KindPolygon:
		ps := series.NewPolygonSeries(layer.Name)
		ps.Fields, ps.Filter = fields, layer.Filter
		ps.LoadGeoJSON(fc)
		err = ps.Bind(layer.Data)
		s = ps
	case config.KindLine:
		ls := series.NewLineSeries(layer.Name)
		ls.Fields, ls.Filter = fields, layer.Filter
		ls.ShortestDistance = layer.ShortestDistance
		if layer.Precision > 0 {
			ls.Precision = layer.Precision
		}
		ls.LoadGeoJSON(fc)
		err = ls.Bind(layer.Data)
		s = ls
	case config.KindImage:
		is := series.NewImageSeries(layer.Name)
		is.Fields, is.Filter = fields, layer.Filter
		is.LoadGeoJSON(fc)
		err = is.Bind(layer.Data)
		s = is
	default:
		return nil, fmt.Errorf("unknown layer kind %q", layer.Kind)
	}
	if err != nil {
		return nil, err
	}

	metrics.LayerObjects.WithLabelValues(layer.Name, layer.Kind).Set(float64(s.Len()))
	log.Debug().
		Str("layer", layer.Name).
		Str("kind", layer.Kind).
		Int("objects", s.Len()).
		Msg("Layer loaded")

	return s, nil
}

// FetchGeoJSON reads a feature collection from an http(s) URL or a file.
// Remote sources are retried with exponential backoff on network errors
// and 5xx responses.
func (l *Loader) FetchGeoJSON(ctx context.Context, source string) (*geojson.FeatureCollection, error) {
	var data []byte
	var err error

	origin := "file"
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		origin = "remote"
		data, err = l.fetchRemote(ctx, source)
	} else {
		path := source
		if !filepath.IsAbs(path) && l.BaseDir != "" {
			path = filepath.Join(l.BaseDir, path)
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		metrics.SourceFetches.WithLabelValues(origin, "error").Inc()
		return nil, err
	}
	metrics.SourceFetches.WithLabelValues(origin, "ok").Inc()

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}

	return fc, nil
}

func (l *Loader) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = l.MaxElapsed

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := l.Client.Do(req)
		if err != nil {
			log.Debug().Err(err).Str("url", url).Msg("Fetch failed, retrying")
			return err
		}
		// Explicitly ignore close error as it's a read-only operation
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	return body, nil
}

func inlineGeoJSON(raw map[string]interface{}) (*geojson.FeatureCollection, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("inline geojson: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("inline geojson: %w", err)
	}
	return fc, nil
}

// SaveGeoJSON marshals the feature collection and writes it to disk.
func SaveGeoJSON(path string, fc *geojson.FeatureCollection) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	return json.NewEncoder(f).Encode(fc)
}
