package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/woozymasta/geomap/internal/config"
	"github.com/woozymasta/geomap/internal/loader"
	"github.com/woozymasta/geomap/internal/logger"
	"github.com/woozymasta/geomap/internal/metrics"
	"github.com/woozymasta/geomap/internal/render"
	"github.com/woozymasta/geomap/internal/series"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string   `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Output     string   `short:"o" long:"out"         description:"Output file path" default:"map.svg"`
	Format     string   `short:"f" long:"format"      description:"Output format" choice:"svg" choice:"webp" default:"svg"`
	Quality    float32  `short:"q" long:"quality"     description:"WebP quality" default:"85"`
	Limit      []string `short:"l" long:"limit"       env:"LIMIT_NAMES" description:"Limit rendering to specific layer names"`
	TilesDir   string   `short:"t" long:"tiles-dir"   description:"Also slice the raster into a z/x/y.webp tile pyramid in this directory"`
	ZoomLimit  int      `short:"z" long:"zoom-limit"  env:"ZOOM_LIMIT" description:"Tiles zoom limit" default:"4"`
	TileSize   int      `short:"s" long:"tile-size"   description:"Tile size in pixels" default:"256"`
	GeoJSONDir string   `short:"g" long:"geojson-dir" description:"Also write each normalized layer as GeoJSON to this directory"`
	Force      bool     `short:"F" long:"force"       description:"Force overwrite of existing tiles"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	all, err := loader.New(nil, filepath.Dir(opts.ConfigFile)).LoadAll(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load layers")
	}

	cfg, all = limitLayers(cfg, all, opts.Limit)

	log.Info().
		Int("layers_total", len(cfg.Layers)).
		Str("format", opts.Format).
		Str("out", opts.Output).
		Msg("Starting render")

	if opts.GeoJSONDir != "" {
		for _, s := range all {
			path := filepath.Join(opts.GeoJSONDir, s.Name()+".geojson")
			if err := loader.SaveGeoJSON(path, s.Features()); err != nil {
				log.Error().Err(err).Str("layer", s.Name()).Msg("Failed to save GeoJSON")
			}
		}
	}

	start := time.Now()
	var out []byte
	switch opts.Format {
	case "webp":
		canvas, err := render.Raster(cfg, all)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to rasterize map")
		}
		var buf bytes.Buffer
		if err := canvas.EncodeWebP(&buf, opts.Quality); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode webp")
		}
		out = buf.Bytes()

		if opts.TilesDir != "" {
			if err := render.Tiles(canvas.Image(), opts.TilesDir, opts.ZoomLimit, opts.TileSize, opts.Quality, opts.Force); err != nil {
				log.Error().Err(err).Str("dir", opts.TilesDir).Msg("Failed to write some tiles")
			}
		}
	default:
		out, err = render.Document(cfg, all)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to render svg")
		}
	}
	metrics.ObserveRender(opts.Format, start)

	if err := os.WriteFile(opts.Output, out, 0644); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output")
	}

	log.Info().
		Str("path", opts.Output).
		Int("bytes", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Render finished successfully")
}

// limitLayers keeps only the named layers, in config order. Unknown names
// are logged and ignored.
func limitLayers(cfg *config.Config, all []series.Series, names []string) (*config.Config, []series.Series) {
	if len(names) == 0 {
		return cfg, all
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := cfg.Layer(name); !ok {
			log.Error().
				Str("name", name).
				Msg("Layer specified in --limit not found in configuration")
			continue
		}
		wanted[name] = true
	}

	limited := *cfg
	limited.Layers = nil
	kept := make([]series.Series, 0, len(wanted))
	for i, layer := range cfg.Layers {
		if wanted[layer.Name] {
			limited.Layers = append(limited.Layers, layer)
			kept = append(kept, all[i])
		}
	}

	return &limited, kept
}
