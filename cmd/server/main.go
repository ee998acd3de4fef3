package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/woozymasta/geomap/internal/config"
	"github.com/woozymasta/geomap/internal/loader"
	"github.com/woozymasta/geomap/internal/logger"
	"github.com/woozymasta/geomap/internal/metrics"
	"github.com/woozymasta/geomap/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string        `short:"c" long:"config"       env:"CONFIG_FILE"    description:"Path to configuration file"        default:"config.yaml"`
	Addr        string        `short:"a" long:"addr"         env:"LISTEN_ADDRESS" description:"Address to listen on"              default:"0.0.0.0"`
	Port        int           `short:"p" long:"port"         env:"LISTEN_PORT"    description:"Port to listen on"                 default:"8080"`
	LoadTimeout time.Duration `short:"t" long:"load-timeout" env:"LOAD_TIMEOUT"   description:"Timeout for loading layer sources" default:"1m"`
	NoMetrics   bool          `long:"no-metrics"             env:"NO_METRICS"     description:"Disable the /metrics endpoint"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.LoadTimeout)
	srvCtx, err := server.NewServerContext(ctx, cfg, loader.New(nil, filepath.Dir(opts.ConfigFile)))
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build map layers")
	}

	// Routes
	mux := http.NewServeMux()
	srvCtx.Routes(mux)
	if !opts.NoMetrics {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	handler := server.RequestLogger(metrics.Middleware(mux))

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("layers_loaded", len(srvCtx.Layers())).
		Str("projection", string(cfg.Projection.Type)).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
