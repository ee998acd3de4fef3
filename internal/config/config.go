// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/woozymasta/geomap/internal/projection"
	"github.com/woozymasta/geomap/internal/series"

	"gopkg.in/yaml.v3"
)

// Layer kinds.
const (
	KindPolygon = "polygon"
	KindLine    = "line"
	KindImage   = "image"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the root configuration file structure.
type Config struct {
	Attribution string     `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Projection  Projection `yaml:"projection" json:"projection"`
	Background  Background `yaml:"background,omitempty" json:"background"`
	Layers      []Layer    `yaml:"layers" json:"layers"`
}

// Projection configures the map projection and canvas.
type Projection struct {
	Type       projection.Kind `yaml:"type,omitempty" json:"type"`
	Width      float64         `yaml:"width,omitempty" json:"width"`
	Height     float64         `yaml:"height,omitempty" json:"height"`
	Precision  float64         `yaml:"precision,omitempty" json:"precision"`
	SampleStep float64         `yaml:"sample_step,omitempty" json:"sample_step,omitempty"`
	NoFit      bool            `yaml:"no_fit,omitempty" json:"no_fit,omitempty"`
}

// Background configures the box covered by background patches.
type Background struct {
	Enabled bool    `yaml:"enabled,omitempty" json:"enabled"`
	North   float64 `yaml:"north,omitempty" json:"north"`
	East    float64 `yaml:"east,omitempty" json:"east"`
	South   float64 `yaml:"south,omitempty" json:"south"`
	West    float64 `yaml:"west,omitempty" json:"west"`
}

// Connection links images of another layer with a line.
type Connection struct {
	ID     string   `yaml:"id" json:"id"`
	Layer  string   `yaml:"layer" json:"layer"`
	Images []string `yaml:"images" json:"images"`
}

// Layer represents a single map series configuration.
type Layer struct {
	series.Filter `yaml:",inline"`

	// defining GeoJSON directly in config.yaml
	GeoJSONInline map[string]interface{} `yaml:"geojson,omitempty" json:"-"`

	Name    string                   `yaml:"name" json:"name"`
	Kind    string                   `yaml:"kind" json:"kind"`
	Source  string                   `yaml:"source,omitempty" json:"-"`
	Data    []map[string]interface{} `yaml:"data,omitempty" json:"-"`
	Fields  series.DataFields        `yaml:"fields,omitempty" json:"-"`
	Connect []Connection             `yaml:"connect,omitempty" json:"-"`

	Precision        float64 `yaml:"precision,omitempty" json:"precision,omitempty"`
	ShortestDistance bool    `yaml:"shortest_distance,omitempty" json:"shortest_distance,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Projection.Type == "" {
		c.Projection.Type = projection.Mercator
	}
	if c.Projection.Width <= 0 {
		c.Projection.Width = 960
	}
	if c.Projection.Height <= 0 {
		c.Projection.Height = 500
	}
	if c.Projection.Precision <= 0 {
		c.Projection.Precision = projection.DefaultPrecision
	}

	if c.Background.Enabled && c.Background == (Background{Enabled: true}) {
		c.Background = Background{Enabled: true, North: 90, East: 180, South: -90, West: -180}
	}
}

// Validate checks layer names, kinds and connections.
func (c *Config) Validate() error {
	if _, err := projection.New(c.Projection.Type); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	kinds := make(map[string]string, len(c.Layers))
	for i, layer := range c.Layers {
		if layer.Name == "" {
			return fmt.Errorf("%w: layer %d has no name", ErrInvalidConfig, i)
		}
		if _, dup := kinds[layer.Name]; dup {
			return fmt.Errorf("%w: duplicate layer %q", ErrInvalidConfig, layer.Name)
		}

		switch layer.Kind {
		case KindPolygon, KindLine, KindImage:
		default:
			return fmt.Errorf("%w: layer %q has unknown kind %q", ErrInvalidConfig, layer.Name, layer.Kind)
		}
		kinds[layer.Name] = layer.Kind
	}

	for _, layer := range c.Layers {
		if len(layer.Connect) > 0 && layer.Kind != KindLine {
			return fmt.Errorf("%w: layer %q: only line layers connect images", ErrInvalidConfig, layer.Name)
		}
		for _, conn := range layer.Connect {
			if kinds[conn.Layer] != KindImage {
				return fmt.Errorf("%w: layer %q: connection %q needs an image layer, got %q",
					ErrInvalidConfig, layer.Name, conn.ID, conn.Layer)
			}
		}
	}

	return nil
}

// Layer returns the layer with the given name.
func (c *Config) Layer(name string) (Layer, bool) {
	for _, layer := range c.Layers {
		if layer.Name == name {
			return layer, true
		}
	}
	return Layer{}, false
}
