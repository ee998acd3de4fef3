package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/woozymasta/geomap/internal/geo"
	"github.com/woozymasta/geomap/internal/series"

	"github.com/jessevdk/go-flags"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input   string   `short:"i" long:"in"      description:"Input GeoJSON file path. Reads from stdin if empty"`
	Output  string   `short:"o" long:"out"     description:"Output file path. Writes to stdout if empty"`
	Format  string   `short:"f" long:"format"  description:"Output format" choice:"json" choice:"yaml" choice:"wkt" default:"json"`
	Include []string `short:"I" long:"include" description:"Keep only features with these ids"`
	Exclude []string `short:"E" long:"exclude" description:"Drop features with these ids"`
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

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	fc, err := geojson.UnmarshalFeatureCollection(inputData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding GeoJSON: %v\n", err)
		os.Exit(1)
	}

	fc = normalize(fc, series.Filter{Include: opts.Include, Exclude: opts.Exclude})

	outputData, err := encode(fc, opts.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d features to %s (format: %s)\n", len(fc.Features), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}

// normalize returns the features admitted by filter with every coordinate
// brought into canonical longitude/latitude ranges.
func normalize(fc *geojson.FeatureCollection, filter series.Filter) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		if !filter.Allows(series.FeatureID(f)) {
			continue
		}

		nf := geojson.NewFeature(geo.NormalizeGeometry(f.Geometry))
		nf.ID = f.ID
		nf.Properties = f.Properties.Clone()
		out.Append(nf)
	}
	return out
}

func encode(fc *geojson.FeatureCollection, format string) ([]byte, error) {
	switch format {
	case "wkt":
		lines := make([]string, 0, len(fc.Features))
		for _, f := range fc.Features {
			if f.Geometry == nil {
				continue
			}
			lines = append(lines, wkt.MarshalString(f.Geometry))
		}
		return []byte(strings.Join(lines, "\n")), nil
	case "yaml":
		// geojson types carry json tags only; go through a generic tree
		data, err := json.Marshal(fc)
		if err != nil {
			return nil, err
		}
		var tree interface{}
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, err
		}
		return yaml.Marshal(tree)
	default:
		return json.MarshalIndent(fc, "", "  ")
	}
}
