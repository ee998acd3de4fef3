// Package render turns validated map series into SVG documents and
// raster images.
package render

import (
	"bytes"
	"fmt"
	"html"
	"text/template"

	"github.com/woozymasta/geomap/internal/projection"
	"github.com/woozymasta/geomap/internal/series"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMime = "image/svg+xml"

// Layer is the rendered path data of one series.
type Layer struct {
	Name  string
	Class string
	Paths []string
}

var svgTemplate = template.Must(template.New("svg").Funcs(template.FuncMap{"esc": html.EscapeString}).Parse(
	`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<style>
.background { fill: #d6ecf7; stroke: none; }
.polygon { fill: #c8c8c8; stroke: #ffffff; stroke-width: 0.5; }
.line { fill: none; stroke: #2f4f8f; stroke-width: 1.5; }
.image { fill: #c0392b; stroke: #ffffff; stroke-width: 1; }
</style>
{{- range .Layers}}
<g id="{{esc .Name}}" class="{{.Class}}">
{{- range .Paths}}
<path d="{{.}}"/>
{{- end}}
</g>
{{- end}}
{{- if .Attribution}}
<text x="4" y="{{.TextY}}" font-size="10" fill="#555">{{esc .Attribution}}</text>
{{- end}}
</svg>
`))

// Paths validates s against p and returns its path data. Objects
// without coordinates are skipped.
func Paths(s series.Series, p projection.Projection) Layer {
	s.Validate(p)

	layer := Layer{Name: s.Name()}
	switch s.(type) {
	case *series.PolygonSeries:
		layer.Class = "polygon"
	case *series.LineSeries:
		layer.Class = "line"
	case *series.ImageSeries:
		layer.Class = "image"
	}

	for _, obj := range s.Objects() {
		var d string
		switch o := obj.(type) {
		case *series.Polygon:
			d = o.Path()
		case *series.Line:
			d = o.Path()
		case *series.Image:
			d = p.Path(o.Feature())
		}
		if d != "" {
			layer.Paths = append(layer.Paths, d)
		}
	}

	return layer
}

// SVG renders layers into a minified SVG document.
func SVG(width, height float64, attribution string, layers []Layer) ([]byte, error) {
	var buf bytes.Buffer
	err := svgTemplate.Execute(&buf, struct {
		Width, Height, TextY float64
		Attribution          string
		Layers               []Layer
	}{
		Width:       width,
		Height:      height,
		TextY:       height - 4,
		Attribution: attribution,
		Layers:      layers,
	})
	if err != nil {
		return nil, fmt.Errorf("execute svg template: %w", err)
	}

	m := minify.New()
	m.AddFunc(svgMime, svg.Minify)

	out, err := m.Bytes(svgMime, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify svg: %w", err)
	}

	return out, nil
}
