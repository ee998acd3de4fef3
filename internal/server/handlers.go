// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/geomap/internal/geo"
	"github.com/woozymasta/geomap/internal/series"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
)

const (
	etagCap = 32

	mimeJSON    = "application/json"
	mimeGeoJSON = "application/geo+json"
	mimeSVG     = "image/svg+xml"
	mimeWebP    = "image/webp"
)

// Routes registers the API handlers on mux.
func (s *ServerContext) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/layers", s.HandleLayersList)
	mux.HandleFunc("GET /api/layers/{file}", s.HandleLayer)
	mux.HandleFunc("GET /api/map.svg", s.HandleMapSVG)
	mux.HandleFunc("GET /api/map.webp", s.HandleMapWebP)
	mux.HandleFunc("GET /api/normalize", HandleNormalize)
	mux.HandleFunc("GET /api/circle", HandleCircle)
	mux.HandleFunc("GET /api/background", HandleBackground)
	mux.HandleFunc("GET /api/position", s.HandlePosition)
}

// HandleLayersList serves the JSON list of loaded layers.
func (s *ServerContext) HandleLayersList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Layers())
}

// HandleLayer serves a layer as GeoJSON or SVG depending on the extension.
func (s *ServerContext) HandleLayer(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")

	var name, contentType string
	switch {
	case strings.HasSuffix(file, ".geojson"):
		name, contentType = strings.TrimSuffix(file, ".geojson"), mimeGeoJSON
	case strings.HasSuffix(file, ".svg"):
		name, contentType = strings.TrimSuffix(file, ".svg"), mimeSVG
	default:
		http.NotFound(w, r)
		return
	}

	snap, err := s.layer(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	body := snap.svg
	if contentType == mimeGeoJSON {
		body = snap.geojson
	}
	serveBytes(w, r, body, contentType)
}

// HandleMapSVG serves the full rendered map.
func (s *ServerContext) HandleMapSVG(w http.ResponseWriter, r *http.Request) {
	serveBytes(w, r, s.mapSVG, mimeSVG)
}

// HandleMapWebP serves the full rasterized map.
func (s *ServerContext) HandleMapWebP(w http.ResponseWriter, r *http.Request) {
	serveBytes(w, r, s.mapWebP, mimeWebP)
}

// HandleNormalize serves the normalized form of ?lon=&lat=.
func HandleNormalize(w http.ResponseWriter, r *http.Request) {
	q, err := floatParams(r, "lon", "lat")
	if err != nil {
		badRequest(w, err)
		return
	}

	writeJSON(w, geo.Normalize(geo.Point{Longitude: q["lon"], Latitude: q["lat"]}))
}

// HandleCircle serves a geodesic circle as a GeoJSON feature.
func HandleCircle(w http.ResponseWriter, r *http.Request) {
	q, err := floatParams(r, "lon", "lat", "radius")
	if err != nil {
		badRequest(w, err)
		return
	}
	if q["radius"] < 0 {
		badRequest(w, errors.New("radius must not be negative"))
		return
	}

	mp := geo.Circle(q["lon"], q["lat"], q["radius"])
	writeGeoJSON(w, geojson.NewFeature(geo.MultiGeoPolygonToMultiPolygon(mp)))
}

// HandleBackground serves background patches for a box. An empty box
// yields a feature collection without features.
func HandleBackground(w http.ResponseWriter, r *http.Request) {
	q, err := floatParams(r, "north", "east", "south", "west")
	if err != nil {
		badRequest(w, err)
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, patch := range geo.Background(q["north"], q["east"], q["south"], q["west"]) {
		fc.Append(geojson.NewFeature(geo.MultiGeoPolygonToMultiPolygon(geo.MultiPolygon{patch})[0]))
	}
	writeGeoJSON(w, fc)
}

// HandlePosition serves the pixel position and angle at ?position= along
// the line ?index= of line layer ?layer=.
func (s *ServerContext) HandlePosition(w http.ResponseWriter, r *http.Request) {
	snap, err := s.layer(r.URL.Query().Get("layer"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	lines, ok := snap.series.(*series.LineSeries)
	if !ok {
		badRequest(w, fmt.Errorf("layer %q is not a line layer", snap.info.Name))
		return
	}

	index, err := cast.ToIntE(r.URL.Query().Get("index"))
	if err != nil || index < 0 || index >= len(lines.Lines) {
		badRequest(w, fmt.Errorf("index out of range [0, %d)", len(lines.Lines)))
		return
	}

	q, err := floatParams(r, "position")
	if err != nil {
		badRequest(w, err)
		return
	}

	writeJSON(w, lines.Lines[index].PositionToPoint(q["position"]))
}

func floatParams(r *http.Request, names ...string) (map[string]float64, error) {
	query := r.URL.Query()
	out := make(map[string]float64, len(names))
	for _, name := range names {
		raw := query.Get(name)
		if raw == "" {
			return nil, fmt.Errorf("missing parameter %q", name)
		}
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("parameter %q must be finite", name)
		}
		out[name] = v
	}
	return out, nil
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", mimeJSON)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeGeoJSON(w http.ResponseWriter, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode GeoJSON")
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mimeGeoJSON)
	_, _ = w.Write(data)
}

// serveBytes writes an in-memory document with a content hash ETag.
func serveBytes(w http.ResponseWriter, r *http.Request, body []byte, contentType string) {
	h := fnv.New64a()
	_, _ = h.Write(body)

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, int64(len(body)), 16)
	buf = append(buf, '-')
	buf = strconv.AppendUint(buf, h.Sum64(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}
