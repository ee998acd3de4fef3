package series

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/woozymasta/geomap/internal/geo"

	"github.com/paulmach/orb"
	"github.com/spf13/cast"
)

// DataFields names the row keys coordinates are read from.
type DataFields struct {
	ID string `yaml:"id,omitempty"`

	Point         string `yaml:"point,omitempty"`
	MultiPoint    string `yaml:"multi_point,omitempty"`
	GeoPoint      string `yaml:"geo_point,omitempty"`
	MultiGeoPoint string `yaml:"multi_geo_point,omitempty"`

	Line         string `yaml:"line,omitempty"`
	MultiLine    string `yaml:"multi_line,omitempty"`
	GeoLine      string `yaml:"geo_line,omitempty"`
	MultiGeoLine string `yaml:"multi_geo_line,omitempty"`

	Polygon         string `yaml:"polygon,omitempty"`
	MultiPolygon    string `yaml:"multi_polygon,omitempty"`
	GeoPolygon      string `yaml:"geo_polygon,omitempty"`
	MultiGeoPolygon string `yaml:"multi_geo_polygon,omitempty"`
}

// DefaultDataFields returns the standard field names.
func DefaultDataFields() DataFields {
	return DataFields{
		ID: "id",

		Point:         "point",
		MultiPoint:    "multiPoint",
		GeoPoint:      "geoPoint",
		MultiGeoPoint: "multiGeoPoint",

		Line:         "line",
		MultiLine:    "multiLine",
		GeoLine:      "geoLine",
		MultiGeoLine: "multiGeoLine",

		Polygon:         "polygon",
		MultiPolygon:    "multiPolygon",
		GeoPolygon:      "geoPolygon",
		MultiGeoPolygon: "multiGeoPolygon",
	}
}

// WithDefaults fills empty field names from DefaultDataFields.
func (f DataFields) WithDefaults() DataFields {
	d := DefaultDataFields()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}

	fill(&f.ID, d.ID)
	fill(&f.Point, d.Point)
	fill(&f.MultiPoint, d.MultiPoint)
	fill(&f.GeoPoint, d.GeoPoint)
	fill(&f.MultiGeoPoint, d.MultiGeoPoint)
	fill(&f.Line, d.Line)
	fill(&f.MultiLine, d.MultiLine)
	fill(&f.GeoLine, d.GeoLine)
	fill(&f.MultiGeoLine, d.MultiGeoLine)
	fill(&f.Polygon, d.Polygon)
	fill(&f.MultiPolygon, d.MultiPolygon)
	fill(&f.GeoPolygon, d.GeoPolygon)
	fill(&f.MultiGeoPolygon, d.MultiGeoPolygon)

	return f
}

// coordinateKeys lists the row keys that hold coordinates.
func (f DataFields) coordinateKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	for _, k := range []string{
		f.Point, f.MultiPoint, f.GeoPoint, f.MultiGeoPoint,
		f.Line, f.MultiLine, f.GeoLine, f.MultiGeoLine,
		f.Polygon, f.MultiPolygon, f.GeoPolygon, f.MultiGeoPolygon,
	} {
		keys[k] = struct{}{}
	}
	return keys
}

// rowProperties returns the non-coordinate values of a row.
func (f DataFields) rowProperties(row map[string]interface{}) map[string]interface{} {
	skip := f.coordinateKeys()
	props := make(map[string]interface{}, len(row))
	for k, v := range row {
		if _, ok := skip[k]; ok || k == f.ID {
			continue
		}
		props[k] = v
	}
	return props
}

func rowID(row map[string]interface{}, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// toSlice accepts []interface{} as decoded from YAML or JSON and any typed
// slice or array, such as orb.LineString or [][]float64.
func toSlice(v interface{}) ([]interface{}, error) {
	if s, err := cast.ToSliceE(v); err == nil {
		return s, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("unable to cast %#v of type %T to []interface{}", v, v)
}

func toTuple(v interface{}) (orb.Point, error) {
	switch t := v.(type) {
	case orb.Point:
		return t, nil
	case [2]float64:
		return orb.Point(t), nil
	case []float64:
		if len(t) < 2 {
			return orb.Point{}, fmt.Errorf("point: need 2 coordinates, got %d", len(t))
		}
		return orb.Point{t[0], t[1]}, nil
	}

	s, err := toSlice(v)
	if err != nil {
		return orb.Point{}, fmt.Errorf("point: %w", err)
	}
	if len(s) < 2 {
		return orb.Point{}, fmt.Errorf("point: need 2 coordinates, got %d", len(s))
	}

	x, err := cast.ToFloat64E(s[0])
	if err != nil {
		return orb.Point{}, fmt.Errorf("point x: %w", err)
	}
	y, err := cast.ToFloat64E(s[1])
	if err != nil {
		return orb.Point{}, fmt.Errorf("point y: %w", err)
	}

	return orb.Point{x, y}, nil
}

func toTuples(v interface{}) ([]orb.Point, error) {
	switch t := v.(type) {
	case []orb.Point:
		return t, nil
	case orb.LineString:
		return t, nil
	case orb.MultiPoint:
		return t, nil
	case orb.Ring:
		return t, nil
	}

	s, err := toSlice(v)
	if err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}

	out := make([]orb.Point, 0, len(s))
	for _, item := range s {
		p, err := toTuple(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func toMultiLine(v interface{}) (orb.MultiLineString, error) {
	switch t := v.(type) {
	case orb.MultiLineString:
		return t, nil
	case []orb.LineString:
		return t, nil
	case orb.Polygon:
		out := make(orb.MultiLineString, len(t))
		for i, r := range t {
			out[i] = orb.LineString(r)
		}
		return out, nil
	}

	s, err := toSlice(v)
	if err != nil {
		return nil, fmt.Errorf("multi line: %w", err)
	}

	out := make(orb.MultiLineString, 0, len(s))
	for _, item := range s {
		points, err := toTuples(item)
		if err != nil {
			return nil, err
		}
		out = append(out, orb.LineString(points))
	}
	return out, nil
}

// toPolygon reads [surface] or [surface, hole].
func toPolygon(v interface{}) (orb.Polygon, error) {
	rings, err := toMultiLine(v)
	if err != nil {
		return nil, err
	}
	if len(rings) > 2 {
		rings = rings[:2]
	}

	out := make(orb.Polygon, len(rings))
	for i, r := range rings {
		out[i] = orb.Ring(r)
	}
	return out, nil
}

func toMultiPolygon(v interface{}) (orb.MultiPolygon, error) {
	s, err := toSlice(v)
	if err != nil {
		return nil, fmt.Errorf("multi polygon: %w", err)
	}

	out := make(orb.MultiPolygon, 0, len(s))
	for _, item := range s {
		p, err := toPolygon(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func toGeoPoint(v interface{}) (geo.Point, error) {
	switch t := v.(type) {
	case geo.Point:
		return t, nil
	case *geo.Point:
		if t == nil {
			return geo.Point{}, errors.New("geo point: nil")
		}
		return *t, nil
	}

	m, err := cast.ToStringMapE(v)
	if err != nil {
		return geo.Point{}, fmt.Errorf("geo point: %w", err)
	}

	lon, err := geoCoordinate(m, "longitude")
	if err != nil {
		return geo.Point{}, err
	}
	lat, err := geoCoordinate(m, "latitude")
	if err != nil {
		return geo.Point{}, err
	}

	return geo.Point{Longitude: lon, Latitude: lat}, nil
}

func geoCoordinate(m map[string]interface{}, key string) (float64, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("geo point: missing %s", key)
	}

	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("geo point %s: %w", key, err)
	}
	return v, nil
}

func toGeoLine(v interface{}) (geo.Line, error) {
	switch t := v.(type) {
	case geo.Line:
		return t, nil
	case []geo.Point:
		return t, nil
	}

	s, err := toSlice(v)
	if err != nil {
		return nil, fmt.Errorf("geo line: %w", err)
	}

	out := make(geo.Line, 0, len(s))
	for _, item := range s {
		p, err := toGeoPoint(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func toMultiGeoLine(v interface{}) (geo.MultiLine, error) {
	switch t := v.(type) {
	case geo.MultiLine:
		return t, nil
	case []geo.Line:
		return t, nil
	}

	s, err := toSlice(v)
	if err != nil {
		return nil, fmt.Errorf("multi geo line: %w", err)
	}

	out := make(geo.MultiLine, 0, len(s))
	for _, item := range s {
		line, err := toGeoLine(item)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

// toGeoPolygon reads [surface] or [surface, hole] of geo points.
func toGeoPolygon(v interface{}) (geo.Polygon, error) {
	if p, ok := v.(geo.Polygon); ok {
		return p, nil
	}

	rings, err := toMultiGeoLine(v)
	if err != nil {
		return geo.Polygon{}, err
	}

	var p geo.Polygon
	if len(rings) > 0 {
		p.Surface = rings[0]
	}
	if len(rings) > 1 {
		p.Hole = rings[1]
	}
	return p, nil
}

func toMultiGeoPolygon(v interface{}) (geo.MultiPolygon, error) {
	switch t := v.(type) {
	case geo.MultiPolygon:
		return t, nil
	case []geo.Polygon:
		return t, nil
	}

	s, err := toSlice(v)
	if err != nil {
		return nil, fmt.Errorf("multi geo polygon: %w", err)
	}

	out := make(geo.MultiPolygon, 0, len(s))
	for _, item := range s {
		p, err := toGeoPolygon(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
