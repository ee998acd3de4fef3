package series

import (
	"fmt"

	"github.com/woozymasta/geomap/internal/geo"
	"github.com/woozymasta/geomap/internal/projection"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// Series is a collection of map objects validated together.
type Series interface {
	Name() string
	Len() int
	Objects() []Object
	Validate(p projection.Projection)
	Features() *geojson.FeatureCollection
	Bound() orb.Bound
}

// Filter limits which GeoJSON features become objects.
// An empty Include admits everything not excluded.
type Filter struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

func (f Filter) Allows(id string) bool {
	for _, ex := range f.Exclude {
		if ex == id {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, in := range f.Include {
		if in == id {
			return true
		}
	}
	return false
}

// FeatureID returns the feature id, falling back to properties["id"].
func FeatureID(f *geojson.Feature) string {
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	if v, ok := f.Properties["id"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func copyProperties(props geojson.Properties) map[string]interface{} {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

func skipGeometry(series, id string, g orb.Geometry) {
	typ := "null"
	if g != nil {
		typ = g.GeoJSONType()
	}
	log.Warn().
		Str("series", series).
		Str("feature", id).
		Str("geometry", typ).
		Msg("Skipping feature: unsupported geometry type for series")
}

func validateAll(objects []Object, p projection.Projection) {
	for _, obj := range objects {
		obj.Validate(p)
	}
}

func collect(objects []Object) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, obj := range objects {
		if f := obj.Feature(); f != nil {
			fc.Append(f)
		}
	}
	return fc
}

func boundOf(objects []Object) orb.Bound {
	var bound orb.Bound
	first := true
	for _, obj := range objects {
		f := obj.Feature()
		if f == nil {
			continue
		}
		b := f.Geometry.Bound()
		if first {
			bound, first = b, false
			continue
		}
		bound = bound.Union(b)
	}
	return bound
}

// ImageSeries holds point-like objects.
type ImageSeries struct {
	SeriesName string
	Fields     DataFields
	Filter     Filter
	Images     []*Image

	byID map[string]*Image
}

// NewImageSeries returns an empty image series with default fields.
func NewImageSeries(name string) *ImageSeries {
	return &ImageSeries{SeriesName: name, Fields: DefaultDataFields(), byID: map[string]*Image{}}
}

// Name returns the series name.
func (s *ImageSeries) Name() string { return s.SeriesName }

// Len returns the number of images.
func (s *ImageSeries) Len() int { return len(s.Images) }

// Objects returns the images as objects.
func (s *ImageSeries) Objects() []Object {
	out := make([]Object, len(s.Images))
	for i, img := range s.Images {
		out[i] = img
	}
	return out
}

// Image returns the image with the given id.
func (s *ImageSeries) Image(id string) (*Image, bool) {
	img, ok := s.byID[id]
	return img, ok
}

func (s *ImageSeries) add(img *Image) {
	s.Images = append(s.Images, img)
	if img.ID != "" {
		if s.byID == nil {
			s.byID = map[string]*Image{}
		}
		s.byID[img.ID] = img
	}
}

// LoadGeoJSON creates images from Point and MultiPoint features.
func (s *ImageSeries) LoadGeoJSON(fc *geojson.FeatureCollection) {
	if fc == nil {
		return
	}

	for _, f := range fc.Features {
		id := FeatureID(f)
		if !s.Filter.Allows(id) {
			continue
		}

		switch g := f.Geometry.(type) {
		case orb.Point:
			img := &Image{base: base{ID: id, Properties: copyProperties(f.Properties)}}
			img.SetPoint(g)
			s.add(img)
		case orb.MultiPoint:
			for _, p := range g {
				img := &Image{base: base{ID: id, Properties: copyProperties(f.Properties)}}
				img.SetPoint(p)
				s.add(img)
			}
		default:
			skipGeometry(s.SeriesName, id, f.Geometry)
		}
	}
}

// Bind creates or updates images from raw data rows. A row with a
// multi-point field yields one image per point. Rows matching an
// existing id update that image.
func (s *ImageSeries) Bind(rows []map[string]interface{}) error {
	fields := s.Fields.WithDefaults()

	for i, row := range rows {
		id := rowID(row, fields.ID)
		props := fields.rowProperties(row)

		points, err := imagePoints(row, fields)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}

		if existing, ok := s.byID[id]; ok && id != "" {
			existing.mergeProperties(props)
			if len(points) > 0 {
				existing.SetGeoPoint(points[0])
			}
			continue
		}

		if len(points) == 0 {
			img := &Image{base: base{ID: id, Properties: props}}
			s.add(img)
			continue
		}
		for _, p := range points {
			img := &Image{base: base{ID: id, Properties: props}}
			img.SetGeoPoint(p)
			s.add(img)
		}
	}

	return nil
}

// imagePoints reads image positions with precedence multiGeoPoint,
// geoPoint, multiPoint, point.
func imagePoints(row map[string]interface{}, fields DataFields) (geo.Line, error) {
	if v, ok := row[fields.MultiGeoPoint]; ok && v != nil {
		return toGeoLine(v)
	}
	if v, ok := row[fields.GeoPoint]; ok && v != nil {
		p, err := toGeoPoint(v)
		if err != nil {
			return nil, err
		}
		return geo.Line{p}, nil
	}
	if v, ok := row[fields.MultiPoint]; ok && v != nil {
		points, err := toTuples(v)
		if err != nil {
			return nil, err
		}
		return geo.MultiPointToGeo(points), nil
	}
	if v, ok := row[fields.Point]; ok && v != nil {
		p, err := toTuple(v)
		if err != nil {
			return nil, err
		}
		return geo.Line{geo.PointToGeo(p)}, nil
	}
	return nil, nil
}

// Validate projects every image.
func (s *ImageSeries) Validate(p projection.Projection) { validateAll(s.Objects(), p) }

// Features returns the current features of all images.
func (s *ImageSeries) Features() *geojson.FeatureCollection { return collect(s.Objects()) }

// Bound returns the lon/lat bounding box of all images.
func (s *ImageSeries) Bound() orb.Bound { return boundOf(s.Objects()) }

// LineSeries holds line-like objects.
type LineSeries struct {
	SeriesName string
	Fields     DataFields
	Filter     Filter
	Lines      []*Line

	// ShortestDistance and Precision seed every new line.
	ShortestDistance bool
	Precision        float64

	byID map[string]*Line
}

// NewLineSeries returns an empty line series with default fields.
func NewLineSeries(name string) *LineSeries {
	return &LineSeries{
		SeriesName: name,
		Fields:     DefaultDataFields(),
		Precision:  projection.DefaultPrecision,
		byID:       map[string]*Line{},
	}
}

// Name returns the series name.
func (s *LineSeries) Name() string { return s.SeriesName }

// Len returns the number of lines.
func (s *LineSeries) Len() int { return len(s.Lines) }

// Objects returns the lines as objects.
func (s *LineSeries) Objects() []Object {
	out := make([]Object, len(s.Lines))
	for i, l := range s.Lines {
		out[i] = l
	}
	return out
}

// Line returns the line with the given id.
func (s *LineSeries) Line(id string) (*Line, bool) {
	l, ok := s.byID[id]
	return l, ok
}

func (s *LineSeries) newLine(id string, props map[string]interface{}) *Line {
	l := NewLine(id)
	l.ShortestDistance = s.ShortestDistance
	if s.Precision > 0 {
		l.Precision = s.Precision
	}
	l.Properties = props

	s.Lines = append(s.Lines, l)
	if id != "" {
		if s.byID == nil {
			s.byID = map[string]*Line{}
		}
		s.byID[id] = l
	}
	return l
}

// LoadGeoJSON creates lines from LineString and MultiLineString features.
func (s *LineSeries) LoadGeoJSON(fc *geojson.FeatureCollection) {
	if fc == nil {
		return
	}

	for _, f := range fc.Features {
		id := FeatureID(f)
		if !s.Filter.Allows(id) {
			continue
		}

		switch g := f.Geometry.(type) {
		case orb.LineString:
			s.newLine(id, copyProperties(f.Properties)).SetMultiLine(orb.MultiLineString{g})
		case orb.MultiLineString:
			s.newLine(id, copyProperties(f.Properties)).SetMultiLine(g)
		default:
			skipGeometry(s.SeriesName, id, f.Geometry)
		}
	}
}

// Bind creates or updates lines from raw data rows.
func (s *LineSeries) Bind(rows []map[string]interface{}) error {
	fields := s.Fields.WithDefaults()

	for i, row := range rows {
		id := rowID(row, fields.ID)
		props := fields.rowProperties(row)

		ml, err := lineCoordinates(row, fields)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}

		l, ok := s.byID[id]
		if ok && id != "" {
			l.mergeProperties(props)
		} else {
			l = s.newLine(id, props)
		}
		if ml != nil {
			l.SetMultiGeoLine(ml)
		}
	}

	return nil
}

// lineCoordinates reads line coordinates with precedence multiGeoLine,
// geoLine, multiLine, line.
func lineCoordinates(row map[string]interface{}, fields DataFields) (geo.MultiLine, error) {
	if v, ok := row[fields.MultiGeoLine]; ok && v != nil {
		return toMultiGeoLine(v)
	}
	if v, ok := row[fields.GeoLine]; ok && v != nil {
		line, err := toGeoLine(v)
		if err != nil {
			return nil, err
		}
		return geo.MultiLine{line}, nil
	}
	if v, ok := row[fields.MultiLine]; ok && v != nil {
		ml, err := toMultiLine(v)
		if err != nil {
			return nil, err
		}
		return geo.MultiLineToGeo(ml), nil
	}
	if v, ok := row[fields.Line]; ok && v != nil {
		points, err := toTuples(v)
		if err != nil {
			return nil, err
		}
		return geo.MultiLine{geo.MultiPointToGeo(points)}, nil
	}
	return nil, nil
}

// Connect sets the line to run through the images with the given ids.
func (s *LineSeries) Connect(lineID string, images *ImageSeries, imageIDs ...string) error {
	l, ok := s.byID[lineID]
	if !ok {
		l = s.newLine(lineID, nil)
	}

	l.ImagesToConnect = l.ImagesToConnect[:0]
	for _, id := range imageIDs {
		img, ok := images.Image(id)
		if !ok {
			return fmt.Errorf("connect %q: image %q not found", lineID, id)
		}
		l.ImagesToConnect = append(l.ImagesToConnect, img)
	}
	return nil
}

// Validate recomputes every line.
func (s *LineSeries) Validate(p projection.Projection) { validateAll(s.Objects(), p) }

// Features returns the current features of all lines.
func (s *LineSeries) Features() *geojson.FeatureCollection { return collect(s.Objects()) }

// Bound returns the lon/lat bounding box of all lines.
func (s *LineSeries) Bound() orb.Bound { return boundOf(s.Objects()) }

// PolygonSeries holds polygon-like objects.
type PolygonSeries struct {
	SeriesName string
	Fields     DataFields
	Filter     Filter
	Polygons   []*Polygon

	byID map[string]*Polygon
}

// NewPolygonSeries returns an empty polygon series with default fields.
func NewPolygonSeries(name string) *PolygonSeries {
	return &PolygonSeries{SeriesName: name, Fields: DefaultDataFields(), byID: map[string]*Polygon{}}
}

// Name returns the series name.
func (s *PolygonSeries) Name() string { return s.SeriesName }

// Len returns the number of polygons.
func (s *PolygonSeries) Len() int { return len(s.Polygons) }

// Objects returns the polygons as objects.
func (s *PolygonSeries) Objects() []Object {
	out := make([]Object, len(s.Polygons))
	for i, p := range s.Polygons {
		out[i] = p
	}
	return out
}

// Polygon returns the polygon with the given id.
func (s *PolygonSeries) Polygon(id string) (*Polygon, bool) {
	p, ok := s.byID[id]
	return p, ok
}

func (s *PolygonSeries) newPolygon(id string, props map[string]interface{}) *Polygon {
	p := NewPolygon(id)
	p.Properties = props

	s.Polygons = append(s.Polygons, p)
	if id != "" {
		if s.byID == nil {
			s.byID = map[string]*Polygon{}
		}
		s.byID[id] = p
	}
	return p
}

// LoadGeoJSON creates polygons from Polygon and MultiPolygon features.
func (s *PolygonSeries) LoadGeoJSON(fc *geojson.FeatureCollection) {
	if fc == nil {
		return
	}

	for _, f := range fc.Features {
		id := FeatureID(f)
		if !s.Filter.Allows(id) {
			continue
		}

		switch g := f.Geometry.(type) {
		case orb.Polygon:
			s.newPolygon(id, copyProperties(f.Properties)).SetMultiPolygon(orb.MultiPolygon{g})
		case orb.MultiPolygon:
			s.newPolygon(id, copyProperties(f.Properties)).SetMultiPolygon(g)
		default:
			skipGeometry(s.SeriesName, id, f.Geometry)
		}
	}
}

// Bind creates or updates polygons from raw data rows.
func (s *PolygonSeries) Bind(rows []map[string]interface{}) error {
	fields := s.Fields.WithDefaults()

	for i, row := range rows {
		id := rowID(row, fields.ID)
		props := fields.rowProperties(row)

		mp, err := polygonCoordinates(row, fields)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}

		p, ok := s.byID[id]
		if ok && id != "" {
			p.mergeProperties(props)
		} else {
			p = s.newPolygon(id, props)
		}
		if mp != nil {
			p.SetMultiGeoPolygon(mp)
		}
	}

	return nil
}

// polygonCoordinates reads polygon coordinates with precedence
// multiGeoPolygon, geoPolygon, multiPolygon, polygon.
func polygonCoordinates(row map[string]interface{}, fields DataFields) (geo.MultiPolygon, error) {
	if v, ok := row[fields.MultiGeoPolygon]; ok && v != nil {
		return toMultiGeoPolygon(v)
	}
	if v, ok := row[fields.GeoPolygon]; ok && v != nil {
		p, err := toGeoPolygon(v)
		if err != nil {
			return nil, err
		}
		return geo.MultiPolygon{p}, nil
	}
	if v, ok := row[fields.MultiPolygon]; ok && v != nil {
		mp, err := toMultiPolygon(v)
		if err != nil {
			return nil, err
		}
		return geo.MultiPolygonToGeo(mp), nil
	}
	if v, ok := row[fields.Polygon]; ok && v != nil {
		p, err := toPolygon(v)
		if err != nil {
			return nil, err
		}
		return geo.MultiPolygonToGeo(orb.MultiPolygon{p}), nil
	}
	return nil, nil
}

// Validate regenerates every polygon path.
func (s *PolygonSeries) Validate(p projection.Projection) { validateAll(s.Objects(), p) }

// Features returns the current features of all polygons.
func (s *PolygonSeries) Features() *geojson.FeatureCollection { return collect(s.Objects()) }

// Bound returns the lon/lat bounding box of all polygons.
func (s *PolygonSeries) Bound() orb.Bound { return boundOf(s.Objects()) }
