// Package series holds map objects (images, lines, polygons), binds raw
// data rows and GeoJSON to them and builds features for projection.
package series

import (
	"github.com/woozymasta/geomap/internal/projection"

	"github.com/paulmach/orb/geojson"
)

// Object is a map object that can describe itself as a GeoJSON feature.
type Object interface {
	// Feature returns nil when the object has nothing to draw.
	Feature() *geojson.Feature
	Validate(p projection.Projection)
}

// Feature builds the current feature of obj. It is never cached because
// coordinates may change between validation passes.
func Feature(obj Object) *geojson.Feature {
	if obj == nil {
		return nil
	}
	return obj.Feature()
}

// base carries what every map object has.
type base struct {
	ID         string
	Properties map[string]interface{}
}

func (b *base) newFeature(f *geojson.Feature) *geojson.Feature {
	if b.ID != "" {
		f.ID = b.ID
	}
	for k, v := range b.Properties {
		f.Properties[k] = v
	}
	return f
}

func (b *base) mergeProperties(props map[string]interface{}) {
	if len(props) == 0 {
		return
	}
	if b.Properties == nil {
		b.Properties = make(map[string]interface{}, len(props))
	}
	for k, v := range props {
		b.Properties[k] = v
	}
}
