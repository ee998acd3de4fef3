package series

import (
	"github.com/woozymasta/geomap/internal/geo"
	"github.com/woozymasta/geomap/internal/projection"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Image is a point-like map object such as a marker.
type Image struct {
	base

	point    geo.Point
	hasPoint bool
	pixel    projection.Pixel
}

// NewImage returns an image at p.
func NewImage(id string, p geo.Point) *Image {
	img := &Image{base: base{ID: id}}
	img.SetGeoPoint(p)
	return img
}

// SetGeoPoint normalizes and assigns the image position.
func (i *Image) SetGeoPoint(p geo.Point) {
	i.point = geo.Normalize(p)
	i.hasPoint = true
}

// SetPoint assigns the position from an [x, y] tuple.
func (i *Image) SetPoint(p orb.Point) {
	i.SetGeoPoint(geo.PointToGeo(p))
}

// GeoPoint returns the position and whether one is set.
func (i *Image) GeoPoint() (geo.Point, bool) {
	return i.point, i.hasPoint
}

// Pixel returns the position computed by the last Validate.
func (i *Image) Pixel() projection.Pixel {
	return i.pixel
}

// Feature returns a Point feature, or nil without a position.
func (i *Image) Feature() *geojson.Feature {
	if !i.hasPoint {
		return nil
	}
	return i.newFeature(geojson.NewFeature(geo.GeoToPoint(i.point)))
}

// Validate projects the image position.
func (i *Image) Validate(p projection.Projection) {
	if !i.hasPoint {
		i.pixel = projection.Pixel{}
		return
	}
	i.pixel = p.Convert(i.point)
}
