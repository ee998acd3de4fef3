package render

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/woozymasta/geomap/internal/geo"
	"github.com/woozymasta/geomap/internal/projection"
	"github.com/woozymasta/geomap/internal/series"

	"github.com/chai2010/webp"
	"golang.org/x/image/vector"
)

var (
	backgroundColor = color.RGBA{R: 0xd6, G: 0xec, B: 0xf7, A: 0xff}
	polygonColor    = color.RGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	lineColor       = color.RGBA{R: 0x2f, G: 0x4f, B: 0x8f, A: 0xff}
	imageColor      = color.RGBA{R: 0xc0, G: 0x39, B: 0x2b, A: 0xff}
)

const (
	lineWidth   = 1.5
	imageRadius = projection.PointRadius
)

// Canvas rasterizes projected geometry.
type Canvas struct {
	img  *image.RGBA
	r    *vector.Rasterizer
	proj projection.Projection
}

// NewCanvas returns a transparent canvas of the given size.
func NewCanvas(width, height int, p projection.Projection) *Canvas {
	return &Canvas{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		r:    vector.NewRasterizer(width, height),
		proj: p,
	}
}

// Image returns the canvas image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Background fills the background patches.
func (c *Canvas) Background(mp geo.MultiPolygon) {
	c.reset()
	for _, polygon := range mp {
		c.ring(polygon.Surface)
	}
	c.fill(backgroundColor)
}

// Series draws every object of s with the color of its kind.
// s must have been validated against the canvas projection.
func (c *Canvas) Series(s series.Series) {
	for _, obj := range s.Objects() {
		switch o := obj.(type) {
		case *series.Polygon:
			c.reset()
			for _, polygon := range o.MultiGeoPolygon() {
				c.ring(polygon.Surface)
				c.ring(polygon.Hole)
			}
			c.fill(polygonColor)
		case *series.Line:
			c.reset()
			if pl := o.Polyline(); pl != nil {
				for _, segment := range pl {
					c.stroke(segment)
				}
			} else {
				for _, segment := range o.MultiGeoLine() {
					for _, run := range c.proj.Project(segment) {
						c.stroke(run)
					}
				}
			}
			c.fill(lineColor)
		case *series.Image:
			if _, ok := o.GeoPoint(); !ok {
				continue
			}
			c.reset()
			c.dot(o.Pixel(), imageRadius)
			c.fill(imageColor)
		}
	}
}

// EncodeWebP writes the canvas as lossy WebP.
func (c *Canvas) EncodeWebP(w io.Writer, quality float32) error {
	return webp.Encode(w, c.img, &webp.Options{Lossless: false, Quality: quality})
}

func (c *Canvas) reset() {
	b := c.img.Bounds()
	c.r.Reset(b.Dx(), b.Dy())
}

func (c *Canvas) fill(col color.Color) {
	c.r.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

// ring adds a closed outline. A hole cuts the surface only when it winds
// opposite to it, as GeoJSON rings do.
func (c *Canvas) ring(line geo.Line) {
	if len(line) < 3 {
		return
	}

	for i, pt := range line {
		px := c.proj.Convert(pt)
		if i == 0 {
			c.r.MoveTo(float32(px.X), float32(px.Y))
			continue
		}
		c.r.LineTo(float32(px.X), float32(px.Y))
	}
	c.r.ClosePath()
}

// stroke adds each segment as a thin quad.
func (c *Canvas) stroke(pixels []projection.Pixel) {
	half := lineWidth / 2
	for i := 1; i < len(pixels); i++ {
		a, b := pixels[i-1], pixels[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half

		c.r.MoveTo(float32(a.X+nx), float32(a.Y+ny))
		c.r.LineTo(float32(b.X+nx), float32(b.Y+ny))
		c.r.LineTo(float32(b.X-nx), float32(b.Y-ny))
		c.r.LineTo(float32(a.X-nx), float32(a.Y-ny))
		c.r.ClosePath()
	}
}

// dot adds a 16-gon approximating a circle.
func (c *Canvas) dot(center projection.Pixel, radius float64) {
	const sides = 16
	for i := 0; i <= sides; i++ {
		a := float64(i) * 2 * math.Pi / sides
		x := float32(center.X + radius*math.Cos(a))
		y := float32(center.Y + radius*math.Sin(a))
		if i == 0 {
			c.r.MoveTo(x, y)
			continue
		}
		c.r.LineTo(x, y)
	}
	c.r.ClosePath()
}
