package series

import (
	"math"
	"strings"

	"github.com/woozymasta/geomap/internal/projection"
)

// Polyline is a flat pixel multiline used by planar lines.
type Polyline [][]projection.Pixel

// Length returns the summed pixel length of all segments.
func (pl Polyline) Length() float64 {
	var total float64
	for _, segment := range pl {
		for i := 1; i < len(segment); i++ {
			total += pixelDistance(segment[i-1], segment[i])
		}
	}
	return total
}

// PositionToPoint returns the pixel at a fraction of the polyline length,
// with the direction angle in degrees. Position is clamped to [0, 1].
func (pl Polyline) PositionToPoint(position float64) projection.Position {
	if len(pl) == 0 || len(pl[0]) == 0 {
		return projection.Position{}
	}

	switch {
	case position < 0:
		position = 0
	case position > 1:
		position = 1
	}

	total := pl.Length()
	if total == 0 {
		return projection.Position{X: pl[0][0].X, Y: pl[0][0].Y}
	}

	target := position * total
	var walked float64
	var last projection.Position
	for _, segment := range pl {
		for i := 1; i < len(segment); i++ {
			a, b := segment[i-1], segment[i]
			d := pixelDistance(a, b)
			if d == 0 {
				continue
			}

			angle := math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
			last = projection.Position{X: b.X, Y: b.Y, Angle: angle}

			if walked+d >= target {
				t := (target - walked) / d
				return projection.Position{
					X:     a.X + (b.X-a.X)*t,
					Y:     a.Y + (b.Y-a.Y)*t,
					Angle: angle,
				}
			}
			walked += d
		}
	}

	return last
}

// Path returns SVG path data for the polyline.
func (pl Polyline) Path() string {
	var sb strings.Builder
	for _, segment := range pl {
		for i, px := range segment {
			if i == 0 {
				sb.WriteByte('M')
			} else {
				sb.WriteByte('L')
			}
			sb.WriteString(projection.FormatNumber(px.X))
			sb.WriteByte(',')
			sb.WriteString(projection.FormatNumber(px.Y))
		}
	}
	return sb.String()
}

func pixelDistance(a, b projection.Pixel) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
