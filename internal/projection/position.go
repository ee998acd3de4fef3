package projection

import (
	"math"

	"github.com/woozymasta/geomap/internal/geo"
)

// tangentDelta is the fraction of a segment used to estimate the tangent.
const tangentDelta = 0.01

// PositionToPoint returns the pixel at a fraction of the geodesic length of
// ml, with the tangent angle in degrees. Position is clamped to [0, 1].
// Gaps between segments do not count toward the length.
func (p *Projector) PositionToPoint(ml geo.MultiLine, position float64) Position {
	if ml.Empty() {
		return Position{}
	}
	position = clamp01(position)

	var total float64
	for _, line := range ml {
		for i := 1; i < len(line); i++ {
			total += geo.Distance(line[i-1], line[i])
		}
	}

	if total == 0 {
		px := p.Convert(geo.Normalize(ml[0][0]))
		return Position{X: px.X, Y: px.Y}
	}

	target := position * total
	var walked float64
	var lastA, lastB geo.Point
	for _, line := range ml {
		for i := 1; i < len(line); i++ {
			a, b := line[i-1], line[i]
			d := geo.Distance(a, b)
			if d == 0 {
				continue
			}
			lastA, lastB = a, b

			if walked+d >= target {
				return p.positionOnSegment(a, b, (target-walked)/d)
			}
			walked += d
		}
	}

	// rounding left target just past the end
	return p.positionOnSegment(lastA, lastB, 1)
}

func (p *Projector) positionOnSegment(a, b geo.Point, t float64) Position {
	t = clamp01(t)
	px := p.Convert(geo.Normalize(geo.Interpolate(a, b, t)))

	before := p.Convert(geo.Normalize(geo.Interpolate(a, b, clamp01(t-tangentDelta))))
	after := p.Convert(geo.Normalize(geo.Interpolate(a, b, clamp01(t+tangentDelta))))

	return Position{
		X:     px.X,
		Y:     px.Y,
		Angle: math.Atan2(after.Y-before.Y, after.X-before.X) * radToDeg,
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
