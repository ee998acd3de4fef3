package projection

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// MaxLatitude is the Web Mercator latitude limit. Points beyond it are
// clamped, otherwise the projected Y runs off to infinity at the poles.
const MaxLatitude = 85.05112878

// rawProjection maps longitude/latitude in radians to a unit plane and back.
type rawProjection interface {
	forward(lambda, phi float64) (x, y float64)
	inverse(x, y float64) (lambda, phi float64)
}

// mercator is the spherical Mercator projection on a unit sphere.
type mercator struct{}

func (mercator) forward(lambda, phi float64) (x, y float64) {
	maxPhi := MaxLatitude * degToRad
	if phi > maxPhi {
		phi = maxPhi
	} else if phi < -maxPhi {
		phi = -maxPhi
	}

	// orb works in meters on a sphere of orb.EarthRadius
	m := project.WGS84.ToMercator(orb.Point{lambda * radToDeg, phi * radToDeg})
	return m[0] / orb.EarthRadius, m[1] / orb.EarthRadius
}

func (mercator) inverse(x, y float64) (lambda, phi float64) {
	// Inverse Mercator projection
	phi = (2.0 * math.Atan(math.Exp(y))) - (math.Pi * 0.5)
	return x, phi
}

// miller is the Miller cylindrical projection.
type miller struct{}

func (miller) forward(lambda, phi float64) (x, y float64) {
	return lambda, 1.25 * math.Log(math.Tan(math.Pi/4+0.4*phi))
}

func (miller) inverse(x, y float64) (lambda, phi float64) {
	return x, 2.5*math.Atan(math.Exp(0.8*y)) - 0.625*math.Pi
}

// equirectangular maps degrees straight onto the plane.
type equirectangular struct{}

func (equirectangular) forward(lambda, phi float64) (x, y float64) {
	return lambda, phi
}

func (equirectangular) inverse(x, y float64) (lambda, phi float64) {
	return x, y
}
