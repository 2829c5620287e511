// Package hypergeom holds the trigonometry of the three constant curvature models
// a fundamental domain is drawn in: the Poincaré disc, the euclidean plane and the
// stereographically projected sphere.
package hypergeom

import (
	"math"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/jbeda/geom"
)

// Acoth returns the inverse hyperbolic cotangent of x, |x| > 1.
func Acoth(x float64) float64 {
	return 0.5 * math.Log((x+1)/(x-1))
}

// Acot returns the inverse cotangent of x in (0, pi).
func Acot(x float64) float64 {
	if x == 0 {
		return math.Pi / 2
	}
	a := math.Atan(1 / x)
	if a < 0 {
		a += math.Pi
	}
	return a
}

// ToPolar returns the distance from the origin and the angle of p.
func ToPolar(p geom.Coord) (r, phi float64) {
	return p.Magnitude(), math.Atan2(p.Y, p.X)
}

// ToCartesian is the inverse of ToPolar.
func ToCartesian(r, phi float64) geom.Coord {
	return geom.Coord{
		X: r * math.Cos(phi),
		Y: r * math.Sin(phi),
	}
}

// CosR returns cosh(r), cos(r) or 1 for the hyperbolic, spherical or euclidean geometry.
func CosR(g go2ds.Geometry, r float64) float64 {
	switch g {
	case go2ds.Hyperbolic:
		return math.Cosh(r)
	case go2ds.Spherical:
		return math.Cos(r)
	}
	return 1
}

// CornerDistance returns the hypotenuse of the right triangle with leg r and angle beta at the origin.
func CornerDistance(g go2ds.Geometry, r, beta float64) float64 {
	cosB := math.Cos(beta)
	switch g {
	case go2ds.Hyperbolic:
		return math.Atanh(math.Tanh(r) / cosB)
	case go2ds.Spherical:
		return math.Atan(math.Tan(r) / cosB)
	}
	return r / cosB
}

// ModelRadius maps a geodesic distance from the origin onto the distance from the origin in the model:
// tanh(d/2) in the Poincaré disc, tan(d/2) under stereographic projection, d in the plane.
func ModelRadius(g go2ds.Geometry, d float64) float64 {
	switch g {
	case go2ds.Hyperbolic:
		return math.Tanh(d / 2)
	case go2ds.Spherical:
		return math.Tan(d / 2)
	}
	return d
}

// GeodesicDistance is the inverse of ModelRadius.
func GeodesicDistance(g go2ds.Geometry, rho float64) float64 {
	switch g {
	case go2ds.Hyperbolic:
		return 2 * math.Atanh(rho)
	case go2ds.Spherical:
		return 2 * math.Atan(rho)
	}
	return rho
}
