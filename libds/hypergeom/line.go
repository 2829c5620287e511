package hypergeom

import (
	"math"

	"github.com/jbeda/geom"
)

// collinearTol is the determinant below which two points are treated as collinear with the origin.
const collinearTol = 1e-12

// LineResult is a geodesic segment in model coordinates: either a circular arc or a straight segment.
type LineResult struct {
	IsCircle   bool
	Center     geom.Coord
	Radius     float64
	AngleBegin float64 // angle of Begin seen from Center
	AngleEnd   float64 // angle of End seen from Center; |AngleEnd - AngleBegin| < pi
	Begin      geom.Coord
	End        geom.Coord
}

// HyperbolicLine returns the Poincaré disc geodesic from p to q: an arc of the circle orthogonal to the unit circle.
func HyperbolicLine(p, q geom.Coord) LineResult {
	return circleThrough(p, q, 1)
}

// SphericalLine returns the stereographic image of the great circle arc from p to q:
// an arc of the circle that meets the unit circle in antipodal points.
func SphericalLine(p, q geom.Coord) LineResult {
	return circleThrough(p, q, -1)
}

// ParabolicLine returns the straight segment from p to q.
func ParabolicLine(p, q geom.Coord) LineResult {
	return LineResult{
		Begin: p,
		End:   q,
	}
}

// circleThrough solves c.P = (|P|^2 + k)/2 for P in {p, q}.
// k = 1 gives the circle orthogonal to the unit circle, k = -1 the circle through antipodal points of it.
func circleThrough(p, q geom.Coord, k float64) LineResult {
	det := p.X*q.Y - p.Y*q.X
	if math.Abs(det) < collinearTol {
		return ParabolicLine(p, q)
	}

	bp := (p.X*p.X + p.Y*p.Y + k) / 2
	bq := (q.X*q.X + q.Y*q.Y + k) / 2
	c := geom.Coord{
		X: (bp*q.Y - bq*p.Y) / det,
		Y: (p.X*bq - q.X*bp) / det,
	}

	line := LineResult{
		IsCircle: true,
		Center:   c,
		Radius:   p.DistanceFrom(c),
		Begin:    p,
		End:      q,
	}
	dp := p.Minus(c)
	dq := q.Minus(c)
	line.AngleBegin = math.Atan2(dp.Y, dp.X)
	line.AngleEnd = line.AngleBegin + NormalizeAngle(math.Atan2(dq.Y, dq.X)-line.AngleBegin)
	return line
}

// At returns the point a fraction t along the segment, evenly spaced by angle on an arc.
func (line *LineResult) At(t float64) geom.Coord {
	if !line.IsCircle {
		return line.Begin.Plus(line.End.Minus(line.Begin).Times(t))
	}
	phi := line.AngleBegin + t*(line.AngleEnd-line.AngleBegin)
	return line.Center.Plus(ToCartesian(line.Radius, phi))
}

// Interpolate returns the count points evenly spaced strictly between Begin and End.
func (line *LineResult) Interpolate(count int) []geom.Coord {
	pts := make([]geom.Coord, count)
	for k := range pts {
		pts[k] = line.At(float64(k+1) / float64(count+1))
	}
	return pts
}

// NormalizeAngle maps a into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
