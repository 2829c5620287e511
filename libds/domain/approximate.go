package domain

import (
	"math"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/2x3systems/go2ds/libds/hypergeom"
	"github.com/jbeda/geom"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"gonum.org/v1/gonum/floats/scalar"
)

// EuclideanRadius is the inscribed radius used for flat domains, which have no preferred scale.
const EuclideanRadius = 0.5

// approximator draws a glued domain: boundary corners on a geodesic polygon around the origin,
// everything else relaxed into place.
type approximator struct {
	g       *Graph
	co      *Coords
	model   go2ds.Geometry
	cfg     go2ds.Config
	corners []int // indexes into co.Border of the corners with i > 2
	alph    []float64
}

// Approximate finds the inscribed radius of the domain's boundary polygon, places the boundary
// and relaxes the interior until no point moves more than cfg.Epsilon.
// It sets inv.Rad and returns the number of relaxation passes made.
func Approximate(g *Graph, inv *Invariants, co *Coords, cfg go2ds.Config) (int, error) {
	ap := &approximator{
		g:     g,
		co:    co,
		model: inv.Geometry,
		cfg:   cfg,
	}
	for k, item := range co.Border {
		if item.Corner == nil {
			continue
		}
		if o := g.Orbit(item.Corner.Orbit); o.I > 2 {
			ap.corners = append(ap.corners, k)
			ap.alph = append(ap.alph, o.Alph)
		}
	}

	inv.Rad = ap.solveRadius(inv.Imin)
	inv.Fdl = int32(co.Fdl)
	if err := ap.computeCoords(inv.Rad); err != nil {
		return 0, err
	}

	passes := 0
	for {
		passes++
		if !co.relaxCoords(cfg.Epsilon) {
			break
		}
		if cfg.MaxRelaxPasses > 0 && passes >= cfg.MaxRelaxPasses {
			klog.V(2).Infof("%v: relaxation stopped after %d passes", g.Symbol, passes)
			break
		}
	}
	co.updateBounds()

	klog.V(3).Infof("%v: %s rad=%v after %d passes", g.Symbol, inv.Geometry, inv.Rad, passes)
	return passes, nil
}

// betaDefect returns how far the corner angles seen from the origin fall short of a full turn
// for a polygon with inscribed radius rad, and the half angle B of each corner.
// Each corner contributes 2*asin(cos(alph/2) / cosr), capped at pi.
func (ap *approximator) betaDefect(rad float64, halves []float64) float64 {
	cosr := hypergeom.CosR(ap.model, rad)
	sum := 0.0
	for k, alph := range ap.alph {
		x := math.Cos(alph/2) / cosr
		if x > 1 {
			x = 1
		}
		b := math.Asin(x)
		if halves != nil {
			halves[k] = b
		}
		sum += 2 * b
	}

	switch ap.model {
	case go2ds.Hyperbolic:
		return 2*math.Pi - sum
	case go2ds.Spherical:
		return sum - 2*math.Pi
	}
	return 0
}

// solveRadius finds the root of betaDefect.
func (ap *approximator) solveRadius(imin int32) float64 {
	f := func(r float64) float64 {
		return ap.betaDefect(r, nil)
	}

	maxIter := ap.cfg.MaxSolverIterations
	if maxIter <= 0 {
		maxIter = go2ds.SolverIterations
	}

	switch ap.model {
	case go2ds.Hyperbolic:
		hr := 1.0
		for k := 0; k < 64 && f(hr) <= 0; k++ {
			hr *= 2
		}
		return regulaFalsi(f, 0, hr, maxIter)
	case go2ds.Spherical:
		if imin <= 0 {
			return math.Pi / 2
		}
		return regulaFalsi(f, 0, math.Pi/float64(imin), maxIter)
	}
	return EuclideanRadius
}

// computeCoords places the corners and spaces the remaining boundary items evenly along the
// geodesics between consecutive corners.
func (ap *approximator) computeCoords(rad float64) error {
	border := ap.co.Border
	nc := len(ap.corners)
	if nc == 0 {
		if ap.model != go2ds.Spherical {
			return errors.Wrapf(go2ds.ErrNoCorner, "%v", ap.g.Symbol)
		}
		for k, item := range border {
			*item.Point() = hypergeom.ToCartesian(1, 2*math.Pi*float64(k)/float64(len(border)))
		}
		return nil
	}

	halves := make([]float64, nc)
	ap.betaDefect(rad, halves)

	theta := make([]float64, nc)
	theta[0] = halves[0]
	for k := 1; k < nc; k++ {
		theta[k] = theta[k-1] + halves[k-1] + halves[k]
	}
	if ap.model == go2ds.Euclidean {
		total := 0.0
		for _, b := range halves {
			total += 2 * b
		}
		if total > 0 {
			for k := range theta {
				theta[k] *= 2 * math.Pi / total
			}
		}
	}

	pts := make([]geom.Coord, nc)
	for k := range pts {
		d := hypergeom.CornerDistance(ap.model, rad, halves[k])
		pts[k] = hypergeom.ToCartesian(hypergeom.ModelRadius(ap.model, d), theta[k])
		*border[ap.corners[k]].Point() = pts[k]
	}

	for k := range pts {
		from := ap.corners[k]
		to := ap.corners[(k+1)%nc]
		count := (to - from - 1 + len(border)) % len(border)
		line := ap.line(pts[k], pts[(k+1)%nc])
		for m, p := range line.Interpolate(count) {
			*border[(from+1+m)%len(border)].Point() = p
		}
	}
	return nil
}

func (ap *approximator) line(p, q geom.Coord) hypergeom.LineResult {
	switch ap.model {
	case go2ds.Hyperbolic:
		return hypergeom.HyperbolicLine(p, q)
	case go2ds.Spherical:
		return hypergeom.SphericalLine(p, q)
	}
	return hypergeom.ParabolicLine(p, q)
}

// relaxCoords makes one Gauss-Seidel pass: each node moves to the mean of its sides and corners,
// each glued side to the mean of its nodes and corners, each interior vertex to the mean of its
// nodes and sides.  Boundary items stay fixed.
// It returns true if any point moved more than eps along either axis.
func (co *Coords) relaxCoords(eps float64) bool {
	changed := false
	moveTo := func(p *geom.Coord, sum geom.Coord, count int) {
		if count == 0 {
			return
		}
		q := sum.Times(1 / float64(count))
		if !scalar.EqualWithinAbs(p.X, q.X, eps) || !scalar.EqualWithinAbs(p.Y, q.Y, eps) {
			changed = true
		}
		*p = q
	}

	for ni := range co.Nodes {
		nc := &co.Nodes[ni]
		var sum geom.Coord
		for _, side := range nc.Sides {
			sum = sum.Plus(side.P)
		}
		for _, run := range nc.Corners {
			sum = sum.Plus(run.P)
		}
		moveTo(&nc.P, sum, 6)
	}

	for _, side := range co.Sides {
		if side.Boundary {
			continue
		}
		var sum geom.Coord
		for _, nc := range side.Nodes {
			sum = sum.Plus(nc.P)
		}
		for _, run := range side.Corners {
			sum = sum.Plus(run.P)
		}
		moveTo(&side.P, sum, len(side.Nodes)+len(side.Corners))
	}

	for _, run := range co.Runs {
		if run.Boundary {
			continue
		}
		var sum geom.Coord
		for _, nc := range run.Nodes {
			sum = sum.Plus(nc.P)
		}
		for _, side := range run.Sides {
			sum = sum.Plus(side.P)
		}
		moveTo(&run.P, sum, len(run.Nodes)+len(run.Sides))
	}

	return changed
}
