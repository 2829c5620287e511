package domain

import (
	"math"
	"testing"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/2x3systems/go2ds/libds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	sym442     = "<1.1:2:2,2,2:4,4>"
	symStar442 = "<1.1:1:1,1,1:4,4>"
	sym732     = "<1.1:1:1,1,1:7,3>"
	sym332     = "<1.1:1:1,1,1:3,3>"
	symSquare  = "<1.1:4:4 3,3 4,3 4:4,4 4>"
)

var regressionSet = []string{
	symStar442,
	sym732,
	sym332,
	sym442,
	symSquare,
	"<1.1:1 2:1,1,1:6,3>",
	"<1.1:2:2,1 2,1 2:4,4 4>",
	"<1.1:2:2,1 2,1 2:4,3 6>",
	"<1.1:2:1 2,1 2,2:4 4,4>",
	"<3.7:2:2,2,2:3,6>",
	"<1.1:1:1,1,1:5,4>",
	"<1.1:2:2,2,2:5,4>",
}

func newDomain(t *testing.T, text string) *Domain {
	t.Helper()
	ds, err := libds.Parse(text)
	require.NoError(t, err, text)
	dom, err := NewDomain(ds, go2ds.DefaultConfig())
	require.NoError(t, err, text)
	return dom
}

// residual recomputes the corner angle sum at rad from the glued orbits.
func residual(dom *Domain) float64 {
	inv := &dom.Invariants
	cosr := 1.0
	switch inv.Geometry {
	case go2ds.Hyperbolic:
		cosr = math.Cosh(inv.Rad)
	case go2ds.Spherical:
		cosr = math.Cos(inv.Rad)
	}
	sum := 0.0
	for _, o := range dom.Graph.Orbits {
		if o.I > 2 {
			sum += 2 * math.Asin(math.Min(1, math.Cos(o.Alph/2)/cosr)) * float64(o.S)
		}
	}
	return math.Abs(sum - 2*math.Pi)
}

func TestBuildGraph(t *testing.T) {
	g, err := BuildGraph(libds.MustParse("<1.1:2:2,1 2,1 2:4,4 4>"))
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 5)
	require.Len(t, g.Orbits, 4)
	assert.Equal(t, int32(1), g.EulerCharacteristic())

	e := g.Edge(1)
	assert.Equal(t, 0, e.Type)
	assert.Equal(t, [2]NodeID{1, 2}, e.Nodes)
	assert.False(t, e.IsLoop())
	assert.True(t, g.NodeEdge(1, 1).IsLoop())

	// (1,2)-orbits are single mirror corners
	o := g.Orbit(1)
	assert.Equal(t, [2]int{1, 2}, o.Ops)
	assert.Equal(t, []NodeID{1}, o.Nodes)
	assert.True(t, o.IsChain())
	assert.Equal(t, int32(4), o.V)
	assert.Equal(t, int32(8), o.I)
	assert.Equal(t, int32(0), o.B)

	// (0,1)-orbit is the chain 1-2
	o = g.Orbit(4)
	assert.Equal(t, []NodeID{1, 2}, o.Nodes)
	assert.Equal(t, int32(2), o.R)
	assert.Equal(t, int32(2), o.V)
	assert.Equal(t, int32(1), o.B)
	assert.Len(t, o.Edges, 3)
	assert.ElementsMatch(t, []OrbitID{3, 1, 2}, o.Orbits)

	loops, err := BuildGraph(libds.MustParse(symSquare))
	require.NoError(t, err)
	o = loops.Orbit(3)
	assert.Equal(t, [2]int{0, 2}, o.Ops)
	assert.Equal(t, []NodeID{1, 4, 2, 3}, o.Nodes)
	assert.False(t, o.IsChain())
	assert.Equal(t, int32(2), o.R)
	assert.Equal(t, int32(1), o.V)
}

func TestGraphBuilderErrors(t *testing.T) {
	gb := newGraphBuilder(2)
	assert.ErrorIs(t, gb.defineEdge(1, 3, 0), go2ds.ErrBadIndex)
	assert.ErrorIs(t, gb.defineEdge(0, 1, 0), go2ds.ErrBadIndex)
	assert.ErrorIs(t, gb.defineEdge(1, 2, 3), go2ds.ErrBadEdgeType)
	require.NoError(t, gb.defineEdge(1, 2, 0))
	require.NoError(t, gb.defineEdge(2, 1, 0))
	assert.ErrorIs(t, gb.defineEdge(1, 1, 0), go2ds.ErrBrokenEdges)
	assert.ErrorIs(t, gb.finishGraph(), go2ds.ErrBadValence)

	_, err := BuildGraph(nil)
	assert.ErrorIs(t, err, go2ds.ErrNilSymbol)

	// s0 fixes 2 but maps 1 to 2
	ds := libds.New(2)
	ds.SetOp(0, 1, 2)
	ds.SetOp(0, 2, 2)
	for _, i := range []int{1, 2} {
		ds.SetOp(i, 1, 1)
		ds.SetOp(i, 2, 2)
	}
	_, err = BuildGraph(ds)
	assert.ErrorIs(t, err, go2ds.ErrBrokenEdges)
}

func TestBadRotationOrder(t *testing.T) {
	// the (0,1)-orbit is the chain 1-2 of length 2, so m01 = 3 is not a multiple of it
	ds := libds.New(2)
	ds.SetOp(0, 1, 2)
	for _, i := range []int{1, 2} {
		ds.SetOp(i, 1, 1)
		ds.SetOp(i, 2, 2)
	}
	ds.SetM(0, 1, 1, 3)
	ds.SetM(1, 2, 1, 4)
	ds.SetM(1, 2, 2, 4)

	_, err := BuildGraph(ds)
	assert.ErrorIs(t, err, go2ds.ErrBadRotationOrder)

	ds.SetM(0, 1, 1, 4)
	_, err = BuildGraph(ds)
	assert.NoError(t, err)
}

func TestNoBoundary(t *testing.T) {
	g, err := BuildGraph(libds.MustParse(sym442))
	require.NoError(t, err)
	for ei := range g.Edges {
		g.Edges[ei].Glued = true
	}
	co := &Coords{}
	co.createCoords(g)
	assert.ErrorIs(t, co.traceBoundary(g), go2ds.ErrNoBoundary)
}

func TestNoSplitEdge(t *testing.T) {
	g, err := BuildGraph(libds.MustParse(sym442))
	require.NoError(t, err)

	// every side is already cut, so the rotation orbit picked first has nothing left to cut
	for ei := range g.Edges {
		g.Edges[ei].Cut = true
	}
	st := &glueState{g: g}
	assert.ErrorIs(t, st.glue(), go2ds.ErrNoSplitEdge)
}

func TestInconsistentEuler(t *testing.T) {
	cfg := go2ds.DefaultConfig()

	// chr of the graph is 2, chr of *442 is 1
	g, err := BuildGraph(libds.MustParse(sym442))
	require.NoError(t, err)
	_, err = Glue(g, cfg)
	require.NoError(t, err)
	g.Symbol = libds.MustParse(symStar442)
	st := &glueState{g: g}
	_, err = st.invariants(cfg)
	assert.ErrorIs(t, err, go2ds.ErrInconsistentEuler)

	// same chr, but chi of 542 differs from crv/2 of the flat graph
	g, err = BuildGraph(libds.MustParse(sym442))
	require.NoError(t, err)
	_, err = Glue(g, cfg)
	require.NoError(t, err)
	g.Symbol = libds.MustParse("<1.1:2:2,2,2:5,4>")
	st = &glueState{g: g}
	_, err = st.invariants(cfg)
	assert.ErrorIs(t, err, go2ds.ErrInconsistentEuler)
}

func TestGlueCones(t *testing.T) {
	dom := newDomain(t, sym442)
	g := dom.Graph

	assert.True(t, g.Edge(1).Cut)
	assert.True(t, g.Edge(2).Cut)
	assert.True(t, g.Edge(3).Glued)

	var is, ss []int32
	for _, o := range g.Orbits {
		is = append(is, o.I)
		ss = append(ss, o.S)
	}
	assert.Equal(t, []int32{4, 2, 8}, is)
	assert.Equal(t, []int32{1, 1, 2}, ss)

	for _, e := range g.Edges {
		assert.Equal(t, int8(-1), e.Sign)
	}

	inv := dom.Invariants
	assert.Equal(t, go2ds.Euclidean, inv.Geometry)
	assert.Equal(t, "442", inv.Name)
	assert.Equal(t, int32(2), inv.Chr)
	assert.Equal(t, int32(3), inv.Cones)
	assert.Equal(t, int32(0), inv.Fre)
	assert.Equal(t, int32(4), inv.Imin)
	assert.Equal(t, int32(8), inv.Imax)
	assert.Equal(t, int32(4), inv.Fdl)
	assert.True(t, scalar.EqualWithinAbs(2*math.Pi, inv.Def, 1e-12))
	assert.True(t, scalar.EqualWithinAbs(0, inv.Crv, 1e-12))
}

func TestGlueMirrors(t *testing.T) {
	dom := newDomain(t, "<1.1:2:2,1 2,1 2:4,4 4>")
	g := dom.Graph

	assert.True(t, g.Edge(1).Glued)
	for _, e := range g.Edges {
		assert.False(t, e.Cut)
		if e.IsLoop() {
			assert.Equal(t, int8(1), e.Sign)
		} else {
			assert.Equal(t, int8(-1), e.Sign)
		}
	}

	inv := dom.Invariants
	assert.Equal(t, "*442", inv.Name)
	assert.Equal(t, int32(1), inv.Chr)
	assert.Equal(t, int32(3), inv.Corners)
	assert.Equal(t, int32(4), inv.Fdl)
	assert.True(t, scalar.EqualWithinAbs(2*math.Pi, inv.Def, 1e-12))
}

func TestGlueInteriorPoint(t *testing.T) {
	dom := newDomain(t, symSquare)
	g := dom.Graph

	closed := 0
	for _, o := range g.Orbits {
		if o.Closed {
			closed++
			assert.Equal(t, int32(1), o.I)
		}
	}
	assert.Equal(t, 1, closed)
	assert.True(t, g.Edge(3).Cut)
	assert.True(t, g.Edge(4).Cut)
	assert.Equal(t, "442", dom.Invariants.Name)
	assert.Equal(t, int32(4), dom.Invariants.Fdl)
	assert.Len(t, dom.Coords.Border, 8)

	require.NoError(t, dom.Realize())
	assert.Equal(t, EuclideanRadius, dom.Invariants.Rad)

	// a square with corners at (+-0.5, +-0.5)
	for _, item := range dom.Coords.Border {
		if item.Corner != nil && g.Orbit(item.Corner.Orbit).I > 2 {
			assert.True(t, scalar.EqualWithinAbs(0.5, math.Abs(item.Corner.P.X), 1e-9))
			assert.True(t, scalar.EqualWithinAbs(0.5, math.Abs(item.Corner.P.Y), 1e-9))
		}
	}
	for _, run := range dom.Coords.Runs {
		if !run.Boundary {
			assert.True(t, math.Abs(run.P.X) < 0.5 && math.Abs(run.P.Y) < 0.5)
		}
	}
	assert.True(t, dom.Coords.Bounds.Width() <= 1+1e-9)
}

func TestGlueDisconnected(t *testing.T) {
	ds := libds.MustParse("<1.1:2:1 2,1 2,1 2:4 4,4 4>")
	_, err := NewDomain(ds, go2ds.DefaultConfig())
	assert.ErrorIs(t, err, go2ds.ErrDisconnected)
}

func TestRealizeEuclidean(t *testing.T) {
	dom := newDomain(t, symStar442)
	require.NoError(t, dom.Realize())

	inv := dom.Invariants
	assert.True(t, scalar.EqualWithinAbs(0, inv.Crv, 1e-12))
	assert.Equal(t, "*442", inv.Name)
	assert.Equal(t, EuclideanRadius, inv.Rad)
	assert.Equal(t, int32(3), inv.Fdl)

	hasV4 := false
	for _, o := range dom.Graph.Orbits {
		hasV4 = hasV4 || o.V == 4
	}
	assert.True(t, hasV4)

	// corners lie at rad / cos(B) with B = pi/2 - alph/2
	for _, item := range dom.Coords.Border {
		if item.Corner == nil {
			continue
		}
		o := dom.Graph.Orbit(item.Corner.Orbit)
		want := EuclideanRadius / math.Cos(math.Pi/2-o.Alph/2)
		assert.True(t, scalar.EqualWithinAbs(want, item.Corner.P.Magnitude(), 1e-9))
	}

	// converged relaxation is a fixed point
	assert.False(t, dom.Coords.relaxCoords(go2ds.DefaultConfig().Epsilon))
}

func TestRealizeHyperbolic(t *testing.T) {
	dom := newDomain(t, sym732)
	require.NoError(t, dom.Realize())

	inv := dom.Invariants
	assert.Equal(t, go2ds.Hyperbolic, inv.Geometry)
	assert.True(t, inv.Crv < 0)
	assert.Equal(t, "*732", inv.Name)
	assert.False(t, math.IsNaN(inv.Rad) || math.IsInf(inv.Rad, 0))
	assert.True(t, inv.Rad > 0)
	assert.True(t, residual(dom) <= 1e-9)
	assert.True(t, inv.Def > 2*math.Pi)

	for ni := range dom.Coords.Nodes {
		assert.True(t, dom.Coords.Nodes[ni].P.Magnitude() < 1)
	}
	assert.False(t, dom.Coords.relaxCoords(go2ds.DefaultConfig().Epsilon))
}

func TestRealizeSpherical(t *testing.T) {
	dom := newDomain(t, sym332)
	require.NoError(t, dom.Realize())

	inv := dom.Invariants
	assert.Equal(t, go2ds.Spherical, inv.Geometry)
	assert.Equal(t, "*332", inv.Name)
	assert.True(t, inv.Rad > 0 && inv.Rad <= math.Pi/float64(inv.Imin))
	assert.True(t, residual(dom) <= 1e-9)
	assert.True(t, inv.Def < 2*math.Pi)
}

func TestNoCorner(t *testing.T) {
	dom := newDomain(t, symStar442)

	ap := &approximator{g: dom.Graph, co: dom.Coords, model: go2ds.Euclidean}
	assert.ErrorIs(t, ap.computeCoords(EuclideanRadius), go2ds.ErrNoCorner)

	ap.model = go2ds.Spherical
	require.NoError(t, ap.computeCoords(1))
	for _, item := range dom.Coords.Border {
		assert.True(t, scalar.EqualWithinAbs(1, item.Point().Magnitude(), 1e-12))
	}
}

func TestRegulaFalsi(t *testing.T) {
	root := regulaFalsi(func(x float64) float64 { return x*x - 2 }, 0, 2, go2ds.SolverIterations)
	assert.True(t, scalar.EqualWithinAbs(math.Sqrt2, root, 1e-12))

	f := func(x float64) float64 { return math.Cos(x) - x }
	root = regulaFalsi(f, 0, 1, go2ds.SolverIterations)
	assert.True(t, math.Abs(f(root)) <= 1e-9)

	// a root on the bracket end
	assert.Equal(t, 1.0, regulaFalsi(func(x float64) float64 { return x - 1 }, 0, 1, 10))
}

func TestRegressionSet(t *testing.T) {
	for _, text := range regressionSet {
		dom := newDomain(t, text)
		inv := dom.Invariants
		assert.True(t, scalar.EqualWithinAbs(inv.Crv/2, inv.Chi, 1e-9), text)
		assert.Equal(t, int32(dom.Symbol.EulerCharacteristic()), inv.Chr, text)
		assert.Equal(t, libds.GroupName(dom.Symbol), inv.Name, text)
		assert.True(t, inv.Fre >= 0, text)
		require.NoError(t, dom.Realize(), text)
		if inv.Geometry != go2ds.Euclidean {
			assert.True(t, residual(dom) <= 1e-9, text)
		}
	}
}

func TestDeterminism(t *testing.T) {
	for _, text := range regressionSet {
		a := newDomain(t, text)
		b := newDomain(t, text)
		require.NoError(t, a.Realize())
		require.NoError(t, b.Realize())
		assert.Equal(t, a.Invariants, b.Invariants, text)
		assert.Equal(t, a.Coords.Bounds, b.Coords.Bounds, text)
	}
}

func TestProcessor(t *testing.T) {
	proc := &Processor{
		Config:  go2ds.DefaultConfig(),
		Realize: true,
	}
	entries := go2ds.StreamSymbols(
		sym732,
		"<1.1:1:1,1,1:4>",
		sym442,
	).Process(proc).Collect()

	require.Len(t, entries, 2)
	info := entries[0].Info
	assert.Equal(t, int32(1), info.Size)
	assert.Equal(t, go2ds.Hyperbolic, info.Geometry)
	assert.Equal(t, "*732", info.GroupName)
	assert.True(t, info.Maximal)
	assert.False(t, info.Oriented)

	info = entries[1].Info
	assert.Equal(t, "442", info.GroupName)
	assert.False(t, info.Maximal)
	assert.True(t, info.Oriented)
	assert.Equal(t, EuclideanRadius, info.Radius)
}
