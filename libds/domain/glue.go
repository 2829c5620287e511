package domain

import (
	"math"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/2x3systems/go2ds/libds"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"gonum.org/v1/gonum/floats/scalar"
)

// chiTolerance bounds the mismatch allowed between the Conway characteristic and crv/2.
const chiTolerance = 1e-9

// glueState carries the counters of one gluing pass.
type glueState struct {
	g    *Graph
	ncnt int // glued nodes
	ecnt int // glued edges
	ocnt int // processed orbits
	cuts int
}

// orbitKey orders orbits for gluing: smaller corner order first, then larger m, then fewer open edges.
type orbitKey struct {
	i    int32
	negM int32
	b    int32
}

func (o *Orbit) key() orbitKey {
	return orbitKey{o.I, -o.M, o.B}
}

func (k orbitKey) less(other orbitKey) bool {
	if k.i != other.i {
		return k.i < other.i
	}
	if k.negM != other.negM {
		return k.negM < other.negM
	}
	return k.b < other.b
}

// Glue assembles the flag triangles of g into a disc and computes the domain invariants.
//
// Starting from node 1, orbits are glued in order of their key; a loop orbit with a rotation
// gets one edge cut first so its vertex stays on the boundary as a cone point.  When no orbit
// qualifies, any edge extending the domain is glued.  Every node must end up glued.
func Glue(g *Graph, cfg go2ds.Config) (Invariants, error) {
	st := &glueState{g: g}
	if err := st.glue(); err != nil {
		return Invariants{}, err
	}
	st.finishOrbits()
	st.spreadSigns()

	klog.V(2).Infof("glued %v: %d nodes, %d edges, %d orbits processed, %d cuts", g.Symbol, st.ncnt, st.ecnt, st.ocnt, st.cuts)

	return st.invariants(cfg)
}

func (st *glueState) glue() error {
	g := st.g
	st.glueNode(1)

	for {
		if p := st.findOptimalOrbit(); p != nil {
			p.Processed = true
			st.ocnt++
			if p.F == 1 && p.V > 1 && !p.Cut {
				e := st.findWeakestEdge(p)
				if e == nil {
					return errors.Wrapf(go2ds.ErrNoSplitEdge, "orbit %d of %v", p.ID, g.Symbol)
				}
				st.cutEdge(e)
			}
			st.glueOrbit(p)
			continue
		}
		if e := st.findOptimalEdge(); e != nil {
			st.glueEdge(e)
			continue
		}
		break
	}

	if st.ncnt != g.NumNodes() {
		return errors.Wrapf(go2ds.ErrDisconnected, "%d of %d nodes glued", st.ncnt, g.NumNodes())
	}
	return nil
}

func (st *glueState) glueNode(id NodeID) {
	node := st.g.Node(id)
	if node.Glued {
		return
	}
	node.Glued = true
	st.ncnt++
	for _, oid := range node.Orbits {
		st.g.Orbit(oid).S++
	}
}

func (st *glueState) glueEdge(e *Edge) {
	st.glueNode(e.Nodes[0])
	st.glueNode(e.Nodes[1])
	e.Glued = true
	st.ecnt++
	for _, oid := range e.Orbits {
		o := st.g.Orbit(oid)
		o.S--
		o.B--
	}
}

func (st *glueState) cutEdge(e *Edge) {
	e.Cut = true
	st.cuts++
	for _, oid := range e.Orbits {
		st.g.Orbit(oid).Cut = true
	}
}

// closes returns true if gluing the last open edge of p turns it into an interior point.
func (st *glueState) closes(p *Orbit) bool {
	return p.F == 1 && p.B == 1 && p.V == 1
}

// findOptimalOrbit returns the unprocessed orbit with the smallest key among those touching the
// domain in exactly one run and still having an open edge.
func (st *glueState) findOptimalOrbit() *Orbit {
	var best *Orbit
	for oi := range st.g.Orbits {
		o := &st.g.Orbits[oi]
		if o.Processed || o.S <= 0 || o.B <= 0 || o.S > 1 {
			continue
		}
		if best == nil || o.key().less(best.key()) {
			best = o
		}
	}
	return best
}

// findWeakestEdge picks the edge of p to cut.  Preferred are edges whose endpoints are both glued,
// then edges whose far orbit needs a cut itself, then edges to orbits already cut or split,
// then edges to chains.  Ties go to the far orbit with the greater key, then to the lower edge.
func (st *glueState) findWeakestEdge(p *Orbit) *Edge {
	g := st.g
	var best *Edge
	var bestRank int
	var bestKey orbitKey
	for _, eid := range p.Edges {
		e := g.Edge(eid)
		if e.Glued || e.Cut || e.IsLoop() {
			continue
		}
		q := g.Orbit(e.Orbits[0])
		if q.ID == p.ID {
			q = g.Orbit(e.Orbits[1])
		}

		rank := 4
		switch {
		case g.Node(e.Nodes[0]).Glued && g.Node(e.Nodes[1]).Glued:
			rank = 0
		case q.F == 1 && q.V > 1 && !q.Cut:
			rank = 1
		case q.Cut || q.S > 1:
			rank = 2
		case q.F == 2:
			rank = 3
		}

		qKey := q.key()
		if best == nil || rank < bestRank || (rank == bestRank && bestKey.less(qKey)) {
			best, bestRank, bestKey = e, rank, qKey
		}
	}
	return best
}

// glueOrbit glues the open edges of p extending the domain, and the edge closing p, until none is left.
func (st *glueState) glueOrbit(p *Orbit) {
	g := st.g
	for progress := true; progress; {
		progress = false
		for _, eid := range p.Edges {
			e := g.Edge(eid)
			if e.Glued || e.Cut || e.IsLoop() {
				continue
			}
			gluedA := g.Node(e.Nodes[0]).Glued
			gluedB := g.Node(e.Nodes[1]).Glued
			if gluedA != gluedB || (gluedA && gluedB && st.closes(p)) {
				st.glueEdge(e)
				progress = true
			}
		}
	}
}

// findOptimalEdge returns the lowest open edge with exactly one glued endpoint,
// else the lowest edge closing one of its orbits.
func (st *glueState) findOptimalEdge() *Edge {
	g := st.g
	for ei := range g.Edges {
		e := &g.Edges[ei]
		if e.Glued || e.Cut || e.IsLoop() {
			continue
		}
		if g.Node(e.Nodes[0]).Glued != g.Node(e.Nodes[1]).Glued {
			return e
		}
	}
	for ei := range g.Edges {
		e := &g.Edges[ei]
		if e.Glued || e.Cut || e.IsLoop() {
			continue
		}
		if g.Node(e.Nodes[0]).Glued && g.Node(e.Nodes[1]).Glued &&
			(st.closes(g.Orbit(e.Orbits[0])) || st.closes(g.Orbit(e.Orbits[1]))) {
			return e
		}
	}
	return nil
}

// finishOrbits fixes the run count and corner order of every orbit.
func (st *glueState) finishOrbits() {
	for oi := range st.g.Orbits {
		o := &st.g.Orbits[oi]
		if o.S <= 0 {
			o.Closed = true
			o.S = 1
		}
		o.I = o.V * o.F * o.S
		o.Alph = 2 * math.Pi / float64(o.I)
	}
}

// spreadSigns orients the glued triangles from node 1 across glued edges.
// An edge whose endpoints agree in sign (mirrors included) reverses orientation; so does an orbit with such an edge.
func (st *glueState) spreadSigns() {
	g := st.g
	stack := arraystack.New()
	g.Node(1).Sign = 1
	stack.Push(NodeID(1))
	for !stack.Empty() {
		top, _ := stack.Pop()
		n := top.(NodeID)
		sign := g.Node(n).Sign
		for _, eid := range g.Node(n).Edges {
			e := g.Edge(eid)
			if !e.Glued {
				continue
			}
			other := g.Node(e.Other(n))
			if other.Sign == 0 {
				other.Sign = -sign
				stack.Push(other.ID)
			}
		}
	}

	for ei := range g.Edges {
		e := &g.Edges[ei]
		if g.Node(e.Nodes[0]).Sign == g.Node(e.Nodes[1]).Sign {
			e.Sign = 1
		} else {
			e.Sign = -1
		}
	}
	for oi := range g.Orbits {
		o := &g.Orbits[oi]
		o.Sign = -1
		for _, eid := range o.Edges {
			if g.Edge(eid).Sign > 0 {
				o.Sign = 1
				break
			}
		}
	}
}

func (st *glueState) invariants(cfg go2ds.Config) (Invariants, error) {
	g := st.g
	ds := g.Symbol

	var inv Invariants
	inv.Crv = -float64(g.NumNodes())
	for oi := range g.Orbits {
		o := &g.Orbits[oi]
		inv.Crv += float64(len(o.Nodes)) / float64(o.M)
		if o.I > 2 {
			inv.Def += math.Pi * (1 - 2/float64(o.I)) * float64(o.S)
			if inv.Imin == 0 || o.I < inv.Imin {
				inv.Imin = o.I
			}
			if o.I > inv.Imax {
				inv.Imax = o.I
			}
		}
	}
	inv.Geometry = go2ds.GeometryOf(inv.Crv, cfg.CurvatureTolerance)

	inv.Chr = g.EulerCharacteristic()
	if want := int32(ds.EulerCharacteristic()); inv.Chr != want {
		return inv, errors.Wrapf(go2ds.ErrInconsistentEuler, "graph chr %d, symbol chr %d", inv.Chr, want)
	}

	orb := libds.Orbifold(ds)
	inv.Chi = orb.Chi()
	if !scalar.EqualWithinAbs(inv.Chi, inv.Crv/2, chiTolerance) {
		return inv, errors.Wrapf(go2ds.ErrInconsistentEuler, "chi %v, crv/2 %v", inv.Chi, inv.Crv/2)
	}
	inv.Cones = int32(len(orb.Cones))
	inv.Corners = int32(orb.NumCorners())
	inv.Name = orb.Name()

	inv.Fre = -3*inv.Chr + 2*inv.Cones + inv.Corners
	if inv.Fre < 0 {
		inv.Fre = 0
	}
	inv.Rad = math.NaN()
	return inv, nil
}
