package domain

import (
	"github.com/2x3systems/go2ds/go2ds"
	"github.com/2x3systems/go2ds/libds"
	"github.com/pkg/errors"
)

// Node is a flag triangle.
type Node struct {
	ID     NodeID
	Edges  [3]EdgeID  // Edges[k] is the side of type k, shared with s_k(flag)
	Orbits [3]OrbitID // Orbits[c] is the orbit around the triangle's vertex of type c
	Glued  bool
	Sign   int8
}

// Edge joins a node to its image under s_Type.  A node fixed by s_Type has a loop edge: a mirror.
type Edge struct {
	ID     EdgeID
	Type   int
	Nodes  [2]NodeID  // Nodes[0] <= Nodes[1]
	Orbits [2]OrbitID // orbits around the side's two ends, in increasing vertex type
	Glued  bool
	Cut    bool
	Sign   int8
}

// IsLoop returns true if the edge is a mirror.
func (e *Edge) IsLoop() bool {
	return e.Nodes[0] == e.Nodes[1]
}

// Other returns the endpoint that is not n.
func (e *Edge) Other(n NodeID) NodeID {
	if e.Nodes[0] == n {
		return e.Nodes[1]
	}
	return e.Nodes[0]
}

// Orbit is an (i,j)-orbit: the flags around a vertex of type Corner.
type Orbit struct {
	ID     OrbitID
	Ops    [2]int // (i, j), i < j
	Corner int    // 3 - i - j
	Nodes  []NodeID
	Edges  []EdgeID
	Orbits []OrbitID // orbits sharing an edge with this one

	F int32 // 1 for a loop, 2 for a chain
	R int32 // period of s_i s_j
	M int32
	V int32 // M / R
	I int32 // V * F, then V * F * S once glued
	S int32 // glued nodes minus glued edges: the number of runs in the domain
	B int32 // unglued non-loop edges

	Alph      float64 // 2*pi / I
	Processed bool
	Cut       bool
	Closed    bool // every edge is glued: the orbit is an interior point
	Sign      int8
}

// IsChain returns true if the orbit has fixed points.
func (o *Orbit) IsChain() bool {
	return o.F == 2
}

// Graph is the cubic graph of a symbol: nodes are flags, edges are cycles of the involutions.
type Graph struct {
	Symbol *libds.DSymbol
	Nodes  []Node
	Edges  []Edge
	Orbits []Orbit
}

func (g *Graph) Node(id NodeID) *Node {
	return &g.Nodes[id-1]
}

func (g *Graph) Edge(id EdgeID) *Edge {
	return &g.Edges[id-1]
}

func (g *Graph) Orbit(id OrbitID) *Orbit {
	return &g.Orbits[id-1]
}

// NodeEdge returns the side of type k of node n.
func (g *Graph) NodeEdge(n NodeID, k int) *Edge {
	return g.Edge(g.Nodes[n-1].Edges[k])
}

// NumNodes returns the number of flags.
func (g *Graph) NumNodes() int {
	return len(g.Nodes)
}

// EulerCharacteristic counts orbits - edges + nodes.
func (g *Graph) EulerCharacteristic() int32 {
	return int32(len(g.Orbits) - len(g.Edges) + len(g.Nodes))
}

type edgeKey struct {
	node NodeID
	ty   int
}

type graphBuilder struct {
	g     *Graph
	index map[edgeKey]EdgeID
}

// BuildGraph builds the graph of ds, traces its orbits and overlays the branching values.
func BuildGraph(ds *libds.DSymbol) (*Graph, error) {
	if ds == nil {
		return nil, go2ds.ErrNilSymbol
	}
	n := ds.Size()
	if n == 0 {
		return nil, go2ds.ErrEmptySymbol
	}

	gb := newGraphBuilder(n)
	gb.g.Symbol = ds

	for k := 0; k < libds.NumOps; k++ {
		for a := libds.Flag(1); int(a) <= n; a++ {
			b := ds.Op(k, a)
			if b < a {
				continue
			}
			if err := gb.defineEdge(NodeID(a), NodeID(b), k); err != nil {
				return nil, err
			}
		}
	}
	if err := gb.finishGraph(); err != nil {
		return nil, err
	}

	gb.traceOrbits(1, 2)
	gb.traceOrbits(0, 2)
	gb.traceOrbits(0, 1)
	gb.defineOrbitEdges()
	gb.defineOrbitOrbits()
	if err := gb.defineM(); err != nil {
		return nil, err
	}
	return gb.g, nil
}

func newGraphBuilder(n int) *graphBuilder {
	gb := &graphBuilder{
		g: &Graph{
			Nodes: make([]Node, n),
		},
		index: make(map[edgeKey]EdgeID, 3*n),
	}
	for i := range gb.g.Nodes {
		gb.g.Nodes[i].ID = NodeID(i + 1)
	}
	return gb
}

// defineEdge adds the edge of type ty joining a and b, or checks it against an existing one.
func (gb *graphBuilder) defineEdge(a, b NodeID, ty int) error {
	n := NodeID(len(gb.g.Nodes))
	if a < 1 || a > n || b < 1 || b > n {
		return errors.Wrapf(go2ds.ErrBadIndex, "edge %d-%d", a, b)
	}
	if ty < 0 || ty >= libds.NumOps {
		return errors.Wrapf(go2ds.ErrBadEdgeType, "edge %d-%d type %d", a, b, ty)
	}
	if a > b {
		a, b = b, a
	}

	idA, hasA := gb.index[edgeKey{a, ty}]
	idB, hasB := gb.index[edgeKey{b, ty}]
	if hasA || hasB {
		if hasA && hasB && idA == idB && gb.g.Edge(idA).Nodes == [2]NodeID{a, b} {
			return nil
		}
		return errors.Wrapf(go2ds.ErrBrokenEdges, "edge %d-%d of type %d conflicts with an existing edge", a, b, ty)
	}

	id := EdgeID(len(gb.g.Edges) + 1)
	gb.g.Edges = append(gb.g.Edges, Edge{
		ID:    id,
		Type:  ty,
		Nodes: [2]NodeID{a, b},
	})
	gb.index[edgeKey{a, ty}] = id
	gb.index[edgeKey{b, ty}] = id
	return nil
}

// finishGraph links every node to its three sides.
func (gb *graphBuilder) finishGraph() error {
	g := gb.g
	for ei := range g.Edges {
		e := &g.Edges[ei]
		for _, n := range e.Nodes {
			g.Node(n).Edges[e.Type] = e.ID
		}
	}
	for ni := range g.Nodes {
		node := &g.Nodes[ni]
		for k, eid := range node.Edges {
			if eid == 0 {
				return errors.Wrapf(go2ds.ErrBadValence, "node %d has no side of type %d", node.ID, k)
			}
		}
	}
	return nil
}

// traceOrbits walks the (ti,tj)-orbit of every node not yet on one.
func (gb *graphBuilder) traceOrbits(ti, tj int) {
	g := gb.g
	c := 3 - ti - tj
	for ni := range g.Nodes {
		if g.Nodes[ni].Orbits[c] != 0 {
			continue
		}
		start := g.Nodes[ni].ID
		o := Orbit{
			ID:     OrbitID(len(g.Orbits) + 1),
			Ops:    [2]int{ti, tj},
			Corner: c,
			F:      1,
		}

		ops := [2]int{ti, tj}
		o.Nodes = append(o.Nodes, start)
		g.Node(start).Orbits[c] = o.ID
		x := start
		for k := 0; ; k++ {
			e := g.NodeEdge(x, ops[k&1])
			if e.IsLoop() {
				o.F = 2
			}
			x = e.Other(x)
			if x == start && k&1 == 1 {
				break
			}
			if g.Node(x).Orbits[c] != o.ID {
				g.Node(x).Orbits[c] = o.ID
				o.Nodes = append(o.Nodes, x)
			}
		}

		g.Orbits = append(g.Orbits, o)
		gb.sortOrbitNodes(g.Orbit(o.ID))
	}
}

// sortOrbitNodes orders a chain from its smaller fixed end to the other, and a loop from its
// smallest node, first stepping along Ops[0].
func (gb *graphBuilder) sortOrbitNodes(o *Orbit) {
	g := gb.g
	start := NodeID(0)
	for _, n := range o.Nodes {
		if o.IsChain() && !gb.isChainEnd(o, n) {
			continue
		}
		if start == 0 || n < start {
			start = n
		}
	}

	// A chain end is left through the involution that does not fix it.
	first := 0
	if o.IsChain() && g.NodeEdge(start, o.Ops[0]).IsLoop() {
		first = 1
	}

	sorted := make([]NodeID, 0, len(o.Nodes))
	sorted = append(sorted, start)
	x := start
	for k := first; len(sorted) < len(o.Nodes); k++ {
		e := g.NodeEdge(x, o.Ops[k&1])
		if e.IsLoop() {
			break
		}
		x = e.Other(x)
		sorted = append(sorted, x)
	}
	o.Nodes = sorted
}

func (gb *graphBuilder) isChainEnd(o *Orbit, n NodeID) bool {
	return gb.g.NodeEdge(n, o.Ops[0]).IsLoop() || gb.g.NodeEdge(n, o.Ops[1]).IsLoop()
}

// defineOrbitEdges lists the sides of each orbit's nodes along its two involutions and links
// every edge to the two orbits at its ends.
func (gb *graphBuilder) defineOrbitEdges() {
	g := gb.g
	for oi := range g.Orbits {
		o := &g.Orbits[oi]
		o.Edges = o.Edges[:0]
		for _, n := range o.Nodes {
			for _, ty := range o.Ops {
				eid := g.Node(n).Edges[ty]
				if !containsEdge(o.Edges, eid) {
					o.Edges = append(o.Edges, eid)
				}
			}
		}
		for _, eid := range o.Edges {
			if !g.Edge(eid).IsLoop() {
				o.B++
			}
		}
	}

	for ei := range g.Edges {
		e := &g.Edges[ei]
		i, j := otherTypes(e.Type)
		node := g.Node(e.Nodes[0])
		e.Orbits = [2]OrbitID{node.Orbits[i], node.Orbits[j]}
	}
}

// defineOrbitOrbits lists, for each orbit, the orbits at the far end of its edges.
func (gb *graphBuilder) defineOrbitOrbits() {
	g := gb.g
	for oi := range g.Orbits {
		o := &g.Orbits[oi]
		for _, eid := range o.Edges {
			for _, other := range g.Edge(eid).Orbits {
				if other != o.ID && !containsOrbit(o.Orbits, other) {
					o.Orbits = append(o.Orbits, other)
				}
			}
		}
	}
}

// defineM overlays the branching values of the symbol onto the orbits.
func (gb *graphBuilder) defineM() error {
	g := gb.g
	for oi := range g.Orbits {
		o := &g.Orbits[oi]
		length := int32(len(o.Nodes))
		if o.IsChain() {
			o.R = length
		} else {
			o.R = length / 2
		}
		o.M = g.Symbol.M(o.Ops[0], o.Ops[1], libds.Flag(o.Nodes[0]))
		if o.R < 1 || o.M%o.R != 0 {
			return errors.Wrapf(go2ds.ErrBadRotationOrder, "orbit %d: m = %d, r = %d", o.ID, o.M, o.R)
		}
		o.V = o.M / o.R
		o.I = o.F * o.V
	}
	return nil
}

func containsEdge(list []EdgeID, id EdgeID) bool {
	for _, e := range list {
		if e == id {
			return true
		}
	}
	return false
}

func containsOrbit(list []OrbitID, id OrbitID) bool {
	for _, o := range list {
		if o == id {
			return true
		}
	}
	return false
}
