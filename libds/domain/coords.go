package domain

import (
	"github.com/2x3systems/go2ds/go2ds"
	"github.com/jbeda/geom"
	"github.com/pkg/errors"
)

// NodeCoordinates is the position of a flag triangle's centre.
type NodeCoordinates struct {
	Node    NodeID
	P       geom.Coord
	Sides   [3]*EdgeCoordinates  // Sides[k] is the triangle's side of type k
	Corners [3]*OrbitCoordinates // Corners[c] is the triangle's vertex of type c
}

// EdgeCoordinates is the position of a side's midpoint.
// A glued edge has one shared side; an open edge has one side per endpoint; a mirror has one side.
type EdgeCoordinates struct {
	Edge     EdgeID
	Node     NodeID // the owning endpoint, 0 for a glued edge
	P        geom.Coord
	Boundary bool
	Nodes    []*NodeCoordinates
	Corners  [2]*OrbitCoordinates
}

// OrbitCoordinates is the position of a vertex of the domain: one connected run of an orbit.
type OrbitCoordinates struct {
	Orbit    OrbitID
	P        geom.Coord
	Boundary bool
	Nodes    []*NodeCoordinates
	Sides    []*EdgeCoordinates
}

// BorderItem is one entry of the boundary walk: exactly one of Side and Corner is set.
type BorderItem struct {
	Side   *EdgeCoordinates
	Corner *OrbitCoordinates
}

// Point returns the coordinate the item places.
func (item BorderItem) Point() *geom.Coord {
	if item.Side != nil {
		return &item.Side.P
	}
	return &item.Corner.P
}

// Coords indexes every drawable point of a glued domain.
type Coords struct {
	Nodes  []NodeCoordinates
	Sides  []*EdgeCoordinates
	Runs   []*OrbitCoordinates
	Border []BorderItem // boundary walk, alternating side and corner
	Fdl    int          // number of boundary sides
	Bounds geom.Rect
}

// NewCoords allocates the coordinates of a glued graph and traces its boundary.
func NewCoords(g *Graph) (*Coords, error) {
	co := &Coords{}
	co.createCoords(g)
	if err := co.traceBoundary(g); err != nil {
		return nil, err
	}
	return co, nil
}

func (co *Coords) createCoords(g *Graph) {
	co.Nodes = make([]NodeCoordinates, g.NumNodes())
	for ni := range co.Nodes {
		co.Nodes[ni].Node = NodeID(ni + 1)
	}

	// Runs: the orbit's nodes connected by glued orbit edges.
	for oi := range g.Orbits {
		o := &g.Orbits[oi]
		for _, start := range o.Nodes {
			if co.Nodes[start-1].Corners[o.Corner] != nil {
				continue
			}
			run := &OrbitCoordinates{
				Orbit:    o.ID,
				Boundary: !o.Closed,
			}
			co.Runs = append(co.Runs, run)

			pending := []NodeID{start}
			co.Nodes[start-1].Corners[o.Corner] = run
			for len(pending) > 0 {
				n := pending[len(pending)-1]
				pending = pending[:len(pending)-1]
				run.Nodes = append(run.Nodes, &co.Nodes[n-1])
				for _, ty := range o.Ops {
					e := g.NodeEdge(n, ty)
					if !e.Glued {
						continue
					}
					next := e.Other(n)
					if co.Nodes[next-1].Corners[o.Corner] == nil {
						co.Nodes[next-1].Corners[o.Corner] = run
						pending = append(pending, next)
					}
				}
			}
		}
	}

	glued := make(map[EdgeID]*EdgeCoordinates)
	for ni := range co.Nodes {
		nc := &co.Nodes[ni]
		for k := 0; k < 3; k++ {
			e := g.NodeEdge(nc.Node, k)
			side := glued[e.ID]
			if side == nil {
				side = &EdgeCoordinates{
					Edge:     e.ID,
					Node:     nc.Node,
					Boundary: !e.Glued,
				}
				i, j := otherTypes(k)
				side.Corners = [2]*OrbitCoordinates{nc.Corners[i], nc.Corners[j]}
				for _, run := range side.Corners {
					run.Sides = append(run.Sides, side)
				}
				if e.Glued {
					side.Node = 0
					glued[e.ID] = side
				}
				co.Sides = append(co.Sides, side)
			}
			side.Nodes = append(side.Nodes, nc)
			nc.Sides[k] = side
		}
	}
}

// traceBoundary walks the open sides of the domain in cyclic order, listing each side followed
// by the corner it leads to.
func (co *Coords) traceBoundary(g *Graph) error {
	startNode, startSide := NodeID(0), -1
	for ni := range g.Nodes {
		for k, eid := range g.Nodes[ni].Edges {
			if !g.Edge(eid).Glued {
				startNode, startSide = g.Nodes[ni].ID, k
				break
			}
		}
		if startNode != 0 {
			break
		}
	}
	if startNode == 0 {
		return errors.Wrapf(go2ds.ErrNoBoundary, "%v", g.Symbol)
	}

	co.Border = co.Border[:0]
	co.Fdl = 0

	cur, side := startNode, startSide
	c, _ := otherTypes(side)
	for steps := 0; ; steps++ {
		if steps > 6*g.NumNodes() {
			return errors.Wrapf(go2ds.ErrBrokenEdges, "boundary of %v does not close", g.Symbol)
		}

		nc := &co.Nodes[cur-1]
		co.Border = append(co.Border,
			BorderItem{Side: nc.Sides[side]},
			BorderItem{Corner: nc.Corners[c]},
		)
		co.Fdl++

		// Rotate around vertex c until the next open side.
		other := Opposite(c, side)
		for g.NodeEdge(cur, other).Glued {
			cur = g.NodeEdge(cur, other).Other(cur)
			other = Opposite(c, other)
		}
		side, c = other, Opposite(c, other)

		if cur == startNode && side == startSide {
			break
		}
	}
	return nil
}

// updateBounds sets Bounds to the smallest rect containing every point.
func (co *Coords) updateBounds() {
	first := true
	expand := func(p geom.Coord) {
		if first {
			co.Bounds = geom.Rect{Min: p, Max: p}
			first = false
		} else {
			co.Bounds.ExpandToContainCoord(p)
		}
	}
	for ni := range co.Nodes {
		expand(co.Nodes[ni].P)
	}
	for _, side := range co.Sides {
		expand(side.P)
	}
	for _, run := range co.Runs {
		expand(run.P)
	}
}
