// Package domain builds and realizes the fundamental domain of a 2-dimensional Delaney symbol.
//
// The flags of a symbol are the nodes of a cubic graph whose edges are the cycles of s0, s1 and s2.
// Gluing a spanning subset of the edges assembles the flag triangles into a topological disc;
// the unglued edges form its boundary, which is then drawn as a geodesic polygon in the
// Poincaré disc, the plane or the stereographically projected sphere.
package domain

import (
	"github.com/2x3systems/go2ds/go2ds"
	"github.com/2x3systems/go2ds/libds"
)

// NodeID is a one-based node index; node k is flag k of the symbol.
type NodeID int32

// EdgeID is a one-based index into Graph.Edges.
type EdgeID int32

// OrbitID is a one-based index into Graph.Orbits.
type OrbitID int32

// Invariants are the numeric invariants computed once a domain is glued.
type Invariants struct {
	Geometry go2ds.Geometry
	Crv      float64 // sum over orbits of len/m, minus the number of flags
	Chi      float64 // orbifold Euler characteristic, crv/2
	Def      float64 // pi * sum over corners of (1 - 2/i) * s
	Chr      int32   // Euler characteristic of the underlying surface
	Fre      int32   // max(0, -3*chr + 2*cones + corners)
	Cones    int32   // number of cone points
	Corners  int32   // number of mirror corners
	Imin     int32   // smallest corner order on the boundary, 0 if none
	Imax     int32   // largest corner order on the boundary, 0 if none
	Fdl      int32   // number of boundary sides
	Rad      float64 // radius of the inscribed circle once realized
	Name     string  // Conway orbifold name
}

// Opposite returns the vertex type of a flag triangle not on side k that is not c.
func Opposite(c, k int) int {
	return 3 - c - k
}

// otherTypes returns the two vertex types of a side of type k, in increasing order.
func otherTypes(k int) (int, int) {
	return libds.PairOps(k)
}
