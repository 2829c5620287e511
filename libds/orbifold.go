package libds

import (
	"sort"
	"strconv"
	"strings"
)

// OrbifoldInfo is the decomposition of an orbifold into the parts of its Conway name.
type OrbifoldInfo struct {
	Cones      []int32   // interior cone orders, descending
	Boundaries [][]int32 // corner orders per mirror boundary, each canonically rotated
	Euler      int       // Euler characteristic of the underlying surface
	Orientable bool      // underlying surface is orientable
}

// Orbifold decomposes the orbifold of ds into cones, mirror boundaries and the underlying surface.
func Orbifold(ds *DSymbol) OrbifoldInfo {
	info := OrbifoldInfo{
		Euler:      ds.EulerCharacteristic(),
		Orientable: ds.IsOrientable(),
	}

	for c := 0; c < NumOps; c++ {
		i, j := PairOps(c)
		ds.ForEachOrbit(i, j, func(rep Flag, orbit []Flag) {
			if v := ds.V(i, j, rep); v > 1 && ds.IsLoop(i, j, rep) {
				info.Cones = append(info.Cones, v)
			}
		})
	}
	sort.Slice(info.Cones, func(a, b int) bool {
		return info.Cones[a] > info.Cones[b]
	})

	info.Boundaries = ds.traceMirrors()
	sort.Slice(info.Boundaries, func(a, b int) bool {
		return compareCorners(info.Boundaries[a], info.Boundaries[b]) > 0
	})
	return info
}

// ClosedEuler returns the Euler characteristic of the underlying surface with every boundary capped by a disc.
func (info *OrbifoldInfo) ClosedEuler() int {
	return info.Euler + len(info.Boundaries)
}

// Chi returns the orbifold Euler characteristic:
// chr - sum over cones (1 - 1/v) - 1/2 sum over corners (1 - 1/v).
func (info *OrbifoldInfo) Chi() float64 {
	chi := float64(info.Euler)
	for _, v := range info.Cones {
		chi -= 1 - 1/float64(v)
	}
	for _, corners := range info.Boundaries {
		for _, v := range corners {
			chi -= 0.5 * (1 - 1/float64(v))
		}
	}
	return chi
}

// NumCorners returns the number of corners over all boundaries.
func (info *OrbifoldInfo) NumCorners() int {
	count := 0
	for _, corners := range info.Boundaries {
		count += len(corners)
	}
	return count
}

// Name returns the Conway orbifold name: "o" per handle, cone orders, "*" and corner orders per
// boundary, "x" per cross-cap.  The trivial group is named "1".
func (info *OrbifoldInfo) Name() string {
	var buf strings.Builder

	chic := info.ClosedEuler()
	handles, crosscaps := 0, 0
	if info.Orientable {
		handles = (2 - chic) / 2
	} else {
		crosscaps = 2 - chic
	}

	for k := 0; k < handles; k++ {
		buf.WriteByte('o')
	}
	for _, v := range info.Cones {
		buf.WriteString(strconv.Itoa(int(v)))
	}
	for _, corners := range info.Boundaries {
		buf.WriteByte('*')
		for _, v := range corners {
			buf.WriteString(strconv.Itoa(int(v)))
		}
	}
	for k := 0; k < crosscaps; k++ {
		buf.WriteByte('x')
	}

	if buf.Len() == 0 {
		return "1"
	}
	return buf.String()
}

// GroupName returns the Conway name of the orbifold symmetry group of ds.
func GroupName(ds *DSymbol) string {
	info := Orbifold(ds)
	return info.Name()
}

// traceMirrors walks every mirror boundary and returns the corner orders met along each one.
//
// A walk state is a flag a with s_k(a) == a and the vertex type c being walked towards.
// Rotating around vertex c through the chain of the two involutions other than s_c ends at the
// next mirror side k'; the walk then heads for the other end of side k'.
func (ds *DSymbol) traceMirrors() [][]int32 {
	n := ds.Size()
	var seen [NumOps][]bool
	for k := range seen {
		seen[k] = make([]bool, n)
	}

	var boundaries [][]int32
	for k := 0; k < NumOps; k++ {
		for a := Flag(1); int(a) <= n; a++ {
			if ds.Op(k, a) != a || seen[k][a-1] {
				continue
			}

			var corners []int32
			x, side := a, k
			c, _ := PairOps(k)
			for {
				seen[side][x-1] = true
				i, j := PairOps(c)
				other := i
				if other == side {
					other = j
				}
				if v := ds.V(i, j, x); v > 1 {
					corners = append(corners, v)
				}
				end, fixedBy := ds.ChainEnd(other, side, x)
				x, side, c = end, fixedBy, 3-c-fixedBy
				if x == a && side == k {
					break
				}
			}
			boundaries = append(boundaries, canonicalCorners(corners))
		}
	}
	return boundaries
}

// canonicalCorners returns the lexicographically largest rotation of corners in either direction.
func canonicalCorners(corners []int32) []int32 {
	n := len(corners)
	best := append([]int32(nil), corners...)
	cand := make([]int32, n)
	for dir := 0; dir < 2; dir++ {
		for r := 0; r < n; r++ {
			for k := 0; k < n; k++ {
				if dir == 0 {
					cand[k] = corners[(r+k)%n]
				} else {
					cand[k] = corners[(r-k+n)%n]
				}
			}
			if compareCorners(cand, best) > 0 {
				copy(best, cand)
			}
		}
	}
	return best
}

func compareCorners(a, b []int32) int {
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] != b[k] {
			if a[k] > b[k] {
				return 1
			}
			return -1
		}
	}
	return len(a) - len(b)
}
