package libds

import (
	"github.com/2x3systems/go2ds/go2ds"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/pkg/errors"
)

// DSymbol is a 2-dimensional Delaney symbol: n flags, three involutions s0, s1, s2 on them,
// and the branching values m01, m12 that are constant on the (0,1) and (1,2) orbits.
// m02 is always 2.
type DSymbol struct {
	Nr1 int32
	Nr2 int32

	dim int32          // dimension as written in text form; 0 if it was omitted
	ops [NumOps][]Flag // ops[i][a-1] == s_i(a)
	m   [2][]int32     // m[0][a-1] == m01(a), m[1][a-1] == m12(a)
}

// New returns a symbol with n flags whose involutions are all unassigned.
func New(n int) *DSymbol {
	ds := &DSymbol{
		Nr1: 1,
		Nr2: 1,
	}
	for i := range ds.ops {
		ds.ops[i] = make([]Flag, n)
	}
	for i := range ds.m {
		ds.m[i] = make([]int32, n)
	}
	return ds
}

// Size returns the number of flags.
func (ds *DSymbol) Size() int {
	return len(ds.ops[0])
}

// Dim returns the dimension written in the symbol's text form, or 0 if it was omitted.
func (ds *DSymbol) Dim() int32 {
	return ds.dim
}

// Op returns s_i(a).
func (ds *DSymbol) Op(i int, a Flag) Flag {
	return ds.ops[i][a-1]
}

// SetOp assigns s_i(a) = b and s_i(b) = a.
func (ds *DSymbol) SetOp(i int, a, b Flag) {
	ds.ops[i][a-1] = b
	ds.ops[i][b-1] = a
}

// M returns the branching value m_ij at flag a.
func (ds *DSymbol) M(i, j int, a Flag) int32 {
	if i == j {
		return 1
	}
	switch PairIndex(i, j) {
	case 0:
		return ds.m[0][a-1]
	case 1:
		return ds.m[1][a-1]
	}
	return 2
}

// SetM assigns m_ij on the whole (i,j)-orbit of a.  Setting m02 has no effect.
func (ds *DSymbol) SetM(i, j int, a Flag, m int32) {
	p := PairIndex(i, j)
	if p > 1 {
		return
	}
	for _, x := range ds.Orbit(i, j, a) {
		ds.m[p][x-1] = m
	}
}

// R returns the period of s_i s_j acting on a.
func (ds *DSymbol) R(i, j int, a Flag) int32 {
	r := int32(0)
	x := a
	for {
		x = ds.Op(j, ds.Op(i, x))
		r++
		if x == a {
			return r
		}
	}
}

// V returns m_ij(a) / r_ij(a).
func (ds *DSymbol) V(i, j int, a Flag) int32 {
	return ds.M(i, j, a) / ds.R(i, j, a)
}

// Orbit returns the flags of the (i,j)-orbit of a in the order an alternating s_i, s_j walk from a meets them.
func (ds *DSymbol) Orbit(i, j int, a Flag) []Flag {
	orbit := []Flag{a}
	ops := [2]int{i, j}
	x := a
	for k := 0; ; k++ {
		x = ds.Op(ops[k&1], x)
		if x == a && k&1 == 1 {
			break
		}
		found := false
		for _, y := range orbit {
			if y == x {
				found = true
				break
			}
		}
		if !found {
			orbit = append(orbit, x)
		}
	}
	return orbit
}

// IsLoop returns true if no flag of the (i,j)-orbit of a is fixed by s_i or s_j.
func (ds *DSymbol) IsLoop(i, j int, a Flag) bool {
	for _, x := range ds.Orbit(i, j, a) {
		if ds.Op(i, x) == x || ds.Op(j, x) == x {
			return false
		}
	}
	return true
}

// ForEachOrbit calls fn for every (i,j)-orbit, in order of its smallest flag.
func (ds *DSymbol) ForEachOrbit(i, j int, fn func(rep Flag, orbit []Flag)) {
	n := ds.Size()
	seen := make([]bool, n)
	for a := Flag(1); int(a) <= n; a++ {
		if seen[a-1] {
			continue
		}
		orbit := ds.Orbit(i, j, a)
		for _, x := range orbit {
			seen[x-1] = true
		}
		fn(a, orbit)
	}
}

// NumOrbits returns the number of (i,j)-orbits.
func (ds *DSymbol) NumOrbits(i, j int) int {
	count := 0
	ds.ForEachOrbit(i, j, func(Flag, []Flag) {
		count++
	})
	return count
}

// EulerCharacteristic returns the Euler characteristic of the underlying surface of the orbifold,
// counted on the barycentric subdivision: vertices are orbits, edges are cycles of each s_k, faces are flags.
func (ds *DSymbol) EulerCharacteristic() int {
	n := ds.Size()
	chr := n
	for k := 0; k < NumOps; k++ {
		for a := Flag(1); int(a) <= n; a++ {
			if ds.Op(k, a) >= a {
				chr--
			}
		}
	}
	chr += ds.NumOrbits(0, 1) + ds.NumOrbits(1, 2) + ds.NumOrbits(0, 2)
	return chr
}

// Curvature returns sum(1/m) over all orbits counted per flag, minus the number of flags.
// Zero is euclidean, negative is hyperbolic and positive is spherical.
func (ds *DSymbol) Curvature() float64 {
	n := ds.Size()
	crv := -float64(n)
	for a := Flag(1); int(a) <= n; a++ {
		crv += 1/float64(ds.M(0, 1, a)) + 1/float64(ds.M(1, 2, a)) + 0.5
	}
	return crv
}

// IsFixedPointFree returns true if no involution fixes a flag.
func (ds *DSymbol) IsFixedPointFree() bool {
	for i := range ds.ops {
		for ai, b := range ds.ops[i] {
			if int(b) == ai+1 {
				return false
			}
		}
	}
	return true
}

// Orientation 2-colours the flags so that every involution swaps colours, ignoring fixed points.
// ori[a-1] is +1 or -1.  The bool is false if some involution joins two flags of the same colour.
func (ds *DSymbol) Orientation() (ori []int8, consistent bool) {
	n := ds.Size()
	ori = make([]int8, n)
	consistent = true

	stack := arraystack.New()
	for start := Flag(1); int(start) <= n; start++ {
		if ori[start-1] != 0 {
			continue
		}
		ori[start-1] = 1
		stack.Push(start)
		for !stack.Empty() {
			top, _ := stack.Pop()
			a := top.(Flag)
			for i := 0; i < NumOps; i++ {
				b := ds.Op(i, a)
				if b == a {
					continue
				}
				if ori[b-1] == 0 {
					ori[b-1] = -ori[a-1]
					stack.Push(b)
				} else if ori[b-1] == ori[a-1] {
					consistent = false
				}
			}
		}
	}
	return ori, consistent
}

// IsOrientable returns true if the underlying surface is orientable.
func (ds *DSymbol) IsOrientable() bool {
	_, consistent := ds.Orientation()
	return consistent
}

// IsOriented returns true if the symmetry group contains no orientation reversing element.
func (ds *DSymbol) IsOriented() bool {
	return ds.IsFixedPointFree() && ds.IsOrientable()
}

// IsConnected returns true if the involutions act transitively on the flags.
func (ds *DSymbol) IsConnected() bool {
	n := ds.Size()
	if n == 0 {
		return true
	}
	seen := make([]bool, n)
	seen[0] = true
	count := 1
	stack := arraystack.New()
	stack.Push(Flag(1))
	for !stack.Empty() {
		top, _ := stack.Pop()
		a := top.(Flag)
		for i := 0; i < NumOps; i++ {
			b := ds.Op(i, a)
			if !seen[b-1] {
				seen[b-1] = true
				count++
				stack.Push(b)
			}
		}
	}
	return count == n
}

// ChainEnd walks the (i,j)-orbit of a alternately applying s_i, s_j, s_i, ... until the next
// involution fixes the current flag.  It returns that flag and the index of the fixing involution.
// If the walk closes without meeting a fixed point, the orbit is a loop and (0, -1) is returned.
func (ds *DSymbol) ChainEnd(i, j int, a Flag) (Flag, int) {
	ops := [2]int{i, j}
	x := a
	for k := 0; ; k++ {
		op := ops[k&1]
		y := ds.Op(op, x)
		if y == x {
			return x, op
		}
		x = y
		if x == a && k&1 == 1 {
			return 0, -1
		}
	}
}

// Validate checks that the involutions are well-formed and that m01 and m12 are constant
// on their orbits and divisible by the orbit's rotation period.
func (ds *DSymbol) Validate() error {
	if ds == nil {
		return go2ds.ErrNilSymbol
	}
	n := ds.Size()
	if n == 0 {
		return go2ds.ErrEmptySymbol
	}
	if n > go2ds.MaxSize {
		return errors.Wrapf(go2ds.ErrBadIndex, "size %d exceeds %d", n, go2ds.MaxSize)
	}

	for i := range ds.ops {
		for ai, b := range ds.ops[i] {
			a := Flag(ai + 1)
			if b < 1 || int(b) > n {
				return errors.Wrapf(go2ds.ErrBadIndex, "s%d(%d) = %d", i, a, b)
			}
			if ds.Op(i, b) != a {
				return errors.Wrapf(go2ds.ErrBadInvolution, "s%d(%d) = %d but s%d(%d) = %d", i, a, b, i, b, ds.Op(i, b))
			}
		}
	}

	var err error
	checkPair := func(i, j int) {
		ds.ForEachOrbit(i, j, func(rep Flag, orbit []Flag) {
			if err != nil {
				return
			}
			m := ds.M(i, j, rep)
			for _, x := range orbit {
				if ds.M(i, j, x) != m {
					err = errors.Wrapf(go2ds.ErrInconsistentOrder, "m%d%d differs on orbit of %d", i, j, rep)
					return
				}
			}
			if r := ds.R(i, j, rep); m < 1 || m%r != 0 {
				err = errors.Wrapf(go2ds.ErrBadRotationOrder, "m%d%d(%d) = %d, r = %d", i, j, rep, m, r)
			}
		})
	}
	checkPair(0, 1)
	checkPair(1, 2)
	checkPair(0, 2)
	return err
}

// Copy returns a deep copy of ds.
func (ds *DSymbol) Copy() *DSymbol {
	dup := New(ds.Size())
	dup.Nr1 = ds.Nr1
	dup.Nr2 = ds.Nr2
	dup.dim = ds.dim
	for i := range ds.ops {
		copy(dup.ops[i], ds.ops[i])
	}
	for i := range ds.m {
		copy(dup.m[i], ds.m[i])
	}
	return dup
}

// Equal returns true if both symbols have the same flags, involutions and branching values.
// The numbering header is not compared.
func (ds *DSymbol) Equal(other *DSymbol) bool {
	if ds.Size() != other.Size() {
		return false
	}
	for i := range ds.ops {
		for ai := range ds.ops[i] {
			if ds.ops[i][ai] != other.ops[i][ai] {
				return false
			}
		}
	}
	for i := range ds.m {
		for ai := range ds.m[i] {
			if ds.m[i][ai] != other.m[i][ai] {
				return false
			}
		}
	}
	return true
}
