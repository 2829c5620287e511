package libds

// Dual swaps s0 with s2 and m01 with m12.
func Dual(ds *DSymbol) *DSymbol {
	dual := ds.Copy()
	dual.ops[0], dual.ops[2] = dual.ops[2], dual.ops[0]
	dual.m[0], dual.m[1] = dual.m[1], dual.m[0]
	return dual
}

// OrientationCover returns a copy of ds if it is oriented.
// Otherwise it returns the 2n-flag symbol on (a, +1), (a, -1) where s_i(a, e) = (s_i(a), -e).
// Flag (a, +1) is numbered a and (a, -1) is numbered a+n.
func OrientationCover(ds *DSymbol) *DSymbol {
	if ds.IsOriented() {
		return ds.Copy()
	}

	n := ds.Size()
	cov := New(2 * n)
	cov.Nr1 = ds.Nr1
	cov.Nr2 = ds.Nr2
	cov.dim = ds.dim
	for i := range ds.ops {
		for ai, b := range ds.ops[i] {
			a := Flag(ai + 1)
			cov.SetOp(i, a, b+Flag(n))
		}
	}
	for p := range ds.m {
		copy(cov.m[p][:n], ds.m[p])
		copy(cov.m[p][n:], ds.m[p])
	}
	return cov
}

// Orientate returns a symbol whose group is the orientation preserving subgroup of the group of ds.
func Orientate(ds *DSymbol) *DSymbol {
	return OrientationCover(ds)
}

// MaxSymmetry returns the smallest symbol ds covers: it repeatedly collapses ds by the congruence
// generated by identifying flag 1 with another flag, as long as m01 and m12 are constant on every class.
func MaxSymmetry(ds *DSymbol) *DSymbol {
	cur := ds.Copy()
	for {
		next := cur.collapse()
		if next == nil {
			return cur
		}
		cur = next
	}
}

// IsMaximalSymmetry returns true if no proper quotient of ds exists.
func IsMaximalSymmetry(ds *DSymbol) bool {
	return ds.collapse() == nil
}

// collapse returns the first valid proper quotient of ds, or nil.
func (ds *DSymbol) collapse() *DSymbol {
	n := ds.Size()
	for b := Flag(2); int(b) <= n; b++ {
		classes, ok := ds.congruence(1, b)
		if ok {
			return ds.quotient(classes)
		}
	}
	return nil
}

// congruence returns the finest partition identifying a and b that every involution respects,
// as a union-find forest, and whether m01 and m12 are constant on each class.
func (ds *DSymbol) congruence(a, b Flag) (unionFind, bool) {
	uf := newUnionFind(ds.Size())

	pending := [][2]Flag{{a, b}}
	for len(pending) > 0 {
		pair := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		x, y := pair[0], pair[1]
		if !uf.union(x, y) {
			continue
		}
		if ds.m[0][x-1] != ds.m[0][y-1] || ds.m[1][x-1] != ds.m[1][y-1] {
			return uf, false
		}
		for i := 0; i < NumOps; i++ {
			pending = append(pending, [2]Flag{ds.Op(i, x), ds.Op(i, y)})
		}
	}
	return uf, true
}

// quotient builds the symbol on the classes of uf, numbered in order of their smallest flag.
func (ds *DSymbol) quotient(uf unionFind) *DSymbol {
	n := ds.Size()
	number := make([]Flag, n)
	count := Flag(0)
	for a := Flag(1); int(a) <= n; a++ {
		root := uf.find(a)
		if number[root-1] == 0 {
			count++
			number[root-1] = count
		}
		number[a-1] = number[root-1]
	}

	q := New(int(count))
	q.Nr1 = ds.Nr1
	q.Nr2 = ds.Nr2
	q.dim = ds.dim
	for a := Flag(1); int(a) <= n; a++ {
		qa := number[a-1]
		for i := 0; i < NumOps; i++ {
			q.ops[i][qa-1] = number[ds.Op(i, a)-1]
		}
		q.m[0][qa-1] = ds.m[0][a-1]
		q.m[1][qa-1] = ds.m[1][a-1]
	}
	return q
}

// Canonical returns ds renumbered so that equivalent symbols have equal text forms.
//
// For each start flag the flags are numbered in breadth first order following s0, s1, s2,
// and the numbering with the smallest invariant sequence is kept.
func Canonical(ds *DSymbol) *DSymbol {
	n := ds.Size()
	var best []int32
	var bestOrder []Flag
	for start := Flag(1); int(start) <= n; start++ {
		order, number := ds.traversal(start)
		inv := ds.invariant(order, number)
		if best == nil || lessInvariant(inv, best) {
			best = inv
			bestOrder = order
		}
	}
	return ds.renumber(bestOrder)
}

func (ds *DSymbol) traversal(start Flag) ([]Flag, []Flag) {
	n := ds.Size()
	number := make([]Flag, n)
	order := make([]Flag, 0, n)

	visit := func(a Flag) {
		order = append(order, a)
		number[a-1] = Flag(len(order))
	}
	visit(start)
	for next := Flag(1); ; {
		for pos := 0; pos < len(order); pos++ {
			for i := 0; i < NumOps; i++ {
				if b := ds.Op(i, order[pos]); number[b-1] == 0 {
					visit(b)
				}
			}
		}
		if len(order) == n {
			break
		}
		for number[next-1] != 0 {
			next++
		}
		visit(next)
	}
	return order, number
}

func (ds *DSymbol) invariant(order, number []Flag) []int32 {
	inv := make([]int32, 0, 5*len(order))
	for _, a := range order {
		for i := 0; i < NumOps; i++ {
			inv = append(inv, int32(number[ds.Op(i, a)-1]))
		}
		inv = append(inv, ds.m[0][a-1], ds.m[1][a-1])
	}
	return inv
}

func lessInvariant(a, b []int32) bool {
	for k := range a {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return false
}

func (ds *DSymbol) renumber(order []Flag) *DSymbol {
	n := ds.Size()
	number := make([]Flag, n)
	for pos, a := range order {
		number[a-1] = Flag(pos + 1)
	}
	out := New(n)
	out.Nr1 = ds.Nr1
	out.Nr2 = ds.Nr2
	out.dim = ds.dim
	for _, a := range order {
		na := number[a-1]
		for i := 0; i < NumOps; i++ {
			out.ops[i][na-1] = number[ds.Op(i, a)-1]
		}
		out.m[0][na-1] = ds.m[0][a-1]
		out.m[1][na-1] = ds.m[1][a-1]
	}
	return out
}

type unionFind []Flag

func newUnionFind(n int) unionFind {
	uf := make(unionFind, n)
	for i := range uf {
		uf[i] = Flag(i + 1)
	}
	return uf
}

func (uf unionFind) find(a Flag) Flag {
	for uf[a-1] != a {
		uf[a-1] = uf[uf[a-1]-1]
		a = uf[a-1]
	}
	return a
}

// union merges the classes of a and b, returning false if they were already one class.
func (uf unionFind) union(a, b Flag) bool {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return false
	}
	if ra < rb {
		uf[rb-1] = ra
	} else {
		uf[ra-1] = rb
	}
	return true
}
