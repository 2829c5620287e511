package libds

// Flag is a one-based index of a chamber (flag) of a Delaney symbol.
// Zero denotes "no flag".
type Flag int32

// Dim is the only dimension supported: three involutions s0, s1, s2.
const Dim = 2

// NumOps is the number of involutions of a 2-dimensional symbol.
const NumOps = Dim + 1

// PairIndex maps an unordered index pair {i,j} to 0 for {0,1}, 1 for {1,2} and 2 for {0,2}.
func PairIndex(i, j int) int {
	if i > j {
		i, j = j, i
	}
	switch {
	case i == 0 && j == 1:
		return 0
	case i == 1 && j == 2:
		return 1
	}
	return 2
}

// PairOps returns the index pair (i,j), i < j, around the vertex type c,
// i.e. the two involutions other than s_c.
func PairOps(c int) (int, int) {
	switch c {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	}
	return 0, 1
}
