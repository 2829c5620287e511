package domain

import "math"

// regulaFalsi finds a root of f in [lr, hr], where f(lr) and f(hr) differ in sign.
//
// Each iteration tries the secant point, then the midpoint if it still lies inside the
// narrowed bracket.  It stops when an iteration leaves the bracket unchanged or after maxIter
// iterations and returns the bracket end with the smaller residual.
func regulaFalsi(f func(float64) float64, lr, hr float64, maxIter int) float64 {
	la, ha := f(lr), f(hr)

	for it := 0; it < maxIter; it++ {
		if la == 0 {
			return lr
		}
		if ha == 0 {
			return hr
		}

		prevL, prevH := lr, hr
		secant := hr - ha*(hr-lr)/(ha-la)
		for _, r := range [2]float64{secant, (lr + hr) / 2} {
			if !(r > lr && r < hr) {
				continue
			}
			a := f(r)
			if a == 0 {
				return r
			}
			if math.Signbit(a) == math.Signbit(la) {
				lr, la = r, a
			} else {
				hr, ha = r, a
			}
		}
		if lr == prevL && hr == prevH {
			break
		}
	}

	if math.Abs(la) < math.Abs(ha) {
		return lr
	}
	return hr
}
