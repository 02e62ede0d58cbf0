package noise

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Float is the set of numeric types a module can be evaluated over.
type Float interface {
	constraints.Float
}

func floor[T Float](x T) T { return T(math.Floor(float64(x))) }

func abs[T Float](x T) T { return T(math.Abs(float64(x))) }

func clamp[T Float](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// powi raises a to an integer power by binary exponentiation.
func powi[T Float](a T, n int) T {
	recip := n < 0
	if recip {
		n = -n
	}
	r := T(1)
	for {
		if n&1 != 0 {
			r *= a
		}
		n /= 2
		if n == 0 {
			break
		}
		a *= a
	}
	if recip {
		return 1 / r
	}
	return r
}

// mulAdd computes a*b+c with a single rounding.
func mulAdd[T Float](a, b, c T) T {
	return T(math.FMA(float64(a), float64(b), float64(c)))
}

// modulo returns the non-negative remainder of a divided by m.
func modulo(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
