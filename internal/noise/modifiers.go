package noise

import "math"

// Unary applies a fixed scalar function to the output of a source module.
type Unary[T Float] struct {
	source Module[T]
	fn     func(T) T
}

// NewUnary wraps source so every sample v becomes fn(v). fn must be pure.
func NewUnary[T Float](source Module[T], fn func(T) T) Unary[T] {
	return Unary[T]{source: source, fn: fn}
}

// NewAbs outputs |v|.
func NewAbs[T Float](source Module[T]) Unary[T] {
	return NewUnary(source, abs[T])
}

// NewNegate outputs -v.
func NewNegate[T Float](source Module[T]) Unary[T] {
	return NewUnary(source, func(v T) T { return -v })
}

// NewClamp limits v to [lo, hi]. The bounds are swapped if given in reverse.
func NewClamp[T Float](source Module[T], lo, hi T) Unary[T] {
	if lo > hi {
		lo, hi = hi, lo
	}
	return NewUnary(source, func(v T) T { return clamp(v, lo, hi) })
}

// NewScaleBias outputs v*scale + bias.
func NewScaleBias[T Float](source Module[T], scale, bias T) Unary[T] {
	return NewUnary(source, func(v T) T { return mulAdd(v, scale, bias) })
}

// NewExponent maps v from [-1, 1] to [0, 1], raises it to exponent and maps
// the result back to [-1, 1].
func NewExponent[T Float](source Module[T], exponent T) Unary[T] {
	return NewUnary(source, func(v T) T {
		n := math.Abs((float64(v) + 1) / 2)
		return T(math.Pow(n, float64(exponent))*2 - 1)
	})
}

// Source returns the wrapped module.
func (u Unary[T]) Source() Module[T] { return u.source }

func (u Unary[T]) Get2(p Point2[T]) T { return u.fn(u.source.Get2(p)) }
func (u Unary[T]) Get3(p Point3[T]) T { return u.fn(u.source.Get3(p)) }
func (u Unary[T]) Get4(p Point4[T]) T { return u.fn(u.source.Get4(p)) }
