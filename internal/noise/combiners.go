package noise

import "math"

// Binary combines the outputs of two source modules sampled at the same point.
type Binary[T Float] struct {
	a, b Module[T]
	op   func(a, b T) T
}

// NewBinary outputs op(a(p), b(p)). op must be pure.
func NewBinary[T Float](a, b Module[T], op func(a, b T) T) Binary[T] {
	return Binary[T]{a: a, b: b, op: op}
}

// NewAdd outputs a+b.
func NewAdd[T Float](a, b Module[T]) Binary[T] {
	return NewBinary(a, b, func(x, y T) T { return x + y })
}

// NewMultiply outputs a*b.
func NewMultiply[T Float](a, b Module[T]) Binary[T] {
	return NewBinary(a, b, func(x, y T) T { return x * y })
}

// NewMin outputs the smaller of a and b.
func NewMin[T Float](a, b Module[T]) Binary[T] {
	return NewBinary(a, b, func(x, y T) T { return min(x, y) })
}

// NewMax outputs the larger of a and b.
func NewMax[T Float](a, b Module[T]) Binary[T] {
	return NewBinary(a, b, func(x, y T) T { return max(x, y) })
}

// NewPower outputs a raised to b.
func NewPower[T Float](a, b Module[T]) Binary[T] {
	return NewBinary(a, b, func(x, y T) T { return T(math.Pow(float64(x), float64(y))) })
}

// Sources returns both wrapped modules.
func (c Binary[T]) Sources() (Module[T], Module[T]) { return c.a, c.b }

func (c Binary[T]) Get2(p Point2[T]) T { return c.op(c.a.Get2(p), c.b.Get2(p)) }
func (c Binary[T]) Get3(p Point3[T]) T { return c.op(c.a.Get3(p), c.b.Get3(p)) }
func (c Binary[T]) Get4(p Point4[T]) T { return c.op(c.a.Get4(p), c.b.Get4(p)) }
