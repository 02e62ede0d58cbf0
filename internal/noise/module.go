package noise

// Point2 is a point in two dimensions.
type Point2[T Float] [2]T

// Point3 is a point in three dimensions.
type Point3[T Float] [3]T

// Point4 is a point in four dimensions.
type Point4[T Float] [4]T

// Scale multiplies every coordinate by k.
func (p Point2[T]) Scale(k T) Point2[T] { return Point2[T]{p[0] * k, p[1] * k} }

// Scale multiplies every coordinate by k.
func (p Point3[T]) Scale(k T) Point3[T] { return Point3[T]{p[0] * k, p[1] * k, p[2] * k} }

// Scale multiplies every coordinate by k.
func (p Point4[T]) Scale(k T) Point4[T] {
	return Point4[T]{p[0] * k, p[1] * k, p[2] * k, p[3] * k}
}

// Module2 samples a field at two-dimensional points.
type Module2[T Float] interface {
	Get2(p Point2[T]) T
}

// Module3 samples a field at three-dimensional points.
type Module3[T Float] interface {
	Get3(p Point3[T]) T
}

// Module4 samples a field at four-dimensional points.
type Module4[T Float] interface {
	Get4(p Point4[T]) T
}

// Module is a field that can be sampled in two, three and four dimensions.
// Every combinator in this package accepts and implements Module.
type Module[T Float] interface {
	Module2[T]
	Module3[T]
	Module4[T]
}

// scalable is satisfied by the point types; it lets the octave loop be
// written once for all dimensions.
type scalable[T Float, P any] interface {
	Scale(k T) P
}
