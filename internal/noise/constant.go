package noise

// Constant outputs the same value everywhere.
type Constant[T Float] struct {
	Value T
}

// NewConstant returns a module that always yields v.
func NewConstant[T Float](v T) Constant[T] { return Constant[T]{Value: v} }

func (c Constant[T]) Get2(Point2[T]) T { return c.Value }
func (c Constant[T]) Get3(Point3[T]) T { return c.Value }
func (c Constant[T]) Get4(Point4[T]) T { return c.Value }
