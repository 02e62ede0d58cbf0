package noise

// gradient is a direction vector; unused trailing components are zero.
type gradient [4]float64

const (
	diag2 = 0.7071067811865476 // 1/sqrt(2)
	diag3 = 0.5773502691896258 // 1/sqrt(3)
)

var gradients2 = []gradient{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{diag2, diag2}, {-diag2, diag2}, {diag2, -diag2}, {-diag2, -diag2},
}

// Cube edge midpoints appear twice so they outweigh the corners 3:1.
var gradients3 = []gradient{
	{diag2, diag2, 0}, {-diag2, diag2, 0}, {diag2, -diag2, 0}, {-diag2, -diag2, 0},
	{diag2, 0, diag2}, {-diag2, 0, diag2}, {diag2, 0, -diag2}, {-diag2, 0, -diag2},
	{0, diag2, diag2}, {0, -diag2, diag2}, {0, diag2, -diag2}, {0, -diag2, -diag2},
	{diag2, diag2, 0}, {-diag2, diag2, 0}, {diag2, -diag2, 0}, {-diag2, -diag2, 0},
	{diag2, 0, diag2}, {-diag2, 0, diag2}, {diag2, 0, -diag2}, {-diag2, 0, -diag2},
	{0, diag2, diag2}, {0, -diag2, diag2}, {0, diag2, -diag2}, {0, -diag2, -diag2},
	{diag3, diag3, diag3}, {-diag3, diag3, diag3}, {diag3, -diag3, diag3}, {-diag3, -diag3, diag3},
	{diag3, diag3, -diag3}, {-diag3, diag3, -diag3}, {diag3, -diag3, -diag3}, {-diag3, -diag3, -diag3},
}

// Tesseract edge midpoints, normalised.
var gradients4 = []gradient{
	{0, diag3, diag3, diag3}, {0, diag3, diag3, -diag3}, {0, diag3, -diag3, diag3}, {0, diag3, -diag3, -diag3},
	{0, -diag3, diag3, diag3}, {0, -diag3, diag3, -diag3}, {0, -diag3, -diag3, diag3}, {0, -diag3, -diag3, -diag3},
	{diag3, 0, diag3, diag3}, {diag3, 0, diag3, -diag3}, {diag3, 0, -diag3, diag3}, {diag3, 0, -diag3, -diag3},
	{-diag3, 0, diag3, diag3}, {-diag3, 0, diag3, -diag3}, {-diag3, 0, -diag3, diag3}, {-diag3, 0, -diag3, -diag3},
	{diag3, diag3, 0, diag3}, {diag3, diag3, 0, -diag3}, {diag3, -diag3, 0, diag3}, {diag3, -diag3, 0, -diag3},
	{-diag3, diag3, 0, diag3}, {-diag3, diag3, 0, -diag3}, {-diag3, -diag3, 0, diag3}, {-diag3, -diag3, 0, -diag3},
	{diag3, diag3, diag3, 0}, {diag3, diag3, -diag3, 0}, {diag3, -diag3, diag3, 0}, {diag3, -diag3, -diag3, 0},
	{-diag3, diag3, diag3, 0}, {-diag3, diag3, -diag3, 0}, {-diag3, -diag3, diag3, 0}, {-diag3, -diag3, -diag3, 0},
}

func pickGradient(set []gradient, h uint8) *gradient {
	return &set[int(h)%len(set)]
}
