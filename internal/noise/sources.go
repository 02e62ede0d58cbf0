package noise

import (
	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// OpenSimplex adapts an OpenSimplex generator to the Module interfaces. It
// ignores periodicity and is mainly useful as an alternative base field for
// the modifiers and combiners.
type OpenSimplex[T Float] struct {
	seed int64
	gen  opensimplex.Noise
}

// NewOpenSimplex returns an OpenSimplex source for seed.
func NewOpenSimplex[T Float](seed int64) OpenSimplex[T] {
	return OpenSimplex[T]{seed: seed, gen: opensimplex.New(seed)}
}

func (o OpenSimplex[T]) Seed() int64 { return o.seed }

func (o OpenSimplex[T]) Get2(p Point2[T]) T {
	return T(o.gen.Eval2(float64(p[0]), float64(p[1])))
}

func (o OpenSimplex[T]) Get3(p Point3[T]) T {
	return T(o.gen.Eval3(float64(p[0]), float64(p[1]), float64(p[2])))
}

func (o OpenSimplex[T]) Get4(p Point4[T]) T {
	return T(o.gen.Eval4(float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3])))
}

// Classic wraps the reference improved-noise implementation with its own
// built-in octave sum. It only provides two and three dimensions.
//
// alpha is the weight divisor between octaves, beta the frequency multiplier
// and octaves the number of summed layers.
type Classic[T Float] struct {
	seed    int64
	alpha   float64
	beta    float64
	octaves int
	gen     *perlin.Perlin
}

const (
	DefaultClassicAlpha   = 2.0
	DefaultClassicBeta    = 2.0
	DefaultClassicOctaves = 3
)

// NewClassic returns a Classic source for seed with the default octave
// settings.
func NewClassic[T Float](seed int64) Classic[T] {
	return NewClassicWith[T](seed, DefaultClassicAlpha, DefaultClassicBeta, DefaultClassicOctaves)
}

// NewClassicWith returns a Classic source with explicit octave settings.
// octaves is clamped to [1, MaxOctaves].
func NewClassicWith[T Float](seed int64, alpha, beta float64, octaves int) Classic[T] {
	octaves = clampOctaves(octaves)
	return Classic[T]{
		seed:    seed,
		alpha:   alpha,
		beta:    beta,
		octaves: octaves,
		gen:     perlin.NewPerlin(alpha, beta, int32(octaves), seed),
	}
}

func (c Classic[T]) Seed() int64 { return c.seed }
func (c Classic[T]) Octaves() int { return c.octaves }

func (c Classic[T]) Get2(p Point2[T]) T {
	return T(c.gen.Noise2D(float64(p[0]), float64(p[1])))
}

func (c Classic[T]) Get3(p Point3[T]) T {
	return T(c.gen.Noise3D(float64(p[0]), float64(p[1]), float64(p[2])))
}
