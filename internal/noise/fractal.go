package noise

import "fmt"

const (
	// MaxOctaves bounds the octave count of a Fractal.
	MaxOctaves = 32

	// DefaultFractalSeed is the seed of the first octave.
	DefaultFractalSeed = 0
	// DefaultOctaves is the octave count of a new Fractal.
	DefaultOctaves = 6
	// DefaultFrequency is the frequency of the first octave.
	DefaultFrequency = 1.0
	// DefaultLacunarity is the per-octave frequency multiplier.
	DefaultLacunarity = 2.0
	// DefaultGain is the ridge weight gain.
	DefaultGain = 2.0
	// DefaultFractalPeriod is the first octave's wrap extent once periodicity is enabled.
	DefaultFractalPeriod = 256
)

// Default persistence per kind.
const (
	DefaultRidgedPersistence = 1.0
	DefaultFbmPersistence    = 0.5
	DefaultBillowPersistence = 0.5
	DefaultBasicPersistence  = 0.5
	DefaultHybridPersistence = 0.25
)

// Kind identifies the octave combination rule of a Fractal.
type Kind int

const (
	// KindFbm sums raw octaves (fractional Brownian motion).
	KindFbm Kind = iota
	// KindBillow sums octaves folded to 2|s|-1.
	KindBillow
	// KindRidgedMulti sums squared ridges weighted by the previous octave.
	KindRidgedMulti
	// KindHybridMulti scales later octaves by the running result.
	KindHybridMulti
	// KindBasicMulti multiplies each octave into the running result.
	KindBasicMulti
)

// String returns the pipeline name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFbm:
		return "fbm"
	case KindBillow:
		return "billow"
	case KindRidgedMulti:
		return "ridged"
	case KindHybridMulti:
		return "hybrid"
	case KindBasicMulti:
		return "basic"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Fractal sums octaves of independently seeded Perlin noise. Octave i is
// sampled at point·frequency·lacunarity^i from a source seeded seed+i, and
// its amplitude is persistence^i. How the octaves are folded together is
// decided by the Kind.
//
// The per-octave sources are derived state: they are rebuilt by the With*
// methods whenever seed, octave count, period, or (when periodic)
// lacunarity change, so a Fractal always holds exactly Octaves() sources.
type Fractal[T Float] struct {
	kind        Kind
	rule        rule[T]
	seed        int64
	octaves     int
	frequency   T
	lacunarity  T
	persistence T
	gain        T
	period      int
	periodic    bool

	sources []Perlin[T]
	norm    T
}

// NewFbm returns fractal Brownian motion: a plain amplitude-weighted sum of
// octaves, divided by the sum of amplitudes.
func NewFbm[T Float]() Fractal[T] {
	return newFractal[T](KindFbm, DefaultFbmPersistence)
}

// NewBillow returns billowy noise: every octave is folded with 2|s|-1 before
// being summed like fBm, giving puffy, cloud-like shapes.
func NewBillow[T Float]() Fractal[T] {
	return newFractal[T](KindBillow, DefaultBillowPersistence)
}

// NewRidgedMulti returns ridged-multifractal noise. Each octave is folded
// with (1-|s|)² and weighted by the previous octave, producing sharp ridges.
// With default parameters the output lies within [-1, 1].
func NewRidgedMulti[T Float]() Fractal[T] {
	return newFractal[T](KindRidgedMulti, DefaultRidgedPersistence)
}

// NewHybridMulti returns hybrid-multifractal noise, where the running value
// damps the contribution of later octaves: low areas stay smooth while high
// areas gather detail.
func NewHybridMulti[T Float]() Fractal[T] {
	return newFractal[T](KindHybridMulti, DefaultHybridPersistence)
}

// NewBasicMulti returns basic multifractal noise, where each octave is scaled
// by the running result.
func NewBasicMulti[T Float]() Fractal[T] {
	return newFractal[T](KindBasicMulti, DefaultBasicPersistence)
}

func newFractal[T Float](kind Kind, persistence T) Fractal[T] {
	f := Fractal[T]{
		kind:        kind,
		rule:        ruleFor[T](kind),
		seed:        DefaultFractalSeed,
		octaves:     DefaultOctaves,
		frequency:   DefaultFrequency,
		lacunarity:  DefaultLacunarity,
		persistence: persistence,
		gain:        DefaultGain,
		period:      DefaultFractalPeriod,
	}
	f.sources = f.buildSources()
	f.norm = f.rule.scale(f.persistence, f.octaves)
	return f
}

// WithSeed returns a copy whose octave i is seeded seed+i.
func (f Fractal[T]) WithSeed(seed int64) Fractal[T] {
	if f.seed == seed {
		return f
	}
	f.seed = seed
	f.sources = f.buildSources()
	return f
}

// WithOctaves returns a copy with the given octave count, clamped to
// [1, MaxOctaves]. Asking for the current count returns f unchanged.
func (f Fractal[T]) WithOctaves(octaves int) Fractal[T] {
	octaves = clampOctaves(octaves)
	if f.octaves == octaves {
		return f
	}
	f.octaves = octaves
	f.sources = f.buildSources()
	f.norm = f.ruleOf().scale(f.persistence, f.octaves)
	return f
}

// WithFrequency returns a copy sampling the first octave at point·frequency.
func (f Fractal[T]) WithFrequency(frequency T) Fractal[T] {
	f.frequency = frequency
	return f
}

// WithLacunarity returns a copy whose frequency grows by lacunarity per
// octave. Periodic fractals rebuild their sources so each octave's period
// grows by the same factor.
func (f Fractal[T]) WithLacunarity(lacunarity T) Fractal[T] {
	if f.lacunarity == lacunarity {
		return f
	}
	f.lacunarity = lacunarity
	if f.periodic {
		f.sources = f.buildSources()
	}
	return f
}

// WithPersistence returns a copy whose amplitude shrinks by persistence per
// octave.
func (f Fractal[T]) WithPersistence(persistence T) Fractal[T] {
	f.persistence = persistence
	f.norm = f.ruleOf().scale(f.persistence, f.octaves)
	return f
}

// WithGain returns a copy with the given ridge weight gain. Only
// ridged-multifractal noise uses it.
func (f Fractal[T]) WithGain(gain T) Fractal[T] {
	f.gain = gain
	return f
}

// WithPeriod returns a copy that tiles every period units of the scaled
// input (period/frequency units of the raw input). Octave i wraps at
// period·lacunarity^i. Periods below 1 are treated as 1.
func (f Fractal[T]) WithPeriod(period int) Fractal[T] {
	if period < 1 {
		period = 1
	}
	if f.periodic && f.period == period {
		return f
	}
	f.period = period
	f.periodic = true
	f.sources = f.buildSources()
	return f
}

// Kind returns the octave combination rule.
func (f Fractal[T]) Kind() Kind { return f.kind }

// Seed returns the seed of the first octave.
func (f Fractal[T]) Seed() int64 { return f.seed }

// Octaves returns the number of octaves.
func (f Fractal[T]) Octaves() int { return f.octaves }

// Frequency returns the frequency of the first octave.
func (f Fractal[T]) Frequency() T { return f.frequency }

// Lacunarity returns the per-octave frequency multiplier.
func (f Fractal[T]) Lacunarity() T { return f.lacunarity }

// Persistence returns the per-octave amplitude multiplier.
func (f Fractal[T]) Persistence() T { return f.persistence }

// Gain returns the ridge weight gain.
func (f Fractal[T]) Gain() T { return f.gain }

// Period returns the wrap extent of the first octave.
func (f Fractal[T]) Period() int { return f.period }

// Periodic reports whether the fractal tiles.
func (f Fractal[T]) Periodic() bool { return f.periodic }

// ruleOf returns the configured rule, or the kind's rule for a zero value.
func (f Fractal[T]) ruleOf() rule[T] {
	if f.rule != nil {
		return f.rule
	}
	return ruleFor[T](f.kind)
}

// Get2 samples the field at a two-dimensional point.
func (f Fractal[T]) Get2(p Point2[T]) T {
	return fold[T, Point2[T]](&f, p, Perlin[T].Get2)
}

// Get3 samples the field at a three-dimensional point.
func (f Fractal[T]) Get3(p Point3[T]) T {
	return fold[T, Point3[T]](&f, p, Perlin[T].Get3)
}

// Get4 samples the field at a four-dimensional point.
func (f Fractal[T]) Get4(p Point4[T]) T {
	return fold[T, Point4[T]](&f, p, Perlin[T].Get4)
}

// fold is the octave loop shared by every kind and dimension.
func fold[T Float, P scalable[T, P]](f *Fractal[T], p P, get func(Perlin[T], P) T) T {
	r := f.ruleOf()

	s := octaveState[T]{weight: 1, gain: f.gain}
	p = p.Scale(f.frequency)
	for i, src := range f.sources {
		s.amp = powi(f.persistence, i)
		r.octave(&s, i, get(src, p))
		p = p.Scale(f.lacunarity)
	}
	return r.finish(&s, f.norm)
}

func (f *Fractal[T]) buildSources() []Perlin[T] {
	sources := make([]Perlin[T], f.octaves)
	period := f.period
	for i := range sources {
		src := NewPerlin[T]().WithSeed(f.seed + int64(i))
		if f.periodic {
			src = src.WithPeriod(period)
			period = int(T(period) * f.lacunarity)
		}
		sources[i] = src
	}
	return sources
}

func clampOctaves(octaves int) int {
	if octaves < 1 {
		return 1
	}
	if octaves > MaxOctaves {
		return MaxOctaves
	}
	return octaves
}
