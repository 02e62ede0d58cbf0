package noise

import "math"

const (
	DefaultTurbulenceSeed      = 0
	DefaultTurbulenceFrequency = 1.0
	DefaultTurbulencePower     = 1.0
	DefaultTurbulenceRoughness = 3
)

// turbulenceOffsets[a] shifts the point before the displacement for axis a is
// sampled, so the four displacement fields never sample the same location.
var turbulenceOffsets = [4][4]float64{
	{12414.0 / 65536.0, 65124.0 / 65536.0, 31337.0 / 65536.0, 46339.0 / 65536.0},
	{26519.0 / 65536.0, 18128.0 / 65536.0, 60493.0 / 65536.0, 27691.0 / 65536.0},
	{53820.0 / 65536.0, 11213.0 / 65536.0, 44845.0 / 65536.0, 7383.0 / 65536.0},
	{31547.0 / 65536.0, 52039.0 / 65536.0, 19403.0 / 65536.0, 41467.0 / 65536.0},
}

// Turbulence warps the domain of a source module. Each axis of the input
// point is displaced by power times an fBm field seeded seed+axis, then the
// source is sampled at the displaced point.
type Turbulence[T Float] struct {
	source    Module[T]
	seed      int64
	frequency T
	power     T
	roughness int
	period    int
	periodic  bool

	distort [4]Fractal[T]
}

// NewTurbulence wraps source with the default displacement settings.
func NewTurbulence[T Float](source Module[T]) Turbulence[T] {
	t := Turbulence[T]{
		source:    source,
		seed:      DefaultTurbulenceSeed,
		frequency: DefaultTurbulenceFrequency,
		power:     DefaultTurbulencePower,
		roughness: DefaultTurbulenceRoughness,
		period:    DefaultFractalPeriod,
	}
	t.distort = t.buildDistort()
	return t
}

// WithSeed returns a copy whose displacement fields are seeded seed..seed+3.
func (t Turbulence[T]) WithSeed(seed int64) Turbulence[T] {
	if t.seed == seed {
		return t
	}
	t.seed = seed
	t.distort = t.buildDistort()
	return t
}

// WithFrequency returns a copy sampling the displacement fields at
// point·frequency.
func (t Turbulence[T]) WithFrequency(frequency T) Turbulence[T] {
	if t.frequency == frequency {
		return t
	}
	t.frequency = frequency
	t.distort = t.buildDistort()
	return t
}

// WithPower returns a copy scaling every displacement by power.
func (t Turbulence[T]) WithPower(power T) Turbulence[T] {
	t.power = power
	return t
}

// WithRoughness returns a copy using roughness octaves per displacement
// field, clamped to [1, MaxOctaves].
func (t Turbulence[T]) WithRoughness(roughness int) Turbulence[T] {
	roughness = clampOctaves(roughness)
	if t.roughness == roughness {
		return t
	}
	t.roughness = roughness
	t.distort = t.buildDistort()
	return t
}

// WithPeriod returns a copy whose displacement tiles every period input
// units. The displacement fields get a lattice period of period·frequency
// rounded to an integer, so tiling is exact only when that product is whole.
// The source module must be made periodic with the same period separately.
func (t Turbulence[T]) WithPeriod(period int) Turbulence[T] {
	if period < 1 {
		period = 1
	}
	if t.periodic && t.period == period {
		return t
	}
	t.period = period
	t.periodic = true
	t.distort = t.buildDistort()
	return t
}

func (t Turbulence[T]) Source() Module[T] { return t.source }
func (t Turbulence[T]) Seed() int64 { return t.seed }
func (t Turbulence[T]) Frequency() T { return t.frequency }
func (t Turbulence[T]) Power() T { return t.power }
func (t Turbulence[T]) Roughness() int { return t.roughness }
func (t Turbulence[T]) Period() int { return t.period }
func (t Turbulence[T]) Periodic() bool { return t.periodic }

func (t Turbulence[T]) buildDistort() [4]Fractal[T] {
	var d [4]Fractal[T]
	for a := range d {
		f := NewFbm[T]().
			WithSeed(t.seed + int64(a)).
			WithOctaves(t.roughness).
			WithFrequency(t.frequency)
		if t.periodic {
			f = f.WithPeriod(int(math.Round(float64(t.period) * float64(t.frequency))))
		}
		d[a] = f
	}
	return d
}

// Get2 samples the source at the displaced two-dimensional point.
func (t Turbulence[T]) Get2(p Point2[T]) T {
	var warped Point2[T]
	for a := range warped {
		o := &turbulenceOffsets[a]
		q := Point2[T]{p[0] + T(o[0]), p[1] + T(o[1])}
		warped[a] = p[a] + t.distort[a].Get2(q)*t.power
	}
	return t.source.Get2(warped)
}

// Get3 samples the source at the displaced three-dimensional point.
func (t Turbulence[T]) Get3(p Point3[T]) T {
	var warped Point3[T]
	for a := range warped {
		o := &turbulenceOffsets[a]
		q := Point3[T]{p[0] + T(o[0]), p[1] + T(o[1]), p[2] + T(o[2])}
		warped[a] = p[a] + t.distort[a].Get3(q)*t.power
	}
	return t.source.Get3(warped)
}

// Get4 samples the source at the displaced four-dimensional point.
func (t Turbulence[T]) Get4(p Point4[T]) T {
	var warped Point4[T]
	for a := range warped {
		o := &turbulenceOffsets[a]
		q := Point4[T]{p[0] + T(o[0]), p[1] + T(o[1]), p[2] + T(o[2]), p[3] + T(o[3])}
		warped[a] = p[a] + t.distort[a].Get4(q)*t.power
	}
	return t.source.Get4(warped)
}
