package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allKinds() map[string]Fractal[float64] {
	return map[string]Fractal[float64]{
		"fbm":    NewFbm[float64](),
		"billow": NewBillow[float64](),
		"ridged": NewRidgedMulti[float64](),
		"hybrid": NewHybridMulti[float64](),
		"basic":  NewBasicMulti[float64](),
	}
}

func TestFractalDefaults(t *testing.T) {
	persistence := map[string]float64{
		"fbm":    DefaultFbmPersistence,
		"billow": DefaultBillowPersistence,
		"ridged": DefaultRidgedPersistence,
		"hybrid": DefaultHybridPersistence,
		"basic":  DefaultBasicPersistence,
	}
	for name, f := range allKinds() {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, name, f.Kind().String())
			assert.Equal(t, int64(DefaultFractalSeed), f.Seed())
			assert.Equal(t, DefaultOctaves, f.Octaves())
			assert.Equal(t, DefaultFrequency, f.Frequency())
			assert.Equal(t, DefaultLacunarity, f.Lacunarity())
			assert.Equal(t, DefaultGain, f.Gain())
			assert.Equal(t, DefaultFractalPeriod, f.Period())
			assert.False(t, f.Periodic())
			assert.Equal(t, persistence[name], f.Persistence())
			assert.Len(t, f.sources, DefaultOctaves)
		})
	}
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestFractalOctaveClamp(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{12, 12},
		{MaxOctaves, MaxOctaves},
		{1000, MaxOctaves},
	}
	for _, tt := range tests {
		f := NewRidgedMulti[float64]().WithOctaves(tt.in)
		if f.Octaves() != tt.want || len(f.sources) != tt.want {
			t.Errorf("WithOctaves(%d): octaves=%d sources=%d, want %d", tt.in, f.Octaves(), len(f.sources), tt.want)
		}
	}
}

func TestFractalSameOctavesKeepsSources(t *testing.T) {
	f := NewFbm[float64]()
	g := f.WithOctaves(DefaultOctaves)
	assert.Same(t, &f.sources[0], &g.sources[0])

	h := f.WithOctaves(DefaultOctaves + 1)
	assert.NotSame(t, &f.sources[0], &h.sources[0])
	assert.Len(t, f.sources, DefaultOctaves, "receiver must not change")
}

func TestFractalSeedsPerOctave(t *testing.T) {
	f := NewBillow[float64]().WithSeed(100).WithOctaves(4)
	for i, src := range f.sources {
		assert.Equal(t, int64(100+i), src.Seed())
	}

	same := f.WithSeed(100)
	assert.Same(t, &f.sources[0], &same.sources[0])
}

func TestFractalPeriodPerOctave(t *testing.T) {
	tests := []struct {
		name       string
		f          Fractal[float64]
		wantPeriod []int
	}{
		{
			name:       "default lacunarity",
			f:          NewFbm[float64]().WithOctaves(4).WithPeriod(4),
			wantPeriod: []int{4, 8, 16, 32},
		},
		{
			name:       "lacunarity three",
			f:          NewFbm[float64]().WithOctaves(3).WithLacunarity(3).WithPeriod(4),
			wantPeriod: []int{4, 12, 36},
		},
		{
			name:       "lacunarity changed after period",
			f:          NewRidgedMulti[float64]().WithOctaves(5).WithPeriod(4).WithLacunarity(2.5),
			wantPeriod: []int{4, 10, 25, 62, 155},
		},
		{
			name:       "period below one",
			f:          NewFbm[float64]().WithOctaves(2).WithPeriod(-2),
			wantPeriod: []int{1, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, tt.f.sources, len(tt.wantPeriod))
			for i, src := range tt.f.sources {
				assert.True(t, src.Periodic())
				assert.Equal(t, tt.wantPeriod[i], src.Period(), "octave %d", i)
			}
		})
	}

	plain := NewFbm[float64]().WithLacunarity(3)
	for _, src := range plain.sources {
		assert.False(t, src.Periodic())
	}
}

func TestRidgedSingleOctave(t *testing.T) {
	f := NewRidgedMulti[float64]().WithOctaves(1)
	base := NewPerlin[float64]()

	for _, q := range samplePoints4(50, 17) {
		p := Point2[float64]{q[0], q[1]}
		s := 1 - math.Abs(base.Get2(p))
		want := math.FMA(s*s, 1.0/3.0, -1)
		require.Equal(t, want, f.Get2(p), "at %v", p)
	}
}

func TestRidgedWeightClamp(t *testing.T) {
	var r ridgedRule[float64]
	s := octaveState[float64]{weight: 1, gain: 2, amp: 1}

	r.octave(&s, 0, 0)
	assert.Equal(t, 1.0, s.result)
	assert.Equal(t, 1.0, s.weight, "weight is clamped to 1")

	r.octave(&s, 1, 1)
	assert.Equal(t, 1.0, s.result)
	assert.Equal(t, 0.0, s.weight)

	// A zero weight silences the next octave.
	r.octave(&s, 2, 0)
	assert.Equal(t, 1.0, s.result)

	s = octaveState[float64]{weight: 1, gain: -1, amp: 1}
	r.octave(&s, 0, 0.5)
	assert.Equal(t, 0.0, s.weight, "negative weights are clamped to 0")

	assert.Equal(t, -1.0, r.finish(&octaveState[float64]{}, 1))
	assert.InDelta(t, 1.0, r.finish(&octaveState[float64]{result: 6}, 1), 1e-15)
}

func TestFractalBounded(t *testing.T) {
	pts := samplePoints4(3000, 31)
	for name, f := range allKinds() {
		t.Run(name, func(t *testing.T) {
			for _, q := range pts {
				v2 := f.Get2(Point2[float64]{q[0], q[1]})
				v3 := f.Get3(Point3[float64]{q[0], q[1], q[2]})
				if math.Abs(v2) > 1+1e-9 || math.Abs(v3) > 1+1e-9 {
					t.Fatalf("out of range at %v: 2d=%v 3d=%v", q, v2, v3)
				}
			}
		})
	}
}

func TestRidgedBoundedAllDimensions(t *testing.T) {
	f := NewRidgedMulti[float64]().WithSeed(-8)
	for _, q := range samplePoints4(3000, 2) {
		v := f.Get4(q)
		require.GreaterOrEqual(t, v, -1.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestFractalPeriodic(t *testing.T) {
	tests := []struct {
		name string
		f    Fractal[float64]
		tile float64
	}{
		{"fbm", NewFbm[float64]().WithPeriod(4), 4},
		{"ridged", NewRidgedMulti[float64]().WithSeed(3).WithPeriod(2), 2},
		{"hybrid half frequency", NewHybridMulti[float64]().WithFrequency(0.5).WithPeriod(4), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := -12; i <= 12; i++ {
				x := float64(i) / 8
				y := float64(7-2*i) / 16
				z := float64(i*i%9) / 4

				v2 := tt.f.Get2(Point2[float64]{x, y})
				require.Equal(t, v2, tt.f.Get2(Point2[float64]{x + tt.tile, y - tt.tile}))

				v3 := tt.f.Get3(Point3[float64]{x, y, z})
				require.Equal(t, v3, tt.f.Get3(Point3[float64]{x, y + tt.tile, z}))

				v4 := tt.f.Get4(Point4[float64]{x, y, z, -x})
				require.Equal(t, v4, tt.f.Get4(Point4[float64]{x - tt.tile, y, z, -x}))
			}
		})
	}
}

func TestFractalRespondsToParameters(t *testing.T) {
	base := NewFbm[float64]()
	p := Point2[float64]{1.3, -2.6}
	v := base.Get2(p)

	assert.NotEqual(t, v, base.WithSeed(1).Get2(p))
	assert.NotEqual(t, v, base.WithFrequency(2).Get2(p))
	assert.NotEqual(t, v, base.WithLacunarity(1.9).Get2(p))
	assert.NotEqual(t, v, base.WithPersistence(0.7).Get2(p))
	assert.NotEqual(t, v, base.WithOctaves(2).Get2(p))

	// gain only affects ridged noise.
	assert.Equal(t, v, base.WithGain(5).Get2(p))
	r := NewRidgedMulti[float64]()
	assert.NotEqual(t, r.Get2(p), r.WithGain(0.5).Get2(p))
}

func TestFractalZeroValueUsesKindRule(t *testing.T) {
	var f Fractal[float64]
	assert.Equal(t, 0.0, f.Get2(Point2[float64]{0.5, 0.5}), "no octaves, no signal")
}

func TestFractalZeroValueBuilders(t *testing.T) {
	var f Fractal[float64]

	require.NotPanics(t, func() { f = f.WithOctaves(3) })
	assert.Equal(t, 3, f.Octaves())
	assert.Len(t, f.sources, 3)

	require.NotPanics(t, func() { f = f.WithPersistence(0.5) })
	assert.Equal(t, amplitudeScale(0.5, 3), f.norm)

	var r Fractal[float64]
	r.kind = KindBasicMulti
	r = r.WithOctaves(2).WithPersistence(0.5)
	assert.InDelta(t, 1/1.5, r.norm, 1e-15)
}

func TestFractalFloat32(t *testing.T) {
	f32 := NewRidgedMulti[float32]().WithSeed(5)
	f64 := NewRidgedMulti[float64]().WithSeed(5)
	assert.InDelta(t, f64.Get3(Point3[float64]{0.5, 1.25, -3}), float64(f32.Get3(Point3[float32]{0.5, 1.25, -3})), 1e-3)
}

func TestAmplitudeScale(t *testing.T) {
	assert.InDelta(t, 1/1.875, amplitudeScale(0.5, 4), 1e-15)
	assert.Equal(t, 1.0, amplitudeScale(1.0, 1))
	assert.Equal(t, 1.0/3.0, amplitudeScale(1.0, 3))

	var b basicRule[float64]
	assert.InDelta(t, 1/(1.5*1.25), b.scale(0.5, 3), 1e-15)
}
