package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/noisefield/internal/noise"
)

var (
	ErrMissingSpec   = errors.New("pipeline: no module tree configured")
	ErrUnknownModule = errors.New("pipeline: unknown module type")
	ErrMissingSource = errors.New("pipeline: wrong number of sources")
	ErrPlaneOnly     = errors.New("pipeline: module only supports two and three dimensions")
)

// Types lists every module type Build accepts. BuildPlane additionally
// accepts "classic".
var Types = []string{
	"perlin", "opensimplex", "constant",
	"fbm", "billow", "ridged", "hybrid", "basic",
	"abs", "negate", "clamp", "scale_bias", "exponent",
	"add", "multiply", "min", "max", "power",
	"turbulence",
}

// Build turns spec into a module tree usable in every dimension.
func Build(spec Spec) (noise.Module[float64], error) {
	return build(spec, "pipeline")
}

// BuildPlane is Build for callers that only sample two-dimensional points.
// It also accepts a root node of type "classic", whose octave settings come
// from persistence (alpha = 1/persistence), lacunarity (beta) and octaves.
func BuildPlane(spec Spec) (noise.Module2[float64], error) {
	if kindOf(spec) == "classic" {
		if err := expectSources(spec, "pipeline", 0); err != nil {
			return nil, err
		}
		alpha := noise.DefaultClassicAlpha
		if spec.Persistence != nil && *spec.Persistence != 0 {
			alpha = 1 / *spec.Persistence
		}
		return noise.NewClassicWith[float64](
			or(spec.Seed, 0),
			alpha,
			or(spec.Lacunarity, noise.DefaultClassicBeta),
			or(spec.Octaves, noise.DefaultClassicOctaves),
		), nil
	}
	return Build(spec)
}

func kindOf(spec Spec) string {
	return strings.ToLower(strings.TrimSpace(spec.Type))
}

func or[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func expectSources(spec Spec, path string, n int) error {
	if len(spec.Sources) != n {
		return fmt.Errorf("%s: %w: %s takes %d, got %d", path, ErrMissingSource, kindOf(spec), n, len(spec.Sources))
	}
	return nil
}

func build(spec Spec, path string) (noise.Module[float64], error) {
	kind := kindOf(spec)
	switch {
	case kind == "classic":
		return nil, fmt.Errorf("%s: %w: classic", path, ErrPlaneOnly)
	case !slices.Contains(Types, kind):
		return nil, fmt.Errorf("%s: %w: %q (want one of %s)", path, ErrUnknownModule, spec.Type, strings.Join(Types, ", "))
	}

	var arity int
	switch kind {
	case "abs", "negate", "clamp", "scale_bias", "exponent", "turbulence":
		arity = 1
	case "add", "multiply", "min", "max", "power":
		arity = 2
	}
	if err := expectSources(spec, path, arity); err != nil {
		return nil, err
	}

	sources := make([]noise.Module[float64], len(spec.Sources))
	for i, child := range spec.Sources {
		src, err := build(child, fmt.Sprintf("%s.sources[%d]", path, i))
		if err != nil {
			return nil, err
		}
		sources[i] = src
	}

	switch kind {
	case "perlin":
		p := noise.NewPerlin[float64]().WithSeed(or(spec.Seed, noise.DefaultPerlinSeed))
		if spec.Period != nil {
			p = p.WithPeriod(*spec.Period)
		}
		return p, nil
	case "opensimplex":
		return noise.NewOpenSimplex[float64](or(spec.Seed, 0)), nil
	case "constant":
		return noise.NewConstant(spec.Value), nil

	case "fbm":
		return configureFractal(noise.NewFbm[float64](), spec), nil
	case "billow":
		return configureFractal(noise.NewBillow[float64](), spec), nil
	case "ridged":
		return configureFractal(noise.NewRidgedMulti[float64](), spec), nil
	case "hybrid":
		return configureFractal(noise.NewHybridMulti[float64](), spec), nil
	case "basic":
		return configureFractal(noise.NewBasicMulti[float64](), spec), nil

	case "abs":
		return noise.NewAbs(sources[0]), nil
	case "negate":
		return noise.NewNegate(sources[0]), nil
	case "clamp":
		return noise.NewClamp(sources[0], or(spec.Min, -1), or(spec.Max, 1)), nil
	case "scale_bias":
		return noise.NewScaleBias(sources[0], or(spec.Scale, 1), spec.Bias), nil
	case "exponent":
		return noise.NewExponent(sources[0], or(spec.Exponent, 1)), nil

	case "add":
		return noise.NewAdd(sources[0], sources[1]), nil
	case "multiply":
		return noise.NewMultiply(sources[0], sources[1]), nil
	case "min":
		return noise.NewMin(sources[0], sources[1]), nil
	case "max":
		return noise.NewMax(sources[0], sources[1]), nil
	case "power":
		return noise.NewPower(sources[0], sources[1]), nil

	case "turbulence":
		t := noise.NewTurbulence(sources[0]).
			WithSeed(or(spec.Seed, noise.DefaultTurbulenceSeed)).
			WithFrequency(or(spec.Frequency, noise.DefaultTurbulenceFrequency)).
			WithPower(or(spec.Power, noise.DefaultTurbulencePower)).
			WithRoughness(or(spec.Roughness, noise.DefaultTurbulenceRoughness))
		if spec.Period != nil {
			t = t.WithPeriod(*spec.Period)
		}
		return t, nil
	}
	return nil, fmt.Errorf("%s: %w: %q", path, ErrUnknownModule, spec.Type)
}

func configureFractal(f noise.Fractal[float64], spec Spec) noise.Fractal[float64] {
	if spec.Seed != nil {
		f = f.WithSeed(*spec.Seed)
	}
	if spec.Octaves != nil {
		f = f.WithOctaves(*spec.Octaves)
	}
	if spec.Frequency != nil {
		f = f.WithFrequency(*spec.Frequency)
	}
	if spec.Lacunarity != nil {
		f = f.WithLacunarity(*spec.Lacunarity)
	}
	if spec.Persistence != nil {
		f = f.WithPersistence(*spec.Persistence)
	}
	if spec.Gain != nil {
		f = f.WithGain(*spec.Gain)
	}
	if spec.Period != nil {
		f = f.WithPeriod(*spec.Period)
	}
	return f
}
