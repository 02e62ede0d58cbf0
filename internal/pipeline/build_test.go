package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/noisefield/internal/noise"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestBuildLeaves(t *testing.T) {
	p := noise.Point3[float64]{0.3, 1.7, -2.2}

	tests := []struct {
		name string
		spec Spec
		want noise.Module3[float64]
	}{
		{"perlin default", Spec{Type: "perlin"}, noise.NewPerlin[float64]()},
		{"perlin seeded", Spec{Type: "Perlin", Seed: ptr[int64](5)}, noise.NewPerlin[float64]().WithSeed(5)},
		{"perlin periodic", Spec{Type: "perlin", Period: ptr(4)}, noise.NewPerlin[float64]().WithPeriod(4)},
		{"opensimplex", Spec{Type: "opensimplex", Seed: ptr[int64](2)}, noise.NewOpenSimplex[float64](2)},
		{"constant", Spec{Type: "constant", Value: 0.25}, noise.NewConstant(0.25)},
		{
			"ridged configured",
			Spec{
				Type:        "ridged",
				Seed:        ptr[int64](3),
				Octaves:     ptr(4),
				Frequency:   ptr(0.5),
				Lacunarity:  ptr(2.5),
				Persistence: ptr(0.9),
				Gain:        ptr(1.5),
				Period:      ptr(8),
			},
			noise.NewRidgedMulti[float64]().
				WithSeed(3).WithOctaves(4).WithFrequency(0.5).WithLacunarity(2.5).
				WithPersistence(0.9).WithGain(1.5).WithPeriod(8),
		},
		{"fbm", Spec{Type: "fbm", Octaves: ptr(3)}, noise.NewFbm[float64]().WithOctaves(3)},
		{"billow", Spec{Type: " billow "}, noise.NewBillow[float64]()},
		{"hybrid", Spec{Type: "hybrid"}, noise.NewHybridMulti[float64]()},
		{"basic", Spec{Type: "basic"}, noise.NewBasicMulti[float64]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Get3(p), m.Get3(p))
		})
	}
}

func TestBuildTree(t *testing.T) {
	spec := Spec{
		Type: "add",
		Sources: []Spec{
			{
				Type:  "turbulence",
				Power: ptr(0.25),
				Seed:  ptr[int64](7),
				Sources: []Spec{
					{Type: "ridged", Period: ptr(8)},
				},
			},
			{
				Type:  "scale_bias",
				Scale: ptr(0.5),
				Bias:  0.1,
				Sources: []Spec{
					{Type: "abs", Sources: []Spec{{Type: "perlin"}}},
				},
			},
		},
	}

	got, err := Build(spec)
	require.NoError(t, err)

	want := noise.NewAdd[float64](
		noise.NewTurbulence[float64](noise.NewRidgedMulti[float64]().WithPeriod(8)).WithSeed(7).WithPower(0.25),
		noise.NewScaleBias[float64](noise.NewAbs[float64](noise.NewPerlin[float64]()), 0.5, 0.1),
	)

	for _, q := range []noise.Point2[float64]{{0.1, 0.2}, {3.5, -1.25}, {-7, 9.9}} {
		assert.Equal(t, want.Get2(q), got.Get2(q))
	}
	assert.Equal(t, "add(turbulence(ridged),scale_bias(abs(perlin)))", spec.String())
}

func TestBuildModifierDefaults(t *testing.T) {
	src := []Spec{{Type: "constant", Value: -3}}
	p := noise.Point2[float64]{}

	tests := []struct {
		spec Spec
		want float64
	}{
		{Spec{Type: "clamp", Sources: src}, -1},
		{Spec{Type: "clamp", Min: ptr(-5.0), Max: ptr(5.0), Sources: src}, -3},
		{Spec{Type: "scale_bias", Sources: src}, -3},
		{Spec{Type: "negate", Sources: src}, 3},
		{Spec{Type: "exponent", Exponent: ptr(1.0), Sources: []Spec{{Type: "constant", Value: 0.5}}}, 0.5},
		{Spec{Type: "multiply", Sources: append(src, Spec{Type: "constant", Value: 2})}, -6},
		{Spec{Type: "min", Sources: append(src, Spec{Type: "constant", Value: 2})}, -3},
		{Spec{Type: "max", Sources: append(src, Spec{Type: "constant", Value: 2})}, 2},
		{Spec{Type: "power", Sources: []Spec{{Type: "constant", Value: 2}, {Type: "constant", Value: 3}}}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.spec.String(), func(t *testing.T) {
			m, err := Build(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Get2(p))
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name     string
		spec     Spec
		want     error
		location string
	}{
		{"unknown", Spec{Type: "worley"}, ErrUnknownModule, "pipeline:"},
		{"empty type", Spec{}, ErrUnknownModule, "pipeline:"},
		{"abs without source", Spec{Type: "abs"}, ErrMissingSource, "pipeline:"},
		{"add with one source", Spec{Type: "add", Sources: []Spec{{Type: "perlin"}}}, ErrMissingSource, "pipeline:"},
		{"leaf with source", Spec{Type: "perlin", Sources: []Spec{{Type: "perlin"}}}, ErrMissingSource, "pipeline:"},
		{
			"nested unknown",
			Spec{Type: "add", Sources: []Spec{{Type: "perlin"}, {Type: "abs", Sources: []Spec{{Type: "cells"}}}}},
			ErrUnknownModule,
			"pipeline.sources[1].sources[0]:",
		},
		{"classic below root", Spec{Type: "abs", Sources: []Spec{{Type: "classic"}}}, ErrPlaneOnly, "pipeline.sources[0]:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(tt.spec)
			assert.Nil(t, m)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, strings.HasPrefix(err.Error(), tt.location), "error %q should start with %q", err, tt.location)
		})
	}
}

func TestBuildPlane(t *testing.T) {
	m, err := BuildPlane(Spec{Type: "classic", Seed: ptr[int64](9), Octaves: ptr(4), Persistence: ptr(0.25), Lacunarity: ptr(3.0)})
	require.NoError(t, err)

	want := noise.NewClassicWith[float64](9, 4, 3, 4)
	p := noise.Point2[float64]{0.4, 2.6}
	assert.Equal(t, want.Get2(p), m.Get2(p))

	def, err := BuildPlane(Spec{Type: "classic"})
	require.NoError(t, err)
	assert.Equal(t, noise.NewClassic[float64](0).Get2(p), def.Get2(p))

	fbm, err := BuildPlane(Spec{Type: "fbm"})
	require.NoError(t, err)
	assert.Equal(t, noise.NewFbm[float64]().Get2(p), fbm.Get2(p))

	_, err = BuildPlane(Spec{Type: "classic", Sources: []Spec{{Type: "perlin"}}})
	assert.ErrorIs(t, err, ErrMissingSource)
}

const pipelineYAML = `
pipeline:
  type: add
  sources:
    - type: turbulence
      power: 0.25
      roughness: 4
      sources:
        - type: ridged
          octaves: 8
          period: 16
    - type: perlin
      seed: 3
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pipelineYAML), 0o644))

	spec, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "add(turbulence(ridged),perlin)", spec.String())
	require.Len(t, spec.Sources, 2)
	tur := spec.Sources[0]
	require.NotNil(t, tur.Power)
	assert.Equal(t, 0.25, *tur.Power)
	require.NotNil(t, tur.Roughness)
	assert.Equal(t, 4, *tur.Roughness)
	assert.Nil(t, tur.Seed)
	require.NotNil(t, tur.Sources[0].Octaves)
	assert.Equal(t, 8, *tur.Sources[0].Octaves)
	require.NotNil(t, spec.Sources[1].Seed)
	assert.Equal(t, int64(3), *spec.Sources[1].Seed)

	_, err = Build(spec)
	require.NoError(t, err)
}

func TestDecodeMissing(t *testing.T) {
	_, err := Decode(viper.New(), "pipeline")
	assert.ErrorIs(t, err, ErrMissingSpec)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSpecJSON(t *testing.T) {
	raw := `{"type":"add","sources":[{"type":"ridged","seed":7,"octaves":4},{"type":"constant","value":0.5}]}`

	var spec Spec
	require.NoError(t, json.Unmarshal([]byte(raw), &spec))
	assert.Equal(t, "add(ridged,constant)", spec.String())
	require.NotNil(t, spec.Sources[0].Seed)
	assert.Equal(t, int64(7), *spec.Sources[0].Seed)
	assert.Nil(t, spec.Sources[0].Frequency)

	out, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	mod, err := Build(spec)
	require.NoError(t, err)
	want := noise.NewRidgedMulti[float64]().WithSeed(7).WithOctaves(4)
	p := noise.Point2[float64]{0.4, 1.9}
	assert.InDelta(t, want.Get2(p)+0.5, mod.Get2(p), 1e-12)
}
