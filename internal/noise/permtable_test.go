package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermutationTableDeterministic(t *testing.T) {
	seeds := []int64{0, 1, -1, 42, math.MaxInt64, math.MinInt64}
	for _, seed := range seeds {
		a := NewPermutationTable(seed)
		b := NewPermutationTable(seed)
		if a.Values() != b.Values() {
			t.Errorf("seed %d: tables differ between builds", seed)
		}
	}
}

func TestPermutationTableIsPermutation(t *testing.T) {
	for _, seed := range []int64{0, 7, -99} {
		var seen [TableSize]bool
		for _, v := range NewPermutationTable(seed).Values() {
			require.False(t, seen[v], "seed %d: value %d appears twice", seed, v)
			seen[v] = true
		}
	}
}

func TestPermutationTableSeedsDiffer(t *testing.T) {
	a := NewPermutationTable(0).Values()
	b := NewPermutationTable(1).Values()
	assert.NotEqual(t, a, b)
}

func TestPermutationTableHash(t *testing.T) {
	table := NewPermutationTable(3)
	v := table.Values()

	tests := []struct {
		name   string
		coords []int
		want   uint8
	}{
		{"empty", nil, 0},
		{"single", []int{5}, v[5]},
		{"pair", []int{3, 9}, v[int(v[3])^9]},
		{"triple", []int{1, 2, 3}, v[int(v[int(v[1])^2])^3]},
		{"negative wraps", []int{-1}, v[255]},
		{"large wraps", []int{256 + 7}, v[7]},
		{"negative pair", []int{-2, -3}, v[int(v[254])^253]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Hash(tt.coords); got != tt.want {
				t.Errorf("Hash(%v) = %d, want %d", tt.coords, got, tt.want)
			}
		})
	}
}

func TestGradientsAreUnitLength(t *testing.T) {
	sets := map[string][]gradient{
		"2d": gradients2,
		"3d": gradients3,
		"4d": gradients4,
	}
	for name, set := range sets {
		for i, g := range set {
			var sq float64
			for _, c := range g {
				sq += c * c
			}
			assert.InDelta(t, 1.0, math.Sqrt(sq), 1e-12, "%s gradient %d", name, i)
		}
	}
}

func TestPickGradientWraps(t *testing.T) {
	assert.Same(t, &gradients2[0], pickGradient(gradients2, 8))
	assert.Same(t, &gradients3[31], pickGradient(gradients3, 255))
	assert.Same(t, &gradients4[4], pickGradient(gradients4, 36))
}
