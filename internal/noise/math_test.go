package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowi(t *testing.T) {
	tests := []struct {
		a    float64
		n    int
		want float64
	}{
		{2, 0, 1},
		{2, 1, 2},
		{2, 10, 1024},
		{0.5, 3, 0.125},
		{-3, 3, -27},
		{2, -2, 0.25},
		{0, 0, 1},
		{1, 31, 1},
	}
	for _, tt := range tests {
		if got := powi(tt.a, tt.n); got != tt.want {
			t.Errorf("powi(%v, %d) = %v, want %v", tt.a, tt.n, got, tt.want)
		}
	}
}

func TestModulo(t *testing.T) {
	tests := []struct{ a, m, want int }{
		{5, 4, 1},
		{-1, 4, 3},
		{-4, 4, 0},
		{-5, 4, 3},
		{0, 1, 0},
		{7, 1, 0},
	}
	for _, tt := range tests {
		if got := modulo(tt.a, tt.m); got != tt.want {
			t.Errorf("modulo(%d, %d) = %d, want %d", tt.a, tt.m, got, tt.want)
		}
	}
}

func TestClampAndMulAdd(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-0.5, 0.0, 1.0))
	assert.Equal(t, 1.0, clamp(3.0, 0.0, 1.0))
	assert.Equal(t, 0.25, clamp(0.25, 0.0, 1.0))
	assert.True(t, math.IsNaN(clamp(math.NaN(), 0.0, 1.0)))

	assert.Equal(t, math.FMA(0.1, 0.2, 0.3), mulAdd(0.1, 0.2, 0.3))
	assert.Equal(t, float32(7), mulAdd[float32](2, 3, 1))
}
