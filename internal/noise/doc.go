// Package noise computes deterministic, continuous pseudo-random scalar
// fields over 2-, 3- and 4-dimensional points.
//
// Every component is a value type implementing Module2, Module3 and Module4
// for a floating-point type T. Components are configured with With* builder
// methods that return a new value and never touch the receiver, so a
// configured tree can be evaluated from many goroutines at once.
//
// Leaves are lattice-noise generators (Perlin, OpenSimplex, Classic,
// Constant). Fractal combines independently seeded Perlin octaves under one
// of five rules (fBm, billow, ridged, hybrid and basic multifractal).
// Unary, Binary and Turbulence wrap other modules.
//
//	field := noise.NewAdd[float64](
//		noise.NewTurbulence[float64](noise.NewRidgedMulti[float64]().WithPeriod(8)).WithPeriod(8),
//		noise.NewPerlin[float64]().WithPeriod(8),
//	)
//	v := field.Get2(noise.Point2[float64]{0.25, 1.5})
package noise
