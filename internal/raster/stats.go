package raster

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of a sampled field.
type Summary struct {
	Count  int
	NaN    int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Q1     float64
	Median float64
	Q3     float64
	// OutOfRange counts samples with |v| > 1.
	OutOfRange int
}

// Summarize computes a Summary of values. NaN samples are counted and
// otherwise ignored; every statistic is NaN when no finite sample remains.
func Summarize(values []float64) Summary {
	clean := make([]float64, 0, len(values))
	s := Summary{Count: len(values)}
	for _, v := range values {
		if math.IsNaN(v) {
			s.NaN++
			continue
		}
		if math.Abs(v) > 1 {
			s.OutOfRange++
		}
		clean = append(clean, v)
	}

	if len(clean) == 0 {
		nan := math.NaN()
		s.Min, s.Max, s.Mean, s.StdDev = nan, nan, nan, nan
		s.Q1, s.Median, s.Q3 = nan, nan, nan
		return s
	}

	s.Min = floats.Min(clean)
	s.Max = floats.Max(clean)
	s.Mean, s.StdDev = stat.MeanStdDev(clean, nil)
	if len(clean) == 1 {
		s.StdDev = 0
	}

	slices.Sort(clean)
	s.Q1 = stat.Quantile(0.25, stat.Empirical, clean, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, clean, nil)
	s.Q3 = stat.Quantile(0.75, stat.Empirical, clean, nil)
	return s
}

// LogValue groups the summary for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Int("nan", s.NaN),
		slog.Int("out_of_range", s.OutOfRange),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("mean", s.Mean),
		slog.Float64("stddev", s.StdDev),
		slog.Float64("q1", s.Q1),
		slog.Float64("median", s.Median),
		slog.Float64("q3", s.Q3),
	)
}
