// Package telemetry collects per-generation statistics, tick timings and
// run output files.
package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarizes one generation.
type GenerationStats struct {
	Generation int   `csv:"generation"`
	Population int   `csv:"population"`
	Ticks      int   `csv:"ticks"`
	Score      int   `csv:"score"`
	Capped     bool  `csv:"capped"`
	DurationMS int64 `csv:"duration_ms"`

	// Fitness distribution
	BestFitness float64 `csv:"best_fitness"`
	MeanFitness float64 `csv:"mean_fitness"`
	StdFitness  float64 `csv:"std_fitness"`
	FitnessP10  float64 `csv:"fitness_p10"`
	FitnessP50  float64 `csv:"fitness_p50"`
	FitnessP90  float64 `csv:"fitness_p90"`

	// Population structure
	Species       int `csv:"species"`
	ChampionNodes int `csv:"champion_nodes"`
	ChampionGenes int `csv:"champion_genes"`
}

// FitnessSummary is the distribution of one generation's fitness values.
type FitnessSummary struct {
	Best, Mean, Std float64
	P10, P50, P90   float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// SummarizeFitness computes the best, mean, sample standard deviation and
// percentiles of values. The input is not modified.
func SummarizeFitness(values []float64) FitnessSummary {
	n := len(values)
	if n == 0 {
		return FitnessSummary{}
	}

	var s FitnessSummary
	s.Best = floats.Max(values)
	if n == 1 {
		s.Mean = values[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s.P10 = Percentile(sorted, 0.10)
	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)
	return s
}

// ApplyFitness copies a fitness summary into the stats record.
func (s *GenerationStats) ApplyFitness(f FitnessSummary) {
	s.BestFitness = f.Best
	s.MeanFitness = f.Mean
	s.StdFitness = f.Std
	s.FitnessP10 = f.P10
	s.FitnessP50 = f.P50
	s.FitnessP90 = f.P90
}

// Duration returns the wall time the generation took.
func (s GenerationStats) Duration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("population", s.Population),
		slog.Int("ticks", s.Ticks),
		slog.Int("score", s.Score),
		slog.Bool("capped", s.Capped),
		slog.Int64("duration_ms", s.DurationMS),
		slog.Float64("best_fitness", s.BestFitness),
		slog.Float64("mean_fitness", s.MeanFitness),
		slog.Float64("std_fitness", s.StdFitness),
		slog.Float64("fitness_p10", s.FitnessP10),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Float64("fitness_p90", s.FitnessP90),
		slog.Int("species", s.Species),
		slog.Int("champion_nodes", s.ChampionNodes),
		slog.Int("champion_genes", s.ChampionGenes),
	)
}

// LogStats logs the generation summary using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation", "stats", s)
}
