package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestSummarizeFitness(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	s := SummarizeFitness(values)

	if s.Best != 1.0 {
		t.Errorf("best = %v, want 1.0", s.Best)
	}
	if math.Abs(s.Mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", s.Mean)
	}
	// Sample standard deviation of 0.1..1.0
	if math.Abs(s.Std-0.30277) > 0.001 {
		t.Errorf("std = %v, want ~0.3028", s.Std)
	}
	if math.Abs(s.P10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", s.P10)
	}
	if math.Abs(s.P50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", s.P50)
	}
	if math.Abs(s.P90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", s.P90)
	}

	// Input order is preserved
	if values[0] != 1.0 {
		t.Error("SummarizeFitness sorted its input")
	}
}

func TestSummarizeFitnessSmall(t *testing.T) {
	if s := SummarizeFitness(nil); s != (FitnessSummary{}) {
		t.Errorf("empty input = %+v, want zero", s)
	}

	s := SummarizeFitness([]float64{-0.9})
	if s.Best != -0.9 || s.Mean != -0.9 || s.Std != 0 {
		t.Errorf("single value = %+v", s)
	}
}

func TestApplyFitness(t *testing.T) {
	var g GenerationStats
	g.ApplyFitness(FitnessSummary{Best: 3, Mean: 2, Std: 1, P10: 0.5, P50: 2, P90: 2.9})
	if g.BestFitness != 3 || g.MeanFitness != 2 || g.FitnessP90 != 2.9 {
		t.Errorf("ApplyFitness = %+v", g)
	}
}
