package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/flappy/assets"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/neural"
)

// FitnessEvaluator plays single-bird episodes with an FFNN whose weights
// are the parameter vector. Each seed fixes the gap sequence, so repeated
// evaluations of the same weights score the same.
type FitnessEvaluator struct {
	seeds   []int64
	gaps    *rand.Rand
	episode *game.Episode
	nn      *neural.FFNN

	bestFitness float64
	best        []float64
	lastScore   float64
	lastTicks   float64
}

// NewFitnessEvaluator creates an evaluator that runs one episode per seed.
func NewFitnessEvaluator(cfg *config.Config, sprites *assets.Sprites, seeds []int64) *FitnessEvaluator {
	gaps := rand.New(rand.NewSource(0))
	return &FitnessEvaluator{
		seeds:       seeds,
		gaps:        gaps,
		episode:     game.NewEpisode(cfg, sprites, game.Options{Gaps: gaps}),
		nn:          &neural.FFNN{},
		bestFitness: math.Inf(1),
	}
}

// Evaluate returns the negated mean episode fitness of x (lower = better).
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, x []float64) (float64, error) {
	if err := fe.nn.SetParams(x); err != nil {
		return 0, err
	}

	var fitness, score, ticks float64
	for _, seed := range fe.seeds {
		fe.gaps.Seed(seed)
		entrant := &game.Entrant{Controller: fe.nn}
		res, err := fe.episode.Run(ctx, 0, []*game.Entrant{entrant})
		if err != nil {
			return 0, fmt.Errorf("seed %d: %w", seed, err)
		}
		if res.Status == game.Cancelled {
			return 0, context.Canceled
		}
		fitness += entrant.Fitness
		score += float64(res.Score)
		ticks += float64(res.Ticks)
	}

	n := float64(len(fe.seeds))
	f := -fitness / n
	fe.lastScore = score / n
	fe.lastTicks = ticks / n
	if f < fe.bestFitness {
		fe.bestFitness = f
		fe.best = append(fe.best[:0], x...)
	}
	return f, nil
}

// Best returns the lowest fitness seen and the parameters that reached it.
func (fe *FitnessEvaluator) Best() (float64, []float64) {
	return fe.bestFitness, fe.best
}

// LastRun returns the mean score and tick count of the latest evaluation.
func (fe *FitnessEvaluator) LastRun() (score, ticks float64) {
	return fe.lastScore, fe.lastTicks
}

// evalSeeds returns n fixed episode seeds.
func evalSeeds(n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	return seeds
}
