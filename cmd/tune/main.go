// Package main tunes the weights of a fixed-topology bird controller with
// CMA-ES instead of evolving topologies.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/flappy/assets"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/neural"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 5000, "Tick cap per episode")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 500, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	stepSize := flag.Float64("step-size", 0.5, "Initial CMA-ES step size")
	seed := flag.Int64("seed", 1, "Seed for the initial weights")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *outputDir == "" {
		slog.Error("--output is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := tune(ctx, tuneOptions{
		ConfigPath: *configPath,
		MaxTicks:   *maxTicks,
		Seeds:      *seeds,
		MaxEvals:   *maxEvals,
		Population: *population,
		StepSize:   *stepSize,
		Seed:       *seed,
		OutputDir:  *outputDir,
	})
	if err != nil {
		slog.Error("tuning failed", "error", err)
		os.Exit(1)
	}
}

type tuneOptions struct {
	ConfigPath string
	MaxTicks   int
	Seeds      int
	MaxEvals   int
	Population int
	StepSize   float64
	Seed       int64
	OutputDir  string
}

func tune(ctx context.Context, opts tuneOptions) (err error) {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Episode.MaxTicks = opts.MaxTicks

	sprites, err := assets.Load(cfg.Screen.Width, cfg.Screen.Height, opts.Seed)
	if err != nil {
		return fmt.Errorf("loading sprites: %w", err)
	}

	evaluator := NewFitnessEvaluator(cfg, sprites, evalSeeds(opts.Seeds))

	rec, err := newProgress(ctx, filepath.Join(opts.OutputDir, "tune_log.csv"), opts.MaxEvals)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, rec.Close())
	}()

	evalCount := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			f, err := evaluator.Evaluate(ctx, x)
			if err != nil {
				rec.fail(err)
				return 0
			}
			evalCount++
			best, _ := evaluator.Best()
			score, ticks := evaluator.LastRun()
			if err := rec.evaluated(EvalRecord{Eval: evalCount, Fitness: f, Best: best, MeanScore: score, MeanTicks: ticks}); err != nil {
				rec.fail(err)
			}
			return f
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: opts.MaxEvals,
		Concurrent:      0, // episodes share one evaluator
		Recorder:        rec,
	}

	// Population 0 lets CmaEsChol pick 4 + 3*ln(n)
	method := &optimize.CmaEsChol{
		InitStepSize: opts.StepSize,
		Population:   opts.Population,
	}

	initX := neural.NewFFNN(rand.New(rand.NewSource(opts.Seed))).Params()

	slog.Info("starting CMA-ES",
		"params", len(initX),
		"population", opts.Population,
		"max_evals", opts.MaxEvals,
		"seeds", opts.Seeds,
		"max_ticks", opts.MaxTicks,
	)

	_, runErr := optimize.Minimize(problem, initX, settings, method)
	if runErr != nil {
		// Cancellation and the evaluation budget both end the run early.
		slog.Info("optimization ended", "reason", runErr)
	}
	if rec.err != nil && !errors.Is(rec.err, context.Canceled) {
		return rec.err
	}

	best, params := evaluator.Best()
	if params == nil {
		return errors.New("no evaluations completed")
	}

	nn := &neural.FFNN{}
	if err := nn.SetParams(params); err != nil {
		return err
	}
	data, err := json.MarshalIndent(nn.MarshalWeights(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling weights: %w", err)
	}
	path := filepath.Join(opts.OutputDir, "best_weights.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	slog.Info("tuning complete", "evals", evalCount, "best_fitness", -best, "weights", path)
	return nil
}
