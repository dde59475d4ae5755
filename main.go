package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/flappy/assets"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/history"
	"github.com/pthm-cable/flappy/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	realtime := flag.Bool("realtime", false, "Pace headless ticks at screen.tick_rate")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	generations := flag.Int("generations", 0, "Generations to run (0 = use config, -1 = until stopped)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config snapshot and hall of fame")
	logPerf := flag.Bool("log-perf", false, "Log per-phase tick timing after each generation")
	historyBackend := flag.String("history", "", "Run history backend: memory or sqlite (empty = use config)")
	historyPath := flag.String("history-path", "", "SQLite database file (empty = use config)")
	runID := flag.String("run-id", "", "Run identifier in the history store (empty = time-based)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *logPerf {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	if *historyBackend != "" {
		cfg.History.Backend = *historyBackend
	}
	if *historyPath != "" {
		cfg.History.Path = *historyPath
	}
	if *runID == "" {
		*runID = fmt.Sprintf("run-%d", time.Now().Unix())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, cfg, runOptions{
		Headless:    *headless,
		Realtime:    *realtime,
		Seed:        rngSeed,
		Generations: *generations,
		OutputDir:   *outputDir,
		LogPerf:     *logPerf,
		RunID:       *runID,
	})
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runOptions holds the command-line choices that are not part of the config.
type runOptions struct {
	Headless    bool
	Realtime    bool
	Seed        int64
	Generations int
	OutputDir   string
	LogPerf     bool
	RunID       string
}

func run(ctx context.Context, cfg *config.Config, opts runOptions) (err error) {
	sprites, err := assets.Load(cfg.Screen.Width, cfg.Screen.Height, opts.Seed)
	if err != nil {
		return fmt.Errorf("loading sprites: %w", err)
	}

	if capHeadless(cfg, opts) {
		slog.Info("capping headless episodes", "max_ticks", cfg.Episode.MaxTicks)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, output.Close())
	}()
	if err := output.WriteConfig(cfg); err != nil {
		return fmt.Errorf("writing config snapshot: %w", err)
	}

	store, err := history.NewStore(cfg.History.Backend, cfg.History.Path)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("initializing %s history: %w", cfg.History.Backend, err)
	}
	defer store.Close()

	t := newTrainer(cfg, sprites, opts, output, store)
	if !opts.Headless {
		if err := t.openWindow(); err != nil {
			return err
		}
		defer t.closeWindow()
	}

	slog.Info("starting evolution",
		"seed", opts.Seed,
		"headless", opts.Headless,
		"pop_size", cfg.NEAT.PopSize,
		"generations", opts.Generations,
		"history", cfg.History.Backend,
		"run_id", opts.RunID,
	)

	completed, runErr := t.train(ctx)
	slog.Info("evolution finished", "generations", completed, "best_fitness", t.hof.TopFitness())

	if err := output.WriteHallOfFame(t.hof); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("writing hall of fame: %w", err))
	}
	return runErr
}
