// Package main plays a saved controller in the game window.
//
// The controller comes from one of three places: an entry of a
// hall_of_fame.json file, the champion of a run in a history database, or
// the weights file written by the tuner.
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
	"time"

	"github.com/pthm-cable/flappy/assets"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/history"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/renderer"
	"github.com/pthm-cable/flappy/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	hofPath := flag.String("hof", "", "hall_of_fame.json to replay from")
	entry := flag.Int("entry", 0, "Hall of fame rank to replay (0 = best)")
	historyPath := flag.String("history-path", "", "SQLite history database to load a run champion from")
	runID := flag.String("run-id", "", "Run whose champion to replay (with -history-path)")
	weightsPath := flag.String("weights", "", "best_weights.json written by the tuner")
	episodes := flag.Int("episodes", 0, "Episodes to play (0 = until the window closes)")
	headless := flag.Bool("headless", false, "Score episodes without a window")
	seed := flag.Int64("seed", 0, "Gap seed (0 = time-based)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src := source{
		HallOfFame: *hofPath,
		Entry:      *entry,
		History:    *historyPath,
		RunID:      *runID,
		Weights:    *weightsPath,
	}
	controller, label, err := src.load(ctx)
	if err != nil {
		slog.Error("failed to load controller", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	if err := replay(ctx, cfg, controller, label, rngSeed, *episodes, *headless); err != nil {
		slog.Error("replay failed", "error", err)
		os.Exit(1)
	}
}

// source names where the replayed controller is read from.
type source struct {
	HallOfFame string
	Entry      int
	History    string
	RunID      string
	Weights    string
}

func (s source) load(ctx context.Context) (game.Controller, string, error) {
	switch {
	case s.Weights != "":
		data, err := os.ReadFile(s.Weights)
		if err != nil {
			return nil, "", fmt.Errorf("reading weights: %w", err)
		}
		var bw neural.BrainWeights
		if err := json.Unmarshal(data, &bw); err != nil {
			return nil, "", fmt.Errorf("parsing weights: %w", err)
		}
		nn := &neural.FFNN{}
		if err := nn.UnmarshalWeights(bw); err != nil {
			return nil, "", err
		}
		return nn, "ffnn " + s.Weights, nil

	case s.History != "":
		if s.RunID == "" {
			return nil, "", errors.New("-run-id is required with -history-path")
		}
		store := history.NewSQLiteStore(s.History)
		if err := store.Init(ctx); err != nil {
			return nil, "", fmt.Errorf("opening history: %w", err)
		}
		defer store.Close()
		champ, ok, err := store.Champion(ctx, s.RunID)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return nil, "", fmt.Errorf("run %q has no champion", s.RunID)
		}
		return brainFrom(champ)

	case s.HallOfFame != "":
		hof, err := telemetry.LoadHallOfFameFromFile(s.HallOfFame)
		if err != nil {
			return nil, "", err
		}
		e, ok := hof.Entry(s.Entry)
		if !ok {
			return nil, "", fmt.Errorf("hall of fame has %d entries, no rank %d", hof.Len(), s.Entry)
		}
		return brainFrom(e)
	}
	return nil, "", errors.New("one of -hof, -history-path or -weights is required")
}

func brainFrom(e telemetry.HallEntry) (game.Controller, string, error) {
	genome, err := neural.DecodeGenome(e.Genome)
	if err != nil {
		return nil, "", fmt.Errorf("genome %d: %w", e.GenomeID, err)
	}
	brain, err := neural.NewBrainController(genome)
	if err != nil {
		return nil, "", fmt.Errorf("genome %d: %w", e.GenomeID, err)
	}
	slog.Info("loaded genome",
		"genome_id", e.GenomeID,
		"generation", e.Generation,
		"fitness", e.Fitness,
		"nodes", brain.NodeCount(),
		"links", brain.LinkCount(),
	)
	return brain, fmt.Sprintf("genome %d", e.GenomeID), nil
}

func replay(ctx context.Context, cfg *config.Config, controller game.Controller, label string, seed int64, episodes int, headless bool) error {
	sprites, err := assets.Load(cfg.Screen.Width, cfg.Screen.Height, seed)
	if err != nil {
		return fmt.Errorf("loading sprites: %w", err)
	}

	opts := game.Options{Gaps: rand.New(rand.NewSource(seed))}
	if headless && episodes <= 0 {
		episodes = 1
	}
	if !headless {
		var ropts renderer.Options
		if brain, ok := controller.(*neural.BrainController); ok {
			topo := neural.GenomeTopology(brain.Genome)
			ropts.Network = func() (string, neural.Topology) { return label, topo }
		}
		window, err := renderer.NewWindow(cfg, sprites, ropts)
		if err != nil {
			return fmt.Errorf("opening window: %w", err)
		}
		defer window.Close()
		opts.Renderer = window
	}
	episode := game.NewEpisode(cfg, sprites, opts)

	for i := 1; episodes <= 0 || i <= episodes; i++ {
		entrant := &game.Entrant{Controller: controller}
		res, err := episode.Run(ctx, i, []*game.Entrant{entrant})
		if err != nil {
			return fmt.Errorf("episode %d: %w", i, err)
		}
		if res.Status == game.Cancelled {
			return nil
		}
		slog.Info("episode",
			"controller", label,
			"episode", i,
			"score", res.Score,
			"ticks", res.Ticks,
			"capped", res.Capped,
			"fitness", entrant.Fitness,
		)
	}
	return nil
}
