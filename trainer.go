package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/assets"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/history"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/renderer"
	"github.com/pthm-cable/flappy/telemetry"
	"github.com/pthm-cable/flappy/ui"
)

// defaultHeadlessMaxTicks bounds episodes of a headless run whose config
// leaves episode.max_ticks unlimited. A perfect flyer would otherwise never
// end its generation with nothing on screen to close.
const defaultHeadlessMaxTicks = 10000

// capHeadless applies defaultHeadlessMaxTicks and reports whether it did.
// An explicit max_ticks is left alone.
func capHeadless(cfg *config.Config, opts runOptions) bool {
	if !opts.Headless || cfg.Episode.MaxTicks != 0 {
		return false
	}
	cfg.Episode.MaxTicks = defaultHeadlessMaxTicks
	return true
}

// trainer wires the population to the episode and fans each generation
// report out to logging, CSV output, the hall of fame and the history store.
type trainer struct {
	cfg     *config.Config
	sprites *assets.Sprites
	opts    runOptions

	pop    *neural.Population
	output *telemetry.OutputManager
	store  history.Store
	hof    *telemetry.HallOfFame
	perf   *telemetry.PerfCollector
	window *renderer.Window
}

func newTrainer(cfg *config.Config, sprites *assets.Sprites, opts runOptions, output *telemetry.OutputManager, store history.Store) *trainer {
	t := &trainer{
		cfg:     cfg,
		sprites: sprites,
		opts:    opts,
		pop:     neural.NewPopulation(&cfg.NEAT, rand.New(rand.NewSource(opts.Seed))),
		output:  output,
		store:   store,
		hof:     telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize),
	}
	if opts.LogPerf || output != nil {
		t.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	}
	return t
}

func (t *trainer) openWindow() error {
	w, err := renderer.NewWindow(t.cfg, t.sprites, renderer.Options{
		Tint:    t.birdTint,
		Species: t.topSpecies,
		Network: t.championNetwork,
	})
	if err != nil {
		return fmt.Errorf("opening window: %w", err)
	}
	t.window = w
	return nil
}

func (t *trainer) closeWindow() {
	if t.window != nil {
		t.window.Close()
	}
}

// train runs the population until it stops and returns the completed
// generation count.
func (t *trainer) train(ctx context.Context) (int, error) {
	opts := game.Options{
		Perf: t.perf,
		Gaps: rand.New(rand.NewSource(t.opts.Seed + 1)),
	}
	switch {
	case t.window != nil:
		// raylib's target FPS paces the loop
		opts.Renderer = t.window
	case t.opts.Realtime:
		clock := game.NewFixedRate(t.cfg.Screen.TickRate)
		defer clock.Stop()
		opts.Clock = clock
	}

	episode := game.NewEpisode(t.cfg, t.sprites, opts)
	t.pop.OnGeneration = func(r neural.GenerationReport) error {
		return t.record(ctx, r)
	}
	return t.pop.Run(ctx, episode.Run, t.opts.Generations)
}

// record handles one generation report.
func (t *trainer) record(ctx context.Context, r neural.GenerationReport) error {
	// Writes must land even when the run is being interrupted.
	ctx = context.WithoutCancel(ctx)

	stats := telemetry.GenerationStats{
		Generation: r.Generation,
		Population: len(r.Organisms),
		Ticks:      r.Result.Ticks,
		Score:      r.Result.Score,
		Capped:     r.Result.Capped,
		DurationMS: r.Duration.Milliseconds(),
		Species:    r.Species.Count,
	}
	stats.ApplyFitness(telemetry.SummarizeFitness(r.Fitness))
	if r.Champion.Genome != nil {
		stats.ChampionNodes = len(r.Champion.Genome.Nodes)
		stats.ChampionGenes = len(r.Champion.Genome.Genes)
	}
	stats.LogStats()

	if err := t.output.WriteGeneration(stats); err != nil {
		return err
	}
	if t.perf != nil {
		perf := t.perf.Stats()
		if t.opts.LogPerf {
			perf.LogStats()
		}
		if err := t.output.WritePerf(perf, r.Generation); err != nil {
			return err
		}
	}
	if err := t.store.SaveGeneration(ctx, t.opts.RunID, stats); err != nil {
		return fmt.Errorf("saving generation %d: %w", r.Generation, err)
	}

	if r.Best != nil {
		entry, err := hallEntry(r.Best.Genome, r.Generation, r.Best.Fitness, r.Result.Score)
		if err != nil {
			return err
		}
		t.hof.Consider(entry)
	}

	if r.NewChampion {
		entry, err := hallEntry(r.Champion.Genome, r.Champion.Generation, r.Champion.Fitness, r.Result.Score)
		if err != nil {
			return err
		}
		if err := t.store.SaveChampion(ctx, t.opts.RunID, entry); err != nil {
			return fmt.Errorf("saving champion: %w", err)
		}
		slog.Info("new champion",
			"generation", entry.Generation,
			"genome_id", entry.GenomeID,
			"fitness", entry.Fitness,
			"nodes", entry.Nodes,
			"genes", entry.Genes,
		)
	}
	return nil
}

func (t *trainer) birdTint(pilot int) rl.Color {
	c := t.pop.SpeciesColor(pilot)
	return rl.NewColor(c.R, c.G, c.B, 255)
}

func (t *trainer) topSpecies() []ui.SpeciesInfo {
	top := t.pop.Species().GetTopSpecies(6)
	out := make([]ui.SpeciesInfo, len(top))
	for i, s := range top {
		out[i] = ui.SpeciesInfo{
			ID:      s.ID,
			Size:    s.Size,
			Age:     s.Age,
			BestFit: s.BestFit,
			Color:   rl.NewColor(s.Color.R, s.Color.G, s.Color.B, 255),
		}
	}
	return out
}

func (t *trainer) championNetwork() (string, neural.Topology) {
	champ, ok := t.pop.Champion()
	if !ok {
		return "Champion", neural.Topology{}
	}
	return fmt.Sprintf("Champion gen %d (%.1f)", champ.Generation, champ.Fitness), neural.GenomeTopology(champ.Genome)
}
