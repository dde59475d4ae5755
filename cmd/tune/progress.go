package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"
)

// EvalRecord is one row of tune_log.csv.
type EvalRecord struct {
	Eval      int     `csv:"eval"`
	Fitness   float64 `csv:"fitness"`
	Best      float64 `csv:"best"`
	MeanScore float64 `csv:"mean_score"`
	MeanTicks float64 `csv:"mean_ticks"`
	ElapsedMS int64   `csv:"elapsed_ms"`
}

// progress logs every evaluation and stops the optimizer when the context
// is cancelled or an evaluation fails. It implements optimize.Recorder.
type progress struct {
	ctx      context.Context
	maxEvals int
	start    time.Time
	file     *os.File
	rows     int
	err      error
}

func newProgress(ctx context.Context, logPath string, maxEvals int) (*progress, error) {
	f, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", logPath, err)
	}
	return &progress{ctx: ctx, maxEvals: maxEvals, file: f}, nil
}

// Init implements optimize.Recorder.
func (p *progress) Init() error {
	p.start = time.Now()
	return nil
}

// Record implements optimize.Recorder.
func (p *progress) Record(_ *optimize.Location, _ optimize.Operation, _ *optimize.Stats) error {
	if p.err != nil {
		return p.err
	}
	return p.ctx.Err()
}

// fail remembers the first evaluation error for Record to report.
func (p *progress) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *progress) evaluated(rec EvalRecord) error {
	elapsed := time.Since(p.start)
	rec.ElapsedMS = elapsed.Milliseconds()

	records := []EvalRecord{rec}
	var err error
	if p.rows == 0 {
		err = gocsv.Marshal(records, p.file)
	} else {
		err = gocsv.MarshalWithoutHeaders(records, p.file)
	}
	if err != nil {
		return fmt.Errorf("writing eval log: %w", err)
	}
	p.rows++

	remaining := time.Duration(p.maxEvals-rec.Eval) * (elapsed / time.Duration(rec.Eval))
	slog.Info("eval",
		"eval", rec.Eval,
		"max_evals", p.maxEvals,
		"fitness", rec.Fitness,
		"best", rec.Best,
		"mean_score", rec.MeanScore,
		"mean_ticks", rec.MeanTicks,
		"elapsed", formatDuration(elapsed),
		"eta", formatDuration(remaining),
	)
	return nil
}

func (p *progress) Close() error {
	return p.file.Close()
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
