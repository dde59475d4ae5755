package main

import (
	"fmt"

	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/telemetry"
)

// hallEntry encodes genome into a hall of fame record.
func hallEntry(genome *genetics.Genome, generation int, fitness float64, score int) (telemetry.HallEntry, error) {
	data, err := neural.EncodeGenome(genome)
	if err != nil {
		return telemetry.HallEntry{}, fmt.Errorf("encoding genome %d: %w", genome.Id, err)
	}
	return telemetry.HallEntry{
		Generation: generation,
		GenomeID:   genome.Id,
		Fitness:    fitness,
		Score:      score,
		Nodes:      len(genome.Nodes),
		Genes:      len(genome.Genes),
		Genome:     data,
	}, nil
}
