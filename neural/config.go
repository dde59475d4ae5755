package neural

import (
	"github.com/yaricom/goNEAT/v4/neat"

	"github.com/pthm-cable/flappy/config"
)

// BrainInputs is the number of observations fed to a genome: y and the
// distances to both edges of the gap.
const BrainInputs = 3

// BrainOutputs is the number of outputs from the brain network.
const BrainOutputs = 1

// Node IDs of the initial topology. Inputs take 1..BrainInputs.
const (
	biasNodeID   = BrainInputs + 1
	outputNodeID = BrainInputs + 2

	// firstHiddenNodeID is the first ID handed out by add-node mutations.
	firstHiddenNodeID = outputNodeID + 1
)

// NEATOptions maps the learner section of the config onto goNEAT options.
func NEATOptions(c *config.NEATConfig) *neat.Options {
	return &neat.Options{
		WeightMutPower: c.WeightMutPower,

		MutateAddNodeProb:      c.MutateAddNodeProb,
		MutateAddLinkProb:      c.MutateAddLinkProb,
		MutateToggleEnableProb: c.MutateToggleEnableProb,
		MutateLinkWeightsProb:  c.MutateLinkWeightsProb,
		MutateOnlyProb:         c.MutateOnlyProb,
		MateOnlyProb:           c.MateOnlyProb,
		InterspeciesMateRate:   c.InterspeciesMateRate,

		CompatThreshold: c.CompatThreshold,
		DisjointCoeff:   c.DisjointCoeff,
		ExcessCoeff:     c.ExcessCoeff,
		MutdiffCoeff:    c.MutdiffCoeff,

		DropOffAge:     c.DropOffAge,
		SurvivalThresh: c.SurvivalThresh,

		PopSize:        c.PopSize,
		NumGenerations: c.Generations,
	}
}

// DefaultNEATOptions returns the goNEAT options for the embedded defaults.
func DefaultNEATOptions() *neat.Options {
	return NEATOptions(&config.Default().NEAT)
}
