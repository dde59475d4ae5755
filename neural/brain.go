package neural

import (
	"fmt"
	"math/rand"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"

	"github.com/pthm-cable/flappy/game"
)

// BrainController wraps a goNEAT network for runtime evaluation.
type BrainController struct {
	Genome  *genetics.Genome
	network *network.Network
	inputs  []float64
	depth   int

	// silent is set when no enabled path reaches the output; such a bird
	// never flaps.
	silent bool
}

// NewBrainController creates a controller from a genome.
func NewBrainController(genome *genetics.Genome) (*BrainController, error) {
	phenotype, err := genome.Genesis(genome.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to build network from genome: %w", err)
	}

	// Activate with depth-based steps for proper signal propagation
	depth, err := phenotype.MaxActivationDepth()
	if err != nil || depth < 1 {
		depth = 5 // Fallback for simple networks
	}

	return &BrainController{
		Genome:  genome,
		network: phenotype,
		inputs:  make([]float64, BrainInputs+1),
		depth:   depth,
		silent:  !outputReachable(genome),
	}, nil
}

// outputReachable reports whether enabled genes connect a sensor to every
// output.
func outputReachable(genome *genetics.Genome) bool {
	active := make(map[int]bool, len(genome.Nodes))
	for _, n := range genome.Nodes {
		if n.NeuronType == network.InputNeuron || n.NeuronType == network.BiasNeuron {
			active[n.Id] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for _, g := range genome.Genes {
			if g.IsEnabled && active[g.Link.InNode.Id] && !active[g.Link.OutNode.Id] {
				active[g.Link.OutNode.Id] = true
				changed = true
			}
		}
	}
	for _, n := range genome.Nodes {
		if n.NeuronType == network.OutputNeuron && !active[n.Id] {
			return false
		}
	}
	return true
}

// Decide feeds the observation plus the bias input through the network and
// returns the jump signal in [0, 1].
func (b *BrainController) Decide(obs game.Observation) (float64, error) {
	b.inputs[0] = obs.Y
	b.inputs[1] = obs.TopDistance
	b.inputs[2] = obs.BottomDistance
	b.inputs[3] = 1.0

	outputs, err := b.Think(b.inputs)
	if err != nil {
		return 0, err
	}
	return outputs[0], nil
}

// Think processes sensor values (bias included) and returns the outputs.
func (b *BrainController) Think(inputs []float64) ([]float64, error) {
	if len(inputs) != BrainInputs+1 {
		return nil, fmt.Errorf("expected %d inputs, got %d", BrainInputs+1, len(inputs))
	}
	if b.silent {
		return make([]float64, BrainOutputs), nil
	}

	if err := b.network.LoadSensors(inputs); err != nil {
		return nil, fmt.Errorf("failed to load sensors: %w", err)
	}

	for i := 0; i < b.depth; i++ {
		if _, err := b.network.Activate(); err != nil {
			return nil, fmt.Errorf("activation failed: %w", err)
		}
	}

	outputs := append([]float64(nil), b.network.ReadOutputs()...)
	if len(outputs) < BrainOutputs {
		return nil, fmt.Errorf("network produced %d outputs", len(outputs))
	}

	// Observations are independent between ticks
	if _, err := b.network.Flush(); err != nil {
		return nil, fmt.Errorf("flush failed: %w", err)
	}

	return outputs, nil
}

// NodeCount returns the number of nodes in the network.
func (b *BrainController) NodeCount() int {
	return b.network.NodeCount()
}

// LinkCount returns the number of links (connections) in the network.
func (b *BrainController) LinkCount() int {
	return b.network.LinkCount()
}

// CreateBrainGenome creates a genome with three linear inputs, a bias node and
// one steepened-sigmoid output. Each input/bias link exists with
// probability connectionProb; weights are uniform in [-2, 2].
func CreateBrainGenome(id int, rng *rand.Rand, connectionProb float64) *genetics.Genome {
	nodes := make([]*network.NNode, 0, BrainInputs+1+BrainOutputs)

	for i := 1; i <= BrainInputs; i++ {
		node := network.NewNNode(i, network.InputNeuron)
		node.ActivationType = neatmath.LinearActivation
		nodes = append(nodes, node)
	}

	bias := network.NewNNode(biasNodeID, network.BiasNeuron)
	bias.ActivationType = neatmath.LinearActivation
	nodes = append(nodes, bias)

	out := network.NewNNode(outputNodeID, network.OutputNeuron)
	out.ActivationType = neatmath.SigmoidSteepenedActivation
	nodes = append(nodes, out)

	// Innovation numbers are fixed per source so every initial genome agrees
	genes := make([]*genetics.Gene, 0, BrainInputs+1)
	for i := 0; i <= BrainInputs; i++ {
		if rng.Float64() >= connectionProb {
			continue
		}
		genes = append(genes, genetics.NewGeneWithTrait(
			nil,
			rng.Float64()*4-2,
			nodes[i],
			out,
			false,
			int64(i+1),
			0,
		))
	}

	// Ensure the output is reachable
	if len(genes) == 0 {
		i := rng.Intn(BrainInputs + 1)
		genes = append(genes, genetics.NewGeneWithTrait(
			nil, rng.Float64()*4-2, nodes[i], out, false, int64(i+1), 0,
		))
	}

	return genetics.NewGenome(id, nil, nodes, genes)
}
