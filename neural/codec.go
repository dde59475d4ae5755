package neural

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

type genomeJSON struct {
	ID    int        `json:"id"`
	Nodes []nodeJSON `json:"nodes"`
	Genes []geneJSON `json:"genes"`
}

type nodeJSON struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	Activation string `json:"activation"`
}

type geneJSON struct {
	In         int     `json:"in"`
	Out        int     `json:"out"`
	Weight     float64 `json:"weight"`
	Enabled    bool    `json:"enabled"`
	Recurrent  bool    `json:"recurrent,omitempty"`
	Innovation int64   `json:"innovation"`
}

var neuronTypeNames = map[network.NodeNeuronType]string{
	network.InputNeuron:  "input",
	network.BiasNeuron:   "bias",
	network.OutputNeuron: "output",
	network.HiddenNeuron: "hidden",
}

var activationNames = map[neatmath.NodeActivationType]string{
	neatmath.LinearActivation:           "linear",
	neatmath.SigmoidSteepenedActivation: "sigmoid_steepened",
	neatmath.TanhActivation:             "tanh",
}

func lookup[K comparable](names map[K]string, name string) (K, bool) {
	for k, v := range names {
		if v == name {
			return k, true
		}
	}
	var zero K
	return zero, false
}

// EncodeGenome serializes a genome's nodes and genes as JSON.
func EncodeGenome(g *genetics.Genome) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("cannot encode nil genome")
	}

	out := genomeJSON{ID: g.Id}
	for _, n := range g.Nodes {
		typ, ok := neuronTypeNames[n.NeuronType]
		if !ok {
			return nil, fmt.Errorf("node %d: unknown neuron type %d", n.Id, n.NeuronType)
		}
		act, ok := activationNames[n.ActivationType]
		if !ok {
			return nil, fmt.Errorf("node %d: unsupported activation %d", n.Id, n.ActivationType)
		}
		out.Nodes = append(out.Nodes, nodeJSON{ID: n.Id, Type: typ, Activation: act})
	}
	for _, gene := range g.Genes {
		out.Genes = append(out.Genes, geneJSON{
			In:         gene.Link.InNode.Id,
			Out:        gene.Link.OutNode.Id,
			Weight:     gene.Link.ConnectionWeight,
			Enabled:    gene.IsEnabled,
			Recurrent:  gene.Link.IsRecurrent,
			Innovation: gene.InnovationNum,
		})
	}

	return json.Marshal(out)
}

// DecodeGenome restores a genome written by EncodeGenome.
func DecodeGenome(data []byte) (*genetics.Genome, error) {
	var in genomeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parsing genome: %w", err)
	}

	nodes := make(map[int]*network.NNode, len(in.Nodes))
	list := make([]*network.NNode, 0, len(in.Nodes))
	outputs := 0
	for _, n := range in.Nodes {
		typ, ok := lookup(neuronTypeNames, n.Type)
		if !ok {
			return nil, fmt.Errorf("node %d: unknown type %q", n.ID, n.Type)
		}
		act, ok := lookup(activationNames, n.Activation)
		if !ok {
			return nil, fmt.Errorf("node %d: unknown activation %q", n.ID, n.Activation)
		}
		if _, dup := nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node %d", n.ID)
		}
		node := network.NewNNode(n.ID, typ)
		node.ActivationType = act
		nodes[n.ID] = node
		list = append(list, node)
		if typ == network.OutputNeuron {
			outputs++
		}
	}
	if outputs != BrainOutputs {
		return nil, fmt.Errorf("genome has %d outputs, want %d", outputs, BrainOutputs)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Id < list[j].Id })

	genes := make([]*genetics.Gene, 0, len(in.Genes))
	for _, g := range in.Genes {
		inNode, outNode := nodes[g.In], nodes[g.Out]
		if inNode == nil || outNode == nil {
			return nil, fmt.Errorf("gene %d links missing node %d -> %d", g.Innovation, g.In, g.Out)
		}
		gene := genetics.NewGeneWithTrait(nil, g.Weight, inNode, outNode, g.Recurrent, g.Innovation, 0)
		gene.IsEnabled = g.Enabled
		genes = append(genes, gene)
	}

	return genetics.NewGenome(in.ID, nil, list, genes), nil
}
