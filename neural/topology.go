package neural

import (
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// TopologyNode is a genome node placed in a drawing layer.
type TopologyNode struct {
	ID    int
	Kind  string // input, bias, hidden or output
	Layer int
}

// TopologyLink is one connection gene.
type TopologyLink struct {
	From, To int
	Weight   float64
	Enabled  bool
}

// Topology is a layered view of a genome for drawing. Inputs and the bias
// sit in layer 0, outputs in the last layer, hidden nodes by longest path.
type Topology struct {
	Nodes  []TopologyNode
	Links  []TopologyLink
	Layers int
}

// GenomeTopology lays out genome by connection depth.
func GenomeTopology(genome *genetics.Genome) Topology {
	if genome == nil {
		return Topology{}
	}
	depth := nodeDepths(genome)

	last := 1
	for _, n := range genome.Nodes {
		if n.NeuronType == network.HiddenNeuron && depth[n.Id]+1 > last {
			last = depth[n.Id] + 1
		}
	}

	t := Topology{Layers: last + 1}
	for _, n := range genome.Nodes {
		node := TopologyNode{ID: n.Id, Kind: neuronTypeNames[n.NeuronType]}
		switch n.NeuronType {
		case network.OutputNeuron:
			node.Layer = last
		case network.HiddenNeuron:
			node.Layer = depth[n.Id]
		}
		t.Nodes = append(t.Nodes, node)
	}
	sort.SliceStable(t.Nodes, func(i, j int) bool {
		if t.Nodes[i].Layer != t.Nodes[j].Layer {
			return t.Nodes[i].Layer < t.Nodes[j].Layer
		}
		return t.Nodes[i].ID < t.Nodes[j].ID
	})

	for _, g := range genome.Genes {
		t.Links = append(t.Links, TopologyLink{
			From:    g.Link.InNode.Id,
			To:      g.Link.OutNode.Id,
			Weight:  g.Link.ConnectionWeight,
			Enabled: g.IsEnabled,
		})
	}
	return t
}
