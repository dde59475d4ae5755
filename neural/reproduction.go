package neural

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// Mutation constants
const (
	perturbProb         = 0.9  // Probability of perturbing vs replacing weights
	maxConnectionWeight = 8.0  // Maximum absolute connection weight
	maxLinkAttempts     = 20   // Maximum attempts to find a new connection
	initialInnovNum     = 1000 // Starting innovation number, above the initial links
	disableInheritProb  = 0.75 // Chance a gene disabled in either parent stays disabled
)

// GenomeIDGenerator hands out genome IDs, node IDs and innovation numbers.
// Structural innovations are remembered until Reset so the same split or link
// made by several genomes in one generation gets the same numbers.
type GenomeIDGenerator struct {
	nextID       int
	nextNodeID   int
	nextInnovNum int64

	links  map[int64]int64
	splits map[int64]nodeSplit
}

type nodeSplit struct {
	nodeID            int
	inInnov, outInnov int64
}

// NewGenomeIDGenerator creates a new ID generator.
func NewGenomeIDGenerator() *GenomeIDGenerator {
	return &GenomeIDGenerator{
		nextID:       1,
		nextNodeID:   firstHiddenNodeID,
		nextInnovNum: initialInnovNum,
		links:        make(map[int64]int64),
		splits:       make(map[int64]nodeSplit),
	}
}

// NextID returns the next unique genome ID.
func (g *GenomeIDGenerator) NextID() int {
	id := g.nextID
	g.nextID++
	return id
}

// NextInnovation returns the next innovation number.
func (g *GenomeIDGenerator) NextInnovation() int64 {
	num := g.nextInnovNum
	g.nextInnovNum++
	return num
}

// NextNodeID returns the next hidden node ID.
func (g *GenomeIDGenerator) NextNodeID() int {
	id := g.nextNodeID
	g.nextNodeID++
	return id
}

// Reset forgets the innovations recorded this generation.
func (g *GenomeIDGenerator) Reset() {
	clear(g.links)
	clear(g.splits)
}

// linkInnovation returns the innovation number for a new in->out link.
func (g *GenomeIDGenerator) linkInnovation(inID, outID int) int64 {
	key := connectionKey(inID, outID)
	if innov, ok := g.links[key]; ok {
		return innov
	}
	innov := g.NextInnovation()
	g.links[key] = innov
	return innov
}

// split returns the node and innovations for splitting the given gene.
func (g *GenomeIDGenerator) split(innov int64) nodeSplit {
	if s, ok := g.splits[innov]; ok {
		return s
	}
	s := nodeSplit{
		nodeID:   g.NextNodeID(),
		inInnov:  g.NextInnovation(),
		outInnov: g.NextInnovation(),
	}
	g.splits[innov] = s
	return s
}

// CrossoverGenomes performs NEAT-style crossover between two parent genomes.
// Genes are aligned by innovation number.
// The more fit parent contributes disjoint/excess genes.
func CrossoverGenomes(rng *rand.Rand, parent1, parent2 *genetics.Genome, fitness1, fitness2 float64, childID int) (*genetics.Genome, error) {
	if parent1 == nil || parent2 == nil {
		return nil, fmt.Errorf("cannot crossover nil genomes")
	}

	// Determine which parent is more fit (or equal)
	var primary, secondary *genetics.Genome
	if fitness1 >= fitness2 {
		primary, secondary = parent1, parent2
	} else {
		primary, secondary = parent2, parent1
	}

	primaryGenes := make(map[int64]*genetics.Gene, len(primary.Genes))
	for _, gene := range primary.Genes {
		primaryGenes[gene.InnovationNum] = gene
	}

	secondaryGenes := make(map[int64]*genetics.Gene, len(secondary.Genes))
	for _, gene := range secondary.Genes {
		secondaryGenes[gene.InnovationNum] = gene
	}

	// Sort innovations for deterministic ordering
	innovations := make([]int64, 0, len(primaryGenes)+len(secondaryGenes))
	for innov := range primaryGenes {
		innovations = append(innovations, innov)
	}
	for innov := range secondaryGenes {
		if _, ok := primaryGenes[innov]; !ok {
			innovations = append(innovations, innov)
		}
	}
	sort.Slice(innovations, func(i, j int) bool { return innovations[i] < innovations[j] })

	childNodeMap := make(map[int]*network.NNode)
	for _, node := range primary.Nodes {
		childNodeMap[node.Id] = copyNode(node)
	}
	for _, node := range secondary.Nodes {
		if _, exists := childNodeMap[node.Id]; !exists {
			childNodeMap[node.Id] = copyNode(node)
		}
	}

	childGenes := make([]*genetics.Gene, 0, len(innovations))
	used := make(map[int]bool, len(childNodeMap))

	for _, innov := range innovations {
		pGene := primaryGenes[innov]
		sGene := secondaryGenes[innov]

		var selected *genetics.Gene
		enabled := true

		switch {
		case pGene != nil && sGene != nil:
			// Matching gene - randomly select from either parent
			if rng.Float64() < 0.5 {
				selected = pGene
			} else {
				selected = sGene
			}
			if !pGene.IsEnabled || !sGene.IsEnabled {
				enabled = rng.Float64() >= disableInheritProb
			}
		case pGene != nil:
			// Disjoint/excess from more fit parent - always include
			selected = pGene
			enabled = pGene.IsEnabled
		case fitness1 == fitness2 && rng.Float64() < 0.5:
			selected = sGene
			enabled = sGene.IsEnabled
		}

		if selected == nil {
			continue
		}

		inNode := childNodeMap[selected.Link.InNode.Id]
		outNode := childNodeMap[selected.Link.OutNode.Id]
		childGene := genetics.NewGeneWithTrait(
			nil,
			selected.Link.ConnectionWeight,
			inNode,
			outNode,
			selected.Link.IsRecurrent,
			selected.InnovationNum,
			selected.MutationNum,
		)
		childGene.IsEnabled = enabled
		childGenes = append(childGenes, childGene)
		used[inNode.Id] = true
		used[outNode.Id] = true
	}

	// Keep every sensor and output; drop hidden nodes no gene references
	childNodes := make([]*network.NNode, 0, len(childNodeMap))
	for id, node := range childNodeMap {
		if node.NeuronType == network.HiddenNeuron && !used[id] {
			continue
		}
		childNodes = append(childNodes, node)
	}
	sort.Slice(childNodes, func(i, j int) bool { return childNodes[i].Id < childNodes[j].Id })

	return genetics.NewGenome(childID, nil, childNodes, childGenes), nil
}

func copyNode(node *network.NNode) *network.NNode {
	newNode := network.NewNNode(node.Id, node.NeuronType)
	newNode.ActivationType = node.ActivationType
	return newNode
}

func mutateWeights(rng *rand.Rand, genome *genetics.Genome, power float64) {
	for _, gene := range genome.Genes {
		if rng.Float64() < perturbProb {
			gene.Link.ConnectionWeight += (rng.Float64()*2 - 1) * power
		} else {
			gene.Link.ConnectionWeight = rng.Float64()*4 - 2
		}
		gene.Link.ConnectionWeight = clampWeight(gene.Link.ConnectionWeight)
	}
}

// clampWeight clamps a connection weight to the valid range.
func clampWeight(w float64) float64 {
	if w > maxConnectionWeight {
		return maxConnectionWeight
	}
	if w < -maxConnectionWeight {
		return -maxConnectionWeight
	}
	return w
}

func addNode(rng *rand.Rand, genome *genetics.Genome, idGen *GenomeIDGenerator) bool {
	enabledGenes := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, gene := range genome.Genes {
		if gene.IsEnabled && !gene.Link.IsRecurrent {
			enabledGenes = append(enabledGenes, gene)
		}
	}
	if len(enabledGenes) == 0 {
		return false
	}

	geneToSplit := enabledGenes[rng.Intn(len(enabledGenes))]

	s := idGen.split(geneToSplit.InnovationNum)
	if hasNode(genome, s.nodeID) {
		// Same gene split twice in one lineage; take fresh numbers
		s = nodeSplit{
			nodeID:   idGen.NextNodeID(),
			inInnov:  idGen.NextInnovation(),
			outInnov: idGen.NextInnovation(),
		}
	}

	geneToSplit.IsEnabled = false

	newNode := network.NewNNode(s.nodeID, network.HiddenNeuron)
	newNode.ActivationType = hiddenActivation

	// old_in -> new_node carries 1.0, new_node -> old_out keeps the old weight
	gene1 := genetics.NewGeneWithTrait(nil, 1.0, geneToSplit.Link.InNode, newNode, false, s.inInnov, 0)
	gene2 := genetics.NewGeneWithTrait(nil, geneToSplit.Link.ConnectionWeight, newNode, geneToSplit.Link.OutNode, false, s.outInnov, 0)

	genome.Nodes = append(genome.Nodes, newNode)
	genome.Genes = append(genome.Genes, gene1, gene2)

	return true
}

// hiddenActivation is used by every node added through mutation.
const hiddenActivation = neatmath.SigmoidSteepenedActivation

func hasNode(genome *genetics.Genome, id int) bool {
	for _, node := range genome.Nodes {
		if node.Id == id {
			return true
		}
	}
	return false
}

func addLink(rng *rand.Rand, genome *genetics.Genome, idGen *GenomeIDGenerator) bool {
	var sources, targets []*network.NNode
	for _, node := range genome.Nodes {
		switch node.NeuronType {
		case network.InputNeuron, network.BiasNeuron:
			sources = append(sources, node)
		case network.OutputNeuron:
			targets = append(targets, node)
		case network.HiddenNeuron:
			sources = append(sources, node)
			targets = append(targets, node)
		}
	}

	if len(sources) == 0 || len(targets) == 0 {
		return false
	}

	existing := make(map[int64]bool, len(genome.Genes))
	for _, gene := range genome.Genes {
		existing[connectionKey(gene.Link.InNode.Id, gene.Link.OutNode.Id)] = true
	}

	depth := nodeDepths(genome)

	for attempt := 0; attempt < maxLinkAttempts; attempt++ {
		source := sources[rng.Intn(len(sources))]
		target := targets[rng.Intn(len(targets))]

		if source.Id == target.Id || existing[connectionKey(source.Id, target.Id)] {
			continue
		}
		// Feedforward only: links must point to a deeper node
		if target.NeuronType == network.HiddenNeuron && depth[target.Id] <= depth[source.Id] {
			continue
		}

		newGene := genetics.NewGeneWithTrait(
			nil,
			rng.Float64()*4-2,
			source,
			target,
			false,
			idGen.linkInnovation(source.Id, target.Id),
			0,
		)
		genome.Genes = append(genome.Genes, newGene)
		return true
	}

	return false
}

// nodeDepths returns the longest path from any sensor to each node over all
// genes, enabled or not.
func nodeDepths(genome *genetics.Genome) map[int]int {
	depth := make(map[int]int, len(genome.Nodes))
	// Relaxation converges within len(nodes) passes on an acyclic graph
	for range genome.Nodes {
		changed := false
		for _, gene := range genome.Genes {
			in, out := gene.Link.InNode.Id, gene.Link.OutNode.Id
			if d := depth[in] + 1; d > depth[out] {
				depth[out] = d
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return depth
}

// connectionKey creates a unique key for a connection between two nodes.
func connectionKey(inID, outID int) int64 {
	return int64(inID)<<32 | int64(outID)
}

func toggleEnable(rng *rand.Rand, genome *genetics.Genome) {
	if len(genome.Genes) == 0 {
		return
	}

	gene := genome.Genes[rng.Intn(len(genome.Genes))]
	gene.IsEnabled = !gene.IsEnabled

	// If we disabled a gene, make sure at least one gene to each output is enabled
	if !gene.IsEnabled {
		outID := gene.Link.OutNode.Id
		for _, g := range genome.Genes {
			if g.Link.OutNode.Id == outID && g.IsEnabled {
				return
			}
		}
		gene.IsEnabled = true
	}
}

// MutateGenome applies weight and structural mutations with the option
// probabilities. Reports whether anything changed.
func MutateGenome(rng *rand.Rand, genome *genetics.Genome, opts *neat.Options, idGen *GenomeIDGenerator) (bool, error) {
	if genome == nil {
		return false, fmt.Errorf("cannot mutate nil genome")
	}

	mutated := false

	if rng.Float64() < opts.MutateAddNodeProb && addNode(rng, genome, idGen) {
		mutated = true
	}

	if rng.Float64() < opts.MutateAddLinkProb && addLink(rng, genome, idGen) {
		mutated = true
	}

	if rng.Float64() < opts.MutateLinkWeightsProb {
		mutateWeights(rng, genome, opts.WeightMutPower)
		mutated = true
	}

	if rng.Float64() < opts.MutateToggleEnableProb {
		toggleEnable(rng, genome)
		mutated = true
	}

	return mutated, nil
}

// CloneGenome creates a deep copy of a genome with a new ID.
func CloneGenome(genome *genetics.Genome, newID int) (*genetics.Genome, error) {
	if genome == nil {
		return nil, fmt.Errorf("cannot clone nil genome")
	}

	nodeMap := make(map[int]*network.NNode, len(genome.Nodes))
	newNodes := make([]*network.NNode, 0, len(genome.Nodes))
	for _, node := range genome.Nodes {
		newNode := copyNode(node)
		nodeMap[node.Id] = newNode
		newNodes = append(newNodes, newNode)
	}

	newGenes := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, gene := range genome.Genes {
		inNode := nodeMap[gene.Link.InNode.Id]
		outNode := nodeMap[gene.Link.OutNode.Id]
		if inNode == nil || outNode == nil {
			return nil, fmt.Errorf("gene %d references missing node", gene.InnovationNum)
		}
		newGene := genetics.NewGeneWithTrait(
			nil,
			gene.Link.ConnectionWeight,
			inNode,
			outNode,
			gene.Link.IsRecurrent,
			gene.InnovationNum,
			gene.MutationNum,
		)
		newGene.IsEnabled = gene.IsEnabled
		newGenes = append(newGenes, newGene)
	}

	return genetics.NewGenome(newID, nil, newNodes, newGenes), nil
}

// GenomeCompatibility calculates the compatibility distance between two genomes.
func GenomeCompatibility(g1, g2 *genetics.Genome, opts *neat.Options) float64 {
	if g1 == nil || g2 == nil {
		return math.MaxFloat64
	}

	genes1 := make(map[int64]*genetics.Gene, len(g1.Genes))
	maxInnov1 := int64(0)
	for _, gene := range g1.Genes {
		genes1[gene.InnovationNum] = gene
		maxInnov1 = max(maxInnov1, gene.InnovationNum)
	}

	genes2 := make(map[int64]*genetics.Gene, len(g2.Genes))
	maxInnov2 := int64(0)
	for _, gene := range g2.Genes {
		genes2[gene.InnovationNum] = gene
		maxInnov2 = max(maxInnov2, gene.InnovationNum)
	}

	matching := 0
	disjoint := 0
	excess := 0
	weightDiff := 0.0

	for innov, gene1 := range genes1 {
		if gene2, exists := genes2[innov]; exists {
			matching++
			weightDiff += math.Abs(gene1.Link.ConnectionWeight - gene2.Link.ConnectionWeight)
		} else if innov > maxInnov2 {
			excess++
		} else {
			disjoint++
		}
	}

	for innov := range genes2 {
		if _, exists := genes1[innov]; !exists {
			if innov > maxInnov1 {
				excess++
			} else {
				disjoint++
			}
		}
	}

	// Normalize by genome size
	n := float64(max(len(g1.Genes), len(g2.Genes)))
	if n < 20 {
		n = 1 // Don't normalize small genomes
	}

	avgWeightDiff := 0.0
	if matching > 0 {
		avgWeightDiff = weightDiff / float64(matching)
	}

	return (opts.ExcessCoeff*float64(excess)+opts.DisjointCoeff*float64(disjoint))/n +
		opts.MutdiffCoeff*avgWeightDiff
}
