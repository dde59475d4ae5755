package neural

import (
	"math/rand"
	"testing"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

func TestGenomeIDGenerator(t *testing.T) {
	gen := NewGenomeIDGenerator()

	id1 := gen.NextID()
	id2 := gen.NextID()
	id3 := gen.NextID()

	if id1 >= id2 || id2 >= id3 {
		t.Errorf("IDs should be strictly increasing: %d, %d, %d", id1, id2, id3)
	}

	innov1 := gen.NextInnovation()
	innov2 := gen.NextInnovation()

	if innov1 >= innov2 {
		t.Errorf("innovations should be strictly increasing: %d, %d", innov1, innov2)
	}
	if innov1 < initialInnovNum {
		t.Errorf("innovation %d collides with initial links", innov1)
	}
	if node := gen.NextNodeID(); node != firstHiddenNodeID {
		t.Errorf("first hidden node = %d, want %d", node, firstHiddenNodeID)
	}
}

func TestInnovationsSharedWithinGeneration(t *testing.T) {
	gen := NewGenomeIDGenerator()

	a := gen.linkInnovation(1, 6)
	b := gen.linkInnovation(1, 6)
	c := gen.linkInnovation(2, 6)
	if a != b {
		t.Errorf("same link got innovations %d and %d", a, b)
	}
	if c == a {
		t.Error("different links share an innovation")
	}

	s1 := gen.split(3)
	s2 := gen.split(3)
	if s1 != s2 {
		t.Errorf("same split got %+v and %+v", s1, s2)
	}

	gen.Reset()
	if d := gen.linkInnovation(1, 6); d == a {
		t.Error("Reset should forget recorded links")
	}
}

func TestCrossoverGenomes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	parent1 := CreateBrainGenome(1, rng, 1.0)
	parent2 := CreateBrainGenome(2, rng, 1.0)

	child, err := CrossoverGenomes(rng, parent1, parent2, 1.0, 1.0, 3)
	if err != nil {
		t.Fatalf("CrossoverGenomes failed: %v", err)
	}
	if child.Id != 3 {
		t.Errorf("child ID = %d, want 3", child.Id)
	}

	// All initial genes match, so the child has one of each
	if len(child.Genes) != len(parent1.Genes) {
		t.Errorf("child has %d genes, want %d", len(child.Genes), len(parent1.Genes))
	}
	for _, g := range child.Genes {
		w := g.Link.ConnectionWeight
		p1 := findGene(parent1, g.InnovationNum).Link.ConnectionWeight
		p2 := findGene(parent2, g.InnovationNum).Link.ConnectionWeight
		if w != p1 && w != p2 {
			t.Errorf("gene %d weight %v comes from neither parent", g.InnovationNum, w)
		}
	}

	if _, err := NewBrainController(child); err != nil {
		t.Errorf("child does not build: %v", err)
	}
}

func TestCrossoverGenomesWithDifferentFitness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := NewGenomeIDGenerator()
	opts := &neat.Options{MutateAddNodeProb: 1}

	fit := CreateBrainGenome(1, rng, 1.0)
	weak, err := CloneGenome(fit, 2)
	if err != nil {
		t.Fatal(err)
	}
	// Only the weaker parent gains structure
	if _, err := MutateGenome(rng, weak, opts, ids); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		child, err := CrossoverGenomes(rng, fit, weak, 2.0, 1.0, 10+i)
		if err != nil {
			t.Fatal(err)
		}
		if len(child.Genes) != len(fit.Genes) {
			t.Fatalf("child has %d genes, want the fitter parent's %d", len(child.Genes), len(fit.Genes))
		}
		for _, n := range child.Nodes {
			if n.NeuronType == network.HiddenNeuron {
				t.Fatal("child kept a hidden node only the weaker parent had")
			}
		}
	}
}

func TestCrossoverNilParent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := CrossoverGenomes(rng, nil, CreateBrainGenome(1, rng, 1), 0, 0, 2); err == nil {
		t.Error("expected error for nil parent")
	}
}

func TestMutateGenomeStructure(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := NewGenomeIDGenerator()
	opts := &neat.Options{
		MutateAddNodeProb:      1,
		MutateAddLinkProb:      1,
		MutateLinkWeightsProb:  1,
		MutateToggleEnableProb: 0.1,
		WeightMutPower:         0.5,
	}

	genome := CreateBrainGenome(1, rng, 1.0)
	for i := 0; i < 40; i++ {
		if _, err := MutateGenome(rng, genome, opts, ids); err != nil {
			t.Fatal(err)
		}
	}

	hidden := 0
	for _, n := range genome.Nodes {
		if n.NeuronType == network.HiddenNeuron {
			hidden++
		}
	}
	if hidden == 0 {
		t.Error("expected hidden nodes after add-node mutations")
	}

	// Links always point deeper, so the graph stays acyclic
	depth := nodeDepths(genome)
	for _, g := range genome.Genes {
		if depth[g.Link.OutNode.Id] <= depth[g.Link.InNode.Id] {
			t.Errorf("gene %d: %d -> %d is not feedforward", g.InnovationNum, g.Link.InNode.Id, g.Link.OutNode.Id)
		}
		if w := g.Link.ConnectionWeight; w > maxConnectionWeight || w < -maxConnectionWeight {
			t.Errorf("weight %v exceeds clamp", w)
		}
	}

	seen := make(map[int64]bool)
	for _, g := range genome.Genes {
		if seen[g.InnovationNum] {
			t.Errorf("innovation %d appears twice", g.InnovationNum)
		}
		seen[g.InnovationNum] = true
	}

	brain, err := NewBrainController(genome)
	if err != nil {
		t.Fatalf("mutated genome does not build: %v", err)
	}
	if _, err := brain.Think([]float64{300, 20, 180, 1}); err != nil {
		t.Errorf("mutated genome does not activate: %v", err)
	}
}

func TestMutateGenomeNoop(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	genome := CreateBrainGenome(1, rng, 1.0)

	mutated, err := MutateGenome(rng, genome, &neat.Options{}, NewGenomeIDGenerator())
	if err != nil {
		t.Fatal(err)
	}
	if mutated {
		t.Error("zero probabilities should not mutate")
	}
	if _, err := MutateGenome(rng, nil, &neat.Options{}, NewGenomeIDGenerator()); err == nil {
		t.Error("expected error for nil genome")
	}
}

func TestToggleEnableKeepsOutputConnected(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	genome := CreateBrainGenome(1, rng, 0)

	for i := 0; i < 10; i++ {
		toggleEnable(rng, genome)
		if !genome.Genes[0].IsEnabled {
			t.Fatal("the only link into the output was disabled")
		}
	}
}

func TestCloneGenome(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	original := CreateBrainGenome(1, rng, 1.0)

	clone, err := CloneGenome(original, 2)
	if err != nil {
		t.Fatalf("CloneGenome failed: %v", err)
	}
	if clone.Id != 2 {
		t.Errorf("clone ID = %d, want 2", clone.Id)
	}
	if len(clone.Genes) != len(original.Genes) || len(clone.Nodes) != len(original.Nodes) {
		t.Fatal("clone has a different shape")
	}

	clone.Genes[0].Link.ConnectionWeight = 99
	if original.Genes[0].Link.ConnectionWeight == 99 {
		t.Error("clone shares genes with the original")
	}
	if GenomeCompatibility(original, original, DefaultNEATOptions()) != 0 {
		t.Error("a genome should be at distance 0 from itself")
	}
}

func TestGenomeCompatibility(t *testing.T) {
	opts := &neat.Options{ExcessCoeff: 1, DisjointCoeff: 1, MutdiffCoeff: 0.5}
	rng := rand.New(rand.NewSource(42))

	a := CreateBrainGenome(1, rng, 1.0)
	b, _ := CloneGenome(a, 2)
	for _, g := range b.Genes {
		g.Link.ConnectionWeight += 1
	}

	// Matching genes only: mean weight difference 1
	if d := GenomeCompatibility(a, b, opts); d < 0.5-1e-9 || d > 0.5+1e-9 {
		t.Errorf("distance = %v, want 0.5", d)
	}

	ids := NewGenomeIDGenerator()
	if !addNode(rng, b, ids) {
		t.Fatal("addNode failed")
	}
	// Two excess genes from the split
	if d := GenomeCompatibility(a, b, opts); d < 2.5-1e-9 || d > 2.5+1e-9 {
		t.Errorf("distance = %v, want 2.5", d)
	}
	if GenomeCompatibility(a, nil, opts) < 1e300 {
		t.Error("nil genome should be infinitely far")
	}
}

func findGene(g *genetics.Genome, innov int64) *genetics.Gene {
	for _, gene := range g.Genes {
		if gene.InnovationNum == innov {
			return gene
		}
	}
	return nil
}

func BenchmarkCrossoverGenomes(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	parent1 := CreateBrainGenome(1, rng, 1.0)
	parent2 := CreateBrainGenome(2, rng, 1.0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = CrossoverGenomes(rng, parent1, parent2, 1.0, 0.5, i+3)
	}
}
