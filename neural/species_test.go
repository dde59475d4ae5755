package neural

import (
	"math/rand"
	"testing"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

func TestNewSpeciesManager(t *testing.T) {
	sm := NewSpeciesManager(DefaultNEATOptions())

	if len(sm.Species) != 0 {
		t.Errorf("expected 0 species, got %d", len(sm.Species))
	}
	if sm.generation != 0 {
		t.Errorf("expected generation 0, got %d", sm.generation)
	}
	if len(sm.speciesColors) < 32 {
		t.Errorf("expected at least 32 pre-generated colors, got %d", len(sm.speciesColors))
	}
}

func TestSpeciesManagerAssignSpecies(t *testing.T) {
	sm := NewSpeciesManager(DefaultNEATOptions())
	rng := rand.New(rand.NewSource(42))

	genome := CreateBrainGenome(1, rng, 1.0)
	speciesID := sm.AssignSpecies(genome)
	if speciesID == 0 {
		t.Error("expected non-zero species ID")
	}
	if len(sm.Species) != 1 {
		t.Errorf("expected 1 species, got %d", len(sm.Species))
	}

	// Same genome should get same species
	if again := sm.AssignSpecies(genome); again != speciesID {
		t.Errorf("same genome should get same species: %d != %d", again, speciesID)
	}
	if sm.AssignSpecies(nil) != 0 {
		t.Error("nil genome should not be assigned")
	}
}

// twoGroups returns genomes that fall into two species at threshold 3.
func twoGroups(t *testing.T, rng *rand.Rand, sizeA, sizeB int) []*genetics.Genome {
	t.Helper()
	base := CreateBrainGenome(1, rng, 1.0)
	far, _ := CloneGenome(base, 2)
	ids := NewGenomeIDGenerator()
	for i := 0; i < 3; i++ {
		if !addNode(rng, far, ids) {
			t.Fatal("addNode failed")
		}
	}

	var genomes []*genetics.Genome
	for i := 0; i < sizeA; i++ {
		g, _ := CloneGenome(base, 10+i)
		genomes = append(genomes, g)
	}
	for i := 0; i < sizeB; i++ {
		g, _ := CloneGenome(far, 100+i)
		genomes = append(genomes, g)
	}
	return genomes
}

func TestSpeciate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sm := NewSpeciesManager(&neat.Options{CompatThreshold: 3, ExcessCoeff: 1, DisjointCoeff: 1})

	genomes := twoGroups(t, rng, 3, 2)
	ids := sm.Speciate(genomes)

	if len(sm.Species) != 2 {
		t.Fatalf("expected 2 species, got %d", len(sm.Species))
	}
	if ids[0] != ids[1] || ids[1] != ids[2] || ids[3] != ids[4] || ids[0] == ids[3] {
		t.Errorf("species IDs = %v", ids)
	}
	if got := len(sm.GetSpecies(ids[0]).Members); got != 3 {
		t.Errorf("first species has %d members, want 3", got)
	}

	// Empty species are dropped on the next pass
	sm.Speciate(genomes[:3])
	if len(sm.Species) != 1 {
		t.Errorf("expected 1 species after resplit, got %d", len(sm.Species))
	}
}

func TestEndGenerationStaleness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sm := NewSpeciesManager(&neat.Options{CompatThreshold: 3, ExcessCoeff: 1, DisjointCoeff: 1, DropOffAge: 2})
	genomes := twoGroups(t, rng, 2, 2)
	ids := sm.Speciate(genomes)

	sm.EndGeneration([]float64{1, 3, 5, 4})
	a, b := sm.GetSpecies(ids[0]), sm.GetSpecies(ids[2])
	if a.BestFitness != 3 || a.AvgFitness != 2 || a.Staleness != 0 {
		t.Errorf("species a = %+v", a)
	}

	// a improves, b does not
	sm.EndGeneration([]float64{6, 0, 5, 4})
	sm.EndGeneration([]float64{7, 0, 5, 4})
	if a.Staleness != 0 || b.Staleness != 2 {
		t.Errorf("staleness a=%d b=%d, want 0 and 2", a.Staleness, b.Staleness)
	}
	if a.Age != 3 {
		t.Errorf("age = %d, want 3", a.Age)
	}

	sm.RemoveStaleSpecies(b.ID)
	if len(sm.Species) != 2 {
		t.Error("protected species was removed")
	}
	sm.RemoveStaleSpecies(a.ID)
	if len(sm.Species) != 1 || sm.Species[0] != a {
		t.Error("stale species should be removed")
	}
}

func TestAllocateOffspring(t *testing.T) {
	tests := []struct {
		name    string
		fitness []float64
		total   int
		want    [2]int
	}{
		{"proportional", []float64{0, 2, 4, 4}, 10, [2]int{2, 8}},
		{"all equal", []float64{1, 1, 1, 1}, 7, [2]int{4, 3}},
		{"negative fitness", []float64{-0.9, -0.9, 2.1, 2.1}, 6, [2]int{0, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			sm := NewSpeciesManager(&neat.Options{CompatThreshold: 3, ExcessCoeff: 1, DisjointCoeff: 1})
			sm.Speciate(twoGroups(t, rng, 2, 2))

			sm.AllocateOffspring(tt.fitness, tt.total)
			got := [2]int{sm.Species[0].Offspring, sm.Species[1].Offspring}
			if got != tt.want {
				t.Errorf("offspring = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpeciesColor(t *testing.T) {
	sm := NewSpeciesManager(DefaultNEATOptions())
	rng := rand.New(rand.NewSource(42))

	id := sm.AssignSpecies(CreateBrainGenome(1, rng, 1.0))
	color := sm.GetSpeciesColor(id)
	if color.R == 0 && color.G == 0 && color.B == 0 {
		t.Error("species color should not be black")
	}

	gray := sm.GetSpeciesColor(999)
	if gray.R != 128 || gray.G != 128 || gray.B != 128 {
		t.Errorf("unknown species color = %+v, want gray", gray)
	}
}

func TestSpeciesColorsDiversity(t *testing.T) {
	colors := generateDistinctColors(16)
	seen := make(map[SpeciesColor]bool)
	for _, c := range colors {
		if seen[c] {
			t.Errorf("duplicate color %+v", c)
		}
		seen[c] = true
	}
}

func TestSpeciesStats(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sm := NewSpeciesManager(&neat.Options{CompatThreshold: 3, ExcessCoeff: 1, DisjointCoeff: 1})

	if stats := sm.GetStats(); stats.Count != 0 {
		t.Errorf("empty manager count = %d", stats.Count)
	}

	sm.Speciate(twoGroups(t, rng, 3, 1))
	sm.EndGeneration([]float64{1, 2, 3, 9})

	stats := sm.GetStats()
	if stats.Count != 2 || stats.TotalMembers != 4 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LargestSize != 3 || stats.SmallestSize != 1 {
		t.Errorf("sizes = %d/%d, want 3/1", stats.LargestSize, stats.SmallestSize)
	}
	if stats.BestFitness != 9 || stats.Generation != 1 {
		t.Errorf("best %v generation %d", stats.BestFitness, stats.Generation)
	}

	top := sm.GetTopSpecies(5)
	if len(top) != 2 || top[0].Size != 3 {
		t.Errorf("top species = %+v", top)
	}
}

func BenchmarkAssignSpecies(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	sm := NewSpeciesManager(DefaultNEATOptions())
	for i := 0; i < 10; i++ {
		sm.AssignSpecies(CreateBrainGenome(i+1, rng, 1.0))
	}
	genome := CreateBrainGenome(100, rng, 1.0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sm.AssignSpecies(genome)
	}
}
