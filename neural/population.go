package neural

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
)

// Organism pairs a genome with the fitness of its latest episode.
type Organism struct {
	Genome    *genetics.Genome
	Fitness   float64
	SpeciesID int
}

// Champion is the best organism seen across all generations.
type Champion struct {
	Genome     *genetics.Genome
	Fitness    float64
	Generation int
}

// EvaluateFunc plays one episode with the given entrants and leaves each
// entrant's fitness in place.
type EvaluateFunc func(ctx context.Context, generation int, entrants []*game.Entrant) (game.Result, error)

// GenerationReport describes one evaluated generation.
type GenerationReport struct {
	Generation  int
	Result      game.Result
	Fitness     []float64 // indexed like Organisms
	Organisms   []*Organism
	Best        *Organism
	Species     SpeciesStats
	TopSpecies  []SpeciesInfo
	Champion    Champion
	NewChampion bool
	Duration    time.Duration
}

// Population is a generational NEAT population of brain genomes.
type Population struct {
	cfg     *config.NEATConfig
	opts    *neat.Options
	rng     *rand.Rand
	ids     *GenomeIDGenerator
	species *SpeciesManager

	organisms   []*Organism
	generation  int
	champion    Champion
	hasChampion bool

	// OnGeneration is called after every evaluated generation. A non-nil
	// error stops Run and is returned from it.
	OnGeneration func(GenerationReport) error
}

// NewPopulation creates PopSize random genomes.
func NewPopulation(cfg *config.NEATConfig, rng *rand.Rand) *Population {
	opts := NEATOptions(cfg)
	p := &Population{
		cfg:       cfg,
		opts:      opts,
		rng:       rng,
		ids:       NewGenomeIDGenerator(),
		species:   NewSpeciesManager(opts),
		organisms: make([]*Organism, 0, cfg.PopSize),
	}
	for i := 0; i < cfg.PopSize; i++ {
		g := CreateBrainGenome(p.ids.NextID(), rng, cfg.InitialConnectionProb)
		p.organisms = append(p.organisms, &Organism{Genome: g})
	}
	return p
}

// Generation returns the number of generations evaluated so far.
func (p *Population) Generation() int { return p.generation }

// Organisms returns the current generation.
func (p *Population) Organisms() []*Organism { return p.organisms }

// Species returns the species manager.
func (p *Population) Species() *SpeciesManager { return p.species }

// Champion returns the best organism seen so far.
func (p *Population) Champion() (Champion, bool) { return p.champion, p.hasChampion }

// SpeciesColor returns the species color of the organism at index.
func (p *Population) SpeciesColor(index int) SpeciesColor {
	if index < 0 || index >= len(p.organisms) {
		return p.species.GetSpeciesColor(0)
	}
	return p.species.GetSpeciesColor(p.organisms[index].SpeciesID)
}

// Run evaluates and breeds generations until generations have completed
// (0 uses the configured count, negative runs until stopped), the best
// fitness reaches the configured threshold, the context is cancelled or an
// episode is cancelled. It returns the number of completed generations.
// Cancellation is not an error.
func (p *Population) Run(ctx context.Context, evaluate EvaluateFunc, generations int) (int, error) {
	if generations == 0 {
		generations = p.cfg.Generations
	}

	completed := 0
	for generations < 0 || completed < generations {
		if ctx.Err() != nil {
			return completed, nil
		}

		report, cancelled, err := p.step(ctx, evaluate)
		if err != nil {
			return completed, err
		}
		if cancelled {
			return completed, nil
		}
		completed++

		if p.OnGeneration != nil {
			if err := p.OnGeneration(report); err != nil {
				return completed, err
			}
		}

		if p.cfg.FitnessThreshold > 0 && report.Best.Fitness >= p.cfg.FitnessThreshold {
			return completed, nil
		}
		if generations > 0 && completed == generations {
			break
		}
		if err := p.reproduce(); err != nil {
			return completed, fmt.Errorf("generation %d: reproduction: %w", p.generation, err)
		}
	}

	return completed, nil
}

// step speciates and evaluates the current organisms.
func (p *Population) step(ctx context.Context, evaluate EvaluateFunc) (GenerationReport, bool, error) {
	start := time.Now()
	gen := p.generation + 1

	genomes := make([]*genetics.Genome, len(p.organisms))
	for i, org := range p.organisms {
		genomes[i] = org.Genome
	}
	for i, id := range p.species.Speciate(genomes) {
		p.organisms[i].SpeciesID = id
	}

	entrants := make([]*game.Entrant, len(p.organisms))
	for i, org := range p.organisms {
		brain, err := NewBrainController(org.Genome)
		if err != nil {
			return GenerationReport{}, false, fmt.Errorf("generation %d: genome %d: %w", gen, org.Genome.Id, err)
		}
		entrants[i] = &game.Entrant{Controller: brain}
	}

	res, err := evaluate(ctx, gen, entrants)
	if err != nil {
		return GenerationReport{}, false, fmt.Errorf("generation %d: %w", gen, err)
	}
	if res.Status == game.Cancelled {
		return GenerationReport{}, true, nil
	}
	p.generation = gen

	fitness := make([]float64, len(p.organisms))
	var best *Organism
	for i, org := range p.organisms {
		org.Fitness = entrants[i].Fitness
		fitness[i] = org.Fitness
		if best == nil || org.Fitness > best.Fitness {
			best = org
		}
	}

	newChampion := false
	if best != nil && (!p.hasChampion || best.Fitness > p.champion.Fitness) {
		p.champion = Champion{Genome: best.Genome, Fitness: best.Fitness, Generation: gen}
		p.hasChampion = true
		newChampion = true
	}

	p.species.EndGeneration(fitness)

	report := GenerationReport{
		Generation:  gen,
		Result:      res,
		Fitness:     fitness,
		Organisms:   p.organisms,
		Best:        best,
		Species:     p.species.GetStats(),
		TopSpecies:  p.species.GetTopSpecies(3),
		Champion:    p.champion,
		NewChampion: newChampion,
		Duration:    time.Since(start),
	}
	return report, false, nil
}

// reproduce replaces the organisms with the next generation.
func (p *Population) reproduce() error {
	fitness := make([]float64, len(p.organisms))
	protect := 0
	best := math.Inf(-1)
	for i, org := range p.organisms {
		fitness[i] = org.Fitness
		if org.Fitness > best {
			best = org.Fitness
			protect = org.SpeciesID
		}
	}

	p.species.RemoveStaleSpecies(protect)
	p.species.AllocateOffspring(fitness, p.cfg.PopSize)

	genomes := make([]*genetics.Genome, len(p.organisms))
	for i, org := range p.organisms {
		genomes[i] = org.Genome
	}
	p.species.ChooseRepresentatives(p.rng, genomes)

	p.ids.Reset()
	next := make([]*Organism, 0, p.cfg.PopSize)

	for _, sp := range p.species.Species {
		members := make([]*Organism, len(sp.Members))
		for i, idx := range sp.Members {
			members[i] = p.organisms[idx]
		}
		sort.SliceStable(members, func(i, j int) bool { return members[i].Fitness > members[j].Fitness })

		n := sp.Offspring
		if len(members) >= p.cfg.ElitismMinSize {
			for e := 0; e < p.cfg.Elitism && e < len(members) && n > 0; e++ {
				clone, err := CloneGenome(members[e].Genome, p.ids.NextID())
				if err != nil {
					return err
				}
				next = append(next, &Organism{Genome: clone})
				n--
			}
		}

		survivors := max(1, int(math.Ceil(p.cfg.SurvivalThresh*float64(len(members)))))
		parents := members[:min(survivors, len(members))]

		for ; n > 0; n-- {
			child, err := p.breed(sp, parents)
			if err != nil {
				return err
			}
			next = append(next, &Organism{Genome: child})
		}
	}

	p.organisms = next
	return nil
}

// breed makes one child from the surviving parents of a species.
func (p *Population) breed(sp *Species, parents []*Organism) (*genetics.Genome, error) {
	mom := parents[p.rng.Intn(len(parents))]

	if p.rng.Float64() < p.opts.MutateOnlyProb {
		child, err := CloneGenome(mom.Genome, p.ids.NextID())
		if err != nil {
			return nil, err
		}
		_, err = MutateGenome(p.rng, child, p.opts, p.ids)
		return child, err
	}

	dad := parents[p.rng.Intn(len(parents))]
	if p.rng.Float64() < p.opts.InterspeciesMateRate {
		if other := p.otherSpeciesChampion(sp); other != nil {
			dad = other
		}
	}

	child, err := CrossoverGenomes(p.rng, mom.Genome, dad.Genome, mom.Fitness, dad.Fitness, p.ids.NextID())
	if err != nil {
		return nil, err
	}
	if mom == dad || p.rng.Float64() >= p.opts.MateOnlyProb {
		if _, err := MutateGenome(p.rng, child, p.opts, p.ids); err != nil {
			return nil, err
		}
	}
	return child, nil
}

// otherSpeciesChampion returns the fittest member of a random other species.
func (p *Population) otherSpeciesChampion(sp *Species) *Organism {
	if len(p.species.Species) < 2 {
		return nil
	}
	for {
		other := p.species.Species[p.rng.Intn(len(p.species.Species))]
		if other == sp {
			continue
		}
		var best *Organism
		for _, idx := range other.Members {
			if org := p.organisms[idx]; best == nil || org.Fitness > best.Fitness {
				best = org
			}
		}
		return best
	}
}
