package neural

import (
	"math"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// SpeciesColor represents an RGB color for species visualization.
type SpeciesColor struct {
	R, G, B uint8
}

// Species represents a group of genetically similar genomes.
type Species struct {
	ID             int
	Representative *genetics.Genome // Used for compatibility comparisons
	Members        []int            // Population indices of members
	BestFitness    float64          // Best raw fitness ever seen
	AvgFitness     float64          // Mean raw fitness this generation
	Age            int              // Generations since species was created
	Staleness      int              // Generations without fitness improvement
	Color          SpeciesColor
	Offspring      int // Offspring allotted for the next generation
}

// SpeciesManager manages speciation for the population.
type SpeciesManager struct {
	Species       []*Species
	opts          *neat.Options
	nextSpeciesID int
	generation    int
	speciesColors []SpeciesColor // Pre-generated distinct colors
}

// NewSpeciesManager creates a new species manager.
func NewSpeciesManager(opts *neat.Options) *SpeciesManager {
	return &SpeciesManager{
		Species:       make([]*Species, 0),
		opts:          opts,
		nextSpeciesID: 1,
		speciesColors: generateDistinctColors(64),
	}
}

// generateDistinctColors creates visually distinct colors using golden angle.
func generateDistinctColors(count int) []SpeciesColor {
	colors := make([]SpeciesColor, count)
	goldenAngle := 137.508 // Golden angle in degrees

	for i := 0; i < count; i++ {
		hue := math.Mod(float64(i)*goldenAngle, 360.0)
		r, g, b := hsvToRGB(hue, 0.7, 0.9)
		colors[i] = SpeciesColor{R: r, G: g, B: b}
	}
	return colors
}

// hsvToRGB converts HSV to RGB.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

// AssignSpecies finds or creates a species for the given genome.
// Returns the species ID.
func (sm *SpeciesManager) AssignSpecies(genome *genetics.Genome) int {
	if genome == nil {
		return 0
	}

	for _, sp := range sm.Species {
		if sp.Representative == nil {
			continue
		}
		if GenomeCompatibility(genome, sp.Representative, sm.opts) < sm.opts.CompatThreshold {
			return sp.ID
		}
	}

	// No compatible species - create a new one
	colorIdx := sm.nextSpeciesID % len(sm.speciesColors)
	newSpecies := &Species{
		ID:             sm.nextSpeciesID,
		Representative: genome,
		Members:        make([]int, 0),
		BestFitness:    math.Inf(-1),
		Color:          sm.speciesColors[colorIdx],
	}
	sm.nextSpeciesID++
	sm.Species = append(sm.Species, newSpecies)

	return newSpecies.ID
}

// GetSpecies returns the species with the given ID, or nil.
func (sm *SpeciesManager) GetSpecies(speciesID int) *Species {
	for _, sp := range sm.Species {
		if sp.ID == speciesID {
			return sp
		}
	}
	return nil
}

// GetSpeciesColor returns the color for a species ID.
// Returns a default gray if species not found.
func (sm *SpeciesManager) GetSpeciesColor(speciesID int) SpeciesColor {
	if sp := sm.GetSpecies(speciesID); sp != nil {
		return sp.Color
	}
	return SpeciesColor{R: 128, G: 128, B: 128}
}

// AddMember adds a population index to its species.
func (sm *SpeciesManager) AddMember(speciesID int, index int) {
	if sp := sm.GetSpecies(speciesID); sp != nil {
		sp.Members = append(sp.Members, index)
	}
}

// Speciate places every genome into a species against the current
// representatives and drops species left empty. Returns the species ID per
// genome.
func (sm *SpeciesManager) Speciate(genomes []*genetics.Genome) []int {
	for _, sp := range sm.Species {
		sp.Members = sp.Members[:0]
	}

	ids := make([]int, len(genomes))
	for i, g := range genomes {
		ids[i] = sm.AssignSpecies(g)
		sm.AddMember(ids[i], i)
	}

	active := sm.Species[:0]
	for _, sp := range sm.Species {
		if len(sp.Members) > 0 {
			active = append(active, sp)
		}
	}
	sm.Species = active

	return ids
}

// EndGeneration records this generation's fitness per species and updates
// age and staleness. fitness is indexed like the genomes given to Speciate.
func (sm *SpeciesManager) EndGeneration(fitness []float64) {
	sm.generation++

	for _, sp := range sm.Species {
		sp.Age++

		best := math.Inf(-1)
		total := 0.0
		for _, idx := range sp.Members {
			total += fitness[idx]
			best = max(best, fitness[idx])
		}
		sp.AvgFitness = total / float64(len(sp.Members))

		if best > sp.BestFitness {
			sp.BestFitness = best
			sp.Staleness = 0
		} else {
			sp.Staleness++
		}
	}
}

// RemoveStaleSpecies drops species that have not improved for DropOffAge
// generations. The species with ID protect always survives.
func (sm *SpeciesManager) RemoveStaleSpecies(protect int) {
	maxStaleness := sm.opts.DropOffAge
	if maxStaleness <= 0 {
		return
	}

	active := make([]*Species, 0, len(sm.Species))
	for _, sp := range sm.Species {
		if sp.ID == protect || sp.Staleness < maxStaleness {
			active = append(active, sp)
		}
	}
	sm.Species = active
}

// AllocateOffspring shares total offspring between species in proportion to
// their mean fitness after shifting the population minimum to zero, which is
// fitness sharing over species size. Remainders go to the largest fractions.
func (sm *SpeciesManager) AllocateOffspring(fitness []float64, total int) {
	if len(sm.Species) == 0 {
		return
	}

	lowest := math.Inf(1)
	for _, sp := range sm.Species {
		for _, idx := range sp.Members {
			lowest = min(lowest, fitness[idx])
		}
	}

	adjusted := make([]float64, len(sm.Species))
	sum := 0.0
	for i, sp := range sm.Species {
		shared := 0.0
		for _, idx := range sp.Members {
			shared += fitness[idx] - lowest
		}
		adjusted[i] = shared / float64(len(sp.Members))
		sum += adjusted[i]
	}

	type share struct {
		species  int
		fraction float64
	}
	shares := make([]share, len(sm.Species))
	assigned := 0
	for i, sp := range sm.Species {
		exact := float64(total) / float64(len(sm.Species))
		if sum > 0 {
			exact = adjusted[i] / sum * float64(total)
		}
		sp.Offspring = int(math.Floor(exact))
		assigned += sp.Offspring
		shares[i] = share{species: i, fraction: exact - math.Floor(exact)}
	}

	sort.SliceStable(shares, func(a, b int) bool { return shares[a].fraction > shares[b].fraction })
	for i := 0; assigned < total; i = (i + 1) % len(shares) {
		sm.Species[shares[i].species].Offspring++
		assigned++
	}
}

// ChooseRepresentatives picks a random member of each species to compare the
// next generation against.
func (sm *SpeciesManager) ChooseRepresentatives(rng *rand.Rand, genomes []*genetics.Genome) {
	for _, sp := range sm.Species {
		if len(sp.Members) > 0 {
			sp.Representative = genomes[sp.Members[rng.Intn(len(sp.Members))]]
		}
	}
}

// SpeciesStats contains summary statistics about all species.
type SpeciesStats struct {
	Count            int
	TotalMembers     int
	LargestSize      int
	SmallestSize     int
	AverageStaleness float64
	Generation       int
	BestFitness      float64
}

// SpeciesInfo contains display information about a single species.
type SpeciesInfo struct {
	ID        int
	Size      int
	BestFit   float64
	AvgFit    float64
	Age       int
	Staleness int
	Color     SpeciesColor
	Offspring int
}

// GetStats returns summary statistics about species distribution.
func (sm *SpeciesManager) GetStats() SpeciesStats {
	if len(sm.Species) == 0 {
		return SpeciesStats{Generation: sm.generation}
	}

	stats := SpeciesStats{
		Count:        len(sm.Species),
		SmallestSize: math.MaxInt,
		Generation:   sm.generation,
		BestFitness:  math.Inf(-1),
	}

	totalStaleness := 0
	for _, sp := range sm.Species {
		size := len(sp.Members)
		stats.TotalMembers += size
		stats.BestFitness = max(stats.BestFitness, sp.BestFitness)
		stats.LargestSize = max(stats.LargestSize, size)
		stats.SmallestSize = min(stats.SmallestSize, size)
		totalStaleness += sp.Staleness
	}
	stats.AverageStaleness = float64(totalStaleness) / float64(stats.Count)

	return stats
}

// GetTopSpecies returns info about the top N species by size.
func (sm *SpeciesManager) GetTopSpecies(n int) []SpeciesInfo {
	if len(sm.Species) == 0 {
		return nil
	}

	sorted := make([]*Species, len(sm.Species))
	copy(sorted, sm.Species)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Members) > len(sorted[j].Members)
	})

	n = min(n, len(sorted))
	result := make([]SpeciesInfo, n)
	for i := 0; i < n; i++ {
		sp := sorted[i]
		result[i] = SpeciesInfo{
			ID:        sp.ID,
			Size:      len(sp.Members),
			BestFit:   sp.BestFitness,
			AvgFit:    sp.AvgFitness,
			Age:       sp.Age,
			Staleness: sp.Staleness,
			Color:     sp.Color,
			Offspring: sp.Offspring,
		}
	}

	return result
}
