package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// HallEntry is a champion genome and the fitness it reached.
type HallEntry struct {
	Generation int             `json:"generation"`
	GenomeID   int             `json:"genome_id"`
	Fitness    float64         `json:"fitness"`
	Score      int             `json:"score"`
	Nodes      int             `json:"nodes"`
	Genes      int             `json:"genes"`
	Genome     json.RawMessage `json:"genome"`
}

// HallOfFame keeps the best genomes seen across generations, sorted by
// fitness, highest first.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall with the given capacity.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Consider inserts entry if it ranks within the hall's capacity.
// Returns true if the entry was added.
func (hof *HallOfFame) Consider(entry HallEntry) bool {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hof.entries) >= hof.maxSize && idx >= hof.maxSize {
		return false
	}

	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = entry

	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true
}

// Len returns the number of entries.
func (hof *HallOfFame) Len() int {
	return len(hof.entries)
}

// Entry returns the i-th best entry.
func (hof *HallOfFame) Entry(i int) (HallEntry, bool) {
	if i < 0 || i >= len(hof.entries) {
		return HallEntry{}, false
	}
	return hof.entries[i], true
}

// TopFitness returns the highest fitness in the hall, or 0 if empty.
func (hof *HallOfFame) TopFitness() float64 {
	if len(hof.entries) == 0 {
		return 0
	}
	return hof.entries[0].Fitness
}

// MarshalJSON serializes the hall as a ranked list.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.entries, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame JSON file.
func LoadHallOfFameFromFile(path string) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var entries []HallEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	hof := NewHallOfFame(len(entries))
	for _, e := range entries {
		hof.Consider(e)
	}
	return hof, nil
}
