package history

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/pthm-cable/flappy/telemetry"
)

// MemoryStore keeps history for the life of the process.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	generations map[string]map[int]telemetry.GenerationStats
	champions   map[string]telemetry.HallEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.generations = make(map[string]map[int]telemetry.GenerationStats)
	s.champions = make(map[string]telemetry.HallEntry)
	return nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, runID string, stats telemetry.GenerationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	run, ok := s.generations[runID]
	if !ok {
		run = make(map[int]telemetry.GenerationStats)
		s.generations[runID] = run
	}
	run[stats.Generation] = stats
	return nil
}

func (s *MemoryStore) Generations(_ context.Context, runID string) ([]telemetry.GenerationStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, errNotInitialized
	}
	run, ok := s.generations[runID]
	if !ok {
		return nil, false, nil
	}
	out := make([]telemetry.GenerationStats, 0, len(run))
	for _, g := range run {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, true, nil
}

func (s *MemoryStore) SaveChampion(_ context.Context, runID string, champion telemetry.HallEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	champion.Genome = append([]byte(nil), champion.Genome...)
	s.champions[runID] = champion
	return nil
}

func (s *MemoryStore) Champion(_ context.Context, runID string) (telemetry.HallEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return telemetry.HallEntry{}, false, errNotInitialized
	}
	champion, ok := s.champions[runID]
	return champion, ok, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

var errNotInitialized = errors.New("store is not initialized")
