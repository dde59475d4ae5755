package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/pthm-cable/flappy/telemetry"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps history in a SQLite database file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, runID string, stats telemetry.GenerationStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (run_id, generation, best_fitness, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			best_fitness = excluded.best_fitness,
			payload = excluded.payload
	`, runID, stats.Generation, stats.BestFitness, payload)
	return err
}

func (s *SQLiteStore) Generations(ctx context.Context, runID string) ([]telemetry.GenerationStats, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM generations WHERE run_id = ? ORDER BY generation`, runID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var out []telemetry.GenerationStats
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, false, err
		}
		var stats telemetry.GenerationStats
		if err := json.Unmarshal(payload, &stats); err != nil {
			return nil, false, fmt.Errorf("decode generation of run %s: %w", runID, err)
		}
		out = append(out, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return out, len(out) > 0, nil
}

func (s *SQLiteStore) SaveChampion(ctx context.Context, runID string, champion telemetry.HallEntry) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(champion)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO champions (run_id, fitness, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			fitness = excluded.fitness,
			payload = excluded.payload
	`, runID, champion.Fitness, payload)
	return err
}

func (s *SQLiteStore) Champion(ctx context.Context, runID string) (telemetry.HallEntry, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return telemetry.HallEntry{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM champions WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return telemetry.HallEntry{}, false, nil
		}
		return telemetry.HallEntry{}, false, err
	}

	var champion telemetry.HallEntry
	if err := json.Unmarshal(payload, &champion); err != nil {
		return telemetry.HallEntry{}, false, fmt.Errorf("decode champion of run %s: %w", runID, err)
	}
	return champion, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
		CREATE TABLE IF NOT EXISTS champions (
			run_id TEXT PRIMARY KEY,
			fitness REAL NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
