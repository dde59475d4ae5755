package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"screen width", float64(cfg.Screen.Width), 550},
		{"screen height", float64(cfg.Screen.Height), 800},
		{"tick rate", float64(cfg.Screen.TickRate), 40},
		{"floor", cfg.World.FloorY, 730},
		{"scroll velocity", cfg.World.ScrollVelocity, 5},
		{"obstacle spawn", cfg.World.ObstacleSpawnX, 600},
		{"agent spawn x", cfg.Agent.SpawnX, 230},
		{"agent spawn y", cfg.Agent.SpawnY, 350},
		{"jump velocity", cfg.Agent.JumpVelocity, -10.5},
		{"max drop", cfg.Agent.MaxDrop, 16},
		{"gap", cfg.Obstacle.Gap, 200},
		{"min height", float64(cfg.Obstacle.MinHeight), 50},
		{"max height", float64(cfg.Obstacle.MaxHeight), 450},
		{"survival", cfg.Fitness.Survival, 0.1},
		{"jump threshold", cfg.Fitness.JumpThreshold, 0.5},
		{"pop size", float64(cfg.NEAT.PopSize), 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if cfg.Derived.TickSeconds != 1.0/40 {
		t.Errorf("TickSeconds = %v, want 0.025", cfg.Derived.TickSeconds)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	overlay := []byte("neat:\n  pop_size: 8\nobstacle:\n  gap: 180\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.NEAT.PopSize != 8 {
		t.Errorf("pop_size = %d, want 8", cfg.NEAT.PopSize)
	}
	if cfg.Obstacle.Gap != 180 {
		t.Errorf("gap = %v, want 180", cfg.Obstacle.Gap)
	}
	// Untouched fields keep their defaults
	if cfg.Agent.SpawnX != 230 {
		t.Errorf("spawn_x = %v, want default 230", cfg.Agent.SpawnX)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero tick rate", "screen:\n  tick_rate: 0\n"},
		{"inverted height range", "obstacle:\n  min_height: 300\n  max_height: 200\n"},
		{"negative max ticks", "episode:\n  max_ticks: -1\n"},
		{"not yaml", "screen: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.NEAT.Generations = 7

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.NEAT.Generations != 7 {
		t.Errorf("generations = %d, want 7", loaded.NEAT.Generations)
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic from Cfg() before Init()")
		}
	}()
	Cfg()
}
