// Package config provides configuration loading and access for the game and its learner.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Agent     AgentConfig     `yaml:"agent"`
	Obstacle  ObstacleConfig  `yaml:"obstacle"`
	Fitness   FitnessConfig   `yaml:"fitness"`
	Episode   EpisodeConfig   `yaml:"episode"`
	NEAT      NEATConfig      `yaml:"neat"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	History   HistoryConfig   `yaml:"history"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	TickRate int    `yaml:"tick_rate"` // logical ticks per second
	Title    string `yaml:"title"`
}

// WorldConfig holds the fixed course geometry.
type WorldConfig struct {
	FloorY         float64 `yaml:"floor_y"`         // top edge of the ground strip
	ScrollVelocity float64 `yaml:"scroll_velocity"` // shared by obstacles and ground
	ObstacleSpawnX float64 `yaml:"obstacle_spawn_x"`
}

// AgentConfig holds bird kinematics.
type AgentConfig struct {
	SpawnX         float64 `yaml:"spawn_x"`
	SpawnY         float64 `yaml:"spawn_y"`
	JumpVelocity   float64 `yaml:"jump_velocity"`
	Gravity        float64 `yaml:"gravity"`    // displacement = v*t + 0.5*gravity*t^2
	MaxDrop        float64 `yaml:"max_drop"`   // cap on downward displacement per tick
	RiseNudge      float64 `yaml:"rise_nudge"` // extra lift when displacement <= 0
	MaxTilt        float64 `yaml:"max_tilt"`
	MinTilt        float64 `yaml:"min_tilt"`
	TiltVelocity   float64 `yaml:"tilt_velocity"`
	TiltBand       float64 `yaml:"tilt_band"` // stay nose-up while within this band below the jump height
	AnimationTicks int     `yaml:"animation_ticks"`
}

// ObstacleConfig holds pipe geometry.
type ObstacleConfig struct {
	Gap       float64 `yaml:"gap"`
	MinHeight int     `yaml:"min_height"` // inclusive
	MaxHeight int     `yaml:"max_height"` // exclusive
}

// FitnessConfig holds the reward rules applied during an episode.
type FitnessConfig struct {
	Survival         float64 `yaml:"survival"`          // per tick alive
	CollisionPenalty float64 `yaml:"collision_penalty"` // subtracted on pipe hit
	PassBonus        float64 `yaml:"pass_bonus"`        // every live agent, once per passed pipe
	JumpThreshold    float64 `yaml:"jump_threshold"`    // controller output above this jumps
}

// EpisodeConfig bounds a single generation.
type EpisodeConfig struct {
	MaxTicks int `yaml:"max_ticks"` // 0 = unlimited
}

// NEATConfig holds the learner's hyperparameters. The episode never reads them.
type NEATConfig struct {
	PopSize          int     `yaml:"pop_size"`
	Generations      int     `yaml:"generations"`
	FitnessThreshold float64 `yaml:"fitness_threshold"` // 0 = run all generations

	// Initial topology
	InitialConnectionProb float64 `yaml:"initial_connection_prob"`

	// Speciation
	CompatThreshold float64 `yaml:"compat_threshold"`
	DisjointCoeff   float64 `yaml:"disjoint_coeff"`
	ExcessCoeff     float64 `yaml:"excess_coeff"`
	MutdiffCoeff    float64 `yaml:"mutdiff_coeff"`

	// Species management
	DropOffAge     int     `yaml:"drop_off_age"`
	SurvivalThresh float64 `yaml:"survival_thresh"`
	Elitism        int     `yaml:"elitism"`          // champions copied unchanged per species
	ElitismMinSize int     `yaml:"elitism_min_size"` // species size needed for elitism

	// Mutation
	WeightMutPower         float64 `yaml:"weight_mut_power"`
	MutateLinkWeightsProb  float64 `yaml:"mutate_link_weights_prob"`
	MutateAddNodeProb      float64 `yaml:"mutate_add_node_prob"`
	MutateAddLinkProb      float64 `yaml:"mutate_add_link_prob"`
	MutateToggleEnableProb float64 `yaml:"mutate_toggle_enable_prob"`
	MutateOnlyProb         float64 `yaml:"mutate_only_prob"`
	MateOnlyProb           float64 `yaml:"mate_only_prob"`
	InterspeciesMateRate   float64 `yaml:"interspecies_mate_rate"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow     int `yaml:"perf_window"`
	HallOfFameSize int `yaml:"hall_of_fame_size"`
}

// HistoryConfig selects the run history backend.
type HistoryConfig struct {
	Backend string `yaml:"backend"` // "memory" or "sqlite"
	Path    string `yaml:"path"`    // sqlite database file
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickSeconds float64 // 1 / Screen.TickRate
	ScreenW32   float32
	ScreenH32   float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Screen.TickRate <= 0:
		return fmt.Errorf("screen.tick_rate must be positive, got %d", c.Screen.TickRate)
	case c.Obstacle.MaxHeight <= c.Obstacle.MinHeight:
		return fmt.Errorf("obstacle.max_height (%d) must exceed obstacle.min_height (%d)",
			c.Obstacle.MaxHeight, c.Obstacle.MinHeight)
	case c.Agent.AnimationTicks <= 0:
		return fmt.Errorf("agent.animation_ticks must be positive, got %d", c.Agent.AnimationTicks)
	case c.Agent.MinTilt > c.Agent.MaxTilt:
		return fmt.Errorf("agent.min_tilt (%v) exceeds agent.max_tilt (%v)", c.Agent.MinTilt, c.Agent.MaxTilt)
	case c.NEAT.PopSize < 0:
		return fmt.Errorf("neat.pop_size must not be negative, got %d", c.NEAT.PopSize)
	case c.Episode.MaxTicks < 0:
		return fmt.Errorf("episode.max_ticks must not be negative, got %d", c.Episode.MaxTicks)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TickSeconds = 1.0 / float64(c.Screen.TickRate)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
