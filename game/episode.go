// Package game runs one generation of birds through the pipe course.
package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flappy/assets"
	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/systems"
	"github.com/pthm-cable/flappy/telemetry"
)

// Status tells how an episode ended.
type Status int

const (
	Completed Status = iota // every bird was removed, or the tick cap was hit
	Cancelled               // quit requested or context done
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result summarizes a finished episode.
type Result struct {
	Status Status
	Ticks  int
	Score  int  // pipes passed
	Capped bool // ended by episode.max_ticks with birds still alive
}

// Options holds the optional collaborators of an episode.
type Options struct {
	Renderer Renderer                 // nil for headless runs
	Clock    Clock                    // nil = FreeRunning
	Perf     *telemetry.PerfCollector // nil disables tick timing
	Gaps     systems.GapSource        // nil = seeded from time
}

// Episode runs generations of birds. Shapes are built once and reused
// across calls to Run.
type Episode struct {
	cfg        *config.Config
	pipe       *systems.PipeSprite
	birdMasks  [assets.BirdFrames]*systems.Mask
	birdHeight float64
	groundW    float64

	renderer Renderer
	clock    Clock
	perf     *telemetry.PerfCollector
	gaps     systems.GapSource

	frame Frame
}

// NewEpisode builds collision masks from the sprites.
func NewEpisode(cfg *config.Config, sprites *assets.Sprites, opts Options) *Episode {
	e := &Episode{
		cfg:        cfg,
		pipe:       systems.NewPipeSprite(sprites.Pipe),
		birdHeight: float64(sprites.Bird[0].Bounds().Dy()),
		groundW:    float64(sprites.Base.Bounds().Dx()),
		renderer:   opts.Renderer,
		clock:      opts.Clock,
		perf:       opts.Perf,
		gaps:       opts.Gaps,
	}
	for i, img := range sprites.Bird {
		e.birdMasks[i] = systems.NewMask(img)
	}
	if e.clock == nil {
		e.clock = FreeRunning{}
	}
	if e.gaps == nil {
		e.gaps = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// PipeWidth returns the obstacle sprite width.
func (e *Episode) PipeWidth() float64 {
	return float64(e.pipe.Width)
}

// course is the state of a single run.
type course struct {
	world  *ecs.World
	mapper *ecs.Map4[components.Position, components.Kinematics, components.Animation, components.Pilot]
	filter *ecs.Filter4[components.Position, components.Kinematics, components.Animation, components.Pilot]
	live   int

	obstacles []*systems.Obstacle
	ground    *systems.Ground
	score     int
	ticks     int
}

// birdState is a copy of one bird taken after it moved this tick.
type birdState struct {
	entity  ecs.Entity
	x, y    float64
	frame   int
	pilot   int
	removed bool
}

// Run plays one generation. Every entrant gets one bird; fitness is zeroed
// first and then accumulated by the reward rules. The entrant slice is
// never reordered. Errors come only from controllers.
func (e *Episode) Run(ctx context.Context, generation int, entrants []*Entrant) (Result, error) {
	if len(entrants) == 0 {
		return Result{Status: Completed}, nil
	}

	c := e.newCourse(entrants)
	birds := make([]birdState, 0, len(entrants))

	for {
		if err := e.clock.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return c.result(Cancelled), nil
			}
			return c.result(Cancelled), fmt.Errorf("waiting for tick: %w", err)
		}
		if e.renderer != nil && e.renderer.QuitRequested() {
			return c.result(Cancelled), nil
		}
		if c.live == 0 {
			return c.result(Completed), nil
		}

		var err error
		birds, err = e.step(c, entrants, birds[:0])
		if err != nil {
			return c.result(Cancelled), err
		}

		if e.renderer != nil {
			e.perf.StartPhase(telemetry.PhaseRender)
			e.renderer.Draw(e.snapshot(c, generation))
		}
		e.perf.EndTick()

		if c.live == 0 {
			return c.result(Completed), nil
		}
		if limit := e.cfg.Episode.MaxTicks; limit > 0 && c.ticks >= limit {
			r := c.result(Completed)
			r.Capped = true
			return r, nil
		}
	}
}

func (e *Episode) newCourse(entrants []*Entrant) *course {
	world := ecs.NewWorld()
	c := &course{
		world:  world,
		mapper: ecs.NewMap4[components.Position, components.Kinematics, components.Animation, components.Pilot](world),
		filter: ecs.NewFilter4[components.Position, components.Kinematics, components.Animation, components.Pilot](world),
		ground: systems.NewGround(e.cfg.World.FloorY, e.groundW),
	}

	agent := &e.cfg.Agent
	for i, ent := range entrants {
		ent.Fitness = 0
		pos := components.Position{X: agent.SpawnX, Y: agent.SpawnY}
		kin := components.Kinematics{JumpHeight: agent.SpawnY}
		anim := components.Animation{}
		pilot := components.Pilot{Index: i}
		c.mapper.NewEntity(&pos, &kin, &anim, &pilot)
	}
	c.live = len(entrants)

	c.obstacles = append(c.obstacles,
		systems.NewObstacle(e.cfg.World.ObstacleSpawnX, e.pipe, &e.cfg.Obstacle, e.gaps))
	return c
}

func (c *course) result(s Status) Result {
	return Result{Status: s, Ticks: c.ticks, Score: c.score}
}

// step advances the course by one tick. birds is scratch space and is
// returned for reuse.
func (e *Episode) step(c *course, entrants []*Entrant, birds []birdState) ([]birdState, error) {
	cfg := e.cfg
	e.perf.StartTick()
	c.ticks++

	// Move birds and let each controller decide
	e.perf.StartPhase(telemetry.PhaseKinematics)
	active := e.activeObstacle(c)
	query := c.filter.Query()
	for query.Next() {
		pos, kin, anim, pilot := query.Get()
		systems.Advance(pos, kin, &cfg.Agent)

		ent := entrants[pilot.Index]
		ent.Fitness += cfg.Fitness.Survival

		obs := Observation{
			Y:              pos.Y,
			TopDistance:    math.Abs(pos.Y - active.Height),
			BottomDistance: math.Abs(pos.Y - active.Bottom),
		}
		out, err := ent.Controller.Decide(obs)
		if err != nil {
			query.Close()
			return birds, fmt.Errorf("entrant %d: %w", pilot.Index, err)
		}
		if out > cfg.Fitness.JumpThreshold {
			systems.Jump(pos, kin, &cfg.Agent)
		}

		birds = append(birds, birdState{
			entity: query.Entity(),
			x:      pos.X,
			y:      pos.Y,
			frame:  anim.Frame,
			pilot:  pilot.Index,
		})
	}

	// Resolve collisions and passes, obstacle by obstacle
	e.perf.StartPhase(telemetry.PhaseCollisions)
	spawn := false
	var expired []*systems.Obstacle
	for _, o := range c.obstacles {
		for i := range birds {
			b := &birds[i]
			if b.removed {
				continue
			}
			if o.Collides(e.birdMasks[b.frame], b.x, b.y) {
				entrants[b.pilot].Fitness -= cfg.Fitness.CollisionPenalty
				b.removed = true
			}
			if !o.Passed && o.X < b.x {
				o.Passed = true
				spawn = true
			}
		}
		if o.OffScreen() {
			expired = append(expired, o)
		}
		o.Advance(cfg.World.ScrollVelocity)
	}

	e.perf.StartPhase(telemetry.PhaseObstacles)
	if spawn {
		c.score++
		for i := range birds {
			if !birds[i].removed {
				entrants[birds[i].pilot].Fitness += cfg.Fitness.PassBonus
			}
		}
		c.obstacles = append(c.obstacles,
			systems.NewObstacle(cfg.World.ObstacleSpawnX, e.pipe, &cfg.Obstacle, e.gaps))
	}
	c.obstacles = removeObstacles(c.obstacles, expired)

	// Drop birds that hit a pipe or left the screen vertically
	e.perf.StartPhase(telemetry.PhaseCleanup)
	for i := range birds {
		b := &birds[i]
		if !b.removed && (b.y+e.birdHeight >= cfg.World.FloorY || b.y < 0) {
			b.removed = true
		}
		if b.removed {
			c.world.RemoveEntity(b.entity)
			c.live--
		}
	}

	c.ground.Advance(cfg.World.ScrollVelocity)
	query = c.filter.Query()
	for query.Next() {
		_, kin, anim, _ := query.Get()
		systems.Animate(anim, kin.Tilt, cfg.Agent.AnimationTicks)
	}

	return birds, nil
}

// activeObstacle picks the obstacle the birds are heading for: the second
// one once the lead bird has cleared the first. Every bird shares the spawn
// column, so the lead bird's x is the spawn x.
func (e *Episode) activeObstacle(c *course) *systems.Obstacle {
	if len(c.obstacles) > 1 && e.cfg.Agent.SpawnX > c.obstacles[0].X+e.PipeWidth() {
		return c.obstacles[1]
	}
	return c.obstacles[0]
}

// removeObstacles filters expired out of obstacles, preserving order.
func removeObstacles(obstacles, expired []*systems.Obstacle) []*systems.Obstacle {
	if len(expired) == 0 {
		return obstacles
	}
	kept := obstacles[:0]
	for _, o := range obstacles {
		drop := false
		for _, x := range expired {
			if o == x {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, o)
		}
	}
	return kept
}

// snapshot fills the reusable frame from the course.
func (e *Episode) snapshot(c *course, generation int) *Frame {
	f := &e.frame
	f.Generation = generation
	f.Tick = c.ticks
	f.Score = c.score
	f.Live = c.live

	f.Birds = f.Birds[:0]
	query := c.filter.Query()
	for query.Next() {
		pos, kin, anim, pilot := query.Get()
		f.Birds = append(f.Birds, BirdView{
			X:     pos.X,
			Y:     pos.Y,
			Tilt:  kin.Tilt,
			Frame: anim.Frame,
			Pilot: pilot.Index,
		})
	}

	f.Obstacles = f.Obstacles[:0]
	for _, o := range c.obstacles {
		f.Obstacles = append(f.Obstacles, ObstacleView{
			X:      o.X,
			Height: o.Height,
			Top:    o.Top,
			Bottom: o.Bottom,
			Passed: o.Passed,
		})
	}

	f.Ground = GroundView{Y: c.ground.Y, X1: c.ground.X1, X2: c.ground.X2}
	return f
}
