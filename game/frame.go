package game

// Renderer draws episode frames. QuitRequested is polled once per tick.
type Renderer interface {
	Draw(f *Frame)
	QuitRequested() bool
}

// Frame is a read-only snapshot of one tick for drawing.
// Slices are reused between ticks; copy anything kept past Draw.
type Frame struct {
	Generation int
	Tick       int
	Score      int
	Live       int

	Birds     []BirdView
	Obstacles []ObstacleView
	Ground    GroundView
}

// BirdView is the drawable state of one bird.
type BirdView struct {
	X, Y  float64
	Tilt  float64
	Frame int
	Pilot int
}

// ObstacleView is the drawable state of one pipe pair.
type ObstacleView struct {
	X      float64
	Height float64
	Top    float64
	Bottom float64
	Passed bool
}

// GroundView is the drawable state of the floor.
type GroundView struct {
	Y      float64
	X1, X2 float64
}
