// Package components defines ECS components for the birds in an episode.
package components

// Kinematics holds the vertical motion state since the last jump.
type Kinematics struct {
	Tick       int     // ticks since the last jump
	Velocity   float64 // initial velocity of the current arc
	JumpHeight float64 // y at the moment of the last jump
	Tilt       float64 // degrees, positive is nose up
}

// Animation tracks the wing-flap cycle.
type Animation struct {
	Count int // ticks into the current cycle
	Frame int // sprite frame index, also selects the collision mask
}

// Pilot links a bird to the entrant that controls it.
type Pilot struct {
	Index int // position in the caller's entrant slice
}
