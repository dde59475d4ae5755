package game

// Observation is what a controller sees each tick.
type Observation struct {
	Y              float64 // bird height
	TopDistance    float64 // |y - upper edge of the gap|
	BottomDistance float64 // |y - lower edge of the gap|
}

// Inputs returns the observation as a network input vector.
func (o Observation) Inputs() []float64 {
	return []float64{o.Y, o.TopDistance, o.BottomDistance}
}

// Controller decides whether a bird flaps. Outputs above the jump
// threshold trigger a jump.
type Controller interface {
	Decide(obs Observation) (float64, error)
}

// ControllerFunc adapts a plain function to Controller.
type ControllerFunc func(obs Observation) (float64, error)

// Decide calls f.
func (f ControllerFunc) Decide(obs Observation) (float64, error) {
	return f(obs)
}

// Entrant pairs a controller with the fitness it earns during an episode.
type Entrant struct {
	Controller Controller
	Fitness    float64
}
