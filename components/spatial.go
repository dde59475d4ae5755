package components

// Position is an entity's top-left corner in screen coordinates.
type Position struct {
	X, Y float64
}
