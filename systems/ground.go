package systems

// Ground is the scrolling floor, drawn as two copies of the base sprite
// placed end to end.
type Ground struct {
	Y      float64
	X1, X2 float64
	Width  float64
}

// NewGround places the two segments side by side starting at x = 0.
func NewGround(y, width float64) *Ground {
	return &Ground{Y: y, X1: 0, X2: width, Width: width}
}

// Advance scrolls both segments left and moves any segment that has fully
// left the screen to the right of the other one.
func (g *Ground) Advance(velocity float64) {
	g.X1 -= velocity
	g.X2 -= velocity

	if g.X1+g.Width < 0 {
		g.X1 = g.X2 + g.Width
	}
	if g.X2+g.Width < 0 {
		g.X2 = g.X1 + g.Width
	}
}
