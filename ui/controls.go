package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlAction reports which control strip buttons were pressed this frame.
type ControlAction struct {
	TogglePause bool
	ToggleFast  bool
}

// ControlsPanel renders the pause and fast-forward buttons.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewControlsPanel creates a control strip anchored at (x, y).
func NewControlsPanel(x, y int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// Draw renders the buttons and returns the actions clicked.
func (c *ControlsPanel) Draw(paused, fast bool) ControlAction {
	const (
		buttonW = 70
		buttonH = 24
		gap     = 6
	)
	r := c.renderer
	pad := r.Theme.Padding
	r.DrawPanel(c.x, c.y, buttonW*2+gap+pad*2, buttonH+pad*2)

	pauseLabel := "Pause"
	if paused {
		pauseLabel = "Resume"
	}
	fastLabel := "Fast"
	if fast {
		fastLabel = "Normal"
	}

	x := float32(c.x + pad)
	y := float32(c.y + pad)
	var action ControlAction
	action.TogglePause = gui.Button(rl.Rectangle{X: x, Y: y, Width: buttonW, Height: buttonH}, pauseLabel)
	action.ToggleFast = gui.Button(rl.Rectangle{X: x + buttonW + gap, Y: y, Width: buttonW, Height: buttonH}, fastLabel)
	return action
}
