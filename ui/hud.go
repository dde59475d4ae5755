package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Score        int
	Generation   int
	Live         int
	Tick         int
	FPS          int32
	Paused       bool
	Fast         bool
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the score, generation and live-count overlays.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer

	score := fmt.Sprintf("Score: %d", data.Score)
	r.DrawOverlayText(score, data.ScreenWidth-15-r.OverlayWidth(score), 10)

	r.DrawOverlayText(fmt.Sprintf("Gen: %d", data.Generation), 10, 10)
	r.DrawOverlayText(fmt.Sprintf("# of Birds: %d", data.Live), 10, 50)

	status := fmt.Sprintf("Tick: %d | FPS: %d", data.Tick, data.FPS)
	switch {
	case data.Paused:
		status += " | PAUSED"
	case data.Fast:
		status += " | FAST"
	}
	rl.DrawText(status, 10, 90, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.DarkGray)
}

// SpeciesPanel lists the largest species with their bird tint.
type SpeciesPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewSpeciesPanel creates a hidden species panel.
func NewSpeciesPanel(x, y, width int32) *SpeciesPanel {
	return &SpeciesPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches panel visibility.
func (p *SpeciesPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *SpeciesPanel) IsVisible() bool {
	return p.visible
}

// Draw renders up to len(species) rows and returns the Y below the panel.
func (p *SpeciesPanel) Draw(species []SpeciesInfo) int32 {
	if !p.visible {
		return p.y
	}

	r := p.renderer
	padding := r.Theme.Padding
	height := int32(len(species)+1)*r.Theme.LineHeight + padding*2
	r.DrawPanel(p.x, p.y, p.width, height)

	y := r.DrawSectionHeader(p.x+padding, p.y+padding, "Species")
	for _, s := range species {
		label := fmt.Sprintf("#%d  n=%d  age=%d  best=%s", s.ID, s.Size, s.Age, formatFitness(s.BestFit))
		y = r.DrawColorSwatch(p.x+padding, y, s.Color, label)
	}
	return p.y + height
}
