package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawOverlayText draws large white text with a drop shadow.
func (r *Renderer) DrawOverlayText(text string, x, y int32) {
	size := r.Theme.OverlayFont
	rl.DrawText(text, x+2, y+2, size, r.Theme.TextShadow)
	rl.DrawText(text, x, y, size, rl.White)
}

// OverlayWidth returns the pixel width of text drawn with DrawOverlayText.
func (r *Renderer) OverlayWidth(text string) int32 {
	return rl.MeasureText(text, r.Theme.OverlayFont)
}

// DrawColorSwatch draws a small color square followed by a label.
func (r *Renderer) DrawColorSwatch(x, y int32, c rl.Color, label string) int32 {
	rl.DrawRectangle(x, y+2, 10, 10, c)
	rl.DrawRectangleLines(x, y+2, 10, 10, r.Theme.PanelBorder)
	rl.DrawText(label, x+16, y, r.Theme.FontSize, r.Theme.LabelColor)
	return y + r.Theme.LineHeight
}

func formatFitness(f float64) string {
	return fmt.Sprintf("%.1f", f)
}
