package ui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/neural"
)

// Labels for the network's input and output nodes, by node ID.
var nodeLabels = map[int]string{
	1: "y",
	2: "top",
	3: "bottom",
	4: "bias",
	5: "flap",
}

// Network diagram colors.
var (
	ColorNodeInput    = rl.Color{R: 90, G: 160, B: 90, A: 255}
	ColorNodeHidden   = rl.Color{R: 110, G: 110, B: 110, A: 255}
	ColorNodeOutput   = rl.Color{R: 220, G: 170, B: 60, A: 255}
	ColorEdgePositive = rl.Color{R: 200, G: 80, B: 80, A: 100}
	ColorEdgeNegative = rl.Color{R: 80, G: 80, B: 200, A: 100}
	ColorEdgeDisabled = rl.Color{R: 90, G: 90, B: 90, A: 60}
	ColorLabelDim     = rl.Color{R: 150, G: 150, B: 150, A: 255}
)

// NetworkPanel draws a genome's layered topology.
type NetworkPanel struct {
	renderer      *Renderer
	x, y          int32
	width, height int32
	visible       bool
}

// NewNetworkPanel creates a hidden network panel.
func NewNetworkPanel(x, y, width, height int32) *NetworkPanel {
	return &NetworkPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		height:   height,
	}
}

// Toggle switches panel visibility.
func (p *NetworkPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *NetworkPanel) IsVisible() bool {
	return p.visible
}

// Draw renders the topology with title above it.
func (p *NetworkPanel) Draw(title string, t neural.Topology) {
	if !p.visible {
		return
	}
	r := p.renderer
	pad := r.Theme.Padding
	r.DrawPanel(p.x, p.y, p.width, p.height)
	top := r.DrawSectionHeader(p.x+pad, p.y+pad, title)

	if len(t.Nodes) == 0 || t.Layers == 0 {
		rl.DrawText("No network data", p.x+pad, top, r.Theme.FontSize, ColorLabelDim)
		return
	}

	area := rl.Rectangle{
		X:      float32(p.x + pad + 40),
		Y:      float32(top + 4),
		Width:  float32(p.width - pad*2 - 80),
		Height: float32(p.y + p.height - pad - top - 4),
	}
	pos := layout(t, area)

	for _, l := range t.Links {
		from, okFrom := pos[l.From]
		to, okTo := pos[l.To]
		if okFrom && okTo {
			drawEdge(from, to, l.Weight, l.Enabled)
		}
	}

	const radius = 6
	for _, n := range t.Nodes {
		v := pos[n.ID]
		rl.DrawCircleV(v, radius, nodeColor(n.Kind))
		rl.DrawCircleLinesV(v, radius, rl.Color{R: 100, G: 100, B: 100, A: 255})

		label, ok := nodeLabels[n.ID]
		if !ok {
			continue
		}
		switch n.Kind {
		case "output":
			rl.DrawText(label, int32(v.X)+radius+4, int32(v.Y)-5, 10, ColorLabelDim)
		default:
			w := rl.MeasureText(label, 10)
			rl.DrawText(label, int32(v.X)-radius-4-w, int32(v.Y)-5, 10, ColorLabelDim)
		}
	}
}

// layout spreads layers across the width and nodes of a layer down the height.
func layout(t neural.Topology, area rl.Rectangle) map[int]rl.Vector2 {
	perLayer := make(map[int][]int)
	for _, n := range t.Nodes {
		perLayer[n.Layer] = append(perLayer[n.Layer], n.ID)
	}

	colWidth := area.Width / float32(t.Layers)
	pos := make(map[int]rl.Vector2, len(t.Nodes))
	for layer, ids := range perLayer {
		spacing := area.Height / float32(len(ids))
		x := area.X + colWidth*(float32(layer)+0.5)
		for i, id := range ids {
			pos[id] = rl.Vector2{X: x, Y: area.Y + spacing*(float32(i)+0.5)}
		}
	}
	return pos
}

func nodeColor(kind string) rl.Color {
	switch kind {
	case "input", "bias":
		return ColorNodeInput
	case "output":
		return ColorNodeOutput
	}
	return ColorNodeHidden
}

// drawEdge renders a connection with thickness and alpha scaled by weight.
func drawEdge(from, to rl.Vector2, weight float64, enabled bool) {
	if !enabled {
		rl.DrawLineEx(from, to, 0.5, ColorEdgeDisabled)
		return
	}
	mag := float32(math.Abs(weight))
	thickness := min(max(mag*1.5, 0.5), 3)

	color := ColorEdgePositive
	if weight < 0 {
		color = ColorEdgeNegative
	}
	color.A = uint8(min(40+mag*40, 150))

	rl.DrawLineEx(from, to, thickness, color)
}
