// Package ui draws the heads-up display and control strip over the game.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	TextShadow     rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	FontSize       int32
	HeaderFontSize int32
	OverlayFont    int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 200},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.White,
		TextShadow:     rl.Color{R: 0, G: 0, B: 0, A: 160},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     60,
		FontSize:       12,
		HeaderFontSize: 14,
		OverlayFont:    30,
	}
}

// SpeciesInfo holds the displayed summary of one species.
type SpeciesInfo struct {
	ID      int
	Size    int
	Age     int
	BestFit float64
	Color   rl.Color
}
