package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/assets"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/ui"
)

const controlsLegend = "[Space] Pause  [F] Fast  [S] Species  [N] Network  [Esc] Quit"

// Options configures the optional overlays of a Window.
type Options struct {
	// Tint colors a bird by the entrant index it flies for. nil draws untinted.
	Tint func(pilot int) rl.Color
	// Species lists the species shown in the species panel. nil hides the panel.
	Species func() []ui.SpeciesInfo
	// Network returns a title and topology for the network panel. nil hides it.
	Network func() (string, neural.Topology)
}

// Window is a raylib-backed game.Renderer. All methods must be called
// from the goroutine that created it.
type Window struct {
	width, height int32
	tickRate      int32
	tex           *textures
	opts          Options

	hud      *ui.HUD
	controls *ui.ControlsPanel
	species  *ui.SpeciesPanel
	network  *ui.NetworkPanel

	paused bool
	fast   bool
	quit   bool
}

// NewWindow opens the game window and uploads the sprites.
func NewWindow(cfg *config.Config, sprites *assets.Sprites, opts Options) (*Window, error) {
	if sprites == nil {
		return nil, fmt.Errorf("renderer: nil sprites")
	}
	w := int32(cfg.Screen.Width)
	h := int32(cfg.Screen.Height)

	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(w, h, cfg.Screen.Title)
	if !rl.IsWindowReady() {
		return nil, fmt.Errorf("renderer: window %dx%d failed to open", w, h)
	}
	rl.SetExitKey(rl.KeyEscape)
	rl.SetTargetFPS(int32(cfg.Screen.TickRate))

	return &Window{
		width:    w,
		height:   h,
		tickRate: int32(cfg.Screen.TickRate),
		tex:      loadTextures(sprites),
		opts:     opts,
		hud:      ui.NewHUD(),
		controls: ui.NewControlsPanel(w-180, h-110),
		species:  ui.NewSpeciesPanel(10, 120, 300),
		network:  ui.NewNetworkPanel(w-290, 60, 280, 220),
	}, nil
}

// Close releases textures and closes the window.
func (w *Window) Close() {
	w.tex.unload()
	rl.CloseWindow()
}

// QuitRequested reports whether the user closed the window.
func (w *Window) QuitRequested() bool {
	return w.quit
}

// Paused reports whether the pause toggle is on.
func (w *Window) Paused() bool {
	return w.paused
}

// Draw renders one frame. While paused it keeps redrawing the same frame
// until the user resumes or quits.
func (w *Window) Draw(f *game.Frame) {
	w.present(f)
	for w.paused && !w.quit {
		w.present(f)
	}
}

func (w *Window) present(f *game.Frame) {
	if rl.WindowShouldClose() {
		w.quit = true
		return
	}
	w.handleKeys()

	rl.BeginDrawing()
	rl.ClearBackground(rl.SkyBlue)
	w.drawWorld(f)

	w.hud.Draw(ui.HUDData{
		Score:        f.Score,
		Generation:   f.Generation,
		Live:         f.Live,
		Tick:         f.Tick,
		FPS:          rl.GetFPS(),
		Paused:       w.paused,
		Fast:         w.fast,
		ScreenWidth:  w.width,
		ScreenHeight: w.height,
	})
	if w.opts.Species != nil && w.species.IsVisible() {
		w.species.Draw(w.opts.Species())
	}
	if w.opts.Network != nil && w.network.IsVisible() {
		w.network.Draw(w.opts.Network())
	}
	action := w.controls.Draw(w.paused, w.fast)
	w.hud.DrawControls(w.height, controlsLegend)
	rl.EndDrawing()

	if action.TogglePause {
		w.paused = !w.paused
	}
	if action.ToggleFast {
		w.setFast(!w.fast)
	}
}

func (w *Window) handleKeys() {
	if rl.IsKeyPressed(rl.KeySpace) {
		w.paused = !w.paused
	}
	if rl.IsKeyPressed(rl.KeyF) {
		w.setFast(!w.fast)
	}
	if rl.IsKeyPressed(rl.KeyS) {
		w.species.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyN) {
		w.network.Toggle()
	}
}

// setFast lifts the frame cap so ticks run as fast as drawing allows.
func (w *Window) setFast(fast bool) {
	w.fast = fast
	if fast {
		rl.SetTargetFPS(0)
	} else {
		rl.SetTargetFPS(w.tickRate)
	}
}

func (w *Window) drawWorld(f *game.Frame) {
	rl.DrawTexture(w.tex.sky, 0, 0, rl.White)

	for _, o := range f.Obstacles {
		rl.DrawTexture(w.tex.pipeTop, int32(o.X), int32(o.Top), rl.White)
		rl.DrawTexture(w.tex.pipe, int32(o.X), int32(o.Bottom), rl.White)
	}

	rl.DrawTexture(w.tex.base, int32(f.Ground.X1), int32(f.Ground.Y), rl.White)
	rl.DrawTexture(w.tex.base, int32(f.Ground.X2), int32(f.Ground.Y), rl.White)

	for _, b := range f.Birds {
		w.drawBird(b)
	}
}

// drawBird rotates the sprite about its center. Positive tilt is nose up.
func (w *Window) drawBird(b game.BirdView) {
	frame := b.Frame
	if frame < 0 || frame >= len(w.tex.bird) {
		frame = 0
	}
	tex := w.tex.bird[frame]
	bw, bh := float32(tex.Width), float32(tex.Height)

	tint := rl.White
	if w.opts.Tint != nil {
		tint = w.opts.Tint(b.Pilot)
	}

	dst := rl.Rectangle{X: float32(b.X) + bw/2, Y: float32(b.Y) + bh/2, Width: bw, Height: bh}
	rl.DrawTexturePro(tex, fullRect(tex), dst, rl.Vector2{X: bw / 2, Y: bh / 2}, float32(-b.Tilt), tint)
}
