package systems

import (
	"image"
	"math"

	"github.com/pthm-cable/flappy/assets"
	"github.com/pthm-cable/flappy/config"
)

// GapSource draws gap heights. *rand.Rand satisfies it.
type GapSource interface {
	Intn(n int) int
}

// PipeSprite is the shared geometry of every obstacle: the sprite size and
// the masks of the upright bottom pipe and the flipped top pipe.
type PipeSprite struct {
	Width, Height int
	Top, Bottom   *Mask
}

// NewPipeSprite builds both pipe masks from the upright pipe image.
func NewPipeSprite(img *image.NRGBA) *PipeSprite {
	b := img.Bounds()
	return &PipeSprite{
		Width:  b.Dx(),
		Height: b.Dy(),
		Top:    NewMask(assets.FlipVertical(img)),
		Bottom: NewMask(img),
	}
}

// Obstacle is a top/bottom pipe pair with a fixed vertical gap.
type Obstacle struct {
	X      float64
	Height float64 // upper edge of the gap
	Top    float64 // y of the flipped top sprite
	Bottom float64 // y of the bottom sprite, lower edge of the gap
	Passed bool

	sprite *PipeSprite
}

// NewObstacle creates an obstacle at x with a randomly drawn gap.
func NewObstacle(x float64, sprite *PipeSprite, p *config.ObstacleConfig, gaps GapSource) *Obstacle {
	o := &Obstacle{X: x, sprite: sprite}
	o.regenerateGap(p, gaps)
	return o
}

// regenerateGap draws the gap height once at construction.
func (o *Obstacle) regenerateGap(p *config.ObstacleConfig, gaps GapSource) {
	o.Height = float64(p.MinHeight + gaps.Intn(p.MaxHeight-p.MinHeight))
	o.Top = o.Height - float64(o.sprite.Height)
	o.Bottom = o.Height + p.Gap
}

// Width returns the pipe sprite width.
func (o *Obstacle) Width() float64 {
	return float64(o.sprite.Width)
}

// Advance scrolls the obstacle left.
func (o *Obstacle) Advance(velocity float64) {
	o.X -= velocity
}

// OffScreen reports whether the obstacle has fully left the screen.
func (o *Obstacle) OffScreen() bool {
	return o.X+o.Width() < 0
}

// Collides reports whether a bird mask at (birdX, birdY) overlaps either pipe.
func (o *Obstacle) Collides(bird *Mask, birdX, birdY float64) bool {
	dx := int(math.Round(o.X - birdX))
	by := math.Round(birdY)
	topDY := int(o.Top - by)
	bottomDY := int(o.Bottom - by)

	return bird.Overlap(o.sprite.Bottom, dx, bottomDY) || bird.Overlap(o.sprite.Top, dx, topDY)
}
