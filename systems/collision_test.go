package systems

import (
	"image"
	"testing"

	"github.com/pthm-cable/flappy/assets"
	"github.com/pthm-cable/flappy/config"
)

// solidRect returns a w x h image with an opaque rectangle at r.
func solidRect(w, h int, r image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pix[y*img.Stride+x*4+3] = 255
		}
	}
	return img
}

func TestNewMask(t *testing.T) {
	img := solidRect(70, 4, image.Rect(60, 1, 68, 3))
	img.Pix[0*img.Stride+0*4+3] = 100 // below threshold

	m := NewMask(img)
	if m.Count() != 16 {
		t.Errorf("Count = %d, want 16", m.Count())
	}
	if m.At(0, 0) {
		t.Error("translucent pixel should not be solid")
	}
	if !m.At(63, 1) || !m.At(64, 2) {
		t.Error("pixels across the word boundary should be solid")
	}
	if m.At(-1, 0) || m.At(70, 0) {
		t.Error("out of range should be empty")
	}
}

func TestMaskOverlap(t *testing.T) {
	a := NewMask(solidRect(10, 10, image.Rect(0, 0, 10, 10)))
	dot := NewMask(solidRect(3, 3, image.Rect(2, 2, 3, 3)))
	wide := NewMask(solidRect(130, 2, image.Rect(125, 0, 130, 2)))

	tests := []struct {
		name   string
		a, b   *Mask
		dx, dy int
		want   bool
	}{
		{"same origin", a, a, 0, 0, true},
		{"touching edge outside", a, a, 10, 0, false},
		{"one pixel overlap", a, a, 9, 9, true},
		{"negative offset", a, a, -9, -9, true},
		{"far away", a, a, 50, 50, false},
		{"sparse other inside", a, dot, 4, 4, true},
		{"sparse other pixel outside", a, dot, 8, 8, false},
		{"wide other shifted across words", a, wide, -120, 0, true},
		{"wide other solid part outside", a, wide, -100, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlap(tt.b, tt.dx, tt.dy); got != tt.want {
				t.Errorf("Overlap(%d,%d) = %v, want %v", tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

// fixedGap always draws the same offset into the height range.
type fixedGap int

func (f fixedGap) Intn(int) int { return int(f) }

func loadShapes(t *testing.T) (*PipeSprite, [assets.BirdFrames]*Mask) {
	t.Helper()
	s, err := assets.Load(1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	var birds [assets.BirdFrames]*Mask
	for i, img := range s.Bird {
		birds[i] = NewMask(img)
	}
	return NewPipeSprite(s.Pipe), birds
}

func TestObstacleGeometry(t *testing.T) {
	pipe, _ := loadShapes(t)
	p := &config.Default().Obstacle

	o := NewObstacle(600, pipe, p, fixedGap(150))
	if o.Height != 200 {
		t.Errorf("Height = %v, want 200", o.Height)
	}
	if o.Top != 200-float64(pipe.Height) {
		t.Errorf("Top = %v, want %v", o.Top, 200-float64(pipe.Height))
	}
	if o.Bottom != 400 {
		t.Errorf("Bottom = %v, want 400", o.Bottom)
	}
	if o.Passed {
		t.Error("new obstacle should not be passed")
	}
}

func TestObstacleGapNeverChanges(t *testing.T) {
	pipe, _ := loadShapes(t)
	p := &config.Default().Obstacle
	o := NewObstacle(600, pipe, p, fixedGap(10))
	height, top, bottom := o.Height, o.Top, o.Bottom

	for !o.OffScreen() {
		o.Advance(5)
		if o.Height != height || o.Top != top || o.Bottom != bottom {
			t.Fatalf("gap changed at x=%v", o.X)
		}
	}
	if o.X != 600-5*141 {
		t.Errorf("left the screen at x=%v, want %v", o.X, 600-5*141)
	}
}

func TestObstacleHeightRange(t *testing.T) {
	pipe, _ := loadShapes(t)
	p := &config.Default().Obstacle

	lo := NewObstacle(0, pipe, p, fixedGap(0))
	hi := NewObstacle(0, pipe, p, fixedGap(p.MaxHeight-p.MinHeight-1))
	if lo.Height != 50 || hi.Height != 449 {
		t.Errorf("height range = [%v, %v], want [50, 449]", lo.Height, hi.Height)
	}
}

func TestObstacleCollides(t *testing.T) {
	pipe, birds := loadShapes(t)
	p := &config.Default().Obstacle
	bird := birds[0]

	tests := []struct {
		name  string
		x     float64
		gap   int // offset from MinHeight
		birdY float64
		want  bool
	}{
		{"inside the gap", 240, 250, 350, false},
		{"into the bottom pipe", 240, 0, 350, true},
		{"into the top pipe", 240, 350, 350, true},
		{"pipe still ahead", 400, 0, 350, false},
		{"pipe behind", 100, 0, 350, false},
		{"grazing the lip", 240, 250, 458, true},
		{"just above the lip", 240, 250, 455.4, false},
		{"half rounds away from zero", 240, 250, 456.5, true},
		{"half below the lip", 240, 250, 455.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewObstacle(tt.x, pipe, p, fixedGap(tt.gap))
			if got := o.Collides(bird, 230, tt.birdY); got != tt.want {
				t.Errorf("Collides = %v, want %v (gap %v..%v)", got, tt.want, o.Height, o.Bottom)
			}
		})
	}
}

func TestGroundWraps(t *testing.T) {
	g := NewGround(730, 672)

	for i := 0; i < 1000; i++ {
		g.Advance(5)
		if g.X1+g.Width < 0 || g.X2+g.Width < 0 {
			t.Fatalf("tick %d: segment left unwrapped: %+v", i, *g)
		}
		// Segments stay one width apart so the floor has no seams
		gap := g.X2 - g.X1
		if gap != g.Width && gap != -g.Width {
			t.Fatalf("tick %d: segments %v apart, want %v", i, gap, g.Width)
		}
	}
}
