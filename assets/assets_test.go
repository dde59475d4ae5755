package assets

import (
	"bytes"
	"image"
	"testing"
)

func TestLoadSprites(t *testing.T) {
	s, err := Load(550, 800, 1)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	for i, b := range s.Bird {
		if b == nil {
			t.Fatalf("bird frame %d is nil", i)
		}
		if got := b.Bounds().Size(); got != (image.Point{X: 68, Y: 48}) {
			t.Errorf("bird frame %d size = %v, want 68x48", i, got)
		}
	}
	if got := s.Pipe.Bounds().Size(); got != (image.Point{X: 104, Y: 640}) {
		t.Errorf("pipe size = %v, want 104x640", got)
	}
	if s.Base.Bounds().Dx() < 550 {
		t.Errorf("base width %d narrower than the screen", s.Base.Bounds().Dx())
	}
	if got := s.Background.Bounds().Size(); got != (image.Point{X: 550, Y: 800}) {
		t.Errorf("background size = %v, want 550x800", got)
	}
}

func TestBirdFramesHaveTransparentCorners(t *testing.T) {
	s, err := Load(1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range s.Bird {
		if a := b.NRGBAAt(0, 0).A; a != 0 {
			t.Errorf("frame %d corner alpha = %d, want 0", i, a)
		}
		if a := b.NRGBAAt(32, 24).A; a == 0 {
			t.Errorf("frame %d body center is transparent", i)
		}
	}
}

func TestFlipVertical(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.Pix[3] = 255 // (0,0) opaque

	flipped := FlipVertical(img)
	if flipped.NRGBAAt(0, 2).A != 255 {
		t.Error("expected (0,0) to move to (0,2)")
	}
	if flipped.NRGBAAt(0, 0).A != 0 {
		t.Error("expected (0,0) to be transparent after flip")
	}
	if img.NRGBAAt(0, 0).A != 255 {
		t.Error("FlipVertical modified its input")
	}
}

func TestSkyDeterministic(t *testing.T) {
	a := Sky(64, 64, 7)
	b := Sky(64, 64, 7)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("same seed produced different skies")
	}
	if a.NRGBAAt(10, 63).A != 255 {
		t.Error("sky should be fully opaque")
	}
}
