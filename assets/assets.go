// Package assets holds the embedded sprite sheet and the generated sky.
package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/ojrac/opensimplex-go"
)

//go:embed sprites/*.png
var spriteFS embed.FS

// BirdFrames is the number of wing positions in the bird animation.
const BirdFrames = 3

// Sprites holds every decoded image the game draws or masks.
type Sprites struct {
	Bird       [BirdFrames]*image.NRGBA
	Pipe       *image.NRGBA
	Base       *image.NRGBA
	Background *image.NRGBA
}

// Load decodes the embedded sprites and generates a sky of the given size.
func Load(width, height int, seed int64) (*Sprites, error) {
	s := &Sprites{}
	for i := range s.Bird {
		img, err := decode(fmt.Sprintf("sprites/bird%d.png", i+1))
		if err != nil {
			return nil, err
		}
		s.Bird[i] = img
	}

	var err error
	if s.Pipe, err = decode("sprites/pipe.png"); err != nil {
		return nil, err
	}
	if s.Base, err = decode("sprites/base.png"); err != nil {
		return nil, err
	}
	s.Background = Sky(width, height, seed)
	return s, nil
}

func decode(name string) (*image.NRGBA, error) {
	data, err := spriteFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return toNRGBA(img), nil
}

// toNRGBA normalizes any decoded image to NRGBA with a zero origin.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// FlipVertical returns a copy of img mirrored top to bottom.
func FlipVertical(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	h := b.Dy()
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		dst := out.Pix[(h-1-y)*out.Stride : (h-1-y)*out.Stride+b.Dx()*4]
		copy(dst, src)
	}
	return out
}

// Sky colors
var (
	skyTop     = color.NRGBA{R: 78, G: 192, B: 202, A: 255}
	skyHorizon = color.NRGBA{R: 196, G: 236, B: 240, A: 255}
	cloudWhite = color.NRGBA{R: 250, G: 252, B: 252, A: 255}
)

// Sky renders a vertical gradient with soft simplex-noise clouds.
// The same seed always produces the same image.
func Sky(width, height int, seed int64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return img
	}
	noise := opensimplex.NewNormalized(seed)

	const (
		cloudScale = 1.0 / 140.0
		cloudBand  = 0.55 // clouds fade out below this fraction of the height
	)

	for y := 0; y < height; y++ {
		t := float64(y) / float64(height)
		base := lerpColor(skyTop, skyHorizon, t)
		fade := 1 - smoothstep(cloudBand*0.6, cloudBand, t)

		for x := 0; x < width; x++ {
			// Two octaves, stretched horizontally
			n := noise.Eval2(float64(x)*cloudScale*0.5, float64(y)*cloudScale)*0.7 +
				noise.Eval2(float64(x)*cloudScale*1.5, float64(y)*cloudScale*3)*0.3
			cover := smoothstep(0.55, 0.8, n) * fade
			img.SetNRGBA(x, y, lerpColor(base, cloudWhite, cover))
		}
	}
	return img
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := math.Max(0, math.Min(1, (x-edge0)/(edge1-edge0)))
	return t * t * (3 - 2*t)
}
