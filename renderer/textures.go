// Package renderer draws episode frames in a raylib window.
package renderer

import (
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/assets"
)

// textures holds the GPU copies of the sprite sheet.
// Must be created after the raylib window is open.
type textures struct {
	bird    [assets.BirdFrames]rl.Texture2D
	pipe    rl.Texture2D
	pipeTop rl.Texture2D
	base    rl.Texture2D
	sky     rl.Texture2D
}

func loadTextures(s *assets.Sprites) *textures {
	t := &textures{}
	for i, img := range s.Bird {
		t.bird[i] = upload(img)
	}
	t.pipe = upload(s.Pipe)
	t.pipeTop = upload(assets.FlipVertical(s.Pipe))
	t.base = upload(s.Base)
	t.sky = upload(s.Background)
	return t
}

func upload(img *image.NRGBA) rl.Texture2D {
	rlImg := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(rlImg)
	rl.UnloadImage(rlImg)
	return tex
}

func (t *textures) unload() {
	for _, tex := range t.bird {
		rl.UnloadTexture(tex)
	}
	rl.UnloadTexture(t.pipe)
	rl.UnloadTexture(t.pipeTop)
	rl.UnloadTexture(t.base)
	rl.UnloadTexture(t.sky)
}

// fullRect returns the source rectangle covering a whole texture.
func fullRect(tex rl.Texture2D) rl.Rectangle {
	return rl.Rectangle{Width: float32(tex.Width), Height: float32(tex.Height)}
}
