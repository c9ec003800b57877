package renderer

import (
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drizzle/particles"
)

// TextureStore loads textures from files through raylib. An empty key
// yields a small white texture so the scene renders without assets.
type TextureStore struct {
	next     particles.TextureHandle
	textures map[particles.TextureHandle]rl.Texture2D
}

var _ particles.TextureProvider = (*TextureStore)(nil)

// NewTextureStore creates an empty store. Loading requires an open window.
func NewTextureStore() *TextureStore {
	return &TextureStore{textures: make(map[particles.TextureHandle]rl.Texture2D)}
}

// LoadTexture loads the texture at path key.
func (s *TextureStore) LoadTexture(key string) (particles.TextureHandle, error) {
	var tex rl.Texture2D
	if key == "" {
		img := rl.GenImageColor(4, 4, rl.White)
		tex = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
	} else {
		if _, err := os.Stat(key); err != nil {
			return 0, fmt.Errorf("texture file: %w", err)
		}
		tex = rl.LoadTexture(key)
	}
	if tex.ID == 0 {
		return 0, fmt.Errorf("raylib could not load texture %q", key)
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)

	s.next++
	s.textures[s.next] = tex
	return s.next, nil
}

// ReleaseTexture unloads a texture.
func (s *TextureStore) ReleaseTexture(h particles.TextureHandle) {
	tex, ok := s.textures[h]
	if !ok {
		return
	}
	rl.UnloadTexture(tex)
	delete(s.textures, h)
}

// Texture returns the raylib texture for a handle.
func (s *TextureStore) Texture(h particles.TextureHandle) rl.Texture2D {
	return s.textures[h]
}
