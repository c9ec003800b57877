package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// BackgroundRenderer fills the screen with a vertical night-sky gradient
// that brightens briefly when lightning is triggered.
type BackgroundRenderer struct {
	screenW, screenH int32
	top, bottom      rl.Color

	flash float32 // remaining flash intensity in [0, 1]
}

// NewBackgroundRenderer creates a background renderer.
func NewBackgroundRenderer(screenW, screenH int32) *BackgroundRenderer {
	return &BackgroundRenderer{
		screenW: screenW,
		screenH: screenH,
		top:     rl.NewColor(8, 10, 22, 255),
		bottom:  rl.NewColor(30, 34, 48, 255),
	}
}

// Resize updates the screen size.
func (b *BackgroundRenderer) Resize(screenW, screenH int32) {
	b.screenW, b.screenH = screenW, screenH
}

// Flash starts a lightning flash.
func (b *BackgroundRenderer) Flash() {
	b.flash = 1
}

// Draw renders the gradient and decays the flash by dt seconds.
func (b *BackgroundRenderer) Draw(dt float32) {
	top, bottom := b.top, b.bottom
	if b.flash > 0 {
		top = lerpColor(top, rl.RayWhite, b.flash*0.6)
		bottom = lerpColor(bottom, rl.RayWhite, b.flash*0.4)
		b.flash -= dt * 4
	}
	rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, top, bottom)
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	if t > 1 {
		t = 1
	}
	mix := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t)
	}
	return rl.NewColor(mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255)
}
