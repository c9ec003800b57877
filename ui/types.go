// Package ui draws the windowed-mode HUD, the performance panel and the
// live tuning controls.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds panel styling and the colour used for each pool list.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color

	Rain   rl.Color
	Fire   rl.Color
	Splash rl.Color
	Free   rl.Color
	Warn   rl.Color // free bar once the pool runs low

	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// lowFree is the free fraction below which the free bar turns Warn.
const lowFree = 0.1

// DefaultTheme returns the night-scene theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 14, G: 18, B: 28, A: 230},
		PanelBorder:    rl.Color{R: 50, G: 60, B: 85, A: 255},
		SectionHeader:  rl.Color{R: 170, G: 190, B: 255, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 35, G: 38, B: 48, A: 255},
		Rain:           rl.Color{R: 120, G: 130, B: 255, A: 255},
		Fire:           rl.Color{R: 255, G: 140, B: 40, A: 255},
		Splash:         rl.Color{R: 160, G: 200, B: 255, A: 255},
		Free:           rl.Color{R: 90, G: 180, B: 110, A: 255},
		Warn:           rl.Color{R: 220, G: 70, B: 60, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     56,
		BarHeight:      10,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
