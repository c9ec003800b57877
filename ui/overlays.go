package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID names a toggleable panel or scene aid.
type OverlayID string

const (
	OverlayHUD     OverlayID = "hud"
	OverlayPerf    OverlayID = "perf"
	OverlayTuning  OverlayID = "tuning"
	OverlayRainBox OverlayID = "rain_box"
	OverlayPools   OverlayID = "pools"
)

// Overlay is one toggle with its key binding.
type Overlay struct {
	ID       OverlayID
	Name     string
	Key      int32
	KeyLabel string
}

// OverlayRegistry holds the overlays in legend order and which are on.
type OverlayRegistry struct {
	overlays []Overlay
	on       map[OverlayID]bool
}

// NewOverlayRegistry returns the scene overlays with the HUD and pools
// panel switched on.
func NewOverlayRegistry() *OverlayRegistry {
	r := &OverlayRegistry{
		overlays: []Overlay{
			{OverlayHUD, "HUD", rl.KeyH, "H"},
			{OverlayPools, "pools", rl.KeyO, "O"},
			{OverlayPerf, "phases", rl.KeyF3, "F3"},
			{OverlayTuning, "tuning", rl.KeyT, "T"},
			{OverlayRainBox, "rain box", rl.KeyB, "B"},
		},
		on: make(map[OverlayID]bool),
	}
	r.on[OverlayHUD] = true
	r.on[OverlayPools] = true
	return r
}

// IsEnabled reports whether id is switched on.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool { return r.on[id] }

// All returns the overlays in legend order.
func (r *OverlayRegistry) All() []Overlay { return r.overlays }

// HandleKeyPress flips the overlay bound to key. It returns the overlay,
// its new state and whether key was bound at all.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, o := range r.overlays {
		if o.Key == key {
			r.on[o.ID] = !r.on[o.ID]
			return o.ID, r.on[o.ID], true
		}
	}
	return "", false, false
}
