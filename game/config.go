package game

import "time"

// Run modes, recorded in run.yaml.
const (
	ModeHeadless = "headless"
	ModeWindow   = "window"
	ModeTerminal = "terminal"
)

// maxFrameDT caps variable frame times so a stalled window does not
// launch particles through the ground in one step.
const maxFrameDT = 0.1

// thunderRoll is the length of the thunder that follows a lightning flash.
const thunderRoll = 2500 * time.Millisecond

// Options holds configuration for game initialization.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string
	SnapshotDir    string // pool snapshots (empty = OutputDir)
	Mode           string
	DT             float32 // fixed step for headless and terminal runs (0 = use config)
	ValidateEvery  int     // check pool invariants every N frames (0 = use config)
	MaxFrames      int64   // 0 = unlimited
}

// DefaultOptions returns options for a headless run with config defaults.
func DefaultOptions() Options {
	return Options{Seed: 1, Mode: ModeHeadless}
}
