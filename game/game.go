// Package game runs the particle scene: it owns the particle manager and
// the telemetry pipeline and advances them once per frame.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drizzle/audio"
	"github.com/pthm-cable/drizzle/config"
	"github.com/pthm-cable/drizzle/particles"
	"github.com/pthm-cable/drizzle/telemetry"
)

// Game holds the complete scene state.
type Game struct {
	opts    Options
	manager *particles.Manager

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
	bookmarkCallback func(telemetry.Bookmark)

	ambience *audio.Ambience

	// State
	frame          int64
	simTime        float64
	dt             float32
	paused         bool
	frameOpen      bool
	uploadFailures int
	validateEvery  int
	startedAt      time.Time
	unloaded       bool
}

// NewGameWithOptions creates a game drawing through device and loading
// textures from textures. config.Init must have been called.
func NewGameWithOptions(opts Options, device particles.Device, textures particles.TextureProvider) (*Game, error) {
	cfg := config.Cfg()

	if opts.Mode == "" {
		opts.Mode = ModeHeadless
	}
	dt := opts.DT
	if dt <= 0 {
		dt = cfg.Derived.DT32
	}
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	validateEvery := opts.ValidateEvery
	if validateEvery <= 0 {
		validateEvery = cfg.Telemetry.ValidateEvery
	}

	g := &Game{
		opts:             opts,
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:        telemetry.NewCollector(statsWindow, dt),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		dt:               dt,
		validateEvery:    validateEvery,
		startedAt:        time.Now(),
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g.manager = particles.NewManager(cfg.Particles(), particles.NewRand(opts.Seed))
	g.manager.SetPhaseTimer(g.perfCollector)
	if err := g.manager.Initialize(device, textures, cfg.TextureKeys()); err != nil {
		om.Close()
		return nil, fmt.Errorf("initializing particles: %w", err)
	}

	slog.Info("scene initialized",
		"mode", opts.Mode,
		"seed", opts.Seed,
		"max_particles", cfg.Pool.MaxParticles,
		"rain", g.manager.RainInstanceCount(),
		"run_id", om.RunID(),
	)
	return g, nil
}

// Step advances the scene by dt seconds. Upload failures leave the
// simulation advanced and are returned wrapping particles.ErrUploadFailed.
func (g *Game) Step(dt float32) error {
	frameErr, validateErr := g.step(dt)
	return errors.Join(frameErr, validateErr)
}

func (g *Game) step(dt float32) (frameErr, validateErr error) {
	g.perfCollector.StartFrame()

	frameErr = g.manager.Frame(dt)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.frame++
	g.simTime += float64(dt)
	g.collector.Record(g.manager.LastEvents(), g.manager.Counts())
	g.ambience.Update(g.manager.Counts(), g.manager.LastEvents(),
		g.manager.RainInstanceCount(), g.manager.Settings().Fire.SteadyCount(), dt)
	g.flushTelemetry()

	if g.validateEvery > 0 && g.frame%int64(g.validateEvery) == 0 {
		if err := g.manager.Pool().Validate(); err != nil {
			validateErr = fmt.Errorf("pool invariant broken at frame %d: %w", g.frame, err)
			g.snapshotOnFailure(err)
		}
	}
	if g.opts.Mode == ModeHeadless {
		g.perfCollector.EndFrame()
	} else {
		g.frameOpen = true
	}

	return frameErr, validateErr
}

// UpdateHeadless runs one fixed step. Upload failures are logged and
// counted; any other error is returned.
func (g *Game) UpdateHeadless() error {
	if g.paused {
		return nil
	}
	return g.tolerateUpload(g.step(g.dt))
}

// tolerateUpload logs and counts upload failures; pool corruption and
// other errors pass through.
func (g *Game) tolerateUpload(frameErr, validateErr error) error {
	if frameErr != nil && errors.Is(frameErr, particles.ErrUploadFailed) {
		g.uploadFailures++
		slog.Warn("instance upload failed", "frame", g.frame, "error", frameErr)
		frameErr = nil
	}
	return errors.Join(frameErr, validateErr)
}

// UpdateFrame runs one step of variable length, as measured by a window.
func (g *Game) UpdateFrame(frameTime float32) error {
	if g.paused {
		return nil
	}
	return g.tolerateUpload(g.step(clampDT(frameTime)))
}

// Done reports whether the frame limit has been reached.
func (g *Game) Done() bool {
	return g.opts.MaxFrames > 0 && g.frame >= g.opts.MaxFrames
}

// Burst spawns a ring of n splash particles at center.
func (g *Game) Burst(center mgl32.Vec3, n int) int {
	return g.manager.EmitRing(center, n)
}

// SetFireRate changes the fire emission rate.
func (g *Game) SetFireRate(perSecond float32) { g.manager.SetFireRate(perSecond) }

// SetGravity changes gravity.
func (g *Game) SetGravity(gravity float32) { g.manager.SetGravity(gravity) }

// ResetTuning restores fire rate and gravity from config.
func (g *Game) ResetTuning() {
	s := config.Cfg().Particles()
	g.manager.SetFireRate(s.Fire.ParticlesPerSecond)
	g.manager.SetGravity(s.Gravity)
}

// Lightning rolls thunder through the attached ambience, if any. Front
// ends flash the sky themselves.
func (g *Game) Lightning() {
	g.ambience.Thunder(thunderRoll)
}

// SetAmbience attaches a soundscape that follows the scene every step.
func (g *Game) SetAmbience(a *audio.Ambience) { g.ambience = a }

// Ambience returns the attached soundscape, or nil.
func (g *Game) Ambience() *audio.Ambience { return g.ambience }

// TogglePause pauses or resumes the simulation.
func (g *Game) TogglePause() bool {
	g.paused = !g.paused
	return g.paused
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool { return g.paused }

// Manager exposes the particle manager.
func (g *Game) Manager() *particles.Manager { return g.manager }

// Seed returns the scene's random seed.
func (g *Game) Seed() int64 { return g.opts.Seed }

// Frame returns the number of steps run.
func (g *Game) Frame() int64 { return g.frame }

// SimTime returns the simulated seconds elapsed.
func (g *Game) SimTime() float64 { return g.simTime }

// DT returns the fixed step.
func (g *Game) DT() float32 { return g.dt }

// UploadFailures returns how many frames failed to upload.
func (g *Game) UploadFailures() int { return g.uploadFailures }

// PerfStats returns frame timing over the perf window.
func (g *Game) PerfStats() telemetry.PerfStats { return g.perfCollector.Stats() }

// BeginDraw starts timing the draw phase of the current frame. In
// windowed and terminal modes a stepped frame stays open until EndDraw.
func (g *Game) BeginDraw() {
	if g.frameOpen {
		g.perfCollector.StartPhase(telemetry.PhaseDraw)
	}
}

// EndDraw closes the frame and records a present.
func (g *Game) EndDraw() {
	if g.frameOpen {
		g.perfCollector.EndFrame()
		g.frameOpen = false
	}
	g.perfCollector.RecordPresent()
}

// SetStatsCallback installs a receiver for every flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) { g.statsCallback = fn }

// SetBookmarkCallback installs a receiver for detected bookmarks.
func (g *Game) SetBookmarkCallback(fn func(telemetry.Bookmark)) { g.bookmarkCallback = fn }

// Unload releases particle resources and finalizes output. Safe to call twice.
func (g *Game) Unload() error {
	if g.unloaded {
		return nil
	}
	g.unloaded = true

	g.manager.Shutdown()

	err := g.outputManager.WriteRunInfo(telemetry.RunInfo{
		Seed:       g.opts.Seed,
		Mode:       g.opts.Mode,
		StartedAt:  g.startedAt,
		FinishedAt: time.Now(),
		Frames:     g.frame,
	})
	return errors.Join(err, g.outputManager.Close())
}

// SaveSnapshot writes the pool's active lists to the snapshot directory.
func (g *Game) SaveSnapshot(reason string) (string, error) {
	dir := g.snapshotDir()
	if dir == "" {
		return "", errors.New("no snapshot or output directory configured")
	}
	snap := telemetry.NewSnapshot(g.manager.Pool(), g.frame, g.opts.Seed, reason)
	snap.RunID = g.outputManager.RunID()
	path, err := telemetry.SaveSnapshot(snap, dir)
	if err != nil {
		return "", err
	}
	slog.Info("snapshot saved", "path", path, "frame", g.frame)
	return path, nil
}

func (g *Game) snapshotDir() string {
	if g.opts.SnapshotDir != "" {
		return g.opts.SnapshotDir
	}
	return g.opts.OutputDir
}

// snapshotOnFailure records the pool after a failed invariant check.
func (g *Game) snapshotOnFailure(cause error) {
	dir := g.snapshotDir()
	if dir == "" {
		return
	}
	snap := telemetry.NewSnapshot(g.manager.Pool(), g.frame, g.opts.Seed, "invariant")
	snap.RunID = g.outputManager.RunID()
	snap.Error = cause.Error()
	if path, err := telemetry.SaveSnapshot(snap, dir); err != nil {
		slog.Error("failed to save snapshot", "error", err)
	} else {
		slog.Error("pool invariant broken", "frame", g.frame, "error", cause, "snapshot", path)
	}
}

// clampDT bounds a measured frame time to (0, maxFrameDT].
func clampDT(dt float32) float32 {
	if dt <= 0 {
		return 0
	}
	if dt > maxFrameDT {
		return maxFrameDT
	}
	return dt
}
