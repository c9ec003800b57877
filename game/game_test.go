package game

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/drizzle/audio"
	"github.com/pthm-cable/drizzle/config"
	"github.com/pthm-cable/drizzle/particles"
	"github.com/pthm-cable/drizzle/telemetry"
	"github.com/pthm-cable/drizzle/termview"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	os.Exit(m.Run())
}

// testOptions uses a step that divides the stats window exactly: 8 frames per window.
func testOptions() Options {
	opts := DefaultOptions()
	opts.DT = 0.125
	opts.StatsWindowSec = 1.0
	return opts
}

func newHeadlessGame(t *testing.T, opts Options) (*Game, *particles.HeadlessDevice) {
	t.Helper()
	dev := particles.NewHeadlessDevice()
	g, err := NewGameWithOptions(opts, dev, dev)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Unload() })
	return g, dev
}

func TestHeadlessRunWritesOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	opts := testOptions()
	opts.OutputDir = dir
	opts.MaxFrames = 40
	g, _ := newHeadlessGame(t, opts)

	for !g.Done() {
		require.NoError(t, g.UpdateHeadless())
	}
	require.NoError(t, g.Unload())
	assert.Equal(t, int64(40), g.Frame())
	assert.InDelta(t, 5.0, g.SimTime(), 1e-9)

	f, err := os.Open(filepath.Join(dir, "frames.csv"))
	require.NoError(t, err)
	defer f.Close()
	var rows []telemetry.WindowStats
	require.NoError(t, gocsv.UnmarshalFile(f, &rows))
	require.Len(t, rows, 5)
	assert.Equal(t, int64(8), rows[0].WindowEndFrame)
	assert.Equal(t, int64(40), rows[4].WindowEndFrame)
	for _, r := range rows {
		assert.Equal(t, 1000, r.Rain, "rain list never shrinks")
	}

	data, err := os.ReadFile(filepath.Join(dir, "run.yaml"))
	require.NoError(t, err)
	var info telemetry.RunInfo
	require.NoError(t, yaml.Unmarshal(data, &info))
	assert.Equal(t, int64(40), info.Frames)
	assert.Equal(t, ModeHeadless, info.Mode)
	assert.Equal(t, rows[0].RunID, info.RunID)

	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
	assert.FileExists(t, filepath.Join(dir, "perf.csv"))
}

func TestStatsCallbackPerWindow(t *testing.T) {
	g, _ := newHeadlessGame(t, testOptions())

	var windows []telemetry.WindowStats
	g.SetStatsCallback(func(s telemetry.WindowStats) { windows = append(windows, s) })

	for i := 0; i < 24; i++ {
		require.NoError(t, g.UpdateHeadless())
	}
	require.Len(t, windows, 3)
	assert.Equal(t, int64(8), windows[1].WindowStartFrame)
	assert.Greater(t, windows[2].FireSpawned, 0)
}

func TestUploadFailuresAreTolerated(t *testing.T) {
	g, dev := newHeadlessGame(t, testOptions())
	dev.FailUploads = true

	for i := 0; i < 3; i++ {
		require.NoError(t, g.UpdateHeadless())
	}
	assert.Equal(t, 3, g.UploadFailures())
	assert.Equal(t, int64(3), g.Frame(), "simulation advances without an upload")

	err := g.Step(g.DT())
	assert.ErrorIs(t, err, particles.ErrUploadFailed)
}

func TestValidateEveryFrame(t *testing.T) {
	opts := testOptions()
	opts.ValidateEvery = 1
	g, _ := newHeadlessGame(t, opts)

	g.BurstAtAnchor()
	for i := 0; i < 50; i++ {
		require.NoError(t, g.UpdateHeadless())
	}
}

func TestPauseStopsSteps(t *testing.T) {
	g, _ := newHeadlessGame(t, testOptions())

	require.NoError(t, g.UpdateHeadless())
	assert.True(t, g.TogglePause())
	require.NoError(t, g.UpdateHeadless())
	require.NoError(t, g.UpdateFrame(0.016))
	assert.Equal(t, int64(1), g.Frame())

	assert.False(t, g.TogglePause())
	require.NoError(t, g.UpdateFrame(0.016))
	assert.Equal(t, int64(2), g.Frame())
}

func TestBurstAtAnchor(t *testing.T) {
	g, _ := newHeadlessGame(t, testOptions())

	n := g.BurstAtAnchor()
	assert.Equal(t, config.Cfg().Ring.BurstParticles, n)
	assert.Equal(t, n, g.Manager().Pool().Len(particles.ListGeneral))
}

func TestTuningAndReset(t *testing.T) {
	g, _ := newHeadlessGame(t, testOptions())

	g.SetFireRate(0)
	g.SetGravity(-9.8)
	require.NoError(t, g.UpdateHeadless())
	assert.Zero(t, g.Manager().LastEvents().FireSpawned)
	assert.Equal(t, float32(-9.8), g.Manager().Settings().Gravity)

	g.ResetTuning()
	s := g.Manager().Settings()
	assert.Equal(t, float32(150), s.Fire.ParticlesPerSecond)
	assert.Equal(t, float32(-3.5), s.Gravity)
}

func TestAmbienceFollowsScene(t *testing.T) {
	g, _ := newHeadlessGame(t, testOptions())
	g.Lightning() // no ambience attached

	amb := audio.New(config.Cfg().AudioSettings(), 1)
	g.SetAmbience(amb)
	for i := 0; i < 16; i++ {
		require.NoError(t, g.UpdateHeadless())
	}

	lv := amb.Levels()
	assert.Equal(t, 1.0, lv.Rain, "every drop is live")
	assert.Greater(t, lv.Fire, 0.0)
	assert.Less(t, lv.Fire, 1.0, "fire is still building toward its steady state")
	g.Lightning()
}

func TestUnloadTwice(t *testing.T) {
	g, dev := newHeadlessGame(t, testOptions())
	require.NoError(t, g.Unload())
	require.NoError(t, g.Unload())
	assert.Zero(t, dev.LiveBuffers())
}

func TestClampDT(t *testing.T) {
	assert.Equal(t, float32(0), clampDT(-1))
	assert.Equal(t, float32(0.016), clampDT(0.016))
	assert.Equal(t, float32(maxFrameDT), clampDT(2))
}

func TestGroundHit(t *testing.T) {
	tests := []struct {
		name   string
		origin mgl32.Vec3
		dir    mgl32.Vec3
		want   mgl32.Vec3
		ok     bool
	}{
		{"straight down", mgl32.Vec3{2, 10, 3}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{2, 0, 3}, true},
		{"slanted", mgl32.Vec3{0, 4, 0}, mgl32.Vec3{1, -2, 0}, mgl32.Vec3{2, 0, 0}, true},
		{"parallel", mgl32.Vec3{0, 4, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, false},
		{"away", mgl32.Vec3{0, 4, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GroundHit(tt.origin, tt.dir)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, got.ApproxEqual(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func newTerminal(t *testing.T, opts Options) (*Game, *termview.View, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	view := termview.NewView()
	opts.Mode = ModeTerminal
	g, err := NewGameWithOptions(opts, view, view)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Unload() })
	return g, view, screen
}

func TestRunTerminalStopsAtFrameLimit(t *testing.T) {
	opts := testOptions()
	opts.DT = 0.01
	opts.MaxFrames = 5
	g, view, screen := newTerminal(t, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, g.RunTerminal(ctx, screen, view))
	assert.Equal(t, int64(5), g.Frame())

	r, _, _, _ := screen.GetContent(1, 0)
	assert.Equal(t, 'd', r, "status row drawn")
	assert.Greater(t, g.PerfStats().PhaseAvg[telemetry.PhaseDraw], time.Duration(0))
}

func TestRunTerminalQuitsOnKey(t *testing.T) {
	g, view, screen := newTerminal(t, testOptions())
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, g.RunTerminal(ctx, screen, view))
	assert.Less(t, g.Frame(), int64(80), "quit before the deadline")
}

func TestSaveSnapshot(t *testing.T) {
	opts := testOptions()
	opts.SnapshotDir = t.TempDir()
	g, _ := newHeadlessGame(t, opts)
	for i := 0; i < 4; i++ {
		require.NoError(t, g.UpdateHeadless())
	}

	path, err := g.SaveSnapshot("manual")
	require.NoError(t, err)
	snap, err := telemetry.LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), snap.Frame)
	assert.Len(t, snap.Lists["rain"], 1000)
	assert.Len(t, snap.Lists["fire"], g.Manager().Pool().Len(particles.ListFire))
}

func TestSaveSnapshotNeedsDirectory(t *testing.T) {
	g, _ := newHeadlessGame(t, testOptions())
	_, err := g.SaveSnapshot("manual")
	assert.Error(t, err)
}

func TestPoolExhaustionBookmark(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions()
	opts.OutputDir = dir
	g, _ := newHeadlessGame(t, opts)

	var bookmarks []telemetry.Bookmark
	g.SetBookmarkCallback(func(b telemetry.Bookmark) { bookmarks = append(bookmarks, b) })

	capacity := g.Manager().Pool().Capacity()
	spawned := g.Burst(g.Manager().Settings().Fire.Anchor, capacity)
	assert.Less(t, spawned, capacity)

	for i := 0; i < 8; i++ {
		require.NoError(t, g.UpdateHeadless())
	}
	require.NotEmpty(t, bookmarks)
	assert.Equal(t, telemetry.BookmarkPoolExhausted, bookmarks[0].Type)
	assert.Equal(t, int64(8), bookmarks[0].Frame)

	require.NoError(t, g.Unload())
	data, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), string(telemetry.BookmarkPoolExhausted))
}
