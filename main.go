package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/drizzle/audio"
	"github.com/pthm-cable/drizzle/config"
	"github.com/pthm-cable/drizzle/game"
	"github.com/pthm-cable/drizzle/particles"
	"github.com/pthm-cable/drizzle/renderer"
	"github.com/pthm-cable/drizzle/termview"
	"github.com/pthm-cable/drizzle/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	tui := flag.Bool("tui", false, "Render into the terminal")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for pool snapshots (empty = output dir)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	dt := flag.Float64("dt", 0, "Fixed step in seconds for headless and terminal runs (0 = use config)")
	validate := flag.Int("validate", 0, "Check pool invariants every N frames (0 = use config)")
	sound := flag.Bool("audio", false, "Play the rain and fire soundscape (also audio.enabled in config)")
	writeConfig := flag.String("write-config", "", "Write the effective config as YAML to this path and exit")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *writeConfig != "" {
		if err := cfg.WriteYAML(*writeConfig); err != nil {
			slog.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		return
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	mode := game.ModeWindow
	switch {
	case *headless:
		mode = game.ModeHeadless
	case *tui:
		mode = game.ModeTerminal
	}

	// Set up slog (JSON to stdout for structured logging). The terminal
	// viewer owns stdout, so it logs to a file in the output directory.
	var logOut io.Writer = os.Stdout
	if mode == game.ModeTerminal {
		logOut = io.Discard
		if *outputDir != "" {
			if err := os.MkdirAll(*outputDir, 0755); err == nil {
				if f, err := os.Create(filepath.Join(*outputDir, "drizzle.log")); err == nil {
					defer f.Close()
					logOut = f
				}
			}
		}
		game.SetLogWriter(logOut)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		SnapshotDir:    *snapshotDir,
		Mode:           mode,
		DT:             float32(*dt),
		ValidateEvery:  *validate,
		MaxFrames:      *maxFrames,
	}

	playAudio := *sound || cfg.Audio.Enabled

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch mode {
	case game.ModeHeadless:
		err = runHeadless(ctx, opts)
	case game.ModeTerminal:
		err = runTerminal(ctx, opts, playAudio)
	default:
		err = runWindow(opts, cfg, playAudio)
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		fmt.Fprintln(os.Stderr, "drizzle:", err)
		os.Exit(1)
	}
}

// runHeadless steps the scene on the CPU with no output device.
func runHeadless(ctx context.Context, opts game.Options) error {
	dev := particles.NewHeadlessDevice()
	g, err := game.NewGameWithOptions(opts, dev, dev)
	if err != nil {
		return err
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"dt", g.DT(),
		"max_frames", opts.MaxFrames,
	)

	for !g.Done() {
		if ctx.Err() != nil {
			slog.Info("interrupted", "frame", g.Frame())
			break
		}
		if err := g.UpdateHeadless(); err != nil {
			return err
		}
	}
	slog.Info("simulation finished", "frame", g.Frame(), "sim_time", g.SimTime())
	if opts.LogStats {
		g.LogSummary()
	}
	return g.Unload()
}

// runTerminal draws the scene as glyphs with tcell.
func runTerminal(ctx context.Context, opts game.Options, playAudio bool) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	view := termview.NewView()
	g, err := game.NewGameWithOptions(opts, view, view)
	if err != nil {
		return err
	}
	defer g.Unload()

	if playAudio {
		defer startAudio(g)()
	}

	if err := g.RunTerminal(ctx, screen, view); err != nil {
		return err
	}
	return g.Unload()
}

// runWindow opens a raylib window with the full viewer.
func runWindow(opts game.Options, cfg *config.Config, playAudio bool) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Drizzle")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	device := renderer.NewDevice()
	store := renderer.NewTextureStore()
	g, err := game.NewGameWithOptions(opts, device, store)
	if err != nil {
		return err
	}
	defer g.Unload()

	if playAudio {
		defer startAudio(g)()
	}

	v := viewer.New(g, device, store, int32(cfg.Screen.Width), int32(cfg.Screen.Height))
	for !rl.WindowShouldClose() {
		if err := v.Update(); err != nil {
			return err
		}
		v.Draw()

		if g.Done() {
			break
		}
	}
	return g.Unload()
}

// startAudio attaches a soundscape to g and plays it through the speaker.
// A missing audio device only disables sound. The returned func stops it.
func startAudio(g *game.Game) func() {
	amb := audio.New(config.Cfg().AudioSettings(), g.Seed())
	sr := amb.SampleRate()
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		slog.Warn("audio disabled", "error", err)
		return func() {}
	}
	g.SetAmbience(amb)
	speaker.Play(amb)
	slog.Info("audio started", "sample_rate", int(sr))

	return func() {
		g.SetAmbience(nil)
		speaker.Close()
	}
}
