// Frame dump tool - simulates the scene for a number of frames and renders
// the result to a PNG file for inspection.
//
// Usage: go run ./cmd/framedump -frames 300 -out frame.png [-wav scene.wav]
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drizzle/audio"
	"github.com/pthm-cable/drizzle/config"
	"github.com/pthm-cable/drizzle/game"
	"github.com/pthm-cable/drizzle/renderer"
	"github.com/pthm-cable/drizzle/viewer"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "frame.png", "Output PNG path")
	frames := flag.Int("frames", 300, "Frames to simulate before rendering")
	seed := flag.Int64("seed", 1, "RNG seed")
	width := flag.Int("width", 1280, "Render width")
	height := flag.Int("height", 720, "Render height")
	burst := flag.Bool("burst", false, "Fire a ring burst at the campfire before the last frame")
	wavPath := flag.String("wav", "", "Also render the soundscape at the last frame to this WAV file")
	wavSeconds := flag.Float64("wav-seconds", 5, "Length of the WAV render")
	flag.Parse()

	config.MustInit(*configPath)

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Frame Dump")
	defer rl.CloseWindow()

	device := renderer.NewDevice()
	store := renderer.NewTextureStore()
	g, err := game.NewGameWithOptions(game.Options{Seed: *seed, Mode: game.ModeHeadless}, device, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up scene: %v\n", err)
		os.Exit(1)
	}
	defer g.Unload()

	if *wavPath != "" {
		g.SetAmbience(audio.New(config.Cfg().AudioSettings(), *seed))
	}

	for i := 0; i < *frames; i++ {
		if *burst && i == *frames-1 {
			g.BurstAtAnchor()
		}
		if err := g.UpdateHeadless(); err != nil {
			fmt.Fprintf(os.Stderr, "Frame %d failed: %v\n", g.Frame(), err)
			os.Exit(1)
		}
	}

	v := viewer.New(g, device, store, int32(*width), int32(*height))

	// Create render texture
	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	v.DrawScene()
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		c := g.Manager().Counts()
		fmt.Printf("Frame %d rendered to: %s (%dx%d, %d instances)\n", g.Frame(), *outPath, *width, *height, c.Active)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}

	if amb := g.Ambience(); amb != nil {
		d := time.Duration(*wavSeconds * float64(time.Second))
		if err := amb.WriteWAV(*wavPath, d); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write audio: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Soundscape rendered to: %s (%.1fs)\n", *wavPath, *wavSeconds)
	}
}
