package main

import (
	"flag"
	"image/png"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	emubridge "github.com/user-none/em92/bridge/ebiten"
	"github.com/user-none/em92/cli"
	"github.com/user-none/em92/emu"
)

func main() {
	tracePath := flag.String("trace", "", "path to bus trace file (required)")
	game := flag.String("game", "", "board configuration to use instead of the trace's game")
	headless := flag.Int("headless", 0, "run N frames without a window and exit")
	pngPath := flag.String("png", "", "write the last frame to this PNG file (headless mode)")
	scale := flag.Int("scale", 2, "window scale")
	hudSpeedup := flag.Bool("hud-speedup", false, "track playfield 1 HUD text in a dedicated layer")
	flag.Parse()

	if *tracePath == "" {
		log.Fatal("Trace path is required. Usage: em92 -trace <path>")
	}
	if *game != "" {
		if _, ok := emu.LookupGame(*game); !ok {
			log.Printf("Warning: unknown game %q, using the standard board", *game)
		}
	}

	data, err := os.ReadFile(*tracePath)
	if err != nil {
		log.Fatalf("Failed to load trace: %v", err)
	}

	e, err := emubridge.NewEmulator(data, *game)
	if err != nil {
		log.Fatalf("Failed to initialize emulator: %v", err)
	}
	if *hudSpeedup {
		e.SetOption("hud_speedup", "true")
	}

	if *headless > 0 {
		runHeadless(e, *headless, *pngPath)
		return
	}

	ebiten.SetWindowSize(emu.ScreenWidth * *scale, emu.ScreenHeight * *scale)
	ebiten.SetWindowTitle(emu.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(emu.ScreenWidth, emu.ScreenHeight, -1, -1)
	ebiten.SetTPS(emu.BoardTiming.FPS)

	runner := cli.NewRunner(e)
	defer runner.Close()
	defer e.Close()

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}

// runHeadless runs frames without a window and optionally saves the final
// frame as a PNG.
func runHeadless(e *emubridge.Emulator, frames int, pngPath string) {
	for i := 0; i < frames; i++ {
		e.RunFrame()
	}
	for _, w := range e.Video().Warnings() {
		log.Printf("Warning: %s", w)
	}
	log.Printf("%d frames, %d interrupts delivered", e.FrameCount(), len(e.Player.Vectors()))

	if pngPath == "" {
		return
	}
	f, err := os.Create(pngPath)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", pngPath, err)
	}
	defer f.Close()
	if err := png.Encode(f, e.Video().Framebuffer().Image()); err != nil {
		log.Fatalf("Failed to write PNG: %v", err)
	}
}
