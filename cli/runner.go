// Package cli provides a command-line runner for the emulator.
// It handles input polling and runs the emulator in a window without the full UI.
package cli

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	emucore "github.com/user-none/eblitui/api"
	emubridge "github.com/user-none/em92/bridge/ebiten"
	"github.com/user-none/em92/ui"
)

// Button bits for the board's three fire buttons, start and coin.
const (
	bitButton1 = 4
	bitButton2 = 5
	bitButton3 = 6
	bitStart   = 7
	bitCoin    = 8
)

// ADT buffer thresholds in bytes.
const (
	adtMinBuffer = 9600
	adtMaxBuffer = 19200
)

// Runner wraps an emulator for command-line mode.
// The emulator runs on a dedicated goroutine with audio-driven timing.
// The Ebiten thread handles input polling and rendering from the shared framebuffer.
type Runner struct {
	emulator    *emubridge.Emulator
	audioPlayer *ui.AudioPlayer

	// ADT goroutine control
	emuControl        *ui.EmuControl
	sharedInput       *ui.SharedInput
	sharedFramebuffer *ui.SharedFramebuffer
	emuDone           chan struct{}
}

// NewRunner creates a new Runner wrapping the given emulator.
// Audio initialization failure is non-fatal; the runner will work without sound.
func NewRunner(e *emubridge.Emulator) *Runner {
	player, err := ui.NewAudioPlayer(1.0)
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
	}

	r := &Runner{
		emulator:          e,
		audioPlayer:       player,
		emuControl:        ui.NewEmuControl(),
		sharedInput:       &ui.SharedInput{},
		sharedFramebuffer: ui.NewSharedFramebuffer(),
		emuDone:           make(chan struct{}),
	}

	// Start emulation goroutine
	go r.emulationLoop()

	return r
}

// Close cleans up the runner's resources.
func (r *Runner) Close() {
	// Stop emulation goroutine
	if r.emuControl != nil {
		r.emuControl.Stop()
		<-r.emuDone
	}

	if r.audioPlayer != nil {
		r.audioPlayer.Close()
		r.audioPlayer = nil
	}
}

// emulationLoop runs on a dedicated goroutine with ADT.
func (r *Runner) emulationLoop() {
	defer close(r.emuDone)

	timing := r.emulator.GetTiming()
	frameTime := time.Duration(float64(time.Second) / float64(timing.FPS))
	lastFrameTime := time.Now()

	for {
		if !r.emuControl.CheckPause() {
			return
		}

		for player, buttons := range r.sharedInput.Read() {
			r.emulator.SetInput(player, buttons)
		}

		// Run one frame
		r.emulator.RunFrame()

		// Queue audio
		if r.audioPlayer != nil {
			r.audioPlayer.QueueSamples(r.emulator.GetAudioSamples())
		}

		// Update shared framebuffer
		r.sharedFramebuffer.Update(
			r.emulator.GetFramebuffer(),
			r.emulator.GetFramebufferStride(),
			r.emulator.GetActiveHeight(),
		)

		// ADT sleep
		elapsed := time.Since(lastFrameTime)
		sleepTime := frameTime - elapsed

		if r.audioPlayer != nil {
			bufferLevel := r.audioPlayer.GetBufferLevel()
			if bufferLevel < adtMinBuffer {
				sleepTime = time.Duration(float64(sleepTime) * 0.9)
			} else if bufferLevel > adtMaxBuffer {
				sleepTime = time.Duration(float64(sleepTime) * 1.1)
			}
		}

		if sleepTime > time.Millisecond {
			time.Sleep(sleepTime)
		}

		lastFrameTime = time.Now()
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if !ebiten.IsFocused() {
		return nil
	}

	r.pollInputToShared()
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	pixels, stride, height, _ := r.sharedFramebuffer.Read()
	if height == 0 {
		return
	}
	r.emulator.DrawCachedFramebuffer(screen, pixels, stride, height)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.emulator.Layout(outsideWidth, outsideHeight)
}

// pollInputToShared reads keyboard and gamepad input and writes to shared
// state. The keyboard drives player 1; gamepads fill players in the order
// they were connected, starting with player 1.
func (r *Runner) pollInputToShared() {
	var buttons [ui.MaxPlayers]uint32

	// WASD + arrows for movement, JKL for buttons, Enter for start, 5 for coin
	keys := []struct {
		keys []ebiten.Key
		mask uint32
	}{
		{[]ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp}, 1 << emucore.ButtonUp},
		{[]ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown}, 1 << emucore.ButtonDown},
		{[]ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft}, 1 << emucore.ButtonLeft},
		{[]ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight}, 1 << emucore.ButtonRight},
		{[]ebiten.Key{ebiten.KeyJ}, 1 << bitButton1},
		{[]ebiten.Key{ebiten.KeyK}, 1 << bitButton2},
		{[]ebiten.Key{ebiten.KeyL}, 1 << bitButton3},
		{[]ebiten.Key{ebiten.KeyEnter}, 1 << bitStart},
		{[]ebiten.Key{ebiten.Key5}, 1 << bitCoin},
	}
	for _, k := range keys {
		for _, key := range k.keys {
			if ebiten.IsKeyPressed(key) {
				buttons[0] |= k.mask
			}
		}
	}

	pad := []struct {
		button ebiten.StandardGamepadButton
		mask   uint32
	}{
		{ebiten.StandardGamepadButtonLeftTop, 1 << emucore.ButtonUp},
		{ebiten.StandardGamepadButtonLeftBottom, 1 << emucore.ButtonDown},
		{ebiten.StandardGamepadButtonLeftLeft, 1 << emucore.ButtonLeft},
		{ebiten.StandardGamepadButtonLeftRight, 1 << emucore.ButtonRight},
		{ebiten.StandardGamepadButtonRightBottom, 1 << bitButton1},
		{ebiten.StandardGamepadButtonRightRight, 1 << bitButton2},
		{ebiten.StandardGamepadButtonRightLeft, 1 << bitButton3},
		{ebiten.StandardGamepadButtonCenterRight, 1 << bitStart},
		{ebiten.StandardGamepadButtonCenterLeft, 1 << bitCoin},
	}

	player := 0
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if player >= ui.MaxPlayers {
			break
		}
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for _, b := range pad {
			if ebiten.IsStandardGamepadButtonPressed(id, b.button) {
				buttons[player] |= b.mask
			}
		}

		// Left analog stick (with deadzone)
		const deadzone = 0.5
		axisX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		axisY := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if axisX < -deadzone {
			buttons[player] |= 1 << emucore.ButtonLeft
		}
		if axisX > deadzone {
			buttons[player] |= 1 << emucore.ButtonRight
		}
		if axisY < -deadzone {
			buttons[player] |= 1 << emucore.ButtonUp
		}
		if axisY > deadzone {
			buttons[player] |= 1 << emucore.ButtonDown
		}
		player++
	}

	for i, b := range buttons {
		r.sharedInput.Set(i, b)
	}
}
