package bustrace

import (
	"bytes"
	"fmt"

	"github.com/user-none/em92/emu"
)

// NewMachine parses trace data and builds a board with the player
// attached as its CPU. The board is configured for game, or for the
// trace's own game when game is empty.
func NewMachine(data []byte, game string) (*emu.Emulator, *Player, error) {
	t, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("parse trace: %w", err)
	}
	gfx, err := t.GfxSet()
	if err != nil {
		return nil, nil, fmt.Errorf("trace gfx: %w", err)
	}

	if game == "" {
		game = t.Game
	}
	cfg := emu.ConfigForGame(game)
	cfg.Gfx = gfx

	e, err := emu.NewEmulator(nil, cfg)
	if err != nil {
		return nil, nil, err
	}
	p := NewPlayer(t)
	p.SetBus(e.Bus())
	e.AttachCPU(p)
	return &e, p, nil
}
