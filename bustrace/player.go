package bustrace

import (
	"encoding/binary"
	"errors"

	"github.com/user-none/em92/emu"
)

// Compile-time interface checks.
var _ emu.CPU = (*Player)(nil)
var _ emu.CPUStater = (*Player)(nil)

// Bus is the board side the player writes to.
type Bus interface {
	Write(addr uint32, val uint8)
	Out(port uint8, val uint8)
}

// maxVectors bounds the interrupt history kept by a player.
const maxVectors = 1024

// Player replays a trace as the board's CPU. Frames loop once the last
// one has been played.
type Player struct {
	trace *Trace
	bus   Bus

	frame     int // index into trace.Frames
	next      int // next write in the frame
	setupDone bool
	loops     int

	vectors []uint8
}

// NewPlayer creates a player for t.
func NewPlayer(t *Trace) *Player {
	return &Player{trace: t}
}

// SetBus sets the bus writes are replayed to.
func (p *Player) SetBus(b Bus) {
	p.bus = b
}

// RunScanline applies the writes recorded for line of the current frame.
// Line 255 ends the frame.
func (p *Player) RunScanline(line int) {
	if p.bus == nil {
		return
	}
	if !p.setupDone {
		for _, w := range p.trace.Setup {
			p.apply(w)
		}
		p.setupDone = true
	}

	ws := p.trace.Frames[p.frame].Writes
	for p.next < len(ws) && ws[p.next].Line <= line {
		p.apply(ws[p.next])
		p.next++
	}

	if line == maxLine {
		p.next = 0
		p.frame++
		if p.frame == len(p.trace.Frames) {
			p.frame = 0
			p.loops++
		}
	}
}

func (p *Player) apply(w Write) {
	for i, b := range w.Data {
		if w.Port {
			p.bus.Out(uint8(w.Addr)+uint8(i), b)
		} else {
			p.bus.Write(w.Addr+uint32(i), b)
		}
	}
}

// RequestInterrupt records a delivered interrupt vector.
func (p *Player) RequestInterrupt(vector uint8) {
	if len(p.vectors) == maxVectors {
		copy(p.vectors, p.vectors[1:])
		p.vectors = p.vectors[:maxVectors-1]
	}
	p.vectors = append(p.vectors, vector)
}

// Vectors returns the interrupt vectors delivered so far, oldest first.
func (p *Player) Vectors() []uint8 {
	out := make([]uint8, len(p.vectors))
	copy(out, p.vectors)
	return out
}

// Frame returns the index of the frame about to play.
func (p *Player) Frame() int {
	return p.frame
}

// Loops returns how many times the trace has wrapped.
func (p *Player) Loops() int {
	return p.loops
}

// SaveState writes the playback position to buf.
func (p *Player) SaveState(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], uint32(p.frame))
	binary.LittleEndian.PutUint32(buf[4:], uint32(p.next))
	binary.LittleEndian.PutUint32(buf[8:], uint32(p.loops))
	if p.setupDone {
		buf[12] = 1
	} else {
		buf[12] = 0
	}
}

// LoadState restores the playback position from buf.
func (p *Player) LoadState(buf []byte) error {
	frame := int(binary.LittleEndian.Uint32(buf[0:]))
	next := int(binary.LittleEndian.Uint32(buf[4:]))
	if frame >= len(p.trace.Frames) || next > len(p.trace.Frames[frame].Writes) {
		return errors.New("save state position is outside the trace")
	}
	p.frame = frame
	p.next = next
	p.loops = int(binary.LittleEndian.Uint32(buf[8:]))
	p.setupDone = buf[12] != 0
	return nil
}
