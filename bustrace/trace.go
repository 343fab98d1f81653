// Package bustrace replays recorded main CPU bus activity through an M92
// board. A trace is a text file of memory and port writes keyed by frame
// and raster line, optionally carrying the tile and sprite graphics it
// draws with.
//
// Directives, one per line, with # starting a comment:
//
//	game <name>               board configuration from the game table
//	tile <index> <64 hex>     8x8 tile, one hex pen per pixel
//	sprite <index> <256 hex>  16x16 sprite cell, one hex pen per pixel
//	frame                     start the next frame
//	line <n>                  following writes happen on raster line n
//	mw <addr> <byte>...       memory writes at consecutive addresses
//	pw <port> <byte>...       port writes at consecutive ports
//
// Addresses, ports and bytes are hex. Writes before the first frame
// directive are applied once, before the first frame.
package bustrace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/user-none/em92/emu"
)

const (
	tilePens   = 64
	spritePens = 256
	maxLine    = 255
)

var (
	ErrSyntax     = errors.New("syntax error")
	ErrNoFrames   = errors.New("trace has no frames")
	errPenCount   = errors.New("wrong number of pens")
	errBadPen     = errors.New("bad pen digit")
	errMissingArg = errors.New("missing argument")
)

// Write is one recorded bus write burst.
type Write struct {
	Port bool
	Addr uint32
	Data []byte
	Line int
}

// Frame is the writes of one frame, ordered by line.
type Frame struct {
	Writes []Write
}

// Trace is a parsed bus trace.
type Trace struct {
	Game    string
	Tiles   map[int][]uint8
	Sprites map[int][]uint8
	Setup   []Write
	Frames  []Frame
}

// Parse reads a trace.
func Parse(r io.Reader) (*Trace, error) {
	t := &Trace{
		Tiles:   make(map[int][]uint8),
		Sprites: make(map[int][]uint8),
	}

	var cur *Frame
	line := 0
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "game":
			if len(fields) != 2 {
				err = errMissingArg
				break
			}
			t.Game = fields[1]
		case "tile":
			err = parseGfx(t.Tiles, fields, tilePens)
		case "sprite":
			err = parseGfx(t.Sprites, fields, spritePens)
		case "frame":
			t.Frames = append(t.Frames, Frame{})
			cur = &t.Frames[len(t.Frames)-1]
			line = 0
		case "line":
			if len(fields) != 2 {
				err = errMissingArg
				break
			}
			var v int
			v, err = strconv.Atoi(fields[1])
			if err == nil && (v < 0 || v > maxLine) {
				err = fmt.Errorf("line %d out of range", v)
			}
			line = v
		case "mw", "pw":
			var w Write
			w, err = parseWrite(fields)
			w.Line = line
			if err != nil {
				break
			}
			if cur == nil {
				t.Setup = append(t.Setup, w)
			} else {
				cur.Writes = append(cur.Writes, w)
			}
		default:
			err = fmt.Errorf("%w: unknown directive %q", ErrSyntax, fields[0])
		}
		if err != nil {
			return nil, fmt.Errorf("trace line %d: %w", n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(t.Frames) == 0 {
		return nil, ErrNoFrames
	}

	// line directives may step backwards inside a frame
	for i := range t.Frames {
		ws := t.Frames[i].Writes
		sort.SliceStable(ws, func(a, b int) bool { return ws[a].Line < ws[b].Line })
	}
	return t, nil
}

func parseGfx(dst map[int][]uint8, fields []string, count int) error {
	if len(fields) != 3 {
		return errMissingArg
	}
	idx, err := strconv.Atoi(fields[1])
	if err != nil {
		return err
	}
	if idx < 0 {
		return fmt.Errorf("negative index %d", idx)
	}
	digits := fields[2]
	if len(digits) != count {
		return fmt.Errorf("%w: %d, want %d", errPenCount, len(digits), count)
	}
	pens := make([]uint8, count)
	for i := 0; i < count; i++ {
		v, err := strconv.ParseUint(digits[i:i+1], 16, 8)
		if err != nil {
			return fmt.Errorf("%w %q", errBadPen, digits[i])
		}
		pens[i] = uint8(v)
	}
	dst[idx] = pens
	return nil
}

func parseWrite(fields []string) (Write, error) {
	if len(fields) < 3 {
		return Write{}, errMissingArg
	}
	w := Write{Port: fields[0] == "pw"}
	bits := 20
	if w.Port {
		bits = 8
	}
	addr, err := strconv.ParseUint(fields[1], 16, bits)
	if err != nil {
		return Write{}, fmt.Errorf("%w: address %q", ErrSyntax, fields[1])
	}
	w.Addr = uint32(addr)
	for _, f := range fields[2:] {
		b, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return Write{}, fmt.Errorf("%w: byte %q", ErrSyntax, f)
		}
		w.Data = append(w.Data, uint8(b))
	}
	return w, nil
}

// GfxSet builds the graphics the trace defines. Element counts cover the
// highest index used.
func (t *Trace) GfxSet() (*emu.GfxSet, error) {
	g := emu.NewGfxSet(maxIndex(t.Tiles)+1, maxIndex(t.Sprites)+1)
	for i, pens := range t.Tiles {
		if err := g.SetTile(i, pens); err != nil {
			return nil, err
		}
	}
	for i, pens := range t.Sprites {
		if err := g.SetSprite(i, pens); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func maxIndex(m map[int][]uint8) int {
	max := -1
	for i := range m {
		if i > max {
			max = i
		}
	}
	return max
}
