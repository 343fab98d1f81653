package emu

import (
	"errors"
	"fmt"
	"log"
)

const (
	ScreenWidth     = 320
	ScreenHeight    = 240
	MaxScreenHeight = ScreenHeight

	vramSize          = 0x10000
	spriteRAMSize     = 0x800
	spriteControlSize = 16
	videoControlSize  = 2

	// The chip counts raster lines with a +128 bias. Screen space is the
	// 512x512 area sprites and tilemaps are positioned in; the visible
	// window is x 80..399 and raster lines 8..247.
	rasterBias    = 128
	rasterLines   = 256
	visibleTop    = 8
	visibleBottom = 248
	screenOriginX = 80
	screenOriginY = rasterBias + visibleTop

	vblankLine      = 248
	endOfVBlankLine = 250
	frameEndLine    = 255

	// Playfield 1 tiles for HUD text live in this bank on games using
	// the HUD speedup.
	hudBank = 0xC000

	maxWarnings = 32
)

// ErrTilemapAlloc is returned when a tilemap layer cannot be created.
var ErrTilemapAlloc = errors.New("tilemap allocation failed")

// SpriteChip selects how the sprite list is buffered.
type SpriteChip int

const (
	// SpriteChipDynamic buffers on the separate trigger port and takes the
	// list length from sprite control byte 0.
	SpriteChipDynamic SpriteChip = iota
	// SpriteChipAutoClear buffers on sprite control byte 8, clears the live
	// list and always scans the whole table.
	SpriteChipAutoClear
)

// InterruptRequest is an interrupt the video hardware asks the CPU to take.
type InterruptRequest int

const (
	IRQNone InterruptRequest = iota
	IRQVBlank
	IRQSpriteBuffer
	IRQRaster
	IRQEndOfVBlank
)

// vectorOffset returns the position of the request in the board's
// interrupt vector block.
func (r InterruptRequest) vectorOffset() int {
	switch r {
	case IRQVBlank:
		return 0
	case IRQSpriteBuffer:
		return 1
	case IRQRaster, IRQEndOfVBlank:
		return 2
	}
	return -1
}

func (r InterruptRequest) String() string {
	switch r {
	case IRQNone:
		return "none"
	case IRQVBlank:
		return "vblank"
	case IRQSpriteBuffer:
		return "sprite-buffer"
	case IRQRaster:
		return "raster"
	case IRQEndOfVBlank:
		return "end-of-vblank"
	}
	return fmt.Sprintf("irq(%d)", int(r))
}

// Playfield identifies one of the three scrolling tile layers.
type Playfield int

const (
	PF1 Playfield = iota
	PF2
	PF3
)

// layer slots in Video.layers
const (
	layerPF1 = iota
	layerPF1Wide
	layerPF2
	layerPF3
	layerPF3Wide
	layerPF1High
	numLayers
)

// layerControl is the write-time state of one playfield. Scroll registers
// are only resolved into tilemap scroll state when a band is drawn.
type layerControl struct {
	regs      [8]uint8
	vramPtr   uint16
	wide      bool
	enabled   bool
	rowScroll bool
}

func (c *layerControl) scrollX() int {
	return int(uint16(c.regs[4]) | uint16(c.regs[5])<<8)
}

func (c *layerControl) scrollY() int {
	return int(uint16(c.regs[0]) | uint16(c.regs[1])<<8)
}

// VideoConfig selects the board variant the video hardware runs as.
type VideoConfig struct {
	SpriteChip     SpriteChip
	RasterIRQ      bool // board wires the raster interrupt
	HUDSpeedup     bool // route bank 0xC000 writes to the dedicated HUD layer
	EndOfVBlankIRQ bool
	Gfx            *GfxSet
}

// Video is the M92 video subsystem: VRAM, the playfield and master control
// register banks, the sprite engine and the raster interrupt driver. One
// instance exists per emulated machine and it is driven from a single
// goroutine.
type Video struct {
	vram          [vramSize]uint8
	spriteRAM     [spriteRAMSize]uint8 // live, CPU-writable
	spriteBuffer  [spriteRAMSize]uint8 // rendered copy
	spriteControl [spriteControlSize]uint8
	videoControl  [videoControlSize]uint8

	pf            [3]layerControl
	master        [8]uint8
	rasterIRQLine int

	layers [numLayers]*Tilemap

	// sprite table end offset for the auto-clear chip, refreshed with the
	// scroll positions
	spriteListEnd int

	cfg     VideoConfig
	gfx     *GfxSet
	palette *Palette
	frame   *Framebuffer
	raster  RasterState

	pending  []InterruptRequest
	warnings []string

	// bandDrawn, when set, observes every band PartialRefresh composites.
	bandDrawn func(start, end int)
}

// NewVideo creates the video subsystem. A tilemap that cannot be created is
// a fatal initialization error.
func NewVideo(cfg VideoConfig) (*Video, error) {
	v := &Video{
		cfg:     cfg,
		gfx:     cfg.Gfx,
		palette: NewPalette(),
		frame:   NewFramebuffer(),
	}
	if v.gfx == nil {
		v.gfx = NewGfxSet(0, 0)
	}

	specs := [numLayers]struct {
		name    string
		kind    layerKind
		variant splitVariant
	}{
		layerPF1:     {"pf1", kindNormal, splitThreeLevel},
		layerPF1Wide: {"pf1-wide", kindWide, splitThreeLevel},
		layerPF2:     {"pf2", kindNormal, splitThreeLevel},
		layerPF3:     {"pf3", kindNormal, splitTwoLevel},
		layerPF3Wide: {"pf3-wide", kindWide, splitTwoLevel},
		layerPF1High: {"pf1-high", kindHigh, splitThreeLevel},
	}
	for i, s := range specs {
		t, err := newTilemap(s.name, s.kind, s.variant)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTilemapAlloc, s.name, err)
		}
		v.layers[i] = t
	}
	v.layers[layerPF1High].setBase(hudBank, true)

	v.Reset()
	return v, nil
}

// Reset returns the registers and raster state to power-on values. VRAM
// and palette contents are left alone.
func (v *Video) Reset() {
	for i := range v.pf {
		v.pf[i] = layerControl{enabled: true}
	}
	v.master = [8]uint8{}
	v.rasterIRQLine = -rasterBias
	v.spriteControl = [spriteControlSize]uint8{}
	v.spriteListEnd = spriteRAMSize - 8
	v.raster = RasterState{}
	v.pending = nil
	for _, t := range v.layers {
		if t.kind != kindHigh {
			t.setBase(0, true)
		}
		t.markAllDirty()
	}
}

// raise queues an interrupt raised by a register write.
func (v *Video) raise(req InterruptRequest) {
	v.pending = append(v.pending, req)
}

// TakePendingInterrupts returns and clears the interrupts raised by
// register writes since the last call.
func (v *Video) TakePendingInterrupts() []InterruptRequest {
	if len(v.pending) == 0 {
		return nil
	}
	out := v.pending
	v.pending = nil
	return out
}

// warn records a configuration mismatch. Emulation continues.
func (v *Video) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("Warning: %s", msg)
	if len(v.warnings) >= maxWarnings {
		copy(v.warnings, v.warnings[1:])
		v.warnings = v.warnings[:maxWarnings-1]
	}
	v.warnings = append(v.warnings, msg)
}

// Warnings returns the configuration warnings raised so far, oldest first.
func (v *Video) Warnings() []string {
	out := make([]string, len(v.warnings))
	copy(out, v.warnings)
	return out
}

// SetHUDSpeedup enables or disables the playfield 1 HUD fast path. Safe
// only for games that keep playfield 1 in the narrow shape while it
// points at bank 0xC000.
func (v *Video) SetHUDSpeedup(on bool) {
	if v.cfg.HUDSpeedup == on {
		return
	}
	v.cfg.HUDSpeedup = on
	v.layers[layerPF1].markAllDirty()
	v.layers[layerPF1Wide].markAllDirty()
	v.layers[layerPF1High].markAllDirty()
}

// SetRasterIRQ enables or disables raster interrupt support.
func (v *Video) SetRasterIRQ(on bool) {
	v.cfg.RasterIRQ = on
}

// Palette returns the palette RAM.
func (v *Video) Palette() *Palette {
	return v.palette
}

// Framebuffer returns the framebuffer the scanline driver draws into.
func (v *Video) Framebuffer() *Framebuffer {
	return v.frame
}

// VBlank reports the vblank status bit.
func (v *Video) VBlank() bool {
	return v.raster.VBlank
}

// Raster returns a copy of the raster state.
func (v *Video) Raster() RasterState {
	return v.raster
}

// RasterIRQLine returns the raster interrupt trigger line.
func (v *Video) RasterIRQLine() int {
	return v.rasterIRQLine
}

// MasterControl returns the latched master control register.
func (v *Video) MasterControl(reg int) uint8 {
	if reg < 0 || reg >= len(v.master) {
		return 0
	}
	return v.master[reg]
}

// PFControl returns a latched playfield control register.
func (v *Video) PFControl(pf Playfield, reg int) uint8 {
	if pf < PF1 || pf > PF3 || reg < 0 || reg >= 8 {
		return 0
	}
	return v.pf[pf].regs[reg]
}

// playfieldLayers returns the narrow and wide tilemaps of a playfield.
// Playfield 2 has no wide shape.
func (v *Video) playfieldLayers(pf Playfield) (narrow, wide *Tilemap) {
	switch pf {
	case PF1:
		return v.layers[layerPF1], v.layers[layerPF1Wide]
	case PF2:
		return v.layers[layerPF2], nil
	default:
		return v.layers[layerPF3], v.layers[layerPF3Wide]
	}
}

// activeLayer returns the tilemap a playfield composites with.
func (v *Video) activeLayer(pf Playfield) *Tilemap {
	c := &v.pf[pf]
	if pf == PF1 && v.cfg.HUDSpeedup && c.vramPtr == hudBank {
		return v.layers[layerPF1High]
	}
	narrow, wide := v.playfieldLayers(pf)
	if c.wide && wide != nil {
		return wide
	}
	return narrow
}

// ReadVRAM returns a VRAM byte.
func (v *Video) ReadVRAM(offset uint16) uint8 {
	return v.vram[offset]
}

// ReadSpriteRAM returns a byte of the live sprite table.
func (v *Video) ReadSpriteRAM(offset uint16) uint8 {
	return v.spriteRAM[offset&(spriteRAMSize-1)]
}

// WriteSpriteRAM writes a byte of the live sprite table.
func (v *Video) WriteSpriteRAM(offset uint16, val uint8) {
	v.spriteRAM[offset&(spriteRAMSize-1)] = val
}

// WriteVideoControl latches the video control port. The board uses it
// only during bring-up.
func (v *Video) WriteVideoControl(offset int, val uint8) {
	if offset < 0 || offset >= videoControlSize {
		return
	}
	v.videoControl[offset] = val
}
