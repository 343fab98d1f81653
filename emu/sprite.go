package emu

import "encoding/binary"

const spriteEntrySize = 8

// SpriteRecord is a decoded sprite table entry.
type SpriteRecord struct {
	X        int
	Y        int
	Pattern  int
	Palette  uint8
	FlipX    bool
	FlipY    bool
	XCells   int
	YCells   int
	AboveAll bool
}

// Offscreen reports whether the record carries the hardware's "not
// displayed" position.
func (s SpriteRecord) Offscreen() bool {
	return s.X == 0 || s.Y == 0
}

// ScreenX returns the left edge of the sprite in screen space.
func (s SpriteRecord) ScreenX() int {
	return s.X - 16
}

// ScreenY returns the top edge of the first cell row in screen space.
// Further rows stack upward.
func (s SpriteRecord) ScreenY() int {
	return 512 - 16 - s.Y
}

func decodeSprite(b []uint8) SpriteRecord {
	w0 := binary.LittleEndian.Uint16(b[0:])
	w3 := binary.LittleEndian.Uint16(b[6:])
	return SpriteRecord{
		Y:        int(w0 & 0x1FF),
		YCells:   1 << ((b[1] >> 1) & 3),
		XCells:   1 << ((b[1] >> 3) & 3),
		Pattern:  int(binary.LittleEndian.Uint16(b[2:])),
		Palette:  b[4] & 0x3F,
		AboveAll: b[4]&0x80 != 0,
		FlipX:    b[5]&0x01 != 0,
		FlipY:    b[5]&0x02 != 0,
		X:        int(w3 & 0x1FF),
	}
}

// spriteCell is one 16x16 blit of a sprite, in screen space.
type spriteCell struct {
	code int
	x, y int
}

// cells expands a record into its pattern cells. Columns are laid out
// left to right (right to left when flipped) and each column walks its
// pattern run bottom-up unless flipped vertically.
func (s SpriteRecord) cells(dst []spriteCell) []spriteCell {
	x := s.ScreenX()
	step := 16
	if s.FlipX {
		x += 16 * (s.XCells - 1)
		step = -16
	}
	y := s.ScreenY()

	for j := 0; j < s.XCells; j++ {
		ptr := s.Pattern + 8*j
		if !s.FlipY {
			ptr += s.YCells - 1
		}
		for i := 0; i < s.YCells; i++ {
			dst = append(dst, spriteCell{code: ptr, x: x, y: y - i*16})
			if s.FlipY {
				ptr++
			} else {
				ptr--
			}
		}
		x += step
	}
	return dst
}

// spriteListEndOffset returns the table offset of the last active entry,
// or -1 when the list is empty.
func (v *Video) spriteListEndOffset() int {
	if v.cfg.SpriteChip == SpriteChipAutoClear {
		return v.spriteListEnd
	}
	return int((0x100-uint16(v.spriteControl[0]))&0xFF)*8 - 8
}

// SpriteList returns the on-screen records of the rendered sprite buffer
// in draw order, keeping those whose above-all flag equals aboveAll.
func (v *Video) SpriteList(aboveAll bool) []SpriteRecord {
	var out []SpriteRecord
	v.eachSprite(func(s SpriteRecord) {
		if s.AboveAll == aboveAll {
			out = append(out, s)
		}
	})
	return out
}

// eachSprite walks the rendered buffer from the end of the list down to
// entry 0, skipping offscreen records.
func (v *Video) eachSprite(fn func(SpriteRecord)) {
	end := v.spriteListEndOffset()
	if end > spriteRAMSize-spriteEntrySize {
		end = spriteRAMSize - spriteEntrySize
	}
	for offs := end; offs >= 0; offs -= spriteEntrySize {
		s := decodeSprite(v.spriteBuffer[offs : offs+spriteEntrySize])
		if s.Offscreen() {
			continue
		}
		fn(s)
	}
}

// spriteUsage ORs the pens of every on-screen sprite cell into usage.
func (v *Video) spriteUsage(usage *[paletteBanks]uint16) {
	var cells []spriteCell
	v.eachSprite(func(s SpriteRecord) {
		cells = s.cells(cells[:0])
		for _, c := range cells {
			if c.x >= screenOriginX+ScreenWidth || c.x+16 <= screenOriginX {
				continue
			}
			if c.y >= screenOriginY+ScreenHeight || c.y+16 <= screenOriginY {
				continue
			}
			usage[s.Palette] |= v.gfx.spritePenUsage(c.code)
		}
	})
}

// drawSprites blits one priority group of sprites into raster lines
// [y0, y1).
func (v *Video) drawSprites(y0, y1 int, aboveAll bool) {
	top := y0 + rasterBias
	bottom := y1 + rasterBias
	var cells []spriteCell
	v.eachSprite(func(s SpriteRecord) {
		if s.AboveAll != aboveAll {
			return
		}
		cells = s.cells(cells[:0])
		for _, c := range cells {
			v.blitSpriteCell(c, s, top, bottom)
		}
	})
}

// blitSpriteCell draws one cell clipped to screen lines [top, bottom).
// Pen 0 is transparent.
func (v *Video) blitSpriteCell(c spriteCell, s SpriteRecord, top, bottom int) {
	pens := v.gfx.spriteCell(c.code)
	if pens == nil {
		return
	}
	color := uint16(s.Palette) << 4
	for row := 0; row < spriteSize; row++ {
		sy := c.y + row
		if sy < top || sy >= bottom {
			continue
		}
		srcRow := row
		if s.FlipY {
			srcRow = spriteSize - 1 - row
		}
		dst := v.frame.row(sy - screenOriginY)
		src := pens[srcRow*spriteSize : (srcRow+1)*spriteSize]
		for col := 0; col < spriteSize; col++ {
			fx := c.x + col - screenOriginX
			if fx < 0 || fx >= ScreenWidth {
				continue
			}
			srcCol := col
			if s.FlipX {
				srcCol = spriteSize - 1 - col
			}
			pen := src[srcCol]
			if pen == 0 {
				continue
			}
			dst[fx] = color | uint16(pen)
		}
	}
}

// WriteSpriteControl latches a sprite control byte. On the auto-clear
// chip a write to byte 8 buffers the sprite list, clears the live table
// and raises the sprite buffer interrupt.
func (v *Video) WriteSpriteControl(offset int, val uint8) {
	if offset < 0 || offset >= spriteControlSize {
		return
	}
	v.spriteControl[offset] = val
	if offset == 8 && v.cfg.SpriteChip == SpriteChipAutoClear {
		v.spriteBuffer = v.spriteRAM
		v.spriteRAM = [spriteRAMSize]uint8{}
		v.raise(IRQSpriteBuffer)
	}
}

// ReadSpriteControl returns a latched sprite control byte.
func (v *Video) ReadSpriteControl(offset int) uint8 {
	if offset < 0 || offset >= spriteControlSize {
		return 0
	}
	return v.spriteControl[offset]
}

// WriteSpriteBufferTrigger handles the buffer trigger port. On the
// dynamic-list chip a write to offset 0 buffers the sprite list, keeping
// the live table, and raises the sprite buffer interrupt.
func (v *Video) WriteSpriteBufferTrigger(offset int, val uint8) {
	if offset != 0 || v.cfg.SpriteChip != SpriteChipDynamic {
		return
	}
	v.spriteBuffer = v.spriteRAM
	v.raise(IRQSpriteBuffer)
}
