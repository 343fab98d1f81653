package emu

import (
	"errors"
	"fmt"
)

const (
	tilePixels   = tileSize * tileSize
	spriteSize   = 16
	spritePixels = spriteSize * spriteSize

	tileBytesPerPlane   = 8
	spriteBytesPerPlane = 32
)

var errGfxSize = errors.New("gfx ROM size is not a multiple of four planes")

// GfxSet holds decoded tile and sprite graphics as one pen (0-15) per
// pixel, together with a pen usage mask per element.
type GfxSet struct {
	tilePens    []uint8
	tileUsage   []uint16
	spritePens  []uint8
	spriteUsage []uint16
}

// NewGfxSet creates an empty set with room for the given element counts.
func NewGfxSet(tiles, sprites int) *GfxSet {
	return &GfxSet{
		tilePens:    make([]uint8, tiles*tilePixels),
		tileUsage:   make([]uint16, tiles),
		spritePens:  make([]uint8, sprites*spritePixels),
		spriteUsage: make([]uint16, sprites),
	}
}

// NewGfxSetFromROM decodes the tile and sprite graphics ROM regions.
func NewGfxSetFromROM(tileROM, spriteROM []byte) (*GfxSet, error) {
	tiles, err := DecodeTiles(tileROM)
	if err != nil {
		return nil, fmt.Errorf("tiles: %w", err)
	}
	sprites, err := DecodeSprites(spriteROM)
	if err != nil {
		return nil, fmt.Errorf("sprites: %w", err)
	}
	g := &GfxSet{tilePens: tiles, spritePens: sprites}
	g.tileUsage = penUsage(tiles, tilePixels)
	g.spriteUsage = penUsage(sprites, spritePixels)
	return g, nil
}

// NumTiles returns the number of 8x8 tiles in the set.
func (g *GfxSet) NumTiles() int {
	return len(g.tileUsage)
}

// NumSprites returns the number of 16x16 sprite cells in the set.
func (g *GfxSet) NumSprites() int {
	return len(g.spriteUsage)
}

// SetTile replaces the pens of one tile.
func (g *GfxSet) SetTile(index int, pens []uint8) error {
	if index < 0 || index >= g.NumTiles() {
		return fmt.Errorf("tile %d out of range (%d tiles)", index, g.NumTiles())
	}
	if len(pens) != tilePixels {
		return fmt.Errorf("tile %d: %d pens, want %d", index, len(pens), tilePixels)
	}
	dst := g.tilePens[index*tilePixels : (index+1)*tilePixels]
	var mask uint16
	for i, p := range pens {
		dst[i] = p & 0x0F
		mask |= 1 << (p & 0x0F)
	}
	g.tileUsage[index] = mask
	return nil
}

// SetSprite replaces the pens of one sprite cell.
func (g *GfxSet) SetSprite(index int, pens []uint8) error {
	if index < 0 || index >= g.NumSprites() {
		return fmt.Errorf("sprite %d out of range (%d cells)", index, g.NumSprites())
	}
	if len(pens) != spritePixels {
		return fmt.Errorf("sprite %d: %d pens, want %d", index, len(pens), spritePixels)
	}
	dst := g.spritePens[index*spritePixels : (index+1)*spritePixels]
	var mask uint16
	for i, p := range pens {
		dst[i] = p & 0x0F
		mask |= 1 << (p & 0x0F)
	}
	g.spriteUsage[index] = mask
	return nil
}

// Element codes wrap at the number of decoded elements.

func (g *GfxSet) tilePen(code uint16, x, y int) uint8 {
	n := len(g.tileUsage)
	if n == 0 {
		return 0
	}
	return g.tilePens[(int(code)%n)*tilePixels+y*tileSize+x]
}

func (g *GfxSet) spriteCell(code int) []uint8 {
	n := len(g.spriteUsage)
	if n == 0 {
		return nil
	}
	c := code % n
	return g.spritePens[c*spritePixels : (c+1)*spritePixels]
}

func (g *GfxSet) spritePenUsage(code int) uint16 {
	n := len(g.spriteUsage)
	if n == 0 {
		return 0
	}
	return g.spriteUsage[code%n]
}

// DecodeTiles converts a 4-plane tile ROM into 64 pens per 8x8 tile. The
// region holds one plane per quarter, most significant plane last.
func DecodeTiles(rom []byte) ([]uint8, error) {
	if len(rom)%(4*tileBytesPerPlane) != 0 {
		return nil, errGfxSize
	}
	quarter := len(rom) / 4
	count := quarter / tileBytesPerPlane
	out := make([]uint8, count*tilePixels)

	for t := 0; t < count; t++ {
		for y := 0; y < tileSize; y++ {
			off := t*tileBytesPerPlane + y
			for x := 0; x < tileSize; x++ {
				out[t*tilePixels+y*tileSize+x] = planarPen(rom, quarter, off, x)
			}
		}
	}
	return out, nil
}

// DecodeSprites converts a 4-plane sprite ROM into 256 pens per 16x16
// cell. The right eight columns of a cell start 16 bytes after the left.
func DecodeSprites(rom []byte) ([]uint8, error) {
	if len(rom)%(4*spriteBytesPerPlane) != 0 {
		return nil, errGfxSize
	}
	quarter := len(rom) / 4
	count := quarter / spriteBytesPerPlane
	out := make([]uint8, count*spritePixels)

	for c := 0; c < count; c++ {
		for y := 0; y < spriteSize; y++ {
			for x := 0; x < spriteSize; x++ {
				off := c*spriteBytesPerPlane + y
				if x >= 8 {
					off += 16
				}
				out[c*spritePixels+y*spriteSize+x] = planarPen(rom, quarter, off, x&7)
			}
		}
	}
	return out, nil
}

// planarPen gathers bit x (MSB first) of byte off from each plane quarter.
func planarPen(rom []byte, quarter, off, x int) uint8 {
	shift := uint(7 - x)
	var pen uint8
	for plane := 0; plane < 4; plane++ {
		pen |= ((rom[plane*quarter+off] >> shift) & 1) << uint(plane)
	}
	return pen
}

func penUsage(pens []uint8, size int) []uint16 {
	usage := make([]uint16, len(pens)/size)
	for i := range usage {
		var mask uint16
		for _, p := range pens[i*size : (i+1)*size] {
			mask |= 1 << p
		}
		usage[i] = mask
	}
	return usage
}
