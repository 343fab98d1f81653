package emu

import (
	"errors"
	"testing"
)

func TestDecodeTiles_Planes(t *testing.T) {
	// one tile, one 8-byte plane per quarter
	rom := make([]byte, 4*tileBytesPerPlane)
	rom[0*8+0] = 0x80 // plane 0, row 0, pixel 0
	rom[3*8+0] = 0x80 // plane 3, row 0, pixel 0
	rom[1*8+7] = 0x01 // plane 1, row 7, pixel 7

	pens, err := DecodeTiles(rom)
	if err != nil {
		t.Fatalf("DecodeTiles: %v", err)
	}
	if len(pens) != tilePixels {
		t.Fatalf("expected %d pens, got %d", tilePixels, len(pens))
	}
	if pens[0] != 9 {
		t.Errorf("pixel (0,0): expected pen 9, got %d", pens[0])
	}
	if pens[7*8+7] != 2 {
		t.Errorf("pixel (7,7): expected pen 2, got %d", pens[7*8+7])
	}
	if pens[1] != 0 {
		t.Errorf("pixel (1,0): expected pen 0, got %d", pens[1])
	}
}

func TestDecodeTiles_BadSize(t *testing.T) {
	if _, err := DecodeTiles(make([]byte, 33)); !errors.Is(err, errGfxSize) {
		t.Errorf("expected errGfxSize, got %v", err)
	}
}

func TestDecodeSprites_RightHalf(t *testing.T) {
	rom := make([]byte, 4*spriteBytesPerPlane)
	q := spriteBytesPerPlane
	rom[2*q+16] = 0x80 // plane 2, row 0, pixel 8
	rom[0*q+31] = 0x01 // plane 0, row 15, pixel 15
	rom[1*q+0] = 0x01  // plane 1, row 0, pixel 7

	pens, err := DecodeSprites(rom)
	if err != nil {
		t.Fatalf("DecodeSprites: %v", err)
	}
	if pens[8] != 4 {
		t.Errorf("pixel (8,0): expected pen 4, got %d", pens[8])
	}
	if pens[15*16+15] != 1 {
		t.Errorf("pixel (15,15): expected pen 1, got %d", pens[15*16+15])
	}
	if pens[7] != 2 {
		t.Errorf("pixel (7,0): expected pen 2, got %d", pens[7])
	}
}

func TestNewGfxSetFromROM_Usage(t *testing.T) {
	tiles := make([]byte, 4*tileBytesPerPlane*2)
	quarter := len(tiles) / 4
	tiles[0*quarter+8] = 0xFF // tile 1 row 0, plane 0

	sprites := make([]byte, 4*spriteBytesPerPlane)

	g, err := NewGfxSetFromROM(tiles, sprites)
	if err != nil {
		t.Fatalf("NewGfxSetFromROM: %v", err)
	}
	if g.NumTiles() != 2 || g.NumSprites() != 1 {
		t.Fatalf("expected 2 tiles and 1 sprite, got %d and %d", g.NumTiles(), g.NumSprites())
	}
	if g.tileUsage[0] != 0x0001 {
		t.Errorf("tile 0: expected usage 0x0001, got 0x%04X", g.tileUsage[0])
	}
	if g.tileUsage[1] != 0x0003 {
		t.Errorf("tile 1: expected usage 0x0003, got 0x%04X", g.tileUsage[1])
	}
}

func TestNewGfxSetFromROM_BadSprites(t *testing.T) {
	_, err := NewGfxSetFromROM(make([]byte, 32), make([]byte, 100))
	if !errors.Is(err, errGfxSize) {
		t.Errorf("expected errGfxSize, got %v", err)
	}
}

func TestGfxSet_CodesWrap(t *testing.T) {
	g := NewGfxSet(2, 2)
	pens := make([]uint8, tilePixels)
	pens[0] = 7
	if err := g.SetTile(1, pens); err != nil {
		t.Fatal(err)
	}
	if p := g.tilePen(3, 0, 0); p != 7 {
		t.Errorf("code 3 should wrap to tile 1, got pen %d", p)
	}

	cell := make([]uint8, spritePixels)
	cell[0] = 0x1C // masked to a 4-bit pen
	if err := g.SetSprite(0, cell); err != nil {
		t.Fatal(err)
	}
	if g.spriteCell(2)[0] != 0x0C {
		t.Errorf("expected pen 0x0C, got 0x%02X", g.spriteCell(2)[0])
	}
	if g.spritePenUsage(4) != 1<<0x0C|1 {
		t.Errorf("unexpected usage 0x%04X", g.spritePenUsage(4))
	}
}

func TestGfxSet_SetErrors(t *testing.T) {
	g := NewGfxSet(1, 1)
	if err := g.SetTile(1, make([]uint8, tilePixels)); err == nil {
		t.Error("expected out of range tile error")
	}
	if err := g.SetTile(0, make([]uint8, 10)); err == nil {
		t.Error("expected pen count error")
	}
	if err := g.SetSprite(0, make([]uint8, tilePixels)); err == nil {
		t.Error("expected pen count error")
	}
}

func TestGfxSet_Empty(t *testing.T) {
	g := NewGfxSet(0, 0)
	if g.tilePen(5, 0, 0) != 0 {
		t.Error("empty set reads pen 0")
	}
	if g.spriteCell(5) != nil {
		t.Error("empty set has no sprite cells")
	}
}
