package emu

import "testing"

// makeTestVideo creates a video subsystem for the given board variant.
func makeTestVideo(t *testing.T, cfg VideoConfig) *Video {
	t.Helper()
	v, err := NewVideo(cfg)
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	return v
}

// cleanLayers re-decodes every layer so dirty flags start cleared.
func cleanLayers(v *Video) {
	for _, l := range v.layers {
		l.refresh(&v.vram)
	}
}

func putTile(v *Video, offset uint16, pattern uint16, color, flag uint8) {
	v.vram[offset] = uint8(pattern)
	v.vram[offset+1] = uint8(pattern >> 8)
	v.vram[offset+2] = color
	v.vram[offset+3] = flag
}

// --- Decode ---

func TestDecodeTile_Fields(t *testing.T) {
	var vram [vramSize]uint8
	vram[0x100] = 0x34
	vram[0x101] = 0x12
	vram[0x102] = 0x05
	vram[0x103] = 0x06

	e := decodeTile(&vram, 0x100, splitThreeLevel)
	if e.Pattern != 0x1234 {
		t.Errorf("expected pattern 0x1234, got 0x%04X", e.Pattern)
	}
	if e.Palette != 5 {
		t.Errorf("expected palette 5, got %d", e.Palette)
	}
	if !e.FlipX || !e.FlipY {
		t.Errorf("expected both flips, got x=%v y=%v", e.FlipX, e.FlipY)
	}
	if e.Priority != Normal {
		t.Errorf("expected normal priority, got %v", e.Priority)
	}
}

func TestDecodeTile_PaletteMasksHighBits(t *testing.T) {
	var vram [vramSize]uint8
	vram[2] = 0x7F
	e := decodeTile(&vram, 0, splitThreeLevel)
	if e.Palette != 0x3F {
		t.Errorf("expected palette 0x3F, got 0x%02X", e.Palette)
	}
}

func TestDecodeTile_ThreeLevelPriority(t *testing.T) {
	var vram [vramSize]uint8

	// flag bit 0 wins over the split bit
	vram[2], vram[3] = 0x80, 0x01
	if p := decodeTile(&vram, 0, splitThreeLevel).Priority; p != FullAboveAlt {
		t.Errorf("flag bit 0: expected full-above-alt, got %v", p)
	}

	vram[2], vram[3] = 0x80, 0x00
	if p := decodeTile(&vram, 0, splitThreeLevel).Priority; p != SplitTop8Pens {
		t.Errorf("color bit 7: expected split-top8, got %v", p)
	}

	vram[2], vram[3] = 0x00, 0x00
	if p := decodeTile(&vram, 0, splitThreeLevel).Priority; p != Normal {
		t.Errorf("no bits: expected normal, got %v", p)
	}
}

func TestDecodeTile_TwoLevelIgnoresFlagBit(t *testing.T) {
	var vram [vramSize]uint8

	vram[2], vram[3] = 0x00, 0x01
	if p := decodeTile(&vram, 0, splitTwoLevel).Priority; p != Normal {
		t.Errorf("expected normal, got %v", p)
	}

	vram[2], vram[3] = 0x80, 0x01
	if p := decodeTile(&vram, 0, splitTwoLevel).Priority; p != SplitTop8Pens {
		t.Errorf("expected split-top8, got %v", p)
	}
}

func TestDecodeTile_Deterministic(t *testing.T) {
	var vram [vramSize]uint8
	for i := range vram {
		vram[i] = uint8(i*7 + i>>8)
	}
	for off := 0; off < vramSize; off += 0x3FC {
		a := decodeTile(&vram, uint16(off), splitThreeLevel)
		b := decodeTile(&vram, uint16(off), splitThreeLevel)
		if a != b {
			t.Fatalf("offset 0x%04X: decode changed %+v -> %+v", off, a, b)
		}
	}
}

func TestSplitMasks(t *testing.T) {
	tests := []struct {
		class       PriorityClass
		back, front uint16
	}{
		{Normal, 0xFFFE, 0x0000},
		{SplitTop8Pens, 0x00FE, 0xFF00},
		{FullAbove, 0x0000, 0xFFFE},
		{FullAboveAlt, 0x0001, 0xFFFE},
	}
	for _, tt := range tests {
		if got := splitMasks[tt.class][passBack]; got != tt.back {
			t.Errorf("%v back: expected 0x%04X, got 0x%04X", tt.class, tt.back, got)
		}
		if got := splitMasks[tt.class][passFront]; got != tt.front {
			t.Errorf("%v front: expected 0x%04X, got 0x%04X", tt.class, tt.front, got)
		}
	}
}

// --- Layer geometry ---

func TestTilemap_Shapes(t *testing.T) {
	v := makeTestVideo(t, VideoConfig{})
	if n := v.layers[layerPF1].NumTiles(); n != 64*64 {
		t.Errorf("narrow: expected %d tiles, got %d", 64*64, n)
	}
	if n := v.layers[layerPF1Wide].NumTiles(); n != 128*64 {
		t.Errorf("wide: expected %d tiles, got %d", 128*64, n)
	}
	if b := v.layers[layerPF1High].Base(); b != hudBank {
		t.Errorf("high layer: expected base 0x%04X, got 0x%04X", hudBank, b)
	}
}

func TestTilemap_TileOffsetWindow(t *testing.T) {
	v := makeTestVideo(t, VideoConfig{})
	narrow := v.layers[layerPF3]
	wide := v.layers[layerPF3Wide]

	narrow.setBase(0x4000, false)
	if off := narrow.tileOffset(64*64 - 1); off != 0x7FFC {
		t.Errorf("narrow last cell: expected 0x7FFC, got 0x%04X", off)
	}

	wide.setBase(0x4000, false)
	if off := wide.tileOffset(128*64 - 1); off != 0xBFFC {
		t.Errorf("wide last cell: expected 0xBFFC, got 0x%04X", off)
	}

	// a wide layer at the top bank wraps to bank 0
	wide.setBase(0xC000, false)
	if off := wide.tileOffset(64 * 64); off != 0x0000 {
		t.Errorf("wide wrap: expected 0x0000, got 0x%04X", off)
	}
}

func TestTilemap_RefreshClearsDirty(t *testing.T) {
	v := makeTestVideo(t, VideoConfig{})
	l := v.layers[layerPF2]
	putTile(v, 0x0008, 0x0042, 0x07, 0)

	if !l.IsDirty(2) {
		t.Fatal("expected new layer to start dirty")
	}
	e := l.Tile(&v.vram, 2, 0)
	if e.Pattern != 0x42 || e.Palette != 7 {
		t.Errorf("expected pattern 0x42 palette 7, got %+v", e)
	}
	if l.IsDirty(2) {
		t.Error("expected cell clean after refresh")
	}
}

func TestTilemap_PaletteRefs(t *testing.T) {
	v := makeTestVideo(t, VideoConfig{})
	l := v.layers[layerPF1]
	putTile(v, 0x0000, 1, 0x09, 0)
	l.refresh(&v.vram)

	if l.paletteRefs[9] != 1 {
		t.Errorf("expected one cell on palette 9, got %d", l.paletteRefs[9])
	}
	var usage [paletteBanks]uint16
	l.usage(&usage)
	if usage[9] != 0xFFFF || usage[0] != 0xFFFF {
		t.Errorf("expected palettes 0 and 9 used, got 0x%04X 0x%04X", usage[0], usage[9])
	}

	// moving the cell back to palette 0 drops the reference
	putTile(v, 0x0000, 1, 0x00, 0)
	l.markTileDirty(0)
	l.refresh(&v.vram)
	if l.paletteRefs[9] != 0 {
		t.Errorf("expected no cells on palette 9, got %d", l.paletteRefs[9])
	}
}
