package emu

import "fmt"

// PriorityClass is the split-priority category of a tile.
type PriorityClass uint8

const (
	// Normal tiles draw entirely under sprites.
	Normal PriorityClass = iota
	// SplitTop8Pens tiles draw pens 8-15 over normal sprites.
	SplitTop8Pens
	// FullAbove tiles draw every opaque pen over normal sprites.
	FullAbove
	// FullAboveAlt is FullAbove with pen 0 kept opaque in the back pass.
	FullAboveAlt
)

func (p PriorityClass) String() string {
	switch p {
	case Normal:
		return "normal"
	case SplitTop8Pens:
		return "split-top8"
	case FullAbove:
		return "full-above"
	case FullAboveAlt:
		return "full-above-alt"
	}
	return fmt.Sprintf("priority(%d)", uint8(p))
}

// draw passes
const (
	passBack = iota
	passFront
)

// splitMasks holds the opaque pen masks of each priority class for the
// back and front passes. Bit n set means pen n is drawn in that pass.
var splitMasks = [4][2]uint16{
	Normal:        {0xFFFE, 0x0000},
	SplitTop8Pens: {0x00FE, 0xFF00},
	FullAbove:     {0x0000, 0xFFFE},
	FullAboveAlt:  {0x0001, 0xFFFE},
}

// TileEntry is a decoded 4-byte tilemap cell.
type TileEntry struct {
	Pattern  uint16
	Palette  uint8
	Priority PriorityClass
	FlipX    bool
	FlipY    bool
}

// splitVariant selects the priority decode table of a layer.
type splitVariant uint8

const (
	// playfields 1 and 2
	splitThreeLevel splitVariant = iota
	// playfield 3
	splitTwoLevel
)

// decodeTile decodes the tilemap cell at offset.
func decodeTile(vram *[vramSize]uint8, offset uint16, variant splitVariant) TileEntry {
	lo := vram[offset]
	hi := vram[offset+1]
	color := vram[offset+2]
	flag := vram[offset+3]

	e := TileEntry{
		Pattern: uint16(lo) | uint16(hi)<<8,
		Palette: color & 0x3F,
		FlipX:   (flag>>1)&1 != 0,
		FlipY:   (flag>>2)&1 != 0,
	}
	switch {
	case variant == splitThreeLevel && flag&0x01 != 0:
		e.Priority = FullAboveAlt
	case color&0x80 != 0:
		e.Priority = SplitTop8Pens
	default:
		e.Priority = Normal
	}
	return e
}

// layerKind is the shape of a tilemap.
type layerKind uint8

const (
	kindNormal layerKind = iota // 64x64 tiles, 16KB window
	kindWide                    // 128x64 tiles, 32KB window
	kindHigh                    // 64x64 tiles fixed at the HUD bank
)

const (
	tileSize      = 8
	tilemapRows   = 64
	tilemapHeight = tilemapRows * tileSize
	rowScrollRows = tilemapHeight
)

// Tilemap caches the decoded cells of one logical layer. Cells are
// re-decoded lazily when marked dirty.
type Tilemap struct {
	name    string
	kind    layerKind
	variant splitVariant

	cols   int
	width  int
	window uint16

	base     uint16
	tiles    []TileEntry
	dirty    []bool
	anyDirty bool

	// number of cached cells using each palette
	paletteRefs [64]int

	// resolved scroll state, filled in at band start
	scrollX    int
	scrollY    int
	rowScrollX []int
	rowScroll  bool
}

func newTilemap(name string, kind layerKind, variant splitVariant) (*Tilemap, error) {
	t := &Tilemap{
		name:    name,
		kind:    kind,
		variant: variant,
	}
	switch kind {
	case kindNormal, kindHigh:
		t.cols = 64
		t.window = 0x3FFF
	case kindWide:
		t.cols = 128
		t.window = 0x7FFF
	default:
		return nil, fmt.Errorf("unknown layer kind %d", kind)
	}
	t.width = t.cols * tileSize
	n := t.cols * tilemapRows
	t.tiles = make([]TileEntry, n)
	t.dirty = make([]bool, n)
	t.rowScrollX = make([]int, rowScrollRows)
	t.paletteRefs[0] = n
	t.markAllDirty()
	return t, nil
}

// Name returns the layer name.
func (t *Tilemap) Name() string {
	return t.name
}

// Base returns the VRAM bank the layer decodes from.
func (t *Tilemap) Base() uint16 {
	return t.base
}

// NumTiles returns the number of cells in the layer.
func (t *Tilemap) NumTiles() int {
	return len(t.tiles)
}

// IsDirty reports whether a cell is waiting to be re-decoded.
func (t *Tilemap) IsDirty(index int) bool {
	if index < 0 || index >= len(t.dirty) {
		return false
	}
	return t.dirty[index]
}

func (t *Tilemap) markTileDirty(index int) {
	if index < 0 || index >= len(t.dirty) {
		return
	}
	t.dirty[index] = true
	t.anyDirty = true
}

func (t *Tilemap) markAllDirty() {
	for i := range t.dirty {
		t.dirty[i] = true
	}
	t.anyDirty = true
}

func (t *Tilemap) setBase(base uint16, invalidate bool) {
	t.base = base
	if invalidate {
		t.markAllDirty()
	}
}

// tileOffset returns the VRAM address of cell index.
func (t *Tilemap) tileOffset(index int) uint16 {
	return t.base + uint16(index*4)&t.window
}

// refresh re-decodes every dirty cell.
func (t *Tilemap) refresh(vram *[vramSize]uint8) {
	if !t.anyDirty {
		return
	}
	for i, d := range t.dirty {
		if !d {
			continue
		}
		e := decodeTile(vram, t.tileOffset(i), t.variant)
		t.paletteRefs[t.tiles[i].Palette]--
		t.paletteRefs[e.Palette]++
		t.tiles[i] = e
		t.dirty[i] = false
	}
	t.anyDirty = false
}

// Tile returns the cached cell at column col and row row, re-decoding the
// layer first if needed.
func (t *Tilemap) Tile(vram *[vramSize]uint8, col, row int) TileEntry {
	t.refresh(vram)
	return t.tiles[(row&(tilemapRows-1))*t.cols+(col&(t.cols-1))]
}

// setScroll resolves the layer scroll from scalar values.
func (t *Tilemap) setScroll(x, y int) {
	t.rowScroll = false
	t.scrollX = x
	t.scrollY = y
}

// setRowScroll resolves the layer scroll from a per-row table. Rows are
// tilemap rows, not screen lines.
func (t *Tilemap) setRowScroll(rows []int, y int) {
	t.rowScroll = true
	copy(t.rowScrollX, rows)
	t.scrollY = y
}

// sourceX returns the horizontal scroll applying to tilemap row srcY.
func (t *Tilemap) sourceX(srcY int) int {
	if t.rowScroll {
		return t.rowScrollX[srcY&(rowScrollRows-1)]
	}
	return t.scrollX
}

// usage ORs the pens of every palette referenced by the layer into usage.
func (t *Tilemap) usage(usage *[64]uint16) {
	for pal, n := range t.paletteRefs {
		if n > 0 {
			usage[pal] = 0xFFFF
		}
	}
}

// draw composites raster lines [y0, y1) of one priority pass into fb.
func (t *Tilemap) draw(fb *Framebuffer, gfx *GfxSet, y0, y1 int, pass int) {
	for line := y0; line < y1; line++ {
		srcY := (line + rasterBias + t.scrollY) & (tilemapHeight - 1)
		sx := t.sourceX(srcY)
		rowBase := (srcY / tileSize) * t.cols
		py := srcY & (tileSize - 1)
		dst := fb.row(line - visibleTop)

		for x := 0; x < ScreenWidth; x++ {
			srcX := (x + screenOriginX + sx) & (t.width - 1)
			e := &t.tiles[rowBase+srcX/tileSize]
			mask := splitMasks[e.Priority][pass]
			if mask == 0 {
				continue
			}
			px, ty := srcX&(tileSize-1), py
			if e.FlipX {
				px = tileSize - 1 - px
			}
			if e.FlipY {
				ty = tileSize - 1 - ty
			}
			pen := gfx.tilePen(e.Pattern, px, ty)
			if mask&(1<<pen) == 0 {
				continue
			}
			dst[x] = uint16(e.Palette)<<4 | uint16(pen)
		}
	}
}
