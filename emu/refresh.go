package emu

import "encoding/binary"

// rowscroll tables and the horizontal stagger of each playfield
var (
	rowScrollTable = [3]uint16{0xF400, 0xF800, 0xFC00}
	scrollBias     = [3]int{0, -2, -4}
)

// wide layers sit 256 pixels into their 1024 pixel map
const wideScrollOffset = 256

// PartialRefresh composites raster lines [start, end) into the framebuffer.
// The band is clipped to the visible lines 8..247 and returns the line
// drawn up to, or start when nothing was drawn.
func (v *Video) PartialRefresh(start, end int) int {
	if start < visibleTop {
		start = visibleTop
	}
	if end > visibleBottom {
		end = visibleBottom
	}
	if end <= start {
		return start
	}
	if v.bandDrawn != nil {
		v.bandDrawn(start, end)
	}

	v.updateScrollPositions()

	pf1 := v.activeLayer(PF1)
	pf2 := v.activeLayer(PF2)
	pf3 := v.activeLayer(PF3)
	pf1.refresh(&v.vram)
	pf2.refresh(&v.vram)
	pf3.refresh(&v.vram)

	v.updatePalette(pf1, pf2, pf3)

	y0 := start - visibleTop
	y1 := end - visibleTop
	v.frame.fill(y0, y1, backgroundColor)

	if v.pf[PF3].enabled {
		pf3.draw(v.frame, v.gfx, start, end, passBack)
	}
	if v.pf[PF2].enabled {
		pf2.draw(v.frame, v.gfx, start, end, passBack)
	}
	if v.pf[PF1].enabled {
		pf1.draw(v.frame, v.gfx, start, end, passBack)
	}

	v.drawSprites(start, end, false)

	if v.pf[PF3].enabled {
		pf3.draw(v.frame, v.gfx, start, end, passFront)
	}
	if v.pf[PF2].enabled {
		pf2.draw(v.frame, v.gfx, start, end, passFront)
	}
	if v.pf[PF1].enabled {
		pf1.draw(v.frame, v.gfx, start, end, passFront)
	}

	v.drawSprites(start, end, true)

	v.frame.resolve(y0, y1, v.palette)
	return end
}

// updateScrollPositions resolves the latched scroll registers and
// rowscroll tables into every tilemap.
func (v *Video) updateScrollPositions() {
	var rows [rowScrollRows]int
	for i := range v.pf {
		c := &v.pf[i]
		narrow, wide := v.playfieldLayers(Playfield(i))
		bias := scrollBias[i]
		sy := c.scrollY()

		if c.rowScroll {
			table := rowScrollTable[i]
			for r := range rows {
				off := table + uint16(r*2)
				rows[r] = int(binary.LittleEndian.Uint16(v.vram[off:])) + bias
			}
			narrow.setRowScroll(rows[:], sy)
			if wide != nil {
				for r := range rows {
					rows[r] += wideScrollOffset
				}
				wide.setRowScroll(rows[:], sy)
			}
		} else {
			sx := c.scrollX() + bias
			narrow.setScroll(sx, sy)
			if wide != nil {
				wide.setScroll(sx+wideScrollOffset, sy)
			}
		}

		if Playfield(i) == PF1 {
			high := v.layers[layerPF1High]
			if c.rowScroll {
				high.setRowScroll(narrow.rowScrollX, sy)
			} else {
				high.setScroll(narrow.scrollX, sy)
			}
		}
	}

	if v.cfg.SpriteChip == SpriteChipAutoClear {
		v.spriteListEnd = spriteRAMSize - spriteEntrySize
	}
}

// updatePalette converts the dirty palette entries the band will use.
func (v *Video) updatePalette(layers ...*Tilemap) {
	var usage [paletteBanks]uint16
	usage[0] |= 1 << backgroundColor
	for i, t := range layers {
		if v.pf[i].enabled {
			t.usage(&usage)
		}
	}
	v.spriteUsage(&usage)
	v.palette.Update(&usage)
}
