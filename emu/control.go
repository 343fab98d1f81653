package emu

// WriteVRAM stores a VRAM byte and marks every tile cell that currently
// maps it as dirty.
func (v *Video) WriteVRAM(offset uint16, val uint8) {
	v.vram[offset] = val
	bank := offset & 0xC000

	hud := v.cfg.HUDSpeedup && bank == hudBank
	if hud {
		v.layers[layerPF1High].markTileDirty(int(offset&0x3FFF) / 4)
	}

	for i := range v.pf {
		pf := Playfield(i)
		c := &v.pf[i]
		if pf == PF1 && hud && c.vramPtr == hudBank {
			continue
		}
		narrow, wide := v.playfieldLayers(pf)
		if bank == c.vramPtr {
			narrow.markTileDirty(int((offset-c.vramPtr)&0x3FFF) / 4)
		}
		if wide != nil && (bank == c.vramPtr || bank == c.vramPtr+0x4000) {
			wide.markTileDirty(int((offset-c.vramPtr)&0x7FFF) / 4)
		}
	}
}

// WritePFControl latches a playfield control register. Registers 0-1 are
// the Y scroll and 4-5 the X scroll. Scroll takes effect at the next band.
func (v *Video) WritePFControl(pf Playfield, reg int, val uint8) {
	if pf < PF1 || pf > PF3 || reg < 0 || reg >= 8 {
		return
	}
	v.pf[pf].regs[reg] = val
}

// WriteMasterControl latches a master control register. Registers 0, 2
// and 4 configure playfields 1-3; 6 and 7 hold the raster interrupt line.
func (v *Video) WriteMasterControl(reg int, val uint8) {
	if reg < 0 || reg >= len(v.master) {
		return
	}
	v.master[reg] = val

	switch reg {
	case 0, 2, 4:
		v.configurePlayfield(Playfield(reg/2), val)
	case 6, 7:
		v.rasterIRQLine = int(uint16(v.master[7])<<8|uint16(v.master[6])) - rasterBias
		if !v.cfg.RasterIRQ && v.rasterIRQLine >= rasterBias {
			v.warn("raster IRQ line %d set on a machine without raster interrupts", v.rasterIRQLine)
		}
	}
}

// setLayerFlags latches the enable, rowscroll and shape bits of a
// playfield and returns the VRAM bank the value selects.
func (v *Video) setLayerFlags(pf Playfield, val uint8) uint16 {
	c := &v.pf[pf]
	c.enabled = val&0x10 == 0
	c.rowScroll = val&0x40 != 0
	c.wide = val&0x04 != 0
	if pf == PF2 || (pf == PF3 && v.cfg.HUDSpeedup) {
		c.wide = false
	}
	return uint16(val&0x03) * 0x4000
}

func (v *Video) configurePlayfield(pf Playfield, val uint8) {
	c := &v.pf[pf]
	ptr := v.setLayerFlags(pf, val)
	if ptr == c.vramPtr {
		return
	}
	c.vramPtr = ptr

	narrow, wide := v.playfieldLayers(pf)
	// The HUD layer already tracks bank 0xC000, so playfield 1 moving
	// there leaves the generic layer alone.
	skip := pf == PF1 && v.cfg.HUDSpeedup && ptr == hudBank
	narrow.setBase(ptr, !skip)
	if wide != nil {
		wide.setBase(ptr, true)
	}
}
