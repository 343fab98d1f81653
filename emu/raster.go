package emu

// RasterState is the scanline driver state. It is cleared at the end of
// every frame.
type RasterState struct {
	VBlank          bool
	RasterActive    bool // a raster interrupt fired this frame
	LastRedrawnLine int
	CurrentScanline int
}

// OnScanline advances the raster driver to line (0-255) and returns the
// interrupt the hardware raises on it. It must be called once per line in
// increasing order; bands between interrupts are composited as they
// complete.
func (v *Video) OnScanline(line int) InterruptRequest {
	r := &v.raster
	r.CurrentScanline = line

	switch {
	case v.cfg.RasterIRQ && line == v.rasterIRQLine:
		v.PartialRefresh(r.LastRedrawnLine, line+1)
		r.LastRedrawnLine = line + 1
		if r.LastRedrawnLine > visibleBottom {
			r.LastRedrawnLine = visibleBottom
		}
		r.RasterActive = true
		return IRQRaster

	case line == vblankLine:
		v.PartialRefresh(r.LastRedrawnLine, vblankLine)
		r.LastRedrawnLine = vblankLine
		r.VBlank = true
		return IRQVBlank

	case line == frameEndLine:
		*r = RasterState{}
		return IRQNone

	case v.cfg.EndOfVBlankIRQ && line == endOfVBlankLine:
		return IRQEndOfVBlank
	}
	return IRQNone
}
