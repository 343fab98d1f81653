package emu

const (
	paletteRAMSize  = 0x800
	paletteEntries  = paletteRAMSize / 2
	paletteBanks    = paletteEntries / 16
	backgroundColor = 0
)

// Palette is the board palette RAM: 1024 little-endian xBBBBBGGGGGRRRRR
// entries. Entries are converted to RGB only when both dirty and used by
// the band being drawn.
type Palette struct {
	ram    [paletteRAMSize]uint8
	colors [paletteEntries][3]uint8
	dirty  [paletteEntries]bool
}

// NewPalette creates a palette with every entry dirty.
func NewPalette() *Palette {
	p := &Palette{}
	p.markAllDirty()
	return p
}

// Read returns a palette RAM byte.
func (p *Palette) Read(offset uint16) uint8 {
	return p.ram[offset&(paletteRAMSize-1)]
}

// Write stores a palette RAM byte and marks its entry dirty.
func (p *Palette) Write(offset uint16, val uint8) {
	offset &= paletteRAMSize - 1
	p.ram[offset] = val
	p.dirty[offset>>1] = true
}

// Dirty reports whether an entry is waiting to be converted.
func (p *Palette) Dirty(index int) bool {
	return p.dirty[index&(paletteEntries-1)]
}

func (p *Palette) markAllDirty() {
	for i := range p.dirty {
		p.dirty[i] = true
	}
}

// Update converts every dirty entry whose pen is set in usage and returns
// the number of entries converted. usage holds one pen mask per bank of 16.
func (p *Palette) Update(usage *[paletteBanks]uint16) int {
	n := 0
	for bank, mask := range usage {
		if mask == 0 {
			continue
		}
		for pen := 0; pen < 16; pen++ {
			i := bank*16 + pen
			if mask&(1<<uint(pen)) == 0 || !p.dirty[i] {
				continue
			}
			p.colors[i] = p.convert(i)
			p.dirty[i] = false
			n++
		}
	}
	return n
}

// convert expands 5-bit components to 8 bits.
func (p *Palette) convert(index int) [3]uint8 {
	w := uint16(p.ram[index*2]) | uint16(p.ram[index*2+1])<<8
	r := uint8(w & 0x1F)
	g := uint8((w >> 5) & 0x1F)
	b := uint8((w >> 10) & 0x1F)
	return [3]uint8{
		r<<3 | r>>2,
		g<<3 | g>>2,
		b<<3 | b>>2,
	}
}

// Color returns the last converted RGB value of an entry.
func (p *Palette) Color(index uint16) (r, g, b uint8) {
	c := p.colors[index&(paletteEntries-1)]
	return c[0], c[1], c[2]
}
