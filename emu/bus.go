package emu

import "hash/crc32"

const (
	workRAMSize = 0x10000
	maxROMSize  = 0x180000

	bankWindowBase = 0x100000
	bankStride     = 0x10000
	resetVectorROM = 0x7FFF0
)

// memRange is an inclusive bus address window.
type memRange struct {
	start, end uint32
}

func (r memRange) contains(addr uint32) bool {
	return addr >= r.start && addr <= r.end
}

type addressLayout struct {
	rom       memRange
	bank      memRange
	romMirror memRange
	vram      memRange
	hasBank   bool
}

var layouts = map[AddressMap]addressLayout{
	MapStandard: {
		rom:       memRange{0x00000, 0x9FFFF},
		bank:      memRange{0xA0000, 0xBFFFF},
		romMirror: memRange{0xC0000, 0xCFFFF},
		vram:      memRange{0xD0000, 0xDFFFF},
		hasBank:   true,
	},
	MapLethalThunder: {
		rom:  memRange{0x00000, 0x7FFFF},
		vram: memRange{0x80000, 0x8FFFF},
	},
}

// Shared by both maps.
var (
	workRAMRange       = memRange{0xE0000, 0xEFFFF}
	spriteRAMRange     = memRange{0xF8000, 0xF87FF}
	paletteRange       = memRange{0xF8800, 0xF8FFF}
	spriteControlRange = memRange{0xF9000, 0xF900F}
	videoControlRange  = memRange{0xF9800, 0xF9801}
	resetVectorRange   = memRange{0xFFFF0, 0xFFFFF}
)

// Bus is the V33 view of the board.
//
// Standard address map (20-bit):
//
//	0x00000-0x9FFFF  program ROM
//	0xA0000-0xBFFFF  banked ROM window (ROM 0x100000 + bank*0x10000)
//	0xC0000-0xCFFFF  program ROM mirror
//	0xD0000-0xDFFFF  VRAM
//	0xE0000-0xEFFFF  work RAM
//	0xF8000-0xF87FF  sprite RAM
//	0xF8800-0xF8FFF  palette RAM
//	0xF9000-0xF900F  sprite control
//	0xF9800-0xF9801  video control
//	0xFFFF0-0xFFFFF  reset vector (ROM 0x7FFF0)
//
// The Lethal Thunder map has ROM at 0x00000-0x7FFFF, VRAM at
// 0x80000-0x8FFFF and no banked window; the rest is shared.
//
// I/O ports (8-bit):
//
//	0x00-0x01  W sound latch       R P1, P2
//	0x02-0x03  W coin counters     R system (bit 7 vblank), DSW3
//	0x04-0x05                      R DSW1, DSW2
//	0x06-0x07                      R P3, P4
//	0x08                           R sound status
//	0x20-0x21  W ROM bank
//	0x40-0x43  W interrupt controller (ignored)
//	0x80-0x9F  W playfield 1-3 and master control
//	0xA0-0xA1  W sprite buffer trigger
type Bus struct {
	rom    []byte
	ram    [workRAMSize]byte
	romCRC uint32
	layout addressLayout
	video  *Video
	ports  *Ports

	bank         uint8
	soundLatch   uint8
	coinCounters [2]uint8
}

// NewBus creates the board bus over the given program ROM.
func NewBus(rom []byte, m AddressMap, video *Video, ports *Ports) *Bus {
	if len(rom) > maxROMSize {
		rom = rom[:maxROMSize]
	}
	layout, ok := layouts[m]
	if !ok {
		layout = layouts[MapStandard]
	}
	return &Bus{
		rom:    rom,
		romCRC: crc32.ChecksumIEEE(rom),
		layout: layout,
		video:  video,
		ports:  ports,
	}
}

func (b *Bus) romByte(offset uint32) uint8 {
	if offset >= uint32(len(b.rom)) {
		return 0xFF
	}
	return b.rom[offset]
}

// Read returns the byte at a 20-bit address.
func (b *Bus) Read(addr uint32) uint8 {
	addr &= 0xFFFFF
	l := &b.layout
	switch {
	case l.rom.contains(addr):
		return b.romByte(addr)
	case l.hasBank && l.bank.contains(addr):
		return b.romByte(bankWindowBase + uint32(b.bank&7)*bankStride + addr - l.bank.start)
	case l.hasBank && l.romMirror.contains(addr):
		return b.romByte(addr - l.romMirror.start)
	case l.vram.contains(addr):
		return b.video.ReadVRAM(uint16(addr - l.vram.start))
	case workRAMRange.contains(addr):
		return b.ram[addr-workRAMRange.start]
	case spriteRAMRange.contains(addr):
		return b.video.ReadSpriteRAM(uint16(addr - spriteRAMRange.start))
	case paletteRange.contains(addr):
		return b.video.Palette().Read(uint16(addr - paletteRange.start))
	case spriteControlRange.contains(addr):
		return b.video.ReadSpriteControl(int(addr - spriteControlRange.start))
	case resetVectorRange.contains(addr):
		return b.romByte(resetVectorROM + addr - resetVectorRange.start)
	}
	return 0xFF
}

// Write stores a byte at a 20-bit address. Writes to ROM and unmapped
// addresses are ignored.
func (b *Bus) Write(addr uint32, val uint8) {
	addr &= 0xFFFFF
	l := &b.layout
	switch {
	case l.vram.contains(addr):
		b.video.WriteVRAM(uint16(addr-l.vram.start), val)
	case workRAMRange.contains(addr):
		b.ram[addr-workRAMRange.start] = val
	case spriteRAMRange.contains(addr):
		b.video.WriteSpriteRAM(uint16(addr-spriteRAMRange.start), val)
	case paletteRange.contains(addr):
		b.video.Palette().Write(uint16(addr-paletteRange.start), val)
	case spriteControlRange.contains(addr):
		b.video.WriteSpriteControl(int(addr-spriteControlRange.start), val)
	case videoControlRange.contains(addr):
		b.video.WriteVideoControl(int(addr-videoControlRange.start), val)
	}
}

// In reads an I/O port. Unmapped ports read 0xFF.
func (b *Bus) In(port uint8) uint8 {
	if v, ok := b.ports.Read(port); ok {
		return v
	}
	if port == 0x08 {
		// no sound board attached
		return 0x00
	}
	return 0xFF
}

// Out writes an I/O port.
func (b *Bus) Out(port uint8, val uint8) {
	switch {
	case port == 0x00:
		b.soundLatch = val
	case port == 0x02 || port == 0x03:
		b.coinCounters[port-0x02] = val
	case port == 0x20:
		b.bank = val
	case port >= 0x80 && port <= 0x87:
		b.video.WritePFControl(PF1, int(port-0x80), val)
	case port >= 0x88 && port <= 0x8F:
		b.video.WritePFControl(PF2, int(port-0x88), val)
	case port >= 0x90 && port <= 0x97:
		b.video.WritePFControl(PF3, int(port-0x90), val)
	case port >= 0x98 && port <= 0x9F:
		b.video.WriteMasterControl(int(port-0x98), val)
	case port == 0xA0 || port == 0xA1:
		b.video.WriteSpriteBufferTrigger(int(port-0xA0), val)
	}
}

// SoundLatch returns the last byte written to the sound latch.
func (b *Bus) SoundLatch() uint8 {
	return b.soundLatch
}

// ROMBank returns the selected ROM bank.
func (b *Bus) ROMBank() uint8 {
	return b.bank
}
