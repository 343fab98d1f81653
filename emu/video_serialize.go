package emu

import (
	"encoding/binary"
	"errors"
)

const (
	videoSerializeVersion = 1
	// VideoSerializeSize is the total bytes needed for video serialization.
	// version(1) + vram + spriteRAM + spriteBuffer + spriteControl +
	// videoControl + pf regs(24) + master(8) + palette RAM +
	// vblank(1) + rasterActive(1) + lastRedrawn(2) + currentScanline(2) +
	// spriteListEnd(2)
	VideoSerializeSize = 1 + vramSize + 2*spriteRAMSize + spriteControlSize +
		videoControlSize + 3*8 + 8 + paletteRAMSize + 6 + 2
)

// Serialize writes video state to buf. buf must be at least
// VideoSerializeSize bytes. Decoded tile caches are not saved.
func (v *Video) Serialize(buf []byte) error {
	if len(buf) < VideoSerializeSize {
		return errors.New("video serialize buffer too small")
	}

	offset := 0

	buf[offset] = videoSerializeVersion
	offset++

	offset += copy(buf[offset:], v.vram[:])
	offset += copy(buf[offset:], v.spriteRAM[:])
	offset += copy(buf[offset:], v.spriteBuffer[:])
	offset += copy(buf[offset:], v.spriteControl[:])
	offset += copy(buf[offset:], v.videoControl[:])
	for i := range v.pf {
		offset += copy(buf[offset:], v.pf[i].regs[:])
	}
	offset += copy(buf[offset:], v.master[:])
	offset += copy(buf[offset:], v.palette.ram[:])

	// Raster state
	buf[offset] = boolByte(v.raster.VBlank)
	offset++
	buf[offset] = boolByte(v.raster.RasterActive)
	offset++
	binary.LittleEndian.PutUint16(buf[offset:], uint16(v.raster.LastRedrawnLine))
	offset += 2
	binary.LittleEndian.PutUint16(buf[offset:], uint16(v.raster.CurrentScanline))
	offset += 2

	binary.LittleEndian.PutUint16(buf[offset:], uint16(v.spriteListEnd))

	return nil
}

// Deserialize restores video state from buf. Control register effects are
// re-derived from the latched registers and every cache is invalidated.
func (v *Video) Deserialize(buf []byte) error {
	if len(buf) < VideoSerializeSize {
		return errors.New("video deserialize buffer too small")
	}

	offset := 0

	version := buf[offset]
	if version != videoSerializeVersion {
		return errors.New("unsupported video serialize version")
	}
	offset++

	offset += copy(v.vram[:], buf[offset:])
	offset += copy(v.spriteRAM[:], buf[offset:])
	offset += copy(v.spriteBuffer[:], buf[offset:])
	offset += copy(v.spriteControl[:], buf[offset:])
	offset += copy(v.videoControl[:], buf[offset:])
	for i := range v.pf {
		offset += copy(v.pf[i].regs[:], buf[offset:])
	}
	offset += copy(v.master[:], buf[offset:])
	offset += copy(v.palette.ram[:], buf[offset:])

	v.raster.VBlank = buf[offset] != 0
	offset++
	v.raster.RasterActive = buf[offset] != 0
	offset++
	v.raster.LastRedrawnLine = int(binary.LittleEndian.Uint16(buf[offset:]))
	offset += 2
	v.raster.CurrentScanline = int(binary.LittleEndian.Uint16(buf[offset:]))
	offset += 2

	v.spriteListEnd = int(binary.LittleEndian.Uint16(buf[offset:]))

	v.restoreControl()
	return nil
}

// restoreControl rebuilds the playfield state and raster line from the
// master registers and marks every layer and palette entry dirty.
func (v *Video) restoreControl() {
	for i := range v.pf {
		c := &v.pf[i]
		c.vramPtr = v.setLayerFlags(Playfield(i), v.master[i*2])

		narrow, wide := v.playfieldLayers(Playfield(i))
		narrow.setBase(c.vramPtr, true)
		if wide != nil {
			wide.setBase(c.vramPtr, true)
		}
	}
	v.layers[layerPF1High].markAllDirty()
	v.rasterIRQLine = int(uint16(v.master[7])<<8|uint16(v.master[6])) - rasterBias
	v.pending = nil
	v.palette.markAllDirty()
}
