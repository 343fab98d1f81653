package emu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testROM() []byte {
	rom := make([]byte, 0x1000)
	for i := range rom {
		rom[i] = uint8(i * 3)
	}
	return rom
}

func TestSerialize_Size(t *testing.T) {
	e, err := NewEmulator(testROM(), DefaultConfig())
	require.NoError(t, err)

	data, err := e.Serialize()
	require.NoError(t, err)
	assert.Len(t, data, SerializeSize())
	assert.Equal(t, stateMagic, string(data[0:12]))
}

func TestSerialize_RoundTrip(t *testing.T) {
	src, err := NewEmulator(testROM(), DefaultConfig())
	require.NoError(t, err)

	b := src.Bus()
	b.Write(0xD0104, 0x01)
	b.Write(0xE0020, 0x5A)
	b.Write(0xF8010, 0x33)
	b.Write(0xF8802, 0x1F)
	b.Out(0x20, 2)
	b.Out(0x84, 0x10)
	b.Out(0x98, 0x46) // pf1 rowscroll, wide, bank 0x8000
	b.Out(0x9E, 0xE4)
	src.Ports().SetDIPSwitch(1, 0x5F)
	src.RunFrame()
	for line := 0; line < 120; line++ {
		src.Video().OnScanline(line)
	}

	data, err := src.Serialize()
	require.NoError(t, err)

	dst, err := NewEmulator(testROM(), DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, dst.Deserialize(data))

	v := dst.Video()
	assert.Equal(t, uint8(0x01), v.ReadVRAM(0x0104))
	assert.Equal(t, uint8(0x5A), dst.ReadWorkRAM(0x20))
	assert.Equal(t, uint8(0x33), v.ReadSpriteRAM(0x10))
	assert.Equal(t, uint8(0x1F), v.Palette().Read(2))
	assert.Equal(t, uint8(2), dst.Bus().ROMBank())
	assert.Equal(t, uint8(0x10), v.PFControl(PF1, 4))
	assert.Equal(t, uint8(0x5F), dst.Ports().dsw[0])
	assert.Equal(t, uint64(1), dst.FrameCount())

	// derived control state is rebuilt
	assert.Equal(t, 100, v.RasterIRQLine())
	assert.True(t, v.pf[PF1].rowScroll)
	assert.True(t, v.pf[PF1].wide)
	assert.Equal(t, uint16(0x8000), v.layers[layerPF1Wide].Base())
	assert.Equal(t, src.Video().Raster(), v.Raster())
}

func TestSerialize_RoundTripCPUState(t *testing.T) {
	src, err := NewEmulator(nil, DefaultConfig())
	require.NoError(t, err)
	cpu := &stateCPU{pos: 0x1234}
	src.AttachCPU(cpu)

	data, err := src.Serialize()
	require.NoError(t, err)

	dst, err := NewEmulator(nil, DefaultConfig())
	require.NoError(t, err)
	restored := &stateCPU{}
	dst.AttachCPU(restored)
	require.NoError(t, dst.Deserialize(data))
	assert.Equal(t, uint16(0x1234), restored.pos)
}

func TestVerifyState_Errors(t *testing.T) {
	e, err := NewEmulator(testROM(), DefaultConfig())
	require.NoError(t, err)
	data, err := e.Serialize()
	require.NoError(t, err)

	assert.Error(t, e.VerifyState(data[:100]), "short")

	bad := append([]byte(nil), data...)
	bad[0] = 'X'
	assert.Error(t, e.VerifyState(bad), "magic")

	bad = append([]byte(nil), data...)
	bad[12] = stateVersion + 1
	assert.Error(t, e.VerifyState(bad), "version")

	bad = append([]byte(nil), data...)
	bad[len(bad)-1] ^= 0xFF
	assert.Error(t, e.VerifyState(bad), "data CRC")

	other, err := NewEmulator([]byte{1, 2, 3}, DefaultConfig())
	require.NoError(t, err)
	assert.Error(t, other.VerifyState(data), "different ROM")

	assert.NoError(t, e.VerifyState(data))
}

func TestVideoDeserialize_BadVersion(t *testing.T) {
	v := makeTestVideo(t, VideoConfig{})
	buf := make([]byte, VideoSerializeSize)
	require.NoError(t, v.Serialize(buf))
	buf[0] = videoSerializeVersion + 1
	assert.Error(t, v.Deserialize(buf))
	assert.Error(t, v.Deserialize(buf[:10]))
}

// stateCPU is a CPU carrying a position in save states.
type stateCPU struct {
	pos uint16
}

func (c *stateCPU) RunScanline(line int) {}
func (c *stateCPU) RequestInterrupt(vector uint8) {}

func (c *stateCPU) SaveState(buf []byte) {
	buf[0] = uint8(c.pos)
	buf[1] = uint8(c.pos >> 8)
}

func (c *stateCPU) LoadState(buf []byte) error {
	c.pos = uint16(buf[0]) | uint16(buf[1])<<8
	return nil
}
