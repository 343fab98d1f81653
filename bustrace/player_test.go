package bustrace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type busWrite struct {
	port bool
	addr uint32
	val  uint8
}

// recordBus records every write it receives.
type recordBus struct {
	writes []busWrite
}

func (b *recordBus) Write(addr uint32, val uint8) {
	b.writes = append(b.writes, busWrite{addr: addr, val: val})
}

func (b *recordBus) Out(port uint8, val uint8) {
	b.writes = append(b.writes, busWrite{port: true, addr: uint32(port), val: val})
}

func makeTestPlayer(t *testing.T) (*Player, *recordBus) {
	t.Helper()
	tr, err := Parse(strings.NewReader(sampleTrace()))
	require.NoError(t, err)
	p := NewPlayer(tr)
	b := &recordBus{}
	p.SetBus(b)
	return p, b
}

func runFrame(p *Player) {
	for line := 0; line <= maxLine; line++ {
		p.RunScanline(line)
	}
}

func TestPlayer_SetupOnce(t *testing.T) {
	p, b := makeTestPlayer(t)

	p.RunScanline(0)
	require.Len(t, b.writes, 4)
	assert.Equal(t, busWrite{addr: 0xD0000, val: 1}, b.writes[0])
	assert.Equal(t, busWrite{addr: 0xD0003, val: 0}, b.writes[3])

	p.RunScanline(1)
	assert.Len(t, b.writes, 4, "setup replayed")
}

func TestPlayer_WritesOnTheirLine(t *testing.T) {
	p, b := makeTestPlayer(t)

	for line := 0; line < 10; line++ {
		p.RunScanline(line)
	}
	assert.Len(t, b.writes, 4)

	p.RunScanline(10)
	require.Len(t, b.writes, 6)
	assert.Equal(t, busWrite{port: true, addr: 0x9E, val: 0xE4}, b.writes[4])
	assert.Equal(t, busWrite{port: true, addr: 0x9F, val: 0x00}, b.writes[5])
}

func TestPlayer_Loops(t *testing.T) {
	p, b := makeTestPlayer(t)

	runFrame(p)
	assert.Equal(t, 1, p.Frame())
	runFrame(p)
	assert.Equal(t, 0, p.Frame())
	assert.Equal(t, 1, p.Loops())

	// setup, frame 0, frame 1
	assert.Len(t, b.writes, 4+2+2)
	assert.Equal(t, uint32(0xE0001), b.writes[6].addr)

	runFrame(p)
	assert.Len(t, b.writes, 4+2+2+2)
}

func TestPlayer_NoBus(t *testing.T) {
	tr, err := Parse(strings.NewReader(sampleTrace()))
	require.NoError(t, err)
	p := NewPlayer(tr)
	runFrame(p)
	assert.Equal(t, 0, p.Frame())
}

func TestPlayer_Vectors(t *testing.T) {
	p, _ := makeTestPlayer(t)
	for i := 0; i < maxVectors+3; i++ {
		p.RequestInterrupt(uint8(i))
	}
	v := p.Vectors()
	require.Len(t, v, maxVectors)
	assert.Equal(t, uint8(3), v[0])
}

func TestPlayer_State(t *testing.T) {
	p, b := makeTestPlayer(t)
	runFrame(p)
	p.RunScanline(5)

	buf := make([]byte, 16)
	p.SaveState(buf)

	q, qb := makeTestPlayer(t)
	require.NoError(t, q.LoadState(buf))
	assert.Equal(t, 1, q.Frame())

	// the restored player neither replays setup nor the line 5 write
	for line := 6; line <= maxLine; line++ {
		p.RunScanline(line)
		q.RunScanline(line)
	}
	assert.Equal(t, b.writes[len(b.writes)-1:], qb.writes)
	assert.Equal(t, p.Frame(), q.Frame())
}

func TestPlayer_LoadStateOutOfRange(t *testing.T) {
	p, _ := makeTestPlayer(t)
	buf := make([]byte, 16)
	buf[0] = 9
	assert.Error(t, p.LoadState(buf))
}
