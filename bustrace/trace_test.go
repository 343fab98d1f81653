package bustrace

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrace() string {
	return strings.Join([]string{
		"# sample",
		"game majtitl2",
		"tile 1 " + strings.Repeat("5", 64),
		"sprite 3 " + strings.Repeat("a", 256),
		"mw d0000 01 00 02 00  # setup",
		"frame",
		"line 10",
		"pw 9e e4 00",
		"frame",
		"line 20",
		"mw e0000 aa",
		"line 5",
		"mw e0001 bb",
		"",
	}, "\n")
}

func TestParse(t *testing.T) {
	tr, err := Parse(strings.NewReader(sampleTrace()))
	require.NoError(t, err)

	assert.Equal(t, "majtitl2", tr.Game)
	require.Contains(t, tr.Tiles, 1)
	assert.Equal(t, uint8(5), tr.Tiles[1][63])
	require.Contains(t, tr.Sprites, 3)
	assert.Equal(t, uint8(0xA), tr.Sprites[3][0])

	require.Len(t, tr.Setup, 1)
	assert.Equal(t, Write{Addr: 0xD0000, Data: []byte{1, 0, 2, 0}}, tr.Setup[0])

	require.Len(t, tr.Frames, 2)
	assert.Equal(t, []Write{{Port: true, Addr: 0x9E, Data: []byte{0xE4, 0x00}, Line: 10}}, tr.Frames[0].Writes)

	// writes are ordered by line
	ws := tr.Frames[1].Writes
	require.Len(t, ws, 2)
	assert.Equal(t, 5, ws[0].Line)
	assert.Equal(t, uint32(0xE0001), ws[0].Addr)
	assert.Equal(t, 20, ws[1].Line)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"unknown directive", "frame\nfoo 1", ErrSyntax},
		{"no frames", "game hook\n", ErrNoFrames},
		{"short tile", "tile 0 123\nframe", errPenCount},
		{"bad pen", "tile 0 " + strings.Repeat("g", 64) + "\nframe", errBadPen},
		{"missing game", "game\nframe", errMissingArg},
		{"missing bytes", "frame\nmw d0000", errMissingArg},
		{"bad address", "frame\nmw zz 01", ErrSyntax},
		{"wide port", "frame\npw 100 01", ErrSyntax},
		{"bad byte", "frame\nmw d0000 1ff", ErrSyntax},
	}
	for _, tt := range tests {
		_, err := Parse(strings.NewReader(tt.input))
		if !errors.Is(err, tt.err) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.err, err)
		}
	}
}

func TestParse_LineOutOfRange(t *testing.T) {
	_, err := Parse(strings.NewReader("frame\nline 256\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trace line 2")
}

func TestTrace_GfxSet(t *testing.T) {
	tr, err := Parse(strings.NewReader(sampleTrace()))
	require.NoError(t, err)

	g, err := tr.GfxSet()
	require.NoError(t, err)
	assert.Equal(t, 2, g.NumTiles())
	assert.Equal(t, 4, g.NumSprites())
}

func TestTrace_GfxSetEmpty(t *testing.T) {
	tr, err := Parse(strings.NewReader("frame\n"))
	require.NoError(t, err)

	g, err := tr.GfxSet()
	require.NoError(t, err)
	assert.Equal(t, 0, g.NumTiles())
	assert.Equal(t, 0, g.NumSprites())
}
