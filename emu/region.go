package emu

import emucore "github.com/user-none/eblitui/api"

// Region is an alias for emucore.Region. Arcade boards have no region
// variants; the value only selects frontend defaults.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// Timing holds the board timing constants.
type Timing struct {
	CPUClockHz int // NEC V33 main CPU clock
	Scanlines  int // raster lines per frame
	FPS        int
}

// BoardTiming is the M92 video timing: 256 raster lines at 60 Hz.
var BoardTiming = Timing{
	CPUClockHz: 9000000,
	Scanlines:  rasterLines,
	FPS:        60,
}

// DefaultRegion returns the default region.
func DefaultRegion() Region {
	return RegionNTSC
}
