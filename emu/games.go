package emu

import "sort"

// AddressMap selects the board memory map.
type AddressMap int

const (
	MapStandard AddressMap = iota
	MapLethalThunder
)

// Quirks are game-keyed workarounds. They are not general hardware
// behavior and stay off unless a game or the user asks for them.
type Quirks struct {
	// HUDSpeedup routes bank 0xC000 VRAM writes to the dedicated HUD layer.
	HUDSpeedup bool
	// EndOfVBlankIRQ raises an extra raster-vector interrupt on line 250.
	EndOfVBlankIRQ bool
	// RAMForce rewrites one work RAM byte every frame.
	RAMForce *RAMForce
}

// RAMForce is a work RAM byte held at a fixed value.
type RAMForce struct {
	Addr  uint32
	Value uint8
}

// GameInfo describes a known M92 board.
type GameInfo struct {
	Title      string
	Map        AddressMap
	SpriteChip SpriteChip
	RasterIRQ  bool
	VectorBase uint8
	Quirks     Quirks
}

const (
	defaultVectorBase = 0x80
	altVectorBase     = 0x20
)

// gameDatabase maps short game names to board settings.
var gameDatabase = map[string]GameInfo{
	// Blade Master
	"bmaster": {"Blade Master", MapStandard, SpriteChipDynamic, true, defaultVectorBase, Quirks{}},
	// Gunforce: Battle Fire Engulfed Terror Island
	"gunforce": {"Gunforce", MapStandard, SpriteChipDynamic, true, defaultVectorBase, Quirks{}},
	// Hook
	"hook": {"Hook", MapStandard, SpriteChipDynamic, true, defaultVectorBase, Quirks{}},
	// Undercover Cops
	"uccops": {"Undercover Cops", MapStandard, SpriteChipDynamic, true, defaultVectorBase, Quirks{}},
	// R-Type Leo
	"rtypeleo": {"R-Type Leo", MapStandard, SpriteChipDynamic, true, defaultVectorBase, Quirks{}},
	// Mystic Riders
	"mysticri": {"Mystic Riders", MapStandard, SpriteChipDynamic, true, defaultVectorBase, Quirks{}},
	// Gun Hohki
	"gunhohki": {"Gun Hohki", MapStandard, SpriteChipDynamic, true, defaultVectorBase, Quirks{}},
	// In The Hunt
	"inthunt": {"In The Hunt", MapStandard, SpriteChipDynamic, true, defaultVectorBase, Quirks{}},
	// Kaitei Daisensou
	"kaiteids": {"Kaitei Daisensou", MapStandard, SpriteChipDynamic, true, defaultVectorBase, Quirks{}},
	// Lethal Thunder
	"lethalth": {"Lethal Thunder", MapLethalThunder, SpriteChipDynamic, false, altVectorBase, Quirks{}},
	// Thunder Blaster (Japan)
	"thndblst": {"Thunder Blaster", MapLethalThunder, SpriteChipDynamic, false, altVectorBase, Quirks{}},
	// Major Title 2
	"majtitl2": {"Major Title 2", MapStandard, SpriteChipAutoClear, true, defaultVectorBase, Quirks{HUDSpeedup: true}},
	// The Irem Skins Game
	"skingame": {"The Irem Skins Game", MapStandard, SpriteChipAutoClear, true, defaultVectorBase, Quirks{HUDSpeedup: true}},
	// Perfect Soldiers
	"psoldier": {"Perfect Soldiers", MapStandard, SpriteChipAutoClear, true, defaultVectorBase, Quirks{}},
	// Dream Soccer '94
	"dsoccr94": {"Dream Soccer '94", MapStandard, SpriteChipAutoClear, true, defaultVectorBase, Quirks{EndOfVBlankIRQ: true}},
	// Gunforce 2
	"gunforc2": {"Gunforce 2", MapStandard, SpriteChipAutoClear, true, defaultVectorBase, Quirks{}},
	// Geo Storm
	"geostorm": {"Geo Storm", MapStandard, SpriteChipAutoClear, true, defaultVectorBase, Quirks{}},
	// Ninja Baseball Bat Man
	"nbbatman": {"Ninja Baseball Bat Man", MapStandard, SpriteChipAutoClear, true, defaultVectorBase, Quirks{}},
	// Superior Soldiers / Leagueman
	"leaguemn": {"Yakyuu Kakutou League-Man", MapStandard, SpriteChipAutoClear, true, defaultVectorBase, Quirks{}},
}

// LookupGame returns the board settings of a known game.
func LookupGame(name string) (GameInfo, bool) {
	info, ok := gameDatabase[name]
	return info, ok
}

// GameNames returns the known game names, sorted.
func GameNames() []string {
	names := make([]string, 0, len(gameDatabase))
	for name := range gameDatabase {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config is the machine configuration.
type Config struct {
	Game       string
	Map        AddressMap
	SpriteChip SpriteChip
	RasterIRQ  bool
	VectorBase uint8
	Quirks     Quirks
	Gfx        *GfxSet
}

// DefaultConfig returns the standard board with no quirks.
func DefaultConfig() Config {
	return Config{
		Map:        MapStandard,
		SpriteChip: SpriteChipDynamic,
		RasterIRQ:  true,
		VectorBase: defaultVectorBase,
	}
}

// ConfigForGame returns the configuration of a known game, or the default
// standard board for an unknown name.
func ConfigForGame(name string) Config {
	cfg := DefaultConfig()
	cfg.Game = name
	info, ok := LookupGame(name)
	if !ok {
		return cfg
	}
	cfg.Map = info.Map
	cfg.SpriteChip = info.SpriteChip
	cfg.RasterIRQ = info.RasterIRQ
	cfg.VectorBase = info.VectorBase
	cfg.Quirks = info.Quirks
	return cfg
}

func (c Config) videoConfig() VideoConfig {
	return VideoConfig{
		SpriteChip:     c.SpriteChip,
		RasterIRQ:      c.RasterIRQ,
		HUDSpeedup:     c.Quirks.HUDSpeedup,
		EndOfVBlankIRQ: c.Quirks.EndOfVBlankIRQ,
		Gfx:            c.Gfx,
	}
}
