package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/em92/bustrace"
	"github.com/user-none/em92/emu"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for the M92 board. Content is a
// bus trace; the main CPU is not emulated.
type Factory struct{}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "em92",
		ConsoleName:     "Irem M92",
		Extensions:      []string{".m92trace", ".txt"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.MaxScreenHeight,
		AspectRatio:     4.0 / 3.0,
		SampleRate:      48000,
		Buttons: []emucore.Button{
			{Name: "Button 1", ID: 4, DefaultKey: "J", DefaultPad: "A"},
			{Name: "Button 2", ID: 5, DefaultKey: "K", DefaultPad: "B"},
			{Name: "Button 3", ID: 6, DefaultKey: "L", DefaultPad: "X"},
			{Name: "Start", ID: 7, DefaultKey: "Enter", DefaultPad: "Start"},
			{Name: "Coin", ID: 8, DefaultKey: "5", DefaultPad: "Back"},
		},
		Players: 4,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         "hud_speedup",
				Label:       "HUD Speedup",
				Description: "Track playfield 1 HUD text in a dedicated layer (safe only for games that use it)",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
				Category:    emucore.CoreOptionCategoryVideo,
			},
			{
				Key:         "raster_irq",
				Label:       "Raster Interrupts",
				Description: "Raise raster interrupts and redraw partial bands on the trigger line",
				Type:        emucore.CoreOptionBool,
				Default:     "true",
				Category:    emucore.CoreOptionCategoryVideo,
			},
		},
		RDBName:       "MAME",
		ThumbnailRepo: "MAME",
		DataDirName:   "em92",
		ConsoleID:     0,
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
	}
}

// CreateEmulator creates a board from bus trace data. The region has no
// effect on arcade timing.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	e, _, err := bustrace.NewMachine(rom, "")
	if err != nil {
		return nil, err
	}
	e.SetRegion(region)
	return e, nil
}

// DetectRegion returns the default region. Arcade boards have no region.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emu.DefaultRegion(), false
}
