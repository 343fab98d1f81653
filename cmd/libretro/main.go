package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/em92/adapter"
)

func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadB, BitID: 4},      // Button 1
		{RetroID: libretro.JoypadA, BitID: 5},      // Button 2
		{RetroID: libretro.JoypadY, BitID: 6},      // Button 3
		{RetroID: libretro.JoypadStart, BitID: 7},  // Start
		{RetroID: libretro.JoypadSelect, BitID: 8}, // Coin
	})
}

func main() {}
