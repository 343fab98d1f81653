//go:build !libretro && !ios

package main

import (
	"flag"
	"log"
	"strconv"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/em92/adapter"
)

func main() {
	tracePath := flag.String("trace", "", "path to bus trace file (opens UI if not provided)")
	hudSpeedup := flag.Bool("hud-speedup", false, "track playfield 1 HUD text in a dedicated layer")
	rasterIRQ := flag.Bool("raster-irq", true, "enable raster interrupts")
	flag.Parse()

	factory := &adapter.Factory{}

	if *tracePath != "" {
		options := map[string]string{
			"hud_speedup": strconv.FormatBool(*hudSpeedup),
			"raster_irq":  strconv.FormatBool(*rasterIRQ),
		}
		if err := standalone.RunDirect(factory, *tracePath, "auto", options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
