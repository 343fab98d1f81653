package emu

import (
	"testing"

	emucore "github.com/user-none/eblitui/api"
)

// scriptCPU performs scripted port writes on given lines and records the
// interrupt vectors it is handed.
type scriptCPU struct {
	bus     *Bus
	writes  map[int][][2]uint8
	vectors []uint8
	lines   int
}

func (c *scriptCPU) RunScanline(line int) {
	c.lines++
	for _, w := range c.writes[line] {
		c.bus.Out(w[0], w[1])
	}
}

func (c *scriptCPU) RequestInterrupt(vector uint8) {
	c.vectors = append(c.vectors, vector)
}

func makeTestEmulator(t *testing.T, cfg Config) *Emulator {
	t.Helper()
	e, err := NewEmulator(nil, cfg)
	if err != nil {
		t.Fatalf("NewEmulator: %v", err)
	}
	return &e
}

func TestEmulator_RunFrameVBlank(t *testing.T) {
	e := makeTestEmulator(t, DefaultConfig())
	cpu := &scriptCPU{bus: e.Bus()}
	e.AttachCPU(cpu)

	e.RunFrame()
	if cpu.lines != rasterLines {
		t.Errorf("expected %d lines run, got %d", rasterLines, cpu.lines)
	}
	if len(cpu.vectors) != 1 || cpu.vectors[0] != 0x20 {
		t.Errorf("expected vblank vector 0x20, got %v", cpu.vectors)
	}
	if e.FrameCount() != 1 {
		t.Errorf("expected frame count 1, got %d", e.FrameCount())
	}
}

func TestEmulator_InterruptOrder(t *testing.T) {
	e := makeTestEmulator(t, DefaultConfig())
	cpu := &scriptCPU{
		bus: e.Bus(),
		writes: map[int][][2]uint8{
			0:  {{0x9E, 0xE4}, {0x9F, 0x00}}, // raster line 100
			50: {{0xA0, 0x00}},               // buffer sprites
		},
	}
	e.AttachCPU(cpu)

	e.RunFrame()
	want := []uint8{0x21, 0x22, 0x20}
	if len(cpu.vectors) != len(want) {
		t.Fatalf("expected vectors %v, got %v", want, cpu.vectors)
	}
	for i := range want {
		if cpu.vectors[i] != want[i] {
			t.Errorf("vector %d: expected 0x%02X, got 0x%02X", i, want[i], cpu.vectors[i])
		}
	}
}

func TestEmulator_AltVectorBase(t *testing.T) {
	e := makeTestEmulator(t, ConfigForGame("lethalth"))
	if v := e.InterruptVector(IRQVBlank); v != 0x08 {
		t.Errorf("vblank: expected 0x08, got 0x%02X", v)
	}
	if v := e.InterruptVector(IRQSpriteBuffer); v != 0x09 {
		t.Errorf("sprite: expected 0x09, got 0x%02X", v)
	}
	if v := e.InterruptVector(IRQEndOfVBlank); v != 0x0A {
		t.Errorf("end of vblank: expected 0x0A, got 0x%02X", v)
	}
}

func TestEmulator_NoCPU(t *testing.T) {
	e := makeTestEmulator(t, DefaultConfig())
	e.RunFrame()
	e.RunFrame()
	if e.FrameCount() != 2 {
		t.Errorf("expected 2 frames, got %d", e.FrameCount())
	}
}

func TestEmulator_RAMForce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quirks.RAMForce = &RAMForce{Addr: 0xE0010, Value: 0x42}
	e := makeTestEmulator(t, cfg)

	e.RunFrame()
	if e.ReadWorkRAM(0x10) != 0x42 {
		t.Errorf("expected forced byte 0x42, got 0x%02X", e.ReadWorkRAM(0x10))
	}
}

func TestEmulator_SetInput(t *testing.T) {
	e := makeTestEmulator(t, DefaultConfig())

	e.SetInput(0, 1<<emucore.ButtonUp|1<<buttonFire2|1<<buttonStart)
	e.SetInput(1, 1<<buttonCoin)
	e.SetInput(2, 1<<emucore.ButtonLeft|1<<buttonStart)

	if e.Ports().players[0] != InputUp|InputButton2 {
		t.Errorf("player 1: unexpected bits 0x%02X", e.Ports().players[0])
	}
	if e.Ports().players[2] != InputLeft {
		t.Errorf("player 3: unexpected bits 0x%02X", e.Ports().players[2])
	}
	if e.Ports().system != SystemStart1|SystemCoin2 {
		t.Errorf("unexpected system bits 0x%02X", e.Ports().system)
	}

	e.SetInput(0, 0)
	if e.Ports().system != SystemCoin2 {
		t.Errorf("expected start 1 released, got 0x%02X", e.Ports().system)
	}
}

func TestEmulator_SetOption(t *testing.T) {
	e := makeTestEmulator(t, DefaultConfig())

	e.SetOption("hud_speedup", "true")
	if !e.Video().cfg.HUDSpeedup || !e.Config().Quirks.HUDSpeedup {
		t.Error("expected HUD speedup on")
	}
	e.SetOption("raster_irq", "false")
	if e.Video().cfg.RasterIRQ {
		t.Error("expected raster interrupts off")
	}
	e.SetOption("unknown", "true")
}

func TestEmulator_FrontendSurface(t *testing.T) {
	e := makeTestEmulator(t, DefaultConfig())
	e.RunFrame()

	if n := len(e.GetAudioSamples()); n != samplesPerFrame*2 {
		t.Errorf("expected %d samples, got %d", samplesPerFrame*2, n)
	}
	if len(e.GetFramebuffer()) != e.GetFramebufferStride()*ScreenHeight {
		t.Error("framebuffer size does not match stride")
	}
	if e.GetActiveHeight() != ScreenHeight {
		t.Errorf("expected height %d, got %d", ScreenHeight, e.GetActiveHeight())
	}
	timing := e.GetTiming()
	if timing.FPS != 60 || timing.Scanlines != rasterLines {
		t.Errorf("unexpected timing %+v", timing)
	}
	e.SetRegion(RegionPAL)
	if e.GetRegion() != RegionPAL {
		t.Error("expected region stored")
	}
}

func TestEmulator_Memory(t *testing.T) {
	e := makeTestEmulator(t, DefaultConfig())
	e.Bus().Write(0xE0100, 0xAA)
	e.Bus().Write(0xE0101, 0xBB)

	buf := make([]byte, 2)
	if n := e.ReadMemory(0x100, buf); n != 2 || buf[0] != 0xAA || buf[1] != 0xBB {
		t.Errorf("ReadMemory: n=%d buf=%v", n, buf)
	}
	if n := e.ReadMemory(0xFFFF, make([]byte, 4)); n != 1 {
		t.Errorf("expected read to stop at the end of work RAM, got %d", n)
	}

	ram := e.ReadRegion(emucore.MemorySystemRAM)
	if len(ram) != workRAMSize || ram[0x100] != 0xAA {
		t.Error("unexpected work RAM region")
	}
	ram[0] = 0x11
	e.WriteRegion(emucore.MemorySystemRAM, ram)
	if e.ReadWorkRAM(0) != 0x11 {
		t.Error("expected region write applied")
	}
	if len(e.MemoryMap()) != 1 {
		t.Errorf("expected one region, got %d", len(e.MemoryMap()))
	}
}
