package emu

import (
	"fmt"

	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.SaveStater = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

// Flat address boundaries for ReadMemory.
const (
	workRAMStart = 0x000000
	workRAMEnd   = 0x00FFFF
)

// Button bits beyond the d-pad, matching the adapter's button IDs.
const (
	buttonFire1 = 4
	buttonFire2 = 5
	buttonFire3 = 6
	buttonStart = 7
	buttonCoin  = 8
)

// CPU is the main processor driving the board. It runs one raster line of
// bus activity per call and takes interrupts by vector number.
type CPU interface {
	RunScanline(line int)
	RequestInterrupt(vector uint8)
}

// CPUStater is implemented by CPUs whose progress belongs in save states.
// The buffer is cpuStateSize bytes.
type CPUStater interface {
	SaveState(buf []byte)
	LoadState(buf []byte) error
}

// Emulator is one M92 board: bus, video hardware and input ports, driven
// by an attached CPU.
type Emulator struct {
	cfg    Config
	bus    *Bus
	video  *Video
	ports  *Ports
	cpu    CPU
	region Region
	timing Timing

	frame uint64

	// Pre-allocated audio buffer for external consumption
	audioBuffer []int16
}

// NewEmulator creates a board for the given program ROM and configuration.
func NewEmulator(rom []byte, cfg Config) (Emulator, error) {
	video, err := NewVideo(cfg.videoConfig())
	if err != nil {
		return Emulator{}, fmt.Errorf("video init: %w", err)
	}
	ports := NewPorts(video)
	bus := NewBus(rom, cfg.Map, video, ports)

	return Emulator{
		cfg:         cfg,
		bus:         bus,
		video:       video,
		ports:       ports,
		region:      DefaultRegion(),
		timing:      BoardTiming,
		audioBuffer: make([]int16, 0, samplesPerFrame*2),
	}, nil
}

// AttachCPU connects the processor that drives the bus.
func (e *Emulator) AttachCPU(cpu CPU) {
	e.cpu = cpu
}

// Bus returns the board bus.
func (e *Emulator) Bus() *Bus {
	return e.bus
}

// Video returns the video hardware.
func (e *Emulator) Video() *Video {
	return e.video
}

// Ports returns the input ports.
func (e *Emulator) Ports() *Ports {
	return e.ports
}

// Config returns the machine configuration.
func (e *Emulator) Config() Config {
	return e.cfg
}

// FrameCount returns the number of frames run.
func (e *Emulator) FrameCount() uint64 {
	return e.frame
}

// RunFrame executes one frame: for each raster line the CPU runs, then
// the video hardware advances and any interrupt is delivered.
func (e *Emulator) RunFrame() {
	if f := e.cfg.Quirks.RAMForce; f != nil {
		e.bus.Write(f.Addr, f.Value)
	}

	for line := 0; line < e.timing.Scanlines; line++ {
		if e.cpu != nil {
			e.cpu.RunScanline(line)
		}
		for _, req := range e.video.TakePendingInterrupts() {
			e.deliver(req)
		}
		if req := e.video.OnScanline(line); req != IRQNone {
			e.deliver(req)
		}
	}

	e.frame++
	e.mixAudio()
}

// InterruptVector returns the vector number the board presents for req.
func (e *Emulator) InterruptVector(req InterruptRequest) uint8 {
	return uint8((int(e.cfg.VectorBase) + 4*req.vectorOffset()) / 4)
}

func (e *Emulator) deliver(req InterruptRequest) {
	if e.cpu == nil || req == IRQNone {
		return
	}
	e.cpu.RequestInterrupt(e.InterruptVector(req))
}

// SetInput unpacks a button bitmask and sets the input state of a player.
// Start and coin feed the system port for players 1 and 2.
func (e *Emulator) SetInput(player int, buttons uint32) {
	var bits uint8
	if buttons&(1<<emucore.ButtonUp) != 0 {
		bits |= InputUp
	}
	if buttons&(1<<emucore.ButtonDown) != 0 {
		bits |= InputDown
	}
	if buttons&(1<<emucore.ButtonLeft) != 0 {
		bits |= InputLeft
	}
	if buttons&(1<<emucore.ButtonRight) != 0 {
		bits |= InputRight
	}
	if buttons&(1<<buttonFire1) != 0 {
		bits |= InputButton1
	}
	if buttons&(1<<buttonFire2) != 0 {
		bits |= InputButton2
	}
	if buttons&(1<<buttonFire3) != 0 {
		bits |= InputButton3
	}
	e.ports.SetPlayer(player, bits)

	if player > 1 {
		return
	}
	start, coin := SystemStart1, SystemCoin1
	if player == 1 {
		start, coin = SystemStart2, SystemCoin2
	}
	sys := e.ports.system &^ (start | coin)
	if buttons&(1<<buttonStart) != 0 {
		sys |= start
	}
	if buttons&(1<<buttonCoin) != 0 {
		sys |= coin
	}
	e.ports.SetSystem(sys)
}

// GetFramebuffer returns raw RGBA pixel data for current frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.video.Framebuffer().Pix()
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return e.video.Framebuffer().Stride()
}

// GetActiveHeight returns the visible display height.
func (e *Emulator) GetActiveHeight() int {
	return ScreenHeight
}

// GetRegion returns the emulator's region setting.
func (e *Emulator) GetRegion() Region {
	return e.region
}

// SetRegion records the region. Board timing does not change.
func (e *Emulator) SetRegion(region Region) {
	e.region = region
}

// GetTiming returns FPS and scanline count.
func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       e.timing.FPS,
		Scanlines: e.timing.Scanlines,
	}
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case "hud_speedup":
		e.cfg.Quirks.HUDSpeedup = value == "true"
		e.video.SetHUDSpeedup(e.cfg.Quirks.HUDSpeedup)
	case "raster_irq":
		e.cfg.RasterIRQ = value == "true"
		e.video.SetRasterIRQ(e.cfg.RasterIRQ)
	}
}

// ReadWorkRAM reads a single byte of work RAM.
func (e *Emulator) ReadWorkRAM(addr uint16) byte {
	return e.bus.ram[addr]
}

// GetWorkRAM returns a copy of work RAM.
func (e *Emulator) GetWorkRAM() []byte {
	out := make([]byte, workRAMSize)
	copy(out, e.bus.ram[:])
	return out
}

// SetWorkRAM writes data into work RAM.
func (e *Emulator) SetWorkRAM(data []byte) {
	copy(e.bus.ram[:], data)
}

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		if cur < workRAMStart || cur > workRAMEnd {
			return count
		}
		buf[i] = e.ReadWorkRAM(uint16(cur - workRAMStart))
		count++
	}
	return count
}

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: workRAMSize},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	if regionType == emucore.MemorySystemRAM {
		return e.GetWorkRAM()
	}
	return nil
}

// WriteRegion writes data to the specified memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	if regionType == emucore.MemorySystemRAM {
		e.SetWorkRAM(data)
	}
}
