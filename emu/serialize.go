package emu

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "eM92SState\x00\x00"
	stateHeaderSize = 22 // magic(12) + version(2) + romCRC(4) + dataCRC(4)
)

// Fixed serialization sizes for inline components
const (
	// ram + bank + soundLatch + coinCounters
	busSerializeSize = workRAMSize + 1 + 1 + 2
	// players + system + dsw
	portsSerializeSize = numPlayers + 1 + 3
	// frame counter
	emulatorSerializeSize = 8
	// reserved for the attached CPU
	cpuStateSize = 16
)

// boolByte converts a bool to a uint8 (0 or 1).
func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// SerializeSize returns the total size in bytes of a save state.
func SerializeSize() int {
	return stateHeaderSize +
		VideoSerializeSize +
		busSerializeSize +
		portsSerializeSize +
		emulatorSerializeSize +
		cpuStateSize
}

// Serialize creates a save state and returns it as a byte slice.
func (e *Emulator) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize())

	// Write header
	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], e.bus.romCRC)

	offset := stateHeaderSize

	if err := e.video.Serialize(data[offset:]); err != nil {
		return nil, err
	}
	offset += VideoSerializeSize

	offset = e.serializeBus(data, offset)
	offset = e.serializePorts(data, offset)

	binary.LittleEndian.PutUint64(data[offset:], e.frame)
	offset += emulatorSerializeSize

	if s, ok := e.cpu.(CPUStater); ok {
		s.SaveState(data[offset : offset+cpuStateSize])
	}

	// Calculate and write data CRC32 (over everything after header)
	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores emulator state from a save state byte slice.
func (e *Emulator) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize

	if err := e.video.Deserialize(data[offset:]); err != nil {
		return err
	}
	offset += VideoSerializeSize

	offset = e.deserializeBus(data, offset)
	offset = e.deserializePorts(data, offset)

	e.frame = binary.LittleEndian.Uint64(data[offset:])
	offset += emulatorSerializeSize

	if s, ok := e.cpu.(CPUStater); ok {
		if err := s.LoadState(data[offset : offset+cpuStateSize]); err != nil {
			return err
		}
	}
	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *Emulator) VerifyState(data []byte) error {
	if len(data) < SerializeSize() {
		return errors.New("save state too short")
	}

	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return errors.New("unsupported save state version")
	}

	romCRC := binary.LittleEndian.Uint32(data[14:18])
	if romCRC != e.bus.romCRC {
		return errors.New("save state is for a different ROM")
	}

	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expectedCRC != actualCRC {
		return errors.New("save state data is corrupted")
	}

	return nil
}

func (e *Emulator) serializeBus(data []byte, offset int) int {
	offset += copy(data[offset:], e.bus.ram[:])
	data[offset] = e.bus.bank
	offset++
	data[offset] = e.bus.soundLatch
	offset++
	offset += copy(data[offset:], e.bus.coinCounters[:])
	return offset
}

func (e *Emulator) deserializeBus(data []byte, offset int) int {
	offset += copy(e.bus.ram[:], data[offset:offset+workRAMSize])
	e.bus.bank = data[offset]
	offset++
	e.bus.soundLatch = data[offset]
	offset++
	offset += copy(e.bus.coinCounters[:], data[offset:])
	return offset
}

func (e *Emulator) serializePorts(data []byte, offset int) int {
	offset += copy(data[offset:], e.ports.players[:])
	data[offset] = e.ports.system
	offset++
	offset += copy(data[offset:], e.ports.dsw[:])
	return offset
}

func (e *Emulator) deserializePorts(data []byte, offset int) int {
	offset += copy(e.ports.players[:], data[offset:])
	e.ports.system = data[offset]
	offset++
	offset += copy(e.ports.dsw[:], data[offset:])
	return offset
}
