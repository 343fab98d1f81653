package emu

// Player input bits. Ports read active low.
const (
	InputRight uint8 = 1 << iota
	InputLeft
	InputDown
	InputUp
	InputButton1
	InputButton2
	InputButton3
)

// System port bits. Coins and starts read active low; the vblank status
// bit reads active high.
const (
	SystemStart1 uint8 = 1 << iota
	SystemStart2
	SystemCoin1
	SystemCoin2
	systemVBlank uint8 = 0x80
)

const numPlayers = 4

// Ports holds the board input ports and DIP switches.
type Ports struct {
	players [numPlayers]uint8 // pressed bits
	system  uint8             // pressed bits
	dsw     [3]uint8          // DSW1, DSW2, DSW3 as read
	video   *Video
}

// NewPorts creates the input ports with every DIP switch off.
func NewPorts(video *Video) *Ports {
	return &Ports{
		dsw:   [3]uint8{0xFF, 0xFF, 0xFF},
		video: video,
	}
}

// SetPlayer sets the pressed input bits of a player (0-3).
func (p *Ports) SetPlayer(player int, pressed uint8) {
	if player < 0 || player >= numPlayers {
		return
	}
	p.players[player] = pressed
}

// SetSystem sets the pressed coin and start bits.
func (p *Ports) SetSystem(pressed uint8) {
	p.system = pressed &^ systemVBlank
}

// SetDIPSwitch sets the raw value of DIP switch bank 1-3.
func (p *Ports) SetDIPSwitch(bank int, val uint8) {
	if bank < 1 || bank > len(p.dsw) {
		return
	}
	p.dsw[bank-1] = val
}

// Read returns the value of an input port and whether the port exists.
func (p *Ports) Read(port uint8) (uint8, bool) {
	switch port {
	case 0x00, 0x01:
		return ^p.players[port], true
	case 0x02:
		v := ^p.system &^ systemVBlank
		if p.video != nil && p.video.VBlank() {
			v |= systemVBlank
		}
		return v, true
	case 0x03:
		return p.dsw[2], true
	case 0x04:
		return p.dsw[0], true
	case 0x05:
		return p.dsw[1], true
	case 0x06, 0x07:
		return ^p.players[port-0x04], true
	}
	return 0, false
}
