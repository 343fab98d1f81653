package emu

const (
	// Name is the core name reported to frontends.
	Name = "em92"
	// Version is the core version reported to frontends.
	Version = "0.1.0"
)
