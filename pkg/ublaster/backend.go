package ublaster

import "context"

// Backend is the capability interface a low-level USB transport exposes to
// the Cable. It is agnostic of the library used underneath (libusb via
// gousb, or an in-memory loopback for tests), following Design Note 1: model
// the low-level backend as a capability interface and select it by name
// through a trivial registry.
type Backend interface {
	// Open claims the device identified by vid/pid and prepares it for
	// bulk transfer. desc is a human-readable description used only for
	// error messages and discovery listings.
	Open(ctx context.Context, vid, pid uint16, desc string) error

	// Read blocks until at least one byte is available and returns it,
	// or an error. It may return fewer bytes than len(p).
	Read(ctx context.Context, p []byte) (int, error)

	// Write sends p to the device. Short writes are possible and are not
	// errors by themselves; the caller (Packet Buffer) retries the tail.
	Write(ctx context.Context, p []byte) (int, error)

	// Close releases the device and any associated context.
	Close() error
}

// Config is the configuration surface named in the external interfaces:
// device description, vid/pid pair, backend selection, and the two
// user-controlled GPIO pin states exposed by the cable (pin6, pin8 — no
// reset wiring is assumed per the Non-goals).
type Config struct {
	Description string
	VID         uint16
	PID         uint16
	Backend     string
	Pin6        bool
	Pin8        bool
}

// DefaultConfig returns the USB-Blaster's standard identifiers and the
// libusb-backed backend.
func DefaultConfig() Config {
	return Config{
		Description: "Altera USB-Blaster",
		VID:         0x09fb,
		PID:         0x6001,
		Backend:     "gousb",
	}
}
