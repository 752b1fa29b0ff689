package ublaster

import (
	"context"

	"github.com/ublaster-mips/ublaster/pkg/tap"
)

// writeFIFODepth and readFIFODepth are the USB-Blaster's internal FIFO sizes
// as documented in the original source's init comments. usb_blaster.c's
// init routine only ever emits a single 64-byte zero packet regardless of
// these depths (spec.md §9 Open Question 4); NewCable (via drainFIFOs)
// drains both FIFOs fully instead.
const (
	writeFIFODepth = 128
	readFIFODepth  = 384
)

// Cable is the exclusive owner of a USB-Blaster session: the outgoing packet
// buffer, the shadow signal state, and the TAP state tracker, per spec.md §3.
type Cable struct {
	backend Backend
	pb      *packetBuffer
	cfg     Config

	tms  bool
	tdi  bool
	pin6 bool
	pin8 bool

	tracker *tap.StateMachine

	flipCount int // test instrumentation: count of clockTDIFlipTMS calls
}

// FlipCount reports how many times clockTDIFlipTMS has been invoked on this
// cable session, for test verification of the last-bit TMS flip invariant.
func (c *Cable) FlipCount() int { return c.flipCount }

// NewCable opens the configured backend and returns a ready Cable session.
func NewCable(ctx context.Context, cfg Config) (*Cable, error) {
	backend, err := NewBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	if err := backend.Open(ctx, cfg.VID, cfg.PID, cfg.Description); err != nil {
		return nil, err
	}

	c := &Cable{
		backend: backend,
		pb:      newPacketBuffer(backend),
		cfg:     cfg,
		pin6:    cfg.Pin6,
		pin8:    cfg.Pin8,
		tracker: tap.NewStateMachine(),
	}

	if err := c.drainFIFOs(ctx); err != nil {
		backend.Close()
		return nil, err
	}
	return c, nil
}

// drainFIFOs writes zero packets until the cumulative byte count covers both
// the write and read FIFOs, per SPEC_FULL.md §12's supplemented fix for
// Open Question 4.
func (c *Cable) drainFIFOs(ctx context.Context) error {
	depth := writeFIFODepth
	if readFIFODepth > depth {
		depth = readFIFODepth
	}
	for sent := 0; sent < depth; sent += packetSize {
		if err := c.pb.queueBytes(ctx, nil, packetSize); err != nil {
			return err
		}
		if err := c.pb.flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Quit tears down the session: emit a single zero byte to place TMS/TDI/
// nCE/nCS/LED into high impedance, flush, then close the transport.
func (c *Cable) Quit(ctx context.Context) error {
	if err := c.pb.queueByte(ctx, 0); err != nil {
		return err
	}
	if err := c.pb.flush(ctx); err != nil {
		return err
	}
	return c.backend.Close()
}

// NewCableWithBackend wraps an already-open Backend in a Cable session
// without performing the FIFO drain NewCable does on real hardware. It is
// intended for the in-memory "sim" backend and other pre-initialized
// transports.
func NewCableWithBackend(backend Backend, cfg Config) *Cable {
	return &Cable{
		backend: backend,
		pb:      newPacketBuffer(backend),
		cfg:     cfg,
		pin6:    cfg.Pin6,
		pin8:    cfg.Pin8,
		tracker: tap.NewStateMachine(),
	}
}

// Remaining reports the number of bytes that can still be queued before a
// flush is required.
func (c *Cable) Remaining() int { return c.pb.remaining() }

// Flush drains the outgoing packet buffer to the transport.
func (c *Cable) Flush(ctx context.Context) error { return c.pb.flush(ctx) }

// TAPState reports the TAP state currently tracked for this cable.
func (c *Cable) TAPState() tap.State { return c.tracker.State() }
