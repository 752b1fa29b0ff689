package ublaster

import "context"

// ScanDir selects whether a scan only drives TDI (OUT), only captures TDO
// (IN), or does both (IO), per spec.md §3's Scan request type.
type ScanDir uint8

const (
	ScanOut ScanDir = iota
	ScanIn
	ScanIO
)

func (d ScanDir) wantsRead() bool { return d == ScanIn || d == ScanIO }

func (c *Cable) bitBangByte(read bool) byte {
	b := byte(bitLED)
	if read {
		b |= bitREAD
	}
	if c.tms {
		b |= bitTMS
	}
	if c.tdi {
		b |= bitTDI
	}
	if !c.pin6 {
		b |= bitNCS
	}
	if !c.pin8 {
		b |= bitNCE
	}
	return b
}

// clockTMS sets the shadow TMS line (clearing TDI) and emits the TCK=0/TCK=1
// byte pair for one clocked bit, per spec.md §4.2.
func (c *Cable) clockTMS(ctx context.Context, tms bool) error {
	c.tms = tms
	c.tdi = false
	return c.emitClockPair(ctx, false)
}

// clockTDI sets the shadow TDI line (TMS unchanged) and emits the byte pair,
// requesting TDO readback when dir wants it.
func (c *Cable) clockTDI(ctx context.Context, tdi bool, dir ScanDir) error {
	c.tdi = tdi
	return c.emitClockPair(ctx, dir.wantsRead())
}

// clockTDIFlipTMS additionally toggles TMS at the rising edge and emits a
// third byte restoring TCK low with the flipped TMS. This is the mechanism
// used to exit Shift-DR/IR on the last bit of a scan (spec.md §4.2).
func (c *Cable) clockTDIFlipTMS(ctx context.Context, tdi bool, dir ScanDir) error {
	c.flipCount++
	c.tdi = tdi
	c.tms = !c.tms
	read := dir.wantsRead()
	if err := c.pb.queueByte(ctx, c.bitBangByte(read)); err != nil {
		return err
	}
	if err := c.pb.queueByte(ctx, c.bitBangByte(read)|bitTCK); err != nil {
		return err
	}
	return c.pb.queueByte(ctx, c.bitBangByte(read))
}

// emitClockPair queues the TCK=0 then TCK=1 byte pair for the current shadow
// state.
func (c *Cable) emitClockPair(ctx context.Context, read bool) error {
	if err := c.pb.queueByte(ctx, c.bitBangByte(read)); err != nil {
		return err
	}
	return c.pb.queueByte(ctx, c.bitBangByte(read)|bitTCK)
}

// idleClock emits a single TCK=0 byte to leave TCK low at the end of a
// sequence, the required precondition for byte-shift framing (spec.md §4.3).
func (c *Cable) idleClock(ctx context.Context) error {
	return c.pb.queueByte(ctx, c.bitBangByte(false))
}
