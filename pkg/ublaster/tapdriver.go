package ublaster

import (
	"context"

	"github.com/ublaster-mips/ublaster/pkg/tap"
)

// emitTMSBits clocks n TMS bits (LSB-first in bits) and leaves TCK low,
// without touching the TAP tracker — callers that already advanced the
// tracker (via tap.StateMachine.GoTo) pass the same bits back here purely
// for hardware emission.
func (c *Cable) emitTMSBits(ctx context.Context, bits []byte, n int) error {
	for i := 0; i < n; i++ {
		if err := c.clockTMS(ctx, getBit(bits, i)); err != nil {
			return err
		}
	}
	return c.idleClock(ctx)
}

// StateMove looks up the shortest TMS path to target from the tracker,
// emits it, and leaves the tracker updated (spec.md §4.5).
func (c *Cable) StateMove(ctx context.Context, target tap.State) error {
	seq, err := c.tracker.GoTo(target)
	if err != nil {
		return &ProtocolError{Msg: err.Error()}
	}
	bits, n := seq.PackTMS()
	return c.emitTMSBits(ctx, bits, n)
}

// TMSSeq clocks an explicit caller-provided TMS bit pattern without
// consulting the tracker's shortest-path search, and does not update the
// tracker itself — callers using this entry point are expected to already
// know the resulting state.
func (c *Cable) TMSSeq(ctx context.Context, bits []byte, n int) error {
	return c.emitTMSBits(ctx, bits, n)
}

// PathMove walks an explicit list of intermediate states, picking TMS=0 or
// TMS=1 at each step according to which one the tracker says reaches the
// next state from the current one, per spec.md §4.5.
func (c *Cable) PathMove(ctx context.Context, path []tap.State) error {
	for _, next := range path {
		cur := c.tracker.State()
		var tms bool
		switch {
		case tap.NextState(cur, false) == next:
			tms = false
		case tap.NextState(cur, true) == next:
			tms = true
		default:
			return &ProtocolError{Msg: "pathMove: unreachable intermediate state"}
		}
		if err := c.clockTMS(ctx, tms); err != nil {
			return err
		}
		c.tracker.Clock(tms)
	}
	return c.idleClock(ctx)
}

// RunTest moves to Run-Test/Idle, clocks cycles TCK pulses there, then moves
// to endState (spec.md §4.5).
func (c *Cable) RunTest(ctx context.Context, cycles int, endState tap.State) error {
	if err := c.StateMove(ctx, tap.StateRunTestIdle); err != nil {
		return err
	}
	if cycles > 0 {
		if _, err := c.queueTDI(ctx, nil, cycles, ScanOut, true); err != nil {
			return err
		}
	}
	return c.StateMove(ctx, endState)
}

// StableClocks clocks cycles TCK pulses without moving the tracker,
// mirroring the literal behavior described in spec.md §4.5.
func (c *Cable) StableClocks(ctx context.Context, cycles int) error {
	_, err := c.queueTDI(ctx, nil, cycles, ScanOut, true)
	return err
}

// ResetTAP is unimplemented on this cable (no TRST/SRST wiring is assumed,
// per the Non-goals): when trst is requested the tracker is forced to
// Test-Logic-Reset so software state stays consistent, but no hardware
// signal is asserted.
func (c *Cable) ResetTAP(trst, srst bool) error {
	if trst {
		c.tracker.ForceState(tap.StateTestLogicReset)
	}
	return nil
}

// Scan moves into Shift-IR or Shift-DR, shifts nbits through the scan
// engine, and settles into endState, per spec.md §4.5.
func (c *Cable) Scan(ctx context.Context, isIR bool, bits []byte, nbits int, dir ScanDir, endState tap.State) ([]byte, error) {
	shiftState := tap.StateShiftDR
	if isIR {
		shiftState = tap.StateShiftIR
	}
	if err := c.StateMove(ctx, shiftState); err != nil {
		return nil, err
	}

	tapShift := endState != tap.StateShiftDR
	tdo, err := c.queueTDI(ctx, bits, nbits, dir, tapShift)
	if err != nil {
		return nil, err
	}

	if endState != tap.StateShiftDR {
		// The scan engine's last-bit TMS flip already moved the TAP into
		// Exit1-IR/DR in hardware; bring the tracker in line before
		// clocking the extra bit that settles into Pause.
		exit1, pauseState := tap.StateExit1DR, tap.StatePauseDR
		if isIR {
			exit1, pauseState = tap.StateExit1IR, tap.StatePauseIR
		}
		c.tracker.ForceState(exit1)
		if err := c.clockTMS(ctx, false); err != nil {
			return nil, err
		}
		c.tracker.ForceState(pauseState)
	}

	if err := c.StateMove(ctx, endState); err != nil {
		return nil, err
	}
	return tdo, nil
}
