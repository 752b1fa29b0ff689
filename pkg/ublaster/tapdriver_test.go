package ublaster

import (
	"context"
	"testing"

	"github.com/ublaster-mips/ublaster/pkg/tap"
)

func TestStateMoveReachesTarget(t *testing.T) {
	ctx := context.Background()
	c := newTestCable(&recordingBackend{})

	for _, target := range []tap.State{
		tap.StateShiftDR, tap.StateShiftIR, tap.StateRunTestIdle,
		tap.StateTestLogicReset, tap.StatePauseDR,
	} {
		if err := c.StateMove(ctx, target); err != nil {
			t.Fatalf("StateMove(%s): %v", target, err)
		}
		if got := c.TAPState(); got != target {
			t.Fatalf("StateMove(%s): tracker at %s", target, got)
		}
	}
}

// TestStateMoveS4 is the literal scenario from spec.md §8 S4: from
// Run-Test/Idle, state_move(Shift-DR) emits TMS pattern 1,0,0 then an idle
// clock, and the tracker ends at Shift-DR.
func TestStateMoveS4(t *testing.T) {
	ctx := context.Background()
	be := &recordingBackend{}
	c := newTestCable(be)
	c.tracker.ForceState(tap.StateRunTestIdle)

	if err := c.StateMove(ctx, tap.StateShiftDR); err != nil {
		t.Fatalf("StateMove: %v", err)
	}
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if c.TAPState() != tap.StateShiftDR {
		t.Fatalf("tracker = %s, want ShiftDR", c.TAPState())
	}

	if len(be.writes) != 1 {
		t.Fatalf("expected one flushed write, got %d", len(be.writes))
	}
	bytes := be.writes[0]
	// 3 TMS bits -> 6 bit-bang bytes, plus a trailing idle clock byte.
	if len(bytes) != 7 {
		t.Fatalf("expected 7 bytes (3 TMS pairs + idle), got %d: % X", len(bytes), bytes)
	}
	wantTMS := []bool{true, false, false}
	for i, want := range wantTMS {
		tck0 := bytes[i*2]
		tck1 := bytes[i*2+1]
		if tck0&bitTCK != 0 || tck1&bitTCK == 0 {
			t.Fatalf("bit %d: expected TCK0 then TCK1 pair, got % X % X", i, tck0, tck1)
		}
		gotTMS := tck1&bitTMS != 0
		if gotTMS != want {
			t.Fatalf("bit %d: TMS = %v, want %v", i, gotTMS, want)
		}
	}
	if bytes[6]&bitTCK != 0 {
		t.Fatalf("trailing idle clock byte has TCK set: %02X", bytes[6])
	}
}

func TestRunTestEndsAtEndState(t *testing.T) {
	ctx := context.Background()
	c := newTestCable(&recordingBackend{})
	if err := c.RunTest(ctx, 10, tap.StateRunTestIdle); err != nil {
		t.Fatalf("RunTest: %v", err)
	}
	if c.TAPState() != tap.StateRunTestIdle {
		t.Fatalf("tracker = %s, want RunTestIdle", c.TAPState())
	}
}

func TestPathMoveEndsAtLastState(t *testing.T) {
	ctx := context.Background()
	c := newTestCable(&recordingBackend{})
	c.tracker.ForceState(tap.StateTestLogicReset)

	path := []tap.State{tap.StateRunTestIdle, tap.StateSelectDRScan, tap.StateCaptureDR, tap.StateShiftDR}
	if err := c.PathMove(ctx, path); err != nil {
		t.Fatalf("PathMove: %v", err)
	}
	if c.TAPState() != tap.StateShiftDR {
		t.Fatalf("tracker = %s, want ShiftDR", c.TAPState())
	}
}
