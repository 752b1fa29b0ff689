package ublaster_test

import (
	"context"
	"testing"

	"github.com/ublaster-mips/ublaster/pkg/ejtag"
	"github.com/ublaster-mips/ublaster/pkg/idcode"
	"github.com/ublaster-mips/ublaster/pkg/tap"
	"github.com/ublaster-mips/ublaster/pkg/ublaster"
)

// TestIDCODEScenario follows the S1 scenario from spec.md §8 over the
// loopback backend: TAP Reset -> Shift-IR, scan IR 0x01 (IDCODE) with
// nbits=5, move to Shift-DR and scan 32 DR bits. Because the loopback echoes
// TDI, the DR is driven with the IDCODE value itself rather than zeros, and
// the echoed word is parsed as the vendor IDCODE.
func TestIDCODEScenario(t *testing.T) {
	const alteraIDCODE = 0x0020F07B // version 0, part 020F, mfg 0x03D (Altera), bit0=1

	be := ublaster.NewSimBackend() // default TDO=TDI echo loopback
	cable := ublaster.NewCableWithBackend(be, ublaster.DefaultConfig())
	ctx := context.Background()

	if err := cable.ResetTAP(true, false); err != nil {
		t.Fatalf("ResetTAP: %v", err)
	}
	if cable.TAPState() != tap.StateTestLogicReset {
		t.Fatalf("tracker = %s, want TestLogicReset after hard reset", cable.TAPState())
	}

	session := ejtag.NewSession(cable)
	if err := session.SetIR(ctx, ejtag.InstIDCODE); err != nil {
		t.Fatalf("SetIR: %v", err)
	}

	raw, err := session.DRScan32(ctx, alteraIDCODE)
	if err != nil {
		t.Fatalf("DRScan32: %v", err)
	}
	if raw != alteraIDCODE {
		t.Fatalf("DRScan32 round trip = %08X, want %08X", raw, alteraIDCODE)
	}

	id := idcode.ParseIDCode(raw)
	if id.ManufacturerCode != 0x03D {
		t.Fatalf("manufacturer code = %03X, want 03D", id.ManufacturerCode)
	}
	if !id.HasIDCode {
		t.Fatalf("expected HasIDCode bit set")
	}
	if cable.TAPState() != tap.StateRunTestIdle {
		t.Fatalf("tracker = %s, want RunTestIdle after scan", cable.TAPState())
	}
}
