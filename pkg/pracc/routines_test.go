package pracc

import (
	"context"
	"testing"

	"github.com/ublaster-mips/ublaster/pkg/ejtag"
)

func TestReadMemCodeBranchesAreWellFormed(t *testing.T) {
	for _, code := range [][]uint32{ReadMem32Code(), ReadMem16Code(), ReadMem8Code()} {
		if len(code) == 0 {
			t.Fatalf("empty routine")
		}
		// First instruction always saves $15 into COP0 DeSave (MTC0, opcode 0x10).
		if (code[0]>>26)&0x3F != 0x10 {
			t.Fatalf("routine does not open with an MTC0: %08X", code[0])
		}
		// Every BEQ/B (opcode 0x04) must land inside the routine, and the
		// last unconditional B ($0,$0) must return to the entry point.
		lastB := -1
		for i, instr := range code {
			if (instr>>26)&0x3F != 0x04 {
				continue
			}
			target := i + 1 + int(int16(instr&0xFFFF))
			if target < 0 || target >= len(code) {
				t.Fatalf("branch at %d targets %d, outside %d-instruction routine", i, target, len(code))
			}
			if (instr>>21)&0x1F == 0 && (instr>>16)&0x1F == 0 {
				lastB = i
			}
		}
		if lastB < 0 || lastB+1+int(int16(code[lastB]&0xFFFF)) != 0 {
			t.Fatalf("final B at %d does not return to the routine start", lastB)
		}
	}
}

func TestWriteU32CodeIsNotTruncated(t *testing.T) {
	code := WriteU32Code()
	if len(code) < 9 {
		t.Fatalf("write_u32 routine too short: %d instructions", len(code))
	}
}

func TestReadRegsAndWriteRegsCodeAreNonEmpty(t *testing.T) {
	read := ReadRegsCode()
	write := WriteRegsCode()
	if len(read) == 0 || len(write) == 0 {
		t.Fatalf("register routines must not be empty")
	}
}

func TestRegisterBlockWordsRoundTrip(t *testing.T) {
	r := &RegisterBlock{Status: 1, Lo: 2, Hi: 3, BadVAddr: 4, Cause: 5, DEPC: 6}
	r.GPR[31] = 0xDEADBEEF

	w := r.Words()
	if len(w) != numCoreRegs {
		t.Fatalf("Words() length = %d, want %d", len(w), numCoreRegs)
	}

	back := registerBlockFromWords(w)
	if back.GPR[31] != 0xDEADBEEF || back.DEPC != 6 || back.Status != 1 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestEngineReadWordUsesSingleTransferRoutine(t *testing.T) {
	ctrl := uint32(ejtag.CtrlPRACC)
	scn := &scriptedScanner{responses: [][]byte{
		// Only checks that Engine drives Exec to completion: one
		// read-direction transaction at PARAM_OUT (the probe supplies the
		// word, no result is written back), followed by a terminating
		// double TEXT fetch. The returned word is not checked.
		nil, le32(ctrl),
		nil, le32(ejtag.AddrParamOut),
		nil, nil, nil, nil, nil,

		nil, le32(ctrl),
		nil, le32(ejtag.AddrText),
		nil, nil, nil, nil, nil,

		nil, le32(ctrl),
		nil, le32(ejtag.AddrText),
		nil, nil, nil, nil, nil,
	}}
	session := ejtag.NewSession(scn)
	eng := NewEngine(session)

	if _, err := eng.ReadWord(context.Background(), 0xFF200400); err != nil {
		t.Fatalf("ReadWord: %v", err)
	}
}
