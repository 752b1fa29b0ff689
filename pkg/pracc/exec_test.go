package pracc

import (
	"context"
	"testing"
	"time"

	"github.com/ublaster-mips/ublaster/pkg/ejtag"
	"github.com/ublaster-mips/ublaster/pkg/tap"
	"github.com/ublaster-mips/ublaster/pkg/ublaster"
)

// scriptedScanner answers each Scan call with the next entry from responses,
// falling back to a zero-filled buffer once the script runs out (mirroring
// a device that stays idle). It implements ejtag.Scanner.
type scriptedScanner struct {
	responses [][]byte
	calls     int
}

func (s *scriptedScanner) Scan(ctx context.Context, isIR bool, bits []byte, nbits int, dir ublaster.ScanDir, endState tap.State) ([]byte, error) {
	s.calls++
	if len(s.responses) == 0 {
		return make([]byte, (nbits+7)/8), nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func TestExecTimesOutWaitingForPracc(t *testing.T) {
	scn := &scriptedScanner{} // PRACC bit never set, always zero-filled
	session := ejtag.NewSession(scn)
	pctx := &Context{Code: make([]uint32, 4)}

	start := time.Now()
	err := Exec(context.Background(), session, pctx, 0)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatalf("expected timeout error, got nil")
	}
	if elapsed > 2*time.Second {
		t.Fatalf("Exec took too long to time out: %v", elapsed)
	}
}

func TestExecSingleWriteTransaction(t *testing.T) {
	ctrl := uint32(ejtag.CtrlPRACC | ejtag.CtrlPRNW)
	scn := &scriptedScanner{responses: [][]byte{
		nil,                       // SetIR(Control)
		le32(ctrl),                // DRScan32 ctrl (ReadControl)
		nil,                       // SetIR(Address)
		le32(ejtag.AddrParamIn),   // DRScan32 addr
		nil,                       // SetIR(Data)
		le32(0xCAFEBABE),          // DRScan32 data being written by CPU
		nil,                       // SetIR(Control) (ClearPracc)
	}}
	session := ejtag.NewSession(scn)
	pctx := &Context{IParam: make([]uint32, 1)}

	if err := Exec(context.Background(), session, pctx, 0); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if pctx.IParam[0] != 0xCAFEBABE {
		t.Fatalf("IParam[0] = %08X, want CAFEBABE", pctx.IParam[0])
	}
}

func TestExecLoopsUntilSecondTextFetch(t *testing.T) {
	ctrl := uint32(ejtag.CtrlPRACC) // read direction (PRNW clear)
	// Each read-direction transaction consumes 9 scans: ReadControl (2),
	// read ADDRESS (2), then serviceRead's Data-out/Control-clear (5).
	readTransaction := func(addr uint32) [][]byte {
		return [][]byte{
			nil, le32(ctrl),
			nil, le32(addr),
			nil, nil, nil, nil, nil,
		}
	}
	var responses [][]byte
	responses = append(responses, readTransaction(ejtag.AddrText)...)
	responses = append(responses, readTransaction(ejtag.AddrText)...)
	scn := &scriptedScanner{responses: responses}
	session := ejtag.NewSession(scn)
	pctx := &Context{Code: []uint32{0x00000000}}

	if err := Exec(context.Background(), session, pctx, 1); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if !pctx.sawText {
		t.Fatalf("expected sawText to be set after first TEXT fetch")
	}
}

func TestExecStackPushOnWrite(t *testing.T) {
	ctrl := uint32(ejtag.CtrlPRACC | ejtag.CtrlPRNW)
	scn := &scriptedScanner{responses: [][]byte{
		nil, le32(ctrl),
		nil, le32(ejtag.AddrStack),
		nil, le32(0x11111111),
		nil,
	}}
	session := ejtag.NewSession(scn)
	pctx := &Context{}

	if err := Exec(context.Background(), session, pctx, 0); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if pctx.StackOffset != 1 {
		t.Fatalf("StackOffset = %d, want 1", pctx.StackOffset)
	}
	if pctx.stack[0] != 0x11111111 {
		t.Fatalf("stack[0] = %08X, want 11111111", pctx.stack[0])
	}
}
