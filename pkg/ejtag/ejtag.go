package ejtag

import (
	"context"
	"fmt"

	"github.com/ublaster-mips/ublaster/pkg/tap"
	"github.com/ublaster-mips/ublaster/pkg/ublaster"
)

// Scanner is the JTAG command queue surface EJTAG primitives are built on:
// a single IR/DR scan operation that moves through the TAP and returns
// captured TDO bits. *ublaster.Cable satisfies this.
type Scanner interface {
	Scan(ctx context.Context, isIR bool, bits []byte, nbits int, dir ublaster.ScanDir, endState tap.State) ([]byte, error)
}

// Session is the EJTAG session state named in spec.md §3: the shadow
// control word used to clear the PrAcc pending bit, and the direction
// memoized from the last fastdata handler load.
type Session struct {
	Chain Scanner

	ejtagCtrl      uint32
	fastAccessSave bool
	haveFastAccess bool
}

// NewSession binds an EJTAG session to a scan chain.
func NewSession(chain Scanner) *Session {
	return &Session{Chain: chain}
}

// SetIR places instr onto the JTAG instruction register (spec.md §4.7).
func (s *Session) SetIR(ctx context.Context, instr uint8) error {
	buf := []byte{instr}
	_, err := s.Chain.Scan(ctx, true, buf, irBits, ublaster.ScanOut, tap.StateRunTestIdle)
	return err
}

// DRScan32 shifts a 32-bit DR in both directions: out drives the register,
// in captures the result.
func (s *Session) DRScan32(ctx context.Context, out uint32) (uint32, error) {
	buf := make([]byte, 4)
	putU32LE(buf, out)
	tdo, err := s.Chain.Scan(ctx, false, buf, 32, ublaster.ScanIO, tap.StateRunTestIdle)
	if err != nil {
		return 0, err
	}
	return getU32LE(tdo), nil
}

// DRScan32Out shifts a 32-bit DR, driving value without requesting capture.
func (s *Session) DRScan32Out(ctx context.Context, value uint32) error {
	buf := make([]byte, 4)
	putU32LE(buf, value)
	_, err := s.Chain.Scan(ctx, false, buf, 32, ublaster.ScanOut, tap.StateRunTestIdle)
	return err
}

// ReadControl reads the EJTAG control register and remembers it as the
// shadow word used to clear PRACC.
func (s *Session) ReadControl(ctx context.Context) (uint32, error) {
	if err := s.SetIR(ctx, InstControl); err != nil {
		return 0, err
	}
	ctrl, err := s.DRScan32(ctx, s.ejtagCtrl)
	if err != nil {
		return 0, err
	}
	s.ejtagCtrl = ctrl
	return ctrl, nil
}

// ClearPracc writes the shadow control word with the PRACC bit cleared.
func (s *Session) ClearPracc(ctx context.Context) error {
	if err := s.SetIR(ctx, InstControl); err != nil {
		return err
	}
	return s.DRScan32Out(ctx, s.ejtagCtrl&^uint32(CtrlPRACC))
}

// FastDataScan shifts the 1-bit SPrAcc + 32-bit data fastdata register. On
// write the supplied word is clocked in; on read the captured word is
// written back into word. The SPrAcc status bit is checked on every call
// (spec.md §9 Open Question 3: a stricter implementation surfaces per-word
// transfer-status errors rather than ignoring them).
func (s *Session) FastDataScan(ctx context.Context, write bool, word *uint32) error {
	if err := s.SetIR(ctx, InstFastdata); err != nil {
		return err
	}

	buf := make([]byte, 5) // 1 status bit + 32 data bits, LSB-first
	if write {
		setBit(buf, 0, false)
		for i := 0; i < 32; i++ {
			setBit(buf, 1+i, (*word>>uint(i))&1 != 0)
		}
	}

	tdo, err := s.Chain.Scan(ctx, false, buf, 33, ublaster.ScanIO, tap.StateRunTestIdle)
	if err != nil {
		return err
	}

	if !getBit(tdo, 0) {
		return fmt.Errorf("ejtag: fastdata SPrAcc error on %s", directionLabel(write))
	}

	if !write {
		var v uint32
		for i := 0; i < 32; i++ {
			if getBit(tdo, 1+i) {
				v |= 1 << uint(i)
			}
		}
		*word = v
	}
	return nil
}

func directionLabel(write bool) string {
	if write {
		return "write"
	}
	return "read"
}

// FastAccessDirection reports the direction memoized by the last
// SetFastAccessDirection call and whether one has been recorded yet.
func (s *Session) FastAccessDirection() (write bool, known bool) {
	return s.fastAccessSave, s.haveFastAccess
}

// SetFastAccessDirection memoizes which fastdata handler direction is
// currently resident, per Design Note 5 (idempotent handler upload).
func (s *Session) SetFastAccessDirection(write bool) {
	s.fastAccessSave = write
	s.haveFastAccess = true
}

func putU32LE(buf []byte, v uint32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}

func getU32LE(buf []byte) uint32 {
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
}

func getBit(buf []byte, i int) bool {
	return buf[i/8]&(1<<uint(i%8)) != 0
}

func setBit(buf []byte, i int, v bool) {
	if v {
		buf[i/8] |= 1 << uint(i%8)
	}
}
