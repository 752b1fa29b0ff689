package pracc

import (
	"context"
	"time"

	"github.com/ublaster-mips/ublaster/pkg/ejtag"
	"github.com/ublaster-mips/ublaster/pkg/ublaster"
)

// praccTimeout is the wall-clock bound on waiting for the PrAcc pending bit,
// per spec.md §5 and §8 property 10.
const praccTimeout = 1000 * time.Millisecond

// Exec drives the processor while it is halted in debug mode and accessing
// dmseg, servicing PrAcc transactions until the routine in ctx.Code
// terminates, per spec.md §4.8.
//
// cycle == 0 services exactly one transaction and returns, matching the
// single-transaction helper the original source splits into its own
// function; any other value runs the full loop until the routine signals
// completion by fetching TEXT a second time.
func Exec(parent context.Context, session *ejtag.Session, pctx *Context, cycle int) error {
	for {
		ctrl, err := waitForPracc(parent, session)
		if err != nil {
			return err
		}

		terminated, err := serviceTransaction(parent, session, pctx, ctrl)
		if err != nil {
			return err
		}

		if cycle == 0 || terminated {
			// A nonzero StackOffset here is not itself an error per
			// spec.md §7; callers that care can inspect pctx.StackOffset
			// after Exec returns.
			return nil
		}
	}
}

// waitForPracc polls the EJTAG control register until the PrAcc pending bit
// is set, bounded by praccTimeout.
func waitForPracc(parent context.Context, session *ejtag.Session) (uint32, error) {
	ctx, cancel := context.WithTimeout(parent, praccTimeout)
	defer cancel()

	for {
		ctrl, err := session.ReadControl(ctx)
		if err != nil {
			return 0, &ublaster.DeviceError{Msg: "pracc: read control failed", Err: err}
		}
		if ctrl&ejtag.CtrlPRACC != 0 {
			return ctrl, nil
		}
		select {
		case <-ctx.Done():
			return 0, &ublaster.DeviceError{Msg: "pracc: timed out waiting for PrAcc pending"}
		default:
		}
	}
}

// serviceTransaction performs one address-read plus direction-branch
// handshake. It returns terminated == true when this was the second fetch
// at TEXT, signalling the routine has completed.
func serviceTransaction(ctx context.Context, session *ejtag.Session, pctx *Context, ctrl uint32) (bool, error) {
	if err := session.SetIR(ctx, ejtag.InstAddress); err != nil {
		return false, err
	}
	addr, err := session.DRScan32(ctx, 0)
	if err != nil {
		return false, err
	}

	if ctrl&ejtag.CtrlPRNW != 0 {
		return false, serviceWrite(ctx, session, pctx, addr)
	}
	return serviceRead(ctx, session, pctx, addr)
}

// serviceWrite handles the processor -> probe direction: the CPU is
// storing a word.
func serviceWrite(ctx context.Context, session *ejtag.Session, pctx *Context, addr uint32) error {
	if err := session.SetIR(ctx, ejtag.InstData); err != nil {
		return err
	}
	data, err := session.DRScan32(ctx, 0)
	if err != nil {
		return err
	}
	if err := session.ClearPracc(ctx); err != nil {
		return err
	}

	switch class, off := classify(pctx, addr); class {
	case classParamIn:
		pctx.IParam[off] = data
	case classParamOut:
		pctx.OParam[off] = data
	case classStack:
		return pctx.pushStack(data)
	default:
		return &ublaster.DeviceError{Msg: "pracc: unexpected address on write"}
	}
	return nil
}

// serviceRead handles the probe -> processor direction: the CPU is
// fetching code or loading a word, returning terminated == true on the
// second fetch at TEXT.
func serviceRead(ctx context.Context, session *ejtag.Session, pctx *Context, addr uint32) (bool, error) {
	var word uint32
	terminated := false

	class, off := classify(pctx, addr)
	switch class {
	case classParamIn:
		word = pctx.IParam[off]
	case classParamOut:
		word = pctx.OParam[off]
	case classCode:
		word = pctx.Code[off]
		if addr == ejtag.AddrText {
			if pctx.sawText {
				terminated = true
			}
			pctx.sawText = true
		}
	case classStack:
		popped, err := pctx.popStack()
		if err != nil {
			return false, err
		}
		word = popped
	default:
		return false, &ublaster.DeviceError{Msg: "pracc: unexpected address on read"}
	}

	if err := session.SetIR(ctx, ejtag.InstData); err != nil {
		return false, err
	}
	if err := session.DRScan32Out(ctx, word); err != nil {
		return false, err
	}
	if err := session.SetIR(ctx, ejtag.InstControl); err != nil {
		return false, err
	}
	if err := session.ClearPracc(ctx); err != nil {
		return false, err
	}
	return terminated, nil
}

type addrClass int

const (
	classOther addrClass = iota
	classParamIn
	classParamOut
	classCode
	classStack
)

func classify(pctx *Context, addr uint32) (addrClass, int) {
	if n := len(pctx.IParam); addr >= ejtag.AddrParamIn && addr < ejtag.AddrParamIn+uint32(n)*4 {
		return classParamIn, int(addr-ejtag.AddrParamIn) / 4
	}
	if n := len(pctx.OParam); addr >= ejtag.AddrParamOut && addr < ejtag.AddrParamOut+uint32(n)*4 {
		return classParamOut, int(addr-ejtag.AddrParamOut) / 4
	}
	if n := len(pctx.Code); addr >= ejtag.AddrText && addr < ejtag.AddrText+uint32(n)*4 {
		return classCode, int(addr-ejtag.AddrText) / 4
	}
	if addr == ejtag.AddrStack {
		return classStack, 0
	}
	return classOther, 0
}
