package pracc

import (
	"context"
	"fmt"

	"github.com/ublaster-mips/ublaster/pkg/ejtag"
	"github.com/ublaster-mips/ublaster/pkg/mips32"
)

// fastdataHandlerSize is the fixed size, in bytes, reserved in target RAM
// for the fastdata streaming handler (spec.md §4.10).
const fastdataHandlerSize = 0x80

// fastdataHandlerWords builds the RAM-resident streaming loop: it copies
// words between the fastdata wire register and [startAddr, endAddr] in RAM,
// direction fixed by write (spec.md §4.10). r15 points at the handler's own
// start, used to save/restore the four scratch registers it clobbers.
func fastdataHandlerWords(write bool) []uint32 {
	b := &builder{}
	save := uint32(fastdataHandlerSize - 4)
	b.emit(mips32.SW(8, save, 15))
	b.emit(mips32.SW(9, save-4, 15))
	b.emit(mips32.SW(10, save-8, 15))
	b.emit(mips32.SW(11, save-12, 15))

	b.emit(mips32.LUI(8, mips32.Upper16(ejtag.AddrFastdataArea)))
	b.emit(mips32.ORI(8, 8, mips32.Lower16(ejtag.AddrFastdataArea)))
	b.emit(mips32.LW(9, 0, 8))  // $9 = start addr
	b.emit(mips32.LW(10, 0, 8)) // $10 = end addr

	loop := b.here()
	if write {
		b.emit(mips32.LW(11, 0, 8))  // load from probe fastdata area
		b.emit(mips32.SW(11, 0, 9)) // store to RAM @ $9
	} else {
		b.emit(mips32.LW(11, 0, 9))  // load from RAM @ $9
		b.emit(mips32.SW(11, 0, 8)) // store to probe fastdata area
	}
	br := b.emit(0)
	b.emit(mips32.ADDI(9, 9, 4))
	b.patchBranch(br, loop, func(off uint32) uint32 { return mips32.BNE(10, 9, off) })

	b.emit(mips32.LW(8, save, 15))
	b.emit(mips32.LW(9, save-4, 15))
	b.emit(mips32.LW(10, save-8, 15))
	b.emit(mips32.LW(11, save-12, 15))

	b.emit(mips32.LUI(15, mips32.Upper16(ejtag.AddrText)))
	b.emit(mips32.ORI(15, 15, mips32.Lower16(ejtag.AddrText)))
	b.emit(mips32.JR(15))
	b.emit(mips32.MFC0(15, 31, 0))
	return b.code
}

// fastdataJumpWords is the five-instruction trampoline shifted directly
// through the PrAcc handshake to transfer control into the RAM-resident
// handler at handlerAddr.
func fastdataJumpWords(handlerAddr uint32) []uint32 {
	return []uint32{
		mips32.MTC0(15, 31, 0),
		mips32.LUI(15, mips32.Upper16(handlerAddr)),
		mips32.ORI(15, 15, mips32.Lower16(handlerAddr)),
		mips32.JR(15),
		mips32.NOP,
	}
}

// FastdataXfer streams count words between the probe and target RAM at
// addr using the RAM-resident fastdata handler, uploading the handler only
// when the direction differs from the last transfer (spec.md §4.10 Design
// Note: idempotent handler upload).
func (e *Engine) FastdataXfer(ctx context.Context, handlerAddr, addr uint32, write bool, buf []uint32) error {
	if len(buf) == 0 {
		return nil
	}

	if cur, known := e.Session.FastAccessDirection(); !known || cur != write {
		if err := e.WriteMem(ctx, handlerAddr, 4, fastdataHandlerWords(write)); err != nil {
			return fmt.Errorf("pracc: upload fastdata handler: %w", err)
		}
		e.Session.SetFastAccessDirection(write)
	}

	for _, instr := range fastdataJumpWords(handlerAddr) {
		if _, err := waitForPracc(ctx, e.Session); err != nil {
			return err
		}
		if err := e.Session.SetIR(ctx, ejtag.InstData); err != nil {
			return err
		}
		if err := e.Session.DRScan32Out(ctx, instr); err != nil {
			return err
		}
		if err := e.Session.ClearPracc(ctx); err != nil {
			return err
		}
	}

	if _, err := waitForPracc(ctx, e.Session); err != nil {
		return err
	}
	if err := e.Session.SetIR(ctx, ejtag.InstAddress); err != nil {
		return err
	}
	entryAddr, err := e.Session.DRScan32(ctx, 0)
	if err != nil {
		return err
	}
	if entryAddr != ejtag.AddrFastdataArea {
		return fmt.Errorf("pracc: fastdata handler did not reach entry point (addr=%#x)", entryAddr)
	}

	if _, err := waitForPracc(ctx, e.Session); err != nil {
		return err
	}

	startWord := addr
	if err := e.Session.FastDataScan(ctx, true, &startWord); err != nil {
		return err
	}
	endWord := addr + uint32(len(buf)-1)*4
	if err := e.Session.FastDataScan(ctx, true, &endWord); err != nil {
		return err
	}

	for i := range buf {
		if err := e.Session.FastDataScan(ctx, write, &buf[i]); err != nil {
			return fmt.Errorf("pracc: fastdata word %d: %w", i, err)
		}
	}

	if _, err := waitForPracc(ctx, e.Session); err != nil {
		return err
	}
	if err := e.Session.SetIR(ctx, ejtag.InstAddress); err != nil {
		return err
	}
	// The address the handler returns to is read but not enforced: the
	// bulk transfer has already completed, so a handler that did not
	// cleanly return control to TEXT does not fail the call. The package
	// does not log, so such an address is not reported either.
	if _, err := e.Session.DRScan32(ctx, 0); err != nil {
		return err
	}
	return nil
}
