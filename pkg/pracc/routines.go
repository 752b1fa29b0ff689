package pracc

import (
	"context"

	"github.com/ublaster-mips/ublaster/pkg/ejtag"
	"github.com/ublaster-mips/ublaster/pkg/mips32"
)

// maxBlockWords bounds a single PrAcc transfer, matching the 0x400-word
// chunking read_mem32 uses in the original implementation (spec.md §9 Open
// Question 1: read_mem16/read_mem8 chunk the same way here, rather than
// allocating one unbounded param_out buffer per call).
const maxBlockWords = 0x400

// Engine runs the fixed PrAcc code routines (spec.md §4.9) over a session.
type Engine struct {
	Session *ejtag.Session
}

// NewEngine binds a PrAcc routine engine to an EJTAG session.
func NewEngine(session *ejtag.Session) *Engine {
	return &Engine{Session: session}
}

// builder assembles a fixed instruction sequence, resolving branch
// immediates from the instruction indices of its own labels rather than
// hardcoded magic constants.
type builder struct {
	code []uint32
}

func (b *builder) emit(instr uint32) int {
	b.code = append(b.code, instr)
	return len(b.code) - 1
}

func (b *builder) here() int { return len(b.code) }

// patchBranch rewrites the instruction at idx so its offset field targets
// target, preserving the opcode/register fields already encoded in mk.
func (b *builder) patchBranch(idx, target int, mk func(offset uint32) uint32) {
	b.code[idx] = mk(mips32.Offset16(target - idx - 1))
}

const (
	praccStack    = ejtag.AddrStack
	praccParamIn  = ejtag.AddrParamIn
	praccParamOut = ejtag.AddrParamOut
)

// saveRegs emits MTC0 $15->DeSave, materializes $15 = praccStack, then
// stores regs (in order) through $15, the teacher's standard register-save
// preamble used by every routine below.
func saveRegs(b *builder, regs ...uint32) {
	b.emit(mips32.MTC0(15, 31, 0))
	b.emit(mips32.LUI(15, mips32.Upper16(praccStack)))
	b.emit(mips32.ORI(15, 15, mips32.Lower16(praccStack)))
	for _, r := range regs {
		b.emit(mips32.SW(r, 0, 15))
	}
}

// restoreRegs reloads regs in reverse order through $15, then branches back
// to start and restores $15 from COP0 DeSave in the branch delay slot.
func restoreRegs(b *builder, start int, regs ...uint32) {
	for i := len(regs) - 1; i >= 0; i-- {
		b.emit(mips32.LW(regs[i], 0, 15))
	}
	br := b.emit(0)
	b.emit(mips32.MFC0(15, 31, 0))
	b.patchBranch(br, start, mips32.B)
}

// readMemCode builds the read_mem{32,16,8} template: copy count words of
// size-byte units from the address given in param_in[0] to param_out,
// param_in[1] holds the block's word count.
func readMemCode(loadWidth func(reg, off, base uint32) uint32, stride uint32) []uint32 {
	b := &builder{}
	start := b.here()
	saveRegs(b, 8, 9, 10, 11)

	b.emit(mips32.LUI(8, mips32.Upper16(praccParamIn)))
	b.emit(mips32.ORI(8, 8, mips32.Lower16(praccParamIn)))
	b.emit(mips32.LW(9, 0, 8))  // $9 = addr
	b.emit(mips32.LW(10, 4, 8)) // $10 = count
	b.emit(mips32.LUI(11, mips32.Upper16(praccParamOut)))
	b.emit(mips32.ORI(11, 11, mips32.Lower16(praccParamOut)))

	loop := b.here()
	beq := b.emit(0)
	b.emit(mips32.NOP)

	b.emit(loadWidth(8, 0, 9))
	b.emit(mips32.SW(8, 0, 11))
	b.emit(mips32.ADDI(10, 10, mips32.Neg16(1)))
	b.emit(mips32.ADDI(9, 9, stride))
	b.emit(mips32.ADDI(11, 11, 4))
	br := b.emit(0)
	b.emit(mips32.NOP)

	end := b.here()
	restoreRegs(b, start, 8, 9, 10, 11)

	b.patchBranch(beq, end, func(off uint32) uint32 { return mips32.BEQ(0, 10, off) })
	b.patchBranch(br, loop, mips32.B)
	return b.code
}

// ReadMem32Code, ReadMem16Code and ReadMem8Code are the fixed routines for
// reading memory in 32/16/8-bit units (spec.md §4.9).
func ReadMem32Code() []uint32 { return readMemCode(mips32.LW, 4) }
func ReadMem16Code() []uint32 { return readMemCode(mips32.LHU, 2) }
func ReadMem8Code() []uint32  { return readMemCode(mips32.LBU, 1) }

// ReadU32Code reads a single word directly through param_in/param_out
// without the loop overhead of ReadMem32Code.
func ReadU32Code() []uint32 {
	b := &builder{}
	start := b.here()
	b.emit(mips32.MTC0(15, 31, 0))
	b.emit(mips32.LUI(15, mips32.Upper16(praccStack)))
	b.emit(mips32.ORI(15, 15, mips32.Lower16(praccStack)))
	b.emit(mips32.SW(8, 0, 15))

	b.emit(mips32.LW(8, mips32.Neg16(praccStack-praccParamIn), 15))
	b.emit(mips32.LW(8, 0, 8))
	b.emit(mips32.SW(8, mips32.Neg16(praccStack-praccParamOut), 15))

	b.emit(mips32.LW(8, 0, 15))
	br := b.emit(0)
	b.emit(mips32.MFC0(15, 31, 0))
	b.patchBranch(br, start, mips32.B)
	return b.code
}

// writeMemCode builds the write_mem{32,16,8} template: copy count
// width-sized units from param_in[2:] to the address given in param_in[0].
func writeMemCode(storeWidth func(reg, off, base uint32) uint32, stride uint32) []uint32 {
	b := &builder{}
	start := b.here()
	saveRegs(b, 8, 9, 10, 11)

	b.emit(mips32.LUI(8, mips32.Upper16(praccParamIn)))
	b.emit(mips32.ORI(8, 8, mips32.Lower16(praccParamIn)))
	b.emit(mips32.LW(9, 0, 8))  // $9 = dest addr
	b.emit(mips32.LW(10, 4, 8)) // $10 = count
	b.emit(mips32.ADDI(8, 8, 8))

	loop := b.here()
	beq := b.emit(0)
	b.emit(mips32.NOP)

	b.emit(mips32.LW(11, 0, 8))
	b.emit(storeWidth(11, 0, 9))
	b.emit(mips32.ADDI(10, 10, mips32.Neg16(1)))
	b.emit(mips32.ADDI(9, 9, stride))
	b.emit(mips32.ADDI(8, 8, 4))
	br := b.emit(0)
	b.emit(mips32.NOP)

	end := b.here()
	restoreRegs(b, start, 8, 9, 10, 11)

	b.patchBranch(beq, end, func(off uint32) uint32 { return mips32.BEQ(0, 10, off) })
	b.patchBranch(br, loop, mips32.B)
	return b.code
}

// WriteMem32Code, WriteMem16Code and WriteMem8Code are the fixed routines
// for writing memory in 32/16/8-bit units (spec.md §4.9).
func WriteMem32Code() []uint32 { return writeMemCode(mips32.SW, 4) }
func WriteMem16Code() []uint32 { return writeMemCode(mips32.SH, 2) }
func WriteMem8Code() []uint32  { return writeMemCode(mips32.SB, 1) }

// WriteU32Code writes a single word directly through param_in without the
// loop overhead of WriteMem32Code.
func WriteU32Code() []uint32 {
	b := &builder{}
	start := b.here()
	b.emit(mips32.MTC0(15, 31, 0))
	b.emit(mips32.LUI(15, mips32.Upper16(praccStack)))
	b.emit(mips32.ORI(15, 15, mips32.Lower16(praccStack)))
	b.emit(mips32.SW(8, 0, 15))
	b.emit(mips32.SW(9, 0, 15))

	b.emit(mips32.LW(8, mips32.Neg16(praccStack-praccParamIn-4), 15)) // data
	b.emit(mips32.LW(9, mips32.Neg16(praccStack-praccParamIn), 15))  // addr
	b.emit(mips32.SW(8, 0, 9))

	b.emit(mips32.LW(9, 0, 15))
	b.emit(mips32.LW(8, 0, 15))
	br := b.emit(0)
	b.emit(mips32.MFC0(15, 31, 0))
	b.patchBranch(br, start, mips32.B)
	return b.code
}

// numCoreRegs is the register-block length moved by ReadRegsCode and
// WriteRegsCode: GPR[0..31] followed by status, lo, hi, badvaddr, cause
// and depc (spec.md §6).
const numCoreRegs = 38

// gprLoadOrder lists the GPRs loaded by WriteRegsCode in the original
// routine's order: $1 and $15 first (since $15 is about to be clobbered as
// the stack pointer and $1 needs special handling), then $3..$14 and
// $16..$31 in ascending order, skipping $0 (hardwired zero) and $2 (handled
// with the special-purpose registers). ReadRegsCode does not use it; it
// stores $0, $1, $15 and then $2..$14, $16..$31 in its own order.
var gprLoadOrder = func() []uint32 {
	order := []uint32{1, 15}
	for r := uint32(3); r <= 14; r++ {
		order = append(order, r)
	}
	for r := uint32(16); r <= 31; r++ {
		order = append(order, r)
	}
	return order
}()

// WriteRegsCode loads the processor's general and special-purpose
// registers from param_in, formatted as RegisterBlock.Words().
func WriteRegsCode() []uint32 {
	b := &builder{}
	start := b.here()
	b.emit(mips32.LUI(2, mips32.Upper16(praccParamIn)))
	b.emit(mips32.ORI(2, 2, mips32.Lower16(praccParamIn)))
	b.emit(mips32.LW(1, 1*4, 2))
	b.emit(mips32.LW(15, 15*4, 2))
	b.emit(mips32.MTC0(15, 31, 0))
	b.emit(mips32.LUI(15, mips32.Upper16(praccStack)))
	b.emit(mips32.ORI(15, 15, mips32.Lower16(praccStack)))
	b.emit(mips32.SW(1, 0, 15))
	b.emit(mips32.LUI(1, mips32.Upper16(praccParamIn)))
	b.emit(mips32.ORI(1, 1, mips32.Lower16(praccParamIn)))
	for _, r := range gprLoadOrder[2:] {
		b.emit(mips32.LW(r, r*4, 1))
	}

	b.emit(mips32.LW(2, 32*4, 1))
	b.emit(mips32.MTC0(2, 12, 0)) // status
	b.emit(mips32.LW(2, 33*4, 1))
	b.emit(mips32.MTLO(2))
	b.emit(mips32.LW(2, 34*4, 1))
	b.emit(mips32.MTHI(2))
	b.emit(mips32.LW(2, 35*4, 1))
	b.emit(mips32.MTC0(2, 8, 0)) // badvaddr
	b.emit(mips32.LW(2, 36*4, 1))
	b.emit(mips32.MTC0(2, 13, 0)) // cause
	b.emit(mips32.LW(2, 37*4, 1))
	b.emit(mips32.MTC0(2, 24, 0)) // depc

	b.emit(mips32.LW(2, 2*4, 1))
	b.emit(mips32.LW(1, 0, 15))
	br := b.emit(0)
	b.emit(mips32.MFC0(15, 31, 0))
	b.patchBranch(br, start, mips32.B)
	return b.code
}

// ReadRegsCode stores the processor's general and special-purpose
// registers into param_out, formatted as RegisterBlock.Words().
func ReadRegsCode() []uint32 {
	b := &builder{}
	start := b.here()
	b.emit(mips32.MTC0(2, 31, 0))
	b.emit(mips32.LUI(2, mips32.Upper16(praccParamOut)))
	b.emit(mips32.ORI(2, 2, mips32.Lower16(praccParamOut)))
	b.emit(mips32.SW(0, 0*4, 2))
	b.emit(mips32.SW(1, 1*4, 2))
	b.emit(mips32.SW(15, 15*4, 2))
	b.emit(mips32.MFC0(2, 31, 0))
	b.emit(mips32.MTC0(15, 31, 0))
	b.emit(mips32.LUI(15, mips32.Upper16(praccStack)))
	b.emit(mips32.ORI(15, 15, mips32.Lower16(praccStack)))
	b.emit(mips32.SW(1, 0, 15))
	b.emit(mips32.SW(2, 0, 15))
	b.emit(mips32.LUI(1, mips32.Upper16(praccParamOut)))
	b.emit(mips32.ORI(1, 1, mips32.Lower16(praccParamOut)))
	for r := uint32(2); r <= 14; r++ {
		b.emit(mips32.SW(r, r*4, 1))
	}
	for r := uint32(16); r <= 31; r++ {
		b.emit(mips32.SW(r, r*4, 1))
	}

	b.emit(mips32.MFC0(2, 12, 0)) // status
	b.emit(mips32.SW(2, 32*4, 1))
	b.emit(mips32.MFLO(2))
	b.emit(mips32.SW(2, 33*4, 1))
	b.emit(mips32.MFHI(2))
	b.emit(mips32.SW(2, 34*4, 1))
	b.emit(mips32.MFC0(2, 8, 0)) // badvaddr
	b.emit(mips32.SW(2, 35*4, 1))
	b.emit(mips32.MFC0(2, 13, 0)) // cause
	b.emit(mips32.SW(2, 36*4, 1))
	b.emit(mips32.MFC0(2, 24, 0)) // depc
	b.emit(mips32.SW(2, 37*4, 1))

	b.emit(mips32.LW(2, 0, 15))
	b.emit(mips32.LW(1, 0, 15))
	br := b.emit(0)
	b.emit(mips32.MFC0(15, 31, 0))
	b.patchBranch(br, start, mips32.B)
	return b.code
}

// exec1 runs code to completion once via the cycle!=0 loop in Exec, with
// the given input parameters and an oparamCount-word output buffer.
func (e *Engine) exec1(ctx context.Context, code []uint32, iparam []uint32, oparamCount int) ([]uint32, error) {
	pctx := &Context{Code: code, IParam: iparam, OParam: make([]uint32, oparamCount)}
	if err := Exec(ctx, e.Session, pctx, 1); err != nil {
		return nil, err
	}
	return pctx.OParam, nil
}

// ReadMem reads count units of width bytes (1, 2 or 4) from addr, chunking
// at maxBlockWords per PrAcc transaction.
func (e *Engine) ReadMem(ctx context.Context, addr uint32, width, count int) ([]uint32, error) {
	code, stride := readMemCodeFor(width)
	out := make([]uint32, 0, count)
	for count > 0 {
		block := count
		if block > maxBlockWords {
			block = maxBlockWords
		}
		words, err := e.exec1(ctx, code, []uint32{addr, uint32(block)}, block)
		if err != nil {
			return nil, err
		}
		out = append(out, words...)
		count -= block
		addr += uint32(block) * stride
	}
	return out, nil
}

// WriteMem writes data (count = len(data)) as width-byte units starting at
// addr, chunking at maxBlockWords per PrAcc transaction.
func (e *Engine) WriteMem(ctx context.Context, addr uint32, width int, data []uint32) error {
	code, stride := writeMemCodeFor(width)
	for len(data) > 0 {
		block := len(data)
		if block > maxBlockWords {
			block = maxBlockWords
		}
		iparam := make([]uint32, 0, block+2)
		iparam = append(iparam, addr, uint32(block))
		iparam = append(iparam, data[:block]...)
		if _, err := e.exec1(ctx, code, iparam, 0); err != nil {
			return err
		}
		data = data[block:]
		addr += uint32(block) * stride
	}
	return nil
}

// ReadWord reads a single 32-bit word via the dedicated single-transfer
// routine, avoiding the loop overhead of ReadMem.
func (e *Engine) ReadWord(ctx context.Context, addr uint32) (uint32, error) {
	out, err := e.exec1(ctx, ReadU32Code(), []uint32{addr}, 1)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// WriteWord writes a single 32-bit word via the dedicated single-transfer
// routine, avoiding the loop overhead of WriteMem.
func (e *Engine) WriteWord(ctx context.Context, addr, value uint32) error {
	_, err := e.exec1(ctx, WriteU32Code(), []uint32{addr, value}, 0)
	return err
}

// ReadRegs reads the full register block (spec.md §6).
func (e *Engine) ReadRegs(ctx context.Context) (*RegisterBlock, error) {
	out, err := e.exec1(ctx, ReadRegsCode(), nil, numCoreRegs)
	if err != nil {
		return nil, err
	}
	return registerBlockFromWords(out), nil
}

// WriteRegs writes the full register block (spec.md §6).
func (e *Engine) WriteRegs(ctx context.Context, regs *RegisterBlock) error {
	_, err := e.exec1(ctx, WriteRegsCode(), regs.Words(), 0)
	return err
}

func readMemCodeFor(width int) ([]uint32, uint32) {
	switch width {
	case 1:
		return ReadMem8Code(), 1
	case 2:
		return ReadMem16Code(), 2
	default:
		return ReadMem32Code(), 4
	}
}

func writeMemCodeFor(width int) ([]uint32, uint32) {
	switch width {
	case 1:
		return WriteMem8Code(), 1
	case 2:
		return WriteMem16Code(), 2
	default:
		return WriteMem32Code(), 4
	}
}
