// Package mips32 provides the MIPS32 instruction encoding primitives used
// to build the fixed PrAcc code templates in pkg/pracc: the standard R/I/J
// instruction forms and the mnemonic builders named in spec.md §6.
package mips32

// Opcode field values (bits 31..26) and SPECIAL/COP0 function codes, as
// used by the standard R/I/J instruction forms.
const (
	opBEQ  = 0x04
	opBNE  = 0x05
	opADDI = 0x08
	opCOP0 = 0x10
	opLUI  = 0x0F
	opLW   = 0x23
	opLBU  = 0x24
	opLHU  = 0x25
	opSB   = 0x28
	opSH   = 0x29
	opSW   = 0x2B
	opORI  = 0x0D

	functJR   = 0x08
	functMFHI = 0x10
	functMTHI = 0x11
	functMFLO = 0x12
	functMTLO = 0x13

	cop0MF = 0x00
	cop0MT = 0x04
)

// DRET and SDBBP are fixed EJTAG debug-mode instruction encodings.
const (
	DRET  = 0x4200001F
	SDBBP = 0x7000003F
)

// RInst encodes the standard MIPS32 R-type (register) instruction form.
func RInst(opcode, rs, rt, rd, shamt, funct uint32) uint32 {
	return (opcode << 26) | (rs << 21) | (rt << 16) | (rd << 11) | (shamt << 6) | funct
}

// IInst encodes the standard MIPS32 I-type (immediate) instruction form.
// immd is masked to 16 bits, matching two's-complement branch/immediate
// encoding.
func IInst(opcode, rs, rt, immd uint32) uint32 {
	return (opcode << 26) | (rs << 21) | (rt << 16) | (immd & 0xFFFF)
}

// JInst encodes the standard MIPS32 J-type (jump) instruction form.
func JInst(opcode, addr uint32) uint32 {
	return (opcode << 26) | (addr & 0x03FFFFFF)
}

// Upper16 and Lower16 split a 32-bit constant into the halves used by
// LUI/ORI pairs to materialize it in a register. Neg16 produces the 16-bit
// two's-complement encoding of a negative byte offset for load/store base
// addressing.
func Upper16(v uint32) uint32 { return (v >> 16) & 0xFFFF }
func Lower16(v uint32) uint32 { return v & 0xFFFF }
func Neg16(v uint32) uint32   { return (-v) & 0xFFFF }

// Offset16 encodes a signed word-granularity branch delta as the 16-bit
// two's-complement immediate B/BEQ/BNE expect. delta is target instruction
// index minus branch instruction index minus one, matching the templates'
// own NEG16(n) backward-branch convention for negative deltas.
func Offset16(delta int) uint32 { return uint32(int32(delta)) & 0xFFFF }

const NOP = 0

func ADDI(tar, src, val uint32) uint32 { return IInst(opADDI, src, tar, val) }
func B(off uint32) uint32              { return BEQ(0, 0, off) }
func BEQ(src, tar, off uint32) uint32  { return IInst(opBEQ, src, tar, off) }
func BNE(src, tar, off uint32) uint32  { return IInst(opBNE, src, tar, off) }
func JR(reg uint32) uint32             { return RInst(0, reg, 0, 0, 0, functJR) }
func MFC0(gpr, cpr, sel uint32) uint32 { return RInst(opCOP0, cop0MF, gpr, cpr, 0, sel) }
func MTC0(gpr, cpr, sel uint32) uint32 { return RInst(opCOP0, cop0MT, gpr, cpr, 0, sel) }
func LBU(reg, off, base uint32) uint32 { return IInst(opLBU, base, reg, off) }
func LHU(reg, off, base uint32) uint32 { return IInst(opLHU, base, reg, off) }
func LUI(reg, val uint32) uint32       { return IInst(opLUI, 0, reg, val) }
func LW(reg, off, base uint32) uint32  { return IInst(opLW, base, reg, off) }
func MFLO(reg uint32) uint32           { return RInst(0, 0, 0, reg, 0, functMFLO) }
func MFHI(reg uint32) uint32           { return RInst(0, 0, 0, reg, 0, functMFHI) }
func MTLO(reg uint32) uint32           { return RInst(0, reg, 0, 0, 0, functMTLO) }
func MTHI(reg uint32) uint32           { return RInst(0, reg, 0, 0, 0, functMTHI) }
func ORI(tar, src, val uint32) uint32  { return IInst(opORI, src, tar, val) }
func SB(reg, off, base uint32) uint32  { return IInst(opSB, base, reg, off) }
func SH(reg, off, base uint32) uint32  { return IInst(opSH, base, reg, off) }
func SW(reg, off, base uint32) uint32  { return IInst(opSW, base, reg, off) }
