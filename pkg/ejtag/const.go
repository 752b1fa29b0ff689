// Package ejtag implements the EJTAG scan primitives named in spec.md §4.7:
// placing an IR value, shifting a 32-bit DR, and performing a fastdata scan
// (1-bit SPrAcc + 32-bit data) on the JTAG chain. It is the thin layer
// between the USB-Blaster cable engine (pkg/ublaster) and the MIPS32 PrAcc
// debug engine (pkg/pracc).
package ejtag

// dmseg addresses, the standard MIPS debug memory segment constants used to
// route PrAcc transactions (spec.md §6).
const (
	AddrText         = 0xFF200200
	AddrStack        = 0xFF204000
	AddrParamIn      = 0xFF201000
	AddrParamOut     = 0xFF202000
	AddrFastdataArea = 0xFF200000
)

// EJTAG IR instructions (spec.md §6), values as defined by the MIPS EJTAG
// specification.
const (
	InstIDCODE     = 0x01
	InstIMPCODE    = 0x03
	InstAddress    = 0x08
	InstData       = 0x09
	InstControl    = 0x0a
	InstAll        = 0x0b
	InstEJTAGBoot  = 0x0c
	InstNormalBoot = 0x0d
	InstFastdata   = 0x0e
)

// irBits is the width of the EJTAG instruction register.
const irBits = 5

// EJTAG control register bits used by the PrAcc handshake (spec.md §6):
// PRACC is the pending-access flag, PRNW is the transfer direction
// (1 = processor writing to the probe).
const (
	CtrlPRACC = 1 << 18
	CtrlPRNW  = 1 << 19
)
