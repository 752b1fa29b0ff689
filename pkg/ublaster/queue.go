package ublaster

import (
	"time"

	"github.com/ublaster-mips/ublaster/pkg/tap"
)

// CommandKind tags the variant carried by a Command, mirroring the caller's
// JTAG command queue named in spec.md §1 as an external collaborator.
type CommandKind uint8

const (
	CommandReset CommandKind = iota
	CommandRunTest
	CommandScan
	CommandPathMove
	CommandTMS
	CommandStableClocks
	CommandSleep
)

// Command is one entry of the caller's JTAG command queue. Only the fields
// relevant to Kind are read by the Command Executor.
type Command struct {
	Kind CommandKind

	// CommandReset
	TRST, SRST bool

	// CommandRunTest / CommandStableClocks
	Cycles   int
	EndState tap.State

	// CommandScan
	IsIR  bool
	Bits  []byte
	NBits int
	Dir   ScanDir
	TDO   *[]byte // set by the executor when the scan captures TDO

	// CommandPathMove
	Path []tap.State

	// CommandTMS
	TMSBits []byte
	TMSLen  int

	// CommandSleep
	Duration time.Duration
}
