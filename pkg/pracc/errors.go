package pracc

import "github.com/ublaster-mips/ublaster/pkg/ublaster"

// The PrAcc engine reuses the cable engine's typed error kinds (spec.md §7
// defines one error hierarchy shared by the whole debug engine, not one per
// subsystem).
var (
	errStackOverflow  = &ublaster.DeviceError{Msg: "pracc: debug stack overflow"}
	errStackUnderflow = &ublaster.DeviceError{Msg: "pracc: debug stack underflow"}
)
