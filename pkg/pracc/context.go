// Package pracc implements the MIPS32 PrAcc (processor access) debug
// engine: the executor that services processor fetch/load/store
// transactions through EJTAG dmseg (spec.md §4.8), the fixed MIPS code
// routines for memory and register transfer (spec.md §4.9), and the
// fastdata bulk transfer mode (spec.md §4.10).
package pracc

// stackDepth is the maximum depth of the simulated debug stack a PrAcc
// routine can push registers onto (spec.md §3: stack: u32[≤32]).
const stackDepth = 32

// Context is the PrAcc context named in spec.md §3: the code, parameter,
// and stack buffers borrowed for the duration of one Exec call.
type Context struct {
	Code   []uint32
	IParam []uint32
	OParam []uint32

	stack       [stackDepth]uint32
	StackOffset int

	// sawText tracks whether the routine has already fetched TEXT once;
	// the second fetch is the completion signal Exec watches for.
	sawText bool
}

// pushStack stores data at the next free stack slot and advances the
// offset (post-increment store — the asymmetric half of the push/pop pair
// described in Design Note "Dmseg routing").
func (c *Context) pushStack(data uint32) error {
	if c.StackOffset >= stackDepth {
		return errStackOverflow
	}
	c.stack[c.StackOffset] = data
	c.StackOffset++
	return nil
}

// popStack retreats the offset then returns the word stored there
// (pre-decrement load), retrieving the most recently pushed value.
func (c *Context) popStack() (uint32, error) {
	if c.StackOffset <= 0 {
		return 0, errStackUnderflow
	}
	c.StackOffset--
	return c.stack[c.StackOffset], nil
}
