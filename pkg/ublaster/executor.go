package ublaster

import (
	"context"
	"time"
)

// Executor consumes a caller-provided command queue and dispatches each
// entry to the TAP Driver or Scan Engine, per spec.md §4.6.
type Executor struct {
	Cable *Cable
}

// NewExecutor binds an Executor to a Cable session.
func NewExecutor(c *Cable) *Executor {
	return &Executor{Cable: c}
}

// Run executes queue in order. On any per-command error, the remainder of
// the queue is not executed and the error is surfaced. A trailing flush is
// mandatory even on success, to drain buffered bit-bang bytes.
func (e *Executor) Run(ctx context.Context, queue []Command) error {
	for _, cmd := range queue {
		if err := e.dispatch(ctx, cmd); err != nil {
			return err
		}
	}
	return e.Cable.Flush(ctx)
}

func (e *Executor) dispatch(ctx context.Context, cmd Command) error {
	c := e.Cable
	switch cmd.Kind {
	case CommandReset:
		return c.ResetTAP(cmd.TRST, cmd.SRST)
	case CommandRunTest:
		return c.RunTest(ctx, cmd.Cycles, cmd.EndState)
	case CommandStableClocks:
		return c.StableClocks(ctx, cmd.Cycles)
	case CommandScan:
		tdo, err := c.Scan(ctx, cmd.IsIR, cmd.Bits, cmd.NBits, cmd.Dir, cmd.EndState)
		if err != nil {
			return err
		}
		if cmd.TDO != nil {
			*cmd.TDO = tdo
		}
		return nil
	case CommandPathMove:
		return c.PathMove(ctx, cmd.Path)
	case CommandTMS:
		return c.TMSSeq(ctx, cmd.TMSBits, cmd.TMSLen)
	case CommandSleep:
		select {
		case <-time.After(cmd.Duration):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	default:
		return &ProtocolError{Msg: "executor: unknown command kind"}
	}
}
