package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ublaster-mips/ublaster/pkg/ejtag"
	"github.com/ublaster-mips/ublaster/pkg/pracc"
	"github.com/ublaster-mips/ublaster/pkg/ublaster"
)

var regsCmd = &cobra.Command{
	Use:   "regs",
	Short: "Dump the target's core register block",
	RunE: func(c *cobra.Command, args []string) error {
		ctx := context.Background()
		cable, err := ublaster.NewCable(ctx, cableConfig())
		if err != nil {
			return err
		}
		defer func() { _ = cable.Quit(ctx) }()
		if err := cable.ResetTAP(false, false); err != nil {
			return err
		}

		eng := pracc.NewEngine(ejtag.NewSession(cable))
		regs, err := eng.ReadRegs(ctx)
		if err != nil {
			return err
		}

		for i, v := range regs.GPR {
			fmt.Printf("$%-3d = 0x%08X\n", i, v)
		}
		fmt.Printf("status   = 0x%08X\n", regs.Status)
		fmt.Printf("lo       = 0x%08X\n", regs.Lo)
		fmt.Printf("hi       = 0x%08X\n", regs.Hi)
		fmt.Printf("badvaddr = 0x%08X\n", regs.BadVAddr)
		fmt.Printf("cause    = 0x%08X\n", regs.Cause)
		fmt.Printf("depc     = 0x%08X\n", regs.DEPC)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regsCmd)
}
