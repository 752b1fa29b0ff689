package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ublaster-mips/ublaster/pkg/ejtag"
	"github.com/ublaster-mips/ublaster/pkg/pracc"
	"github.com/ublaster-mips/ublaster/pkg/ublaster"
)

var (
	memAddr  string
	memCount int
	memWidth int
	memValue string
)

var readMemCmd = &cobra.Command{
	Use:   "readmem",
	Short: "Read target memory through the PrAcc debug engine",
	RunE: func(c *cobra.Command, args []string) error {
		addr, err := parseAddr(memAddr)
		if err != nil {
			return err
		}
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
		words, err := eng.ReadMem(ctx, addr, memWidth, memCount)
		if err != nil {
			return err
		}
		for i, w := range words {
			fmt.Printf("0x%08X: 0x%08X\n", addr+uint32(i)*uint32(memWidth), w)
		}
		return nil
	},
}

var writeMemCmd = &cobra.Command{
	Use:   "writemem",
	Short: "Write a single word to target memory through the PrAcc debug engine",
	RunE: func(c *cobra.Command, args []string) error {
		addr, err := parseAddr(memAddr)
		if err != nil {
			return err
		}
		value, err := parseAddr(memValue)
		if err != nil {
			return fmt.Errorf("invalid --value: %w", err)
		}
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
		if err := eng.WriteWord(ctx, addr, value); err != nil {
			return err
		}
		fmt.Printf("wrote 0x%08X to 0x%08X\n", value, addr)
		return nil
	},
}

func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("parse address %q: %w", s, err)
	}
	return uint32(v), nil
}

func init() {
	readMemCmd.Flags().StringVar(&memAddr, "addr", "0x80000000", "target address")
	readMemCmd.Flags().IntVar(&memCount, "count", 1, "number of units to read")
	readMemCmd.Flags().IntVar(&memWidth, "width", 4, "access width in bytes (1, 2 or 4)")

	writeMemCmd.Flags().StringVar(&memAddr, "addr", "0x80000000", "target address")
	writeMemCmd.Flags().StringVar(&memValue, "value", "0x0", "32-bit value to write")

	rootCmd.AddCommand(readMemCmd)
	rootCmd.AddCommand(writeMemCmd)
}
