package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ublaster-mips/ublaster/pkg/ejtag"
	"github.com/ublaster-mips/ublaster/pkg/pracc"
	"github.com/ublaster-mips/ublaster/pkg/ublaster"
)

var (
	fastdataAddr    string
	fastdataHandler string
	fastdataCount   int
)

var fastdataCmd = &cobra.Command{
	Use:   "fastdata",
	Short: "Bulk-read target memory using the fastdata streaming handler",
	RunE: func(c *cobra.Command, args []string) error {
		addr, err := parseAddr(fastdataAddr)
		if err != nil {
			return err
		}
		handlerAddr, err := parseAddr(fastdataHandler)
		if err != nil {
			return fmt.Errorf("invalid --handler: %w", err)
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
		buf := make([]uint32, fastdataCount)
		if err := eng.FastdataXfer(ctx, handlerAddr, addr, false, buf); err != nil {
			return err
		}
		for i, w := range buf {
			fmt.Printf("0x%08X: 0x%08X\n", addr+uint32(i)*4, w)
		}
		return nil
	},
}

func init() {
	fastdataCmd.Flags().StringVar(&fastdataAddr, "addr", "0x80000000", "starting target address")
	fastdataCmd.Flags().StringVar(&fastdataHandler, "handler", "0xA0000000", "RAM address to host the streaming handler")
	fastdataCmd.Flags().IntVar(&fastdataCount, "count", 16, "number of words to transfer")
	rootCmd.AddCommand(fastdataCmd)
}
