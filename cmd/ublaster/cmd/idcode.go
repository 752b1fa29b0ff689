package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ublaster-mips/ublaster/pkg/ejtag"
	"github.com/ublaster-mips/ublaster/pkg/idcode"
	"github.com/ublaster-mips/ublaster/pkg/ublaster"
)

var idcodeCmd = &cobra.Command{
	Use:   "idcode",
	Short: "Read the target's JTAG IDCODE",
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
		session := ejtag.NewSession(cable)
		if err := session.SetIR(ctx, ejtag.InstIDCODE); err != nil {
			return err
		}
		raw, err := session.DRScan32(ctx, 0)
		if err != nil {
			return err
		}

		code := idcode.ParseIDCode(raw)
		fmt.Printf("IDCODE: 0x%08X\n", code.Raw)
		fmt.Printf("  version:      %d\n", code.Version)
		fmt.Printf("  part number:  0x%04X\n", code.PartNumber)
		if man, ok := idcode.LookupManufacturer(code.ManufacturerCode); ok {
			fmt.Printf("  manufacturer: %s (%s)\n", man.Name, man.Abbreviation)
		} else {
			fmt.Printf("  manufacturer: JEP106 0x%03X (unknown)\n", code.ManufacturerCode)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(idcodeCmd)
}
