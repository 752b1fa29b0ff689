package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ublaster-mips/ublaster/pkg/ublaster"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List connected USB-Blaster-class adapters",
	RunE: func(c *cobra.Command, args []string) error {
		found, err := ublaster.DiscoverInterfaces(context.Background())
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Println("no USB-Blaster-class devices found")
			return nil
		}
		for _, info := range found {
			fmt.Println(info.Label())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(interfacesCmd)
}
