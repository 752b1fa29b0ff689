package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ublaster-mips/ublaster/pkg/ublaster"
)

var (
	verbose     bool
	backendFlag string
	vidFlag     uint16
	pidFlag     uint16
)

var rootCmd = &cobra.Command{
	Use:   "ublaster",
	Short: "Altera USB-Blaster JTAG debug engine for MIPS32/EJTAG targets",
	Long: `ublaster drives an Altera USB-Blaster class JTAG adapter to halt,
read, and write a MIPS32 target through its EJTAG PrAcc debug handshake.

Examples:
  ublaster idcode                        # Read the target's JTAG IDCODE
  ublaster interfaces                    # List connected USB-Blaster adapters
  ublaster readmem --addr 0x80001000 --count 16
  ublaster regs`,
	Version: "0.1.0",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "low-level USB backend (default: first registered)")
	rootCmd.PersistentFlags().Uint16Var(&vidFlag, "vid", ublaster.DefaultConfig().VID, "USB vendor ID")
	rootCmd.PersistentFlags().Uint16Var(&pidFlag, "pid", ublaster.DefaultConfig().PID, "USB product ID")
}

func cableConfig() ublaster.Config {
	cfg := ublaster.DefaultConfig()
	cfg.Backend = backendFlag
	cfg.VID = vidFlag
	cfg.PID = pidFlag
	logf("connecting to %s (vid=%#04x pid=%#04x backend=%q)", cfg.Description, cfg.VID, cfg.PID, cfg.Backend)
	return cfg
}

// logf prints a debug trace line when --verbose is set. Library packages
// never log (pkg/ublaster, pkg/ejtag, pkg/pracc return errors instead); this
// is the one place in the module that does.
func logf(format string, args ...interface{}) {
	if verbose {
		log.Printf(format, args...)
	}
}
