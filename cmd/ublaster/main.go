package main

import "github.com/ublaster-mips/ublaster/cmd/ublaster/cmd"

func main() {
	cmd.Execute()
}
