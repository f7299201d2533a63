// Command sega runs graph algorithms on a simulated SEGA accelerator.
package main

import (
	"github.com/sarchlab/sega/sega/cmd"
	"github.com/tebeka/atexit"
)

func main() {
	if err := cmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
