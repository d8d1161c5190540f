// Command walletcli drives the wallet engine end to end from a terminal:
// the stand-in for the GUI's event loop, exercising every package under
// internal/ the way a real front end would.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
