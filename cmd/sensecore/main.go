// Command sensecore inspects and configures core module discovery.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(&globalOptions{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
