// Command drdisk inspects the disk usage of a directory interactively.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/drdisk/internal/cli"
)

// version is set at build time.
//
//nolint:gochecknoglobals // Set by the linker
var version = "unknown - unofficial build"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
