package main

import (
	"fmt"
	"os"

	"github.com/almanova/preocupacional/cmd/preocupacional/commands"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
