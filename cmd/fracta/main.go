// Command fracta is a thin command-line front end over the fracta core
// library. See internal/cmd for the actual subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/fracta-app/fracta/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
