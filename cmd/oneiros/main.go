// Command oneiros is the thin CLI surface spec §1 names as an external
// collaborator: every subcommand is a few lines wiring flags into
// internal/oneiros/* so the core's replay pipeline and dream collector
// are reachable without a one-off main.go per operation.
package main

import (
	"fmt"
	"os"

	"github.com/oneiros/oneiros/cmd/oneiros/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "oneiros:", err)
		os.Exit(1)
	}
}
