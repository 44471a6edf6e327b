// Package main is the entry point for the portalsync CLI.
// The CLI drives the portal automation workflows and the local serve surface.
package main

import (
	"os"

	"portalsync/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
