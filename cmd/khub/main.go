// Package main is the entry point for the khub CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/kindralabs/khub/internal/cli"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var _ = []string{commit, date}

func main() {
	// Local overrides for development; missing file is fine.
	_ = godotenv.Load()

	if err := cli.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
