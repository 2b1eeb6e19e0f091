// Package main provides the CLI for the structload data loader.
package main

import (
	"os"

	"github.com/leapstack-labs/structload/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
