package main

import (
	"fmt"
	"os"

	"github.com/artifactrelay/connector/internal/cli"
)

var (
	Version   = "1.0.0"
	BuildTime = "2026-07-31"
)

func main() {
	cli.Version = Version

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
