package main

import (
	"os"

	"github.com/aiwars-hackathon/hackdash/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
