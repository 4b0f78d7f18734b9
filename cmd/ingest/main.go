package main

import (
	"os"

	"github.com/dj-pearson/pulse-ingest/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
