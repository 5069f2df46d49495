package main

import (
	"os"

	"github.com/mercurytrader/mercury/cmd/mercury/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
