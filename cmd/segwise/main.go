package main

import (
	"os"

	"github.com/segwise-dev/segwise/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
