package main

import (
	"os"

	"github.com/wonny/buffett/backend/cmd/buffett/commands"
)

// main is the entry point for the Buffett CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
