// Package main is the entry point for the markupconv CLI.
package main

import (
	"os"

	"github.com/jmylchreest/markupconv/cmd/markupconv/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
