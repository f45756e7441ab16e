// Package main is the logoharvest executable.
package main

import (
	"os"

	"github.com/brandscope/logoharvest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
