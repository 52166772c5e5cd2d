// Package main provides the entry point for delivtrack.
//
// delivtrack is the command-line client for the delivery tracking API,
// supporting both single-command mode and an interactive shell.
package main

import (
	"os"

	"github.com/yndnr/delivtrack-go/internal/cli/command"
)

func main() {
	os.Exit(command.Run(command.App(), os.Args))
}
