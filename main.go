// Package main is the entry point of gofind, a find(1)-style hierarchical
// file search utility: it walks one or more starting-point directories
// and evaluates a boolean expression of tests, operators, and actions
// against every entry encountered.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofind/gofind/cmd"
	"github.com/gofind/gofind/internal/config"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var fatal *config.FatalError
		if errors.As(err, &fatal) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	os.Exit(cmd.ExitCode())
}
