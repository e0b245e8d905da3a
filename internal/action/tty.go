package action

import (
	"os"

	"golang.org/x/term"
)

// isTerminalFile reports whether f is attached to a terminal, the way
// the teacher's status-output helpers gate their own control-sequence
// writes on term.IsTerminal before deciding whether to colorize or quote
// output (spec.md §4.G: "when the destination is a TTY, control
// characters in printed names are substituted with ?").
func isTerminalFile(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
