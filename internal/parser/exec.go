package parser

import (
	"fmt"
	"strings"

	"github.com/gofind/gofind/internal/predicate"
)

// execArgvEnvBudget and execMaxArgsPerRun bound a Plus-mode batch
// (spec.md §4.H). ARG_MAX isn't portably queryable without cgo, so this
// uses a conservative fixed budget rather than querying the kernel
// limit; recorded in DESIGN.md.
const (
	execArgvEnvBudget = 128 * 1024
	execMaxArgsPerRun = 4096
)

// execPrimary consumes a -exec/-ok/-execdir/-okdir clause: the utility
// and its fixed arguments up to a ";" or "{} +" terminator, per spec.md
// §4.D.
func (p *Parser) execPrimary(kind predicate.Kind, scope predicate.Scope, confirm bool) (predicate.Node, error) {
	name := p.advance()

	var argv []string
	var bracePositions []int
	terminator := predicate.Semicolon

	for {
		if p.pos >= len(p.args) {
			return nil, fmt.Errorf("parser: %s missing a terminating ';' or '{} +'", name)
		}
		tok := p.args[p.pos]

		if tok == ";" {
			p.pos++
			terminator = predicate.Semicolon
			break
		}
		if tok == "+" && len(argv) > 0 && argv[len(argv)-1] == "{}" {
			p.pos++
			terminator = predicate.Plus
			break
		}
		if strings.Contains(tok, "{}") {
			bracePositions = append(bracePositions, len(argv))
		}
		argv = append(argv, tok)
		p.pos++
	}

	if len(argv) == 0 {
		return nil, fmt.Errorf("parser: %s requires a utility name", name)
	}
	if terminator == predicate.Plus && len(bracePositions) != 1 {
		return nil, fmt.Errorf("parser: %s with '+' requires exactly one '{}' argument", name)
	}
	if terminator == predicate.Plus && confirm {
		return nil, fmt.Errorf("parser: %s does not support the '+' terminator", name)
	}
	if scope == predicate.PerDirectory && strings.Contains(argv[0], "{}") {
		return nil, fmt.Errorf("parser: %s utility name must not contain '{}'", name)
	}

	pr := predicate.NewPrimary(kind)
	pr.Recipe = &predicate.ExecRecipe{
		Terminator:     terminator,
		Scope:          scope,
		Confirm:        confirm,
		InitialArgv:    argv,
		BracePositions: bracePositions,
		ArgvEnvBudget:  execArgvEnvBudget,
		MaxArgsPerRun:  execMaxArgsPerRun,
	}
	p.sawNonGlobalTest = true
	return pr, nil
}
