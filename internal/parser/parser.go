// Package parser implements the ExpressionParser (component D of
// spec.md §2/§4.D): it turns the argv slice that remains after the
// program name into a list of starting-point paths plus a compiled
// predicate.Node tree, refining a config.Config along the way.
//
// The grammar is the classic find(1) precedence table (tight to loose):
// "!"/"-not", "(...)", implicit-AND/"-a"/"-and", "-o"/"-or", ",". It is
// implemented as straightforward recursive-descent / precedence
// climbing, one method per level, mirroring how the teacher's own
// cobra command tree reads flags before falling into its walk engine.
package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofind/gofind/internal/config"
	"github.com/gofind/gofind/internal/predicate"
)

// Result is everything a successful Parse produces.
type Result struct {
	StartingPoints []string
	Tree           predicate.Node
}

// Parser holds parse-time state: the token cursor, the Config being
// refined, and the handful of flags needed to validate the conflicts
// spec.md §4.D names.
type Parser struct {
	args []string
	pos  int

	cfg *config.Config

	warnf func(format string, args ...any)

	sawNonGlobalTest bool // a real test/action already entered the tree
	daystartActive   bool // -daystart positional, sticky once seen

	sawPrune       bool
	sawDelete      bool
	userSetDepth   bool // -depth/-d appeared explicitly in the expression
	filesZeroGiven bool
	sawExplicitOk  bool // -ok or -okdir appeared anywhere
}

// New constructs a Parser bound to cfg (mutated as global/positional
// options are parsed) and an optional warning sink (nil disables
// warnings, matching -nowarn/POSIXLY_CORRECT callers).
func New(cfg *config.Config, warnf func(format string, args ...any)) *Parser {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Parser{cfg: cfg, warnf: warnf}
}

// Parse consumes args (the full post-program-name argv) and returns the
// starting-point list and compiled tree, or a parse error (always fatal
// per spec.md §7).
func (p *Parser) Parse(args []string) (*Result, error) {
	p.args = args
	p.pos = 0

	starts, err := p.scanLeadingOptionsAndStartingPoints()
	if err != nil {
		return nil, err
	}

	var tree predicate.Node
	if p.pos >= len(p.args) {
		tree = predicate.NewPrimary(predicate.KTrue)
	} else {
		tree, err = p.parseComma()
		if err != nil {
			return nil, err
		}
		if p.pos != len(p.args) {
			return nil, fmt.Errorf("parser: unexpected token %q", p.args[p.pos])
		}
	}

	if err := p.validateConflicts(starts); err != nil {
		return nil, err
	}

	if len(starts) == 0 {
		starts = []string{"."}
	}

	return &Result{StartingPoints: starts, Tree: tree}, nil
}

func (p *Parser) validateConflicts(starts []string) error {
	if p.cfg.FilesZeroFrom != "" && len(starts) > 0 {
		return fmt.Errorf("parser: -files0-from cannot be combined with explicit starting points")
	}
	if p.cfg.FilesZeroFrom == "-" && p.sawExplicitOk {
		return fmt.Errorf("parser: -ok/-okdir cannot be used when -files0-from reads from stdin")
	}
	if p.sawDelete && p.sawPrune && !p.userSetDepth {
		return fmt.Errorf("parser: -delete and -prune cannot be combined without an explicit -depth")
	}
	return nil
}

// isPrimaryLike reports whether tok syntactically looks like the start
// of an expression (spec.md §6: "a token that syntactically looks like
// a primary... terminates the starting-point list").
func isPrimaryLike(tok string) bool {
	if tok == "" {
		return false
	}
	switch tok[0] {
	case '-', '(', ')', '!':
		return true
	}
	return tok == ","
}

// scanLeadingOptionsAndStartingPoints implements spec.md §6's "leading
// options accepted anywhere before the first starting point" rule: -H,
// -L, -P, -D FLAGS, -O N are consumed as they're seen; every other
// non-primary-looking token is a starting point; the first
// primary-looking token ends the scan.
func (p *Parser) scanLeadingOptionsAndStartingPoints() ([]string, error) {
	var starts []string
	for p.pos < len(p.args) {
		tok := p.args[p.pos]
		switch {
		case tok == "-H":
			p.cfg.SymlinkPolicy = config.ArgOnly
			p.pos++
			continue
		case tok == "-L":
			p.cfg.SymlinkPolicy = config.Logical
			p.pos++
			continue
		case tok == "-P":
			p.cfg.SymlinkPolicy = config.Physical
			p.pos++
			continue
		case tok == "-D":
			arg, err := p.consumeArg("-D")
			if err != nil {
				return nil, err
			}
			if err := p.applyDebugFlags(arg); err != nil {
				return nil, err
			}
			continue
		case tok == "-O":
			arg, err := p.consumeArg("-O")
			if err != nil {
				return nil, err
			}
			lvl, err := strconv.Atoi(arg)
			if err != nil || lvl < 0 || lvl > 3 {
				return nil, fmt.Errorf("parser: invalid optimisation level %q", arg)
			}
			p.cfg.OptimizeLevel = lvl
			continue
		case len(tok) == 3 && strings.HasPrefix(tok, "-O") && tok[2] >= '0' && tok[2] <= '3':
			p.cfg.OptimizeLevel = int(tok[2] - '0')
			p.pos++
			continue
		}
		if isPrimaryLike(tok) {
			return starts, nil
		}
		starts = append(starts, tok)
		p.pos++
	}
	return starts, nil
}

// consumeArg advances past the current token (assumed to be name) and
// returns the following token as its argument.
func (p *Parser) consumeArg(name string) (string, error) {
	p.pos++
	if p.pos >= len(p.args) {
		return "", fmt.Errorf("parser: %s requires an argument", name)
	}
	arg := p.args[p.pos]
	p.pos++
	return arg, nil
}

func (p *Parser) applyDebugFlags(spec string) error {
	for _, part := range strings.Split(spec, ",") {
		switch config.DebugFlag(part) {
		case config.DebugExec, config.DebugOpt, config.DebugRates, config.DebugSearch,
			config.DebugStat, config.DebugTime, config.DebugTree, config.DebugAll:
			p.cfg.DebugFlags[config.DebugFlag(part)] = true
		default:
			return fmt.Errorf("parser: unknown -D category %q", part)
		}
	}
	return nil
}

func (p *Parser) peek() string {
	if p.pos >= len(p.args) {
		return ""
	}
	return p.args[p.pos]
}

// parseComma is the loosest precedence level: A , B , C.
func (p *Parser) parseComma() (predicate.Node, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.peek() == "," {
		p.pos++
		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		left = predicate.NewBinary(predicate.Comma, left, right)
	}
	return left, nil
}

func (p *Parser) parseOr() (predicate.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok != "-o" && tok != "-or" {
			break
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = predicate.NewBinary(predicate.Or, left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (predicate.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok == "-a" || tok == "-and" {
			p.pos++
			right, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			left = predicate.NewBinary(predicate.And, left, right)
			continue
		}
		if p.startsOperand(tok) {
			right, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			left = predicate.NewBinary(predicate.And, left, right)
			continue
		}
		break
	}
	return left, nil
}

// startsOperand reports whether tok can begin a notExpr: an opening
// paren, a negation, or a known primary/option name. It must return
// false for anything that closes or chains the current level, so the
// implicit-AND loop in parseAnd stops correctly.
func (p *Parser) startsOperand(tok string) bool {
	switch tok {
	case "", ")", ",", "-o", "-or", "-a", "-and":
		return false
	case "(", "!", "-not":
		return true
	}
	return p.isKnownToken(tok)
}

func (p *Parser) parseNot() (predicate.Node, error) {
	negate := false
	for {
		tok := p.peek()
		if tok == "!" || tok == "-not" {
			negate = !negate
			p.pos++
			continue
		}
		break
	}
	node, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	if negate {
		return predicate.NewUnary(node), nil
	}
	return node, nil
}

func (p *Parser) parsePrimaryExpr() (predicate.Node, error) {
	tok := p.peek()
	if tok == "" {
		return nil, fmt.Errorf("parser: expression ended unexpectedly")
	}
	if tok == "(" {
		p.pos++
		node, err := p.parseComma()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("parser: unbalanced parentheses")
		}
		p.pos++
		return node, nil
	}
	if tok == ")" {
		return nil, fmt.Errorf("parser: unexpected %q", tok)
	}
	return p.parsePrimary()
}

// statRef stats a -newer/-newerXY reference file eagerly, so a
// missing reference surfaces as the fatal parse error spec.md §7
// assigns to malformed expressions rather than a late traversal error.
func statRef(path string) (os.FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("parser: cannot stat reference file %q: %w", path, err)
	}
	return fi, nil
}
