package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofind/gofind/internal/config"
	"github.com/gofind/gofind/internal/dt"
	"github.com/gofind/gofind/internal/modeparse"
	"github.com/gofind/gofind/internal/predicate"
)

// globalOptionNames mutate Config and never enter the tree; spec.md
// §4.D requires a warning when one appears after a non-global test.
var globalOptionNames = map[string]bool{
	"-maxdepth": true, "-mindepth": true,
	"-xdev": true, "-mount": true,
	"-files0-from":         true,
	"-noleaf":              true,
	"-ignore_readdir_race": true,
	"-regextype":           true,
}

var positionalOptionNames = map[string]bool{
	"-daystart": true, "-follow": true, "-warn": true, "-nowarn": true,
	"-depth": true, "-d": true,
}

var primaryNames = map[string]bool{
	"-name": true, "-iname": true,
	"-path": true, "-wholename": true, "-ipath": true, "-iwholename": true,
	"-regex": true, "-iregex": true,
	"-type": true, "-xtype": true,
	"-size": true, "-inum": true, "-links": true,
	"-user": true, "-group": true, "-uid": true, "-gid": true,
	"-perm": true, "-empty": true, "-nouser": true, "-nogroup": true,
	"-newer": true,
	"-amin":  true, "-cmin": true, "-mmin": true,
	"-atime": true, "-ctime": true, "-mtime": true, "-used": true,
	"-lname": true, "-ilname": true, "-samefile": true,
	"-fstype": true, "-context": true,
	"-readable": true, "-writable": true, "-executable": true,
	"-true": true, "-false": true, "-quit": true, "-prune": true, "-delete": true,
	"-print": true, "-print0": true, "-printf": true,
	"-fprint": true, "-fprintf": true, "-fls": true, "-ls": true,
	"-exec": true, "-ok": true, "-execdir": true, "-okdir": true,
}

// isKnownToken reports whether tok is any recognised primary, global
// option, or positional option name, including the dynamically-shaped
// -newerXY family (e.g. "-newermt", "-neweraB").
func (p *Parser) isKnownToken(tok string) bool {
	if globalOptionNames[tok] || positionalOptionNames[tok] || primaryNames[tok] {
		return true
	}
	if isNewerXYToken(tok) {
		return true
	}
	return false
}

func isNewerXYToken(tok string) bool {
	if !strings.HasPrefix(tok, "-newer") || len(tok) != len("-newer")+2 {
		return false
	}
	x, y := tok[len(tok)-2], tok[len(tok)-1]
	return strings.ContainsRune("aBcm", rune(x)) && strings.ContainsRune("aBcmt", rune(y))
}

// parsePrimary dispatches a single primary/global/positional-option
// token, consuming it (and any arguments it takes) and returning the
// node it contributes to the tree. Global and positional options
// contribute an inert KTrue node, matching the "noop" slot spec.md §9
// describes in the original parse table.
func (p *Parser) parsePrimary() (predicate.Node, error) {
	tok := p.args[p.pos]

	if globalOptionNames[tok] {
		node, err := p.parseGlobalOption(tok)
		if err != nil {
			return nil, err
		}
		if p.sawNonGlobalTest {
			p.warnf("warning: %s specified after the first test, its effect is not well defined", tok)
		}
		return node, nil
	}
	if positionalOptionNames[tok] {
		return p.parsePositionalOption(tok)
	}
	if isNewerXYToken(tok) {
		return p.parseNewerXY(tok)
	}

	switch tok {
	case "-name":
		return p.simplePattern(predicate.KName)
	case "-iname":
		return p.simplePattern(predicate.KIName)
	case "-path", "-wholename":
		return p.simplePattern(predicate.KPath)
	case "-ipath", "-iwholename":
		return p.simplePattern(predicate.KIPath)
	case "-regex":
		return p.regexPrimary(predicate.KRegex, false)
	case "-iregex":
		return p.regexPrimary(predicate.KIRegex, true)
	case "-type":
		return p.typePrimary(predicate.KType)
	case "-xtype":
		return p.typePrimary(predicate.KXType)
	case "-size":
		return p.sizePrimary()
	case "-inum":
		return p.numericPrimary(predicate.KINum)
	case "-links":
		return p.numericPrimary(predicate.KLinks)
	case "-user":
		return p.userOrUID()
	case "-group":
		return p.groupOrGID()
	case "-uid":
		return p.numericPrimary(predicate.KUID)
	case "-gid":
		return p.numericPrimary(predicate.KGID)
	case "-perm":
		return p.permPrimary()
	case "-empty":
		return p.bareNode(predicate.KEmpty)
	case "-nouser":
		return p.bareNode(predicate.KNoUser)
	case "-nogroup":
		return p.bareNode(predicate.KNoGroup)
	case "-newer":
		return p.newerPrimary()
	case "-amin":
		return p.minPrimary('a')
	case "-cmin":
		return p.minPrimary('c')
	case "-mmin":
		return p.minPrimary('m')
	case "-atime":
		return p.timePrimary('a')
	case "-ctime":
		return p.timePrimary('c')
	case "-mtime":
		return p.timePrimary('m')
	case "-used":
		return p.numericPrimary(predicate.KUsed)
	case "-lname":
		return p.simplePattern(predicate.KLName)
	case "-ilname":
		return p.simplePattern(predicate.KILName)
	case "-samefile":
		return p.simplePattern(predicate.KSameFile)
	case "-fstype":
		return p.simplePattern(predicate.KFSType)
	case "-context":
		return p.simplePattern(predicate.KContext)
	case "-readable":
		return p.accessPrimary(1)
	case "-writable":
		return p.accessPrimary(2)
	case "-executable":
		return p.accessPrimary(4)
	case "-true":
		return p.bareNode(predicate.KTrue)
	case "-false":
		return p.bareNode(predicate.KFalse)
	case "-quit":
		return p.bareNode(predicate.KQuit)
	case "-prune":
		p.sawPrune = true
		return p.bareNode(predicate.KPrune)
	case "-delete":
		p.sawDelete = true
		p.cfg.ExplicitDepth = true
		return p.bareNode(predicate.KDelete)
	case "-print":
		return p.bareNode(predicate.KPrint)
	case "-print0":
		return p.bareNode(predicate.KPrint0)
	case "-printf":
		return p.formatPrimary(predicate.KPrintF)
	case "-fprint":
		return p.sinkPrimary(predicate.KFPrint)
	case "-fprintf":
		return p.sinkFormatPrimary()
	case "-fls":
		return p.sinkPrimary(predicate.KFLS)
	case "-ls":
		return p.bareNode(predicate.KLS)
	case "-exec":
		return p.execPrimary(predicate.KExec, predicate.Global, false)
	case "-ok":
		p.sawExplicitOk = true
		return p.execPrimary(predicate.KOk, predicate.Global, true)
	case "-execdir":
		return p.execPrimary(predicate.KExecDir, predicate.PerDirectory, false)
	case "-okdir":
		p.sawExplicitOk = true
		return p.execPrimary(predicate.KOkDir, predicate.PerDirectory, true)
	}

	return nil, fmt.Errorf("parser: unknown primary %q", tok)
}

func (p *Parser) advance() string {
	tok := p.args[p.pos]
	p.pos++
	return tok
}

func (p *Parser) parseGlobalOption(name string) (predicate.Node, error) {
	switch name {
	case "-maxdepth":
		arg, err := p.consumeArg(name)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("parser: invalid -maxdepth argument %q", arg)
		}
		p.cfg.MaxDepth = n
	case "-mindepth":
		arg, err := p.consumeArg(name)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("parser: invalid -mindepth argument %q", arg)
		}
		p.cfg.MinDepth = n
	case "-xdev", "-mount":
		p.advance()
		p.cfg.StayOnFS = true
	case "-files0-from":
		arg, err := p.consumeArg(name)
		if err != nil {
			return nil, err
		}
		p.cfg.FilesZeroFrom = arg
	case "-noleaf":
		p.advance()
		p.cfg.NoLeafCheck = true
	case "-ignore_readdir_race":
		p.advance()
		p.cfg.IgnoreReaddirRace = true
	case "-regextype":
		arg, err := p.consumeArg(name)
		if err != nil {
			return nil, err
		}
		p.cfg.RegexType = arg
	}
	return predicate.NewPrimary(predicate.KTrue), nil
}

func (p *Parser) parsePositionalOption(name string) (predicate.Node, error) {
	switch name {
	case "-daystart":
		p.advance()
		p.daystartActive = true
	case "-follow":
		p.advance()
		p.cfg.SymlinkPolicy = config.Logical
		p.cfg.NoLeafCheck = true
	case "-warn":
		p.advance()
		p.cfg.Warnings = true
	case "-nowarn":
		p.advance()
		p.cfg.Warnings = false
	case "-depth", "-d":
		p.advance()
		p.userSetDepth = true
		p.cfg.ExplicitDepth = true
	}
	return predicate.NewPrimary(predicate.KTrue), nil
}

func (p *Parser) simplePattern(kind predicate.Kind) (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	pr := predicate.NewPrimary(kind)
	pr.Pattern = arg
	p.sawNonGlobalTest = true
	return pr, nil
}

func (p *Parser) takeArg(name string) (string, error) {
	if p.pos >= len(p.args) {
		return "", fmt.Errorf("parser: %s requires an argument", name)
	}
	arg := p.args[p.pos]
	p.pos++
	return arg, nil
}

func (p *Parser) bareNode(kind predicate.Kind) (predicate.Node, error) {
	p.advance()
	p.sawNonGlobalTest = true
	return predicate.NewPrimary(kind), nil
}

func (p *Parser) regexPrimary(kind predicate.Kind, caseFold bool) (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	pattern := arg
	if caseFold {
		pattern = strings.ToLower(pattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("parser: invalid %s pattern %q: %w", name, arg, err)
	}
	pr := predicate.NewPrimary(kind)
	pr.Pattern = arg
	pr.Regex = re
	p.sawNonGlobalTest = true
	return pr, nil
}

// typeLetters are the entry kinds -type/-xtype accept, spec.md §4.D:
// "b/c/d/f/l/p/s/D, optionally comma-separated".
const typeLetters = "bcdflpsD"

func (p *Parser) typePrimary(kind predicate.Kind) (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	var letters []byte
	for _, part := range strings.Split(arg, ",") {
		if len(part) != 1 || !strings.ContainsRune(typeLetters, rune(part[0])) {
			return nil, fmt.Errorf("parser: invalid %s argument %q", name, arg)
		}
		letters = append(letters, part[0])
	}
	pr := predicate.NewPrimary(kind)
	pr.TypeLetters = letters
	p.sawNonGlobalTest = true
	return pr, nil
}

func (p *Parser) sizePrimary() (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	unit := byte('b')
	numPart := arg
	if len(arg) > 0 {
		last := arg[len(arg)-1]
		if strings.ContainsRune("bcwkMG", rune(last)) {
			unit = last
			numPart = arg[:len(arg)-1]
		}
	}
	cmp, n, err := dt.ParseNumeric(numPart)
	if err != nil {
		return nil, fmt.Errorf("parser: invalid %s argument %q: %w", name, arg, err)
	}
	pr := predicate.NewPrimary(predicate.KSize)
	pr.SizeCmp, pr.SizeN, pr.SizeUnit = cmp, n, unit
	p.sawNonGlobalTest = true
	return pr, nil
}

func (p *Parser) numericPrimary(kind predicate.Kind) (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	cmp, n, err := dt.ParseNumeric(arg)
	if err != nil {
		return nil, fmt.Errorf("parser: invalid %s argument %q: %w", name, arg, err)
	}
	pr := predicate.NewPrimary(kind)
	pr.NumCmp, pr.NumN = cmp, n
	p.sawNonGlobalTest = true
	return pr, nil
}

// userOrUID implements -user's "name, or numeric UID" form.
func (p *Parser) userOrUID() (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	p.sawNonGlobalTest = true
	if uid, err := strconv.ParseInt(arg, 10, 64); err == nil {
		pr := predicate.NewPrimary(predicate.KUID)
		pr.NumCmp, pr.NumN = dt.Equal, uid
		return pr, nil
	}
	pr := predicate.NewPrimary(predicate.KUser)
	pr.Pattern = arg
	return pr, nil
}

func (p *Parser) groupOrGID() (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	p.sawNonGlobalTest = true
	if gid, err := strconv.ParseInt(arg, 10, 64); err == nil {
		pr := predicate.NewPrimary(predicate.KGID)
		pr.NumCmp, pr.NumN = dt.Equal, gid
		return pr, nil
	}
	pr := predicate.NewPrimary(predicate.KGroup)
	pr.Pattern = arg
	return pr, nil
}

func (p *Parser) permPrimary() (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	spec := arg
	probe := arg
	if len(probe) > 0 && (probe[0] == '-' || probe[0] == '/') {
		probe = probe[1:]
	}
	if _, err := modeparse.Compile(probe); err != nil {
		return nil, fmt.Errorf("parser: invalid %s argument %q: %w", name, arg, err)
	}
	pr := predicate.NewPrimary(predicate.KPerm)
	pr.PermSpec = spec
	p.sawNonGlobalTest = true
	return pr, nil
}

func (p *Parser) newerPrimary() (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	fi, err := statRef(arg)
	if err != nil {
		return nil, err
	}
	pr := predicate.NewPrimary(predicate.KNewer)
	pr.TimeRef = fi.ModTime()
	p.sawNonGlobalTest = true
	return pr, nil
}

func (p *Parser) parseNewerXY(tok string) (predicate.Node, error) {
	p.advance()
	x, y := tok[len(tok)-2], tok[len(tok)-1]
	arg, err := p.takeArg(tok)
	if err != nil {
		return nil, err
	}
	pr := predicate.NewPrimary(predicate.KNewerXY)
	pr.NewerXY = [2]byte{x, y}
	if y == 't' {
		t, err := dt.ParseDatetime(arg, p.cfg.CurDayStart)
		if err != nil {
			return nil, fmt.Errorf("parser: invalid %s timestamp %q: %w", tok, arg, err)
		}
		pr.TimeRef = t
	} else {
		fi, err := statRef(arg)
		if err != nil {
			return nil, err
		}
		pr.TimeRef = predicate.TimeForLetter(fi, y)
	}
	p.sawNonGlobalTest = true
	return pr, nil
}

func (p *Parser) minPrimary(letter byte) (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	cmp, n, err := dt.ParseNumeric(arg)
	if err != nil {
		return nil, fmt.Errorf("parser: invalid %s argument %q: %w", name, arg, err)
	}
	pr := predicate.NewPrimary(predicate.KTimeXmin)
	pr.RefLetter = letter
	pr.NumCmp, pr.NumN = cmp, n
	pr.UseDayStart = p.daystartActive
	p.sawNonGlobalTest = true
	return pr, nil
}

func (p *Parser) timePrimary(letter byte) (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	cmp, n, err := dt.ParseNumeric(arg)
	if err != nil {
		return nil, fmt.Errorf("parser: invalid %s argument %q: %w", name, arg, err)
	}
	pr := predicate.NewPrimary(predicate.KTimeXtime)
	pr.RefLetter = letter
	pr.NumCmp, pr.NumN = cmp, n
	pr.UseDayStart = p.daystartActive
	p.sawNonGlobalTest = true
	return pr, nil
}

func (p *Parser) accessPrimary(bit uint8) (predicate.Node, error) {
	p.advance()
	pr := predicate.NewPrimary(predicate.KAccessCheck)
	pr.AccessBits = bit
	p.sawNonGlobalTest = true
	return pr, nil
}

func (p *Parser) formatPrimary(kind predicate.Kind) (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	pr := predicate.NewPrimary(kind)
	pr.Format = arg
	p.sawNonGlobalTest = true
	return pr, nil
}

func (p *Parser) sinkPrimary(kind predicate.Kind) (predicate.Node, error) {
	name := p.advance()
	arg, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	pr := predicate.NewPrimary(kind)
	pr.SinkPath = arg
	p.sawNonGlobalTest = true
	return pr, nil
}

func (p *Parser) sinkFormatPrimary() (predicate.Node, error) {
	name := p.advance()
	path, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	format, err := p.takeArg(name)
	if err != nil {
		return nil, err
	}
	pr := predicate.NewPrimary(predicate.KFPrintF)
	pr.SinkPath, pr.Format = path, format
	p.sawNonGlobalTest = true
	return pr, nil
}
