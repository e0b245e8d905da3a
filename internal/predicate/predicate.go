// Package predicate defines the Boolean evaluation tree: primaries,
// operators, and the ExecRecipe action parameters, as specified in
// spec.md §3. It deliberately uses a closed sum type (a Kind enum plus
// kind-specific fields on a single Primary struct, per spec.md §9's
// "prefer a closed sum type over open polymorphism") instead of a
// function-pointer/interface-per-primary design, so internal/optimizer
// can pattern-match on Kind directly.
package predicate

import (
	"os"
	"regexp"
	"time"

	"github.com/gofind/gofind/internal/dt"
	"github.com/gofind/gofind/internal/visit"
)

// Kind identifies a primary's test or action.
type Kind int

const (
	KName Kind = iota
	KIName
	KPath
	KIPath
	KRegex
	KIRegex
	KType
	KXType
	KSize
	KINum
	KLinks
	KUser
	KGroup
	KUID
	KGID
	KPerm
	KEmpty
	KNoUser
	KNoGroup
	KNewer
	KNewerXY
	KTimeXmin
	KTimeXtime
	KUsed
	KLName
	KILName
	KSameFile
	KFSType
	KContext
	KAccessCheck
	KTrue
	KFalse
	KQuit
	KPrune
	KDelete
	KPrint
	KPrint0
	KPrintF
	KFPrint
	KFPrintF
	KFLS
	KLS
	KExec
	KOk
	KExecDir
	KOkDir
)

// Attrs is the set of static, parse-time-declared properties every node
// in the tree carries (spec.md §3, "every node carries").
type Attrs struct {
	NeedsStat            bool
	NeedsType            bool
	HasSideEffects       bool
	InhibitsDefaultPrint bool
	EstimatedSuccessRate float64
}

// Node is any element of the evaluation tree.
type Node interface {
	Attrs() Attrs
	// SetAttrs allows the optimiser to refold an estimate after
	// constant-folding (e.g. -fstype -> False); ordinary evaluation
	// never calls this.
	SetAttrs(Attrs)
}

// Evaluable is implemented by every Node; Evaluate performs the node's
// test (and, for actions, its side effect), returning the Boolean result
// spec.md §4.C defines ("true for success, false for failure").
type Evaluable interface {
	Node
	Evaluate(ctx Context) (bool, error)
}

// Context is everything a primary's Evaluate needs. internal/eval
// supplies the concrete implementation; internal/predicate only depends
// on the interface, to avoid an import cycle with the walker and action
// runtime.
type Context interface {
	Visit() *visit.FileVisit
	CurDayStart() time.Time
	Warnf(format string, args ...any)
	// EnsureStat materialises (and caches on the visit) os.FileInfo,
	// returning an error only for a genuine stat failure.
	EnsureStat() (os.FileInfo, error)
	Actions() Actions
}

// Actions is the ActionRuntime/ExecBatcher surface side-effecting
// primaries call into (component G/H of spec.md §4).
type Actions interface {
	Print(v *visit.FileVisit)
	Print0(v *visit.FileVisit)
	PrintF(format string, v *visit.FileVisit, fi os.FileInfo) error
	FPrint(path string, v *visit.FileVisit) error
	FPrintF(path, format string, v *visit.FileVisit, fi os.FileInfo) error
	LS(v *visit.FileVisit, fi os.FileInfo) error
	FLS(path string, v *visit.FileVisit, fi os.FileInfo) error
	Delete(v *visit.FileVisit) (bool, error)
	Exec(recipe *ExecRecipe, v *visit.FileVisit) (bool, error)
	Prune()
	Quit()
}

// Primary is a leaf test or action node.
type Primary struct {
	attrs Attrs
	Kind  Kind

	// Name/IName/Path/IPath/LName/ILName/FSType/User/Group glob or
	// literal pattern.
	Pattern string

	Regex *regexp.Regexp

	// Type/XType: one-letter-per-entry type set, e.g. "bcdfl sp D".
	TypeLetters []byte

	SizeCmp  dt.Comparison
	SizeN    int64
	SizeUnit byte // c/b/w/k/M/G, 'b' (512-byte blocks) is the default

	NumCmp dt.Comparison
	NumN   int64 // INum/Links/UID/GID/Used(days)/TimeXmin/TimeXtime

	PermSpec string

	// RefLetter is the attribute letter (a/c/m) -amin/-cmin/-mmin and
	// -atime/-ctime/-mtime compare against.
	RefLetter byte

	// UseDayStart records that a -daystart positional option was in
	// effect when this primary was parsed (spec.md §4.D positional
	// options "affect subsequent tests only"): -Xmin/-Xtime measure
	// from today's midnight instead of the traversal's start time.
	UseDayStart bool

	TimeRef time.Time // Newer
	NewerXY [2]byte   // access-kind letters for NewerXY: {a,B,c,m} x {a,B,c,m,t}

	Format   string // PrintF/FPrintF
	SinkPath string // FPrint/FPrintF/FLS

	Recipe *ExecRecipe // Exec/Ok/ExecDir/OkDir

	AccessBits uint8 // AccessCheck: bit0=R bit1=W bit2=X
}

func (p *Primary) Attrs() Attrs     { return p.attrs }
func (p *Primary) SetAttrs(a Attrs) { p.attrs = a }

// UnaryOp is logical negation (! / -not).
type UnaryOp struct {
	attrs Attrs
	Child Node
}

func (u *UnaryOp) Attrs() Attrs     { return u.attrs }
func (u *UnaryOp) SetAttrs(a Attrs) { u.attrs = a }

// BinaryKind distinguishes And/Or/Comma.
type BinaryKind int

const (
	And BinaryKind = iota
	Or
	Comma
)

// BinaryOp is a two-operand operator: And, Or, or Comma.
type BinaryOp struct {
	attrs Attrs
	Op    BinaryKind
	Left  Node
	Right Node
}

func (b *BinaryOp) Attrs() Attrs     { return b.attrs }
func (b *BinaryOp) SetAttrs(a Attrs) { b.attrs = a }

// NewUnary builds a Negate node, deriving its attrs from its child:
// negation does not change what the child needs or whether it has side
// effects, but a negated side-effecting action still "has side effects"
// for the optimiser's reordering-ban purposes.
func NewUnary(child Node) *UnaryOp {
	ca := child.Attrs()
	return &UnaryOp{
		Child: child,
		attrs: Attrs{
			NeedsStat:            ca.NeedsStat,
			NeedsType:            ca.NeedsType,
			HasSideEffects:       ca.HasSideEffects,
			InhibitsDefaultPrint: ca.InhibitsDefaultPrint,
			EstimatedSuccessRate: 1 - ca.EstimatedSuccessRate,
		},
	}
}

// NewBinary builds an And/Or/Comma node, combining the children's attrs.
func NewBinary(op BinaryKind, left, right Node) *BinaryOp {
	la, ra := left.Attrs(), right.Attrs()
	return &BinaryOp{
		Op:    op,
		Left:  left,
		Right: right,
		attrs: Attrs{
			NeedsStat:            la.NeedsStat || ra.NeedsStat,
			NeedsType:            la.NeedsType || ra.NeedsType,
			HasSideEffects:       la.HasSideEffects || ra.HasSideEffects,
			InhibitsDefaultPrint: la.InhibitsDefaultPrint || ra.InhibitsDefaultPrint,
			EstimatedSuccessRate: combineRate(op, la.EstimatedSuccessRate, ra.EstimatedSuccessRate),
		},
	}
}

func combineRate(op BinaryKind, l, r float64) float64 {
	switch op {
	case And:
		return l * r
	case Or:
		return l + r - l*r
	default:
		return r
	}
}

// ExecRecipe is the -exec/-ok/-execdir/-okdir parameter block, as
// specified in spec.md §3.
type ExecRecipe struct {
	Terminator Terminator
	Scope      Scope
	Confirm    bool

	InitialArgv []string

	// BracePositions: for Terminator==Semicolon, the argv indices that
	// contain a literal "{}" substring (possibly more than one per
	// element). For Terminator==Plus, exactly one element equal to the
	// literal "{}", recorded at BracePositions[0].
	BracePositions []int

	ArgvEnvBudget int64
	MaxArgsPerRun int
}

// Terminator distinguishes `;`-terminated single-shot execs from
// `+`-terminated batched execs.
type Terminator int

const (
	Semicolon Terminator = iota
	Plus
)

// Scope distinguishes -exec/-ok (global working directory) from
// -execdir/-okdir (per-directory working directory).
type Scope int

const (
	Global Scope = iota
	PerDirectory
)

// AttrsForKind returns the static attrs a primary of this kind carries
// before any optimiser pass runs. The EstimatedSuccessRate values are an
// explicitly arbitrary heuristic (spec.md §9 Open Question: "the
// original source is heuristic... the numeric constants themselves are
// not part of the contract") chosen only to preserve the *relative*
// ordering spec.md §4.E mandates: needs_stat predicates are rated
// closer to this kind's natural selectivity, not tuned against any
// corpus.
func AttrsForKind(k Kind) Attrs {
	switch k {
	case KName, KIName:
		return Attrs{EstimatedSuccessRate: 0.1}
	case KPath, KIPath:
		return Attrs{EstimatedSuccessRate: 0.1}
	case KRegex, KIRegex:
		return Attrs{EstimatedSuccessRate: 0.1}
	case KType:
		return Attrs{NeedsType: true, EstimatedSuccessRate: 0.3}
	case KXType:
		return Attrs{NeedsStat: true, NeedsType: true, EstimatedSuccessRate: 0.3}
	case KSize:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.5}
	case KINum:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.01}
	case KLinks:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.5}
	case KUser, KUID:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.3}
	case KGroup, KGID:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.3}
	case KPerm:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.3}
	case KEmpty:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.2}
	case KNoUser, KNoGroup:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.05}
	case KNewer, KNewerXY:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.5}
	case KTimeXmin, KTimeXtime, KUsed:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.5}
	case KLName, KILName:
		return Attrs{NeedsType: true, EstimatedSuccessRate: 0.1}
	case KSameFile:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.01}
	case KFSType:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.5}
	case KContext:
		return Attrs{NeedsStat: true, EstimatedSuccessRate: 0.1}
	case KAccessCheck:
		return Attrs{EstimatedSuccessRate: 0.8}
	case KTrue:
		return Attrs{EstimatedSuccessRate: 1.0}
	case KFalse:
		return Attrs{EstimatedSuccessRate: 0.0}
	case KQuit:
		return Attrs{HasSideEffects: true, InhibitsDefaultPrint: true, EstimatedSuccessRate: 1.0}
	case KPrune:
		return Attrs{HasSideEffects: true, InhibitsDefaultPrint: false, EstimatedSuccessRate: 1.0}
	case KDelete:
		return Attrs{NeedsStat: true, HasSideEffects: true, InhibitsDefaultPrint: true, EstimatedSuccessRate: 0.95}
	case KPrint, KPrint0:
		return Attrs{HasSideEffects: true, InhibitsDefaultPrint: true, EstimatedSuccessRate: 1.0}
	case KPrintF, KFPrint, KFPrintF, KFLS, KLS:
		return Attrs{NeedsStat: true, HasSideEffects: true, InhibitsDefaultPrint: true, EstimatedSuccessRate: 1.0}
	case KExec, KOk, KExecDir, KOkDir:
		return Attrs{HasSideEffects: true, InhibitsDefaultPrint: true, EstimatedSuccessRate: 0.95}
	default:
		return Attrs{}
	}
}

// NewPrimary constructs a Primary with Attrs defaulted from its kind. The
// caller then fills in kind-specific fields.
func NewPrimary(k Kind) *Primary {
	return &Primary{Kind: k, attrs: AttrsForKind(k)}
}

// ContainsKind reports whether any Primary in tree has one of the given
// kinds. Used at startup to decide whether the PATH-insecurity check
// spec.md §6 requires for -execdir/-okdir applies to this invocation.
func ContainsKind(tree Node, kinds ...Kind) bool {
	switch t := tree.(type) {
	case *Primary:
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}
		return false
	case *UnaryOp:
		return ContainsKind(t.Child, kinds...)
	case *BinaryOp:
		return ContainsKind(t.Left, kinds...) || ContainsKind(t.Right, kinds...)
	default:
		return false
	}
}
