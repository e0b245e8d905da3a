// Package optimizer implements the Optimiser (component E, spec.md
// §4.E): constant folding and selectivity-driven reordering of the
// predicate tree ExpressionParser produces, subject to the reordering
// constraints spec.md §4.E and §8's P4 require.
package optimizer

import (
	"sort"

	"github.com/gofind/gofind/internal/fstype"
	"github.com/gofind/gofind/internal/predicate"
)

// Optimize rewrites tree according to level (0-3). Level 0 is the
// identity transform (trivially satisfying P4). Levels 1-3 apply
// increasingly aggressive, always-semantics-preserving rewrites; the
// exact boundary between levels is an implementation choice (spec.md §9
// Open Question: the cost-model constants are not part of the
// contract), fixed here as:
//
//	1: Boolean constant folding only (True/False absorption).
//	2: level 1, plus -fstype constant folding against the live mount
//	   table, plus selectivity-driven reordering within side-effect-free
//	   runs of a same-precedence operator.
//	3: level 2, applied uniformly to every nesting depth and Comma
//	   branch (levels 1-2 already recurse fully, so 3 is level 2's
//	   ceiling rather than a distinct rewrite; kept as its own case so a
//	   future more aggressive pass has somewhere to plug in).
func Optimize(tree predicate.Node, level int) predicate.Node {
	if tree == nil || level <= 0 {
		return tree
	}
	tree = foldConstants(tree, level)
	if level >= 2 {
		tree = reorder(tree)
	}
	return tree
}

func foldConstants(n predicate.Node, level int) predicate.Node {
	switch t := n.(type) {
	case *predicate.UnaryOp:
		child := foldConstants(t.Child, level)
		if isTrue(child) {
			return predicate.NewPrimary(predicate.KFalse)
		}
		if isFalse(child) {
			return predicate.NewPrimary(predicate.KTrue)
		}
		return predicate.NewUnary(child)

	case *predicate.BinaryOp:
		left := foldConstants(t.Left, level)
		right := foldConstants(t.Right, level)
		if t.Op == predicate.Comma {
			return predicate.NewBinary(predicate.Comma, left, right)
		}
		return foldBinary(t.Op, left, right)

	case *predicate.Primary:
		if level >= 2 && t.Kind == predicate.KFSType && !fstype.KnownAnywhere(t.Pattern) {
			return predicate.NewPrimary(predicate.KFalse)
		}
		return t

	default:
		return n
	}
}

// foldBinary applies the Boolean-identity simplifications that never
// change which side effects fire or the final truth value (spec.md
// §8 P4): dropping a constant operand is safe unconditionally when the
// *other* operand still gets evaluated exactly as before; it requires
// the dropped operand to be side-effect-free only when the fold would
// otherwise skip its evaluation entirely.
func foldBinary(op predicate.BinaryKind, left, right predicate.Node) predicate.Node {
	switch op {
	case predicate.And:
		switch {
		case isFalse(left):
			return left
		case isTrue(left):
			return right
		case isTrue(right):
			return left
		case isFalse(right) && !hasSideEffects(left):
			return right
		}
	case predicate.Or:
		switch {
		case isTrue(left):
			return left
		case isFalse(left):
			return right
		case isFalse(right):
			return left
		case isTrue(right) && !hasSideEffects(left):
			return right
		}
	}
	return predicate.NewBinary(op, left, right)
}

func isTrue(n predicate.Node) bool {
	pr, ok := n.(*predicate.Primary)
	return ok && pr.Kind == predicate.KTrue
}

func isFalse(n predicate.Node) bool {
	pr, ok := n.(*predicate.Primary)
	return ok && pr.Kind == predicate.KFalse
}

func hasSideEffects(n predicate.Node) bool {
	return n.Attrs().HasSideEffects
}

// reorder walks the tree, and within every maximal run of the same
// And/Or operator, reorders the side-effect-free segments between any
// side-effect-pinned operands (spec.md: "a node with has_side_effects
// keeps its original relative order"; "-prune must never be reordered
// past nodes that mutate stop_at_current_level" — -prune and -quit
// both carry HasSideEffects, so they're pinned the same way).
func reorder(n predicate.Node) predicate.Node {
	switch t := n.(type) {
	case *predicate.UnaryOp:
		return predicate.NewUnary(reorder(t.Child))
	case *predicate.BinaryOp:
		if t.Op == predicate.Comma {
			return predicate.NewBinary(predicate.Comma, reorder(t.Left), reorder(t.Right))
		}
		operands := flatten(t, t.Op)
		for i := range operands {
			operands[i] = reorder(operands[i])
		}
		operands = reorderSegments(operands, t.Op)
		return rebuild(t.Op, operands)
	default:
		return n
	}
}

func flatten(n predicate.Node, op predicate.BinaryKind) []predicate.Node {
	b, ok := n.(*predicate.BinaryOp)
	if !ok || b.Op != op {
		return []predicate.Node{n}
	}
	return append(flatten(b.Left, op), b.Right)
}

func rebuild(op predicate.BinaryKind, operands []predicate.Node) predicate.Node {
	result := operands[0]
	for _, o := range operands[1:] {
		result = predicate.NewBinary(op, result, o)
	}
	return result
}

// reorderSegments sorts each contiguous run of side-effect-free operands
// independently, leaving side-effecting operands fixed as partition
// boundaries.
func reorderSegments(operands []predicate.Node, op predicate.BinaryKind) []predicate.Node {
	result := make([]predicate.Node, len(operands))
	copy(result, operands)
	start := 0
	for i := 0; i <= len(result); i++ {
		if i == len(result) || hasSideEffects(result[i]) {
			sortSegment(result[start:i], op)
			start = i + 1
		}
	}
	return result
}

func sortSegment(seg []predicate.Node, op predicate.BinaryKind) {
	sort.SliceStable(seg, func(i, j int) bool {
		return less(seg[i], seg[j], op)
	})
}

// less orders by cost tier first (name-only < needs_type < needs_stat),
// then by estimated success rate: ascending for And (likelier-to-fail
// first, so the conjunction short-circuits sooner), descending for Or
// (likelier-to-succeed first, so the disjunction short-circuits sooner).
func less(a, b predicate.Node, op predicate.BinaryKind) bool {
	ta, tb := tier(a), tier(b)
	if ta != tb {
		return ta < tb
	}
	ra, rb := a.Attrs().EstimatedSuccessRate, b.Attrs().EstimatedSuccessRate
	if op == predicate.Or {
		return ra > rb
	}
	return ra < rb
}

func tier(n predicate.Node) int {
	a := n.Attrs()
	switch {
	case a.NeedsStat:
		return 2
	case a.NeedsType:
		return 1
	default:
		return 0
	}
}
