package optimizer

import (
	"testing"

	"github.com/gofind/gofind/internal/predicate"
)

func TestOptimizeLevelZeroIsIdentity(t *testing.T) {
	tree := predicate.NewBinary(predicate.And,
		predicate.NewPrimary(predicate.KTrue),
		predicate.NewPrimary(predicate.KName))
	got := Optimize(tree, 0)
	if got != tree {
		t.Error("level 0 should return the tree unchanged")
	}
}

func TestFoldAndTrueAbsorbed(t *testing.T) {
	name := predicate.NewPrimary(predicate.KName)
	tree := predicate.NewBinary(predicate.And, predicate.NewPrimary(predicate.KTrue), name)
	got := Optimize(tree, 1)
	if got != name {
		t.Errorf("And(True, X) should fold to X, got %#v", got)
	}
}

func TestFoldAndFalseShortCircuits(t *testing.T) {
	falsePrim := predicate.NewPrimary(predicate.KFalse)
	tree := predicate.NewBinary(predicate.And, falsePrim, predicate.NewPrimary(predicate.KName))
	got := Optimize(tree, 1)
	pr, ok := got.(*predicate.Primary)
	if !ok || pr.Kind != predicate.KFalse {
		t.Errorf("And(False, X) should fold to False, got %#v", got)
	}
}

func TestFoldOrTrueShortCircuits(t *testing.T) {
	truePrim := predicate.NewPrimary(predicate.KTrue)
	tree := predicate.NewBinary(predicate.Or, truePrim, predicate.NewPrimary(predicate.KName))
	got := Optimize(tree, 1)
	pr, ok := got.(*predicate.Primary)
	if !ok || pr.Kind != predicate.KTrue {
		t.Errorf("Or(True, X) should fold to True, got %#v", got)
	}
}

func TestFoldDoesNotDropSideEffectingOperand(t *testing.T) {
	prune := predicate.NewPrimary(predicate.KPrune)
	tree := predicate.NewBinary(predicate.And, prune, predicate.NewPrimary(predicate.KFalse))
	got := Optimize(tree, 1)
	bin, ok := got.(*predicate.BinaryOp)
	if !ok {
		t.Fatalf("And(-prune, False) must keep -prune's evaluation, got %#v", got)
	}
	if bin.Left != prune {
		t.Errorf("expected -prune to remain the left operand, got %#v", bin.Left)
	}
}

func TestReorderOrdersByTierWithinAnd(t *testing.T) {
	// KName is name-only (tier 0), KSize needs a stat (tier 2): within a
	// side-effect-free And run, the cheaper test should sort first.
	size := predicate.NewPrimary(predicate.KSize)
	name := predicate.NewPrimary(predicate.KName)
	tree := predicate.NewBinary(predicate.And, size, name)

	got := Optimize(tree, 2)
	bin, ok := got.(*predicate.BinaryOp)
	if !ok {
		t.Fatalf("expected a BinaryOp, got %#v", got)
	}
	leftPrim, ok := bin.Left.(*predicate.Primary)
	if !ok || leftPrim.Kind != predicate.KName {
		t.Errorf("expected the name-only test to be reordered first, got left=%#v", bin.Left)
	}
}

func TestReorderDoesNotCrossSideEffectBoundary(t *testing.T) {
	size := predicate.NewPrimary(predicate.KSize)
	prune := predicate.NewPrimary(predicate.KPrune)
	name := predicate.NewPrimary(predicate.KName)

	// size AND prune AND name: prune pins the boundary, so name (to its
	// right) must never move in front of prune.
	tree := predicate.NewBinary(predicate.And,
		predicate.NewBinary(predicate.And, size, prune),
		name)

	got := Optimize(tree, 2)
	flat := flatten(got, predicate.And)
	if len(flat) != 3 {
		t.Fatalf("expected 3 flattened operands, got %d", len(flat))
	}
	mid, ok := flat[1].(*predicate.Primary)
	if !ok || mid.Kind != predicate.KPrune {
		t.Errorf("expected -prune to stay in the middle position, got %#v", flat[1])
	}
}
