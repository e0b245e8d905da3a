package predicate

import "testing"

func TestNewUnaryInvertsSuccessRateButKeepsSideEffects(t *testing.T) {
	prune := NewPrimary(KPrune)
	neg := NewUnary(prune)
	if !neg.Attrs().HasSideEffects {
		t.Error("negating a side-effecting primary should still report HasSideEffects")
	}
	if got, want := neg.Attrs().EstimatedSuccessRate, 1-prune.Attrs().EstimatedSuccessRate; got != want {
		t.Errorf("EstimatedSuccessRate = %v, want %v", got, want)
	}
}

func TestNewBinaryAndPropagatesNeedsStatAndNeedsType(t *testing.T) {
	size := NewPrimary(KSize)  // NeedsStat
	xtype := NewPrimary(KXType) // NeedsStat + NeedsType
	bin := NewBinary(And, size, xtype)
	if !bin.Attrs().NeedsStat || !bin.Attrs().NeedsType {
		t.Errorf("And of NeedsStat/NeedsType operands should propagate both, got %#v", bin.Attrs())
	}
}

func TestNewBinaryOrCombinesSuccessRateAdditively(t *testing.T) {
	a := NewPrimary(KTrue)
	b := NewPrimary(KFalse)
	bin := NewBinary(Or, a, b)
	// combineRate(Or, 1.0, 0.0) = 1 + 0 - 1*0 = 1
	if got := bin.Attrs().EstimatedSuccessRate; got != 1.0 {
		t.Errorf("Or(True, False) success rate = %v, want 1.0", got)
	}
}

func TestNewBinaryCommaTakesRightOperandRate(t *testing.T) {
	a := NewPrimary(KFalse)
	b := NewPrimary(KTrue)
	bin := NewBinary(Comma, a, b)
	if got := bin.Attrs().EstimatedSuccessRate; got != 1.0 {
		t.Errorf("Comma success rate should follow the right (last-evaluated) operand, got %v", got)
	}
}

func TestContainsKindFindsNestedPrimary(t *testing.T) {
	execdir := NewPrimary(KExecDir)
	tree := NewBinary(And, NewPrimary(KName), NewUnary(execdir))
	if !ContainsKind(tree, KExecDir, KOkDir) {
		t.Error("ContainsKind should find KExecDir nested under an And/Negate")
	}
	if ContainsKind(tree, KOk) {
		t.Error("ContainsKind should not report a kind that isn't present")
	}
}

func TestAttrsForKindPrintInhibitsDefaultPrint(t *testing.T) {
	if !AttrsForKind(KPrint).InhibitsDefaultPrint {
		t.Error("-print should inhibit the implicit default print")
	}
	if AttrsForKind(KName).InhibitsDefaultPrint {
		t.Error("-name is a pure test and should not inhibit the default print")
	}
}
