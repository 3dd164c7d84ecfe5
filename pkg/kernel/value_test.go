package kernel

import "testing"

func TestIntRoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 42, -42, 1 << 30, -(1 << 30)}
	for _, n := range tests {
		v := MkInt(n)
		if !IsInt(v) {
			t.Fatalf("MkInt(%d) is not IsInt", n)
		}
		got, ok := ToInt(v)
		if !ok || got != n {
			t.Errorf("ToInt(MkInt(%d)) = (%d, %v), want (%d, true)", n, got, ok, n)
		}
	}
}

func TestSymbolRoundTrip(t *testing.T) {
	v := MkSymbol(7)
	if !IsSymbol(v) {
		t.Fatal("MkSymbol(7) is not IsSymbol")
	}
	h, ok := SymIndex(v)
	if !ok || h != 7 {
		t.Errorf("SymIndex = (%d, %v), want (7, true)", h, ok)
	}
}

func TestTagMismatchProjectsFalse(t *testing.T) {
	sym := MkSymbol(3)
	if _, ok := ToInt(sym); ok {
		t.Error("ToInt on a Symbol value should report ok=false")
	}
	n := MkInt(5)
	if _, ok := SymIndex(n); ok {
		t.Error("SymIndex on an Int value should report ok=false")
	}
}

func TestPtrTaggedRoundTrip(t *testing.T) {
	v := mkPtrTagged(TagPair, 99)
	if !IsPair(v) {
		t.Fatal("mkPtrTagged(TagPair, ...) is not IsPair")
	}
	addr, ok := ToPtr(v)
	if !ok || addr != 99 {
		t.Errorf("ToPtr = (%d, %v), want (99, true)", addr, ok)
	}
	av := mkPtrTagged(TagActor, 12)
	if !IsActor(av) {
		t.Fatal("mkPtrTagged(TagActor, ...) is not IsActor")
	}
}
