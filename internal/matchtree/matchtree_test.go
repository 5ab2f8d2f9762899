package matchtree

import (
	"testing"

	"github.com/funvibe/octet/internal/format"
)

func TestCompileUnionEndOfInputVsByte(t *testing.T) {
	arms := []format.UnionArm{
		{Label: "a", Format: format.EndOfInput{}},
		{Label: "b", Format: format.Byte{Set: format.Single(0x00)}},
	}
	tree, err := CompileUnion(format.NewArena(), format.Union{Arms: arms}, arms, CEmpty{}, 32)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	if idx, ok := tree.Lookup(nil); !ok || idx != 0 {
		t.Errorf("Lookup([]) = (%d, %v), want (0, true)", idx, ok)
	}
	if idx, ok := tree.Lookup([]byte{0x00, 0xAA}); !ok || idx != 1 {
		t.Errorf("Lookup([0x00, ...]) = (%d, %v), want (1, true)", idx, ok)
	}
	// 0x11 falls in no registered branch, so the node's default-accept
	// (the EndOfInput alternative) takes over; the decoder re-checks
	// that alternative against the non-empty input and rejects there.
	if idx, ok := tree.Lookup([]byte{0x11}); !ok || idx != 0 {
		t.Errorf("Lookup([0x11]) = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestCompileUnionDisjointBytes(t *testing.T) {
	arms := []format.UnionArm{
		{Label: "a", Format: format.Byte{Set: format.Single(0x00)}},
		{Label: "b", Format: format.Byte{Set: format.Single(0xFF)}},
	}
	tree, err := CompileUnion(format.NewArena(), format.Union{Arms: arms}, arms, CEmpty{}, 32)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if idx, ok := tree.Lookup([]byte{0x00}); !ok || idx != 0 {
		t.Errorf("Lookup([0x00]) = (%d, %v), want (0, true)", idx, ok)
	}
	if idx, ok := tree.Lookup([]byte{0xFF}); !ok || idx != 1 {
		t.Errorf("Lookup([0xFF]) = (%d, %v), want (1, true)", idx, ok)
	}
	if _, ok := tree.Lookup([]byte{0x11}); ok {
		t.Error("Lookup([0x11]) should reject")
	}
}

func TestCompileUnionTwoBranchAmbiguityFails(t *testing.T) {
	arms := []format.UnionArm{
		{Label: "a", Format: format.Byte{Set: format.Single(0x00)}},
		{Label: "b", Format: format.Byte{Set: format.Single(0x00)}},
	}
	_, err := CompileUnion(format.NewArena(), format.Union{Arms: arms}, arms, CEmpty{}, 32)
	if err == nil {
		t.Fatal("expected a compile error for two identical alternatives")
	}
	if _, ok := err.(*ConflictingAcceptError); !ok {
		t.Fatalf("expected *ConflictingAcceptError, got %T: %v", err, err)
	}
}

func TestCompileRepeatTailAmbiguityFails(t *testing.T) {
	inner := format.Byte{Set: format.Single(0x00)}
	second := format.Repeat{Inner: inner}
	outerNext := CCat{Format: second, Next: CEmpty{}}
	_, err := CompileRepeat(format.NewArena(), format.Repeat{Inner: inner}, inner, outerNext, 32)
	if err == nil {
		t.Fatal("expected a compile error for two adjacent identical repeats")
	}
}

func TestCompileRepeatDistinguishableSuffix(t *testing.T) {
	// Tuple([Repeat(Byte(0x00)), Repeat(Byte(0xFF))]): the two repeats
	// are trivially distinguishable because their bytes are disjoint.
	inner := format.Byte{Set: format.Single(0x00)}
	second := format.Repeat{Inner: format.Byte{Set: format.Single(0xFF)}}
	outerNext := CCat{Format: second, Next: CEmpty{}}
	tree, err := CompileRepeat(format.NewArena(), format.Repeat{Inner: inner}, inner, outerNext, 32)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	// idx 0 = stop (hand off to second repeat / end), idx 1 = continue.
	if idx, ok := tree.Lookup([]byte{0x00}); !ok || idx != 1 {
		t.Errorf("Lookup([0x00]) = (%d, %v), want (1, true)", idx, ok)
	}
	if idx, ok := tree.Lookup([]byte{0xFF}); !ok || idx != 0 {
		t.Errorf("Lookup([0xFF]) = (%d, %v), want (0, true)", idx, ok)
	}
	if idx, ok := tree.Lookup(nil); !ok || idx != 0 {
		t.Errorf("Lookup([]) = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestCompileRepeatStopsOnByteAbsentFromBranches(t *testing.T) {
	// Repeat(Byte(0x00)) with nothing following: the only registered
	// branch is 0x00 (continue); a byte outside it must fall through to
	// the default-accept (stop) rather than reject outright, since the
	// repeat itself should simply stop at that point.
	inner := format.Byte{Set: format.Single(0x00)}
	tree, err := CompileRepeat(format.NewArena(), format.Repeat{Inner: inner}, inner, CEmpty{}, 32)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if idx, ok := tree.Lookup([]byte{0x00}); !ok || idx != 1 {
		t.Errorf("Lookup([0x00]) = (%d, %v), want (1, true)", idx, ok)
	}
	if idx, ok := tree.Lookup([]byte{0x11}); !ok || idx != 0 {
		t.Errorf("Lookup([0x11]) = (%d, %v), want (0, true)", idx, ok)
	}
	if idx, ok := tree.Lookup(nil); !ok || idx != 0 {
		t.Errorf("Lookup([]) = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestCompileUnionUndefinedHandle(t *testing.T) {
	arena := format.NewArena()
	h := arena.Declare("unresolved")
	arms := []format.UnionArm{
		{Label: "a", Format: format.Indirect{Handle: h}},
		{Label: "b", Format: format.EndOfInput{}},
	}
	_, err := CompileUnion(arena, format.Union{Arms: arms}, arms, CEmpty{}, 32)
	if err == nil {
		t.Fatal("expected an error dereferencing an undefined handle")
	}
	if _, ok := err.(*format.UndefinedHandleError); !ok {
		t.Fatalf("expected *format.UndefinedHandleError, got %T: %v", err, err)
	}
}

func TestByteSetPartitionDisjointRanges(t *testing.T) {
	outcomes := []byteOutcome{
		{idx: 0, set: format.NewByteSet([2]byte{0x00, 0x10})},
		{idx: 1, set: format.NewByteSet([2]byte{0x08, 0x20})},
	}
	parts := partitionByteOutcomes(outcomes)

	var total format.ByteSet
	for _, p := range parts {
		total = total.Union(p.set)
	}
	for v := 0x00; v <= 0x20; v++ {
		if !total.Contains(byte(v)) {
			t.Errorf("partitions should cover 0x%02X", v)
		}
	}

	for _, p := range parts {
		for _, r := range p.set.Ranges() {
			for v := int(r[0]); v <= int(r[1]); v++ {
				inA := outcomes[0].set.Contains(byte(v))
				inB := outcomes[1].set.Contains(byte(v))
				wantEntries := 0
				if inA {
					wantEntries++
				}
				if inB {
					wantEntries++
				}
				if len(p.entries) != wantEntries {
					t.Errorf("byte 0x%02X: partition has %d entries, want %d", v, len(p.entries), wantEntries)
				}
			}
		}
	}
}
