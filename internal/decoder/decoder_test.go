package decoder

import (
	"testing"

	"github.com/funvibe/octet/internal/expr"
	"github.com/funvibe/octet/internal/format"
	"github.com/funvibe/octet/internal/value"
)

func compileOrFatal(t *testing.T, f format.Format) Decoder {
	t.Helper()
	d, err := Compile(f, format.NewArena(), 32)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	return d
}

func TestEmptyAltVsEndOfInput(t *testing.T) {
	f := format.Union{Arms: []format.UnionArm{
		{Label: "a", Format: format.EndOfInput{}},
		{Label: "b", Format: format.Byte{Set: format.Single(0x00)}},
	}}
	d := compileOrFatal(t, f)
	s := value.NewStack()

	v, rest, ok := Parse(d, s, nil)
	if !ok {
		t.Fatal("expected [] to parse")
	}
	if got := v.(value.Variant); got.Label != "a" || len(rest) != 0 {
		t.Errorf("got %v, rest %v", got, rest)
	}

	v, rest, ok = Parse(d, s, []byte{0x00, 0x11})
	if !ok {
		t.Fatal("expected [0x00, 0x11] to parse")
	}
	got := v.(value.Variant)
	if got.Label != "b" || got.Payload.(value.U8) != 0 || len(rest) != 1 || rest[0] != 0x11 {
		t.Errorf("got %v, rest %v", got, rest)
	}

	if _, _, ok := Parse(d, s, []byte{0x11}); ok {
		t.Error("expected [0x11] to reject")
	}
}

func TestDisjointBytesUnion(t *testing.T) {
	f := format.Union{Arms: []format.UnionArm{
		{Label: "a", Format: format.Byte{Set: format.Single(0x00)}},
		{Label: "b", Format: format.Byte{Set: format.Single(0xFF)}},
	}}
	d := compileOrFatal(t, f)
	s := value.NewStack()

	v, _, ok := Parse(d, s, []byte{0x00})
	if !ok || v.(value.Variant).Label != "a" {
		t.Errorf("got %v, %v", v, ok)
	}
	v, _, ok = Parse(d, s, []byte{0xFF})
	if !ok || v.(value.Variant).Label != "b" {
		t.Errorf("got %v, %v", v, ok)
	}
	if _, _, ok := Parse(d, s, []byte{0x11}); ok {
		t.Error("expected [0x11] to reject")
	}
}

func TestOptionalThenRequired(t *testing.T) {
	f := format.Tuple{Elems: []format.Format{
		format.Union{Arms: []format.UnionArm{
			{Label: "some", Format: format.Byte{Set: format.Single(0x00)}},
			{Label: "none", Format: format.Empty()},
		}},
		format.Byte{Set: format.Single(0xFF)},
	}}
	d := compileOrFatal(t, f)
	s := value.NewStack()

	v, rest, ok := Parse(d, s, []byte{0x00, 0xFF})
	if !ok || len(rest) != 0 {
		t.Fatalf("got %v, rest %v, ok %v", v, rest, ok)
	}
	tup := v.(value.Tuple)
	if tup[0].(value.Variant).Label != "some" || tup[1].(value.U8) != 0xFF {
		t.Errorf("got %v", tup)
	}

	v, rest, ok = Parse(d, s, []byte{0xFF})
	if !ok || len(rest) != 0 {
		t.Fatalf("got %v, rest %v, ok %v", v, rest, ok)
	}
	tup = v.(value.Tuple)
	if tup[0].(value.Variant).Label != "none" || tup[1].(value.U8) != 0xFF {
		t.Errorf("got %v", tup)
	}
}

func TestRepeatFollowedBySuffix(t *testing.T) {
	f := format.Tuple{Elems: []format.Format{
		format.Repeat{Inner: format.Byte{Set: format.Single(0x00)}},
		format.Repeat{Inner: format.Byte{Set: format.Single(0xFF)}},
	}}
	d := compileOrFatal(t, f)
	s := value.NewStack()

	v, rest, ok := Parse(d, s, []byte{0x00, 0x00, 0xFF})
	if !ok || len(rest) != 0 {
		t.Fatalf("got %v, rest %v, ok %v", v, rest, ok)
	}
	tup := v.(value.Tuple)
	if len(tup[0].(value.Seq)) != 2 || len(tup[1].(value.Seq)) != 1 {
		t.Errorf("got %v", tup)
	}

	v, rest, ok = Parse(d, s, nil)
	if !ok || len(rest) != 0 {
		t.Fatalf("got %v, rest %v, ok %v", v, rest, ok)
	}
	tup = v.(value.Tuple)
	if len(tup[0].(value.Seq)) != 0 || len(tup[1].(value.Seq)) != 0 {
		t.Errorf("got %v", tup)
	}
}

func TestRepeatStopsOnByteAbsentFromBranches(t *testing.T) {
	f := format.Repeat{Inner: format.Byte{Set: format.Single(0x00)}}
	d := compileOrFatal(t, f)
	s := value.NewStack()

	v, rest, ok := Parse(d, s, []byte{0x00, 0x11})
	if !ok {
		t.Fatal("expected [0x00, 0x11] to parse")
	}
	seq := v.(value.Seq)
	if len(seq) != 1 || seq[0].(value.U8) != 0 {
		t.Errorf("got %v", seq)
	}
	if len(rest) != 1 || rest[0] != 0x11 {
		t.Errorf("rest = %v, want [0x11]", rest)
	}
}

func TestTwoRepeatsBothStopOnByteAbsentFromBranches(t *testing.T) {
	f := format.Tuple{Elems: []format.Format{
		format.Repeat{Inner: format.Byte{Set: format.Single(0x00)}},
		format.Repeat{Inner: format.Byte{Set: format.Single(0xFF)}},
	}}
	d := compileOrFatal(t, f)
	s := value.NewStack()

	v, rest, ok := Parse(d, s, []byte{0x00, 0x42})
	if !ok {
		t.Fatal("expected [0x00, 0x42] to parse")
	}
	tup := v.(value.Tuple)
	if len(tup[0].(value.Seq)) != 1 || len(tup[1].(value.Seq)) != 0 {
		t.Errorf("got %v", tup)
	}
	if len(rest) != 1 || rest[0] != 0x42 {
		t.Errorf("rest = %v, want [0x42]", rest)
	}
}

func TestAmbiguousRepeatTailFailsToCompile(t *testing.T) {
	inner := format.Byte{Set: format.Single(0x00)}
	f := format.Tuple{Elems: []format.Format{
		format.Repeat{Inner: inner},
		format.Repeat{Inner: inner},
	}}
	if _, err := Compile(f, format.NewArena(), 32); err == nil {
		t.Fatal("expected a compile error for ambiguous adjacent repeats")
	}
}

func TestRecordWithDependentLength(t *testing.T) {
	f := format.Record{Fields: []format.RecordField{
		{Label: "n", Format: format.Byte{Set: format.Any()}},
		{Label: "body", Format: format.RepeatCount{
			Count: expr.EVar{Index: 0},
			Inner: format.Byte{Set: format.Any()},
		}},
	}}
	d := compileOrFatal(t, f)
	s := value.NewStack()

	baseLen := s.Len()
	v, rest, ok := Parse(d, s, []byte{0x03, 'a', 'b', 'c', 'd'})
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if s.Len() != baseLen {
		t.Errorf("stack leaked: entered at %d, left at %d", baseLen, s.Len())
	}
	rec := v.(value.Record)
	n, _ := rec.Get("n")
	if n.(value.U8) != 3 {
		t.Errorf("n = %v", n)
	}
	body, _ := rec.Get("body")
	seq := body.(value.Seq)
	if len(seq) != 3 || seq[0].(value.U8) != 'a' || seq[2].(value.U8) != 'c' {
		t.Errorf("body = %v", seq)
	}
	if len(rest) != 1 || rest[0] != 'd' {
		t.Errorf("rest = %v", rest)
	}
}

func TestNullableRepeatRejected(t *testing.T) {
	nullable := format.Union{Arms: []format.UnionArm{
		{Label: "x", Format: format.EndOfInput{}},
	}}
	if _, err := Compile(format.Repeat{Inner: nullable}, format.NewArena(), 32); err == nil {
		t.Fatal("expected Repeat over a nullable inner to fail to compile")
	}
	if _, err := Compile(format.Repeat1{Inner: nullable}, format.NewArena(), 32); err == nil {
		t.Fatal("expected Repeat1 over a nullable inner to fail to compile")
	}
}

func TestSliceIsolatesRemainder(t *testing.T) {
	f := format.Slice{
		Size:  expr.ELit{Value: value.U8(2)},
		Inner: format.Byte{Set: format.Any()},
	}
	d := compileOrFatal(t, f)
	s := value.NewStack()

	v, rest, ok := Parse(d, s, []byte{0xAA, 0xBB, 0xCC})
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if v.(value.U8) != 0xAA {
		t.Errorf("v = %v", v)
	}
	if len(rest) != 1 || rest[0] != 0xCC {
		t.Errorf("rest = %v, want [0xCC]", rest)
	}
}

func TestWithRelativeOffsetLeavesInputUnchanged(t *testing.T) {
	f := format.WithRelativeOffset{
		Offset: expr.ELit{Value: value.U8(1)},
		Inner:  format.Byte{Set: format.Any()},
	}
	d := compileOrFatal(t, f)
	s := value.NewStack()

	input := []byte{0xAA, 0xBB, 0xCC}
	v, rest, ok := Parse(d, s, input)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if v.(value.U8) != 0xBB {
		t.Errorf("v = %v", v)
	}
	if len(rest) != len(input) {
		t.Errorf("rest = %v, want input unchanged", rest)
	}
}

func TestIndirectRecursiveFormat(t *testing.T) {
	// A tag-prefixed list: 0x00 means "stop", 0x01 byte means
	// "one more element, then another list".
	arena := format.NewArena()
	h := arena.Declare("list")
	arena.Define(h, format.Union{Arms: []format.UnionArm{
		{Label: "nil", Format: format.Byte{Set: format.Single(0x00)}},
		{Label: "cons", Format: format.Tuple{Elems: []format.Format{
			format.Byte{Set: format.Single(0x01)},
			format.Byte{Set: format.Any()},
			format.Indirect{Handle: h},
		}}},
	}})

	d, err := Compile(format.Indirect{Handle: h}, arena, 32)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	s := value.NewStack()

	v, rest, ok := Parse(d, s, []byte{0x01, 0xAA, 0x01, 0xBB, 0x00, 0xFF})
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if len(rest) != 1 || rest[0] != 0xFF {
		t.Errorf("rest = %v", rest)
	}
	outer := v.(value.Variant)
	if outer.Label != "cons" {
		t.Fatalf("outer label = %s", outer.Label)
	}
	tup := outer.Payload.(value.Tuple)
	if tup[1].(value.U8) != 0xAA {
		t.Errorf("first element = %v", tup[1])
	}
	inner := tup[2].(value.Variant)
	if inner.Label != "cons" {
		t.Fatalf("inner label = %s", inner.Label)
	}
}

func TestUndefinedHandleFailsToCompile(t *testing.T) {
	arena := format.NewArena()
	h := arena.Declare("never_defined")
	if _, err := Compile(format.Indirect{Handle: h}, arena, 32); err == nil {
		t.Fatal("expected an error dereferencing an undefined handle")
	}
}

func TestMatchRunsFirstMatchingArm(t *testing.T) {
	f := format.Match{
		Scrutinee: expr.EVar{Index: 0},
		Arms: []format.MatchArm{
			{Pattern: value.PU8(0), Format: format.Byte{Set: format.Single(0xAA)}},
			{Pattern: value.PWildcard{}, Format: format.Byte{Set: format.Single(0xBB)}},
		},
	}
	d := compileOrFatal(t, f)
	s := value.NewStack()
	s.Push(value.U8(0))

	v, rest, ok := Parse(d, s, []byte{0xAA, 0x11})
	if !ok {
		t.Fatal("expected the first arm to match and parse")
	}
	if v.(value.U8) != 0xAA || len(rest) != 1 || rest[0] != 0x11 {
		t.Errorf("got %v, rest %v", v, rest)
	}

	s.Truncate(0)
	s.Push(value.U8(1))
	v, rest, ok = Parse(d, s, []byte{0xBB})
	if !ok {
		t.Fatal("expected the wildcard arm to match and parse")
	}
	if v.(value.U8) != 0xBB || len(rest) != 0 {
		t.Errorf("got %v, rest %v", v, rest)
	}
	if s.Len() != 1 {
		t.Errorf("expected match bindings to be rolled back, stack len = %d", s.Len())
	}
}

func TestMatchNonExhaustivePanics(t *testing.T) {
	f := format.Match{
		Scrutinee: expr.EVar{Index: 0},
		Arms: []format.MatchArm{
			{Pattern: value.PU8(0), Format: format.Byte{Set: format.Single(0xAA)}},
		},
	}
	d := compileOrFatal(t, f)
	s := value.NewStack()
	s.Push(value.U8(1))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for non-exhaustive Match")
		}
		if _, ok := r.(expr.Fault); !ok {
			t.Fatalf("expected expr.Fault, got %T: %v", r, r)
		}
	}()
	Parse(d, s, []byte{0xAA})
}
