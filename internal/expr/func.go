package expr

import (
	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/funvibe/octet/internal/value"
)

// Func is a one-argument transformer used by Format::Map (spec.md
// §3 "Func", §4.1).
type Func interface {
	funcNode()
}

// FExpr evaluates its Expression in the current stack; the argument
// value is discarded (the values it needs were already bound on the
// stack upstream, e.g. a Map inside a Record field sees the values of
// the earlier fields, which the enclosing Record has already pushed).
type FExpr struct{ Expr Expression }

// FTupleProj projects position Index out of a Tuple argument.
type FTupleProj struct{ Index int }

// FRecordProj projects field Label out of a Record argument.
type FRecordProj struct{ Label string }

// MatchArm is one (pattern, expression) arm of an FMatch.
type MatchArm struct {
	Pattern value.Pattern
	Expr    Expression
}

// FMatch scans its arms in order; the first pattern that matches the
// argument wins, and its expression is evaluated in the stack extended
// with that arm's bindings.
type FMatch struct{ Arms []MatchArm }

// Endianness distinguishes the two byte orders the width-converter
// builtins support.
type Endianness int

const (
	BigEndian Endianness = iota
	LittleEndian
)

// FWidth is one of the built-in width-converters: U16Be, U16Le, U32Be,
// U32Le. Each reinterprets a Tuple of U8 bytes as a multi-byte
// unsigned integer of the stated endianness.
type FWidth struct {
	Width      int // 16 or 32
	Endianness Endianness
}

// FStream flattens a Seq by removing Unit elements, a canonicalizer
// used to collapse optional-but-absent repeat iterations.
type FStream struct{}

func (FExpr) funcNode()       {}
func (FTupleProj) funcNode()  {}
func (FRecordProj) funcNode() {}
func (FMatch) funcNode()      {}
func (FWidth) funcNode()      {}
func (FStream) funcNode()     {}

// Apply evaluates f against argument arg in stack s.
func Apply(f Func, s *value.Stack, arg value.Value) value.Value {
	switch n := f.(type) {
	case FExpr:
		return Eval(n.Expr, s)
	case FTupleProj:
		t, ok := arg.(value.Tuple)
		if !ok || n.Index < 0 || n.Index >= len(t) {
			fault("tuple projection %d out of range for %s", n.Index, arg.Kind())
		}
		return t[n.Index]
	case FRecordProj:
		r, ok := arg.(value.Record)
		if !ok {
			fault("record projection on non-record value %s", arg.Kind())
		}
		fv, ok := r.Get(n.Label)
		if !ok {
			fault("record has no field %q", n.Label)
		}
		return fv
	case FMatch:
		base := s.Len()
		for _, arm := range n.Arms {
			if value.Match(arm.Pattern, arg, s) {
				result := Eval(arm.Expr, s)
				s.Truncate(base)
				return result
			}
		}
		fault("pattern-match exhaustion in Func::Match")
		return nil
	case FWidth:
		return applyWidth(n, arg)
	case FStream:
		return applyStream(arg)
	default:
		fault("unreachable func variant %T", f)
		return nil
	}
}

func applyWidth(n FWidth, arg value.Value) value.Value {
	t, ok := arg.(value.Tuple)
	nbytes := n.Width / 8
	if !ok || len(t) != nbytes {
		fault("width converter expects a %d-byte tuple, got %s", nbytes, arg.Kind())
	}
	raw := make([]byte, nbytes)
	for i, elem := range t {
		b, ok := elem.(value.U8)
		if !ok {
			fault("width converter expects byte elements, got %s", elem.Kind())
		}
		raw[i] = byte(b)
	}

	endianness := "big"
	if n.Endianness == LittleEndian {
		endianness = "little"
	}

	bs := funbit.NewBitStringFromBytes(raw)
	m := funbit.NewMatcher()
	var out uint64
	funbit.Integer(m, &out, funbit.WithSize(uint(n.Width)), funbit.WithEndianness(endianness))
	if _, err := funbit.Match(m, bs); err != nil {
		fault("width converter: %v", err)
	}

	if n.Width == 16 {
		return value.U16(out)
	}
	return value.U32(out)
}

func applyStream(arg value.Value) value.Value {
	seq, ok := arg.(value.Seq)
	if !ok {
		fault("stream flattener expects a Seq, got %s", arg.Kind())
	}
	out := make(value.Seq, 0, len(seq))
	for _, v := range seq {
		if _, isUnit := v.(value.Unit); isUnit {
			continue
		}
		out = append(out, v)
	}
	return out
}
