// Package format implements the Format algebra: the declarative DSL of
// binary format descriptors. A Format carries no parsing semantics by
// itself; it is compiled into a decoder by the sibling
// matchtree/decoder packages.
package format

import (
	"github.com/funvibe/octet/internal/expr"
	"github.com/funvibe/octet/internal/value"
)

// Format is the closed sum type of the format description language.
type Format interface {
	formatNode()
}

// Fail is the universal rejector: it accepts nothing.
type Fail struct{}

// EndOfInput accepts only an empty remainder, producing Unit.
type EndOfInput struct{}

// Byte accepts a single byte that is a member of Set, producing it as
// a U8.
type Byte struct{ Set ByteSet }

// UnionArm is one labelled alternative of a Union.
type UnionArm struct {
	Label  string
	Format Format
}

// Union accepts whichever alternative the match-tree compiler
// determines is the sole possible match for the upcoming bytes; the
// chosen alternative's value is wrapped as Variant(label, inner).
type Union struct{ Arms []UnionArm }

// Tuple accepts the concatenation of its elements, in order,
// producing a value.Tuple of their values.
type Tuple struct{ Elems []Format }

// RecordField is one labelled field of a Record.
type RecordField struct {
	Label  string
	Format Format
}

// Record accepts the concatenation of its fields, in order, with each
// field's decoded value pushed onto the stack before the next field is
// parsed; the stack is restored to its pre-record size on exit.
type Record struct{ Fields []RecordField }

// Repeat accepts zero or more repetitions of a non-nullable inner
// format, producing a value.Seq. The compiler rejects a nullable
// inner, since it could repeat forever without consuming input.
type Repeat struct{ Inner Format }

// Repeat1 is as Repeat but requires at least one repetition.
type Repeat1 struct{ Inner Format }

// RepeatCount accepts exactly n = eval(Count) copies of Inner.
type RepeatCount struct {
	Count Expr
	Inner Format
}

// Slice accepts exactly n = eval(Size) bytes, parsing Inner within
// that window; the outer remainder continues after the n-byte window
// regardless of how much of it Inner consumed.
type Slice struct {
	Size  Expr
	Inner Format
}

// WithRelativeOffset seeks n = eval(Offset) bytes ahead of the current
// position, parses Inner there, then restores the original position;
// the outer remainder is unaffected by Inner's parse.
type WithRelativeOffset struct {
	Offset Expr
	Inner  Format
}

// Map accepts what Inner accepts and transforms its value with Fn.
type Map struct {
	Fn    Fn
	Inner Format
}

// MatchArm is one (pattern, format) arm of a Match.
type MatchArm struct {
	Pattern value.Pattern
	Format  Format
}

// Match evaluates Scrutinee, then parses the format of the first arm
// whose pattern matches the resulting value.
type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
}

// Indirect references a named, possibly-not-yet-defined format slot in
// an Arena, enabling mutually or self-recursive format definitions.
type Indirect struct{ Handle Handle }

// Empty is the zero-width format: an empty Tuple, which always
// succeeds consuming no input and produces an empty value.Tuple. It is
// the byte-level analogue of an epsilon production, distinct from
// EndOfInput (which additionally demands that nothing else remains).
func Empty() Format { return Tuple{} }

// Expr and Fn are the expr package's Expression/Func types, aliased
// here so format.go reads as a single self-contained algebra without
// forcing every caller to import expr directly.
type Expr = expr.Expression
type Fn = expr.Func

func (Fail) formatNode()                {}
func (EndOfInput) formatNode()          {}
func (Byte) formatNode()                {}
func (Union) formatNode()               {}
func (Tuple) formatNode()               {}
func (Record) formatNode()              {}
func (Repeat) formatNode()              {}
func (Repeat1) formatNode()             {}
func (RepeatCount) formatNode()         {}
func (Slice) formatNode()               {}
func (WithRelativeOffset) formatNode()  {}
func (Map) formatNode()                 {}
func (Match) formatNode()               {}
func (Indirect) formatNode()            {}
