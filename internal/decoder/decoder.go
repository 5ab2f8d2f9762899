// Package decoder implements the Decoder interpreter (spec.md §3
// "Decoder", §4.4): the compiled, operational counterpart of a Format.
// Compile turns a Format into a Decoder, attaching match-trees to
// Union/Repeat/Repeat1; Parse runs a Decoder against an input byte
// slice and an evaluation stack.
package decoder

import (
	"github.com/funvibe/octet/internal/expr"
	"github.com/funvibe/octet/internal/format"
	"github.com/funvibe/octet/internal/matchtree"
	"github.com/funvibe/octet/internal/value"
)

// Decoder is the closed sum type produced by Compile, mirroring Format
// one-for-one but carrying compiled match-trees where Format carries
// nothing (Union becomes DBranch, Repeat becomes DWhile, Repeat1
// becomes DUntil).
type Decoder interface {
	decoderNode()
}

// DFail rejects unconditionally.
type DFail struct{}

// DEndOfInput succeeds with Unit iff the remaining input is empty.
type DEndOfInput struct{}

// DByte accepts a single byte in Set.
type DByte struct{ Set format.ByteSet }

// BranchAlt is one compiled alternative of a DBranch, in declaration
// order (its index is what the attached MatchTree reports).
type BranchAlt struct {
	Label   string
	Decoder Decoder
}

// DBranch is the compiled counterpart of Union: Tree picks which Alts
// entry to run, or rejects if it reports no index.
type DBranch struct {
	Tree *matchtree.Node
	Alts []BranchAlt
}

// DTuple runs each element decoder left to right without extending the
// stack, producing a Tuple value.
type DTuple struct{ Elems []Decoder }

// DRecordField is one labelled field of a DRecord.
type DRecordField struct {
	Label   string
	Decoder Decoder
}

// DRecord runs each field in order, pushing its value before the next
// field is parsed, then restores the stack to its entry size.
type DRecord struct{ Fields []DRecordField }

// DWhile is the compiled counterpart of Repeat: Tree decides, before
// each iteration (including the zeroth), whether to run Inner again.
type DWhile struct {
	Tree  *matchtree.Node
	Inner Decoder
}

// DUntil is the compiled counterpart of Repeat1: Inner always runs
// once, then Tree decides whether to run it again.
type DUntil struct {
	Tree  *matchtree.Node
	Inner Decoder
}

// DRepeatCount evaluates Count in the stack to obtain n, then runs
// Inner exactly n times.
type DRepeatCount struct {
	Count expr.Expression
	Inner Decoder
}

// DSlice evaluates Size to obtain n, runs Inner against the leading
// n-byte window, and always advances the outer remainder by n
// regardless of how much of the window Inner consumed.
type DSlice struct {
	Size  expr.Expression
	Inner Decoder
}

// DWithRelativeOffset evaluates Offset to obtain n, runs Inner against
// input[n:], and leaves the outer remainder equal to the original
// input.
type DWithRelativeOffset struct {
	Offset expr.Expression
	Inner  Decoder
}

// DMap runs Inner to obtain v, then returns Fn applied to v in the
// stack.
type DMap struct {
	Fn    expr.Func
	Inner Decoder
}

// DMatchArm is one (pattern, decoder) arm of a DMatch.
type DMatchArm struct {
	Pattern value.Pattern
	Decoder Decoder
}

// DMatch evaluates Scrutinee, then runs the decoder of the first arm
// whose pattern matches the result.
type DMatch struct {
	Scrutinee expr.Expression
	Arms      []DMatchArm
}

// DIndirect ties the knot for a recursive format: Cell is filled in by
// the compiler before it returns, so any DIndirect reachable from a
// completed Compile call is safe to dereference at Parse time.
type DIndirect struct{ Cell *Cell }

// Cell is the mutable slot a recursive Decoder resolves through. It
// exists so the compiler can hand out a reference to a not-yet-built
// decoder while still compiling it (analogous to format.Arena's
// Declare/Define split, one level down the pipeline).
type Cell struct{ Decoder Decoder }

func (DFail) decoderNode()               {}
func (DEndOfInput) decoderNode()         {}
func (DByte) decoderNode()               {}
func (DBranch) decoderNode()             {}
func (DTuple) decoderNode()              {}
func (DRecord) decoderNode()             {}
func (DWhile) decoderNode()              {}
func (DUntil) decoderNode()              {}
func (DRepeatCount) decoderNode()        {}
func (DSlice) decoderNode()              {}
func (DWithRelativeOffset) decoderNode() {}
func (DMap) decoderNode()                {}
func (DMatch) decoderNode()              {}
func (DIndirect) decoderNode()           {}
