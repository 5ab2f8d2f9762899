// Package expr implements the Expression evaluator: a small total
// language over value.Value, evaluated against a value.Stack of
// previously-bound values (spec.md §3 "Expression", §4.1).
package expr

import (
	"fmt"

	"github.com/funvibe/octet/internal/value"
)

// Fault is an evaluation fault: a programmer error (arithmetic
// overflow, a malformed projection, pattern-match exhaustion inside
// Func::Match) rather than a recoverable parse outcome. Per spec.md
// §7, implementations SHOULD treat these as panics; Eval and Apply
// panic with a Fault value rather than returning an error.
type Fault struct {
	Msg string
}

func (f Fault) Error() string { return f.Msg }

func fault(format string, args ...interface{}) {
	panic(Fault{Msg: fmt.Sprintf(format, args...)})
}

// BinOp is one of the fixed set of binary numeric operators the
// expression language supports.
type BinOp int

const (
	OpAnd BinOp = iota // bitwise AND
	OpEq               // equality
	OpNeq              // inequality
	OpRem              // remainder
	OpShl              // left shift
	OpSub              // subtraction
)

// Expression is the closed sum type of the expression language.
type Expression interface {
	exprNode()
}

// EVar is a de-Bruijn-like variable reference, counted from the top of
// the stack (0 = most recently bound value).
type EVar struct{ Index int }

// ELit is a primitive literal.
type ELit struct{ Value value.Value }

// ETuple constructs a Tuple from its element expressions.
type ETuple struct{ Elems []Expression }

// ELabeled is one (label, expression) pair of an ERecord.
type ELabeled struct {
	Label string
	Expr  Expression
}

// ERecord constructs a Record from its field expressions, evaluated in
// declaration order against the same stack; field values are not
// pushed onto the stack, so a field expression cannot see earlier
// fields.
type ERecord struct{ Fields []ELabeled }

// EVariant constructs a Variant value.
type EVariant struct {
	Label   string
	Payload Expression
}

// ESeq constructs a Seq from its element expressions.
type ESeq struct{ Elems []Expression }

// EProj projects a labelled field out of a record-valued expression.
type EProj struct {
	Record Expression
	Label  string
}

// EBinOp applies a binary numeric operator to two expressions of the
// same primitive numeric type.
type EBinOp struct {
	Op          BinOp
	Left, Right Expression
}

func (EVar) exprNode()     {}
func (ELit) exprNode()     {}
func (ETuple) exprNode()   {}
func (ERecord) exprNode()  {}
func (EVariant) exprNode() {}
func (ESeq) exprNode()     {}
func (EProj) exprNode()    {}
func (EBinOp) exprNode()   {}

// Eval evaluates e in stack s. Eval is total over well-formed
// expressions in a well-formed stack; malformed shapes (operator type
// mismatch, projection of a non-record, an out-of-range variable
// index) panic with a Fault.
func Eval(e Expression, s *value.Stack) value.Value {
	switch n := e.(type) {
	case EVar:
		if n.Index < 0 || n.Index >= s.Len() {
			fault("variable index %d out of range for stack of %d", n.Index, s.Len())
		}
		return s.At(n.Index)
	case ELit:
		return n.Value
	case ETuple:
		t := make(value.Tuple, len(n.Elems))
		for i, el := range n.Elems {
			t[i] = Eval(el, s)
		}
		return t
	case ERecord:
		r := make(value.Record, len(n.Fields))
		for i, f := range n.Fields {
			r[i] = value.Field{Label: f.Label, Value: Eval(f.Expr, s)}
		}
		return r
	case EVariant:
		return value.Variant{Label: n.Label, Payload: Eval(n.Payload, s)}
	case ESeq:
		seq := make(value.Seq, len(n.Elems))
		for i, el := range n.Elems {
			seq[i] = Eval(el, s)
		}
		return seq
	case EProj:
		rv := Eval(n.Record, s)
		rec, ok := rv.(value.Record)
		if !ok {
			fault("record projection of non-record value %q", rv.Kind())
		}
		fv, ok := rec.Get(n.Label)
		if !ok {
			fault("record has no field %q", n.Label)
		}
		return fv
	case EBinOp:
		return evalBinOp(n.Op, Eval(n.Left, s), Eval(n.Right, s))
	default:
		fault("unreachable expression variant %T", e)
		return nil
	}
}

func evalBinOp(op BinOp, l, r value.Value) value.Value {
	lu, lw, ok1 := asUint(l)
	ru, rw, ok2 := asUint(r)
	if !ok1 || !ok2 {
		fault("binary operator applied to non-numeric operand (%T, %T)", l, r)
	}
	if lw != rw {
		fault("binary operator operand type mismatch: %s vs %s", l.Kind(), r.Kind())
	}

	switch op {
	case OpAnd:
		return fromUint(lu&ru, lw)
	case OpEq:
		return value.Bool(lu == ru)
	case OpNeq:
		return value.Bool(lu != ru)
	case OpRem:
		if ru == 0 {
			fault("remainder by zero")
		}
		return fromUint(lu%ru, lw)
	case OpShl:
		if ru >= uint64(lw) {
			fault("left shift overflow: shift of %d exceeds width %d", ru, lw)
		}
		shifted := lu << ru
		masked := shifted & widthMask(lw)
		if masked != shifted {
			fault("left shift overflow: result does not fit in width %d", lw)
		}
		return fromUint(masked, lw)
	case OpSub:
		if ru > lu {
			fault("subtraction underflow: %d - %d", lu, ru)
		}
		return fromUint(lu-ru, lw)
	default:
		fault("unreachable binary operator %d", op)
		return nil
	}
}

func widthMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

func asUint(v value.Value) (u uint64, width int, ok bool) {
	switch n := v.(type) {
	case value.U8:
		return uint64(n), 8, true
	case value.U16:
		return uint64(n), 16, true
	case value.U32:
		return uint64(n), 32, true
	default:
		return 0, 0, false
	}
}

func fromUint(u uint64, width int) value.Value {
	switch width {
	case 8:
		return value.U8(u)
	case 16:
		return value.U16(u)
	case 32:
		return value.U32(u)
	default:
		fault("unreachable integer width %d", width)
		return nil
	}
}
