package decoder

import (
	"fmt"

	"github.com/funvibe/octet/internal/format"
	"github.com/funvibe/octet/internal/matchtree"
)

// NullableRepeatError reports that Repeat or Repeat1 was compiled over
// a nullable inner format (spec.md §7 "NullableRepeat"): an inner that
// accepts the empty string would let the loop iterate forever without
// consuming input.
type NullableRepeatError struct {
	Repeat1 bool
	Inner   format.Format
}

func (e *NullableRepeatError) Error() string {
	name := "Repeat"
	if e.Repeat1 {
		name = "Repeat1"
	}
	return fmt.Sprintf("decoder: %s over a nullable inner format", name)
}

// compiler holds the state shared across one Compile call: the arena
// Indirect formats resolve through, the lookahead budget handed to the
// match-tree compiler, and the cell cache that ties the knot for
// recursive formats.
type compiler struct {
	arena    *format.Arena
	maxDepth int
	cells    map[format.Handle]*Cell
}

// Compile turns f into a Decoder, or returns a *NullableRepeatError, a
// matchtree error (*AmbiguousUnionError, *ConflictingAcceptError) or a
// format error (*UndefinedHandleError, *CyclicFormatError) if f is
// malformed (spec.md §6 "Compilation API"). arena resolves any Indirect formats reachable from f; pass
// format.NewArena() if f contains none. maxDepth is the match-tree
// compiler's lookahead budget K (spec.md §4.3), ordinarily
// config.EngineConfig.MaxLookahead.
func Compile(f format.Format, arena *format.Arena, maxDepth int) (Decoder, error) {
	c := &compiler{arena: arena, maxDepth: maxDepth, cells: map[format.Handle]*Cell{}}
	return c.compile(f, matchtree.CEmpty{})
}

func (c *compiler) compile(f format.Format, next matchtree.Continuation) (Decoder, error) {
	switch n := f.(type) {
	case format.Fail:
		return DFail{}, nil
	case format.EndOfInput:
		return DEndOfInput{}, nil
	case format.Byte:
		return DByte{Set: n.Set}, nil
	case format.Union:
		return c.compileUnion(f, n, next)
	case format.Tuple:
		return c.compileTuple(n, next)
	case format.Record:
		return c.compileRecord(n, next)
	case format.Repeat:
		return c.compileRepeat(f, n.Inner, next, false)
	case format.Repeat1:
		return c.compileRepeat(f, n.Inner, next, true)
	case format.RepeatCount:
		inner, err := c.compile(n.Inner, matchtree.CEmpty{})
		if err != nil {
			return nil, err
		}
		return DRepeatCount{Count: n.Count, Inner: inner}, nil
	case format.Slice:
		inner, err := c.compile(n.Inner, matchtree.CEmpty{})
		if err != nil {
			return nil, err
		}
		return DSlice{Size: n.Size, Inner: inner}, nil
	case format.WithRelativeOffset:
		inner, err := c.compile(n.Inner, matchtree.CEmpty{})
		if err != nil {
			return nil, err
		}
		return DWithRelativeOffset{Offset: n.Offset, Inner: inner}, nil
	case format.Map:
		inner, err := c.compile(n.Inner, next)
		if err != nil {
			return nil, err
		}
		return DMap{Fn: n.Fn, Inner: inner}, nil
	case format.Match:
		arms := make([]DMatchArm, len(n.Arms))
		for i, arm := range n.Arms {
			d, err := c.compile(arm.Format, next)
			if err != nil {
				return nil, err
			}
			arms[i] = DMatchArm{Pattern: arm.Pattern, Decoder: d}
		}
		return DMatch{Scrutinee: n.Scrutinee, Arms: arms}, nil
	case format.Indirect:
		return c.compileIndirect(n)
	default:
		return nil, fmt.Errorf("decoder: unreachable format variant %T", f)
	}
}

func (c *compiler) compileUnion(owner format.Format, n format.Union, next matchtree.Continuation) (Decoder, error) {
	tree, err := matchtree.CompileUnion(c.arena, owner, n.Arms, next, c.maxDepth)
	if err != nil {
		return nil, err
	}
	alts := make([]BranchAlt, len(n.Arms))
	for i, arm := range n.Arms {
		d, err := c.compile(arm.Format, next)
		if err != nil {
			return nil, err
		}
		alts[i] = BranchAlt{Label: arm.Label, Decoder: d}
	}
	return DBranch{Tree: tree, Alts: alts}, nil
}

func (c *compiler) compileTuple(n format.Tuple, next matchtree.Continuation) (Decoder, error) {
	elems := make([]Decoder, len(n.Elems))
	for i, el := range n.Elems {
		elemNext := matchtree.Continuation(matchtree.CTuple{Remaining: n.Elems[i+1:], Next: next})
		d, err := c.compile(el, elemNext)
		if err != nil {
			return nil, err
		}
		elems[i] = d
	}
	return DTuple{Elems: elems}, nil
}

func (c *compiler) compileRecord(n format.Record, next matchtree.Continuation) (Decoder, error) {
	fields := make([]DRecordField, len(n.Fields))
	for i, f := range n.Fields {
		fieldNext := matchtree.Continuation(matchtree.CRecord{Remaining: n.Fields[i+1:], Next: next})
		d, err := c.compile(f.Format, fieldNext)
		if err != nil {
			return nil, err
		}
		fields[i] = DRecordField{Label: f.Label, Decoder: d}
	}
	return DRecord{Fields: fields}, nil
}

func (c *compiler) compileRepeat(owner format.Format, inner format.Format, next matchtree.Continuation, isRepeat1 bool) (Decoder, error) {
	nullable, err := format.Nullable(inner)
	if err != nil {
		return nil, err
	}
	if nullable {
		return nil, &NullableRepeatError{Repeat1: isRepeat1, Inner: inner}
	}

	tree, err := matchtree.CompileRepeat(c.arena, owner, inner, next, c.maxDepth)
	if err != nil {
		return nil, err
	}
	innerNext := matchtree.Continuation(matchtree.CRepeat{Body: inner, Next: next})
	innerDecoder, err := c.compile(inner, innerNext)
	if err != nil {
		return nil, err
	}
	if isRepeat1 {
		return DUntil{Tree: tree, Inner: innerDecoder}, nil
	}
	return DWhile{Tree: tree, Inner: innerDecoder}, nil
}

// compileIndirect ties the knot: the first time a Handle is compiled,
// a Cell is registered for it before recursing into its resolved
// format, so a self- or mutually-recursive Indirect reachable from
// within that recursion finds the same Cell instead of looping the
// compiler forever. Every later reference to the same Handle reuses
// the cached Cell without recompiling — correct for the common
// recursive-spine shape (spec.md §9), where an Indirect back to its
// own definition follows a structurally self-similar continuation at
// every unfolding depth.
func (c *compiler) compileIndirect(n format.Indirect) (Decoder, error) {
	if cell, ok := c.cells[n.Handle]; ok {
		return DIndirect{Cell: cell}, nil
	}
	if !c.arena.IsDefined(n.Handle) {
		return nil, &format.UndefinedHandleError{Name: n.Handle.Name()}
	}
	cell := &Cell{}
	c.cells[n.Handle] = cell
	resolved := c.arena.Resolve(n.Handle)
	d, err := c.compile(resolved, matchtree.CEmpty{})
	if err != nil {
		return nil, err
	}
	cell.Decoder = d
	return DIndirect{Cell: cell}, nil
}
