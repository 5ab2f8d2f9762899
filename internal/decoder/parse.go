package decoder

import (
	"github.com/funvibe/octet/internal/expr"
	"github.com/funvibe/octet/internal/value"
)

// Parse runs d against input with stack s (spec.md §6 "Parse API",
// §4.4). On success it returns the decoded value, the remainder of
// input, and true; s is restored to its entry size. On rejection it
// returns (nil, input, false) and s is likewise restored to its entry
// size — no partial bindings or partial values ever escape a failed
// parse.
func Parse(d Decoder, s *value.Stack, input []byte) (value.Value, []byte, bool) {
	base := s.Len()
	v, rest, ok := parse(d, s, input)
	if !ok {
		s.Truncate(base)
		return nil, input, false
	}
	return v, rest, true
}

func parse(d Decoder, s *value.Stack, input []byte) (value.Value, []byte, bool) {
	switch n := d.(type) {
	case DFail:
		return nil, input, false
	case DEndOfInput:
		if len(input) != 0 {
			return nil, input, false
		}
		return value.Unit{}, input, true
	case DByte:
		if len(input) == 0 || !n.Set.Contains(input[0]) {
			return nil, input, false
		}
		return value.U8(input[0]), input[1:], true
	case DBranch:
		idx, ok := n.Tree.Lookup(input)
		if !ok {
			return nil, input, false
		}
		alt := n.Alts[idx]
		v, rest, ok := parse(alt.Decoder, s, input)
		if !ok {
			return nil, input, false
		}
		return value.Variant{Label: alt.Label, Payload: v}, rest, true
	case DTuple:
		elems := make(value.Tuple, len(n.Elems))
		rest := input
		for i, el := range n.Elems {
			v, r, ok := parse(el, s, rest)
			if !ok {
				return nil, input, false
			}
			elems[i] = v
			rest = r
		}
		return elems, rest, true
	case DRecord:
		return parseRecord(n, s, input)
	case DWhile:
		return parseWhile(n, s, input)
	case DUntil:
		return parseUntil(n, s, input)
	case DRepeatCount:
		return parseRepeatCount(n, s, input)
	case DSlice:
		return parseSlice(n, s, input)
	case DWithRelativeOffset:
		return parseWithRelativeOffset(n, s, input)
	case DMap:
		v, rest, ok := parse(n.Inner, s, input)
		if !ok {
			return nil, input, false
		}
		return expr.Apply(n.Fn, s, v), rest, true
	case DMatch:
		return parseMatch(n, s, input)
	case DIndirect:
		return parse(n.Cell.Decoder, s, input)
	default:
		panic("decoder: unreachable decoder variant")
	}
}

func parseRecord(n DRecord, s *value.Stack, input []byte) (value.Value, []byte, bool) {
	base := s.Len()
	rec := make(value.Record, len(n.Fields))
	rest := input
	for i, f := range n.Fields {
		v, r, ok := parse(f.Decoder, s, rest)
		if !ok {
			s.Truncate(base)
			return nil, input, false
		}
		s.Push(v)
		rec[i] = value.Field{Label: f.Label, Value: v}
		rest = r
	}
	s.Truncate(base)
	return rec, rest, true
}

func parseWhile(n DWhile, s *value.Stack, input []byte) (value.Value, []byte, bool) {
	var seq value.Seq
	rest := input
	for {
		idx, ok := n.Tree.Lookup(rest)
		if !ok {
			return nil, input, false
		}
		if idx == 0 {
			break
		}
		v, r, ok := parse(n.Inner, s, rest)
		if !ok {
			return nil, input, false
		}
		seq = append(seq, v)
		rest = r
	}
	if seq == nil {
		seq = value.Seq{}
	}
	return seq, rest, true
}

func parseUntil(n DUntil, s *value.Stack, input []byte) (value.Value, []byte, bool) {
	v, rest, ok := parse(n.Inner, s, input)
	if !ok {
		return nil, input, false
	}
	seq := value.Seq{v}
	for {
		idx, ok := n.Tree.Lookup(rest)
		if !ok {
			return nil, input, false
		}
		if idx == 0 {
			break
		}
		v, r, ok := parse(n.Inner, s, rest)
		if !ok {
			return nil, input, false
		}
		seq = append(seq, v)
		rest = r
	}
	return seq, rest, true
}

func parseRepeatCount(n DRepeatCount, s *value.Stack, input []byte) (value.Value, []byte, bool) {
	count := expr.Eval(n.Count, s)
	nCopies, ok := asCount(count)
	if !ok {
		return nil, input, false
	}
	seq := make(value.Seq, 0, nCopies)
	rest := input
	for i := 0; i < nCopies; i++ {
		v, r, ok := parse(n.Inner, s, rest)
		if !ok {
			return nil, input, false
		}
		seq = append(seq, v)
		rest = r
	}
	return seq, rest, true
}

func parseSlice(n DSlice, s *value.Stack, input []byte) (value.Value, []byte, bool) {
	size := expr.Eval(n.Size, s)
	nBytes, ok := asCount(size)
	if !ok || nBytes > len(input) {
		return nil, input, false
	}
	window := input[:nBytes]
	v, _, ok := parse(n.Inner, s, window)
	if !ok {
		return nil, input, false
	}
	return v, input[nBytes:], true
}

func parseWithRelativeOffset(n DWithRelativeOffset, s *value.Stack, input []byte) (value.Value, []byte, bool) {
	offset := expr.Eval(n.Offset, s)
	nBytes, ok := asCount(offset)
	if !ok || nBytes > len(input) {
		return nil, input, false
	}
	v, _, ok := parse(n.Inner, s, input[nBytes:])
	if !ok {
		return nil, input, false
	}
	return v, input, true
}

func parseMatch(n DMatch, s *value.Stack, input []byte) (value.Value, []byte, bool) {
	scrutinee := expr.Eval(n.Scrutinee, s)
	base := s.Len()
	for _, arm := range n.Arms {
		if value.Match(arm.Pattern, scrutinee, s) {
			v, rest, ok := parse(arm.Decoder, s, input)
			s.Truncate(base)
			if !ok {
				return nil, input, false
			}
			return v, rest, true
		}
	}
	panic(expr.Fault{Msg: "pattern-match exhaustion in Format::Match"})
}

func asCount(v value.Value) (int, bool) {
	switch n := v.(type) {
	case value.U8:
		return int(n), true
	case value.U16:
		return int(n), true
	case value.U32:
		return int(n), true
	default:
		return 0, false
	}
}
