package value

// Pattern is the parallel sum type to Value, used to destructure
// values while parsing Match expressions and Func::Match arms.
// Matching is deterministic and left-to-right; on failure the caller
// is responsible for rolling the stack back to its pre-match size
// (see Match, which does this internally).
type Pattern interface {
	patternNode()
}

// PBinding catches any value and pushes it onto the stack.
type PBinding struct{}

func (PBinding) patternNode() {}

// PWildcard matches any value and binds nothing.
type PWildcard struct{}

func (PWildcard) patternNode() {}

// PBool, PU8, PU16, PU32 are primitive literal patterns.
type PBool bool
type PU8 uint8
type PU16 uint16
type PU32 uint32

func (PBool) patternNode() {}
func (PU8) patternNode()   {}
func (PU16) patternNode()  {}
func (PU32) patternNode()  {}

// PTuple matches a Tuple of the same arity, position by position.
type PTuple []Pattern

func (PTuple) patternNode() {}

// PSeq matches a Seq of the same length, position by position.
type PSeq []Pattern

func (PSeq) patternNode() {}

// PVariant matches a Variant with the given label, then matches the
// payload pattern against the variant's payload.
type PVariant struct {
	Label   string
	Payload Pattern
}

func (PVariant) patternNode() {}

// Match attempts to match p against v, pushing any bindings onto s in
// left-to-right order. On success it returns true with s grown by
// however many PBinding patterns matched. On failure it returns false
// with s truncated back to its size on entry — no partial bindings
// leak out of a failed match.
func Match(p Pattern, v Value, s *Stack) bool {
	base := s.Len()
	if matchInto(p, v, s) {
		return true
	}
	s.Truncate(base)
	return false
}

func matchInto(p Pattern, v Value, s *Stack) bool {
	switch pp := p.(type) {
	case PBinding:
		s.Push(v)
		return true
	case PWildcard:
		return true
	case PBool:
		b, ok := v.(Bool)
		return ok && bool(b) == bool(pp)
	case PU8:
		u, ok := v.(U8)
		return ok && u == U8(pp)
	case PU16:
		u, ok := v.(U16)
		return ok && u == U16(pp)
	case PU32:
		u, ok := v.(U32)
		return ok && u == U32(pp)
	case PTuple:
		t, ok := v.(Tuple)
		if !ok || len(t) != len(pp) {
			return false
		}
		for i, sub := range pp {
			if !matchInto(sub, t[i], s) {
				return false
			}
		}
		return true
	case PSeq:
		seq, ok := v.(Seq)
		if !ok || len(seq) != len(pp) {
			return false
		}
		for i, sub := range pp {
			if !matchInto(sub, seq[i], s) {
				return false
			}
		}
		return true
	case PVariant:
		vv, ok := v.(Variant)
		if !ok || vv.Label != pp.Label {
			return false
		}
		return matchInto(pp.Payload, vv.Payload, s)
	default:
		return false
	}
}
