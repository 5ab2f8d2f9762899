package matchtree

import "github.com/funvibe/octet/internal/format"

// pending pairs a candidate alternative's index with the continuation
// still to be dissected for it.
type pending struct {
	idx  int
	cont Continuation
}

// accumulator gathers, for a single node under construction, the
// accept and byte-consuming outcomes contributed by every pending
// entry's dissection.
type accumulator struct {
	acceptIdx map[int]bool
	byte      []byteOutcome
}

type byteOutcome struct {
	idx  int
	set  format.ByteSet
	next Continuation
}

func newAccumulator() *accumulator {
	return &accumulator{acceptIdx: map[int]bool{}}
}

func (a *accumulator) registerAccept(idx int) {
	a.acceptIdx[idx] = true // registering a single index twice is idempotent
}

func (a *accumulator) registerByte(idx int, set format.ByteSet, next Continuation) {
	if set.IsEmpty() {
		return
	}
	a.byte = append(a.byte, byteOutcome{idx: idx, set: set, next: next})
}

func (a *accumulator) distinctIndices() map[int]bool {
	out := map[int]bool{}
	for idx := range a.acceptIdx {
		out[idx] = true
	}
	for _, b := range a.byte {
		out[b.idx] = true
	}
	return out
}

// builder holds the state shared across one top-level Compile call:
// the arena Indirect formats dereference through, the total lookahead
// budget K (reported in AmbiguousUnionError; the depth still left is
// passed to compileNode), and the owning Format (for diagnostics).
type builder struct {
	arena    *format.Arena
	maxDepth int
	owner    format.Format
	err      error
}

// CompileUnion builds the MatchTree for the ordered alternatives of a
// Union, given the continuation describing what follows the Union as
// a whole. owner is the Union format itself, attached to any
// CompileError for diagnostics.
func CompileUnion(arena *format.Arena, owner format.Format, arms []format.UnionArm, outerNext Continuation, maxDepth int) (*Node, error) {
	b := &builder{arena: arena, maxDepth: maxDepth, owner: owner}
	nexts := make([]pending, len(arms))
	for i, arm := range arms {
		nexts[i] = pending{idx: i, cont: CCat{Format: arm.Format, Next: outerNext}}
	}
	return b.compileNode(nexts, maxDepth)
}

// CompileRepeat builds the two-branch MatchTree ("stop" at index 0,
// "another iteration" at index 1) shared by Repeat and Repeat1: after
// the first iteration the same tree decides whether to continue, so
// Repeat's "0 or more" and Repeat1's "1 or more" share one compiled
// shape. owner is the Repeat/Repeat1 format itself, attached to any
// CompileError.
func CompileRepeat(arena *format.Arena, owner format.Format, inner format.Format, outerNext Continuation, maxDepth int) (*Node, error) {
	b := &builder{arena: arena, maxDepth: maxDepth, owner: owner}
	nexts := []pending{
		{idx: 0, cont: outerNext},
		{idx: 1, cont: CCat{Format: inner, Next: CRepeat{Body: inner, Next: outerNext}}},
	}
	return b.compileNode(nexts, maxDepth)
}

func (b *builder) compileNode(nexts []pending, depthLeft int) (*Node, error) {
	acc := newAccumulator()
	for _, p := range nexts {
		b.step(p.idx, p.cont, acc)
		if b.err != nil {
			return nil, b.err
		}
	}

	distinct := acc.distinctIndices()
	if len(distinct) == 1 {
		return acceptNode(onlyIndex(distinct)), nil
	}
	if len(distinct) == 0 {
		return rejectNode(), nil
	}

	if len(acc.byte) == 0 {
		// Only accepts were registered and more than one alternative
		// survives: nothing further distinguishes them.
		return nil, b.conflictingAccept(acc.acceptIdx)
	}
	if len(acc.acceptIdx) > 1 {
		// More than one alternative claims "I'm done" at this node
		// while others still need another byte: if input ends exactly
		// here, those claims can't be told apart either.
		return nil, b.conflictingAccept(acc.acceptIdx)
	}

	var defaultAccept *int
	if len(acc.acceptIdx) == 1 {
		v := onlyIndex(acc.acceptIdx)
		defaultAccept = &v
	}

	if depthLeft <= 0 {
		return nil, b.ambiguousUnion(distinct)
	}

	partitions := partitionByteOutcomes(acc.byte)
	branches := make([]Branch, 0, len(partitions))
	for _, part := range partitions {
		child, err := b.compileNode(part.entries, depthLeft-1)
		if err != nil {
			return nil, err
		}
		branches = append(branches, Branch{Set: part.set, Next: child})
	}
	return branchNode(branches, defaultAccept), nil
}

func (b *builder) conflictingAccept(idx map[int]bool) error {
	d := newDiagnostic(b.owner)
	return &ConflictingAcceptError{diagnostic: d, Alternatives: sortedKeys(idx)}
}

func (b *builder) ambiguousUnion(idx map[int]bool) error {
	d := newDiagnostic(b.owner)
	return &AmbiguousUnionError{diagnostic: d, Depth: b.maxDepth, Alternatives: sortedKeys(idx)}
}

// step dissects the continuation for one alternative, peeling formats
// off Cat/Tuple/Record and unrolling CRepeat, registering outcomes on
// acc as it goes.
func (b *builder) step(idx int, cont Continuation, acc *accumulator) {
	if b.err != nil {
		return
	}
	switch c := cont.(type) {
	case CEmpty:
		acc.registerAccept(idx)
	case CCat:
		b.stepFormat(idx, c.Format, c.Next, acc)
	case CTuple:
		if len(c.Remaining) == 0 {
			b.step(idx, c.Next, acc)
			return
		}
		b.stepFormat(idx, c.Remaining[0], CTuple{Remaining: c.Remaining[1:], Next: c.Next}, acc)
	case CRecord:
		if len(c.Remaining) == 0 {
			b.step(idx, c.Next, acc)
			return
		}
		b.stepFormat(idx, c.Remaining[0].Format, CRecord{Remaining: c.Remaining[1:], Next: c.Next}, acc)
	case CRepeat:
		// Zero more iterations: take Next.
		b.step(idx, c.Next, acc)
		// One more iteration: consume Body, then re-enter this same
		// repeat decision.
		b.stepFormat(idx, c.Body, CRepeat{Body: c.Body, Next: c.Next}, acc)
	default:
		panic("matchtree: unreachable continuation variant")
	}
}

// stepFormat dissects the first format of an alternative's remaining
// path into the accept/byte outcomes it contributes at this node.
func (b *builder) stepFormat(idx int, f format.Format, next Continuation, acc *accumulator) {
	if b.err != nil {
		return
	}
	switch n := f.(type) {
	case format.Fail:
		// contributes nothing: Fail eliminates this alternative here.
	case format.EndOfInput:
		acc.registerAccept(idx)
	case format.Byte:
		acc.registerByte(idx, n.Set, next)
	case format.Union:
		for _, arm := range n.Arms {
			b.stepFormat(idx, arm.Format, next, acc)
		}
	case format.Tuple:
		if len(n.Elems) == 0 {
			b.step(idx, next, acc)
			return
		}
		b.stepFormat(idx, n.Elems[0], CTuple{Remaining: n.Elems[1:], Next: next}, acc)
	case format.Record:
		if len(n.Fields) == 0 {
			b.step(idx, next, acc)
			return
		}
		b.stepFormat(idx, n.Fields[0].Format, CRecord{Remaining: n.Fields[1:], Next: next}, acc)
	case format.Repeat:
		b.step(idx, next, acc)
		b.stepFormat(idx, n.Inner, CRepeat{Body: n.Inner, Next: next}, acc)
	case format.Repeat1:
		b.stepFormat(idx, n.Inner, CRepeat{Body: n.Inner, Next: next}, acc)
	case format.RepeatCount, format.Slice, format.WithRelativeOffset:
		// Variable-length constructs commit without further lookahead
		acc.registerAccept(idx)
	case format.Map:
		b.stepFormat(idx, n.Inner, next, acc)
	case format.Match:
		for _, arm := range n.Arms {
			b.stepFormat(idx, arm.Format, next, acc)
		}
	case format.Indirect:
		if !b.arena.IsDefined(n.Handle) {
			b.err = &format.UndefinedHandleError{Name: n.Handle.Name()}
			return
		}
		resolved := b.arena.Resolve(n.Handle)
		b.stepFormat(idx, resolved, next, acc)
	default:
		panic("matchtree: unreachable format variant")
	}
}

func onlyIndex(m map[int]bool) int {
	for k := range m {
		return k
	}
	panic("matchtree: onlyIndex called on an empty set")
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
