package matchtree

import (
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/funvibe/octet/internal/format"
)

// diagnostic is the correlation id and offending Format every
// CompileError carries, so a caller embedding the engine in a larger
// pipeline can tie a rejected Format back to a specific log line
// without the engine itself doing any logging.
type diagnostic struct {
	ID     string
	Format format.Format
}

func newDiagnostic(f format.Format) diagnostic {
	return diagnostic{ID: uuid.New().String(), Format: f}
}

// AmbiguousUnionError reports that no tree within the configured
// lookahead depth disambiguated the candidate alternatives
// (spec.md §7 "AmbiguousUnion").
type AmbiguousUnionError struct {
	diagnostic
	Depth        int
	Alternatives []int
}

func (e *AmbiguousUnionError) Error() string {
	return "matchtree: alternatives " + formatIndices(e.Alternatives) +
		" remain ambiguous after exhausting lookahead depth " + humanize.Comma(int64(e.Depth)) +
		" (id " + e.ID + ")"
}

// ConflictingAcceptError reports that two distinct alternative indices
// would accept at the same tree node — a special case of ambiguity
// detected during expansion rather than depth exhaustion
// (spec.md §7 "ConflictingAccept").
type ConflictingAcceptError struct {
	diagnostic
	Alternatives []int
}

func (e *ConflictingAcceptError) Error() string {
	return "matchtree: conflicting accept for alternatives " + formatIndices(e.Alternatives) +
		" at the same node (id " + e.ID + ")"
}

func formatIndices(idxs []int) string {
	s := "["
	for i, idx := range idxs {
		if i > 0 {
			s += ", "
		}
		s += humanize.Comma(int64(idx))
	}
	return s + "]"
}
