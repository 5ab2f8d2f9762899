// Package matchtree implements the bounded-lookahead match-tree
// compiler: given a list of candidate formats and a continuation
// describing what statically follows them, it builds a deterministic
// decision tree over upcoming bytes that identifies which candidate
// will match, or fails at compile time if no tree within the
// configured depth disambiguates them.
package matchtree

import "github.com/funvibe/octet/internal/format"

// Continuation is the persistent structure describing what follows a
// chosen alternative, used to look past an alternative's own bytes
// when disambiguating.
type Continuation interface {
	continuationNode()
}

// CEmpty means nothing follows.
type CEmpty struct{}

// CCat means f, then next.
type CCat struct {
	Format format.Format
	Next   Continuation
}

// CTuple is the remaining positional tail of a Tuple being dissected,
// and what follows the tuple as a whole.
type CTuple struct {
	Remaining []format.Format
	Next      Continuation
}

// CRecord is the analogous remaining tail of a Record being dissected.
type CRecord struct {
	Remaining []format.RecordField
	Next      Continuation
}

// CRepeat models "another iteration of Body is possible, otherwise
// take Next" — the continuation a repeat's own body is given so that,
// once it completes one iteration, the tree can decide whether to loop
// again or proceed to what follows the repeat.
type CRepeat struct {
	Body format.Format
	Next Continuation
}

func (CEmpty) continuationNode() {}
func (CCat) continuationNode()   {}
func (CTuple) continuationNode() {}
func (CRecord) continuationNode() {}
func (CRepeat) continuationNode() {}
