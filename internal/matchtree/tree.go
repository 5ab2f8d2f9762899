package matchtree

import "github.com/funvibe/octet/internal/format"

// Branch maps a disjoint byte-set to the subtree explored when the
// next input byte is a member of that set.
type Branch struct {
	Set  format.ByteSet
	Next *Node
}

// Node is one node of a MatchTree (spec.md §3 "MatchTree"): either an
// accept (IsAccept true, carrying AcceptIndex), a reject (no branches,
// no default — every alternative was eliminated), or a branch table
// with an optional default-accept used whenever the next input byte
// (or the lack of one) isn't covered by any branch.
type Node struct {
	IsAccept    bool
	AcceptIndex int

	Branches      []Branch
	DefaultAccept *int
}

func acceptNode(idx int) *Node {
	return &Node{IsAccept: true, AcceptIndex: idx}
}

func rejectNode() *Node {
	return &Node{}
}

func branchNode(branches []Branch, defaultAccept *int) *Node {
	return &Node{Branches: branches, DefaultAccept: defaultAccept}
}

// Lookup consults the tree against input, returning the index of the
// alternative it selects and true, or false if no alternative matches.
// A present byte that falls in no branch at a node falls through to
// that node's default-accept exactly as an exhausted input would —
// the caller (typically a Repeat/Repeat1 decoder) is expected to stop
// there, or, for a Union, to re-run the chosen alternative's own
// decoder, which rejects on its own terms if that byte doesn't
// actually belong to it.
func (n *Node) Lookup(input []byte) (int, bool) {
	node := n
	for {
		if node.IsAccept {
			return node.AcceptIndex, true
		}
		if len(node.Branches) == 0 && node.DefaultAccept == nil {
			return 0, false
		}
		if len(input) == 0 {
			if node.DefaultAccept != nil {
				return *node.DefaultAccept, true
			}
			return 0, false
		}
		b := input[0]
		next := node.findBranch(b)
		if next == nil {
			if node.DefaultAccept != nil {
				return *node.DefaultAccept, true
			}
			return 0, false
		}
		node = next
		input = input[1:]
	}
}

func (n *Node) findBranch(b byte) *Node {
	for _, br := range n.Branches {
		if br.Set.Contains(b) {
			return br.Next
		}
	}
	return nil
}
