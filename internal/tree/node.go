// internal/tree/node.go
//
// Decision tree types.
//
// A Node holds the word to guess and one child per evaluation code that can
// follow it. A node without edges is a leaf: its word is the answer. Trees are
// built once and never mutated, so a *Tree can be shared by any number of
// readers without locking.

package tree

import (
	"errors"
	"fmt"
	"slices"

	"github.com/robalobadob/fiveletters/internal/game"
	"github.com/robalobadob/fiveletters/internal/words"
)

// ErrNoWordsLeft means a chain of codes leads off the tree: some feedback
// along the way was entered wrong.
var ErrNoWordsLeft = errors.New("tree: no words left")

// Node is one guess of the strategy.
type Node struct {
	Word  words.Word
	Edges map[int32]*Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Edges) == 0 }

// Next follows the edge for code.
func (n *Node) Next(code int32) (*Node, bool) {
	c, ok := n.Edges[code]
	return c, ok
}

// Codes returns the edge codes of n in ascending order.
func (n *Node) Codes() []int32 {
	out := make([]int32, 0, len(n.Edges))
	for c := range n.Edges {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Size counts the nodes of the subtree rooted at n.
func (n *Node) Size() int {
	total := 1
	for _, c := range n.Edges {
		total += c.Size()
	}
	return total
}

// Depth is the number of guesses on the longest path of the subtree.
func (n *Node) Depth() int {
	d := 0
	for _, c := range n.Edges {
		d = max(d, c.Depth())
	}
	return d + 1
}

// Tree is a validated decision tree together with the alphabet its words
// are encoded in.
type Tree struct {
	Alphabet *words.Alphabet
	Length   int
	Root     *Node
}

// Follow walks chain from the root and returns the node reached.
func (t *Tree) Follow(chain []int32) (*Node, error) {
	n := t.Root
	for i, code := range chain {
		next, ok := n.Next(code)
		if !ok {
			return nil, fmt.Errorf("%w: attempt %d, guess %q, feedback %s",
				ErrNoWordsLeft, i+1, t.Alphabet.Decode(n.Word), game.Unpack(code, n.Word).Mask())
		}
		n = next
	}
	return n, nil
}

// Decode returns the string form of w.
func (t *Tree) Decode(w words.Word) string { return t.Alphabet.Decode(w) }

// Words returns the sorted distinct words of the tree.
func (t *Tree) Words() []words.Word {
	return Collect(t.Root)
}

// Collect returns the sorted distinct words of the subtree rooted at n.
func Collect(n *Node) []words.Word {
	var out []words.Word
	var walk func(*Node)
	walk = func(n *Node) {
		out = append(out, n.Word)
		for _, c := range n.Edges {
			walk(c)
		}
	}
	walk(n)
	slices.SortFunc(out, words.Word.Compare)
	return slices.CompactFunc(out, words.Word.Equal)
}
