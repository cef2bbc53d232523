// internal/stats/stats.go
//
// Replay statistics of a decision tree.
//
// Collect plays every word against the tree as the hidden answer: at each node
// the node's word is guessed, and unless it is the answer the edge for the
// resulting code is followed. The number of guesses needed is the word's
// attempt count. Words that fall off the tree are reported separately.
//
// FromTree needs no dictionary: it walks every root-to-leaf chain and counts
// the leaf word as solved at the first position it appears in the chain.

package stats

import (
	"errors"
	"fmt"
	"slices"

	"github.com/robalobadob/fiveletters/internal/game"
	"github.com/robalobadob/fiveletters/internal/tree"
	"github.com/robalobadob/fiveletters/internal/words"
)

// MaxAttempts is the number of guesses a game allows.
const MaxAttempts = 6

// Report summarizes how many guesses the tree needs per word.
type Report struct {
	Words       int         `json:"words"`
	Histogram   map[int]int `json:"histogram"` // attempts -> words
	MaxAttempts int         `json:"maxAttempts"`
	Mean        float64     `json:"mean"`
	Failures    []string    `json:"failures"`    // solved after more than MaxAttempts guesses
	Unreachable []string    `json:"unreachable"` // no path in the tree
}

// Replay returns the number of guesses the tree needs to find hidden.
func Replay(t *tree.Tree, hidden words.Word) (int, error) {
	n := t.Root
	for attempts := 1; ; attempts++ {
		if n.Word.Equal(hidden) {
			return attempts, nil
		}
		next, ok := n.Next(game.Code(hidden, n.Word))
		if !ok {
			return 0, fmt.Errorf("%w: %q after %d guesses", tree.ErrNoWordsLeft, t.Decode(hidden), attempts)
		}
		n = next
	}
}

// Collect replays every word of hidden, or every word of the tree when
// hidden is empty.
func Collect(t *tree.Tree, hidden []words.Word) Report {
	if len(hidden) == 0 {
		hidden = t.Words()
	}
	r := Report{Histogram: make(map[int]int)}
	total := 0
	for _, h := range hidden {
		attempts, err := Replay(t, h)
		if errors.Is(err, tree.ErrNoWordsLeft) {
			r.Unreachable = append(r.Unreachable, t.Decode(h))
			continue
		}
		r.add(attempts, t.Decode(h))
		total += attempts
	}
	if r.Words > 0 {
		r.Mean = float64(total) / float64(r.Words)
	}
	return r
}

// FromTree builds the histogram of root-to-leaf chains.
func FromTree(t *tree.Tree) Report {
	r := Report{Histogram: make(map[int]int)}
	total := 0
	var chain []words.Word
	var walk func(*tree.Node)
	walk = func(n *tree.Node) {
		chain = append(chain, n.Word)
		defer func() { chain = chain[:len(chain)-1] }()
		if n.IsLeaf() {
			attempts := slices.IndexFunc(chain, n.Word.Equal) + 1
			r.add(attempts, t.Decode(n.Word))
			total += attempts
			return
		}
		for _, code := range n.Codes() {
			walk(n.Edges[code])
		}
	}
	walk(t.Root)
	if r.Words > 0 {
		r.Mean = float64(total) / float64(r.Words)
	}
	return r
}

func (r *Report) add(attempts int, word string) {
	r.Words++
	r.Histogram[attempts]++
	r.MaxAttempts = max(r.MaxAttempts, attempts)
	if attempts > MaxAttempts {
		r.Failures = append(r.Failures, word)
	}
}

// Buckets returns the histogram as (attempts, count) pairs in ascending order.
func (r Report) Buckets() []Bucket {
	out := make([]Bucket, 0, len(r.Histogram))
	for a, c := range r.Histogram {
		out = append(out, Bucket{Attempts: a, Count: c})
	}
	slices.SortFunc(out, func(a, b Bucket) int { return a.Attempts - b.Attempts })
	return out
}

// Bucket is one histogram row.
type Bucket struct {
	Attempts int `json:"attempts"`
	Count    int `json:"count"`
}
