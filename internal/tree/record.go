// internal/tree/record.go
//
// Persisted tree format and its load-time checks.
//
// On disk a tree is a recursive Record {Word, Edges} with words stored as
// plain strings, so a file carries no alphabet of its own. FromRecord rebuilds
// the alphabet from every word in the file and then verifies, before the tree
// is handed out:
//   - every word has the root's length, which lies in [1, MaxWordLength];
//   - every edge code lies in [0, 3^L);
//   - every edge code survives pack(unpack(code, parent word)) unchanged.
//
// Any violation is ErrInvalidTreeFormat.

package tree

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/robalobadob/fiveletters/internal/game"
	"github.com/robalobadob/fiveletters/internal/words"
)

// ErrInvalidTreeFormat is returned for corrupt or foreign tree files.
var ErrInvalidTreeFormat = errors.New("tree: invalid tree format")

// Record is the serialized form of a Node.
type Record struct {
	Word  string
	Edges map[int32]*Record
}

// ToRecord converts t into its serialized form.
func ToRecord(t *Tree) *Record {
	var conv func(*Node) *Record
	conv = func(n *Node) *Record {
		r := &Record{Word: t.Alphabet.Decode(n.Word)}
		if len(n.Edges) > 0 {
			r.Edges = make(map[int32]*Record, len(n.Edges))
			for code, c := range n.Edges {
				r.Edges[code] = conv(c)
			}
		}
		return r
	}
	return conv(t.Root)
}

// FromRecord validates r and converts it into a Tree.
func FromRecord(r *Record) (*Tree, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: empty tree", ErrInvalidTreeFormat)
	}
	length := utf8.RuneCountInString(r.Word)
	if length < 1 || length > game.MaxWordLength {
		return nil, fmt.Errorf("%w: root word %q has %d letters", ErrInvalidTreeFormat, r.Word, length)
	}

	var all []string
	var collect func(*Record) error
	collect = func(rec *Record) error {
		if rec == nil {
			return fmt.Errorf("%w: nil node", ErrInvalidTreeFormat)
		}
		if n := utf8.RuneCountInString(rec.Word); n != length {
			return fmt.Errorf("%w: word %q has %d letters, root has %d", ErrInvalidTreeFormat, rec.Word, n, length)
		}
		all = append(all, rec.Word)
		for _, c := range rec.Edges {
			if err := collect(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := collect(r); err != nil {
		return nil, err
	}

	alphabet := words.NewAlphabet(all)
	space := game.CodeSpace(length)

	var conv func(*Record) (*Node, error)
	conv = func(rec *Record) (*Node, error) {
		w, err := alphabet.Encode(rec.Word)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTreeFormat, err)
		}
		n := &Node{Word: w}
		if len(rec.Edges) == 0 {
			return n, nil
		}
		n.Edges = make(map[int32]*Node, len(rec.Edges))
		for code, c := range rec.Edges {
			if code < 0 || int64(code) >= space {
				return nil, fmt.Errorf("%w: code %d after %q outside [0, %d)", ErrInvalidTreeFormat, code, rec.Word, space)
			}
			if back := game.Unpack(code, w).Pack(); back != code {
				return nil, fmt.Errorf("%w: code %d after %q is not a valid evaluation (normalizes to %d)",
					ErrInvalidTreeFormat, code, rec.Word, back)
			}
			child, err := conv(c)
			if err != nil {
				return nil, err
			}
			n.Edges[code] = child
		}
		return n, nil
	}
	root, err := conv(r)
	if err != nil {
		return nil, err
	}
	return &Tree{Alphabet: alphabet, Length: length, Root: root}, nil
}
