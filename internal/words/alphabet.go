// internal/words/alphabet.go
//
// Alphabet and Word: the dense integer encoding every other package works on.
//
// An Alphabet is the sorted set of distinct characters seen in a corpus.
// Letter i of the alphabet is the i-th smallest rune, so the mapping is a
// bijection with [0, Size()). Words are fixed-length slices of letter indexes
// and are only meaningful relative to the alphabet that encoded them.

package words

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrAlphabetMismatch is returned when a character (or letter index) is
	// not part of the alphabet in use.
	ErrAlphabetMismatch = errors.New("words: alphabet mismatch")

	// ErrWordLengthMismatch is returned when words of different lengths are mixed.
	ErrWordLengthMismatch = errors.New("words: word length mismatch")
)

// Letter is a dense alphabet index.
type Letter uint16

// Word is an immutable sequence of letters. Callers must not modify it.
type Word []Letter

// Alphabet maps characters to dense letter indexes and back. Immutable once built.
type Alphabet struct {
	runes []rune
	index map[rune]Letter
}

// NewAlphabet builds an alphabet from the distinct runes of all given words.
func NewAlphabet(lists ...[]string) *Alphabet {
	seen := make(map[rune]struct{})
	for _, list := range lists {
		for _, w := range list {
			for _, r := range w {
				seen[r] = struct{}{}
			}
		}
	}
	runes := make([]rune, 0, len(seen))
	for r := range seen {
		runes = append(runes, r)
	}
	slices.Sort(runes)

	a := &Alphabet{runes: runes, index: make(map[rune]Letter, len(runes))}
	for i, r := range runes {
		a.index[r] = Letter(i)
	}
	return a
}

// Size is the number of distinct letters.
func (a *Alphabet) Size() int { return len(a.runes) }

// Encode converts s into a Word. Every rune of s must be in the alphabet.
func (a *Alphabet) Encode(s string) (Word, error) {
	w := make(Word, 0, len(s))
	for _, r := range s {
		l, ok := a.index[r]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no character %q", ErrAlphabetMismatch, s, r)
		}
		w = append(w, l)
	}
	return w, nil
}

// EncodeAll encodes a list of words that must all share one length.
func (a *Alphabet) EncodeAll(list []string) ([]Word, error) {
	out := make([]Word, 0, len(list))
	length := -1
	for _, s := range list {
		w, err := a.Encode(s)
		if err != nil {
			return nil, err
		}
		if length < 0 {
			length = len(w)
		} else if len(w) != length {
			return nil, fmt.Errorf("%w: %q has %d letters, expected %d", ErrWordLengthMismatch, s, len(w), length)
		}
		out = append(out, w)
	}
	return out, nil
}

// Decode converts a word back to its string form.
func (a *Alphabet) Decode(w Word) string {
	var b strings.Builder
	for _, l := range w {
		if int(l) < len(a.runes) {
			b.WriteRune(a.runes[l])
		} else {
			b.WriteRune('?')
		}
	}
	return b.String()
}

// DecodeAll decodes a list of words.
func (a *Alphabet) DecodeAll(list []Word) []string {
	out := make([]string, len(list))
	for i, w := range list {
		out[i] = a.Decode(w)
	}
	return out
}

// Contains reports whether every letter of w is a valid index of a.
func (a *Alphabet) Contains(w Word) bool {
	for _, l := range w {
		if int(l) >= len(a.runes) {
			return false
		}
	}
	return true
}

// String returns the alphabet characters in index order.
func (a *Alphabet) String() string { return string(a.runes) }

// Equal reports whether w and other hold the same letters at every position.
func (w Word) Equal(other Word) bool { return slices.Equal(w, other) }

// Compare orders words lexicographically by letter index.
func (w Word) Compare(other Word) int { return slices.Compare(w, other) }

// Validate checks that all words have the given length and fit an alphabet of
// alphabetSize letters.
func Validate(list []Word, length, alphabetSize int) error {
	for _, w := range list {
		if len(w) != length {
			return fmt.Errorf("%w: got %d letters, expected %d", ErrWordLengthMismatch, len(w), length)
		}
		for _, l := range w {
			if int(l) >= alphabetSize {
				return fmt.Errorf("%w: letter %d outside alphabet of %d", ErrAlphabetMismatch, l, alphabetSize)
			}
		}
	}
	return nil
}
