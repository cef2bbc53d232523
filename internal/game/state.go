// internal/game/state.go
//
// Constraint matcher.
//
// A State is derived from one guess plus either its evaluation or the hidden
// word that produced it. It records:
//   - per position: whether the candidate must (Correct) or must not
//     (Present/Absent) hold the guess letter there;
//   - per guess letter: the minimum number of occurrences, and whether that
//     minimum is exact (some copy of the letter was marked Absent).
//
// Matches is probed against every word of large candidate sets, so it runs in
// O(word length) and reuses an internal counts buffer. A State is therefore
// not safe for concurrent use; give each goroutine its own.

package game

import (
	"fmt"

	"github.com/robalobadob/fiveletters/internal/words"
)

type letterBound struct {
	min   int
	exact bool
}

type positionRule struct {
	letter words.Letter
	match  bool
}

// State is a reusable constraint matcher.
type State struct {
	bounds    []letterBound // indexed by letter
	positions []positionRule
	tracked   []words.Letter // distinct guess letters, the only ones with a bound
	counts    []int          // scratch, all zero between calls
	guessSeen []int          // scratch for Reset
}

// NewState allocates a matcher for words of the given length over an
// alphabet of alphabetSize letters.
func NewState(length, alphabetSize int) *State {
	return &State{
		bounds:    make([]letterBound, alphabetSize),
		positions: make([]positionRule, length),
		tracked:   make([]words.Letter, 0, length),
		counts:    make([]int, alphabetSize),
		guessSeen: make([]int, alphabetSize),
	}
}

// StateFromEvaluation builds a matcher from a guess and its evaluation.
func StateFromEvaluation(guess words.Word, eval Evaluation, alphabetSize int) (*State, error) {
	if len(eval) != len(guess) {
		return nil, fmt.Errorf("%w: %d marks for a %d letter guess", words.ErrWordLengthMismatch, len(eval), len(guess))
	}
	if err := checkAlphabet(alphabetSize, guess); err != nil {
		return nil, err
	}
	s := NewState(len(guess), alphabetSize)
	s.clearBounds()

	for i, l := range guess {
		s.positions[i] = positionRule{letter: l, match: eval[i] == MarkCorrect}
		if s.guessSeen[l] == 0 {
			s.tracked = append(s.tracked, l)
		}
		s.guessSeen[l]++
		if eval[i] != MarkAbsent {
			s.bounds[l].min++
		}
	}
	for _, l := range s.tracked {
		s.bounds[l].exact = s.guessSeen[l] > s.bounds[l].min
		s.guessSeen[l] = 0
	}
	return s, nil
}

// StateFromHidden builds a matcher from a guess and the hidden word.
func StateFromHidden(guess, hidden words.Word, alphabetSize int) (*State, error) {
	if len(hidden) != len(guess) {
		return nil, fmt.Errorf("%w: hidden has %d letters, guess has %d", words.ErrWordLengthMismatch, len(hidden), len(guess))
	}
	if err := checkAlphabet(alphabetSize, guess, hidden); err != nil {
		return nil, err
	}
	s := NewState(len(guess), alphabetSize)
	s.Reset(guess, hidden)
	return s, nil
}

// Reset reinitializes the matcher for (guess, hidden) without allocating.
// Both words must have the length and alphabet the State was created for.
//
// The bounds are computed directly from letter counts: a letter occurring
// more often in the guess than in the hidden word gets an exact bound equal
// to the hidden count, otherwise a lower bound equal to the guess count.
func (s *State) Reset(guess, hidden words.Word) {
	s.clearBounds()
	for i, l := range guess {
		s.positions[i] = positionRule{letter: l, match: hidden[i] == l}
		if s.guessSeen[l] == 0 {
			s.tracked = append(s.tracked, l)
		}
		s.guessSeen[l]++
	}
	for _, l := range hidden {
		s.counts[l]++
	}
	for _, l := range s.tracked {
		if h, g := s.counts[l], s.guessSeen[l]; h < g {
			s.bounds[l] = letterBound{min: h, exact: true}
		} else {
			s.bounds[l] = letterBound{min: g}
		}
	}
	for _, l := range hidden {
		s.counts[l] = 0
	}
	for _, l := range s.tracked {
		s.guessSeen[l] = 0
	}
}

// Matches reports whether candidate is consistent with the observed feedback.
func (s *State) Matches(candidate words.Word) bool {
	if len(candidate) != len(s.positions) {
		return false
	}
	for i, l := range candidate {
		if int(l) >= len(s.counts) {
			return false
		}
		if (l == s.positions[i].letter) != s.positions[i].match {
			return false
		}
	}

	for _, l := range candidate {
		s.counts[l]++
	}
	ok := true
	for _, l := range s.tracked {
		b := s.bounds[l]
		if c := s.counts[l]; c < b.min || (b.exact && c > b.min) {
			ok = false
			break
		}
	}
	for _, l := range candidate {
		s.counts[l] = 0
	}
	return ok
}

// Filter returns the candidates that match.
func (s *State) Filter(candidates []words.Word) []words.Word {
	var out []words.Word
	for _, w := range candidates {
		if s.Matches(w) {
			out = append(out, w)
		}
	}
	return out
}

func (s *State) clearBounds() {
	for _, l := range s.tracked {
		s.bounds[l] = letterBound{}
	}
	s.tracked = s.tracked[:0]
}

func checkAlphabet(alphabetSize int, list ...words.Word) error {
	for _, w := range list {
		for _, l := range w {
			if int(l) >= alphabetSize {
				return fmt.Errorf("%w: letter %d outside alphabet of %d", words.ErrAlphabetMismatch, l, alphabetSize)
			}
		}
	}
	return nil
}
