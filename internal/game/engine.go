// internal/game/engine.go
//
// Evaluation engine.
// Responsibilities:
//   - Score a guess against a hidden word with exact duplicate-letter accounting.
//   - Pack an evaluation to a base-3 integer code and unpack it again.
//   - Parse and normalize user-typed masks (g/w/y).
//
// Notes:
//   - Codes are most-significant digit first, so the all-correct code of an
//     L-letter word is 3^L - 1.
//   - A code is only meaningful relative to the guess it was computed for.

package game

import (
	"fmt"
	"strings"

	"github.com/robalobadob/fiveletters/internal/words"
)

// Evaluate implements the standard two‑pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Correct.
//   - Count remaining (non‑correct) hidden letters.
//
// Pass 2:
//   - For each non‑correct guess letter, left to right: if there is a
//     remaining count for that letter, mark Present and decrement the count;
//     otherwise mark Absent.
//
// hidden and guess must have the same length.
func Evaluate(hidden, guess words.Word) Evaluation {
	n := len(guess)
	res := make(Evaluation, n)
	counts := make(map[words.Letter]int, n)

	for i := 0; i < n; i++ {
		if guess[i] == hidden[i] {
			res[i] = MarkCorrect
		} else {
			counts[hidden[i]]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == MarkCorrect {
			continue
		}
		if c := guess[i]; counts[c] > 0 {
			res[i] = MarkPresent
			counts[c]--
		}
	}
	return res
}

// Code evaluates and packs in one step.
func Code(hidden, guess words.Word) int32 {
	return Evaluate(hidden, guess).Pack()
}

// Pack interprets the marks as a base-3 number, first position most significant.
func (e Evaluation) Pack() int32 {
	var code int32
	for _, m := range e {
		code = code*markCount + int32(m)
	}
	return code
}

// Unpack extracts len(guess) digits from code and normalizes them against guess.
// For codes produced by Evaluate the normalization changes nothing.
func Unpack(code int32, guess words.Word) Evaluation {
	marks := make(Evaluation, len(guess))
	for i := len(guess) - 1; i >= 0; i-- {
		marks[i] = Mark(code % markCount)
		code /= markCount
	}
	return Normalize(marks, guess)
}

// CodeSpace returns 3^length, the exclusive upper bound of codes.
func CodeSpace(length int) int64 {
	space := int64(1)
	for i := 0; i < length; i++ {
		space *= markCount
	}
	return space
}

// SolvedCode is the all-correct code for words of the given length.
func SolvedCode(length int) int32 {
	return int32(CodeSpace(length) - 1)
}

// IsSolved reports whether every mark is Correct.
func (e Evaluation) IsSolved() bool {
	for _, m := range e {
		if m != MarkCorrect {
			return false
		}
	}
	return true
}

// Equal reports whether both evaluations hold the same marks.
func (e Evaluation) Equal(other Evaluation) bool {
	if len(e) != len(other) {
		return false
	}
	for i := range e {
		if e[i] != other[i] {
			return false
		}
	}
	return true
}

// Normalize rewrites raw marks into the canonical form a real comparison
// would produce. The Present marks of each letter are counted and handed out
// again left to right over that letter's non-Correct positions; the remaining
// non-Correct positions become Absent. Correct marks are kept as they are.
// The input slice is not modified.
func Normalize(marks []Mark, guess words.Word) Evaluation {
	out := make(Evaluation, len(marks))
	present := make(map[words.Letter]int, len(marks))
	for i, m := range marks {
		if m == MarkPresent {
			present[guess[i]]++
		}
	}
	for i, m := range marks {
		switch {
		case m == MarkCorrect:
			out[i] = MarkCorrect
		case present[guess[i]] > 0:
			out[i] = MarkPresent
			present[guess[i]]--
		default:
			out[i] = MarkAbsent
		}
	}
	return out
}

// ParseMask builds an evaluation from a user-typed mask such as "gwwyg".
// The mask must have one character per letter of guess.
func ParseMask(mask string, guess words.Word) (Evaluation, error) {
	runes := []rune(strings.TrimSpace(mask))
	if len(runes) != len(guess) {
		return nil, fmt.Errorf("%w: %q must contain exactly %d characters", ErrInvalidMask, mask, len(guess))
	}
	marks := make([]Mark, len(runes))
	for i, r := range runes {
		switch r {
		case maskAbsent:
			marks[i] = MarkAbsent
		case maskPresent:
			marks[i] = MarkPresent
		case maskCorrect:
			marks[i] = MarkCorrect
		default:
			return nil, fmt.Errorf("%w: %q contains %q, expecting only `g`, `w`, `y`", ErrInvalidMask, mask, r)
		}
	}
	return Normalize(marks, guess), nil
}

// Mask renders the evaluation with the g/w/y convention.
func (e Evaluation) Mask() string {
	var b strings.Builder
	for _, m := range e {
		switch m {
		case MarkCorrect:
			b.WriteByte(maskCorrect)
		case MarkPresent:
			b.WriteByte(maskPresent)
		default:
			b.WriteByte(maskAbsent)
		}
	}
	return b.String()
}

// SolvedMask is the mask a player types to signal the word was found.
func SolvedMask(length int) string {
	return strings.Repeat(string(maskCorrect), length)
}
