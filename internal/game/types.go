// internal/game/types.go
//
// Core type definitions for the evaluation model.
// Defines:
//   - Mark: per-letter result of comparing a guess with the hidden word.
//   - Evaluation: the per-position marks of one guess.
//   - Session: the navigation state of one player walking a decision tree.

package game

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMask is returned for malformed human feedback input.
var ErrInvalidMask = errors.New("game: invalid mask")

// Mark represents the evaluation result for a single letter in a guess.
// The numeric value is the base-3 digit used when packing.
type Mark uint8

const (
	MarkAbsent  Mark = iota // letter is not in the hidden word (or all copies are used up)
	MarkPresent             // letter is in the hidden word at another position
	MarkCorrect             // letter is at this exact position
)

// markCount is the radix of packed evaluation codes.
const markCount = 3

// Mask characters: g = absent, w = present (wrong place), y = correct.
const (
	maskAbsent  = 'g'
	maskPresent = 'w'
	maskCorrect = 'y'
)

// MaxWordLength is the longest word whose codes still fit an int32.
const MaxWordLength = 19

// String returns the lowercase name of the mark.
func (m Mark) String() string {
	switch m {
	case MarkAbsent:
		return "absent"
	case MarkPresent:
		return "present"
	case MarkCorrect:
		return "correct"
	}
	return fmt.Sprintf("mark(%d)", uint8(m))
}

// MarshalText encodes marks by name in JSON payloads.
func (m Mark) MarshalText() ([]byte, error) {
	if m > MarkCorrect {
		return nil, fmt.Errorf("game: unknown mark %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mark name.
func (m *Mark) UnmarshalText(b []byte) error {
	switch string(b) {
	case "absent":
		*m = MarkAbsent
	case "present":
		*m = MarkPresent
	case "correct":
		*m = MarkCorrect
	default:
		return fmt.Errorf("game: unknown mark %q", b)
	}
	return nil
}

// Next cycles absent → present → correct → absent.
func (m Mark) Next() Mark { return (m + 1) % markCount }

// Prev cycles in the opposite direction.
func (m Mark) Prev() Mark { return (m + markCount - 1) % markCount }

// Evaluation is the list of marks of one guess, one per position.
type Evaluation []Mark

// Session holds the state of a player navigating a decision tree.
type Session struct {
	ID        string     `json:"id"`        // random identifier
	Chain     []int32    `json:"chain"`     // packed codes entered so far, one per attempt
	Pending   Evaluation `json:"pending"`   // marks being edited for the current guess
	CreatedAt time.Time  `json:"createdAt"` // UTC
}
