// internal/game/session.go
//
// Session bookkeeping for a player walking a decision tree.
// Responsibilities:
//   - Create sessions with a random ID and an all-absent pending evaluation.
//   - Cycle the pending mark of one position.
//   - Commit the pending marks as a packed code (forward) or undo the last
//     commit (back).
//
// Notes:
//   - A session never references the tree; callers pass the word the tree
//     suggests at the current node so marks can be normalized against it.
//   - The chain of codes alone is enough to replay a session deterministically.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/fiveletters/internal/words"
)

// NewSession constructs a session for words of the given length.
func NewSession(length int) *Session {
	return &Session{
		ID:        randomID(),
		Chain:     []int32{},
		Pending:   make(Evaluation, length),
		CreatedAt: time.Now().UTC(),
	}
}

// ResumeSession constructs a new session positioned after chain.
func ResumeSession(length int, chain []int32) *Session {
	s := NewSession(length)
	s.Chain = append(s.Chain, chain...)
	return s
}

// Toggle cycles the pending mark at position pos.
func (s *Session) Toggle(pos int) error {
	if pos < 0 || pos >= len(s.Pending) {
		return fmt.Errorf("%w: position %d outside 0..%d", ErrInvalidMask, pos, len(s.Pending)-1)
	}
	s.Pending[pos] = s.Pending[pos].Next()
	return nil
}

// SetPending replaces the pending marks with a parsed mask.
func (s *Session) SetPending(e Evaluation) error {
	if len(e) != len(s.Pending) {
		return fmt.Errorf("%w: %d marks, expected %d", ErrInvalidMask, len(e), len(s.Pending))
	}
	copy(s.Pending, e)
	return nil
}

// Forward commits the pending marks for guess and returns the packed code.
// The pending marks are reset to all-absent.
func (s *Session) Forward(guess words.Word) (int32, error) {
	if len(guess) != len(s.Pending) {
		return 0, fmt.Errorf("%w: guess has %d letters, session expects %d", words.ErrWordLengthMismatch, len(guess), len(s.Pending))
	}
	code := Normalize(s.Pending, guess).Pack()
	s.Chain = append(s.Chain, code)
	clear(s.Pending)
	return code, nil
}

// Back removes the last committed code and restores its marks as pending.
// prevGuess is the word that was suggested when that code was entered.
func (s *Session) Back(prevGuess words.Word) error {
	if len(s.Chain) == 0 {
		return errors.New("game: nothing to undo")
	}
	last := s.Chain[len(s.Chain)-1]
	s.Chain = s.Chain[:len(s.Chain)-1]
	copy(s.Pending, Unpack(last, prevGuess))
	return nil
}

// Attempt is the 1-based number of the guess currently being evaluated.
func (s *Session) Attempt() int { return len(s.Chain) + 1 }

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
