package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/fiveletters/internal/words"
)

var corpus = []string{
	"alert", "eerie", "crane", "canon", "cabin", "eagle", "lemon", "melon", "stare", "tears",
	"катер", "калан", "камин", "канон",
}

func encoder(t *testing.T, list ...string) (*words.Alphabet, func(string) words.Word) {
	t.Helper()
	a := words.NewAlphabet(list)
	return a, func(s string) words.Word {
		w, err := a.Encode(s)
		require.NoError(t, err)
		return w
	}
}

func TestEvaluate_DocumentedSequences(t *testing.T) {
	_, w := encoder(t, corpus...)
	hidden := w("канон")
	cases := map[string]string{
		"катер": "yyggg",
		"калан": "yyggy",
		"камин": "yyggy",
		"канон": "yyyyy",
	}
	for guess, want := range cases {
		assert.Equal(t, want, Evaluate(hidden, w(guess)).Mask(), guess)
	}
}

func TestEvaluate_DuplicateLetters(t *testing.T) {
	_, w := encoder(t, corpus...)

	tests := []struct {
		hidden, guess, want string
	}{
		{"alert", "eerie", "wgwgg"}, // three e's in the guess, one in the hidden word
		{"eerie", "eagle", "ygggy"},
		{"canon", "cabin", "yyggy"},
		{"melon", "lemon", "wywyy"},
		{"stare", "tears", "wwyyw"},
	}
	for _, tt := range tests {
		got := Evaluate(w(tt.hidden), w(tt.guess))
		assert.Equal(t, tt.want, got.Mask(), "%s vs %s", tt.hidden, tt.guess)
	}
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	_, w := encoder(t, corpus...)
	latin := corpus[:10]
	for _, h := range latin {
		for _, g := range latin {
			e := Evaluate(w(h), w(g))
			code := e.Pack()
			assert.True(t, code >= 0 && int64(code) < CodeSpace(5))
			assert.True(t, Unpack(code, w(g)).Equal(e), "%s/%s", h, g)
		}
	}
}

func TestPack_AllCorrect(t *testing.T) {
	_, w := encoder(t, corpus...)
	for _, s := range corpus {
		e := Evaluate(w(s), w(s))
		assert.True(t, e.IsSolved())
		assert.Equal(t, int32(242), e.Pack())
		assert.Equal(t, SolvedCode(5), e.Pack())
	}
}

func TestPack_MostSignificantFirst(t *testing.T) {
	assert.Equal(t, int32(2*81), Evaluation{MarkCorrect, MarkAbsent, MarkAbsent, MarkAbsent, MarkAbsent}.Pack())
	assert.Equal(t, int32(1), Evaluation{MarkAbsent, MarkAbsent, MarkAbsent, MarkAbsent, MarkPresent}.Pack())
}

func TestUnpack_NormalizesForeignCodes(t *testing.T) {
	_, w := encoder(t, corpus...)
	guess := w("eerie")
	// absent e, present e: no real comparison produces this order
	raw := Evaluation{MarkAbsent, MarkPresent, MarkAbsent, MarkAbsent, MarkAbsent}
	got := Unpack(raw.Pack(), guess)
	assert.Equal(t, "wgggg", got.Mask())
	assert.NotEqual(t, raw.Pack(), got.Pack())
}

func TestParseMask(t *testing.T) {
	_, w := encoder(t, corpus...)

	e, err := ParseMask("wgwgg", w("eerie"))
	require.NoError(t, err)
	assert.Equal(t, Evaluate(w("alert"), w("eerie")), e)

	// present mark on the second copy is moved to the first
	e, err = ParseMask("gwggg", w("eerie"))
	require.NoError(t, err)
	assert.Equal(t, "wgggg", e.Mask())

	// correct marks are never counted as available presences
	e, err = ParseMask("ygggg", w("eagle"))
	require.NoError(t, err)
	assert.Equal(t, "ygggg", e.Mask())

	// cyrillic input
	e, err = ParseMask("yyggy", w("калан"))
	require.NoError(t, err)
	assert.Equal(t, Code(w("канон"), w("калан")), e.Pack())
}

func TestParseMask_Invalid(t *testing.T) {
	_, w := encoder(t, corpus...)
	for _, mask := range []string{"", "gww", "gwwwgg", "gwxwg", "GWWWG"} {
		_, err := ParseMask(mask, w("crane"))
		assert.ErrorIs(t, err, ErrInvalidMask, mask)
	}
}

func TestMark_Cycle(t *testing.T) {
	assert.Equal(t, MarkPresent, MarkAbsent.Next())
	assert.Equal(t, MarkAbsent, MarkCorrect.Next())
	assert.Equal(t, MarkCorrect, MarkAbsent.Prev())

	b, err := MarkPresent.MarshalText()
	require.NoError(t, err)
	var m Mark
	require.NoError(t, m.UnmarshalText(b))
	assert.Equal(t, MarkPresent, m)
}
