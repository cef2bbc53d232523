package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/fiveletters/internal/game"
	"github.com/robalobadob/fiveletters/internal/words"
)

func defaultDictionary(t *testing.T) *words.Dictionary {
	t.Helper()
	d, err := words.Load()
	require.NoError(t, err)
	return d
}

// firstMinimal is the sequential reference: the lowest-index attack word with
// the smallest metric.
func firstMinimal(candidates, attack []words.Word) (int, int64) {
	bestIdx, bestMetric := -1, int64(0)
	for i, g := range attack {
		if m := Metric(candidates, g); bestIdx < 0 || m < bestMetric {
			bestIdx, bestMetric = i, m
		}
	}
	return bestIdx, bestMetric
}

func TestBest_PruningDoesNotChangeResult(t *testing.T) {
	d := defaultDictionary(t)
	ctx := context.Background()
	wantIdx, wantMetric := firstMinimal(d.Global, d.Attack)

	for _, opts := range [][]Option{
		{WithWorkers(1)},
		{WithWorkers(1), WithoutPruning()},
		{WithWorkers(4)},
		{WithWorkers(7), WithoutPruning()},
	} {
		s := New(d.Alphabet.Size(), opts...)
		got, err := s.Best(ctx, d.Global, d.Attack)
		require.NoError(t, err)
		assert.Equal(t, wantIdx, got.Index)
		assert.Equal(t, wantMetric, got.Metric)
		assert.True(t, d.Attack[wantIdx].Equal(got.Word))
	}
}

func TestBest_SubsetOfCandidates(t *testing.T) {
	d := defaultDictionary(t)
	candidates := d.Global[:12]
	s := New(d.Alphabet.Size(), WithWorkers(3))

	got, err := s.Best(context.Background(), candidates, d.Attack)
	require.NoError(t, err)
	wantIdx, wantMetric := firstMinimal(candidates, d.Attack)
	assert.Equal(t, wantIdx, got.Index)
	assert.Equal(t, wantMetric, got.Metric)
}

func TestSelectGuess_SingleCandidate(t *testing.T) {
	s := New(4)
	only := words.Word{0, 1, 2, 3, 0}
	// the attack word is malformed; it would fail validation if it were scored
	got, err := s.SelectGuess(context.Background(), []words.Word{only}, []words.Word{{9}})
	require.NoError(t, err)
	assert.Equal(t, only, got)
}

func TestSelectGuess_Errors(t *testing.T) {
	s := New(4)
	ctx := context.Background()
	w := words.Word{0, 1, 2, 3, 0}

	_, err := s.SelectGuess(ctx, nil, []words.Word{w})
	assert.ErrorIs(t, err, ErrEmptyCandidateSet)

	_, err = s.SelectGuess(ctx, []words.Word{w}, nil)
	assert.ErrorIs(t, err, ErrEmptyAttackPool)

	_, err = s.SelectGuess(ctx, []words.Word{w, {1, 1, 1, 1, 1}}, []words.Word{{0, 1}})
	assert.ErrorIs(t, err, words.ErrWordLengthMismatch)

	_, err = s.SelectGuess(ctx, []words.Word{w, {1, 1, 1, 1, 7}}, []words.Word{w})
	assert.ErrorIs(t, err, words.ErrAlphabetMismatch)
}

func TestSelectGuess_Cancelled(t *testing.T) {
	d := defaultDictionary(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(d.Alphabet.Size()).SelectGuess(ctx, d.Global, d.Attack)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMetric_SumOfSquares(t *testing.T) {
	d, err := words.Build([][]string{{"crane", "crate", "trace", "slate"}})
	require.NoError(t, err)
	guess, ok := d.Lookup("crane")
	require.True(t, ok)

	// crane separates every word: four partitions of one
	assert.Equal(t, int64(4), Metric(d.Global, guess))
	parts := Partition(d.Global, guess)
	assert.Len(t, parts, 4)
}

func TestMetric_CountsEveryHiddenWord(t *testing.T) {
	d, err := words.Build([][]string{{"crane", "brine", "slate", "plate"}})
	require.NoError(t, err)
	guess, ok := d.Lookup("crane")
	require.True(t, ok)

	// slate and plate both answer ggygy: 1 + 1 + 2² + 2²
	assert.Len(t, Partition(d.Global, guess), 3)
	assert.Equal(t, int64(10), Metric(d.Global, guess))
}

func TestBest_MetricMatchesMetric(t *testing.T) {
	d, err := words.Build([][]string{{"crane", "brine", "slate", "plate", "trace", "crate", "grate"}})
	require.NoError(t, err)
	ctx := context.Background()

	for _, opts := range [][]Option{{WithWorkers(1)}, {WithWorkers(3), WithoutPruning()}} {
		got, err := New(d.Alphabet.Size(), opts...).Best(ctx, d.Global, d.Attack)
		require.NoError(t, err)
		assert.Equal(t, Metric(d.Global, got.Word), got.Metric)
	}
}

// jointMetric is the unpruned pair metric: each hidden word adds the squared
// number of candidates giving the same pair of codes.
func jointMetric(candidates []words.Word, first, second words.Word) int64 {
	type key struct{ a, b int32 }
	sizes := map[key]int64{}
	for _, h := range candidates {
		sizes[key{game.Code(h, first), game.Code(h, second)}]++
	}
	var m int64
	for _, h := range candidates {
		n := sizes[key{game.Code(h, first), game.Code(h, second)}]
		m += n * n
	}
	return m
}

func TestSelectGuessPair(t *testing.T) {
	d := defaultDictionary(t)
	s := New(d.Alphabet.Size(), WithWorkers(4))
	ctx := context.Background()

	p, err := s.SelectGuessPair(ctx, d.Global, d.Attack)
	require.NoError(t, err)
	require.Len(t, p.First, d.Length)
	require.Len(t, p.Second, d.Length)

	seen := map[words.Letter]bool{}
	for _, l := range append(append(words.Word{}, p.First...), p.Second...) {
		assert.False(t, seen[l], "pair shares letter %d", l)
		seen[l] = true
	}

	unpruned, err := New(d.Alphabet.Size(), WithWorkers(1), WithoutPruning()).SelectGuessPair(ctx, d.Global, d.Attack)
	require.NoError(t, err)
	assert.Equal(t, unpruned, p)
	assert.Equal(t, jointMetric(d.Global, p.First, p.Second), p.Metric)

	// a pair never does worse than its first word alone
	assert.LessOrEqual(t, p.Metric, Metric(d.Global, p.First))
}

func TestSelectGuessPair_Errors(t *testing.T) {
	ctx := context.Background()
	d, err := words.Build([][]string{{"eerie", "crane", "cacao"}})
	require.NoError(t, err)
	s := New(d.Alphabet.Size())

	_, err = s.SelectGuessPair(ctx, nil, d.Attack)
	assert.ErrorIs(t, err, ErrNoCandidatesLeft)

	// only crane has five distinct letters
	_, err = s.SelectGuessPair(ctx, d.Global, d.Attack)
	assert.ErrorIs(t, err, ErrNoDisjointPair)

	d, err = words.Build([][]string{{"crane", "trace"}})
	require.NoError(t, err)
	_, err = New(d.Alphabet.Size()).SelectGuessPair(ctx, d.Global, d.Attack)
	assert.ErrorIs(t, err, ErrNoDisjointPair, "crane and trace share letters")
}
