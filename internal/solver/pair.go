// internal/solver/pair.go
//
// Two-guess lookahead.
//
// Only attack words whose letters are all distinct take part, and a pair is
// scored only when the two words share no letter. The joint partition groups
// candidates by the pair of codes both guesses produce; its metric is the
// same per-hidden-word sum of squared partition sizes as the single-guess
// search.

package solver

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/fiveletters/internal/game"
	"github.com/robalobadob/fiveletters/internal/words"
)

// Pair is a guess followed by a second guess chosen in advance.
type Pair struct {
	First, Second words.Word
	Metric        int64
}

// SelectGuessPair returns the disjoint pair of attack words with the best
// joint partition of candidates.
func (s *Searcher) SelectGuessPair(ctx context.Context, candidates, attack []words.Word) (Pair, error) {
	if len(candidates) == 0 {
		return Pair{}, ErrNoCandidatesLeft
	}
	if len(attack) == 0 {
		return Pair{}, ErrEmptyAttackPool
	}
	length := len(candidates[0])
	if err := words.Validate(candidates, length, s.alphabetSize); err != nil {
		return Pair{}, fmt.Errorf("candidates: %w", err)
	}
	if err := words.Validate(attack, length, s.alphabetSize); err != nil {
		return Pair{}, fmt.Errorf("attack pool: %w", err)
	}

	pool, masks := s.distinctLetterWords(attack, length)
	if len(pool) < 2 {
		return Pair{}, ErrNoDisjointPair
	}

	// codes[i][k] is the code of pool[i] against candidates[k]
	codes := make([][]int32, len(pool))
	for i, g := range pool {
		row := make([]int32, len(candidates))
		for k, h := range candidates {
			row[k] = game.Code(h, g)
		}
		codes[i] = row
	}

	start := time.Now()
	bar := s.bar(int64(len(pool)-1), fmt.Sprintf("scoring pairs of %d words", len(pool)))
	space := game.CodeSpace(length)

	var observedMin atomic.Int64
	observedMin.Store(pruned)

	type ranked struct {
		i, j   int
		metric int64
	}
	workers := min(s.workers, len(pool)-1)
	results := make([]ranked, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			buckets := make(map[int64]int64, len(candidates))
			best := ranked{i: -1, metric: pruned}
			for i := w; i < len(pool)-1; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				for j := i + 1; j < len(pool); j++ {
					if masks[i].IntersectionCardinality(masks[j]) != 0 {
						continue
					}
					clear(buckets)
					m := s.scorePair(buckets, codes[i], codes[j], space, &observedMin)
					if m < best.metric {
						best = ranked{i: i, j: j, metric: m}
						lowerMin(&observedMin, m)
					}
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			results[w] = best
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Pair{}, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	best := ranked{i: -1, metric: pruned}
	for _, r := range results {
		if r.i < 0 {
			continue
		}
		if best.i < 0 || r.metric < best.metric ||
			(r.metric == best.metric && (r.i < best.i || (r.i == best.i && r.j < best.j))) {
			best = r
		}
	}
	if best.i < 0 {
		return Pair{}, ErrNoDisjointPair
	}
	s.log.Debug().
		Int("candidates", len(candidates)).
		Int("pool", len(pool)).
		Int64("metric", best.metric).
		Dur("elapsed", time.Since(start)).
		Msg("guess pair selected")
	return Pair{First: pool[best.i], Second: pool[best.j], Metric: best.metric}, nil
}

// scorePair sums, over every hidden word, the squared size of its joint
// (first, second) partition. Growing a partition from n to n+1 words raises
// that sum by (n+1)³-n³, so the partial sum never decreases and can be pruned.
func (s *Searcher) scorePair(buckets map[int64]int64, a, b []int32, space int64, observedMin *atomic.Int64) int64 {
	var metric int64
	for k := range a {
		key := int64(a[k])*space + int64(b[k])
		n := buckets[key]
		buckets[key] = n + 1
		metric += 3*n*n + 3*n + 1
		if s.prune && metric > observedMin.Load() {
			return pruned
		}
	}
	return metric
}

// distinctLetterWords keeps the attack words without repeated letters, along
// with their letter sets.
func (s *Searcher) distinctLetterWords(attack []words.Word, length int) ([]words.Word, []*bitset.BitSet) {
	var pool []words.Word
	var masks []*bitset.BitSet
	for _, w := range attack {
		m := bitset.New(uint(s.alphabetSize))
		for _, l := range w {
			m.Set(uint(l))
		}
		if int(m.Count()) == length {
			pool = append(pool, w)
			masks = append(masks, m)
		}
	}
	return pool, masks
}
