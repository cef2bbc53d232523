// internal/solver/search.go
//
// Guess selection.
//
// Every attack word g is scored against the candidate set: for each hidden
// candidate h a matcher for (g, h) counts the n candidates that would remain,
// and the metric accumulates n*n (the sum of 2k+1 for k < n). Smaller is
// better. Ties keep the attack word with the lowest index.
//
// Scoring is spread over a fixed number of workers. They share the lowest
// metric seen so far through an atomic and stop scoring a guess as soon as
// its partial metric exceeds it; the partial sum never decreases, so the
// winner is unaffected.

package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/fiveletters/internal/game"
	"github.com/robalobadob/fiveletters/internal/words"
)

var (
	ErrEmptyCandidateSet = errors.New("solver: empty candidate set")
	ErrEmptyAttackPool   = errors.New("solver: empty attack pool")
	// ErrNoCandidatesLeft means earlier feedback ruled out every word.
	ErrNoCandidatesLeft = errors.New("solver: no candidates left")
	ErrNoDisjointPair   = errors.New("solver: no pair of attack words with disjoint letters")
)

const pruned = math.MaxInt64

// Choice is the outcome of a search.
type Choice struct {
	Word   words.Word
	Index  int   // position in the attack pool, -1 when no search ran
	Metric int64 // sum over hidden words of their partition size squared
}

// Searcher selects guesses for words over one alphabet.
type Searcher struct {
	alphabetSize int
	workers      int
	prune        bool
	progress     io.Writer
	log          zerolog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithWorkers sets the number of scoring goroutines. Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProgress draws an ETA bar on w for every search.
func WithProgress(w io.Writer) Option {
	return func(s *Searcher) { s.progress = w }
}

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Searcher) { s.log = l }
}

// WithoutPruning scores every guess to completion.
func WithoutPruning() Option {
	return func(s *Searcher) { s.prune = false }
}

// New creates a Searcher for an alphabet of alphabetSize letters.
func New(alphabetSize int, opts ...Option) *Searcher {
	s := &Searcher{
		alphabetSize: alphabetSize,
		workers:      runtime.GOMAXPROCS(0),
		prune:        true,
		log:          log.Logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AlphabetSize is the alphabet the searcher was created for.
func (s *Searcher) AlphabetSize() int { return s.alphabetSize }

// SelectGuess returns the attack word that best narrows candidates.
func (s *Searcher) SelectGuess(ctx context.Context, candidates, attack []words.Word) (words.Word, error) {
	c, err := s.Best(ctx, candidates, attack)
	if err != nil {
		return nil, err
	}
	return c.Word, nil
}

// Best is SelectGuess with the winning index and metric.
func (s *Searcher) Best(ctx context.Context, candidates, attack []words.Word) (Choice, error) {
	if len(candidates) == 0 {
		return Choice{}, ErrEmptyCandidateSet
	}
	if len(attack) == 0 {
		return Choice{}, ErrEmptyAttackPool
	}
	if len(candidates) == 1 {
		return Choice{Word: candidates[0], Index: -1, Metric: 1}, nil
	}
	length := len(candidates[0])
	if err := words.Validate(candidates, length, s.alphabetSize); err != nil {
		return Choice{}, fmt.Errorf("candidates: %w", err)
	}
	if err := words.Validate(attack, length, s.alphabetSize); err != nil {
		return Choice{}, fmt.Errorf("attack pool: %w", err)
	}

	start := time.Now()
	bar := s.bar(int64(len(attack)), fmt.Sprintf("scoring %d candidates", len(candidates)))

	var observedMin atomic.Int64
	observedMin.Store(pruned)

	workers := min(s.workers, len(attack))
	results := make([]Choice, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			st := game.NewState(length, s.alphabetSize)
			best := Choice{Index: -1, Metric: pruned}
			for i := w; i < len(attack); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				m := s.score(st, candidates, attack[i], &observedMin)
				if bar != nil {
					_ = bar.Add(1)
				}
				if m < best.Metric {
					best = Choice{Word: attack[i], Index: i, Metric: m}
					lowerMin(&observedMin, m)
				}
			}
			results[w] = best
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Choice{}, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Metric < best.Metric || (r.Metric == best.Metric && r.Index < best.Index) {
			best = r
		}
	}
	s.log.Debug().
		Int("candidates", len(candidates)).
		Int("attack", len(attack)).
		Int("index", best.Index).
		Int64("metric", best.Metric).
		Dur("elapsed", time.Since(start)).
		Msg("guess selected")
	return best, nil
}

// score returns the metric of guess, or pruned once the partial sum exceeds
// the shared minimum.
func (s *Searcher) score(st *game.State, candidates []words.Word, guess words.Word, observedMin *atomic.Int64) int64 {
	var metric int64
	for _, hidden := range candidates {
		st.Reset(guess, hidden)
		var n int64
		for _, c := range candidates {
			if st.Matches(c) {
				n++
			}
		}
		metric += n * n
		if s.prune && metric > observedMin.Load() {
			return pruned
		}
	}
	return metric
}

func (s *Searcher) bar(total int64, desc string) *progressbar.ProgressBar {
	if s.progress == nil {
		return nil
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}

// lowerMin stores m in v if it is smaller than the current value.
func lowerMin(v *atomic.Int64, m int64) {
	for {
		cur := v.Load()
		if m >= cur || v.CompareAndSwap(cur, m) {
			return
		}
	}
}

// Metric is the unpruned metric of guess over candidates: every hidden word
// adds the squared size of its partition, so a partition of n words adds n³.
// It equals the metric Best reports for the same guess.
func Metric(candidates []words.Word, guess words.Word) int64 {
	sizes := make(map[int32]int64)
	for _, h := range candidates {
		sizes[game.Code(h, guess)]++
	}
	var m int64
	for _, n := range sizes {
		m += n * n * n
	}
	return m
}

// Partition groups candidates by the code guess would produce against each.
func Partition(candidates []words.Word, guess words.Word) map[int32][]words.Word {
	out := make(map[int32][]words.Word)
	for _, h := range candidates {
		c := game.Code(h, guess)
		out[c] = append(out[c], h)
	}
	return out
}
