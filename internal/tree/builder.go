// internal/tree/builder.go
//
// Decision tree construction.
//
// At every node the builder picks a guess (a fixed opening for the first
// levels, otherwise the searcher's choice), partitions the candidates by the
// code each would produce and recurses into every partition. A node whose
// guess leaves a single partition is a leaf.
//
// Dual mode: for the first levels the builder asks for a disjoint guess pair.
// The first word becomes the node; inside each of its partitions the second
// word is asked next, through an extra node, whenever it still splits that
// partition. Partitions it cannot split are built the normal way.

package tree

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/fiveletters/internal/game"
	"github.com/robalobadob/fiveletters/internal/solver"
	"github.com/robalobadob/fiveletters/internal/words"
)

// Builder builds decision trees over one attack pool.
type Builder struct {
	search    *solver.Searcher
	attack    []words.Word
	openings  []words.Word
	dualDepth int
	log       zerolog.Logger

	nodes atomic.Int64
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithOpenings forces the guess of level i to openings[i].
func WithOpenings(openings ...words.Word) BuilderOption {
	return func(b *Builder) { b.openings = openings }
}

// WithDualDepth enables guess pairs for nodes above the given depth.
func WithDualDepth(depth int) BuilderOption {
	return func(b *Builder) { b.dualDepth = depth }
}

// WithBuilderLogger replaces the global logger.
func WithBuilderLogger(l zerolog.Logger) BuilderOption {
	return func(b *Builder) { b.log = l }
}

// NewBuilder returns a builder that picks guesses from attack.
func NewBuilder(search *solver.Searcher, attack []words.Word, opts ...BuilderOption) *Builder {
	b := &Builder{search: search, attack: attack, log: log.Logger}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build returns the decision tree over candidates.
func (b *Builder) Build(ctx context.Context, candidates []words.Word) (*Node, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("global dictionary: %w", solver.ErrEmptyCandidateSet)
	}
	if len(b.attack) == 0 {
		return nil, fmt.Errorf("attack dictionary: %w", solver.ErrEmptyAttackPool)
	}
	length := len(candidates[0])
	if length < 1 || length > game.MaxWordLength {
		return nil, fmt.Errorf("%w: words of %d letters", words.ErrWordLengthMismatch, length)
	}
	size := b.search.AlphabetSize()
	if err := words.Validate(candidates, length, size); err != nil {
		return nil, fmt.Errorf("global dictionary: %w", err)
	}
	if err := words.Validate(b.attack, length, size); err != nil {
		return nil, fmt.Errorf("attack dictionary: %w", err)
	}
	if err := words.Validate(b.openings, length, size); err != nil {
		return nil, fmt.Errorf("openings: %w", err)
	}

	b.nodes.Store(0)
	root, err := b.build(ctx, candidates, 0)
	if err != nil {
		return nil, err
	}
	b.log.Info().
		Int("candidates", len(candidates)).
		Int64("nodes", b.nodes.Load()).
		Int("depth", root.Depth()).
		Msg("tree built")
	return root, nil
}

func (b *Builder) build(ctx context.Context, candidates []words.Word, depth int) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.nodes.Add(1)
	if len(candidates) == 1 {
		return &Node{Word: candidates[0]}, nil
	}

	if depth < len(b.openings) {
		opening := b.openings[depth]
		if parts := solver.Partition(candidates, opening); len(parts) > 1 {
			return b.split(ctx, candidates, opening, parts, depth)
		}
		b.log.Debug().Int("depth", depth).Msg("opening does not split candidates, searching")
	}
	if depth < b.dualDepth {
		pair, err := b.search.SelectGuessPair(ctx, candidates, b.attack)
		switch {
		case err == nil:
			if parts := solver.Partition(candidates, pair.First); len(parts) > 1 {
				return b.dual(ctx, pair, parts, depth)
			}
		case !errors.Is(err, solver.ErrNoDisjointPair):
			return nil, err
		}
		b.log.Debug().Int("depth", depth).Msg("no useful guess pair, single guess")
	}

	guess, err := b.search.SelectGuess(ctx, candidates, b.attack)
	if err != nil {
		return nil, err
	}
	return b.split(ctx, candidates, guess, solver.Partition(candidates, guess), depth)
}

// split makes guess the node for candidates and recurses into parts.
func (b *Builder) split(ctx context.Context, candidates []words.Word, guess words.Word, parts map[int32][]words.Word, depth int) (*Node, error) {
	node := &Node{Word: guess}
	if len(parts) == 1 {
		if len(candidates) > 1 {
			b.log.Warn().
				Int("depth", depth).
				Int("candidates", len(candidates)).
				Msg("guess does not split candidates, stopping here")
		}
		return node, nil
	}
	return node, b.children(ctx, node, parts, depth+1)
}

// dual makes pair.First the node for its partitions and asks pair.Second
// inside every partition it splits.
func (b *Builder) dual(ctx context.Context, pair solver.Pair, parts map[int32][]words.Word, depth int) (*Node, error) {
	node := &Node{Word: pair.First, Edges: make(map[int32]*Node, len(parts))}

	for _, code := range sortedCodes(parts) {
		part := parts[code]
		sub := solver.Partition(part, pair.Second)
		if len(part) <= 1 || len(sub) <= 1 {
			child, err := b.build(ctx, part, depth+1)
			if err != nil {
				return nil, err
			}
			node.Edges[code] = child
			continue
		}

		b.nodes.Add(1)
		second := &Node{Word: pair.Second}
		if err := b.children(ctx, second, sub, depth+2); err != nil {
			return nil, err
		}
		node.Edges[code] = second
	}
	return node, nil
}

func (b *Builder) children(ctx context.Context, node *Node, parts map[int32][]words.Word, depth int) error {
	node.Edges = make(map[int32]*Node, len(parts))
	for _, code := range sortedCodes(parts) {
		child, err := b.build(ctx, parts[code], depth)
		if err != nil {
			return err
		}
		node.Edges[code] = child
		if depth == 1 {
			b.log.Debug().Int32("code", code).Int("words", len(parts[code])).Msg("first level branch done")
		}
	}
	return nil
}

func sortedCodes(parts map[int32][]words.Word) []int32 {
	out := make([]int32, 0, len(parts))
	for c := range parts {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
