package stats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/fiveletters/internal/catalog"
	"github.com/robalobadob/fiveletters/internal/game"
	"github.com/robalobadob/fiveletters/internal/solver"
	"github.com/robalobadob/fiveletters/internal/tree"
	"github.com/robalobadob/fiveletters/internal/words"
)

var tenWords = []string{
	"crane", "slate", "trace", "crate", "irate",
	"stare", "raise", "arise", "plant", "chant",
}

func buildTree(t *testing.T, list []string) (*tree.Tree, *words.Dictionary) {
	t.Helper()
	d, err := words.Build([][]string{list})
	require.NoError(t, err)
	s := solver.New(d.Alphabet.Size(), solver.WithWorkers(2))
	root, err := tree.NewBuilder(s, d.Attack).Build(context.Background(), d.Global)
	require.NoError(t, err)
	return &tree.Tree{Alphabet: d.Alphabet, Length: d.Length, Root: root}, d
}

func TestCollect_TenWords(t *testing.T) {
	tr, d := buildTree(t, tenWords)

	for _, h := range d.Global {
		attempts, err := Replay(tr, h)
		require.NoError(t, err)
		assert.LessOrEqual(t, attempts, len(d.Global))
		assert.Equal(t, h.Equal(tr.Root.Word), attempts == 1, tr.Decode(h))
	}

	r := Collect(tr, d.Global)
	assert.Equal(t, 10, r.Words)
	assert.Empty(t, r.Unreachable)
	assert.Equal(t, 1, r.Histogram[1])
	sum := 0
	for _, b := range r.Buckets() {
		sum += b.Count
		assert.LessOrEqual(t, b.Attempts, r.MaxAttempts)
	}
	assert.Equal(t, 10, sum)
	assert.Greater(t, r.Mean, 1.0)

	// without an explicit list the tree's own words are replayed
	assert.Equal(t, r, Collect(tr, nil))
}

func TestCollect_Unreachable(t *testing.T) {
	tr, _ := buildTree(t, []string{"crane", "slate"})
	slant, err := tr.Alphabet.Encode("slant")
	require.NoError(t, err)

	_, err = Replay(tr, slant)
	assert.ErrorIs(t, err, tree.ErrNoWordsLeft)

	r := Collect(tr, append(tr.Words(), slant))
	assert.Equal(t, []string{"slant"}, r.Unreachable)
	assert.Equal(t, 2, r.Words)
}

func TestFromTree_LeafChains(t *testing.T) {
	// crane -> {slate: leaf, crane: leaf}
	a := words.NewAlphabet([]string{"crane", "slate"})
	crane, _ := a.Encode("crane")
	slate, _ := a.Encode("slate")
	tr := &tree.Tree{Alphabet: a, Length: 5, Root: &tree.Node{
		Word: crane,
		Edges: map[int32]*tree.Node{
			game.Code(slate, crane): {Word: slate},
			game.SolvedCode(5):      {Word: crane},
		},
	}}

	r := FromTree(tr)
	assert.Equal(t, 2, r.Words)
	assert.Equal(t, map[int]int{1: 1, 2: 1}, r.Histogram)
	assert.Equal(t, 2, r.MaxAttempts)
	assert.InDelta(t, 1.5, r.Mean, 1e-9)
}

func TestFromTree_MatchesCollect(t *testing.T) {
	tr, d := buildTree(t, tenWords)
	chains := FromTree(tr)
	replay := Collect(tr, d.Global)
	assert.Equal(t, replay.Histogram, chains.Histogram)
}

func TestCollect_Failures(t *testing.T) {
	// a chain of eight guesses, each splitting off one word
	list := []string{"aaaab", "aaaac", "aaaad", "aaaae", "aaaaf", "aaaag", "aaaah", "aaaai"}
	a := words.NewAlphabet(list)
	enc, err := a.EncodeAll(list)
	require.NoError(t, err)

	var root, cur *tree.Node
	for i, w := range enc {
		n := &tree.Node{Word: w}
		if cur == nil {
			root = n
		} else {
			cur.Edges = map[int32]*tree.Node{game.Code(w, enc[i-1]): n}
		}
		cur = n
	}
	tr := &tree.Tree{Alphabet: a, Length: 5, Root: root}

	r := Collect(tr, enc)
	assert.Equal(t, 8, r.MaxAttempts)
	assert.Equal(t, []string{"aaaah", "aaaai"}, r.Failures)
}

func TestStore_SaveRuns(t *testing.T) {
	db, err := catalog.Open(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	defer db.Close()
	s := NewStore(db)
	ctx := context.Background()

	r := Report{Words: 3, Histogram: map[int]int{1: 1, 3: 2}, MaxAttempts: 3}
	id1, err := s.Save(ctx, "default", r, 12)
	require.NoError(t, err)
	id2, err := s.Save(ctx, "default", r, 15)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)
	_, err = s.Save(ctx, "other", r, 1)
	require.NoError(t, err)

	runs, err := s.Runs(ctx, "default", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, id2, runs[0].ID)
	assert.Equal(t, int64(15), runs[0].ElapsedMs)
	assert.Equal(t, []Bucket{{Attempts: 1, Count: 1}, {Attempts: 3, Count: 2}}, runs[0].Buckets)
	assert.NotEmpty(t, runs[0].CreatedAt)
}
