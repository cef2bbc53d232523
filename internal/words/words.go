// internal/words/words.go
//
// Dictionary loading for the solver.
//
// Responsibilities:
//   - Read newline-delimited dictionaries (UTF-8, one lowercase word per line).
//   - Merge several files: the global pool is the union of all files, the
//     attack pool is their intersection.
//   - Deduplicate, sort, and encode everything against a single alphabet.
//
// Loading behavior (Load):
//   1. If one or more paths are given, every file is read and merged.
//   2. Otherwise the embedded default dictionary from the assets package is
//      used for both pools.
//
// Constraints:
//   • All words must share one length.
//   • Lines are trimmed and lowercased; blank lines and `#` comments are skipped.
//   • Duplicates are tolerated; a warning is logged per file that has them.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/fiveletters/assets"
)

// ErrEmptyDictionary is returned when a pool ends up with no words.
var ErrEmptyDictionary = errors.New("words: dictionary is empty")

// Dictionary is the encoded result of loading one or more word lists.
type Dictionary struct {
	Alphabet *Alphabet
	Length   int    // letters per word
	Global   []Word // every known word (candidate set of the root)
	Attack   []Word // words the search may propose
}

// Load reads the given files, or the embedded default list when none are given.
func Load(paths ...string) (*Dictionary, error) {
	if len(paths) == 0 {
		list, err := assets.DefaultWords()
		if err != nil {
			return nil, fmt.Errorf("read embedded dictionary: %w", err)
		}
		return Build([][]string{list})
	}

	lists := make([][]string, 0, len(paths))
	for _, p := range paths {
		list, err := readWordFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		if dups := countDuplicates(list); dups > 0 {
			log.Warn().Str("file", p).Int("duplicates", dups).Msg("dictionary contains duplicates")
		}
		lists = append(lists, list)
	}
	return Build(lists)
}

// Build merges raw word lists into a Dictionary. The first list seeds the
// attack pool, which every following list narrows by intersection.
func Build(lists [][]string) (*Dictionary, error) {
	global := make(map[string]struct{})
	var attack map[string]struct{}
	for _, list := range lists {
		set := toSet(list)
		for w := range set {
			global[w] = struct{}{}
		}
		if attack == nil {
			attack = set
			continue
		}
		for w := range attack {
			if _, ok := set[w]; !ok {
				delete(attack, w)
			}
		}
	}

	globalList := sortedKeys(global)
	attackList := sortedKeys(attack)
	if len(globalList) == 0 {
		return nil, fmt.Errorf("%w: global pool", ErrEmptyDictionary)
	}
	if len(attackList) == 0 {
		return nil, fmt.Errorf("%w: attack pool", ErrEmptyDictionary)
	}

	alphabet := NewAlphabet(globalList)
	g, err := alphabet.EncodeAll(globalList)
	if err != nil {
		return nil, err
	}
	a, err := alphabet.EncodeAll(attackList)
	if err != nil {
		return nil, err
	}
	return &Dictionary{
		Alphabet: alphabet,
		Length:   utf8.RuneCountInString(globalList[0]),
		Global:   g,
		Attack:   a,
	}, nil
}

// Stats returns pool sizes: (global, attack).
func (d *Dictionary) Stats() (globalCount int, attackCount int) {
	return len(d.Global), len(d.Attack)
}

// Lookup encodes s and reports whether it is part of the global pool.
func (d *Dictionary) Lookup(s string) (Word, bool) {
	w, err := d.Alphabet.Encode(normalize(s))
	if err != nil || len(w) != d.Length {
		return nil, false
	}
	_, found := slices.BinarySearchFunc(d.Global, w, Word.Compare)
	return w, found
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// ReadLines reads a newline-delimited word list.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := normalize(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		out = append(out, w)
	}
	return out, sc.Err()
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for w := range m {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

func countDuplicates(list []string) int {
	return len(list) - len(toSet(list))
}
