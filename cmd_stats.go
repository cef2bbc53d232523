package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/fiveletters/internal/stats"
	"github.com/robalobadob/fiveletters/internal/tree"
	"github.com/robalobadob/fiveletters/internal/words"
)

func runStats(cmd *cobra.Command, args []string) error {
	t, name, err := loadTree(cmd.Context())
	if err != nil {
		return err
	}
	hidden, err := hiddenWords(t, statsFlags.dictionaries)
	if err != nil {
		return err
	}

	start := time.Now()
	report := stats.Collect(t, hidden)
	elapsed := time.Since(start)

	if leaf := stats.FromTree(t); len(hidden) == 0 && leaf.Words != report.Words {
		log.Warn().Int("leaves", leaf.Words).Int("replayed", report.Words).Msg("leaf count differs from replay")
	}

	out := cmd.OutOrStdout()
	if statsFlags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}

	if !statsFlags.record {
		return nil
	}
	return withCatalog(func(db *sql.DB) error {
		id, err := stats.NewStore(db).Save(cmd.Context(), name, report, elapsed.Milliseconds())
		if err != nil {
			return fmt.Errorf("record stats run: %w", err)
		}
		log.Info().Int64("run", id).Str("tree", name).Msg("stats run recorded")
		return nil
	})
}

// hiddenWords reads the replay dictionary. Words outside the tree's alphabet
// or of another length are skipped with a warning. No paths means replay the
// tree's own words; paths that yield no word at all are an error.
func hiddenWords(t *tree.Tree, paths []string) ([]words.Word, error) {
	var out []words.Word
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		lines, err := words.ReadLines(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		skipped := 0
		for _, s := range lines {
			w, err := t.Alphabet.Encode(s)
			if err != nil || len(w) != t.Length {
				skipped++
				continue
			}
			out = append(out, w)
		}
		if skipped > 0 {
			log.Warn().Str("file", p).Int("skipped", skipped).Msg("words the tree cannot encode")
		}
	}
	if len(paths) > 0 && len(out) == 0 {
		return nil, fmt.Errorf("no word of %s fits the tree", strings.Join(paths, ", "))
	}
	return out, nil
}

func printReport(w io.Writer, r stats.Report) {
	fmt.Fprintf(w, "words: %d  mean: %.3f  max: %d\n", r.Words, r.Mean, r.MaxAttempts)
	for _, b := range r.Buckets() {
		bar := strings.Repeat("█", max(1, b.Count*40/max(1, r.Words)))
		fmt.Fprintf(w, "%3d  %6d  %s\n", b.Attempts, b.Count, bar)
	}
	if len(r.Failures) > 0 {
		fmt.Fprintf(w, "more than %d attempts (%d): %s\n", stats.MaxAttempts, len(r.Failures), strings.Join(r.Failures, ", "))
	}
	if len(r.Unreachable) > 0 {
		fmt.Fprintf(w, "not in tree (%d): %s\n", len(r.Unreachable), strings.Join(r.Unreachable, ", "))
	}
}
