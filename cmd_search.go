package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/fiveletters/internal/solver"
	"github.com/robalobadob/fiveletters/internal/words"
)

func searchWorkers() int {
	if searchFlags.workers > 0 {
		return searchFlags.workers
	}
	return getEnvInt("SEARCH_WORKERS", runtime.GOMAXPROCS(0))
}

func runFirst(cmd *cobra.Command, args []string) error {
	d, err := words.Load(searchFlags.dictionaries...)
	if err != nil {
		return err
	}
	s := solver.New(d.Alphabet.Size(), solver.WithWorkers(searchWorkers()), solver.WithProgress(os.Stderr))

	start := time.Now()
	c, err := s.Best(cmd.Context(), d.Global, d.Attack)
	if err != nil {
		return err
	}
	log.Debug().Int("index", c.Index).Dur("elapsed", time.Since(start)).Msg("first guess found")

	fmt.Fprintf(cmd.OutOrStdout(), "%s  metric %d  expected remaining %.3f\n",
		d.Alphabet.Decode(c.Word), c.Metric, expectedRemaining(solver.Partition(d.Global, c.Word), len(d.Global)))
	return nil
}

func runMetric(cmd *cobra.Command, args []string) error {
	d, err := words.Load(searchFlags.dictionaries...)
	if err != nil {
		return err
	}
	for _, s := range args {
		w, err := d.Alphabet.Encode(s)
		if err != nil || len(w) != d.Length {
			return fmt.Errorf("%q is not a %d letter word of this dictionary's alphabet", s, d.Length)
		}
		parts := solver.Partition(d.Global, w)
		fmt.Fprintf(cmd.OutOrStdout(), "%s  metric %d  partitions %d  expected remaining %.3f\n",
			s, solver.Metric(d.Global, w), len(parts), expectedRemaining(parts, len(d.Global)))
	}
	return nil
}

// expectedRemaining is the mean number of words left after the guess when
// every one of the n words is equally likely to be hidden.
func expectedRemaining(parts map[int32][]words.Word, n int) float64 {
	if n == 0 {
		return 0
	}
	var sum int
	for _, p := range parts {
		sum += len(p) * len(p)
	}
	return float64(sum) / float64(n)
}
