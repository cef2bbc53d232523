package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/fiveletters/internal/catalog"
	"github.com/robalobadob/fiveletters/internal/solver"
	"github.com/robalobadob/fiveletters/internal/tree"
	"github.com/robalobadob/fiveletters/internal/words"
)

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadBuildConfig(buildFlags.recipe)
	if err != nil {
		return err
	}
	fl := cmd.Flags()
	if fl.Changed("name") {
		cfg.Name = buildFlags.name
	}
	if fl.Changed("dict") {
		cfg.Dictionaries = buildFlags.dictionaries
	}
	if fl.Changed("opening") {
		cfg.Openings = buildFlags.openings
	}
	if fl.Changed("dual-depth") {
		cfg.DualDepth = buildFlags.dualDepth
	}
	if fl.Changed("output") {
		cfg.Output = buildFlags.output
	}
	if fl.Changed("workers") && buildFlags.workers > 0 {
		cfg.Workers = buildFlags.workers
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	d, err := words.Load(cfg.Dictionaries...)
	if err != nil {
		return err
	}
	global, attack := d.Stats()
	log.Info().
		Int("global", global).
		Int("attack", attack).
		Int("length", d.Length).
		Str("alphabet", d.Alphabet.String()).
		Msg("dictionary loaded")

	openings, err := encodeOpenings(d, cfg.Openings)
	if err != nil {
		return err
	}

	opts := []solver.Option{solver.WithWorkers(cfg.Workers)}
	if buildFlags.progress {
		opts = append(opts, solver.WithProgress(os.Stderr))
	}
	b := tree.NewBuilder(solver.New(d.Alphabet.Size(), opts...), d.Attack,
		tree.WithOpenings(openings...),
		tree.WithDualDepth(cfg.DualDepth),
	)

	start := time.Now()
	root, err := b.Build(cmd.Context(), d.Global)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}
	t := &tree.Tree{Alphabet: d.Alphabet, Length: d.Length, Root: root}
	if err := tree.SaveFile(cfg.Output, t); err != nil {
		return fmt.Errorf("save tree: %w", err)
	}
	log.Info().
		Str("file", cfg.Output).
		Str("root", t.Decode(root.Word)).
		Dur("elapsed", time.Since(start)).
		Msg("tree saved")

	return withCatalog(func(db *sql.DB) error {
		sum, err := catalog.Checksum(cfg.Output)
		if err != nil {
			return err
		}
		return catalog.New(db).Put(cmd.Context(), catalog.Entry{
			Name:       cfg.Name,
			Path:       cfg.Output,
			Checksum:   sum,
			RootWord:   t.Decode(root.Word),
			WordLength: t.Length,
			Words:      global,
			Dual:       cfg.DualDepth > 0,
			BuiltAt:    time.Now(),
		})
	})
}

// encodeOpenings turns hardcoded guesses into words of d's alphabet.
func encodeOpenings(d *words.Dictionary, list []string) ([]words.Word, error) {
	out := make([]words.Word, 0, len(list))
	for _, s := range list {
		s = strings.ToLower(strings.TrimSpace(s))
		w, err := d.Alphabet.Encode(s)
		if err != nil {
			return nil, fmt.Errorf("opening %q: %w", s, err)
		}
		if len(w) != d.Length {
			return nil, fmt.Errorf("opening %q: %w", s, words.ErrWordLengthMismatch)
		}
		if _, known := d.Lookup(s); !known {
			log.Warn().Str("opening", s).Msg("opening is not a dictionary word")
		}
		out = append(out, w)
	}
	return out, nil
}

func runTrees(cmd *cobra.Command, args []string) error {
	return withCatalog(func(db *sql.DB) error {
		c := catalog.New(db)
		entries, err := c.List(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tROOT\tWORDS\tDUAL\tBUILT\tFILE\tSTATUS")
		for _, e := range entries {
			status := "ok"
			if _, err := c.Verify(cmd.Context(), e.Name); err != nil {
				status = verifyStatus(err)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\t%s\t%s\n",
				e.Name, e.RootWord, e.Words, e.Dual, e.BuiltAt.Local().Format(time.DateTime), e.Path, status)
		}
		return tw.Flush()
	})
}

func verifyStatus(err error) string {
	switch {
	case errors.Is(err, catalog.ErrChecksumMismatch):
		return "modified"
	case errors.Is(err, os.ErrNotExist):
		return "missing"
	default:
		return "error: " + err.Error()
	}
}

// withCatalog opens the catalog database for the duration of fn.
func withCatalog(fn func(db *sql.DB) error) error {
	db, err := catalog.Open(catalogPath())
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer db.Close()
	return fn(db)
}

func catalogPath() string {
	if dbPath != "" {
		return dbPath
	}
	return getEnv("FIVELETTERS_DB", "./data/fiveletters.db")
}

// loadTree reads the tree selected by --tree or --name. It returns the tree
// and the catalog name runs are recorded under.
func loadTree(ctx context.Context) (*tree.Tree, string, error) {
	path, name := treeFlags.path, treeFlags.name
	if name != "" {
		err := withCatalog(func(db *sql.DB) error {
			e, err := catalog.New(db).Verify(ctx, name)
			if err != nil {
				return err
			}
			path = e.Path
			return nil
		})
		if err != nil {
			return nil, "", err
		}
	}
	if path == "" {
		path = getEnv("TREE_FILE", "tree.bin.gz")
	}
	if name == "" {
		name = path
	}

	t, err := tree.LoadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", path, err)
	}
	log.Debug().
		Str("file", path).
		Str("root", t.Decode(t.Root.Word)).
		Int("nodes", t.Root.Size()).
		Msg("tree loaded")
	return t, name, nil
}
