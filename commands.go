package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	logLevel string
	dbPath   string

	buildFlags struct {
		recipe       string
		name         string
		dictionaries []string
		openings     []string
		dualDepth    int
		output       string
		workers      int
		progress     bool
	}
	treeFlags struct {
		path string
		name string
	}
	statsFlags struct {
		dictionaries []string
		asJSON       bool
		record       bool
	}
	searchFlags struct {
		dictionaries []string
		workers      int
	}
	servePort string

	rootCmd = &cobra.Command{
		Use:   "fiveletters",
		Short: "Builds and plays optimal decision trees for five letter word games",
		Long: `fiveletters precomputes, for a dictionary, the guess that splits the
remaining words best after every possible feedback, and stores the result
as a decision tree that can be replayed, measured, played or served.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("log-level") {
				setupLogging(logLevel)
			}
		},
	}

	// --- Trees ---
	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build a decision tree from one or more dictionaries and save it",
		Args:  cobra.NoArgs,
		RunE:  runBuild, // Defined in cmd_build.go
	}
	treesCmd = &cobra.Command{
		Use:   "trees",
		Short: "List built trees recorded in the catalog and verify their files",
		Args:  cobra.NoArgs,
		RunE:  runTrees, // Defined in cmd_build.go
	}

	// --- Replay ---
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Replay every word against a tree and report the attempt histogram",
		Args:  cobra.NoArgs,
		RunE:  runStats, // Defined in cmd_stats.go
	}
	interactiveCmd = &cobra.Command{
		Use:     "interactive",
		Short:   "Play along with a tree, typing the feedback of each guess",
		Aliases: []string{"play"},
		Args:    cobra.NoArgs,
		RunE:    runInteractive, // Defined in cmd_play.go
	}

	// --- Search ---
	firstCmd = &cobra.Command{
		Use:   "first",
		Short: "Find the best opening guess for a dictionary",
		Args:  cobra.NoArgs,
		RunE:  runFirst, // Defined in cmd_search.go
	}
	metricCmd = &cobra.Command{
		Use:   "metric [word...]",
		Short: "Show the partition metric of guesses over a dictionary",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMetric, // Defined in cmd_search.go
	}

	// --- Service ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve a tree over HTTP for interactive sessions",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "",
		"SQLite catalog of built trees and stats runs (default $FIVELETTERS_DB or ./data/fiveletters.db)")

	// build
	buildCmd.Flags().StringVar(&buildFlags.recipe, "config", "", "YAML build recipe; flags override its fields")
	buildCmd.Flags().StringVar(&buildFlags.name, "name", "", "Catalog name of the tree (default \"default\")")
	buildCmd.Flags().StringArrayVarP(&buildFlags.dictionaries, "dict", "d", nil,
		"Dictionary file, repeatable; the attack pool is the intersection of all files")
	buildCmd.Flags().StringArrayVar(&buildFlags.openings, "opening", nil,
		"Hardcoded guess for the next level, repeatable")
	buildCmd.Flags().IntVar(&buildFlags.dualDepth, "dual-depth", 0, "Levels that use a pair of disjoint guesses")
	buildCmd.Flags().StringVarP(&buildFlags.output, "output", "o", "", "Tree file (default $TREE_FILE or tree.bin.gz)")
	buildCmd.Flags().IntVarP(&buildFlags.workers, "workers", "w", 0, "Scoring goroutines (default $SEARCH_WORKERS or GOMAXPROCS)")
	buildCmd.Flags().BoolVar(&buildFlags.progress, "progress", true, "Show an ETA bar for long searches")

	// tree selection shared by stats, interactive and serve
	for _, c := range []*cobra.Command{statsCmd, interactiveCmd, serveCmd} {
		c.Flags().StringVarP(&treeFlags.path, "tree", "t", "", "Tree file (default $TREE_FILE or tree.bin.gz)")
		c.Flags().StringVar(&treeFlags.name, "name", "", "Load the tree recorded under this catalog name")
	}

	// stats
	statsCmd.Flags().StringArrayVarP(&statsFlags.dictionaries, "dict", "d", nil,
		"Replay the words of these files instead of the tree's own words")
	statsCmd.Flags().BoolVar(&statsFlags.asJSON, "json", false, "Print the report as JSON")
	statsCmd.Flags().BoolVar(&statsFlags.record, "record", true, "Record the run in the catalog")

	// first, metric
	for _, c := range []*cobra.Command{firstCmd, metricCmd} {
		c.Flags().StringArrayVarP(&searchFlags.dictionaries, "dict", "d", nil,
			"Dictionary file, repeatable (default: embedded list)")
		c.Flags().IntVarP(&searchFlags.workers, "workers", "w", 0, "Scoring goroutines")
	}

	// serve
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "HTTP port (default $PORT or 5175)")

	rootCmd.AddCommand(buildCmd, treesCmd, statsCmd, interactiveCmd, firstCmd, metricCmd, serveCmd)
}
