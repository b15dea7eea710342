package main

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/abelbrown/cinescope/internal/trending"
)

var (
	trendingLimit int
	trendingJSON  bool
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Print the most searched terms",
	Args:  cobra.NoArgs,
	RunE:  runTrending,
}

func init() {
	trendingCmd.Flags().IntVarP(&trendingLimit, "limit", "n", trending.DefaultTopN, "number of entries")
	trendingCmd.Flags().BoolVar(&trendingJSON, "json", false, "print entries as JSON")
}

func runTrending(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	entries, err := svc.tracker.ListTop(cmd.Context(), trendingLimit)
	if err != nil {
		return fmt.Errorf("load trending: %w", err)
	}

	out := cmd.OutOrStdout()
	if trendingJSON {
		return writeTrendingJSON(out, entries)
	}
	printTrending(out, entries)
	return nil
}

func writeTrendingJSON(w io.Writer, entries []trending.Entry) error {
	if entries == nil {
		entries = []trending.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func printTrending(w io.Writer, entries []trending.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No searches yet. Search for something to start trending!")
		return
	}
	fmt.Fprintln(w, "🔥 Most Searched Movies")
	for i, e := range entries {
		fmt.Fprintf(w, "  %d. %-36s %14s  (%s)\n", i+1, truncate(e.Label(), 36), e.SearchesLabel(), e.SearchTerm)
	}
}
