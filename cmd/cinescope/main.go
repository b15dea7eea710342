// Command cinescope is a terminal movie discovery app backed by TMDB, with a
// leaderboard of the most searched terms.
//
// Usage:
//
//	cinescope                  Interactive TUI (default)
//	cinescope search <term>    Run one or more searches and print the results
//	cinescope trending         Print the trending searches leaderboard
//	cinescope events           JSONL event log viewer
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "cinescope",
	Short: "Discover movies from your terminal",
	Long: `CineScope searches TMDB as you type and keeps a leaderboard of the
most searched movies.

Environment:
  TMDB_API_KEY            TMDB v4 read access token (required for searches)
  CINESCOPE_STORE         trending store: sqlite (default) or appwrite
  APPWRITE_PROJECT_ID     Appwrite project (appwrite store only)
  APPWRITE_DATABASE_ID    Appwrite database (appwrite store only)
  APPWRITE_COLLECTION_ID  Appwrite collection (appwrite store only)
  CINESCOPE_CONFIG        path to a YAML config file`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./cinescope.yaml or ~/.cinescope/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level: debug, info, warn, error")

	rootCmd.AddCommand(searchCmd, trendingCmd, eventsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
