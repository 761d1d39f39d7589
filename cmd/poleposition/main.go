package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set by the release build via -ldflags.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "poleposition",
		Short: "Pole Position - championship statistics from race simulations",
		Long: `poleposition answers questions about a Monte Carlo simulated Formula 1
season: predicted standings, title chances, driver profiles, head to head
comparisons and race-by-race finishing probabilities.

Results are served to agents over MCP (serve), to web clients over HTTP
(api), or printed directly by the query commands.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./poleposition.yaml, then ~/.poleposition/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug, trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		// Servers
		newServeCmd(),
		newAPICmd(),
		// Queries
		newStandingsCmd(),
		newConstructorsCmd(),
		newContendersCmd(),
		newDriverCmd(),
		newCompareCmd(),
		newCalendarCmd(),
		newRaceCmd(),
		newPredictCmd(),
		newDriversCmd(),
		newRacesCmd(),
		newAskCmd(),
		// Data
		newCompileCmd(),
		newExportPointsCmd(),
		newInspectCmd(),
	)

	return rootCmd
}
