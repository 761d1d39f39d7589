package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nvandessel/poleposition/internal/store"
)

// InspectReport summarizes a loaded bundle.
type InspectReport struct {
	Drivers          int                    `json:"drivers"`
	Races            int                    `json:"races"`
	Positions        int                    `json:"positions"`
	Simulations      int                    `json:"simulations"`
	Titles           int                    `json:"titles"`
	MissingTeams     []string               `json:"missing_teams"`
	MissingNames     []string               `json:"missing_names"`
	IncompleteCells  []store.IncompleteCell `json:"incomplete_cells"`
	ResolverStrategy []string               `json:"resolver_strategies"`
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load the artifacts and report dimensions and sanity checks",
		Long: `Load the configured artifacts and report the bundle dimensions along
with data quality checks: drivers without a team or display name, and
position histograms that do not sum to the simulation count (expected
when finishing positions beyond the tracked range were not recorded).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			report := inspect(a.engine.Bundle())
			for _, s := range a.engine.Resolver().Strategies() {
				report.ResolverStrategy = append(report.ResolverStrategy, s.Name)
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd, report)
			}

			printTable(cmd, []string{"Check", "Value"}, [][]string{
				{"Drivers", strconv.Itoa(report.Drivers)},
				{"Races", strconv.Itoa(report.Races)},
				{"Tracked positions", strconv.Itoa(report.Positions)},
				{"Simulations", strconv.Itoa(report.Simulations)},
				{"Titles awarded", strconv.Itoa(report.Titles)},
				{"Drivers without team", listOrNone(report.MissingTeams)},
				{"Drivers without name", listOrNone(report.MissingNames)},
				{"Incomplete histograms", strconv.Itoa(len(report.IncompleteCells))},
			})
			for _, c := range report.IncompleteCells {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(
					fmt.Sprintf("  %s round %d: %s of %d simulations", c.Driver, c.Round, num0(c.Total), report.Simulations)))
			}
			return nil
		},
	}
}

func inspect(b *store.Bundle) InspectReport {
	r := InspectReport{
		Drivers:         b.NumDrivers(),
		Races:           b.NumRounds(),
		Positions:       b.NumPositions(),
		Simulations:     b.NumSimulations(),
		MissingTeams:    []string{},
		MissingNames:    []string{},
		IncompleteCells: b.IncompleteCells(),
	}
	if r.IncompleteCells == nil {
		r.IncompleteCells = []store.IncompleteCell{}
	}
	for d, code := range b.Drivers() {
		r.Titles += b.ChampionshipWins(d)
		if _, ok := b.TeamOf(code); !ok {
			r.MissingTeams = append(r.MissingTeams, code)
		}
		if _, ok := b.Names().Get(code); !ok {
			r.MissingNames = append(r.MissingNames, code)
		}
	}
	return r
}

func listOrNone(codes []string) string {
	if len(codes) == 0 {
		return "none"
	}
	s := ""
	for i, c := range codes {
		if i > 0 {
			s += ", "
		}
		s += c
	}
	return s
}
