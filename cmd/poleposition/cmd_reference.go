package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nvandessel/poleposition/internal/query"
	"github.com/nvandessel/poleposition/internal/tools"
)

func newDriversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List driver codes, names and teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(e *query.Engine) (tools.DriversResult, error) {
				return tools.DriversResult{Drivers: e.Drivers()}, nil
			}, func(cmd *cobra.Command, r tools.DriversResult) {
				rows := make([][]string, len(r.Drivers))
				for i, d := range r.Drivers {
					team := d.Team
					if team == "" {
						team = "-"
					}
					rows[i] = []string{d.Code, d.Name, team}
				}
				printTable(cmd, []string{"Code", "Name", "Team"}, rows)
			})
		},
	}
}

func newRacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "races",
		Short: "List the season calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(e *query.Engine) (tools.RacesResult, error) {
				return tools.RacesResult{Races: e.Races()}, nil
			}, func(cmd *cobra.Command, r tools.RacesResult) {
				rows := make([][]string, len(r.Races))
				for i, race := range r.Races {
					rows[i] = []string{strconv.Itoa(race.Round), race.Name}
				}
				printTable(cmd, []string{"Round", "Race"}, rows)
			})
		},
	}
}
