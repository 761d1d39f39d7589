package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/poleposition/internal/query"
)

func newStandingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Show the predicted drivers' championship",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(e *query.Engine) (query.Standings, error) {
				return e.DriverStandings(), nil
			}, func(cmd *cobra.Command, s query.Standings) {
				rows := make([][]string, len(s.Standings))
				for i, d := range s.Standings {
					rows[i] = []string{
						strconv.Itoa(d.Position), d.Driver, d.FullName, d.Team,
						num1(d.AvgPoints), pct(d.ChampPct), pct(d.WinPct),
						num0(d.MinPoints) + "-" + num0(d.MaxPoints), num1(d.Std),
					}
				}
				printTitle(cmd, "Drivers' Championship")
				printTable(cmd, []string{"Pos", "Driver", "Name", "Team", "Avg Pts", "Title", "Race Win", "Range", "Std"}, rows)
			})
		},
	}
}

func newConstructorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "constructors",
		Short: "Show the predicted constructors' championship",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(e *query.Engine) (query.ConstructorStandings, error) {
				return e.ConstructorStandings(), nil
			}, func(cmd *cobra.Command, s query.ConstructorStandings) {
				rows := make([][]string, len(s.Constructors))
				for i, c := range s.Constructors {
					rows[i] = []string{
						strconv.Itoa(c.Position), c.Team, num1(c.AvgPoints), pct(c.ChampPct),
						num0(c.MinPoints) + "-" + num0(c.MaxPoints), num0(c.Wins), strings.Join(c.Drivers, ", "),
					}
				}
				printTitle(cmd, "Constructors' Championship")
				printTable(cmd, []string{"Pos", "Team", "Avg Pts", "Title", "Range", "Wins", "Drivers"}, rows)
			})
		},
	}
}

func newContendersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contenders",
		Short: "List drivers with a chance of winning the title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(e *query.Engine) (query.Contenders, error) {
				return e.TitleContenders(), nil
			}, func(cmd *cobra.Command, s query.Contenders) {
				if len(s.Contenders) == 0 {
					printTitle(cmd, "Title Contenders", "No driver won the title in any simulation.")
					return
				}
				rows := make([][]string, len(s.Contenders))
				for i, c := range s.Contenders {
					rows[i] = []string{c.Driver, c.FullName, c.Team, pct(c.ChampPct), num1(c.AvgPoints), pct(c.WinPct)}
				}
				printTitle(cmd, "Title Contenders")
				printTable(cmd, []string{"Driver", "Name", "Team", "Title", "Avg Pts", "Race Win"}, rows)
			})
		},
	}
}
