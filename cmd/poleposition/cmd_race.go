package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nvandessel/poleposition/internal/query"
)

func newRaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "race <race-name>",
		Short: "Show every driver's chances at one race",
		Long: `Show win, podium and points chances for every driver at one race.

The race must be named in full, e.g. "Monaco Grand Prix" (case does not
matter). Run "poleposition races" for the calendar.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(e *query.Engine) (*query.RaceProbabilities, error) {
				return e.RaceWinnerProbabilities(args[0])
			}, func(cmd *cobra.Command, r *query.RaceProbabilities) {
				rows := make([][]string, len(r.Drivers))
				for i, d := range r.Drivers {
					rows[i] = []string{strconv.Itoa(d.Position), d.Driver, d.FullName, d.Team, pct(d.WinPct), pct(d.PodiumPct), pct(d.PointsPct), pos(d.LikelyPos)}
				}
				printTitle(cmd, fmt.Sprintf("Round %d: %s", r.Round, r.Race))
				printTable(cmd, []string{"#", "Driver", "Name", "Team", "Win", "Podium", "Points", "Likely"}, rows)
			})
		},
	}
}

func newPredictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict <driver> <race-name>",
		Short: "Show one driver's finishing-position breakdown at one race",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(e *query.Engine) (*query.Prediction, error) {
				return e.RacePrediction(args[0], args[1])
			}, func(cmd *cobra.Command, p *query.Prediction) {
				printTitle(cmd, fmt.Sprintf("%s at the %s (round %d)", p.FullName, p.Race, p.Round),
					fmt.Sprintf("win %s  podium %s  points %s  most likely %s",
						pct(p.WinPct), pct(p.PodiumPct), pct(p.PointsPct), pos(p.LikelyPos)))
				rows := make([][]string, 0, len(p.PosProbs))
				for i, v := range p.PosProbs {
					if v == 0 {
						continue
					}
					rows = append(rows, []string{pos(i + 1), pct(v)})
				}
				printTable(cmd, []string{"Finish", "Chance"}, rows)
			})
		},
	}
}
