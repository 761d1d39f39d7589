package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nvandessel/poleposition/internal/query"
)

func newDriverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "driver <code-or-name>",
		Short: "Show one driver's season profile",
		Long: `Show one driver's season profile: points outlook, title and race win
chances, and the circuits where the driver is strongest and weakest.

The driver may be given as a code (VER) or any part of the full name
(Verstappen, max).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			return runQuery(cmd, func(e *query.Engine) (*query.DriverProfile, error) {
				return e.DriverProfile(args[0])
			}, func(cmd *cobra.Command, p *query.DriverProfile) {
				printTitle(cmd, fmt.Sprintf("%s  %s (%s)", p.Driver, p.FullName, p.Team),
					fmt.Sprintf("avg %s pts (%s-%s, std %s)  title %s  race win %s",
						num1(p.AvgPoints), num0(p.MinPoints), num0(p.MaxPoints), num1(p.Std), pct(p.ChampPct), pct(p.WinPct)))
				if all {
					printTable(cmd, circuitHeaders, circuitRows(p.AllCircuits))
					return
				}
				printTitle(cmd, "Best circuits")
				printTable(cmd, circuitHeaders, circuitRows(p.BestCircuits))
				printTitle(cmd, "Worst circuits")
				printTable(cmd, circuitHeaders, circuitRows(p.WorstCircuits))
			})
		},
	}

	cmd.Flags().Bool("all", false, "Show every circuit in calendar order instead of the best and worst")

	return cmd
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <driver1> <driver2>",
		Short: "Compare two drivers head to head",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(e *query.Engine) (*query.Comparison, error) {
				return e.CompareDrivers(args[0], args[1])
			}, func(cmd *cobra.Command, c *query.Comparison) {
				d1, d2 := c.Driver1, c.Driver2
				printTitle(cmd, fmt.Sprintf("%s vs %s", d1.FullName, d2.FullName),
					fmt.Sprintf("%s ahead %s  %s ahead %s  level %s", d1.Code, pct(c.D1BeatsD2Pct), d2.Code, pct(c.D2BeatsD1Pct), pct(c.TiePct)))
				printTable(cmd, []string{"", d1.Code, d2.Code}, [][]string{
					{"Team", d1.Team, d2.Team},
					{"Avg Pts", num1(d1.AvgPoints), num1(d2.AvgPoints)},
					{"Title", pct(d1.ChampPct), pct(d2.ChampPct)},
					{"Race Win", pct(d1.WinPct), pct(d2.WinPct)},
					{"Range", num0(d1.MinPoints) + "-" + num0(d1.MaxPoints), num0(d2.MinPoints) + "-" + num0(d2.MaxPoints)},
				})

				rows := make([][]string, len(c.CircuitComparison))
				for i, r := range c.CircuitComparison {
					rows[i] = []string{
						strconv.Itoa(r.Round), r.Race,
						pct(r.D1WinPct), pct(r.D2WinPct),
						pct(r.D1Podium), pct(r.D2Podium),
						pos(r.D1Likely), pos(r.D2Likely), r.Advantage,
					}
				}
				printTable(cmd, []string{"Rd", "Race", d1.Code + " Win", d2.Code + " Win", d1.Code + " Pod", d2.Code + " Pod", d1.Code, d2.Code, "Edge"}, rows)
			})
		},
	}
}

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar <driver>",
		Short: "Show a driver's chances at every race",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			byWin, _ := cmd.Flags().GetBool("by-win")
			return runQuery(cmd, func(e *query.Engine) (*query.Calendar, error) {
				return e.DriverCalendar(args[0])
			}, func(cmd *cobra.Command, c *query.Calendar) {
				rows := c.CalendarOrder
				order := "calendar order"
				if byWin {
					rows = c.RankedByWin
					order = "ranked by win chance"
				}
				printTitle(cmd, fmt.Sprintf("%s  %s (%s)", c.Driver, c.FullName, c.Team), order)
				printTable(cmd, circuitHeaders, circuitRows(rows))
			})
		},
	}

	cmd.Flags().Bool("by-win", false, "Order races by win chance instead of by round")

	return cmd
}
