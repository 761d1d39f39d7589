package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nvandessel/poleposition/internal/query"
	"github.com/nvandessel/poleposition/internal/tools"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// queryError reports a failed query. In JSON mode the structured error is
// written to stdout as well, so agents get the list of valid names.
func queryError(cmd *cobra.Command, err error) error {
	if jsonOutput(cmd) {
		if werr := writeJSON(cmd, tools.NewErrorResult(err)); werr != nil {
			return errors.Join(err, werr)
		}
		return err
	}
	nfs := query.NotFoundErrors(err)
	if len(nfs) == 0 {
		return err
	}
	var sb strings.Builder
	sb.WriteString(err.Error())
	seen := map[query.Kind]bool{}
	for _, nf := range nfs {
		if seen[nf.Kind] {
			continue
		}
		seen[nf.Kind] = true
		fmt.Fprintf(&sb, "\navailable %ss: %s", nf.Kind, strings.Join(nf.Available, ", "))
	}
	return errors.New(sb.String())
}

// printTable renders rows under headers with a rounded border.
func printTable(cmd *cobra.Command, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
}

func printTitle(cmd *cobra.Command, title string, detail ...string) {
	fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(title))
	for _, d := range detail {
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(d))
	}
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func num1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func num0(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func pos(p int) string {
	return "P" + strconv.Itoa(p)
}

func circuitRows(stats []query.CircuitStats) [][]string {
	rows := make([][]string, len(stats))
	for i, c := range stats {
		rows[i] = []string{strconv.Itoa(c.Round), c.Race, pct(c.WinPct), pct(c.PodiumPct), pct(c.PointsPct), pos(c.LikelyPos)}
	}
	return rows
}

var circuitHeaders = []string{"Rd", "Race", "Win", "Podium", "Points", "Likely"}
