package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/poleposition/internal/tools"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [tool] [key=value...]",
		Short: "Call a query tool by name, as an agent would",
		Long: `Call one of the MCP query tools directly and print its JSON result.

Examples:
  poleposition ask --list
  poleposition ask driver_profile driver=VER
  poleposition ask race_prediction driver=norris "race=Monaco Grand Prix"`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _ := cmd.Flags().GetBool("list")
			if list || len(args) == 0 {
				return listTools(cmd)
			}

			toolArgs, err := tools.ParseArgs(args[1:])
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := tools.Call(a.engine, args[0], toolArgs)
			if err != nil {
				if werr := writeJSON(cmd, tools.NewErrorResult(err)); werr != nil {
					return werr
				}
				return err
			}
			return writeJSON(cmd, result)
		},
	}

	cmd.Flags().Bool("list", false, "List the available tools")

	return cmd
}

func listTools(cmd *cobra.Command) error {
	all := tools.All()
	if jsonOutput(cmd) {
		return writeJSON(cmd, all)
	}
	rows := make([][]string, len(all))
	for i, t := range all {
		params := make([]string, len(t.Params))
		for j, p := range t.Params {
			params[j] = p.Name
		}
		rows[i] = []string{t.Name, strings.Join(params, ", "), t.Description}
	}
	printTable(cmd, []string{"Tool", "Args", "Description"}, rows)
	fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(`Call a tool with: poleposition ask <tool> key=value...`))
	return nil
}
