package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/poleposition/internal/store"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the configured artifacts into one SQLite snapshot",
		Long: `Load the simulation bundle, team table and name table named by the
configuration and write them to a single SQLite snapshot. Point
data.bundle_path (or SIM_DATA_PATH) at the snapshot to load it in place of
the JSON and CSV files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			if !store.IsSnapshotPath(out) {
				return fmt.Errorf("--out must end in .db, .sqlite or .sqlite3, got %q", out)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := store.WriteSnapshot(cmd.Context(), out, a.engine.Bundle()); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}

			b := a.engine.Bundle()
			if jsonOutput(cmd) {
				return writeJSON(cmd, map[string]any{
					"status":      "compiled",
					"path":        out,
					"drivers":     b.NumDrivers(),
					"races":       b.NumRounds(),
					"simulations": b.NumSimulations(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Compiled %d drivers, %d races and %d simulations into %s\n",
				b.NumDrivers(), b.NumRounds(), b.NumSimulations(), out)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Snapshot path to create (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newExportPointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-points",
		Short: "Write the season points matrix as an Arrow IPC file",
		Long: `Write the per-simulation season points of every driver as an Arrow IPC
file with one float64 column per driver code. The file can be loaded back
with data.points_path (or SIM_POINTS_PATH).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			out, _ := cmd.Flags().GetString("out")

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.OpenFile(out, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("failed to create points file: %w", err)
			}
			defer func() {
				if err := f.Close(); err != nil {
					retErr = errors.Join(retErr, err)
				}
			}()

			if err := store.WritePoints(f, a.engine.Bundle()); err != nil {
				return fmt.Errorf("failed to write points: %w", err)
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd, map[string]any{"status": "exported", "path": out})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Points written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Arrow IPC file to create (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
