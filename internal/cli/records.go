package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/habits/internal/store"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect or clear the daily point history",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List daily records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.records.GetAll(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "No records.")
			return nil
		}
		for _, r := range recs {
			fmt.Fprintf(out, "%s  %+6d\n", r.CreatedAt, r.Points)
		}
		return nil
	},
}

var recordsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all daily records (points are kept)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.records.Reset(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d records.\n", n)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Open the database and apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		v, err := a.db.SchemaVersion()
		if err != nil {
			return fmt.Errorf("schema version: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: schema v%d (latest v%d)\n", a.db.Path, v, store.LatestVersion())
		return nil
	},
}

func init() {
	recordsCmd.AddCommand(recordsListCmd, recordsResetCmd)
}
