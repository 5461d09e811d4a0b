package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	apperr "github.com/lazypower/habits/internal/errors"
	"github.com/lazypower/habits/internal/league"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show points, league and store summary",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	version, err := a.db.SchemaVersion()
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}
	fmt.Fprintf(out, "db:      %s (schema v%d)\n", a.db.Path, version)

	u, err := a.engine.User(ctx)
	if errors.Is(err, apperr.ErrUserMissing) {
		fmt.Fprintln(out, "user:    none yet (run `habits invoke ensure_user`)")
	} else if err != nil {
		return err
	} else {
		s := league.StatusFor(u.Points)
		fmt.Fprintf(out, "points:  %d\n", u.Points)
		fmt.Fprintf(out, "league:  %s (%d-%d, %.0f%%, cost %d/tick)\n",
			s.League.Title, s.League.LowerBound, s.UpperBound, s.Progress, s.League.Cost)
		if s.Next != nil {
			fmt.Fprintf(out, "next:    %s at %d\n", s.Next.Title, s.Next.LowerBound)
		}
	}

	hs, err := a.habits.List(ctx)
	if err != nil {
		return err
	}
	recs, err := a.records.GetAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "habits:  %d\n", len(hs))
	fmt.Fprintf(out, "records: %d\n", len(recs))
	return nil
}
