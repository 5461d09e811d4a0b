package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	apperr "github.com/lazypower/habits/internal/errors"
	"github.com/lazypower/habits/internal/store"
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits",
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		hs, err := a.habits.List(cmd.Context())
		if err != nil {
			return err
		}
		printHabits(cmd.OutOrStdout(), hs)
		return nil
	},
}

var habitAddCmd = &cobra.Command{
	Use:   "add <name> <points>",
	Short: "Add a habit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parseInt16(args[1])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		hs, err := a.habits.Create(cmd.Context(), args[0], points)
		if err != nil {
			return err
		}
		printHabits(cmd.OutOrStdout(), hs)
		return nil
	},
}

var habitRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		hs, err := a.habits.Delete(cmd.Context(), id)
		if err != nil {
			return err
		}
		printHabits(cmd.OutOrStdout(), hs)
		return nil
	},
}

var habitDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Complete a habit and apply its points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		h, err := a.habits.Get(ctx, id)
		if err != nil {
			return err
		}
		if h == nil {
			return apperr.BadRequestf("no habit with id %d", id)
		}
		if _, err := a.engine.EnsureUser(ctx); err != nil {
			return err
		}
		points, err := a.engine.UpdateUserPoints(ctx, h.Points)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %+d -> %d points\n", h.HabitName, h.Points, points)
		return nil
	},
}

func init() {
	habitCmd.AddCommand(habitListCmd, habitAddCmd, habitRmCmd, habitDoneCmd)
}

func printHabits(w io.Writer, hs []store.Habit) {
	if len(hs) == 0 {
		fmt.Fprintln(w, "No habits.")
		return
	}
	for _, h := range hs {
		fmt.Fprintf(w, "%4d  %+5d  %s\n", h.ID, h.Points, h.HabitName)
	}
}

func parseInt16(s string) (int16, error) {
	v, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, apperr.BadRequestf("points %q: %v", s, err)
	}
	return int16(v), nil
}

func parseID(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, apperr.BadRequestf("id %q: %v", s, err)
	}
	return v, nil
}
