package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplan/internal/cli/formatter"
	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/spf13/cobra"
)

// resolveScanLimit bounds how many recent records a short id is matched
// against.
const resolveScanLimit = 500

var errNoRecords = errors.New("planner history is not available")

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	var userID int64

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent planning runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Records == nil {
				return errNoRecords
			}
			cfg := app.config()
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Storage.HistoryLimit
			}
			if !cmd.Flags().Changed("user") {
				userID = cfg.Defaults.UserID
			}

			records, err := app.Records.ListRecent(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(records, app.now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	cmd.Flags().Int64Var(&userID, "user", 1, "User whose runs are listed")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored planning run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := resolveRecord(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRecord(rec))
			return nil
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored planning run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := resolveRecord(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if err := app.Records.Delete(cmd.Context(), rec.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", rec.ID)
			return nil
		},
	}
}

// resolveRecord loads a record by full id or by a unique prefix of the id
// among the default user's recent runs.
func resolveRecord(ctx context.Context, app *App, input string) (*domain.PlannerRecord, error) {
	if app.Records == nil {
		return nil, errNoRecords
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("record id is required")
	}
	if rec, err := app.Records.Get(ctx, input); err == nil {
		return rec, nil
	}

	recent, err := app.Records.ListRecent(ctx, app.config().Defaults.UserID, resolveScanLimit)
	if err != nil {
		return nil, err
	}
	var match *domain.PlannerRecord
	for _, r := range recent {
		if !strings.HasPrefix(r.ID, input) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("id prefix %q is ambiguous", input)
		}
		match = r
	}
	if match == nil {
		return nil, fmt.Errorf("planner record %q not found", input)
	}
	return app.Records.Get(ctx, match.ID)
}
