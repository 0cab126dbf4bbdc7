package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/alexanderramin/dayplan/internal/importer"
	"github.com/spf13/cobra"
)

func newNewCmd(app *App) *cobra.Command {
	var out string
	var force bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Build a request file with an interactive wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errors.New("new needs an interactive terminal; write the request file by hand instead")
			}
			if _, err := os.Stat(out); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", out)
			}

			defaults := app.config().Defaults
			draft := dayDraft{
				Focus:        string(defaults.FocusTimeZone),
				StartArrange: defaults.StartArrange,
				DayEnd:       defaults.DayEndTime,
			}
			if err := dayForm(&draft).Run(); err != nil {
				return err
			}
			for more := true; more; {
				var t taskDraft
				more = false
				if err := taskForm(&t, &more).Run(); err != nil {
					return err
				}
				draft.Tasks = append(draft.Tasks, t)
			}

			req, err := draft.build(defaults.UserID)
			if err != nil {
				return err
			}
			if errs := importer.ValidateRequest(req); len(errs) > 0 {
				return validationError(out, errs)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := importer.WriteRequest(f, req, importer.FormatFromPath(out)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d tasks. Run: dayplan plan -f %s\n", out, len(req.Schedules), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "today.yaml", "Request file to write")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
