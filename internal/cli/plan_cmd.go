package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/dayplan/internal/cli/formatter"
	"github.com/alexanderramin/dayplan/internal/contract"
	"github.com/alexanderramin/dayplan/internal/importer"
	"github.com/spf13/cobra"
)

const watchDebounce = 200 * time.Millisecond

type planOptions struct {
	file    string
	zone    zoneFlag
	explain bool
	dryRun  bool
	asJSON  bool
	watch   bool
}

func newPlanCmd(app *App) *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Arrange the tasks of a request file into a day plan",
		Long: `Reads a JSON or YAML request, runs the planning pipeline and prints the
resulting timeline. Runs are saved to history unless --dry-run is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Planner == nil {
				return errors.New("planner is not configured")
			}
			ctx := cmd.Context()
			if !opts.watch {
				return runPlan(ctx, app, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
			}
			return watchFile(ctx, opts.file, watchDebounce,
				func() error {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("── "+app.now().Format("15:04:05")+" "+opts.file))
					return runPlan(ctx, app, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
				},
				func(err error) {
					fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleRed.Render("Error: ")+err.Error())
				},
			)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Request file (.json, .yaml or .yml)")
	cmd.Flags().Var(&opts.zone, "zone", "Override the focus time zone (morning, afternoon, evening, night)")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Show the score breakdown of every chain candidate")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Do not save the run to history")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the response as JSON")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-plan whenever the request file changes")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runPlan(ctx context.Context, app *App, out, errOut io.Writer, opts planOptions) error {
	req, err := importer.LoadRequest(opts.file)
	if err != nil {
		return err
	}
	cfg := app.config()
	cfg.Defaults.Apply(req)
	if opts.zone.isSet() {
		req.User.FocusTimeZone = opts.zone.zone
	}
	if errs := importer.ValidateRequest(req); len(errs) > 0 {
		return validationError(opts.file, errs)
	}

	planReq := contract.NewPlanRequest(*req)
	weights := cfg.Weights.Clone()
	planReq.Weights = &weights
	planReq.DryRun = opts.dryRun
	planReq.Explain = opts.explain

	var resp *contract.PlanResponse
	run := func(ctx context.Context) error {
		var err error
		resp, err = app.Planner.Run(ctx, planReq)
		return err
	}
	if app.interactive() && !opts.asJSON {
		err = formatter.RunWithSpinner(ctx, errOut, "Planning your day", run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Fprint(out, formatter.FormatPlan(resp))
	if opts.explain {
		fmt.Fprint(out, "\n"+formatter.FormatScores(resp.Scores, resp.SelectedChainID))
	}
	return nil
}

func validationError(file string, errs []error) error {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = "  - " + e.Error()
	}
	return fmt.Errorf("invalid request %s:\n%s", file, strings.Join(lines, "\n"))
}
