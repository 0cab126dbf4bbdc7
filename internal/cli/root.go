package cli

import (
	"errors"
	"io"
	"time"

	"github.com/alexanderramin/dayplan/internal/config"
	"github.com/alexanderramin/dayplan/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and settings used by CLI commands.
type App struct {
	Planner service.PlannerService
	// Records is nil when the planner store could not be opened; history
	// commands then fail and plan runs are not persisted.
	Records service.RecordService
	Config  *config.Config
	Keys    KeyStore

	// Bootstrap, when set, wires the fields above before any command runs.
	// It receives the --config flag value.
	Bootstrap func(app *App, configPath string) error

	IsInteractive func() bool
	Now           func() time.Time

	closers []io.Closer
}

// AddCloser registers a resource released after the command finishes.
func (a *App) AddCloser(c io.Closer) {
	a.closers = append(a.closers, c)
}

// Close releases resources in reverse registration order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) config() *config.Config {
	if a.Config == nil {
		cfg := config.Default()
		a.Config = &cfg
	}
	return a.Config
}

// NewRootCmd creates the top-level "dayplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "dayplan",
		Short:         "Arrange a day of fixed and flexible tasks into a timeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Bootstrap == nil {
				return nil
			}
			return app.Bootstrap(app, configPath)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file merged over the user and project config")

	root.AddCommand(
		newPlanCmd(app),
		newHistoryCmd(app),
		newShowCmd(app),
		newDeleteCmd(app),
		newNewCmd(app),
		newKeyCmd(app),
		newConfigCmd(app),
	)
	return root
}
