package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/dayplan/internal/cli"
	"github.com/alexanderramin/dayplan/internal/config"
	"github.com/alexanderramin/dayplan/internal/db"
	"github.com/alexanderramin/dayplan/internal/intelligence"
	"github.com/alexanderramin/dayplan/internal/llm"
	"github.com/alexanderramin/dayplan/internal/repository"
	"github.com/alexanderramin/dayplan/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Keys:      cli.NewKeyringStore(),
		Bootstrap: bootstrap,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
	}
	defer app.Close()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// bootstrap loads the config, opens the planner store and wires the
// pipeline. A store that cannot be opened disables history but not planning.
func bootstrap(app *cli.App, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	app.Config = cfg

	logger, logCloser := cli.NewLogger(cfg.Log, os.Stderr)
	app.AddCloser(logCloser)
	observer := service.NewSlogUseCaseObserver(logger)

	var records service.RecordService
	database, err := db.OpenDB(cfg.DBPath())
	if err != nil {
		logger.Warn("planner store unavailable", "path", cfg.DBPath(), "error", err)
	} else {
		app.AddCloser(database)
		records = service.NewRecordService(
			repository.NewSQLitePlannerRecordRepo(database),
			db.NewSQLiteUnitOfWork(database),
		)
	}
	app.Records = records

	llmCfg := llm.LoadConfig()
	var client llm.LLMClient
	if llmCfg.Enabled {
		if llmCfg.Provider == llm.ProviderAnthropic {
			llmCfg.APIKey = cli.ResolveAPIKey(llmCfg.APIKey, app.Keys)
		}
		var callObserver llm.Observer = llm.NoopObserver{}
		if llmCfg.LogCalls {
			callObserver = llm.NewSlogObserver(logger)
		}
		client, err = llm.NewClient(llmCfg, callObserver)
		if err != nil {
			logger.Warn("generator disabled", "error", err)
			client = nil
		}
	}

	policy := llmCfg.RetryPolicy()
	app.Planner = service.NewPlannerService(
		intelligence.NewStructureService(client, policy),
		intelligence.NewChainService(client, policy),
		records,
		observer,
	)
	slog.SetDefault(logger)
	return nil
}
