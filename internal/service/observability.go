package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"
)

// UseCaseEvent describes one finished service call such as a planner run or
// a record save.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
}

// StageEvent describes one pipeline stage inside a planner run.
type StageEvent struct {
	RunID    string
	Stage    string
	Duration time.Duration
	// Attempts is the number of generator calls the stage made, zero for
	// deterministic stages.
	Attempts int
	Fallback bool
}

// UseCaseObserver receives planner telemetry.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
	ObserveStage(ctx context.Context, event StageEvent)
}

// NoopUseCaseObserver drops everything.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}
func (NoopUseCaseObserver) ObserveStage(context.Context, StageEvent)     {}

type slogUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes events as logfmt text to w, stages included.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return NewSlogUseCaseObserver(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// NewSlogUseCaseObserver writes events to logger. Use cases log at info,
// or error when they failed; stages log at debug.
func NewSlogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &slogUseCaseObserver{logger: logger}
}

func (o *slogUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := []any{
		"use_case", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	}
	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, k, event.Fields[k])
	}

	if event.Err != nil {
		o.logger.ErrorContext(ctx, "service_use_case", append(attrs, "error", event.Err.Error())...)
		return
	}
	o.logger.InfoContext(ctx, "service_use_case", attrs...)
}

func (o *slogUseCaseObserver) ObserveStage(ctx context.Context, event StageEvent) {
	attrs := []any{
		"run_id", event.RunID,
		"stage", event.Stage,
		"duration_ms", event.Duration.Milliseconds(),
	}
	if event.Attempts > 0 {
		attrs = append(attrs, "attempts", event.Attempts)
	}
	if event.Fallback {
		attrs = append(attrs, "fallback", true)
	}
	o.logger.DebugContext(ctx, "planner_stage", attrs...)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}
