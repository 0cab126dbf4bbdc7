package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/dayplan/internal/contract"
	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/intelligence"
	"github.com/alexanderramin/dayplan/internal/scheduler"
	"github.com/google/uuid"
)

type plannerService struct {
	structure intelligence.StructureAnalyzer
	chains    intelligence.ChainGenerator
	records   RecordService
	observer  UseCaseObserver
	now       func() time.Time
}

// NewPlannerService wires the pipeline. records may be nil, in which case
// runs are never persisted.
func NewPlannerService(
	structure intelligence.StructureAnalyzer,
	chains intelligence.ChainGenerator,
	records RecordService,
	observers ...UseCaseObserver,
) PlannerService {
	return &plannerService{
		structure: structure,
		chains:    chains,
		records:   records,
		observer:  useCaseObserverOrNoop(observers),
		now:       time.Now,
	}
}

func (s *plannerService) Run(ctx context.Context, req contract.PlanRequest) (resp *contract.PlanResponse, err error) {
	startedAt := s.now()
	runID := uuid.NewString()
	fields := map[string]any{
		"run_id": runID,
		"tasks":  len(req.Arrangement.Schedules),
	}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "plan",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if verr := req.Arrangement.Validate(); verr != nil {
		return nil, &contract.PlanError{Code: contract.PlanErrInvalidRequest, Message: verr.Error(), Err: verr}
	}
	weights := domain.DefaultWeights()
	if req.Weights != nil {
		weights = req.Weights.Clone()
	}

	state, err := s.execute(ctx, runID, NewPipelineState(req.Arrangement, weights))
	if err != nil {
		return nil, err
	}

	fields["fill_rate"] = state.FillRate
	fields["structure_fallback"] = state.StructureFallback
	fields["chain_fallback"] = state.ChainFallback

	resp = &contract.PlanResponse{
		RunID:     runID,
		Results:   state.FinalResults,
		FillRate:  state.FillRate,
		Warnings:  state.Warnings,
		Generator: contract.GeneratorStatus{
			StructureAttempts: state.StructureAttempts,
			StructureFallback: state.StructureFallback,
			ChainAttempts:     state.ChainAttempts,
			ChainFallback:     state.ChainFallback,
		},
	}
	if state.SelectedChainID != nil {
		resp.SelectedChainID = domain.Ptr(*state.SelectedChainID)
	}
	if req.Explain {
		resp.Scores = state.ChainScores
	}

	if cerr := ctx.Err(); cerr != nil {
		return nil, cancelled(cerr)
	}
	if !req.DryRun && s.records != nil {
		rec := BuildRecord(state, runID, startedAt)
		if serr := s.persist(ctx, rec); serr != nil {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("planner record not saved: %v", serr))
		} else {
			resp.RecordID = rec.ID
		}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	resp.ProcessTime = time.Since(startedAt)
	return resp, nil
}

// execute runs the stages in order. Only cancellation ends it early.
func (s *plannerService) execute(ctx context.Context, runID string, state PipelineState) (PipelineState, error) {
	req := state.Request
	stage := func(name string, began time.Time, attempts int, fallback bool) {
		s.observer.ObserveStage(ctx, StageEvent{
			RunID: runID, Stage: name, Duration: time.Since(began), Attempts: attempts, Fallback: fallback,
		})
	}

	began := time.Now()
	sessions, err := scheduler.CalculateFreeSessions(req.StartArrange, req.User.DayEndTime, state.FixedTasks)
	if err != nil {
		return state, &contract.PlanError{Code: contract.PlanErrInvalidRequest, Message: err.Error(), Err: err}
	}
	state = state.WithSessions(sessions)
	stage("sessions", began, 0, false)

	began = time.Now()
	structure, err := s.structure.Analyze(ctx, state.FlexTasks, req.Schedules)
	if err != nil {
		return state, cancelled(err)
	}
	state = state.WithStructure(structure)
	stage("structure", began, structure.Attempts, structure.Fallback)

	began = time.Now()
	state = state.WithFeatures(scheduler.ScoreFeatures(state.TaskFeatures, state.FlexTasks, state.Weights))
	stage("importance", began, 0, false)

	began = time.Now()
	capacity := state.Capacity()
	chains, err := s.chains.Generate(ctx, intelligence.ChainInput{
		Features: state.TaskFeatures,
		Capacity: capacity,
		Focus:    req.User.FocusTimeZone,
		Fixed:    state.FixedTasks,
	})
	if err != nil {
		return state, cancelled(err)
	}
	state = state.WithChains(chains)
	stage("chains", began, chains.Attempts, chains.Fallback)

	began = time.Now()
	state = state.WithJudgement(scheduler.JudgeChains(
		state.ChainCandidates, state.TaskFeatures, capacity, state.Weights, req.User.FocusTimeZone))
	stage("judge", began, 0, false)

	if err := ctx.Err(); err != nil {
		return state, cancelled(err)
	}

	began = time.Now()
	out := scheduler.AssignTimes(scheduler.AssignInput{
		UserID:   req.User.UserID,
		Sessions: state.FreeSessions,
		Features: state.TaskFeatures,
		Chain:    state.SelectedChain(),
	})
	state = state.WithResults(composeResults(state, out.Results), out.FillRate)
	stage("assign", began, 0, false)
	return state, nil
}

// composeResults adds the tasks the assigner never saw: FLEX tasks dropped
// as unintelligible become NOT_ASSIGNED, FIXED tasks keep their own times.
func composeResults(state PipelineState, flex []domain.AssignmentResult) []domain.AssignmentResult {
	userID := state.Request.User.UserID
	results := make([]domain.AssignmentResult, 0, len(flex)+len(state.FixedTasks))
	results = append(results, flex...)

	seen := make(map[int64]bool, len(flex))
	for _, r := range flex {
		seen[r.TaskID] = true
	}
	for _, t := range state.FlexTasks {
		if seen[t.TaskID] {
			continue
		}
		results = append(results, domain.AssignmentResult{
			UserID:           userID,
			TaskID:           t.TaskID,
			DayPlanID:        t.DayPlanID,
			Title:            t.Title,
			Type:             t.Type,
			AssignedBy:       domain.AssignedByAI,
			AssignmentStatus: domain.StatusNotAssigned,
		})
	}
	for _, t := range state.FixedTasks {
		results = append(results, domain.AssignmentResult{
			UserID:           userID,
			TaskID:           t.TaskID,
			DayPlanID:        t.DayPlanID,
			Title:            t.Title,
			Type:             t.Type,
			AssignedBy:       domain.AssignedByUser,
			AssignmentStatus: domain.StatusAssigned,
			StartAt:          domain.Ptr(*t.StartAt),
			EndAt:            domain.Ptr(*t.EndAt),
		})
	}
	scheduler.SortResults(results)
	return results
}

func (s *plannerService) persist(ctx context.Context, rec *domain.PlannerRecord) (err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "save-record",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"record_id": rec.ID, "rows": len(rec.Tasks)},
		})
	}()
	return s.records.Save(ctx, rec)
}

func cancelled(err error) error {
	var pe *contract.PlanError
	if errors.As(err, &pe) {
		return err
	}
	return &contract.PlanError{Code: contract.PlanErrCancelled, Message: "planning cancelled", Err: err}
}
