package service

import (
	"maps"
	"slices"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/intelligence"
	"github.com/alexanderramin/dayplan/internal/scheduler"
)

// PipelineState is threaded through the stages of one run. It is a value:
// every With* method returns a copy whose replaced collections share no
// backing storage with the receiver.
type PipelineState struct {
	Request domain.ArrangementRequest
	Weights domain.WeightParams

	FixedTasks   []domain.ScheduleItem
	FlexTasks    []domain.ScheduleItem
	FreeSessions []domain.FreeSession
	TaskFeatures map[int64]domain.TaskFeature

	ChainCandidates []domain.ChainCandidate
	ChainScores     []scheduler.ChainScore
	SelectedChainID *string

	FinalResults []domain.AssignmentResult
	FillRate     float64

	RetryStructure    int
	RetryChain        int
	StructureAttempts int
	ChainAttempts     int
	StructureFallback bool
	ChainFallback     bool
	Warnings          []string
}

// NewPipelineState splits the request into FIXED tasks and schedulable FLEX
// tasks. Container parents are left out of FlexTasks.
func NewPipelineState(req domain.ArrangementRequest, w domain.WeightParams) PipelineState {
	fixed, _ := domain.SplitByType(req.Schedules)
	return PipelineState{
		Request:      req,
		Weights:      w.Clone(),
		FixedTasks:   fixed,
		FlexTasks:    domain.SchedulableFlex(req.Schedules),
		TaskFeatures: map[int64]domain.TaskFeature{},
	}
}

func (s PipelineState) WithSessions(sessions []domain.FreeSession) PipelineState {
	s.FreeSessions = make([]domain.FreeSession, len(sessions))
	for i, fs := range sessions {
		fs.ZoneProfile = maps.Clone(fs.ZoneProfile)
		s.FreeSessions[i] = fs
	}
	return s
}

func (s PipelineState) WithFeatures(features map[int64]domain.TaskFeature) PipelineState {
	s.TaskFeatures = domain.CloneFeatures(features)
	if s.TaskFeatures == nil {
		s.TaskFeatures = map[int64]domain.TaskFeature{}
	}
	return s
}

func (s PipelineState) WithStructure(r *intelligence.StructureResult) PipelineState {
	s = s.WithFeatures(r.Features)
	s.StructureAttempts = r.Attempts
	s.StructureFallback = r.Fallback
	s.RetryStructure = failedAttempts(r.Attempts, r.Fallback)
	return s.WithWarnings(r.Warnings...)
}

func (s PipelineState) WithChains(r *intelligence.ChainResult) PipelineState {
	s.ChainCandidates = cloneCandidates(r.Candidates)
	s.ChainAttempts = r.Attempts
	s.ChainFallback = r.Fallback
	s.RetryChain = failedAttempts(r.Attempts, r.Fallback)
	return s.WithWarnings(r.Warnings...)
}

// WithJudgement replaces the candidates with their closed versions and
// records the selection.
func (s PipelineState) WithJudgement(j scheduler.Judgement) PipelineState {
	s.ChainCandidates = cloneCandidates(j.Candidates)
	s.ChainScores = slices.Clone(j.Scores)
	s.SelectedChainID = nil
	if j.SelectedID != nil {
		s.SelectedChainID = domain.Ptr(*j.SelectedID)
	}
	return s
}

func (s PipelineState) WithResults(results []domain.AssignmentResult, fillRate float64) PipelineState {
	s.FinalResults = make([]domain.AssignmentResult, len(results))
	for i, r := range results {
		r.Children = slices.Clone(r.Children)
		s.FinalResults[i] = r
	}
	s.FillRate = fillRate
	return s
}

func (s PipelineState) WithWarnings(w ...string) PipelineState {
	s.Warnings = slices.Concat(s.Warnings, w)
	return s
}

// SelectedChain returns the selected candidate, or nil when none was.
func (s PipelineState) SelectedChain() *domain.ChainCandidate {
	if s.SelectedChainID == nil {
		return nil
	}
	for _, c := range s.ChainCandidates {
		if c.ChainID == *s.SelectedChainID {
			clone := c.Clone()
			return &clone
		}
	}
	return nil
}

// Capacity sums the free minutes per zone over all sessions.
func (s PipelineState) Capacity() map[domain.TimeZone]int {
	return scheduler.Capacity(s.FreeSessions)
}

func failedAttempts(attempts int, fallback bool) int {
	if fallback || attempts == 0 {
		return attempts
	}
	return attempts - 1
}

func cloneCandidates(in []domain.ChainCandidate) []domain.ChainCandidate {
	if in == nil {
		return nil
	}
	out := make([]domain.ChainCandidate, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
