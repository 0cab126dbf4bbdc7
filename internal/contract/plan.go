package contract

import (
	"time"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/scheduler"
)

// PlanRequest is the input of one planning run.
type PlanRequest struct {
	Arrangement domain.ArrangementRequest
	// Weights overrides the default weights when set.
	Weights *domain.WeightParams
	// DryRun skips persisting the run.
	DryRun bool
	// Explain asks for the chain score breakdown in the response.
	Explain bool
}

func NewPlanRequest(arrangement domain.ArrangementRequest) PlanRequest {
	return PlanRequest{Arrangement: arrangement}
}

// GeneratorStatus reports how the two generator-backed stages ran.
type GeneratorStatus struct {
	StructureAttempts int  `json:"structureAttempts"`
	StructureFallback bool `json:"structureFallback"`
	ChainAttempts     int  `json:"chainAttempts"`
	ChainFallback     bool `json:"chainFallback"`
}

// PlanResponse is the outcome of a planning run. Results covers every
// submitted task except container parents, sorted by start time.
type PlanResponse struct {
	RunID           string                    `json:"runId"`
	Results         []domain.AssignmentResult `json:"results"`
	FillRate        float64                   `json:"fillRate"`
	Warnings        []string                  `json:"warnings"`
	SelectedChainID *string                   `json:"selectedChainId"`
	ProcessTime     time.Duration             `json:"processTimeNs"`
	Generator       GeneratorStatus           `json:"generator"`
	Scores          []scheduler.ChainScore    `json:"scores,omitempty"`
	// RecordID is set when the run was persisted.
	RecordID string `json:"recordId,omitempty"`
}

// Degraded reports a GENERATOR_UNAVAILABLE error when either generator
// stage fell back. Scheduling still completed; the error is informational.
func (r *PlanResponse) Degraded() *PlanError {
	if !r.Generator.StructureFallback && !r.Generator.ChainFallback {
		return nil
	}
	return &PlanError{
		Code:    PlanErrGeneratorUnavailable,
		Message: "generator unavailable, fallback heuristics were used",
	}
}

type PlanErrorCode string

const (
	PlanErrInvalidRequest       PlanErrorCode = "INVALID_REQUEST"
	PlanErrGeneratorUnavailable PlanErrorCode = "GENERATOR_UNAVAILABLE"
	PlanErrCancelled            PlanErrorCode = "CANCELLED"
	PlanErrInternal             PlanErrorCode = "INTERNAL_ERROR"
)

// PlanError is returned by a planning run that could not complete.
type PlanError struct {
	Code    PlanErrorCode
	Message string
	Err     error
}

func (e *PlanError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *PlanError) Unwrap() error {
	return e.Err
}
