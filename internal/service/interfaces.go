package service

import (
	"context"

	"github.com/alexanderramin/dayplan/internal/contract"
	"github.com/alexanderramin/dayplan/internal/domain"
)

// PlannerService runs the scheduling pipeline for one day.
type PlannerService interface {
	// Run validates the request and returns a complete result set. Generator
	// failures degrade to fallbacks and warnings; only an invalid request or
	// a cancelled ctx produce an error, always a *contract.PlanError.
	Run(ctx context.Context, req contract.PlanRequest) (*contract.PlanResponse, error)
}

// RecordService stores and reads past planning runs.
type RecordService interface {
	Save(ctx context.Context, r *domain.PlannerRecord) error
	Get(ctx context.Context, id string) (*domain.PlannerRecord, error)
	ListRecent(ctx context.Context, userID int64, limit int) ([]*domain.PlannerRecord, error)
	Delete(ctx context.Context, id string) error
}
