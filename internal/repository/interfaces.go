package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/dayplan/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// PlannerRecordRepo stores the outcome of planning runs.
type PlannerRecordRepo interface {
	// Save writes the record and all of its task rows atomically.
	Save(ctx context.Context, r *domain.PlannerRecord) error
	GetByID(ctx context.Context, id string) (*domain.PlannerRecord, error)
	// ListRecent returns the newest records for a user without task rows.
	ListRecent(ctx context.Context, userID int64, limit int) ([]*domain.PlannerRecord, error)
	Delete(ctx context.Context, id string) error
}
