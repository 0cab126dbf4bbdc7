package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/dayplan/internal/db"
	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/repository"
)

type recordService struct {
	records repository.PlannerRecordRepo
	uow     db.UnitOfWork
}

// NewRecordService creates a RecordService. Saves run inside uow so a record
// is never stored without its task rows.
func NewRecordService(records repository.PlannerRecordRepo, uow db.UnitOfWork) RecordService {
	return &recordService{records: records, uow: uow}
}

func (s *recordService) Save(ctx context.Context, r *domain.PlannerRecord) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLitePlannerRecordRepo(tx).Save(ctx, r); err != nil {
			return fmt.Errorf("saving planner record %s: %w", r.ID, err)
		}
		return nil
	})
}

func (s *recordService) Get(ctx context.Context, id string) (*domain.PlannerRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *recordService) ListRecent(ctx context.Context, userID int64, limit int) ([]*domain.PlannerRecord, error) {
	return s.records.ListRecent(ctx, userID, limit)
}

func (s *recordService) Delete(ctx context.Context, id string) error {
	return s.records.Delete(ctx, id)
}
