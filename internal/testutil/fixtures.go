package testutil

import (
	"time"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/google/uuid"
)

// TaskOption customises a ScheduleItem fixture.
type TaskOption func(*domain.ScheduleItem)

func WithEstimate(r domain.EstimatedTimeRange) TaskOption {
	return func(t *domain.ScheduleItem) { t.EstimatedTimeRange = &r }
}

func WithFocusLevel(level int) TaskOption {
	return func(t *domain.ScheduleItem) { t.FocusLevel = &level }
}

func WithUrgent(urgent bool) TaskOption {
	return func(t *domain.ScheduleItem) { t.IsUrgent = &urgent }
}

func WithParent(id int64) TaskOption {
	return func(t *domain.ScheduleItem) { t.ParentScheduleID = &id }
}

// NewFlexTask creates a FLEX task on day plan 1.
func NewFlexTask(id int64, title string, opts ...TaskOption) domain.ScheduleItem {
	t := domain.ScheduleItem{TaskID: id, DayPlanID: 1, Title: title, Type: domain.TaskFlex}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewFixedTask creates a FIXED task occupying start..end.
func NewFixedTask(id int64, title, start, end string) domain.ScheduleItem {
	return domain.ScheduleItem{
		TaskID:    id,
		DayPlanID: 1,
		Title:     title,
		Type:      domain.TaskFixed,
		StartAt:   &start,
		EndAt:     &end,
	}
}

// NewRequest creates a request for user 1 with the given window.
func NewRequest(start, dayEnd string, focus domain.TimeZone, tasks ...domain.ScheduleItem) domain.ArrangementRequest {
	return domain.ArrangementRequest{
		User:         domain.UserInfo{UserID: 1, FocusTimeZone: focus, DayEndTime: dayEnd},
		StartArrange: start,
		Schedules:    tasks,
	}
}

// RecordOption customises a PlannerRecord fixture.
type RecordOption func(*domain.PlannerRecord)

func WithCreatedAt(t time.Time) RecordOption {
	return func(r *domain.PlannerRecord) { r.CreatedAt = t }
}

func WithRecordTasks(tasks ...domain.RecordTask) RecordOption {
	return func(r *domain.PlannerRecord) { r.Tasks = tasks }
}

// NewTestRecord creates an AI draft record for userID with a fresh id.
func NewTestRecord(userID int64, opts ...RecordOption) *domain.PlannerRecord {
	r := &domain.PlannerRecord{
		ID:             uuid.New().String(),
		UserID:         userID,
		DayPlanID:      1,
		RecordType:     domain.RecordAIDraft,
		StartArrange:   "09:00",
		DayEndTime:     "23:00",
		FocusTimeZone:  domain.ZoneMorning,
		WeightsVersion: 1,
		CreatedAt:      time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
