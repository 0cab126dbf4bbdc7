package service

import (
	"time"

	"github.com/alexanderramin/dayplan/internal/domain"
)

// weightsVersion identifies the weight schema stored with each record.
const weightsVersion = 1

// BuildRecord summarises a finished run. Split tasks are stored as one
// parent row followed by one row per chunk.
func BuildRecord(state PipelineState, id string, createdAt time.Time) *domain.PlannerRecord {
	req := state.Request
	rec := &domain.PlannerRecord{
		ID:             id,
		UserID:         req.User.UserID,
		RecordType:     domain.RecordAIDraft,
		StartArrange:   req.StartArrange,
		DayEndTime:     req.User.DayEndTime,
		FocusTimeZone:  req.User.FocusTimeZone,
		FillRate:       state.FillRate,
		WeightsVersion: weightsVersion,
		Warnings:       append([]string(nil), state.Warnings...),
		CreatedAt:      createdAt.UTC(),
	}
	if state.SelectedChainID != nil {
		rec.SelectedChainID = domain.Ptr(*state.SelectedChainID)
	}
	if len(req.Schedules) > 0 {
		rec.DayPlanID = req.Schedules[0].DayPlanID
	}

	for _, r := range state.FinalResults {
		if r.Type == domain.TaskFlex {
			rec.TotalTasks++
			switch r.AssignmentStatus {
			case domain.StatusAssigned:
				rec.AssignedCount++
			case domain.StatusExcluded:
				rec.ExcludedCount++
			}
		}

		row := domain.RecordTask{
			TaskID:           r.TaskID,
			DayPlanID:        r.DayPlanID,
			Title:            r.Title,
			TaskType:         r.Type,
			AssignedBy:       r.AssignedBy,
			AssignmentStatus: r.AssignmentStatus,
			StartAt:          r.StartAt,
			EndAt:            r.EndAt,
			IsSplit:          len(r.Children) > 0,
		}
		if task, ok := domain.FindTask(req.Schedules, r.TaskID); ok {
			row.EstimatedTimeRange = task.EstimatedTimeRange
			row.FocusLevel = task.FocusLevel
			row.IsUrgent = task.IsUrgent
		}
		if f, ok := state.TaskFeatures[r.TaskID]; ok {
			row.Category = domain.Ptr(f.Category)
			row.CognitiveLoad = domain.Ptr(f.CognitiveLoad)
			row.GroupID = f.GroupID
			row.GroupLabel = f.GroupLabel
			row.OrderInGroup = f.OrderInGroup
			row.ImportanceScore = domain.Ptr(f.ImportanceScore)
			row.FatigueCost = domain.Ptr(f.FatigueCost)
			row.DurationAvgMin = domain.Ptr(f.DurationAvgMin)
			row.DurationPlanMin = domain.Ptr(f.DurationPlanMin)
			row.DurationMinChunk = domain.Ptr(f.DurationMinChunk)
			row.DurationMaxChunk = domain.Ptr(f.DurationMaxChunk)
		}
		rec.Tasks = append(rec.Tasks, row)

		for i, c := range r.Children {
			rec.Tasks = append(rec.Tasks, domain.RecordTask{
				TaskID:           r.TaskID,
				DayPlanID:        r.DayPlanID,
				Title:            c.Title,
				TaskType:         r.Type,
				AssignedBy:       r.AssignedBy,
				AssignmentStatus: r.AssignmentStatus,
				StartAt:          domain.Ptr(c.StartAt),
				EndAt:            domain.Ptr(c.EndAt),
				ChunkSeq:         domain.Ptr(i + 1),
			})
		}
	}
	return rec
}
