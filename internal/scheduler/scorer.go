package scheduler

import (
	"github.com/alexanderramin/dayplan/internal/domain"
)

const defaultFocusLevel = 5

// DurationParams holds the minute values derived from an estimated range.
// Avg drives zone budgeting, Plan drives placement, MinChunk and MaxChunk
// bound split chunks.
type DurationParams struct {
	Avg      int
	Plan     int
	MinChunk int
	MaxChunk int
}

// DurationFor returns the duration parameters for a range. Unknown or
// missing ranges use the 30 to 60 minute values.
func DurationFor(r *domain.EstimatedTimeRange) DurationParams {
	if r == nil {
		return durationDefault
	}
	switch *r {
	case domain.RangeUnder30:
		return DurationParams{Avg: 30, Plan: 30, MinChunk: 30, MaxChunk: 40}
	case domain.RangeHour1To2:
		return DurationParams{Avg: 90, Plan: 120, MinChunk: 40, MaxChunk: 90}
	case domain.RangeHour2To4:
		return DurationParams{Avg: 180, Plan: 180, MinChunk: 60, MaxChunk: 120}
	case domain.RangeHourOver4:
		return DurationParams{Avg: 300, Plan: 300, MinChunk: 60, MaxChunk: 120}
	default:
		return durationDefault
	}
}

var durationDefault = DurationParams{Avg: 45, Plan: 60, MinChunk: 30, MaxChunk: 60}

// importanceFactor contributes one additive term to a task's importance.
type importanceFactor func(task domain.ScheduleItem, f domain.TaskFeature, w domain.WeightParams) float64

var importanceFactors = []importanceFactor{
	scoreFocus,
	scoreUrgency,
	scoreCategory,
}

func scoreFocus(task domain.ScheduleItem, _ domain.TaskFeature, w domain.WeightParams) float64 {
	return float64(domain.IntFromPtrWithDefault(defaultFocusLevel, task.FocusLevel)) * w.WFocus
}

func scoreUrgency(task domain.ScheduleItem, _ domain.TaskFeature, w domain.WeightParams) float64 {
	if domain.BoolFromPtrWithDefault(false, task.IsUrgent) {
		return w.WUrgent
	}
	return 0
}

func scoreCategory(_ domain.ScheduleItem, f domain.TaskFeature, w domain.WeightParams) float64 {
	return w.CategoryWeight(f.Category)
}

// Importance computes the importance score of a single task.
func Importance(task domain.ScheduleItem, f domain.TaskFeature, w domain.WeightParams) float64 {
	var score float64
	for _, factor := range importanceFactors {
		score += factor(task, f, w)
	}
	return score
}

// FatigueCost weighs the planned duration and the cognitive load tier.
func FatigueCost(planMin int, load domain.CognitiveLoad, w domain.WeightParams) float64 {
	return float64(planMin)*w.AlphaDuration + load.Value()*w.BetaLoad
}

// ScoreFeatures returns a new feature map with importance, fatigue and
// duration fields filled in. Features categorized as ERROR, and features
// without a matching flex task, are dropped. The input map is not modified.
func ScoreFeatures(features map[int64]domain.TaskFeature, flex []domain.ScheduleItem, w domain.WeightParams) map[int64]domain.TaskFeature {
	tasks := make(map[int64]domain.ScheduleItem, len(flex))
	for _, t := range flex {
		tasks[t.TaskID] = t
	}

	out := make(map[int64]domain.TaskFeature, len(features))
	for id, f := range features {
		task, ok := tasks[id]
		if !ok || f.Category == domain.CategoryError {
			continue
		}
		d := DurationFor(task.EstimatedTimeRange)
		f.ImportanceScore = Importance(task, f, w)
		f.FatigueCost = FatigueCost(d.Plan, f.CognitiveLoad, w)
		f.DurationAvgMin = d.Avg
		f.DurationPlanMin = d.Plan
		f.DurationMinChunk = d.MinChunk
		f.DurationMaxChunk = d.MaxChunk
		out[id] = f
	}
	return out
}
