package scheduler

import (
	"sort"

	"github.com/alexanderramin/dayplan/internal/domain"
)

// ByImportance returns the features ordered by the canonical rules:
// 1. Importance: higher first
// 2. Task ID: ascending
func ByImportance(features map[int64]domain.TaskFeature) []domain.TaskFeature {
	out := make([]domain.TaskFeature, 0, len(features))
	for _, f := range features {
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ImportanceScore != b.ImportanceScore {
			return a.ImportanceScore > b.ImportanceScore
		}
		return a.TaskID < b.TaskID
	})
	return out
}

// unscheduledKey sorts results without a start after every real clock time.
const unscheduledKey = "99:99"

// SortResults orders results by start time. Results without a start
// (excluded or split parents) go last, keeping their relative order.
// Split parents sort by their first chunk.
func SortResults(results []domain.AssignmentResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return resultSortKey(results[i]) < resultSortKey(results[j])
	})
}

func resultSortKey(r domain.AssignmentResult) string {
	if r.StartAt != nil {
		return padClock(*r.StartAt)
	}
	if len(r.Children) > 0 {
		return padClock(r.Children[0].StartAt)
	}
	return unscheduledKey
}

// padClock makes "9:05" compare correctly against "10:00".
func padClock(s string) string {
	if len(s) == 4 {
		return "0" + s
	}
	return s
}
