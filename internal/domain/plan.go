package domain

import "maps"

// FreeSession is a contiguous block of unscheduled time. Start and End are
// minutes since midnight; ZoneProfile always carries all four zones.
type FreeSession struct {
	Start       int
	End         int
	Duration    int
	ZoneProfile map[TimeZone]int
}

// TaskFeature is the working record for one FLEX task. Structural fields
// are filled by the structure analyzer, scoring fields by the scorer.
type TaskFeature struct {
	TaskID    int64
	DayPlanID int64
	Title     string
	Type      TaskType

	Category      Category
	CognitiveLoad CognitiveLoad
	GroupID       *string
	GroupLabel    *string
	OrderInGroup  *int

	ImportanceScore  float64
	FatigueCost      float64
	DurationAvgMin   int
	DurationPlanMin  int
	DurationMinChunk int
	DurationMaxChunk int
}

// ChainCandidate is one proposed distribution of tasks over time zones.
type ChainCandidate struct {
	ChainID        string
	TimeZoneQueues map[TimeZone][]int64
	RationaleTags  []string
}

// Clone returns a deep copy so callers can rewrite queues without touching
// the original candidate.
func (c ChainCandidate) Clone() ChainCandidate {
	queues := make(map[TimeZone][]int64, len(c.TimeZoneQueues))
	for tz, ids := range c.TimeZoneQueues {
		queues[tz] = append([]int64(nil), ids...)
	}
	return ChainCandidate{
		ChainID:        c.ChainID,
		TimeZoneQueues: queues,
		RationaleTags:  append([]string(nil), c.RationaleTags...),
	}
}

// HasTag reports whether the candidate carries the given rationale tag.
func (c ChainCandidate) HasTag(tag string) bool {
	for _, t := range c.RationaleTags {
		if t == tag {
			return true
		}
	}
	return false
}

// CloneFeatures copies a feature map. TaskFeature holds only pointer fields
// that are never written through, so a shallow copy per entry is enough.
func CloneFeatures(in map[int64]TaskFeature) map[int64]TaskFeature {
	if in == nil {
		return nil
	}
	return maps.Clone(in)
}

// SubTaskResult is one chunk of a task that was split across sessions.
type SubTaskResult struct {
	Title   string `json:"title"`
	StartAt string `json:"startAt"`
	EndAt   string `json:"endAt"`
}

// AssignmentResult is the final placement of one task.
type AssignmentResult struct {
	UserID           int64            `json:"userId"`
	TaskID           int64            `json:"taskId"`
	DayPlanID        int64            `json:"dayPlanId"`
	Title            string           `json:"title"`
	Type             TaskType         `json:"type"`
	AssignedBy       AssignedBy       `json:"assignedBy"`
	AssignmentStatus AssignmentStatus `json:"assignmentStatus"`
	StartAt          *string          `json:"startAt"`
	EndAt            *string          `json:"endAt"`
	Children         []SubTaskResult  `json:"children,omitempty"`
}
