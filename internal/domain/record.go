package domain

import "time"

// PlannerRecord is the stored summary of one planning run.
type PlannerRecord struct {
	ID              string
	UserID          int64
	DayPlanID       int64
	RecordType      RecordType
	StartArrange    string
	DayEndTime      string
	FocusTimeZone   TimeZone
	TotalTasks      int
	AssignedCount   int
	ExcludedCount   int
	FillRate        float64
	WeightsVersion  int
	SelectedChainID *string
	Warnings        []string
	CreatedAt       time.Time

	Tasks []RecordTask
}

// RecordTask is one stored row of a planner record. A split task is stored
// as a parent row with IsSplit set followed by one row per chunk carrying
// ChunkSeq.
type RecordTask struct {
	ID               int64
	RecordID         string
	TaskID           int64
	DayPlanID        int64
	Title            string
	TaskType         TaskType
	AssignedBy       AssignedBy
	AssignmentStatus AssignmentStatus
	StartAt          *string
	EndAt            *string

	EstimatedTimeRange *EstimatedTimeRange
	FocusLevel         *int
	IsUrgent           *bool

	Category      *Category
	CognitiveLoad *CognitiveLoad
	GroupID       *string
	GroupLabel    *string
	OrderInGroup  *int

	ImportanceScore  *float64
	FatigueCost      *float64
	DurationAvgMin   *int
	DurationPlanMin  *int
	DurationMinChunk *int
	DurationMaxChunk *int

	IsSplit  bool
	ChunkSeq *int
}
