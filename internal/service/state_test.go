package service

import (
	"testing"
	"time"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/intelligence"
	"github.com/alexanderramin/dayplan/internal/scheduler"
	"github.com/alexanderramin/dayplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineState_SplitsTasks(t *testing.T) {
	req := testutil.NewRequest("09:00", "18:00", domain.ZoneAfternoon,
		testutil.NewFixedTask(1, "Lunch", "12:00", "13:00"),
		testutil.NewFlexTask(2, "Project"),
		testutil.NewFlexTask(3, "Step", testutil.WithParent(2)),
	)
	s := NewPipelineState(req, domain.DefaultWeights())

	require.Len(t, s.FixedTasks, 1)
	require.Len(t, s.FlexTasks, 1)
	assert.Equal(t, int64(3), s.FlexTasks[0].TaskID)
	assert.NotNil(t, s.TaskFeatures)
}

func TestPipelineState_WithMethodsDoNotAlias(t *testing.T) {
	base := NewPipelineState(morningDay(), domain.DefaultWeights())
	sessions, err := scheduler.CalculateFreeSessions("09:00", "12:00", base.FixedTasks)
	require.NoError(t, err)

	s1 := base.WithSessions(sessions)
	sessions[0].ZoneProfile[domain.ZoneMorning] = 999
	assert.Equal(t, 60, s1.FreeSessions[0].ZoneProfile[domain.ZoneMorning])

	features := map[int64]domain.TaskFeature{1: {TaskID: 1, Category: domain.CategoryWork}}
	s2 := s1.WithFeatures(features)
	features[2] = domain.TaskFeature{TaskID: 2}
	assert.Len(t, s2.TaskFeatures, 1)
	assert.Empty(t, s1.TaskFeatures, "earlier state keeps its own map")

	s3 := s2.WithWarnings("a")
	s4 := s3.WithWarnings("b")
	s5 := s3.WithWarnings("c")
	assert.Equal(t, []string{"a"}, s3.Warnings)
	assert.Equal(t, []string{"a", "b"}, s4.Warnings)
	assert.Equal(t, []string{"a", "c"}, s5.Warnings)
}

func TestPipelineState_RetryCounters(t *testing.T) {
	s := NewPipelineState(morningDay(), domain.DefaultWeights())

	s = s.WithStructure(&intelligence.StructureResult{Features: map[int64]domain.TaskFeature{}, Attempts: 3})
	assert.Equal(t, 2, s.RetryStructure)
	assert.False(t, s.StructureFallback)

	s = s.WithChains(&intelligence.ChainResult{Attempts: 4, Fallback: true, Warnings: []string{"fallback"}})
	assert.Equal(t, 4, s.RetryChain)
	assert.True(t, s.ChainFallback)
	assert.Equal(t, []string{"fallback"}, s.Warnings)
}

func TestPipelineState_SelectedChain(t *testing.T) {
	s := NewPipelineState(morningDay(), domain.DefaultWeights())
	assert.Nil(t, s.SelectedChain())

	s = s.WithJudgement(scheduler.Judgement{
		Candidates: []domain.ChainCandidate{
			{ChainID: "C1", TimeZoneQueues: map[domain.TimeZone][]int64{domain.ZoneMorning: {1}}},
			{ChainID: "C2", TimeZoneQueues: map[domain.TimeZone][]int64{domain.ZoneMorning: {3}}},
		},
		SelectedID: domain.Ptr("C2"),
	})
	chain := s.SelectedChain()
	require.NotNil(t, chain)
	assert.Equal(t, []int64{3}, chain.TimeZoneQueues[domain.ZoneMorning])

	chain.TimeZoneQueues[domain.ZoneMorning][0] = 42
	assert.Equal(t, int64(3), s.ChainCandidates[1].TimeZoneQueues[domain.ZoneMorning][0])
}

func TestBuildRecord_SplitTaskRows(t *testing.T) {
	req := testutil.NewRequest("09:00", "12:00", domain.ZoneMorning,
		testutil.NewFlexTask(1, "Report", testutil.WithEstimate(domain.RangeHour1To2), testutil.WithUrgent(true)),
		testutil.NewFlexTask(2, "Extra"),
		testutil.NewFixedTask(3, "Call", "10:00", "10:20"),
	)
	s := NewPipelineState(req, domain.DefaultWeights()).
		WithFeatures(map[int64]domain.TaskFeature{
			1: {TaskID: 1, Category: domain.CategoryWork, CognitiveLoad: domain.LoadHigh, DurationPlanMin: 120},
			2: {TaskID: 2, Category: domain.CategoryOther, CognitiveLoad: domain.LoadMed},
		}).
		WithResults([]domain.AssignmentResult{
			{TaskID: 1, DayPlanID: 1, Title: "Report", Type: domain.TaskFlex, AssignedBy: domain.AssignedByAI,
				AssignmentStatus: domain.StatusAssigned, Children: []domain.SubTaskResult{
					{Title: "Report - 1", StartAt: "09:00", EndAt: "10:00"},
					{Title: "Report - 2", StartAt: "10:30", EndAt: "11:30"},
				}},
			{TaskID: 3, DayPlanID: 1, Title: "Call", Type: domain.TaskFixed, AssignedBy: domain.AssignedByUser,
				AssignmentStatus: domain.StatusAssigned, StartAt: domain.Ptr("10:00"), EndAt: domain.Ptr("10:20")},
			{TaskID: 2, DayPlanID: 1, Title: "Extra", Type: domain.TaskFlex, AssignedBy: domain.AssignedByAI,
				AssignmentStatus: domain.StatusExcluded},
		}, 0.5)

	created := time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC)
	rec := BuildRecord(s, "run-1", created)

	assert.Equal(t, "run-1", rec.ID)
	assert.Equal(t, domain.RecordAIDraft, rec.RecordType)
	assert.Equal(t, 2, rec.TotalTasks)
	assert.Equal(t, 1, rec.AssignedCount)
	assert.Equal(t, 1, rec.ExcludedCount)
	assert.Equal(t, 0.5, rec.FillRate)
	assert.Equal(t, created, rec.CreatedAt)

	require.Len(t, rec.Tasks, 5)
	parent := rec.Tasks[0]
	assert.True(t, parent.IsSplit)
	assert.Equal(t, domain.RangeHour1To2, *parent.EstimatedTimeRange)
	assert.True(t, *parent.IsUrgent)
	assert.Equal(t, 120, *parent.DurationPlanMin)
	assert.Equal(t, 1, *rec.Tasks[1].ChunkSeq)
	assert.Equal(t, "10:30", *rec.Tasks[2].StartAt)
	assert.Equal(t, 2, *rec.Tasks[2].ChunkSeq)
	assert.Nil(t, rec.Tasks[3].Category, "FIXED rows carry no features")
}
