package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/dayplan/internal/contract"
	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/intelligence"
	"github.com/alexanderramin/dayplan/internal/llm"
	"github.com/alexanderramin/dayplan/internal/repository"
	"github.com/alexanderramin/dayplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// taskClient answers each generator task with a fixed reply.
type taskClient struct {
	mu      sync.Mutex
	replies map[llm.TaskType]string
	errs    map[llm.TaskType]error
	calls   map[llm.TaskType]int
}

func (c *taskClient) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[llm.TaskType]int{}
	}
	c.calls[req.Task]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.errs[req.Task]; err != nil {
		return nil, err
	}
	return &llm.GenerateResponse{Text: c.replies[req.Task], Model: "stub"}, nil
}

func (c *taskClient) Available(context.Context) bool { return true }

func fastPolicy() llm.RetryPolicy {
	return llm.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func newPlanner(client llm.LLMClient, records RecordService, observers ...UseCaseObserver) PlannerService {
	return NewPlannerService(
		intelligence.NewStructureService(client, fastPolicy()),
		intelligence.NewChainService(client, fastPolicy()),
		records,
		observers...,
	)
}

// morningDay is 09:00-12:00 with a meeting at 10:00-10:30, a long task and
// a short one.
func morningDay() domain.ArrangementRequest {
	return testutil.NewRequest("09:00", "12:00", domain.ZoneMorning,
		testutil.NewFlexTask(1, "Write report", testutil.WithEstimate(domain.Range30To60), testutil.WithFocusLevel(8)),
		testutil.NewFixedTask(2, "Standup", "10:00", "10:30"),
		testutil.NewFlexTask(3, "Email", testutil.WithEstimate(domain.RangeUnder30), testutil.WithFocusLevel(2)),
	)
}

func generatorReplies() map[llm.TaskType]string {
	return map[llm.TaskType]string{
		llm.TaskStructure: `{"tasks":[
			{"taskId":1,"category":"work","cognitiveLoad":"HIGH","orderInGroup":null},
			{"taskId":3,"category":"work","cognitiveLoad":"LOW","orderInGroup":null}]}`,
		llm.TaskChain: `{"candidates":[
			{"chainId":"C1","rationaleTags":["focus"],"timeZoneQueues":{"MORNING":[1,3]}},
			{"chainId":"C2","rationaleTags":["light_first"],"timeZoneQueues":{"MORNING":[3]}}]}
			[[DONE]]`,
	}
}

func resultByID(t *testing.T, resp *contract.PlanResponse, id int64) domain.AssignmentResult {
	t.Helper()
	for _, r := range resp.Results {
		if r.TaskID == id {
			return r
		}
	}
	t.Fatalf("no result for task %d", id)
	return domain.AssignmentResult{}
}

func TestPlannerService_Run_WithGenerator(t *testing.T) {
	client := &taskClient{replies: generatorReplies()}
	var logs bytes.Buffer
	svc := newPlanner(client, nil, NewLogUseCaseObserver(&logs))

	req := contract.NewPlanRequest(morningDay())
	req.Explain = true
	resp, err := svc.Run(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, resp.SelectedChainID)
	assert.Equal(t, "C1", *resp.SelectedChainID)
	assert.Equal(t, 1.0, resp.FillRate)
	assert.Empty(t, resp.Warnings)
	assert.Nil(t, resp.Degraded())
	assert.Len(t, resp.Scores, 2)
	assert.NotEmpty(t, resp.RunID)
	assert.Empty(t, resp.RecordID)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{resp.Results[0].TaskID, resp.Results[1].TaskID, resp.Results[2].TaskID})

	report := resultByID(t, resp, 1)
	assert.Equal(t, domain.StatusAssigned, report.AssignmentStatus)
	assert.Equal(t, domain.AssignedByAI, report.AssignedBy)
	assert.Equal(t, "09:00", *report.StartAt)
	assert.Equal(t, "10:00", *report.EndAt)

	standup := resultByID(t, resp, 2)
	assert.Equal(t, domain.AssignedByUser, standup.AssignedBy)
	assert.Equal(t, domain.StatusAssigned, standup.AssignmentStatus)
	assert.Equal(t, "10:00", *standup.StartAt)

	email := resultByID(t, resp, 3)
	assert.Equal(t, "10:30", *email.StartAt)
	assert.Equal(t, "11:00", *email.EndAt)

	assert.Contains(t, logs.String(), "use_case=plan")
	assert.Contains(t, logs.String(), "success=true")
	for _, stage := range []string{"sessions", "structure", "importance", "chains", "judge", "assign"} {
		assert.Contains(t, logs.String(), "stage="+stage)
	}
	assert.Contains(t, logs.String(), "attempts=1")
}

func TestPlannerService_Run_FallbackWhenGeneratorDown(t *testing.T) {
	down := llm.NewGenerateError(llm.CodeServiceUnavailable, llm.ErrUnavailable)
	client := &taskClient{errs: map[llm.TaskType]error{llm.TaskStructure: down, llm.TaskChain: down}}
	svc := newPlanner(client, nil)

	resp, err := svc.Run(context.Background(), contract.NewPlanRequest(morningDay()))
	require.NoError(t, err)

	assert.Equal(t, 2, client.calls[llm.TaskStructure])
	assert.Equal(t, 2, client.calls[llm.TaskChain])
	assert.True(t, resp.Generator.StructureFallback)
	assert.True(t, resp.Generator.ChainFallback)
	require.NotNil(t, resp.Degraded())
	assert.Equal(t, contract.PlanErrGeneratorUnavailable, resp.Degraded().Code)
	assert.Len(t, resp.Warnings, 2)
	assert.Equal(t, "fallback_distributed", *resp.SelectedChainID)

	for _, r := range resp.Results {
		assert.Equal(t, domain.StatusAssigned, r.AssignmentStatus, "task %d", r.TaskID)
	}
}

func TestPlannerService_Run_NilClientRunsOnFallbacks(t *testing.T) {
	resp, err := newPlanner(nil, nil).Run(context.Background(), contract.NewPlanRequest(morningDay()))
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Generator.StructureAttempts)
	assert.Equal(t, 1.0, resp.FillRate)
	assert.Len(t, resp.Results, 3)
}

func TestPlannerService_Run_UnintelligibleTaskIsNotAssigned(t *testing.T) {
	replies := generatorReplies()
	replies[llm.TaskStructure] = `{"tasks":[
		{"taskId":1,"category":"work","cognitiveLoad":"HIGH"},
		{"taskId":3,"category":"ERROR","cognitiveLoad":"LOW"}]}`
	replies[llm.TaskChain] = `{"candidates":[{"chainId":"C1","timeZoneQueues":{"MORNING":[1]}}]}`

	resp, err := newPlanner(&taskClient{replies: replies}, nil).Run(context.Background(), contract.NewPlanRequest(morningDay()))
	require.NoError(t, err)

	email := resultByID(t, resp, 3)
	assert.Equal(t, domain.StatusNotAssigned, email.AssignmentStatus)
	assert.Nil(t, email.StartAt)
	assert.Equal(t, domain.StatusAssigned, resultByID(t, resp, 1).AssignmentStatus)
	assert.Equal(t, 1.0, resp.FillRate, "dropped tasks do not count against the fill rate")
}

func TestPlannerService_Run_ContainerParentIsNotScheduled(t *testing.T) {
	req := testutil.NewRequest("09:00", "12:00", domain.ZoneMorning,
		testutil.NewFlexTask(10, "Thesis"),
		testutil.NewFlexTask(11, "Outline", testutil.WithParent(10), testutil.WithEstimate(domain.RangeUnder30)),
		testutil.NewFlexTask(12, "Draft", testutil.WithParent(10), testutil.WithEstimate(domain.RangeUnder30)),
	)
	resp, err := newPlanner(nil, nil).Run(context.Background(), contract.NewPlanRequest(req))
	require.NoError(t, err)

	ids := make([]int64, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.TaskID)
	}
	assert.ElementsMatch(t, []int64{11, 12}, ids)
}

func TestPlannerService_Run_InvalidRequest(t *testing.T) {
	client := &taskClient{replies: generatorReplies()}
	req := testutil.NewRequest("09:00", "12:00", domain.ZoneMorning,
		testutil.NewFixedTask(1, "Backwards", "11:00", "10:00"))

	_, err := newPlanner(client, nil).Run(context.Background(), contract.NewPlanRequest(req))

	var pe *contract.PlanError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, contract.PlanErrInvalidRequest, pe.Code)
	var fe *domain.FieldError
	assert.True(t, errors.As(err, &fe))
	assert.Empty(t, client.calls, "validation fails before any generator call")
}

func TestPlannerService_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	records := &recordingRecords{}

	_, err := newPlanner(&taskClient{replies: generatorReplies()}, records).Run(ctx, contract.NewPlanRequest(morningDay()))

	var pe *contract.PlanError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, contract.PlanErrCancelled, pe.Code)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, records.saved, "cancelled runs are not persisted")
}

// cancelAfterStage cancels the run once the named stage has been observed.
type cancelAfterStage struct {
	NoopUseCaseObserver
	stage  string
	cancel context.CancelFunc
}

func (o cancelAfterStage) ObserveStage(_ context.Context, event StageEvent) {
	if event.Stage == o.stage {
		o.cancel()
	}
}

func TestPlannerService_Run_CancelledBeforePersistence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	records := &recordingRecords{}
	obs := cancelAfterStage{stage: "assign", cancel: cancel}

	resp, err := newPlanner(&taskClient{replies: generatorReplies()}, records, obs).Run(ctx, contract.NewPlanRequest(morningDay()))

	assert.Nil(t, resp)
	var pe *contract.PlanError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, contract.PlanErrCancelled, pe.Code)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, records.saved)
}

func TestPlannerService_Run_Idempotent(t *testing.T) {
	svc := newPlanner(&taskClient{replies: generatorReplies()}, nil)

	first, err := svc.Run(context.Background(), contract.NewPlanRequest(morningDay()))
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), contract.NewPlanRequest(morningDay()))
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestPlannerService_Run_CustomWeightsAreNotMutated(t *testing.T) {
	w := domain.DefaultWeights()
	w.WCategory[domain.CategoryWork] = 3
	req := contract.NewPlanRequest(morningDay())
	req.Weights = &w

	_, err := newPlanner(&taskClient{replies: generatorReplies()}, nil).Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, map[domain.Category]float64{domain.CategoryWork: 3}, w.WCategory)
}

type recordingRecords struct {
	saved []*domain.PlannerRecord
	err   error
}

func (r *recordingRecords) Save(_ context.Context, rec *domain.PlannerRecord) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, rec)
	return nil
}

func (r *recordingRecords) Get(context.Context, string) (*domain.PlannerRecord, error) {
	return nil, repository.ErrNotFound
}

func (r *recordingRecords) ListRecent(context.Context, int64, int) ([]*domain.PlannerRecord, error) {
	return r.saved, nil
}

func (r *recordingRecords) Delete(context.Context, string) error { return nil }

func TestPlannerService_Run_PersistenceFailureBecomesWarning(t *testing.T) {
	records := &recordingRecords{err: errors.New("disk full")}
	var logs bytes.Buffer

	resp, err := newPlanner(nil, records, NewLogUseCaseObserver(&logs)).Run(context.Background(), contract.NewPlanRequest(morningDay()))
	require.NoError(t, err)

	assert.Empty(t, resp.RecordID)
	require.NotEmpty(t, resp.Warnings)
	assert.Contains(t, resp.Warnings[len(resp.Warnings)-1], "planner record not saved: disk full")
	assert.Contains(t, logs.String(), "use_case=save-record")
}

func TestPlannerService_Run_DryRunSkipsPersistence(t *testing.T) {
	records := &recordingRecords{}
	req := contract.NewPlanRequest(morningDay())
	req.DryRun = true

	_, err := newPlanner(nil, records).Run(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, records.saved)
}

func TestPlannerService_Run_PersistsToSQLite(t *testing.T) {
	database := testutil.NewTestDB(t)
	records := NewRecordService(repository.NewSQLitePlannerRecordRepo(database), testutil.NewTestUoW(database))
	ctx := context.Background()

	resp, err := newPlanner(&taskClient{replies: generatorReplies()}, records).Run(ctx, contract.NewPlanRequest(morningDay()))
	require.NoError(t, err)
	require.NotEmpty(t, resp.RecordID)

	rec, err := records.Get(ctx, resp.RecordID)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.TotalTasks)
	assert.Equal(t, 2, rec.AssignedCount)
	assert.Equal(t, 1.0, rec.FillRate)
	assert.Equal(t, "C1", *rec.SelectedChainID)
	assert.Len(t, rec.Tasks, 3)

	recent, err := records.ListRecent(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, resp.RecordID, recent[0].ID)
}
