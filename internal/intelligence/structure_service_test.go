package intelligence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReply struct {
	text string
	err  error
}

// scriptedClient replays canned replies; the last one repeats.
type scriptedClient struct {
	replies  []scriptedReply
	requests []llm.GenerateRequest
}

func (c *scriptedClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	c.requests = append(c.requests, req)
	r := c.replies[min(len(c.requests), len(c.replies))-1]
	if r.err != nil {
		return nil, r.err
	}
	return &llm.GenerateResponse{Text: r.text, Model: "scripted"}, nil
}

func (c *scriptedClient) Available(context.Context) bool { return true }

func testPolicy() llm.RetryPolicy {
	return llm.RetryPolicy{MaxAttempts: 4, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func flex(id int64, title string, r domain.EstimatedTimeRange) domain.ScheduleItem {
	return domain.ScheduleItem{TaskID: id, DayPlanID: 3, Title: title, Type: domain.TaskFlex, EstimatedTimeRange: domain.Ptr(r)}
}

func child(id, parent int64, title string) domain.ScheduleItem {
	t := flex(id, title, domain.Range30To60)
	t.ParentScheduleID = domain.Ptr(parent)
	return t
}

func TestStructureService_ParsesAndCoerces(t *testing.T) {
	parent := domain.ScheduleItem{TaskID: 10, Title: "Thesis", Type: domain.TaskFlex}
	tasks := []domain.ScheduleItem{
		flex(1, "Write report", domain.RangeHour1To2),
		child(2, 10, "Outline"),
		flex(3, "Jog", domain.RangeUnder30),
	}
	client := &scriptedClient{replies: []scriptedReply{{text: "```json\n" + `{"tasks":[
		{"taskId":1,"category":"Work","cognitiveLoad":"high","orderInGroup":4},
		{"taskId":2,"category":"학업","cognitiveLoad":"EXTREME","orderInGroup":1},
		{"taskId":3,"category":"sports","cognitiveLoad":"LOW","orderInGroup":null}
	]}` + "\n```"}}}

	res, err := NewStructureService(client, testPolicy()).Analyze(context.Background(), tasks, append(tasks, parent))

	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, res.Warnings)

	f1 := res.Features[1]
	assert.Equal(t, domain.CategoryWork, f1.Category)
	assert.Equal(t, domain.LoadHigh, f1.CognitiveLoad)
	assert.Nil(t, f1.GroupID)
	assert.Nil(t, f1.OrderInGroup, "order is ignored for tasks without a parent")

	f2 := res.Features[2]
	assert.Equal(t, domain.CategoryAcademic, f2.Category)
	assert.Equal(t, domain.LoadMed, f2.CognitiveLoad)
	assert.Equal(t, "10", *f2.GroupID)
	assert.Equal(t, "Thesis", *f2.GroupLabel)
	assert.Equal(t, 1, *f2.OrderInGroup)

	assert.Equal(t, domain.CategoryOther, res.Features[3].Category)

	require.Len(t, client.requests, 1)
	assert.Equal(t, llm.TaskStructure, client.requests[0].Task)
	assert.Contains(t, client.requests[0].UserPrompt, "- TaskID: 2 | Title: Outline | Est: MINUTE_30_TO_60 | ParentID: 10")
}

func TestStructureService_KeepsErrorCategory(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{text: `{"tasks":[{"taskId":1,"category":"ERROR","cognitiveLoad":"LOW"}]}`}}}
	res, err := NewStructureService(client, testPolicy()).Analyze(context.Background(),
		[]domain.ScheduleItem{flex(1, "asdf", domain.RangeUnder30)}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.CategoryError, res.Features[1].Category)
}

func TestStructureService_MissingTaskGetsFallbackFeature(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{text: `{"tasks":[{"taskId":1,"category":"work","cognitiveLoad":"LOW"}]}`}}}
	tasks := []domain.ScheduleItem{flex(1, "a", domain.RangeUnder30), flex(2, "b", domain.RangeHour2To4)}

	res, err := NewStructureService(client, testPolicy()).Analyze(context.Background(), tasks, tasks)

	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Equal(t, domain.CategoryOther, res.Features[2].Category)
	assert.Equal(t, domain.LoadHigh, res.Features[2].CognitiveLoad)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "2")
}

func TestStructureService_HallucinationIsRetriedThenAccepted(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{text: `{"tasks":[{"taskId":99,"category":"work","cognitiveLoad":"LOW"}]}`},
		{text: `{"tasks":[{"taskId":1,"category":"life","cognitiveLoad":"LOW"}]}`},
	}}
	tasks := []domain.ScheduleItem{flex(1, "Laundry", domain.RangeUnder30)}

	res, err := NewStructureService(client, testPolicy()).Analyze(context.Background(), tasks, tasks)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, domain.CategoryLife, res.Features[1].Category)
}

func TestStructureService_FallbackAfterRetryableFailures(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{err: llm.NewGenerateError(llm.CodeServiceUnavailable, llm.ErrUnavailable)}}}
	tasks := []domain.ScheduleItem{
		flex(1, "a", domain.RangeUnder30),
		flex(2, "b", domain.Range30To60),
		flex(3, "c", domain.RangeHour1To2),
		{TaskID: 4, Title: "d", Type: domain.TaskFlex},
		child(5, 1, "e"),
	}

	res, err := NewStructureService(client, testPolicy()).Analyze(context.Background(), tasks, tasks)

	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, 4, res.Attempts)
	assert.Len(t, client.requests, 4)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "fallback")

	assert.Equal(t, domain.LoadLow, res.Features[1].CognitiveLoad)
	assert.Equal(t, domain.LoadMed, res.Features[2].CognitiveLoad)
	assert.Equal(t, domain.LoadHigh, res.Features[3].CognitiveLoad)
	assert.Equal(t, domain.LoadHigh, res.Features[4].CognitiveLoad)
	assert.Equal(t, "1", *res.Features[5].GroupID)
	assert.Equal(t, "a", *res.Features[5].GroupLabel)
	for _, f := range res.Features {
		assert.Equal(t, domain.CategoryOther, f.Category)
	}
}

func TestStructureService_NonRetryableGoesStraightToFallback(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{err: llm.NewGenerateError(llm.CodePermissionDenied, errors.New("denied"))}}}
	tasks := []domain.ScheduleItem{flex(1, "a", domain.RangeUnder30)}

	res, err := NewStructureService(client, testPolicy()).Analyze(context.Background(), tasks, tasks)

	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Len(t, client.requests, 1)
}

func TestStructureService_NilClientUsesFallback(t *testing.T) {
	tasks := []domain.ScheduleItem{flex(1, "a", domain.RangeUnder30)}
	res, err := NewStructureService(nil, testPolicy()).Analyze(context.Background(), tasks, tasks)

	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, 0, res.Attempts)
}

func TestStructureService_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &scriptedClient{replies: []scriptedReply{{text: `{"tasks":[]}`}}}

	_, err := NewStructureService(client, testPolicy()).Analyze(ctx, []domain.ScheduleItem{flex(1, "a", domain.RangeUnder30)}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.requests)
}

func TestNormalizeCategoryAndLoad(t *testing.T) {
	assert.Equal(t, domain.CategoryExercise, NormalizeCategory("운동"))
	assert.Equal(t, domain.CategoryHobby, NormalizeCategory(" HOBBY "))
	assert.Equal(t, domain.CategoryOther, NormalizeCategory("???"))
	assert.Equal(t, domain.CategoryError, NormalizeCategory("ERROR"))
	assert.Equal(t, domain.LoadLow, NormalizeLoad("low"))
	assert.Equal(t, domain.LoadMed, NormalizeLoad(""))
}
