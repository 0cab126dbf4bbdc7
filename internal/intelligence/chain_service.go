package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/llm"
	"github.com/alexanderramin/dayplan/internal/scheduler"
)

// ChainInput is everything the chain generator reads.
type ChainInput struct {
	Features map[int64]domain.TaskFeature
	Capacity map[domain.TimeZone]int
	Focus    domain.TimeZone
	Fixed    []domain.ScheduleItem
}

// ChainResult is the outcome of chain generation.
type ChainResult struct {
	Candidates []domain.ChainCandidate
	Attempts   int
	Fallback   bool
	Warnings   []string
}

// ChainGenerator proposes candidate distributions of tasks over zones.
type ChainGenerator interface {
	// Generate returns at least one candidate whenever there are features.
	// Only cancellation of ctx is returned as an error.
	Generate(ctx context.Context, in ChainInput) (*ChainResult, error)
}

type chainService struct {
	client llm.LLMClient
	policy llm.RetryPolicy
}

// NewChainService creates a ChainGenerator. A nil client always uses the
// greedy fallback.
func NewChainService(client llm.LLMClient, policy llm.RetryPolicy) ChainGenerator {
	return &chainService{client: client, policy: policy}
}

type chainResponse struct {
	Candidates []chainItem `json:"candidates"`
}

type chainItem struct {
	ChainID        string             `json:"chainId"`
	RationaleTags  []string           `json:"rationaleTags"`
	TimeZoneQueues map[string][]int64 `json:"timeZoneQueues"`
}

func (s *chainService) Generate(ctx context.Context, in ChainInput) (*ChainResult, error) {
	if len(in.Features) == 0 {
		return &ChainResult{}, nil
	}
	fallback := func(attempts int, reason string) *ChainResult {
		return &ChainResult{
			Candidates: []domain.ChainCandidate{scheduler.DistributeFallback(in.Features, in.Capacity, in.Focus)},
			Attempts:   attempts,
			Fallback:   true,
			Warnings:   []string{"chain generation fallback applied: " + reason},
		}
	}
	if s.client == nil {
		return fallback(0, "generator disabled"), nil
	}

	userPrompt, err := BuildChainPrompt(in)
	if err != nil {
		return fallback(0, err.Error()), nil
	}

	candidates, attempts, err := llm.Retry(ctx, s.policy, func(ctx context.Context) ([]domain.ChainCandidate, error) {
		resp, err := s.client.Generate(ctx, llm.GenerateRequest{
			Task:         llm.TaskChain,
			SystemPrompt: chainSystemPrompt,
			UserPrompt:   userPrompt,
		})
		if err != nil {
			return nil, err
		}
		parsed, err := llm.ExtractJSON[chainResponse](resp.Text, nil)
		if err != nil {
			return nil, err
		}
		out, err := parseCandidates(parsed.Candidates, in.Features)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", llm.ErrInvalidOutput, err)
		}
		return out, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return fallback(attempts, fmt.Sprintf("after %d attempt(s): %v", attempts, err)), nil
	}
	return &ChainResult{Candidates: candidates, Attempts: attempts}, nil
}

// parseCandidates converts raw candidates. Entries without an id or queues
// are skipped. An unknown zone, an unknown task id or a repeated chain id
// rejects the whole set.
func parseCandidates(items []chainItem, features map[int64]domain.TaskFeature) ([]domain.ChainCandidate, error) {
	if items == nil {
		return nil, errors.New("missing candidates array")
	}
	var out []domain.ChainCandidate
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ChainID == "" || len(item.TimeZoneQueues) == 0 {
			continue
		}
		if seen[item.ChainID] {
			return nil, fmt.Errorf("candidate %s: %w", item.ChainID, ErrDuplicateChain)
		}
		seen[item.ChainID] = true
		queues := make(map[domain.TimeZone][]int64, len(domain.AllTimeZones))
		for key, ids := range item.TimeZoneQueues {
			tz := domain.TimeZone(key)
			if !tz.Valid() {
				return nil, fmt.Errorf("candidate %s: unknown time zone %q", item.ChainID, key)
			}
			for _, id := range ids {
				if _, ok := features[id]; !ok {
					return nil, fmt.Errorf("candidate %s zone %s: %w: %d", item.ChainID, tz, ErrHallucinatedTask, id)
				}
			}
			queues[tz] = append([]int64(nil), ids...)
		}
		out = append(out, domain.ChainCandidate{
			ChainID:        item.ChainID,
			TimeZoneQueues: queues,
			RationaleTags:  append([]string{}, item.RationaleTags...),
		})
	}
	if len(out) == 0 {
		return nil, ErrNoCandidates
	}
	return out, nil
}

type chainPrompt struct {
	FocusTimeZone  domain.TimeZone         `json:"focusTimeZone"`
	Capacity       map[domain.TimeZone]int `json:"capacity"`
	FixedSchedules []chainPromptFixed      `json:"fixedSchedules"`
	Tasks          []chainPromptTask       `json:"tasks"`
}

type chainPromptFixed struct {
	Title   string  `json:"title"`
	StartAt *string `json:"startAt"`
	EndAt   *string `json:"endAt"`
}

type chainPromptTask struct {
	TaskID       int64           `json:"taskId"`
	Title        string          `json:"title"`
	Category     domain.Category `json:"category"`
	Importance   float64         `json:"importance"`
	DurationAvg  int             `json:"durationAvg"`
	GroupID      *string         `json:"groupId"`
	OrderInGroup *int            `json:"orderInGroup"`
}

// BuildChainPrompt renders the generator input. Tasks are listed by
// importance, which is min-max normalised to [0,1] and rounded to two
// places; a batch whose scores are all equal normalises to 1.0.
func BuildChainPrompt(in ChainInput) (string, error) {
	ordered := scheduler.ByImportance(in.Features)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, f := range ordered {
		lo = min(lo, f.ImportanceScore)
		hi = max(hi, f.ImportanceScore)
	}

	tasks := make([]chainPromptTask, 0, len(ordered))
	for _, f := range ordered {
		norm := 1.0
		if hi > lo {
			norm = (f.ImportanceScore - lo) / (hi - lo)
		}
		tasks = append(tasks, chainPromptTask{
			TaskID:       f.TaskID,
			Title:        f.Title,
			Category:     f.Category,
			Importance:   math.Round(norm*100) / 100,
			DurationAvg:  f.DurationAvgMin,
			GroupID:      f.GroupID,
			OrderInGroup: f.OrderInGroup,
		})
	}

	fixed := make([]chainPromptFixed, 0, len(in.Fixed))
	for _, t := range in.Fixed {
		fixed = append(fixed, chainPromptFixed{Title: t.Title, StartAt: t.StartAt, EndAt: t.EndAt})
	}

	data, err := json.MarshalIndent(chainPrompt{
		FocusTimeZone:  in.Focus,
		Capacity:       in.Capacity,
		FixedSchedules: fixed,
		Tasks:          tasks,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding chain prompt: %w", err)
	}
	return string(data), nil
}
