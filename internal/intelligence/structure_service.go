package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/llm"
)

// StructureResult is the outcome of structure analysis. Fallback is set
// when the features were synthesized without the generator.
type StructureResult struct {
	Features map[int64]domain.TaskFeature
	Attempts int
	Fallback bool
	Warnings []string
}

// StructureAnalyzer classifies FLEX tasks into features.
type StructureAnalyzer interface {
	// Analyze returns one feature per task in flex. schedules is the full
	// request, used to resolve parent titles. Only cancellation of ctx is
	// returned as an error; every other failure ends in the fallback.
	Analyze(ctx context.Context, flex, schedules []domain.ScheduleItem) (*StructureResult, error)
}

type structureService struct {
	client llm.LLMClient
	policy llm.RetryPolicy
}

// NewStructureService creates a StructureAnalyzer. A nil client always
// uses the fallback.
func NewStructureService(client llm.LLMClient, policy llm.RetryPolicy) StructureAnalyzer {
	return &structureService{client: client, policy: policy}
}

type structureResponse struct {
	Tasks []structureItem `json:"tasks"`
}

type structureItem struct {
	TaskID        int64  `json:"taskId"`
	Category      string `json:"category"`
	CognitiveLoad string `json:"cognitiveLoad"`
	OrderInGroup  *int   `json:"orderInGroup"`
}

func (s *structureService) Analyze(ctx context.Context, flex, schedules []domain.ScheduleItem) (*StructureResult, error) {
	if len(flex) == 0 {
		return &StructureResult{Features: map[int64]domain.TaskFeature{}}, nil
	}
	if s.client == nil {
		return &StructureResult{
			Features: FallbackFeatures(flex, schedules),
			Fallback: true,
			Warnings: []string{"structure analysis fallback applied: generator disabled"},
		}, nil
	}

	known := make(map[int64]bool, len(flex))
	for _, t := range flex {
		known[t.TaskID] = true
	}
	validate := func(r structureResponse) error {
		if r.Tasks == nil {
			return errors.New("missing tasks array")
		}
		for _, item := range r.Tasks {
			if !known[item.TaskID] {
				return fmt.Errorf("%w: %d", ErrHallucinatedTask, item.TaskID)
			}
		}
		return nil
	}

	userPrompt := FormatTasksForStructure(flex)
	parsed, attempts, err := llm.Retry(ctx, s.policy, func(ctx context.Context) (structureResponse, error) {
		resp, err := s.client.Generate(ctx, llm.GenerateRequest{
			Task:         llm.TaskStructure,
			SystemPrompt: structureSystemPrompt,
			UserPrompt:   userPrompt,
		})
		if err != nil {
			return structureResponse{}, err
		}
		return llm.ExtractJSON(resp.Text, validate)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return &StructureResult{
			Features: FallbackFeatures(flex, schedules),
			Attempts: attempts,
			Fallback: true,
			Warnings: []string{fmt.Sprintf("structure analysis fallback applied after %d attempt(s): %v", attempts, err)},
		}, nil
	}

	items := make(map[int64]structureItem, len(parsed.Tasks))
	for _, item := range parsed.Tasks {
		items[item.TaskID] = item
	}

	features := make(map[int64]domain.TaskFeature, len(flex))
	var missing []string
	for _, t := range flex {
		item, ok := items[t.TaskID]
		if !ok {
			features[t.TaskID] = fallbackFeature(t, schedules)
			missing = append(missing, strconv.FormatInt(t.TaskID, 10))
			continue
		}
		f := baseFeature(t, schedules)
		f.Category = NormalizeCategory(item.Category)
		f.CognitiveLoad = NormalizeLoad(item.CognitiveLoad)
		if t.ParentScheduleID != nil && item.OrderInGroup != nil && *item.OrderInGroup >= 1 {
			f.OrderInGroup = domain.Ptr(*item.OrderInGroup)
		}
		features[t.TaskID] = f
	}

	result := &StructureResult{Features: features, Attempts: attempts}
	if len(missing) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("structure analysis omitted task(s) %s; fallback features used", strings.Join(missing, ", ")))
	}
	return result, nil
}

// FormatTasksForStructure renders the task list sent to the generator.
func FormatTasksForStructure(flex []domain.ScheduleItem) string {
	lines := make([]string, 0, len(flex))
	for _, t := range flex {
		line := fmt.Sprintf("- TaskID: %d | Title: %s", t.TaskID, t.Title)
		if t.EstimatedTimeRange != nil {
			line += fmt.Sprintf(" | Est: %s", *t.EstimatedTimeRange)
		}
		if t.ParentScheduleID != nil {
			line += fmt.Sprintf(" | ParentID: %d", *t.ParentScheduleID)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FallbackFeatures synthesizes a feature for every task without the
// generator.
func FallbackFeatures(flex, schedules []domain.ScheduleItem) map[int64]domain.TaskFeature {
	out := make(map[int64]domain.TaskFeature, len(flex))
	for _, t := range flex {
		out[t.TaskID] = fallbackFeature(t, schedules)
	}
	return out
}

// fallbackFeature classifies a task as other and infers its load from the
// estimated duration.
func fallbackFeature(t domain.ScheduleItem, schedules []domain.ScheduleItem) domain.TaskFeature {
	f := baseFeature(t, schedules)
	f.Category = domain.CategoryOther
	f.CognitiveLoad = domain.LoadHigh
	if t.EstimatedTimeRange != nil {
		switch *t.EstimatedTimeRange {
		case domain.RangeUnder30:
			f.CognitiveLoad = domain.LoadLow
		case domain.Range30To60:
			f.CognitiveLoad = domain.LoadMed
		}
	}
	return f
}

// baseFeature fills identity and grouping. The group is always derived from
// the parent id, never from the generator.
func baseFeature(t domain.ScheduleItem, schedules []domain.ScheduleItem) domain.TaskFeature {
	f := domain.TaskFeature{
		TaskID:    t.TaskID,
		DayPlanID: t.DayPlanID,
		Title:     t.Title,
		Type:      t.Type,
	}
	if t.ParentScheduleID != nil {
		f.GroupID = domain.Ptr(strconv.FormatInt(*t.ParentScheduleID, 10))
		if parent, ok := domain.FindTask(schedules, *t.ParentScheduleID); ok {
			f.GroupLabel = domain.Ptr(parent.Title)
		}
	}
	return f
}

// categoryAliases accepts the labels of the Korean prompt revision.
var categoryAliases = map[string]domain.Category{
	"학업": domain.CategoryAcademic,
	"업무": domain.CategoryWork,
	"운동": domain.CategoryExercise,
	"취미": domain.CategoryHobby,
	"생활": domain.CategoryLife,
	"기타": domain.CategoryOther,
}

// NormalizeCategory coerces a generator label onto a known category.
// Unknown labels become other.
func NormalizeCategory(s string) domain.Category {
	s = strings.TrimSpace(s)
	if s == string(domain.CategoryError) {
		return domain.CategoryError
	}
	if c, ok := categoryAliases[s]; ok {
		return c
	}
	switch c := domain.Category(strings.ToLower(s)); c {
	case domain.CategoryAcademic, domain.CategoryWork, domain.CategoryExercise,
		domain.CategoryHobby, domain.CategoryLife, domain.CategoryOther:
		return c
	}
	return domain.CategoryOther
}

// NormalizeLoad coerces a generator label onto a load tier. Unknown labels
// become MED.
func NormalizeLoad(s string) domain.CognitiveLoad {
	switch l := domain.CognitiveLoad(strings.ToUpper(strings.TrimSpace(s))); l {
	case domain.LoadLow, domain.LoadMed, domain.LoadHigh:
		return l
	}
	return domain.LoadMed
}
