package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/dayplan/internal/cli/formatter"
	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// dayplanHuhTheme returns a huh theme using the Gruvbox palette.
func dayplanHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// dayDraft collects the answers of the request wizard as strings.
type dayDraft struct {
	Focus        string
	StartArrange string
	DayEnd       string
	Tasks        []taskDraft
}

type taskDraft struct {
	Title      string
	Fixed      bool
	StartAt    string
	EndAt      string
	Estimate   string
	FocusLevel string
	Urgent     bool
}

// build turns the draft into a request. Task ids are assigned in entry
// order starting at 1.
func (d dayDraft) build(userID int64) (*domain.ArrangementRequest, error) {
	if len(d.Tasks) == 0 {
		return nil, errors.New("add at least one task")
	}
	req := &domain.ArrangementRequest{
		User: domain.UserInfo{
			UserID:        userID,
			FocusTimeZone: domain.TimeZone(d.Focus),
			DayEndTime:    d.DayEnd,
		},
		StartArrange: d.StartArrange,
	}
	for i, t := range d.Tasks {
		item := domain.ScheduleItem{
			TaskID:    int64(i + 1),
			DayPlanID: 1,
			Title:     strings.TrimSpace(t.Title),
			Type:      domain.TaskFlex,
		}
		if t.Fixed {
			item.Type = domain.TaskFixed
			item.StartAt = domain.Ptr(t.StartAt)
			item.EndAt = domain.Ptr(t.EndAt)
		} else {
			if t.Estimate != "" {
				item.EstimatedTimeRange = domain.Ptr(domain.EstimatedTimeRange(t.Estimate))
			}
			if t.FocusLevel != "" {
				level, err := strconv.Atoi(t.FocusLevel)
				if err != nil {
					return nil, fmt.Errorf("task %q: focus level: %w", item.Title, err)
				}
				item.FocusLevel = domain.Ptr(level)
			}
			item.IsUrgent = domain.Ptr(t.Urgent)
		}
		req.Schedules = append(req.Schedules, item)
	}
	return req, nil
}

func validateClock(s string) error {
	_, err := domain.ParseClock(s)
	return err
}

func validateFocusLevel(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 || v > 10 {
		return errors.New("enter a number from 1 to 10")
	}
	return nil
}

func zoneOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(domain.AllTimeZones))
	for _, tz := range domain.AllTimeZones {
		opts = append(opts, huh.NewOption(strings.ToLower(string(tz)), string(tz)))
	}
	return opts
}

func estimateOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("under 30 minutes", string(domain.RangeUnder30)),
		huh.NewOption("30 to 60 minutes", string(domain.Range30To60)),
		huh.NewOption("1 to 2 hours", string(domain.RangeHour1To2)),
		huh.NewOption("2 to 4 hours", string(domain.RangeHour2To4)),
		huh.NewOption("over 4 hours", string(domain.RangeHourOver4)),
	}
}

// dayForm asks for the planning window and focus zone.
func dayForm(d *dayDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Focus time zone").Options(zoneOptions()...).Value(&d.Focus),
			huh.NewInput().Title("Start planning at").Placeholder("09:00").Value(&d.StartArrange).Validate(validateClock),
			huh.NewInput().Title("Day ends at").Placeholder("23:00").Value(&d.DayEnd).Validate(validateClock),
		),
	).WithTheme(dayplanHuhTheme()).WithShowHelp(false)
}

// taskForm asks for one task. Clock fields are only shown for fixed tasks
// and the estimate fields only for flexible ones.
func taskForm(t *taskDraft, more *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(&t.Title).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("title is required")
				}
				return nil
			}),
			huh.NewConfirm().Title("Fixed time?").Affirmative("Fixed").Negative("Flexible").Value(&t.Fixed),
		),
		huh.NewGroup(
			huh.NewInput().Title("Starts at").Placeholder("10:00").Value(&t.StartAt).Validate(validateClock),
			huh.NewInput().Title("Ends at").Placeholder("10:30").Value(&t.EndAt).Validate(validateClock),
		).WithHideFunc(func() bool { return !t.Fixed }),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Estimated time").Options(estimateOptions()...).Value(&t.Estimate),
			huh.NewInput().Title("Focus needed (1-10)").Placeholder("5").Value(&t.FocusLevel).Validate(validateFocusLevel),
			huh.NewConfirm().Title("Urgent?").Value(&t.Urgent),
		).WithHideFunc(func() bool { return t.Fixed }),
		huh.NewGroup(
			huh.NewConfirm().Title("Add another task?").Value(more),
		),
	).WithTheme(dayplanHuhTheme()).WithShowHelp(false)
}
