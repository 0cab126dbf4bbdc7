package domain

import (
	"errors"
	"fmt"
)

// ScheduleItem is one task submitted for the day.
type ScheduleItem struct {
	TaskID             int64               `json:"taskId" yaml:"taskId"`
	ParentScheduleID   *int64              `json:"parentScheduleId,omitempty" yaml:"parentScheduleId,omitempty"`
	DayPlanID          int64               `json:"dayPlanId" yaml:"dayPlanId"`
	Title              string              `json:"title" yaml:"title"`
	Type               TaskType            `json:"type" yaml:"type"`
	StartAt            *string             `json:"startAt,omitempty" yaml:"startAt,omitempty"`
	EndAt              *string             `json:"endAt,omitempty" yaml:"endAt,omitempty"`
	EstimatedTimeRange *EstimatedTimeRange `json:"estimatedTimeRange,omitempty" yaml:"estimatedTimeRange,omitempty"`
	FocusLevel         *int                `json:"focusLevel,omitempty" yaml:"focusLevel,omitempty"`
	IsUrgent           *bool               `json:"isUrgent,omitempty" yaml:"isUrgent,omitempty"`
}

type UserInfo struct {
	UserID        int64    `json:"userId" yaml:"userId"`
	FocusTimeZone TimeZone `json:"focusTimeZone" yaml:"focusTimeZone"`
	DayEndTime    string   `json:"dayEndTime" yaml:"dayEndTime"`
}

// ArrangementRequest is the input of a single planning run.
type ArrangementRequest struct {
	User         UserInfo       `json:"user" yaml:"user"`
	StartArrange string         `json:"startArrange" yaml:"startArrange"`
	Schedules    []ScheduleItem `json:"schedules" yaml:"schedules"`
}

// FieldError describes one structural problem in a request.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the request for structural problems. All problems are
// reported together; the returned error unwraps to individual *FieldError
// values.
func (r ArrangementRequest) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !r.User.FocusTimeZone.Valid() {
		add("user.focusTimeZone", "unknown time zone %q", r.User.FocusTimeZone)
	}
	if _, err := ParseClock(r.User.DayEndTime); err != nil {
		add("user.dayEndTime", "%v", err)
	}
	if _, err := ParseClock(r.StartArrange); err != nil {
		add("startArrange", "%v", err)
	}

	seen := make(map[int64]bool, len(r.Schedules))
	for i, s := range r.Schedules {
		field := fmt.Sprintf("schedules[%d]", i)
		if seen[s.TaskID] {
			add(field+".taskId", "duplicate task id %d", s.TaskID)
		}
		seen[s.TaskID] = true

		if s.FocusLevel != nil && (*s.FocusLevel < 1 || *s.FocusLevel > 10) {
			add(field+".focusLevel", "must be between 1 and 10, got %d", *s.FocusLevel)
		}
		if s.EstimatedTimeRange != nil && !s.EstimatedTimeRange.Valid() {
			add(field+".estimatedTimeRange", "unknown range %q", *s.EstimatedTimeRange)
		}

		switch s.Type {
		case TaskFlex:
		case TaskFixed:
			if s.StartAt == nil || s.EndAt == nil {
				add(field, "FIXED task %d requires startAt and endAt", s.TaskID)
				continue
			}
			start, err := ParseClock(*s.StartAt)
			if err != nil {
				add(field+".startAt", "%v", err)
				continue
			}
			end, err := ParseClock(*s.EndAt)
			if err != nil {
				add(field+".endAt", "%v", err)
				continue
			}
			if end <= start {
				add(field+".endAt", "%s is not after startAt %s", *s.EndAt, *s.StartAt)
			}
		default:
			add(field+".type", "unknown task type %q", s.Type)
		}
	}

	return errors.Join(errs...)
}

// SplitByType separates FIXED and FLEX tasks, preserving input order.
func SplitByType(items []ScheduleItem) (fixed, flex []ScheduleItem) {
	for _, s := range items {
		if s.Type == TaskFixed {
			fixed = append(fixed, s)
		} else {
			flex = append(flex, s)
		}
	}
	return fixed, flex
}

// SchedulableFlex returns the FLEX tasks that can be placed on the timeline.
// Tasks referenced as another task's parent only group their children and
// are never scheduled themselves.
func SchedulableFlex(items []ScheduleItem) []ScheduleItem {
	parents := make(map[int64]bool)
	for _, s := range items {
		if s.ParentScheduleID != nil {
			parents[*s.ParentScheduleID] = true
		}
	}
	var out []ScheduleItem
	for _, s := range items {
		if s.Type == TaskFlex && !parents[s.TaskID] {
			out = append(out, s)
		}
	}
	return out
}

// FindTask returns the task with the given id.
func FindTask(items []ScheduleItem, id int64) (ScheduleItem, bool) {
	for _, s := range items {
		if s.TaskID == id {
			return s, true
		}
	}
	return ScheduleItem{}, false
}
