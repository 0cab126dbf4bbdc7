package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplan/internal/domain"
)

// ValidateRequest checks a parsed request before it is planned. It returns
// every problem found, the structural checks of the request itself first.
func ValidateRequest(req *domain.ArrangementRequest) []error {
	var errs []error
	if err := req.Validate(); err != nil {
		errs = append(errs, flatten(err)...)
	}

	ids := make(map[int64]bool, len(req.Schedules))
	for _, s := range req.Schedules {
		ids[s.TaskID] = true
	}
	for i, s := range req.Schedules {
		field := fmt.Sprintf("schedules[%d]", i)
		if strings.TrimSpace(s.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", field))
		}
		if s.ParentScheduleID == nil {
			continue
		}
		switch parent := *s.ParentScheduleID; {
		case parent == s.TaskID:
			errs = append(errs, fmt.Errorf("%s.parentScheduleId: task %d cannot be its own parent", field, s.TaskID))
		case !ids[parent]:
			errs = append(errs, fmt.Errorf("%s.parentScheduleId: unknown task %d", field, parent))
		}
	}
	return errs
}

// flatten unwraps a joined error into its parts.
func flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// Join combines validation errors into one error for callers that want a
// single value.
func Join(errs []error) error {
	return errors.Join(errs...)
}
