package scheduler

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/dayplan/internal/domain"
)

type interval struct {
	start, end int
}

// CalculateFreeSessions returns the gaps in [startArrange, dayEnd) that are
// not covered by FIXED tasks, ordered by start. A day end earlier than the
// start wraps past midnight but is capped at 24:00.
func CalculateFreeSessions(startArrange, dayEnd string, fixed []domain.ScheduleItem) ([]domain.FreeSession, error) {
	start, err := domain.ParseClock(startArrange)
	if err != nil {
		return nil, fmt.Errorf("start arrange: %w", err)
	}
	end, err := domain.ParseClock(dayEnd)
	if err != nil {
		return nil, fmt.Errorf("day end: %w", err)
	}
	if end < start {
		end += domain.MinutesPerDay
	}
	if end > domain.MinutesPerDay {
		end = domain.MinutesPerDay
	}

	blocks := make([]interval, 0, len(fixed))
	for _, f := range fixed {
		if f.Type != domain.TaskFixed || f.StartAt == nil || f.EndAt == nil {
			continue
		}
		fs, err := domain.ParseClock(*f.StartAt)
		if err != nil {
			return nil, fmt.Errorf("fixed task %d start: %w", f.TaskID, err)
		}
		fe, err := domain.ParseClock(*f.EndAt)
		if err != nil {
			return nil, fmt.Errorf("fixed task %d end: %w", f.TaskID, err)
		}
		if fe < fs {
			fe += domain.MinutesPerDay
		}
		blocks = append(blocks, interval{fs, fe})
	}
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].start < blocks[j].start })

	var sessions []domain.FreeSession
	current := start
	for _, b := range blocks {
		if current < b.start {
			gapEnd := min(b.start, end)
			if current < gapEnd {
				sessions = append(sessions, newSession(current, gapEnd))
			}
		}
		current = max(current, b.end)
		if current >= end {
			break
		}
	}
	if current < end {
		sessions = append(sessions, newSession(current, end))
	}
	return sessions, nil
}

func newSession(start, end int) domain.FreeSession {
	profile := emptyZoneMap()
	for m := start; m < end; m++ {
		profile[domain.ZoneOf(m)]++
	}
	return domain.FreeSession{
		Start:       start,
		End:         end,
		Duration:    end - start,
		ZoneProfile: profile,
	}
}

// Capacity sums the zone minutes of every session.
func Capacity(sessions []domain.FreeSession) map[domain.TimeZone]int {
	capacity := emptyZoneMap()
	for _, s := range sessions {
		for tz, minutes := range s.ZoneProfile {
			if _, ok := capacity[tz]; ok {
				capacity[tz] += minutes
			}
		}
	}
	return capacity
}

func emptyZoneMap() map[domain.TimeZone]int {
	m := make(map[domain.TimeZone]int, len(domain.AllTimeZones))
	for _, tz := range domain.AllTimeZones {
		m[tz] = 0
	}
	return m
}
