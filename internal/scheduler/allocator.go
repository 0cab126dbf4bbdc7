package scheduler

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/dayplan/internal/domain"
)

const (
	// slotMinutes is the clock grid tasks start on.
	slotMinutes = 10
	// gapMinutes separates consecutive tasks inside a session.
	gapMinutes = 10
)

// AssignInput is everything the time assigner reads.
type AssignInput struct {
	UserID   int64
	Sessions []domain.FreeSession
	Features map[int64]domain.TaskFeature
	// Chain is the selected candidate. Nil means nothing was selected and
	// every task is excluded.
	Chain *domain.ChainCandidate
}

// AssignOutput holds the per-task results and the achieved fill rate.
type AssignOutput struct {
	Results  []domain.AssignmentResult
	FillRate float64
}

// pendingSplit tracks a task whose earlier chunks are already placed.
type pendingSplit struct {
	taskID    int64
	remaining int
	seq       int
}

type assigner struct {
	in       AssignInput
	queues   map[domain.TimeZone][]int64
	results  []domain.AssignmentResult
	index    map[int64]int
	assigned map[int64]bool
	pending  *pendingSplit
}

// AssignTimes walks the free sessions in start order and places tasks from
// the selected chain onto the clock. Each session starts on the next
// 10-minute boundary and draws from the queue of its dominant zone. A task
// that does not fit is split when both the chunk and the remainder reach
// the task's minimum chunk; the remainder takes priority in later
// sessions. Tasks never placed are EXCLUDED, and a split that ended with a
// single chunk is flattened into its parent.
func AssignTimes(in AssignInput) AssignOutput {
	a := &assigner{
		in:       in,
		queues:   make(map[domain.TimeZone][]int64),
		index:    make(map[int64]int),
		assigned: make(map[int64]bool),
	}
	if in.Chain != nil {
		for tz, ids := range in.Chain.TimeZoneQueues {
			a.queues[tz] = append([]int64(nil), ids...)
		}
	}

	sessions := append([]domain.FreeSession(nil), in.Sessions...)
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Start < sessions[j].Start })
	if in.Chain != nil {
		for _, s := range sessions {
			a.fillSession(s)
		}
	}

	a.excludeUnassigned()
	flattenSingleChunks(a.results)

	fillRate := 1.0
	if len(in.Features) > 0 {
		fillRate = float64(len(a.assigned)) / float64(len(in.Features))
	}
	return AssignOutput{Results: a.results, FillRate: fillRate}
}

func (a *assigner) fillSession(s domain.FreeSession) {
	zone := DominantZone(s)
	current := ceilToSlot(s.Start)

	for current < s.End {
		usable := ((s.End - current) / slotMinutes) * slotMinutes
		if usable <= 0 {
			return
		}

		f, need, ok := a.next(zone)
		if !ok {
			return
		}

		if need <= usable {
			a.place(zone, f, current, current+need)
			current += need
			if current < s.End {
				current += gapMinutes
			}
			continue
		}

		if usable < f.DurationMinChunk {
			return
		}
		if rest := need - usable; rest > 0 && rest < f.DurationMinChunk {
			return
		}
		a.placeChunk(zone, f, need, current, current+usable)
		return
	}
}

// next returns the task to place and the minutes it still needs. A pending
// split remainder always wins over the zone queue.
func (a *assigner) next(zone domain.TimeZone) (domain.TaskFeature, int, bool) {
	if a.pending != nil {
		return a.in.Features[a.pending.taskID], a.pending.remaining, true
	}
	for len(a.queues[zone]) > 0 {
		id := a.queues[zone][0]
		f, ok := a.in.Features[id]
		if !ok || a.assigned[id] {
			a.queues[zone] = a.queues[zone][1:]
			continue
		}
		return f, f.DurationPlanMin, true
	}
	return domain.TaskFeature{}, 0, false
}

func (a *assigner) pop(zone domain.TimeZone, id int64) {
	if q := a.queues[zone]; len(q) > 0 && q[0] == id {
		a.queues[zone] = q[1:]
	}
}

// place assigns a task, or the closing chunk of a split, in full.
func (a *assigner) place(zone domain.TimeZone, f domain.TaskFeature, start, end int) {
	if p := a.pending; p != nil {
		a.appendChunk(p.taskID, f.Title, start, end, p.seq)
		a.pending = nil
		return
	}
	a.addResult(domain.AssignmentResult{
		UserID:           a.in.UserID,
		TaskID:           f.TaskID,
		DayPlanID:        f.DayPlanID,
		Title:            f.Title,
		Type:             domain.TaskFlex,
		AssignedBy:       domain.AssignedByAI,
		AssignmentStatus: domain.StatusAssigned,
		StartAt:          domain.Ptr(domain.FormatClock(start)),
		EndAt:            domain.Ptr(domain.FormatClock(end)),
	})
	a.assigned[f.TaskID] = true
	a.pop(zone, f.TaskID)
}

// placeChunk places the part of a task that fits and carries the rest.
func (a *assigner) placeChunk(zone domain.TimeZone, f domain.TaskFeature, need, start, end int) {
	if a.pending == nil {
		a.addResult(domain.AssignmentResult{
			UserID:           a.in.UserID,
			TaskID:           f.TaskID,
			DayPlanID:        f.DayPlanID,
			Title:            f.Title,
			Type:             domain.TaskFlex,
			AssignedBy:       domain.AssignedByAI,
			AssignmentStatus: domain.StatusAssigned,
			Children:         []domain.SubTaskResult{},
		})
		a.assigned[f.TaskID] = true
		a.pop(zone, f.TaskID)
		a.pending = &pendingSplit{taskID: f.TaskID, seq: 1}
	}

	p := a.pending
	a.appendChunk(p.taskID, f.Title, start, end, p.seq)
	p.remaining = need - (end - start)
	p.seq++
	if p.remaining <= 0 {
		a.pending = nil
	}
}

func (a *assigner) addResult(r domain.AssignmentResult) {
	a.index[r.TaskID] = len(a.results)
	a.results = append(a.results, r)
}

func (a *assigner) appendChunk(taskID int64, title string, start, end, seq int) {
	i, ok := a.index[taskID]
	if !ok {
		return
	}
	a.results[i].Children = append(a.results[i].Children, domain.SubTaskResult{
		Title:   fmt.Sprintf("%s - %d", title, seq),
		StartAt: domain.FormatClock(start),
		EndAt:   domain.FormatClock(end),
	})
}

func (a *assigner) excludeUnassigned() {
	for _, id := range sortedIDs(a.in.Features) {
		if a.assigned[id] {
			continue
		}
		f := a.in.Features[id]
		a.addResult(domain.AssignmentResult{
			UserID:           a.in.UserID,
			TaskID:           f.TaskID,
			DayPlanID:        f.DayPlanID,
			Title:            f.Title,
			Type:             domain.TaskFlex,
			AssignedBy:       domain.AssignedByAI,
			AssignmentStatus: domain.StatusExcluded,
		})
	}
}

// flattenSingleChunks promotes a lone chunk to its parent result.
func flattenSingleChunks(results []domain.AssignmentResult) {
	for i := range results {
		if len(results[i].Children) != 1 {
			continue
		}
		only := results[i].Children[0]
		results[i].StartAt = domain.Ptr(only.StartAt)
		results[i].EndAt = domain.Ptr(only.EndAt)
		results[i].Children = nil
	}
}

// DominantZone returns the zone with the most minutes in the session.
// Ties go to the earlier zone.
func DominantZone(s domain.FreeSession) domain.TimeZone {
	best := domain.ZoneMorning
	bestMin := -1
	for _, tz := range domain.AllTimeZones {
		if m := s.ZoneProfile[tz]; m > bestMin {
			best, bestMin = tz, m
		}
	}
	return best
}

func ceilToSlot(minute int) int {
	return ((minute + slotMinutes - 1) / slotMinutes) * slotMinutes
}
