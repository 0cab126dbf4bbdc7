package scheduler

import (
	"math"
	"sort"

	"github.com/alexanderramin/dayplan/internal/domain"
)

const (
	TagClosureEnforced = "closure_enforced"

	// overflowBufferPct is the share of a zone's capacity that may be
	// overbooked at a near-zero penalty.
	overflowBufferPct = 0.2
	// bufferPenaltyRate only breaks ties between candidates inside the buffer.
	bufferPenaltyRate = 0.001
)

// ChainScore is the breakdown of one candidate's judgement.
type ChainScore struct {
	ChainID         string
	Total           float64
	IncludedUtility float64
	ExcludedCost    float64
	OverflowPenalty float64
	FatiguePenalty  float64
	FocusAlignBonus float64
	IncludedCount   int
	ExcludedCount   int
}

// Judgement is the outcome of judging every candidate.
type Judgement struct {
	Candidates []domain.ChainCandidate
	SelectedID *string
	Scores     []ChainScore
}

// JudgeChains closes every candidate over group order, scores the closed
// versions and selects the first candidate with the strictly highest
// score. With no candidates nothing is selected.
func JudgeChains(
	candidates []domain.ChainCandidate,
	features map[int64]domain.TaskFeature,
	capacity map[domain.TimeZone]int,
	w domain.WeightParams,
	focus domain.TimeZone,
) Judgement {
	if len(candidates) == 0 {
		return Judgement{}
	}

	j := Judgement{
		Candidates: make([]domain.ChainCandidate, 0, len(candidates)),
		Scores:     make([]ChainScore, 0, len(candidates)),
	}
	best := math.Inf(-1)
	for _, c := range candidates {
		closed := ApplyClosure(c, features)
		score := ScoreChain(closed, features, capacity, w, focus)

		j.Candidates = append(j.Candidates, closed)
		j.Scores = append(j.Scores, score)
		if score.Total > best {
			best = score.Total
			id := closed.ChainID
			j.SelectedID = &id
		}
	}
	return j
}

// ApplyClosure removes every grouped task whose lower-ordered siblings are
// not all included in the candidate. Only orders that exist among the
// features count. The result is tagged closure_enforced when something was
// removed; otherwise the candidate is returned unchanged.
func ApplyClosure(c domain.ChainCandidate, features map[int64]domain.TaskFeature) domain.ChainCandidate {
	included := includedIDs(c)

	existing := make(map[string]map[int]bool)
	for _, f := range features {
		if f.GroupID == nil || f.OrderInGroup == nil {
			continue
		}
		if existing[*f.GroupID] == nil {
			existing[*f.GroupID] = make(map[int]bool)
		}
		existing[*f.GroupID][*f.OrderInGroup] = true
	}

	present := make(map[string]map[int]bool)
	for id := range included {
		f, ok := features[id]
		if !ok || f.GroupID == nil || f.OrderInGroup == nil {
			continue
		}
		if present[*f.GroupID] == nil {
			present[*f.GroupID] = make(map[int]bool)
		}
		present[*f.GroupID][*f.OrderInGroup] = true
	}

	remove := make(map[int64]bool)
	for id := range included {
		f, ok := features[id]
		if !ok || f.GroupID == nil || f.OrderInGroup == nil {
			continue
		}
		group := *f.GroupID
		for prev := 1; prev < *f.OrderInGroup; prev++ {
			if existing[group][prev] && !present[group][prev] {
				remove[id] = true
				break
			}
		}
	}
	if len(remove) == 0 {
		return c
	}

	closed := c.Clone()
	for tz, ids := range closed.TimeZoneQueues {
		kept := ids[:0]
		for _, id := range ids {
			if !remove[id] {
				kept = append(kept, id)
			}
		}
		closed.TimeZoneQueues[tz] = kept
	}
	closed.RationaleTags = append(closed.RationaleTags, TagClosureEnforced)
	return closed
}

// ScoreChain scores a candidate. Queue entries that are not known
// features are ignored.
func ScoreChain(
	c domain.ChainCandidate,
	features map[int64]domain.TaskFeature,
	capacity map[domain.TimeZone]int,
	w domain.WeightParams,
	focus domain.TimeZone,
) ChainScore {
	included := includedIDs(c)

	var rawIncluded, rawExcluded float64
	score := ChainScore{ChainID: c.ChainID}
	for _, id := range sortedIDs(features) {
		f := features[id]
		if included[id] {
			rawIncluded += f.ImportanceScore
			score.IncludedCount++
		} else {
			rawExcluded += f.ImportanceScore
			score.ExcludedCount++
		}
	}

	for _, tz := range sortedZones(c.TimeZoneQueues) {
		var minutes int
		var fatigue float64
		for _, id := range c.TimeZoneQueues[tz] {
			if f, ok := features[id]; ok {
				minutes += f.DurationAvgMin
				fatigue += f.FatigueCost
			}
		}
		zoneCap := capacity[tz]
		score.OverflowPenalty += OverflowPenalty(max(0, minutes-zoneCap), zoneCap, w.WOverflow)
		if fatigue > float64(zoneCap) {
			score.FatiguePenalty += (fatigue - float64(zoneCap)) * w.WFatigueRisk
		}
	}

	var rawAlign float64
	for _, id := range c.TimeZoneQueues[focus] {
		if f, ok := features[id]; ok {
			rawAlign += f.ImportanceScore
		}
	}

	score.IncludedUtility = w.WIncluded * rawIncluded
	score.ExcludedCost = w.WExcluded * rawExcluded
	score.FocusAlignBonus = w.WFocusAlign * rawAlign
	score.Total = score.IncludedUtility - score.ExcludedCost - score.OverflowPenalty - score.FatiguePenalty + score.FocusAlignBonus
	return score
}

// OverflowPenalty grows quadratically once a zone is booked past its
// capacity plus a 20% buffer. Zones without capacity have no buffer.
func OverflowPenalty(overflow, capacity int, wOverflow float64) float64 {
	o := float64(overflow)
	if capacity <= 0 {
		if overflow > 0 {
			return wOverflow * o * o
		}
		return 0
	}
	buffer := float64(capacity) * overflowBufferPct
	if o <= buffer {
		return bufferPenaltyRate * o
	}
	excess := o - buffer
	return wOverflow * excess * excess
}

func includedIDs(c domain.ChainCandidate) map[int64]bool {
	ids := make(map[int64]bool)
	for _, queue := range c.TimeZoneQueues {
		for _, id := range queue {
			ids[id] = true
		}
	}
	return ids
}

// sortedZones iterates queues in canonical zone order so floating point
// sums do not depend on map iteration order.
func sortedZones(queues map[domain.TimeZone][]int64) []domain.TimeZone {
	zones := make([]domain.TimeZone, 0, len(queues))
	for tz := range queues {
		zones = append(zones, tz)
	}
	sort.Slice(zones, func(i, j int) bool {
		if zones[i].Rank() != zones[j].Rank() {
			return zones[i].Rank() < zones[j].Rank()
		}
		return zones[i] < zones[j]
	})
	return zones
}

func sortedIDs(features map[int64]domain.TaskFeature) []int64 {
	ids := make([]int64, 0, len(features))
	for id := range features {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
