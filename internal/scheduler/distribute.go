package scheduler

import (
	"math"

	"github.com/alexanderramin/dayplan/internal/domain"
)

const (
	FallbackChainID = "fallback_distributed"

	TagStaticDistribution = "static_distribution_cap_120"
	TagFocusPriority      = "focus_priority"

	// zoneFillLimit is how far past its capacity a zone may be budgeted.
	zoneFillLimit = 1.2
)

// ZonePriority returns the focus zone followed by the remaining zones in
// canonical order.
func ZonePriority(focus domain.TimeZone) []domain.TimeZone {
	order := make([]domain.TimeZone, 0, len(domain.AllTimeZones))
	if focus.Valid() {
		order = append(order, focus)
	}
	for _, tz := range domain.AllTimeZones {
		if tz != focus {
			order = append(order, tz)
		}
	}
	return order
}

// DistributeFallback builds a chain without the generator. Tasks are taken
// in importance order and placed in the first zone, focus zone first, whose
// budget of 120% of capacity still has room. When no zone has room the task
// goes to the zone with the lowest fill ratio. Zones without capacity never
// receive tasks, so when every zone is empty the task stays unqueued.
func DistributeFallback(features map[int64]domain.TaskFeature, capacity map[domain.TimeZone]int, focus domain.TimeZone) domain.ChainCandidate {
	priority := ZonePriority(focus)

	limits := make(map[domain.TimeZone]float64, len(priority))
	usage := make(map[domain.TimeZone]float64, len(priority))
	queues := make(map[domain.TimeZone][]int64, len(priority))
	for _, tz := range priority {
		limits[tz] = float64(capacity[tz]) * zoneFillLimit
		queues[tz] = []int64{}
	}

	for _, f := range ByImportance(features) {
		duration := float64(f.DurationAvgMin)

		target, ok := firstZoneWithRoom(priority, limits, usage, duration)
		if !ok {
			target, ok = leastLoadedZone(priority, limits, usage)
		}
		if !ok {
			continue
		}
		queues[target] = append(queues[target], f.TaskID)
		usage[target] += duration
	}

	return domain.ChainCandidate{
		ChainID:        FallbackChainID,
		TimeZoneQueues: queues,
		RationaleTags:  []string{TagStaticDistribution, TagFocusPriority},
	}
}

func firstZoneWithRoom(priority []domain.TimeZone, limits, usage map[domain.TimeZone]float64, duration float64) (domain.TimeZone, bool) {
	for _, tz := range priority {
		if limits[tz] > 0 && usage[tz]+duration <= limits[tz] {
			return tz, true
		}
	}
	return "", false
}

// leastLoadedZone picks the zone with the lowest usage/limit ratio. Ties go
// to the earlier zone in priority order.
func leastLoadedZone(priority []domain.TimeZone, limits, usage map[domain.TimeZone]float64) (domain.TimeZone, bool) {
	best := domain.TimeZone("")
	bestRatio := math.Inf(1)
	for _, tz := range priority {
		if limits[tz] <= 0 {
			continue
		}
		if ratio := usage[tz] / limits[tz]; ratio < bestRatio {
			best, bestRatio = tz, ratio
		}
	}
	return best, best != ""
}
