package domain

type TimeZone string

const (
	ZoneMorning   TimeZone = "MORNING"
	ZoneAfternoon TimeZone = "AFTERNOON"
	ZoneEvening   TimeZone = "EVENING"
	ZoneNight     TimeZone = "NIGHT"
)

// AllTimeZones is the canonical zone order. Earlier zones win ties wherever
// zones are ranked.
var AllTimeZones = []TimeZone{ZoneMorning, ZoneAfternoon, ZoneEvening, ZoneNight}

func (z TimeZone) Valid() bool {
	switch z {
	case ZoneMorning, ZoneAfternoon, ZoneEvening, ZoneNight:
		return true
	}
	return false
}

// Rank returns the zone's position in AllTimeZones, or len(AllTimeZones)
// for unknown zones.
func (z TimeZone) Rank() int {
	for i, tz := range AllTimeZones {
		if tz == z {
			return i
		}
	}
	return len(AllTimeZones)
}

type TaskType string

const (
	TaskFixed TaskType = "FIXED"
	TaskFlex  TaskType = "FLEX"
)

type EstimatedTimeRange string

const (
	RangeUnder30   EstimatedTimeRange = "MINUTE_UNDER_30"
	Range30To60    EstimatedTimeRange = "MINUTE_30_TO_60"
	RangeHour1To2  EstimatedTimeRange = "HOUR_1_TO_2"
	RangeHour2To4  EstimatedTimeRange = "HOUR_2_TO_4"
	RangeHourOver4 EstimatedTimeRange = "HOUR_OVER_4"
)

func (r EstimatedTimeRange) Valid() bool {
	switch r {
	case RangeUnder30, Range30To60, RangeHour1To2, RangeHour2To4, RangeHourOver4:
		return true
	}
	return false
}

type Category string

const (
	CategoryAcademic Category = "academic"
	CategoryWork     Category = "work"
	CategoryExercise Category = "exercise"
	CategoryHobby    Category = "hobby"
	CategoryLife     Category = "life"
	CategoryOther    Category = "other"

	// CategoryError marks a task the analyzer could not make sense of.
	// Such tasks are dropped by the importance scorer.
	CategoryError Category = "ERROR"
)

type CognitiveLoad string

const (
	LoadLow  CognitiveLoad = "LOW"
	LoadMed  CognitiveLoad = "MED"
	LoadHigh CognitiveLoad = "HIGH"
)

// Value maps the load tier onto the numeric scale used by fatigue scoring.
func (l CognitiveLoad) Value() float64 {
	switch l {
	case LoadLow:
		return 0
	case LoadHigh:
		return 2
	default:
		return 1
	}
}

type AssignmentStatus string

const (
	StatusAssigned    AssignmentStatus = "ASSIGNED"
	StatusExcluded    AssignmentStatus = "EXCLUDED"
	StatusNotAssigned AssignmentStatus = "NOT_ASSIGNED"
)

type AssignedBy string

const (
	AssignedByAI   AssignedBy = "AI"
	AssignedByUser AssignedBy = "USER"
)

type RecordType string

const (
	RecordAIDraft RecordType = "AI_DRAFT"
)
