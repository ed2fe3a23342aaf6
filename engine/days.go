package engine

import (
	"sort"
	"time"

	"cycle-server/models/observation"
)

// DayRun is a maximal run of consecutive calendar days matching a predicate.
type DayRun struct {
	Start time.Time
	End   time.Time
}

// Length is the number of calendar days covered by the run.
func (r DayRun) Length() int {
	return DaysBetween(r.Start, r.End) + 1
}

// DateOnly truncates t to its calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	return observation.DateOnly(t)
}

// DaysBetween returns the whole calendar days from a to b (negative if b precedes a).
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

func AddDays(t time.Time, days int) time.Time {
	return DateOnly(t).AddDate(0, 0, days)
}

// IsActualPeriod selects user-entered period days.
func IsActualPeriod(o observation.Observation) bool {
	return o.IsPeriod && !o.IsPrediction
}

// GroupConsecutiveDays sorts the observations matching keep by date and groups
// them into runs. Two days belong to the same run when they are at most one
// calendar day apart, so repeated entries for a date collapse into one day.
func GroupConsecutiveDays(observations []observation.Observation, keep func(observation.Observation) bool) []DayRun {
	days := make([]time.Time, 0, len(observations))
	for _, o := range observations {
		if keep(o) {
			days = append(days, DateOnly(o.Date))
		}
	}
	if len(days) == 0 {
		return nil
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	runs := []DayRun{{Start: days[0], End: days[0]}}
	for _, day := range days[1:] {
		current := &runs[len(runs)-1]
		if DaysBetween(current.End, day) <= 1 {
			current.End = day
			continue
		}
		runs = append(runs, DayRun{Start: day, End: day})
	}
	return runs
}
