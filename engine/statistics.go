// Package engine derives cycle statistics from logged observations and
// projects future cycles from them. Every function is pure: callers supply the
// history and the current time, and persist whatever they want to keep.
package engine

import (
	"math"
	"time"

	"cycle-server/models/cycle"
	"cycle-server/models/observation"
)

// ComputeCycleStatistics derives averages, the forward projection and the
// current cycle position from a user's observations. Predicted observations
// are ignored.
func ComputeCycleStatistics(observations []observation.Observation, now time.Time) cycle.Statistics {
	stats := cycle.NewDefaultStatistics()

	runs := GroupConsecutiveDays(observations, IsActualPeriod)
	starts := periodStarts(runs)

	stats.AverageCycleLength = averageCycleLength(starts)
	stats.AveragePeriodLength = averagePeriodLength(runs)

	if len(starts) == 0 {
		return stats
	}

	lastStart := starts[len(starts)-1]
	nextStart := AddDays(lastStart, stats.AverageCycleLength)
	ovulation := AddDays(nextStart, -cycle.LutealPhaseDays)
	fertileStart := AddDays(ovulation, -cycle.FertileDaysBeforeOvulation)
	fertileEnd := AddDays(ovulation, cycle.FertileDaysAfterOvulation)

	stats.LastPeriodStartDate = &lastStart
	stats.NextPeriodStartDate = &nextStart
	stats.NextOvulationDate = &ovulation
	stats.FertileWindowStart = &fertileStart
	stats.FertileWindowEnd = &fertileEnd

	if day, ok := currentCycleDay(lastStart, now, stats.AverageCycleLength); ok {
		phase := PhaseForDay(day, stats.AverageCycleLength, stats.AveragePeriodLength)
		stats.CurrentCycleDay = &day
		stats.CurrentCyclePhase = &phase
	}

	return stats
}

// PhaseForDay maps a 1-based cycle day to its phase. The ovulation phase is
// the five days centred on the day LutealPhaseDays before the next period;
// the follicular phase is everything between the period and that window.
// Menstrual takes precedence when a long period overlaps the window.
func PhaseForDay(day, cycleLength, periodLength int) cycle.Phase {
	ovulationDay := cycleLength - cycle.LutealPhaseDays
	switch {
	case day <= periodLength:
		return cycle.PhaseMenstrual
	case day < ovulationDay-2:
		return cycle.PhaseFollicular
	case day <= ovulationDay+2:
		return cycle.PhaseOvulation
	default:
		return cycle.PhaseLuteal
	}
}

func periodStarts(runs []DayRun) []time.Time {
	starts := make([]time.Time, 0, len(runs))
	for _, r := range runs {
		starts = append(starts, r.Start)
	}
	return starts
}

func averageCycleLength(starts []time.Time) int {
	if len(starts) < 2 {
		return cycle.DefaultCycleLength
	}

	var total, count int
	for i := 1; i < len(starts); i++ {
		gap := DaysBetween(starts[i-1], starts[i])
		if gap < cycle.MinCycleLength || gap > cycle.MaxCycleLength {
			continue
		}
		total += gap
		count++
	}
	if count == 0 {
		return cycle.DefaultCycleLength
	}
	return roundedMean(total, count)
}

func averagePeriodLength(runs []DayRun) int {
	if len(runs) == 0 {
		return cycle.DefaultPeriodLength
	}
	var total int
	for _, r := range runs {
		total += r.Length()
	}
	return roundedMean(total, len(runs))
}

// currentCycleDay is false when now precedes the last start or the cycle is
// already longer than the average (overdue).
func currentCycleDay(lastStart, now time.Time, cycleLength int) (int, bool) {
	elapsed := DaysBetween(lastStart, now)
	if elapsed < 0 || elapsed >= cycleLength {
		return 0, false
	}
	return elapsed + 1, true
}

func roundedMean(total, count int) int {
	return int(math.Round(float64(total) / float64(count)))
}
