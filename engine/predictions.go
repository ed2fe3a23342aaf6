package engine

import (
	"cycle-server/models/cycle"
	"cycle-server/models/observation"
)

// DefaultMonthsToPredict is the number of future cycles projected when the
// caller does not ask for a specific horizon.
const DefaultMonthsToPredict = 3

const (
	NOTES_PREDICTED_PERIOD    = "Predicted period"
	NOTES_PREDICTED_OVULATION = "Predicted ovulation"
	NOTES_FERTILE_WINDOW      = "Fertile window"
)

// GeneratePredictions projects monthsToPredict cycles forward from the last
// period start. Each cycle yields its period days, its ovulation day and the
// fertile-window days around ovulation, in that order. A non-positive horizon
// means DefaultMonthsToPredict.
func GeneratePredictions(stats cycle.Statistics, monthsToPredict int) []observation.Observation {
	return GeneratePredictionsWithProfile(stats, monthsToPredict, nil)
}

// GeneratePredictionsWithProfile is GeneratePredictions with predicted flow
// taken from the user's own history wherever the profile covers a day offset.
func GeneratePredictionsWithProfile(stats cycle.Statistics, monthsToPredict int, profile FlowProfile) []observation.Observation {
	if stats.LastPeriodStartDate == nil || stats.AverageCycleLength <= 0 {
		return []observation.Observation{}
	}
	if monthsToPredict <= 0 {
		monthsToPredict = DefaultMonthsToPredict
	}

	cycleLength := stats.AverageCycleLength
	periodLength := stats.AveragePeriodLength
	fertileDays := cycle.FertileDaysBeforeOvulation + cycle.FertileDaysAfterOvulation
	out := make([]observation.Observation, 0, monthsToPredict*(periodLength+1+fertileDays))

	for i := 1; i <= monthsToPredict; i++ {
		cycleStart := AddDays(*stats.LastPeriodStartDate, i*cycleLength)

		for offset := 0; offset < periodLength; offset++ {
			out = append(out, observation.Observation{
				Date:         AddDays(cycleStart, offset),
				IsPeriod:     true,
				Flow:         profile.FlowAt(offset),
				Notes:        NOTES_PREDICTED_PERIOD,
				IsPrediction: true,
			})
		}

		nextCycleStart := AddDays(cycleStart, cycleLength)
		ovulationDay := AddDays(nextCycleStart, -cycle.LutealPhaseDays)
		out = append(out, observation.Observation{
			Date:         ovulationDay,
			IsOvulation:  true,
			Notes:        NOTES_PREDICTED_OVULATION,
			IsPrediction: true,
		})

		for offset := -cycle.FertileDaysBeforeOvulation; offset <= cycle.FertileDaysAfterOvulation; offset++ {
			if offset == 0 {
				continue
			}
			out = append(out, observation.Observation{
				Date:         AddDays(ovulationDay, offset),
				IsFertile:    true,
				Notes:        NOTES_FERTILE_WINDOW,
				IsPrediction: true,
			})
		}
	}

	return out
}

// DefaultFlowForOffset is the flow pattern used for predicted period days
// when nothing better is known: two heavy days, two medium, then light.
func DefaultFlowForOffset(offset int) observation.Flow {
	switch {
	case offset < 2:
		return observation.FlowHeavy
	case offset < 4:
		return observation.FlowMedium
	default:
		return observation.FlowLight
	}
}
