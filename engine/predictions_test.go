package engine

import (
	"testing"

	"cycle-server/models/cycle"
	"cycle-server/models/observation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsFrom(lastStart string, cycleLength, periodLength int) cycle.Statistics {
	last := day(lastStart)
	return cycle.Statistics{
		AverageCycleLength:  cycleLength,
		AveragePeriodLength: periodLength,
		LastPeriodStartDate: &last,
	}
}

func datesOf(obs []observation.Observation) []string {
	out := make([]string, 0, len(obs))
	for _, o := range obs {
		out = append(out, observation.FormatDate(o.Date))
	}
	return out
}

func TestGeneratePredictions_NoLastPeriodStart(t *testing.T) {
	preds := GeneratePredictions(cycle.NewDefaultStatistics(), 3)

	assert.NotNil(t, preds)
	assert.Empty(t, preds)
}

func TestGeneratePredictions_NonPositiveCycleLength(t *testing.T) {
	preds := GeneratePredictions(statsFrom("2024-01-01", 0, 5), 3)

	assert.Empty(t, preds)
}

func TestGeneratePredictions_Count(t *testing.T) {
	preds := GeneratePredictions(statsFrom("2024-01-01", 28, 5), 3)

	assert.Len(t, preds, 36)
	for _, p := range preds {
		assert.True(t, p.IsPrediction, p.ToString())
	}
}

func TestGeneratePredictions_DefaultHorizon(t *testing.T) {
	stats := statsFrom("2024-01-01", 28, 5)

	assert.Equal(t, GeneratePredictions(stats, DefaultMonthsToPredict), GeneratePredictions(stats, 0))
}

func TestGeneratePredictions_Deterministic(t *testing.T) {
	stats := statsFrom("2024-02-10", 30, 4)

	first := GeneratePredictions(stats, 3)
	second := GeneratePredictions(stats, 3)

	assert.Equal(t, first, second)
}

func TestGeneratePredictions_SingleCycleDates(t *testing.T) {
	stats := ComputeCycleStatistics(periodDays("2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04"), day("2024-03-10"))

	preds := GeneratePredictions(stats, 1)

	require.Len(t, preds, 4+1+6)
	assert.Equal(t, []string{
		"2024-03-29", "2024-03-30", "2024-03-31", "2024-04-01",
		"2024-04-12",
		"2024-04-07", "2024-04-08", "2024-04-09", "2024-04-10", "2024-04-11", "2024-04-13",
	}, datesOf(preds))

	for _, p := range preds[:4] {
		assert.True(t, p.IsPeriod)
		assert.False(t, p.IsOvulation)
		assert.Equal(t, NOTES_PREDICTED_PERIOD, p.Notes)
	}

	ovulation := preds[4]
	assert.True(t, ovulation.IsOvulation)
	assert.False(t, ovulation.IsPeriod)
	assert.Equal(t, NOTES_PREDICTED_OVULATION, ovulation.Notes)

	for _, p := range preds[5:] {
		assert.True(t, p.IsFertile)
		assert.False(t, p.IsPeriod)
		assert.False(t, p.IsOvulation)
		assert.Equal(t, NOTES_FERTILE_WINDOW, p.Notes)
	}
}

func TestGeneratePredictions_CyclesAdvanceByAverageLength(t *testing.T) {
	preds := GeneratePredictions(statsFrom("2024-01-01", 30, 3), 2)

	var periodStarts []string
	for i, p := range preds {
		if p.IsPeriod && (i == 0 || !preds[i-1].IsPeriod) {
			periodStarts = append(periodStarts, observation.FormatDate(p.Date))
		}
	}
	assert.Equal(t, []string{"2024-01-31", "2024-03-01"}, periodStarts)
}

func TestGeneratePredictions_DefaultFlowPattern(t *testing.T) {
	preds := GeneratePredictions(statsFrom("2024-01-01", 28, 6), 1)

	var flows []observation.Flow
	for _, p := range preds {
		if p.IsPeriod {
			flows = append(flows, p.Flow)
		}
	}
	assert.Equal(t, []observation.Flow{
		observation.FlowHeavy, observation.FlowHeavy,
		observation.FlowMedium, observation.FlowMedium,
		observation.FlowLight, observation.FlowLight,
	}, flows)
}

func TestGeneratePredictionsWithProfile_UsesHistoricalFlow(t *testing.T) {
	history := []observation.Observation{
		{Date: day("2024-01-01"), IsPeriod: true, Flow: observation.FlowMedium},
		{Date: day("2024-01-02"), IsPeriod: true, Flow: observation.FlowHeavy},
		{Date: day("2024-01-03"), IsPeriod: true},
		{Date: day("2024-01-29"), IsPeriod: true, Flow: observation.FlowMedium},
		{Date: day("2024-01-30"), IsPeriod: true, Flow: observation.FlowHeavy},
		{Date: day("2024-01-31"), IsPeriod: true, Flow: observation.FlowLight},
	}
	profile := BuildFlowProfile(history)

	preds := GeneratePredictionsWithProfile(statsFrom("2024-01-29", 28, 4), 1, profile)

	require.True(t, preds[3].IsPeriod)
	assert.Equal(t, observation.FlowMedium, preds[0].Flow)
	assert.Equal(t, observation.FlowHeavy, preds[1].Flow)
	assert.Equal(t, observation.FlowLight, preds[2].Flow)
	// offset 3 was never logged, so the default pattern applies
	assert.Equal(t, observation.FlowMedium, preds[3].Flow)
}
