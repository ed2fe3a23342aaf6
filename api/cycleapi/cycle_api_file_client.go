package cycleapi

import (
	"fmt"
	"sort"
	"time"

	"cycle-server/engine"
	"cycle-server/models/calendar"
	"cycle-server/models/cycle"
	"cycle-server/models/observation"
	services "cycle-server/service"
	"cycle-server/util"
)

// CycleFileClient answers the CycleAPI offline from an observations JSON
// file. All calls share one history regardless of userID.
type CycleFileClient struct {
	observations []observation.Observation
}

// NewCycleFileClient loads the observations stored at path.
func NewCycleFileClient(path string) (*CycleFileClient, error) {
	obs, err := util.ReadObservationsFromJSON(path)
	if err != nil {
		return nil, fmt.Errorf("could not read observations from %s: %w", path, err)
	}
	c := &CycleFileClient{}
	for _, o := range obs {
		if _, err := c.PutObservation("", o); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// PutObservation keeps the observation in memory, replacing any on the same date.
func (c *CycleFileClient) PutObservation(userID string, o observation.Observation) (*observation.Observation, error) {
	if o.IsPrediction {
		return nil, services.ErrPredictionInput
	}
	o.Normalize()
	if err := o.Validate(); err != nil {
		return nil, err
	}
	for i := range c.observations {
		if c.observations[i].Date.Equal(o.Date) {
			c.observations[i] = o
			return &o, nil
		}
	}
	c.observations = append(c.observations, o)
	sort.Slice(c.observations, func(i, j int) bool {
		return c.observations[i].Date.Before(c.observations[j].Date)
	})
	return &o, nil
}

func (c *CycleFileClient) GetObservations(userID string, from, to time.Time) ([]observation.Observation, error) {
	out := []observation.Observation{}
	for _, o := range c.observations {
		if (from.IsZero() || !o.Date.Before(from)) && (to.IsZero() || !o.Date.After(to)) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (c *CycleFileClient) GetStatistics(userID string, now time.Time) (*cycle.Statistics, error) {
	stats := engine.ComputeCycleStatistics(c.history(now), orToday(now))
	return &stats, nil
}

func (c *CycleFileClient) GetPredictions(userID string, months int, now time.Time) ([]observation.Observation, error) {
	history := c.history(now)
	stats := engine.ComputeCycleStatistics(history, orToday(now))
	return engine.GeneratePredictionsWithProfile(stats, months, engine.BuildFlowProfile(history)), nil
}

func (c *CycleFileClient) GetCalendar(userID string, from, to, now time.Time) ([]calendar.CalendarDay, error) {
	from, to = observation.DateOnly(from), observation.DateOnly(to)
	if to.Before(from) {
		return nil, services.ErrInvalidRange
	}
	history := c.history(now)
	stats := engine.ComputeCycleStatistics(history, orToday(now))
	months := engine.DefaultMonthsToPredict
	if stats.LastPeriodStartDate != nil {
		if n := engine.DaysBetween(*stats.LastPeriodStartDate, to)/stats.AverageCycleLength + 1; n > months {
			months = n
		}
	}
	predicted := engine.GeneratePredictionsWithProfile(stats, months, engine.BuildFlowProfile(history))
	actual, _ := c.GetObservations(userID, from, to)
	return services.MergeCalendar(from, to, actual, predicted), nil
}

// history returns the observations on or before now.
func (c *CycleFileClient) history(now time.Time) []observation.Observation {
	obs, _ := c.GetObservations("", time.Time{}, observation.DateOnly(orToday(now)))
	return obs
}

func orToday(now time.Time) time.Time {
	if now.IsZero() {
		return observation.DateOnly(time.Now())
	}
	return now
}
