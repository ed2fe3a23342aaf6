package services

import (
	"errors"
	"fmt"
	"time"

	"cycle-server/dao"
	"cycle-server/engine"
	"cycle-server/models/calendar"
	"cycle-server/models/cycle"
	"cycle-server/models/observation"

	"github.com/rs/zerolog/log"
)

// ErrPredictionInput is returned when a client tries to store a prediction
// as if it were a logged observation.
var ErrPredictionInput = errors.New("predictions cannot be logged as observations")

// ErrInvalidRange is returned when a requested date range is inverted.
var ErrInvalidRange = errors.New("invalid date range")

// CycleService loads a user's observations from the store, runs the cycle
// engine over them and merges the results for display.
type CycleService struct {
	observationDao  dao.ObservationDAO
	lookbackDays    int
	monthsToPredict int
	now             func() time.Time
}

// NewCycleService constructs a new CycleService with store dependency injection.
func NewCycleService(observationDao dao.ObservationDAO, lookbackDays, monthsToPredict int) *CycleService {
	return &CycleService{
		observationDao:  observationDao,
		lookbackDays:    lookbackDays,
		monthsToPredict: monthsToPredict,
		now:             time.Now,
	}
}

// WithClock replaces the clock used when callers do not pass "now" explicitly.
func (cs *CycleService) WithClock(now func() time.Time) *CycleService {
	cs.now = now
	return cs
}

func (cs *CycleService) Now() time.Time {
	return cs.now()
}

// LogObservation validates and stores a user-entered observation.
func (cs *CycleService) LogObservation(userID string, o observation.Observation) (observation.Observation, error) {
	if o.IsPrediction {
		return observation.Observation{}, ErrPredictionInput
	}
	o.Normalize()
	if err := o.Validate(); err != nil {
		return observation.Observation{}, err
	}

	stored, err := cs.observationDao.UpsertObservation(userID, o)
	if err != nil {
		return observation.Observation{}, fmt.Errorf("failed to log observation: %w", err)
	}
	log.Info().Str("user_id", userID).Str("date", observation.FormatDate(stored.Date)).Msg("[CycleService] Logged observation")
	cs.refreshAfterWrite(userID)
	return stored, nil
}

func (cs *CycleService) GetObservation(userID string, date time.Time) (*observation.Observation, error) {
	return cs.observationDao.GetObservation(userID, observation.DateOnly(date))
}

func (cs *CycleService) DeleteObservation(userID string, date time.Time) error {
	if err := cs.observationDao.DeleteObservation(userID, observation.DateOnly(date)); err != nil {
		return err
	}
	log.Info().Str("user_id", userID).Str("date", observation.FormatDate(date)).Msg("[CycleService] Deleted observation")
	cs.refreshAfterWrite(userID)
	return nil
}

func (cs *CycleService) ListObservations(userID string, from, to time.Time) ([]observation.Observation, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, observation.FormatDate(from), observation.FormatDate(to))
	}
	return cs.observationDao.GetObservationsInRange(userID, observation.DateOnly(from), observation.DateOnly(to))
}

// GetStatistics computes the cycle statistics as of now over the lookback window.
func (cs *CycleService) GetStatistics(userID string, now time.Time) (cycle.Statistics, error) {
	history, err := cs.history(userID, now)
	if err != nil {
		return cycle.Statistics{}, err
	}
	return engine.ComputeCycleStatistics(history, now), nil
}

// GetPredictions projects months cycles ahead (the configured default when
// months is not positive), using the user's own flow history.
func (cs *CycleService) GetPredictions(userID string, months int, now time.Time) ([]observation.Observation, error) {
	history, err := cs.history(userID, now)
	if err != nil {
		return nil, err
	}
	if months <= 0 {
		months = cs.monthsToPredict
	}
	stats := engine.ComputeCycleStatistics(history, now)
	return engine.GeneratePredictionsWithProfile(stats, months, engine.BuildFlowProfile(history)), nil
}

// RefreshPredictions recomputes a user's predictions and stores them in the
// prediction cache.
func (cs *CycleService) RefreshPredictions(userID string) (int, error) {
	predictions, err := cs.GetPredictions(userID, cs.monthsToPredict, cs.now())
	if err != nil {
		return 0, err
	}
	if err := cs.observationDao.SetPredictions(userID, predictions); err != nil {
		return 0, fmt.Errorf("failed to cache predictions for user %s: %w", userID, err)
	}
	return len(predictions), nil
}

// GetCachedPredictions returns the predictions last stored by
// RefreshPredictions, computing and storing them on a cache miss.
func (cs *CycleService) GetCachedPredictions(userID string) ([]observation.Observation, error) {
	cached, err := cs.observationDao.GetPredictions(userID)
	if err == nil {
		log.Debug().Str("user_id", userID).Int("count", len(cached)).Msg("[CycleService] Prediction cache hit")
		return cached, nil
	}
	if !errors.Is(err, dao.ErrNotFound) {
		return nil, fmt.Errorf("failed to read prediction cache: %w", err)
	}

	log.Debug().Str("user_id", userID).Msg("[CycleService] Prediction cache miss")
	predictions, err := cs.GetPredictions(userID, cs.monthsToPredict, cs.now())
	if err != nil {
		return nil, err
	}
	if err := cs.observationDao.SetPredictions(userID, predictions); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("[CycleService] Could not store predictions")
	}
	return predictions, nil
}

// refreshAfterWrite keeps the prediction cache in step with the user's
// history. A failed refresh leaves the write in place and is only logged.
func (cs *CycleService) refreshAfterWrite(userID string) {
	if _, err := cs.RefreshPredictions(userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("[CycleService] Prediction cache refresh failed")
	}
}

// GetCalendar returns one CalendarDay per date in [from, to]. A logged
// observation always wins over a prediction for the same date.
func (cs *CycleService) GetCalendar(userID string, from, to, now time.Time) ([]calendar.CalendarDay, error) {
	from, to = observation.DateOnly(from), observation.DateOnly(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, observation.FormatDate(from), observation.FormatDate(to))
	}

	actual, err := cs.observationDao.GetObservationsInRange(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}
	predicted, err := cs.predictionsCovering(userID, to, now)
	if err != nil {
		return nil, err
	}
	return MergeCalendar(from, to, actual, predicted), nil
}

// predictionsCovering generates enough future cycles to reach the end of the
// requested range.
func (cs *CycleService) predictionsCovering(userID string, to, now time.Time) ([]observation.Observation, error) {
	history, err := cs.history(userID, now)
	if err != nil {
		return nil, err
	}
	stats := engine.ComputeCycleStatistics(history, now)
	if stats.LastPeriodStartDate == nil {
		return nil, nil
	}
	months := cs.monthsToPredict
	if span := engine.DaysBetween(*stats.LastPeriodStartDate, to); span > 0 {
		needed := span/stats.AverageCycleLength + 1
		if needed > months {
			months = needed
		}
	}
	return engine.GeneratePredictionsWithProfile(stats, months, engine.BuildFlowProfile(history)), nil
}

func (cs *CycleService) history(userID string, now time.Time) ([]observation.Observation, error) {
	to := observation.DateOnly(now)
	from := to.AddDate(0, 0, -cs.lookbackDays)
	obs, err := cs.observationDao.GetObservationsInRange(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load observation history for user %s: %w", userID, err)
	}
	return obs, nil
}

// MergeCalendar builds the day-indexed view of actual and predicted
// observations. Among predictions for the same day, ovulation beats period
// and period beats the fertile window.
func MergeCalendar(from, to time.Time, actual, predicted []observation.Observation) []calendar.CalendarDay {
	actualByDate := make(map[string]observation.Observation, len(actual))
	for _, o := range actual {
		if o.IsPrediction {
			continue
		}
		actualByDate[observation.FormatDate(o.Date)] = o
	}

	predictedByDate := make(map[string]observation.Observation, len(predicted))
	for _, p := range predicted {
		key := observation.FormatDate(p.Date)
		if existing, ok := predictedByDate[key]; ok && categoryRank(calendar.CategoryOf(existing)) >= categoryRank(calendar.CategoryOf(p)) {
			continue
		}
		predictedByDate[key] = p
	}

	days := make([]calendar.CalendarDay, 0, engine.DaysBetween(from, to)+1)
	for d := observation.DateOnly(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		key := observation.FormatDate(d)
		day := calendar.CalendarDay{Date: d, DateString: key, Category: calendar.CategoryNone}
		if o, ok := actualByDate[key]; ok {
			day.Category = calendar.CategoryOf(o)
			day.Observation = &o
		} else if p, ok := predictedByDate[key]; ok {
			day.Category = calendar.CategoryOf(p)
			day.IsPrediction = true
			day.Observation = &p
		}
		days = append(days, day)
	}
	return days
}

func categoryRank(c calendar.Category) int {
	switch c {
	case calendar.CategoryOvulation:
		return 3
	case calendar.CategoryPeriod:
		return 2
	case calendar.CategoryFertile:
		return 1
	}
	return 0
}
