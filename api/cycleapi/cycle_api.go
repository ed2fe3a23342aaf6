package cycleapi

import (
	"time"

	"cycle-server/models/calendar"
	"cycle-server/models/cycle"
	"cycle-server/models/observation"
)

// CycleAPI defines the interface for reading and writing a user's cycle data,
// either against a running server or offline.
type CycleAPI interface {
	PutObservation(userID string, o observation.Observation) (*observation.Observation, error)
	GetObservations(userID string, from, to time.Time) ([]observation.Observation, error)
	GetStatistics(userID string, now time.Time) (*cycle.Statistics, error)
	GetPredictions(userID string, months int, now time.Time) ([]observation.Observation, error)
	GetCalendar(userID string, from, to, now time.Time) ([]calendar.CalendarDay, error)
}
