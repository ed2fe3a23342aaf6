// Package dao defines the observation store the cycle service reads from and
// writes to. Implementations live in the redis and sqlite subpackages.
package dao

import (
	"errors"
	"time"

	"cycle-server/models/observation"
)

// ErrNotFound is returned when a user has no observation (or cached
// predictions) for the requested key.
var ErrNotFound = errors.New("not found")

// ObservationDAO stores at most one actual observation per user per calendar
// day, plus the last set of predictions computed for each user.
type ObservationDAO interface {
	// UpsertObservation replaces any observation on the same date and returns
	// the stored value, with an ID assigned if it had none.
	UpsertObservation(userID string, o observation.Observation) (observation.Observation, error)
	GetObservation(userID string, date time.Time) (*observation.Observation, error)
	DeleteObservation(userID string, date time.Time) error
	// GetObservationsInRange returns observations with from <= date <= to, ascending.
	GetObservationsInRange(userID string, from, to time.Time) ([]observation.Observation, error)
	ListUserIDs() ([]string, error)

	SetPredictions(userID string, predictions []observation.Observation) error
	GetPredictions(userID string) ([]observation.Observation, error)
}
