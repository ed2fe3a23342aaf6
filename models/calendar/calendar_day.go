package calendar

import (
	"time"

	"cycle-server/models/observation"
)

// Category is what a calendar cell shows for a day.
type Category string

const (
	CategoryNone      Category = "none"
	CategoryPeriod    Category = "period"
	CategoryOvulation Category = "ovulation"
	CategoryFertile   Category = "fertile"
)

// CalendarDay is one day of the merged actual + predicted view.
type CalendarDay struct {
	Date         time.Time                `json:"-"`
	DateString   string                   `json:"date"`
	Category     Category                 `json:"category"`
	IsPrediction bool                     `json:"is_prediction"`
	Observation  *observation.Observation `json:"observation,omitempty"`
}

// CategoryOf classifies a single observation. Ovulation wins over period, and
// period wins over the fertile window.
func CategoryOf(o observation.Observation) Category {
	switch {
	case o.IsOvulation:
		return CategoryOvulation
	case o.IsPeriod:
		return CategoryPeriod
	case o.IsFertile:
		return CategoryFertile
	}
	return CategoryNone
}
