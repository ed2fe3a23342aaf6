package cycle

import (
	"fmt"
	"time"
)

const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5

	// MinCycleLength and MaxCycleLength bound the gaps between period starts
	// that count toward the average cycle length.
	MinCycleLength = 21
	MaxCycleLength = 45

	// LutealPhaseDays is the fixed number of days from ovulation to the next
	// period, independent of the measured cycle length.
	LutealPhaseDays = 14

	FertileDaysBeforeOvulation = 5
	FertileDaysAfterOvulation  = 1
)

// Phase is the part of the cycle a given day falls in.
type Phase string

const (
	PhaseMenstrual  Phase = "menstrual"
	PhaseFollicular Phase = "follicular"
	PhaseOvulation  Phase = "ovulation"
	PhaseLuteal     Phase = "luteal"
)

// Statistics is derived from a user's observation history and recomputed on
// every request. Nil pointers mean there was not enough data.
type Statistics struct {
	AverageCycleLength  int        `json:"average_cycle_length"`
	AveragePeriodLength int        `json:"average_period_length"`
	LastPeriodStartDate *time.Time `json:"last_period_start_date"`
	NextPeriodStartDate *time.Time `json:"next_period_start_date"`
	NextOvulationDate   *time.Time `json:"next_ovulation_date"`
	FertileWindowStart  *time.Time `json:"fertile_window_start"`
	FertileWindowEnd    *time.Time `json:"fertile_window_end"`
	CurrentCycleDay     *int       `json:"current_cycle_day"`
	CurrentCyclePhase   *Phase     `json:"current_cycle_phase"`
}

// NewDefaultStatistics returns the statistics for a user with no usable history.
func NewDefaultStatistics() Statistics {
	return Statistics{
		AverageCycleLength:  DefaultCycleLength,
		AveragePeriodLength: DefaultPeriodLength,
	}
}

func (s *Statistics) ToString() string {
	last := "none"
	if s.LastPeriodStartDate != nil {
		last = s.LastPeriodStartDate.Format("2006-01-02")
	}
	return fmt.Sprintf("Statistics(cycle=%d, period=%d, last_start=%s)",
		s.AverageCycleLength, s.AveragePeriodLength, last)
}
