package observation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DATE_LAYOUT is the calendar-day format used on the wire and in storage keys.
const DATE_LAYOUT = "2006-01-02"

// ErrInvalidObservation is returned by Validate for observations the store must reject.
var ErrInvalidObservation = errors.New("invalid observation")

// Flow is the menstrual flow intensity of a period day.
type Flow string

const (
	FlowNone   Flow = ""
	FlowLight  Flow = "light"
	FlowMedium Flow = "medium"
	FlowHeavy  Flow = "heavy"
)

// Valid reports whether f is one of the known intensities or unset.
func (f Flow) Valid() bool {
	switch f {
	case FlowNone, FlowLight, FlowMedium, FlowHeavy:
		return true
	}
	return false
}

// Rank orders flows from none (0) to heavy (3).
func (f Flow) Rank() int {
	switch f {
	case FlowLight:
		return 1
	case FlowMedium:
		return 2
	case FlowHeavy:
		return 3
	}
	return 0
}

// Observation is a single user's log entry for one calendar day, or a
// prediction synthesized for a future day.
type Observation struct {
	ID           string    `json:"id,omitempty"`
	Date         time.Time `json:"date"`
	IsPeriod     bool      `json:"is_period"`
	IsOvulation  bool      `json:"is_ovulation"`
	IsFertile    bool      `json:"is_fertile"`
	Symptoms     []string  `json:"symptoms,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Flow         Flow      `json:"flow,omitempty"`
	IsPrediction bool      `json:"is_prediction"`
}

// MarshalJSON writes Date as a plain calendar day.
func (o Observation) MarshalJSON() ([]byte, error) {
	type Alias Observation
	return json.Marshal(&struct {
		Date string `json:"date"`
		Alias
	}{
		Date:  FormatDate(o.Date),
		Alias: (Alias)(o),
	})
}

// UnmarshalJSON accepts Date either as "2006-01-02" or as a full RFC3339 timestamp.
func (o *Observation) UnmarshalJSON(data []byte) error {
	type Alias Observation
	aux := &struct {
		Date string `json:"date"`
		*Alias
	}{
		Alias: (*Alias)(o),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Date == "" {
		o.Date = time.Time{}
		return nil
	}
	d, err := ParseDate(aux.Date)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, aux.Date)
		if tsErr != nil {
			return fmt.Errorf("failed to parse observation date %q: %w", aux.Date, err)
		}
		d = DateOnly(ts)
	}
	o.Date = d
	return nil
}

// Normalize truncates Date to its calendar day and collapses Symptoms into a
// sorted set of trimmed, lower-cased tags.
func (o *Observation) Normalize() {
	o.Date = DateOnly(o.Date)
	o.Symptoms = NormalizeSymptoms(o.Symptoms)
}

// Validate checks the constraints the store relies on.
func (o *Observation) Validate() error {
	if o.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidObservation)
	}
	if !o.Flow.Valid() {
		return fmt.Errorf("%w: unknown flow %q", ErrInvalidObservation, o.Flow)
	}
	if o.Flow != FlowNone && !o.IsPeriod {
		return fmt.Errorf("%w: flow is only allowed on period days", ErrInvalidObservation)
	}
	return nil
}

func (o *Observation) ToString() string {
	return fmt.Sprintf("Observation(date=%s, period=%t, ovulation=%t, fertile=%t, prediction=%t)",
		FormatDate(o.Date), o.IsPeriod, o.IsOvulation, o.IsFertile, o.IsPrediction)
}

// NormalizeSymptoms returns the distinct non-empty tags, lower-cased and sorted.
func NormalizeSymptoms(symptoms []string) []string {
	if len(symptoms) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(symptoms))
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		tag := strings.ToLower(strings.TrimSpace(s))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// DateOnly returns midnight UTC of t's calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DATE_LAYOUT)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DATE_LAYOUT, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
