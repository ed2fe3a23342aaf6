package util

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"cycle-server/models/cycle"
	"cycle-server/models/observation"
)

// ReadObservationsFromJSON loads a list of observations from JSON on disk.
func ReadObservationsFromJSON(filePath string) ([]observation.Observation, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var obs []observation.Observation
	if err := json.Unmarshal(data, &obs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal observations: %w", err)
	}
	return obs, nil
}

// ReadSeedFromJSON loads a user id -> observations map, the format used to
// seed a fresh store.
func ReadSeedFromJSON(filePath string) (map[string][]observation.Observation, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var seed map[string][]observation.Observation
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed observations: %w", err)
	}
	return seed, nil
}

// PrintStatistics writes the key fields of a Statistics value.
func PrintStatistics(w io.Writer, stats cycle.Statistics) {
	fmt.Fprintf(w, "Average cycle length: %d days\n", stats.AverageCycleLength)
	fmt.Fprintf(w, "Average period length: %d days\n", stats.AveragePeriodLength)
	if stats.LastPeriodStartDate == nil {
		fmt.Fprintln(w, "Not enough data yet to predict the next cycle.")
		return
	}
	fmt.Fprintf(w, "Last period start: %s\n", observation.FormatDate(*stats.LastPeriodStartDate))
	fmt.Fprintf(w, "Next period start: %s\n", observation.FormatDate(*stats.NextPeriodStartDate))
	fmt.Fprintf(w, "Next ovulation: %s\n", observation.FormatDate(*stats.NextOvulationDate))
	fmt.Fprintf(w, "Fertile window: %s to %s\n",
		observation.FormatDate(*stats.FertileWindowStart), observation.FormatDate(*stats.FertileWindowEnd))
	if stats.CurrentCycleDay == nil {
		fmt.Fprintln(w, "Current cycle day: unknown (period is overdue)")
		return
	}
	fmt.Fprintf(w, "Current cycle day: %d (%s)\n", *stats.CurrentCycleDay, *stats.CurrentCyclePhase)
}

// PrintPredictions writes one line per predicted observation.
func PrintPredictions(w io.Writer, predictions []observation.Observation) {
	for _, p := range predictions {
		line := fmt.Sprintf("%s  %s", observation.FormatDate(p.Date), p.Notes)
		if p.Flow != observation.FlowNone {
			line += fmt.Sprintf(" (%s)", p.Flow)
		}
		fmt.Fprintln(w, line)
	}
}
