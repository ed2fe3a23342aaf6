package engine

import (
	"time"

	"cycle-server/models/observation"
)

// FlowProfile holds the typical logged flow for each day offset into a period
// (offset 0 is the first day). A nil profile is valid and empty.
type FlowProfile map[int]observation.Flow

// FlowAt returns the profiled flow for offset, or the default pattern.
func (p FlowProfile) FlowAt(offset int) observation.Flow {
	if f, ok := p[offset]; ok && f != observation.FlowNone {
		return f
	}
	return DefaultFlowForOffset(offset)
}

// BuildFlowProfile finds, for every day offset within the user's actual
// period runs, the flow logged most often at that offset. Ties go to the
// heavier flow. Days without a logged flow do not vote.
func BuildFlowProfile(observations []observation.Observation) FlowProfile {
	flowByDay := make(map[time.Time]observation.Flow)
	for _, o := range observations {
		if !IsActualPeriod(o) || o.Flow == observation.FlowNone {
			continue
		}
		day := DateOnly(o.Date)
		if o.Flow.Rank() > flowByDay[day].Rank() {
			flowByDay[day] = o.Flow
		}
	}

	votes := make(map[int]map[observation.Flow]int)
	for _, run := range GroupConsecutiveDays(observations, IsActualPeriod) {
		for offset := 0; offset < run.Length(); offset++ {
			f, ok := flowByDay[AddDays(run.Start, offset)]
			if !ok {
				continue
			}
			if votes[offset] == nil {
				votes[offset] = make(map[observation.Flow]int)
			}
			votes[offset][f]++
		}
	}

	profile := make(FlowProfile, len(votes))
	for offset, counts := range votes {
		var best observation.Flow
		bestCount := 0
		for f, n := range counts {
			if n > bestCount || (n == bestCount && f.Rank() > best.Rank()) {
				best, bestCount = f, n
			}
		}
		profile[offset] = best
	}
	return profile
}
