package scheduler

import (
	"sort"
	"strings"
	"time"
)

// DefaultContinuityValues are the preference values that ask for the same providers
var DefaultContinuityValues = []string{"consistent", "consistency", "high", "prefers_consistency"}

// ContinuityRanker orders a family's previous providers
type ContinuityRanker struct {
	values map[string]bool
}

// NewContinuityRanker creates a ranker recognising the given preference values.
// An empty list uses DefaultContinuityValues.
func NewContinuityRanker(values []string) *ContinuityRanker {
	if len(values) == 0 {
		values = DefaultContinuityValues
	}
	r := &ContinuityRanker{values: make(map[string]bool, len(values))}
	for _, v := range values {
		r.values[normalizePreference(v)] = true
	}
	return r
}

// WantsContinuity reports whether the family's preference asks for continuity of care
func (r *ContinuityRanker) WantsContinuity(family *Family) bool {
	if family == nil {
		return false
	}
	return r.values[normalizePreference(family.ContinuityPreference)]
}

// RankByHistory returns the pool providers who have served the family, most frequent first
// and, among equals, most recently seen first. Providers outside the pool are dropped.
func (r *ContinuityRanker) RankByHistory(state *ScheduleState, familyID string, pool []*Provider) []*Provider {
	freq := make(map[string]int)
	lastSeen := make(map[string]time.Time)

	for _, a := range state.FamilyHistory(familyID) {
		if a.ProviderID == "" {
			continue
		}
		freq[a.ProviderID]++
		if shift, ok := state.Shift(a.ShiftID); ok {
			if shift.Start.After(lastSeen[a.ProviderID]) {
				lastSeen[a.ProviderID] = shift.Start
			}
		}
	}

	var ranked []*Provider
	for _, p := range pool {
		if freq[p.ID] > 0 {
			ranked = append(ranked, p)
		}
	}

	// A provider with no resolvable shift keeps the zero time, which sorts last among equals
	sort.SliceStable(ranked, func(i, j int) bool {
		fi, fj := freq[ranked[i].ID], freq[ranked[j].ID]
		if fi != fj {
			return fi > fj
		}
		return lastSeen[ranked[i].ID].After(lastSeen[ranked[j].ID])
	})

	return ranked
}

func normalizePreference(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
