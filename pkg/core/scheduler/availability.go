package scheduler

import "time"

// AvailabilityIndex answers whether a provider's weekly windows cover a shift.
// Windows are keyed by provider and weekday.
type AvailabilityIndex struct {
	windows map[string]map[Weekday][]AvailabilityWindow
	loc     *time.Location
}

// NewAvailabilityIndex indexes the windows. Shift instants are read in loc.
func NewAvailabilityIndex(windows []AvailabilityWindow, loc *time.Location) *AvailabilityIndex {
	if loc == nil {
		loc = time.UTC
	}
	idx := &AvailabilityIndex{
		windows: make(map[string]map[Weekday][]AvailabilityWindow),
		loc:     loc,
	}
	for _, w := range windows {
		byDay, ok := idx.windows[w.ProviderID]
		if !ok {
			byDay = make(map[Weekday][]AvailabilityWindow)
			idx.windows[w.ProviderID] = byDay
		}
		byDay[w.Weekday] = append(byDay[w.Weekday], w)
	}
	return idx
}

// IsAvailable reports whether one of the provider's windows on the shift's start weekday
// contains the shift's time-of-day span. A shift running past midnight is only checked
// against the day it starts on.
func (idx *AvailabilityIndex) IsAvailable(providerID string, shift *Shift) bool {
	start := shift.Start.In(idx.loc)
	end := shift.End.In(idx.loc)

	dayWindows := idx.windows[providerID][WeekdayOf(start)]
	if len(dayWindows) == 0 {
		return false
	}

	startTime := TimeOfDayOf(start)
	endTime := TimeOfDayOf(end)
	for _, w := range dayWindows {
		if w.Contains(startTime, endTime) {
			return true
		}
	}
	return false
}

// Windows returns the provider's windows for a weekday
func (idx *AvailabilityIndex) Windows(providerID string, day Weekday) []AvailabilityWindow {
	return idx.windows[providerID][day]
}
