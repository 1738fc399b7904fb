package scheduler

// ConflictChecker detects overlap between a candidate shift and a provider's existing assignments
type ConflictChecker struct {
	// ReleaseDeclined stops declined assignments from blocking the provider
	ReleaseDeclined bool
}

// HasConflict reports whether any shift already assigned to the provider overlaps the candidate.
// Assignments made earlier in the same run are included.
func (c ConflictChecker) HasConflict(state *ScheduleState, providerID string, shift *Shift) bool {
	_, ok := c.FirstConflict(state, providerID, shift)
	return ok
}

// FirstConflict returns the first assigned shift that overlaps the candidate
func (c ConflictChecker) FirstConflict(state *ScheduleState, providerID string, shift *Shift) (*Shift, bool) {
	for _, a := range state.AssignmentsForProvider(providerID) {
		if c.ReleaseDeclined && a.Status == StatusDeclined {
			continue
		}
		other, ok := state.Shift(a.ShiftID)
		if !ok || other.ID == shift.ID {
			continue
		}
		if shift.Overlaps(other) {
			return other, true
		}
	}
	return nil, false
}
