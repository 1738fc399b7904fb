package scheduler

// ValidateScheduleState validates the run's assignments against all provided criteria.
// An empty slice indicates every new assignment satisfies every criterion.
func ValidateScheduleState(state *ScheduleState, criteria []Criterion) []ShiftValidationError {
	var errors []ShiftValidationError

	for _, criterion := range criteria {
		errors = append(errors, criterion.ValidateScheduleState(state)...)
	}

	return errors
}
