package scheduler

import "time"

// ShiftValidationError represents a constraint violation found on a specific shift
type ShiftValidationError struct {
	ShiftID       string
	ShiftStart    time.Time
	ProviderID    string
	CriterionName string
	Description   string
}

// Criterion is a hard constraint a provider must satisfy to be assigned a shift
type Criterion interface {
	// Name returns a human-readable identifier for this criterion
	Name() string

	// IsEligible acts as a veto: if ANY criterion returns false the provider cannot take the shift
	IsEligible(state *ScheduleState, provider *Provider, shift *Shift) bool

	// ValidateScheduleState checks the assignments made during the run against this criterion.
	// Returns a slice of validation errors (empty if all valid).
	ValidateScheduleState(state *ScheduleState) []ShiftValidationError
}

// CriteriaOptions selects and tunes the standard criteria
type CriteriaOptions struct {
	ReleaseDeclined       bool
	EnforceWeeklyCapacity bool
}

// StandardCriteria returns the eligibility rules: active, skill match, availability and no conflict,
// plus weekly capacity when enabled
func StandardCriteria(opts CriteriaOptions) []Criterion {
	criteria := []Criterion{
		NewActiveCriterion(),
		NewSkillMatchCriterion(),
		NewAvailabilityCriterion(),
		NewNoConflictCriterion(ConflictChecker{ReleaseDeclined: opts.ReleaseDeclined}),
	}
	if opts.EnforceWeeklyCapacity {
		criteria = append(criteria, NewWeeklyCapacityCriterion(opts.ReleaseDeclined))
	}
	return criteria
}

// createdAssignmentsWithContext yields each in-run assignment with its resolved provider and shift
func createdAssignmentsWithContext(state *ScheduleState, fn func(a *Assignment, p *Provider, s *Shift)) {
	for _, a := range state.CreatedAssignments() {
		shift, ok := state.Shift(a.ShiftID)
		if !ok {
			continue
		}
		provider, ok := state.Provider(a.ProviderID)
		if !ok {
			continue
		}
		fn(a, provider, shift)
	}
}
