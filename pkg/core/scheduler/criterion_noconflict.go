package scheduler

import "fmt"

// NoConflictCriterion prevents double-booking a provider.
//
// Validity:
//   - Returns false if the provider holds an assignment, from before or during this run,
//     whose shift overlaps the candidate shift
type NoConflictCriterion struct {
	checker ConflictChecker
}

// NewNoConflictCriterion creates a new NoConflictCriterion
func NewNoConflictCriterion(checker ConflictChecker) *NoConflictCriterion {
	return &NoConflictCriterion{checker: checker}
}

func (c *NoConflictCriterion) Name() string {
	return "NoConflict"
}

func (c *NoConflictCriterion) IsEligible(state *ScheduleState, provider *Provider, shift *Shift) bool {
	return !c.checker.HasConflict(state, provider.ID, shift)
}

func (c *NoConflictCriterion) ValidateScheduleState(state *ScheduleState) []ShiftValidationError {
	var errors []ShiftValidationError
	createdAssignmentsWithContext(state, func(a *Assignment, p *Provider, s *Shift) {
		if other, ok := c.checker.FirstConflict(state, p.ID, s); ok {
			errors = append(errors, ShiftValidationError{
				ShiftID:       s.ID,
				ShiftStart:    s.Start,
				ProviderID:    p.ID,
				CriterionName: c.Name(),
				Description: fmt.Sprintf("Provider '%s' is double-booked with shift %s (%s - %s)",
					p.Name, other.ID, other.Start.Format("2006-01-02 15:04"), other.End.Format("15:04")),
			})
		}
	})
	return errors
}
