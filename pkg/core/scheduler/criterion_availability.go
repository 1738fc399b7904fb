package scheduler

import "fmt"

// AvailabilityCriterion requires a weekly window covering the shift
type AvailabilityCriterion struct{}

// NewAvailabilityCriterion creates a new AvailabilityCriterion
func NewAvailabilityCriterion() *AvailabilityCriterion {
	return &AvailabilityCriterion{}
}

func (c *AvailabilityCriterion) Name() string {
	return "Availability"
}

func (c *AvailabilityCriterion) IsEligible(state *ScheduleState, provider *Provider, shift *Shift) bool {
	return state.Availability.IsAvailable(provider.ID, shift)
}

func (c *AvailabilityCriterion) ValidateScheduleState(state *ScheduleState) []ShiftValidationError {
	var errors []ShiftValidationError
	createdAssignmentsWithContext(state, func(a *Assignment, p *Provider, s *Shift) {
		if !state.Availability.IsAvailable(p.ID, s) {
			start := s.Start.In(state.Location)
			errors = append(errors, ShiftValidationError{
				ShiftID:       s.ID,
				ShiftStart:    s.Start,
				ProviderID:    p.ID,
				CriterionName: c.Name(),
				Description: fmt.Sprintf("Provider '%s' has no %s window covering %s-%s",
					p.Name, WeekdayOf(start), TimeOfDayOf(start), TimeOfDayOf(s.End.In(state.Location))),
			})
		}
	})
	return errors
}
