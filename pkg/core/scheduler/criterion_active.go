package scheduler

import "fmt"

// ActiveCriterion excludes inactive providers from all matching
type ActiveCriterion struct{}

// NewActiveCriterion creates a new ActiveCriterion
func NewActiveCriterion() *ActiveCriterion {
	return &ActiveCriterion{}
}

func (c *ActiveCriterion) Name() string {
	return "Active"
}

func (c *ActiveCriterion) IsEligible(state *ScheduleState, provider *Provider, shift *Shift) bool {
	return provider.Active
}

func (c *ActiveCriterion) ValidateScheduleState(state *ScheduleState) []ShiftValidationError {
	var errors []ShiftValidationError
	createdAssignmentsWithContext(state, func(a *Assignment, p *Provider, s *Shift) {
		if !p.Active {
			errors = append(errors, ShiftValidationError{
				ShiftID:       s.ID,
				ShiftStart:    s.Start,
				ProviderID:    p.ID,
				CriterionName: c.Name(),
				Description:   fmt.Sprintf("Provider '%s' is inactive", p.Name),
			})
		}
	})
	return errors
}
