package scheduler

import "fmt"

// SkillMatchCriterion requires a provider skill equal to the shift's required skill.
//
// Validity:
//   - Returns false if the provider has no skills
//   - Returns false unless one trimmed, lowercased skill equals the trimmed, lowercased
//     required-skill string (the whole string, even when it contains commas)
type SkillMatchCriterion struct{}

// NewSkillMatchCriterion creates a new SkillMatchCriterion
func NewSkillMatchCriterion() *SkillMatchCriterion {
	return &SkillMatchCriterion{}
}

func (c *SkillMatchCriterion) Name() string {
	return "SkillMatch"
}

func (c *SkillMatchCriterion) IsEligible(state *ScheduleState, provider *Provider, shift *Shift) bool {
	if len(provider.Skills) == 0 {
		return false
	}
	return provider.HasSkill(shift.RequiredSkills)
}

func (c *SkillMatchCriterion) ValidateScheduleState(state *ScheduleState) []ShiftValidationError {
	var errors []ShiftValidationError
	createdAssignmentsWithContext(state, func(a *Assignment, p *Provider, s *Shift) {
		if !c.IsEligible(state, p, s) {
			errors = append(errors, ShiftValidationError{
				ShiftID:       s.ID,
				ShiftStart:    s.Start,
				ProviderID:    p.ID,
				CriterionName: c.Name(),
				Description:   fmt.Sprintf("Provider '%s' lacks required skill '%s'", p.Name, s.RequiredSkills),
			})
		}
	})
	return errors
}
