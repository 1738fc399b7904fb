package scheduler

import "fmt"

// WeeklyCapacityCriterion caps a provider's assigned hours per ISO week at their MaxHours.
//
// Validity:
//   - Returns false if the hours already assigned in the shift's week plus the shift's
//     own hours would exceed MaxHours
//   - Providers with MaxHours <= 0 are uncapped
type WeeklyCapacityCriterion struct {
	releaseDeclined bool
}

// NewWeeklyCapacityCriterion creates a new WeeklyCapacityCriterion
func NewWeeklyCapacityCriterion(releaseDeclined bool) *WeeklyCapacityCriterion {
	return &WeeklyCapacityCriterion{releaseDeclined: releaseDeclined}
}

func (c *WeeklyCapacityCriterion) Name() string {
	return "WeeklyCapacity"
}

func (c *WeeklyCapacityCriterion) IsEligible(state *ScheduleState, provider *Provider, shift *Shift) bool {
	if provider.MaxHours <= 0 {
		return true
	}
	return c.weekHours(state, provider.ID, shift, "")+shift.Hours() <= float64(provider.MaxHours)
}

// weekHours sums the provider's assigned hours in the ISO week of shift, skipping excludeShiftID
func (c *WeeklyCapacityCriterion) weekHours(state *ScheduleState, providerID string, shift *Shift, excludeShiftID string) float64 {
	year, week := shift.Start.In(state.Location).ISOWeek()

	var hours float64
	for _, a := range state.AssignmentsForProvider(providerID) {
		if c.releaseDeclined && a.Status == StatusDeclined {
			continue
		}
		if a.ShiftID == excludeShiftID {
			continue
		}
		other, ok := state.Shift(a.ShiftID)
		if !ok {
			continue
		}
		y, w := other.Start.In(state.Location).ISOWeek()
		if y == year && w == week {
			hours += other.Hours()
		}
	}
	return hours
}

func (c *WeeklyCapacityCriterion) ValidateScheduleState(state *ScheduleState) []ShiftValidationError {
	var errors []ShiftValidationError
	createdAssignmentsWithContext(state, func(a *Assignment, p *Provider, s *Shift) {
		if p.MaxHours <= 0 {
			return
		}
		total := c.weekHours(state, p.ID, s, s.ID) + s.Hours()
		if total > float64(p.MaxHours) {
			errors = append(errors, ShiftValidationError{
				ShiftID:       s.ID,
				ShiftStart:    s.Start,
				ProviderID:    p.ID,
				CriterionName: c.Name(),
				Description:   fmt.Sprintf("Provider '%s' has %.1f hours that week (max %d)", p.Name, total, p.MaxHours),
			})
		}
	})
	return errors
}
