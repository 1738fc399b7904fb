package scheduler

import (
	"sort"
	"time"
)

// ScheduleState holds everything a scheduling run reads and the assignments it has made.
// Indexes are built once by NewScheduleState and kept current by AddAssignment.
type ScheduleState struct {
	Providers   []*Provider
	Shifts      []*Shift // schedulable shifts, ordered by start time
	Assignments []*Assignment

	// Location is where weekdays and times of day are read from shift instants
	Location *time.Location

	Availability *AvailabilityIndex

	providersByID         map[string]*Provider
	shiftsByID            map[string]*Shift
	familiesByID          map[string]*Family
	assignmentsByProvider map[string][]*Assignment
	assignmentsByFamily   map[string][]*Assignment
	assignedShiftIDs      map[string]bool
}

// NewScheduleState builds a state from the given records.
// Shifts are sorted by start time; ties keep their input order.
// Unschedulable shifts are left out of Shifts but can still be looked up by id.
func NewScheduleState(
	providers []*Provider,
	windows []AvailabilityWindow,
	families []*Family,
	shifts []*Shift,
	assignments []*Assignment,
	loc *time.Location,
) *ScheduleState {
	if loc == nil {
		loc = time.UTC
	}

	sorted := make([]*Shift, 0, len(shifts))
	for _, sh := range shifts {
		if !sh.Unschedulable {
			sorted = append(sorted, sh)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	state := &ScheduleState{
		Providers:             providers,
		Shifts:                sorted,
		Location:              loc,
		Availability:          NewAvailabilityIndex(windows, loc),
		providersByID:         make(map[string]*Provider, len(providers)),
		shiftsByID:            make(map[string]*Shift, len(shifts)),
		familiesByID:          make(map[string]*Family, len(families)),
		assignmentsByProvider: make(map[string][]*Assignment),
		assignmentsByFamily:   make(map[string][]*Assignment),
		assignedShiftIDs:      make(map[string]bool),
	}

	for _, p := range providers {
		state.providersByID[p.ID] = p
	}
	for _, s := range shifts {
		state.shiftsByID[s.ID] = s
	}
	for _, f := range families {
		state.familiesByID[f.ID] = f
	}
	for _, a := range assignments {
		state.indexAssignment(a)
	}

	return state
}

// AddAssignment records an assignment so later checks in the same run can see it
func (s *ScheduleState) AddAssignment(a *Assignment) {
	s.indexAssignment(a)
}

func (s *ScheduleState) indexAssignment(a *Assignment) {
	s.Assignments = append(s.Assignments, a)
	if a.ShiftID != "" {
		s.assignedShiftIDs[a.ShiftID] = true
	}
	if a.ProviderID == "" {
		return
	}
	s.assignmentsByProvider[a.ProviderID] = append(s.assignmentsByProvider[a.ProviderID], a)
	if shift, ok := s.shiftsByID[a.ShiftID]; ok {
		s.assignmentsByFamily[shift.FamilyID] = append(s.assignmentsByFamily[shift.FamilyID], a)
	}
}

// Provider returns a provider by id
func (s *ScheduleState) Provider(id string) (*Provider, bool) {
	p, ok := s.providersByID[id]
	return p, ok
}

// Shift returns a shift by id
func (s *ScheduleState) Shift(id string) (*Shift, bool) {
	sh, ok := s.shiftsByID[id]
	return sh, ok
}

// Family returns a family by id
func (s *ScheduleState) Family(id string) (*Family, bool) {
	f, ok := s.familiesByID[id]
	return f, ok
}

// IsShiftAssigned reports whether any assignment, of any status, exists for the shift
func (s *ScheduleState) IsShiftAssigned(shiftID string) bool {
	return s.assignedShiftIDs[shiftID]
}

// AssignmentsForProvider returns every assignment held by the provider
func (s *ScheduleState) AssignmentsForProvider(providerID string) []*Assignment {
	return s.assignmentsByProvider[providerID]
}

// FamilyHistory returns the assignments made on the family's shifts
func (s *ScheduleState) FamilyHistory(familyID string) []*Assignment {
	return s.assignmentsByFamily[familyID]
}

// CreatedAssignments returns the assignments made during the current run
func (s *ScheduleState) CreatedAssignments() []*Assignment {
	var created []*Assignment
	for _, a := range s.Assignments {
		if a.CreatedInRun {
			created = append(created, a)
		}
	}
	return created
}
