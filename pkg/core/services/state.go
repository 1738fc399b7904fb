package services

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

// SkippedRecord is a stored record left out of a scheduling run because it cannot be used
type SkippedRecord struct {
	Kind   string // provider, availability, shift or assignment
	ID     string
	Reason string
}

// scheduleRecords is everything a run reads from the store
type scheduleRecords struct {
	providers    []db.Provider
	availability []db.ProviderAvailability
	families     []db.Family
	shifts       []db.Shift
	assignments  []db.Assignment
}

// buildScheduleState converts store records into a scheduler state.
// Records the engine cannot use are reported as skipped rather than failing the run.
func buildScheduleState(records scheduleRecords, loc *time.Location, logger *zap.Logger) (*scheduler.ScheduleState, []SkippedRecord) {
	var skipped []SkippedRecord
	skip := func(kind, id, reason string) {
		logger.Debug("Skipping record", zap.String("kind", kind), zap.String("id", id), zap.String("reason", reason))
		skipped = append(skipped, SkippedRecord{Kind: kind, ID: id, Reason: reason})
	}

	providers := make([]*scheduler.Provider, 0, len(records.providers))
	for _, p := range records.providers {
		skills := scheduler.ParseSkills(p.Skills)
		switch {
		case len(skills) == 0:
			skip("provider", p.ID, "no usable skills")
			continue
		case strings.TrimSpace(p.HomeZip) == "":
			skip("provider", p.ID, "no home zip")
			continue
		}
		providers = append(providers, &scheduler.Provider{
			ID:       p.ID,
			Name:     p.Name,
			HomeZip:  strings.TrimSpace(p.HomeZip),
			MaxHours: p.MaxHours,
			Skills:   skills,
			Active:   p.Active,
		})
	}

	windows := make([]scheduler.AvailabilityWindow, 0, len(records.availability))
	for _, a := range records.availability {
		w, reason := availabilityWindow(a)
		if reason != "" {
			skip("availability", a.ID, reason)
			continue
		}
		windows = append(windows, w)
	}

	families := make([]*scheduler.Family, 0, len(records.families))
	for _, f := range records.families {
		families = append(families, &scheduler.Family{
			ID:                   f.ID,
			Name:                 f.Name,
			Zip:                  f.Zip,
			ContinuityPreference: f.ContinuityPreference,
		})
	}

	shifts := make([]*scheduler.Shift, 0, len(records.shifts))
	for _, s := range records.shifts {
		if !s.Ends.After(s.Starts) {
			skip("shift", s.ID, "ends at or before start")
			continue
		}
		shift := &scheduler.Shift{
			ID:             s.ID,
			FamilyID:       s.FamilyID,
			Start:          s.Starts,
			End:            s.Ends,
			Zip:            strings.TrimSpace(s.Zip),
			RequiredSkills: s.RequiredSkills,
		}
		// Kept for lookups so bookings on it still block overlaps and count as history
		if shift.Zip == "" {
			skip("shift", s.ID, "no zip")
			shift.Unschedulable = true
		}
		shifts = append(shifts, shift)
	}

	// Every stored assignment counts, even one whose shift or provider was skipped,
	// so a skipped shift is never reassigned
	assignments := make([]*scheduler.Assignment, 0, len(records.assignments))
	for _, a := range records.assignments {
		assignments = append(assignments, toSchedulerAssignment(a))
	}

	state := scheduler.NewScheduleState(providers, windows, families, shifts, assignments, loc)
	return state, skipped
}

// availabilityWindow converts a stored window, returning a reason when it is unusable
func availabilityWindow(a db.ProviderAvailability) (scheduler.AvailabilityWindow, string) {
	day := scheduler.Weekday(a.Weekday)
	if !day.Valid() {
		return scheduler.AvailabilityWindow{}, "weekday out of range"
	}
	start, err := scheduler.ParseTimeOfDay(a.Start)
	if err != nil {
		return scheduler.AvailabilityWindow{}, "invalid start time"
	}
	end, err := scheduler.ParseTimeOfDay(a.End)
	if err != nil {
		return scheduler.AvailabilityWindow{}, "invalid end time"
	}
	if start >= end {
		return scheduler.AvailabilityWindow{}, "start not before end"
	}
	return scheduler.AvailabilityWindow{ProviderID: a.ProviderID, Weekday: day, Start: start, End: end}, ""
}

func toSchedulerAssignment(a db.Assignment) *scheduler.Assignment {
	return &scheduler.Assignment{
		ID:         a.ID,
		ShiftID:    a.ShiftID,
		ProviderID: a.ProviderID,
		Status:     a.Status,
		Message:    a.Message,
	}
}
