package scheduler

import (
	"context"
	"time"

	"github.com/jakechorley/care-scheduler/pkg/core/distance"
)

// 2025-03-03 is a Monday
var testMonday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return testMonday.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func tod(hour, minute int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func newProvider(id, zip string, skills ...string) *Provider {
	return &Provider{
		ID:       id,
		Name:     id,
		HomeZip:  zip,
		MaxHours: 40,
		Skills:   skills,
		Active:   true,
	}
}

// allWeek gives the provider a 06:00-22:00 window every day
func allWeek(providerID string) []AvailabilityWindow {
	var windows []AvailabilityWindow
	for d := Monday; d <= Sunday; d++ {
		windows = append(windows, AvailabilityWindow{
			ProviderID: providerID,
			Weekday:    d,
			Start:      tod(6, 0),
			End:        tod(22, 0),
		})
	}
	return windows
}

func newShift(id, familyID string, start time.Time, hours int, zip, skill string) *Shift {
	return &Shift{
		ID:             id,
		FamilyID:       familyID,
		Start:          start,
		End:            start.Add(time.Duration(hours) * time.Hour),
		Zip:            zip,
		RequiredSkills: skill,
	}
}

// recordingSink captures committed assignments and can fail on chosen shifts
type recordingSink struct {
	committed []*Assignment
	claimed   map[string]bool
	failOn    map[string]error
}

func (s *recordingSink) CommitAssignment(ctx context.Context, a *Assignment) error {
	if s.claimed[a.ShiftID] {
		return ErrShiftClaimed
	}
	if err, ok := s.failOn[a.ShiftID]; ok {
		return err
	}
	s.committed = append(s.committed, a)
	return nil
}

// fixedDistancer serves distances from a StaticSource through a Cache
func fixedDistancer(set func(s *distance.StaticSource)) *distance.Cache {
	source := distance.NewStaticSource()
	if set != nil {
		set(source)
	}
	return distance.NewCache(source, distance.CacheOptions{}, nil)
}

// failingSource fails every lookup
type failingSource struct{}

func (failingSource) Lookup(ctx context.Context, a, b string) (float64, error) {
	return 0, context.DeadlineExceeded
}

func newTestEngine(d distance.Distancer) *Engine {
	return NewEngine(StandardCriteria(CriteriaOptions{}), nil, d, nil)
}
