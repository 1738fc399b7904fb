package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Assignment statuses
const (
	StatusRequested = "requested"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
)

// ValidStatus reports whether s is a recognised assignment status
func ValidStatus(s string) bool {
	switch s {
	case StatusRequested, StatusConfirmed, StatusDeclined:
		return true
	}
	return false
}

// TimeOfDay is an offset from midnight
type TimeOfDay time.Duration

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay(time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q (expected HH:MM or HH:MM:SS)", s)
}

// TimeOfDayOf returns the wall-clock offset of t in its own location
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond()))
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if s == 0 {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Weekday is a day index with Monday=0 through Sunday=6
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayOf converts a time to a Monday-based weekday
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// Valid reports whether the weekday is in 0..6
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// ParseWeekday accepts 0-6 or a day name ("mon", "Monday")
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '0' && s[0] <= '6' {
		return Weekday(s[0] - '0'), nil
	}
	for i, name := range weekdayNames {
		lower := strings.ToLower(name)
		if s == lower || (len(s) >= 3 && strings.HasPrefix(lower, s)) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q (expected 0-6 or a day name)", s)
}

// Provider is a care provider as seen by the scheduler
type Provider struct {
	ID       string
	Name     string
	HomeZip  string
	MaxHours int
	Skills   []string // trimmed and lowercased
	Active   bool
}

// HasSkill reports whether the provider lists the required skill, compared case-insensitively
func (p *Provider) HasSkill(required string) bool {
	want := NormalizeSkill(required)
	if want == "" {
		return false
	}
	for _, s := range p.Skills {
		if s == want {
			return true
		}
	}
	return false
}

// AvailabilityWindow is a recurring weekly span during which a provider can work
type AvailabilityWindow struct {
	ProviderID string
	Weekday    Weekday
	Start      TimeOfDay
	End        TimeOfDay
}

// Contains reports whether [start, end) lies entirely inside the window
func (w AvailabilityWindow) Contains(start, end TimeOfDay) bool {
	return w.Start <= start && end <= w.End
}

// Family is the owner of a set of shifts
type Family struct {
	ID                   string
	Name                 string
	Zip                  string
	ContinuityPreference string
}

// Shift is a time-boxed care need
type Shift struct {
	ID             string
	FamilyID       string
	Start          time.Time
	End            time.Time
	Zip            string
	RequiredSkills string
	// Unschedulable shifts are never assigned by the engine but still count
	// for conflicts, continuity history and weekly hours
	Unschedulable bool
}

// Hours returns the shift length in hours
func (s *Shift) Hours() float64 {
	return s.End.Sub(s.Start).Hours()
}

// Overlaps reports whether the two shifts share any instant; touching endpoints do not overlap
func (s *Shift) Overlaps(other *Shift) bool {
	return Overlaps(s.Start, s.End, other.Start, other.End)
}

// Assignment links a shift to a provider
type Assignment struct {
	ID         string
	ShiftID    string
	ProviderID string
	Status     string
	Message    string
	// CreatedInRun marks assignments made by the current engine run
	CreatedInRun bool
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// NormalizeSkill trims and lowercases a skill tag
func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseSkills splits a comma-separated skill list, dropping empty entries
func ParseSkills(csv string) []string {
	var skills []string
	for _, part := range strings.Split(csv, ",") {
		if s := NormalizeSkill(part); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
