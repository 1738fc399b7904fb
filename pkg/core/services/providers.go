package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

// NewProvider is the input for AddProvider
type NewProvider struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	HomeZip  string `json:"home_zip" validate:"required"`
	MaxHours *int   `json:"max_hours,omitempty" validate:"omitempty,min=0,max=168"`
	Skills   string `json:"skills" validate:"required"`
}

// AddProvider creates an active provider. Skills are normalized to a lowercase comma-separated list.
func AddProvider(ctx context.Context, database db.ProviderStore, logger *zap.Logger, input NewProvider) (*db.Provider, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	skills := joinSkills(input.Skills)
	if skills == "" {
		return nil, invalidf("skills %q contain no usable skill", input.Skills)
	}

	maxHours := db.DefaultMaxHours
	if input.MaxHours != nil {
		maxHours = *input.MaxHours
	}

	provider := &db.Provider{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		HomeZip:  strings.TrimSpace(input.HomeZip),
		MaxHours: maxHours,
		Skills:   skills,
		Active:   true,
	}

	if err := database.InsertProvider(ctx, provider); err != nil {
		return nil, fmt.Errorf("failed to insert provider: %w", err)
	}

	logger.Info("Provider created", zap.String("id", provider.ID), zap.String("skills", provider.Skills))
	return provider, nil
}

// SetProviderActive includes or excludes a provider from future runs
func SetProviderActive(ctx context.Context, database db.ProviderStore, logger *zap.Logger, providerID string, active bool) error {
	if err := database.SetProviderActive(ctx, providerID, active); err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}
	logger.Info("Provider updated", zap.String("id", providerID), zap.Bool("active", active))
	return nil
}

// NewAvailability is the input for AddAvailability.
// Day is a weekday (0=Monday..6=Sunday), a day name, or an RRULE such as
// "FREQ=WEEKLY;BYDAY=MO,WE,FR" that expands to one window per listed day.
type NewAvailability struct {
	Day   string `json:"day" validate:"required"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// AvailabilityStore defines the database operations needed for adding availability
type AvailabilityStore interface {
	GetProvider(ctx context.Context, id string) (*db.Provider, error)
	InsertAvailability(ctx context.Context, windows []db.ProviderAvailability) error
}

// AddAvailability creates one window per resolved weekday for an existing provider
func AddAvailability(ctx context.Context, database AvailabilityStore, logger *zap.Logger, providerID string, input NewAvailability) ([]db.ProviderAvailability, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	start, err := scheduler.ParseTimeOfDay(input.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	end, err := scheduler.ParseTimeOfDay(input.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if start >= end {
		return nil, invalidf("start %s must be before end %s", start, end)
	}

	days, err := ParseDays(input.Day)
	if err != nil {
		return nil, err
	}

	if _, err := database.GetProvider(ctx, providerID); err != nil {
		return nil, fmt.Errorf("failed to fetch provider: %w", err)
	}

	windows := make([]db.ProviderAvailability, 0, len(days))
	for _, day := range days {
		windows = append(windows, db.ProviderAvailability{
			ID:         uuid.New().String(),
			ProviderID: providerID,
			Weekday:    int(day),
			Start:      formatClock(start),
			End:        formatClock(end),
		})
	}

	if err := database.InsertAvailability(ctx, windows); err != nil {
		return nil, fmt.Errorf("failed to insert availability: %w", err)
	}

	logger.Info("Availability created", zap.String("provider_id", providerID), zap.Int("windows", len(windows)))
	return windows, nil
}

// rruleReference is a Monday used to expand weekly rules into weekdays
var rruleReference = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseDays resolves a weekday, day name or weekly RRULE into distinct weekdays in week order
func ParseDays(value string) ([]scheduler.Weekday, error) {
	value = strings.TrimSpace(value)
	upper := strings.ToUpper(value)
	if !strings.Contains(upper, "FREQ=") && !strings.Contains(upper, "BYDAY=") {
		day, err := scheduler.ParseWeekday(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return []scheduler.Weekday{day}, nil
	}

	if !strings.Contains(upper, "FREQ=") {
		upper = "FREQ=WEEKLY;" + upper
	}
	rule, err := rrule.StrToRRule(strings.TrimPrefix(upper, "RRULE:"))
	if err != nil {
		return nil, invalidf("invalid availability rrule %q: %v", value, err)
	}
	rule.DTStart(rruleReference)

	seen := make(map[scheduler.Weekday]bool)
	var days []scheduler.Weekday
	for _, occurrence := range rule.Between(rruleReference, rruleReference.AddDate(0, 0, 7), true) {
		if !occurrence.Before(rruleReference.AddDate(0, 0, 7)) {
			continue
		}
		day := scheduler.WeekdayOf(occurrence)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, invalidf("rrule %q selects no weekday", value)
	}
	return days, nil
}

// formatClock renders a time of day in the stored HH:MM:SS form
func formatClock(t scheduler.TimeOfDay) string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
