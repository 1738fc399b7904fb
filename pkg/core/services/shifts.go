package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

const (
	// maxSeriesShifts caps how many shifts one recurring request may create
	maxSeriesShifts = 366
	// seriesHorizon bounds the expansion of rules without COUNT or UNTIL
	seriesHorizon = 365 * 24 * time.Hour
)

// NewShift is the input for AddShifts.
// Zip defaults to the family's zip. Repeat is an optional RRULE (e.g. "FREQ=WEEKLY;COUNT=6")
// whose occurrences start copies of the shift with the same duration.
type NewShift struct {
	FamilyID       string    `json:"family_id" validate:"required"`
	Starts         time.Time `json:"starts" validate:"required"`
	Ends           time.Time `json:"ends" validate:"required,gtfield=Starts"`
	Zip            string    `json:"zip,omitempty"`
	RequiredSkills string    `json:"required_skills" validate:"required"`
	Repeat         string    `json:"repeat,omitempty"`
}

// ShiftStore defines the database operations needed for adding shifts
type ShiftStore interface {
	GetFamily(ctx context.Context, id string) (*db.Family, error)
	InsertShifts(ctx context.Context, shifts []db.Shift) error
}

// AddShifts creates one shift, or a series when Repeat is set. Times are stored in UTC.
func AddShifts(ctx context.Context, database ShiftStore, logger *zap.Logger, input NewShift) ([]db.Shift, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	skills := joinSkills(input.RequiredSkills)
	if skills == "" {
		return nil, invalidf("required skills %q contain no usable skill", input.RequiredSkills)
	}

	family, err := database.GetFamily(ctx, input.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch family: %w", err)
	}

	zip := strings.TrimSpace(input.Zip)
	if zip == "" {
		zip = family.Zip
	}

	starts := []time.Time{input.Starts}
	if input.Repeat != "" {
		starts, err = ExpandRecurrence(input.Repeat, input.Starts)
		if err != nil {
			return nil, err
		}
	}

	duration := input.Ends.Sub(input.Starts)
	shifts := make([]db.Shift, 0, len(starts))
	for _, start := range starts {
		shifts = append(shifts, db.Shift{
			ID:             uuid.New().String(),
			FamilyID:       family.ID,
			Starts:         start.UTC(),
			Ends:           start.Add(duration).UTC(),
			Zip:            zip,
			RequiredSkills: skills,
		})
	}

	if err := database.InsertShifts(ctx, shifts); err != nil {
		return nil, fmt.Errorf("failed to insert shifts: %w", err)
	}

	logger.Info("Shifts created",
		zap.String("family_id", family.ID),
		zap.Int("count", len(shifts)),
		zap.Time("first_start", shifts[0].Starts))
	return shifts, nil
}

// ExpandRecurrence returns the occurrence starts of an RRULE anchored at first.
// Rules without COUNT or UNTIL are cut at one year; more than maxSeriesShifts occurrences is an error.
func ExpandRecurrence(repeat string, first time.Time) ([]time.Time, error) {
	rule, err := rrule.StrToRRule(strings.TrimPrefix(strings.TrimSpace(repeat), "RRULE:"))
	if err != nil {
		return nil, invalidf("invalid repeat rrule %q: %v", repeat, err)
	}
	rule.DTStart(first)

	occurrences := rule.Between(first, first.Add(seriesHorizon), true)
	if len(occurrences) == 0 {
		return nil, invalidf("repeat rrule %q produces no shifts", repeat)
	}
	if len(occurrences) > maxSeriesShifts {
		return nil, invalidf("repeat rrule %q produces %d shifts (max %d)", repeat, len(occurrences), maxSeriesShifts)
	}
	return occurrences, nil
}
