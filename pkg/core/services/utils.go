package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/care-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

// ErrInvalidInput wraps every rejection of caller-supplied data
var ErrInvalidInput = errors.New("invalid input")

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// validateInput runs struct validation and wraps failures in ErrInvalidInput
func validateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// joinSkills normalizes a comma-separated skill list for storage
func joinSkills(csv string) string {
	return strings.Join(scheduler.ParseSkills(csv), ",")
}

// weekBounds returns [start, start+7d) for the week beginning on the given date in loc
func weekBounds(weekStart string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", weekStart, loc)
	if err != nil {
		return time.Time{}, time.Time{}, invalidf("week start %q must be YYYY-MM-DD", weekStart)
	}
	return start, start.AddDate(0, 0, 7), nil
}

// indexProviders maps provider id to record
func indexProviders(providers []db.Provider) map[string]*db.Provider {
	byID := make(map[string]*db.Provider, len(providers))
	for i := range providers {
		byID[providers[i].ID] = &providers[i]
	}
	return byID
}

// indexFamilies maps family id to record
func indexFamilies(families []db.Family) map[string]*db.Family {
	byID := make(map[string]*db.Family, len(families))
	for i := range families {
		byID[families[i].ID] = &families[i]
	}
	return byID
}

// indexShifts maps shift id to record
func indexShifts(shifts []db.Shift) map[string]*db.Shift {
	byID := make(map[string]*db.Shift, len(shifts))
	for i := range shifts {
		byID[shifts[i].ID] = &shifts[i]
	}
	return byID
}
