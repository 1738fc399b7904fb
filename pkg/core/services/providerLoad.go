package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

var (
	minutesPerHour = decimal.NewFromInt(60)
	daysPerWeek    = decimal.NewFromInt(7)
	hundred        = decimal.NewFromInt(100)
)

// ProviderLoad is one provider's booked hours against their capacity over a period
type ProviderLoad struct {
	ProviderID string          `json:"provider_id"`
	Name       string          `json:"name"`
	Active     bool            `json:"active"`
	Shifts     int             `json:"shifts"`
	Hours      decimal.Decimal `json:"hours"`
	Capacity   decimal.Decimal `json:"capacity"`
	// Utilization is Hours/Capacity as a percentage, zero when Capacity is zero
	Utilization decimal.Decimal `json:"utilization"`
}

// ProviderLoadReport covers [From, To)
type ProviderLoadReport struct {
	From      time.Time      `json:"from"`
	To        time.Time      `json:"to"`
	Providers []ProviderLoad `json:"providers"`
}

// ProviderLoadStore defines the database operations needed for the load report
type ProviderLoadStore interface {
	ListProviders(ctx context.Context) ([]db.Provider, error)
	ListShifts(ctx context.Context) ([]db.Shift, error)
	ListAssignments(ctx context.Context) ([]db.Assignment, error)
}

// BuildProviderLoad totals requested and confirmed hours per provider for shifts starting
// in [from, to). Capacity is max_hours pro-rated over the period's length in weeks.
func BuildProviderLoad(ctx context.Context, database ProviderLoadStore, logger *zap.Logger, from, to time.Time) (*ProviderLoadReport, error) {
	if !to.After(from) {
		return nil, invalidf("report end %s must be after start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	providers, err := database.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch providers: %w", err)
	}
	shifts, err := database.ListShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	assignments, err := database.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	shiftsByID := indexShifts(shifts)
	minutes := make(map[string]int64)
	counts := make(map[string]int)
	for _, a := range assignments {
		if a.Status == scheduler.StatusDeclined {
			continue
		}
		s, ok := shiftsByID[a.ShiftID]
		if !ok || s.Starts.Before(from) || !s.Starts.Before(to) {
			continue
		}
		minutes[a.ProviderID] += int64(s.Ends.Sub(s.Starts) / time.Minute)
		counts[a.ProviderID]++
	}

	weeks := decimal.NewFromFloat(to.Sub(from).Hours() / 24).Div(daysPerWeek)

	report := &ProviderLoadReport{From: from, To: to}
	for _, p := range providers {
		hours := decimal.NewFromInt(minutes[p.ID]).Div(minutesPerHour).Round(2)
		capacity := decimal.NewFromInt(int64(p.MaxHours)).Mul(weeks).Round(2)

		utilization := decimal.Zero
		if capacity.IsPositive() {
			utilization = hours.Div(capacity).Mul(hundred).Round(1)
		}

		report.Providers = append(report.Providers, ProviderLoad{
			ProviderID:  p.ID,
			Name:        p.Name,
			Active:      p.Active,
			Shifts:      counts[p.ID],
			Hours:       hours,
			Capacity:    capacity,
			Utilization: utilization,
		})
	}

	logger.Debug("Provider load report built",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("providers", len(report.Providers)))
	return report, nil
}

// ParseLoadPeriod reads YYYY-MM-DD bounds in loc. An empty from is the Monday of now's week;
// an empty to is seven days after from.
func ParseLoadPeriod(from, to string, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	var start time.Time
	if from == "" {
		local := now.In(loc)
		start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		start = start.AddDate(0, 0, -int(scheduler.WeekdayOf(start)))
	} else {
		var err error
		if start, err = time.ParseInLocation(time.DateOnly, from, loc); err != nil {
			return time.Time{}, time.Time{}, invalidf("from %q must be YYYY-MM-DD", from)
		}
	}

	if to == "" {
		return start, start.AddDate(0, 0, 7), nil
	}
	end, err := time.ParseInLocation(time.DateOnly, to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, invalidf("to %q must be YYYY-MM-DD", to)
	}
	return start, end, nil
}
