package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/internal/config"
	"github.com/jakechorley/care-scheduler/pkg/clients/sheetsclient"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

// ScheduleStore defines the database operations needed to read a week's schedule
type ScheduleStore interface {
	ListProviders(ctx context.Context) ([]db.Provider, error)
	ListFamilies(ctx context.Context) ([]db.Family, error)
	ListShifts(ctx context.Context) ([]db.Shift, error)
	ListAssignments(ctx context.Context) ([]db.Assignment, error)
}

// SchedulePublisher writes a published schedule to a spreadsheet
type SchedulePublisher interface {
	PublishSchedule(spreadsheetID string, schedule *sheetsclient.PublishedSchedule) error
}

// BuildWeekSchedule collects every shift starting in the week beginning weekStart (YYYY-MM-DD,
// read in the scheduling timezone) with its assignments. Unassigned shifts get one row with
// an empty provider so gaps are visible.
func BuildWeekSchedule(
	ctx context.Context,
	database ScheduleStore,
	cfg *config.Config,
	logger *zap.Logger,
	weekStart string,
) (*sheetsclient.PublishedSchedule, error) {
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, err
	}
	from, to, err := weekBounds(weekStart, loc)
	if err != nil {
		return nil, err
	}

	logger.Debug("Building week schedule", zap.Time("from", from), zap.Time("to", to))

	providers, err := database.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch providers: %w", err)
	}
	families, err := database.ListFamilies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch families: %w", err)
	}
	shifts, err := database.ListShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	assignments, err := database.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	providersByID := indexProviders(providers)
	familiesByID := indexFamilies(families)

	byShift := make(map[string][]db.Assignment)
	for _, a := range assignments {
		byShift[a.ShiftID] = append(byShift[a.ShiftID], a)
	}

	schedule := &sheetsclient.PublishedSchedule{WeekStart: from}
	for _, s := range shifts {
		if s.Starts.Before(from) || !s.Starts.Before(to) {
			continue
		}

		base := sheetsclient.ScheduleRow{
			Date:  s.Starts.In(loc).Format("Mon Jan 02 2006"),
			Start: s.Starts.In(loc).Format("15:04"),
			End:   s.Ends.In(loc).Format("15:04"),
			Skill: s.RequiredSkills,
		}
		if f, ok := familiesByID[s.FamilyID]; ok {
			base.Family = f.Name
		}

		shiftAssignments := byShift[s.ID]
		if len(shiftAssignments) == 0 {
			schedule.Rows = append(schedule.Rows, base)
			continue
		}

		sort.SliceStable(shiftAssignments, func(i, j int) bool {
			return shiftAssignments[i].CreatedAt.Before(shiftAssignments[j].CreatedAt)
		})
		for _, a := range shiftAssignments {
			row := base
			row.Provider = a.ProviderID
			if p, ok := providersByID[a.ProviderID]; ok {
				row.Provider = p.Name
			}
			row.Status = a.Status
			row.Message = a.Message
			schedule.Rows = append(schedule.Rows, row)
		}
	}

	logger.Debug("Week schedule built", zap.Int("rows", len(schedule.Rows)))
	return schedule, nil
}

// PublishSchedule builds the week's schedule and writes it to the configured sheet
func PublishSchedule(
	ctx context.Context,
	database ScheduleStore,
	publisher SchedulePublisher,
	cfg *config.Config,
	logger *zap.Logger,
	weekStart string,
) (*sheetsclient.PublishedSchedule, error) {
	if cfg.Google.ScheduleSheetID == "" {
		return nil, fmt.Errorf("google.scheduleSheetID is not configured")
	}

	schedule, err := BuildWeekSchedule(ctx, database, cfg, logger, weekStart)
	if err != nil {
		return nil, err
	}

	if err := publisher.PublishSchedule(cfg.Google.ScheduleSheetID, schedule); err != nil {
		return nil, fmt.Errorf("failed to publish schedule: %w", err)
	}

	logger.Info("Schedule published",
		zap.String("week_start", schedule.WeekStart.Format(time.DateOnly)),
		zap.Int("rows", len(schedule.Rows)))
	return schedule, nil
}
