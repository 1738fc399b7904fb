package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/internal/config"
	"github.com/jakechorley/care-scheduler/pkg/core/distance"
	"github.com/jakechorley/care-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

// RunScheduleResult summarises a scheduling pass
type RunScheduleResult struct {
	DryRun           bool
	AssignedCount    int
	ConsideredCount  int
	Decisions        []scheduler.Decision
	Skipped          []SkippedRecord
	ValidationErrors []scheduler.ShiftValidationError
}

// RunScheduleStore defines the database operations needed for a scheduling run
type RunScheduleStore interface {
	ListProviders(ctx context.Context) ([]db.Provider, error)
	ListAvailability(ctx context.Context) ([]db.ProviderAvailability, error)
	ListFamilies(ctx context.Context) ([]db.Family, error)
	ListShifts(ctx context.Context) ([]db.Shift, error)
	ListAssignments(ctx context.Context) ([]db.Assignment, error)
	ClaimShift(ctx context.Context, assignment *db.Assignment) error
	AcquireRunLock(ctx context.Context) (func(), error)
}

// RunSchedule assigns providers to every unassigned shift.
// Only one run may hold the run lock at a time; a concurrent call returns db.ErrRunInProgress.
// If dryRun is true, decisions are computed against the loaded state but nothing is written.
// When the run is cut short the partial result is returned together with the error.
func RunSchedule(
	ctx context.Context,
	database RunScheduleStore,
	distancer distance.Distancer,
	cfg *config.Config,
	logger *zap.Logger,
	dryRun bool,
) (*RunScheduleResult, error) {
	logger.Debug("Starting runSchedule", zap.Bool("dry_run", dryRun))

	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, err
	}

	// Step 1: Serialize runs
	release, err := database.AcquireRunLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	defer release()

	// Step 2: Load records
	logger.Debug("Loading schedule records")
	records, err := loadScheduleRecords(ctx, database)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded schedule records",
		zap.Int("providers", len(records.providers)),
		zap.Int("availability", len(records.availability)),
		zap.Int("families", len(records.families)),
		zap.Int("shifts", len(records.shifts)),
		zap.Int("assignments", len(records.assignments)))

	// Step 3: Build state
	state, skipped := buildScheduleState(records, loc, logger)
	if len(skipped) > 0 {
		logger.Info("Skipped unusable records", zap.Int("count", len(skipped)))
	}

	// Step 4: Run the engine
	criteria := scheduler.StandardCriteria(scheduler.CriteriaOptions{
		ReleaseDeclined:       cfg.Scheduling.ReleaseDeclined,
		EnforceWeeklyCapacity: cfg.Scheduling.EnforceWeeklyCapacity,
	})
	engine := scheduler.NewEngine(criteria, scheduler.NewContinuityRanker(cfg.Scheduling.ContinuityValues), distancer, logger)

	var sink scheduler.AssignmentSink = &claimSink{store: database}
	if dryRun {
		sink = scheduler.DiscardSink{}
	}

	runResult, runErr := engine.Run(ctx, state, sink)

	// Every stored shift counts as considered, including skipped ones
	result := &RunScheduleResult{
		DryRun:          dryRun,
		ConsideredCount: len(records.shifts),
		Skipped:         skipped,
	}
	if runResult != nil {
		result.AssignedCount = runResult.AssignedCount
		result.Decisions = runResult.Decisions
	}

	if runErr != nil {
		logger.Warn("Scheduling run stopped early",
			zap.Int("assigned", result.AssignedCount),
			zap.Error(runErr))
		return result, fmt.Errorf("scheduling run stopped: %w", runErr)
	}

	// Step 5: Validate what this run produced
	result.ValidationErrors = scheduler.ValidateScheduleState(state, engine.Criteria())
	if len(result.ValidationErrors) > 0 {
		logger.Warn("Scheduling run produced invalid assignments", zap.Int("count", len(result.ValidationErrors)))
	}

	logger.Info("Scheduling run complete",
		zap.Bool("dry_run", dryRun),
		zap.Int("assigned", result.AssignedCount),
		zap.Int("considered", result.ConsideredCount))

	return result, nil
}

func loadScheduleRecords(ctx context.Context, database RunScheduleStore) (scheduleRecords, error) {
	var records scheduleRecords
	var err error

	if records.providers, err = database.ListProviders(ctx); err != nil {
		return records, fmt.Errorf("failed to fetch providers: %w", err)
	}
	if records.availability, err = database.ListAvailability(ctx); err != nil {
		return records, fmt.Errorf("failed to fetch availability: %w", err)
	}
	if records.families, err = database.ListFamilies(ctx); err != nil {
		return records, fmt.Errorf("failed to fetch families: %w", err)
	}
	if records.shifts, err = database.ListShifts(ctx); err != nil {
		return records, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	if records.assignments, err = database.ListAssignments(ctx); err != nil {
		return records, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	return records, nil
}

// claimSink writes engine assignments with a conditional insert
type claimSink struct {
	store interface {
		ClaimShift(ctx context.Context, assignment *db.Assignment) error
	}
}

func (s *claimSink) CommitAssignment(ctx context.Context, a *scheduler.Assignment) error {
	err := s.store.ClaimShift(ctx, &db.Assignment{
		ID:         a.ID,
		ShiftID:    a.ShiftID,
		ProviderID: a.ProviderID,
		Status:     a.Status,
		Message:    a.Message,
	})
	if errors.Is(err, db.ErrDuplicateAssignment) {
		return scheduler.ErrShiftClaimed
	}
	return err
}
