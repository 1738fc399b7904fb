package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/core/distance"
)

// ErrShiftClaimed is returned by an AssignmentSink when another writer already assigned the shift
var ErrShiftClaimed = errors.New("shift already claimed")

// Decision reasons
const (
	ReasonContinuity = "continuity"
	ReasonNearest    = "nearest"
	ReasonUnfilled   = "unfilled"
	ReasonClaimed    = "claimed"
)

// AssignmentSink persists the engine's decisions one shift at a time
type AssignmentSink interface {
	CommitAssignment(ctx context.Context, assignment *Assignment) error
}

// Decision records what the engine did with one unassigned shift
type Decision struct {
	ShiftID    string
	ProviderID string
	Reason     string
	Miles      float64
	Message    string
}

// RunResult summarises a scheduling run
type RunResult struct {
	AssignedCount   int
	ConsideredCount int
	Decisions       []Decision
}

// Engine assigns providers to unassigned shifts, one shift at a time in start order
type Engine struct {
	criteria []Criterion
	ranker   *ContinuityRanker
	distance distance.Distancer
	logger   *zap.Logger
	newID    func() string
}

// NewEngine creates an engine. A nil ranker uses the default continuity values.
func NewEngine(criteria []Criterion, ranker *ContinuityRanker, distancer distance.Distancer, logger *zap.Logger) *Engine {
	if ranker == nil {
		ranker = NewContinuityRanker(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		criteria: criteria,
		ranker:   ranker,
		distance: distancer,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Criteria returns the engine's eligibility criteria
func (e *Engine) Criteria() []Criterion {
	return e.criteria
}

// Run makes one pass over the state's shifts. Committed assignments are added to the state
// so later shifts see them. Only a sink failure other than ErrShiftClaimed, or ctx
// cancellation, stops the run; the result then covers the shifts already decided.
func (e *Engine) Run(ctx context.Context, state *ScheduleState, sink AssignmentSink) (*RunResult, error) {
	result := &RunResult{ConsideredCount: len(state.Shifts)}

	pool := make([]*Provider, 0, len(state.Providers))
	for _, p := range state.Providers {
		if p.Active {
			pool = append(pool, p)
		}
	}

	e.logger.Debug("Starting scheduling run",
		zap.Int("shifts", len(state.Shifts)),
		zap.Int("active_providers", len(pool)),
		zap.Int("existing_assignments", len(state.Assignments)))

	for _, shift := range state.Shifts {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("scheduling run cancelled: %w", err)
		}

		if state.IsShiftAssigned(shift.ID) {
			continue
		}

		decision := e.decide(ctx, state, pool, shift)
		if decision.ProviderID == "" {
			e.logger.Debug("No eligible provider for shift",
				zap.String("shift_id", shift.ID),
				zap.Time("starts", shift.Start),
				zap.String("required_skills", shift.RequiredSkills))
			result.Decisions = append(result.Decisions, decision)
			continue
		}

		assignment := &Assignment{
			ID:           e.newID(),
			ShiftID:      shift.ID,
			ProviderID:   decision.ProviderID,
			Status:       StatusConfirmed,
			Message:      decision.Message,
			CreatedInRun: true,
		}

		if err := sink.CommitAssignment(ctx, assignment); err != nil {
			if errors.Is(err, ErrShiftClaimed) {
				e.logger.Debug("Shift claimed by another writer, skipping", zap.String("shift_id", shift.ID))
				decision.Reason = ReasonClaimed
				decision.ProviderID = ""
				result.Decisions = append(result.Decisions, decision)
				continue
			}
			return result, fmt.Errorf("failed to commit assignment for shift %s: %w", shift.ID, err)
		}

		state.AddAssignment(assignment)
		result.AssignedCount++
		result.Decisions = append(result.Decisions, decision)

		e.logger.Debug("Assigned shift",
			zap.String("shift_id", shift.ID),
			zap.String("provider_id", decision.ProviderID),
			zap.String("reason", decision.Reason))
	}

	return result, nil
}

// decide picks a provider for one shift: continuity first, then nearest
func (e *Engine) decide(ctx context.Context, state *ScheduleState, pool []*Provider, shift *Shift) Decision {
	family, _ := state.Family(shift.FamilyID)

	if e.ranker.WantsContinuity(family) {
		ranked := e.ranker.RankByHistory(state, family.ID, pool)
		for p := range Eligible(state, e.criteria, ranked, shift) {
			miles := e.distance.Distance(ctx, p.HomeZip, shift.Zip)
			return Decision{
				ShiftID:    shift.ID,
				ProviderID: p.ID,
				Reason:     ReasonContinuity,
				Miles:      miles,
				Message:    assignmentMessage(ReasonContinuity, miles),
			}
		}
	}

	var chosen *Provider
	bestMiles := distance.Unknown
	for p := range Eligible(state, e.criteria, pool, shift) {
		miles := e.distance.Distance(ctx, p.HomeZip, shift.Zip)
		if chosen == nil || miles < bestMiles {
			chosen = p
			bestMiles = miles
		}
	}

	if chosen == nil {
		return Decision{ShiftID: shift.ID, Reason: ReasonUnfilled, Miles: distance.Unknown}
	}

	return Decision{
		ShiftID:    shift.ID,
		ProviderID: chosen.ID,
		Reason:     ReasonNearest,
		Miles:      bestMiles,
		Message:    assignmentMessage(ReasonNearest, bestMiles),
	}
}

func assignmentMessage(reason string, miles float64) string {
	return fmt.Sprintf("Auto-scheduled (%s, %s)", reason, FormatMiles(miles))
}

// FormatMiles renders a distance to one decimal place, or "unknown distance"
func FormatMiles(miles float64) string {
	if distance.IsUnknown(miles) {
		return "unknown distance"
	}
	return fmt.Sprintf("%.1f mi", miles)
}

// DiscardSink accepts every assignment without persisting it, for dry runs
type DiscardSink struct{}

func (DiscardSink) CommitAssignment(ctx context.Context, assignment *Assignment) error {
	return nil
}
