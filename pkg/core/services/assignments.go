package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

// NewAssignment is the input for Assign. Status defaults to requested.
type NewAssignment struct {
	ShiftID    string `json:"shift_id" validate:"required"`
	ProviderID string `json:"provider_id" validate:"required"`
	Status     string `json:"status,omitempty" validate:"omitempty,oneof=requested confirmed declined"`
	Message    string `json:"message,omitempty"`
}

// AssignStore defines the database operations needed for a manual assignment
type AssignStore interface {
	GetShift(ctx context.Context, id string) (*db.Shift, error)
	GetProvider(ctx context.Context, id string) (*db.Provider, error)
	InsertAssignment(ctx context.Context, assignment *db.Assignment) error
}

// Assign records a manual assignment. It bypasses eligibility checks, so callers can
// override the engine; the next run treats it as ground truth.
func Assign(ctx context.Context, database AssignStore, logger *zap.Logger, input NewAssignment) (*db.Assignment, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := database.GetShift(ctx, input.ShiftID); err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}
	if _, err := database.GetProvider(ctx, input.ProviderID); err != nil {
		return nil, fmt.Errorf("failed to fetch provider: %w", err)
	}

	status := input.Status
	if status == "" {
		status = scheduler.StatusRequested
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		message = "Manually assigned"
	}

	assignment := &db.Assignment{
		ID:         uuid.New().String(),
		ShiftID:    input.ShiftID,
		ProviderID: input.ProviderID,
		Status:     status,
		Message:    message,
	}

	if err := database.InsertAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to insert assignment: %w", err)
	}

	logger.Info("Assignment created",
		zap.String("id", assignment.ID),
		zap.String("shift_id", assignment.ShiftID),
		zap.String("provider_id", assignment.ProviderID),
		zap.String("status", status))
	return assignment, nil
}

// SetAssignmentStatus moves an assignment to requested, confirmed or declined
func SetAssignmentStatus(ctx context.Context, database db.AssignmentStore, logger *zap.Logger, assignmentID, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if !scheduler.ValidStatus(status) {
		return invalidf("status %q must be requested, confirmed or declined", status)
	}

	if err := database.UpdateAssignmentStatus(ctx, assignmentID, status); err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	logger.Info("Assignment status updated", zap.String("id", assignmentID), zap.String("status", status))
	return nil
}
