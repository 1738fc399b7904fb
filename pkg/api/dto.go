package api

import (
	"github.com/jakechorley/care-scheduler/pkg/core/distance"
	"github.com/jakechorley/care-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/care-scheduler/pkg/core/services"
)

// SetActiveRequest is the body of PATCH /providers/{id}/active
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// SetStatusRequest is the body of PATCH /assignments/{id}/status
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// DecisionDTO is one engine decision. Miles is null when the distance is unknown.
type DecisionDTO struct {
	ShiftID    string   `json:"shift_id"`
	ProviderID string   `json:"provider_id,omitempty"`
	Reason     string   `json:"reason"`
	Miles      *float64 `json:"miles"`
	Message    string   `json:"message,omitempty"`
}

// SkippedDTO is a record left out of a run
type SkippedDTO struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// ValidationErrorDTO is a constraint violation found after a run
type ValidationErrorDTO struct {
	ShiftID     string `json:"shift_id"`
	ProviderID  string `json:"provider_id"`
	Criterion   string `json:"criterion"`
	Description string `json:"description"`
}

// RunScheduleResponse is the body returned by POST /schedule/run
type RunScheduleResponse struct {
	DryRun           bool                 `json:"dry_run"`
	Assigned         int                  `json:"assigned"`
	TotalConsidered  int                  `json:"total_considered"`
	Decisions        []DecisionDTO        `json:"decisions"`
	Skipped          []SkippedDTO         `json:"skipped,omitempty"`
	ValidationErrors []ValidationErrorDTO `json:"validation_errors,omitempty"`
}

// ErrorResponse is the standard error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toDecisionDTO(d scheduler.Decision) DecisionDTO {
	dto := DecisionDTO{
		ShiftID:    d.ShiftID,
		ProviderID: d.ProviderID,
		Reason:     d.Reason,
		Message:    d.Message,
	}
	if !distance.IsUnknown(d.Miles) {
		miles := d.Miles
		dto.Miles = &miles
	}
	return dto
}

func toRunScheduleResponse(result *services.RunScheduleResult) RunScheduleResponse {
	resp := RunScheduleResponse{
		DryRun:          result.DryRun,
		Assigned:        result.AssignedCount,
		TotalConsidered: result.ConsideredCount,
		Decisions:       make([]DecisionDTO, 0, len(result.Decisions)),
	}
	for _, d := range result.Decisions {
		resp.Decisions = append(resp.Decisions, toDecisionDTO(d))
	}
	for _, s := range result.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedDTO{Kind: s.Kind, ID: s.ID, Reason: s.Reason})
	}
	for _, v := range result.ValidationErrors {
		resp.ValidationErrors = append(resp.ValidationErrors, ValidationErrorDTO{
			ShiftID:     v.ShiftID,
			ProviderID:  v.ProviderID,
			Criterion:   v.CriterionName,
			Description: v.Description,
		})
	}
	return resp
}
