package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/internal/config"
	"github.com/jakechorley/care-scheduler/pkg/core/distance"
	"github.com/jakechorley/care-scheduler/pkg/core/services"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Handler holds the dependencies of the HTTP handlers
type Handler struct {
	Store    db.Database
	Distance distance.Distancer
	Cfg      *config.Config
	Logger   *zap.Logger

	now func() time.Time
}

// NewHandler creates a handler
func NewHandler(store db.Database, distancer distance.Distancer, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		Distance: distancer,
		Cfg:      cfg,
		Logger:   logger,
		now:      time.Now,
	}
}

// Providers

func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.Store.ListProviders(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list providers", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(providers))
}

func (h *Handler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var req services.NewProvider
	if !decodeJSON(w, r, &req) {
		return
	}
	provider, err := services.AddProvider(r.Context(), h.Store, h.Logger, req)
	if err != nil {
		h.writeServiceError(w, "Failed to create provider", err)
		return
	}
	writeJSON(w, http.StatusCreated, provider)
}

func (h *Handler) SetProviderActive(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := services.SetProviderActive(r.Context(), h.Store, h.Logger, id, *req.Active); err != nil {
		h.writeServiceError(w, "Failed to update provider", err)
		return
	}
	provider, err := h.Store.GetProvider(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to get provider", err)
		return
	}
	writeJSON(w, http.StatusOK, provider)
}

// Availability

func (h *Handler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetProvider(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to get provider", err)
		return
	}
	windows, err := h.Store.ListProviderAvailability(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to list availability", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(windows))
}

func (h *Handler) CreateAvailability(w http.ResponseWriter, r *http.Request) {
	var req services.NewAvailability
	if !decodeJSON(w, r, &req) {
		return
	}
	windows, err := services.AddAvailability(r.Context(), h.Store, h.Logger, chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, "Failed to create availability", err)
		return
	}
	writeJSON(w, http.StatusCreated, windows)
}

func (h *Handler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteAvailability(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete availability", err)
		return
	}
	h.Logger.Info("Availability deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// Families

func (h *Handler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	families, err := h.Store.ListFamilies(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list families", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(families))
}

func (h *Handler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	var req services.NewFamily
	if !decodeJSON(w, r, &req) {
		return
	}
	family, err := services.AddFamily(r.Context(), h.Store, h.Logger, req)
	if err != nil {
		h.writeServiceError(w, "Failed to create family", err)
		return
	}
	writeJSON(w, http.StatusCreated, family)
}

// Shifts

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Store.ListShifts(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list shifts", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(shifts))
}

func (h *Handler) CreateShifts(w http.ResponseWriter, r *http.Request) {
	var req services.NewShift
	if !decodeJSON(w, r, &req) {
		return
	}
	shifts, err := services.AddShifts(r.Context(), h.Store, h.Logger, req)
	if err != nil {
		h.writeServiceError(w, "Failed to create shifts", err)
		return
	}
	writeJSON(w, http.StatusCreated, shifts)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteShift(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete shift", err)
		return
	}
	h.Logger.Info("Shift deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// Assignments

func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.Store.ListAssignments(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list assignments", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(assignments))
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req services.NewAssignment
	if !decodeJSON(w, r, &req) {
		return
	}
	assignment, err := services.Assign(r.Context(), h.Store, h.Logger, req)
	if err != nil {
		h.writeServiceError(w, "Failed to create assignment", err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

func (h *Handler) SetAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := services.SetAssignmentStatus(r.Context(), h.Store, h.Logger, chi.URLParam(r, "id"), req.Status); err != nil {
		h.writeServiceError(w, "Failed to update assignment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteAssignment(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete assignment", err)
		return
	}
	h.Logger.Info("Assignment deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// Scheduling

func (h *Handler) RunSchedule(w http.ResponseWriter, r *http.Request) {
	dryRun := false
	if v := r.URL.Query().Get("dry_run"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid dry_run", err)
			return
		}
		dryRun = parsed
	}

	result, err := services.RunSchedule(r.Context(), h.Store, h.Distance, h.Cfg, h.Logger, dryRun)
	if err != nil {
		h.writeServiceError(w, "Scheduling run failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunScheduleResponse(result))
}

func (h *Handler) ProviderLoad(w http.ResponseWriter, r *http.Request) {
	loc, err := h.Cfg.Scheduling.Location()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Invalid scheduling timezone", err)
		return
	}
	from, to, err := services.ParseLoadPeriod(r.URL.Query().Get("from"), r.URL.Query().Get("to"), loc, h.now())
	if err != nil {
		h.writeServiceError(w, "Invalid report period", err)
		return
	}
	report, err := services.BuildProviderLoad(r.Context(), h.Store, h.Logger, from, to)
	if err != nil {
		h.writeServiceError(w, "Failed to build provider load report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Helpers

// decodeJSON reads and validates a request body, writing a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// statusFor maps store and service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrDuplicateAssignment), errors.Is(err, db.ErrRunInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// nonNil keeps empty lists encoding as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
