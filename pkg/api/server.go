package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// NewRouter creates the router with all routes configured
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		}))
	}

	r.Route("/providers", func(r chi.Router) {
		r.Get("/", h.ListProviders)
		r.Post("/", h.CreateProvider)
		r.Patch("/{id}/active", h.SetProviderActive)
		r.Get("/{id}/availability", h.ListAvailability)
		r.Post("/{id}/availability", h.CreateAvailability)
	})

	r.Delete("/availability/{id}", h.DeleteAvailability)

	r.Route("/families", func(r chi.Router) {
		r.Get("/", h.ListFamilies)
		r.Post("/", h.CreateFamily)
	})

	r.Route("/shifts", func(r chi.Router) {
		r.Get("/", h.ListShifts)
		r.Post("/", h.CreateShifts)
		r.Delete("/{id}", h.DeleteShift)
	})

	r.Route("/assignments", func(r chi.Router) {
		r.Get("/", h.ListAssignments)
		r.Post("/", h.CreateAssignment)
		r.Patch("/{id}/status", h.SetAssignmentStatus)
		r.Delete("/{id}", h.DeleteAssignment)
	})

	r.Post("/schedule/run", h.RunSchedule)
	r.Get("/reports/provider-load", h.ProviderLoad)

	return r
}

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight requests
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
