package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

// NewFamily is the input for AddFamily
type NewFamily struct {
	Name                 string `json:"name" validate:"required"`
	Zip                  string `json:"zip" validate:"required"`
	ContinuityPreference string `json:"continuity_preference,omitempty"`
}

// AddFamily creates a family. The continuity preference is trimmed and lowercased.
func AddFamily(ctx context.Context, database db.FamilyStore, logger *zap.Logger, input NewFamily) (*db.Family, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	family := &db.Family{
		ID:                   uuid.New().String(),
		Name:                 strings.TrimSpace(input.Name),
		Zip:                  strings.TrimSpace(input.Zip),
		ContinuityPreference: strings.ToLower(strings.TrimSpace(input.ContinuityPreference)),
	}

	if err := database.InsertFamily(ctx, family); err != nil {
		return nil, fmt.Errorf("failed to insert family: %w", err)
	}

	logger.Info("Family created", zap.String("id", family.ID), zap.String("continuity", family.ContinuityPreference))
	return family, nil
}
