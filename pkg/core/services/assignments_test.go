package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

func TestAssign(t *testing.T) {
	store := schedulingStore()

	a, err := Assign(context.Background(), store, zap.NewNop(), NewAssignment{ShiftID: "s1", ProviderID: "far"})
	require.NoError(t, err)

	assert.Equal(t, scheduler.StatusRequested, a.Status)
	assert.Equal(t, "Manually assigned", a.Message)
	require.Len(t, store.assignments, 1)

	_, err = Assign(context.Background(), store, zap.NewNop(), NewAssignment{ShiftID: "s1", ProviderID: "far"})
	assert.ErrorIs(t, err, db.ErrDuplicateAssignment)

	// A second provider on the same shift is allowed
	b, err := Assign(context.Background(), store, zap.NewNop(), NewAssignment{
		ShiftID: "s1", ProviderID: "near", Status: scheduler.StatusConfirmed, Message: "Covering",
	})
	require.NoError(t, err)
	assert.Equal(t, "Covering", b.Message)
	assert.Len(t, store.assignments, 2)
}

func TestAssign_Rejections(t *testing.T) {
	store := schedulingStore()
	ctx := context.Background()

	_, err := Assign(ctx, store, zap.NewNop(), NewAssignment{ShiftID: "s1", ProviderID: "far", Status: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Assign(ctx, store, zap.NewNop(), NewAssignment{ShiftID: "nope", ProviderID: "far"})
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = Assign(ctx, store, zap.NewNop(), NewAssignment{ShiftID: "s1", ProviderID: "nobody"})
	assert.ErrorIs(t, err, db.ErrNotFound)

	assert.Empty(t, store.assignments)
}

func TestSetAssignmentStatus(t *testing.T) {
	store := &mockStore{assignments: []db.Assignment{{ID: "a1", Status: scheduler.StatusConfirmed}}}
	ctx := context.Background()

	require.NoError(t, SetAssignmentStatus(ctx, store, zap.NewNop(), "a1", " Declined "))
	assert.Equal(t, scheduler.StatusDeclined, store.assignments[0].Status)

	assert.ErrorIs(t, SetAssignmentStatus(ctx, store, zap.NewNop(), "a1", "cancelled"), ErrInvalidInput)
	assert.ErrorIs(t, SetAssignmentStatus(ctx, store, zap.NewNop(), "ghost", "confirmed"), db.ErrNotFound)
}
