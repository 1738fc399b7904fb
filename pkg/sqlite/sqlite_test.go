package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.InsertProvider(ctx, &db.Provider{ID: "p1", Name: "Ada", HomeZip: "98101", MaxHours: 40, Skills: "doula", Active: true}))
	require.NoError(t, store.InsertProvider(ctx, &db.Provider{ID: "p2", Name: "Bea", HomeZip: "98052", MaxHours: 40, Skills: "nurse", Active: true}))
	require.NoError(t, store.InsertFamily(ctx, &db.Family{ID: "f1", Name: "Rivera", Zip: "98101", ContinuityPreference: "yes"}))

	base := time.Date(2025, 3, 3, 17, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertShifts(ctx, []db.Shift{
		{ID: "s2", FamilyID: "f1", Starts: base.Add(24 * time.Hour), Ends: base.Add(26 * time.Hour), Zip: "98101", RequiredSkills: "doula"},
		{ID: "s1", FamilyID: "f1", Starts: base, Ends: base.Add(2 * time.Hour), Zip: "98101", RequiredSkills: "doula"},
	}))
}

func TestProviders(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	providers, err := store.ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, "Ada", providers[0].Name)
	assert.True(t, providers[0].Active)
	assert.False(t, providers[0].CreatedAt.IsZero())

	require.NoError(t, store.SetProviderActive(ctx, "p1", false))
	p, err := store.GetProvider(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, p.Active)

	_, err = store.GetProvider(ctx, "missing")
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.ErrorIs(t, store.SetProviderActive(ctx, "missing", true), db.ErrNotFound)
}

func TestAvailability(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	require.NoError(t, store.InsertAvailability(ctx, []db.ProviderAvailability{
		{ID: "w1", ProviderID: "p1", Weekday: 0, Start: "08:00:00", End: "18:00:00"},
		{ID: "w2", ProviderID: "p2", Weekday: 1, Start: "09:00:00", End: "12:00:00"},
	}))

	all, err := store.ListAvailability(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := store.ListProviderAvailability(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "09:00:00", mine[0].Start)

	// start must be before end
	err = store.InsertAvailability(ctx, []db.ProviderAvailability{
		{ID: "w3", ProviderID: "p1", Weekday: 2, Start: "12:00:00", End: "08:00:00"},
	})
	assert.Error(t, err)

	require.NoError(t, store.DeleteAvailability(ctx, "w1"))
	assert.ErrorIs(t, store.DeleteAvailability(ctx, "w1"), db.ErrNotFound)
}

func TestShifts_OrderedByStartInUTC(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	shifts, err := store.ListShifts(ctx)
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, "s1", shifts[0].ID)
	assert.Equal(t, time.UTC, shifts[0].Starts.Location())

	local := time.FixedZone("PST", -8*3600)
	require.NoError(t, store.InsertShifts(ctx, []db.Shift{
		{ID: "s0", FamilyID: "f1", Starts: time.Date(2025, 3, 3, 6, 0, 0, 0, local), Ends: time.Date(2025, 3, 3, 8, 0, 0, 0, local), Zip: "98101", RequiredSkills: "doula"},
	}))
	got, err := store.GetShift(ctx, "s0")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC), got.Starts)

	shifts, err = store.ListShifts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s0", shifts[0].ID)
}

func TestAssignments_DuplicatePairAndCascade(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	a := &db.Assignment{ID: "a1", ShiftID: "s1", ProviderID: "p1", Status: "confirmed"}
	require.NoError(t, store.InsertAssignment(ctx, a))
	assert.False(t, a.CreatedAt.IsZero())

	err := store.InsertAssignment(ctx, &db.Assignment{ID: "a2", ShiftID: "s1", ProviderID: "p1", Status: "requested"})
	assert.ErrorIs(t, err, db.ErrDuplicateAssignment)

	require.NoError(t, store.UpdateAssignmentStatus(ctx, "a1", "declined"))
	assignments, err := store.ListAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "declined", assignments[0].Status)

	require.NoError(t, store.DeleteShift(ctx, "s1"))
	assignments, err = store.ListAssignments(ctx)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	assert.ErrorIs(t, store.DeleteAssignment(ctx, "a1"), db.ErrNotFound)
}

func TestClaimShift(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	require.NoError(t, store.ClaimShift(ctx, &db.Assignment{ID: "a1", ShiftID: "s1", ProviderID: "p1", Status: "confirmed"}))

	// Any existing assignment blocks a claim, even for another provider
	err := store.ClaimShift(ctx, &db.Assignment{ID: "a2", ShiftID: "s1", ProviderID: "p2", Status: "confirmed"})
	assert.ErrorIs(t, err, db.ErrDuplicateAssignment)

	require.NoError(t, store.ClaimShift(ctx, &db.Assignment{ID: "a3", ShiftID: "s2", ProviderID: "p2", Status: "confirmed"}))
}

func TestClaimShift_ConcurrentClaimsOnlyOneWins(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			providerID := "p1"
			if i%2 == 1 {
				providerID = "p2"
			}
			results[i] = store.ClaimShift(ctx, &db.Assignment{
				ID: "claim-" + string(rune('a'+i)), ShiftID: "s1", ProviderID: providerID, Status: "confirmed",
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, db.ErrDuplicateAssignment)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestAcquireRunLock(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	release, err := store.AcquireRunLock(ctx)
	require.NoError(t, err)

	_, err = store.AcquireRunLock(ctx)
	assert.ErrorIs(t, err, db.ErrRunInProgress)

	release()
	release2, err := store.AcquireRunLock(ctx)
	require.NoError(t, err)
	release2()
}
