package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

func familyStore() *mockStore {
	return &mockStore{families: []db.Family{{ID: "f1", Name: "Rivera", Zip: "98101"}}}
}

func TestAddShifts_Single(t *testing.T) {
	store := familyStore()
	pacific := time.FixedZone("PST", -8*60*60)
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, pacific)

	shifts, err := AddShifts(context.Background(), store, zap.NewNop(), NewShift{
		FamilyID:       "f1",
		Starts:         start,
		Ends:           start.Add(3 * time.Hour),
		RequiredSkills: " Doula ",
	})
	require.NoError(t, err)

	require.Len(t, shifts, 1)
	s := shifts[0]
	assert.Equal(t, "98101", s.Zip)
	assert.Equal(t, "doula", s.RequiredSkills)
	assert.Equal(t, time.UTC, s.Starts.Location())
	assert.True(t, s.Starts.Equal(start))
	assert.Equal(t, 3*time.Hour, s.Ends.Sub(s.Starts))
	assert.Len(t, store.shifts, 1)
}

func TestAddShifts_ZipOverride(t *testing.T) {
	shifts, err := AddShifts(context.Background(), familyStore(), zap.NewNop(), NewShift{
		FamilyID: "f1", Starts: at(0, 9), Ends: at(0, 10), Zip: "98004", RequiredSkills: "doula",
	})
	require.NoError(t, err)
	assert.Equal(t, "98004", shifts[0].Zip)
}

func TestAddShifts_Series(t *testing.T) {
	store := familyStore()

	shifts, err := AddShifts(context.Background(), store, zap.NewNop(), NewShift{
		FamilyID:       "f1",
		Starts:         at(0, 9),
		Ends:           at(0, 13),
		RequiredSkills: "doula",
		Repeat:         "FREQ=WEEKLY;BYDAY=MO,TH;COUNT=4",
	})
	require.NoError(t, err)

	require.Len(t, shifts, 4)
	want := []time.Time{at(0, 9), at(3, 9), at(7, 9), at(10, 9)}
	for i, s := range shifts {
		assert.True(t, s.Starts.Equal(want[i]), "shift %d starts %s", i, s.Starts)
		assert.Equal(t, 4*time.Hour, s.Ends.Sub(s.Starts))
	}
	assert.Len(t, store.shifts, 4)
}

func TestAddShifts_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input NewShift
	}{
		{"ends before starts", NewShift{FamilyID: "f1", Starts: at(0, 9), Ends: at(0, 8), RequiredSkills: "doula"}},
		{"zero length", NewShift{FamilyID: "f1", Starts: at(0, 9), Ends: at(0, 9), RequiredSkills: "doula"}},
		{"no skills", NewShift{FamilyID: "f1", Starts: at(0, 9), Ends: at(0, 10), RequiredSkills: " , "}},
		{"bad repeat", NewShift{FamilyID: "f1", Starts: at(0, 9), Ends: at(0, 10), RequiredSkills: "doula", Repeat: "FREQ=SOMETIMES"}},
		{"too many repeats", NewShift{FamilyID: "f1", Starts: at(0, 9), Ends: at(0, 10), RequiredSkills: "doula", Repeat: "FREQ=HOURLY"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := familyStore()
			_, err := AddShifts(context.Background(), store, zap.NewNop(), tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, store.shifts)
		})
	}
}

func TestAddShifts_UnknownFamily(t *testing.T) {
	_, err := AddShifts(context.Background(), &mockStore{}, zap.NewNop(), NewShift{
		FamilyID: "ghost", Starts: at(0, 9), Ends: at(0, 10), RequiredSkills: "doula",
	})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestExpandRecurrence_OpenEndedStopsAtHorizon(t *testing.T) {
	starts, err := ExpandRecurrence("FREQ=WEEKLY", at(0, 9))
	require.NoError(t, err)

	// 52 weeks after the first plus the first itself
	assert.Len(t, starts, 53)
	assert.True(t, starts[0].Equal(at(0, 9)))
}
