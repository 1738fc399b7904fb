package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/care-scheduler/pkg/core/distance"
)

func seattleDistances(s *distance.StaticSource) {
	s.Set("98105", "98101", 5.0)
	s.Set("98052", "98101", 12.0)
	s.Set("98004", "98101", 8.0)
}

func TestEngine_FallbackPicksNearest(t *testing.T) {
	far := newProvider("far", "98052", "doula")
	near := newProvider("near", "98105", "doula")
	windows := append(allWeek("far"), allWeek("near")...)
	shift := newShift("s1", "fam", at(0, 10, 0), 2, "98101", "doula")
	family := &Family{ID: "fam", ContinuityPreference: "flexible"}

	state := NewScheduleState([]*Provider{far, near}, windows, []*Family{family}, []*Shift{shift}, nil, time.UTC)
	sink := &recordingSink{}

	result, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.NoError(t, err)

	assert.Equal(t, 1, result.AssignedCount)
	assert.Equal(t, 1, result.ConsideredCount)
	require.Len(t, sink.committed, 1)
	assert.Equal(t, "near", sink.committed[0].ProviderID)
	assert.Equal(t, StatusConfirmed, sink.committed[0].Status)
	assert.Equal(t, "Auto-scheduled (nearest, 5.0 mi)", sink.committed[0].Message)
	assert.NotEmpty(t, sink.committed[0].ID)

	require.Len(t, result.Decisions, 1)
	assert.Equal(t, ReasonNearest, result.Decisions[0].Reason)
	assert.Equal(t, 5.0, result.Decisions[0].Miles)
}

func TestEngine_ContinuityPrefersPreviousProvider(t *testing.T) {
	previous := newProvider("previous", "98052", "doula") // 12 miles away
	closer := newProvider("closer", "98105", "doula")     // 5 miles away
	windows := append(allWeek("previous"), allWeek("closer")...)
	family := &Family{ID: "fam", ContinuityPreference: "consistent"}

	past := newShift("past", "fam", at(0, 10, 0), 2, "98101", "doula")
	next := newShift("next", "fam", at(2, 10, 0), 2, "98101", "doula")
	history := []*Assignment{{ID: "a1", ShiftID: "past", ProviderID: "previous", Status: StatusConfirmed}}

	state := NewScheduleState([]*Provider{previous, closer}, windows, []*Family{family}, []*Shift{past, next}, history, time.UTC)
	sink := &recordingSink{}

	result, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.NoError(t, err)

	assert.Equal(t, 1, result.AssignedCount)
	assert.Equal(t, 2, result.ConsideredCount)
	require.Len(t, sink.committed, 1)
	assert.Equal(t, "next", sink.committed[0].ShiftID)
	assert.Equal(t, "previous", sink.committed[0].ProviderID)
	assert.Equal(t, "Auto-scheduled (continuity, 12.0 mi)", sink.committed[0].Message)
}

func TestEngine_ContinuityFallsBackWhenPreviousIneligible(t *testing.T) {
	previous := newProvider("previous", "98052", "doula")
	closer := newProvider("closer", "98105", "doula")
	// previous only works Mondays
	windows := append([]AvailabilityWindow{
		{ProviderID: "previous", Weekday: Monday, Start: tod(6, 0), End: tod(22, 0)},
	}, allWeek("closer")...)
	family := &Family{ID: "fam", ContinuityPreference: "high"}

	past := newShift("past", "fam", at(0, 10, 0), 2, "98101", "doula")
	wednesday := newShift("wed", "fam", at(2, 10, 0), 2, "98101", "doula")
	history := []*Assignment{{ID: "a1", ShiftID: "past", ProviderID: "previous", Status: StatusConfirmed}}

	state := NewScheduleState([]*Provider{previous, closer}, windows, []*Family{family}, []*Shift{past, wednesday}, history, time.UTC)
	sink := &recordingSink{}

	result, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.NoError(t, err)

	require.Len(t, sink.committed, 1)
	assert.Equal(t, "closer", sink.committed[0].ProviderID)
	assert.Equal(t, ReasonNearest, result.Decisions[0].Reason)
}

func TestEngine_ContinuityBuildsWithinRun(t *testing.T) {
	a := newProvider("a", "98105", "doula")
	b := newProvider("b", "98004", "doula")
	windows := append(allWeek("a"), allWeek("b")...)
	family := &Family{ID: "fam", ContinuityPreference: "consistent"}

	first := newShift("first", "fam", at(0, 10, 0), 2, "98101", "doula")
	second := newShift("second", "fam", at(1, 10, 0), 2, "98101", "doula")

	state := NewScheduleState([]*Provider{a, b}, windows, []*Family{family}, []*Shift{first, second}, nil, time.UTC)
	sink := &recordingSink{}

	result, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.NoError(t, err)

	assert.Equal(t, 2, result.AssignedCount)
	assert.Equal(t, ReasonNearest, result.Decisions[0].Reason)
	assert.Equal(t, ReasonContinuity, result.Decisions[1].Reason)
	assert.Equal(t, "a", sink.committed[1].ProviderID)
}

func TestEngine_UnfillableShift(t *testing.T) {
	doula := newProvider("doula", "98105", "doula")
	shift := newShift("night-nurse", "fam", at(0, 10, 0), 2, "98101", "nurse")

	state := NewScheduleState([]*Provider{doula}, allWeek("doula"), nil, []*Shift{shift}, nil, time.UTC)
	sink := &recordingSink{}

	result, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.NoError(t, err)

	assert.Equal(t, 0, result.AssignedCount)
	assert.Equal(t, 1, result.ConsideredCount)
	assert.Empty(t, sink.committed)
	require.Len(t, result.Decisions, 1)
	assert.Equal(t, ReasonUnfilled, result.Decisions[0].Reason)
	assert.False(t, state.IsShiftAssigned("night-nurse"))
}

func TestEngine_DistanceFailureAssignsFirstEligible(t *testing.T) {
	first := newProvider("first", "98052", "doula")
	second := newProvider("second", "98105", "doula")
	windows := append(allWeek("first"), allWeek("second")...)
	shift := newShift("s1", "fam", at(0, 10, 0), 2, "98101", "doula")

	state := NewScheduleState([]*Provider{first, second}, windows, nil, []*Shift{shift}, nil, time.UTC)
	sink := &recordingSink{}
	cache := distance.NewCache(failingSource{}, distance.CacheOptions{}, nil)

	result, err := newTestEngine(cache).Run(context.Background(), state, sink)
	require.NoError(t, err)

	assert.Equal(t, 1, result.AssignedCount)
	require.Len(t, sink.committed, 1)
	assert.Equal(t, "first", sink.committed[0].ProviderID)
	assert.Equal(t, "Auto-scheduled (nearest, unknown distance)", sink.committed[0].Message)
	assert.True(t, distance.IsUnknown(result.Decisions[0].Miles))
}

func TestEngine_KnownDistanceBeatsUnknown(t *testing.T) {
	unknown := newProvider("unknown", "00000", "doula")
	known := newProvider("known", "98052", "doula")
	windows := append(allWeek("unknown"), allWeek("known")...)
	shift := newShift("s1", "fam", at(0, 10, 0), 2, "98101", "doula")

	state := NewScheduleState([]*Provider{unknown, known}, windows, nil, []*Shift{shift}, nil, time.UTC)
	sink := &recordingSink{}

	_, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.NoError(t, err)

	require.Len(t, sink.committed, 1)
	assert.Equal(t, "known", sink.committed[0].ProviderID)
}

func TestEngine_TiesKeepPoolOrder(t *testing.T) {
	a := newProvider("a", "98105", "doula")
	b := newProvider("b", "98105", "doula")
	windows := append(allWeek("a"), allWeek("b")...)
	shift := newShift("s1", "fam", at(0, 10, 0), 2, "98101", "doula")

	state := NewScheduleState([]*Provider{a, b}, windows, nil, []*Shift{shift}, nil, time.UTC)
	sink := &recordingSink{}

	_, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.NoError(t, err)
	assert.Equal(t, "a", sink.committed[0].ProviderID)
}

func TestEngine_NoDoubleBookingWithinRun(t *testing.T) {
	only := newProvider("only", "98105", "doula")
	morning := newShift("morning", "f1", at(0, 9, 0), 3, "98101", "doula")
	overlapping := newShift("overlapping", "f2", at(0, 11, 0), 3, "98101", "doula")
	afternoon := newShift("afternoon", "f3", at(0, 14, 0), 3, "98101", "doula")

	state := NewScheduleState([]*Provider{only}, allWeek("only"), nil,
		[]*Shift{afternoon, overlapping, morning}, nil, time.UTC)
	sink := &recordingSink{}

	result, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.NoError(t, err)

	assert.Equal(t, 2, result.AssignedCount)
	assert.Equal(t, 3, result.ConsideredCount)

	var assigned []string
	for _, a := range sink.committed {
		assigned = append(assigned, a.ShiftID)
	}
	// Shifts are processed in start order, so the 09:00 shift wins over the 11:00 one
	assert.Equal(t, []string{"morning", "afternoon"}, assigned)

	assert.Empty(t, ValidateScheduleState(state, StandardCriteria(CriteriaOptions{})))
}

func TestEngine_ExistingAssignmentSkipsShift(t *testing.T) {
	p := newProvider("p", "98105", "doula")
	declinedShift := newShift("declined", "f1", at(0, 9, 0), 2, "98101", "doula")
	requestedShift := newShift("requested", "f1", at(1, 9, 0), 2, "98101", "doula")
	open := newShift("open", "f1", at(2, 9, 0), 2, "98101", "doula")
	existing := []*Assignment{
		{ID: "a1", ShiftID: "declined", ProviderID: "p", Status: StatusDeclined},
		{ID: "a2", ShiftID: "requested", ProviderID: "p", Status: StatusRequested},
	}

	state := NewScheduleState([]*Provider{p}, allWeek("p"), nil,
		[]*Shift{declinedShift, requestedShift, open}, existing, time.UTC)
	sink := &recordingSink{}

	result, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.NoError(t, err)

	assert.Equal(t, 1, result.AssignedCount)
	assert.Equal(t, 3, result.ConsideredCount)
	assert.Equal(t, "open", sink.committed[0].ShiftID)
}

func TestEngine_Idempotent(t *testing.T) {
	p := newProvider("p", "98105", "doula")
	shifts := []*Shift{
		newShift("s1", "f1", at(0, 9, 0), 2, "98101", "doula"),
		newShift("s2", "f1", at(1, 9, 0), 2, "98101", "doula"),
	}
	engine := newTestEngine(fixedDistancer(seattleDistances))

	state := NewScheduleState([]*Provider{p}, allWeek("p"), nil, shifts, nil, time.UTC)
	sink := &recordingSink{}
	first, err := engine.Run(context.Background(), state, sink)
	require.NoError(t, err)
	assert.Equal(t, 2, first.AssignedCount)

	// Same state again
	second, err := engine.Run(context.Background(), state, sink)
	require.NoError(t, err)
	assert.Equal(t, 0, second.AssignedCount)
	assert.Equal(t, 2, second.ConsideredCount)

	// Fresh state rebuilt from what was committed
	reloaded := NewScheduleState([]*Provider{p}, allWeek("p"), nil, shifts, sink.committed, time.UTC)
	third, err := engine.Run(context.Background(), reloaded, &recordingSink{})
	require.NoError(t, err)
	assert.Equal(t, 0, third.AssignedCount)
}

func TestEngine_InactiveProviderNeverAssigned(t *testing.T) {
	inactive := newProvider("inactive", "98105", "doula")
	inactive.Active = false
	shift := newShift("s1", "f1", at(0, 9, 0), 2, "98101", "doula")

	state := NewScheduleState([]*Provider{inactive}, allWeek("inactive"), nil, []*Shift{shift}, nil, time.UTC)
	sink := &recordingSink{}

	result, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.NoError(t, err)
	assert.Equal(t, 0, result.AssignedCount)
}

func TestEngine_ClaimedShiftIsSkipped(t *testing.T) {
	p := newProvider("p", "98105", "doula")
	claimed := newShift("claimed", "f1", at(0, 9, 0), 2, "98101", "doula")
	overlapping := newShift("overlapping", "f2", at(0, 10, 0), 2, "98101", "doula")

	state := NewScheduleState([]*Provider{p}, allWeek("p"), nil, []*Shift{claimed, overlapping}, nil, time.UTC)
	sink := &recordingSink{claimed: map[string]bool{"claimed": true}}

	result, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.NoError(t, err)

	assert.Equal(t, 1, result.AssignedCount)
	assert.Equal(t, ReasonClaimed, result.Decisions[0].Reason)
	assert.Empty(t, result.Decisions[0].ProviderID)
	// The claim did not book p, so the overlapping shift is still available to them
	assert.Equal(t, "overlapping", sink.committed[0].ShiftID)
}

func TestEngine_SinkErrorStopsRun(t *testing.T) {
	p := newProvider("p", "98105", "doula")
	shifts := []*Shift{
		newShift("s1", "f1", at(0, 9, 0), 2, "98101", "doula"),
		newShift("s2", "f1", at(1, 9, 0), 2, "98101", "doula"),
		newShift("s3", "f1", at(2, 9, 0), 2, "98101", "doula"),
	}
	state := NewScheduleState([]*Provider{p}, allWeek("p"), nil, shifts, nil, time.UTC)
	sink := &recordingSink{failOn: map[string]error{"s2": errors.New("connection reset")}}

	result, err := newTestEngine(fixedDistancer(seattleDistances)).Run(context.Background(), state, sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 1, result.AssignedCount)
	assert.Len(t, sink.committed, 1)
}

func TestEngine_CancelledContext(t *testing.T) {
	p := newProvider("p", "98105", "doula")
	state := NewScheduleState([]*Provider{p}, allWeek("p"), nil,
		[]*Shift{newShift("s1", "f1", at(0, 9, 0), 2, "98101", "doula")}, nil, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestEngine(fixedDistancer(seattleDistances)).Run(ctx, state, &recordingSink{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.AssignedCount)
}

func TestEngine_AssignmentsSatisfyConstraints(t *testing.T) {
	providers := []*Provider{
		newProvider("doula-1", "98105", "doula"),
		newProvider("doula-2", "98052", "doula", "lactation consultant"),
		newProvider("nurse-1", "98004", "nurse"),
	}
	windows := append(allWeek("doula-1"), allWeek("doula-2")...)
	windows = append(windows, AvailabilityWindow{ProviderID: "nurse-1", Weekday: Tuesday, Start: tod(18, 0), End: tod(23, 59)})

	var shifts []*Shift
	for day := 0; day < 7; day++ {
		shifts = append(shifts,
			newShift("doula-am-"+Weekday(day).String(), "f1", at(day, 8, 0), 4, "98101", "doula"),
			newShift("doula-pm-"+Weekday(day).String(), "f2", at(day, 10, 0), 4, "98101", "DOULA"),
			newShift("nurse-"+Weekday(day).String(), "f3", at(day, 19, 0), 3, "98101", "nurse"),
			newShift("lc-"+Weekday(day).String(), "f1", at(day, 13, 0), 2, "98101", "lactation consultant"),
		)
	}

	state := NewScheduleState(providers, windows, nil, shifts, nil, time.UTC)
	criteria := StandardCriteria(CriteriaOptions{})
	engine := NewEngine(criteria, nil, fixedDistancer(seattleDistances), nil)

	result, err := engine.Run(context.Background(), state, &recordingSink{})
	require.NoError(t, err)
	assert.Equal(t, len(shifts), result.ConsideredCount)
	assert.Greater(t, result.AssignedCount, 0)

	// Nurse is only available on Tuesday evening
	for _, a := range state.CreatedAssignments() {
		shift, _ := state.Shift(a.ShiftID)
		provider, _ := state.Provider(a.ProviderID)
		assert.True(t, provider.HasSkill(shift.RequiredSkills), a.ShiftID)
		assert.True(t, state.Availability.IsAvailable(provider.ID, shift), a.ShiftID)
		if provider.ID == "nurse-1" {
			assert.Equal(t, Tuesday, WeekdayOf(shift.Start))
		}
	}

	assert.Empty(t, ValidateScheduleState(state, criteria))
}
