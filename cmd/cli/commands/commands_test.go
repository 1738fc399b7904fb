package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.Execute()
}

func TestCommands_ScheduleFlow(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, execute(t, AddProviderCmd(app), "Ada", "98101", "doula", "--max-hours", "20"))
	providers, err := app.Database.ListProviders(app.Ctx)
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, 20, providers[0].MaxHours)
	providerID := providers[0].ID

	require.NoError(t, execute(t, AddAvailabilityCmd(app), providerID, "FREQ=WEEKLY;BYDAY=MO,TU", "08:00", "18:00"))
	windows, err := app.Database.ListProviderAvailability(app.Ctx, providerID)
	require.NoError(t, err)
	assert.Len(t, windows, 2)

	require.NoError(t, execute(t, AddFamilyCmd(app), "Rivera", "98101", "consistent"))
	families, err := app.Database.ListFamilies(app.Ctx)
	require.NoError(t, err)
	require.Len(t, families, 1)

	require.NoError(t, execute(t, AddShiftCmd(app), families[0].ID, "2025-03-03T09:00", "2025-03-03T12:00", "-", "doula",
		"--repeat", "FREQ=DAILY;COUNT=3"))
	shifts, err := app.Database.ListShifts(app.Ctx)
	require.NoError(t, err)
	require.Len(t, shifts, 3)
	assert.Equal(t, "98101", shifts[0].Zip)

	require.NoError(t, execute(t, RunScheduleCmd(app), "--dry-run"))
	assignments, err := app.Database.ListAssignments(app.Ctx)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	require.NoError(t, execute(t, RunScheduleCmd(app)))
	assignments, err = app.Database.ListAssignments(app.Ctx)
	require.NoError(t, err)
	// Wednesday's shift has no availability
	assert.Len(t, assignments, 2)

	require.NoError(t, execute(t, SetAssignmentStatusCmd(app), assignments[0].ID, "declined"))
	require.NoError(t, execute(t, ProviderLoadCmd(app), "--from", "2025-03-03"))
	require.NoError(t, execute(t, NotifyProvidersCmd(app), "2025-03-03", "--dry-run"))
	require.NoError(t, execute(t, ListAssignmentsCmd(app)))
	require.NoError(t, execute(t, DeleteAssignmentCmd(app), assignments[0].ID))
	require.NoError(t, execute(t, DeleteShiftCmd(app), shifts[2].ID))
	require.NoError(t, execute(t, ListShiftsCmd(app)))
}

func TestCommands_Errors(t *testing.T) {
	app := newTestApp(t)

	assert.Error(t, execute(t, SetProviderActiveCmd(app), "p1", "perhaps"))
	assert.Error(t, execute(t, SetProviderActiveCmd(app), "missing", "true"))
	assert.Error(t, execute(t, AddShiftCmd(app), "f1", "tomorrow", "later", "-", "doula"))
	assert.Error(t, execute(t, DeleteAvailabilityCmd(app), "missing"))
	assert.Error(t, execute(t, ProviderLoadCmd(app), "--from", "last week"))
	assert.Error(t, execute(t, AssignCmd(app), "s1"))
}
