package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/care-scheduler/internal/config"
	"github.com/jakechorley/care-scheduler/pkg/clients/sheetsclient"
	"github.com/jakechorley/care-scheduler/pkg/core/distance"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

// 2025-03-03 is a Monday
var testMonday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return testMonday.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
}

// mockStore implements every store interface the services use
type mockStore struct {
	providers    []db.Provider
	availability []db.ProviderAvailability
	families     []db.Family
	shifts       []db.Shift
	assignments  []db.Assignment

	// claimed shift ids make ClaimShift report a duplicate
	claimed map[string]bool

	listProvidersErr error
	listShiftsErr    error
	claimErr         error
	insertErr        error
	lockBusy         bool
	lockReleased     bool
}

func (m *mockStore) ListProviders(ctx context.Context) ([]db.Provider, error) {
	if m.listProvidersErr != nil {
		return nil, m.listProvidersErr
	}
	return m.providers, nil
}

func (m *mockStore) GetProvider(ctx context.Context, id string) (*db.Provider, error) {
	for i := range m.providers {
		if m.providers[i].ID == id {
			return &m.providers[i], nil
		}
	}
	return nil, fmt.Errorf("provider %s: %w", id, db.ErrNotFound)
}

func (m *mockStore) InsertProvider(ctx context.Context, p *db.Provider) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.providers = append(m.providers, *p)
	return nil
}

func (m *mockStore) SetProviderActive(ctx context.Context, id string, active bool) error {
	for i := range m.providers {
		if m.providers[i].ID == id {
			m.providers[i].Active = active
			return nil
		}
	}
	return fmt.Errorf("provider %s: %w", id, db.ErrNotFound)
}

func (m *mockStore) ListAvailability(ctx context.Context) ([]db.ProviderAvailability, error) {
	return m.availability, nil
}

func (m *mockStore) InsertAvailability(ctx context.Context, windows []db.ProviderAvailability) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.availability = append(m.availability, windows...)
	return nil
}

func (m *mockStore) ListFamilies(ctx context.Context) ([]db.Family, error) {
	return m.families, nil
}

func (m *mockStore) GetFamily(ctx context.Context, id string) (*db.Family, error) {
	for i := range m.families {
		if m.families[i].ID == id {
			return &m.families[i], nil
		}
	}
	return nil, fmt.Errorf("family %s: %w", id, db.ErrNotFound)
}

func (m *mockStore) InsertFamily(ctx context.Context, f *db.Family) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.families = append(m.families, *f)
	return nil
}

func (m *mockStore) ListShifts(ctx context.Context) ([]db.Shift, error) {
	if m.listShiftsErr != nil {
		return nil, m.listShiftsErr
	}
	return m.shifts, nil
}

func (m *mockStore) GetShift(ctx context.Context, id string) (*db.Shift, error) {
	for i := range m.shifts {
		if m.shifts[i].ID == id {
			return &m.shifts[i], nil
		}
	}
	return nil, fmt.Errorf("shift %s: %w", id, db.ErrNotFound)
}

func (m *mockStore) InsertShifts(ctx context.Context, shifts []db.Shift) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.shifts = append(m.shifts, shifts...)
	return nil
}

func (m *mockStore) ListAssignments(ctx context.Context) ([]db.Assignment, error) {
	return m.assignments, nil
}

func (m *mockStore) InsertAssignment(ctx context.Context, a *db.Assignment) error {
	for _, existing := range m.assignments {
		if existing.ShiftID == a.ShiftID && existing.ProviderID == a.ProviderID {
			return db.ErrDuplicateAssignment
		}
	}
	m.assignments = append(m.assignments, *a)
	return nil
}

func (m *mockStore) ClaimShift(ctx context.Context, a *db.Assignment) error {
	if m.claimErr != nil {
		return m.claimErr
	}
	if m.claimed[a.ShiftID] {
		return fmt.Errorf("shift %s: %w", a.ShiftID, db.ErrDuplicateAssignment)
	}
	for _, existing := range m.assignments {
		if existing.ShiftID == a.ShiftID {
			return fmt.Errorf("shift %s: %w", a.ShiftID, db.ErrDuplicateAssignment)
		}
	}
	m.assignments = append(m.assignments, *a)
	return nil
}

func (m *mockStore) UpdateAssignmentStatus(ctx context.Context, id, status string) error {
	for i := range m.assignments {
		if m.assignments[i].ID == id {
			m.assignments[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("assignment %s: %w", id, db.ErrNotFound)
}

func (m *mockStore) DeleteAssignment(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

func (m *mockStore) AcquireRunLock(ctx context.Context) (func(), error) {
	if m.lockBusy {
		return nil, db.ErrRunInProgress
	}
	return func() { m.lockReleased = true }, nil
}

// mockPublisher records published schedules
type mockPublisher struct {
	sheetID   string
	published *sheetsclient.PublishedSchedule
	err       error
}

func (m *mockPublisher) PublishSchedule(spreadsheetID string, schedule *sheetsclient.PublishedSchedule) error {
	if m.err != nil {
		return m.err
	}
	m.sheetID = spreadsheetID
	m.published = schedule
	return nil
}

// mockSender records sent emails and fails for chosen recipients
type mockSender struct {
	sent   []sentEmail
	failTo map[string]bool
}

type sentEmail struct {
	to, subject, body string
}

func (m *mockSender) SendEmail(to, subject, body string) error {
	if m.failTo[to] {
		return errors.New("quota exceeded")
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Google: config.GoogleConfig{
			ScheduleSheetID:     "sheet123",
			NotificationSubject: "Your care shifts",
		},
	}
}

// seattleDistances serves fixed miles between the zips used in tests
func seattleDistances() *distance.Cache {
	source := distance.NewStaticSource().
		Set("98101", "98105", 5).
		Set("98101", "98052", 12).
		Set("98101", "98004", 8)
	return distance.NewCache(source, distance.CacheOptions{}, nil)
}

// allWeekAvailability gives a provider 06:00-22:00 every day
func allWeekAvailability(providerID string) []db.ProviderAvailability {
	var windows []db.ProviderAvailability
	for d := 0; d < 7; d++ {
		windows = append(windows, db.ProviderAvailability{
			ID:         fmt.Sprintf("%s-w%d", providerID, d),
			ProviderID: providerID,
			Weekday:    d,
			Start:      "06:00:00",
			End:        "22:00:00",
		})
	}
	return windows
}

// schedulingStore has two doulas, one near and one far, and one family with two shifts
func schedulingStore() *mockStore {
	store := &mockStore{
		providers: []db.Provider{
			{ID: "far", Name: "Far", Email: "far@example.com", HomeZip: "98052", MaxHours: 40, Skills: "doula", Active: true},
			{ID: "near", Name: "Near", Email: "near@example.com", HomeZip: "98105", MaxHours: 40, Skills: "Doula, Lactation", Active: true},
		},
		families: []db.Family{{ID: "f1", Name: "Rivera", Zip: "98101"}},
		shifts: []db.Shift{
			{ID: "s1", FamilyID: "f1", Starts: at(0, 9), Ends: at(0, 11), Zip: "98101", RequiredSkills: "doula"},
			{ID: "s2", FamilyID: "f1", Starts: at(1, 9), Ends: at(1, 11), Zip: "98101", RequiredSkills: "doula"},
		},
	}
	store.availability = append(allWeekAvailability("far"), allWeekAvailability("near")...)
	return store
}
