package db

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a record with the requested id does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateAssignment is returned when an assignment would repeat a (shift, provider)
	// pair, or when a conditional claim finds the shift already assigned
	ErrDuplicateAssignment = errors.New("assignment already exists")

	// ErrRunInProgress is returned when another scheduling run holds the run lock
	ErrRunInProgress = errors.New("a scheduling run is already in progress")
)

// ProviderStore defines the interface for provider database operations
type ProviderStore interface {
	ListProviders(ctx context.Context) ([]Provider, error)
	GetProvider(ctx context.Context, id string) (*Provider, error)
	InsertProvider(ctx context.Context, provider *Provider) error
	SetProviderActive(ctx context.Context, id string, active bool) error
}

// AvailabilityStore defines the interface for availability window database operations
type AvailabilityStore interface {
	ListAvailability(ctx context.Context) ([]ProviderAvailability, error)
	ListProviderAvailability(ctx context.Context, providerID string) ([]ProviderAvailability, error)
	InsertAvailability(ctx context.Context, windows []ProviderAvailability) error
	DeleteAvailability(ctx context.Context, id string) error
}

// FamilyStore defines the interface for family database operations
type FamilyStore interface {
	ListFamilies(ctx context.Context) ([]Family, error)
	GetFamily(ctx context.Context, id string) (*Family, error)
	InsertFamily(ctx context.Context, family *Family) error
}

// ShiftStore defines the interface for shift database operations
type ShiftStore interface {
	// ListShifts returns shifts ordered by start time
	ListShifts(ctx context.Context) ([]Shift, error)
	GetShift(ctx context.Context, id string) (*Shift, error)
	InsertShifts(ctx context.Context, shifts []Shift) error
	// DeleteShift removes the shift and its assignments
	DeleteShift(ctx context.Context, id string) error
}

// AssignmentStore defines the interface for assignment database operations
type AssignmentStore interface {
	ListAssignments(ctx context.Context) ([]Assignment, error)
	// InsertAssignment returns ErrDuplicateAssignment if the (shift, provider) pair exists
	InsertAssignment(ctx context.Context, assignment *Assignment) error
	// ClaimShift inserts the assignment only if the shift has no assignment yet,
	// returning ErrDuplicateAssignment otherwise
	ClaimShift(ctx context.Context, assignment *Assignment) error
	UpdateAssignmentStatus(ctx context.Context, id string, status string) error
	DeleteAssignment(ctx context.Context, id string) error
}

// RunLocker serializes scheduling runs
type RunLocker interface {
	// AcquireRunLock returns ErrRunInProgress if another run holds the lock
	AcquireRunLock(ctx context.Context) (release func(), err error)
}

// Database defines the interface for all database operations.
// Both postgres.DB and sqlite.Store implement this interface.
type Database interface {
	ProviderStore
	AvailabilityStore
	FamilyStore
	ShiftStore
	AssignmentStore
	RunLocker
}
