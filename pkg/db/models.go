package db

import "time"

// DefaultMaxHours is the weekly capacity given to providers created without one
const DefaultMaxHours = 40

// Provider represents a database care provider record
type Provider struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	HomeZip   string    `json:"home_zip"`
	MaxHours  int       `json:"max_hours"`
	Skills    string    `json:"skills"` // comma-separated, e.g. "doula,lactation consultant"
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ProviderAvailability represents a recurring weekly availability window.
// Weekday is 0=Monday through 6=Sunday; Start and End are "HH:MM:SS".
type ProviderAvailability struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	Weekday    int    `json:"weekday"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

// Family represents a database family record
type Family struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Zip                  string    `json:"zip"`
	ContinuityPreference string    `json:"continuity_preference"`
	CreatedAt            time.Time `json:"created_at"`
}

// Shift represents a database shift record. Starts and Ends are stored in UTC.
type Shift struct {
	ID             string    `json:"id"`
	FamilyID       string    `json:"family_id"`
	Starts         time.Time `json:"starts"`
	Ends           time.Time `json:"ends"`
	Zip            string    `json:"zip"`
	RequiredSkills string    `json:"required_skills"`
}

// Assignment represents a database assignment record linking a shift to a provider
type Assignment struct {
	ID         string    `json:"id"`
	ShiftID    string    `json:"shift_id"`
	ProviderID string    `json:"provider_id"`
	Status     string    `json:"status"` // requested, confirmed or declined
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
