package persistence

import "time"

// Registration status values stored in the time_registrations table.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Worker represents an employee record tracked by the kiosk.
type Worker struct {
	ID         string
	FirstName  string
	LastName   string
	Department string
	Active     bool
	PINHash    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TimeRegistration represents a single attendance interval for a worker.
type TimeRegistration struct {
	ID                 string
	WorkerID           string
	CheckIn            time.Time
	CheckOut           *time.Time
	Status             string
	ManualIntervention bool
	Note               *string
	ModifiedByAdminID  *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AdminUser represents a dashboard account with administrative access.
type AdminUser struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for an admin user.
type Session struct {
	ID        string
	AdminID   string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
