package application

import (
	"math"
	"time"
)

// Principal represents the authenticated admin invoking a service method.
type Principal struct {
	AdminID string
	IsAdmin bool
}

// RegistrationStatus enumerates the lifecycle states of a time registration.
type RegistrationStatus string

const (
	// StatusInProgress marks an open attendance interval.
	StatusInProgress RegistrationStatus = "in_progress"
	// StatusCompleted marks a closed attendance interval.
	StatusCompleted RegistrationStatus = "completed"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s RegistrationStatus) Valid() bool {
	return s == StatusInProgress || s == StatusCompleted
}

// Toggle actions reported by the kiosk endpoint.
const (
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
)

// Worker represents an employee tracked by the kiosk. PINHash never leaves
// the service layer.
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

// TimeRegistration represents a single attendance interval.
type TimeRegistration struct {
	ID                 string
	WorkerID           string
	CheckIn            time.Time
	CheckOut           *time.Time
	Status             RegistrationStatus
	ManualIntervention bool
	Note               string
	ModifiedByAdminID  string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DurationHours returns the interval length in hours rounded to two decimal
// places. The second return value is false while the registration is open.
func (r TimeRegistration) DurationHours() (float64, bool) {
	if r.CheckOut == nil {
		return 0, false
	}
	return RoundHours(r.CheckOut.Sub(r.CheckIn)), true
}

// RoundHours converts a duration to hours rounded to two decimal places.
func RoundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

// AdminUser represents a dashboard account.
type AdminUser struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AdminCredentials models the authentication attributes persisted for an admin.
type AdminCredentials struct {
	Admin        AdminUser
	PasswordHash string
}

// Session represents an authenticated session issued to an admin.
type Session struct {
	ID        string
	AdminID   string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate an admin.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	Admin   AdminUser
	Session Session
}

// ToggleResult captures the outcome of a kiosk check-in/check-out toggle.
type ToggleResult struct {
	Action       string
	Registration TimeRegistration
	Worker       Worker
}

// WorkerInput captures caller provided worker attributes for creation.
type WorkerInput struct {
	FirstName  string
	LastName   string
	Department string
	PIN        string
}

// WorkerUpdate captures caller provided worker attributes for updates. Active
// is optional; nil leaves the flag untouched.
type WorkerUpdate struct {
	FirstName  string
	LastName   string
	Department string
	Active     *bool
}

// CreateWorkerParams wraps the data required to create a worker.
type CreateWorkerParams struct {
	Principal Principal
	Input     WorkerInput
}

// UpdateWorkerParams wraps the data required to update a worker.
type UpdateWorkerParams struct {
	Principal Principal
	WorkerID  string
	Input     WorkerUpdate
}

// RotatePINParams wraps the data required to replace a worker's PIN.
type RotatePINParams struct {
	Principal Principal
	WorkerID  string
	PIN       string
}

// CreateRegistrationParams wraps the data for a manual registration.
type CreateRegistrationParams struct {
	Principal Principal
	WorkerID  string
	CheckIn   time.Time
	Note      string
}

// RegistrationPatch carries optional fields for an administrative update.
// Nil fields keep the stored value.
type RegistrationPatch struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Status   *RegistrationStatus
	Note     *string
}

// UpdateRegistrationParams wraps the data for an administrative update.
type UpdateRegistrationParams struct {
	Principal      Principal
	RegistrationID string
	Patch          RegistrationPatch
}

// ListRegistrationsParams wraps filter, sort, and pagination arguments.
type ListRegistrationsParams struct {
	Principal          Principal
	WorkerID           string
	Status             RegistrationStatus
	ManualIntervention *bool
	DateFrom           *time.Time
	DateTo             *time.Time
	SortBy             string
	SortOrder          string
	Page               int
	Limit              int
}

// Pagination describes the window a list response covers.
type Pagination struct {
	Page        int
	Limit       int
	TotalItems  int
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

// RegistrationPage bundles a page of registrations with its pagination data.
type RegistrationPage struct {
	Registrations []TimeRegistration
	Pagination    Pagination
}

// SummaryParams bounds the reporting window. Nil bounds leave the window open
// on that side.
type SummaryParams struct {
	Principal Principal
	DateFrom  *time.Time
	DateTo    *time.Time
}

// ReportSummary aggregates dashboard KPIs over the requested window.
type ReportSummary struct {
	TotalRegistrations      int
	InProgressCount         int
	CompletedCount          int
	ManualInterventionCount int
	ManualInterventionRate  float64
	TotalHours              float64
	AverageHours            float64
	ActiveWorkers           int
	InactiveWorkers         int
	WorkersCheckedIn        int
	TodayRegistrations      int
	TodayHours              float64
}
