package application

import "errors"

var (
	// ErrUnauthorized is returned when the caller cannot be authenticated.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrForbidden is returned when the authenticated principal lacks admin rights.
	ErrForbidden = errors.New("application: forbidden")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a write collides with existing state, such
	// as a duplicate PIN or a second open interval for the same worker.
	ErrConflict = errors.New("application: conflict")
	// ErrInvalidCredentials is returned for PIN or password mismatches.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a session token is past its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// RuleError reports a business rule violation, such as a future check-in or
// check-out before check-in. It surfaces to clients as a bad request.
type RuleError struct {
	Message string
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// NewRuleError constructs a RuleError with the given message.
func NewRuleError(message string) *RuleError {
	return &RuleError{Message: message}
}

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
