package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/timetrack/internal/persistence"
)

// RegistrationRepository implements persistence.TimeRegistrationRepository
// using SQLite.
type RegistrationRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewRegistrationRepository creates a new SQLite registration repository.
func NewRegistrationRepository(pool *ConnectionPool) *RegistrationRepository {
	return &RegistrationRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const registrationColumns = `id, worker_id, check_in, check_out, status, manual_intervention, note, modified_by_admin_id, created_at, updated_at`

// CreateRegistration inserts a new time registration. A second in-progress
// registration for the same worker violates the partial unique index and is
// reported as ErrConflict.
func (r *RegistrationRepository) CreateRegistration(ctx context.Context, registration persistence.TimeRegistration) error {
	if registration.ID == "" || registration.WorkerID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO time_registrations (` + registrationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		registration.ID,
		registration.WorkerID,
		formatTime(registration.CheckIn),
		formatTimePtr(registration.CheckOut),
		registration.Status,
		registration.ManualIntervention,
		nullString(registration.Note),
		nullString(registration.ModifiedByAdminID),
		formatTime(registration.CreatedAt),
		formatTime(registration.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateRegistration updates an existing time registration.
func (r *RegistrationRepository) UpdateRegistration(ctx context.Context, registration persistence.TimeRegistration) error {
	if registration.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE time_registrations
		SET check_in = ?, check_out = ?, status = ?, manual_intervention = ?, note = ?, modified_by_admin_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		formatTime(registration.CheckIn),
		formatTimePtr(registration.CheckOut),
		registration.Status,
		registration.ManualIntervention,
		nullString(registration.Note),
		nullString(registration.ModifiedByAdminID),
		formatTime(registration.UpdatedAt),
		registration.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetRegistration retrieves a registration by ID.
func (r *RegistrationRepository) GetRegistration(ctx context.Context, id string) (persistence.TimeRegistration, error) {
	if id == "" {
		return persistence.TimeRegistration{}, persistence.ErrNotFound
	}

	query := `SELECT ` + registrationColumns + ` FROM time_registrations WHERE id = ?`

	registration, err := scanRegistration(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.TimeRegistration{}, persistence.ErrNotFound
		}
		return persistence.TimeRegistration{}, r.mapper.MapError(err)
	}

	return registration, nil
}

// DeleteRegistration removes a registration permanently.
func (r *RegistrationRepository) DeleteRegistration(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `DELETE FROM time_registrations WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// FindOpenRegistration returns the worker's in-progress registration, if any.
func (r *RegistrationRepository) FindOpenRegistration(ctx context.Context, workerID string) (persistence.TimeRegistration, error) {
	if workerID == "" {
		return persistence.TimeRegistration{}, persistence.ErrNotFound
	}

	query := `
		SELECT ` + registrationColumns + `
		FROM time_registrations
		WHERE worker_id = ? AND status = ?
	`

	registration, err := scanRegistration(r.helper.QueryRow(ctx, query, workerID, persistence.StatusInProgress))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.TimeRegistration{}, persistence.ErrNotFound
		}
		return persistence.TimeRegistration{}, r.mapper.MapError(err)
	}

	return registration, nil
}

// ListRegistrations returns the page of registrations matching the filter and
// the total match count before pagination.
func (r *RegistrationRepository) ListRegistrations(ctx context.Context, filter persistence.RegistrationFilter) ([]persistence.TimeRegistration, int, error) {
	where, args := buildRegistrationWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM time_registrations` + where
	if err := r.helper.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	query := `SELECT ` + registrationColumns + ` FROM time_registrations` + where +
		` ORDER BY ` + registrationSortColumn(filter.SortBy) + ` ` + registrationSortDirection(filter.SortOrder) + `, id ASC`

	listArgs := args
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		listArgs = append(append([]any{}, args...), filter.Limit, filter.Offset)
	}

	rows, err := r.helper.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, r.mapper.MapError(err)
	}
	defer rows.Close()

	var registrations []persistence.TimeRegistration
	for rows.Next() {
		registration, err := scanRegistration(rows)
		if err != nil {
			return nil, 0, r.mapper.MapError(err)
		}
		registrations = append(registrations, registration)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	return registrations, total, nil
}

func buildRegistrationWhere(filter persistence.RegistrationFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.WorkerID != "" {
		clauses = append(clauses, "worker_id = ?")
		args = append(args, filter.WorkerID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.ManualIntervention != nil {
		clauses = append(clauses, "manual_intervention = ?")
		args = append(args, *filter.ManualIntervention)
	}
	if filter.CheckInFrom != nil {
		clauses = append(clauses, "check_in >= ?")
		args = append(args, formatTime(*filter.CheckInFrom))
	}
	if filter.CheckInTo != nil {
		clauses = append(clauses, "check_in <= ?")
		args = append(args, formatTime(*filter.CheckInTo))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// registrationSortColumn whitelists sortable columns; anything unrecognised
// falls back to check_in.
func registrationSortColumn(sortBy string) string {
	switch sortBy {
	case persistence.SortByCheckOut:
		return "check_out"
	case persistence.SortByCreatedAt:
		return "created_at"
	default:
		return "check_in"
	}
}

func registrationSortDirection(order string) string {
	if order == persistence.SortAsc {
		return "ASC"
	}
	return "DESC"
}

func scanRegistration(row rowScanner) (persistence.TimeRegistration, error) {
	var registration persistence.TimeRegistration
	var checkInStr, createdAtStr, updatedAtStr string
	var checkOut, note, modifiedBy sql.NullString

	err := row.Scan(
		&registration.ID,
		&registration.WorkerID,
		&checkInStr,
		&checkOut,
		&registration.Status,
		&registration.ManualIntervention,
		&note,
		&modifiedBy,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.TimeRegistration{}, err
	}

	if registration.CheckIn, err = parseTime(checkInStr); err != nil {
		return persistence.TimeRegistration{}, fmt.Errorf("failed to parse check_in: %w", err)
	}
	if registration.CheckOut, err = parseTimePtr(checkOut); err != nil {
		return persistence.TimeRegistration{}, fmt.Errorf("failed to parse check_out: %w", err)
	}
	registration.Note = stringPtr(note)
	registration.ModifiedByAdminID = stringPtr(modifiedBy)
	if registration.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.TimeRegistration{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if registration.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.TimeRegistration{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return registration, nil
}
