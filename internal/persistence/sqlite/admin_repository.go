package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/timetrack/internal/persistence"
)

// AdminRepository implements persistence.AdminRepository using SQLite.
type AdminRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAdminRepository creates a new SQLite admin repository.
func NewAdminRepository(pool *ConnectionPool) *AdminRepository {
	return &AdminRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateAdmin inserts a new admin account. Duplicate emails are reported as
// ErrConflict via the unique index.
func (r *AdminRepository) CreateAdmin(ctx context.Context, admin persistence.AdminUser) error {
	if admin.ID == "" || admin.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO admin_users (id, email, display_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		admin.ID,
		normalizeEmail(admin.Email),
		admin.DisplayName,
		admin.PasswordHash,
		formatTime(admin.CreatedAt),
		formatTime(admin.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetAdmin retrieves an admin account by ID.
func (r *AdminRepository) GetAdmin(ctx context.Context, id string) (persistence.AdminUser, error) {
	if id == "" {
		return persistence.AdminUser{}, persistence.ErrNotFound
	}
	return r.getAdminBy(ctx, "id = ?", id)
}

// GetAdminByEmail retrieves an admin account by its normalized email address.
func (r *AdminRepository) GetAdminByEmail(ctx context.Context, email string) (persistence.AdminUser, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.AdminUser{}, persistence.ErrNotFound
	}
	return r.getAdminBy(ctx, "email = ?", normalized)
}

// CountAdmins returns the number of admin accounts, used to decide whether the
// bootstrap account must be seeded.
func (r *AdminRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := r.helper.QueryRow(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count); err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

func (r *AdminRepository) getAdminBy(ctx context.Context, predicate string, arg any) (persistence.AdminUser, error) {
	query := `
		SELECT id, email, display_name, password_hash, created_at, updated_at
		FROM admin_users
		WHERE ` + predicate

	var admin persistence.AdminUser
	var createdAtStr, updatedAtStr string

	err := r.helper.QueryRow(ctx, query, arg).Scan(
		&admin.ID,
		&admin.Email,
		&admin.DisplayName,
		&admin.PasswordHash,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.AdminUser{}, persistence.ErrNotFound
		}
		return persistence.AdminUser{}, r.mapper.MapError(err)
	}

	if admin.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.AdminUser{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if admin.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.AdminUser{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return admin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
