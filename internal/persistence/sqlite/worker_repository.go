package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/timetrack/internal/persistence"
)

// WorkerRepository implements persistence.WorkerRepository using SQLite.
type WorkerRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewWorkerRepository creates a new SQLite worker repository.
func NewWorkerRepository(pool *ConnectionPool) *WorkerRepository {
	return &WorkerRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateWorker inserts a new worker record.
func (r *WorkerRepository) CreateWorker(ctx context.Context, worker persistence.Worker) error {
	if worker.ID == "" || worker.PINHash == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO workers (id, first_name, last_name, department, active, pin_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		worker.ID,
		worker.FirstName,
		worker.LastName,
		worker.Department,
		worker.Active,
		worker.PINHash,
		formatTime(worker.CreatedAt),
		formatTime(worker.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateWorker updates an existing worker record.
func (r *WorkerRepository) UpdateWorker(ctx context.Context, worker persistence.Worker) error {
	if worker.ID == "" || worker.PINHash == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE workers
		SET first_name = ?, last_name = ?, department = ?, active = ?, pin_hash = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		worker.FirstName,
		worker.LastName,
		worker.Department,
		worker.Active,
		worker.PINHash,
		formatTime(worker.UpdatedAt),
		worker.ID,
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

// GetWorker retrieves a worker by ID.
func (r *WorkerRepository) GetWorker(ctx context.Context, id string) (persistence.Worker, error) {
	if id == "" {
		return persistence.Worker{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, first_name, last_name, department, active, pin_hash, created_at, updated_at
		FROM workers
		WHERE id = ?
	`

	worker, err := scanWorker(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Worker{}, persistence.ErrNotFound
		}
		return persistence.Worker{}, r.mapper.MapError(err)
	}

	return worker, nil
}

// ListWorkers returns all workers ordered by creation timestamp then ID. The
// ordering is what makes the PIN toggle's first-match-wins scan deterministic
// for a given dataset.
func (r *WorkerRepository) ListWorkers(ctx context.Context) ([]persistence.Worker, error) {
	query := `
		SELECT id, first_name, last_name, department, active, pin_hash, created_at, updated_at
		FROM workers
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var workers []persistence.Worker
	for rows.Next() {
		worker, err := scanWorker(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		workers = append(workers, worker)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return workers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (persistence.Worker, error) {
	var worker persistence.Worker
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&worker.ID,
		&worker.FirstName,
		&worker.LastName,
		&worker.Department,
		&worker.Active,
		&worker.PINHash,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Worker{}, err
	}

	if worker.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Worker{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if worker.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Worker{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return worker, nil
}
