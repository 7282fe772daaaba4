package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/routine-api/internal/models"
)

const yearColumns = `id, label, start_date, end_date, status, created_at, updated_at`

// AcademicYearRepository provides persistence for academic sessions.
type AcademicYearRepository struct {
	db *sqlx.DB
}

// NewAcademicYearRepository creates a new academic year repository.
func NewAcademicYearRepository(db *sqlx.DB) *AcademicYearRepository {
	return &AcademicYearRepository{db: db}
}

// ListAll returns sessions newest first.
func (r *AcademicYearRepository) ListAll(ctx context.Context) ([]models.AcademicYear, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_years ORDER BY start_date DESC", yearColumns)
	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	return years, nil
}

// FindByID loads a session by id.
func (r *AcademicYearRepository) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_years WHERE id = $1", yearColumns)
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// FindActive returns the currently active session, if any.
func (r *AcademicYearRepository) FindActive(ctx context.Context) (*models.AcademicYear, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_years WHERE status = $1", yearColumns)
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, models.AcademicYearStatusActive); err != nil {
		return nil, err
	}
	return &year, nil
}

// Create stores a new draft session.
func (r *AcademicYearRepository) Create(ctx context.Context, year *models.AcademicYear) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	year.CreatedAt = now
	year.UpdatedAt = now
	if year.Status == "" {
		year.Status = models.AcademicYearStatusDraft
	}
	const query = `INSERT INTO academic_years (id, label, start_date, end_date, status, created_at, updated_at) VALUES (:id, :label, :start_date, :end_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}
	return nil
}

// SetStatus transitions a session's lifecycle status.
func (r *AcademicYearRepository) SetStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.AcademicYearStatus) error {
	target := sqlx.ExtContext(r.db)
	if exec != nil {
		target = exec
	}
	const query = `UPDATE academic_years SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := target.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("set academic year status: %w", err)
	}
	return nil
}

// InTransaction runs fn inside a transaction, rolling back on error.
func (r *AcademicYearRepository) InTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin academic year tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit academic year tx: %w", err)
	}
	return nil
}
