package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/routine-api/internal/models"
)

// TimeGridRepository manages the slotIndex to clock-time mapping.
type TimeGridRepository struct {
	db *sqlx.DB
}

// NewTimeGridRepository builds the repository.
func NewTimeGridRepository(db *sqlx.DB) *TimeGridRepository {
	return &TimeGridRepository{db: db}
}

// ListPeriods returns the grid definition ordered by slot index.
func (r *TimeGridRepository) ListPeriods(ctx context.Context) ([]models.TimeGridPeriod, error) {
	const query = `SELECT id, slot_index, start_time, end_time, label, is_break, created_at, updated_at FROM time_grid_periods ORDER BY slot_index ASC`
	var periods []models.TimeGridPeriod
	if err := r.db.SelectContext(ctx, &periods, query); err != nil {
		return nil, fmt.Errorf("list time grid periods: %w", err)
	}
	return periods, nil
}

// ReplacePeriods swaps the entire grid definition in one transaction.
func (r *TimeGridRepository) ReplacePeriods(ctx context.Context, periods []models.TimeGridPeriod) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace time grid: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM time_grid_periods`); err != nil {
		return fmt.Errorf("clear time grid: %w", err)
	}

	now := time.Now().UTC()
	const insert = `INSERT INTO time_grid_periods (id, slot_index, start_time, end_time, label, is_break, created_at, updated_at) VALUES (:id, :slot_index, :start_time, :end_time, :label, :is_break, :created_at, :updated_at)`
	for i := range periods {
		period := &periods[i]
		if period.ID == "" {
			period.ID = uuid.NewString()
		}
		if period.CreatedAt.IsZero() {
			period.CreatedAt = now
		}
		period.UpdatedAt = now
		if _, err = sqlx.NamedExecContext(ctx, tx, insert, period); err != nil {
			return fmt.Errorf("insert time grid period: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace time grid: %w", err)
	}
	return nil
}
