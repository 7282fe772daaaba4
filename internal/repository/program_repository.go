package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campuskit/routine-api/internal/models"
)

// ProgramRepository provides persistence for degree programs.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository creates a new program repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

type programRow struct {
	models.Program
	SectionList pq.StringArray `db:"sections"`
}

// FindByID loads a program by id.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT id, code, name, sections, created_at, updated_at FROM programs WHERE id = $1`
	var row programRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	program := row.Program
	program.Sections = row.SectionList
	return &program, nil
}

// ListAll returns every program ordered by code.
func (r *ProgramRepository) ListAll(ctx context.Context) ([]models.Program, error) {
	const query = `SELECT id, code, name, sections, created_at, updated_at FROM programs ORDER BY code ASC`
	var rows []programRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	programs := make([]models.Program, 0, len(rows))
	for _, row := range rows {
		program := row.Program
		program.Sections = row.SectionList
		programs = append(programs, program)
	}
	return programs, nil
}

// Create stores a new program record.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	const query = `INSERT INTO programs (id, code, name, sections, created_at, updated_at) VALUES ($1, $2, $3, $4, NOW(), NOW())`
	if _, err := r.db.ExecContext(ctx, query, program.ID, program.Code, program.Name, pq.Array(program.Sections)); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}
