package models

import "time"

// AcademicYearStatus represents lifecycle phases for academic sessions.
type AcademicYearStatus string

const (
	AcademicYearStatusDraft    AcademicYearStatus = "DRAFT"
	AcademicYearStatusActive   AcademicYearStatus = "ACTIVE"
	AcademicYearStatusArchived AcademicYearStatus = "ARCHIVED"
)

// AcademicYear captures one academic session. Activating a new session
// archives the routine slots of the previously active one.
type AcademicYear struct {
	ID        string             `db:"id" json:"id"`
	Label     string             `db:"label" json:"label"`
	StartDate time.Time          `db:"start_date" json:"start_date"`
	EndDate   time.Time          `db:"end_date" json:"end_date"`
	Status    AcademicYearStatus `db:"status" json:"status"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}
