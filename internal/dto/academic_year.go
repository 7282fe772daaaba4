package dto

import "time"

// CreateAcademicYearRequest registers a new academic session in DRAFT.
type CreateAcademicYearRequest struct {
	Label     string    `json:"label" validate:"required"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
}
