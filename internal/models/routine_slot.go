package models

import (
	"time"

	"github.com/lib/pq"
)

// SemesterGroup partitions semesters into the odd/even cohorts that are
// timetabled as non-overlapping student populations.
type SemesterGroup string

const (
	SemesterGroupOdd  SemesterGroup = "ODD"
	SemesterGroupEven SemesterGroup = "EVEN"
)

// ClassType classifies what kind of session occupies a slot.
type ClassType string

const (
	ClassTypeLecture   ClassType = "LECTURE"
	ClassTypePractical ClassType = "PRACTICAL"
	ClassTypeTutorial  ClassType = "TUTORIAL"
	ClassTypeBreak     ClassType = "BREAK"
)

// ClassCategory distinguishes core, elective and common classes.
type ClassCategory string

const (
	CategoryCore     ClassCategory = "CORE"
	CategoryElective ClassCategory = "ELECTIVE"
	CategoryCommon   ClassCategory = "COMMON"
)

// LabGroup labels the sub-cohort of a section a practical slot serves.
type LabGroup string

const (
	LabGroupA   LabGroup = "A"
	LabGroupB   LabGroup = "B"
	LabGroupC   LabGroup = "C"
	LabGroupD   LabGroup = "D"
	LabGroupAll LabGroup = "ALL"
)

// RecurrenceType describes which calendar weeks a slot is active.
type RecurrenceType string

const (
	RecurrenceWeekly    RecurrenceType = "WEEKLY"
	RecurrenceAlternate RecurrenceType = "ALTERNATE"
	RecurrenceCustom    RecurrenceType = "CUSTOM"
)

// WeekParity selects odd or even calendar weeks for alternate recurrence.
type WeekParity string

const (
	WeekOdd  WeekParity = "ODD"
	WeekEven WeekParity = "EVEN"
)

// RoutineSlot is one scheduled occupation of a (day, period) grid coordinate.
// Elective slots pair SubjectIDs[i] with TeacherIDs[i] positionally. Slots
// spanning multiple contiguous periods share a SpanID with exactly one master.
type RoutineSlot struct {
	ID             string `db:"id" json:"id"`
	ProgramID      string `db:"program_id" json:"program_id"`
	Semester       int    `db:"semester" json:"semester"`
	Section        string `db:"section" json:"section"`
	AcademicYearID string `db:"academic_year_id" json:"academic_year_id"`

	DayIndex  int `db:"day_index" json:"day_index"`
	SlotIndex int `db:"slot_index" json:"slot_index"`

	SubjectIDs pq.StringArray `db:"subject_ids" json:"subject_ids"`
	TeacherIDs pq.StringArray `db:"teacher_ids" json:"teacher_ids"`
	RoomID     *string        `db:"room_id" json:"room_id,omitempty"`

	ClassType     ClassType     `db:"class_type" json:"class_type"`
	ClassCategory ClassCategory `db:"class_category" json:"class_category"`

	LabGroupID *string   `db:"lab_group_id" json:"lab_group_id,omitempty"`
	LabGroup   *LabGroup `db:"lab_group" json:"lab_group,omitempty"`

	RecurrenceType    RecurrenceType `db:"recurrence_type" json:"recurrence_type"`
	RecurrencePattern *WeekParity    `db:"recurrence_pattern" json:"recurrence_pattern,omitempty"`
	CustomWeeks       pq.Int64Array  `db:"custom_weeks" json:"custom_weeks,omitempty"`

	SpanID     *string `db:"span_id" json:"span_id,omitempty"`
	SpanMaster bool    `db:"span_master" json:"span_master"`

	// Display cache, snapshotted at write time. Never authoritative.
	SubjectNames pq.StringArray `db:"subject_names" json:"subject_names,omitempty"`
	TeacherNames pq.StringArray `db:"teacher_names" json:"teacher_names,omitempty"`
	RoomName     *string        `db:"room_name" json:"room_name,omitempty"`

	IsActive   bool `db:"is_active" json:"is_active"`
	IsArchived bool `db:"is_archived" json:"is_archived"`
	Version    int  `db:"version" json:"version"`

	CreatedBy *string   `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy *string   `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SemesterGroup derives the parity cohort from the semester number. It is
// deliberately not a stored field: deriving it here keeps it impossible to
// drift from the semester.
func (s *RoutineSlot) SemesterGroup() SemesterGroup {
	return SemesterGroupFor(s.Semester)
}

// SemesterGroupFor returns the parity cohort for a semester number.
func SemesterGroupFor(semester int) SemesterGroup {
	if semester%2 == 1 {
		return SemesterGroupOdd
	}
	return SemesterGroupEven
}

// SameSemesterGroup reports whether two semesters share a parity cohort.
// Slots in different cohorts never conflict even at the same coordinate.
func SameSemesterGroup(a, b int) bool {
	return a%2 == b%2
}

// IsElective reports whether the slot offers multiple subject/teacher pairs.
func (s *RoutineSlot) IsElective() bool {
	return s.ClassCategory == CategoryElective
}

// AppliesToWeek answers whether the slot is active on the given calendar week.
func (s *RoutineSlot) AppliesToWeek(week int) bool {
	switch s.RecurrenceType {
	case RecurrenceAlternate:
		if s.RecurrencePattern == nil {
			return true
		}
		weekIsOdd := week%2 == 1
		return weekIsOdd == (*s.RecurrencePattern == WeekOdd)
	case RecurrenceCustom:
		for _, w := range s.CustomWeeks {
			if int(w) == week {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// SharesLabGroupFamily reports whether two slots belong to the same split
// practical. Group A and B of one practical never conflict with each other.
func (s *RoutineSlot) SharesLabGroupFamily(other *RoutineSlot) bool {
	if s.LabGroupID == nil || other.LabGroupID == nil {
		return false
	}
	return *s.LabGroupID == *other.LabGroupID
}

// RoutineSlotFilter captures query params for listing routine slots.
type RoutineSlotFilter struct {
	ProgramID      string
	Semester       int
	Section        string
	AcademicYearID string
	TeacherID      string
	DayIndex       *int
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// RoutineConflict describes an existing slot that blocks a proposed one.
type RoutineConflict struct {
	SlotID       string    `json:"slot_id"`
	ProgramID    string    `json:"program_id"`
	Semester     int       `json:"semester"`
	Section      string    `json:"section"`
	DayIndex     int       `json:"day_index"`
	SlotIndex    int       `json:"slot_index"`
	TeacherIDs   []string  `json:"teacher_ids,omitempty"`
	RoomID       *string   `json:"room_id,omitempty"`
	SubjectNames []string  `json:"subject_names,omitempty"`
	TeacherNames []string  `json:"teacher_names,omitempty"`
	ClassType    ClassType `json:"class_type"`
	Dimension    string    `json:"dimension"`
}

// RoutineConflictError is returned when a write collides with existing slots.
type RoutineConflictError struct {
	Message          string            `json:"message"`
	TeacherConflicts []RoutineConflict `json:"teacher_conflicts,omitempty"`
	RoomConflict     *RoutineConflict  `json:"room_conflict,omitempty"`
}

// Error implements the error interface for conflict errors.
func (e *RoutineConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// ConflictGroup is one over-booked (resource, coordinate) bucket found by a
// diagnostic sweep.
type ConflictGroup struct {
	ResourceID string        `json:"resource_id"`
	Dimension  string        `json:"dimension"`
	DayIndex   int           `json:"day_index"`
	SlotIndex  int           `json:"slot_index"`
	Slots      []RoutineSlot `json:"slots"`
}
