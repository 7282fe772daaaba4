package dto

import "github.com/campuskit/routine-api/internal/models"

// RecurrenceRequest describes which calendar weeks a slot is active.
type RecurrenceRequest struct {
	Type        models.RecurrenceType `json:"type" validate:"omitempty,oneof=WEEKLY ALTERNATE CUSTOM"`
	Pattern     *models.WeekParity    `json:"pattern,omitempty" validate:"omitempty,oneof=ODD EVEN"`
	CustomWeeks []int                 `json:"customWeeks,omitempty" validate:"omitempty,dive,min=1"`
}

// CreateRoutineSlotRequest describes payload for placing a class on the grid.
// SpanLength > 1 creates that many contiguous records sharing one span id.
type CreateRoutineSlotRequest struct {
	ProgramID      string   `json:"programId" validate:"required"`
	Semester       int      `json:"semester" validate:"required,min=1,max=8"`
	Section        string   `json:"section" validate:"required"`
	AcademicYearID string   `json:"academicYearId" validate:"required"`
	DayIndex       int      `json:"dayIndex" validate:"min=0,max=6"`
	SlotIndex      int      `json:"slotIndex" validate:"min=0"`
	SubjectIDs     []string `json:"subjectIds"`
	TeacherIDs     []string `json:"teacherIds"`
	RoomID         *string  `json:"roomId,omitempty"`

	ClassType     models.ClassType     `json:"classType" validate:"required,oneof=LECTURE PRACTICAL TUTORIAL BREAK"`
	ClassCategory models.ClassCategory `json:"classCategory" validate:"required,oneof=CORE ELECTIVE COMMON"`

	LabGroupID *string          `json:"labGroupId,omitempty"`
	LabGroup   *models.LabGroup `json:"labGroup,omitempty" validate:"omitempty,oneof=A B C D ALL"`

	Recurrence RecurrenceRequest `json:"recurrence"`
	SpanLength int               `json:"spanLength" validate:"omitempty,min=1,max=6"`
}

// UpdateRoutineSlotRequest reassigns an existing slot in place.
type UpdateRoutineSlotRequest struct {
	SubjectIDs []string `json:"subjectIds"`
	TeacherIDs []string `json:"teacherIds"`
	RoomID     *string  `json:"roomId,omitempty"`

	ClassType     models.ClassType     `json:"classType" validate:"required,oneof=LECTURE PRACTICAL TUTORIAL BREAK"`
	ClassCategory models.ClassCategory `json:"classCategory" validate:"required,oneof=CORE ELECTIVE COMMON"`

	LabGroupID *string          `json:"labGroupId,omitempty"`
	LabGroup   *models.LabGroup `json:"labGroup,omitempty" validate:"omitempty,oneof=A B C D ALL"`

	Recurrence RecurrenceRequest `json:"recurrence"`
}

// ConflictCheckRequest asks whether a proposed assignment is legal.
// WeekNumber, when set, makes the check recurrence-precise; left nil the
// check ignores recurrence and over-reports on purpose.
type ConflictCheckRequest struct {
	AcademicYearID string   `json:"academicYearId" validate:"required"`
	DayIndex       int      `json:"dayIndex" validate:"min=0,max=6"`
	SlotIndex      int      `json:"slotIndex" validate:"min=0"`
	Semester       int      `json:"semester" validate:"required,min=1,max=8"`
	TeacherIDs     []string `json:"teacherIds" validate:"required,min=1"`
	RoomID         *string  `json:"roomId,omitempty"`
	LabGroupID     *string  `json:"labGroupId,omitempty"`
	ExcludeSlotID  string   `json:"excludeSlotId,omitempty"`
	WeekNumber     *int     `json:"weekNumber,omitempty" validate:"omitempty,min=1"`
}

// ConflictCheckResult reports both conflict dimensions independently.
type ConflictCheckResult struct {
	HasConflicts     bool                     `json:"has_conflicts"`
	TeacherConflicts []models.RoutineConflict `json:"teacher_conflicts"`
	RoomConflict     *models.RoutineConflict  `json:"room_conflict,omitempty"`
}

// CopyRoutineRequest bulk-copies a section's active slots between sessions.
type CopyRoutineRequest struct {
	ProgramID    string `json:"programId" validate:"required"`
	Semester     int    `json:"semester" validate:"required,min=1,max=8"`
	Section      string `json:"section" validate:"required"`
	SourceYearID string `json:"sourceYearId" validate:"required"`
	TargetYearID string `json:"targetYearId" validate:"required,nefield=SourceYearID"`
}

// CopyRoutineResult summarises a bulk copy and its advisory sweep.
type CopyRoutineResult struct {
	CopiedCount int                    `json:"copied_count"`
	Sweep       []models.ConflictGroup `json:"sweep,omitempty"`
}

// GridQuery selects the section whose grid is requested.
type GridQuery struct {
	ProgramID      string `form:"programId" validate:"required"`
	Semester       int    `form:"semester" validate:"required,min=1,max=8"`
	Section        string `form:"section" validate:"required"`
	AcademicYearID string `form:"academicYearId" validate:"required"`
}

// GridCell is one rendered coordinate of a section grid. Continuation
// records of a span are folded into the master's colspan.
type GridCell struct {
	DayIndex  int                  `json:"day_index"`
	SlotIndex int                  `json:"slot_index"`
	ColSpan   int                  `json:"col_span"`
	Slots     []models.RoutineSlot `json:"slots"`
}

// SectionGrid is the full weekly grid for one section.
type SectionGrid struct {
	ProgramID      string     `json:"program_id"`
	Semester       int        `json:"semester"`
	Section        string     `json:"section"`
	AcademicYearID string     `json:"academic_year_id"`
	Cells          []GridCell `json:"cells"`
}
