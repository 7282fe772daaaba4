package dto

import "github.com/campuskit/routine-api/internal/models"

// AvailabilityQuery asks which teachers or rooms are free at a coordinate.
// Exclude removes ids the caller is already holding, e.g. teachers assigned
// to other pairs of the elective being composed. LabGroupID makes resources
// held by slots of the same lab-group family count as free, matching the
// conflict check's family exemption.
type AvailabilityQuery struct {
	AcademicYearID string   `form:"academicYearId" validate:"required"`
	DayIndex       int      `form:"dayIndex" validate:"min=0,max=6"`
	SlotIndex      int      `form:"slotIndex" validate:"min=0"`
	Semester       int      `form:"semester" validate:"required,min=1,max=8"`
	Exclude        []string `form:"exclude"`
	LabGroupID     *string  `form:"labGroupId"`
}

// AvailableTeachersResponse lists teachers free at the queried coordinate.
type AvailableTeachersResponse struct {
	Teachers []models.Teacher `json:"teachers"`
}

// AvailableRoomsResponse lists rooms free at the queried coordinate.
type AvailableRoomsResponse struct {
	Rooms []models.Room `json:"rooms"`
}
