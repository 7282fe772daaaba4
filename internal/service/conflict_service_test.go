package service

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/models"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
)

// fakeConflictRepo mirrors the SQL contract of the slot repository: same
// coordinate, same session, same parity cohort, active rows only.
type fakeConflictRepo struct {
	slots []models.RoutineSlot
}

func (f *fakeConflictRepo) matches(s models.RoutineSlot, yearID string, dayIndex, slotIndex, semester int, excludeID string) bool {
	if !s.IsActive || s.IsArchived {
		return false
	}
	if s.AcademicYearID != yearID || s.DayIndex != dayIndex || s.SlotIndex != slotIndex {
		return false
	}
	if !models.SameSemesterGroup(s.Semester, semester) {
		return false
	}
	if excludeID != "" && s.ID == excludeID {
		return false
	}
	return true
}

func (f *fakeConflictRepo) FindTeacherConflicts(_ context.Context, _ sqlx.ExtContext, yearID string, dayIndex, slotIndex, semester int, teacherIDs []string, excludeID string) ([]models.RoutineSlot, error) {
	var out []models.RoutineSlot
	for _, s := range f.slots {
		if !f.matches(s, yearID, dayIndex, slotIndex, semester, excludeID) {
			continue
		}
		if len(intersect(teacherIDs, s.TeacherIDs)) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeConflictRepo) FindRoomConflicts(_ context.Context, _ sqlx.ExtContext, yearID string, dayIndex, slotIndex, semester int, roomID, excludeID string) ([]models.RoutineSlot, error) {
	var out []models.RoutineSlot
	for _, s := range f.slots {
		if !f.matches(s, yearID, dayIndex, slotIndex, semester, excludeID) {
			continue
		}
		if s.RoomID == nil || *s.RoomID != roomID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeConflictRepo) ListBySection(_ context.Context, programID string, semester int, section, yearID string) ([]models.RoutineSlot, error) {
	var out []models.RoutineSlot
	for _, s := range f.slots {
		if !s.IsActive || s.IsArchived {
			continue
		}
		if s.ProgramID == programID && s.Semester == semester && s.Section == section && s.AcademicYearID == yearID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeConflictRepo) ListByTeacher(_ context.Context, teacherID, yearID string) ([]models.RoutineSlot, error) {
	var out []models.RoutineSlot
	for _, s := range f.slots {
		if !s.IsActive || s.IsArchived || s.AcademicYearID != yearID {
			continue
		}
		for _, id := range s.TeacherIDs {
			if id == teacherID {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func existingSlot(id string, semester int, teacherIDs []string, roomID *string) models.RoutineSlot {
	return models.RoutineSlot{
		ID:             id,
		ProgramID:      "prog-ce",
		Semester:       semester,
		Section:        "A",
		AcademicYearID: "year-1",
		DayIndex:       1,
		SlotIndex:      3,
		SubjectIDs:     []string{"sub-1"},
		TeacherIDs:     teacherIDs,
		RoomID:         roomID,
		ClassType:      models.ClassTypeLecture,
		ClassCategory:  models.CategoryCore,
		RecurrenceType: models.RecurrenceWeekly,
		IsActive:       true,
	}
}

func baseCheckRequest() dto.ConflictCheckRequest {
	return dto.ConflictCheckRequest{
		AcademicYearID: "year-1",
		DayIndex:       1,
		SlotIndex:      3,
		Semester:       5,
		TeacherIDs:     []string{"t-1"},
	}
}

func TestCheckScheduleConflictsReportsTeacherOverlap(t *testing.T) {
	repo := &fakeConflictRepo{slots: []models.RoutineSlot{
		existingSlot("slot-1", 3, []string{"t-1", "t-2"}, nil),
	}}
	svc := NewConflictService(repo, nil, nil)

	result, err := svc.CheckScheduleConflicts(context.Background(), nil, baseCheckRequest())
	require.NoError(t, err)
	assert.True(t, result.HasConflicts)
	require.Len(t, result.TeacherConflicts, 1)
	assert.Equal(t, "slot-1", result.TeacherConflicts[0].SlotID)
	assert.Equal(t, []string{"t-1"}, result.TeacherConflicts[0].TeacherIDs)
	assert.Equal(t, "TEACHER", result.TeacherConflicts[0].Dimension)
	assert.Nil(t, result.RoomConflict)
}

func TestCheckScheduleConflictsIgnoresOtherParityCohort(t *testing.T) {
	repo := &fakeConflictRepo{slots: []models.RoutineSlot{
		existingSlot("slot-1", 3, []string{"t-1"}, strPtr("room-1")),
	}}
	svc := NewConflictService(repo, nil, nil)

	req := baseCheckRequest()
	req.Semester = 4
	req.RoomID = strPtr("room-1")

	result, err := svc.CheckScheduleConflicts(context.Background(), nil, req)
	require.NoError(t, err)
	assert.False(t, result.HasConflicts)
	assert.Empty(t, result.TeacherConflicts)
	assert.Nil(t, result.RoomConflict)
}

func TestCheckScheduleConflictsExcludesSelf(t *testing.T) {
	repo := &fakeConflictRepo{slots: []models.RoutineSlot{
		existingSlot("slot-1", 5, []string{"t-1"}, strPtr("room-1")),
	}}
	svc := NewConflictService(repo, nil, nil)

	req := baseCheckRequest()
	req.RoomID = strPtr("room-1")
	req.ExcludeSlotID = "slot-1"

	result, err := svc.CheckScheduleConflicts(context.Background(), nil, req)
	require.NoError(t, err)
	assert.False(t, result.HasConflicts)
}

func TestCheckScheduleConflictsExemptsLabGroupFamily(t *testing.T) {
	member := existingSlot("slot-1", 5, []string{"t-1"}, strPtr("room-1"))
	member.ClassType = models.ClassTypePractical
	member.LabGroupID = strPtr("family-1")
	repo := &fakeConflictRepo{slots: []models.RoutineSlot{member}}
	svc := NewConflictService(repo, nil, nil)

	req := baseCheckRequest()
	req.RoomID = strPtr("room-1")
	req.LabGroupID = strPtr("family-1")

	result, err := svc.CheckScheduleConflicts(context.Background(), nil, req)
	require.NoError(t, err)
	assert.False(t, result.HasConflicts)

	// A different family still conflicts.
	req.LabGroupID = strPtr("family-2")
	result, err = svc.CheckScheduleConflicts(context.Background(), nil, req)
	require.NoError(t, err)
	assert.True(t, result.HasConflicts)
}

func TestCheckScheduleConflictsWeekPrecision(t *testing.T) {
	odd := models.WeekOdd
	slot := existingSlot("slot-1", 5, []string{"t-1"}, nil)
	slot.RecurrenceType = models.RecurrenceAlternate
	slot.RecurrencePattern = &odd
	repo := &fakeConflictRepo{slots: []models.RoutineSlot{slot}}
	svc := NewConflictService(repo, nil, nil)

	// Without a week the check is recurrence-blind and reports the slot.
	result, err := svc.CheckScheduleConflicts(context.Background(), nil, baseCheckRequest())
	require.NoError(t, err)
	assert.True(t, result.HasConflicts)

	req := baseCheckRequest()
	req.WeekNumber = intPtr(2)
	result, err = svc.CheckScheduleConflicts(context.Background(), nil, req)
	require.NoError(t, err)
	assert.False(t, result.HasConflicts, "odd-week slot must not block an even week")

	req.WeekNumber = intPtr(3)
	result, err = svc.CheckScheduleConflicts(context.Background(), nil, req)
	require.NoError(t, err)
	assert.True(t, result.HasConflicts)
}

func TestCheckScheduleConflictsReportsSingleRoomConflict(t *testing.T) {
	first := existingSlot("slot-1", 5, []string{"t-9"}, strPtr("room-1"))
	second := existingSlot("slot-2", 7, []string{"t-8"}, strPtr("room-1"))
	repo := &fakeConflictRepo{slots: []models.RoutineSlot{first, second}}
	svc := NewConflictService(repo, nil, nil)

	req := baseCheckRequest()
	req.RoomID = strPtr("room-1")

	result, err := svc.CheckScheduleConflicts(context.Background(), nil, req)
	require.NoError(t, err)
	assert.True(t, result.HasConflicts)
	assert.Empty(t, result.TeacherConflicts)
	require.NotNil(t, result.RoomConflict)
	assert.Equal(t, "slot-1", result.RoomConflict.SlotID)
	assert.Equal(t, "ROOM", result.RoomConflict.Dimension)
}

func TestSectionSweepFlagsDoubleBookedTeacher(t *testing.T) {
	a := existingSlot("slot-1", 5, []string{"t-1"}, strPtr("room-1"))
	b := existingSlot("slot-2", 5, []string{"t-1"}, strPtr("room-2"))
	c := existingSlot("slot-3", 5, []string{"t-2"}, strPtr("room-3"))
	c.SlotIndex = 4
	repo := &fakeConflictRepo{slots: []models.RoutineSlot{a, b, c}}
	svc := NewConflictService(repo, nil, nil)

	groups, err := svc.SectionSweep(context.Background(), "prog-ce", 5, "A", "year-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "t-1", groups[0].ResourceID)
	assert.Equal(t, "TEACHER", groups[0].Dimension)
	assert.Equal(t, 1, groups[0].DayIndex)
	assert.Equal(t, 3, groups[0].SlotIndex)
	assert.Len(t, groups[0].Slots, 2)
}

func TestSectionSweepIgnoresRecurrence(t *testing.T) {
	odd := models.WeekOdd
	even := models.WeekEven
	a := existingSlot("slot-1", 5, []string{"t-1"}, nil)
	a.RecurrenceType = models.RecurrenceAlternate
	a.RecurrencePattern = &odd
	b := existingSlot("slot-2", 5, []string{"t-1"}, nil)
	b.RecurrenceType = models.RecurrenceAlternate
	b.RecurrencePattern = &even
	repo := &fakeConflictRepo{slots: []models.RoutineSlot{a, b}}
	svc := NewConflictService(repo, nil, nil)

	// The two slots never meet on a real week, the blunt sweep still
	// flags them.
	groups, err := svc.SectionSweep(context.Background(), "prog-ce", 5, "A", "year-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "t-1", groups[0].ResourceID)
}

func TestTeacherScheduleConflictsGroupsByCoordinate(t *testing.T) {
	a := existingSlot("slot-1", 3, []string{"t-1"}, nil)
	b := existingSlot("slot-2", 5, []string{"t-1"}, nil)
	b.Section = "B"
	c := existingSlot("slot-3", 5, []string{"t-1"}, nil)
	c.SlotIndex = 7
	repo := &fakeConflictRepo{slots: []models.RoutineSlot{a, b, c}}
	svc := NewConflictService(repo, nil, nil)

	groups, err := svc.TeacherScheduleConflicts(context.Background(), "t-1", "year-1", nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].DayIndex)
	assert.Equal(t, 3, groups[0].SlotIndex)
	assert.Len(t, groups[0].Slots, 2)

	filtered, err := svc.TeacherScheduleConflicts(context.Background(), "t-1", "year-1", intPtr(5))
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestConflictsToError(t *testing.T) {
	assert.NoError(t, ConflictsToError(nil))
	assert.NoError(t, ConflictsToError(&dto.ConflictCheckResult{}))

	err := ConflictsToError(&dto.ConflictCheckResult{
		HasConflicts:     true,
		TeacherConflicts: []models.RoutineConflict{{SlotID: "slot-1"}},
	})
	require.Error(t, err)
	typed := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, typed.Code)
}

func TestCheckScheduleConflictsRejectsInvalidRequest(t *testing.T) {
	svc := NewConflictService(&fakeConflictRepo{}, nil, nil)

	req := baseCheckRequest()
	req.Semester = 0
	_, err := svc.CheckScheduleConflicts(context.Background(), nil, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = baseCheckRequest()
	req.TeacherIDs = nil
	_, err = svc.CheckScheduleConflicts(context.Background(), nil, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
