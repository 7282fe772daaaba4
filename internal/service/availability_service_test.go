package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/models"
)

// fakeBusyRepo derives busy sets from a slot list the way the SQL does:
// same coordinate, same session, same parity cohort, lab-group family
// members exempted.
type fakeBusyRepo struct {
	slots []models.RoutineSlot
}

func (f *fakeBusyRepo) occupies(s models.RoutineSlot, yearID string, dayIndex, slotIndex, semester int, labGroupID *string) bool {
	if !s.IsActive || s.AcademicYearID != yearID || s.DayIndex != dayIndex || s.SlotIndex != slotIndex {
		return false
	}
	if !models.SameSemesterGroup(s.Semester, semester) {
		return false
	}
	if labGroupID != nil && s.LabGroupID != nil && *s.LabGroupID == *labGroupID {
		return false
	}
	return true
}

func (f *fakeBusyRepo) BusyTeacherIDs(_ context.Context, yearID string, dayIndex, slotIndex, semester int, labGroupID *string) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range f.slots {
		if !f.occupies(s, yearID, dayIndex, slotIndex, semester, labGroupID) {
			continue
		}
		for _, id := range s.TeacherIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out, nil
}

func (f *fakeBusyRepo) BusyRoomIDs(_ context.Context, yearID string, dayIndex, slotIndex, semester int, labGroupID *string) ([]string, error) {
	var out []string
	for _, s := range f.slots {
		if !f.occupies(s, yearID, dayIndex, slotIndex, semester, labGroupID) {
			continue
		}
		if s.RoomID != nil {
			out = append(out, *s.RoomID)
		}
	}
	return out, nil
}

type staticTeachers []models.Teacher

func (s staticTeachers) ListActive(_ context.Context) ([]models.Teacher, error) { return s, nil }

type staticRooms []models.Room

func (s staticRooms) ListActive(_ context.Context) ([]models.Room, error) { return s, nil }

func availabilityFixture(slots []models.RoutineSlot) *AvailabilityService {
	teachers := staticTeachers{
		{ID: "t-1", FullName: "Teacher One", Active: true},
		{ID: "t-2", FullName: "Teacher Two", Active: true},
		{ID: "t-3", FullName: "Teacher Three", Active: true},
	}
	rooms := staticRooms{
		{ID: "room-1", Name: "Room 101", Active: true},
		{ID: "room-2", Name: "Room 102", Active: true},
	}
	return NewAvailabilityService(&fakeBusyRepo{slots: slots}, teachers, rooms, nil)
}

func availabilityQuery(semester int) dto.AvailabilityQuery {
	return dto.AvailabilityQuery{
		AcademicYearID: "year-1",
		DayIndex:       1,
		SlotIndex:      3,
		Semester:       semester,
	}
}

func TestAvailableTeachersFiltersBusy(t *testing.T) {
	svc := availabilityFixture([]models.RoutineSlot{
		existingSlot("slot-1", 3, []string{"t-1"}, strPtr("room-1")),
	})

	teachers, err := svc.AvailableTeachers(context.Background(), availabilityQuery(5))
	require.NoError(t, err)
	ids := teacherIDs(teachers)
	assert.NotContains(t, ids, "t-1")
	assert.Contains(t, ids, "t-2")
	assert.Contains(t, ids, "t-3")
}

func TestAvailableTeachersIgnoresOtherParity(t *testing.T) {
	svc := availabilityFixture([]models.RoutineSlot{
		existingSlot("slot-1", 3, []string{"t-1"}, nil),
	})

	// An even semester queries the other cohort; t-1 is free there.
	teachers, err := svc.AvailableTeachers(context.Background(), availabilityQuery(4))
	require.NoError(t, err)
	assert.Contains(t, teacherIDs(teachers), "t-1")
}

func TestAvailableTeachersHonoursExclude(t *testing.T) {
	svc := availabilityFixture(nil)

	q := availabilityQuery(5)
	q.Exclude = []string{"t-2"}
	teachers, err := svc.AvailableTeachers(context.Background(), q)
	require.NoError(t, err)
	ids := teacherIDs(teachers)
	assert.NotContains(t, ids, "t-2")
	assert.Contains(t, ids, "t-1")
}

func TestAvailableRoomsFiltersOccupied(t *testing.T) {
	svc := availabilityFixture([]models.RoutineSlot{
		existingSlot("slot-1", 5, []string{"t-9"}, strPtr("room-1")),
	})

	rooms, err := svc.AvailableRooms(context.Background(), availabilityQuery(5))
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "room-2", rooms[0].ID)
}

// Resources held only by slots of the queried lab-group family count as
// free, matching the conflict check's family exemption.
func TestAvailabilityExemptsLabGroupFamily(t *testing.T) {
	held := existingSlot("slot-1", 5, []string{"t-1"}, strPtr("room-1"))
	held.ClassType = models.ClassTypePractical
	held.LabGroupID = strPtr("lab-cs")
	svc := availabilityFixture([]models.RoutineSlot{held})

	q := availabilityQuery(5)
	q.LabGroupID = strPtr("lab-cs")

	teachers, err := svc.AvailableTeachers(context.Background(), q)
	require.NoError(t, err)
	assert.Contains(t, teacherIDs(teachers), "t-1")

	rooms, err := svc.AvailableRooms(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	// Without the family hint the same resources stay busy.
	plain, err := svc.AvailableRooms(context.Background(), availabilityQuery(5))
	require.NoError(t, err)
	require.Len(t, plain, 1)
	assert.Equal(t, "room-2", plain[0].ID)
}

// Availability and the conflict check must agree: a teacher reported free
// here produces no conflict when actually assigned.
func TestAvailabilityAgreesWithConflictCheck(t *testing.T) {
	slots := []models.RoutineSlot{
		existingSlot("slot-1", 3, []string{"t-1"}, strPtr("room-1")),
	}
	availability := availabilityFixture(slots)
	checker := NewConflictService(&fakeConflictRepo{slots: slots}, nil, nil)

	teachers, err := availability.AvailableTeachers(context.Background(), availabilityQuery(5))
	require.NoError(t, err)

	for _, teacher := range teachers {
		req := baseCheckRequest()
		req.TeacherIDs = []string{teacher.ID}
		result, err := checker.CheckScheduleConflicts(context.Background(), nil, req)
		require.NoError(t, err)
		assert.False(t, result.HasConflicts, "available teacher %s must not conflict", teacher.ID)
	}
}

func teacherIDs(teachers []models.Teacher) []string {
	ids := make([]string, len(teachers))
	for i, teacher := range teachers {
		ids[i] = teacher.ID
	}
	return ids
}
