package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/models"
	"github.com/campuskit/routine-api/internal/service"
	"github.com/campuskit/routine-api/pkg/config"
)

// handlerSlotRepo backs both the routine and conflict services in tests.
type handlerSlotRepo struct {
	slots    []models.RoutineSlot
	inserted []models.RoutineSlot
}

func (f *handlerSlotRepo) blocking(s models.RoutineSlot, yearID string, dayIndex, slotIndex, semester int, excludeID string) bool {
	if !s.IsActive || s.IsArchived || s.AcademicYearID != yearID {
		return false
	}
	if s.DayIndex != dayIndex || s.SlotIndex != slotIndex {
		return false
	}
	if !models.SameSemesterGroup(s.Semester, semester) {
		return false
	}
	return excludeID == "" || s.ID != excludeID
}

func (f *handlerSlotRepo) FindTeacherConflicts(_ context.Context, _ sqlx.ExtContext, yearID string, dayIndex, slotIndex, semester int, teacherIDs []string, excludeID string) ([]models.RoutineSlot, error) {
	wanted := map[string]struct{}{}
	for _, id := range teacherIDs {
		wanted[id] = struct{}{}
	}
	var out []models.RoutineSlot
	for _, s := range f.slots {
		if !f.blocking(s, yearID, dayIndex, slotIndex, semester, excludeID) {
			continue
		}
		for _, id := range s.TeacherIDs {
			if _, ok := wanted[id]; ok {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (f *handlerSlotRepo) FindRoomConflicts(_ context.Context, _ sqlx.ExtContext, yearID string, dayIndex, slotIndex, semester int, roomID, excludeID string) ([]models.RoutineSlot, error) {
	var out []models.RoutineSlot
	for _, s := range f.slots {
		if f.blocking(s, yearID, dayIndex, slotIndex, semester, excludeID) && s.RoomID != nil && *s.RoomID == roomID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *handlerSlotRepo) List(_ context.Context, _ models.RoutineSlotFilter) ([]models.RoutineSlot, int, error) {
	return f.slots, len(f.slots), nil
}

func (f *handlerSlotRepo) FindByID(_ context.Context, id string) (*models.RoutineSlot, error) {
	for i := range f.slots {
		if f.slots[i].ID == id {
			return &f.slots[i], nil
		}
	}
	return nil, nil
}

func (f *handlerSlotRepo) ListBySection(_ context.Context, programID string, semester int, section, yearID string) ([]models.RoutineSlot, error) {
	var out []models.RoutineSlot
	for _, s := range f.slots {
		if s.ProgramID == programID && s.Semester == semester && s.Section == section && s.AcademicYearID == yearID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *handlerSlotRepo) ListByTeacher(_ context.Context, teacherID, yearID string) ([]models.RoutineSlot, error) {
	var out []models.RoutineSlot
	for _, s := range f.slots {
		if s.AcademicYearID != yearID {
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

func (f *handlerSlotRepo) ListBySpan(_ context.Context, spanID string) ([]models.RoutineSlot, error) {
	var out []models.RoutineSlot
	for _, s := range f.slots {
		if s.SpanID != nil && *s.SpanID == spanID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *handlerSlotRepo) InTransaction(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func (f *handlerSlotRepo) LockCoordinate(_ context.Context, _ *sqlx.Tx, _ string, _, _ int) error {
	return nil
}

func (f *handlerSlotRepo) InsertBatch(_ context.Context, _ sqlx.ExtContext, slots []models.RoutineSlot) error {
	f.inserted = append(f.inserted, slots...)
	return nil
}

func (f *handlerSlotRepo) Update(_ context.Context, _ sqlx.ExtContext, _ *models.RoutineSlot) error {
	return nil
}

func (f *handlerSlotRepo) SoftDelete(_ context.Context, _ string, _ *string) error { return nil }

func (f *handlerSlotRepo) SoftDeleteBySpan(_ context.Context, _ string, _ *string) (int64, error) {
	return 0, nil
}

type handlerSubjects struct{}

func (handlerSubjects) FindByIDs(_ context.Context, ids []string) ([]models.Subject, error) {
	out := make([]models.Subject, len(ids))
	for i, id := range ids {
		out[i] = models.Subject{ID: id, Name: "Subject " + id}
	}
	return out, nil
}

type handlerTeachers struct{}

func (handlerTeachers) FindByIDs(_ context.Context, ids []string) ([]models.Teacher, error) {
	out := make([]models.Teacher, len(ids))
	for i, id := range ids {
		out[i] = models.Teacher{ID: id, FullName: "Teacher " + id, Active: true}
	}
	return out, nil
}

type handlerRooms struct{}

func (handlerRooms) FindByID(_ context.Context, id string) (*models.Room, error) {
	return &models.Room{ID: id, Name: "Room " + id, Active: true}, nil
}

type handlerYears struct{}

func (handlerYears) FindByID(_ context.Context, id string) (*models.AcademicYear, error) {
	return &models.AcademicYear{ID: id, Status: models.AcademicYearStatusActive}, nil
}

func newRoutineHandlerFixture(repo *handlerSlotRepo) *RoutineHandler {
	cfg := config.RoutineConfig{DaysPerWeek: 6, SlotsPerDay: 9, WeeksPerSession: 16}
	conflicts := service.NewConflictService(repo, nil, nil)
	cache := service.NewCacheService(nil, false, 0, nil, nil)
	routines := service.NewRoutineService(repo, handlerSubjects{}, handlerTeachers{}, handlerRooms{}, handlerYears{}, conflicts, cache, cfg, nil)
	return NewRoutineHandler(routines, conflicts)
}

func seedSlot() models.RoutineSlot {
	room := "room-1"
	return models.RoutineSlot{
		ID:             "slot-1",
		ProgramID:      "prog-ce",
		Semester:       3,
		Section:        "A",
		AcademicYearID: "year-1",
		DayIndex:       1,
		SlotIndex:      3,
		SubjectIDs:     []string{"sub-1"},
		TeacherIDs:     []string{"t-1"},
		RoomID:         &room,
		ClassType:      models.ClassTypeLecture,
		ClassCategory:  models.CategoryCore,
		RecurrenceType: models.RecurrenceWeekly,
		IsActive:       true,
	}
}

func postJSON(t *testing.T, handlerFn gin.HandlerFunc, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handlerFn(c)
	return rec
}

func TestRoutineHandlerCheckConflictsReportsCollision(t *testing.T) {
	handler := newRoutineHandlerFixture(&handlerSlotRepo{slots: []models.RoutineSlot{seedSlot()}})

	rec := postJSON(t, handler.CheckConflicts, "/routines/check-conflicts", dto.ConflictCheckRequest{
		AcademicYearID: "year-1",
		DayIndex:       1,
		SlotIndex:      3,
		Semester:       5,
		TeacherIDs:     []string{"t-1"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data dto.ConflictCheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.HasConflicts)
	require.Len(t, envelope.Data.TeacherConflicts, 1)
	assert.Equal(t, "slot-1", envelope.Data.TeacherConflicts[0].SlotID)
}

func TestRoutineHandlerCheckConflictsCleanAcrossParity(t *testing.T) {
	handler := newRoutineHandlerFixture(&handlerSlotRepo{slots: []models.RoutineSlot{seedSlot()}})

	rec := postJSON(t, handler.CheckConflicts, "/routines/check-conflicts", dto.ConflictCheckRequest{
		AcademicYearID: "year-1",
		DayIndex:       1,
		SlotIndex:      3,
		Semester:       4,
		TeacherIDs:     []string{"t-1"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data dto.ConflictCheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.HasConflicts)
}

func TestRoutineHandlerCreateSuccess(t *testing.T) {
	repo := &handlerSlotRepo{}
	handler := newRoutineHandlerFixture(repo)

	rec := postJSON(t, handler.Create, "/routines", dto.CreateRoutineSlotRequest{
		ProgramID:      "prog-ce",
		Semester:       3,
		Section:        "A",
		AcademicYearID: "year-1",
		DayIndex:       1,
		SlotIndex:      3,
		SubjectIDs:     []string{"sub-1"},
		TeacherIDs:     []string{"t-1"},
		ClassType:      models.ClassTypeLecture,
		ClassCategory:  models.CategoryCore,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.inserted, 1)
}

func TestRoutineHandlerCreateConflictReturns409(t *testing.T) {
	repo := &handlerSlotRepo{slots: []models.RoutineSlot{seedSlot()}}
	handler := newRoutineHandlerFixture(repo)

	rec := postJSON(t, handler.Create, "/routines", dto.CreateRoutineSlotRequest{
		ProgramID:      "prog-ce",
		Semester:       5,
		Section:        "B",
		AcademicYearID: "year-1",
		DayIndex:       1,
		SlotIndex:      3,
		SubjectIDs:     []string{"sub-2"},
		TeacherIDs:     []string{"t-1"},
		ClassType:      models.ClassTypeLecture,
		ClassCategory:  models.CategoryCore,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, repo.inserted)

	var envelope struct {
		Data models.RoutineConflictError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.TeacherConflicts, 1)
	assert.Equal(t, "slot-1", envelope.Data.TeacherConflicts[0].SlotID)
}

func TestRoutineHandlerCreateInvalidPayload(t *testing.T) {
	handler := newRoutineHandlerFixture(&handlerSlotRepo{})

	rec := postJSON(t, handler.Create, "/routines", map[string]interface{}{
		"programId": "prog-ce",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutineHandlerGridRequiresSection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRoutineHandlerFixture(&handlerSlotRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/routines/grid?programId=prog-ce", nil)

	handler.Grid(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutineHandlerTeacherConflictsRequiresYear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRoutineHandlerFixture(&handlerSlotRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/teachers/t-1/conflicts", nil)
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}

	handler.TeacherConflicts(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
