package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/models"
	"github.com/campuskit/routine-api/pkg/config"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
)

type fakeSlotRepo struct {
	slots    []models.RoutineSlot
	inserted []models.RoutineSlot
	updated  []models.RoutineSlot
	locked   [][2]int
	deleted  []string
	spanDel  []string
}

func (f *fakeSlotRepo) List(_ context.Context, _ models.RoutineSlotFilter) ([]models.RoutineSlot, int, error) {
	return f.slots, len(f.slots), nil
}

func (f *fakeSlotRepo) FindByID(_ context.Context, id string) (*models.RoutineSlot, error) {
	for i := range f.slots {
		if f.slots[i].ID == id {
			return &f.slots[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSlotRepo) ListBySection(_ context.Context, programID string, semester int, section, yearID string) ([]models.RoutineSlot, error) {
	var out []models.RoutineSlot
	for _, s := range f.slots {
		if s.ProgramID == programID && s.Semester == semester && s.Section == section && s.AcademicYearID == yearID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) ListBySpan(_ context.Context, spanID string) ([]models.RoutineSlot, error) {
	var out []models.RoutineSlot
	for _, s := range f.slots {
		if s.SpanID != nil && *s.SpanID == spanID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) InTransaction(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func (f *fakeSlotRepo) LockCoordinate(_ context.Context, _ *sqlx.Tx, _ string, dayIndex, slotIndex int) error {
	f.locked = append(f.locked, [2]int{dayIndex, slotIndex})
	return nil
}

func (f *fakeSlotRepo) InsertBatch(_ context.Context, _ sqlx.ExtContext, slots []models.RoutineSlot) error {
	f.inserted = append(f.inserted, slots...)
	return nil
}

func (f *fakeSlotRepo) Update(_ context.Context, _ sqlx.ExtContext, slot *models.RoutineSlot) error {
	f.updated = append(f.updated, *slot)
	return nil
}

func (f *fakeSlotRepo) SoftDelete(_ context.Context, id string, _ *string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSlotRepo) SoftDeleteBySpan(_ context.Context, spanID string, _ *string) (int64, error) {
	f.spanDel = append(f.spanDel, spanID)
	var n int64
	for _, s := range f.slots {
		if s.SpanID != nil && *s.SpanID == spanID {
			n++
		}
	}
	return n, nil
}

type fakeSubjects struct{}

func (fakeSubjects) FindByIDs(_ context.Context, ids []string) ([]models.Subject, error) {
	out := make([]models.Subject, len(ids))
	for i, id := range ids {
		out[i] = models.Subject{ID: id, Name: "Subject " + id}
	}
	return out, nil
}

type fakeTeachers struct{}

func (fakeTeachers) FindByIDs(_ context.Context, ids []string) ([]models.Teacher, error) {
	out := make([]models.Teacher, len(ids))
	for i, id := range ids {
		out[i] = models.Teacher{ID: id, FullName: "Teacher " + id, Active: true}
	}
	return out, nil
}

type fakeRooms struct{}

func (fakeRooms) FindByID(_ context.Context, id string) (*models.Room, error) {
	return &models.Room{ID: id, Name: "Room " + id, Active: true}, nil
}

type fakeYears struct {
	status models.AcademicYearStatus
}

func (f fakeYears) FindByID(_ context.Context, id string) (*models.AcademicYear, error) {
	status := f.status
	if status == "" {
		status = models.AcademicYearStatusActive
	}
	return &models.AcademicYear{ID: id, Status: status}, nil
}

type stubChecker struct {
	result   *dto.ConflictCheckResult
	requests []dto.ConflictCheckRequest
	sweep    []models.ConflictGroup
}

func (s *stubChecker) CheckScheduleConflicts(_ context.Context, _ sqlx.ExtContext, req dto.ConflictCheckRequest) (*dto.ConflictCheckResult, error) {
	s.requests = append(s.requests, req)
	if s.result != nil {
		return s.result, nil
	}
	return &dto.ConflictCheckResult{}, nil
}

func (s *stubChecker) SectionSweep(_ context.Context, _ string, _ int, _, _ string) ([]models.ConflictGroup, error) {
	return s.sweep, nil
}

func testRoutineConfig() config.RoutineConfig {
	return config.RoutineConfig{DaysPerWeek: 6, SlotsPerDay: 9, WeeksPerSession: 16}
}

func newRoutineFixture(repo *fakeSlotRepo, checker *stubChecker) *RoutineService {
	cache := NewCacheService(nil, false, 0, nil, nil)
	return NewRoutineService(repo, fakeSubjects{}, fakeTeachers{}, fakeRooms{}, fakeYears{}, checker, cache, testRoutineConfig(), nil)
}

func validCreateRequest() dto.CreateRoutineSlotRequest {
	return dto.CreateRoutineSlotRequest{
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
	}
}

func TestCreateSingleSlot(t *testing.T) {
	repo := &fakeSlotRepo{}
	checker := &stubChecker{}
	svc := newRoutineFixture(repo, checker)

	slots, err := svc.Create(context.Background(), validCreateRequest(), strPtr("admin"))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Nil(t, slots[0].SpanID)
	assert.True(t, slots[0].SpanMaster)
	assert.Equal(t, []string{"Subject sub-1"}, []string(slots[0].SubjectNames))
	assert.Equal(t, []string{"Teacher t-1"}, []string(slots[0].TeacherNames))
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, [][2]int{{1, 3}}, repo.locked)
	require.Len(t, checker.requests, 1)
}

func TestCreateSpanInsertsContiguousRecords(t *testing.T) {
	repo := &fakeSlotRepo{}
	checker := &stubChecker{}
	svc := newRoutineFixture(repo, checker)

	req := validCreateRequest()
	req.ClassType = models.ClassTypePractical
	req.LabGroupID = strPtr("family-1")
	lab := models.LabGroupA
	req.LabGroup = &lab
	req.SpanLength = 3

	slots, err := svc.Create(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	spanID := slots[0].SpanID
	require.NotNil(t, spanID)
	masters := 0
	for i, slot := range slots {
		assert.Equal(t, req.SlotIndex+i, slot.SlotIndex)
		require.NotNil(t, slot.SpanID)
		assert.Equal(t, *spanID, *slot.SpanID)
		if slot.SpanMaster {
			masters++
		}
	}
	assert.Equal(t, 1, masters)
	assert.Len(t, checker.requests, 3, "every span coordinate is checked")
	assert.Len(t, repo.locked, 3)
}

func TestCreateConflictAbortsInsert(t *testing.T) {
	repo := &fakeSlotRepo{}
	checker := &stubChecker{result: &dto.ConflictCheckResult{
		HasConflicts:     true,
		TeacherConflicts: []models.RoutineConflict{{SlotID: "slot-9"}},
	}}
	svc := newRoutineFixture(repo, checker)

	_, err := svc.Create(context.Background(), validCreateRequest(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.inserted, "nothing is written when any coordinate conflicts")
}

func TestCreateBreakSkipsConflictCheck(t *testing.T) {
	repo := &fakeSlotRepo{}
	checker := &stubChecker{}
	svc := newRoutineFixture(repo, checker)

	req := validCreateRequest()
	req.ClassType = models.ClassTypeBreak
	req.ClassCategory = models.CategoryCommon
	req.SubjectIDs = nil
	req.TeacherIDs = nil

	slots, err := svc.Create(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Empty(t, checker.requests)
}

func TestCreateValidationRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*dto.CreateRoutineSlotRequest)
		message string
	}{
		{
			name: "elective arity mismatch",
			mutate: func(r *dto.CreateRoutineSlotRequest) {
				r.ClassCategory = models.CategoryElective
				r.SubjectIDs = []string{"sub-1", "sub-2"}
				r.TeacherIDs = []string{"t-1"}
			},
			message: "pair each subject",
		},
		{
			name: "elective duplicate subject",
			mutate: func(r *dto.CreateRoutineSlotRequest) {
				r.ClassCategory = models.CategoryElective
				r.SubjectIDs = []string{"sub-1", "sub-1"}
				r.TeacherIDs = []string{"t-1", "t-2"}
			},
			message: "repeat a subject",
		},
		{
			name: "non-elective with two subjects",
			mutate: func(r *dto.CreateRoutineSlotRequest) {
				r.SubjectIDs = []string{"sub-1", "sub-2"}
				r.TeacherIDs = []string{"t-1", "t-2"}
			},
			message: "exactly one subject",
		},
		{
			name: "break with teachers",
			mutate: func(r *dto.CreateRoutineSlotRequest) {
				r.ClassType = models.ClassTypeBreak
			},
			message: "no subjects",
		},
		{
			name: "lab group on lecture",
			mutate: func(r *dto.CreateRoutineSlotRequest) {
				r.LabGroupID = strPtr("family-1")
				lab := models.LabGroupA
				r.LabGroup = &lab
			},
			message: "practical",
		},
		{
			name: "alternate without pattern",
			mutate: func(r *dto.CreateRoutineSlotRequest) {
				r.Recurrence.Type = models.RecurrenceAlternate
			},
			message: "ODD or EVEN",
		},
		{
			name: "custom without weeks",
			mutate: func(r *dto.CreateRoutineSlotRequest) {
				r.Recurrence.Type = models.RecurrenceCustom
			},
			message: "at least one week",
		},
		{
			name: "custom week out of range",
			mutate: func(r *dto.CreateRoutineSlotRequest) {
				r.Recurrence.Type = models.RecurrenceCustom
				r.Recurrence.CustomWeeks = []int{1, 40}
			},
			message: "within",
		},
		{
			name: "span past end of day",
			mutate: func(r *dto.CreateRoutineSlotRequest) {
				r.SlotIndex = 7
				r.SpanLength = 3
			},
			message: "past the end",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeSlotRepo{}
			svc := newRoutineFixture(repo, &stubChecker{})
			req := validCreateRequest()
			tc.mutate(&req)

			_, err := svc.Create(context.Background(), req, nil)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
			assert.Contains(t, err.Error(), tc.message)
			assert.Empty(t, repo.inserted)
		})
	}
}

func TestCreateRejectsArchivedYear(t *testing.T) {
	repo := &fakeSlotRepo{}
	cache := NewCacheService(nil, false, 0, nil, nil)
	svc := NewRoutineService(repo, fakeSubjects{}, fakeTeachers{}, fakeRooms{},
		fakeYears{status: models.AcademicYearStatusArchived}, &stubChecker{}, cache, testRoutineConfig(), nil)

	_, err := svc.Create(context.Background(), validCreateRequest(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrArchived.Code, appErrors.FromError(err).Code)
}

func TestUpdateExcludesSelfFromCheck(t *testing.T) {
	existing := existingSlot("slot-1", 3, []string{"t-1"}, nil)
	repo := &fakeSlotRepo{slots: []models.RoutineSlot{existing}}
	checker := &stubChecker{}
	svc := newRoutineFixture(repo, checker)

	updated, err := svc.Update(context.Background(), "slot-1", dto.UpdateRoutineSlotRequest{
		SubjectIDs:    []string{"sub-2"},
		TeacherIDs:    []string{"t-1"},
		ClassType:     models.ClassTypeLecture,
		ClassCategory: models.CategoryCore,
	}, strPtr("admin"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Subject sub-2"}, []string(updated.SubjectNames))

	require.Len(t, checker.requests, 1)
	assert.Equal(t, "slot-1", checker.requests[0].ExcludeSlotID)
	assert.Equal(t, existing.DayIndex, checker.requests[0].DayIndex)
	assert.Equal(t, existing.SlotIndex, checker.requests[0].SlotIndex)
	require.Len(t, repo.updated, 1)
}

func TestDeleteSpanMemberRemovesWholeSpan(t *testing.T) {
	spanID := "span-1"
	master := existingSlot("slot-1", 3, []string{"t-1"}, nil)
	master.SpanID = &spanID
	master.SpanMaster = true
	tail := existingSlot("slot-2", 3, []string{"t-1"}, nil)
	tail.SlotIndex = 4
	tail.SpanID = &spanID
	repo := &fakeSlotRepo{slots: []models.RoutineSlot{master, tail}}
	svc := newRoutineFixture(repo, &stubChecker{})

	// Deleting the continuation record takes the master with it.
	require.NoError(t, svc.Delete(context.Background(), "slot-2", nil))
	assert.Equal(t, []string{"span-1"}, repo.spanDel)
	assert.Empty(t, repo.deleted)
}

func TestDeleteSpanMissing(t *testing.T) {
	repo := &fakeSlotRepo{}
	svc := newRoutineFixture(repo, &stubChecker{})

	_, err := svc.DeleteSpan(context.Background(), "span-x", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCopyRemapsSpansAndReportsSweep(t *testing.T) {
	spanID := "span-old"
	master := existingSlot("slot-1", 3, []string{"t-1"}, nil)
	master.SpanID = &spanID
	master.SpanMaster = true
	tail := existingSlot("slot-2", 3, []string{"t-1"}, nil)
	tail.SlotIndex = 4
	tail.SpanID = &spanID
	plain := existingSlot("slot-3", 3, []string{"t-2"}, nil)
	plain.DayIndex = 2

	repo := &fakeSlotRepo{slots: []models.RoutineSlot{master, tail, plain}}
	checker := &stubChecker{sweep: []models.ConflictGroup{{ResourceID: "t-1", Dimension: "TEACHER"}}}
	svc := newRoutineFixture(repo, checker)

	result, err := svc.Copy(context.Background(), dto.CopyRoutineRequest{
		ProgramID:    "prog-ce",
		Semester:     3,
		Section:      "A",
		SourceYearID: "year-1",
		TargetYearID: "year-2",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.CopiedCount)
	require.Len(t, result.Sweep, 1)

	require.Len(t, repo.inserted, 3)
	var newSpan *string
	for _, slot := range repo.inserted {
		assert.Equal(t, "year-2", slot.AcademicYearID)
		assert.Empty(t, slot.ID)
		if slot.SpanID != nil {
			assert.NotEqual(t, spanID, *slot.SpanID)
			if newSpan == nil {
				newSpan = slot.SpanID
			} else {
				assert.Equal(t, *newSpan, *slot.SpanID, "span members share one fresh id")
			}
		}
	}
	require.NotNil(t, newSpan)
}

func TestCopyRejectsPopulatedTarget(t *testing.T) {
	source := existingSlot("slot-1", 3, []string{"t-1"}, nil)
	target := existingSlot("slot-2", 3, []string{"t-2"}, nil)
	target.AcademicYearID = "year-2"
	repo := &fakeSlotRepo{slots: []models.RoutineSlot{source, target}}
	svc := newRoutineFixture(repo, &stubChecker{})

	_, err := svc.Copy(context.Background(), dto.CopyRoutineRequest{
		ProgramID:    "prog-ce",
		Semester:     3,
		Section:      "A",
		SourceYearID: "year-1",
		TargetYearID: "year-2",
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.inserted)
}

func TestGridFoldsSpanContinuations(t *testing.T) {
	spanID := "span-1"
	master := existingSlot("slot-1", 3, []string{"t-1"}, nil)
	master.SpanID = &spanID
	master.SpanMaster = true
	tail := existingSlot("slot-2", 3, []string{"t-1"}, nil)
	tail.SlotIndex = 4
	tail.SpanID = &spanID

	groupA := existingSlot("slot-3", 3, []string{"t-2"}, nil)
	groupA.DayIndex = 2
	groupA.ClassType = models.ClassTypePractical
	groupA.LabGroupID = strPtr("family-1")
	labA := models.LabGroupA
	groupA.LabGroup = &labA
	groupB := existingSlot("slot-4", 3, []string{"t-3"}, nil)
	groupB.DayIndex = 2
	groupB.ClassType = models.ClassTypePractical
	groupB.LabGroupID = strPtr("family-1")
	labB := models.LabGroupB
	groupB.LabGroup = &labB

	grid := buildGrid(dto.GridQuery{
		ProgramID:      "prog-ce",
		Semester:       3,
		Section:        "A",
		AcademicYearID: "year-1",
	}, []models.RoutineSlot{master, tail, groupA, groupB})

	require.Len(t, grid.Cells, 2)
	assert.Equal(t, 2, grid.Cells[0].ColSpan, "span of two periods renders one cell")
	require.Len(t, grid.Cells[0].Slots, 1)
	assert.Equal(t, "slot-1", grid.Cells[0].Slots[0].ID)

	assert.Equal(t, 1, grid.Cells[1].ColSpan)
	assert.Len(t, grid.Cells[1].Slots, 2, "lab groups stack in one cell")
}

func TestGridServesFromRepoAndSorts(t *testing.T) {
	late := existingSlot("slot-1", 3, []string{"t-1"}, nil)
	late.DayIndex = 4
	early := existingSlot("slot-2", 3, []string{"t-2"}, nil)
	early.DayIndex = 0
	repo := &fakeSlotRepo{slots: []models.RoutineSlot{late, early}}
	svc := newRoutineFixture(repo, &stubChecker{})

	grid, err := svc.Grid(context.Background(), dto.GridQuery{
		ProgramID:      "prog-ce",
		Semester:       3,
		Section:        "A",
		AcademicYearID: "year-1",
	})
	require.NoError(t, err)
	require.Len(t, grid.Cells, 2)
	assert.Equal(t, 0, grid.Cells[0].DayIndex)
	assert.Equal(t, 4, grid.Cells[1].DayIndex)
}

func TestCreateSpanLocksEveryCoordinateBeforeInsert(t *testing.T) {
	repo := &fakeSlotRepo{}
	svc := newRoutineFixture(repo, &stubChecker{})

	req := validCreateRequest()
	req.SpanLength = 2

	_, err := svc.Create(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {1, 4}}, repo.locked)
	for i, slot := range repo.inserted {
		assert.Equal(t, req.SlotIndex+i, slot.SlotIndex)
	}
}

func TestGetByIDMissingSlotIsNotFound(t *testing.T) {
	svc := newRoutineFixture(&fakeSlotRepo{}, &stubChecker{})

	_, err := svc.GetByID(context.Background(), "slot-x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

type missingYears struct{}

func (missingYears) FindByID(_ context.Context, _ string) (*models.AcademicYear, error) {
	return nil, sql.ErrNoRows
}

func TestCreateUnknownYearIsNotFound(t *testing.T) {
	cache := NewCacheService(nil, false, 0, nil, nil)
	svc := NewRoutineService(&fakeSlotRepo{}, fakeSubjects{}, fakeTeachers{}, fakeRooms{},
		missingYears{}, &stubChecker{}, cache, testRoutineConfig(), nil)

	_, err := svc.Create(context.Background(), validCreateRequest(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateSpanMemberRewritesAllRecords(t *testing.T) {
	spanID := "span-1"
	master := existingSlot("slot-1", 3, []string{"t-1"}, nil)
	master.SpanID = &spanID
	master.SpanMaster = true
	mid := existingSlot("slot-2", 3, []string{"t-1"}, nil)
	mid.SlotIndex = 4
	mid.SpanID = &spanID
	tail := existingSlot("slot-3", 3, []string{"t-1"}, nil)
	tail.SlotIndex = 5
	tail.SpanID = &spanID
	repo := &fakeSlotRepo{slots: []models.RoutineSlot{master, mid, tail}}
	checker := &stubChecker{}
	svc := newRoutineFixture(repo, checker)

	// Editing the middle record must rewrite every record of the span.
	updated, err := svc.Update(context.Background(), "slot-2", dto.UpdateRoutineSlotRequest{
		SubjectIDs:    []string{"sub-1"},
		TeacherIDs:    []string{"t-7"},
		ClassType:     models.ClassTypeLecture,
		ClassCategory: models.CategoryCore,
	}, strPtr("admin"))
	require.NoError(t, err)
	assert.Equal(t, "slot-2", updated.ID)
	assert.Equal(t, []string{"t-7"}, []string(updated.TeacherIDs))

	require.Len(t, repo.updated, 3)
	masters := 0
	indexes := make([]int, 0, 3)
	for _, rec := range repo.updated {
		assert.Equal(t, []string{"t-7"}, []string(rec.TeacherIDs))
		require.NotNil(t, rec.SpanID)
		assert.Equal(t, spanID, *rec.SpanID)
		indexes = append(indexes, rec.SlotIndex)
		if rec.SpanMaster {
			masters++
		}
	}
	assert.ElementsMatch(t, []int{3, 4, 5}, indexes)
	assert.Equal(t, 1, masters)

	require.Len(t, checker.requests, 3)
	excluded := make([]string, 0, 3)
	for _, req := range checker.requests {
		excluded = append(excluded, req.ExcludeSlotID)
	}
	assert.ElementsMatch(t, []string{"slot-1", "slot-2", "slot-3"}, excluded)
	assert.Len(t, repo.locked, 3)
}
