package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/models"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
)

type conflictSlotRepository interface {
	FindTeacherConflicts(ctx context.Context, exec sqlx.ExtContext, yearID string, dayIndex, slotIndex, semester int, teacherIDs []string, excludeID string) ([]models.RoutineSlot, error)
	FindRoomConflicts(ctx context.Context, exec sqlx.ExtContext, yearID string, dayIndex, slotIndex, semester int, roomID, excludeID string) ([]models.RoutineSlot, error)
	ListBySection(ctx context.Context, programID string, semester int, section, yearID string) ([]models.RoutineSlot, error)
	ListByTeacher(ctx context.Context, teacherID, yearID string) ([]models.RoutineSlot, error)
}

// ConflictService answers whether a proposed assignment is legal given
// everything already scheduled. Incremental checks are semester-parity
// aware; the full-grid sweep deliberately is not.
type ConflictService struct {
	repo      conflictSlotRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConflictService instantiates ConflictService. metrics may be nil.
func NewConflictService(repo conflictSlotRepository, metrics *MetricsService, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{repo: repo, metrics: metrics, validator: validator.New(), logger: logger}
}

// CheckScheduleConflicts runs the teacher and room checks independently and
// reports both. Callers pass exec when running inside a coordinate-locked
// transaction; nil falls back to the plain connection.
func (s *ConflictService) CheckScheduleConflicts(ctx context.Context, exec sqlx.ExtContext, req dto.ConflictCheckRequest) (*dto.ConflictCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}

	result := &dto.ConflictCheckResult{TeacherConflicts: []models.RoutineConflict{}}

	teacherSlots, err := s.repo.FindTeacherConflicts(ctx, exec, req.AcademicYearID, req.DayIndex, req.SlotIndex, req.Semester, req.TeacherIDs, req.ExcludeSlotID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher conflicts")
	}
	for i := range teacherSlots {
		slot := &teacherSlots[i]
		if s.exempt(slot, req) {
			continue
		}
		overlap := intersect(req.TeacherIDs, slot.TeacherIDs)
		if len(overlap) == 0 {
			continue
		}
		result.TeacherConflicts = append(result.TeacherConflicts, toConflict(slot, "TEACHER", overlap))
	}

	if req.RoomID != nil && *req.RoomID != "" {
		roomSlots, err := s.repo.FindRoomConflicts(ctx, exec, req.AcademicYearID, req.DayIndex, req.SlotIndex, req.Semester, *req.RoomID, req.ExcludeSlotID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room conflicts")
		}
		// The reporting contract surfaces a single blocking party for a
		// room even when the query finds several.
		for i := range roomSlots {
			slot := &roomSlots[i]
			if s.exempt(slot, req) {
				continue
			}
			conflict := toConflict(slot, "ROOM", nil)
			result.RoomConflict = &conflict
			break
		}
	}

	result.HasConflicts = len(result.TeacherConflicts) > 0 || result.RoomConflict != nil
	s.metrics.RecordConflictCheck(result.HasConflicts)
	return result, nil
}

// exempt filters candidates the conflict rules exclude: members of the
// proposal's own lab-group family, and, when the caller supplied a week
// context, slots that do not apply on that week.
func (s *ConflictService) exempt(slot *models.RoutineSlot, req dto.ConflictCheckRequest) bool {
	if req.LabGroupID != nil && slot.LabGroupID != nil && *req.LabGroupID == *slot.LabGroupID {
		return true
	}
	if req.WeekNumber != nil && !slot.AppliesToWeek(*req.WeekNumber) {
		return true
	}
	return false
}

// SectionSweep scans an entire section's active slots and flags every
// (teacher, coordinate) and (room, coordinate) bucket holding more than one
// slot. The sweep ignores semester parity and recurrence on purpose: it is
// an advisory completeness check run after bulk operations, expected to
// over-report relative to the incremental checks.
func (s *ConflictService) SectionSweep(ctx context.Context, programID string, semester int, section, yearID string) ([]models.ConflictGroup, error) {
	slots, err := s.repo.ListBySection(ctx, programID, semester, section, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section slots")
	}
	return sweepGroups(slots), nil
}

// TeacherScheduleConflicts is the per-teacher diagnostic: every coordinate
// where the teacher appears in more than one active slot.
func (s *ConflictService) TeacherScheduleConflicts(ctx context.Context, teacherID, yearID string, semesterFilter *int) ([]models.ConflictGroup, error) {
	slots, err := s.repo.ListByTeacher(ctx, teacherID, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher slots")
	}

	buckets := make(map[[2]int][]models.RoutineSlot)
	for _, slot := range slots {
		if semesterFilter != nil && slot.Semester != *semesterFilter {
			continue
		}
		key := [2]int{slot.DayIndex, slot.SlotIndex}
		buckets[key] = append(buckets[key], slot)
	}

	var groups []models.ConflictGroup
	for key, members := range buckets {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, models.ConflictGroup{
			ResourceID: teacherID,
			Dimension:  "TEACHER",
			DayIndex:   key[0],
			SlotIndex:  key[1],
			Slots:      members,
		})
	}
	sortGroups(groups)
	return groups, nil
}

func sweepGroups(slots []models.RoutineSlot) []models.ConflictGroup {
	type bucketKey struct {
		resource string
		day      int
		slot     int
	}

	teacherBuckets := make(map[bucketKey][]models.RoutineSlot)
	roomBuckets := make(map[bucketKey][]models.RoutineSlot)
	for _, slot := range slots {
		for _, teacherID := range slot.TeacherIDs {
			key := bucketKey{teacherID, slot.DayIndex, slot.SlotIndex}
			teacherBuckets[key] = append(teacherBuckets[key], slot)
		}
		if slot.RoomID != nil && *slot.RoomID != "" {
			key := bucketKey{*slot.RoomID, slot.DayIndex, slot.SlotIndex}
			roomBuckets[key] = append(roomBuckets[key], slot)
		}
	}

	var groups []models.ConflictGroup
	for key, members := range teacherBuckets {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, models.ConflictGroup{ResourceID: key.resource, Dimension: "TEACHER", DayIndex: key.day, SlotIndex: key.slot, Slots: members})
	}
	for key, members := range roomBuckets {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, models.ConflictGroup{ResourceID: key.resource, Dimension: "ROOM", DayIndex: key.day, SlotIndex: key.slot, Slots: members})
	}
	sortGroups(groups)
	return groups
}

func sortGroups(groups []models.ConflictGroup) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].DayIndex != groups[j].DayIndex {
			return groups[i].DayIndex < groups[j].DayIndex
		}
		if groups[i].SlotIndex != groups[j].SlotIndex {
			return groups[i].SlotIndex < groups[j].SlotIndex
		}
		return groups[i].ResourceID < groups[j].ResourceID
	})
}

func toConflict(slot *models.RoutineSlot, dimension string, overlap []string) models.RoutineConflict {
	return models.RoutineConflict{
		SlotID:       slot.ID,
		ProgramID:    slot.ProgramID,
		Semester:     slot.Semester,
		Section:      slot.Section,
		DayIndex:     slot.DayIndex,
		SlotIndex:    slot.SlotIndex,
		TeacherIDs:   overlap,
		RoomID:       slot.RoomID,
		SubjectNames: slot.SubjectNames,
		TeacherNames: slot.TeacherNames,
		ClassType:    slot.ClassType,
		Dimension:    dimension,
	}
}

func intersect(proposed []string, existing []string) []string {
	set := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		set[id] = struct{}{}
	}
	var overlap []string
	for _, id := range proposed {
		if _, ok := set[id]; ok {
			overlap = append(overlap, id)
		}
	}
	return overlap
}

// ConflictsToError converts a non-empty check result into the domain error
// the write path surfaces.
func ConflictsToError(result *dto.ConflictCheckResult) error {
	if result == nil || !result.HasConflicts {
		return nil
	}
	domainErr := &models.RoutineConflictError{
		Message:          "proposed slot collides with the existing routine",
		TeacherConflicts: result.TeacherConflicts,
		RoomConflict:     result.RoomConflict,
	}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("schedule conflict: %s", domainErr.Message))
}
