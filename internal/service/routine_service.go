package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/models"
	"github.com/campuskit/routine-api/pkg/config"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
)

type routineSlotRepository interface {
	List(ctx context.Context, filter models.RoutineSlotFilter) ([]models.RoutineSlot, int, error)
	FindByID(ctx context.Context, id string) (*models.RoutineSlot, error)
	ListBySection(ctx context.Context, programID string, semester int, section, yearID string) ([]models.RoutineSlot, error)
	ListBySpan(ctx context.Context, spanID string) ([]models.RoutineSlot, error)
	InTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	LockCoordinate(ctx context.Context, tx *sqlx.Tx, yearID string, dayIndex, slotIndex int) error
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.RoutineSlot) error
	Update(ctx context.Context, exec sqlx.ExtContext, slot *models.RoutineSlot) error
	SoftDelete(ctx context.Context, id string, deletedBy *string) error
	SoftDeleteBySpan(ctx context.Context, spanID string, deletedBy *string) (int64, error)
}

type subjectFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Subject, error)
}

type teacherFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Teacher, error)
}

type roomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type yearFinder interface {
	FindByID(ctx context.Context, id string) (*models.AcademicYear, error)
}

type conflictChecker interface {
	CheckScheduleConflicts(ctx context.Context, exec sqlx.ExtContext, req dto.ConflictCheckRequest) (*dto.ConflictCheckResult, error)
	SectionSweep(ctx context.Context, programID string, semester int, section, yearID string) ([]models.ConflictGroup, error)
}

// RoutineService owns the slot write path: validation, conflict gating and
// the transactional insert under a per-coordinate advisory lock.
type RoutineService struct {
	repo      routineSlotRepository
	subjects  subjectFinder
	teachers  teacherFinder
	rooms     roomFinder
	years     yearFinder
	conflicts conflictChecker
	cache     *CacheService
	cfg       config.RoutineConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoutineService instantiates RoutineService.
func NewRoutineService(
	repo routineSlotRepository,
	subjects subjectFinder,
	teachers teacherFinder,
	rooms roomFinder,
	years yearFinder,
	conflicts conflictChecker,
	cache *CacheService,
	cfg config.RoutineConfig,
	logger *zap.Logger,
) *RoutineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoutineService{
		repo:      repo,
		subjects:  subjects,
		teachers:  teachers,
		rooms:     rooms,
		years:     years,
		conflicts: conflicts,
		cache:     cache,
		cfg:       cfg,
		validator: validator.New(),
		logger:    logger,
	}
}

// assignment is the classType-dependent part of a slot payload, shared by
// create and update validation.
type assignment struct {
	SubjectIDs    []string
	TeacherIDs    []string
	RoomID        *string
	ClassType     models.ClassType
	ClassCategory models.ClassCategory
	LabGroupID    *string
	LabGroup      *models.LabGroup
	Recurrence    dto.RecurrenceRequest
}

func (s *RoutineService) validateAssignment(a assignment) error {
	if a.ClassType == models.ClassTypeBreak {
		if len(a.SubjectIDs) > 0 || len(a.TeacherIDs) > 0 || a.RoomID != nil {
			return appErrors.Clone(appErrors.ErrValidation, "break slots carry no subjects, teachers or room")
		}
	} else {
		if len(a.SubjectIDs) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "at least one subject is required")
		}
		if len(a.TeacherIDs) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "at least one teacher is required")
		}
		if a.ClassCategory == models.CategoryElective {
			if len(a.SubjectIDs) != len(a.TeacherIDs) {
				return appErrors.Clone(appErrors.ErrValidation, "elective slots pair each subject with exactly one teacher")
			}
			seen := make(map[string]struct{}, len(a.SubjectIDs))
			for _, id := range a.SubjectIDs {
				if _, dup := seen[id]; dup {
					return appErrors.Clone(appErrors.ErrValidation, "elective slots must not repeat a subject")
				}
				seen[id] = struct{}{}
			}
		} else if len(a.SubjectIDs) != 1 {
			return appErrors.Clone(appErrors.ErrValidation, "non-elective slots carry exactly one subject")
		}
	}

	if (a.LabGroupID != nil || a.LabGroup != nil) && a.ClassType != models.ClassTypePractical {
		return appErrors.Clone(appErrors.ErrValidation, "lab groups apply only to practical slots")
	}
	if (a.LabGroupID == nil) != (a.LabGroup == nil) {
		return appErrors.Clone(appErrors.ErrValidation, "labGroupId and labGroup must be set together")
	}

	return s.validateRecurrence(a.Recurrence)
}

func (s *RoutineService) validateRecurrence(rec dto.RecurrenceRequest) error {
	switch rec.Type {
	case "", models.RecurrenceWeekly:
		if rec.Pattern != nil || len(rec.CustomWeeks) > 0 {
			return appErrors.Clone(appErrors.ErrValidation, "weekly recurrence carries no pattern or week list")
		}
	case models.RecurrenceAlternate:
		if rec.Pattern == nil {
			return appErrors.Clone(appErrors.ErrValidation, "alternate recurrence requires an ODD or EVEN pattern")
		}
		if len(rec.CustomWeeks) > 0 {
			return appErrors.Clone(appErrors.ErrValidation, "alternate recurrence carries no week list")
		}
	case models.RecurrenceCustom:
		if len(rec.CustomWeeks) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "custom recurrence requires at least one week")
		}
		for _, w := range rec.CustomWeeks {
			if w < 1 || w > s.cfg.WeeksPerSession {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("custom weeks must fall within 1..%d", s.cfg.WeeksPerSession))
			}
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown recurrence type")
	}
	return nil
}

// checkYearWritable rejects writes targeting an archived session.
func (s *RoutineService) checkYearWritable(ctx context.Context, yearID string) error {
	year, err := s.years.FindByID(ctx, yearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	if year == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
	}
	if year.Status == models.AcademicYearStatusArchived {
		return appErrors.Clone(appErrors.ErrArchived, "academic year is archived and read-only")
	}
	return nil
}

// resolveDisplay snapshots subject, teacher and room names onto the slot.
// Breaks skip the lookup entirely.
func (s *RoutineService) resolveDisplay(ctx context.Context, a assignment, slot *models.RoutineSlot) error {
	if a.ClassType == models.ClassTypeBreak {
		return nil
	}

	subjects, err := s.subjects.FindByIDs(ctx, a.SubjectIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	if len(subjects) != len(a.SubjectIDs) {
		return appErrors.Clone(appErrors.ErrNotFound, "one or more subjects not found")
	}
	teachers, err := s.teachers.FindByIDs(ctx, a.TeacherIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	if len(teachers) != len(a.TeacherIDs) {
		return appErrors.Clone(appErrors.ErrNotFound, "one or more teachers not found")
	}

	slot.SubjectNames = make([]string, len(subjects))
	for i, subject := range subjects {
		slot.SubjectNames[i] = subject.Name
	}
	slot.TeacherNames = make([]string, len(teachers))
	for i, teacher := range teachers {
		slot.TeacherNames[i] = teacher.FullName
	}

	if a.RoomID != nil && *a.RoomID != "" {
		room, err := s.rooms.FindByID(ctx, *a.RoomID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "room not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
		}
		if room == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		slot.RoomName = &room.Name
	}
	return nil
}

// List returns slots matching the filter plus the total count.
func (s *RoutineService) List(ctx context.Context, filter models.RoutineSlotFilter) ([]models.RoutineSlot, int, error) {
	slots, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list routine slots")
	}
	return slots, total, nil
}

// GetByID returns one slot.
func (s *RoutineService) GetByID(ctx context.Context, id string) (*models.RoutineSlot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "routine slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routine slot")
	}
	if slot == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "routine slot not found")
	}
	return slot, nil
}

// Create places a class on the grid. SpanLength > 1 produces that many
// contiguous records sharing a span id, written atomically. Every target
// coordinate is conflict-checked inside the same advisory-locked
// transaction that inserts, so a concurrent writer cannot slip between the
// check and the write.
func (s *RoutineService) Create(ctx context.Context, req dto.CreateRoutineSlotRequest, actor *string) ([]models.RoutineSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid routine slot payload")
	}

	a := assignment{
		SubjectIDs:    req.SubjectIDs,
		TeacherIDs:    req.TeacherIDs,
		RoomID:        req.RoomID,
		ClassType:     req.ClassType,
		ClassCategory: req.ClassCategory,
		LabGroupID:    req.LabGroupID,
		LabGroup:      req.LabGroup,
		Recurrence:    req.Recurrence,
	}
	if err := s.validateAssignment(a); err != nil {
		return nil, err
	}

	spanLength := req.SpanLength
	if spanLength == 0 {
		spanLength = 1
	}
	if req.DayIndex >= s.cfg.DaysPerWeek {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("dayIndex must fall within 0..%d", s.cfg.DaysPerWeek-1))
	}
	if req.SlotIndex+spanLength > s.cfg.SlotsPerDay {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot span runs past the end of the day")
	}

	if err := s.checkYearWritable(ctx, req.AcademicYearID); err != nil {
		return nil, err
	}

	recurrenceType := req.Recurrence.Type
	if recurrenceType == "" {
		recurrenceType = models.RecurrenceWeekly
	}

	template := models.RoutineSlot{
		ProgramID:         req.ProgramID,
		Semester:          req.Semester,
		Section:           req.Section,
		AcademicYearID:    req.AcademicYearID,
		DayIndex:          req.DayIndex,
		SubjectIDs:        req.SubjectIDs,
		TeacherIDs:        req.TeacherIDs,
		RoomID:            req.RoomID,
		ClassType:         req.ClassType,
		ClassCategory:     req.ClassCategory,
		LabGroupID:        req.LabGroupID,
		LabGroup:          req.LabGroup,
		RecurrenceType:    recurrenceType,
		RecurrencePattern: req.Recurrence.Pattern,
		IsActive:          true,
		CreatedBy:         actor,
		UpdatedBy:         actor,
	}
	for _, w := range req.Recurrence.CustomWeeks {
		template.CustomWeeks = append(template.CustomWeeks, int64(w))
	}
	if err := s.resolveDisplay(ctx, a, &template); err != nil {
		return nil, err
	}

	slots := make([]models.RoutineSlot, spanLength)
	var spanID *string
	if spanLength > 1 {
		id := uuid.NewString()
		spanID = &id
	}
	for i := 0; i < spanLength; i++ {
		slot := template
		slot.SlotIndex = req.SlotIndex + i
		slot.SpanID = spanID
		slot.SpanMaster = i == 0
		slots[i] = slot
	}

	err := s.repo.InTransaction(ctx, func(tx *sqlx.Tx) error {
		for i := range slots {
			if err := s.repo.LockCoordinate(ctx, tx, req.AcademicYearID, slots[i].DayIndex, slots[i].SlotIndex); err != nil {
				return err
			}
			if req.ClassType == models.ClassTypeBreak {
				continue
			}
			result, err := s.conflicts.CheckScheduleConflicts(ctx, tx, dto.ConflictCheckRequest{
				AcademicYearID: req.AcademicYearID,
				DayIndex:       slots[i].DayIndex,
				SlotIndex:      slots[i].SlotIndex,
				Semester:       req.Semester,
				TeacherIDs:     req.TeacherIDs,
				RoomID:         req.RoomID,
				LabGroupID:     req.LabGroupID,
			})
			if err != nil {
				return err
			}
			if err := ConflictsToError(result); err != nil {
				return err
			}
		}
		return s.repo.InsertBatch(ctx, tx, slots)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateSection(ctx, req.AcademicYearID, req.ProgramID, req.Semester, req.Section)
	s.logger.Info("routine slot created",
		zap.String("program_id", req.ProgramID),
		zap.Int("semester", req.Semester),
		zap.String("section", req.Section),
		zap.Int("day_index", req.DayIndex),
		zap.Int("slot_index", req.SlotIndex),
		zap.Int("span_length", spanLength))
	return slots, nil
}

// Update reassigns a slot in place. The coordinate is fixed; the existing
// record excludes itself from the conflict check so an unchanged teacher or
// room does not block its own edit.
func (s *RoutineService) Update(ctx context.Context, id string, req dto.UpdateRoutineSlotRequest, actor *string) (*models.RoutineSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid routine slot payload")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.IsArchived {
		return nil, appErrors.Clone(appErrors.ErrArchived, "archived slots are read-only")
	}
	if err := s.checkYearWritable(ctx, existing.AcademicYearID); err != nil {
		return nil, err
	}

	a := assignment{
		SubjectIDs:    req.SubjectIDs,
		TeacherIDs:    req.TeacherIDs,
		RoomID:        req.RoomID,
		ClassType:     req.ClassType,
		ClassCategory: req.ClassCategory,
		LabGroupID:    req.LabGroupID,
		LabGroup:      req.LabGroup,
		Recurrence:    req.Recurrence,
	}
	if err := s.validateAssignment(a); err != nil {
		return nil, err
	}

	updated := *existing
	updated.SubjectIDs = req.SubjectIDs
	updated.TeacherIDs = req.TeacherIDs
	updated.RoomID = req.RoomID
	updated.ClassType = req.ClassType
	updated.ClassCategory = req.ClassCategory
	updated.LabGroupID = req.LabGroupID
	updated.LabGroup = req.LabGroup
	updated.RecurrenceType = req.Recurrence.Type
	if updated.RecurrenceType == "" {
		updated.RecurrenceType = models.RecurrenceWeekly
	}
	updated.RecurrencePattern = req.Recurrence.Pattern
	updated.CustomWeeks = nil
	for _, w := range req.Recurrence.CustomWeeks {
		updated.CustomWeeks = append(updated.CustomWeeks, int64(w))
	}
	updated.SubjectNames = nil
	updated.TeacherNames = nil
	updated.RoomName = nil
	updated.UpdatedBy = actor
	if err := s.resolveDisplay(ctx, a, &updated); err != nil {
		return nil, err
	}

	// Editing any record of a span rewrites every member, so continuation
	// rows never drift from the master's assignment.
	targets := []models.RoutineSlot{updated}
	if existing.SpanID != nil {
		members, err := s.repo.ListBySpan(ctx, *existing.SpanID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load span records")
		}
		targets = targets[:0]
		for _, member := range members {
			rewritten := member
			applyAssignment(&rewritten, &updated)
			targets = append(targets, rewritten)
		}
	}

	err = s.repo.InTransaction(ctx, func(tx *sqlx.Tx) error {
		for i := range targets {
			target := &targets[i]
			if err := s.repo.LockCoordinate(ctx, tx, target.AcademicYearID, target.DayIndex, target.SlotIndex); err != nil {
				return err
			}
			if req.ClassType == models.ClassTypeBreak {
				continue
			}
			result, err := s.conflicts.CheckScheduleConflicts(ctx, tx, dto.ConflictCheckRequest{
				AcademicYearID: target.AcademicYearID,
				DayIndex:       target.DayIndex,
				SlotIndex:      target.SlotIndex,
				Semester:       target.Semester,
				TeacherIDs:     req.TeacherIDs,
				RoomID:         req.RoomID,
				LabGroupID:     req.LabGroupID,
				ExcludeSlotID:  target.ID,
			})
			if err != nil {
				return err
			}
			if err := ConflictsToError(result); err != nil {
				return err
			}
		}
		for i := range targets {
			if err := s.repo.Update(ctx, tx, &targets[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateSection(ctx, existing.AcademicYearID, existing.ProgramID, existing.Semester, existing.Section)
	s.logger.Info("routine slot updated", zap.String("slot_id", id), zap.Int("records", len(targets)))
	for i := range targets {
		if targets[i].ID == existing.ID {
			return &targets[i], nil
		}
	}
	return &updated, nil
}

// applyAssignment copies the mutable assignment content and display cache
// from src onto dst, preserving dst's identity, coordinate and span fields.
func applyAssignment(dst, src *models.RoutineSlot) {
	dst.SubjectIDs = src.SubjectIDs
	dst.TeacherIDs = src.TeacherIDs
	dst.RoomID = src.RoomID
	dst.ClassType = src.ClassType
	dst.ClassCategory = src.ClassCategory
	dst.LabGroupID = src.LabGroupID
	dst.LabGroup = src.LabGroup
	dst.RecurrenceType = src.RecurrenceType
	dst.RecurrencePattern = src.RecurrencePattern
	dst.CustomWeeks = src.CustomWeeks
	dst.SubjectNames = src.SubjectNames
	dst.TeacherNames = src.TeacherNames
	dst.RoomName = src.RoomName
	dst.UpdatedBy = src.UpdatedBy
}

// Delete soft-deletes a slot. A member of a multi-period span takes its
// whole span with it; partial spans never survive.
func (s *RoutineService) Delete(ctx context.Context, id string, actor *string) error {
	slot, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkYearWritable(ctx, slot.AcademicYearID); err != nil {
		return err
	}

	if slot.SpanID != nil {
		if _, err := s.repo.SoftDeleteBySpan(ctx, *slot.SpanID, actor); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot span")
		}
	} else if err := s.repo.SoftDelete(ctx, id, actor); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete routine slot")
	}

	s.cache.InvalidateSection(ctx, slot.AcademicYearID, slot.ProgramID, slot.Semester, slot.Section)
	s.logger.Info("routine slot deleted", zap.String("slot_id", id))
	return nil
}

// DeleteSpan removes every record of a multi-period span at once.
func (s *RoutineService) DeleteSpan(ctx context.Context, spanID string, actor *string) (int64, error) {
	members, err := s.repo.ListBySpan(ctx, spanID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load span")
	}
	if len(members) == 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "span not found")
	}
	if err := s.checkYearWritable(ctx, members[0].AcademicYearID); err != nil {
		return 0, err
	}

	removed, err := s.repo.SoftDeleteBySpan(ctx, spanID, actor)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete span")
	}
	s.cache.InvalidateSection(ctx, members[0].AcademicYearID, members[0].ProgramID, members[0].Semester, members[0].Section)
	return removed, nil
}

// Copy clones a section's active slots from one session into another. The
// copy itself runs without incremental conflict checks; the advisory sweep
// returned alongside the count reports what needs manual attention.
func (s *RoutineService) Copy(ctx context.Context, req dto.CopyRoutineRequest, actor *string) (*dto.CopyRoutineResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid copy payload")
	}
	if err := s.checkYearWritable(ctx, req.TargetYearID); err != nil {
		return nil, err
	}

	source, err := s.repo.ListBySection(ctx, req.ProgramID, req.Semester, req.Section, req.SourceYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load source routine")
	}
	if len(source) == 0 {
		return &dto.CopyRoutineResult{CopiedCount: 0}, nil
	}

	existing, err := s.repo.ListBySection(ctx, req.ProgramID, req.Semester, req.Section, req.TargetYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect target routine")
	}
	if len(existing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "target section already has routine slots")
	}

	spanIDs := make(map[string]string)
	copies := make([]models.RoutineSlot, len(source))
	for i, slot := range source {
		clone := slot
		clone.ID = ""
		clone.AcademicYearID = req.TargetYearID
		clone.Version = 0
		clone.IsArchived = false
		clone.CreatedBy = actor
		clone.UpdatedBy = actor
		if slot.SpanID != nil {
			fresh, ok := spanIDs[*slot.SpanID]
			if !ok {
				fresh = uuid.NewString()
				spanIDs[*slot.SpanID] = fresh
			}
			clone.SpanID = &fresh
		}
		copies[i] = clone
	}

	err = s.repo.InTransaction(ctx, func(tx *sqlx.Tx) error {
		return s.repo.InsertBatch(ctx, tx, copies)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to copy routine")
	}

	sweep, err := s.conflicts.SectionSweep(ctx, req.ProgramID, req.Semester, req.Section, req.TargetYearID)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateSection(ctx, req.TargetYearID, req.ProgramID, req.Semester, req.Section)
	s.logger.Info("routine copied",
		zap.String("source_year", req.SourceYearID),
		zap.String("target_year", req.TargetYearID),
		zap.Int("copied", len(copies)))
	return &dto.CopyRoutineResult{CopiedCount: len(copies), Sweep: sweep}, nil
}

// Grid renders the weekly grid for one section, folding span continuation
// records into their master's colspan. Served from cache when possible.
func (s *RoutineService) Grid(ctx context.Context, q dto.GridQuery) (*dto.SectionGrid, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grid query")
	}

	if cached, err := s.cache.GetGrid(ctx, q); err == nil {
		return cached, nil
	}

	slots, err := s.repo.ListBySection(ctx, q.ProgramID, q.Semester, q.Section, q.AcademicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section routine")
	}

	grid := buildGrid(q, slots)
	s.cache.SetGrid(ctx, q, grid)
	return grid, nil
}

func buildGrid(q dto.GridQuery, slots []models.RoutineSlot) *dto.SectionGrid {
	spanSizes := make(map[string]int)
	for _, slot := range slots {
		if slot.SpanID != nil {
			spanSizes[*slot.SpanID]++
		}
	}

	type coord struct{ day, slot int }
	cells := make(map[coord]*dto.GridCell)
	for _, slot := range slots {
		// Continuations render as part of the master cell.
		if slot.SpanID != nil && !slot.SpanMaster {
			continue
		}
		key := coord{slot.DayIndex, slot.SlotIndex}
		cell, ok := cells[key]
		if !ok {
			cell = &dto.GridCell{DayIndex: slot.DayIndex, SlotIndex: slot.SlotIndex, ColSpan: 1}
			cells[key] = cell
		}
		if slot.SpanID != nil {
			if size := spanSizes[*slot.SpanID]; size > cell.ColSpan {
				cell.ColSpan = size
			}
		}
		cell.Slots = append(cell.Slots, slot)
	}

	grid := &dto.SectionGrid{
		ProgramID:      q.ProgramID,
		Semester:       q.Semester,
		Section:        q.Section,
		AcademicYearID: q.AcademicYearID,
		Cells:          make([]dto.GridCell, 0, len(cells)),
	}
	for _, cell := range cells {
		grid.Cells = append(grid.Cells, *cell)
	}
	sort.Slice(grid.Cells, func(i, j int) bool {
		if grid.Cells[i].DayIndex != grid.Cells[j].DayIndex {
			return grid.Cells[i].DayIndex < grid.Cells[j].DayIndex
		}
		return grid.Cells[i].SlotIndex < grid.Cells[j].SlotIndex
	})
	return grid
}
