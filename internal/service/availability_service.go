package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/models"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
)

type availabilitySlotRepository interface {
	BusyTeacherIDs(ctx context.Context, yearID string, dayIndex, slotIndex, semester int, labGroupID *string) ([]string, error)
	BusyRoomIDs(ctx context.Context, yearID string, dayIndex, slotIndex, semester int, labGroupID *string) ([]string, error)
}

type teacherLister interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type roomLister interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

// AvailabilityService answers "who is free at this coordinate". It is the
// complement of the conflict check: a resource is available exactly when
// assigning it would produce no conflict, so busy sets use the same
// parity-filtered queries the checker uses.
type AvailabilityService struct {
	slots     availabilitySlotRepository
	teachers  teacherLister
	rooms     roomLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(slots availabilitySlotRepository, teachers teacherLister, rooms roomLister, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		slots:     slots,
		teachers:  teachers,
		rooms:     rooms,
		validator: validator.New(),
		logger:    logger,
	}
}

// AvailableTeachers returns every active teacher not already booked at the
// coordinate within the requesting semester's parity cohort.
func (s *AvailabilityService) AvailableTeachers(ctx context.Context, q dto.AvailabilityQuery) ([]models.Teacher, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}

	all, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	busy, err := s.slots.BusyTeacherIDs(ctx, q.AcademicYearID, q.DayIndex, q.SlotIndex, q.Semester, q.LabGroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load busy teachers")
	}

	blocked := toSet(busy)
	for _, id := range q.Exclude {
		blocked[id] = struct{}{}
	}

	available := make([]models.Teacher, 0, len(all))
	for _, teacher := range all {
		if _, taken := blocked[teacher.ID]; taken {
			continue
		}
		available = append(available, teacher)
	}
	return available, nil
}

// AvailableRooms returns every active room unoccupied at the coordinate
// within the requesting semester's parity cohort.
func (s *AvailabilityService) AvailableRooms(ctx context.Context, q dto.AvailabilityQuery) ([]models.Room, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}

	all, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	busy, err := s.slots.BusyRoomIDs(ctx, q.AcademicYearID, q.DayIndex, q.SlotIndex, q.Semester, q.LabGroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load busy rooms")
	}

	blocked := toSet(busy)
	for _, id := range q.Exclude {
		blocked[id] = struct{}{}
	}

	available := make([]models.Room, 0, len(all))
	for _, room := range all {
		if _, taken := blocked[room.ID]; taken {
			continue
		}
		available = append(available, room)
	}
	return available, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
