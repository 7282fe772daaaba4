package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campuskit/routine-api/internal/models"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
)

type programLister interface {
	ListAll(ctx context.Context) ([]models.Program, error)
}

type teacherPageLister interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
}

type roomPageLister interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
}

type subjectLister interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
}

// CatalogService serves the reference data the routine editor picks from.
type CatalogService struct {
	programs programLister
	teachers teacherPageLister
	rooms    roomPageLister
	subjects subjectLister
	logger   *zap.Logger
}

// NewCatalogService instantiates CatalogService.
func NewCatalogService(programs programLister, teachers teacherPageLister, rooms roomPageLister, subjects subjectLister, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{programs: programs, teachers: teachers, rooms: rooms, subjects: subjects, logger: logger}
}

// Programs returns every degree program with its sections.
func (s *CatalogService) Programs(ctx context.Context) ([]models.Program, error) {
	programs, err := s.programs.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}

// Teachers returns a filtered teacher page.
func (s *CatalogService) Teachers(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	teachers, total, err := s.teachers.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, total, nil
}

// Rooms returns a filtered room page.
func (s *CatalogService) Rooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	rooms, total, err := s.rooms.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, total, nil
}

// Subjects returns every subject ordered by code.
func (s *CatalogService) Subjects(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.subjects.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}
