package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/models"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
)

type academicYearRepository interface {
	ListAll(ctx context.Context) ([]models.AcademicYear, error)
	FindByID(ctx context.Context, id string) (*models.AcademicYear, error)
	FindActive(ctx context.Context) (*models.AcademicYear, error)
	Create(ctx context.Context, year *models.AcademicYear) error
	SetStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.AcademicYearStatus) error
	InTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type slotArchiver interface {
	ArchiveByYear(ctx context.Context, exec sqlx.ExtContext, yearID string) (int64, error)
}

// AcademicYearService manages session lifecycle. At most one session is
// ACTIVE; activating a new one archives the previous session and its slots
// in the same transaction.
type AcademicYearService struct {
	years     academicYearRepository
	slots     slotArchiver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicYearService instantiates AcademicYearService.
func NewAcademicYearService(years academicYearRepository, slots slotArchiver, cache *CacheService, logger *zap.Logger) *AcademicYearService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicYearService{
		years:     years,
		slots:     slots,
		cache:     cache,
		validator: validator.New(),
		logger:    logger,
	}
}

// List returns every session, newest first.
func (s *AcademicYearService) List(ctx context.Context) ([]models.AcademicYear, error) {
	years, err := s.years.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}
	return years, nil
}

// GetByID returns one session.
func (s *AcademicYearService) GetByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	year, err := s.years.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	if year == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
	}
	return year, nil
}

// Create registers a new session in DRAFT.
func (s *AcademicYearService) Create(ctx context.Context, req dto.CreateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	year := &models.AcademicYear{
		Label:     req.Label,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    models.AcademicYearStatusDraft,
	}
	if err := s.years.Create(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}
	return year, nil
}

// Activate promotes a session to ACTIVE. If another session was active it
// is archived together with its routine slots, atomically with the
// promotion, so the grid never shows two live sessions.
func (s *AcademicYearService) Activate(ctx context.Context, id string) (*models.AcademicYear, error) {
	year, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if year.Status == models.AcademicYearStatusActive {
		return year, nil
	}
	if year.Status == models.AcademicYearStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrArchived, "archived sessions cannot be reactivated")
	}

	// No active predecessor is the normal case for the first session.
	previous, err := s.years.FindActive(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active academic year")
		}
		previous = nil
	}

	err = s.years.InTransaction(ctx, func(tx *sqlx.Tx) error {
		if previous != nil {
			if err := s.years.SetStatus(ctx, tx, previous.ID, models.AcademicYearStatusArchived); err != nil {
				return err
			}
			archived, err := s.slots.ArchiveByYear(ctx, tx, previous.ID)
			if err != nil {
				return err
			}
			s.logger.Info("previous session archived",
				zap.String("year_id", previous.ID),
				zap.Int64("slots_archived", archived))
		}
		return s.years.SetStatus(ctx, tx, id, models.AcademicYearStatusActive)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate academic year")
	}

	if previous != nil {
		s.cache.InvalidateYear(ctx, previous.ID)
	}
	s.cache.InvalidateYear(ctx, id)

	year.Status = models.AcademicYearStatusActive
	s.logger.Info("academic year activated", zap.String("year_id", id))
	return year, nil
}

// Archive retires a session and freezes its routine slots.
func (s *AcademicYearService) Archive(ctx context.Context, id string) (*models.AcademicYear, error) {
	year, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if year.Status == models.AcademicYearStatusArchived {
		return year, nil
	}

	err = s.years.InTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.years.SetStatus(ctx, tx, id, models.AcademicYearStatusArchived); err != nil {
			return err
		}
		_, err := s.slots.ArchiveByYear(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive academic year")
	}

	s.cache.InvalidateYear(ctx, id)
	year.Status = models.AcademicYearStatusArchived
	s.logger.Info("academic year archived", zap.String("year_id", id))
	return year, nil
}
