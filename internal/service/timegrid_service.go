package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/models"
	"github.com/campuskit/routine-api/pkg/config"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
)

type timeGridRepository interface {
	ListPeriods(ctx context.Context) ([]models.TimeGridPeriod, error)
	ReplacePeriods(ctx context.Context, periods []models.TimeGridPeriod) error
}

// TimeGridService maintains the slotIndex to wall-clock mapping. The grid
// is display metadata only; conflict detection stays index based.
type TimeGridService struct {
	repo      timeGridRepository
	cfg       config.RoutineConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeGridService instantiates TimeGridService.
func NewTimeGridService(repo timeGridRepository, cfg config.RoutineConfig, logger *zap.Logger) *TimeGridService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeGridService{repo: repo, cfg: cfg, validator: validator.New(), logger: logger}
}

// ListPeriods returns the daily grid ordered by slot index.
func (s *TimeGridService) ListPeriods(ctx context.Context) ([]models.TimeGridPeriod, error) {
	periods, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time grid")
	}
	return periods, nil
}

// Replace swaps the whole grid. Slot indexes must be dense from zero and
// stay within the configured day length; times are HH:MM strings.
func (s *TimeGridService) Replace(ctx context.Context, req dto.ReplaceTimeGridRequest) ([]models.TimeGridPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time grid payload")
	}
	if len(req.Periods) > s.cfg.SlotsPerDay {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time grid exceeds the configured slots per day")
	}

	seen := make(map[int]struct{}, len(req.Periods))
	for _, p := range req.Periods {
		if p.SlotIndex >= s.cfg.SlotsPerDay {
			return nil, appErrors.Clone(appErrors.ErrValidation, "slot index outside the configured day")
		}
		if _, dup := seen[p.SlotIndex]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate slot index in time grid")
		}
		seen[p.SlotIndex] = struct{}{}
		if _, err := time.Parse("15:04", p.StartTime); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "start time must be HH:MM")
		}
		if _, err := time.Parse("15:04", p.EndTime); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be HH:MM")
		}
		if p.EndTime <= p.StartTime {
			return nil, appErrors.Clone(appErrors.ErrValidation, "period must end after it starts")
		}
	}

	periods := make([]models.TimeGridPeriod, len(req.Periods))
	for i, p := range req.Periods {
		periods[i] = models.TimeGridPeriod{
			SlotIndex: p.SlotIndex,
			StartTime: p.StartTime,
			EndTime:   p.EndTime,
			Label:     p.Label,
			IsBreak:   p.IsBreak,
		}
	}
	if err := s.repo.ReplacePeriods(ctx, periods); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace time grid")
	}

	s.logger.Info("time grid replaced", zap.Int("periods", len(periods)))
	return periods, nil
}
