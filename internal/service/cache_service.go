package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campuskit/routine-api/internal/dto"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
)

type cacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService caches rendered section grids. Cache failures degrade to the
// database path and are logged, never surfaced.
type CacheService struct {
	repo    cacheRepository
	enabled bool
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCacheService instantiates CacheService. A nil repo disables caching;
// metrics may be nil.
func NewCacheService(repo cacheRepository, enabled bool, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if repo == nil {
		enabled = false
	}
	return &CacheService{repo: repo, enabled: enabled, ttl: ttl, metrics: metrics, logger: logger}
}

func gridKey(q dto.GridQuery) string {
	return fmt.Sprintf("routine:grid:%s:%s:%d:%s", q.AcademicYearID, q.ProgramID, q.Semester, q.Section)
}

// GetGrid returns the cached grid for a section, or ErrCacheMiss.
func (s *CacheService) GetGrid(ctx context.Context, q dto.GridQuery) (*dto.SectionGrid, error) {
	if !s.enabled {
		return nil, appErrors.ErrCacheMiss
	}
	var grid dto.SectionGrid
	if err := s.repo.Get(ctx, gridKey(q), &grid); err != nil {
		s.metrics.RecordCacheLookup(false)
		return nil, err
	}
	s.metrics.RecordCacheLookup(true)
	return &grid, nil
}

// SetGrid stores a rendered grid under the section key.
func (s *CacheService) SetGrid(ctx context.Context, q dto.GridQuery, grid *dto.SectionGrid) {
	if !s.enabled || grid == nil {
		return
	}
	if err := s.repo.Set(ctx, gridKey(q), grid, s.ttl); err != nil {
		s.logger.Warn("grid cache write failed", zap.String("key", gridKey(q)), zap.Error(err))
	}
}

// InvalidateSection drops the cached grid for one section.
func (s *CacheService) InvalidateSection(ctx context.Context, yearID, programID string, semester int, section string) {
	if !s.enabled {
		return
	}
	pattern := fmt.Sprintf("routine:grid:%s:%s:%d:%s", yearID, programID, semester, section)
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("grid cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// InvalidateYear drops every cached grid of an academic year. Used by bulk
// copy and archival where touched sections are not enumerated up front.
func (s *CacheService) InvalidateYear(ctx context.Context, yearID string) {
	if !s.enabled {
		return
	}
	pattern := fmt.Sprintf("routine:grid:%s:*", yearID)
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("grid cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
