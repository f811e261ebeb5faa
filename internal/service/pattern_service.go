package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aria7-op/sms-sub008/internal/models"
	appErrors "github.com/aria7-op/sms-sub008/pkg/errors"
)

type patternRepository interface {
	List(ctx context.Context, filter models.PatternFilter) ([]models.LearnedPattern, error)
	Upsert(ctx context.Context, pattern *models.LearnedPattern) error
}

type patternCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// PatternService is the read/write surface of the pattern store. Reads go
// through a Redis cache; upserts write through and invalidate.
type PatternService struct {
	repo    patternRepository
	cache   patternCache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *MetricsService
}

// NewPatternService wires the pattern store.
func NewPatternService(repo patternRepository, cache patternCache, ttl time.Duration, logger *zap.Logger, metrics *MetricsService) *PatternService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PatternService{repo: repo, cache: cache, ttl: ttl, logger: logger, metrics: metrics}
}

func patternCacheKey(filter models.PatternFilter) string {
	return fmt.Sprintf("patterns:%s:%s", filter.Type, filter.EntityID)
}

// List returns patterns matching the filter, served from cache when fresh.
func (s *PatternService) List(ctx context.Context, filter models.PatternFilter) ([]models.LearnedPattern, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown pattern type %q", filter.Type))
	}

	key := patternCacheKey(filter)
	if s.cache != nil {
		var cached []models.LearnedPattern
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.ObserveCacheHit()
			}
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("pattern cache read failed", zap.String("key", key), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.ObserveCacheMiss()
		}
	}

	patterns, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list learned patterns")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, patterns, s.ttl); err != nil {
			s.logger.Warn("pattern cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return patterns, nil
}

// Upsert replaces the stored pattern for its (type, entity) key and drops
// cached reads.
func (s *PatternService) Upsert(ctx context.Context, pattern *models.LearnedPattern) error {
	if !pattern.Type.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown pattern type %q", pattern.Type))
	}
	if pattern.EntityID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "pattern entityId is required")
	}

	if err := s.repo.Upsert(ctx, pattern); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert learned pattern")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "patterns:*"); err != nil {
			s.logger.Warn("pattern cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}
