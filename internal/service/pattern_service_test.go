package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria7-op/sms-sub008/internal/models"
	appErrors "github.com/aria7-op/sms-sub008/pkg/errors"
)

func TestPatternServiceListCacheMiss(t *testing.T) {
	repo := &patternRepoStub{items: []models.LearnedPattern{
		{Type: models.PatternTeacherPreference, EntityID: "teacher-1"},
	}}
	cache := newPatternCacheStub()
	service := NewPatternService(repo, cache, time.Minute, nil, nil)

	patterns, err := service.List(context.Background(), models.PatternFilter{Type: models.PatternTeacherPreference})
	require.NoError(t, err)
	assert.Len(t, patterns, 1)
	assert.Equal(t, 1, repo.listCalls)
	// the miss populated the cache
	assert.Len(t, cache.entries, 1)
}

func TestPatternServiceListCacheHit(t *testing.T) {
	repo := &patternRepoStub{items: []models.LearnedPattern{
		{Type: models.PatternTeacherPreference, EntityID: "teacher-1"},
	}}
	cache := newPatternCacheStub()
	service := NewPatternService(repo, cache, time.Minute, nil, nil)

	_, err := service.List(context.Background(), models.PatternFilter{Type: models.PatternTeacherPreference})
	require.NoError(t, err)

	patterns, err := service.List(context.Background(), models.PatternFilter{Type: models.PatternTeacherPreference})
	require.NoError(t, err)
	assert.Len(t, patterns, 1)
	// the second read never reached the repository
	assert.Equal(t, 1, repo.listCalls)
}

func TestPatternServiceListInvalidType(t *testing.T) {
	service := NewPatternService(&patternRepoStub{}, nil, time.Minute, nil, nil)

	_, err := service.List(context.Background(), models.PatternFilter{Type: "ROOM_PREFERENCE"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPatternServiceListWithoutCache(t *testing.T) {
	repo := &patternRepoStub{}
	service := NewPatternService(repo, nil, time.Minute, nil, nil)

	_, err := service.List(context.Background(), models.PatternFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
}

func TestPatternServiceUpsertInvalidatesCache(t *testing.T) {
	repo := &patternRepoStub{}
	cache := newPatternCacheStub()
	service := NewPatternService(repo, cache, time.Minute, nil, nil)

	_, err := service.List(context.Background(), models.PatternFilter{})
	require.NoError(t, err)
	require.Len(t, cache.entries, 1)

	err = service.Upsert(context.Background(), &models.LearnedPattern{
		Type:     models.PatternTeacherPreference,
		EntityID: "teacher-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.upsertCalls)
	assert.Empty(t, cache.entries)
}

func TestPatternServiceUpsertValidation(t *testing.T) {
	service := NewPatternService(&patternRepoStub{}, nil, time.Minute, nil, nil)

	err := service.Upsert(context.Background(), &models.LearnedPattern{Type: "BOGUS", EntityID: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = service.Upsert(context.Background(), &models.LearnedPattern{Type: models.PatternTeacherPreference})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type patternRepoStub struct {
	items       []models.LearnedPattern
	listCalls   int
	upsertCalls int
}

func (s *patternRepoStub) List(ctx context.Context, filter models.PatternFilter) ([]models.LearnedPattern, error) {
	s.listCalls++
	return s.items, nil
}

func (s *patternRepoStub) Upsert(ctx context.Context, pattern *models.LearnedPattern) error {
	s.upsertCalls++
	return nil
}

type patternCacheStub struct {
	entries map[string][]byte
}

func newPatternCacheStub() *patternCacheStub {
	return &patternCacheStub{entries: make(map[string][]byte)}
}

func (s *patternCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *patternCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = payload
	return nil
}

func (s *patternCacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.entries = make(map[string][]byte)
	return nil
}
