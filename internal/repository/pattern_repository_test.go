package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria7-op/sms-sub008/internal/models"
)

func newRepositoryMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func patternRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "pattern_type", "entity_id", "preferred_slots", "avoided_slots", "confidence", "last_updated"}).
		AddRow("pattern-1", "TEACHER_PREFERENCE", "teacher-1", []byte(`["Monday_Period1"]`), []byte(`[]`), 0.9, time.Now())
}

func TestPatternRepositoryListUnfiltered(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewPatternRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, pattern_type, entity_id, preferred_slots, avoided_slots, confidence, last_updated FROM learned_patterns WHERE 1=1 ORDER BY pattern_type ASC, entity_id ASC")).
		WillReturnRows(patternRows())

	patterns, err := repo.List(context.Background(), models.PatternFilter{})
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, models.PatternTeacherPreference, patterns[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatternRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewPatternRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND pattern_type = $1 AND entity_id = $2")).
		WithArgs("TEACHER_PREFERENCE", "teacher-1").
		WillReturnRows(patternRows())

	patterns, err := repo.List(context.Background(), models.PatternFilter{
		Type:     models.PatternTeacherPreference,
		EntityID: "teacher-1",
	})
	require.NoError(t, err)
	assert.Len(t, patterns, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatternRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewPatternRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM learned_patterns WHERE pattern_type = $1 AND entity_id = $2")).
		WithArgs("TEACHER_PREFERENCE", "teacher-1").
		WillReturnRows(patternRows())

	pattern, err := repo.Get(context.Background(), models.PatternTeacherPreference, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", pattern.EntityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatternRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewPatternRepository(db)

	mock.ExpectExec("INSERT INTO learned_patterns").
		WillReturnResult(sqlmock.NewResult(1, 1))

	pattern := &models.LearnedPattern{
		Type:       models.PatternTeacherPreference,
		EntityID:   "teacher-1",
		Confidence: 0.9,
	}
	require.NoError(t, repo.Upsert(context.Background(), pattern))

	// id, timestamp and empty slot sets are filled in before the write
	assert.NotEmpty(t, pattern.ID)
	assert.False(t, pattern.LastUpdated.IsZero())
	assert.JSONEq(t, `[]`, string(pattern.PreferredSlots))
	assert.JSONEq(t, `[]`, string(pattern.AvoidedSlots))
	assert.NoError(t, mock.ExpectationsWereMet())
}
