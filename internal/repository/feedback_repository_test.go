package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria7-op/sms-sub008/internal/models"
)

func TestFeedbackRepositoryCreateSession(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectExec("INSERT INTO feedback_sessions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.FeedbackSession{
		TimetableVersionID: "version-1",
		CreatedBy:          "reviewer-1",
	}
	require.NoError(t, repo.CreateSession(context.Background(), session))

	assert.NotEmpty(t, session.ID)
	assert.False(t, session.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryAddCorrection(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectExec("INSERT INTO corrections").
		WillReturnResult(sqlmock.NewResult(1, 1))

	correction := &models.Correction{
		FeedbackID: "feedback-1",
		Before: models.SlotAssignment{
			TeacherID: "teacher-1", SubjectID: "math", Day: models.Monday, Period: 1,
		},
		After: models.SlotAssignment{
			TeacherID: "teacher-2", SubjectID: "math", Day: models.Monday, Period: 1,
		},
		CorrectedBy: "reviewer-1",
	}
	require.NoError(t, repo.AddCorrection(context.Background(), correction))

	assert.NotEmpty(t, correction.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryListCorrections(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	rows := sqlmock.NewRows([]string{"id", "feedback_id", "before_teacher_id", "before_subject_id", "before_day", "before_period", "after_teacher_id", "after_subject_id", "after_day", "after_period", "reason", "corrected_by", "created_at"}).
		AddRow("correction-1", "feedback-1", "teacher-1", "math", 1, 1, "teacher-2", "math", 1, 1, "swap", "reviewer-1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM corrections WHERE feedback_id = $1 ORDER BY created_at ASC, id ASC")).
		WithArgs("feedback-1").
		WillReturnRows(rows)

	corrections, err := repo.ListCorrections(context.Background(), "feedback-1")
	require.NoError(t, err)
	require.Len(t, corrections, 1)
	// nested payloads round-trip through the flat row form
	assert.Equal(t, "teacher-1", corrections[0].Before.TeacherID)
	assert.Equal(t, "teacher-2", corrections[0].After.TeacherID)
	assert.Equal(t, models.Monday, corrections[0].Before.Day)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryIncrementLearningPoints(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE feedback_sessions SET learning_points = learning_points + $2")).
		WithArgs("feedback-1", 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementLearningPoints(context.Background(), "feedback-1", 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
