package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aria7-op/sms-sub008/internal/models"
)

// AssignmentRepository reads teacher assignments owned by the roster system.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListActiveByClass returns active assignments for a class in roster order.
func (r *AssignmentRepository) ListActiveByClass(ctx context.Context, schoolID, classID string) ([]models.TeacherAssignment, error) {
	const query = `SELECT id, school_id, class_id, subject_id, teacher_id, teacher_name, subject_name, class_name, active, created_at
FROM teacher_assignments WHERE school_id = $1 AND class_id = $2 AND active = TRUE ORDER BY created_at ASC, id ASC`
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, schoolID, classID); err != nil {
		return nil, fmt.Errorf("list active assignments: %w", err)
	}
	return assignments, nil
}
