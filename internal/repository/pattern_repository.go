package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aria7-op/sms-sub008/internal/models"
)

// PatternRepository persists learned scheduling patterns keyed by
// (pattern_type, entity_id).
type PatternRepository struct {
	db *sqlx.DB
}

// NewPatternRepository constructs the repository.
func NewPatternRepository(db *sqlx.DB) *PatternRepository {
	return &PatternRepository{db: db}
}

const patternColumns = "id, pattern_type, entity_id, preferred_slots, avoided_slots, confidence, last_updated"

// List returns patterns matching the optional filter.
func (r *PatternRepository) List(ctx context.Context, filter models.PatternFilter) ([]models.LearnedPattern, error) {
	base := fmt.Sprintf("SELECT %s FROM learned_patterns WHERE 1=1", patternColumns)
	var conditions []string
	var args []interface{}

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("pattern_type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.EntityID != "" {
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", len(args)+1))
		args = append(args, filter.EntityID)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	base += " ORDER BY pattern_type ASC, entity_id ASC"

	var patterns []models.LearnedPattern
	if err := r.db.SelectContext(ctx, &patterns, base, args...); err != nil {
		return nil, fmt.Errorf("list learned patterns: %w", err)
	}
	return patterns, nil
}

// Get loads a single pattern by its unique key.
func (r *PatternRepository) Get(ctx context.Context, patternType models.PatternType, entityID string) (*models.LearnedPattern, error) {
	query := fmt.Sprintf("SELECT %s FROM learned_patterns WHERE pattern_type = $1 AND entity_id = $2", patternColumns)
	var pattern models.LearnedPattern
	if err := r.db.GetContext(ctx, &pattern, query, patternType, entityID); err != nil {
		return nil, err
	}
	return &pattern, nil
}

// Upsert replaces the whole pattern payload for its (type, entity) key. The
// ON CONFLICT clause makes concurrent upserts for the same key atomic, so the
// newest correction wins without lost updates.
func (r *PatternRepository) Upsert(ctx context.Context, pattern *models.LearnedPattern) error {
	if pattern.ID == "" {
		pattern.ID = uuid.NewString()
	}
	pattern.LastUpdated = time.Now().UTC()
	if len(pattern.PreferredSlots) == 0 {
		pattern.PreferredSlots = []byte("[]")
	}
	if len(pattern.AvoidedSlots) == 0 {
		pattern.AvoidedSlots = []byte("[]")
	}

	const query = `INSERT INTO learned_patterns (id, pattern_type, entity_id, preferred_slots, avoided_slots, confidence, last_updated)
		VALUES (:id, :pattern_type, :entity_id, :preferred_slots, :avoided_slots, :confidence, :last_updated)
		ON CONFLICT (pattern_type, entity_id) DO UPDATE
		SET preferred_slots = EXCLUDED.preferred_slots,
		    avoided_slots = EXCLUDED.avoided_slots,
		    confidence = EXCLUDED.confidence,
		    last_updated = EXCLUDED.last_updated`
	if _, err := r.db.NamedExecContext(ctx, query, pattern); err != nil {
		return fmt.Errorf("upsert learned pattern: %w", err)
	}
	return nil
}
