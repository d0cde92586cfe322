package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/pkg/apperrors"
	"github.com/emre/scolaris/internal/pkg/logger"
)

// BehaviorRepository handles behavior note database operations
type BehaviorRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBehaviorRepository creates a new BehaviorRepository
func NewBehaviorRepository(db *pgxpool.Pool) *BehaviorRepository {
	return &BehaviorRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var behaviorColumns = []string{
	"id", "school_id", "student_id", "category", "severity", "description",
	"recorded_by", "occurred_at", "created_at",
}

// Create inserts a behavior note
func (r *BehaviorRepository) Create(ctx context.Context, n *models.BehaviorNote) error {
	sql, args, err := r.sb.Insert("behavior_notes").
		Columns(behaviorColumns...).
		Values(n.ID, n.SchoolID, n.StudentID, n.Category, n.Severity, n.Description,
			n.RecordedBy, n.OccurredAt, n.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create behavior note query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("studentID", n.StudentID).Msg("Error executing create behavior note query")
		return fmt.Errorf("error creating behavior note: %w", err)
	}
	return nil
}

// GetByID retrieves a behavior note
func (r *BehaviorRepository) GetByID(ctx context.Context, schoolID, id string) (*models.BehaviorNote, error) {
	sql, args, err := r.sb.Select(behaviorColumns...).
		From("behavior_notes").
		Where(squirrel.Eq{"school_id": schoolID, "id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get behavior note query: %w", err)
	}

	n := &models.BehaviorNote{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&n.ID, &n.SchoolID, &n.StudentID, &n.Category, &n.Severity, &n.Description,
		&n.RecordedBy, &n.OccurredAt, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting behavior note: %w", err)
	}
	return n, nil
}

// ListByStudent retrieves a student's behavior notes, newest first
func (r *BehaviorRepository) ListByStudent(ctx context.Context, schoolID, studentID string) ([]models.BehaviorNote, error) {
	sql, args, err := r.sb.Select(behaviorColumns...).
		From("behavior_notes").
		Where(squirrel.Eq{"school_id": schoolID, "student_id": studentID}).
		OrderBy("occurred_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list behavior notes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list behavior notes query")
		return nil, fmt.Errorf("error querying behavior notes: %w", err)
	}
	defer rows.Close()

	notes := []models.BehaviorNote{}
	for rows.Next() {
		n := models.BehaviorNote{}
		if err := rows.Scan(&n.ID, &n.SchoolID, &n.StudentID, &n.Category, &n.Severity, &n.Description,
			&n.RecordedBy, &n.OccurredAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning behavior note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating behavior note rows: %w", err)
	}
	return notes, nil
}

// Delete removes a behavior note
func (r *BehaviorRepository) Delete(ctx context.Context, schoolID, id string) error {
	sql, args, err := r.sb.Delete("behavior_notes").
		Where(squirrel.Eq{"school_id": schoolID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete behavior note query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("noteID", id).Msg("Error executing delete behavior note query")
		return fmt.Errorf("error deleting behavior note: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}
