package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/pkg/apperrors"
	"github.com/emre/scolaris/internal/pkg/logger"
)

// GuardianRepository handles guardian database operations
type GuardianRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewGuardianRepository creates a new GuardianRepository
func NewGuardianRepository(db *pgxpool.Pool) *GuardianRepository {
	return &GuardianRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var guardianColumns = []string{
	"id", "school_id", "full_name", "relationship", "email", "phone",
	"created_at", "updated_at",
}

// Create inserts a new guardian
func (r *GuardianRepository) Create(ctx context.Context, g *models.Guardian) error {
	sql, args, err := r.sb.Insert("guardians").
		Columns(guardianColumns...).
		Values(g.ID, g.SchoolID, g.FullName, g.Relationship, strings.ToLower(g.Email), g.Phone,
			g.CreatedAt, g.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create guardian query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if isDuplicateKeyError(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		logger.Error().Err(err).Str("guardianID", g.ID).Msg("Error executing create guardian query")
		return fmt.Errorf("error creating guardian: %w", err)
	}
	return nil
}

// GetByID retrieves a guardian by school and id
func (r *GuardianRepository) GetByID(ctx context.Context, schoolID, id string) (*models.Guardian, error) {
	return r.getOne(ctx, squirrel.Eq{"school_id": schoolID, "id": id})
}

// GetByEmail retrieves a guardian by the school-scoped dedup key. Email
// comparison is case-insensitive; addresses are stored lowercased.
func (r *GuardianRepository) GetByEmail(ctx context.Context, schoolID, email string) (*models.Guardian, error) {
	return r.getOne(ctx, squirrel.Eq{"school_id": schoolID, "email": strings.ToLower(email)})
}

func (r *GuardianRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Guardian, error) {
	sql, args, err := r.sb.Select(guardianColumns...).
		From("guardians").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get guardian query: %w", err)
	}

	g := &models.Guardian{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&g.ID, &g.SchoolID, &g.FullName, &g.Relationship, &g.Email, &g.Phone,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGuardianNotFound
		}
		logger.Error().Err(err).Msg("Error scanning guardian row")
		return nil, fmt.Errorf("error getting guardian: %w", err)
	}
	return g, nil
}

// List retrieves a school's guardians ordered by name
func (r *GuardianRepository) List(ctx context.Context, schoolID string, page, pageSize int) ([]models.Guardian, int, error) {
	countSql, countArgs, err := r.sb.Select("COUNT(*)").
		From("guardians").
		Where(squirrel.Eq{"school_id": schoolID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count guardians query: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count guardians: %w", err)
	}
	if total == 0 {
		return []models.Guardian{}, 0, nil
	}

	sql, args, err := r.sb.Select(guardianColumns...).
		From("guardians").
		Where(squirrel.Eq{"school_id": schoolID}).
		OrderBy("full_name ASC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list guardians query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list guardians query")
		return nil, 0, fmt.Errorf("error querying guardians: %w", err)
	}
	defer rows.Close()

	guardians := []models.Guardian{}
	for rows.Next() {
		g := models.Guardian{}
		if err := rows.Scan(&g.ID, &g.SchoolID, &g.FullName, &g.Relationship, &g.Email, &g.Phone,
			&g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning guardian row: %w", err)
		}
		guardians = append(guardians, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating guardian rows: %w", err)
	}
	return guardians, total, nil
}

// Update persists guardian contact fields
func (r *GuardianRepository) Update(ctx context.Context, g *models.Guardian) error {
	sql, args, err := r.sb.Update("guardians").
		SetMap(map[string]interface{}{
			"full_name":    g.FullName,
			"relationship": g.Relationship,
			"email":        strings.ToLower(g.Email),
			"phone":        g.Phone,
			"updated_at":   g.UpdatedAt,
		}).
		Where(squirrel.Eq{"school_id": g.SchoolID, "id": g.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update guardian query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		logger.Error().Err(err).Str("guardianID", g.ID).Msg("Error executing update guardian query")
		return fmt.Errorf("error updating guardian: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrGuardianNotFound
	}
	return nil
}
