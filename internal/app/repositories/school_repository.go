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

// SchoolRepository handles school (tenant) database operations
type SchoolRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSchoolRepository creates a new SchoolRepository
func NewSchoolRepository(db *pgxpool.Pool) *SchoolRepository {
	return &SchoolRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var schoolColumns = []string{
	"id", "name", "code", "address", "phone", "email", "active",
	"created_at", "updated_at",
}

// Create inserts a new school
func (r *SchoolRepository) Create(ctx context.Context, s *models.School) error {
	sql, args, err := r.sb.Insert("schools").
		Columns(schoolColumns...).
		Values(s.ID, s.Name, s.Code, s.Address, s.Phone, s.Email, s.Active,
			s.CreatedAt, s.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create school query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if isDuplicateKeyError(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		logger.Error().Err(err).Str("schoolID", s.ID).Msg("Error executing create school query")
		return fmt.Errorf("error creating school: %w", err)
	}
	return nil
}

// GetByID retrieves a school by id
func (r *SchoolRepository) GetByID(ctx context.Context, id string) (*models.School, error) {
	sql, args, err := r.sb.Select(schoolColumns...).
		From("schools").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get school query: %w", err)
	}

	s := &models.School{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.Name, &s.Code, &s.Address, &s.Phone, &s.Email, &s.Active,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSchoolNotFound
		}
		logger.Error().Err(err).Str("schoolID", id).Msg("Error scanning school row")
		return nil, fmt.Errorf("error getting school by ID: %w", err)
	}
	return s, nil
}

// List retrieves all schools
func (r *SchoolRepository) List(ctx context.Context) ([]models.School, error) {
	sql, args, err := r.sb.Select(schoolColumns...).
		From("schools").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list schools query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list schools query")
		return nil, fmt.Errorf("error querying schools: %w", err)
	}
	defer rows.Close()

	schools := []models.School{}
	for rows.Next() {
		s := models.School{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.Address, &s.Phone, &s.Email, &s.Active,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning school row: %w", err)
		}
		schools = append(schools, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school rows: %w", err)
	}
	return schools, nil
}

// Update persists school fields
func (r *SchoolRepository) Update(ctx context.Context, s *models.School) error {
	sql, args, err := r.sb.Update("schools").
		SetMap(map[string]interface{}{
			"name":       s.Name,
			"code":       s.Code,
			"address":    s.Address,
			"phone":      s.Phone,
			"email":      s.Email,
			"active":     s.Active,
			"updated_at": s.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update school query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		logger.Error().Err(err).Str("schoolID", s.ID).Msg("Error executing update school query")
		return fmt.Errorf("error updating school: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSchoolNotFound
	}
	return nil
}
