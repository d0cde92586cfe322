package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/pkg/apperrors"
	"github.com/emre/scolaris/internal/pkg/logger"
)

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique violation error.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // 23505 is unique_violation
}

var studentColumns = []string{
	"id", "school_id", "admission_id", "first_name", "last_name",
	"date_of_birth", "gender", "nationality", "grade",
	"enrollment_date", "status", "guardian_ids", "created_at", "updated_at",
}

// Create inserts a new student
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns(studentColumns...).
		Values(
			s.ID, s.SchoolID, nullIfEmpty(s.AdmissionID), s.FirstName, s.LastName,
			s.DateOfBirth, s.Gender, s.Nationality, s.Grade,
			s.EnrollmentDate, s.Status, s.GuardianIDs, s.CreatedAt, s.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if isDuplicateKeyError(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		logger.Error().Err(err).Str("studentID", s.ID).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// CreateFromAdmission inserts the student produced by an admission conversion.
// The insert is idempotent on admission_id: if a previous conversion attempt
// already wrote the row, the stored record is returned instead of a duplicate.
func (r *StudentRepository) CreateFromAdmission(ctx context.Context, s *models.Student) (*models.Student, error) {
	if s.AdmissionID == "" {
		return nil, fmt.Errorf("student has no admission id")
	}

	err := r.Create(ctx, s)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
		return nil, err
	}
	return r.GetByAdmissionID(ctx, s.SchoolID, s.AdmissionID)
}

// GetByID retrieves a student by school and id
func (r *StudentRepository) GetByID(ctx context.Context, schoolID, id string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"school_id": schoolID, "id": id})
}

// GetByAdmissionID retrieves the student created from a given admission
func (r *StudentRepository) GetByAdmissionID(ctx context.Context, schoolID, admissionID string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"school_id": schoolID, "admission_id": admissionID})
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := r.scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	return s, nil
}

// List retrieves a school's students with optional grade/status filters
func (r *StudentRepository) List(ctx context.Context, schoolID string, grade string, status models.StudentStatus, page, pageSize int) ([]models.Student, int, error) {
	where := squirrel.And{squirrel.Eq{"school_id": schoolID}}
	if grade != "" {
		where = append(where, squirrel.Eq{"grade": grade})
	}
	if status != "" {
		where = append(where, squirrel.Eq{"status": status})
	}

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("students").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}
	if total == 0 {
		return []models.Student{}, 0, nil
	}

	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(where).
		OrderBy("last_name ASC", "first_name ASC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, 0, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		s, err := r.scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, total, nil
}

// Update persists student fields
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"first_name":      s.FirstName,
			"last_name":       s.LastName,
			"date_of_birth":   s.DateOfBirth,
			"gender":          s.Gender,
			"nationality":     s.Nationality,
			"grade":           s.Grade,
			"enrollment_date": s.EnrollmentDate,
			"status":          s.Status,
			"guardian_ids":    s.GuardianIDs,
			"updated_at":      s.UpdatedAt,
		}).
		Where(squirrel.Eq{"school_id": s.SchoolID, "id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("studentID", s.ID).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

func (r *StudentRepository) scanStudent(row rowScanner) (*models.Student, error) {
	s := &models.Student{}
	var admissionID *string
	err := row.Scan(
		&s.ID, &s.SchoolID, &admissionID, &s.FirstName, &s.LastName,
		&s.DateOfBirth, &s.Gender, &s.Nationality, &s.Grade,
		&s.EnrollmentDate, &s.Status, &s.GuardianIDs, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if admissionID != nil {
		s.AdmissionID = *admissionID
	}
	return s, nil
}
