package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/pkg/apperrors"
	"github.com/emre/scolaris/internal/pkg/logger"
)

// AdmissionRepository handles admission database operations
type AdmissionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAdmissionRepository creates a new AdmissionRepository
func NewAdmissionRepository(db *pgxpool.Pool) *AdmissionRepository {
	return &AdmissionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var admissionColumns = []string{
	"id", "school_id", "application_number", "status",
	"first_name", "last_name", "date_of_birth", "gender", "nationality",
	"applied_grade", "preferred_start_date", "previous_school",
	"guardians", "documents",
	"assessment_score", "assessment_notes",
	"decision_notes", "decision_by", "decision_date",
	"student_id", "created_at", "updated_at",
}

// Create inserts a newly submitted admission
func (r *AdmissionRepository) Create(ctx context.Context, adm *models.Admission) error {
	guardians, err := json.Marshal(adm.Guardians)
	if err != nil {
		return fmt.Errorf("failed to marshal guardians: %w", err)
	}
	documents, err := json.Marshal(adm.Documents)
	if err != nil {
		return fmt.Errorf("failed to marshal documents: %w", err)
	}

	sql, args, err := r.sb.Insert("admissions").
		Columns(admissionColumns...).
		Values(
			adm.ID, adm.SchoolID, adm.ApplicationNumber, adm.Status,
			adm.Applicant.FirstName, adm.Applicant.LastName, adm.Applicant.DateOfBirth,
			adm.Applicant.Gender, adm.Applicant.Nationality,
			adm.Applicant.AppliedGrade, adm.Applicant.PreferredStartDate, adm.PreviousSchool,
			guardians, documents,
			adm.AssessmentScore, adm.AssessmentNotes,
			adm.DecisionNotes, nullIfEmpty(adm.DecisionBy), adm.DecisionDate,
			nullIfEmpty(adm.StudentID), adm.CreatedAt, adm.UpdatedAt,
		).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create admission SQL")
		return fmt.Errorf("failed to build create admission query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if isDuplicateKeyError(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		logger.Error().Err(err).Str("admissionID", adm.ID).Msg("Error executing create admission query")
		return fmt.Errorf("error creating admission: %w", err)
	}
	return nil
}

// GetByID retrieves an admission by school and id
func (r *AdmissionRepository) GetByID(ctx context.Context, schoolID, id string) (*models.Admission, error) {
	sql, args, err := r.sb.Select(admissionColumns...).
		From("admissions").
		Where(squirrel.Eq{"school_id": schoolID, "id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get admission SQL")
		return nil, fmt.Errorf("failed to build get admission query: %w", err)
	}

	adm, err := r.scanAdmission(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAdmissionNotFound
		}
		logger.Error().Err(err).Str("admissionID", id).Msg("Error scanning admission row")
		return nil, fmt.Errorf("error getting admission by ID: %w", err)
	}
	return adm, nil
}

// List retrieves a school's admissions, optionally filtered by status, newest first
func (r *AdmissionRepository) List(ctx context.Context, schoolID string, status *models.AdmissionStatus, page, pageSize int) ([]models.Admission, int, error) {
	where := squirrel.And{squirrel.Eq{"school_id": schoolID}}
	if status != nil {
		where = append(where, squirrel.Eq{"status": *status})
	}

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("admissions").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count admissions query: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count admissions query")
		return nil, 0, fmt.Errorf("failed to count admissions: %w", err)
	}
	if total == 0 {
		return []models.Admission{}, 0, nil
	}

	offset := uint64((page - 1) * pageSize)
	sql, args, err := r.sb.Select(admissionColumns...).
		From("admissions").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(pageSize)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list admissions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list admissions query")
		return nil, 0, fmt.Errorf("error querying admissions: %w", err)
	}
	defer rows.Close()

	admissions := []models.Admission{}
	for rows.Next() {
		adm, err := r.scanAdmission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning admission row: %w", err)
		}
		admissions = append(admissions, *adm)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating admission rows: %w", err)
	}
	return admissions, total, nil
}

// Update persists the mutable fields of an admission (documents, assessment
// outcome). Whole-record last-writer-wins; status changes go through
// UpdateStatus/MarkConverted instead.
func (r *AdmissionRepository) Update(ctx context.Context, adm *models.Admission) error {
	guardians, err := json.Marshal(adm.Guardians)
	if err != nil {
		return fmt.Errorf("failed to marshal guardians: %w", err)
	}
	documents, err := json.Marshal(adm.Documents)
	if err != nil {
		return fmt.Errorf("failed to marshal documents: %w", err)
	}

	sql, args, err := r.sb.Update("admissions").
		SetMap(map[string]interface{}{
			"guardians":        guardians,
			"documents":        documents,
			"assessment_score": adm.AssessmentScore,
			"assessment_notes": adm.AssessmentNotes,
			"updated_at":       adm.UpdatedAt,
		}).
		Where(squirrel.Eq{"school_id": adm.SchoolID, "id": adm.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update admission query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("admissionID", adm.ID).Msg("Error executing update admission query")
		return fmt.Errorf("error updating admission: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAdmissionNotFound
	}
	return nil
}

// UpdateStatus flips the admission status with an optimistic-concurrency guard:
// the write only lands if the stored status still equals expected. Zero rows
// affected means another writer got there first.
func (r *AdmissionRepository) UpdateStatus(ctx context.Context, adm *models.Admission, expected models.AdmissionStatus) error {
	sql, args, err := r.sb.Update("admissions").
		SetMap(map[string]interface{}{
			"status":         adm.Status,
			"decision_notes": adm.DecisionNotes,
			"decision_by":    nullIfEmpty(adm.DecisionBy),
			"decision_date":  adm.DecisionDate,
			"updated_at":     adm.UpdatedAt,
		}).
		Where(squirrel.Eq{"school_id": adm.SchoolID, "id": adm.ID, "status": expected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update status query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("admissionID", adm.ID).Msg("Error executing update status query")
		return fmt.Errorf("error updating admission status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("admission %s was modified concurrently", adm.ID))
	}
	return nil
}

// MarkConverted finalizes a conversion: the status flip to converted_to_student
// is conditioned on the status still being offer_accepted so a concurrent
// conversion cannot complete twice.
func (r *AdmissionRepository) MarkConverted(ctx context.Context, schoolID, id, studentID string) error {
	sql, args, err := r.sb.Update("admissions").
		SetMap(map[string]interface{}{
			"status":     models.AdmissionConverted,
			"student_id": studentID,
			"updated_at": squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"school_id": schoolID, "id": id, "status": models.AdmissionOfferAccepted}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark converted query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("admissionID", id).Msg("Error executing mark converted query")
		return fmt.Errorf("error marking admission converted: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("admission %s is no longer awaiting conversion", id))
	}
	return nil
}

// Delete removes an admission. This is the administrative path only;
// admissions are otherwise never hard-deleted.
func (r *AdmissionRepository) Delete(ctx context.Context, schoolID, id string) error {
	sql, args, err := r.sb.Delete("admissions").
		Where(squirrel.Eq{"school_id": schoolID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete admission query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("admissionID", id).Msg("Error executing delete admission query")
		return fmt.Errorf("error deleting admission: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAdmissionNotFound
	}
	return nil
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *AdmissionRepository) scanAdmission(row rowScanner) (*models.Admission, error) {
	adm := &models.Admission{}
	var guardians, documents []byte
	var rawStatus string
	var decisionBy, studentID *string

	err := row.Scan(
		&adm.ID, &adm.SchoolID, &adm.ApplicationNumber, &rawStatus,
		&adm.Applicant.FirstName, &adm.Applicant.LastName, &adm.Applicant.DateOfBirth,
		&adm.Applicant.Gender, &adm.Applicant.Nationality,
		&adm.Applicant.AppliedGrade, &adm.Applicant.PreferredStartDate, &adm.PreviousSchool,
		&guardians, &documents,
		&adm.AssessmentScore, &adm.AssessmentNotes,
		&adm.DecisionNotes, &decisionBy, &adm.DecisionDate,
		&studentID, &adm.CreatedAt, &adm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// The status column is free text at the SQL level; refuse anything outside
	// the enumerated set instead of carrying it into the domain.
	status, err := models.ParseAdmissionStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: admission %s: %v", apperrors.ErrDataIntegrity, adm.ID, err)
	}
	adm.Status = status
	if decisionBy != nil {
		adm.DecisionBy = *decisionBy
	}
	if studentID != nil {
		adm.StudentID = *studentID
	}
	if err := json.Unmarshal(guardians, &adm.Guardians); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guardians: %w", err)
	}
	if err := json.Unmarshal(documents, &adm.Documents); err != nil {
		return nil, fmt.Errorf("failed to unmarshal documents: %w", err)
	}
	return adm, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
