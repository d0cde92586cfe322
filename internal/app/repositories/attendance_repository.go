package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/pkg/apperrors"
	"github.com/emre/scolaris/internal/pkg/logger"
)

// AttendanceRepository handles attendance database operations
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var attendanceColumns = []string{
	"id", "school_id", "student_id", "date", "status", "notes", "recorded_by",
	"created_at", "updated_at",
}

// Upsert records a student's attendance for a day. One row per (student, date);
// recording the same day again overwrites status, notes and recorder.
func (r *AttendanceRepository) Upsert(ctx context.Context, rec *models.AttendanceRecord) error {
	sql, args, err := r.sb.Insert("attendance_records").
		Columns(attendanceColumns...).
		Values(rec.ID, rec.SchoolID, rec.StudentID, rec.Date, rec.Status, rec.Notes, rec.RecordedBy,
			rec.CreatedAt, rec.UpdatedAt).
		Suffix(`ON CONFLICT (student_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			recorded_by = EXCLUDED.recorded_by,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert attendance query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("studentID", rec.StudentID).Msg("Error executing upsert attendance query")
		return fmt.Errorf("error recording attendance: %w", err)
	}
	return nil
}

// GetByStudentAndDate retrieves one attendance record
func (r *AttendanceRepository) GetByStudentAndDate(ctx context.Context, schoolID, studentID string, date time.Time) (*models.AttendanceRecord, error) {
	sql, args, err := r.sb.Select(attendanceColumns...).
		From("attendance_records").
		Where(squirrel.Eq{"school_id": schoolID, "student_id": studentID, "date": date}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get attendance query: %w", err)
	}

	rec := &models.AttendanceRecord{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&rec.ID, &rec.SchoolID, &rec.StudentID, &rec.Date, &rec.Status, &rec.Notes, &rec.RecordedBy,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting attendance record: %w", err)
	}
	return rec, nil
}

// ListByStudent retrieves a student's attendance over a date range, newest first
func (r *AttendanceRepository) ListByStudent(ctx context.Context, schoolID, studentID string, from, to time.Time) ([]models.AttendanceRecord, error) {
	where := squirrel.And{squirrel.Eq{"school_id": schoolID, "student_id": studentID}}
	if !from.IsZero() {
		where = append(where, squirrel.GtOrEq{"date": from})
	}
	if !to.IsZero() {
		where = append(where, squirrel.LtOrEq{"date": to})
	}

	sql, args, err := r.sb.Select(attendanceColumns...).
		From("attendance_records").
		Where(where).
		OrderBy("date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list attendance query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list attendance query")
		return nil, fmt.Errorf("error querying attendance records: %w", err)
	}
	defer rows.Close()

	records := []models.AttendanceRecord{}
	for rows.Next() {
		rec := models.AttendanceRecord{}
		if err := rows.Scan(&rec.ID, &rec.SchoolID, &rec.StudentID, &rec.Date, &rec.Status, &rec.Notes,
			&rec.RecordedBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning attendance row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance rows: %w", err)
	}
	return records, nil
}
