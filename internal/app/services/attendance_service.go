package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/app/repositories"
	"github.com/emre/scolaris/internal/pkg/apperrors"
)

// AttendanceService defines the interface for attendance operations
type AttendanceService interface {
	Record(ctx context.Context, schoolID, studentID string, date time.Time, status models.AttendanceStatus, note, recordedBy string) (*models.AttendanceRecord, error)
	ListByStudent(ctx context.Context, schoolID, studentID string, from, to time.Time) ([]models.AttendanceRecord, error)
}

// attendanceServiceImpl implements AttendanceService
type attendanceServiceImpl struct {
	attendanceRepo *repositories.AttendanceRepository
	studentRepo    *repositories.StudentRepository
	logger         zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(attendanceRepo *repositories.AttendanceRepository, studentRepo *repositories.StudentRepository, logger zerolog.Logger) AttendanceService {
	return &attendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		studentRepo:    studentRepo,
		logger:         logger,
	}
}

// Record stores a student's attendance for a day. Recording again for the
// same student and day overwrites the earlier entry, so a late correction
// (absent -> excused) is a plain re-record.
func (s *attendanceServiceImpl) Record(ctx context.Context, schoolID, studentID string, date time.Time, status models.AttendanceStatus, note, recordedBy string) (*models.AttendanceRecord, error) {
	if _, err := models.ParseAttendanceStatus(string(status)); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if date.IsZero() {
		return nil, apperrors.NewValidationError("date is required")
	}

	if _, err := s.studentRepo.GetByID(ctx, schoolID, studentID); err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error verifying student: %w", err)
	}

	now := time.Now().UTC()
	rec := &models.AttendanceRecord{
		ID:         uuid.NewString(),
		SchoolID:   schoolID,
		StudentID:  studentID,
		Date:       date.Truncate(24 * time.Hour),
		Status:     status,
		Notes:      note,
		RecordedBy: recordedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.attendanceRepo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("error recording attendance: %w", err)
	}
	return rec, nil
}

// ListByStudent retrieves a student's attendance within a date range
func (s *attendanceServiceImpl) ListByStudent(ctx context.Context, schoolID, studentID string, from, to time.Time) ([]models.AttendanceRecord, error) {
	records, err := s.attendanceRepo.ListByStudent(ctx, schoolID, studentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error retrieving attendance: %w", err)
	}
	return records, nil
}
