package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/app/repositories"
	"github.com/emre/scolaris/internal/pkg/apperrors"
)

// StudentService defines the interface for student roster operations.
// Students are only ever created through admission conversion, so there is
// no Create here.
type StudentService interface {
	GetByID(ctx context.Context, schoolID, id string) (*models.Student, error)
	List(ctx context.Context, schoolID, grade string, status models.StudentStatus, page, pageSize int) ([]models.Student, int, error)
	Update(ctx context.Context, student *models.Student) (*models.Student, error)
	UpdateStatus(ctx context.Context, schoolID, id string, status models.StudentStatus) (*models.Student, error)
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	studentRepo *repositories.StudentRepository
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(studentRepo *repositories.StudentRepository, logger zerolog.Logger) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		logger:      logger,
	}
}

// GetByID retrieves a student by ID
func (s *studentServiceImpl) GetByID(ctx context.Context, schoolID, id string) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

// List retrieves a school's students with optional grade and status filters
func (s *studentServiceImpl) List(ctx context.Context, schoolID, grade string, status models.StudentStatus, page, pageSize int) ([]models.Student, int, error) {
	students, total, err := s.studentRepo.List(ctx, schoolID, grade, status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving students: %w", err)
	}
	return students, total, nil
}

// Update modifies a student's mutable details
func (s *studentServiceImpl) Update(ctx context.Context, student *models.Student) (*models.Student, error) {
	student.UpdatedAt = time.Now().UTC()
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// UpdateStatus changes a student's enrollment status (e.g. active -> graduated)
func (s *studentServiceImpl) UpdateStatus(ctx context.Context, schoolID, id string, status models.StudentStatus) (*models.Student, error) {
	if _, err := models.ParseStudentStatus(string(status)); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	student, err := s.studentRepo.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	student.Status = status
	student.UpdatedAt = time.Now().UTC()
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	s.logger.Info().Str("studentID", id).Str("status", string(status)).Msg("Student status updated")
	return student, nil
}
