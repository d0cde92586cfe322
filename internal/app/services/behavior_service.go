package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/app/repositories"
	"github.com/emre/scolaris/internal/pkg/apperrors"
)

// BehaviorService defines the interface for behavior note operations
type BehaviorService interface {
	Create(ctx context.Context, note *models.BehaviorNote) (*models.BehaviorNote, error)
	ListByStudent(ctx context.Context, schoolID, studentID string) ([]models.BehaviorNote, error)
	Delete(ctx context.Context, schoolID, id string) error
}

// behaviorServiceImpl implements BehaviorService
type behaviorServiceImpl struct {
	behaviorRepo *repositories.BehaviorRepository
	studentRepo  *repositories.StudentRepository
	logger       zerolog.Logger
}

// NewBehaviorService creates a new BehaviorService
func NewBehaviorService(behaviorRepo *repositories.BehaviorRepository, studentRepo *repositories.StudentRepository, logger zerolog.Logger) BehaviorService {
	return &behaviorServiceImpl{
		behaviorRepo: behaviorRepo,
		studentRepo:  studentRepo,
		logger:       logger,
	}
}

// Create records a behavior note against a student
func (s *behaviorServiceImpl) Create(ctx context.Context, note *models.BehaviorNote) (*models.BehaviorNote, error) {
	if strings.TrimSpace(note.Description) == "" {
		return nil, apperrors.NewValidationError("description is required")
	}
	if note.Category != models.BehaviorPositive && note.Category != models.BehaviorNegative {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown behavior category: %q", note.Category))
	}
	switch note.Severity {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh:
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown severity: %q", note.Severity))
	}

	if _, err := s.studentRepo.GetByID(ctx, note.SchoolID, note.StudentID); err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error verifying student: %w", err)
	}

	now := time.Now().UTC()
	note.ID = uuid.NewString()
	note.CreatedAt = now
	if err := s.behaviorRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("error creating behavior note: %w", err)
	}
	return note, nil
}

// ListByStudent retrieves a student's behavior notes
func (s *behaviorServiceImpl) ListByStudent(ctx context.Context, schoolID, studentID string) ([]models.BehaviorNote, error) {
	notes, err := s.behaviorRepo.ListByStudent(ctx, schoolID, studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving behavior notes: %w", err)
	}
	return notes, nil
}

// Delete removes a behavior note
func (s *behaviorServiceImpl) Delete(ctx context.Context, schoolID, id string) error {
	return s.behaviorRepo.Delete(ctx, schoolID, id)
}
