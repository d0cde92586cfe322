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

// SchoolService defines the interface for school operations
type SchoolService interface {
	Create(ctx context.Context, school *models.School) (*models.School, error)
	GetByID(ctx context.Context, id string) (*models.School, error)
	List(ctx context.Context) ([]models.School, error)
	Update(ctx context.Context, school *models.School) (*models.School, error)
}

// schoolServiceImpl implements SchoolService
type schoolServiceImpl struct {
	schoolRepo *repositories.SchoolRepository
	logger     zerolog.Logger
}

// NewSchoolService creates a new SchoolService
func NewSchoolService(schoolRepo *repositories.SchoolRepository, logger zerolog.Logger) SchoolService {
	return &schoolServiceImpl{
		schoolRepo: schoolRepo,
		logger:     logger,
	}
}

// Create registers a new school
func (s *schoolServiceImpl) Create(ctx context.Context, school *models.School) (*models.School, error) {
	if strings.TrimSpace(school.Name) == "" {
		return nil, apperrors.NewValidationError("school name is required")
	}

	now := time.Now().UTC()
	school.ID = uuid.NewString()
	school.CreatedAt = now
	school.UpdatedAt = now

	if err := s.schoolRepo.Create(ctx, school); err != nil {
		return nil, fmt.Errorf("error creating school: %w", err)
	}
	s.logger.Info().Str("schoolID", school.ID).Str("name", school.Name).Msg("School created")
	return school, nil
}

// GetByID retrieves a school by its ID
func (s *schoolServiceImpl) GetByID(ctx context.Context, id string) (*models.School, error) {
	school, err := s.schoolRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrSchoolNotFound) {
			return nil, apperrors.ErrSchoolNotFound
		}
		return nil, fmt.Errorf("error retrieving school: %w", err)
	}
	return school, nil
}

// List retrieves all schools
func (s *schoolServiceImpl) List(ctx context.Context) ([]models.School, error) {
	schools, err := s.schoolRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving schools: %w", err)
	}
	return schools, nil
}

// Update modifies a school's details
func (s *schoolServiceImpl) Update(ctx context.Context, school *models.School) (*models.School, error) {
	if strings.TrimSpace(school.Name) == "" {
		return nil, apperrors.NewValidationError("school name is required")
	}
	school.UpdatedAt = time.Now().UTC()
	if err := s.schoolRepo.Update(ctx, school); err != nil {
		return nil, err
	}
	return school, nil
}
