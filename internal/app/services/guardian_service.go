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

// GuardianService defines the interface for guardian directory operations.
// Guardians are created during admission conversion; this service only reads
// and updates contact details.
type GuardianService interface {
	GetByID(ctx context.Context, schoolID, id string) (*models.Guardian, error)
	List(ctx context.Context, schoolID string, page, pageSize int) ([]models.Guardian, int, error)
	Update(ctx context.Context, g *models.Guardian) (*models.Guardian, error)
}

// guardianServiceImpl implements GuardianService
type guardianServiceImpl struct {
	guardianRepo *repositories.GuardianRepository
	logger       zerolog.Logger
}

// NewGuardianService creates a new GuardianService
func NewGuardianService(guardianRepo *repositories.GuardianRepository, logger zerolog.Logger) GuardianService {
	return &guardianServiceImpl{
		guardianRepo: guardianRepo,
		logger:       logger,
	}
}

// GetByID retrieves a guardian by ID
func (s *guardianServiceImpl) GetByID(ctx context.Context, schoolID, id string) (*models.Guardian, error) {
	g, err := s.guardianRepo.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrGuardianNotFound) {
			return nil, apperrors.ErrGuardianNotFound
		}
		return nil, fmt.Errorf("error retrieving guardian: %w", err)
	}
	return g, nil
}

// List retrieves a school's guardians
func (s *guardianServiceImpl) List(ctx context.Context, schoolID string, page, pageSize int) ([]models.Guardian, int, error) {
	guardians, total, err := s.guardianRepo.List(ctx, schoolID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving guardians: %w", err)
	}
	return guardians, total, nil
}

// Update modifies a guardian's contact details
func (s *guardianServiceImpl) Update(ctx context.Context, g *models.Guardian) (*models.Guardian, error) {
	g.UpdatedAt = time.Now().UTC()
	if err := s.guardianRepo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}
