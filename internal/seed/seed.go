package seed

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/emre/scolaris/internal/app/models"
	appRepos "github.com/emre/scolaris/internal/app/repositories"
	"github.com/emre/scolaris/internal/config"
	"github.com/emre/scolaris/internal/pkg/apperrors"
)

// CreateDefaultData creates a demo school and the default admin account if
// they don't exist yet. Seeding failures are reported but should not abort
// startup; the caller decides.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	schoolRepo := appRepos.NewSchoolRepository(dbPool)
	userRepo := appRepos.NewUserRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (school/admin)...")
	var finalErr error

	// --- Demo school --- //
	var schoolID string
	schools, err := schoolRepo.List(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error listing schools during seed")
		finalErr = errors.Join(finalErr, err)
	}
	for _, s := range schools {
		if s.Code == "DEMO" {
			schoolID = s.ID
			break
		}
	}
	if schoolID == "" && err == nil {
		now := time.Now().UTC()
		demo := &appModels.School{
			ID:        uuid.NewString(),
			Name:      "Demo School",
			Code:      "DEMO",
			Email:     "office@demo.school",
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if createErr := schoolRepo.Create(ctx, demo); createErr != nil && !errors.Is(createErr, apperrors.ErrResourceAlreadyExists) {
			lgr.Error().Err(createErr).Msg("Error creating demo school")
			finalErr = errors.Join(finalErr, createErr)
		} else if createErr == nil {
			schoolID = demo.ID
			lgr.Info().Str("schoolId", schoolID).Msg("Demo school created")
		}
	}

	// --- Default admin user --- //
	adminEmail := cfg.Seed.AdminEmail
	adminPassword := cfg.Seed.AdminPassword
	if adminEmail == "" || adminPassword == "" {
		lgr.Info().Msg("No seed admin configured, skipping admin creation")
		return finalErr
	}
	if schoolID == "" {
		lgr.Error().Msg("No school available for seed admin user")
		return errors.Join(finalErr, errors.New("no school available for seed admin user"))
	}

	_, err = userRepo.GetByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		lgr.Info().Msg("Admin user already exists, skipping creation")
	case errors.Is(err, apperrors.ErrUserNotFound):
		lgr.Info().Msg("Creating default admin user...")
		hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			lgr.Error().Err(hashErr).Msg("Error hashing admin password")
			return errors.Join(finalErr, hashErr)
		}
		now := time.Now().UTC()
		admin := &appModels.User{
			ID:           uuid.NewString(),
			SchoolID:     schoolID,
			Email:        adminEmail,
			PasswordHash: string(hashedPassword),
			FirstName:    "System",
			LastName:     "Administrator",
			RoleType:     appModels.RoleAdmin,
			Permissions:  []string{},
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if createErr := userRepo.Create(ctx, admin); createErr != nil && !errors.Is(createErr, apperrors.ErrResourceAlreadyExists) {
			lgr.Error().Err(createErr).Msg("Error creating admin user")
			finalErr = errors.Join(finalErr, createErr)
		} else if createErr == nil {
			lgr.Info().Str("adminId", admin.ID).Msg("Default admin user created successfully")
		}
	default:
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
