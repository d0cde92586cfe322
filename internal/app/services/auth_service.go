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
	"github.com/emre/scolaris/internal/pkg/auth"
)

// TokenPair bundles the credentials issued to an authenticated user
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error)
	Register(ctx context.Context, user *models.User, password string) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo   *repositories.UserRepository
	tokenRepo  *repositories.TokenRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repositories.UserRepository, tokenRepo *repositories.TokenRepository, jwtService *auth.JWTService, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login authenticates a user and issues a token pair
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Same error for unknown email and wrong password
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("error retrieving user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Warn().Str("email", email).Msg("Failed login attempt")
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, nil, apperrors.ErrAccountDisabled
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("userID", user.ID).Msg("User logged in")
	return user, pair, nil
}

// RefreshToken exchanges a valid refresh token for a fresh pair. The old
// token is revoked first so each refresh token works at most once.
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, nil, apperrors.ErrTokenInvalid
	}

	userID, err := s.tokenRepo.GetUserID(ctx, refreshToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, nil, apperrors.ErrTokenInvalid
		}
		return nil, nil, fmt.Errorf("error retrieving user: %w", err)
	}
	if !user.Active {
		return nil, nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokenRepo.Revoke(ctx, refreshToken); err != nil {
		return nil, nil, fmt.Errorf("error revoking token: %w", err)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("userID", user.ID).Msg("Token refreshed")
	return user, pair, nil
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, refreshToken, expiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}
	if err := s.tokenRepo.Create(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// Register creates a new staff account. Admin-only in the routing layer.
func (s *authServiceImpl) Register(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if strings.TrimSpace(user.Email) == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters")
	}
	if user.RoleType != models.RoleAdmin && user.RoleType != models.RoleStaff {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown role type: %q", user.RoleType))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.Email = strings.ToLower(user.Email)
	user.PasswordHash = hash
	user.Active = true
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			return nil, &apperrors.CustomError{Err: apperrors.ErrResourceAlreadyExists, Message: "a user with this email already exists"}
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info().Str("userID", user.ID).Str("roleType", string(user.RoleType)).Msg("User registered")
	return user, nil
}

// GetProfile retrieves the authenticated user's account
func (s *authServiceImpl) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}
