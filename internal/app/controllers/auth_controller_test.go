package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/app/models/dto"
	"github.com/emre/scolaris/internal/app/services"
	"github.com/emre/scolaris/internal/pkg/apperrors"
)

type stubAuthService struct {
	loginUser  *models.User
	loginPair  *services.TokenPair
	loginErr   error
	refreshErr error

	refreshedWith string
}

func (s *stubAuthService) Login(_ context.Context, _, _ string) (*models.User, *services.TokenPair, error) {
	return s.loginUser, s.loginPair, s.loginErr
}

func (s *stubAuthService) RefreshToken(_ context.Context, refreshToken string) (*models.User, *services.TokenPair, error) {
	s.refreshedWith = refreshToken
	if s.refreshErr != nil {
		return nil, nil, s.refreshErr
	}
	return s.loginUser, s.loginPair, nil
}

func (s *stubAuthService) Register(context.Context, *models.User, string) (*models.User, error) {
	return nil, nil
}

func (s *stubAuthService) GetProfile(context.Context, string) (*models.User, error) {
	return nil, apperrors.ErrUserNotFound
}

func newAuthTestRouter(stub *stubAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := NewAuthController(stub)
	router := gin.New()
	router.POST("/auth/login", controller.Login)
	router.POST("/auth/refresh", controller.RefreshToken)
	return router
}

func testStaffUser() *models.User {
	return &models.User{
		ID:       "user-1",
		SchoolID: "school-1",
		Email:    "staff@demo.school",
		RoleType: models.RoleStaff,
		Active:   true,
	}
}

func TestLoginEndpointReturnsTokenPair(t *testing.T) {
	stub := &stubAuthService{
		loginUser: testStaffUser(),
		loginPair: &services.TokenPair{AccessToken: "access-abc", RefreshToken: "refresh-def", ExpiresIn: 3600},
	}
	router := newAuthTestRouter(stub)

	rec := postJSON(t, router, "/auth/login", map[string]interface{}{
		"email":    "staff@demo.school",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.StructuredResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "access-abc", data["accessToken"])
	assert.Equal(t, "refresh-def", data["refreshToken"])
	assert.Equal(t, "Bearer", data["tokenType"])
	assert.Equal(t, float64(3600), data["expiresIn"])
}

func TestLoginEndpointInvalidCredentials(t *testing.T) {
	router := newAuthTestRouter(&stubAuthService{loginErr: apperrors.ErrInvalidCredentials})

	rec := postJSON(t, router, "/auth/login", map[string]interface{}{
		"email":    "staff@demo.school",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, resp.Error.Code)
}

func TestRefreshEndpointIssuesNewPair(t *testing.T) {
	stub := &stubAuthService{
		loginUser: testStaffUser(),
		loginPair: &services.TokenPair{AccessToken: "access-new", RefreshToken: "refresh-new", ExpiresIn: 3600},
	}
	router := newAuthTestRouter(stub)

	rec := postJSON(t, router, "/auth/refresh", map[string]interface{}{
		"refreshToken": "refresh-old",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "refresh-old", stub.refreshedWith)

	var resp dto.StructuredResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "access-new", data["accessToken"])
	assert.Equal(t, "refresh-new", data["refreshToken"])
}

func TestRefreshEndpointRejectsInvalidToken(t *testing.T) {
	router := newAuthTestRouter(&stubAuthService{refreshErr: apperrors.ErrTokenInvalid})

	rec := postJSON(t, router, "/auth/refresh", map[string]interface{}{
		"refreshToken": "revoked-or-unknown",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrorCodeInvalidToken, resp.Error.Code)
}
