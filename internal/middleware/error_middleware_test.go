package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/scolaris/internal/app/models/dto"
	"github.com/emre/scolaris/internal/pkg/apperrors"
)

func runHandleAPIError(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/", nil)

	HandleAPIError(c, err)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHandleAPIErrorInvalidTransition(t *testing.T) {
	status, body := runHandleAPIError(t, apperrors.NewInvalidTransitionError("submitted", "offer_made"))

	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, dto.ErrorCodeInvalidTransition, body.Error.Code)

	details, ok := body.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "submitted", details["from"])
	assert.Equal(t, "offer_made", details["to"])
}

func TestHandleAPIErrorInvalidState(t *testing.T) {
	status, body := runHandleAPIError(t, apperrors.NewInvalidStateError("conversion", "rejected"))

	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, dto.ErrorCodeInvalidState, body.Error.Code)

	details, ok := body.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "rejected", details["status"])
}

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"validation", apperrors.NewValidationError("firstName is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"generic not found", apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"admission not found", apperrors.ErrAdmissionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"student not found", apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"conflict", apperrors.NewConflictError("admission was modified concurrently"), http.StatusConflict, dto.ErrorCodeConflict},
		{"already exists", apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"bad credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"disabled account", apperrors.ErrAccountDisabled, http.StatusUnauthorized, dto.ErrorCodeAccountDisabled},
		{"expired token", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"forbidden", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := runHandleAPIError(t, tc.err)
			assert.Equal(t, tc.wantStatus, status)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.wantCode, body.Error.Code)
		})
	}
}

func TestHandleAPIErrorPrefersCustomMessage(t *testing.T) {
	_, body := runHandleAPIError(t, apperrors.NewValidationError("exactly one guardian must be marked primary, got 2"))
	require.NotNil(t, body.Error)
	assert.Equal(t, "exactly one guardian must be marked primary, got 2", body.Error.Message)
}
