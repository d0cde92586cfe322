package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/app/models/dto"
	"github.com/emre/scolaris/internal/pkg/apperrors"
)

// stubAdmissionService scripts service outcomes so handler tests don't need
// the persistence stack.
type stubAdmissionService struct {
	submitResult  *models.Admission
	submitErr     error
	transitionErr error

	submittedSchoolID  string
	submittedApplicant models.Applicant
	submittedGuardians []models.AdmissionGuardian
}

func (s *stubAdmissionService) Submit(_ context.Context, schoolID string, applicant models.Applicant, guardians []models.AdmissionGuardian, _ string) (*models.Admission, error) {
	s.submittedSchoolID = schoolID
	s.submittedApplicant = applicant
	s.submittedGuardians = guardians
	return s.submitResult, s.submitErr
}

func (s *stubAdmissionService) GetByID(context.Context, string, string) (*models.Admission, error) {
	return nil, apperrors.ErrAdmissionNotFound
}

func (s *stubAdmissionService) List(context.Context, string, *models.AdmissionStatus, int, int) ([]models.Admission, int, error) {
	return nil, 0, nil
}

func (s *stubAdmissionService) Transition(context.Context, string, string, models.AdmissionStatus, string, string) (*models.Admission, error) {
	return nil, s.transitionErr
}

func (s *stubAdmissionService) RecordAssessment(context.Context, string, string, *float64, string) (*models.Admission, error) {
	return nil, nil
}

func (s *stubAdmissionService) AddDocument(context.Context, string, string, string, string, string) (*models.Admission, error) {
	return nil, nil
}

func (s *stubAdmissionService) Convert(context.Context, string, string) (*models.Student, []models.Guardian, error) {
	return nil, nil, nil
}

func (s *stubAdmissionService) Delete(context.Context, string, string) error {
	return nil
}

func newAdmissionTestRouter(stub *stubAdmissionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := NewAdmissionController(stub, nil)
	router := gin.New()
	router.POST("/schools/:schoolId/admissions", controller.SubmitAdmission)
	router.POST("/schools/:schoolId/admissions/:id/transition", controller.TransitionAdmission)
	return router
}

func submissionBody() map[string]interface{} {
	return map[string]interface{}{
		"applicant": map[string]interface{}{
			"firstName":          "Leyla",
			"lastName":           "Kaya",
			"dateOfBirth":        "2018-04-20",
			"gender":             "female",
			"nationality":        "TR",
			"appliedGrade":       "grade-2",
			"preferredStartDate": "2026-09-01",
		},
		"guardians": []map[string]interface{}{
			{"fullName": "Murat Kaya", "relationship": "father", "email": "murat.kaya@example.com", "isPrimary": true},
		},
		"previousSchool": "Sunrise Primary",
	}
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitAdmissionEndpoint(t *testing.T) {
	stub := &stubAdmissionService{
		submitResult: &models.Admission{
			ID:                "adm-1",
			SchoolID:          "school-1",
			ApplicationNumber: "ADM-2026-4F2A1C",
			Status:            models.AdmissionSubmitted,
			Applicant: models.Applicant{
				FirstName:          "Leyla",
				LastName:           "Kaya",
				DateOfBirth:        time.Date(2018, 4, 20, 0, 0, 0, 0, time.UTC),
				PreferredStartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			},
			Guardians: []models.AdmissionGuardian{
				{FullName: "Murat Kaya", Email: "murat.kaya@example.com", IsPrimary: true},
			},
		},
	}
	router := newAdmissionTestRouter(stub)

	rec := postJSON(t, router, "/schools/school-1/admissions", submissionBody())
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.StructuredResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ADM-2026-4F2A1C", data["applicationNumber"])
	assert.Equal(t, "submitted", data["status"])
	assert.Equal(t, "2018-04-20", data["dateOfBirth"])

	// The handler hands the parsed values through to the service untouched.
	assert.Equal(t, "school-1", stub.submittedSchoolID)
	assert.Equal(t, "Leyla", stub.submittedApplicant.FirstName)
	require.Len(t, stub.submittedGuardians, 1)
	assert.True(t, stub.submittedGuardians[0].IsPrimary)
}

func TestSubmitAdmissionEndpointRejectsMissingGuardians(t *testing.T) {
	router := newAdmissionTestRouter(&stubAdmissionService{})

	body := submissionBody()
	delete(body, "guardians")
	rec := postJSON(t, router, "/schools/school-1/admissions", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
}

func TestSubmitAdmissionEndpointRejectsBadDate(t *testing.T) {
	router := newAdmissionTestRouter(&stubAdmissionService{})

	body := submissionBody()
	body["applicant"].(map[string]interface{})["dateOfBirth"] = "20-04-2018"
	rec := postJSON(t, router, "/schools/school-1/admissions", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "dateOfBirth", resp.Error.Field)
}

func TestTransitionAdmissionEndpointInvalidEdge(t *testing.T) {
	stub := &stubAdmissionService{
		transitionErr: apperrors.NewInvalidTransitionError("submitted", "offer_made"),
	}
	router := newAdmissionTestRouter(stub)

	rec := postJSON(t, router, "/schools/school-1/admissions/adm-1/transition", map[string]string{"status": "offer_made"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrorCodeInvalidTransition, resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "submitted", details["from"])
	assert.Equal(t, "offer_made", details["to"])
}
