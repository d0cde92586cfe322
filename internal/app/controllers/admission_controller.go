package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/app/models/dto"
	"github.com/emre/scolaris/internal/app/services"
	"github.com/emre/scolaris/internal/middleware"
	"github.com/emre/scolaris/internal/pkg/filestorage"
	"github.com/emre/scolaris/internal/pkg/helpers"
)

// AdmissionController handles the admission application lifecycle
type AdmissionController struct {
	admissionService services.AdmissionService
	fileStorage      filestorage.FileStorage
}

// NewAdmissionController creates a new AdmissionController
func NewAdmissionController(admissionService services.AdmissionService, fileStorage filestorage.FileStorage) *AdmissionController {
	return &AdmissionController{
		admissionService: admissionService,
		fileStorage:      fileStorage,
	}
}

// SubmitAdmission handles a new application. This endpoint is public: families
// apply without an account.
// @Summary Submit an admission application
// @Description Registers a new application for a school; the application starts in status submitted
// @Tags admissions
// @Accept json
// @Produce json
// @Param schoolId path string true "School ID"
// @Param request body dto.SubmitAdmissionRequest true "Application details"
// @Success 201 {object} dto.StructuredResponse{data=dto.AdmissionResponse} "Application submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid application data"
// @Failure 404 {object} dto.ErrorResponse "School not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schools/{schoolId}/admissions [post]
func (c *AdmissionController) SubmitAdmission(ctx *gin.Context) {
	var req dto.SubmitAdmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	dateOfBirth, err := helpers.ParseDate(req.Applicant.DateOfBirth)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "dateOfBirth must be YYYY-MM-DD").WithField("dateOfBirth")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	startDate, err := helpers.ParseDate(req.Applicant.PreferredStartDate)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "preferredStartDate must be YYYY-MM-DD").WithField("preferredStartDate")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	applicant := models.Applicant{
		FirstName:          req.Applicant.FirstName,
		LastName:           req.Applicant.LastName,
		DateOfBirth:        dateOfBirth,
		Gender:             req.Applicant.Gender,
		Nationality:        req.Applicant.Nationality,
		AppliedGrade:       req.Applicant.AppliedGrade,
		PreferredStartDate: startDate,
	}
	guardians := make([]models.AdmissionGuardian, 0, len(req.Guardians))
	for _, g := range req.Guardians {
		guardians = append(guardians, models.AdmissionGuardian{
			FullName:     g.FullName,
			Relationship: g.Relationship,
			Email:        g.Email,
			Phone:        g.Phone,
			IsPrimary:    g.IsPrimary,
		})
	}

	adm, err := c.admissionService.Submit(ctx, ctx.Param("schoolId"), applicant, guardians, req.PreviousSchool)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(toAdmissionResponse(adm), "Application submitted"))
}

// GetAdmission retrieves one application
// @Summary Get an admission application
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Admission ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.AdmissionResponse}
// @Failure 404 {object} dto.ErrorResponse "Admission not found"
// @Router /schools/{schoolId}/admissions/{id} [get]
func (c *AdmissionController) GetAdmission(ctx *gin.Context) {
	adm, err := c.admissionService.GetByID(ctx, ctx.Param("schoolId"), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toAdmissionResponse(adm), "Admission retrieved"))
}

// ListAdmissions retrieves a school's applications
// @Summary List admission applications
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param status query string false "Filter by status" example(under_review)
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.StructuredResponse{data=dto.AdmissionListResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown status filter"
// @Router /schools/{schoolId}/admissions [get]
func (c *AdmissionController) ListAdmissions(ctx *gin.Context) {
	var statusFilter *models.AdmissionStatus
	if raw := ctx.Query("status"); raw != "" {
		status, err := models.ParseAdmissionStatus(raw)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error()).WithField("status")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		statusFilter = &status
	}

	page, pageSize := helpers.ParsePagination(ctx)
	admissions, total, err := c.admissionService.List(ctx, ctx.Param("schoolId"), statusFilter, page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.AdmissionResponse, 0, len(admissions))
	for i := range admissions {
		items = append(items, *toAdmissionResponse(&admissions[i]))
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.AdmissionListResponse{
		Admissions: items,
		Pagination: dto.NewPaginationInfo(page, pageSize, total),
	}, "Admissions retrieved"))
}

// TransitionAdmission moves an application to a new status
// @Summary Transition an admission application
// @Description Moves the application along a permitted edge of the status machine
// @Tags admissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Admission ID"
// @Param request body dto.TransitionAdmissionRequest true "Target status"
// @Success 200 {object} dto.StructuredResponse{data=dto.AdmissionResponse}
// @Failure 400 {object} dto.ErrorResponse "Transition not permitted from the current status"
// @Failure 404 {object} dto.ErrorResponse "Admission not found"
// @Failure 409 {object} dto.ErrorResponse "Lost a concurrent status update"
// @Router /schools/{schoolId}/admissions/{id}/transition [post]
func (c *AdmissionController) TransitionAdmission(ctx *gin.Context) {
	var req dto.TransitionAdmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid transition request").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	actorID := ctx.GetString(middleware.ContextUserID)
	adm, err := c.admissionService.Transition(ctx, ctx.Param("schoolId"), ctx.Param("id"), models.AdmissionStatus(req.Status), actorID, req.Notes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toAdmissionResponse(adm), "Admission transitioned"))
}

// RecordAssessment stores the assessment outcome on a scheduled application
// @Summary Record an assessment outcome
// @Tags admissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Admission ID"
// @Param request body dto.RecordAssessmentRequest true "Assessment outcome"
// @Success 200 {object} dto.StructuredResponse{data=dto.AdmissionResponse}
// @Failure 400 {object} dto.ErrorResponse "Admission is not in assessment_scheduled"
// @Failure 404 {object} dto.ErrorResponse "Admission not found"
// @Router /schools/{schoolId}/admissions/{id}/assessment [post]
func (c *AdmissionController) RecordAssessment(ctx *gin.Context) {
	var req dto.RecordAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid assessment data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	adm, err := c.admissionService.RecordAssessment(ctx, ctx.Param("schoolId"), ctx.Param("id"), req.Score, req.Notes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toAdmissionResponse(adm), "Assessment recorded"))
}

// AddDocument uploads a document and attaches it to the application
// @Summary Attach a document to an admission application
// @Tags admissions
// @Accept multipart/form-data
// @Produce json
// @Param schoolId path string true "School ID"
// @Param id path string true "Admission ID"
// @Param type formData string true "Document type" example(birth_certificate)
// @Param file formData file true "Document file"
// @Success 200 {object} dto.StructuredResponse{data=dto.AdmissionResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing file or document type, or admission is terminal"
// @Failure 404 {object} dto.ErrorResponse "Admission not found"
// @Router /schools/{schoolId}/admissions/{id}/documents [post]
func (c *AdmissionController) AddDocument(ctx *gin.Context) {
	docType := ctx.PostForm("type")
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "A document file is required").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	storageKey, err := c.fileStorage.SaveFileWithPath(fileHeader, "admissions/"+ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	adm, err := c.admissionService.AddDocument(ctx, ctx.Param("schoolId"), ctx.Param("id"), docType, fileHeader.Filename, storageKey)
	if err != nil {
		// The admission rejected the document; don't leave the file behind
		_ = c.fileStorage.DeleteFile(storageKey)
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toAdmissionResponse(adm), "Document attached"))
}

// ConvertAdmission turns an accepted application into a student record
// @Summary Convert an accepted admission to a student
// @Description Creates the student and linked guardians, then marks the application converted
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Admission ID"
// @Success 201 {object} dto.StructuredResponse{data=dto.ConvertAdmissionResponse}
// @Failure 400 {object} dto.ErrorResponse "Admission is not in offer_accepted"
// @Failure 404 {object} dto.ErrorResponse "Admission not found"
// @Failure 409 {object} dto.ErrorResponse "Lost a concurrent conversion"
// @Router /schools/{schoolId}/admissions/{id}/convert [post]
func (c *AdmissionController) ConvertAdmission(ctx *gin.Context) {
	student, guardians, err := c.admissionService.Convert(ctx, ctx.Param("schoolId"), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	guardianItems := make([]dto.GuardianResponse, 0, len(guardians))
	for i := range guardians {
		guardianItems = append(guardianItems, *toGuardianResponse(&guardians[i]))
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.ConvertAdmissionResponse{
		Student:   *toStudentResponse(student),
		Guardians: guardianItems,
	}, "Admission converted"))
}

// DeleteAdmission removes an application. Admin only.
// @Summary Delete an admission application
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Admission ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Admission not found"
// @Router /schools/{schoolId}/admissions/{id} [delete]
func (c *AdmissionController) DeleteAdmission(ctx *gin.Context) {
	if err := c.admissionService.Delete(ctx, ctx.Param("schoolId"), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.SuccessResponse{Message: "Admission deleted"}, "Admission deleted"))
}

// toAdmissionResponse maps a model to its API shape
func toAdmissionResponse(adm *models.Admission) *dto.AdmissionResponse {
	guardians := make([]dto.AdmissionGuardianResponse, 0, len(adm.Guardians))
	for _, g := range adm.Guardians {
		guardians = append(guardians, dto.AdmissionGuardianResponse{
			FullName:     g.FullName,
			Relationship: g.Relationship,
			Email:        g.Email,
			Phone:        g.Phone,
			IsPrimary:    g.IsPrimary,
		})
	}
	documents := make([]dto.AdmissionDocumentResponse, 0, len(adm.Documents))
	for _, d := range adm.Documents {
		documents = append(documents, dto.AdmissionDocumentResponse{
			Type:       d.Type,
			Filename:   d.Filename,
			StorageKey: d.StorageKey,
			UploadedAt: helpers.FormatTime(d.UploadedAt),
		})
	}

	resp := &dto.AdmissionResponse{
		ID:                 adm.ID,
		SchoolID:           adm.SchoolID,
		ApplicationNumber:  adm.ApplicationNumber,
		Status:             string(adm.Status),
		FirstName:          adm.Applicant.FirstName,
		LastName:           adm.Applicant.LastName,
		DateOfBirth:        helpers.FormatDate(adm.Applicant.DateOfBirth),
		Gender:             adm.Applicant.Gender,
		Nationality:        adm.Applicant.Nationality,
		AppliedGrade:       adm.Applicant.AppliedGrade,
		PreferredStartDate: helpers.FormatDate(adm.Applicant.PreferredStartDate),
		PreviousSchool:     adm.PreviousSchool,
		Guardians:          guardians,
		Documents:          documents,
		AssessmentScore:    adm.AssessmentScore,
		AssessmentNotes:    adm.AssessmentNotes,
		DecisionNotes:      adm.DecisionNotes,
		DecisionBy:         adm.DecisionBy,
		StudentID:          adm.StudentID,
		CreatedAt:          helpers.FormatTime(adm.CreatedAt),
		UpdatedAt:          helpers.FormatTime(adm.UpdatedAt),
	}
	if adm.DecisionDate != nil {
		resp.DecisionDate = helpers.FormatTime(*adm.DecisionDate)
	}
	return resp
}
