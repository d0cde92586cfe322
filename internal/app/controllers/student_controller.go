package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/app/models/dto"
	"github.com/emre/scolaris/internal/app/services"
	"github.com/emre/scolaris/internal/middleware"
	"github.com/emre/scolaris/internal/pkg/helpers"
)

// StudentController handles student roster operations
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// GetStudent retrieves one student
// @Summary Get a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Student ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.StudentResponse}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /schools/{schoolId}/students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.studentService.GetByID(ctx, ctx.Param("schoolId"), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toStudentResponse(student), "Student retrieved"))
}

// ListStudents retrieves a school's students
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param grade query string false "Filter by grade"
// @Param status query string false "Filter by enrollment status" example(active)
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.StructuredResponse{data=dto.StudentListResponse}
// @Router /schools/{schoolId}/students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	var status models.StudentStatus
	if raw := ctx.Query("status"); raw != "" {
		parsed, err := models.ParseStudentStatus(raw)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error()).WithField("status")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		status = parsed
	}

	page, pageSize := helpers.ParsePagination(ctx)
	students, total, err := c.studentService.List(ctx, ctx.Param("schoolId"), ctx.Query("grade"), status, page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		items = append(items, *toStudentResponse(&students[i]))
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.StudentListResponse{
		Students:   items,
		Pagination: dto.NewPaginationInfo(page, pageSize, total),
	}, "Students retrieved"))
}

// UpdateStudent modifies a student's details
// @Summary Update a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Student details"
// @Success 200 {object} dto.StructuredResponse{data=dto.StudentResponse}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /schools/{schoolId}/students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	student, err := c.studentService.GetByID(ctx, ctx.Param("schoolId"), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Grade = req.Grade
	if req.Nationality != "" {
		student.Nationality = req.Nationality
	}

	student, err = c.studentService.Update(ctx, student)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toStudentResponse(student), "Student updated"))
}

// UpdateStudentStatus changes a student's enrollment status
// @Summary Update a student's enrollment status
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Student ID"
// @Param request body dto.UpdateStudentStatusRequest true "New status"
// @Success 200 {object} dto.StructuredResponse{data=dto.StudentResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /schools/{schoolId}/students/{id}/status [put]
func (c *StudentController) UpdateStudentStatus(ctx *gin.Context) {
	var req dto.UpdateStudentStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	student, err := c.studentService.UpdateStatus(ctx, ctx.Param("schoolId"), ctx.Param("id"), models.StudentStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toStudentResponse(student), "Student status updated"))
}

// toStudentResponse maps a model to its API shape
func toStudentResponse(s *models.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		ID:             s.ID,
		SchoolID:       s.SchoolID,
		AdmissionID:    s.AdmissionID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		DateOfBirth:    helpers.FormatDate(s.DateOfBirth),
		Gender:         s.Gender,
		Nationality:    s.Nationality,
		Grade:          s.Grade,
		EnrollmentDate: helpers.FormatDate(s.EnrollmentDate),
		Status:         string(s.Status),
		GuardianIDs:    s.GuardianIDs,
		CreatedAt:      helpers.FormatTime(s.CreatedAt),
		UpdatedAt:      helpers.FormatTime(s.UpdatedAt),
	}
}
