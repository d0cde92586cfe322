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

// SchoolController handles tenant school operations
type SchoolController struct {
	schoolService services.SchoolService
}

// NewSchoolController creates a new SchoolController
func NewSchoolController(schoolService services.SchoolService) *SchoolController {
	return &SchoolController{
		schoolService: schoolService,
	}
}

// CreateSchool registers a new tenant school. Admin only.
// @Summary Create a school
// @Tags schools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSchoolRequest true "School details"
// @Success 201 {object} dto.StructuredResponse{data=dto.SchoolResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid school data"
// @Failure 409 {object} dto.ErrorResponse "School code already in use"
// @Router /schools [post]
func (c *SchoolController) CreateSchool(ctx *gin.Context) {
	var req dto.CreateSchoolRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid school data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	school := &models.School{
		Name:    req.Name,
		Code:    req.Code,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
		Active:  true,
	}
	school, err := c.schoolService.Create(ctx, school)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(toSchoolResponse(school), "School created"))
}

// GetSchool retrieves one school
// @Summary Get a school
// @Tags schools
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.SchoolResponse}
// @Failure 404 {object} dto.ErrorResponse "School not found"
// @Router /schools/{schoolId} [get]
func (c *SchoolController) GetSchool(ctx *gin.Context) {
	school, err := c.schoolService.GetByID(ctx, ctx.Param("schoolId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toSchoolResponse(school), "School retrieved"))
}

// ListSchools retrieves all registered schools. Admin only.
// @Summary List schools
// @Tags schools
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=dto.SchoolListResponse}
// @Router /schools [get]
func (c *SchoolController) ListSchools(ctx *gin.Context) {
	schools, err := c.schoolService.List(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.SchoolResponse, 0, len(schools))
	for i := range schools {
		items = append(items, *toSchoolResponse(&schools[i]))
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.SchoolListResponse{Schools: items}, "Schools retrieved"))
}

// UpdateSchool modifies a school's details. Admin only.
// @Summary Update a school
// @Tags schools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param request body dto.UpdateSchoolRequest true "School details"
// @Success 200 {object} dto.StructuredResponse{data=dto.SchoolResponse}
// @Failure 404 {object} dto.ErrorResponse "School not found"
// @Router /schools/{schoolId} [put]
func (c *SchoolController) UpdateSchool(ctx *gin.Context) {
	var req dto.UpdateSchoolRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid school data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	school, err := c.schoolService.GetByID(ctx, ctx.Param("schoolId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	school.Name = req.Name
	school.Address = req.Address
	school.Phone = req.Phone
	school.Email = req.Email
	if req.Active != nil {
		school.Active = *req.Active
	}

	school, err = c.schoolService.Update(ctx, school)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toSchoolResponse(school), "School updated"))
}

// toSchoolResponse maps a model to its API shape
func toSchoolResponse(s *models.School) *dto.SchoolResponse {
	return &dto.SchoolResponse{
		ID:        s.ID,
		Name:      s.Name,
		Code:      s.Code,
		Address:   s.Address,
		Phone:     s.Phone,
		Email:     s.Email,
		Active:    s.Active,
		CreatedAt: helpers.FormatTime(s.CreatedAt),
		UpdatedAt: helpers.FormatTime(s.UpdatedAt),
	}
}
