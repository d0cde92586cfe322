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

// GuardianController handles guardian directory operations
type GuardianController struct {
	guardianService services.GuardianService
}

// NewGuardianController creates a new GuardianController
func NewGuardianController(guardianService services.GuardianService) *GuardianController {
	return &GuardianController{
		guardianService: guardianService,
	}
}

// GetGuardian retrieves one guardian
// @Summary Get a guardian
// @Tags guardians
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Guardian ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.GuardianResponse}
// @Failure 404 {object} dto.ErrorResponse "Guardian not found"
// @Router /schools/{schoolId}/guardians/{id} [get]
func (c *GuardianController) GetGuardian(ctx *gin.Context) {
	g, err := c.guardianService.GetByID(ctx, ctx.Param("schoolId"), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toGuardianResponse(g), "Guardian retrieved"))
}

// ListGuardians retrieves a school's guardians
// @Summary List guardians
// @Tags guardians
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.StructuredResponse{data=dto.GuardianListResponse}
// @Router /schools/{schoolId}/guardians [get]
func (c *GuardianController) ListGuardians(ctx *gin.Context) {
	page, pageSize := helpers.ParsePagination(ctx)
	guardians, total, err := c.guardianService.List(ctx, ctx.Param("schoolId"), page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.GuardianResponse, 0, len(guardians))
	for i := range guardians {
		items = append(items, *toGuardianResponse(&guardians[i]))
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.GuardianListResponse{
		Guardians:  items,
		Pagination: dto.NewPaginationInfo(page, pageSize, total),
	}, "Guardians retrieved"))
}

// UpdateGuardian modifies a guardian's contact details
// @Summary Update a guardian
// @Tags guardians
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Guardian ID"
// @Param request body dto.UpdateGuardianRequest true "Guardian details"
// @Success 200 {object} dto.StructuredResponse{data=dto.GuardianResponse}
// @Failure 404 {object} dto.ErrorResponse "Guardian not found"
// @Router /schools/{schoolId}/guardians/{id} [put]
func (c *GuardianController) UpdateGuardian(ctx *gin.Context) {
	var req dto.UpdateGuardianRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid guardian data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	g, err := c.guardianService.GetByID(ctx, ctx.Param("schoolId"), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	g.FullName = req.FullName
	g.Relationship = req.Relationship
	g.Phone = req.Phone

	g, err = c.guardianService.Update(ctx, g)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toGuardianResponse(g), "Guardian updated"))
}

// toGuardianResponse maps a model to its API shape
func toGuardianResponse(g *models.Guardian) *dto.GuardianResponse {
	return &dto.GuardianResponse{
		ID:           g.ID,
		SchoolID:     g.SchoolID,
		FullName:     g.FullName,
		Relationship: g.Relationship,
		Email:        g.Email,
		Phone:        g.Phone,
		CreatedAt:    helpers.FormatTime(g.CreatedAt),
		UpdatedAt:    helpers.FormatTime(g.UpdatedAt),
	}
}
