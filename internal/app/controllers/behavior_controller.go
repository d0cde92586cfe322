package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/app/models/dto"
	"github.com/emre/scolaris/internal/app/services"
	"github.com/emre/scolaris/internal/middleware"
	"github.com/emre/scolaris/internal/pkg/helpers"
)

// BehaviorController handles behavior note operations
type BehaviorController struct {
	behaviorService services.BehaviorService
}

// NewBehaviorController creates a new BehaviorController
func NewBehaviorController(behaviorService services.BehaviorService) *BehaviorController {
	return &BehaviorController{
		behaviorService: behaviorService,
	}
}

// CreateBehaviorNote records a behavior observation
// @Summary Create a behavior note
// @Tags behavior
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Student ID"
// @Param request body dto.CreateBehaviorNoteRequest true "Behavior note"
// @Success 201 {object} dto.StructuredResponse{data=dto.BehaviorNoteResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid note data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /schools/{schoolId}/students/{id}/behavior-notes [post]
func (c *BehaviorController) CreateBehaviorNote(ctx *gin.Context) {
	var req dto.CreateBehaviorNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid note data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "occurredAt must be RFC 3339").WithField("occurredAt")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		occurredAt = parsed
	}

	note := &models.BehaviorNote{
		SchoolID:    ctx.Param("schoolId"),
		StudentID:   ctx.Param("id"),
		Category:    models.BehaviorCategory(req.Category),
		Severity:    models.BehaviorSeverity(req.Severity),
		Description: req.Description,
		RecordedBy:  ctx.GetString(middleware.ContextUserID),
		OccurredAt:  occurredAt,
	}
	note, err := c.behaviorService.Create(ctx, note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(toBehaviorNoteResponse(note), "Behavior note created"))
}

// ListBehaviorNotes retrieves a student's behavior notes
// @Summary List behavior notes
// @Tags behavior
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Student ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.BehaviorNoteListResponse}
// @Router /schools/{schoolId}/students/{id}/behavior-notes [get]
func (c *BehaviorController) ListBehaviorNotes(ctx *gin.Context) {
	notes, err := c.behaviorService.ListByStudent(ctx, ctx.Param("schoolId"), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.BehaviorNoteResponse, 0, len(notes))
	for i := range notes {
		items = append(items, *toBehaviorNoteResponse(&notes[i]))
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.BehaviorNoteListResponse{Notes: items}, "Behavior notes retrieved"))
}

// DeleteBehaviorNote removes a behavior note. Admin only.
// @Summary Delete a behavior note
// @Tags behavior
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Student ID"
// @Param noteId path string true "Behavior note ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Behavior note not found"
// @Router /schools/{schoolId}/students/{id}/behavior-notes/{noteId} [delete]
func (c *BehaviorController) DeleteBehaviorNote(ctx *gin.Context) {
	if err := c.behaviorService.Delete(ctx, ctx.Param("schoolId"), ctx.Param("noteId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.SuccessResponse{Message: "Behavior note deleted"}, "Behavior note deleted"))
}

// toBehaviorNoteResponse maps a model to its API shape
func toBehaviorNoteResponse(n *models.BehaviorNote) *dto.BehaviorNoteResponse {
	return &dto.BehaviorNoteResponse{
		ID:          n.ID,
		StudentID:   n.StudentID,
		Category:    string(n.Category),
		Severity:    string(n.Severity),
		Description: n.Description,
		RecordedBy:  n.RecordedBy,
		OccurredAt:  helpers.FormatTime(n.OccurredAt),
		CreatedAt:   helpers.FormatTime(n.CreatedAt),
	}
}
