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

// AttendanceController handles daily attendance operations
type AttendanceController struct {
	attendanceService services.AttendanceService
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService services.AttendanceService) *AttendanceController {
	return &AttendanceController{
		attendanceService: attendanceService,
	}
}

// RecordAttendance records a student's attendance for a day
// @Summary Record attendance
// @Description Records attendance for one student and day; re-recording the same day overwrites
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Student ID"
// @Param request body dto.RecordAttendanceRequest true "Attendance entry"
// @Success 200 {object} dto.StructuredResponse{data=dto.AttendanceResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid attendance data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /schools/{schoolId}/students/{id}/attendance [post]
func (c *AttendanceController) RecordAttendance(ctx *gin.Context) {
	var req dto.RecordAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid attendance data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "date must be YYYY-MM-DD").WithField("date")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	recordedBy := ctx.GetString(middleware.ContextUserID)
	rec, err := c.attendanceService.Record(ctx, ctx.Param("schoolId"), ctx.Param("id"), date, models.AttendanceStatus(req.Status), req.Notes, recordedBy)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toAttendanceResponse(rec), "Attendance recorded"))
}

// ListAttendance retrieves a student's attendance over a date range
// @Summary List attendance
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Student ID"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} dto.StructuredResponse{data=dto.AttendanceListResponse}
// @Router /schools/{schoolId}/students/{id}/attendance [get]
func (c *AttendanceController) ListAttendance(ctx *gin.Context) {
	from, to, ok := parseDateRange(ctx)
	if !ok {
		return
	}

	records, err := c.attendanceService.ListByStudent(ctx, ctx.Param("schoolId"), ctx.Param("id"), from, to)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		items = append(items, *toAttendanceResponse(&records[i]))
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.AttendanceListResponse{Records: items}, "Attendance retrieved"))
}

// parseDateRange reads from/to query params, defaulting to the last 30 days
func parseDateRange(ctx *gin.Context) (from, to time.Time, ok bool) {
	now := time.Now().UTC()
	from = now.AddDate(0, 0, -30)
	to = now

	var err error
	if raw := ctx.Query("from"); raw != "" {
		if from, err = helpers.ParseDate(raw); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "from must be YYYY-MM-DD").WithField("from")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return from, to, false
		}
	}
	if raw := ctx.Query("to"); raw != "" {
		if to, err = helpers.ParseDate(raw); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "to must be YYYY-MM-DD").WithField("to")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return from, to, false
		}
	}
	return from, to, true
}

// toAttendanceResponse maps a model to its API shape
func toAttendanceResponse(rec *models.AttendanceRecord) *dto.AttendanceResponse {
	return &dto.AttendanceResponse{
		ID:         rec.ID,
		StudentID:  rec.StudentID,
		Date:       helpers.FormatDate(rec.Date),
		Status:     string(rec.Status),
		Notes:      rec.Notes,
		RecordedBy: rec.RecordedBy,
		CreatedAt:  helpers.FormatTime(rec.CreatedAt),
		UpdatedAt:  helpers.FormatTime(rec.UpdatedAt),
	}
}
