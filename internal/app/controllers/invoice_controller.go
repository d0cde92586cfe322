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

// InvoiceController handles billing operations
type InvoiceController struct {
	invoiceService services.InvoiceService
}

// NewInvoiceController creates a new InvoiceController
func NewInvoiceController(invoiceService services.InvoiceService) *InvoiceController {
	return &InvoiceController{
		invoiceService: invoiceService,
	}
}

// CreateInvoice drafts an invoice against a student
// @Summary Create a draft invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param request body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.StructuredResponse{data=dto.InvoiceResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid invoice data"
// @Router /schools/{schoolId}/invoices [post]
func (c *InvoiceController) CreateInvoice(ctx *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid invoice data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	dueDate, err := helpers.ParseDate(req.DueDate)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "dueDate must be YYYY-MM-DD").WithField("dueDate")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	items := make([]models.InvoiceItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.InvoiceItem{Description: item.Description, Amount: item.Amount})
	}

	inv, err := c.invoiceService.CreateDraft(ctx, ctx.Param("schoolId"), req.StudentID, dueDate, items)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(toInvoiceResponse(inv), "Invoice drafted"))
}

// GetInvoice retrieves one invoice
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.InvoiceResponse}
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Router /schools/{schoolId}/invoices/{id} [get]
func (c *InvoiceController) GetInvoice(ctx *gin.Context) {
	inv, err := c.invoiceService.GetByID(ctx, ctx.Param("schoolId"), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toInvoiceResponse(inv), "Invoice retrieved"))
}

// ListInvoices retrieves a school's invoices
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status" example(issued)
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.StructuredResponse{data=dto.InvoiceListResponse}
// @Router /schools/{schoolId}/invoices [get]
func (c *InvoiceController) ListInvoices(ctx *gin.Context) {
	page, pageSize := helpers.ParsePagination(ctx)
	invoices, total, err := c.invoiceService.List(ctx, ctx.Param("schoolId"), ctx.Query("studentId"), models.InvoiceStatus(ctx.Query("status")), page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, *toInvoiceResponse(&invoices[i]))
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.InvoiceListResponse{
		Invoices:   items,
		Pagination: dto.NewPaginationInfo(page, pageSize, total),
	}, "Invoices retrieved"))
}

// IssueInvoice moves a draft invoice to issued
// @Summary Issue an invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.InvoiceResponse}
// @Failure 400 {object} dto.ErrorResponse "Invoice is not a draft"
// @Failure 409 {object} dto.ErrorResponse "Lost a concurrent status update"
// @Router /schools/{schoolId}/invoices/{id}/issue [post]
func (c *InvoiceController) IssueInvoice(ctx *gin.Context) {
	inv, err := c.invoiceService.Issue(ctx, ctx.Param("schoolId"), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toInvoiceResponse(inv), "Invoice issued"))
}

// VoidInvoice cancels a draft or issued invoice
// @Summary Void an invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.InvoiceResponse}
// @Failure 400 {object} dto.ErrorResponse "Invoice cannot be voided"
// @Router /schools/{schoolId}/invoices/{id}/void [post]
func (c *InvoiceController) VoidInvoice(ctx *gin.Context) {
	inv, err := c.invoiceService.Void(ctx, ctx.Param("schoolId"), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toInvoiceResponse(inv), "Invoice voided"))
}

// RecordPayment registers money received against an issued invoice
// @Summary Record a payment
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Invoice ID"
// @Param request body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.StructuredResponse{data=dto.PaymentResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid payment or invoice not issued"
// @Failure 409 {object} dto.ErrorResponse "Payment lost a concurrent balance update"
// @Router /schools/{schoolId}/invoices/{id}/payments [post]
func (c *InvoiceController) RecordPayment(ctx *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid payment data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	receivedBy := ctx.GetString(middleware.ContextUserID)
	p, err := c.invoiceService.RecordPayment(ctx, ctx.Param("schoolId"), ctx.Param("id"), req.Amount, models.PaymentMethod(req.Method), req.Reference, receivedBy)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(toPaymentResponse(p), "Payment recorded"))
}

// ListPayments retrieves the payments against an invoice
// @Summary List payments
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaymentListResponse}
// @Router /schools/{schoolId}/invoices/{id}/payments [get]
func (c *InvoiceController) ListPayments(ctx *gin.Context) {
	payments, err := c.invoiceService.ListPayments(ctx, ctx.Param("schoolId"), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, *toPaymentResponse(&payments[i]))
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.PaymentListResponse{Payments: items}, "Payments retrieved"))
}

// toInvoiceResponse maps a model to its API shape
func toInvoiceResponse(inv *models.Invoice) *dto.InvoiceResponse {
	items := make([]dto.InvoiceItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, dto.InvoiceItemResponse{Description: item.Description, Amount: item.Amount})
	}

	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		StudentID:     inv.StudentID,
		InvoiceNumber: inv.InvoiceNumber,
		Status:        string(inv.Status),
		DueDate:       helpers.FormatDate(inv.DueDate),
		Items:         items,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		Outstanding:   inv.Outstanding(),
		CreatedAt:     helpers.FormatTime(inv.CreatedAt),
		UpdatedAt:     helpers.FormatTime(inv.UpdatedAt),
	}
	if inv.IssuedAt != nil {
		resp.IssuedAt = helpers.FormatTime(*inv.IssuedAt)
	}
	return resp
}

// toPaymentResponse maps a model to its API shape
func toPaymentResponse(p *models.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:         p.ID,
		InvoiceID:  p.InvoiceID,
		Amount:     p.Amount,
		Method:     string(p.Method),
		Reference:  p.Reference,
		ReceivedBy: p.ReceivedBy,
		ReceivedAt: helpers.FormatTime(p.ReceivedAt),
	}
}
