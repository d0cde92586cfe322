package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/pkg/apperrors"
)

// InvoiceStore is the persistence interface the billing service depends on.
// RecordPayment must apply the amount and the paid-up status flip atomically
// and fail with a conflict when the invoice is not issued or the payment
// would exceed the outstanding balance.
type InvoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, schoolID, id string) (*models.Invoice, error)
	List(ctx context.Context, schoolID, studentID string, status models.InvoiceStatus, page, pageSize int) ([]models.Invoice, int, error)
	UpdateStatus(ctx context.Context, inv *models.Invoice, expected models.InvoiceStatus) error
	RecordPayment(ctx context.Context, p *models.Payment) error
	ListPayments(ctx context.Context, schoolID, invoiceID string) ([]models.Payment, error)
}

// InvoiceService defines the interface for billing operations
type InvoiceService interface {
	CreateDraft(ctx context.Context, schoolID, studentID string, dueDate time.Time, items []models.InvoiceItem) (*models.Invoice, error)
	GetByID(ctx context.Context, schoolID, id string) (*models.Invoice, error)
	List(ctx context.Context, schoolID, studentID string, status models.InvoiceStatus, page, pageSize int) ([]models.Invoice, int, error)
	Issue(ctx context.Context, schoolID, id string) (*models.Invoice, error)
	Void(ctx context.Context, schoolID, id string) (*models.Invoice, error)
	RecordPayment(ctx context.Context, schoolID, invoiceID string, amount int64, method models.PaymentMethod, reference, receivedBy string) (*models.Payment, error)
	ListPayments(ctx context.Context, schoolID, invoiceID string) ([]models.Payment, error)
}

// invoiceServiceImpl implements InvoiceService
type invoiceServiceImpl struct {
	invoices InvoiceStore
	logger   zerolog.Logger
	now      func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoices InvoiceStore, logger zerolog.Logger) InvoiceService {
	return &invoiceServiceImpl{
		invoices: invoices,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateDraft creates a draft invoice; the total is the sum of the line items
func (s *invoiceServiceImpl) CreateDraft(ctx context.Context, schoolID, studentID string, dueDate time.Time, items []models.InvoiceItem) (*models.Invoice, error) {
	if len(items) == 0 {
		return nil, apperrors.NewValidationError("at least one invoice item is required")
	}
	var total int64
	for i, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("item %d: description is required", i+1))
		}
		if item.Amount <= 0 {
			return nil, apperrors.NewValidationError(fmt.Sprintf("item %d: amount must be positive", i+1))
		}
		total += item.Amount
	}

	now := s.now().UTC()
	inv := &models.Invoice{
		ID:            uuid.NewString(),
		SchoolID:      schoolID,
		StudentID:     studentID,
		InvoiceNumber: fmt.Sprintf("INV-%d-%s", now.Year(), strings.ToUpper(uuid.NewString()[:6])),
		Status:        models.InvoiceDraft,
		DueDate:       dueDate,
		Items:         items,
		Total:         total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("error creating invoice: %w", err)
	}
	s.logger.Info().Str("invoiceID", inv.ID).Str("invoiceNumber", inv.InvoiceNumber).Int64("total", total).Msg("Invoice drafted")
	return inv, nil
}

// GetByID retrieves an invoice
func (s *invoiceServiceImpl) GetByID(ctx context.Context, schoolID, id string) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvoiceNotFound) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("error retrieving invoice: %w", err)
	}
	return inv, nil
}

// List retrieves a school's invoices with optional student and status filters
func (s *invoiceServiceImpl) List(ctx context.Context, schoolID, studentID string, status models.InvoiceStatus, page, pageSize int) ([]models.Invoice, int, error) {
	invoices, total, err := s.invoices.List(ctx, schoolID, studentID, status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving invoices: %w", err)
	}
	return invoices, total, nil
}

// Issue moves a draft invoice to issued, making it payable
func (s *invoiceServiceImpl) Issue(ctx context.Context, schoolID, id string) (*models.Invoice, error) {
	inv, err := s.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvoiceDraft {
		return nil, apperrors.NewInvalidStateError("issuing an invoice", string(inv.Status))
	}

	now := s.now().UTC()
	inv.Status = models.InvoiceIssued
	inv.IssuedAt = &now
	inv.UpdatedAt = now
	if err := s.invoices.UpdateStatus(ctx, inv, models.InvoiceDraft); err != nil {
		return nil, err
	}
	return inv, nil
}

// Void cancels an invoice. Paid invoices cannot be voided.
func (s *invoiceServiceImpl) Void(ctx context.Context, schoolID, id string) (*models.Invoice, error) {
	inv, err := s.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvoiceDraft && inv.Status != models.InvoiceIssued {
		return nil, apperrors.NewInvalidStateError("voiding an invoice", string(inv.Status))
	}

	expected := inv.Status
	inv.Status = models.InvoiceVoid
	inv.UpdatedAt = s.now().UTC()
	if err := s.invoices.UpdateStatus(ctx, inv, expected); err != nil {
		return nil, err
	}
	return inv, nil
}

// RecordPayment registers money received against an issued invoice. The
// store applies the balance update conditionally, so an overpayment or a
// payment against a non-issued invoice comes back as a conflict even under
// concurrent cashiers.
func (s *invoiceServiceImpl) RecordPayment(ctx context.Context, schoolID, invoiceID string, amount int64, method models.PaymentMethod, reference, receivedBy string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("payment amount must be positive")
	}
	switch method {
	case models.PaymentCash, models.PaymentBankTransfer, models.PaymentCard, models.PaymentMobileMoney:
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown payment method: %q", method))
	}

	inv, err := s.GetByID(ctx, schoolID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvoiceIssued {
		return nil, apperrors.NewInvalidStateError("recording a payment", string(inv.Status))
	}
	if amount > inv.Outstanding() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("payment of %d exceeds outstanding balance of %d", amount, inv.Outstanding()))
	}

	now := s.now().UTC()
	p := &models.Payment{
		ID:         uuid.NewString(),
		SchoolID:   schoolID,
		InvoiceID:  invoiceID,
		Amount:     amount,
		Method:     method,
		Reference:  reference,
		ReceivedBy: receivedBy,
		ReceivedAt: now,
		CreatedAt:  now,
	}
	if err := s.invoices.RecordPayment(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("invoiceID", invoiceID).Int64("amount", amount).Str("method", string(method)).Msg("Payment recorded")
	return p, nil
}

// ListPayments retrieves the payments recorded against an invoice
func (s *invoiceServiceImpl) ListPayments(ctx context.Context, schoolID, invoiceID string) ([]models.Payment, error) {
	payments, err := s.invoices.ListPayments(ctx, schoolID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving payments: %w", err)
	}
	return payments, nil
}
