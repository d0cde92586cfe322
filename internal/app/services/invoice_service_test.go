package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/pkg/apperrors"
)

// fakeInvoiceStore mirrors the Postgres repository in memory, including the
// atomic apply-payment semantics: the balance update, the paid flip and the
// payment row land together or not at all.
type fakeInvoiceStore struct {
	byID     map[string]*models.Invoice
	payments []models.Payment
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{byID: map[string]*models.Invoice{}}
}

func (f *fakeInvoiceStore) Create(_ context.Context, inv *models.Invoice) error {
	cp := *inv
	f.byID[inv.ID] = &cp
	return nil
}

func (f *fakeInvoiceStore) GetByID(_ context.Context, schoolID, id string) (*models.Invoice, error) {
	stored, ok := f.byID[id]
	if !ok || stored.SchoolID != schoolID {
		return nil, apperrors.ErrInvoiceNotFound
	}
	cp := *stored
	return &cp, nil
}

func (f *fakeInvoiceStore) List(_ context.Context, schoolID, studentID string, status models.InvoiceStatus, _, _ int) ([]models.Invoice, int, error) {
	var out []models.Invoice
	for _, inv := range f.byID {
		if inv.SchoolID != schoolID {
			continue
		}
		if studentID != "" && inv.StudentID != studentID {
			continue
		}
		if status != "" && inv.Status != status {
			continue
		}
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (f *fakeInvoiceStore) UpdateStatus(_ context.Context, inv *models.Invoice, expected models.InvoiceStatus) error {
	stored, ok := f.byID[inv.ID]
	if !ok {
		return apperrors.ErrInvoiceNotFound
	}
	if stored.Status != expected {
		return apperrors.NewConflictError(fmt.Sprintf("invoice %s was modified concurrently", inv.ID))
	}
	stored.Status = inv.Status
	stored.IssuedAt = inv.IssuedAt
	stored.UpdatedAt = inv.UpdatedAt
	return nil
}

func (f *fakeInvoiceStore) RecordPayment(_ context.Context, p *models.Payment) error {
	stored, ok := f.byID[p.InvoiceID]
	if !ok || stored.SchoolID != p.SchoolID {
		return apperrors.NewConflictError(fmt.Sprintf("invoice %s cannot accept this payment", p.InvoiceID))
	}
	if stored.Status != models.InvoiceIssued || stored.AmountPaid+p.Amount > stored.Total {
		return apperrors.NewConflictError(fmt.Sprintf("invoice %s cannot accept this payment", p.InvoiceID))
	}
	stored.AmountPaid += p.Amount
	if stored.AmountPaid >= stored.Total {
		stored.Status = models.InvoicePaid
	}
	f.payments = append(f.payments, *p)
	return nil
}

func (f *fakeInvoiceStore) ListPayments(_ context.Context, schoolID, invoiceID string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.SchoolID == schoolID && p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestInvoiceService(t *testing.T) (*invoiceServiceImpl, *fakeInvoiceStore) {
	t.Helper()
	store := newFakeInvoiceStore()
	svc := NewInvoiceService(store, zerolog.Nop()).(*invoiceServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC) }
	return svc, store
}

var testDueDate = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func testItems() []models.InvoiceItem {
	return []models.InvoiceItem{
		{Description: "Tuition Q3", Amount: 250000},
		{Description: "Lunch plan", Amount: 30000},
	}
}

func TestCreateDraftTotalsItems(t *testing.T) {
	svc, _ := newTestInvoiceService(t)

	inv, err := svc.CreateDraft(context.Background(), testSchoolID, "student-1", testDueDate, testItems())
	require.NoError(t, err)

	assert.Equal(t, models.InvoiceDraft, inv.Status)
	assert.Equal(t, int64(280000), inv.Total)
	assert.Equal(t, int64(0), inv.AmountPaid)
	assert.True(t, strings.HasPrefix(inv.InvoiceNumber, "INV-2026-"), inv.InvoiceNumber)
	assert.Nil(t, inv.IssuedAt)
}

func TestCreateDraftValidation(t *testing.T) {
	svc, _ := newTestInvoiceService(t)
	ctx := context.Background()

	_, err := svc.CreateDraft(ctx, testSchoolID, "student-1", testDueDate, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.CreateDraft(ctx, testSchoolID, "student-1", testDueDate, []models.InvoiceItem{{Description: "", Amount: 100}})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.CreateDraft(ctx, testSchoolID, "student-1", testDueDate, []models.InvoiceItem{{Description: "Tuition", Amount: 0}})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestIssueDraftInvoice(t *testing.T) {
	svc, _ := newTestInvoiceService(t)
	ctx := context.Background()

	inv, err := svc.CreateDraft(ctx, testSchoolID, "student-1", testDueDate, testItems())
	require.NoError(t, err)

	issued, err := svc.Issue(ctx, testSchoolID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceIssued, issued.Status)
	require.NotNil(t, issued.IssuedAt)
	assert.Equal(t, svc.now().UTC(), *issued.IssuedAt)

	// Issuing twice is not a valid move.
	_, err = svc.Issue(ctx, testSchoolID, inv.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestVoidRules(t *testing.T) {
	svc, _ := newTestInvoiceService(t)
	ctx := context.Background()

	draft, err := svc.CreateDraft(ctx, testSchoolID, "student-1", testDueDate, testItems())
	require.NoError(t, err)
	voided, err := svc.Void(ctx, testSchoolID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceVoid, voided.Status)

	// Voiding an already-void invoice fails.
	_, err = svc.Void(ctx, testSchoolID, draft.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	// An issued invoice can still be voided.
	issued, err := svc.CreateDraft(ctx, testSchoolID, "student-1", testDueDate, testItems())
	require.NoError(t, err)
	_, err = svc.Issue(ctx, testSchoolID, issued.ID)
	require.NoError(t, err)
	_, err = svc.Void(ctx, testSchoolID, issued.ID)
	assert.NoError(t, err)

	// A paid invoice cannot.
	paid, err := svc.CreateDraft(ctx, testSchoolID, "student-1", testDueDate, testItems())
	require.NoError(t, err)
	_, err = svc.Issue(ctx, testSchoolID, paid.ID)
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, testSchoolID, paid.ID, paid.Total, models.PaymentBankTransfer, "tx-1", "cashier-1")
	require.NoError(t, err)
	_, err = svc.Void(ctx, testSchoolID, paid.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestRecordPaymentLifecycle(t *testing.T) {
	svc, store := newTestInvoiceService(t)
	ctx := context.Background()

	inv, err := svc.CreateDraft(ctx, testSchoolID, "student-1", testDueDate, testItems())
	require.NoError(t, err)
	_, err = svc.Issue(ctx, testSchoolID, inv.ID)
	require.NoError(t, err)

	// Partial payment leaves the invoice issued.
	p1, err := svc.RecordPayment(ctx, testSchoolID, inv.ID, 100000, models.PaymentCash, "", "cashier-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), p1.Amount)

	current, err := svc.GetByID(ctx, testSchoolID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceIssued, current.Status)
	assert.Equal(t, int64(180000), current.Outstanding())

	// Settling the balance flips the invoice to paid.
	_, err = svc.RecordPayment(ctx, testSchoolID, inv.ID, 180000, models.PaymentMobileMoney, "mm-42", "cashier-2")
	require.NoError(t, err)

	current, err = svc.GetByID(ctx, testSchoolID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, current.Status)
	assert.Equal(t, int64(0), current.Outstanding())

	payments, err := svc.ListPayments(ctx, testSchoolID, inv.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Len(t, store.payments, 2)
}

func TestRecordPaymentValidation(t *testing.T) {
	svc, _ := newTestInvoiceService(t)
	ctx := context.Background()

	inv, err := svc.CreateDraft(ctx, testSchoolID, "student-1", testDueDate, testItems())
	require.NoError(t, err)

	// Draft invoices do not accept payments.
	_, err = svc.RecordPayment(ctx, testSchoolID, inv.ID, 1000, models.PaymentCash, "", "cashier-1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = svc.Issue(ctx, testSchoolID, inv.ID)
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, testSchoolID, inv.ID, 0, models.PaymentCash, "", "cashier-1")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.RecordPayment(ctx, testSchoolID, inv.ID, 1000, models.PaymentMethod("crypto"), "", "cashier-1")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	// Overpayment is refused and leaves the balance unchanged.
	_, err = svc.RecordPayment(ctx, testSchoolID, inv.ID, inv.Total+1, models.PaymentCash, "", "cashier-1")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	current, err := svc.GetByID(ctx, testSchoolID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), current.AmountPaid)
}
