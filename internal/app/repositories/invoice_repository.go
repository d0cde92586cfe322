package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/pkg/apperrors"
	"github.com/emre/scolaris/internal/pkg/logger"
)

// InvoiceRepository handles invoice and payment database operations
type InvoiceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var invoiceColumns = []string{
	"id", "school_id", "student_id", "invoice_number", "status", "due_date",
	"items", "total", "amount_paid", "issued_at", "created_at", "updated_at",
}

var paymentColumns = []string{
	"id", "school_id", "invoice_id", "amount", "method", "reference",
	"received_by", "received_at", "created_at",
}

// Create inserts a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice items: %w", err)
	}

	sql, args, err := r.sb.Insert("invoices").
		Columns(invoiceColumns...).
		Values(inv.ID, inv.SchoolID, inv.StudentID, inv.InvoiceNumber, inv.Status, inv.DueDate,
			items, inv.Total, inv.AmountPaid, inv.IssuedAt, inv.CreatedAt, inv.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create invoice query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if isDuplicateKeyError(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		logger.Error().Err(err).Str("invoiceID", inv.ID).Msg("Error executing create invoice query")
		return fmt.Errorf("error creating invoice: %w", err)
	}
	return nil
}

// GetByID retrieves an invoice by school and id
func (r *InvoiceRepository) GetByID(ctx context.Context, schoolID, id string) (*models.Invoice, error) {
	sql, args, err := r.sb.Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"school_id": schoolID, "id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get invoice query: %w", err)
	}

	inv, err := r.scanInvoice(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		logger.Error().Err(err).Str("invoiceID", id).Msg("Error scanning invoice row")
		return nil, fmt.Errorf("error getting invoice by ID: %w", err)
	}
	return inv, nil
}

// List retrieves a school's invoices with optional student/status filters
func (r *InvoiceRepository) List(ctx context.Context, schoolID, studentID string, status models.InvoiceStatus, page, pageSize int) ([]models.Invoice, int, error) {
	where := squirrel.And{squirrel.Eq{"school_id": schoolID}}
	if studentID != "" {
		where = append(where, squirrel.Eq{"student_id": studentID})
	}
	if status != "" {
		where = append(where, squirrel.Eq{"status": status})
	}

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("invoices").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count invoices query: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	if total == 0 {
		return []models.Invoice{}, 0, nil
	}

	sql, args, err := r.sb.Select(invoiceColumns...).
		From("invoices").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list invoices query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list invoices query")
		return nil, 0, fmt.Errorf("error querying invoices: %w", err)
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		inv, err := r.scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning invoice row: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, total, nil
}

// UpdateStatus moves an invoice between billing states with a guard on the
// expected current status (draft -> issued, issued -> void, etc.)
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, inv *models.Invoice, expected models.InvoiceStatus) error {
	sql, args, err := r.sb.Update("invoices").
		SetMap(map[string]interface{}{
			"status":     inv.Status,
			"issued_at":  inv.IssuedAt,
			"updated_at": inv.UpdatedAt,
		}).
		Where(squirrel.Eq{"school_id": inv.SchoolID, "id": inv.ID, "status": expected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update invoice status query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("invoiceID", inv.ID).Msg("Error executing update invoice status query")
		return fmt.Errorf("error updating invoice status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("invoice %s was modified concurrently", inv.ID))
	}
	return nil
}

// RecordPayment stores a payment and applies it to the invoice balance in one
// transaction. The balance update is conditioned on the invoice still being
// issued and the payment not exceeding the outstanding amount.
func (r *InvoiceRepository) RecordPayment(ctx context.Context, p *models.Payment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin payment transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updateSql, updateArgs, err := r.sb.Update("invoices").
		Set("amount_paid", squirrel.Expr("amount_paid + ?", p.Amount)).
		Set("status", squirrel.Expr("CASE WHEN amount_paid + ? >= total THEN 'paid' ELSE status END", p.Amount)).
		Set("updated_at", p.ReceivedAt).
		Where(squirrel.Eq{"school_id": p.SchoolID, "id": p.InvoiceID, "status": models.InvoiceIssued}).
		Where(squirrel.Expr("amount_paid + ? <= total", p.Amount)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build apply payment query: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, updateSql, updateArgs...)
	if err != nil {
		logger.Error().Err(err).Str("invoiceID", p.InvoiceID).Msg("Error applying payment to invoice")
		return fmt.Errorf("error applying payment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("invoice %s cannot accept this payment", p.InvoiceID))
	}

	insertSql, insertArgs, err := r.sb.Insert("payments").
		Columns(paymentColumns...).
		Values(p.ID, p.SchoolID, p.InvoiceID, p.Amount, p.Method, p.Reference,
			nullIfEmpty(p.ReceivedBy), p.ReceivedAt, p.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert payment query: %w", err)
	}
	if _, err := tx.Exec(ctx, insertSql, insertArgs...); err != nil {
		logger.Error().Err(err).Str("paymentID", p.ID).Msg("Error inserting payment")
		return fmt.Errorf("error inserting payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit payment transaction: %w", err)
	}
	return nil
}

// ListPayments retrieves all payments against an invoice, newest first
func (r *InvoiceRepository) ListPayments(ctx context.Context, schoolID, invoiceID string) ([]models.Payment, error) {
	sql, args, err := r.sb.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"school_id": schoolID, "invoice_id": invoiceID}).
		OrderBy("received_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list payments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list payments query")
		return nil, fmt.Errorf("error querying payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p := models.Payment{}
		var receivedBy *string
		if err := rows.Scan(&p.ID, &p.SchoolID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference,
			&receivedBy, &p.ReceivedAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning payment row: %w", err)
		}
		if receivedBy != nil {
			p.ReceivedBy = *receivedBy
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, nil
}

func (r *InvoiceRepository) scanInvoice(row rowScanner) (*models.Invoice, error) {
	inv := &models.Invoice{}
	var items []byte
	err := row.Scan(
		&inv.ID, &inv.SchoolID, &inv.StudentID, &inv.InvoiceNumber, &inv.Status, &inv.DueDate,
		&items, &inv.Total, &inv.AmountPaid, &inv.IssuedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invoice items: %w", err)
	}
	return inv, nil
}
