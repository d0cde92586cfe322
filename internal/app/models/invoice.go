package models

import "time"

// InvoiceStatus defines the billing state of an invoice
type InvoiceStatus string

// Invoice status values
const (
	InvoiceDraft  InvoiceStatus = "draft"
	InvoiceIssued InvoiceStatus = "issued"
	InvoicePaid   InvoiceStatus = "paid"
	InvoiceVoid   InvoiceStatus = "void"
)

// InvoiceItem is a single fee line on an invoice. Amounts are in minor
// currency units (cents) to keep the arithmetic exact.
type InvoiceItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount" example:"250000"`
}

// Invoice defines a fee invoice raised against a student
type Invoice struct {
	ID            string        `json:"id" db:"id"`
	SchoolID      string        `json:"schoolId" db:"school_id"`
	StudentID     string        `json:"studentId" db:"student_id"`
	InvoiceNumber string        `json:"invoiceNumber" db:"invoice_number" example:"INV-2026-00042"`
	Status        InvoiceStatus `json:"status" db:"status"`
	DueDate       time.Time     `json:"dueDate" db:"due_date"`
	Items         []InvoiceItem `json:"items"`
	Total         int64         `json:"total" db:"total"`
	AmountPaid    int64         `json:"amountPaid" db:"amount_paid"`
	IssuedAt      *time.Time    `json:"issuedAt,omitempty" db:"issued_at"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}

// Outstanding returns the unpaid balance
func (i *Invoice) Outstanding() int64 {
	return i.Total - i.AmountPaid
}

// PaymentMethod identifies how a payment was made
type PaymentMethod string

// Payment methods
const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
	PaymentMobileMoney  PaymentMethod = "mobile_money"
)

// Payment defines a payment recorded against an invoice. Payments are records
// of money received, not gateway charges.
type Payment struct {
	ID         string        `json:"id" db:"id"`
	SchoolID   string        `json:"schoolId" db:"school_id"`
	InvoiceID  string        `json:"invoiceId" db:"invoice_id"`
	Amount     int64         `json:"amount" db:"amount"`
	Method     PaymentMethod `json:"method" db:"method"`
	Reference  string        `json:"reference,omitempty" db:"reference"`
	ReceivedBy string        `json:"receivedBy" db:"received_by"`
	ReceivedAt time.Time     `json:"receivedAt" db:"received_at"`
	CreatedAt  time.Time     `json:"createdAt" db:"created_at"`
}
