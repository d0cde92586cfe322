package dto

// InvoiceItemRequest is one fee line on a new invoice; amounts are in minor
// currency units
type InvoiceItemRequest struct {
	Description string `json:"description" binding:"required" example:"Tuition 2026/27 - Term 1"`
	Amount      int64  `json:"amount" binding:"required,gt=0" example:"250000"`
}

// CreateInvoiceRequest drafts an invoice against a student
type CreateInvoiceRequest struct {
	StudentID string               `json:"studentId" binding:"required"`
	DueDate   string               `json:"dueDate" binding:"required" example:"2026-09-15"`
	Items     []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// RecordPaymentRequest registers money received against an issued invoice
type RecordPaymentRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0" example:"100000"`
	Method    string `json:"method" binding:"required" example:"bank_transfer"`
	Reference string `json:"reference,omitempty" example:"TRF-88412"`
}

// InvoiceItemResponse echoes one fee line
type InvoiceItemResponse struct {
	Description string `json:"description" example:"Tuition 2026/27 - Term 1"`
	Amount      int64  `json:"amount" example:"250000"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            string                `json:"id"`
	StudentID     string                `json:"studentId"`
	InvoiceNumber string                `json:"invoiceNumber" example:"INV-2026-8C21D4"`
	Status        string                `json:"status" example:"issued"`
	DueDate       string                `json:"dueDate" example:"2026-09-15"`
	Items         []InvoiceItemResponse `json:"items"`
	Total         int64                 `json:"total" example:"250000"`
	AmountPaid    int64                 `json:"amountPaid" example:"100000"`
	Outstanding   int64                 `json:"outstanding" example:"150000"`
	IssuedAt      string                `json:"issuedAt,omitempty"`
	CreatedAt     string                `json:"createdAt"`
	UpdatedAt     string                `json:"updatedAt"`
}

// InvoiceListResponse represents a page of invoices
type InvoiceListResponse struct {
	Invoices   []InvoiceResponse `json:"invoices"`
	Pagination PaginationInfo    `json:"pagination"`
}

// PaymentResponse represents a recorded payment
type PaymentResponse struct {
	ID         string `json:"id"`
	InvoiceID  string `json:"invoiceId"`
	Amount     int64  `json:"amount" example:"100000"`
	Method     string `json:"method" example:"bank_transfer"`
	Reference  string `json:"reference,omitempty"`
	ReceivedBy string `json:"receivedBy"`
	ReceivedAt string `json:"receivedAt"`
}

// PaymentListResponse represents the payments against an invoice
type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
}
