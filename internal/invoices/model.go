package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "UNPAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusPaid          PaymentStatus = "PAID"
)

// Invoice is a billed document. Each line carries its own discount and tax
// rate; document totals aggregate the lines.
type Invoice struct {
	ID             int64           `json:"id"`
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceDate    time.Time       `json:"invoice_date"`
	DueDate        time.Time       `json:"due_date"`
	ValidityDays   int             `json:"validity_days"`
	CustomerID     int64           `json:"customer_id"`
	UserID         int64           `json:"user_id"`
	QuotationID    *int64          `json:"quotation_id,omitempty"`
	Status         InvoiceStatus   `json:"status"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Notes          *string         `json:"notes,omitempty"`
	Terms          *string         `json:"terms,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Lines          []InvoiceLine   `json:"lines,omitempty"`
}

type InvoiceLine struct {
	ID              int64           `json:"id"`
	InvoiceID       int64           `json:"invoice_id"`
	ItemID          int64           `json:"item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	LicenseType     *string         `json:"license_type,omitempty"`
	LineOrder       int             `json:"line_order"`
}

// InvoiceWithCustomer carries the customer name for list views.
type InvoiceWithCustomer struct {
	Invoice
	CustomerName string `json:"customer_name"`
}
