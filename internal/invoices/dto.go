package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateInvoiceRequest struct {
	CustomerID   int64                  `json:"customer_id" validate:"required,gt=0"`
	InvoiceDate  time.Time              `json:"invoice_date" validate:"required"`
	DueDate      time.Time              `json:"due_date" validate:"required"`
	ValidityDays int                    `json:"validity_days" validate:"gte=0"`
	QuotationID  *int64                 `json:"quotation_id,omitempty" validate:"omitempty,gt=0"`
	Notes        *string                `json:"notes,omitempty"`
	Terms        *string                `json:"terms,omitempty"`
	Lines        []CreateInvoiceLineReq `json:"lines" validate:"required,min=1,dive"`
}

type CreateInvoiceLineReq struct {
	ItemID          int64            `json:"item_id" validate:"required,gt=0"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	TaxPercent      decimal.Decimal  `json:"tax_percent"`
	LicenseType     *string          `json:"license_type,omitempty" validate:"omitempty,max=50"`
	LineOrder       int              `json:"line_order" validate:"gte=0"`
}

type UpdateInvoiceRequest struct {
	InvoiceDate  *time.Time              `json:"invoice_date,omitempty"`
	DueDate      *time.Time              `json:"due_date,omitempty"`
	ValidityDays *int                    `json:"validity_days,omitempty" validate:"omitempty,gte=0"`
	Notes        *string                 `json:"notes,omitempty"`
	Terms        *string                 `json:"terms,omitempty"`
	Lines        *[]CreateInvoiceLineReq `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

type ListInvoicesRequest struct {
	CustomerID    *int64         `json:"customer_id,omitempty"`
	UserID        *int64         `json:"user_id,omitempty"`
	QuotationID   *int64         `json:"quotation_id,omitempty"`
	Status        *InvoiceStatus `json:"status,omitempty"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
	DateFrom      *time.Time     `json:"date_from,omitempty"`
	DateTo        *time.Time     `json:"date_to,omitempty"`
	Limit         int            `json:"limit" validate:"gte=0,lte=1000"`
	Offset        int            `json:"offset" validate:"gte=0"`
}
