package quotations

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quotation is a priced offer. Discount and tax are flat document-level rates
// applied to the whole subtotal; lines never carry their own rates.
type Quotation struct {
	ID              int64           `json:"id"`
	QuoteNumber     string          `json:"quote_number"`
	QuoteDate       time.Time       `json:"quote_date"`
	ValidityDays    int             `json:"validity_days"`
	CustomerID      int64           `json:"customer_id"`
	UserID          int64           `json:"user_id"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Lines           []QuotationLine `json:"lines,omitempty"`
}

type QuotationLine struct {
	ID          int64           `json:"id"`
	QuotationID int64           `json:"quotation_id"`
	ItemID      int64           `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LicenseType *string         `json:"license_type,omitempty"`
	LineOrder   int             `json:"line_order"`
}

// QuotationWithCustomer carries the customer name for list views.
type QuotationWithCustomer struct {
	Quotation
	CustomerName string `json:"customer_name"`
}
