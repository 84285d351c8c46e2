package quotations

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateQuotationRequest struct {
	CustomerID      int64                    `json:"customer_id" validate:"required,gt=0"`
	QuoteDate       time.Time                `json:"quote_date" validate:"required"`
	ValidityDays    int                      `json:"validity_days" validate:"gte=0"`
	DiscountPercent decimal.Decimal          `json:"discount_percent"`
	TaxPercent      decimal.Decimal          `json:"tax_percent"`
	Notes           *string                  `json:"notes,omitempty"`
	Lines           []CreateQuotationLineReq `json:"lines" validate:"required,min=1,dive"`
}

type CreateQuotationLineReq struct {
	ItemID      int64            `json:"item_id" validate:"required,gt=0"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	LicenseType *string          `json:"license_type,omitempty" validate:"omitempty,max=50"`
	LineOrder   int              `json:"line_order" validate:"gte=0"`
}

type UpdateQuotationRequest struct {
	QuoteDate       *time.Time                `json:"quote_date,omitempty"`
	ValidityDays    *int                      `json:"validity_days,omitempty" validate:"omitempty,gte=0"`
	DiscountPercent *decimal.Decimal          `json:"discount_percent,omitempty"`
	TaxPercent      *decimal.Decimal          `json:"tax_percent,omitempty"`
	Notes           *string                   `json:"notes,omitempty"`
	Lines           *[]CreateQuotationLineReq `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

type ListQuotationsRequest struct {
	CustomerID *int64     `json:"customer_id,omitempty"`
	UserID     *int64     `json:"user_id,omitempty"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	Limit      int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int        `json:"offset" validate:"gte=0"`
}
