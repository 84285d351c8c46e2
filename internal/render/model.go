package render

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seller identity printed on every document.
const (
	sellerName    = "Your Company Name"
	sellerAddress = "123 Business Street, Coimbatore - 641001"
	sellerEmail   = "sales@yourcompany.com"
	sellerPhone   = "+91 9876543210"
	sellerWebsite = "www.yourcompany.com"
	sellerGSTIN   = "22AAAAA0000A1Z5"
)

type Kind string

const (
	KindInvoice   Kind = "invoice"
	KindQuotation Kind = "quotation"
)

// Document is everything the layout needs, resolved and denormalized. The
// builder fills it from the stores; nothing here touches the database.
type Document struct {
	Kind         Kind
	Number       string
	Date         time.Time
	DueDate      time.Time
	ValidityDays int

	Customer Party
	Lines    []DocumentLine

	// Flat document rates, quotations only.
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal

	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal

	Notes     string
	UpdatedAt time.Time
}

type Party struct {
	Name       string
	Address    string
	City       string
	State      string
	PostalCode string
	GSTIN      string
}

// DocumentLine is a resolved table row. DiscountPercent, TaxPercent and
// Amount carry per-line values for invoices; quotation lines only use
// Quantity, UnitPrice and Amount.
type DocumentLine struct {
	Description     string
	LicenseType     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	Amount          decimal.Decimal
}
