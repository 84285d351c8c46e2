package render

import (
	"context"
	"fmt"

	"github.com/quillbooks/quillbooks/internal/catalog"
	"github.com/quillbooks/quillbooks/internal/customers"
	"github.com/quillbooks/quillbooks/internal/invoices"
	"github.com/quillbooks/quillbooks/internal/money"
	"github.com/quillbooks/quillbooks/internal/quotations"
)

// Fallbacks for lines whose item was deleted after the document was saved.
const (
	unknownItemName    = "Unknown Item"
	defaultLicenseType = "Standard"
)

// Builder resolves a stored document into a render.Document. A missing
// document or customer is an error; a missing line item degrades to the
// fallback name so an old document still prints.
type Builder struct {
	invoices   invoices.Repository
	quotations quotations.Repository
	customers  customers.Repository
	items      catalog.Repository
}

func NewBuilder(inv invoices.Repository, quo quotations.Repository, cust customers.Repository, items catalog.Repository) *Builder {
	return &Builder{invoices: inv, quotations: quo, customers: cust, items: items}
}

func (b *Builder) Invoice(ctx context.Context, id int64) (*Document, error) {
	invoice, err := b.invoices.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	customer, err := b.customers.Get(ctx, invoice.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	doc := &Document{
		Kind:           KindInvoice,
		Number:         invoice.InvoiceNumber,
		Date:           invoice.InvoiceDate,
		DueDate:        invoice.DueDate,
		ValidityDays:   invoice.ValidityDays,
		Customer:       partyFromCustomer(customer),
		Subtotal:       invoice.Subtotal,
		DiscountAmount: invoice.DiscountAmount,
		TaxAmount:      invoice.TaxAmount,
		TotalAmount:    invoice.TotalAmount,
		Notes:          deref(invoice.Notes),
		UpdatedAt:      invoice.UpdatedAt,
	}

	for _, line := range invoice.Lines {
		name, license := b.lineDetails(ctx, line.ItemID, line.LicenseType)
		amounts := money.Line(money.LineInput{
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			TaxPercent:      line.TaxPercent,
		})
		doc.Lines = append(doc.Lines, DocumentLine{
			Description:     name,
			LicenseType:     license,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			TaxPercent:      line.TaxPercent,
			Amount:          money.Round2(amounts.Total),
		})
	}
	return doc, nil
}

func (b *Builder) Quotation(ctx context.Context, id int64) (*Document, error) {
	quotation, err := b.quotations.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	customer, err := b.customers.Get(ctx, quotation.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	doc := &Document{
		Kind:            KindQuotation,
		Number:          quotation.QuoteNumber,
		Date:            quotation.QuoteDate,
		ValidityDays:    quotation.ValidityDays,
		Customer:        partyFromCustomer(customer),
		DiscountPercent: quotation.DiscountPercent,
		TaxPercent:      quotation.TaxPercent,
		Subtotal:        quotation.Subtotal,
		DiscountAmount:  quotation.DiscountAmount,
		TaxAmount:       quotation.TaxAmount,
		TotalAmount:     quotation.TotalAmount,
		Notes:           deref(quotation.Notes),
		UpdatedAt:       quotation.UpdatedAt,
	}

	for _, line := range quotation.Lines {
		name, license := b.lineDetails(ctx, line.ItemID, line.LicenseType)
		doc.Lines = append(doc.Lines, DocumentLine{
			Description: name,
			LicenseType: license,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      money.Round2(line.Quantity.Mul(line.UnitPrice)),
		})
	}
	return doc, nil
}

// lineDetails resolves the item name and license for a line. The line's own
// license wins over the item's; both fall back when absent.
func (b *Builder) lineDetails(ctx context.Context, itemID int64, lineLicense *string) (string, string) {
	name := unknownItemName
	license := defaultLicenseType

	if item, err := b.items.Get(ctx, itemID); err == nil {
		name = item.Name
		if item.LicenseType != nil && *item.LicenseType != "" {
			license = *item.LicenseType
		}
	}

	if lineLicense != nil && *lineLicense != "" {
		license = *lineLicense
	}
	return name, license
}

func partyFromCustomer(c *customers.Customer) Party {
	return Party{
		Name:       c.Name,
		Address:    deref(c.Address),
		City:       deref(c.City),
		State:      deref(c.State),
		PostalCode: deref(c.PostalCode),
		GSTIN:      deref(c.GSTIN),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
