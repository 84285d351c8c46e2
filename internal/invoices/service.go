package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/catalog"
	"github.com/quillbooks/quillbooks/internal/customers"
	"github.com/quillbooks/quillbooks/internal/docnum"
	"github.com/quillbooks/quillbooks/internal/money"
	"github.com/quillbooks/quillbooks/internal/platform/httpx"
	"github.com/quillbooks/quillbooks/internal/quotations"
)

// DefaultDueDays is the payment window applied when converting a quotation.
const DefaultDueDays = 30

var percentCeiling = decimal.NewFromInt(100)

func validRate(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(percentCeiling)
}

type Service struct {
	repo          Repository
	customerRepo  customers.Repository
	quotationRepo quotations.Repository
	itemRepo      catalog.Repository
	numbers       docnum.Allocator
	now           func() time.Time
}

func NewService(repo Repository, customerRepo customers.Repository, quotationRepo quotations.Repository, itemRepo catalog.Repository, numbers docnum.Allocator) *Service {
	return &Service{
		repo:          repo,
		customerRepo:  customerRepo,
		quotationRepo: quotationRepo,
		itemRepo:      itemRepo,
		numbers:       numbers,
		now:           time.Now,
	}
}

// resolveLines validates request lines and fills in the catalog unit price
// for any line that omits one.
func (s *Service) resolveLines(ctx context.Context, invoiceID int64, reqs []CreateInvoiceLineReq) ([]InvoiceLine, []money.LineInput, error) {
	lines := make([]InvoiceLine, 0, len(reqs))
	inputs := make([]money.LineInput, 0, len(reqs))
	for i, lr := range reqs {
		if !lr.Quantity.IsPositive() {
			return nil, nil, fmt.Errorf("line %d: quantity must be positive: %w", i+1, httpx.ErrValidation)
		}
		if !validRate(lr.DiscountPercent) || !validRate(lr.TaxPercent) {
			return nil, nil, fmt.Errorf("line %d: discount and tax percent must be between 0 and 100: %w", i+1, httpx.ErrValidation)
		}
		var unitPrice decimal.Decimal
		if lr.UnitPrice != nil {
			if lr.UnitPrice.IsNegative() {
				return nil, nil, fmt.Errorf("line %d: unit price cannot be negative: %w", i+1, httpx.ErrValidation)
			}
			unitPrice = *lr.UnitPrice
		} else {
			item, err := s.itemRepo.Get(ctx, lr.ItemID)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve price for line %d: %w", i+1, err)
			}
			unitPrice = item.UnitPrice
		}

		line := InvoiceLine{
			InvoiceID:       invoiceID,
			ItemID:          lr.ItemID,
			Quantity:        lr.Quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: lr.DiscountPercent,
			TaxPercent:      lr.TaxPercent,
			LicenseType:     lr.LicenseType,
			LineOrder:       lr.LineOrder,
		}
		if line.LineOrder == 0 {
			line.LineOrder = i + 1
		}
		lines = append(lines, line)
		inputs = append(inputs, money.LineInput{
			Quantity:        lr.Quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: lr.DiscountPercent,
			TaxPercent:      lr.TaxPercent,
		})
	}
	return lines, inputs, nil
}

func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest, userID int64) (*Invoice, error) {
	if _, err := s.customerRepo.Get(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}
	if req.QuotationID != nil {
		if _, err := s.quotationRepo.Get(ctx, *req.QuotationID); err != nil {
			return nil, fmt.Errorf("verify quotation: %w", err)
		}
	}

	lines, inputs, err := s.resolveLines(ctx, 0, req.Lines)
	if err != nil {
		return nil, err
	}

	invoiceNumber, err := s.numbers.Allocate(ctx, docnum.TypeInvoice, req.InvoiceDate)
	if err != nil {
		return nil, fmt.Errorf("allocate invoice number: %w", err)
	}

	totals := money.PerLineTotals(inputs)

	invoice := Invoice{
		InvoiceNumber:  invoiceNumber,
		InvoiceDate:    req.InvoiceDate,
		DueDate:        req.DueDate,
		ValidityDays:   req.ValidityDays,
		CustomerID:     req.CustomerID,
		UserID:         userID,
		QuotationID:    req.QuotationID,
		Status:         InvoiceStatusDraft,
		PaymentStatus:  PaymentStatusUnpaid,
		Subtotal:       money.Round2(totals.Subtotal),
		DiscountAmount: money.Round2(totals.Discount),
		TaxAmount:      money.Round2(totals.Tax),
		TotalAmount:    money.Round2(totals.GrandTotal),
		Notes:          req.Notes,
		Terms:          req.Terms,
	}

	var invoiceID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, invoice)
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		invoiceID = id

		for _, line := range lines {
			line.InvoiceID = invoiceID
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert invoice line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, invoiceID)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateInvoiceRequest) (*Invoice, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	var linesToInsert []InvoiceLine

	updates := make(map[string]interface{})
	if req.InvoiceDate != nil {
		updates["invoice_date"] = *req.InvoiceDate
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.ValidityDays != nil {
		updates["validity_days"] = *req.ValidityDays
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Terms != nil {
		updates["terms"] = *req.Terms
	}
	if req.Lines != nil {
		lines, inputs, err := s.resolveLines(ctx, id, *req.Lines)
		if err != nil {
			return nil, err
		}
		linesToInsert = lines

		totals := money.PerLineTotals(inputs)
		updates["subtotal"] = money.Round2(totals.Subtotal).String()
		updates["discount_amount"] = money.Round2(totals.Discount).String()
		updates["tax_amount"] = money.Round2(totals.Tax).String()
		updates["total_amount"] = money.Round2(totals.GrandTotal).String()
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return err
			}
		}
		if req.Lines != nil {
			if err := repo.DeleteLines(ctx, id); err != nil {
				return err
			}
			for _, line := range linesToInsert {
				if _, err := repo.InsertLine(ctx, line); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	return s.repo.Get(ctx, id)
}

// ConvertFromQuotation creates a draft invoice from a quotation. Quantities,
// unit prices and license types carry over; the quotation's negotiated
// discount and tax rates do not, so every copied line starts at zero rates
// and totals are recomputed per line.
func (s *Service) ConvertFromQuotation(ctx context.Context, quotationID int64, userID int64) (*Invoice, error) {
	quotation, err := s.quotationRepo.Get(ctx, quotationID)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	now := s.now()
	invoiceNumber, err := s.numbers.Allocate(ctx, docnum.TypeInvoice, now)
	if err != nil {
		return nil, fmt.Errorf("allocate invoice number: %w", err)
	}

	var lines []InvoiceLine
	var inputs []money.LineInput
	for i, qline := range quotation.Lines {
		line := InvoiceLine{
			ItemID:      qline.ItemID,
			Quantity:    qline.Quantity,
			UnitPrice:   qline.UnitPrice,
			LicenseType: qline.LicenseType,
			LineOrder:   i + 1,
		}
		lines = append(lines, line)
		inputs = append(inputs, money.LineInput{Quantity: qline.Quantity, UnitPrice: qline.UnitPrice})
	}

	totals := money.PerLineTotals(inputs)

	invoice := Invoice{
		InvoiceNumber:  invoiceNumber,
		InvoiceDate:    now,
		DueDate:        now.AddDate(0, 0, DefaultDueDays),
		ValidityDays:   quotation.ValidityDays,
		CustomerID:     quotation.CustomerID,
		UserID:         userID,
		QuotationID:    &quotation.ID,
		Status:         InvoiceStatusDraft,
		PaymentStatus:  PaymentStatusUnpaid,
		Subtotal:       money.Round2(totals.Subtotal),
		DiscountAmount: money.Round2(totals.Discount),
		TaxAmount:      money.Round2(totals.Tax),
		TotalAmount:    money.Round2(totals.GrandTotal),
	}

	var invoiceID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, invoice)
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		invoiceID = id

		for _, line := range lines {
			line.InvoiceID = invoiceID
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert invoice line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, invoiceID)
}

func (s *Service) SetStatus(ctx context.Context, id int64, status InvoiceStatus) (*Invoice, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := s.repo.Update(ctx, id, map[string]interface{}{"status": string(status)}); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) SetPaymentStatus(ctx context.Context, id int64, paymentStatus PaymentStatus) (*Invoice, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := s.repo.Update(ctx, id, map[string]interface{}{"payment_status": string(paymentStatus)}); err != nil {
		return nil, fmt.Errorf("set payment status: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]InvoiceWithCustomer, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Overdue(ctx context.Context) ([]InvoiceWithCustomer, error) {
	return s.repo.ListOverdue(ctx, s.now())
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteLines(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

// MarkOverdue is used by the background scan.
func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	return s.repo.MarkOverdue(ctx, asOf)
}
