package quotations

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/catalog"
	"github.com/quillbooks/quillbooks/internal/customers"
	"github.com/quillbooks/quillbooks/internal/docnum"
	"github.com/quillbooks/quillbooks/internal/money"
	"github.com/quillbooks/quillbooks/internal/platform/httpx"
)

var percentCeiling = decimal.NewFromInt(100)

func validRate(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(percentCeiling)
}

type Service struct {
	repo         Repository
	customerRepo customers.Repository
	itemRepo     catalog.Repository
	numbers      docnum.Allocator
}

func NewService(repo Repository, customerRepo customers.Repository, itemRepo catalog.Repository, numbers docnum.Allocator) *Service {
	return &Service{
		repo:         repo,
		customerRepo: customerRepo,
		itemRepo:     itemRepo,
		numbers:      numbers,
	}
}

// resolveLines validates request lines and fills in the catalog unit price
// for any line that omits one.
func (s *Service) resolveLines(ctx context.Context, quotationID int64, reqs []CreateQuotationLineReq) ([]QuotationLine, []money.LineInput, error) {
	lines := make([]QuotationLine, 0, len(reqs))
	inputs := make([]money.LineInput, 0, len(reqs))
	for i, lr := range reqs {
		if !lr.Quantity.IsPositive() {
			return nil, nil, fmt.Errorf("line %d: quantity must be positive: %w", i+1, httpx.ErrValidation)
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

		line := QuotationLine{
			QuotationID: quotationID,
			ItemID:      lr.ItemID,
			Quantity:    lr.Quantity,
			UnitPrice:   unitPrice,
			LicenseType: lr.LicenseType,
			LineOrder:   lr.LineOrder,
		}
		if line.LineOrder == 0 {
			line.LineOrder = i + 1
		}
		lines = append(lines, line)
		inputs = append(inputs, money.LineInput{Quantity: lr.Quantity, UnitPrice: unitPrice})
	}
	return lines, inputs, nil
}

func (s *Service) Create(ctx context.Context, req CreateQuotationRequest, userID int64) (*Quotation, error) {
	if !validRate(req.DiscountPercent) || !validRate(req.TaxPercent) {
		return nil, fmt.Errorf("discount and tax percent must be between 0 and 100: %w", httpx.ErrValidation)
	}
	if _, err := s.customerRepo.Get(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}

	lines, inputs, err := s.resolveLines(ctx, 0, req.Lines)
	if err != nil {
		return nil, err
	}

	quoteNumber, err := s.numbers.Allocate(ctx, docnum.TypeQuotation, req.QuoteDate)
	if err != nil {
		return nil, fmt.Errorf("allocate quote number: %w", err)
	}

	totals := money.FlatRateTotals(inputs, req.DiscountPercent, req.TaxPercent)

	quotation := Quotation{
		QuoteNumber:     quoteNumber,
		QuoteDate:       req.QuoteDate,
		ValidityDays:    req.ValidityDays,
		CustomerID:      req.CustomerID,
		UserID:          userID,
		DiscountPercent: req.DiscountPercent,
		TaxPercent:      req.TaxPercent,
		Subtotal:        money.Round2(totals.Subtotal),
		DiscountAmount:  money.Round2(totals.Discount),
		TaxAmount:       money.Round2(totals.Tax),
		TotalAmount:     money.Round2(totals.GrandTotal),
		Notes:           req.Notes,
	}

	var quotationID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, quotation)
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		quotationID = id

		for _, line := range lines {
			line.QuotationID = quotationID
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert quotation line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, quotationID)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	if req.DiscountPercent != nil && !validRate(*req.DiscountPercent) {
		return nil, fmt.Errorf("discount percent must be between 0 and 100: %w", httpx.ErrValidation)
	}
	if req.TaxPercent != nil && !validRate(*req.TaxPercent) {
		return nil, fmt.Errorf("tax percent must be between 0 and 100: %w", httpx.ErrValidation)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	discountPercent := existing.DiscountPercent
	if req.DiscountPercent != nil {
		discountPercent = *req.DiscountPercent
	}
	taxPercent := existing.TaxPercent
	if req.TaxPercent != nil {
		taxPercent = *req.TaxPercent
	}

	// Totals are derived state; recompute whenever lines or rates change.
	ratesChanged := req.DiscountPercent != nil || req.TaxPercent != nil
	var linesToInsert []QuotationLine
	var inputs []money.LineInput

	if req.Lines != nil {
		linesToInsert, inputs, err = s.resolveLines(ctx, id, *req.Lines)
		if err != nil {
			return nil, err
		}
	} else {
		for _, line := range existing.Lines {
			inputs = append(inputs, money.LineInput{Quantity: line.Quantity, UnitPrice: line.UnitPrice})
		}
	}

	updates := make(map[string]interface{})
	if req.QuoteDate != nil {
		updates["quote_date"] = *req.QuoteDate
	}
	if req.ValidityDays != nil {
		updates["validity_days"] = *req.ValidityDays
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.DiscountPercent != nil {
		updates["discount_percent"] = req.DiscountPercent.String()
	}
	if req.TaxPercent != nil {
		updates["tax_percent"] = req.TaxPercent.String()
	}
	if req.Lines != nil || ratesChanged {
		totals := money.FlatRateTotals(inputs, discountPercent, taxPercent)
		updates["subtotal"] = money.Round2(totals.Subtotal).String()
		updates["discount_amount"] = money.Round2(totals.Discount).String()
		updates["tax_amount"] = money.Round2(totals.Tax).String()
		updates["total_amount"] = money.Round2(totals.GrandTotal).String()
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
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
		return nil, fmt.Errorf("update quotation: %w", err)
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithCustomer, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteLines(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}
