package invoices

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/catalog"
	"github.com/quillbooks/quillbooks/internal/customers"
	"github.com/quillbooks/quillbooks/internal/platform/httpx"
	"github.com/quillbooks/quillbooks/internal/quotations"
)

// ============================================================================
// MOCK REPOSITORIES
// ============================================================================

type mockRepository struct {
	invoices   map[int64]*Invoice
	lines      map[int64][]InvoiceLine
	nextID     int64
	nextLineID int64

	// Error injection
	txError     error
	createError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		invoices:   make(map[int64]*Invoice),
		lines:      make(map[int64][]InvoiceLine),
		nextID:     1,
		nextLineID: 1,
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, m)
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}
	out := *inv
	out.Lines = m.lines[id]
	return &out, nil
}

func (m *mockRepository) List(ctx context.Context, req ListInvoicesRequest) ([]InvoiceWithCustomer, int, error) {
	result := []InvoiceWithCustomer{}
	for _, inv := range m.invoices {
		if req.CustomerID != nil && inv.CustomerID != *req.CustomerID {
			continue
		}
		if req.Status != nil && inv.Status != *req.Status {
			continue
		}
		result = append(result, InvoiceWithCustomer{Invoice: *inv})
	}
	return result, len(result), nil
}

func (m *mockRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]InvoiceWithCustomer, error) {
	result := []InvoiceWithCustomer{}
	for _, inv := range m.invoices {
		if inv.DueDate.Before(asOf) && inv.PaymentStatus != PaymentStatusPaid && inv.Status != InvoiceStatusCancelled {
			result = append(result, InvoiceWithCustomer{Invoice: *inv})
		}
	}
	return result, nil
}

func (m *mockRepository) Create(ctx context.Context, invoice Invoice) (int64, error) {
	if m.createError != nil {
		return 0, m.createError
	}
	invoice.ID = m.nextID
	m.nextID++
	m.invoices[invoice.ID] = &invoice
	return invoice.ID, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	inv, ok := m.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}
	for col, val := range updates {
		switch col {
		case "status":
			inv.Status = InvoiceStatus(val.(string))
		case "payment_status":
			inv.PaymentStatus = PaymentStatus(val.(string))
		case "notes":
			s := val.(string)
			inv.Notes = &s
		case "subtotal":
			inv.Subtotal = decimal.RequireFromString(val.(string))
		case "discount_amount":
			inv.DiscountAmount = decimal.RequireFromString(val.(string))
		case "tax_amount":
			inv.TaxAmount = decimal.RequireFromString(val.(string))
		case "total_amount":
			inv.TotalAmount = decimal.RequireFromString(val.(string))
		}
	}
	return nil
}

func (m *mockRepository) InsertLine(ctx context.Context, line InvoiceLine) (int64, error) {
	line.ID = m.nextLineID
	m.nextLineID++
	m.lines[line.InvoiceID] = append(m.lines[line.InvoiceID], line)
	return line.ID, nil
}

func (m *mockRepository) DeleteLines(ctx context.Context, invoiceID int64) error {
	delete(m.lines, invoiceID)
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.invoices[id]; !ok {
		return fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}
	delete(m.invoices, id)
	return nil
}

func (m *mockRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var marked int64
	for _, inv := range m.invoices {
		if inv.DueDate.Before(asOf) && inv.PaymentStatus != PaymentStatusPaid &&
			(inv.Status == InvoiceStatusDraft || inv.Status == InvoiceStatusSent) {
			inv.Status = InvoiceStatusOverdue
			marked++
		}
	}
	return marked, nil
}

type mockCustomerRepo struct {
	customers map[int64]*customers.Customer
}

func (m *mockCustomerRepo) Get(ctx context.Context, id int64) (*customers.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, httpx.ErrNotFound)
	}
	return c, nil
}

func (m *mockCustomerRepo) List(ctx context.Context, req customers.ListCustomersRequest) ([]customers.Customer, int, error) {
	return nil, 0, nil
}

func (m *mockCustomerRepo) Create(ctx context.Context, c customers.Customer) (int64, error) {
	return 0, errors.New("not implemented")
}

func (m *mockCustomerRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return errors.New("not implemented")
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

type mockQuotationRepo struct {
	quotations map[int64]*quotations.Quotation
}

func (m *mockQuotationRepo) WithTx(ctx context.Context, fn func(context.Context, quotations.Repository) error) error {
	return fn(ctx, m)
}

func (m *mockQuotationRepo) Get(ctx context.Context, id int64) (*quotations.Quotation, error) {
	q, ok := m.quotations[id]
	if !ok {
		return nil, fmt.Errorf("quotation %d: %w", id, quotations.ErrNotFound)
	}
	return q, nil
}

func (m *mockQuotationRepo) List(ctx context.Context, req quotations.ListQuotationsRequest) ([]quotations.QuotationWithCustomer, int, error) {
	return nil, 0, nil
}

func (m *mockQuotationRepo) Create(ctx context.Context, q quotations.Quotation) (int64, error) {
	return 0, errors.New("not implemented")
}

func (m *mockQuotationRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return errors.New("not implemented")
}

func (m *mockQuotationRepo) InsertLine(ctx context.Context, line quotations.QuotationLine) (int64, error) {
	return 0, errors.New("not implemented")
}

func (m *mockQuotationRepo) DeleteLines(ctx context.Context, quotationID int64) error {
	return errors.New("not implemented")
}

func (m *mockQuotationRepo) Delete(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

type mockItemRepo struct {
	items map[int64]*catalog.Item
}

func (m *mockItemRepo) Get(ctx context.Context, id int64) (*catalog.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, httpx.ErrNotFound)
	}
	return item, nil
}

func (m *mockItemRepo) List(ctx context.Context, req catalog.ListItemsRequest) ([]catalog.Item, int, error) {
	return nil, 0, nil
}

func (m *mockItemRepo) Create(ctx context.Context, item catalog.Item) (int64, error) {
	return 0, errors.New("not implemented")
}

func (m *mockItemRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return errors.New("not implemented")
}

func (m *mockItemRepo) Delete(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

type mockAllocator struct {
	seq map[string]int64
}

func (m *mockAllocator) Allocate(ctx context.Context, docType string, date time.Time) (string, error) {
	if m.seq == nil {
		m.seq = make(map[string]int64)
	}
	m.seq[docType]++
	return fmt.Sprintf("%s-%d-%04d", docType, date.Year(), m.seq[docType]), nil
}

// ============================================================================
// HELPERS
// ============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

func newTestService(quotationFixtures map[int64]*quotations.Quotation) (*Service, *mockRepository) {
	repo := newMockRepository()
	custRepo := &mockCustomerRepo{customers: map[int64]*customers.Customer{
		1: {ID: 1, Name: "Acme Software Pvt Ltd"},
	}}
	if quotationFixtures == nil {
		quotationFixtures = map[int64]*quotations.Quotation{}
	}
	itemRepo := &mockItemRepo{items: map[int64]*catalog.Item{
		1: {ID: 1, Name: "Accounting Suite", UnitPrice: dec("50")},
		2: {ID: 2, Name: "Payroll Module", UnitPrice: dec("100")},
	}}
	svc := NewService(repo, custRepo, &mockQuotationRepo{quotations: quotationFixtures}, itemRepo, &mockAllocator{})
	return svc, repo
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateInvoice(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	invoiceDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	req := CreateInvoiceRequest{
		CustomerID:  1,
		InvoiceDate: invoiceDate,
		DueDate:     invoiceDate.AddDate(0, 0, 30),
		Lines: []CreateInvoiceLineReq{
			{ItemID: 1, Quantity: dec("3"), UnitPrice: ptr(dec("50")), DiscountPercent: dec("10"), TaxPercent: dec("18")},
			{ItemID: 2, Quantity: dec("2"), UnitPrice: ptr(dec("100"))},
		},
	}

	invoice, err := svc.Create(ctx, req, 100)
	require.NoError(t, err)
	require.NotNil(t, invoice)

	assert.Equal(t, "INV-2026-0001", invoice.InvoiceNumber)
	assert.Equal(t, InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, PaymentStatusUnpaid, invoice.PaymentStatus)
	assert.Len(t, invoice.Lines, 2)

	// Line 1: 3*50 = 150, discount 15, net 135, tax 24.30, total 159.30
	// Line 2: 2*100 = 200, no rates, total 200
	assert.True(t, invoice.Subtotal.Equal(dec("350")), "subtotal %s", invoice.Subtotal)
	assert.True(t, invoice.DiscountAmount.Equal(dec("15")), "discount %s", invoice.DiscountAmount)
	assert.True(t, invoice.TaxAmount.Equal(dec("24.30")), "tax %s", invoice.TaxAmount)
	assert.True(t, invoice.TotalAmount.Equal(dec("359.30")), "total %s", invoice.TotalAmount)
}

func TestCreateInvoiceCustomerNotFound(t *testing.T) {
	svc, _ := newTestService(nil)

	req := CreateInvoiceRequest{
		CustomerID:  42,
		InvoiceDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 0, 30),
		Lines:       []CreateInvoiceLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("10"))}},
	}

	_, err := svc.Create(context.Background(), req, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestConvertFromQuotation(t *testing.T) {
	quoteDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	fixtures := map[int64]*quotations.Quotation{
		5: {
			ID:              5,
			QuoteNumber:     "QT-2026-0005",
			QuoteDate:       quoteDate,
			ValidityDays:    15,
			CustomerID:      1,
			UserID:          7,
			DiscountPercent: dec("10"),
			TaxPercent:      dec("18"),
			Subtotal:        dec("450"),
			DiscountAmount:  dec("45"),
			TaxAmount:       dec("72.90"),
			TotalAmount:     dec("477.90"),
			Lines: []quotations.QuotationLine{
				{ItemID: 1, Quantity: dec("2"), UnitPrice: dec("100"), LicenseType: ptr("Annual"), LineOrder: 1},
				{ItemID: 2, Quantity: dec("1"), UnitPrice: dec("250"), LineOrder: 2},
			},
		},
	}

	svc, _ := newTestService(fixtures)
	now := time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	invoice, err := svc.ConvertFromQuotation(context.Background(), 5, 100)
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-0001", invoice.InvoiceNumber)
	assert.Equal(t, now, invoice.InvoiceDate)
	assert.Equal(t, now.AddDate(0, 0, 30), invoice.DueDate)
	assert.Equal(t, 15, invoice.ValidityDays)
	require.NotNil(t, invoice.QuotationID)
	assert.Equal(t, int64(5), *invoice.QuotationID)
	assert.Equal(t, InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, PaymentStatusUnpaid, invoice.PaymentStatus)

	// Lines carry quantity, price and license only; the quotation's flat
	// rates are intentionally not copied.
	require.Len(t, invoice.Lines, 2)
	assert.True(t, invoice.Lines[0].DiscountPercent.IsZero())
	assert.True(t, invoice.Lines[0].TaxPercent.IsZero())
	assert.Equal(t, ptr("Annual"), invoice.Lines[0].LicenseType)

	// Totals recomputed from raw lines: 2*100 + 1*250 = 450, no rates.
	assert.True(t, invoice.Subtotal.Equal(dec("450")), "subtotal %s", invoice.Subtotal)
	assert.True(t, invoice.DiscountAmount.IsZero())
	assert.True(t, invoice.TaxAmount.IsZero())
	assert.True(t, invoice.TotalAmount.Equal(dec("450")), "total %s", invoice.TotalAmount)
}

func TestConvertFromQuotationNotFound(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.ConvertFromQuotation(context.Background(), 99, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestUpdateInvoiceRecomputesTotals(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInvoiceRequest{
		CustomerID:  1,
		InvoiceDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 0, 30),
		Lines:       []CreateInvoiceLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("100"))}},
	}, 100)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateInvoiceRequest{
		Lines: ptr([]CreateInvoiceLineReq{
			{ItemID: 1, Quantity: dec("4"), UnitPrice: ptr(dec("100")), TaxPercent: dec("18")},
		}),
	})
	require.NoError(t, err)

	assert.True(t, updated.Subtotal.Equal(dec("400")), "subtotal %s", updated.Subtotal)
	assert.True(t, updated.TaxAmount.Equal(dec("72")), "tax %s", updated.TaxAmount)
	assert.True(t, updated.TotalAmount.Equal(dec("472")), "total %s", updated.TotalAmount)
	assert.Len(t, updated.Lines, 1)
}

func TestCreateInvoiceRejectsBadLineValues(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()

	cases := []struct {
		name string
		line CreateInvoiceLineReq
	}{
		{"negative quantity", CreateInvoiceLineReq{ItemID: 1, Quantity: dec("-3"), UnitPrice: ptr(dec("100"))}},
		{"zero quantity", CreateInvoiceLineReq{ItemID: 1, Quantity: dec("0"), UnitPrice: ptr(dec("100"))}},
		{"negative unit price", CreateInvoiceLineReq{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("-5"))}},
		{"discount over 100", CreateInvoiceLineReq{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("100")), DiscountPercent: dec("150")}},
		{"negative tax", CreateInvoiceLineReq{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("100")), TaxPercent: dec("-18")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, CreateInvoiceRequest{
				CustomerID:  1,
				InvoiceDate: time.Now(),
				DueDate:     time.Now().AddDate(0, 0, 30),
				Lines:       []CreateInvoiceLineReq{tc.line},
			}, 100)
			require.Error(t, err)
			assert.True(t, errors.Is(err, httpx.ErrValidation))
		})
	}
	assert.Empty(t, repo.invoices)
}

func TestUpdateInvoiceRejectsBadLineValues(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInvoiceRequest{
		CustomerID:  1,
		InvoiceDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 0, 30),
		Lines:       []CreateInvoiceLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("100"))}},
	}, 100)
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, UpdateInvoiceRequest{
		Lines: ptr([]CreateInvoiceLineReq{
			{ItemID: 1, Quantity: dec("-1"), UnitPrice: ptr(dec("100"))},
		}),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	// The stored totals are untouched by the rejected update.
	unchanged, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.Subtotal.Equal(dec("100")))
}

func TestCreateInvoiceDefaultsUnitPriceFromCatalog(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	invoice, err := svc.Create(ctx, CreateInvoiceRequest{
		CustomerID:  1,
		InvoiceDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 0, 30),
		Lines: []CreateInvoiceLineReq{
			{ItemID: 2, Quantity: dec("3")},
		},
	}, 100)
	require.NoError(t, err)

	// Price omitted, so the catalog item's 100 applies.
	assert.True(t, invoice.Lines[0].UnitPrice.Equal(dec("100")))
	assert.True(t, invoice.Subtotal.Equal(dec("300")), "subtotal %s", invoice.Subtotal)
}

func TestCreateInvoiceUnknownItemWithoutPrice(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID:  1,
		InvoiceDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 0, 30),
		Lines:       []CreateInvoiceLineReq{{ItemID: 999, Quantity: dec("1")}},
	}, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestSetStatus(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInvoiceRequest{
		CustomerID:  1,
		InvoiceDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 0, 30),
		Lines:       []CreateInvoiceLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("10"))}},
	}, 100)
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, created.ID, InvoiceStatusSent)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusSent, updated.Status)

	_, err = svc.SetStatus(ctx, 999, InvoiceStatusSent)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSetPaymentStatus(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInvoiceRequest{
		CustomerID:  1,
		InvoiceDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 0, 30),
		Lines:       []CreateInvoiceLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("10"))}},
	}, 100)
	require.NoError(t, err)

	updated, err := svc.SetPaymentStatus(ctx, created.ID, PaymentStatusPartiallyPaid)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPartiallyPaid, updated.PaymentStatus)
}

func TestOverdueScan(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	mk := func(due time.Time, status InvoiceStatus, payment PaymentStatus) int64 {
		id, err := repo.Create(ctx, Invoice{
			InvoiceNumber: fmt.Sprintf("INV-%d", repo.nextID),
			InvoiceDate:   due.AddDate(0, 0, -30),
			DueDate:       due,
			CustomerID:    1,
			Status:        status,
			PaymentStatus: payment,
		})
		require.NoError(t, err)
		return id
	}

	pastDue := mk(now.AddDate(0, 0, -5), InvoiceStatusSent, PaymentStatusUnpaid)
	mk(now.AddDate(0, 0, 5), InvoiceStatusSent, PaymentStatusUnpaid)
	mk(now.AddDate(0, 0, -5), InvoiceStatusSent, PaymentStatusPaid)
	mk(now.AddDate(0, 0, -5), InvoiceStatusCancelled, PaymentStatusUnpaid)

	overdue, err := svc.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	marked, err := svc.MarkOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	inv, err := svc.Get(ctx, pastDue)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusOverdue, inv.Status)
}

func TestDeleteInvoiceRemovesLines(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInvoiceRequest{
		CustomerID:  1,
		InvoiceDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 0, 30),
		Lines:       []CreateInvoiceLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("10"))}},
	}, 100)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Empty(t, repo.invoices)
	assert.Empty(t, repo.lines)
}
