package quotations

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
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	quotations map[int64]*Quotation
	lines      map[int64][]QuotationLine
	nextID     int64
	nextLineID int64

	// Error injection
	txError     error
	getError    error
	createError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		quotations: make(map[int64]*Quotation),
		lines:      make(map[int64][]QuotationLine),
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

func (m *mockRepository) Get(ctx context.Context, id int64) (*Quotation, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	q, ok := m.quotations[id]
	if !ok {
		return nil, fmt.Errorf("quotation %d: %w", id, ErrNotFound)
	}
	out := *q
	out.Lines = m.lines[id]
	return &out, nil
}

func (m *mockRepository) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithCustomer, int, error) {
	result := []QuotationWithCustomer{}
	for _, q := range m.quotations {
		if req.CustomerID != nil && q.CustomerID != *req.CustomerID {
			continue
		}
		result = append(result, QuotationWithCustomer{Quotation: *q})
	}
	return result, len(result), nil
}

func (m *mockRepository) Create(ctx context.Context, quotation Quotation) (int64, error) {
	if m.createError != nil {
		return 0, m.createError
	}
	quotation.ID = m.nextID
	m.nextID++
	m.quotations[quotation.ID] = &quotation
	return quotation.ID, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	q, ok := m.quotations[id]
	if !ok {
		return fmt.Errorf("quotation %d: %w", id, ErrNotFound)
	}
	for col, val := range updates {
		switch col {
		case "validity_days":
			q.ValidityDays = val.(int)
		case "notes":
			s := val.(string)
			q.Notes = &s
		case "discount_percent":
			q.DiscountPercent = decimal.RequireFromString(val.(string))
		case "tax_percent":
			q.TaxPercent = decimal.RequireFromString(val.(string))
		case "subtotal":
			q.Subtotal = decimal.RequireFromString(val.(string))
		case "discount_amount":
			q.DiscountAmount = decimal.RequireFromString(val.(string))
		case "tax_amount":
			q.TaxAmount = decimal.RequireFromString(val.(string))
		case "total_amount":
			q.TotalAmount = decimal.RequireFromString(val.(string))
		}
	}
	return nil
}

func (m *mockRepository) InsertLine(ctx context.Context, line QuotationLine) (int64, error) {
	line.ID = m.nextLineID
	m.nextLineID++
	m.lines[line.QuotationID] = append(m.lines[line.QuotationID], line)
	return line.ID, nil
}

func (m *mockRepository) DeleteLines(ctx context.Context, quotationID int64) error {
	delete(m.lines, quotationID)
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.quotations[id]; !ok {
		return fmt.Errorf("quotation %d: %w", id, ErrNotFound)
	}
	delete(m.quotations, id)
	return nil
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

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	custRepo := &mockCustomerRepo{customers: map[int64]*customers.Customer{
		1: {ID: 1, Name: "Acme Software Pvt Ltd"},
	}}
	itemRepo := &mockItemRepo{items: map[int64]*catalog.Item{
		1: {ID: 1, Name: "Accounting Suite", UnitPrice: dec("100")},
		2: {ID: 2, Name: "Payroll Module", UnitPrice: dec("250")},
	}}
	svc := NewService(repo, custRepo, itemRepo, &mockAllocator{})
	return svc, repo
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateQuotation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req := CreateQuotationRequest{
		CustomerID:      1,
		QuoteDate:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		ValidityDays:    15,
		DiscountPercent: dec("5"),
		TaxPercent:      dec("18"),
		Lines: []CreateQuotationLineReq{
			{ItemID: 1, Quantity: dec("2"), UnitPrice: ptr(dec("100"))},
			{ItemID: 2, Quantity: dec("1"), UnitPrice: ptr(dec("250")), LicenseType: ptr("Annual")},
		},
	}

	quotation, err := svc.Create(ctx, req, 100)
	require.NoError(t, err)
	require.NotNil(t, quotation)

	assert.Equal(t, "QT-2026-0001", quotation.QuoteNumber)
	assert.Equal(t, int64(100), quotation.UserID)
	assert.Len(t, quotation.Lines, 2)
	assert.Equal(t, 1, quotation.Lines[0].LineOrder)
	assert.Equal(t, 2, quotation.Lines[1].LineOrder)

	// 2*100 + 1*250 = 450; discount 5% = 22.50; tax 18% of 427.50 = 76.95
	assert.True(t, quotation.Subtotal.Equal(dec("450")), "subtotal %s", quotation.Subtotal)
	assert.True(t, quotation.DiscountAmount.Equal(dec("22.50")), "discount %s", quotation.DiscountAmount)
	assert.True(t, quotation.TaxAmount.Equal(dec("76.95")), "tax %s", quotation.TaxAmount)
	assert.True(t, quotation.TotalAmount.Equal(dec("504.45")), "total %s", quotation.TotalAmount)
}

func TestCreateQuotationCustomerNotFound(t *testing.T) {
	svc, _ := newTestService()

	req := CreateQuotationRequest{
		CustomerID: 999,
		QuoteDate:  time.Now(),
		Lines:      []CreateQuotationLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("10"))}},
	}

	_, err := svc.Create(context.Background(), req, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestCreateQuotationSequentialNumbers(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req := CreateQuotationRequest{
		CustomerID: 1,
		QuoteDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Lines:      []CreateQuotationLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("10"))}},
	}

	first, err := svc.Create(ctx, req, 100)
	require.NoError(t, err)
	second, err := svc.Create(ctx, req, 100)
	require.NoError(t, err)

	assert.Equal(t, "QT-2026-0001", first.QuoteNumber)
	assert.Equal(t, "QT-2026-0002", second.QuoteNumber)
}

func TestUpdateQuotationRecomputesTotals(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateQuotationRequest{
		CustomerID: 1,
		QuoteDate:  time.Now(),
		TaxPercent: dec("18"),
		Lines:      []CreateQuotationLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("100"))}},
	}, 100)
	require.NoError(t, err)
	require.True(t, created.TotalAmount.Equal(dec("118")))

	updated, err := svc.Update(ctx, created.ID, UpdateQuotationRequest{
		Lines: ptr([]CreateQuotationLineReq{
			{ItemID: 1, Quantity: dec("3"), UnitPrice: ptr(dec("100"))},
		}),
	})
	require.NoError(t, err)

	assert.True(t, updated.Subtotal.Equal(dec("300")), "subtotal %s", updated.Subtotal)
	assert.True(t, updated.TaxAmount.Equal(dec("54")), "tax %s", updated.TaxAmount)
	assert.True(t, updated.TotalAmount.Equal(dec("354")), "total %s", updated.TotalAmount)
	assert.Len(t, updated.Lines, 1)
}

func TestUpdateQuotationRateChangeOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateQuotationRequest{
		CustomerID: 1,
		QuoteDate:  time.Now(),
		Lines:      []CreateQuotationLineReq{{ItemID: 1, Quantity: dec("2"), UnitPrice: ptr(dec("100"))}},
	}, 100)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateQuotationRequest{
		DiscountPercent: ptr(dec("10")),
	})
	require.NoError(t, err)

	// Existing lines reused: subtotal 200, discount 20, no tax.
	assert.True(t, updated.Subtotal.Equal(dec("200")))
	assert.True(t, updated.DiscountAmount.Equal(dec("20")))
	assert.True(t, updated.TotalAmount.Equal(dec("180")))
}

func TestUpdateQuotationNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), 42, UpdateQuotationRequest{Notes: ptr("hi")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteQuotationRemovesLines(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateQuotationRequest{
		CustomerID: 1,
		QuoteDate:  time.Now(),
		Lines:      []CreateQuotationLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("10"))}},
	}, 100)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Empty(t, repo.quotations)
	assert.Empty(t, repo.lines)
}

func TestGetQuotationNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreateQuotationRejectsBadLineValues(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		line CreateQuotationLineReq
	}{
		{"negative quantity", CreateQuotationLineReq{ItemID: 1, Quantity: dec("-3"), UnitPrice: ptr(dec("100"))}},
		{"zero quantity", CreateQuotationLineReq{ItemID: 1, Quantity: dec("0"), UnitPrice: ptr(dec("100"))}},
		{"negative unit price", CreateQuotationLineReq{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("-5"))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, CreateQuotationRequest{
				CustomerID: 1,
				QuoteDate:  time.Now(),
				Lines:      []CreateQuotationLineReq{tc.line},
			}, 100)
			require.Error(t, err)
			assert.True(t, errors.Is(err, httpx.ErrValidation))
		})
	}
	assert.Empty(t, repo.quotations)
}

func TestCreateQuotationRejectsRateOutOfRange(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, rate := range []string{"-1", "150"} {
		_, err := svc.Create(ctx, CreateQuotationRequest{
			CustomerID:      1,
			QuoteDate:       time.Now(),
			DiscountPercent: dec(rate),
			Lines:           []CreateQuotationLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("100"))}},
		}, 100)
		require.Error(t, err, "rate %s", rate)
		assert.True(t, errors.Is(err, httpx.ErrValidation))
	}
}

func TestCreateQuotationDefaultsUnitPriceFromCatalog(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	quotation, err := svc.Create(ctx, CreateQuotationRequest{
		CustomerID: 1,
		QuoteDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Lines: []CreateQuotationLineReq{
			{ItemID: 2, Quantity: dec("2")},
		},
	}, 100)
	require.NoError(t, err)

	// Price omitted, so the catalog item's 250 applies.
	assert.True(t, quotation.Lines[0].UnitPrice.Equal(dec("250")))
	assert.True(t, quotation.Subtotal.Equal(dec("500")), "subtotal %s", quotation.Subtotal)
}

func TestCreateQuotationUnknownItemWithoutPrice(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateQuotationRequest{
		CustomerID: 1,
		QuoteDate:  time.Now(),
		Lines:      []CreateQuotationLineReq{{ItemID: 999, Quantity: dec("1")}},
	}, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestCreateQuotationRollsBackOnLineFailure(t *testing.T) {
	svc, repo := newTestService()
	repo.txError = errors.New("tx failed")

	_, err := svc.Create(context.Background(), CreateQuotationRequest{
		CustomerID: 1,
		QuoteDate:  time.Now(),
		Lines:      []CreateQuotationLineReq{{ItemID: 1, Quantity: dec("1"), UnitPrice: ptr(dec("10"))}},
	}, 100)
	require.Error(t, err)
	assert.Empty(t, repo.quotations)
}
