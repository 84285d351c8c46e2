package quotations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/quillbooks/internal/money"
	"github.com/quillbooks/quillbooks/internal/platform/db"
	"github.com/quillbooks/quillbooks/internal/platform/httpx"
)

var ErrNotFound = httpx.ErrNotFound

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithCustomer, int, error)
	Create(ctx context.Context, quotation Quotation) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	InsertLine(ctx context.Context, line QuotationLine) (int64, error)
	DeleteLines(ctx context.Context, quotationID int64) error
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		repoTx := &repository{db: tx, pool: r.pool}
		return fn(ctx, repoTx)
	})
}

const quotationColumns = `id, quote_number, quote_date, validity_days, customer_id, user_id,
	discount_percent, tax_percent, subtotal, discount_amount, tax_amount, total_amount,
	notes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM quotations WHERE id = $1`, quotationColumns), id)
	q, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quotation %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Lines = lines
	return q, nil
}

func (r *repository) getLines(ctx context.Context, quotationID int64) ([]QuotationLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, item_id, quantity, unit_price, license_type, line_order
		FROM quotation_lines
		WHERE quotation_id = $1
		ORDER BY line_order, id
	`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []QuotationLine
	for rows.Next() {
		var line QuotationLine
		var quantity, unitPrice pgtype.Numeric
		var licenseType pgtype.Text

		if err := rows.Scan(&line.ID, &line.QuotationID, &line.ItemID, &quantity, &unitPrice, &licenseType, &line.LineOrder); err != nil {
			return nil, err
		}
		line.Quantity = money.FromNumeric(quantity)
		line.UnitPrice = money.FromNumeric(unitPrice)
		if licenseType.Valid {
			line.LicenseType = &licenseType.String
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithCustomer, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("q.customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("q.user_id = $%d", argPos))
		args = append(args, *req.UserID)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("q.quote_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("q.quote_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM quotations q %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT q.id, q.quote_number, q.quote_date, q.validity_days, q.customer_id, q.user_id,
		       q.discount_percent, q.tax_percent, q.subtotal, q.discount_amount, q.tax_amount, q.total_amount,
		       q.notes, q.created_at, q.updated_at,
		       c.name AS customer_name
		FROM quotations q
		JOIN customers c ON q.customer_id = c.id
		%s
		ORDER BY q.quote_date DESC, q.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotations []QuotationWithCustomer
	for rows.Next() {
		var q QuotationWithCustomer
		var quoteDate pgtype.Date
		var discountPct, taxPct, subtotal, discountAmt, taxAmt, totalAmt pgtype.Numeric
		var notes pgtype.Text
		var createdAt, updatedAt pgtype.Timestamptz

		err := rows.Scan(
			&q.ID, &q.QuoteNumber, &quoteDate, &q.ValidityDays, &q.CustomerID, &q.UserID,
			&discountPct, &taxPct, &subtotal, &discountAmt, &taxAmt, &totalAmt,
			&notes, &createdAt, &updatedAt,
			&q.CustomerName,
		)
		if err != nil {
			return nil, 0, err
		}

		if quoteDate.Valid {
			q.QuoteDate = quoteDate.Time
		}
		q.DiscountPercent = money.FromNumeric(discountPct)
		q.TaxPercent = money.FromNumeric(taxPct)
		q.Subtotal = money.FromNumeric(subtotal)
		q.DiscountAmount = money.FromNumeric(discountAmt)
		q.TaxAmount = money.FromNumeric(taxAmt)
		q.TotalAmount = money.FromNumeric(totalAmt)
		if notes.Valid {
			q.Notes = &notes.String
		}
		if createdAt.Valid {
			q.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			q.UpdatedAt = updatedAt.Time
		}

		quotations = append(quotations, q)
	}

	return quotations, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (quote_number, quote_date, validity_days, customer_id, user_id,
			discount_percent, tax_percent, subtotal, discount_amount, tax_amount, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`,
		q.QuoteNumber,
		q.QuoteDate,
		q.ValidityDays,
		q.CustomerID,
		q.UserID,
		q.DiscountPercent.String(),
		q.TaxPercent.String(),
		q.Subtotal.String(),
		q.DiscountAmount.String(),
		q.TaxAmount.String(),
		q.TotalAmount.String(),
		textOrNil(q.Notes),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE quotations SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{
		"quote_date", "validity_days", "notes",
		"discount_percent", "tax_percent",
		"subtotal", "discount_amount", "tax_amount", "total_amount",
	} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quotation %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *repository) InsertLine(ctx context.Context, line QuotationLine) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotation_lines (quotation_id, item_id, quantity, unit_price, license_type, line_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		line.QuotationID,
		line.ItemID,
		line.Quantity.String(),
		line.UnitPrice.String(),
		textOrNil(line.LicenseType),
		line.LineOrder,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) DeleteLines(ctx context.Context, quotationID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM quotation_lines WHERE quotation_id = $1", quotationID)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM quotations WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quotation %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	var quoteDate pgtype.Date
	var discountPct, taxPct, subtotal, discountAmt, taxAmt, totalAmt pgtype.Numeric
	var notes pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&q.ID, &q.QuoteNumber, &quoteDate, &q.ValidityDays, &q.CustomerID, &q.UserID,
		&discountPct, &taxPct, &subtotal, &discountAmt, &taxAmt, &totalAmt,
		&notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if quoteDate.Valid {
		q.QuoteDate = quoteDate.Time
	}
	q.DiscountPercent = money.FromNumeric(discountPct)
	q.TaxPercent = money.FromNumeric(taxPct)
	q.Subtotal = money.FromNumeric(subtotal)
	q.DiscountAmount = money.FromNumeric(discountAmt)
	q.TaxAmount = money.FromNumeric(taxAmt)
	q.TotalAmount = money.FromNumeric(totalAmt)
	if notes.Valid {
		q.Notes = &notes.String
	}
	if createdAt.Valid {
		q.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		q.UpdatedAt = updatedAt.Time
	}

	return &q, nil
}

func textOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
