package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

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
	Get(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]InvoiceWithCustomer, int, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]InvoiceWithCustomer, error)
	Create(ctx context.Context, invoice Invoice) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	InsertLine(ctx context.Context, line InvoiceLine) (int64, error)
	DeleteLines(ctx context.Context, invoiceID int64) error
	Delete(ctx context.Context, id int64) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
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

const invoiceColumns = `id, invoice_number, invoice_date, due_date, validity_days, customer_id, user_id,
	quotation_id, status, payment_status, subtotal, discount_amount, tax_amount, total_amount,
	notes, terms, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1`, invoiceColumns), id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return inv, nil
}

func (r *repository) getLines(ctx context.Context, invoiceID int64) ([]InvoiceLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, invoice_id, item_id, quantity, unit_price, discount_percent, tax_percent, license_type, line_order
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY line_order, id
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []InvoiceLine
	for rows.Next() {
		var line InvoiceLine
		var quantity, unitPrice, discountPct, taxPct pgtype.Numeric
		var licenseType pgtype.Text

		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.ItemID, &quantity, &unitPrice, &discountPct, &taxPct, &licenseType, &line.LineOrder); err != nil {
			return nil, err
		}
		line.Quantity = money.FromNumeric(quantity)
		line.UnitPrice = money.FromNumeric(unitPrice)
		line.DiscountPercent = money.FromNumeric(discountPct)
		line.TaxPercent = money.FromNumeric(taxPct)
		if licenseType.Valid {
			line.LicenseType = &licenseType.String
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]InvoiceWithCustomer, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("i.customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("i.user_id = $%d", argPos))
		args = append(args, *req.UserID)
		argPos++
	}
	if req.QuotationID != nil {
		conditions = append(conditions, fmt.Sprintf("i.quotation_id = $%d", argPos))
		args = append(args, *req.QuotationID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", argPos))
		args = append(args, string(*req.Status))
		argPos++
	}
	if req.PaymentStatus != nil {
		conditions = append(conditions, fmt.Sprintf("i.payment_status = $%d", argPos))
		args = append(args, string(*req.PaymentStatus))
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("i.invoice_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("i.invoice_date <= $%d", argPos))
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

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM invoices i %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT i.id, i.invoice_number, i.invoice_date, i.due_date, i.validity_days, i.customer_id, i.user_id,
		       i.quotation_id, i.status, i.payment_status, i.subtotal, i.discount_amount, i.tax_amount, i.total_amount,
		       i.notes, i.terms, i.created_at, i.updated_at,
		       c.name AS customer_name
		FROM invoices i
		JOIN customers c ON i.customer_id = c.id
		%s
		ORDER BY i.invoice_date DESC, i.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invoices, err := collectInvoicesWithCustomer(rows)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *repository) ListOverdue(ctx context.Context, asOf time.Time) ([]InvoiceWithCustomer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.invoice_number, i.invoice_date, i.due_date, i.validity_days, i.customer_id, i.user_id,
		       i.quotation_id, i.status, i.payment_status, i.subtotal, i.discount_amount, i.tax_amount, i.total_amount,
		       i.notes, i.terms, i.created_at, i.updated_at,
		       c.name AS customer_name
		FROM invoices i
		JOIN customers c ON i.customer_id = c.id
		WHERE i.due_date < $1
		  AND i.payment_status <> 'PAID'
		  AND i.status NOT IN ('CANCELLED')
		ORDER BY i.due_date, i.id
	`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoicesWithCustomer(rows)
}

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, invoice_date, due_date, validity_days, customer_id, user_id,
			quotation_id, status, payment_status, subtotal, discount_amount, tax_amount, total_amount, notes, terms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`,
		inv.InvoiceNumber,
		inv.InvoiceDate,
		inv.DueDate,
		inv.ValidityDays,
		inv.CustomerID,
		inv.UserID,
		inv.QuotationID,
		string(inv.Status),
		string(inv.PaymentStatus),
		inv.Subtotal.String(),
		inv.DiscountAmount.String(),
		inv.TaxAmount.String(),
		inv.TotalAmount.String(),
		textOrNil(inv.Notes),
		textOrNil(inv.Terms),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE invoices SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{
		"invoice_date", "due_date", "validity_days", "notes", "terms",
		"status", "payment_status",
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
		return fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *repository) InsertLine(ctx context.Context, line InvoiceLine) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoice_lines (invoice_id, item_id, quantity, unit_price, discount_percent, tax_percent, license_type, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		line.InvoiceID,
		line.ItemID,
		line.Quantity.String(),
		line.UnitPrice.String(),
		line.DiscountPercent.String(),
		line.TaxPercent.String(),
		textOrNil(line.LicenseType),
		line.LineOrder,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) DeleteLines(ctx context.Context, invoiceID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM invoice_lines WHERE invoice_id = $1", invoiceID)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkOverdue flips unpaid invoices past their due date to OVERDUE and
// returns how many rows changed.
func (r *repository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices
		SET status = 'OVERDUE', updated_at = NOW()
		WHERE due_date < $1
		  AND payment_status <> 'PAID'
		  AND status IN ('DRAFT', 'SENT')
	`, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func collectInvoicesWithCustomer(rows pgx.Rows) ([]InvoiceWithCustomer, error) {
	var invoices []InvoiceWithCustomer
	for rows.Next() {
		var inv InvoiceWithCustomer
		var invoiceDate, dueDate pgtype.Date
		var quotationID pgtype.Int8
		var subtotal, discountAmt, taxAmt, totalAmt pgtype.Numeric
		var notes, terms pgtype.Text
		var createdAt, updatedAt pgtype.Timestamptz

		err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &invoiceDate, &dueDate, &inv.ValidityDays, &inv.CustomerID, &inv.UserID,
			&quotationID, &inv.Status, &inv.PaymentStatus, &subtotal, &discountAmt, &taxAmt, &totalAmt,
			&notes, &terms, &createdAt, &updatedAt,
			&inv.CustomerName,
		)
		if err != nil {
			return nil, err
		}

		if invoiceDate.Valid {
			inv.InvoiceDate = invoiceDate.Time
		}
		if dueDate.Valid {
			inv.DueDate = dueDate.Time
		}
		if quotationID.Valid {
			inv.QuotationID = &quotationID.Int64
		}
		inv.Subtotal = money.FromNumeric(subtotal)
		inv.DiscountAmount = money.FromNumeric(discountAmt)
		inv.TaxAmount = money.FromNumeric(taxAmt)
		inv.TotalAmount = money.FromNumeric(totalAmt)
		if notes.Valid {
			inv.Notes = &notes.String
		}
		if terms.Valid {
			inv.Terms = &terms.String
		}
		if createdAt.Valid {
			inv.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			inv.UpdatedAt = updatedAt.Time
		}

		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var invoiceDate, dueDate pgtype.Date
	var quotationID pgtype.Int8
	var subtotal, discountAmt, taxAmt, totalAmt pgtype.Numeric
	var notes, terms pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &invoiceDate, &dueDate, &inv.ValidityDays, &inv.CustomerID, &inv.UserID,
		&quotationID, &inv.Status, &inv.PaymentStatus, &subtotal, &discountAmt, &taxAmt, &totalAmt,
		&notes, &terms, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if invoiceDate.Valid {
		inv.InvoiceDate = invoiceDate.Time
	}
	if dueDate.Valid {
		inv.DueDate = dueDate.Time
	}
	if quotationID.Valid {
		inv.QuotationID = &quotationID.Int64
	}
	inv.Subtotal = money.FromNumeric(subtotal)
	inv.DiscountAmount = money.FromNumeric(discountAmt)
	inv.TaxAmount = money.FromNumeric(taxAmt)
	inv.TotalAmount = money.FromNumeric(totalAmt)
	if notes.Valid {
		inv.Notes = &notes.String
	}
	if terms.Valid {
		inv.Terms = &terms.String
	}
	if createdAt.Valid {
		inv.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		inv.UpdatedAt = updatedAt.Time
	}

	return &inv, nil
}

func textOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
