package docnum

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Allocator hands out document numbers.
type Allocator interface {
	Allocate(ctx context.Context, docType string, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository builds an Allocator backed by the document_sequences table.
func NewRepository(pool *pgxpool.Pool) Allocator {
	return &repository{db: pool}
}

// Allocate reserves the next sequence value for the document type and year.
// The upsert increments the counter atomically, so concurrent callers never
// observe the same value.
func (r *repository) Allocate(ctx context.Context, docType string, date time.Time) (string, error) {
	period := fmt.Sprintf("%d", date.Year())
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, docType, period).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("docnum: allocate %s: %w", docType, err)
	}
	return Format(PrefixFor(docType, date), seq), nil
}
