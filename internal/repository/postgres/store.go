// Package postgres implements the ingestion repositories on PostgreSQL using
// raw SQL over pgx.
package postgres

import (
	"context"

	"github.com/Achyut2001/Data-provider-Service/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store hands out repositories bound to a connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Audits returns the upload audit repository.
func (s *Store) Audits() *AuditRepository {
	return &AuditRepository{db: s.pool, store: s}
}

// Properties returns the property repository.
func (s *Store) Properties() *PropertyRepository {
	return &PropertyRepository{db: s.pool}
}

// InTx runs fn in a transaction, committing only if fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(core.AuditRepository, core.PropertyRepository) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(&AuditRepository{db: tx}, &PropertyRepository{db: tx})
	})
}

var _ core.TxRunner = (*Store)(nil)

// text converts a string to pgtype.Text; empty strings are stored as NULL.
func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
