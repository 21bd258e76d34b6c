package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Achyut2001/Data-provider-Service/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// AuditRepository stores upload audits in the upload_audit table.
type AuditRepository struct {
	db    DBTX
	store *Store // nil inside a transaction
}

var (
	_ core.AuditRepository = (*AuditRepository)(nil)
	_ core.TxRunner        = (*AuditRepository)(nil)
)

const auditColumns = `upload_id, file_name, uploaded_by, timestamp, status, row_results,
	total_rows, success_rows, failed_rows, warning_rows`

// Save inserts the audit or updates its mutable fields.
func (r *AuditRepository) Save(ctx context.Context, a *core.BatchAudit) error {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return fmt.Errorf("invalid upload id %q: %w", a.ID, err)
	}

	outcomes := a.Outcomes
	if outcomes == nil {
		outcomes = map[int]core.RowOutcome{}
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO upload_audit (`+auditColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (upload_id) DO UPDATE SET
			status       = EXCLUDED.status,
			row_results  = EXCLUDED.row_results,
			total_rows   = EXCLUDED.total_rows,
			success_rows = EXCLUDED.success_rows,
			failed_rows  = EXCLUDED.failed_rows,
			warning_rows = EXCLUDED.warning_rows`,
		pgtype.UUID{Bytes: id, Valid: true},
		a.FileName,
		text(a.SubmittedBy),
		a.Timestamp,
		string(a.State),
		outcomes,
		a.TotalRows,
		a.SuccessRows,
		a.FailedRows,
		a.WarningRows,
	)
	if err != nil {
		return fmt.Errorf("failed to save upload audit: %w", err)
	}
	return nil
}

// FindByID returns core.ErrUploadNotFound for an unknown or malformed id.
func (r *AuditRepository) FindByID(ctx context.Context, id string) (*core.BatchAudit, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, core.ErrUploadNotFound
	}

	row := r.db.QueryRow(ctx, `SELECT `+auditColumns+` FROM upload_audit WHERE upload_id = $1`,
		pgtype.UUID{Bytes: parsed, Valid: true})

	a, err := scanAudit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload audit: %w", err)
	}
	return a, nil
}

// FindByStatus returns the audits in state, newest first.
func (r *AuditRepository) FindByStatus(ctx context.Context, state core.AuditState) ([]*core.BatchAudit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+auditColumns+` FROM upload_audit WHERE status = $1 ORDER BY timestamp DESC`,
		string(state))
	if err != nil {
		return nil, fmt.Errorf("failed to list upload audits: %w", err)
	}
	defer rows.Close()

	audits := []*core.BatchAudit{}
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload audit: %w", err)
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list upload audits: %w", err)
	}
	return audits, nil
}

// InTx runs fn in a transaction. Inside a transaction it runs fn directly.
func (r *AuditRepository) InTx(ctx context.Context, fn func(core.AuditRepository, core.PropertyRepository) error) error {
	if r.store == nil {
		return fn(r, &PropertyRepository{db: r.db})
	}
	return r.store.InTx(ctx, fn)
}

func scanAudit(row pgx.Row) (*core.BatchAudit, error) {
	var (
		a          core.BatchAudit
		id         pgtype.UUID
		uploadedBy pgtype.Text
		status     string
	)
	err := row.Scan(
		&id,
		&a.FileName,
		&uploadedBy,
		&a.Timestamp,
		&status,
		&a.Outcomes,
		&a.TotalRows,
		&a.SuccessRows,
		&a.FailedRows,
		&a.WarningRows,
	)
	if err != nil {
		return nil, err
	}
	a.ID = uuid.UUID(id.Bytes).String()
	a.SubmittedBy = uploadedBy.String
	a.State = core.AuditState(status)
	if a.Outcomes == nil {
		a.Outcomes = map[int]core.RowOutcome{}
	}
	return &a, nil
}
