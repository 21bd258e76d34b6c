package core

import (
	"context"
	"errors"
)

var (
	// ErrUploadNotFound is returned when no audit exists for an upload id.
	ErrUploadNotFound = errors.New("upload not found")

	// ErrPropertyNotFound is returned when no property exists for an id.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrProcessingFile wraps failures that abort a whole upload.
	ErrProcessingFile = errors.New("failed to process Excel file")

	// ErrInvalidStatus is returned for a status outside the lifecycle set.
	ErrInvalidStatus = errors.New("invalid property status")
)

// AuditRepository stores batch audits.
// FindByID returns ErrUploadNotFound when the id is unknown.
type AuditRepository interface {
	Save(ctx context.Context, audit *BatchAudit) error
	FindByID(ctx context.Context, id string) (*BatchAudit, error)
	FindByStatus(ctx context.Context, state AuditState) ([]*BatchAudit, error)
}

// PropertyRepository stores property listings.
// FindByID returns ErrPropertyNotFound when the id is unknown. SaveAll
// assigns ids to properties that have none.
type PropertyRepository interface {
	Save(ctx context.Context, p *Property) error
	SaveAll(ctx context.Context, props []*Property) error
	FindByID(ctx context.Context, id int64) (*Property, error)
	FindByStatus(ctx context.Context, status string) ([]*Property, error)
}

// TxRunner is implemented by stores that can run the final writes of an
// upload in a single transaction. fn receives repositories bound to it.
type TxRunner interface {
	InTx(ctx context.Context, fn func(audits AuditRepository, props PropertyRepository) error) error
}

// WorkbookReader reads every data row of every sheet in a workbook. Header
// rows are already skipped; each row holds its cells in column order.
type WorkbookReader interface {
	ReadRows(data []byte) ([][]*Cell, error)
}
