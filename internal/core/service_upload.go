package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Achyut2001/Data-provider-Service/internal/logging"
)

// failedAuditTimeout bounds the FAILED audit write once the request context
// can no longer be used.
const failedAuditTimeout = 10 * time.Second

// ProcessUpload runs the ingestion pipeline over one workbook.
//
// The audit is created in the PROCESSING state and saved before the workbook
// is read, so the upload id exists even if processing fails. Row-level
// problems are recorded in the audit and never abort the run. A workbook that
// cannot be read, or final writes that cannot complete, leave the audit
// FAILED and return an error wrapping ErrProcessingFile.
//
// Returns ErrTooManyUploads if the concurrent upload limit is reached and
// no slot becomes available within the wait period.
func (s *Service) ProcessUpload(ctx context.Context, req UploadRequest) (*UploadSummary, error) {
	if err := s.acquireSlot(ctx, req.FileName); err != nil {
		return nil, err
	}
	defer s.uploadLimiter.Release()

	started := s.now()
	audit := &BatchAudit{
		ID:          s.newID(),
		FileName:    req.FileName,
		SubmittedBy: req.SubmittedBy,
		Timestamp:   started,
		State:       StateProcessing,
		Outcomes:    make(map[int]RowOutcome),
	}

	logger := logging.WithUpload(ctx, audit.ID, req.FileName).With(clientAttrs(ctx)...)

	if err := s.audits.Save(ctx, audit); err != nil {
		logger.Error("failed to create upload audit", "error", err)
		return nil, fmt.Errorf("create upload audit: %w", err)
	}

	s.metrics.UploadStarted()
	logger.Info("upload started", "uploaded_by", req.SubmittedBy, "bytes", len(req.Data))

	rows, err := s.reader.ReadRows(req.Data)
	if err != nil {
		return nil, s.failUpload(ctx, logger, audit, started, err)
	}

	props := s.processRows(logger, audit, rows)

	if err := s.finalize(ctx, audit, props); err != nil {
		return nil, s.failUpload(ctx, logger, audit, started, err)
	}

	s.metrics.RowsProcessed(audit.SuccessRows, audit.FailedRows, audit.WarningRows)
	s.metrics.UploadFinished(audit.State, s.now().Sub(started))

	logger.Info("upload completed",
		"total", audit.TotalRows,
		"success", audit.SuccessRows,
		"failed", audit.FailedRows,
		"warnings", audit.WarningRows,
	)

	return SummaryFromAudit(audit), nil
}

// acquireSlot takes an upload slot, logging when the upload has to queue
// behind others.
func (s *Service) acquireSlot(ctx context.Context, fileName string) error {
	if s.uploadLimiter.TryAcquire() {
		return nil
	}

	logger := logging.FromContext(ctx)
	logger.Info("upload queued", "file", fileName, "active", s.uploadLimiter.ActiveCount())
	if err := s.uploadLimiter.Acquire(ctx); err != nil {
		logger.Warn("upload rejected while queued", "file", fileName, "error", err)
		return err
	}
	return nil
}

// processRows validates and converts every row, recording exactly one outcome
// per row. Row numbers count from 2: the header occupies row 1.
func (s *Service) processRows(logger *slog.Logger, audit *BatchAudit, rows [][]*Cell) []*Property {
	now := s.now()
	props := make([]*Property, 0, len(rows))

	for i, cells := range rows {
		rowNumber := i + 2

		rec := extractRow(logger, cells, rowNumber)
		if rec == nil {
			msg := ExtractionFailedMessage
			audit.Outcomes[rowNumber] = RowOutcome{RowNumber: rowNumber, ErrorMessage: &msg}
			audit.FailedRows++
			continue
		}

		out := s.validator.Validate(rec, rowNumber)
		if !out.Success {
			audit.Outcomes[rowNumber] = out
			audit.FailedRows++
			continue
		}

		audit.SuccessRows++
		p, err := s.convert(logger, rec, now)
		if err != nil {
			logger.Error("property conversion failed", "row", rowNumber, "error", err)
			msg := ConversionErrorPrefix + err.Error()
			out.Success = false
			out.ErrorMessage = &msg
			audit.SuccessRows--
			audit.FailedRows++
		} else {
			props = append(props, p)
			if out.WarningMessage != nil {
				audit.WarningRows++
			}
		}
		audit.Outcomes[rowNumber] = out
	}

	audit.TotalRows = len(rows)
	return props
}

// finalize persists accepted properties and the completed audit. When the
// audit store supports transactions both writes share one.
func (s *Service) finalize(ctx context.Context, audit *BatchAudit, props []*Property) error {
	write := func(audits AuditRepository, repo PropertyRepository) error {
		if len(props) > 0 {
			if err := repo.SaveAll(ctx, props); err != nil {
				return fmt.Errorf("save properties: %w", err)
			}
		}
		audit.State = StateCompleted
		if err := audits.Save(ctx, audit); err != nil {
			return fmt.Errorf("save upload audit: %w", err)
		}
		return nil
	}

	if tx, ok := s.audits.(TxRunner); ok {
		return tx.InTx(ctx, write)
	}
	return write(s.audits, s.props)
}

// failUpload marks the audit FAILED, persists it, and returns the error to
// report to the caller. The FAILED write is detached from ctx so it still
// lands when the request was cancelled or timed out.
func (s *Service) failUpload(ctx context.Context, logger *slog.Logger, audit *BatchAudit, started time.Time, cause error) error {
	logger.Error("upload failed", "error", cause)

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failedAuditTimeout)
	defer cancel()

	audit.State = StateFailed
	if err := s.audits.Save(saveCtx, audit); err != nil {
		logger.Error("failed to record upload failure", "error", err)
		cause = errors.Join(cause, err)
	}
	s.metrics.UploadFinished(StateFailed, s.now().Sub(started))

	return fmt.Errorf("%w: %w", ErrProcessingFile, cause)
}
