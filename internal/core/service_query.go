package core

import (
	"context"
	"errors"
	"fmt"
)

// GetUploadStatus returns the audit of an upload. An unknown id yields an
// error wrapping ErrUploadNotFound.
func (s *Service) GetUploadStatus(ctx context.Context, uploadID string) (*BatchAudit, error) {
	audit, err := s.audits.FindByID(ctx, uploadID)
	if errors.Is(err, ErrUploadNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, uploadID)
	}
	if err != nil {
		return nil, fmt.Errorf("find upload %s: %w", uploadID, err)
	}
	return audit, nil
}

// ListUploads returns the audits currently in the given state.
func (s *Service) ListUploads(ctx context.Context, state AuditState) ([]*BatchAudit, error) {
	audits, err := s.audits.FindByStatus(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("list uploads by status %s: %w", state, err)
	}
	return audits, nil
}
