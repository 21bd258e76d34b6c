package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/Achyut2001/Data-provider-Service/internal/logging"
)

// UpdatePropertyStatus moves a property to another lifecycle status.
// status must be one of Statuses (case-insensitive).
func (s *Service) UpdatePropertyStatus(ctx context.Context, id int64, status string) (*Property, error) {
	tok := ParseStatus(status)
	if !tok.Recognized {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	p, err := s.props.FindByID(ctx, id)
	if errors.Is(err, ErrPropertyNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrPropertyNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find property %d: %w", id, err)
	}

	previous := p.Status
	p.Status = tok.Value
	p.UpdatedAt = s.now()

	if err := s.props.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save property %d: %w", id, err)
	}

	logging.FromContext(ctx).Info("property status updated", "property_id", id, "from", previous, "to", p.Status)
	return p, nil
}

// RejectedProperties lists properties whose status is REJECTED.
func (s *Service) RejectedProperties(ctx context.Context) ([]*Property, error) {
	props, err := s.props.FindByStatus(ctx, StatusRejected)
	if err != nil {
		return nil, fmt.Errorf("list rejected properties: %w", err)
	}
	return props, nil
}
