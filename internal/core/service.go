package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service provides the core business logic for property ingestion.
type Service struct {
	audits AuditRepository
	props  PropertyRepository
	reader WorkbookReader

	validator     *RowValidator
	uploadLimiter *UploadLimiter
	metrics       MetricsRecorder

	now     func() time.Time
	newID   func() string
	convert func(*slog.Logger, *FieldRecord, time.Time) (*Property, error)
}

// Option configures a Service.
type Option func(*Service)

// WithUploadLimiter caps the number of uploads processed at once.
func WithUploadLimiter(l *UploadLimiter) Option {
	return func(s *Service) { s.uploadLimiter = l }
}

// WithMetrics sets the recorder that receives ingestion measurements.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRules replaces the schema rule table.
func WithRules(rules []FieldRule) Option {
	return func(s *Service) { s.validator = NewRowValidator(rules) }
}

// WithClock sets the time source used for audit and property timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service instance.
func NewService(audits AuditRepository, props PropertyRepository, reader WorkbookReader, opts ...Option) *Service {
	s := &Service{
		audits:        audits,
		props:         props,
		reader:        reader,
		validator:     NewRowValidator(nil),
		uploadLimiter: NewUploadLimiter(DefaultMaxConcurrentUploads, DefaultMaxWaitTime),
		metrics:       NopRecorder{},
		now:           time.Now,
		newID:         func() string { return uuid.New().String() },
		convert:       convertRow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadLimiterStatus returns the current upload concurrency state.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.uploadLimiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.uploadLimiter.WaitForDrain(ctx)
}
