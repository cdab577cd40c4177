// Package metrics persists client metric events and audit activity, and
// exposes Prometheus counters for the rest of the system.
package metrics

import (
	"context"
	"time"

	"github.com/goliatone/go-federation"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Service persists metric events.
type Service struct {
	repo   repository.Repository[*federation.MetricEvent]
	logger federation.Logger
	now    func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(logger federation.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceClock overrides the time source.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new metric event service.
func NewService(repo repository.Repository[*federation.MetricEvent], opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		logger: noopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Record persists a metric event, assigning id and time when absent.
func (s *Service) Record(ctx context.Context, event *federation.MetricEvent) (*federation.MetricEvent, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.EventTime.IsZero() {
		event.EventTime = s.now()
	}
	return s.repo.Create(ctx, event)
}

type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}
