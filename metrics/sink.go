package metrics

import (
	"context"

	"github.com/goliatone/go-federation"
)

// StoreSink records activity events as metric event rows.
type StoreSink struct {
	service *Service
}

// NewStoreSink creates an ActivitySink backed by the metric event store.
func NewStoreSink(service *Service) *StoreSink {
	return &StoreSink{service: service}
}

// Record implements federation.ActivitySink.
func (s *StoreSink) Record(ctx context.Context, event federation.ActivityEvent) error {
	row := &federation.MetricEvent{
		EventType: string(event.EventType),
		EventTime: event.OccurredAt,
		Metadata:  event.Metadata,
	}
	if event.AccountID != 0 {
		id := event.AccountID
		row.AccountID = &id
	}

	_, err := s.service.Record(ctx, row)
	return err
}
