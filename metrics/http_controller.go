package metrics

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-federation"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// SaveMetricRequest is the ingest payload posted by clients.
type SaveMetricRequest struct {
	EventType string         `json:"eventType"`
	AccountID *int64         `json:"accountId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Validate checks the ingest payload.
func (r SaveMetricRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EventType, validation.Required, validation.Length(1, 128)),
	)
}

func (r SaveMetricRequest) toEvent() *federation.MetricEvent {
	return &federation.MetricEvent{
		EventType: r.EventType,
		AccountID: r.AccountID,
		Metadata:  r.Metadata,
	}
}

// HTTPController handles metric ingest routes.
type HTTPController struct {
	service   *Service
	collector *Collector
	logger    federation.Logger
}

// NewHTTPController creates a new metrics HTTP controller. The collector
// is optional.
func NewHTTPController(service *Service, collector *Collector, logger federation.Logger) *HTTPController {
	if logger == nil {
		logger = noopLogger{}
	}
	return &HTTPController{
		service:   service,
		collector: collector,
		logger:    logger,
	}
}

// RegisterRoutes registers the ingest route. It belongs on the public
// allow-list: clients post metrics before they authenticate.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/api/save-metric", c.SaveMetric)
}

// SaveMetric validates and persists a client metric event.
func (c *HTTPController) SaveMetric(ctx router.Context) error {
	req := SaveMetricRequest{}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid payload",
		})
	}

	if err := req.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	saved, err := c.service.Record(ctx.Context(), req.toEvent())
	if err != nil {
		c.logger.Error("failed to persist metric event: %v", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "unable to save metric",
		})
	}

	if c.collector != nil {
		c.collector.RecordIngest(req.EventType)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"status": "saved",
		"id":     saved.ID,
	})
}
