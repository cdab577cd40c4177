package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates Prometheus counters for the federation service.
type Collector struct {
	authOutcomes     *prometheus.CounterVec
	logins           *prometheus.CounterVec
	metricIngest     *prometheus.CounterVec
	fixturesUpstream *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "federation_auth_outcomes_total",
			Help: "Request credential resolutions by outcome",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "federation_logins_total",
			Help: "Login callbacks by result",
		}, []string{"result"}),
		metricIngest: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "federation_metric_ingest_total",
			Help: "Client metric events ingested by type",
		}, []string{"event_type"}),
		fixturesUpstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "federation_fixtures_upstream_total",
			Help: "Fixtures upstream requests by status",
		}, []string{"status"}),
	}

	reg.MustRegister(
		c.authOutcomes,
		c.logins,
		c.metricIngest,
		c.fixturesUpstream,
	)

	return c
}

// RecordAuthOutcome counts one credential resolution.
func (c *Collector) RecordAuthOutcome(authenticated, skipped bool) {
	outcome := "anonymous"
	switch {
	case skipped:
		outcome = "skipped"
	case authenticated:
		outcome = "authenticated"
	}
	c.authOutcomes.WithLabelValues(outcome).Inc()
}

// RecordLogin counts one login callback.
func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

// RecordIngest counts one ingested metric event.
func (c *Collector) RecordIngest(eventType string) {
	c.metricIngest.WithLabelValues(eventType).Inc()
}

// RecordFixturesFetch counts one upstream fixtures request.
func (c *Collector) RecordFixturesFetch(status string) {
	c.fixturesUpstream.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
