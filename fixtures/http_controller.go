package fixtures

import (
	"github.com/goliatone/go-federation"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPConfig configures which fixtures the controller serves.
type HTTPConfig struct {
	LeagueIDs []int
	Season    int
	// Next is how many upcoming fixtures to request per league.
	Next int
}

// HTTPController serves aggregated upcoming fixtures.
type HTTPController struct {
	client *Client
	config HTTPConfig
	logger federation.Logger
}

// NewHTTPController creates a new fixtures HTTP controller.
func NewHTTPController(client *Client, cfg HTTPConfig, logger federation.Logger) *HTTPController {
	if cfg.Next == 0 {
		cfg.Next = 10
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &HTTPController{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// RegisterRoutes registers the fixtures routes.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/api/fixtures/upcoming", c.Upcoming)
}

// Upcoming returns upcoming fixtures across the configured leagues.
func (c *HTTPController) Upcoming(ctx router.Context) error {
	fixtures, err := c.client.UpcomingByLeagues(ctx.Context(), c.config.LeagueIDs, c.config.Season, c.config.Next)
	if err != nil {
		c.logger.Error("failed to fetch upcoming fixtures: %v", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "unable to fetch fixtures",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"fixtures": fixtures,
	})
}
