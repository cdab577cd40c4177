// Package fixtures proxies an upstream sports-fixtures API. Per-league
// requests fan out over a bounded worker pool behind a shared rate limit.
package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/goliatone/go-federation"
	"golang.org/x/time/rate"
)

const apiKeyHeader = "x-apisports-key"

// Fixture is a single upcoming match.
type Fixture struct {
	ID        int64     `json:"id"`
	LeagueID  int       `json:"league_id"`
	League    string    `json:"league"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	KickoffAt time.Time `json:"kickoff_at"`
	Status    string    `json:"status"`
}

// Client fetches fixtures from the upstream API.
type Client struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	limiter  *rate.Limiter
	workers  int
	logger   federation.Logger
	observer func(status string)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit bounds upstream requests per second.
func WithRateLimit(limiter *rate.Limiter) ClientOption {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// WithWorkers bounds the fan-out pool size.
func WithWorkers(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(logger federation.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver reports each upstream request status, e.g. to a metrics
// collector.
func WithObserver(fn func(status string)) ClientOption {
	return func(c *Client) {
		c.observer = fn
	}
}

// NewClient creates a fixtures API client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		workers: 4,
		logger:  noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type leagueResult struct {
	leagueID int
	fixtures []Fixture
	err      error
}

// UpcomingByLeagues fetches the next fixtures for every league id,
// aggregated and sorted by kickoff time. Leagues that fail are skipped;
// the call errors only when nothing could be fetched.
func (c *Client) UpcomingByLeagues(ctx context.Context, leagueIDs []int, season, next int) ([]Fixture, error) {
	if len(leagueIDs) == 0 {
		return []Fixture{}, nil
	}

	jobs := make(chan int)
	results := make(chan leagueResult, len(leagueIDs))

	workers := c.workers
	if workers > len(leagueIDs) {
		workers = len(leagueIDs)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for leagueID := range jobs {
				fixtures, err := c.fetchLeague(ctx, leagueID, season, next)
				results <- leagueResult{leagueID: leagueID, fixtures: fixtures, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range leagueIDs {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]Fixture, 0)
	successes := 0
	var errs []error
	for result := range results {
		if result.err != nil {
			c.logger.Error("fixtures fetch failed for league %d: %v", result.leagueID, result.err)
			errs = append(errs, result.err)
			continue
		}
		successes++
		all = append(all, result.fixtures...)
	}

	// A league with no upcoming fixtures is still a successful fetch.
	if successes == 0 {
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].KickoffAt.Before(all[j].KickoffAt)
	})

	return all, nil
}

func (c *Client) fetchLeague(ctx context.Context, leagueID, season, next int) ([]Fixture, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(c.baseURL + "/fixtures")
	if err != nil {
		return nil, fmt.Errorf("invalid fixtures base URL: %w", err)
	}

	query := endpoint.Query()
	query.Set("league", strconv.Itoa(leagueID))
	query.Set("season", strconv.Itoa(season))
	query.Set("next", strconv.Itoa(next))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("error")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.observe(strconv.Itoa(resp.StatusCode))
		return nil, fmt.Errorf("fixtures upstream returned %d for league %d", resp.StatusCode, leagueID)
	}
	c.observe("ok")

	var envelope upstreamEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures response: %w", err)
	}

	fixtures := make([]Fixture, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		fixtures = append(fixtures, Fixture{
			ID:        item.Fixture.ID,
			LeagueID:  item.League.ID,
			League:    item.League.Name,
			HomeTeam:  item.Teams.Home.Name,
			AwayTeam:  item.Teams.Away.Name,
			KickoffAt: item.Fixture.Date,
			Status:    item.Fixture.Status.Short,
		})
	}

	return fixtures, nil
}

func (c *Client) observe(status string) {
	if c.observer != nil {
		c.observer(status)
	}
}

type upstreamEnvelope struct {
	Response []upstreamFixture `json:"response"`
}

type upstreamFixture struct {
	Fixture struct {
		ID     int64     `json:"id"`
		Date   time.Time `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Teams struct {
		Home struct {
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
}

type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}
