package main

import (
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-federation"
	"github.com/goliatone/go-federation/fixtures"
	"github.com/goliatone/go-federation/linking"
	"github.com/goliatone/go-federation/metrics"
	"github.com/goliatone/go-federation/middleware/authware"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("federation"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := LoadConfig()
	if err != nil {
		lgr.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	lgr.Debug("loaded configuration", "config", print.MaybeHighlightJSON(cfg.Redacted()))

	db, err := sql.Open("sqlite3", cfg.DatabaseDSN)
	if err != nil {
		lgr.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := federation.RunMigrations(db); err != nil {
		lgr.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	bunDB := bun.NewDB(db, sqlitedialect.New())
	defer bunDB.Close()

	repos := federation.NewRepositoryManager(bunDB)
	repos.MustValidate()

	tokens := federation.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenLifetime(),
		cfg.GetIssuer(),
		lgr.GetLogger("tokens"),
	)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	metricsService := metrics.NewService(
		repos.MetricEvents(),
		metrics.WithServiceLogger(lgr.GetLogger("metrics")),
	)
	activitySink := metrics.NewStoreSink(metricsService)

	linker := linking.NewLinker(repos, linking.WithLogger(lgr.GetLogger("linker")))

	loginController := linking.NewHTTPController(
		linking.HeaderAssertionVerifier{},
		linker,
		tokens,
		linking.HTTPConfig{
			FrontendURL:   cfg.GetFrontendURL(),
			CookieSecure:  cfg.GetCookieSecure(),
			TokenLifetime: cfg.GetTokenLifetime(),
		},
		linking.WithActivitySink(activitySink),
		linking.WithControllerLogger(lgr.GetLogger("login")),
		linking.WithLoginObserver(collector.RecordLogin),
	)

	metricsController := metrics.NewHTTPController(metricsService, collector, lgr.GetLogger("metrics-http"))

	fixturesClient := fixtures.NewClient(
		cfg.FixturesBaseURL,
		cfg.FixturesAPIKey,
		fixtures.WithObserver(collector.RecordFixturesFetch),
		fixtures.WithClientLogger(lgr.GetLogger("fixtures")),
	)
	fixturesController := fixtures.NewHTTPController(fixturesClient, fixtures.HTTPConfig{
		LeagueIDs: cfg.FixturesLeagues,
		Season:    cfg.FixturesSeason,
	}, lgr.GetLogger("fixtures-http"))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath: true,
		}))
	})
	srv.Router().WithLogger(lgr.GetLogger("router"))

	srv.Router().Use(authware.New(authware.Config{
		Tokens:      tokens,
		Accounts:    repos.Accounts(),
		PublicPaths: publicPathRules(cfg.GetPublicPaths()),
		Logger:      lgr.GetLogger("authware"),
		OnOutcome: func(o authware.Outcome) {
			collector.RecordAuthOutcome(o.Authenticated, o.Skipped)
		},
	}))

	r := srv.Router()
	loginController.RegisterRoutes(r)
	metricsController.RegisterRoutes(r)
	fixturesController.RegisterRoutes(r)

	r.Get("/healthz", func(ctx router.Context) error {
		return ctx.JSON(router.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/me", func(ctx router.Context) error {
		outcome, ok := authware.FromRouter(ctx, "")
		if !ok || !outcome.Authenticated {
			return ctx.JSON(router.StatusUnauthorized, map[string]string{
				"error": "authentication required",
			})
		}
		return ctx.JSON(router.StatusOK, map[string]any{
			"identity": outcome.Principal.Identity,
			"roles":    outcome.Principal.Roles,
			"account":  outcome.Account,
		})
	})

	go func() {
		lgr.Info("serving prometheus metrics", "addr", cfg.MetricsAddr)
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			lgr.Error("metrics listener stopped", "error", err)
		}
	}()

	lgr.Info("serving federation API", "addr", cfg.Addr)
	srv.Serve(cfg.Addr)

	WaitExitSignal()
}

func publicPathRules(paths []string) []authware.PathRule {
	rules := make([]authware.PathRule, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasSuffix(p, "*") {
			rules = append(rules, authware.Prefix(strings.TrimSuffix(p, "*")))
			continue
		}
		rules = append(rules, authware.Exact(p))
	}
	return rules
}

func WaitExitSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}
