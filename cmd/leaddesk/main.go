package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/johnwards/leaddesk/internal/api"
	"github.com/johnwards/leaddesk/internal/api/activities"
	"github.com/johnwards/leaddesk/internal/api/admin"
	"github.com/johnwards/leaddesk/internal/api/agents"
	"github.com/johnwards/leaddesk/internal/api/leads"
	wsapi "github.com/johnwards/leaddesk/internal/api/workspace"
	"github.com/johnwards/leaddesk/internal/config"
	"github.com/johnwards/leaddesk/internal/database"
	"github.com/johnwards/leaddesk/internal/events"
	"github.com/johnwards/leaddesk/internal/logging"
	"github.com/johnwards/leaddesk/internal/seed"
	"github.com/johnwards/leaddesk/internal/store"
	"github.com/johnwards/leaddesk/internal/workspace"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	var noSeed bool
	flagSet := pflag.NewFlagSet("leaddesk", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flagSet.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flagSet.StringVar(&cfg.AgentID, "agent", cfg.AgentID, "ID of the agent whose workspace is served")
	flagSet.StringVar(&cfg.AMQPURL, "amqp-url", cfg.AMQPURL, "AMQP broker URL for lead events (events are logged when empty)")
	flagSet.StringSliceVar(&cfg.CORSOrigins, "cors-origin", cfg.CORSOrigins, "allowed CORS origin (repeatable)")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flagSet.BoolVar(&noSeed, "no-seed", false, "do not insert demo data into an empty database")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	logging.Setup(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, cleanup, err := newHandler(ctx, cfg, !noSeed)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting leaddesk server", "addr", cfg.Addr, "agent_id", cfg.AgentID)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}

// newHandler opens and migrates the database, wires the stores, workspace
// and routes, and returns the full middleware chain. cleanup releases the
// database and the event broker.
func newHandler(ctx context.Context, cfg config.Config, seedData bool) (http.Handler, func(), error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	if seedData {
		if err := seed.Seed(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("seed data: %w", err)
		}
	}

	s := store.New(db)

	publisher, closePublisher, err := newPublisher(cfg.AMQPURL)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	cleanup := func() {
		closePublisher()
		_ = db.Close()
	}

	ws := workspace.New(cfg.AgentID, s.Leads, publisher, workspace.WithLogger(slog.Default()))
	if err := ws.Reload(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("load workspace: %w", err)
	}
	reload := func(ctx context.Context) {
		if err := ws.Reload(ctx); err != nil {
			slog.Warn("workspace reload failed", "error", err)
		}
	}

	mux := http.NewServeMux()

	agents.RegisterRoutes(mux, s)
	leads.RegisterRoutes(mux, leads.Config{Store: s, Publisher: publisher, Changed: reload})
	activities.RegisterRoutes(mux, s)
	wsapi.RegisterRoutes(mux, ws)

	admin.RegisterRoutes(mux, s.DB, reload)

	mux.Handle("GET /metrics", promhttp.Handler())

	// Catch-all: return 404 in the error envelope.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		corrID := api.CorrelationID(r.Context())
		api.WriteError(w, http.StatusNotFound, api.NewNotFoundError(
			fmt.Sprintf("No route found for %s %s", r.Method, r.URL.Path),
			corrID,
		))
	})

	handler := api.Chain(mux,
		api.Recovery(),
		api.RequestID(),
		api.CORS(cfg.CORSOrigins),
		api.Auth(cfg.AuthToken),
		api.JSONContentType(),
		api.Metrics(),
		api.Logging(),
	)

	return handler, cleanup, nil
}

// newPublisher connects to the broker when url is set and otherwise logs
// events.
func newPublisher(url string) (events.Publisher, func(), error) {
	if url == "" {
		slog.Info("no AMQP URL configured, lead events will be logged")
		return events.LogPublisher{}, func() {}, nil
	}

	p, err := events.DialAMQP(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect event broker: %w", err)
	}
	return p, func() {
		if err := p.Close(); err != nil {
			slog.Warn("close event broker", "error", err)
		}
	}, nil
}
