package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/authtools"
	promexport "github.com/MrEthical07/authtools/metrics/export/prometheus"
	"github.com/MrEthical07/authtools/middleware"
	"github.com/MrEthical07/authtools/session"
	"github.com/MrEthical07/authtools/store/memory"
	"github.com/MrEthical07/authtools/store/postgres"
	"github.com/MrEthical07/authtools/transport/httpapi"
)

var logOutput io.Writer = os.Stderr

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the auth flows over HTTP",
		Long: `Serve POST /register, /login, /logout, /refresh and /check, plus
GET /me guarded by the access token. Users and refresh tokens live in
PostgreSQL when AUTHTOOLS_DATABASE_URL is set. Refresh tokens move to
Redis when AUTHTOOLS_REDIS_URL is set. Without either, both are kept
in memory.`,
		RunE: runServe,
	}
	bindServeFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, sec, err := loadConfig(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, cfg, sec, logger)
	if err != nil {
		return err
	}
	defer stores.close()

	engine, err := authtools.New().
		WithOptions(cfg.Auth).
		WithLogger(logger).
		WithUserStore(stores.users).
		WithTokenStore(stores.tokens).
		Build()
	if err != nil {
		return oops.Code("ENGINE_BUILD_FAILED").Wrap(err)
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newHandler(engine, cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SERVER_SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

func newHandler(engine *authtools.Engine, cfg serverConfig) http.Handler {
	router := httpapi.NewRouter(engine)

	router.With(middleware.RequireAccessToken(engine, middleware.DefaultHeader)).
		Get("/me", func(w http.ResponseWriter, r *http.Request) {
			payload, _ := middleware.PayloadFromContext(r.Context())
			httpapi.SendData(w, http.StatusOK, payload)
		})

	if cfg.Auth.Metrics.Enabled && cfg.MetricsPath != "" {
		router.Handle(cfg.MetricsPath, promexport.NewExporter(engine).Handler())
	}

	return router
}

type storeSet struct {
	users   authtools.UserStore
	tokens  authtools.TokenStore
	closers []func()
}

func (s *storeSet) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// sqlPool is the part of *pgxpool.Pool the postgres stores need.
type sqlPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// assign picks the backends. A nil pool or client leaves the previous
// choice in place; Redis wins over PostgreSQL for refresh tokens.
func (s *storeSet) assign(pool sqlPool, client redis.UniversalClient, prefix string) {
	if pool != nil {
		s.users = postgres.NewUsers(pool)
		s.tokens = postgres.NewTokens(pool)
	}
	if client != nil {
		s.tokens = session.NewStore(client, prefix)
	}
}

func backendName(store any) string {
	switch store.(type) {
	case *postgres.Users, *postgres.Tokens:
		return "postgres"
	case *session.Store:
		return "redis"
	default:
		return "memory"
	}
}

func openStores(ctx context.Context, cfg serverConfig, sec secrets, logger *slog.Logger) (*storeSet, error) {
	set := &storeSet{users: memory.NewUsers(), tokens: memory.NewTokens()}

	var pool sqlPool
	if sec.DatabaseURL != "" {
		if cfg.AutoMigrate {
			if err := migrateUp(sec.DatabaseURL); err != nil {
				return nil, err
			}
		}
		pgPool, err := postgres.Connect(ctx, sec.DatabaseURL)
		if err != nil {
			return nil, err
		}
		set.closers = append(set.closers, pgPool.Close)
		pool = pgPool
	}

	var client redis.UniversalClient
	if sec.RedisURL != "" {
		opts, err := redis.ParseURL(sec.RedisURL)
		if err != nil {
			set.close()
			return nil, oops.Code("CONFIG_INVALID").With("field", "AUTHTOOLS_REDIS_URL").Wrap(err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			set.close()
			return nil, oops.Code("REDIS_CONNECT_FAILED").Wrap(err)
		}
		set.closers = append(set.closers, func() { _ = rdb.Close() })
		client = rdb
	}

	set.assign(pool, client, cfg.RedisPrefix)

	for _, s := range []struct {
		name  string
		store any
	}{{"user store", set.users}, {"token store", set.tokens}} {
		if backend := backendName(s.store); backend == "memory" {
			logger.Warn(s.name, "backend", backend)
		} else {
			logger.Info(s.name, "backend", backend)
		}
	}

	return set, nil
}
