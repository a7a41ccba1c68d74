package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	rbac "paygrid/contexts/identity-access/rbac-service"
	rbacpostgres "paygrid/contexts/identity-access/rbac-service/adapters/postgres"
	tenancymemory "paygrid/contexts/identity-access/tenancy-service/adapters/memory"
	redisadapter "paygrid/contexts/identity-access/tenancy-service/adapters/redis"
	tenancyapp "paygrid/contexts/identity-access/tenancy-service/application"
	tenancyports "paygrid/contexts/identity-access/tenancy-service/ports"
	payroll "paygrid/contexts/payroll-core/payroll-service"
	payrollpostgres "paygrid/contexts/payroll-core/payroll-service/adapters/postgres"
	org "paygrid/contexts/workforce-core/org-service"
	orgpostgres "paygrid/contexts/workforce-core/org-service/adapters/postgres"
	"paygrid/internal/platform/config"
	"paygrid/internal/platform/db"
	"paygrid/internal/platform/httpserver"
	"paygrid/internal/platform/idempotency"
	"paygrid/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  func(ctx context.Context) error
	sweeper      idempotency.Sweeper
	pollInterval time.Duration
	logger       *slog.Logger
}

// Option customizes API construction. Used to inject external collaborators
// that have no in-repo implementation.
type Option func(*buildOptions)

type buildOptions struct {
	tokenVerifier tenancyports.TokenVerifier
}

// WithTokenVerifier wires the bearer-token verifier (an OIDC/JWKS client
// supplied by the deployment). Without it the Authorization header is ignored
// and identity resolves through headers or configured fallbacks only.
func WithTokenVerifier(verifier tenancyports.TokenVerifier) Option {
	return func(o *buildOptions) {
		o.tokenVerifier = verifier
	}
}

func BuildAPI(opts ...Option) (*APIApp, error) {
	var options buildOptions
	for _, opt := range opts {
		opt(&options)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	permissionCache := buildPermissionCache(cfg)

	rbacModule := rbac.NewModule(rbac.Dependencies{
		Repository:      rbacpostgres.NewRepository(pg.DB, logger),
		PermissionCache: permissionCache,
		Clock:           rbacpostgres.SystemClock{},
		IDGenerator:     rbacpostgres.UUIDGenerator{},
		CacheTTL:        cfg.PermissionCacheTTL,
		Logger:          logger,
	})

	orgModule := org.NewModule(org.Dependencies{
		Repository: orgpostgres.NewRepository(pg.DB, logger),
		Clock:      orgpostgres.SystemClock{},
		Logger:     logger,
	})

	bus := messaging.NewBus(logger)
	payrollRepo := payrollpostgres.NewRepository(pg.DB, logger)
	payrollModule := payroll.NewModule(payroll.Dependencies{
		Repository:  payrollRepo,
		Outbox:      payrollRepo,
		Publisher:   bus,
		Clock:       payrollpostgres.SystemClock{},
		IDGenerator: payrollpostgres.UUIDGenerator{},
		BatchSize:   100,
		Logger:      logger,
	})

	server := httpserver.New(httpserver.Dependencies{
		Addr:    normalizeAddr(cfg.HTTPPort),
		Logger:  logger,
		RBAC:    rbacModule,
		Org:     orgModule,
		Payroll: payrollModule,
		Resolver: tenancyapp.Resolver{Config: tenancyapp.ResolverConfig{
			AllowHeaderIdentity: cfg.AllowHeaderIdentity,
			FallbackTenantID:    cfg.FallbackTenantID,
			FallbackUserID:      cfg.FallbackUserID,
			FallbackEmail:       cfg.FallbackUserEmail,
			FallbackRole:        cfg.FallbackUserRole,
		}},
		TokenVerifier:    options.tokenVerifier,
		IdempotencyStore: idempotency.NewPostgresStore(pg.DB),
		IdempotencyClock: idempotency.SystemClock{},
		IdempotencyTTL:   cfg.IdempotencyTTL,
		PolicyPrefix:     cfg.PermissionPolicyPrefix,
		ReadyCheck:       pg.Ping,
	})

	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	payrollRepo := payrollpostgres.NewRepository(pg.DB, logger)
	payrollModule := payroll.NewModule(payroll.Dependencies{
		Repository:  payrollRepo,
		Outbox:      payrollRepo,
		Publisher:   bus,
		Clock:       payrollpostgres.SystemClock{},
		IDGenerator: payrollpostgres.UUIDGenerator{},
		BatchSize:   100,
		Logger:      logger,
	})

	pollInterval := cfg.WorkerPollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	return &WorkerApp{
		postgres:    pg,
		outboxRelay: payrollModule.Relay.RunOnce,
		sweeper: idempotency.Sweeper{
			Store:  idempotency.NewPostgresStore(pg.DB),
			Clock:  idempotency.SystemClock{},
			Logger: logger,
		},
		pollInterval: pollInterval,
		logger:       logger,
	}, nil
}

func buildPermissionCache(cfg config.Config) tenancyports.PermissionCache {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return tenancymemory.NewCache()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return redisadapter.NewCache(client)
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay(ctx); err != nil {
			return err
		}
		if err := w.sweeper.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
