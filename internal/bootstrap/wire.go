package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/redis"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	http_handlers "github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/handlers"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

const schemaTimeout = 10 * time.Second

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(dsn string, debug bool) (*sql.DB, error)

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(rabbitURL, exchange string) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

// Publisher is an account.EventPublisher that owns a connection.
type Publisher interface {
	account.EventPublisher
	Close() error
}

// storeWithPing is what the service and the readiness probe need from a store.
type storeWithPing interface {
	account.Store
	Ping(ctx context.Context) error
}

/*
========================
 Core bootstrap logic
========================
*/

// closers collects shutdown funcs and runs them in reverse order.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c closers) run() { runCleanup(c) }

func newServer(deps Deps) (*http.Server, func(), error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cl closers
	fail := func(err error) (*http.Server, func(), error) {
		cl.run()
		return nil, nil, err
	}

	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	store, err := openStore(deps, cfg, hasher, &cl)
	if err != nil {
		return fail(err)
	}
	limiter := openLimiter(deps, cfg, &cl)
	pub, err := openPublisher(deps, cfg, &cl)
	if err != nil {
		return fail(err)
	}

	svc := account.NewService(store, hasher, pub).
		WithLogger(logger.Logger).
		WithAudit(auditToLog)

	mux, err := deps.NewRouter(router.Deps{
		Health:  http_handlers.NewHealthHandler(store),
		Account: http_handlers.NewAccountHandler(svc),
		RateLimit: router.RateLimitConfig{
			Enabled:       cfg.RLEnabled,
			RegisterLimit: cfg.RLRegisterLimit,
			LoginLimit:    cfg.RLLoginLimit,
			Window:        cfg.RLWindow,
		},
		Limiter: limiter,
	})
	if err != nil {
		return fail(err)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
	return srv, cl.run, nil
}

// openStore picks the in-memory store for memory:// and PostgreSQL otherwise.
// The memory store gets demo data in dev; PostgreSQL only when DB_SEED is set.
func openStore(deps Deps, cfg *config.Config, hasher *security.BcryptHasher, cl *closers) (storeWithPing, error) {
	dev := cfg.Env == "dev"

	if cfg.UsesMemoryStore() {
		mem := memory.NewStore()
		if dev {
			memory.SeedDemo(context.Background(), mem, hasher)
		}
		logger.Logger.Warn().Msg("using in-memory store; data is lost on restart")
		return mem, nil
	}

	db, err := deps.NewDB(cfg.DatabaseURI, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: db: %w", err)
	}
	cl.add(func() { _ = db.Close() })

	pg := postgres.NewStore(db)
	if cfg.DBEnsureSchema {
		ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
		defer cancel()
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
	}
	if cfg.DBSeed {
		postgres.SeedUsers(context.Background(), pg, hasher)
	}
	return pg, nil
}

// openLimiter returns nil when redis is not configured or not reachable;
// the router then limits in process.
func openLimiter(deps Deps, cfg *config.Config, cl *closers) middleware.RateLimiter {
	if cfg.RedisAddr == "" || deps.NewRedis == nil {
		return nil
	}

	c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := c.Ping(context.Background()); err != nil {
		logger.Logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable; using in-process rate limiter")
		_ = c.Close()
		return nil
	}

	logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
	cl.add(func() { _ = c.Close() })
	return redis.NewFixedWindowLimiter(c)
}

// openPublisher falls back to the noop publisher when rabbitmq is not
// configured. A broker that cannot be reached is fatal outside dev.
func openPublisher(deps Deps, cfg *config.Config, cl *closers) (account.EventPublisher, error) {
	noop := memory.NewNoopPublisher()
	if cfg.RabbitURL == "" || deps.NewPublisher == nil {
		return noop, nil
	}

	p, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		if cfg.Env == "dev" {
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			return noop, nil
		}
		return nil, fmt.Errorf("bootstrap: rabbitmq: %w", err)
	}
	cl.add(func() { _ = p.Close() })
	return p, nil
}

func auditToLog(action string, fields map[string]string) {
	evt := logger.Logger.Info().Bool("audit", true).Str("action", action)
	for k, v := range fields {
		evt = evt.Str(k, v)
	}
	evt.Msg("audit")
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		NewRedis:   redis.New,
		NewPublisher: func(url, exchange string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
