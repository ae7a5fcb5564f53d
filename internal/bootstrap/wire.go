package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/accounts"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/audit"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/redis"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/policy"
	http_handlers "github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/handlers"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/router"
)

const (
	jwtIssuer  = "account-service"
	bcryptCost = 12
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

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (*sql.DB, error)

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(rabbitURL string) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)

	// BcryptCost overrides the hashing cost; zero means the default.
	BcryptCost int
}

type Publisher interface {
	accounts.EventPublisher
	Close() error
}

type stores struct {
	users      accounts.UserRepo
	authTokens accounts.AuthTokenStore
	db         *sql.DB
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 1) storage
	st, err := openStores(deps, cfg)
	if err != nil {
		return nil, nil, err
	}
	if st.db != nil {
		db := st.db
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })
	}

	// 2) redis (best-effort; the limiter falls back to in-process limits)
	var limiter *redis.FixedWindowLimiter
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := c.Ping(context.Background()); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-process rate limits")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			limiter = redis.NewFixedWindowLimiter(c)
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 3) publisher
	var pub accounts.EventPublisher = memory.NewNoopPublisher(logger.Logger)
	if cfg.RabbitURL != "" && deps.NewPublisher != nil {
		p, err := deps.NewPublisher(cfg.RabbitURL)
		switch {
		case err == nil:
			pub = p
			cleanupFns = append(cleanupFns, func() { _ = p.Close() })
		case cfg.IsDev():
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		default:
			return fail(err)
		}
	}

	// 4) password policy
	pol, err := buildPolicy(cfg)
	if err != nil {
		return fail(err)
	}

	// 5) security
	cost := deps.BcryptCost
	if cost == 0 {
		cost = bcryptCost
	}
	hasher := security.NewBcryptHasher(cost)
	issuer := security.NewJWTIssuer(cfg.JWTSecret, jwtIssuer, security.TTLs{
		Access:     cfg.AccessTokenTTL,
		Refresh:    cfg.RefreshTokenTTL,
		Activation: cfg.ActivationTokenTTL,
	})

	// 6) service
	svc := accounts.NewService(
		st.users,
		hasher,
		issuer,
		st.authTokens,
		pub,
		pol,
		accounts.Config{ActivationBaseURL: cfg.ActivationBaseURL},
	).WithAudit(audit.New(logger.Logger))

	// 7) handlers + middleware
	accountsH := http_handlers.NewAccountsHandler(svc)
	var dbPinger http_handlers.Pinger
	if st.db != nil {
		dbPinger = st.db
	}
	healthH := http_handlers.NewHealthHandler(dbPinger)

	var rateLimiter middleware.RateLimiter
	if limiter != nil {
		rateLimiter = limiter
	}
	rl := func(key string, limit int) router.Middleware {
		return middleware.RateLimitFixedWindow(
			rateLimiter,
			middleware.FixedWindowConfig{
				RouteKey: key,
				Limit:    limit,
				Window:   cfg.RateLimitWindow,
			},
			response.WriteError,
		)
	}

	// 8) router (password change checks the old password, so it shares the login budget)
	mux, err := deps.NewRouter(router.Deps{
		Health:   healthH,
		Accounts: accountsH,
		AuthMW:   middleware.Auth(svc, response.WriteError),

		RLRegistration: rl("accounts.registration", cfg.RateLimitRegistration),
		RLLogin:        rl("accounts.login", cfg.RateLimitLogin),
		RLResend:       rl("accounts.activation.resend", cfg.RateLimitResend),
		RLPassword:     rl("accounts.password.change", cfg.RateLimitLogin),
	})
	if err != nil {
		return fail(err)
	}

	// 9) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

// openStores uses postgres when DB_ADDR is set and in-process stores
// otherwise. config.Load only allows the latter in dev.
func openStores(deps Deps, cfg *config.Config) (stores, error) {
	if cfg.DBAddr == "" {
		logger.Logger.Warn().Msg("DB_ADDR not set; using in-memory stores")
		return stores{
			users:      memory.NewUserRepo(),
			authTokens: memory.NewAuthTokenStore(),
		}, nil
	}

	db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		return stores{}, fmt.Errorf("open db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, fmt.Errorf("ensure schema: %w", err)
	}

	return stores{
		users:      postgres.NewUserRepo(db),
		authTokens: postgres.NewAuthTokenRepo(db),
		db:         db,
	}, nil
}

func buildPolicy(cfg *config.Config) (*policy.Policy, error) {
	if cfg.PasswordCommonListFile == "" {
		return policy.Default(cfg.PasswordMinLength), nil
	}

	list, err := policy.LoadCommonPasswordsFile(cfg.PasswordCommonListFile)
	if err != nil {
		return nil, err
	}
	return policy.New(
		policy.UserAttributeSimilarity(policy.DefaultMaxSimilarity),
		policy.MinimumLength(cfg.PasswordMinLength),
		policy.CommonPassword(list),
		policy.Numeric(),
	), nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(addr string, debug bool) (*sql.DB, error) {
			return config.NewDB(addr, debug, logger.Logger)
		},
		NewRedis: redis.New,
		NewPublisher: func(url string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url)
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
