package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-ledger/config"
	httpHandler "wallet-ledger/internal/adapter/http/handler"
	"wallet-ledger/internal/adapter/quote"
	"wallet-ledger/internal/adapter/storage/memory"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// storage is the set of repositories backing the services, whichever driver
// provides them.
type storage struct {
	wallets    ports.WalletRepository
	currencies ports.CurrencyRepository
	balances   ports.BalanceRepository
	movements  ports.MovementRepository
	audits     ports.AuditRepository
	transactor ports.DBTransactor
	health     ports.HealthChecker
	close      func()
}

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("WLT_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("driver", cfg.Database.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting Wallet Ledger")

	ctx := context.Background()

	fees, err := cfg.Ledger.FeeSchedule()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid fee schedule")
	}

	store, err := openStorage(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.close()

	healthCheckers := []ports.HealthChecker{store.health}

	// Redis is optional: without it quotes are not cached and rate limiting is off.
	var (
		quoteCache     ports.QuoteCache
		rateLimitStore *redisStorage.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		quoteCache = redisStorage.NewQuoteCache(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	// Quote provider: HTTP upstream behind the short-lived cache
	upstream := quote.NewCoinbaseProvider(
		cfg.Quote.BaseURL,
		&http.Client{Timeout: cfg.Quote.Timeout},
		logger.Component(log, "quote"),
	)
	quotes := service.NewCachedQuoteProvider(upstream, quoteCache, cfg.Quote.CacheTTL, log)

	// Initialize business services
	identitySvc := service.NewIdentityService(cfg.Identity.SecretBytes, cfg.Identity.AddressBytes)
	walletSvc := service.NewWalletService(
		store.wallets,
		store.balances,
		store.currencies,
		identitySvc,
		store.transactor,
		logger.Component(log, "wallet"),
	)
	ledgerSvc := service.NewLedgerService(
		store.wallets,
		store.balances,
		store.currencies,
		store.movements,
		quotes,
		identitySvc,
		store.transactor,
		fees,
		cfg.Ledger.QuoteTimeout,
		logger.Component(log, "ledger"),
	)
	auditSvc := service.NewAuditService(store.audits, log)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:      walletSvc,
		LedgerSvc:      ledgerSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*storage, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("Using in-memory storage; all data is lost on exit")
		s := memory.NewStore()
		return &storage{
			wallets:    memory.NewWalletRepo(s),
			currencies: memory.NewCurrencyRepo(s),
			balances:   memory.NewBalanceRepo(s),
			movements:  memory.NewMovementRepo(s),
			audits:     memory.NewAuditRepo(s),
			transactor: memory.NewTransactor(s),
			health:     memory.NewHealthCheck(),
			close:      func() {},
		}, nil
	}

	pool, err := pgStorage.NewPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	log.Info().Msg("PostgreSQL connected")

	if cfg.AutoMigrate {
		if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
		log.Info().Msg("Schema applied")
	}

	return &storage{
		wallets:    pgStorage.NewWalletRepo(pool),
		currencies: pgStorage.NewCurrencyRepo(pool),
		balances:   pgStorage.NewBalanceRepo(pool),
		movements:  pgStorage.NewMovementRepo(pool),
		audits:     pgStorage.NewAuditRepo(pool),
		transactor: pgStorage.NewTransactor(pool),
		health:     pgStorage.NewHealthCheck(pool),
		close:      pool.Close,
	}, nil
}
