package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"wallet-ledger/config"
	httpHandler "wallet-ledger/internal/adapter/http/handler"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/adapter/notify"
	"wallet-ledger/internal/adapter/observability"
	memStorage "wallet-ledger/internal/adapter/storage/memory"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var autoMigrate bool

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Apply the PostgreSQL schema before serving")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// stores bundles the repositories of one storage backend.
type stores struct {
	users      ports.UserRepository
	wallets    ports.WalletRepository
	txns       ports.TransactionRepository
	cashbacks  ports.CashbackRepository
	transactor ports.DBTransactor
	health     ports.HealthChecker
	close      func()
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
		s := memStorage.NewStore()
		return &stores{
			users:      memStorage.NewUserRepo(s),
			wallets:    memStorage.NewWalletRepo(s),
			txns:       memStorage.NewTransactionRepo(s),
			cashbacks:  memStorage.NewCashbackRepo(s),
			transactor: s,
			health:     memStorage.HealthCheck{},
			close:      func() {},
		}, nil
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if autoMigrate {
		if err := pgStorage.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	log.Info().Msg("PostgreSQL connected")

	return &stores{
		users:      pgStorage.NewUserRepo(pool),
		wallets:    pgStorage.NewWalletRepo(pool),
		txns:       pgStorage.NewTransactionRepo(pool),
		cashbacks:  pgStorage.NewCashbackRepo(pool),
		transactor: pgStorage.NewTransactor(pool),
		health:     pgStorage.NewHealthCheck(pool),
		close:      pool.Close,
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	rate, err := cfg.Ledger.Rate()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting Wallet Ledger")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	healthCheckers := []ports.HealthChecker{st.health}

	var rdb *goredis.Client
	if cfg.Notify.Driver == "redis" || cfg.RateLimit.Driver == "redis" {
		rdb, err = redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		log.Info().Msg("Redis connected")
	}

	// Background workers stop with ctx and are awaited before exit.
	workersDone := make(chan struct{})
	var workers []func()

	sigSvc := service.NewHMACSignatureService()
	var notifier ports.Notifier
	switch cfg.Notify.Driver {
	case "redis":
		if cfg.Notify.SigningSecret == "" {
			return errors.New("notify.signing_secret is required for the redis notifier")
		}
		queue := notify.NewRedisQueue(rdb, cfg.Notify.Queue, sigSvc, cfg.Notify.SigningSecret)
		worker := notify.NewWorker(queue, notify.NewLogNotifier(log), notify.DefaultRetryIntervals, log)
		workers = append(workers, func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("Notification worker stopped")
			}
		})
		notifier = queue
	case "log":
		notifier = notify.NewLogNotifier(log)
	default:
		return fmt.Errorf("unknown notify.driver %q", cfg.Notify.Driver)
	}

	var limiter ports.RateLimiter
	switch cfg.RateLimit.Driver {
	case "redis":
		limiter = redisStorage.NewRateLimitStore(rdb)
	case "local":
		local := middleware.NewLocalRateLimiter()
		workers = append(workers, func() { local.RunSweeper(ctx, time.Minute, 10*time.Minute) })
		limiter = local
	default:
		return fmt.Errorf("unknown ratelimit.driver %q", cfg.RateLimit.Driver)
	}

	metrics := observability.NewMetrics()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	userSvc := service.NewUserService(st.users, st.wallets, st.transactor, hashSvc, tokenSvc, log)
	cashbackSvc := service.NewCashbackService(st.wallets, st.cashbacks, st.transactor, rate, metrics, log)
	ledgerSvc := service.NewLedgerService(
		st.wallets,
		st.txns,
		st.cashbacks,
		st.users,
		st.transactor,
		cashbackSvc,
		notifier,
		metrics,
		log,
		service.WithNotifyTimeout(cfg.Notify.Timeout),
	)
	analyticsSvc := service.NewAnalyticsService(st.txns, st.cashbacks)
	sessionHistory := service.NewSessionHistory()

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		UserSvc:        userSvc,
		LedgerSvc:      ledgerSvc,
		CashbackSvc:    cashbackSvc,
		AnalyticsSvc:   analyticsSvc,
		SessionHistory: sessionHistory,
		TokenSvc:       tokenSvc,
		RateLimiter:    limiter,
		Metrics:        metrics,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	go func() {
		defer close(workersDone)
		done := make(chan struct{}, len(workers))
		for _, run := range workers {
			go func() {
				run()
				done <- struct{}{}
			}()
		}
		for range workers {
			<-done
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-workersDone
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	ledgerSvc.Wait()
	<-workersDone

	log.Info().Msg("Server exited")
	return nil
}
