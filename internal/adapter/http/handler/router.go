package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/adapter/observability"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	UserSvc        ports.UserService
	LedgerSvc      ports.LedgerService
	CashbackSvc    ports.CashbackService
	AnalyticsSvc   ports.AnalyticsService
	SessionHistory ports.SessionHistoryService
	TokenSvc       ports.TokenService
	RateLimiter    ports.RateLimiter      // nil = rate limiting disabled
	Metrics        *observability.Metrics // nil = /metrics disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if a limiter is configured, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimiter, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	audit := middleware.SessionAudit(deps.SessionHistory)

	// --- Public routes (no auth) ---
	userHandler := NewUserHandler(deps.UserSvc)
	users := v1.Group("/users")
	{
		users.POST("/register", rl("users_register"), userHandler.Register)
		users.POST("/login", rl("users_login"), userHandler.Login)
		users.DELETE("/me", jwtAuth, audit, rl("wallet_write"), userHandler.DeleteMe)
	}

	// --- JWT-authenticated routes ---
	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.UserSvc, deps.SessionHistory)
	wallet := v1.Group("/wallet", jwtAuth, audit)
	{
		wallet.POST("/recharge", rl("wallet_write"), walletHandler.Recharge)
		wallet.POST("/transfer", rl("wallet_write"), walletHandler.Transfer)
		wallet.GET("/balance", rl("wallet_read"), walletHandler.GetBalance)
		wallet.GET("/statement", rl("wallet_read"), walletHandler.GetStatement)
		wallet.GET("/session-history", rl("wallet_read"), walletHandler.GetSessionHistory)
		wallet.POST("/session-history", rl("wallet_write"), walletHandler.AddSessionHistory)
	}

	historyHandler := NewHistoryHandler(deps.CashbackSvc, deps.AnalyticsSvc)
	v1.GET("/cashback/history", jwtAuth, rl("wallet_read"), historyHandler.GetCashbackHistory)
	v1.POST("/charts/history", jwtAuth, rl("wallet_read"), historyHandler.GetCombinedHistory)

	return r
}
