package handler

import (
	"net/http"

	"diamond-custody-gateway/internal/adapter/http/middleware"
	redisStore "diamond-custody-gateway/internal/adapter/storage/redis"
	"diamond-custody-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	CustodySvc     ports.CustodyService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Metrics        http.Handler       // nil = no metrics endpoint
	MetricsPath    string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep: database, cache, document store, ledger node)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(deps.Metrics))
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes, all behind the platform's merchant bearer token.
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1", jwtAuth)

	custody := NewCustodyHandler(deps.CustodySvc)
	approvals := NewApprovalHandler(deps.CustodySvc)

	wallet := v1.Group("/wallet")
	{
		wallet.POST("", rl("custody_enable"), custody.EnableCustody)
		wallet.GET("", rl("ledger_read"), custody.GetWallet)
		wallet.GET("/balance", rl("ledger_read"), custody.GetBalance)
	}

	assets := v1.Group("/assets")
	{
		assets.POST("", rl("ledger_write"), custody.RegisterAsset)
		assets.GET("/:id", rl("ledger_read"), custody.GetAsset)
	}

	loans := v1.Group("/loans")
	{
		loans.POST("", rl("ledger_write"), custody.RequestLoan)
		loans.GET("/:id", rl("ledger_read"), custody.GetLoan)
		loans.POST("/:id/approve", rl("ledger_write"), custody.ApproveLoan)
		loans.POST("/:id/cancel", rl("ledger_write"), custody.CancelLoan)
		loans.POST("/:id/return", rl("ledger_write"), custody.ReturnAsset)
	}

	offers := v1.Group("/offers")
	{
		offers.POST("", rl("ledger_write"), custody.PlaceOffer)
		offers.GET("/:id", rl("ledger_read"), custody.GetOffer)
		offers.POST("/:id/accept", rl("ledger_write"), custody.AcceptOffer)
		offers.POST("/:id/reject", rl("ledger_write"), custody.RejectOffer)
	}

	approvalGroup := v1.Group("/approvals")
	{
		approvalGroup.POST("", rl("approvals"), approvals.Issue)
		approvalGroup.POST("/verify", rl("approvals"), approvals.Verify)
	}

	return r
}
