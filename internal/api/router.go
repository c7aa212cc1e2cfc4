package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alxandria/ledger/internal/api/ledger"
	"github.com/alxandria/ledger/internal/cache"
	"github.com/alxandria/ledger/internal/db"
	"github.com/alxandria/ledger/internal/host"
	"github.com/alxandria/ledger/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler *JSONRPCHandler
	db      *db.DB
	cache   *cache.Cache
	host    *host.Host
	logger  *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, h *host.Host) *Router {
	router := &Router{
		handler: NewJSONRPCHandler(),
		db:      database,
		cache:   redisCache,
		host:    h,
		logger:  logging.WithComponent("api-router"),
	}

	router.registerMethods()

	return router
}

// Handler returns the JSON-RPC handler
func (r *Router) Handler() *JSONRPCHandler {
	return r.handler
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.POST("/", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	ledgerAPI := ledger.NewAPI(r.host)

	r.handler.RegisterMethod("ledger.instantiate", ledgerAPI.Instantiate)
	r.handler.RegisterMethod("ledger.execute", ledgerAPI.Execute)
	r.handler.RegisterMethod("ledger.migrate", ledgerAPI.Migrate)
	r.handler.RegisterMethod("ledger.query", ledgerAPI.Query)
	r.handler.RegisterMethod("ledger.get_post", ledgerAPI.GetPost)
	r.handler.RegisterMethod("ledger.list_posts", ledgerAPI.ListPosts)
	r.handler.RegisterMethod("ledger.head_state", ledgerAPI.HeadState)
	r.handler.RegisterMethod("ledger.get_transaction", ledgerAPI.GetTransaction)

	r.handler.RegisterMethod("bank.get_balance", ledgerAPI.GetBalance)
}

// healthHandler reports database and cache health
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status":  "OK",
		"service": "alxandria-ledger",
	}

	if err := r.db.Health(ctx); err != nil {
		r.logger.Warn("Database health check failed", zap.Error(err))
		status = http.StatusServiceUnavailable
		body["status"] = "UNAVAILABLE"
		body["database"] = err.Error()
	}
	if err := r.cache.Health(ctx); err != nil && err != cache.ErrCacheDisabled {
		r.logger.Warn("Cache health check failed", zap.Error(err))
		body["cache"] = err.Error()
	}

	c.JSON(status, body)
}
