package api

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/jaektomo/SweepstakeManager/internal/api/handler"
	"github.com/jaektomo/SweepstakeManager/internal/api/middleware"
	"github.com/jaektomo/SweepstakeManager/internal/config"
	"github.com/jaektomo/SweepstakeManager/internal/service"
	"github.com/jaektomo/SweepstakeManager/internal/ws"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	PoolSvc       *service.PoolService
	CompetitorSvc *service.CompetitorService
	Hub           *ws.Hub
	Limiter       *middleware.RateLimiter // nil = no rate limiting
	Cfg           *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware and CORS.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	poolH := handler.NewPoolHandler(deps.PoolSvc)
	competitorH := handler.NewCompetitorHandler(deps.CompetitorSvc)

	api := r.Group("/api")
	if deps.Limiter != nil {
		api.Use(deps.Limiter.Middleware())
	}
	{
		// ── Pools ────────────────────────────────────────────────────────────
		pools := api.Group("/pools")
		{
			pools.GET("", poolH.List)
			pools.POST("", poolH.Create)
			pools.GET("/:id", poolH.GetByID)
			pools.DELETE("/:id", poolH.Delete)
			pools.GET("/:id/summary", poolH.Summary)
			pools.POST("/:id/participants", poolH.AddParticipant)
			pools.PATCH("/:id/participants/:index", poolH.SetPaid)
			pools.POST("/:id/assign", poolH.Assign)
			pools.POST("/:id/settle", poolH.Settle)
		}

		// ── Competitor roster ────────────────────────────────────────────────
		competitors := api.Group("/competitors")
		{
			competitors.GET("", competitorH.List)
			competitors.POST("", competitorH.Add)
			competitors.DELETE("/:id", competitorH.Remove)
		}
	}

	// ── WebSocket ─────────────────────────────────────────────────────────────
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// Outside production every origin is allowed; in production only the
// configured ALLOWED_ORIGINS are echoed back.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" && slices.Contains(cfg.Server.AllowedOrigins, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
