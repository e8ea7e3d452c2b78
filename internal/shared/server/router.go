package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/services/health"
	"resume-coach/internal/shared/config"
	"resume-coach/internal/shared/metrics"
	"resume-coach/internal/shared/server/middleware"
	"resume-coach/internal/templates"
)

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers mounted under /api.
type RouterDeps struct {
	Config   config.Config
	Health   *health.Service
	Handlers []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	})
	api.GET("/metrics", metrics.Handler())
	templates.RegisterRoutes(api)

	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
