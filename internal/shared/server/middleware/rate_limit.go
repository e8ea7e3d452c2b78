package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/ratelimit"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/metrics"
	"resume-coach/internal/shared/server/respond"
	"resume-coach/internal/shared/telemetry"
)

// RateLimitConfig binds one route name to its quota.
type RateLimitConfig struct {
	Route   string
	Rule    ratelimit.Rule
	Limiter ratelimit.Limiter
}

// RateLimit admits a request only while the caller is within the route's quota.
// It must run after Auth; requests without an identity are keyed by client IP.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Limiter == nil || !cfg.Rule.Enabled() {
			c.Next()
			return
		}
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = "ip:" + strings.TrimSpace(c.ClientIP())
		}
		decision, err := cfg.Limiter.Allow(c.Request.Context(), cfg.Route, principal, cfg.Rule)
		if err != nil {
			// Counter store trouble should not take the product down; admit and log.
			telemetry.Error("rate_limit.error", map[string]any{
				"route":      cfg.Route,
				"user_id":    principal,
				"request_id": RequestIDFromContext(c),
				"error":      err.Error(),
			})
			c.Next()
			return
		}
		if decision.Allowed {
			c.Next()
			return
		}
		metrics.IncRateLimited(cfg.Route)
		respond.Fail(c, &apperr.Error{
			Kind:       apperr.KindTooManyRequests,
			Message:    "Too many requests. Please try again later.",
			RetryAfter: decision.RetryAfter,
		})
	}
}

// Gate composes session authentication with per-route quotas.
type Gate struct {
	Auth    gin.HandlerFunc
	Limiter ratelimit.Limiter
	Rules   map[string]ratelimit.Rule
}

// Protect returns Auth followed by RateLimit for route, then the given handlers.
func (g Gate) Protect(route string, handlers ...gin.HandlerFunc) gin.HandlersChain {
	chain := gin.HandlersChain{g.authenticate()}
	chain = append(chain, RateLimit(RateLimitConfig{Route: route, Rule: g.Rules[route], Limiter: g.Limiter}))
	return append(chain, handlers...)
}

// Authenticated returns Auth followed by the given handlers, for cheap owner-scoped reads.
func (g Gate) Authenticated(handlers ...gin.HandlerFunc) gin.HandlersChain {
	return append(gin.HandlersChain{g.authenticate()}, handlers...)
}

func (g Gate) authenticate() gin.HandlerFunc {
	if g.Auth != nil {
		return g.Auth
	}
	return Auth(nil, "")
}
