package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/ratelimit"
	"resume-coach/internal/shared/server/middleware"
	"resume-coach/internal/shared/server/respond"
)

type Handler struct {
	Svc  *Service
	Gate middleware.Gate
}

func NewHandler(svc *Service, gate middleware.Gate) *Handler {
	return &Handler{Svc: svc, Gate: gate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/user/wipe", h.Gate.Protect(ratelimit.RouteWipe, h.wipe)...)
}

func (h *Handler) wipe(c *gin.Context) {
	result, err := h.Svc.Wipe(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to delete account data")
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"deleted": result})
}
