package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/shared/server/middleware"
	"resume-coach/internal/shared/server/respond"
)

// Handler serves the caller's profile.
type Handler struct {
	Svc  *Service
	Gate middleware.Gate
}

func NewHandler(svc *Service, gate middleware.Gate) *Handler {
	return &Handler{Svc: svc, Gate: gate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Gate.Authenticated(h.me)...)
}

// me returns the stored profile, or the session identity when no profile row exists yet.
func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	switch {
	case errors.Is(err, ErrNotFound):
		user = User{
			ID:         userID,
			Email:      middleware.UserEmailFromContext(c),
			FullName:   middleware.UserNameFromContext(c),
			PictureURL: middleware.UserPictureFromContext(c),
		}
	case err != nil:
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"user": user})
}
