package templates

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/shared/server/respond"
)

// RegisterRoutes exposes the public catalog.
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", list)
}

func list(c *gin.Context) {
	respond.Success(c, http.StatusOK, gin.H{"templates": All()})
}
