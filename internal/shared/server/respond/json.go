package respond

import (
	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Success writes payload with success:true added.
func Success(c *gin.Context, status int, payload gin.H) {
	out := gin.H{"success": true}
	for k, v := range payload {
		out[k] = v
	}
	JSON(c, status, out)
}
