package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vocab-trainer/pkg/response"
)

// WantsJSON reports whether the client expects a JSON answer rather than a page
func WantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Query("format") == "json" {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// Recovery turns a panic into the generic error page, or a JSON 500 for API clients
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		appLogger.Errorw("panic recovered",
			"error", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", GetRequestID(c),
		)
		if WantsJSON(c) {
			response.InternalError(c, "internal server error")
		} else {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"Title":   "Error",
				"Message": "Something went wrong. Please try again later.",
			})
		}
		c.Abort()
	})
}
