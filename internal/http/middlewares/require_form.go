package middlewares

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireForm rejects POST bodies that are not HTML form encodings.
func RequireForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
		switch {
		case err == nil && (mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"):
			c.Next()
		default:
			c.AbortWithStatus(http.StatusUnsupportedMediaType)
		}
	}
}
