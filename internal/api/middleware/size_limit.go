package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Room left for multipart boundaries and part headers on top of the file itself.
const multipartOverhead = 1 << 20

// SizeLimit caps the request body so oversized uploads fail while being read
// instead of after they are fully buffered.
func SizeLimit(maxFileBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFileBytes+multipartOverhead)
		c.Next()
	}
}
