package api

import (
	"github.com/veriscan-ai/veriscan/internal/types"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string, details any) {
	c.AbortWithStatusJSON(status, types.ErrorResponse{Error: message, Details: details})
}
