package api

import (
	"net/http"

	"github.com/veriscan-ai/veriscan/internal/types"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{Status: types.StatusOK})
}
