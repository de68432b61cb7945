package server

import (
	"github.com/veriscan-ai/veriscan/internal/api"
	"github.com/veriscan-ai/veriscan/internal/api/middleware"
	"github.com/veriscan-ai/veriscan/internal/app"

	"github.com/gin-gonic/gin"
)

func (s *Server) SetupRoutes(app *app.App) {
	s.ginEngine.GET("/health", api.Health)

	apiGroup := s.ginEngine.Group("/api")
	apiGroup.POST("/detect",
		middleware.SizeLimit(app.Config().MaxUploadSize),
		handlerWrapper(app, api.Detect),
	)
}

func handlerWrapper(app *app.App, f func(c *gin.Context)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("app", app)
		f(ctx)
	}
}
