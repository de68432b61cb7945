package server

import (
	"context"
	"net/http"
	"time"

	"github.com/veriscan-ai/veriscan/internal/api/middleware"
	"github.com/veriscan-ai/veriscan/internal/config"
	"github.com/veriscan-ai/veriscan/internal/utils/pathutil"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	listenAddr string
	ginEngine  *gin.Engine
	inner      *http.Server
}

func NewServer(config *config.Config) (*Server, error) {
	gin.SetMode(getGinMode(config.Environment))
	r := gin.New()

	// Keep whole uploads in memory; the size limit middleware bounds them.
	r.MaxMultipartMemory = config.MaxUploadSize + 1

	// Setup logger middleware
	r.Use(logger.SetLogger(
		logger.WithUTC(true),
		logger.WithSkipPath([]string{"/health"}),
	))

	// Setup CORS middleware
	r.Use(cors.New(corsConfig(config.AllowOrigins)))

	r.Use(middleware.RequestID())

	// Serve the browser UI
	if config.PublicDir != "" && pathutil.DirExists(config.PublicDir) {
		r.Use(static.Serve("/", static.LocalFile(config.PublicDir, false)))
	}
	r.Use(gin.Recovery())

	return &Server{
		listenAddr: config.ListenAddr(),
		ginEngine:  r,
		inner: &http.Server{
			Handler:           r,
			Addr:              config.ListenAddr(),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       time.Minute,
		},
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

func (s *Server) Addr() string {
	return s.listenAddr
}

func (s *Server) Start() (err error) {
	if err := s.inner.ListenAndServe(); err != nil {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.inner.Shutdown(ctx); err != nil {
		return err
	}

	return nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        300 * time.Second,
	}

	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}

	cfg.AllowOrigins = origins
	return cfg
}

func getGinMode(env string) string {
	switch env {
	case config.EnvironmentDev:
		return gin.DebugMode
	case config.EnvironmentTest:
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
