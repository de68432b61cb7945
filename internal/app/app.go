package app

import (
	"context"

	"github.com/veriscan-ai/veriscan/internal/config"
	"github.com/veriscan-ai/veriscan/internal/services/inference"
	"github.com/veriscan-ai/veriscan/pkg/logger"

	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	ctx        context.Context
	cancelFunc context.CancelFunc
	inference  *inference.Client

	Logger *zap.Logger
}

// Option funcs used to initialize the App struct
type OptionFunc func(app *App) error

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(app *App) error {
		app.Logger = logger
		return nil
	}
}

func WithInferenceClient(client *inference.Client) OptionFunc {
	return func(app *App) error {
		app.inference = client
		return nil
	}
}

func NewApp(cfg *config.Config, options ...OptionFunc) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		ctx:        ctx,
		config:     cfg,
		cancelFunc: cancel,
	}

	for _, opt := range options {
		if err := opt(app); err != nil {
			cancel()
			return nil, err
		}
	}

	if app.Logger == nil {
		l, err := logger.NewLogger(cfg)
		if err != nil {
			cancel()
			return nil, err
		}
		app.Logger = l
	}

	if app.inference == nil {
		app.inference = inference.NewClient(cfg.Inference, app.Logger)
	}

	return app, nil
}

// CheckInference probes the backend once. Failures are logged, never fatal:
// the relay reports backend outages per request.
func (app *App) CheckInference() {
	if !app.config.Inference.CheckHealth {
		return
	}

	if err := app.inference.CheckHealth(app.ctx); err != nil {
		app.Logger.Warn("inference backend not available", zap.String("url", app.inference.URL()), zap.Error(err))
		return
	}

	app.Logger.Info("inference backend is healthy", zap.String("url", app.inference.URL()))
}

func (app *App) Close() {
	app.cancelFunc()
	_ = app.Logger.Sync()
}

func (app *App) Config() *config.Config {
	return app.config
}

func (app *App) Context() context.Context {
	return app.ctx
}

func (app *App) Inference() *inference.Client {
	return app.inference
}
