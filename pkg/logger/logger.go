package logger

import (
	"github.com/veriscan-ai/veriscan/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger picks the zap preset matching the configured environment.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	switch cfg.Environment {
	case config.EnvironmentProd:
		l, err = zap.NewProduction()
	case config.EnvironmentTest:
		l = zap.NewExample()
	default:
		devCfg := zap.NewDevelopmentConfig()
		devCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err = devCfg.Build()
	}
	if err != nil {
		return nil, err
	}

	return l.Named("veriscan"), nil
}

func MustNewLogger(cfg *config.Config) *zap.Logger {
	return zap.Must(NewLogger(cfg))
}
