package config

import (
	"errors"
	"time"
)

const (
	EnvironmentDev  = "dev"
	EnvironmentTest = "test"
	EnvironmentProd = "prod"
)

const (
	DefaultPort             = 5000
	DefaultHost             = "0.0.0.0"
	DefaultEnvironment      = EnvironmentDev
	DefaultPublicDir        = "./web/dist"
	DefaultInferenceURL     = "http://localhost:8000/detect"
	DefaultInferenceTimeout = 60 * time.Second
	DefaultAPIURL           = "http://localhost:5000/api/detect"

	// Upload cap for a single image, matching the limit advertised in the UI.
	DefaultMaxUploadSize int64 = 10 << 20
)

var DefaultAllowOrigins = []string{"*"}

var (
	ErrInvalidPort          = errors.New("port must be between 1 and 65535")
	ErrInvalidEnvironment   = errors.New("environment must be one of dev, test or prod")
	ErrInferenceNotSet      = errors.New("inference url is not set")
	ErrInvalidInferenceURL  = errors.New("inference url must be an absolute http(s) url")
	ErrInvalidTimeout       = errors.New("inference timeout must be positive")
	ErrInvalidMaxUploadSize = errors.New("max upload size must be positive")
)
