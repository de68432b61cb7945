package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/veriscan-ai/veriscan/internal/utils/pathutil"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "VERISCAN"

// Config is built once at startup and treated as read-only afterwards.
type Config struct {
	Port              int              `mapstructure:"port"`
	Host              string           `mapstructure:"host"`
	Environment       string           `mapstructure:"environment"`
	PublicDir         string           `mapstructure:"public_dir"`
	AllowOrigins      []string         `mapstructure:"allow_origins"`
	MaxUploadSize     int64            `mapstructure:"max_upload_size"`
	StrictContentType bool             `mapstructure:"strict_content_type"`
	Inference         *InferenceConfig `mapstructure:"inference"`
}

type InferenceConfig struct {
	URL         string        `mapstructure:"url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CheckHealth bool          `mapstructure:"check_health"`
}

// SetDefaults registers the default value of every config key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("host", DefaultHost)
	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("public_dir", DefaultPublicDir)
	v.SetDefault("allow_origins", DefaultAllowOrigins)
	v.SetDefault("max_upload_size", DefaultMaxUploadSize)
	v.SetDefault("strict_content_type", false)
	v.SetDefault("inference.url", DefaultInferenceURL)
	v.SetDefault("inference.timeout", DefaultInferenceTimeout)
	v.SetDefault("inference.check_health", true)
}

// LoadEnvAndConfigFiles loads the optional .env file into the process
// environment, then reads the optional config file into viper.
func LoadEnvAndConfigFiles() error {
	envFile, err := pathutil.ExpandPath(viper.GetString("env_file"))
	if err != nil {
		return fmt.Errorf("failed to resolve env file: %w", err)
	}
	if envFile == "" {
		envFile = ".env"
		if _, err := os.Stat(envFile); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to stat .env file: %w", err)
			}
			envFile = ""
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	configFile, err := pathutil.ExpandPath(viper.GetString("config_file"))
	if err != nil {
		return fmt.Errorf("failed to resolve config file: %w", err)
	}
	if configFile == "" {
		return nil
	}

	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil
		}
		return fmt.Errorf("error reading config: %w", err)
	}

	return nil
}

// LoadConfig unmarshals and validates the config held by the global viper instance.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	publicDir, err := pathutil.ExpandPath(cfg.PublicDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve public dir: %w", err)
	}
	cfg.PublicDir = publicDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}

	switch c.Environment {
	case EnvironmentDev, EnvironmentTest, EnvironmentProd:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidEnvironment, c.Environment)
	}

	if c.MaxUploadSize <= 0 {
		return ErrInvalidMaxUploadSize
	}

	if c.Inference == nil || c.Inference.URL == "" {
		return ErrInferenceNotSet
	}

	u, err := url.Parse(c.Inference.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidInferenceURL, c.Inference.URL)
	}

	if c.Inference.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
