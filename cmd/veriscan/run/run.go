package cmd

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/veriscan-ai/veriscan/internal/app"
	"github.com/veriscan-ai/veriscan/internal/config"
	"github.com/veriscan-ai/veriscan/internal/server"
	"github.com/veriscan-ai/veriscan/internal/utils/pathutil"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Start the detection relay",
	RunE:  runApp,
}

func init() {
	flags := Cmd.Flags()

	flags.Int("port", config.DefaultPort, "Port to run the relay on")
	flags.String("host", config.DefaultHost, "Host to run the relay on")
	flags.String("environment", config.DefaultEnvironment, "Environment configuration: dev, test or prod")
	flags.String("public-dir", config.DefaultPublicDir, "Directory the browser UI is served from. Empty disables static serving.")
	flags.StringSlice("allow-origins", config.DefaultAllowOrigins, "Origins allowed by CORS")
	flags.Int64("max-upload-size", config.DefaultMaxUploadSize, "Maximum image size in bytes")
	flags.Bool("strict-content-type", false, "Reject uploads whose magic bytes are not an image")

	flags.String("inference-url", config.DefaultInferenceURL, "URL of the inference backend detect endpoint")
	flags.Duration("inference-timeout", config.DefaultInferenceTimeout, "Timeout for a single inference request")
	flags.Bool("check-inference", true, "Probe the inference backend health endpoint on startup")

	bindFlags(Cmd)
	bindEnvs()
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	viper.BindPFlag("port", flags.Lookup("port"))
	viper.BindPFlag("host", flags.Lookup("host"))
	viper.BindPFlag("environment", flags.Lookup("environment"))
	viper.BindPFlag("public_dir", flags.Lookup("public-dir"))
	viper.BindPFlag("allow_origins", flags.Lookup("allow-origins"))
	viper.BindPFlag("max_upload_size", flags.Lookup("max-upload-size"))
	viper.BindPFlag("strict_content_type", flags.Lookup("strict-content-type"))

	viper.BindPFlag("inference.url", flags.Lookup("inference-url"))
	viper.BindPFlag("inference.timeout", flags.Lookup("inference-timeout"))
	viper.BindPFlag("inference.check_health", flags.Lookup("check-inference"))
}

func bindEnvs() {
	// Prefixed names win over the legacy unprefixed ones.
	viper.BindEnv("port", "VERISCAN_PORT", "PORT")
	viper.BindEnv("host", "VERISCAN_HOST")
	viper.BindEnv("environment", "VERISCAN_ENVIRONMENT")
	viper.BindEnv("public_dir", "VERISCAN_PUBLIC_DIR")
	viper.BindEnv("allow_origins", "VERISCAN_ALLOW_ORIGINS")
	viper.BindEnv("max_upload_size", "VERISCAN_MAX_UPLOAD_SIZE")
	viper.BindEnv("strict_content_type", "VERISCAN_STRICT_CONTENT_TYPE")

	viper.BindEnv("inference.url", "VERISCAN_INFERENCE_URL", "PYTHON_SERVICE_URL")
	viper.BindEnv("inference.timeout", "VERISCAN_INFERENCE_TIMEOUT")
	viper.BindEnv("inference.check_health", "VERISCAN_CHECK_INFERENCE")
}

func runApp(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	app, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv, err := server.NewServer(cfg)
	if err != nil {
		return err
	}
	srv.SetupRoutes(app)

	if cfg.PublicDir != "" && !pathutil.DirExists(cfg.PublicDir) {
		app.Logger.Warn("public dir not found, browser UI disabled", zap.String("public_dir", cfg.PublicDir))
	}

	go app.CheckInference()

	errc := make(chan error, 1)
	go func() {
		app.Logger.Info("relay started",
			zap.String("addr", srv.Addr()),
			zap.String("inference_url", cfg.Inference.URL),
			zap.Duration("inference_timeout", cfg.Inference.Timeout),
			zap.Bool("strict_content_type", cfg.StrictContentType),
		)
		errc <- srv.Start()
	}()

	signalc := make(chan os.Signal, 1)
	signal.Notify(signalc, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-signalc:
		app.Logger.Info("stopping relay", zap.String("signal", sig.String()))
		return srv.Stop(app.Context())
	}
}
