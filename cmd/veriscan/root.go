package cmd

import (
	"fmt"
	"os"
	"strings"

	// Subcommands
	detect "github.com/veriscan-ai/veriscan/cmd/veriscan/detect"
	run "github.com/veriscan-ai/veriscan/cmd/veriscan/run"
	"github.com/veriscan-ai/veriscan/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = &cobra.Command{
	Use:   "veriscan",
	Short: "VeriScan AI image authenticity relay",
	Long:  "Relays uploaded images to an image-authenticity detection model and returns its verdict",

	SilenceUsage: true,

	// Runs before this command and any subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix(config.EnvPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(
			`-`, `_`, // convert hyphens to underscores
			`.`, `_`, // convert dots to underscores
		))
		viper.AutomaticEnv()
		config.SetDefaults(viper.GetViper())

		// Load config and env files
		if err := config.LoadEnvAndConfigFiles(); err != nil {
			return err
		}

		return nil
	},
}

func Execute() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pflags := Cmd.PersistentFlags()

	pflags.String("config-file", "", "Path to a YAML config file")
	pflags.String("env-file", "", "Path to the env file (defaults to ./.env when present)")

	viper.BindPFlag("config_file", pflags.Lookup("config-file"))
	viper.BindPFlag("env_file", pflags.Lookup("env-file"))

	Cmd.AddCommand(run.Cmd, detect.Cmd)
	Cmd.CompletionOptions.HiddenDefaultCmd = true
}
