package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
	logLevel   string
)

// Execute runs the CLI.
func Execute() error {
	_ = godotenv.Load()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mathquiz",
		Short:         "Timed arithmetic quiz with a shared leaderboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			applyLogLevel(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&port, "port", os.Getenv("PORT"), "port to listen on (overrides config)")
	cmd.PersistentFlags().StringVar(&configPath, "config", getEnv("CONFIG_PATH", "config/config.yaml"), "path to YAML config")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", os.Getenv("LOG_LEVEL"), "zerolog level (overrides config)")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewPlayCmd(&configPath))
	cmd.AddCommand(NewResultsCmd(&configPath))

	return cmd
}

// applyLogLevel sets the global level; empty or unknown values are ignored.
func applyLogLevel(raw string) {
	if raw == "" {
		return
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		log.Warn().Str("level", raw).Msg("unknown log level")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}

// configLogLevel applies the config file level unless the flag or LOG_LEVEL already chose one.
func configLogLevel(level string) {
	if logLevel != "" {
		return
	}
	applyLogLevel(level)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
