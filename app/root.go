// Package app implements the main application commands.
package app

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string // Path to the configuration directory
	envFile    string // Optional dotenv file loaded before the config
)

var rootCmd = &cobra.Command{
	Use:   "govfinance-admin",
	Short: "GovFinance-Admin is the permission core of the government finance admin application",
	Long: `GovFinance-Admin serves the login, dashboard and permission administration
pages and the JSON API that enforces role templates and per-user permission overlays.`,
	Args: cobra.OnlyValidArgs,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// a missing dotenv file is fine; the environment may already be set
		if err := godotenv.Load(envFile); err != nil {
			log.Debug().Err(err).Str("file", envFile).Msg("no dotenv file loaded")
		}
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Directory holding main.toml")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file with environment overrides")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
