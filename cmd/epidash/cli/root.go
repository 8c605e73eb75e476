package cli

import (
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/epidash/backend/internal/config"
	"github.com/epidash/backend/internal/service"
)

var (
	apiURL     string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "epidash",
	Short: "Epidemiological surveillance from the terminal",
	Long: `epidash queries the epidemiological analytics API and prints case
trends, disease rankings, climate covariates and district maps together
with the derived dashboard metrics.

The API root comes from --api-url, else EPI_API_URL (a .env file in the
working directory is honoured), else http://localhost:8000.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Analytics API base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")

	rootCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(weeksCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(climateCmd)
	rootCmd.AddCommand(mapCmd)
}

// newClient builds the analytics client from flags and environment
func newClient(cmd *cobra.Command) *service.EpiClient {
	url := apiURL
	if url == "" {
		_ = godotenv.Load()
		url = config.FromEnv().EpiAPIURL
	}
	return service.NewEpiClient(url, newLogger(cmd))
}

// newLogger writes diagnostics to stderr with --verbose and drops them otherwise
func newLogger(cmd *cobra.Command) *slog.Logger {
	var w io.Writer = io.Discard
	if verbose {
		w = cmd.ErrOrStderr()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
