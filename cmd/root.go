package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "shopik",
		Short: "Catalog title reducer and product image analyzer",
		Long: `Shopik prepares product catalogs for online marketplaces.

It shortens overlong catalog titles with a text LLM and describes product
photos with a vision LLM after removing their background. Both run as a web
service or as one-off commands.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			logLevel := slog.LevelInfo
			if verbose || strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newTitlesCmd())
	cmd.AddCommand(newImagesCmd())

	return cmd
}
