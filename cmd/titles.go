package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/shopik/internal/backends"
	"github.com/lehigh-university-libraries/shopik/internal/catalog"
	"github.com/lehigh-university-libraries/shopik/internal/config"
	"github.com/lehigh-university-libraries/shopik/internal/report"
	"github.com/spf13/cobra"
)

func newTitlesCmd() *cobra.Command {
	var input string
	var output string
	var reportPath string
	var provider string
	var model string
	var continueOnError bool

	cmd := &cobra.Command{
		Use:   "titles",
		Short: "Shorten overlong titles in a catalog CSV",
		Long: `Reads a catalog CSV with a Title column, asks the text LLM to shorten
every title longer than 50 characters, and writes the catalog back out with
every other column untouched.`,
		Example: `  # Reduce titles with the configured provider
  shopik titles --input catalog.csv --output reduced_titles.csv

  # Use Gemini and keep going when a batch fails
  shopik titles --input catalog.csv --provider gemini --continue-on-error --report run.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.TextProvider = provider
				if model == "" {
					cfg.TextModel = config.DefaultModel(provider)
				}
			}
			if model != "" {
				cfg.TextModel = model
			}
			if cmd.Flags().Changed("continue-on-error") {
				cfg.ContinueOnError = continueOnError
			}

			pipeline, err := backends.TitlePipeline(cfg)
			if err != nil {
				return err
			}

			in, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open catalog: %w", err)
			}
			defer in.Close()

			table, err := catalog.ReadCSV(in)
			if err != nil {
				return err
			}
			slog.Info("Catalog loaded", "input", input, "rows", len(table.Rows))

			rows, result, err := pipeline.ReduceOverlongTitles(cmd.Context(), table.Rows)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			out, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer out.Close()
			if err := catalog.WriteCSV(out, table.WithRows(rows)); err != nil {
				return err
			}

			slog.Info("Titles reduced",
				"output", output,
				"long_titles", result.LongTitles,
				"reduced", result.Reduced,
				"fallbacks", len(result.Fallbacks),
			)

			if reportPath != "" {
				run := report.NewRunConfig(cfg.TextProvider, cfg.TextModel, cfg.TitleTemperature, input)
				if err := report.SaveTitleReport(reportPath, run, result); err != nil {
					return err
				}
				slog.Info("Report saved", "path", reportPath)
			}
			return out.Close()
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Catalog CSV to read")
	cmd.Flags().StringVarP(&output, "output", "o", "reduced_titles.csv", "Path of the reduced catalog")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a YAML run report to this path")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (openai, gemini, or ollama; overrides TEXT_PROVIDER)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep original titles of failed batches instead of aborting")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
