package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/shopik/internal/backends"
	"github.com/lehigh-university-libraries/shopik/internal/config"
	"github.com/lehigh-university-libraries/shopik/internal/images"
	"github.com/lehigh-university-libraries/shopik/internal/models"
	"github.com/lehigh-university-libraries/shopik/internal/report"
	"github.com/lehigh-university-libraries/shopik/internal/storage"
	"github.com/spf13/cobra"
)

func newImagesCmd() *cobra.Command {
	var output string
	var parquetPath string
	var reportPath string
	var provider string
	var model string
	var remover string

	cmd := &cobra.Command{
		Use:   "images FILE|URL...",
		Short: "Remove backgrounds and describe products in photos",
		Long: `Sends every photo through the background remover and the vision LLM and
prints the same JSON the web service returns. Arguments may be local paths or
http(s) URLs. Failures are reported per image.`,
		Example: `  # Analyze two photos and print JSON
  shopik images mug.jpg lamp.png

  # Analyze a photo by URL
  shopik images https://example.com/products/mug.jpg

  # Use remove.bg and export the analyses to Parquet
  shopik images photos/*.jpg --remover removebg --parquet analyses.parquet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.VisionProvider = provider
				if model == "" {
					cfg.VisionModel = config.DefaultModel(provider)
				}
			}
			if model != "" {
				cfg.VisionModel = model
			}
			if remover != "" {
				cfg.BackgroundRemover = remover
			}

			pipeline, err := backends.ImagePipeline(cfg)
			if err != nil {
				return err
			}

			// downloaded photos live in the upload dir until the run ends
			store := storage.New(cfg.UploadDir)
			assets, fetched := images.NewFetcher(cfg.MaxUploadBytes()).Resolve(cmd.Context(), args, store)
			defer store.ReleaseAll(fetched)

			results := pipeline.ProcessImages(cmd.Context(), assets)
			summary := report.Summarize(results)
			slog.Info("Images processed",
				"images", summary.Images,
				"succeeded", summary.Succeeded,
				"parse_failures", summary.ParseFailures,
				"failed", summary.Failed,
			)

			if err := writeResults(output, models.ImageResults{Results: results}); err != nil {
				return err
			}
			if parquetPath != "" {
				if err := report.WriteParquet(parquetPath, results); err != nil {
					return err
				}
				slog.Info("Parquet export saved", "path", parquetPath)
			}
			if reportPath != "" {
				run := report.NewRunConfig(cfg.VisionProvider, cfg.VisionModel, cfg.VisionTemperature, fmt.Sprintf("%d images", len(args)))
				if err := report.SaveImageReport(reportPath, run, results); err != nil {
					return err
				}
				slog.Info("Report saved", "path", reportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write JSON results to this path instead of stdout")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "Export analyses to a Parquet file")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a YAML run report to this path")
	cmd.Flags().StringVar(&provider, "provider", "", "Vision provider (openai, gemini, or ollama; overrides VISION_PROVIDER)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().StringVar(&remover, "remover", "", "Background remover (rembg or removebg; overrides BACKGROUND_REMOVER)")

	return cmd
}

func writeResults(path string, results models.ImageResults) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if path == "" {
		_, err := fmt.Println(string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
