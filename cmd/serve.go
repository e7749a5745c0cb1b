package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/shopik/internal/backends"
	"github.com/lehigh-university-libraries/shopik/internal/config"
	"github.com/lehigh-university-libraries/shopik/internal/handlers"
	"github.com/lehigh-university-libraries/shopik/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the title and image processing web service",
		Long: `Starts the Shopik web service.

POST /process-csv takes a catalog upload (field "file") and returns it with
titles shortened to 50 characters. POST /process-images takes product photos
(field "images") and returns background-free images with a structured
description of each product.`,
		Example: `  # Start server on the configured port (PORT, default 3000)
  shopik serve

  # Start server on a custom port
  shopik serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			titlePipeline, err := backends.TitlePipeline(cfg)
			if err != nil {
				return err
			}
			imagePipeline, err := backends.ImagePipeline(cfg)
			if err != nil {
				return err
			}

			handler := handlers.New(
				storage.New(cfg.UploadDir),
				titlePipeline,
				imagePipeline,
				cfg.MaxUploadBytes(),
				cfg.AllowOrigins,
			)

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Shopik service available",
					"addr", addr,
					"url", "http://localhost"+addr,
					"text_provider", cfg.TextProvider,
					"vision_provider", cfg.VisionProvider,
					"background_remover", cfg.BackgroundRemover,
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}
