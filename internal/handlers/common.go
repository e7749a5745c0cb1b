package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/shopik/internal/analysis"
	"github.com/lehigh-university-libraries/shopik/internal/apperr"
	"github.com/lehigh-university-libraries/shopik/internal/catalog"
	"github.com/lehigh-university-libraries/shopik/internal/models"
	"github.com/lehigh-university-libraries/shopik/internal/storage"
	"github.com/lehigh-university-libraries/shopik/internal/titles"
)

// TitleReducer shortens catalog titles.
type TitleReducer interface {
	ReduceOverlongTitles(ctx context.Context, rows []catalog.Row) ([]catalog.Row, *titles.Report, error)
}

// ImageProcessor analyzes uploaded product photos.
type ImageProcessor interface {
	ProcessImages(ctx context.Context, assets []analysis.Asset) []models.ImageResult
}

type Handler struct {
	assets         *storage.AssetStore
	titles         TitleReducer
	images         ImageProcessor
	maxUploadBytes int64
	allowOrigin    string
}

func New(assets *storage.AssetStore, titles TitleReducer, images ImageProcessor, maxUploadBytes int64, allowOrigin string) *Handler {
	return &Handler{
		assets:         assets,
		titles:         titles,
		images:         images,
		maxUploadBytes: maxUploadBytes,
		allowOrigin:    allowOrigin,
	}
}

// Routes returns the service's HTTP handler.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/process-csv", h.HandleProcessCSV)
	mux.HandleFunc("/process-images", h.HandleProcessImages)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return h.withCORS(mux)
}

func (h *Handler) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", h.allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Titles-Unreduced")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("Unable to encode error response", "err", err)
	}
}

// writeAppError answers with the error's own message for client errors and
// with fallback for everything else.
func (h *Handler) writeAppError(w http.ResponseWriter, err error, fallback string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.HTTPStatus() < http.StatusInternalServerError {
		h.writeError(w, appErr.Error(), appErr.HTTPStatus())
		return
	}
	slog.Error(fallback, "err", err)
	h.writeError(w, fallback, http.StatusInternalServerError)
}

func (h *Handler) requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
