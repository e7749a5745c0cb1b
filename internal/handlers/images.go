package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/lehigh-university-libraries/shopik/internal/analysis"
	"github.com/lehigh-university-libraries/shopik/internal/models"
	"github.com/lehigh-university-libraries/shopik/internal/storage"
)

const (
	imagesField = "images"
	// maxImagesPerRequest bounds a single /process-images upload.
	maxImagesPerRequest = 20
	// multipartOverhead covers part headers and boundaries.
	multipartOverhead = 64 << 10
)

// HandleProcessImages removes the background of every uploaded image and
// describes the product it shows. Per-image failures are reported inline.
func (h *Handler) HandleProcessImages(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}

	limit := h.maxUploadBytes*maxImagesPerRequest + multipartOverhead
	tooLarge := fmt.Sprintf("Upload too large (max %d images of %d bytes)", maxImagesPerRequest, h.maxUploadBytes)
	if r.ContentLength > limit {
		h.writeError(w, tooLarge, http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, tooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("Unable to remove multipart temp files", "err", err)
		}
	}()

	files := r.MultipartForm.File[imagesField]
	if len(files) == 0 {
		h.writeError(w, "No images uploaded", http.StatusBadRequest)
		return
	}
	if len(files) > maxImagesPerRequest {
		h.writeError(w, fmt.Sprintf("Too many images (max %d)", maxImagesPerRequest), http.StatusBadRequest)
		return
	}
	for _, fh := range files {
		if fh.Size > h.maxUploadBytes {
			h.writeError(w, fmt.Sprintf("File too large: %s (max %d bytes)", fh.Filename, h.maxUploadBytes), http.StatusBadRequest)
			return
		}
	}

	// every saved asset is released when the request ends, whatever happens below
	var saved []*storage.Asset
	defer func() { h.assets.ReleaseAll(saved) }()

	for _, fh := range files {
		asset, err := h.saveUpload(fh)
		if err != nil {
			h.writeError(w, "Failed to store image: "+err.Error(), http.StatusInternalServerError)
			return
		}
		saved = append(saved, asset)
	}

	assets := make([]analysis.Asset, len(saved))
	for i, a := range saved {
		assets[i] = a
	}

	slog.Info("Processing images", "count", len(assets))
	results := h.images.ProcessImages(r.Context(), assets)

	h.writeJSON(w, models.ImageResults{Results: results})
}

func (h *Handler) saveUpload(fh *multipart.FileHeader) (*storage.Asset, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return h.assets.Save(fh.Filename, f)
}

func (h *Handler) logReleaseError(name string, err error) {
	slog.Error("Unable to release upload", "name", name, "err", err)
}
