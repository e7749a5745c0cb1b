package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/shopik/internal/apperr"
	"github.com/lehigh-university-libraries/shopik/internal/catalog"
)

const reducedTitlesFilename = "reduced_titles.csv"

// HandleProcessCSV accepts a catalog upload and answers with the catalog's
// titles shortened.
func (h *Handler) HandleProcessCSV(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		h.writeError(w, "File too large", http.StatusBadRequest)
		return
	}

	table, err := h.readCatalog(file, header)
	if err != nil {
		h.writeAppError(w, err, "Failed to process CSV")
		return
	}

	rows, report, err := h.titles.ReduceOverlongTitles(r.Context(), table.Rows)
	if err != nil {
		h.writeAppError(w, err, "Failed to process CSV")
		return
	}

	var buf bytes.Buffer
	if err := catalog.WriteCSV(&buf, table.WithRows(rows)); err != nil {
		h.writeAppError(w, err, "Failed to process CSV")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+reducedTitlesFilename)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("X-Titles-Unreduced", strconv.Itoa(len(report.Fallbacks)))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.writeAppError(w, err, "Failed to process CSV")
	}
}

// readCatalog stores the upload for the duration of the request and parses it.
func (h *Handler) readCatalog(file multipart.File, header *multipart.FileHeader) (*catalog.Table, error) {
	asset, err := h.assets.Save(header.Filename, file)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "save upload", "failed to store catalog", err)
	}
	defer func() {
		if err := asset.Release(); err != nil {
			h.logReleaseError(asset.Name, err)
		}
	}()

	data, err := asset.Bytes()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "read upload", "failed to read catalog", err)
	}
	return catalog.ReadCSV(bytes.NewReader(data))
}
