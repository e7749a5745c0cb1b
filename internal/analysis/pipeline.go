package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/shopik/internal/apperr"
	"github.com/lehigh-university-libraries/shopik/internal/background"
	"github.com/lehigh-university-libraries/shopik/internal/models"
	"github.com/lehigh-university-libraries/shopik/internal/providers"
)

// Asset is a single-owner image source. Release is called exactly once the
// image has been processed, whatever the outcome.
type Asset interface {
	Filename() string
	Bytes() ([]byte, error)
	Release() error
}

// VisionAnalyzer describes one image.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, img providers.Image) (string, error)
}

// Pipeline removes backgrounds and analyzes product photos one at a time.
type Pipeline struct {
	Remover  background.Remover
	Analyzer VisionAnalyzer
}

func NewPipeline(remover background.Remover, analyzer VisionAnalyzer) *Pipeline {
	return &Pipeline{Remover: remover, Analyzer: analyzer}
}

// ProcessImages returns one result per asset, in asset order. A failure on one
// image, including a panic in one of its stages, is recorded in its result and
// never affects the others.
func (p *Pipeline) ProcessImages(ctx context.Context, assets []Asset) []models.ImageResult {
	results := make([]models.ImageResult, len(assets))
	for i, asset := range assets {
		results[i] = p.processImage(ctx, asset)
		slog.Info("Image processed",
			"image", asset.Filename(),
			"progress", i+1,
			"of", len(assets),
			"outcome", results[i].Analysis.Kind)
	}
	return results
}

func (p *Pipeline) processImage(ctx context.Context, asset Asset) (result models.ImageResult) {
	result.Asset = asset.Filename()
	defer func() {
		if err := asset.Release(); err != nil {
			slog.Error("Unable to release asset", "image", asset.Filename(), "err", err)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Image processing panicked", "image", asset.Filename(), "panic", r)
			result.Analysis = models.Failed(apperr.Wrap(apperr.KindInternal, "", "Error processing image", fmt.Errorf("panic: %v", r)))
		}
	}()

	if err := ctx.Err(); err != nil {
		result.Analysis = models.Failed(apperr.Wrap(apperr.KindInternal, "", "Processing cancelled", err))
		return result
	}

	data, err := asset.Bytes()
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnknown {
			err = apperr.Wrap(apperr.KindBadRequest, "", "Error reading image", err)
		}
		result.Analysis = models.Failed(err)
		return result
	}

	removed, err := p.Remover.RemoveBackground(ctx, data, asset.Filename())
	if err == nil {
		removed, err = background.EnsurePNG(removed)
	}
	if err != nil {
		err = apperr.Removal(err)
		slog.Error("Background removal failed", "image", asset.Filename(), "err", err)
		result.Analysis = models.Failed(err)
		return result
	}

	img := providers.Image{MIMEType: "image/png", Data: removed}
	result.DataURL = img.DataURI()

	raw, err := p.Analyzer.Analyze(ctx, img)
	if err != nil {
		slog.Error("Image analysis failed", "image", asset.Filename(), "err", err)
		result.Analysis = models.Failed(err)
		return result
	}

	analysis, err := ParseProductAnalysis(raw)
	if err != nil {
		slog.Warn("Failed to parse analysis", "image", asset.Filename(), "err", err)
		result.Analysis = models.ParseFailure(raw, err)
		return result
	}

	result.Analysis = models.Success(analysis)
	return result
}
